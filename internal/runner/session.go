package runner

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"easyApply/internal/answers"
	"easyApply/internal/apply"
	"easyApply/internal/browser"
	"easyApply/internal/config"
	"easyApply/internal/cv"
	"easyApply/internal/database"
	"easyApply/internal/jobs"
	"easyApply/internal/llm"
	"easyApply/internal/logger"
)

var (
	_ Board     = (*jobs.Board)(nil)
	_ Applier   = (*apply.Navigator)(nil)
	_ jobs.Page = (*browser.PlaywrightBrowser)(nil)
)

// ConfigLoader отдаёт актуальную конфигурацию (env + сохранённые через UI значения).
type ConfigLoader func() (*config.Cfg, error)

// NewSession wires a real browser session. The configuration is reloaded on
// every run so values saved through /api/setup apply without a restart.
func NewSession(load ConfigLoader, state *State, journal database.Journal, log *logger.Zap) Session {
	return func(ctx context.Context, runID string) error {
		cfg, err := load()
		if err != nil {
			return fmt.Errorf("загрузка конфигурации: %w", err)
		}

		br := browser.New(browser.Config{
			Headless:     cfg.Browser.Headless,
			UserDataDir:  cfg.Browser.UserDataDir,
			BrowsersPath: cfg.Browser.BrowsersPath,
			Display:      cfg.Browser.Display,
			Locale:       cfg.Browser.Locale,
		})
		defer func() {
			if err := br.Close(); err != nil {
				log.Warn("браузер закрыт с ошибками", zap.Error(err))
			}
		}()
		if err := br.Launch(ctx); err != nil {
			return fmt.Errorf("запуск браузера: %w", err)
		}

		navOpts, err := navigatorOptions(cfg, log)
		if err != nil {
			return err
		}

		assistant := newAssistant(ctx, cfg, journal, log)

		resolver := answers.New(cfg.Profile, cfg.Policy,
			answers.WithGenerator(assistant),
			answers.WithCV(cv.NewCache(cfg.CVFile(), nil, log.Logger)),
			answers.WithLogger(log.Logger))

		nav := apply.NewNavigator(br, resolver, append(navOpts, apply.WithPicker(assistant))...)

		board := jobs.NewBoard(br, cfg.SearchURL(),
			jobs.WithLogger(log.Logger),
			jobs.WithNoticeDir(cfg.Paths.NoticeDir))

		pacer := browser.NewPacer(seconds(cfg.Pacing.MinDelaySec), seconds(cfg.Pacing.MaxDelaySec))
		loop := New(board, nav, state, journal, log, Config{Between: pacer.Wait})
		return loop.Run(ctx, runID)
	}
}

// newAssistant собирает цепочку Gemini -> Groq; без ключей ответы идут только по правилам.
func newAssistant(ctx context.Context, cfg *config.Cfg, journal database.Journal, log *logger.Zap) *llm.Assistant {
	gemini := llm.NewGeminiClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.RequestsPerMinute, journal, log.Logger)
	groq := llm.NewGroqClient(cfg.Groq.APIKey, cfg.Groq.Model, cfg.Groq.BaseURL, journal)

	if cfg.Gemini.APIKey == "" && cfg.Groq.APIKey == "" {
		log.Warn("ключи LLM не заданы, генеративные ответы отключены")
	}
	return llm.NewAssistant(llm.NewFallback(gemini, groq, log.Logger), cfg.Gemini.UseForCV)
}

// navigatorOptions собирает опции мастера подачи. С FORM_ANSWERS_FILE подача
// идёт по готовой карте ответов.
func navigatorOptions(cfg *config.Cfg, log *logger.Zap) ([]apply.Option, error) {
	opts := []apply.Option{
		apply.WithResume(cfg.Paths.ResumePath),
		apply.WithLogger(log.Logger),
	}
	if cfg.Paths.FormAnswersFile == "" {
		return opts, nil
	}
	m, err := config.ReadFormAnswers(cfg.Paths.FormAnswersFile)
	if err != nil {
		return nil, err
	}
	log.Info("режим готовых ответов", zap.String("file", cfg.Paths.FormAnswersFile), zap.Int("answers", len(m)))
	return append(opts, apply.WithFormAnswers(m)), nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
