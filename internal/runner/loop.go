package runner

import (
	"context"
	"time"

	"go.uber.org/zap"

	"easyApply/internal/apply"
	"easyApply/internal/browser"
	"easyApply/internal/database"
	"easyApply/internal/jobs"
	"easyApply/internal/logger"
)

type verdict int

const (
	verdictNext   verdict = iota // вакансия обработана, ждём закрытия окна
	verdictSkip                  // дальше без ожидания
	verdictLimit                 // дневной лимит, прогон окончен
	verdictClosed                // браузер закрыт
)

// Loop обходит список вакансий и подаёт заявки одну за другой.
type Loop struct {
	board   Board
	nav     Applier
	state   *State
	journal database.Journal
	log     *logger.Zap
	cfg     Config
}

// New создаёт цикл подачи. journal может быть nil, тогда журнал не ведётся.
func New(board Board, nav Applier, state *State, journal database.Journal, log *logger.Zap, cfg Config) *Loop {
	if cfg.EmptyWait == 0 {
		cfg.EmptyWait = 15 * time.Second
	}
	if cfg.CloseTimeout == 0 {
		cfg.CloseTimeout = 10 * time.Second
	}
	if cfg.Settle == 0 {
		cfg.Settle = 600 * time.Millisecond
	}
	if cfg.Pause == nil {
		cfg.Pause = browser.NewPacer(0, 0).Between
	}
	if cfg.Between == nil {
		cfg.Between = func(context.Context) error { return nil }
	}
	if journal == nil {
		journal = database.Noop{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Loop{board: board, nav: nav, state: state, journal: journal, log: log, cfg: cfg}
}

// Run works through the list until ctx is cancelled, the daily limit shows up
// or the browser goes away. Only a failure to open the search page is returned
// as an error; problems with a single job are logged and skipped.
// Cancellation is observed between jobs, never in the middle of a form.
func (l *Loop) Run(ctx context.Context, runID string) error {
	log := l.log.With(zap.String("run_id", runID))
	if err := l.journal.StartRun(ctx, runID); err != nil {
		log.Warn("журнал: начало прогона не записано", zap.Error(err))
	}

	status, err := l.loop(ctx, log, runID)

	errText := ""
	if err != nil {
		status = StatusFailed
		errText = err.Error()
	}
	applied := l.state.Snapshot().AppliedCount
	if jerr := l.journal.FinishRun(context.WithoutCancel(ctx), runID, status, applied, errText); jerr != nil {
		log.Warn("журнал: конец прогона не записан", zap.Error(jerr))
	}
	log.Info("прогон завершён", zap.String("status", status), zap.Int("applied", applied))
	return err
}

func (l *Loop) loop(ctx context.Context, log *zap.Logger, runID string) (string, error) {
	if err := l.board.Open(ctx); err != nil {
		if ctx.Err() != nil {
			return StatusStopped, nil
		}
		log.Error("страница поиска недоступна", zap.Error(err))
		return StatusFailed, err
	}

	for round := 1; ; round++ {
		if ctx.Err() != nil {
			return StatusStopped, nil
		}

		count := l.board.Count(ctx)
		if count == 0 {
			l.board.Scroll(ctx, 3)
			_ = l.cfg.Pause(ctx, 3*time.Second, 3*time.Second)
			count = l.board.Count(ctx)
		}
		if count == 0 {
			log.Warn("карточек нет, ждём", zap.Duration("wait", l.cfg.EmptyWait))
			if err := l.cfg.Pause(ctx, l.cfg.EmptyWait, l.cfg.EmptyWait); err != nil {
				return StatusStopped, nil
			}
			continue
		}
		log.Info("новый круг", zap.Int("round", round), zap.Int("cards", count))

		for i := 0; i < count; i++ {
			// текущую вакансию доводим до конца даже после Stop
			jobCtx := context.WithoutCancel(ctx)

			switch l.attempt(jobCtx, log, runID, i) {
			case verdictLimit:
				log.Warn("дневной лимит откликов, останавливаемся")
				l.board.NotifyDailyLimit(jobCtx)
				return StatusDailyLimit, nil
			case verdictClosed:
				log.Info("браузер закрыт, прогон остановлен")
				return StatusStopped, nil
			case verdictSkip:
				continue
			}

			l.nav.WaitClosed(jobCtx, l.cfg.CloseTimeout)
			_ = l.cfg.Pause(ctx, l.cfg.Settle, l.cfg.Settle)

			if ctx.Err() != nil {
				return StatusStopped, nil
			}
			if err := l.cfg.Between(ctx); err != nil {
				return StatusStopped, nil
			}
		}

		l.board.Scroll(ctx, 5)
		_ = l.cfg.Pause(ctx, 2*time.Second, 2*time.Second)
	}
}

func (l *Loop) attempt(ctx context.Context, log *zap.Logger, runID string, i int) verdict {
	card := l.board.Card(ctx, i)
	log = log.With(zap.Int("card", i+1), zap.String("job", card.String()))

	if err := l.board.Select(ctx, i); err != nil {
		if apply.IsBrowserClosed(err) {
			return verdictClosed
		}
		log.Warn("карточка не выбрана", zap.Error(err))
		return verdictSkip
	}
	if l.board.DailyLimit(ctx) {
		return verdictLimit
	}

	if err := l.board.ClickApply(ctx); err != nil {
		if apply.IsBrowserClosed(err) {
			return verdictClosed
		}
		log.Info("нет кнопки простой подачи, пропуск", zap.Error(err))
		l.nav.Close(ctx)
		l.record(ctx, log, runID, card, outcomeSkipped, err, 0)
		return verdictSkip
	}
	if l.board.DailyLimit(ctx) {
		l.nav.Close(ctx)
		return verdictLimit
	}

	res, err := l.nav.Apply(ctx)
	if l.board.DailyLimit(ctx) {
		l.nav.Close(ctx)
		return verdictLimit
	}

	if res.Outcome == apply.Submitted {
		n := l.state.IncApplied()
		log.Info("заявка отправлена", zap.Int("applied", n), zap.Int("steps", res.Steps))
		l.record(ctx, log, runID, card, res.Outcome.String(), nil, res.Steps)
		return verdictNext
	}

	if apply.IsBrowserClosed(err) {
		return verdictClosed
	}
	ae := apply.Classify("apply", err)
	fields := []zap.Field{zap.Stringer("outcome", res.Outcome), zap.String("state", string(res.State))}
	if ae != nil {
		fields = append(fields, zap.Stringer("kind", ae.Kind), zap.Error(err))
	}
	log.Warn("заявка не отправлена", fields...)
	l.nav.Close(ctx)
	l.record(ctx, log, runID, card, res.Outcome.String(), err, res.Steps)
	return verdictNext
}

func (l *Loop) record(ctx context.Context, log *zap.Logger, runID string, card jobs.Card, outcome string, reason error, steps int) {
	a := &database.Application{
		RunID:    runID,
		JobID:    card.ID,
		Title:    card.Title,
		Company:  card.Company,
		Location: card.Location,
		Outcome:  outcome,
		Steps:    steps,
	}
	if reason != nil {
		a.Reason = reason.Error()
	}
	if err := l.journal.RecordApplication(ctx, a); err != nil {
		log.Warn("журнал: попытка не записана", zap.Error(err))
	}
}
