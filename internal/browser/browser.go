package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/playwright-community/playwright-go"
)

const (
	viewportWidth  = 1280
	viewportHeight = 900
)

var errNotStarted = errors.New("браузер не запущен")

func New(cfg Config) *PlaywrightBrowser {
	// Установка дефолтных таймаутов
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.NavigateTimeout == 0 {
		cfg.NavigateTimeout = 60 * time.Second // Navigate обычно дольше
	}
	if cfg.ActionTimeout == 0 {
		cfg.ActionTimeout = 10 * time.Second // Click/Type обычно быстрые
	}
	if cfg.Locale == "" {
		cfg.Locale = "fr-FR"
	}
	if cfg.UserDataDir == "" {
		cfg.UserDataDir = "./userdata"
	}

	return &PlaywrightBrowser{
		cfg: cfg,
	}
}

// getPage безопасно возвращает текущую страницу с read lock
func (b *PlaywrightBrowser) getPage() playwright.Page {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.page
}

func (b *PlaywrightBrowser) setPage(page playwright.Page) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.page = page
}

func (b *PlaywrightBrowser) getBrowserArgs() []string {
	return []string{
		"--disable-blink-features=AutomationControlled",
		"--no-sandbox",
		"--disable-extensions",
	}
}

func (b *PlaywrightBrowser) getEnvMap() map[string]string {
	if b.cfg.Display != "" {
		return map[string]string{
			"DISPLAY": b.cfg.Display,
		}
	}
	return nil
}

// userDataDir: playwright плохо работает с относительными путями профиля.
func (b *PlaywrightBrowser) userDataDir() (string, error) {
	dir, err := filepath.Abs(b.cfg.UserDataDir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("создание профиля %s: %w", dir, err)
	}
	return dir, nil
}

// Launch starts Chromium with a persistent profile so the site session survives
// between runs. Requests to chrome-extension:// are aborted. On failure the
// driver and the context started so far are shut down.
func (b *PlaywrightBrowser) Launch(ctx context.Context) error {
	if err := b.launch(ctx); err != nil {
		return b.abandon(err)
	}
	return nil
}

// abandon закрывает то, что успело запуститься, и добавляет ошибки закрытия к err.
func (b *PlaywrightBrowser) abandon(err error) error {
	if cerr := b.Close(); cerr != nil {
		return multierror.Append(err, cerr)
	}
	return err
}

func (b *PlaywrightBrowser) launch(ctx context.Context) error {
	if b.cfg.BrowsersPath != "" {
		_ = os.Setenv("PLAYWRIGHT_BROWSERS_PATH", b.cfg.BrowsersPath)
	}

	pw, err := playwright.Run()
	if err != nil {
		return fmt.Errorf("запуск playwright: %w", err)
	}
	b.pw = pw

	dir, err := b.userDataDir()
	if err != nil {
		return err
	}

	opts := playwright.BrowserTypeLaunchPersistentContextOptions{
		Headless: playwright.Bool(b.cfg.Headless),
		Args:     b.getBrowserArgs(),
		Locale:   playwright.String(b.cfg.Locale),
		Viewport: &playwright.Size{Width: viewportWidth, Height: viewportHeight},
	}
	if env := b.getEnvMap(); env != nil {
		opts.Env = env
	}

	browserContext, err := pw.Chromium.LaunchPersistentContext(dir, opts)
	if err != nil {
		return fmt.Errorf("запуск chromium: %w", err)
	}

	b.mu.Lock()
	b.context = browserContext
	b.mu.Unlock()

	if err := browserContext.Route("**/*", blockExtensions); err != nil {
		return fmt.Errorf("route: %w", err)
	}

	pages := browserContext.Pages()
	var page playwright.Page
	if len(pages) == 0 {
		page, err = browserContext.NewPage()
		if err != nil {
			return err
		}
	} else {
		page = pages[0]
	}

	b.setPage(page)
	page.SetDefaultTimeout(float64(b.cfg.Timeout.Milliseconds()))
	return nil
}

func blockExtensions(route playwright.Route) {
	if strings.HasPrefix(route.Request().URL(), "chrome-extension://") {
		_ = route.Abort()
		return
	}
	_ = route.Continue()
}

func (b *PlaywrightBrowser) Navigate(ctx context.Context, url string) error {
	page := b.getPage()
	if page == nil {
		return errNotStarted
	}

	navCtx, cancel := context.WithTimeout(ctx, b.cfg.NavigateTimeout)
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		_, err := page.Goto(url, playwright.PageGotoOptions{
			WaitUntil: playwright.WaitUntilStateDomcontentloaded,
			Timeout:   playwright.Float(float64(b.cfg.NavigateTimeout.Milliseconds())),
		})
		errChan <- err
	}()

	select {
	case <-navCtx.Done():
		return fmt.Errorf("navigate timeout after %v: %w", b.cfg.NavigateTimeout, navCtx.Err())
	case err := <-errChan:
		return err
	}
}

func (b *PlaywrightBrowser) locator(selector string) (playwright.Locator, error) {
	page := b.getPage()
	if page == nil {
		return nil, errNotStarted
	}
	return page.Locator(selector).First(), nil
}

func (b *PlaywrightBrowser) actionTimeout() *float64 {
	return playwright.Float(float64(b.cfg.ActionTimeout.Milliseconds()))
}

// Visible сообщает, виден ли первый элемент по селектору. Ошибки считаются "не виден".
func (b *PlaywrightBrowser) Visible(ctx context.Context, selector string) bool {
	loc, err := b.locator(selector)
	if err != nil {
		return false
	}
	ok, err := loc.IsVisible()
	return err == nil && ok
}

func (b *PlaywrightBrowser) Count(ctx context.Context, selector string) int {
	page := b.getPage()
	if page == nil {
		return 0
	}
	n, err := page.Locator(selector).Count()
	if err != nil {
		return 0
	}
	return n
}

func (b *PlaywrightBrowser) Click(ctx context.Context, selector string) error {
	loc, err := b.locator(selector)
	if err != nil {
		return err
	}
	_ = loc.ScrollIntoViewIfNeeded(playwright.LocatorScrollIntoViewIfNeededOptions{
		Timeout: playwright.Float(3000),
	})
	if err := loc.Click(playwright.LocatorClickOptions{Timeout: b.actionTimeout()}); err != nil {
		return fmt.Errorf("клик %s: %w", short(selector), err)
	}
	return nil
}

// ClickNth прокручивает к i-му элементу списка и кликает по нему.
func (b *PlaywrightBrowser) ClickNth(ctx context.Context, selector string, i int) error {
	page := b.getPage()
	if page == nil {
		return errNotStarted
	}
	loc := page.Locator(selector).Nth(i)
	timeout := playwright.Float(15000)
	if err := loc.ScrollIntoViewIfNeeded(playwright.LocatorScrollIntoViewIfNeededOptions{Timeout: timeout}); err != nil {
		return fmt.Errorf("прокрутка к %s[%d]: %w", short(selector), i, err)
	}
	return loc.Click(playwright.LocatorClickOptions{Timeout: timeout})
}

// InnerText returns the rendered text of the first match, "" when absent.
func (b *PlaywrightBrowser) InnerText(ctx context.Context, selector string) string {
	loc, err := b.locator(selector)
	if err != nil {
		return ""
	}
	text, err := loc.InnerText(playwright.LocatorInnerTextOptions{Timeout: playwright.Float(3000)})
	if err != nil {
		return ""
	}
	return text
}

func (b *PlaywrightBrowser) OuterHTML(ctx context.Context, selector string, i int) (string, error) {
	page := b.getPage()
	if page == nil {
		return "", errNotStarted
	}
	res, err := page.Locator(selector).Nth(i).Evaluate("el => el.outerHTML", nil)
	if err != nil {
		return "", err
	}
	html, _ := res.(string)
	return html, nil
}

// OpenTab открывает url в новой вкладке того же профиля.
func (b *PlaywrightBrowser) OpenTab(ctx context.Context, url string) error {
	b.mu.RLock()
	bc := b.context
	b.mu.RUnlock()
	if bc == nil {
		return errNotStarted
	}
	page, err := bc.NewPage()
	if err != nil {
		return err
	}
	_, err = page.Goto(url)
	return err
}

// Close shuts down the persistent context and the driver; both errors are reported.
func (b *PlaywrightBrowser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var result *multierror.Error
	if b.context != nil {
		if err := b.context.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("закрытие контекста: %w", err))
		}
		b.context = nil
		b.page = nil
	}
	if b.pw != nil {
		if err := b.pw.Stop(); err != nil {
			result = multierror.Append(result, fmt.Errorf("остановка playwright: %w", err))
		}
		b.pw = nil
	}
	return result.ErrorOrNil()
}

func short(selector string) string {
	if len(selector) > 60 {
		return selector[:60] + "…"
	}
	return selector
}
