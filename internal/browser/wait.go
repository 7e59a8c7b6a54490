package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// WaitVisible ждёт появления первого элемента по селектору.
func (b *PlaywrightBrowser) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	return b.waitState(ctx, selector, playwright.WaitForSelectorStateVisible, timeout)
}

// WaitHidden returns nil once no element matching selector is visible.
func (b *PlaywrightBrowser) WaitHidden(ctx context.Context, selector string, timeout time.Duration) error {
	return b.waitState(ctx, selector, playwright.WaitForSelectorStateHidden, timeout)
}

func (b *PlaywrightBrowser) waitState(ctx context.Context, selector string, state *playwright.WaitForSelectorState, timeout time.Duration) error {
	loc, err := b.locator(selector)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if timeout <= 0 {
		timeout = b.cfg.Timeout
	}

	err = loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   state,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("ожидание %s (%s): %w", short(selector), *state, err)
	}
	return nil
}
