package browser

import (
	"context"
	"fmt"
)

// ScrollContainer прокручивает первый контейнер из списка селекторов до конца,
// чтобы лента подгрузила новые карточки.
func (b *PlaywrightBrowser) ScrollContainer(ctx context.Context, selector string) error {
	page := b.getPage()
	if page == nil {
		return errNotStarted
	}

	_, err := page.Evaluate(`(sel) => {
		const el = document.querySelector(sel);
		if (el) el.scrollTop = el.scrollHeight;
	}`, selector)
	if err != nil {
		return fmt.Errorf("ошибка прокрутки списка: %w", err)
	}
	return nil
}
