// Package jobs работает со страницей поиска вакансий: список карточек слева,
// кнопка "Candidature simplifiée" в панели справа, дневной лимит откликов.
package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"easyApply/internal/apply"
	"easyApply/internal/browser"
)

// Page - возможности браузера, нужные списку вакансий.
type Page interface {
	apply.Driver

	Navigate(ctx context.Context, url string) error
	ClickNth(ctx context.Context, selector string, i int) error
	OuterHTML(ctx context.Context, selector string, i int) (string, error)
	OpenTab(ctx context.Context, url string) error
	ScrollContainer(ctx context.Context, selector string) error
}

// Selectors describe the search results page.
type Selectors struct {
	ListReady     string
	CardsVisible  string
	ListContainer string
	ScopedCards   string
	Cards         string
	ApplyButton   string
	ScrollTarget  string
	Body          string

	LimitPhrases []string
}

const filterPillID = "searchFilter_applyWithLinkedin"

func DefaultSelectors() Selectors {
	return Selectors{
		ListReady:     ".jobs-search-results-list, .scaffold-layout__list-container, ul.scaffold-layout__list-container, [data-job-id]",
		CardsVisible:  ".scaffold-layout__list-container li, .job-card-container, li.jobs-search-results__list-item",
		ListContainer: ".scaffold-layout__list-container, .jobs-search-results-list, ul.scaffold-layout__list-container",
		ScopedCards:   "li, .job-card-container, [data-job-id]",
		Cards: ".scaffold-layout__list-container li, ul.scaffold-layout__list-container li, .jobs-search-results-list li, " +
			"li.jobs-search-results__list-item, .job-card-container, [data-job-id].job-card-container",
		ApplyButton: "button:has-text('Candidature simplifiée'):not(#" + filterPillID + "), " +
			"button:has-text('Easy Apply'):not(#" + filterPillID + ")",
		ScrollTarget: ".jobs-search-results-list, .scaffold-layout__list-container, [role='list']",
		Body:         "body",
		LimitPhrases: []string{
			"envois quotidiens",
			"limitons le nombre",
			"postulez demain",
			"enregistrez cette offre",
		},
	}
}

const (
	listTimeout    = 45 * time.Second
	cardsTimeout   = 10 * time.Second
	applyTimeout   = 2 * time.Second
	defaultMaxCard = 50
)

// Board is the job list of one search page. Cards are addressed by index in
// list order; the selector used for them is fixed by the last Count.
type Board struct {
	page      Page
	url       string
	sel       Selectors
	pause     apply.PauseFunc
	log       *zap.Logger
	maxCards  int
	noticeDir string
	backoff   func() backoff.BackOff

	cards string
}

type Option func(*Board)

func WithSelectors(s Selectors) Option {
	return func(b *Board) { b.sel = s }
}

func WithPause(p apply.PauseFunc) Option {
	return func(b *Board) { b.pause = p }
}

func WithLogger(log *zap.Logger) Option {
	return func(b *Board) { b.log = log }
}

// WithNoticeDir задаёт каталог для HTML-уведомления о дневном лимите.
func WithNoticeDir(dir string) Option {
	return func(b *Board) { b.noticeDir = dir }
}

func WithMaxCards(n int) Option {
	return func(b *Board) { b.maxCards = n }
}

// WithBackOff подменяет политику повторов открытия поиска (для тестов).
func WithBackOff(f func() backoff.BackOff) Option {
	return func(b *Board) { b.backoff = f }
}

func NewBoard(page Page, url string, opts ...Option) *Board {
	b := &Board{
		page:     page,
		url:      url,
		sel:      DefaultSelectors(),
		log:      zap.NewNop(),
		maxCards: defaultMaxCard,
		backoff:  defaultBackOff,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.pause == nil {
		b.pause = browser.NewPacer(0, 0).Between
	}
	b.cards = b.sel.Cards
	return b
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 5 * time.Second
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 3 * time.Minute
	return backoff.WithMaxRetries(b, 2)
}

// Open loads the search page and waits for the result list. The saved
// browser profile carries the session, so no login step is needed.
func (b *Board) Open(ctx context.Context) error {
	attempt := 0
	op := func() error {
		attempt++
		if err := b.page.Navigate(ctx, b.url); err != nil {
			b.log.Warn("поиск не открылся, повтор", zap.Int("attempt", attempt), zap.Error(err))
			return err
		}
		if err := b.page.WaitVisible(ctx, b.sel.ListReady, listTimeout); err != nil {
			b.log.Warn("список вакансий не появился, повтор", zap.Int("attempt", attempt), zap.Error(err))
			return err
		}
		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(b.backoff(), ctx)); err != nil {
		return fmt.Errorf("%w: %v", apply.ErrNavigation, err)
	}
	b.log.Info("страница поиска открыта", zap.String("url", b.url))
	return nil
}

// Count returns the number of cards in the left list, capped. Cards inside the
// list container are preferred so the detail panel's [data-job-id] is not counted.
func (b *Board) Count(ctx context.Context) int {
	if err := b.pause(ctx, 2*time.Second, 2*time.Second); err != nil {
		return 0
	}
	if err := b.page.WaitVisible(ctx, b.sel.CardsVisible, cardsTimeout); err != nil {
		b.log.Debug("карточки не видны", zap.Error(err))
	}

	scoped := b.sel.ListContainer + " >> nth=0 >> " + b.sel.ScopedCards
	n := b.page.Count(ctx, scoped)
	if n > 0 {
		b.cards = scoped
	} else {
		b.cards = b.sel.Cards
		n = b.page.Count(ctx, b.cards)
	}
	return min(max(n, 0), b.maxCards)
}

// Select кликает по i-й карточке, чтобы вакансия открылась в правой панели.
func (b *Board) Select(ctx context.Context, i int) error {
	if err := b.page.ClickNth(ctx, b.cards, i); err != nil {
		return fmt.Errorf("карточка %d: %w", i+1, err)
	}
	b.log.Info("вакансия выбрана", zap.Int("index", i+1))
	return nil
}

// Card reads the i-th card's markup; an unreadable card yields a zero Card.
func (b *Board) Card(ctx context.Context, i int) Card {
	html, err := b.page.OuterHTML(ctx, b.cards, i)
	if err != nil {
		b.log.Debug("разметка карточки недоступна", zap.Int("index", i+1), zap.Error(err))
		return Card{}
	}
	c, err := ParseCard(html)
	if err != nil {
		b.log.Debug("карточка не разобрана", zap.Int("index", i+1), zap.Error(err))
		return Card{}
	}
	return c
}

// ClickApply нажимает кнопку простой подачи выбранной вакансии. Кнопка-фильтр
// поиска с тем же текстом исключена. Нет кнопки за 2 секунды - вакансия пропускается.
func (b *Board) ClickApply(ctx context.Context) error {
	if err := b.pause(ctx, 300*time.Millisecond, 300*time.Millisecond); err != nil {
		return err
	}
	if err := b.page.WaitVisible(ctx, b.sel.ApplyButton, applyTimeout); err != nil {
		return fmt.Errorf("нет кнопки Candidature simplifiée: %w", err)
	}
	if err := b.page.Click(ctx, b.sel.ApplyButton); err != nil {
		return err
	}
	b.log.Info("нажата Candidature simplifiée")
	return nil
}

// DailyLimit reports the site's daily application limit message anywhere on the page.
func (b *Board) DailyLimit(ctx context.Context) bool {
	text := strings.ToLower(b.page.InnerText(ctx, b.sel.Body))
	if text == "" {
		return false
	}
	for _, p := range b.sel.LimitPhrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

// Scroll прокручивает список n раз, чтобы подгрузить новые карточки.
func (b *Board) Scroll(ctx context.Context, n int) {
	for i := 0; i < n; i++ {
		if err := b.pause(ctx, time.Second, 3*time.Second); err != nil {
			return
		}
		if err := b.page.ScrollContainer(ctx, b.sel.ScrollTarget); err != nil {
			b.log.Debug("прокрутка списка", zap.Int("attempt", i+1), zap.Error(err))
		}
		if err := b.pause(ctx, 2*time.Second, 4*time.Second); err != nil {
			return
		}
	}
}
