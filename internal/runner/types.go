// Package runner крутит цикл подачи: список вакансий -> карточка -> мастер
// простой подачи -> следующая карточка, пока не остановят или не упрёмся в дневной лимит.
package runner

import (
	"context"
	"time"

	"easyApply/internal/apply"
	"easyApply/internal/jobs"
)

// Board - страница со списком вакансий.
type Board interface {
	Open(ctx context.Context) error
	Count(ctx context.Context) int
	Select(ctx context.Context, i int) error
	Card(ctx context.Context, i int) jobs.Card
	ClickApply(ctx context.Context) error
	DailyLimit(ctx context.Context) bool
	NotifyDailyLimit(ctx context.Context)
	Scroll(ctx context.Context, n int)
}

// Applier проходит мастер подачи для открытой вакансии.
type Applier interface {
	Apply(ctx context.Context) (apply.Result, error)
	Close(ctx context.Context)
	WaitClosed(ctx context.Context, timeout time.Duration)
}

// Config содержит паузы цикла. Нулевые значения заменяются значениями по умолчанию.
type Config struct {
	EmptyWait    time.Duration               // Ожидание, если в списке нет карточек
	CloseTimeout time.Duration               // Сколько ждать исчезновения окна подачи
	Settle       time.Duration               // Короткая пауза после закрытия окна
	Between      func(context.Context) error // Пауза между вакансиями (MIN/MAX_DELAY_SEC)
	Pause        apply.PauseFunc             // Фиксированные паузы; в тестах подменяется
}

// Статусы прогона в журнале.
const (
	StatusStopped    = "stopped"
	StatusFailed     = "failed"
	StatusDailyLimit = "daily_limit"
)

// Исходы попытки, которые пишутся в журнал помимо apply.Outcome.
const outcomeSkipped = "skipped"
