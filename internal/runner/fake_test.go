package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"easyApply/internal/apply"
	"easyApply/internal/database"
	"easyApply/internal/jobs"
)

type fakeBoard struct {
	openErr   error
	counts    []int // по одному значению на вызов Count, дальше последнее
	selectErr map[int]error
	applyErr  map[int]error
	limitAt   int // номер вызова DailyLimit, начиная с которого лимит виден; 0 - никогда
	onScroll  func(n int)

	countCalls  int
	limitCalls  int
	selected    []int
	applyClicks int
	scrolls     []int
	notified    bool
}

func (b *fakeBoard) Open(context.Context) error { return b.openErr }

func (b *fakeBoard) Count(context.Context) int {
	b.countCalls++
	if len(b.counts) == 0 {
		return 0
	}
	i := min(b.countCalls, len(b.counts)) - 1
	return b.counts[i]
}

func (b *fakeBoard) Select(_ context.Context, i int) error {
	b.selected = append(b.selected, i)
	return b.selectErr[i]
}

func (b *fakeBoard) Card(_ context.Context, i int) jobs.Card {
	return jobs.Card{ID: fmt.Sprint(100 + i), Title: fmt.Sprintf("Job %d", i), Company: "Acme"}
}

func (b *fakeBoard) ClickApply(context.Context) error {
	i := b.selected[len(b.selected)-1]
	b.applyClicks++
	return b.applyErr[i]
}

func (b *fakeBoard) DailyLimit(context.Context) bool {
	b.limitCalls++
	return b.limitAt > 0 && b.limitCalls >= b.limitAt
}

func (b *fakeBoard) NotifyDailyLimit(context.Context) { b.notified = true }

func (b *fakeBoard) Scroll(_ context.Context, n int) {
	b.scrolls = append(b.scrolls, n)
	if b.onScroll != nil {
		b.onScroll(n)
	}
}

type applyStep struct {
	res apply.Result
	err error
}

type fakeApplier struct {
	steps   []applyStep
	onApply func(ctx context.Context)

	applied   int
	closes    int
	waits     int
	ctxErrors []error
}

func (a *fakeApplier) Apply(ctx context.Context) (apply.Result, error) {
	if a.onApply != nil {
		a.onApply(ctx)
	}
	a.ctxErrors = append(a.ctxErrors, ctx.Err())
	step := applyStep{res: apply.Result{Outcome: apply.Submitted, State: apply.StateClosed, Steps: 3}}
	if a.applied < len(a.steps) {
		step = a.steps[a.applied]
	}
	a.applied++
	return step.res, step.err
}

func (a *fakeApplier) Close(context.Context) { a.closes++ }

func (a *fakeApplier) WaitClosed(context.Context, time.Duration) { a.waits++ }

type finished struct {
	status  string
	applied int
	errText string
}

type fakeJournal struct {
	mu       sync.Mutex
	started  []string
	finished []finished
	apps     []database.Application
}

func (j *fakeJournal) StartRun(_ context.Context, id string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.started = append(j.started, id)
	return nil
}

func (j *fakeJournal) FinishRun(_ context.Context, _ string, status string, applied int, errText string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.finished = append(j.finished, finished{status, applied, errText})
	return nil
}

func (j *fakeJournal) RecordApplication(_ context.Context, a *database.Application) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.apps = append(j.apps, *a)
	return nil
}

func (j *fakeJournal) ListApplications(context.Context, int) ([]database.Application, error) {
	return nil, errors.New("not implemented")
}

func (j *fakeJournal) LogLLMRequest(context.Context, string, string, string, string, int) error {
	return nil
}

func (j *fakeJournal) outcomes() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []string
	for _, a := range j.apps {
		out = append(out, a.Outcome)
	}
	return out
}

// pauses records fixed waits without sleeping.
type pauses struct {
	calls  []time.Duration
	cancel context.CancelFunc
	stopAt time.Duration
}

func (p *pauses) pause(ctx context.Context, lo, _ time.Duration) error {
	p.calls = append(p.calls, lo)
	if p.stopAt > 0 && lo == p.stopAt && p.cancel != nil {
		p.cancel()
	}
	return ctx.Err()
}
