package runner

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"easyApply/internal/apply"
	"easyApply/internal/logger"
)

type loopFixture struct {
	board   *fakeBoard
	nav     *fakeApplier
	journal *fakeJournal
	pauses  *pauses
	state   *State
	log     *logger.Zap
	logs    *observer.ObservedLogs
	ctx     context.Context
	cancel  context.CancelFunc
}

func newFixture(t *testing.T, board *fakeBoard, nav *fakeApplier) *loopFixture {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	core, logs := observer.New(zap.InfoLevel)
	f := &loopFixture{
		board:   board,
		nav:     nav,
		journal: &fakeJournal{},
		pauses:  &pauses{cancel: cancel},
		state:   NewState(),
		log:     &logger.Zap{Logger: zap.New(core)},
		logs:    logs,
		ctx:     ctx,
		cancel:  cancel,
	}
	if board.onScroll == nil {
		// один круг по списку, дальше стоп
		board.onScroll = func(n int) {
			if n == 5 {
				cancel()
			}
		}
	}
	return f
}

func (f *loopFixture) run(t *testing.T) error {
	t.Helper()
	loop := New(f.board, f.nav, f.state, f.journal, f.log, Config{Pause: f.pauses.pause})
	return loop.Run(f.ctx, "run-1")
}

func TestLoop_CountsOnlySubmitted(t *testing.T) {
	nav := &fakeApplier{steps: []applyStep{
		{res: apply.Result{Outcome: apply.Submitted, State: apply.StateClosed, Steps: 2}},
		{res: apply.Result{Outcome: apply.Abandoned, State: apply.StateAborted, Steps: 1}, err: fmt.Errorf("шаг 2: %w", apply.ErrValidation)},
		{res: apply.Result{Outcome: apply.Submitted, State: apply.StateClosed, Steps: 4}},
	}}
	f := newFixture(t, &fakeBoard{counts: []int{3}}, nav)

	require.NoError(t, f.run(t))

	assert.Equal(t, 2, f.state.Snapshot().AppliedCount)
	assert.Equal(t, []string{"submitted", "abandoned", "submitted"}, f.journal.outcomes())
	assert.Equal(t, 1, nav.closes)
	assert.Equal(t, 3, nav.waits)
	assert.Equal(t, []int{5}, f.board.scrolls)
	assert.Equal(t, []string{"run-1"}, f.journal.started)
	require.Len(t, f.journal.finished, 1)
	assert.Equal(t, finished{StatusStopped, 2, ""}, f.journal.finished[0])

	rejected := f.logs.FilterMessage("заявка не отправлена").All()
	require.Len(t, rejected, 1)
	assert.Equal(t, "validation", rejected[0].ContextMap()["kind"])
	assert.Equal(t, "Job 1 @ Acme", rejected[0].ContextMap()["job"])
}

func TestLoop_DailyLimitBeforeApply(t *testing.T) {
	f := newFixture(t, &fakeBoard{counts: []int{3}, limitAt: 1}, &fakeApplier{})

	require.NoError(t, f.run(t))

	assert.True(t, f.board.notified)
	assert.Zero(t, f.board.applyClicks)
	assert.Zero(t, f.nav.applied)
	assert.Equal(t, finished{StatusDailyLimit, 0, ""}, f.journal.finished[0])
	assert.Nil(t, f.state.Snapshot().Error)
}

func TestLoop_DailyLimitAfterSubmitIsNotCounted(t *testing.T) {
	// 1: после выбора, 2: после кнопки, 3: после мастера
	f := newFixture(t, &fakeBoard{counts: []int{3}, limitAt: 3}, &fakeApplier{})

	require.NoError(t, f.run(t))

	assert.True(t, f.board.notified)
	assert.Equal(t, 1, f.nav.applied)
	assert.Equal(t, 1, f.nav.closes)
	assert.Zero(t, f.state.Snapshot().AppliedCount)
	assert.Empty(t, f.journal.apps)
}

func TestLoop_OpenFailureIsFatal(t *testing.T) {
	board := &fakeBoard{openErr: fmt.Errorf("%w: timeout 45000ms", apply.ErrNavigation)}
	f := newFixture(t, board, &fakeApplier{})

	err := f.run(t)

	require.ErrorIs(t, err, apply.ErrNavigation)
	assert.Equal(t, apply.KindNavigation, apply.Classify("open", err).Kind)
	assert.Zero(t, board.countCalls)
	require.Len(t, f.journal.finished, 1)
	assert.Equal(t, StatusFailed, f.journal.finished[0].status)
	assert.Contains(t, f.journal.finished[0].errText, "timeout")
}

func TestLoop_OpenCancelledIsStop(t *testing.T) {
	board := &fakeBoard{openErr: context.Canceled}
	f := newFixture(t, board, &fakeApplier{})
	f.cancel()

	require.NoError(t, f.run(t))
	assert.Equal(t, StatusStopped, f.journal.finished[0].status)
}

func TestLoop_EmptyListScrollsThenWaits(t *testing.T) {
	f := newFixture(t, &fakeBoard{counts: []int{0}}, &fakeApplier{})
	f.pauses.stopAt = 15 * time.Second

	require.NoError(t, f.run(t))

	assert.Equal(t, []int{3}, f.board.scrolls)
	assert.Equal(t, 2, f.board.countCalls)
	assert.Equal(t, []time.Duration{3 * time.Second, 15 * time.Second}, f.pauses.calls)
	assert.Equal(t, StatusStopped, f.journal.finished[0].status)
	assert.Zero(t, f.nav.applied)
}

func TestLoop_EmptyListRecoversAfterScroll(t *testing.T) {
	f := newFixture(t, &fakeBoard{counts: []int{0, 2}}, &fakeApplier{})

	require.NoError(t, f.run(t))

	assert.Equal(t, []int{3, 5}, f.board.scrolls)
	assert.Equal(t, 2, f.nav.applied)
	assert.Equal(t, 2, f.state.Snapshot().AppliedCount)
}

func TestLoop_JobFailuresAreIsolated(t *testing.T) {
	board := &fakeBoard{
		counts:    []int{3},
		selectErr: map[int]error{0: errors.New("карточка 1: timeout")},
		applyErr:  map[int]error{1: errors.New("button not found")},
	}
	f := newFixture(t, board, &fakeApplier{})

	require.NoError(t, f.run(t))

	assert.Equal(t, []int{0, 1, 2}, board.selected)
	assert.Equal(t, 1, f.nav.applied)
	assert.Equal(t, 1, f.nav.closes)
	assert.Equal(t, 1, f.nav.waits)
	assert.Equal(t, []string{"skipped", "submitted"}, f.journal.outcomes())
	assert.Equal(t, "button not found", f.journal.apps[0].Reason)
	assert.Equal(t, "101", f.journal.apps[0].JobID)
	assert.Equal(t, 1, f.state.Snapshot().AppliedCount)
}

func TestLoop_BrowserClosedEndsRun(t *testing.T) {
	nav := &fakeApplier{steps: []applyStep{
		{res: apply.Result{Outcome: apply.Incomplete}, err: errors.New("Target page, context or browser has been closed")},
	}}
	f := newFixture(t, &fakeBoard{counts: []int{3}}, nav)

	require.NoError(t, f.run(t))

	assert.Equal(t, []int{0}, f.board.selected)
	assert.Zero(t, nav.waits)
	assert.Equal(t, StatusStopped, f.journal.finished[0].status)
}

func TestLoop_StopFinishesCurrentJob(t *testing.T) {
	nav := &fakeApplier{}
	f := newFixture(t, &fakeBoard{counts: []int{3}}, nav)
	nav.onApply = func(context.Context) { f.cancel() }

	require.NoError(t, f.run(t))

	require.Len(t, nav.ctxErrors, 1)
	assert.NoError(t, nav.ctxErrors[0])
	assert.Equal(t, 1, nav.waits)
	assert.Equal(t, []int{0}, f.board.selected)
	assert.Equal(t, 1, f.state.Snapshot().AppliedCount)
	assert.Equal(t, finished{StatusStopped, 1, ""}, f.journal.finished[0])
}

func TestLoop_BetweenJobsPacing(t *testing.T) {
	f := newFixture(t, &fakeBoard{counts: []int{2}}, &fakeApplier{})
	calls := 0
	loop := New(f.board, f.nav, f.state, f.journal, nil, Config{
		Pause: f.pauses.pause,
		Between: func(context.Context) error {
			calls++
			return nil
		},
	})

	require.NoError(t, loop.Run(f.ctx, "run-2"))
	assert.Equal(t, 2, calls)
	assert.Contains(t, f.pauses.calls, 600*time.Millisecond)
}
