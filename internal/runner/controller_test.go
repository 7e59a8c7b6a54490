package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestController_StartStop(t *testing.T) {
	started := make(chan struct{})
	session := func(ctx context.Context, runID string) error {
		close(started)
		<-ctx.Done()
		return nil
	}
	c := NewController(NewState(), session, nil)

	id, err := c.Start(context.Background())
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	assert.NoError(t, err)

	<-started
	snap := c.State().Snapshot()
	assert.True(t, snap.Running)
	assert.Equal(t, id, snap.RunID)

	_, err = c.Start(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	assert.True(t, c.Stop())
	c.Wait()

	snap = c.State().Snapshot()
	assert.False(t, snap.Running)
	assert.Nil(t, snap.Error)
	assert.False(t, c.Stop())
}

func TestController_RunOutlivesRequestContext(t *testing.T) {
	release := make(chan struct{})
	var runErr error
	session := func(ctx context.Context, _ string) error {
		<-release
		runErr = ctx.Err()
		return nil
	}
	c := NewController(NewState(), session, nil)

	reqCtx, cancel := context.WithCancel(context.Background())
	_, err := c.Start(reqCtx)
	require.NoError(t, err)
	cancel()

	close(release)
	c.Wait()
	assert.NoError(t, runErr)
}

func TestController_ErrorSurfacesInState(t *testing.T) {
	c := NewController(NewState(), func(context.Context, string) error {
		return errors.New("не удалось открыть страницу поиска: timeout")
	}, nil)

	_, err := c.Start(context.Background())
	require.NoError(t, err)
	c.Wait()

	snap := c.State().Snapshot()
	assert.False(t, snap.Running)
	require.NotNil(t, snap.Error)
	assert.Contains(t, *snap.Error, "timeout")
}

func TestController_PanicIsRecovered(t *testing.T) {
	c := NewController(NewState(), func(context.Context, string) error {
		panic("boom")
	}, nil)

	_, err := c.Start(context.Background())
	require.NoError(t, err)
	c.Wait()

	snap := c.State().Snapshot()
	require.NotNil(t, snap.Error)
	assert.Equal(t, "panic: boom", *snap.Error)
}

func TestController_RestartClearsError(t *testing.T) {
	fail := true
	c := NewController(NewState(), func(context.Context, string) error {
		if fail {
			return errors.New("boom")
		}
		return nil
	}, nil)

	_, err := c.Start(context.Background())
	require.NoError(t, err)
	c.Wait()
	require.NotNil(t, c.State().Snapshot().Error)

	fail = false
	_, err = c.Start(context.Background())
	require.NoError(t, err)
	c.Wait()
	assert.Nil(t, c.State().Snapshot().Error)
}

func TestController_WaitWithoutRun(t *testing.T) {
	c := NewController(NewState(), nil, nil)

	done := make(chan struct{})
	go func() {
		c.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait блокируется без прогона")
	}
}

func TestState_SnapshotCounts(t *testing.T) {
	s := NewState()
	s.newID = func() string { return "fixed" }

	id, err := s.Begin()
	require.NoError(t, err)
	assert.Equal(t, "fixed", id)
	s.IncApplied()
	s.IncApplied()

	snap := s.Snapshot()
	assert.Equal(t, Snapshot{Running: true, AppliedCount: 2, RunID: "fixed"}, snap)

	s.Finish(nil)
	_, err = s.Begin()
	require.NoError(t, err)
	assert.Zero(t, s.Snapshot().AppliedCount)
}
