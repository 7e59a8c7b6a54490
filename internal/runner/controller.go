package runner

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"easyApply/internal/logger"
)

// Session runs one complete pass: launch the browser, work the list, clean up.
type Session func(ctx context.Context, runID string) error

// Controller запускает не более одного прогона в фоне и умеет его остановить.
type Controller struct {
	mu      sync.Mutex
	state   *State
	session Session
	log     *logger.Zap
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewController(state *State, session Session, log *logger.Zap) *Controller {
	if log == nil {
		log = logger.Nop()
	}
	return &Controller{state: state, session: session, log: log}
}

func (c *Controller) State() *State {
	return c.state
}

func (c *Controller) Status() Snapshot {
	return c.state.Snapshot()
}

// Start launches a run in the background. The run outlives ctx's cancellation;
// only Stop ends it.
func (c *Controller) Start(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, err := c.state.Begin()
	if err != nil {
		return "", err
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})
	c.cancel = cancel
	c.done = done

	go func() {
		defer close(done)
		defer cancel()

		err := c.run(runCtx, id)
		if err != nil {
			c.log.Error("прогон упал", zap.String("run_id", id), zap.Error(err))
		}
		c.state.Finish(err)
	}()

	c.log.Info("прогон запущен", zap.String("run_id", id))
	return id, nil
}

func (c *Controller) run(ctx context.Context, id string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return c.session(ctx, id)
}

// Stop asks the current run to finish after the job in progress.
// It returns false when nothing is running.
func (c *Controller) Stop() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel == nil || !c.state.Running() {
		return false
	}
	c.cancel()
	c.log.Info("остановка запрошена")
	return true
}

// Wait blocks until the current run, if any, has finished.
func (c *Controller) Wait() {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done != nil {
		<-done
	}
}
