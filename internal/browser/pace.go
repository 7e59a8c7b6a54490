package browser

import (
	"context"
	"math/rand/v2"
	"time"
)

// Pacer делает случайные паузы между действиями, как человек.
type Pacer struct {
	Min time.Duration
	Max time.Duration
}

func NewPacer(min, max time.Duration) *Pacer {
	if max < min {
		max = min
	}
	return &Pacer{Min: min, Max: max}
}

// Wait pauses for a random duration within the configured bounds.
func (p *Pacer) Wait(ctx context.Context) error {
	return p.Between(ctx, p.Min, p.Max)
}

// Between pauses for a uniformly random duration in [lo, hi] or until ctx is done.
func (p *Pacer) Between(ctx context.Context, lo, hi time.Duration) error {
	d := lo
	if hi > lo {
		d += time.Duration(rand.Int64N(int64(hi - lo)))
	}
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
