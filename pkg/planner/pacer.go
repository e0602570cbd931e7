package planner

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultStagePacing keeps consecutive stages of one run apart.
const DefaultStagePacing = 2 * time.Second

// Pacer spaces out the stages of a single run. Wait is called before a stage
// starts and Done once it has finished, successfully or not.
type Pacer interface {
	Wait(ctx context.Context) error
	Done()
}

// PacerFactory builds a fresh Pacer per run so runs never share pacing state.
type PacerFactory func() Pacer

// RatePacer lets the first stage through immediately and holds each
// following one until interval has passed since the previous stage finished.
// A stage slower than interval still leaves the full gap before the next.
type RatePacer struct {
	interval time.Duration
	limiter  *rate.Limiter
}

func NewRatePacer(interval time.Duration) Pacer {
	if interval <= 0 {
		return NoPacer{}
	}
	return &RatePacer{interval: interval}
}

func (p *RatePacer) Wait(ctx context.Context) error {
	if p.limiter == nil {
		return ctx.Err()
	}
	return p.limiter.Wait(ctx)
}

// Done restarts the pacing window at the current instant: the fresh limiter
// is drained so its next token only appears interval from now.
func (p *RatePacer) Done() {
	now := time.Now()
	p.limiter = rate.NewLimiter(rate.Every(p.interval), 1)
	p.limiter.AllowN(now, 1)
}

// RatePacerFactory returns a factory of RatePacers with the given interval.
func RatePacerFactory(interval time.Duration) PacerFactory {
	return func() Pacer {
		return NewRatePacer(interval)
	}
}

type NoPacer struct{}

func (NoPacer) Wait(ctx context.Context) error {
	return ctx.Err()
}

func (NoPacer) Done() {}
