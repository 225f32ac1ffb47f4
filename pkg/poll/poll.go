// Package poll runs a function on a fixed cadence until its context is
// canceled. The chat panel uses it to refresh message threads.
package poll

import (
	"context"
	"fmt"
	"time"

	"github.com/toychauz/toycha-backend/pkg/logger"
)

const defaultInterval = 30 * time.Second

// Func is one polling cycle. Returning an error logs the failure and keeps
// the ticker running; polling only stops when the context is canceled.
type Func func(ctx context.Context) error

// PollerParams configure a Poller.
type PollerParams struct {
	Logger   *logger.Logger
	Name     string
	Interval time.Duration
	Run      Func
}

// Poller invokes a Func once immediately and then on every tick.
type Poller struct {
	logg     *logger.Logger
	name     string
	interval time.Duration
	run      Func
}

// NewPoller builds a poller.
func NewPoller(params PollerParams) (*Poller, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Run == nil {
		return nil, fmt.Errorf("run func required")
	}
	name := params.Name
	if name == "" {
		name = "poller"
	}
	interval := params.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Poller{
		logg:     params.Logger,
		name:     name,
		interval: interval,
		run:      params.Run,
	}, nil
}

// Interval reports the configured cadence.
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Run blocks until ctx is canceled, executing one cycle up front so callers
// see fresh data before the first tick elapses.
func (p *Poller) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = p.logg.WithField(ctx, "poller", p.name)
	p.cycle(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logg.Info(ctx, "poller context canceled")
			return ctx.Err()
		case <-ticker.C:
			p.cycle(ctx)
		}
	}
}

func (p *Poller) cycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := p.run(ctx); err != nil {
		p.logg.Error(ctx, "poll cycle failed", err)
	}
}
