package playback

import (
	"context"
	"fmt"
	"time"

	"github.com/venuecast/venuecast-backend/pkg/logger"
)

const defaultTickInterval = time.Second

// RunnerParams configure the tick loop.
type RunnerParams struct {
	Logger   *logger.Logger
	Engine   *Engine
	Interval time.Duration
}

// Runner drives the engine on a fixed cadence. A failed tick is logged and
// the loop continues; the next tick recomputes everything from the persisted
// epochs, so no single failure wedges the rotation.
type Runner struct {
	logg     *logger.Logger
	engine   *Engine
	interval time.Duration
}

// NewRunner builds the tick loop.
func NewRunner(params RunnerParams) (*Runner, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Engine == nil {
		return nil, fmt.Errorf("engine required")
	}
	interval := params.Interval
	if interval <= 0 {
		interval = defaultTickInterval
	}
	return &Runner{
		logg:     params.Logger,
		engine:   params.Engine,
		interval: interval,
	}, nil
}

// Run ticks the engine until the context is canceled.
func (r *Runner) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logg.Info(ctx, "playback runner context canceled")
			return ctx.Err()
		case <-ticker.C:
			if err := r.engine.Tick(ctx); err != nil {
				r.logg.Error(ctx, "playback tick failed", err)
			}
		}
	}
}
