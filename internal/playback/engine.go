package playback

import (
	"context"
	"sync"
	"time"

	pkgerrors "github.com/venuecast/venuecast-backend/pkg/errors"
	"github.com/venuecast/venuecast-backend/pkg/logger"
	"github.com/venuecast/venuecast-backend/pkg/metrics"
)

// Broadcaster pushes state snapshots to connected viewers. Pushes are
// advisory; clients re-derive the truth from GetState.
type Broadcaster interface {
	PlaybackChanged(ctx context.Context, state StateDTO)
}

// EngineParams groups dependencies for the scheduler engine.
type EngineParams struct {
	Store        Store
	PauseSeconds int
	Log          *logger.Logger
	Metrics      *metrics.PlaybackMetrics
	Broadcaster  Broadcaster
	Now          func() time.Time
}

// Engine is the single-slot display scheduler. At most one item plays at a
// time; expired items hand off through a fixed pause when more work is
// queued. All countdowns derive from persisted epoch timestamps, so restarts
// resume mid-rotation instead of resetting.
type Engine struct {
	mu        sync.Mutex
	state     *State
	store     Store
	pause     int
	log       *logger.Logger
	metrics   *metrics.PlaybackMetrics
	broadcast Broadcaster
	now       func() time.Time
}

// NewEngine builds the scheduler. Call Start before use to recover any
// persisted rotation.
func NewEngine(params EngineParams) (*Engine, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "playback store is required")
	}
	if params.Log == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	if params.PauseSeconds <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pause seconds must be positive")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		state:     NewState(),
		store:     params.Store,
		pause:     params.PauseSeconds,
		log:       params.Log,
		metrics:   params.Metrics,
		broadcast: params.Broadcaster,
		now:       now,
	}, nil
}

// Start loads the persisted document and fast-forwards any phase that
// expired while the process was down.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	saved, err := e.store.Load(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load playback state")
	}
	if saved != nil {
		e.state = saved
	}
	e.advanceLocked(ctx)
	return e.persistLocked(ctx)
}

// Enqueue adds an approved item to the backlog. When the slot is free the
// item starts immediately.
func (e *Engine) Enqueue(ctx context.Context, item Item) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state.Backlog = append(e.state.Backlog, item)
	e.advanceLocked(ctx)
	if err := e.persistLocked(ctx); err != nil {
		return err
	}
	e.broadcastLocked(ctx)
	return nil
}

// Tick advances expired phases. Safe to call at any cadence; multiple missed
// ticks collapse into one recomputation because countdowns are epoch-based.
func (e *Engine) Tick(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	before := e.state.Generation
	e.advanceLocked(ctx)
	if e.state.Generation == before {
		return nil
	}
	if err := e.persistLocked(ctx); err != nil {
		return err
	}
	e.broadcastLocked(ctx)
	return nil
}

// Skip cuts the active item short. The usual pause still separates it from
// the next one.
func (e *Engine) Skip(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.Phase != PhasePlaying {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "nothing is playing")
	}
	e.endItemLocked(ctx, e.now().UnixMilli())
	e.advanceLocked(ctx)
	if err := e.persistLocked(ctx); err != nil {
		return err
	}
	e.broadcastLocked(ctx)
	return nil
}

// Reset clears the rotation entirely. In-flight ticks observe the bumped
// generation and the emptied document instead of firing against stale state.
func (e *Engine) Reset(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	gen := e.state.Generation + 1
	e.state = NewState()
	e.state.Generation = gen
	e.transition(PhaseIdle)
	if err := e.store.Clear(ctx); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear playback state")
	}
	if err := e.persistLocked(ctx); err != nil {
		return err
	}
	e.broadcastLocked(ctx)
	return nil
}

// State returns the current snapshot with countdowns resolved now.
func (e *Engine) State(ctx context.Context) StateDTO {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Snapshot(e.now())
}

// advanceLocked drives the state machine until nothing else is expired. A
// long gap between ticks can roll through several items; each handoff reuses
// the idealized epoch (start + duration) so independently recovering viewers
// land on identical timestamps.
func (e *Engine) advanceLocked(ctx context.Context) {
	for {
		now := e.now()
		switch e.state.Phase {
		case PhasePlaying:
			if e.state.RemainingSeconds(now) > 0 {
				return
			}
			endMS := e.state.StartedAtMS + int64(e.state.DurationSeconds)*1000
			if endMS > now.UnixMilli() {
				endMS = now.UnixMilli()
			}
			e.endItemLocked(ctx, endMS)

		case PhasePaused:
			if e.state.PauseRemainingSeconds(now) > 0 {
				return
			}
			startMS := e.state.PauseStartedAtMS + int64(e.state.PauseSeconds)*1000
			if startMS > now.UnixMilli() {
				startMS = now.UnixMilli()
			}
			e.promoteLocked(ctx, startMS)

		case PhaseIdle:
			if len(e.state.Backlog) == 0 {
				return
			}
			e.promoteLocked(ctx, now.UnixMilli())

		default:
			return
		}
	}
}

// endItemLocked clears the active slot. With queued work the scheduler holds
// a fixed gap before the next item; otherwise it tears down to idle.
func (e *Engine) endItemLocked(ctx context.Context, atMS int64) {
	ended := e.state.Current
	e.state.Current = nil
	e.state.StartedAtMS = 0
	e.state.DurationSeconds = 0
	e.state.Generation++

	if ended != nil {
		e.log.Info(e.log.WithField(ctx, "item_id", ended.ID), "playback item finished")
	}

	if len(e.state.Backlog) == 0 {
		e.state.Phase = PhaseIdle
		e.state.PauseStartedAtMS = 0
		e.state.PauseSeconds = 0
		e.transition(PhaseIdle)
		return
	}
	e.state.Phase = PhasePaused
	e.state.PauseStartedAtMS = atMS
	e.state.PauseSeconds = e.pause
	e.transition(PhasePaused)
}

// promoteLocked pops backlog entries until one with a positive duration is
// found. Degenerate items are dropped with a log line rather than stalling
// the slot.
func (e *Engine) promoteLocked(ctx context.Context, startMS int64) {
	for len(e.state.Backlog) > 0 {
		next := e.state.Backlog[0]
		e.state.Backlog = e.state.Backlog[1:]
		if next.DurationSeconds <= 0 {
			e.log.Warn(e.log.WithField(ctx, "item_id", next.ID), "skipping item with non-positive duration")
			e.state.Generation++
			continue
		}
		e.state.Phase = PhasePlaying
		e.state.Current = &next
		e.state.StartedAtMS = startMS
		e.state.DurationSeconds = next.DurationSeconds
		e.state.PauseStartedAtMS = 0
		e.state.PauseSeconds = 0
		e.state.Generation++
		e.transition(PhasePlaying)
		e.metrics.ItemStarted(next.Kind, time.Duration(next.DurationSeconds)*time.Second)
		e.log.Info(e.log.WithField(ctx, "item_id", next.ID), "playback item started")
		return
	}

	e.state.Phase = PhaseIdle
	e.state.Current = nil
	e.state.StartedAtMS = 0
	e.state.DurationSeconds = 0
	e.state.PauseStartedAtMS = 0
	e.state.PauseSeconds = 0
	e.state.Generation++
	e.transition(PhaseIdle)
}

func (e *Engine) persistLocked(ctx context.Context) error {
	e.state.UpdatedAtMS = e.now().UnixMilli()
	if err := e.store.Save(ctx, e.state); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save playback state")
	}
	return nil
}

func (e *Engine) broadcastLocked(ctx context.Context) {
	if e.broadcast == nil {
		return
	}
	e.broadcast.PlaybackChanged(ctx, e.state.Snapshot(e.now()))
}

func (e *Engine) transition(to Phase) {
	e.metrics.PhaseTransition(string(to))
}
