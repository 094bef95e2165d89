package playback

import (
	"context"
	"testing"
	"time"
)

func TestRemainingSecondsRecomputesFromEpoch(t *testing.T) {
	now := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	it := item("a", 10)
	state := &State{
		Phase:           PhasePlaying,
		Current:         &it,
		StartedAtMS:     now.Add(-7 * time.Second).UnixMilli(),
		DurationSeconds: 10,
	}
	if got := state.RemainingSeconds(now); got != 3 {
		t.Fatalf("expected 3s remaining, got %d", got)
	}
}

func TestRemainingSecondsClampsToZero(t *testing.T) {
	now := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	it := item("a", 10)
	state := &State{
		Phase:           PhasePlaying,
		Current:         &it,
		StartedAtMS:     now.Add(-30 * time.Second).UnixMilli(),
		DurationSeconds: 10,
	}
	if got := state.RemainingSeconds(now); got != 0 {
		t.Fatalf("expected clamp to zero, got %d", got)
	}
}

func TestRemainingSecondsFutureEpochClampsToDuration(t *testing.T) {
	now := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	it := item("a", 10)
	state := &State{
		Phase:           PhasePlaying,
		Current:         &it,
		StartedAtMS:     now.Add(time.Minute).UnixMilli(),
		DurationSeconds: 10,
	}
	if got := state.RemainingSeconds(now); got != 10 {
		t.Fatalf("expected clamp to duration, got %d", got)
	}
}

func TestProgressFractionBounds(t *testing.T) {
	now := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	it := item("a", 10)
	state := &State{
		Phase:           PhasePlaying,
		Current:         &it,
		StartedAtMS:     now.Add(-5 * time.Second).UnixMilli(),
		DurationSeconds: 10,
	}
	if got := state.ProgressFraction(now); got != 0.5 {
		t.Fatalf("expected half progress, got %v", got)
	}

	state.DurationSeconds = 0
	if got := state.ProgressFraction(now); got != 1 {
		t.Fatalf("expected degenerate duration to report done, got %v", got)
	}
}

func TestStateRoundTripsEpochsThroughStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	it := item("a", 42)
	original := &State{
		Phase:            PhasePaused,
		Current:          nil,
		StartedAtMS:      0,
		PauseStartedAtMS: 1748800000123,
		PauseSeconds:     15,
		Backlog:          []Item{it},
		Generation:       9,
		UpdatedAtMS:      1748800000500,
	}
	if err := store.Save(ctx, original); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.PauseStartedAtMS != original.PauseStartedAtMS {
		t.Fatalf("pause epoch lost: %d != %d", loaded.PauseStartedAtMS, original.PauseStartedAtMS)
	}
	if loaded.Generation != 9 || loaded.PauseSeconds != 15 {
		t.Fatalf("metadata lost: %+v", loaded)
	}
	if len(loaded.Backlog) != 1 || loaded.Backlog[0].ID != "a" || loaded.Backlog[0].DurationSeconds != 42 {
		t.Fatalf("backlog lost: %+v", loaded.Backlog)
	}
}

func TestEmptyStoreLoadsNil(t *testing.T) {
	loaded, err := NewMemoryStore().Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded != nil {
		t.Fatalf("expected nil state from empty store, got %+v", loaded)
	}
}
