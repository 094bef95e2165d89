package submissions

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/venuecast/venuecast-backend/internal/playback"
	"github.com/venuecast/venuecast-backend/internal/rankings"
	"github.com/venuecast/venuecast-backend/pkg/db/models"
	"github.com/venuecast/venuecast-backend/pkg/enums"
	"github.com/venuecast/venuecast-backend/pkg/logger"
)

type manualClock struct {
	mu sync.Mutex
	t  time.Time
}

func newManualClock() *manualClock {
	return &manualClock{t: time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// Walks one submission through the whole venue flow: patron submits, staff
// sees it pending, approves it, the scheduler plays it for its full duration,
// tears down to idle, and the sender holds the top leaderboard spot.
func TestSubmitApprovePlayExpireRanks(t *testing.T) {
	ctx := context.Background()
	clock := newManualClock()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.RankingEntry{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	rankingsService, err := rankings.NewService(rankings.ServiceParams{
		Repo: rankings.NewRepository(conn),
	})
	if err != nil {
		t.Fatalf("new rankings service: %v", err)
	}

	engine, err := playback.NewEngine(playback.EngineParams{
		Store:        playback.NewMemoryStore(),
		PauseSeconds: 15,
		Log:          logg,
		Now:          clock.Now,
	})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if err := engine.Start(ctx); err != nil {
		t.Fatalf("start engine: %v", err)
	}

	svc, err := NewService(ServiceParams{
		Repo:     newFakeRepo(),
		Rankings: rankingsService,
		Playback: engine,
		Log:      logg,
		Now:      clock.Now,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	sub, err := svc.Create(ctx, CreateInput{
		Kind:           enums.SubmissionKindText,
		Text:           "feliz cumple Ana",
		DisplaySeconds: 10,
		Price:          decimal.NewFromInt(50),
		Sender:         "Ana",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	pending, err := svc.ListPending(ctx)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != sub.ID {
		t.Fatalf("expected the submission queued, got %+v", pending)
	}

	if _, err := svc.Approve(ctx, sub.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	state := engine.State(ctx)
	if state.Phase != playback.PhasePlaying || state.Current == nil || state.Current.ID != sub.ID {
		t.Fatalf("expected approved item playing, got %+v", state)
	}
	if state.RemainingSeconds != 10 {
		t.Fatalf("expected full duration remaining, got %d", state.RemainingSeconds)
	}

	clock.Advance(7 * time.Second)
	if got := engine.State(ctx).RemainingSeconds; got != 3 {
		t.Fatalf("expected 3s remaining after 7s elapsed, got %d", got)
	}

	clock.Advance(4 * time.Second)
	if err := engine.Tick(ctx); err != nil {
		t.Fatalf("tick: %v", err)
	}
	state = engine.State(ctx)
	if state.Phase != playback.PhaseIdle || state.Current != nil {
		t.Fatalf("expected idle after expiry with empty backlog, got %+v", state)
	}

	top, err := rankingsService.List(ctx, 10)
	if err != nil {
		t.Fatalf("list rankings: %v", err)
	}
	if len(top) != 1 || top[0].Name != "Ana" || !top[0].Points.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected Ana on top with 50 points, got %+v", top)
	}
}
