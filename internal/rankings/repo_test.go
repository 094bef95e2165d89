package rankings

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/venuecast/venuecast-backend/pkg/db/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.RankingEntry{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

func TestRepositoryCreditUpsertsAndAccumulates(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))

	if err := repo.Credit(ctx, "alice", "Alice", decimal.NewFromInt(10)); err != nil {
		t.Fatalf("first credit failed: %v", err)
	}
	if err := repo.Credit(ctx, "alice", "ALICE", decimal.NewFromInt(5)); err != nil {
		t.Fatalf("second credit failed: %v", err)
	}

	entries, err := repo.List(ctx, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one accumulated row, got %d", len(entries))
	}
	if !entries[0].Points.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("expected 15 points, got %s", entries[0].Points)
	}
	if entries[0].DisplayName != "Alice" {
		t.Fatalf("expected first display name to win, got %s", entries[0].DisplayName)
	}
}

func TestRepositoryListOrdersByPoints(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))

	seed := []struct {
		name   string
		points int64
	}{
		{"carol", 30},
		{"alice", 10},
		{"bob", 20},
	}
	for _, s := range seed {
		if err := repo.Credit(ctx, s.name, s.name, decimal.NewFromInt(s.points)); err != nil {
			t.Fatalf("credit %s: %v", s.name, err)
		}
	}

	entries, err := repo.List(ctx, 2)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected limit applied, got %d rows", len(entries))
	}
	if entries[0].NormalizedName != "carol" || entries[1].NormalizedName != "bob" {
		t.Fatalf("unexpected order: %s, %s", entries[0].NormalizedName, entries[1].NormalizedName)
	}
}

func TestRepositoryReset(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))

	if err := repo.Credit(ctx, "alice", "Alice", decimal.NewFromInt(10)); err != nil {
		t.Fatalf("credit failed: %v", err)
	}
	if err := repo.Reset(ctx); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	entries, err := repo.List(ctx, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty leaderboard, got %d rows", len(entries))
	}
}
