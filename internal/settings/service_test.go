package settings

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/venuecast/venuecast-backend/pkg/errors"
)

type fakeNotifier struct {
	changed int
}

func (f *fakeNotifier) SettingsChanged(ctx context.Context) { f.changed++ }

func newTestService(t *testing.T) (Service, *fakeNotifier) {
	t.Helper()
	notifier := &fakeNotifier{}
	svc, err := NewService(ServiceParams{
		Store:    NewMemoryStore(),
		Notifier: notifier,
		Now:      func() time.Time { return time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, notifier
}

func TestGetReturnsDefaultsWhenUnset(t *testing.T) {
	svc, _ := newTestService(t)

	settings, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if settings.PollIntervalSeconds != 5 || !settings.ShowRankings {
		t.Fatalf("unexpected defaults %+v", settings)
	}
	if !settings.SystemOn || !settings.EnableImages || !settings.EnableText {
		t.Fatalf("fresh venue must start switched on: %+v", settings)
	}
}

func TestUpdateTogglesSystemOff(t *testing.T) {
	ctx := context.Background()
	svc, notifier := newTestService(t)

	off := false
	updated, err := svc.Update(ctx, UpdateInput{SystemOn: &off})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.SystemOn {
		t.Fatalf("system should be off: %+v", updated)
	}
	if updated.EnableImages != true || updated.EnableText != true {
		t.Fatalf("untouched toggles changed: %+v", updated)
	}
	if notifier.changed != 1 {
		t.Fatalf("toggle must broadcast, got %d", notifier.changed)
	}
}

func TestUpdatePatchesAndBroadcasts(t *testing.T) {
	ctx := context.Background()
	svc, notifier := newTestService(t)

	interval := 10
	marquee := "happy hour until 9"
	updated, err := svc.Update(ctx, UpdateInput{
		PollIntervalSeconds: &interval,
		MarqueeText:         &marquee,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.PollIntervalSeconds != 10 || updated.MarqueeText != marquee {
		t.Fatalf("patch not applied: %+v", updated)
	}
	if !updated.ShowRankings {
		t.Fatalf("untouched field changed: %+v", updated)
	}
	if notifier.changed != 1 {
		t.Fatalf("expected broadcast, got %d", notifier.changed)
	}

	// Persisted for the next reader.
	loaded, err := svc.Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.MarqueeText != marquee {
		t.Fatalf("update not persisted: %+v", loaded)
	}
}

func TestAddPackageReplacesByName(t *testing.T) {
	ctx := context.Background()
	svc, notifier := newTestService(t)

	if _, err := svc.AddPackage(ctx, PricePackage{Name: "Gold", Price: decimal.NewFromInt(100), DisplaySeconds: 30}); err != nil {
		t.Fatalf("add: %v", err)
	}
	updated, err := svc.AddPackage(ctx, PricePackage{Name: "gold", Price: decimal.NewFromInt(150), DisplaySeconds: 45})
	if err != nil {
		t.Fatalf("re-add: %v", err)
	}
	if len(updated.Packages) != 1 {
		t.Fatalf("same name must replace, got %+v", updated.Packages)
	}
	if updated.Packages[0].DisplaySeconds != 45 {
		t.Fatalf("replacement not applied: %+v", updated.Packages[0])
	}
	if notifier.changed != 2 {
		t.Fatalf("each add must broadcast, got %d", notifier.changed)
	}
}

func TestRemovePackage(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	if _, err := svc.AddPackage(ctx, PricePackage{Name: "Silver", Price: decimal.NewFromInt(50), DisplaySeconds: 15}); err != nil {
		t.Fatalf("add: %v", err)
	}
	updated, err := svc.RemovePackage(ctx, "silver")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(updated.Packages) != 0 {
		t.Fatalf("package should be gone: %+v", updated.Packages)
	}

	_, err = svc.RemovePackage(ctx, "silver")
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAddPackageValidates(t *testing.T) {
	ctx := context.Background()
	svc, notifier := newTestService(t)

	cases := []PricePackage{
		{Name: "", Price: decimal.NewFromInt(10), DisplaySeconds: 10},
		{Name: "Neg", Price: decimal.NewFromInt(-1), DisplaySeconds: 10},
		{Name: "Zero", Price: decimal.NewFromInt(10), DisplaySeconds: 0},
	}
	for _, pkg := range cases {
		if _, err := svc.AddPackage(ctx, pkg); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error for %+v, got %v", pkg, err)
		}
	}
	if notifier.changed != 0 {
		t.Fatalf("rejected packages must not broadcast")
	}
}

func TestUpdateRejectsBadPollInterval(t *testing.T) {
	svc, notifier := newTestService(t)

	zero := 0
	_, err := svc.Update(context.Background(), UpdateInput{PollIntervalSeconds: &zero})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if notifier.changed != 0 {
		t.Fatalf("rejected update must not broadcast")
	}
}
