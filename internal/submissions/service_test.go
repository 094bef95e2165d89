package submissions

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/venuecast/venuecast-backend/internal/playback"
	"github.com/venuecast/venuecast-backend/internal/rankings"
	"github.com/venuecast/venuecast-backend/pkg/db/models"
	"github.com/venuecast/venuecast-backend/pkg/enums"
	pkgerrors "github.com/venuecast/venuecast-backend/pkg/errors"
	"github.com/venuecast/venuecast-backend/pkg/logger"
	"github.com/venuecast/venuecast-backend/pkg/types"
)

type fakeRepo struct {
	inserted  []*models.Submission
	byID      map[string]*models.Submission
	finalized []string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: map[string]*models.Submission{}}
}

func (f *fakeRepo) Insert(ctx context.Context, sub *models.Submission) error {
	f.inserted = append(f.inserted, sub)
	f.byID[sub.ID] = sub
	return nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	sub, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return sub, nil
}

func (f *fakeRepo) ListPending(ctx context.Context) ([]models.Submission, error) {
	var out []models.Submission
	for _, sub := range f.inserted {
		if sub.Status == enums.SubmissionStatusPending {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListChecked(ctx context.Context, limit int) ([]models.Submission, error) {
	var out []models.Submission
	for _, sub := range f.inserted {
		if sub.Status.IsFinal() {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (f *fakeRepo) CountPending(ctx context.Context) (int64, error) {
	var count int64
	for _, sub := range f.inserted {
		if sub.Status == enums.SubmissionStatusPending {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) Finalize(ctx context.Context, id string, status enums.SubmissionStatus, checkedAt time.Time) (*models.Submission, error) {
	sub, ok := f.byID[id]
	if !ok || sub.Status != enums.SubmissionStatusPending {
		return nil, gorm.ErrRecordNotFound
	}
	sub.Status = status
	sub.CheckedAt = &checkedAt
	f.finalized = append(f.finalized, id)
	return sub, nil
}

func (f *fakeRepo) DeletePending(ctx context.Context, id string) (*models.Submission, error) {
	sub, ok := f.byID[id]
	if !ok || sub.Status != enums.SubmissionStatusPending {
		return nil, gorm.ErrRecordNotFound
	}
	f.remove(id)
	return sub, nil
}

func (f *fakeRepo) DeleteChecked(ctx context.Context, id string) error {
	sub, ok := f.byID[id]
	if !ok || !sub.Status.IsFinal() {
		return gorm.ErrRecordNotFound
	}
	f.remove(id)
	return nil
}

func (f *fakeRepo) ClearChecked(ctx context.Context) (int64, error) {
	var removed int64
	for id, sub := range f.byID {
		if sub.Status.IsFinal() {
			f.remove(id)
			removed++
		}
	}
	return removed, nil
}

func (f *fakeRepo) remove(id string) {
	delete(f.byID, id)
	kept := f.inserted[:0]
	for _, sub := range f.inserted {
		if sub.ID != id {
			kept = append(kept, sub)
		}
	}
	f.inserted = kept
}

type creditCall struct {
	sender string
	price  decimal.Decimal
}

type fakeEnqueuer struct {
	items []playback.Item
	err   error
}

func (f *fakeEnqueuer) Enqueue(ctx context.Context, item playback.Item) error {
	if f.err != nil {
		return f.err
	}
	f.items = append(f.items, item)
	return nil
}

type fakeNotifier struct {
	queue    int
	rankings int
}

func (f *fakeNotifier) QueueChanged(ctx context.Context)    { f.queue++ }
func (f *fakeNotifier) RankingsChanged(ctx context.Context) { f.rankings++ }

type fakeAssets struct {
	deleted []string
	err     error
}

func (f *fakeAssets) Save(ctx context.Context, name string, src io.Reader) (string, error) {
	return name, nil
}

func (f *fakeAssets) Delete(ctx context.Context, relPath string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, relPath)
	return nil
}

type deps struct {
	repo     *fakeRepo
	rankings *rankingsAdapter
	enqueuer *fakeEnqueuer
	notifier *fakeNotifier
	assets   *fakeAssets
}

// rankingsAdapter satisfies rankings.Service with only Credit recorded.
type rankingsAdapter struct {
	credits []creditCall
}

func (r *rankingsAdapter) Credit(ctx context.Context, sender string, price decimal.Decimal) error {
	r.credits = append(r.credits, creditCall{sender, price})
	return nil
}

func (r *rankingsAdapter) List(ctx context.Context, limit int) ([]rankings.EntryDTO, error) {
	return nil, nil
}

func (r *rankingsAdapter) Reset(ctx context.Context) error { return nil }

func newTestService(t *testing.T) (Service, *deps) {
	t.Helper()
	d := &deps{
		repo:     newFakeRepo(),
		rankings: &rankingsAdapter{},
		enqueuer: &fakeEnqueuer{},
		notifier: &fakeNotifier{},
		assets:   &fakeAssets{},
	}
	svc, err := NewService(ServiceParams{
		Repo:     d.repo,
		Rankings: d.rankings,
		Assets:   d.assets,
		Playback: d.enqueuer,
		Notifier: d.notifier,
		Log:      logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Now:      func() time.Time { return time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, d
}

func TestCreateAdmitsPendingAndCreditsAtSubmission(t *testing.T) {
	svc, d := newTestService(t)

	sub, err := svc.Create(context.Background(), CreateInput{
		Kind:           enums.SubmissionKindText,
		Text:           "happy birthday",
		DisplaySeconds: 20,
		Price:          decimal.NewFromInt(50),
		Sender:         "Alice",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if sub.ID == "" {
		t.Fatalf("expected generated id")
	}
	if sub.Status != enums.SubmissionStatusPending {
		t.Fatalf("expected pending, got %s", sub.Status)
	}
	if len(d.rankings.credits) != 1 || d.rankings.credits[0].sender != "Alice" {
		t.Fatalf("expected ranking credited at submission, got %+v", d.rankings.credits)
	}
	if d.notifier.queue != 1 || d.notifier.rankings != 1 {
		t.Fatalf("expected change hints pushed, got queue=%d rankings=%d", d.notifier.queue, d.notifier.rankings)
	}
}

func TestCreateValidatesPerKind(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input CreateInput
	}{
		{"bad kind", CreateInput{Kind: "video"}},
		{"text without text", CreateInput{Kind: enums.SubmissionKindText}},
		{"image without file", CreateInput{Kind: enums.SubmissionKindImage}},
		{"gift without order", CreateInput{Kind: enums.SubmissionKindGift}},
		{"gift without table", CreateInput{Kind: enums.SubmissionKindGift, GiftOrder: &types.GiftOrder{
			TableNumber: "  ",
			Items:       []types.GiftLineItem{{ID: "g1", Name: "Champagne", Quantity: 1}},
		}}},
		{"negative duration", CreateInput{Kind: enums.SubmissionKindText, Text: "x", DisplaySeconds: -1}},
		{"negative price", CreateInput{Kind: enums.SubmissionKindText, Text: "x", Price: decimal.NewFromInt(-1)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.input)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateGiftDefaultsDurationAndSender(t *testing.T) {
	svc, d := newTestService(t)
	ctx := context.Background()

	sub, err := svc.Create(ctx, CreateInput{
		Kind: enums.SubmissionKindGift,
		GiftOrder: &types.GiftOrder{
			TableNumber: "7",
			Items:       []types.GiftLineItem{{ID: "g1", Name: "Champagne", Price: decimal.NewFromInt(120), Quantity: 1}},
		},
		Price: decimal.NewFromInt(120),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if sub.DisplaySeconds != 1 {
		t.Fatalf("gift must get a one second slot, got %d", sub.DisplaySeconds)
	}
	if sub.Sender != "Guest" {
		t.Fatalf("anonymous gift must come from Guest, got %q", sub.Sender)
	}

	// With the defaulted duration the gift survives promotion instead of
	// being dropped as zero-length.
	if _, err := svc.Approve(ctx, sub.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if len(d.enqueuer.items) != 1 || d.enqueuer.items[0].DurationSeconds != 1 {
		t.Fatalf("gift did not reach playback intact: %+v", d.enqueuer.items)
	}
}

func TestCreateDefaultsAnonymousSenderToUnknown(t *testing.T) {
	svc, _ := newTestService(t)

	sub, err := svc.Create(context.Background(), CreateInput{
		Kind:           enums.SubmissionKindText,
		Text:           "hello",
		DisplaySeconds: 10,
		Sender:         "   ",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if sub.Sender != "Unknown" {
		t.Fatalf("expected Unknown sender, got %q", sub.Sender)
	}
}

func TestApproveEnqueuesForPlayback(t *testing.T) {
	svc, d := newTestService(t)
	ctx := context.Background()

	sub, err := svc.Create(ctx, CreateInput{
		Kind:           enums.SubmissionKindText,
		Text:           "hi",
		DisplaySeconds: 12,
		Price:          decimal.NewFromInt(5),
		Sender:         "bob",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	approved, err := svc.Approve(ctx, sub.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != enums.SubmissionStatusApproved {
		t.Fatalf("expected approved, got %s", approved.Status)
	}
	if len(d.enqueuer.items) != 1 {
		t.Fatalf("expected one enqueued item, got %d", len(d.enqueuer.items))
	}
	if got := d.enqueuer.items[0]; got.ID != sub.ID || got.DurationSeconds != 12 {
		t.Fatalf("unexpected playback item %+v", got)
	}
}

func TestDoubleDispositionReturnsNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sub, err := svc.Create(ctx, CreateInput{
		Kind: enums.SubmissionKindText, Text: "hi", Price: decimal.Zero, Sender: "bob",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Approve(ctx, sub.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	_, err = svc.Reject(ctx, sub.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found on second disposition, got %v", err)
	}
}

func TestRejectDeletesAssetBestEffort(t *testing.T) {
	svc, d := newTestService(t)
	ctx := context.Background()

	file := "1748800000-photo.png"
	sub, err := svc.Create(ctx, CreateInput{
		Kind:     enums.SubmissionKindImage,
		FilePath: &file,
		Price:    decimal.NewFromInt(5),
		Sender:   "bob",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	rejected, err := svc.Reject(ctx, sub.ID)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != enums.SubmissionStatusRejected {
		t.Fatalf("expected rejected, got %s", rejected.Status)
	}
	if len(d.assets.deleted) != 1 || d.assets.deleted[0] != file {
		t.Fatalf("expected asset deleted, got %+v", d.assets.deleted)
	}
	if len(d.enqueuer.items) != 0 {
		t.Fatalf("rejected item must never reach playback")
	}
}

func TestRejectToleratesAssetDeleteFailure(t *testing.T) {
	svc, d := newTestService(t)
	d.assets.err = errors.New("disk gone")
	ctx := context.Background()

	file := "gone.png"
	sub, err := svc.Create(ctx, CreateInput{
		Kind:     enums.SubmissionKindImage,
		FilePath: &file,
		Price:    decimal.Zero,
		Sender:   "bob",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Reject(ctx, sub.ID); err != nil {
		t.Fatalf("reject should survive cleanup failure, got %v", err)
	}
}

func TestDeletePendingRemovesRowAndAsset(t *testing.T) {
	svc, d := newTestService(t)
	ctx := context.Background()

	file := "drop-me.png"
	sub, err := svc.Create(ctx, CreateInput{
		Kind:     enums.SubmissionKindImage,
		FilePath: &file,
		Price:    decimal.Zero,
		Sender:   "bob",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.DeletePending(ctx, sub.ID); err != nil {
		t.Fatalf("delete pending: %v", err)
	}
	if len(d.assets.deleted) != 1 || d.assets.deleted[0] != file {
		t.Fatalf("expected asset deleted, got %+v", d.assets.deleted)
	}
	pending, err := svc.ListPending(ctx)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected empty queue after delete, got %d", len(pending))
	}
	if err := svc.DeletePending(ctx, sub.ID); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestDeletePendingRefusesDisposedRows(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sub, err := svc.Create(ctx, CreateInput{
		Kind: enums.SubmissionKindText, Text: "hi", Price: decimal.Zero, Sender: "bob",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Approve(ctx, sub.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	err = svc.DeletePending(ctx, sub.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for disposed row, got %v", err)
	}
}

func TestHistoryDeleteAndClear(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	var ids []string
	for _, text := range []string{"a", "b", "c"} {
		sub, err := svc.Create(ctx, CreateInput{
			Kind: enums.SubmissionKindText, Text: text, Price: decimal.Zero, Sender: "bob",
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if _, err := svc.Approve(ctx, sub.ID); err != nil {
			t.Fatalf("approve: %v", err)
		}
		ids = append(ids, sub.ID)
	}

	if err := svc.DeleteHistoryEntry(ctx, ids[0]); err != nil {
		t.Fatalf("delete history entry: %v", err)
	}
	if err := svc.DeleteHistoryEntry(ctx, ids[0]); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found on repeat delete, got %v", err)
	}

	removed, err := svc.ClearHistory(ctx)
	if err != nil {
		t.Fatalf("clear history: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 rows cleared, got %d", removed)
	}
	checked, err := svc.ListChecked(ctx, 0)
	if err != nil {
		t.Fatalf("list checked: %v", err)
	}
	if len(checked) != 0 {
		t.Fatalf("expected empty history, got %d", len(checked))
	}
}

func TestApproveUnknownID(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Approve(context.Background(), "ghost")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
