package submissions

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/venuecast/venuecast-backend/internal/playback"
	"github.com/venuecast/venuecast-backend/internal/rankings"
	"github.com/venuecast/venuecast-backend/pkg/db/models"
	"github.com/venuecast/venuecast-backend/pkg/enums"
	pkgerrors "github.com/venuecast/venuecast-backend/pkg/errors"
	"github.com/venuecast/venuecast-backend/pkg/idgen"
	"github.com/venuecast/venuecast-backend/pkg/logger"
	"github.com/venuecast/venuecast-backend/pkg/metrics"
	"github.com/venuecast/venuecast-backend/pkg/storage"
)

// Notifier pushes change hints to connected viewers. Hints only; clients
// re-fetch the queue rather than trusting the push payload.
type Notifier interface {
	QueueChanged(ctx context.Context)
	RankingsChanged(ctx context.Context)
}

// Enqueuer hands approved items to the display scheduler.
type Enqueuer interface {
	Enqueue(ctx context.Context, item playback.Item) error
}

// ServiceParams groups dependencies for the submissions service.
type ServiceParams struct {
	Repo     Repo
	Rankings rankings.Service
	Assets   storage.Store
	Playback Enqueuer
	Notifier Notifier
	IDs      *idgen.Generator
	Metrics  *metrics.PlaybackMetrics
	Log      *logger.Logger
	Now      func() time.Time
}

// Service exposes the admission queue and disposition workflow.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Submission, error)
	ListPending(ctx context.Context) ([]models.Submission, error)
	ListChecked(ctx context.Context, limit int) ([]models.Submission, error)
	Approve(ctx context.Context, id string) (*models.Submission, error)
	Reject(ctx context.Context, id string) (*models.Submission, error)
	DeletePending(ctx context.Context, id string) error
	DeleteHistoryEntry(ctx context.Context, id string) error
	ClearHistory(ctx context.Context) (int64, error)
}

type service struct {
	repo     Repo
	rankings rankings.Service
	assets   storage.Store
	playback Enqueuer
	notifier Notifier
	ids      *idgen.Generator
	metrics  *metrics.PlaybackMetrics
	log      *logger.Logger
	now      func() time.Time
}

// NewService builds a submissions service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "submissions repo is required")
	}
	if params.Rankings == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rankings service is required")
	}
	if params.Playback == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "playback enqueuer is required")
	}
	if params.Log == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	ids := params.IDs
	if ids == nil {
		ids = idgen.New()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:     params.Repo,
		rankings: params.Rankings,
		assets:   params.Assets,
		playback: params.Playback,
		notifier: params.Notifier,
		ids:      ids,
		metrics:  params.Metrics,
		log:      params.Log,
		now:      now,
	}, nil
}

// Create admits a patron submission into the pending queue. Leaderboard
// points are credited here, at submission time, so a later reject does not
// claw them back.
func (s *service) Create(ctx context.Context, input CreateInput) (*models.Submission, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	displaySeconds := input.DisplaySeconds
	if input.Kind == enums.SubmissionKindGift && displaySeconds == 0 {
		// Gift orders flash on screen for one second; the card itself is
		// what matters, not dwell time.
		displaySeconds = 1
	}

	sub := &models.Submission{
		ID:             s.ids.Next(),
		Kind:           input.Kind,
		Text:           input.Text,
		TextColor:      input.TextColor,
		SocialType:     input.SocialType,
		SocialName:     input.SocialName,
		FilePath:       input.FilePath,
		Composed:       input.Composed,
		GiftOrder:      input.GiftOrder,
		DisplaySeconds: displaySeconds,
		Price:          input.Price,
		Sender:         defaultSender(input.Kind, input.Sender),
		Status:         enums.SubmissionStatusPending,
		ReceivedAt:     s.now(),
	}
	if err := s.repo.Insert(ctx, sub); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert submission")
	}

	ctx = s.log.WithSubmissionID(ctx, sub.ID)
	s.log.Info(ctx, "submission admitted")

	if err := s.rankings.Credit(ctx, sub.Sender, sub.Price); err != nil {
		// Leaderboard lag is tolerable; the submission itself is admitted.
		s.log.Error(ctx, "crediting leaderboard failed", err)
	} else if s.notifier != nil {
		s.notifier.RankingsChanged(ctx)
	}

	s.publishQueueDepth(ctx)
	if s.notifier != nil {
		s.notifier.QueueChanged(ctx)
	}
	return sub, nil
}

// ListPending returns the admission queue in arrival order.
func (s *service) ListPending(ctx context.Context) ([]models.Submission, error) {
	subs, err := s.repo.ListPending(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending submissions")
	}
	return subs, nil
}

// ListChecked returns the disposition history.
func (s *service) ListChecked(ctx context.Context, limit int) ([]models.Submission, error) {
	subs, err := s.repo.ListChecked(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list checked submissions")
	}
	return subs, nil
}

// Approve finalizes a pending submission and hands it to the scheduler.
func (s *service) Approve(ctx context.Context, id string) (*models.Submission, error) {
	sub, err := s.finalize(ctx, id, enums.SubmissionStatusApproved)
	if err != nil {
		return nil, err
	}

	ctx = s.log.WithSubmissionID(ctx, sub.ID)
	if err := s.playback.Enqueue(ctx, toPlaybackItem(sub)); err != nil {
		// The decision stands either way; the row is already finalized.
		s.log.Error(ctx, "enqueueing approved item failed", err)
	}
	s.metrics.Disposition(string(DecisionApprove))
	s.afterDisposition(ctx)
	return sub, nil
}

// Reject finalizes a pending submission and drops its stored asset.
func (s *service) Reject(ctx context.Context, id string) (*models.Submission, error) {
	sub, err := s.finalize(ctx, id, enums.SubmissionStatusRejected)
	if err != nil {
		return nil, err
	}

	ctx = s.log.WithSubmissionID(ctx, sub.ID)
	if s.assets != nil && sub.FilePath != nil && *sub.FilePath != "" {
		if err := s.assets.Delete(ctx, *sub.FilePath); err != nil {
			// Cleanup is best-effort; orphaned files are swept later.
			s.log.Warn(s.log.WithField(ctx, "file_path", *sub.FilePath), "deleting rejected asset failed")
		}
	}
	s.metrics.Disposition(string(DecisionReject))
	s.afterDisposition(ctx)
	return sub, nil
}

// DeletePending drops a still-queued submission without recording a decision.
// Operator escape hatch for content that should not even reach history.
func (s *service) DeletePending(ctx context.Context, id string) error {
	if id == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "submission id is required")
	}
	sub, err := s.repo.DeletePending(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "submission not pending")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete pending submission")
	}

	ctx = s.log.WithSubmissionID(ctx, sub.ID)
	s.log.Info(ctx, "pending submission deleted")
	if s.assets != nil && sub.FilePath != nil && *sub.FilePath != "" {
		if err := s.assets.Delete(ctx, *sub.FilePath); err != nil {
			s.log.Warn(s.log.WithField(ctx, "file_path", *sub.FilePath), "deleting submission asset failed")
		}
	}
	s.afterDisposition(ctx)
	return nil
}

// DeleteHistoryEntry removes one disposed submission from the history list.
func (s *service) DeleteHistoryEntry(ctx context.Context, id string) error {
	if id == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "submission id is required")
	}
	if err := s.repo.DeleteChecked(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "history entry not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete history entry")
	}
	return nil
}

// ClearHistory wipes the disposition history and reports how many rows went.
func (s *service) ClearHistory(ctx context.Context) (int64, error) {
	removed, err := s.repo.ClearChecked(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear history")
	}
	s.log.Info(s.log.WithField(ctx, "removed", removed), "history cleared")
	return removed, nil
}

func (s *service) finalize(ctx context.Context, id string, status enums.SubmissionStatus) (*models.Submission, error) {
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "submission id is required")
	}
	sub, err := s.repo.Finalize(ctx, id, status, s.now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "submission not pending")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "finalize submission")
	}
	return sub, nil
}

func (s *service) afterDisposition(ctx context.Context) {
	s.publishQueueDepth(ctx)
	if s.notifier != nil {
		s.notifier.QueueChanged(ctx)
	}
}

func (s *service) publishQueueDepth(ctx context.Context) {
	count, err := s.repo.CountPending(ctx)
	if err != nil {
		s.log.Warn(ctx, "counting pending submissions failed")
		return
	}
	s.metrics.SetQueueDepth(int(count))
}

func validateInput(input CreateInput) error {
	if !input.Kind.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid submission kind")
	}
	switch input.Kind {
	case enums.SubmissionKindText:
		if input.Text == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "text is required for text submissions")
		}
	case enums.SubmissionKindImage:
		if input.FilePath == nil || *input.FilePath == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "file is required for image submissions")
		}
	case enums.SubmissionKindGift:
		if input.GiftOrder == nil || len(input.GiftOrder.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "gift order is required for gift submissions")
		}
		if strings.TrimSpace(input.GiftOrder.TableNumber) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "table number is required for gift orders")
		}
	}
	if input.DisplaySeconds < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "display seconds cannot be negative")
	}
	if input.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	return nil
}

// defaultSender fills anonymous submissions: gift orders come from a table,
// so "Guest"; everything else is a wall post from "Unknown".
func defaultSender(kind enums.SubmissionKind, sender string) string {
	sender = strings.TrimSpace(sender)
	if sender != "" {
		return sender
	}
	if kind == enums.SubmissionKindGift {
		return "Guest"
	}
	return "Unknown"
}

func toPlaybackItem(sub *models.Submission) playback.Item {
	return playback.Item{
		ID:              sub.ID,
		Kind:            string(sub.Kind),
		Text:            sub.Text,
		TextColor:       sub.TextColor,
		FilePath:        sub.FilePath,
		GiftOrder:       sub.GiftOrder,
		Sender:          sub.Sender,
		Price:           sub.Price,
		DurationSeconds: sub.DisplaySeconds,
	}
}
