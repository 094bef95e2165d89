package rankings

import (
	"context"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/venuecast/venuecast-backend/pkg/errors"
)

// ServiceParams groups dependencies for the rankings service.
type ServiceParams struct {
	Repo Repo
}

// Service exposes leaderboard business rules.
type Service interface {
	// Credit records points for a sender. Zero or negative prices are skipped
	// so free submissions never create leaderboard rows.
	Credit(ctx context.Context, sender string, price decimal.Decimal) error
	List(ctx context.Context, limit int) ([]EntryDTO, error)
	Reset(ctx context.Context) error
}

type service struct {
	repo Repo
}

// NewService builds a rankings service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rankings repo is required")
	}
	return &service{repo: params.Repo}, nil
}

func (s *service) Credit(ctx context.Context, sender string, price decimal.Decimal) error {
	if !price.IsPositive() {
		return nil
	}
	normalized, display := NormalizeSender(sender)
	if err := s.repo.Credit(ctx, normalized, display, price); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "credit ranking entry")
	}
	return nil
}

func (s *service) List(ctx context.Context, limit int) ([]EntryDTO, error) {
	entries, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ranking entries")
	}
	out := make([]EntryDTO, 0, len(entries))
	for _, entry := range entries {
		out = append(out, EntryDTO{Name: entry.DisplayName, Points: entry.Points})
	}
	return out, nil
}

func (s *service) Reset(ctx context.Context) error {
	if err := s.repo.Reset(ctx); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset ranking entries")
	}
	return nil
}
