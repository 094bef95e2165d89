package settings

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/venuecast/venuecast-backend/pkg/errors"
)

// Notifier hints connected displays that settings changed.
type Notifier interface {
	SettingsChanged(ctx context.Context)
}

// UpdateInput is a partial settings patch; nil fields keep their value.
type UpdateInput struct {
	SystemOn            *bool            `json:"systemOn"`
	EnableImages        *bool            `json:"enableImages"`
	EnableText          *bool            `json:"enableText"`
	BasePrice           *decimal.Decimal `json:"basePrice"`
	BaseDisplaySeconds  *int             `json:"baseDisplaySeconds"`
	PollIntervalSeconds *int             `json:"pollIntervalSeconds"`
	MarqueeText         *string          `json:"marqueeText"`
	ShowRankings        *bool            `json:"showRankings"`
}

// ServiceParams groups dependencies for the settings service.
type ServiceParams struct {
	Store    Store
	Notifier Notifier
	Now      func() time.Time
}

// Service exposes display configuration.
type Service interface {
	Get(ctx context.Context) (DisplaySettings, error)
	Update(ctx context.Context, input UpdateInput) (DisplaySettings, error)
	AddPackage(ctx context.Context, pkg PricePackage) (DisplaySettings, error)
	RemovePackage(ctx context.Context, name string) (DisplaySettings, error)
}

type service struct {
	store    Store
	notifier Notifier
	now      func() time.Time
}

// NewService builds a settings service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "settings store is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{store: params.Store, notifier: params.Notifier, now: now}, nil
}

func (s *service) Get(ctx context.Context) (DisplaySettings, error) {
	saved, err := s.store.Load(ctx)
	if err != nil {
		return DisplaySettings{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load display settings")
	}
	if saved == nil {
		return Defaults(), nil
	}
	return *saved, nil
}

func (s *service) Update(ctx context.Context, input UpdateInput) (DisplaySettings, error) {
	current, err := s.Get(ctx)
	if err != nil {
		return DisplaySettings{}, err
	}

	if input.SystemOn != nil {
		current.SystemOn = *input.SystemOn
	}
	if input.EnableImages != nil {
		current.EnableImages = *input.EnableImages
	}
	if input.EnableText != nil {
		current.EnableText = *input.EnableText
	}
	if input.BasePrice != nil {
		if input.BasePrice.IsNegative() {
			return DisplaySettings{}, pkgerrors.New(pkgerrors.CodeValidation, "base price cannot be negative")
		}
		current.BasePrice = *input.BasePrice
	}
	if input.BaseDisplaySeconds != nil {
		if *input.BaseDisplaySeconds < 1 {
			return DisplaySettings{}, pkgerrors.New(pkgerrors.CodeValidation, "base display seconds must be at least 1")
		}
		current.BaseDisplaySeconds = *input.BaseDisplaySeconds
	}
	if input.PollIntervalSeconds != nil {
		if *input.PollIntervalSeconds < 1 {
			return DisplaySettings{}, pkgerrors.New(pkgerrors.CodeValidation, "poll interval must be at least 1 second")
		}
		current.PollIntervalSeconds = *input.PollIntervalSeconds
	}
	if input.MarqueeText != nil {
		current.MarqueeText = *input.MarqueeText
	}
	if input.ShowRankings != nil {
		current.ShowRankings = *input.ShowRankings
	}
	return s.persist(ctx, current)
}

// AddPackage appends a price preset. Names are unique; re-adding an existing
// name replaces its price and duration.
func (s *service) AddPackage(ctx context.Context, pkg PricePackage) (DisplaySettings, error) {
	pkg.Name = strings.TrimSpace(pkg.Name)
	if pkg.Name == "" {
		return DisplaySettings{}, pkgerrors.New(pkgerrors.CodeValidation, "package name is required")
	}
	if pkg.Price.IsNegative() {
		return DisplaySettings{}, pkgerrors.New(pkgerrors.CodeValidation, "package price cannot be negative")
	}
	if pkg.DisplaySeconds < 1 {
		return DisplaySettings{}, pkgerrors.New(pkgerrors.CodeValidation, "package display seconds must be at least 1")
	}

	current, err := s.Get(ctx)
	if err != nil {
		return DisplaySettings{}, err
	}
	replaced := false
	for i := range current.Packages {
		if strings.EqualFold(current.Packages[i].Name, pkg.Name) {
			current.Packages[i] = pkg
			replaced = true
			break
		}
	}
	if !replaced {
		current.Packages = append(current.Packages, pkg)
	}
	return s.persist(ctx, current)
}

// RemovePackage drops a price preset by name.
func (s *service) RemovePackage(ctx context.Context, name string) (DisplaySettings, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return DisplaySettings{}, pkgerrors.New(pkgerrors.CodeValidation, "package name is required")
	}

	current, err := s.Get(ctx)
	if err != nil {
		return DisplaySettings{}, err
	}
	kept := current.Packages[:0]
	for _, pkg := range current.Packages {
		if !strings.EqualFold(pkg.Name, name) {
			kept = append(kept, pkg)
		}
	}
	if len(kept) == len(current.Packages) {
		return DisplaySettings{}, pkgerrors.New(pkgerrors.CodeNotFound, "package not found")
	}
	current.Packages = kept
	return s.persist(ctx, current)
}

func (s *service) persist(ctx context.Context, current DisplaySettings) (DisplaySettings, error) {
	current.UpdatedAtMS = s.now().UnixMilli()
	if err := s.store.Save(ctx, current); err != nil {
		return DisplaySettings{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save display settings")
	}
	if s.notifier != nil {
		s.notifier.SettingsChanged(ctx)
	}
	return current, nil
}
