package gifts

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/venuecast/venuecast-backend/pkg/db/models"
	pkgerrors "github.com/venuecast/venuecast-backend/pkg/errors"
	"github.com/venuecast/venuecast-backend/pkg/idgen"
	"github.com/venuecast/venuecast-backend/pkg/logger"
	"github.com/venuecast/venuecast-backend/pkg/storage"
)

// ItemInput carries a catalog create or update.
type ItemInput struct {
	Name        string
	Price       decimal.Decimal
	Description string
	ImageURL    string
}

// ServiceParams groups dependencies for the gifts service.
type ServiceParams struct {
	Repo   Repo
	IDs    *idgen.Generator
	Assets storage.Store
	Log    *logger.Logger
}

// Service exposes the gift catalog and venue table configuration.
type Service interface {
	ListItems(ctx context.Context) ([]models.GiftItem, error)
	CreateItem(ctx context.Context, input ItemInput) (*models.GiftItem, error)
	UpdateItem(ctx context.Context, id string, input ItemInput) (*models.GiftItem, error)
	DeleteItem(ctx context.Context, id string) error
	GetSettings(ctx context.Context) (*models.GiftSettings, error)
	UpdateTableCount(ctx context.Context, count int) (*models.GiftSettings, error)
}

type service struct {
	repo   Repo
	ids    *idgen.Generator
	assets storage.Store
	log    *logger.Logger
}

// NewService builds a gifts service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gifts repo is required")
	}
	ids := params.IDs
	if ids == nil {
		ids = idgen.New()
	}
	return &service{
		repo:   params.Repo,
		ids:    ids,
		assets: params.Assets,
		log:    params.Log,
	}, nil
}

func (s *service) ListItems(ctx context.Context) ([]models.GiftItem, error) {
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list gift items")
	}
	return items, nil
}

func (s *service) CreateItem(ctx context.Context, input ItemInput) (*models.GiftItem, error) {
	if err := validateItem(input); err != nil {
		return nil, err
	}
	item := &models.GiftItem{
		ID:          s.ids.Next(),
		Name:        strings.TrimSpace(input.Name),
		Price:       input.Price,
		Description: input.Description,
		ImageURL:    input.ImageURL,
	}
	if err := s.repo.InsertItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert gift item")
	}
	return item, nil
}

func (s *service) UpdateItem(ctx context.Context, id string, input ItemInput) (*models.GiftItem, error) {
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gift item id is required")
	}
	if err := validateItem(input); err != nil {
		return nil, err
	}
	item := &models.GiftItem{
		ID:          id,
		Name:        strings.TrimSpace(input.Name),
		Price:       input.Price,
		Description: input.Description,
		ImageURL:    input.ImageURL,
	}
	if err := s.repo.UpdateItem(ctx, item); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "gift item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update gift item")
	}
	return s.findItem(ctx, id)
}

func (s *service) DeleteItem(ctx context.Context, id string) error {
	if id == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "gift item id is required")
	}
	item, err := s.repo.FindItem(ctx, id)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load gift item")
	}
	if err := s.repo.DeleteItem(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "gift item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete gift item")
	}
	s.dropStoredImage(ctx, item)
	return nil
}

// dropStoredImage removes a locally stored catalog image. Remote URLs are
// left alone, and a failed delete never undoes the catalog change.
func (s *service) dropStoredImage(ctx context.Context, item *models.GiftItem) {
	if s.assets == nil || item == nil || item.ImageURL == "" {
		return
	}
	if strings.HasPrefix(item.ImageURL, "http://") || strings.HasPrefix(item.ImageURL, "https://") {
		return
	}
	relPath := strings.TrimPrefix(item.ImageURL, "/uploads/")
	if err := s.assets.Delete(ctx, relPath); err != nil && s.log != nil {
		s.log.Warn(s.log.WithField(ctx, "file_path", relPath), "deleting gift image failed")
	}
}

func (s *service) GetSettings(ctx context.Context) (*models.GiftSettings, error) {
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load gift settings")
	}
	return settings, nil
}

func (s *service) UpdateTableCount(ctx context.Context, count int) (*models.GiftSettings, error) {
	if count <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "table count must be positive")
	}
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load gift settings")
	}
	settings.TableCount = count
	if err := s.repo.SaveSettings(ctx, settings); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save gift settings")
	}
	return settings, nil
}

func (s *service) findItem(ctx context.Context, id string) (*models.GiftItem, error) {
	item, err := s.repo.FindItem(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "gift item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load gift item")
	}
	return item, nil
}

func validateItem(input ItemInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "gift item name is required")
	}
	if input.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "gift item price cannot be negative")
	}
	return nil
}
