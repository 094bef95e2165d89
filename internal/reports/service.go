package reports

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/venuecast/venuecast-backend/pkg/db/models"
	"github.com/venuecast/venuecast-backend/pkg/enums"
	pkgerrors "github.com/venuecast/venuecast-backend/pkg/errors"
	"github.com/venuecast/venuecast-backend/pkg/idgen"
)

// ServiceParams groups dependencies for the reports service.
type ServiceParams struct {
	Repo Repo
	IDs  *idgen.Generator
	Now  func() time.Time
}

// Service exposes the patron report workflow.
type Service interface {
	Create(ctx context.Context, category, detail string) (*models.Report, error)
	List(ctx context.Context, limit int) ([]models.Report, error)
	UpdateStatus(ctx context.Context, id string, status enums.ReportStatus) error
}

type service struct {
	repo Repo
	ids  *idgen.Generator
	now  func() time.Time
}

// NewService builds a reports service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reports repo is required")
	}
	ids := params.IDs
	if ids == nil {
		ids = idgen.New()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: params.Repo, ids: ids, now: now}, nil
}

func (s *service) Create(ctx context.Context, category, detail string) (*models.Report, error) {
	category = strings.TrimSpace(category)
	detail = strings.TrimSpace(detail)
	if category == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "report category is required")
	}
	if detail == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "report detail is required")
	}
	report := &models.Report{
		ID:         s.ids.Next(),
		Category:   category,
		Detail:     detail,
		Status:     enums.ReportStatusNew,
		ReceivedAt: s.now(),
	}
	if err := s.repo.Insert(ctx, report); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert report")
	}
	return report, nil
}

func (s *service) List(ctx context.Context, limit int) ([]models.Report, error) {
	reports, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reports")
	}
	return reports, nil
}

func (s *service) UpdateStatus(ctx context.Context, id string, status enums.ReportStatus) error {
	if id == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "report id is required")
	}
	if !status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid report status")
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "report not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update report status")
	}
	return nil
}
