package service

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/kamensky/folio/internal/errs"
	"github.com/kamensky/folio/internal/model"
	"github.com/kamensky/folio/internal/repository"
)

// ExperienceService defines CRUD operations over employment records.
type ExperienceService interface {
	List(ctx context.Context, p ListParams) ([]model.Experience, int, error)
	Create(ctx context.Context, e *model.Experience) error
	Update(ctx context.Context, e *model.Experience) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*model.Experience, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ExperienceServiceImpl struct {
	repo repository.ExperienceRepository
}

// NewExperienceService constructs ExperienceService.
func NewExperienceService(repo repository.ExperienceRepository) *ExperienceServiceImpl {
	return &ExperienceServiceImpl{repo: repo}
}

func validateExperience(e *model.Experience) error {
	fields := map[string]string{}
	if e.Title == "" {
		fields["title"] = "required"
	}
	if e.Company == "" {
		fields["company"] = "required"
	}
	if e.Type != "" && !e.Type.Valid() {
		fields["type"] = "unknown experience type"
	}
	if len(fields) > 0 {
		return &errs.ValidationError{Fields: fields}
	}
	if e.Type == "" {
		e.Type = model.ExperienceFullTime
	}
	return nil
}

func (s *ExperienceServiceImpl) List(ctx context.Context, p ListParams) ([]model.Experience, int, error) {
	return s.repo.List(ctx, p.query())
}

func (s *ExperienceServiceImpl) Create(ctx context.Context, e *model.Experience) error {
	if err := validateExperience(e); err != nil {
		return err
	}
	return s.repo.Insert(ctx, e)
}

func (s *ExperienceServiceImpl) Update(ctx context.Context, e *model.Experience) error {
	if e.ID == uuid.Nil {
		return errs.Validation("id", "required")
	}
	if err := validateExperience(e); err != nil {
		return err
	}
	return s.repo.Update(ctx, e)
}

func (s *ExperienceServiceImpl) SetActive(ctx context.Context, id uuid.UUID, active bool) (*model.Experience, error) {
	if id == uuid.Nil {
		return nil, errs.Validation("id", "required")
	}
	return s.repo.SetActive(ctx, id, active)
}

func (s *ExperienceServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return errs.Validation("id", "required")
	}
	return s.repo.Delete(ctx, id)
}
