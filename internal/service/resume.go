package service

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/kamensky/folio/internal/errs"
	"github.com/kamensky/folio/internal/model"
	"github.com/kamensky/folio/internal/repository"
)

// ResumeService defines CRUD operations over resume references.
type ResumeService interface {
	List(ctx context.Context, p ListParams) ([]model.Resume, int, error)
	Create(ctx context.Context, r *model.Resume) error
	Update(ctx context.Context, r *model.Resume) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*model.Resume, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ResumeServiceImpl struct {
	repo repository.ResumeRepository
}

// NewResumeService constructs ResumeService.
func NewResumeService(repo repository.ResumeRepository) *ResumeServiceImpl {
	return &ResumeServiceImpl{repo: repo}
}

func validateResume(r *model.Resume) error {
	fields := map[string]string{}
	if r.Label == "" {
		fields["label"] = "required"
	}
	if r.Path == "" {
		fields["path"] = "required"
	}
	if len(fields) > 0 {
		return &errs.ValidationError{Fields: fields}
	}
	return nil
}

func (s *ResumeServiceImpl) List(ctx context.Context, p ListParams) ([]model.Resume, int, error) {
	return s.repo.List(ctx, p.query())
}

func (s *ResumeServiceImpl) Create(ctx context.Context, r *model.Resume) error {
	if err := validateResume(r); err != nil {
		return err
	}
	return s.repo.Insert(ctx, r)
}

func (s *ResumeServiceImpl) Update(ctx context.Context, r *model.Resume) error {
	if r.ID == uuid.Nil {
		return errs.Validation("id", "required")
	}
	if err := validateResume(r); err != nil {
		return err
	}
	return s.repo.Update(ctx, r)
}

func (s *ResumeServiceImpl) SetActive(ctx context.Context, id uuid.UUID, active bool) (*model.Resume, error) {
	if id == uuid.Nil {
		return nil, errs.Validation("id", "required")
	}
	return s.repo.SetActive(ctx, id, active)
}

func (s *ResumeServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return errs.Validation("id", "required")
	}
	return s.repo.Delete(ctx, id)
}
