package service

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/kamensky/folio/internal/errs"
	"github.com/kamensky/folio/internal/model"
	"github.com/kamensky/folio/internal/repository"
)

// ProjectService defines CRUD operations over portfolio projects.
type ProjectService interface {
	List(ctx context.Context, p ListParams) ([]model.Project, int, error)
	Create(ctx context.Context, pr *model.Project) error
	Update(ctx context.Context, pr *model.Project) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*model.Project, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ProjectServiceImpl struct {
	repo repository.ProjectRepository
}

// NewProjectService constructs ProjectService.
func NewProjectService(repo repository.ProjectRepository) *ProjectServiceImpl {
	return &ProjectServiceImpl{repo: repo}
}

func validateProject(pr *model.Project) error {
	fields := map[string]string{}
	if pr.Name == "" {
		fields["name"] = "required"
	}
	if len(fields) > 0 {
		return &errs.ValidationError{Fields: fields}
	}
	return nil
}

// List returns a normalized page plus the predicate-wide total.
func (s *ProjectServiceImpl) List(ctx context.Context, p ListParams) ([]model.Project, int, error) {
	return s.repo.List(ctx, p.query())
}

// Create validates and stores a new project.
func (s *ProjectServiceImpl) Create(ctx context.Context, pr *model.Project) error {
	if err := validateProject(pr); err != nil {
		return err
	}
	return s.repo.Insert(ctx, pr)
}

// Update validates and rewrites the full payload by id.
func (s *ProjectServiceImpl) Update(ctx context.Context, pr *model.Project) error {
	if pr.ID == uuid.Nil {
		return errs.Validation("id", "required")
	}
	if err := validateProject(pr); err != nil {
		return err
	}
	return s.repo.Update(ctx, pr)
}

// SetActive flips only the visibility flag.
func (s *ProjectServiceImpl) SetActive(ctx context.Context, id uuid.UUID, active bool) (*model.Project, error) {
	if id == uuid.Nil {
		return nil, errs.Validation("id", "required")
	}
	return s.repo.SetActive(ctx, id, active)
}

// Delete removes a project by id.
func (s *ProjectServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return errs.Validation("id", "required")
	}
	return s.repo.Delete(ctx, id)
}
