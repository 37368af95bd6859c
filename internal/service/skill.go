package service

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/kamensky/folio/internal/errs"
	"github.com/kamensky/folio/internal/model"
	"github.com/kamensky/folio/internal/repository"
)

// SkillService defines CRUD operations over skill entries.
type SkillService interface {
	List(ctx context.Context, p ListParams) ([]model.Skill, int, error)
	Create(ctx context.Context, sk *model.Skill) error
	Update(ctx context.Context, sk *model.Skill) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*model.Skill, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type SkillServiceImpl struct {
	repo repository.SkillRepository
}

// NewSkillService constructs SkillService.
func NewSkillService(repo repository.SkillRepository) *SkillServiceImpl {
	return &SkillServiceImpl{repo: repo}
}

func validateSkill(sk *model.Skill) error {
	fields := map[string]string{}
	if sk.Name == "" {
		fields["name"] = "required"
	}
	if sk.Level < 0 || sk.Level > 5 {
		fields["level"] = "must be between 0 and 5"
	}
	if sk.Years < 0 {
		fields["years"] = "must not be negative"
	}
	if len(fields) > 0 {
		return &errs.ValidationError{Fields: fields}
	}
	return nil
}

func (s *SkillServiceImpl) List(ctx context.Context, p ListParams) ([]model.Skill, int, error) {
	return s.repo.List(ctx, p.query())
}

func (s *SkillServiceImpl) Create(ctx context.Context, sk *model.Skill) error {
	if err := validateSkill(sk); err != nil {
		return err
	}
	return s.repo.Insert(ctx, sk)
}

func (s *SkillServiceImpl) Update(ctx context.Context, sk *model.Skill) error {
	if sk.ID == uuid.Nil {
		return errs.Validation("id", "required")
	}
	if err := validateSkill(sk); err != nil {
		return err
	}
	return s.repo.Update(ctx, sk)
}

func (s *SkillServiceImpl) SetActive(ctx context.Context, id uuid.UUID, active bool) (*model.Skill, error) {
	if id == uuid.Nil {
		return nil, errs.Validation("id", "required")
	}
	return s.repo.SetActive(ctx, id, active)
}

func (s *SkillServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return errs.Validation("id", "required")
	}
	return s.repo.Delete(ctx, id)
}
