// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/kamensky/folio/internal/model"
)

// ListQuery selects a page of a collection. Search matches resource text
// fields; Filter carries the resource-specific discriminator (experience
// type, skill category). ActiveOnly restricts to publicly visible rows.
type ListQuery struct {
	Search     string
	Filter     string
	ActiveOnly bool
	Offset     int
	Limit      int
}

// ProjectRepository provides paginated CRUD over projects.
type ProjectRepository interface {
	// List returns one page plus the predicate-wide total.
	List(ctx context.Context, q ListQuery) ([]model.Project, int, error)
	// Insert stores a new project and fills server-assigned fields.
	Insert(ctx context.Context, p *model.Project) error
	// Update rewrites the full payload by id and refreshes updated_at.
	Update(ctx context.Context, p *model.Project) error
	// SetActive flips only the visibility flag and returns the stored row.
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*model.Project, error)
	// Delete removes the row by id.
	Delete(ctx context.Context, id uuid.UUID) error
}

// ExperienceRepository provides paginated CRUD over experiences.
type ExperienceRepository interface {
	List(ctx context.Context, q ListQuery) ([]model.Experience, int, error)
	Insert(ctx context.Context, e *model.Experience) error
	Update(ctx context.Context, e *model.Experience) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*model.Experience, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// SkillRepository provides paginated CRUD over skills.
type SkillRepository interface {
	List(ctx context.Context, q ListQuery) ([]model.Skill, int, error)
	Insert(ctx context.Context, s *model.Skill) error
	Update(ctx context.Context, s *model.Skill) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*model.Skill, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ResumeRepository provides paginated CRUD over resume references.
type ResumeRepository interface {
	List(ctx context.Context, q ListQuery) ([]model.Resume, int, error)
	Insert(ctx context.Context, r *model.Resume) error
	Update(ctx context.Context, r *model.Resume) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*model.Resume, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// FileRepository provides prefix-listed file storage.
type FileRepository interface {
	// List returns metadata of files under prefix plus the total count.
	List(ctx context.Context, prefix string, offset, limit int) ([]model.StoredFile, int, error)
	// Put upserts file content and metadata by path.
	Put(ctx context.Context, f *model.StoredFile, content []byte) error
	// Content returns metadata and raw content by path.
	Content(ctx context.Context, path string) (*model.StoredFile, []byte, error)
	// Delete removes the file by path.
	Delete(ctx context.Context, path string) error
}

// UserRepository provides CRUD access for admin accounts.
type UserRepository interface {
	// Create inserts a new user.
	Create(ctx context.Context, u *model.User) error
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// GetByUsername loads a user by username.
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}
