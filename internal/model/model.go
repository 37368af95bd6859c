// Package model defines domain entities used by services, repositories and the sync layer.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// ExperienceType classifies an employment record.
type ExperienceType string

const (
	ExperienceFullTime  ExperienceType = "full_time"
	ExperiencePartTime  ExperienceType = "part_time"
	ExperienceContract  ExperienceType = "contract"
	ExperienceFreelance ExperienceType = "freelance"
)

// Valid reports whether t is one of the known experience types.
func (t ExperienceType) Valid() bool {
	switch t {
	case ExperienceFullTime, ExperiencePartTime, ExperienceContract, ExperienceFreelance:
		return true
	}
	return false
}

// Project is a portfolio project shown on the public site and managed in the admin panel.
type Project struct {
	ID          uuid.UUID // server-assigned PK
	Name        string
	Description string
	Tags        []string
	Images      []string
	IsActive    bool // controls public visibility
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Experience is an employment record. Period is the display range
// ("YYYY-MM - YYYY-MM" or "YYYY-MM - Present"); the store persists it as a
// half-open [start,end) interval.
type Experience struct {
	ID          uuid.UUID
	Title       string
	Company     string
	Period      string
	Description string
	Type        ExperienceType
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Skill is a single technology/competency entry.
type Skill struct {
	ID        uuid.UUID
	Name      string
	Category  string
	Level     int // 0..5
	Years     int
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Resume references an uploaded resume file. At most one resume is active;
// the active one is served on the public site.
type Resume struct {
	ID        uuid.UUID
	Label     string
	Path      string // file-store path of the uploaded document
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StoredFile is file-store metadata; content is fetched separately.
type StoredFile struct {
	Path        string
	Size        int64
	ContentType string
	CreatedAt   time.Time
}

// User represents an admin account. Passwords are stored as Argon2id hashes.
type User struct {
	ID        uuid.UUID
	Username  string
	PwdHash   []byte
	SaltAuth  []byte
	CreatedAt time.Time
}

// Tokens collects issued access tokens.
type Tokens struct {
	AccessToken string
	ExpiresAt   time.Time
}
