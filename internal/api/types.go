// Package api defines the JSON wire types shared by the collection store
// server and the admin client. Row shapes use snake_case keys and nullable
// optional fields; conversion to domain models lives in internal/convert.
package api

// ProjectRow is the store-row shape of a project.
type ProjectRow struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Images      []string `json:"images"`
	IsActive    *bool    `json:"is_active"`
	CreatedAt   string   `json:"created_at,omitempty"`
	UpdatedAt   string   `json:"updated_at,omitempty"`
}

// ExperienceRow is the store-row shape of an experience. Date is the
// half-open employment interval "[YYYY-MM-DD,YYYY-MM-DD)"; the exclusive
// end is empty for ongoing employment.
type ExperienceRow struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Type        string `json:"type"`
	IsActive    *bool  `json:"is_active"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// SkillRow is the store-row shape of a skill.
type SkillRow struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Level     int    `json:"level"`
	Years     int    `json:"years"`
	IsActive  *bool  `json:"is_active"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// ResumeRow is the store-row shape of a resume reference.
type ResumeRow struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Path      string `json:"path"`
	IsActive  *bool  `json:"is_active"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// FileRow is the store-row shape of a stored file (metadata only).
type FileRow struct {
	Path        string `json:"path"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// ListResponse is the envelope of every collection list.
type ListResponse[R any] struct {
	Items []R `json:"items"`
	Total int `json:"total"`
}

// ItemResponse is the envelope of create/update responses.
type ItemResponse[R any] struct {
	Item R `json:"item"`
}

// ErrorResponse is the envelope of non-2xx responses. Fields is present
// only for validation failures.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// LoginRequest is the credentials payload for POST /api/v1/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued access token.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   string `json:"expires_at"`
	UserID      string `json:"user_id"`
}

// RegisterRequest is the payload for POST /api/v1/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterResponse returns the created account id.
type RegisterResponse struct {
	UserID string `json:"user_id"`
}
