// Package convert translates store rows to domain models and back.
//
// Row->model conversion is total: it never fails, and missing optional
// fields resolve to documented defaults (nil is_active -> true, nil arrays
// -> empty slices, unknown experience type -> full_time, malformed
// timestamps -> zero time). Model->row conversion emits only fields the
// store schema recognizes; server-assigned timestamps are never sent.
package convert

import (
	"fmt"
	"strings"
	"time"

	u "github.com/gofrs/uuid/v5"

	"github.com/kamensky/folio/internal/api"
	"github.com/kamensky/folio/internal/model"
)

// --- helpers ---

func parseID(s string) u.UUID {
	id, err := u.FromString(s)
	if err != nil {
		return u.Nil
	}
	return id
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// activeFlag applies the is_active default: absent means visible.
func activeFlag(v *bool) bool {
	if v == nil {
		return true
	}
	return *v
}

func boolPtr(v bool) *bool { return &v }

func orEmpty(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}

// --- date ranges ---

const monthLayout = "2006-01"

// presentLabel is the display form of an open-ended employment period.
const presentLabel = "Present"

// RangeToPeriod converts a half-open "[start,end)" date interval to the
// display range "YYYY-MM - YYYY-MM" (inclusive end = exclusive end minus one
// month) or "YYYY-MM - Present" when the exclusive end is absent. Malformed
// input is returned unchanged so the mapping stays total.
func RangeToPeriod(date string) string {
	if !strings.HasPrefix(date, "[") || !strings.HasSuffix(date, ")") {
		return date
	}
	inner := date[1 : len(date)-1]
	start, end, ok := strings.Cut(inner, ",")
	if !ok {
		return date
	}
	startT, err := time.Parse("2006-01-02", start)
	if err != nil {
		return date
	}
	if end == "" {
		return fmt.Sprintf("%s - %s", startT.Format(monthLayout), presentLabel)
	}
	endT, err := time.Parse("2006-01-02", end)
	if err != nil {
		return date
	}
	// exclusive end -> inclusive end month
	incl := endT.AddDate(0, -1, 0)
	return fmt.Sprintf("%s - %s", startT.Format(monthLayout), incl.Format(monthLayout))
}

// PeriodToRange re-derives the half-open "[start,end)" interval from a
// display range. "Present" maps to an absent exclusive end. Input that does
// not parse as a display range is returned unchanged.
func PeriodToRange(period string) string {
	start, end, ok := strings.Cut(period, " - ")
	if !ok {
		return period
	}
	startT, err := time.Parse(monthLayout, strings.TrimSpace(start))
	if err != nil {
		return period
	}
	end = strings.TrimSpace(end)
	if strings.EqualFold(end, presentLabel) {
		return fmt.Sprintf("[%s,)", startT.Format("2006-01-02"))
	}
	endT, err := time.Parse(monthLayout, end)
	if err != nil {
		return period
	}
	// inclusive end month -> exclusive end is the first day of the next month
	excl := endT.AddDate(0, 1, 0)
	return fmt.Sprintf("[%s,%s)", startT.Format("2006-01-02"), excl.Format("2006-01-02"))
}

// --- projects ---

// FromProjectRow converts a store row to a domain project.
func FromProjectRow(r api.ProjectRow) model.Project {
	return model.Project{
		ID:          parseID(r.ID),
		Name:        r.Name,
		Description: r.Description,
		Tags:        orEmpty(r.Tags),
		Images:      orEmpty(r.Images),
		IsActive:    activeFlag(r.IsActive),
		CreatedAt:   parseTime(r.CreatedAt),
		UpdatedAt:   parseTime(r.UpdatedAt),
	}
}

// ToProjectRow converts a domain project to its store-row shape.
func ToProjectRow(p model.Project) api.ProjectRow {
	return api.ProjectRow{
		ID:          idString(p.ID),
		Name:        p.Name,
		Description: p.Description,
		Tags:        orEmpty(p.Tags),
		Images:      orEmpty(p.Images),
		IsActive:    boolPtr(p.IsActive),
	}
}

// --- experiences ---

// FromExperienceRow converts a store row to a domain experience,
// translating the half-open interval to the display period.
func FromExperienceRow(r api.ExperienceRow) model.Experience {
	typ := model.ExperienceType(r.Type)
	if !typ.Valid() {
		typ = model.ExperienceFullTime
	}
	return model.Experience{
		ID:          parseID(r.ID),
		Title:       r.Title,
		Company:     r.Company,
		Period:      RangeToPeriod(r.Date),
		Description: r.Description,
		Type:        typ,
		IsActive:    activeFlag(r.IsActive),
		CreatedAt:   parseTime(r.CreatedAt),
		UpdatedAt:   parseTime(r.UpdatedAt),
	}
}

// ToExperienceRow converts a domain experience to its store-row shape,
// re-deriving the [start,end) interval from the display period.
func ToExperienceRow(e model.Experience) api.ExperienceRow {
	return api.ExperienceRow{
		ID:          idString(e.ID),
		Title:       e.Title,
		Company:     e.Company,
		Date:        PeriodToRange(e.Period),
		Description: e.Description,
		Type:        string(e.Type),
		IsActive:    boolPtr(e.IsActive),
	}
}

// --- skills ---

// FromSkillRow converts a store row to a domain skill.
func FromSkillRow(r api.SkillRow) model.Skill {
	return model.Skill{
		ID:        parseID(r.ID),
		Name:      r.Name,
		Category:  r.Category,
		Level:     r.Level,
		Years:     r.Years,
		IsActive:  activeFlag(r.IsActive),
		CreatedAt: parseTime(r.CreatedAt),
		UpdatedAt: parseTime(r.UpdatedAt),
	}
}

// ToSkillRow converts a domain skill to its store-row shape.
func ToSkillRow(s model.Skill) api.SkillRow {
	return api.SkillRow{
		ID:       idString(s.ID),
		Name:     s.Name,
		Category: s.Category,
		Level:    s.Level,
		Years:    s.Years,
		IsActive: boolPtr(s.IsActive),
	}
}

// --- resumes ---

// FromResumeRow converts a store row to a domain resume reference.
func FromResumeRow(r api.ResumeRow) model.Resume {
	return model.Resume{
		ID:        parseID(r.ID),
		Label:     r.Label,
		Path:      r.Path,
		IsActive:  activeFlag(r.IsActive),
		CreatedAt: parseTime(r.CreatedAt),
		UpdatedAt: parseTime(r.UpdatedAt),
	}
}

// ToResumeRow converts a domain resume to its store-row shape.
func ToResumeRow(r model.Resume) api.ResumeRow {
	return api.ResumeRow{
		ID:       idString(r.ID),
		Label:    r.Label,
		Path:     r.Path,
		IsActive: boolPtr(r.IsActive),
	}
}

// --- files ---

// FromFileRow converts file-store metadata to the domain shape.
func FromFileRow(r api.FileRow) model.StoredFile {
	return model.StoredFile{
		Path:        r.Path,
		Size:        r.Size,
		ContentType: r.ContentType,
		CreatedAt:   parseTime(r.CreatedAt),
	}
}

// ToFileRow converts stored-file metadata to its row shape.
func ToFileRow(f model.StoredFile) api.FileRow {
	return api.FileRow{
		Path:        f.Path,
		Size:        f.Size,
		ContentType: f.ContentType,
		CreatedAt:   formatTime(f.CreatedAt),
	}
}

func idString(id u.UUID) string {
	if id == u.Nil {
		return ""
	}
	return id.String()
}
