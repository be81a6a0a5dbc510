package dto

// CourseQuery filters catalog listings.
type CourseQuery struct {
	Query      string `form:"q" json:"q"`
	Instructor string `form:"instructor" json:"instructor"`
	DayOfWeek  string `form:"day" json:"day"`
	Page       int    `form:"page" json:"page"`
	PageSize   int    `form:"pageSize" json:"pageSize"`
}

// ImportCatalogRequest points at a JSON catalog dump to ingest. Strict
// imports abort on the first malformed entry instead of skipping it.
type ImportCatalogRequest struct {
	File   string `json:"file" validate:"required"`
	Strict bool   `json:"strict"`
}

// ImportCatalogResponse summarises an ingest run.
type ImportCatalogResponse struct {
	Imported int      `json:"imported"`
	Skipped  []string `json:"skipped,omitempty"`
}

// SavePresetRequest stores a preferred combination.
type SavePresetRequest struct {
	Name    string   `json:"name" validate:"required"`
	Courses []string `json:"courses" validate:"required,min=1,dive,required"`
}

// ApplyPresetRequest applies a saved preset onto a planning session.
type ApplyPresetRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
}

// ApplyPresetResponse reports the batch placement result per course.
type ApplyPresetResponse struct {
	Placed  []string `json:"placed"`
	Skipped []string `json:"skipped,omitempty"`
	Removed []string `json:"removed,omitempty"`
}
