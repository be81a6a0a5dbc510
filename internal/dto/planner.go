package dto

import "github.com/chupolovski/planner-api/internal/timetable"

// CreateSessionRequest opens a planning session over the current catalog
// snapshot. The optional priority list arbitrates later placement conflicts.
type CreateSessionRequest struct {
	Priorities []string `json:"priorities" validate:"omitempty,dive,required"`
}

// CreateSessionResponse returns the session handle.
type CreateSessionResponse struct {
	SessionID string `json:"sessionId"`
	Courses   int    `json:"courses"`
}

// PlaceCourseRequest asks for one course to be placed interactively.
// ConfirmReplace acknowledges a previously returned REPLACE_ALL decision.
type PlaceCourseRequest struct {
	CourseKey      string `json:"courseKey" validate:"required"`
	ConfirmReplace bool   `json:"confirmReplace"`
}

// Placement result statuses beyond the grid's own outcomes.
const (
	PlacementRejected          = "REJECTED"
	PlacementNeedsConfirmation = "NEEDS_CONFIRMATION"
	PlacementReplacedAndPlaced = "REPLACED"
	PlacementStatusPlaced      = string(timetable.PlacementPlaced)
	PlacementStatusPaired      = string(timetable.PlacementPaired)
)

// PlaceCourseResponse reports what happened to a placement attempt.
type PlaceCourseResponse struct {
	Status        string   `json:"status"`
	ConflictsWith []string `json:"conflictsWith,omitempty"`
	Removed       []string `json:"removed,omitempty"`
}

// SetPrioritiesRequest replaces the session priority list.
type SetPrioritiesRequest struct {
	Priorities []string `json:"priorities" validate:"required,dive,required"`
}

// GridCell is one occupied cell in the session snapshot.
type GridCell struct {
	Weekday string                   `json:"weekday"`
	Start   string                   `json:"start"`
	End     string                   `json:"end"`
	State   timetable.PlacementState `json:"state"`
}

// SessionResponse is the full occupancy snapshot of a planning session.
type SessionResponse struct {
	SessionID string     `json:"sessionId"`
	Courses   []string   `json:"courses"`
	Cells     []GridCell `json:"cells"`
}

// SessionStatsResponse carries the attendance statistics of the placed set.
type SessionStatsResponse struct {
	Courses      []string `json:"courses"`
	DaysAttended int      `json:"daysAttended"`
	IdleHours    float64  `json:"idleHours"`
}
