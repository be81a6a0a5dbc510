package models

import "time"

// Course is a catalog record as persisted. The engine-facing representation
// lives in internal/timetable; the catalog service converts between the two
// and rejects malformed rows at that boundary.
type Course struct {
	Key        string    `db:"key" json:"key"`
	Name       string    `db:"name" json:"name"`
	Code       string    `db:"code" json:"code"`
	Instructor string    `db:"instructor" json:"instructor"`
	Credits    int       `db:"credits" json:"credits"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// CourseSession is one weekly meeting row belonging to a course.
type CourseSession struct {
	ID        string `db:"id" json:"id"`
	CourseKey string `db:"course_key" json:"course_key"`
	DayOfWeek string `db:"day_of_week" json:"day_of_week"`
	StartTime string `db:"start_time" json:"start_time"`
	EndTime   string `db:"end_time" json:"end_time"`
	Parity    string `db:"parity" json:"parity,omitempty"`
	Location  string `db:"location" json:"location,omitempty"`
}

// CourseFilter describes query params for listing catalog courses.
type CourseFilter struct {
	Query      string
	Instructor string
	DayOfWeek  string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// CourseWithSessions bundles a course and its meetings for API payloads.
type CourseWithSessions struct {
	Course
	Sessions []CourseSession `json:"sessions"`
}
