package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Preset is a saved preferred course combination. CourseKeys holds a JSON
// array of catalog keys; the snapshot statistics are recorded at save time
// so listings do not recompute them.
type Preset struct {
	ID           string         `db:"id" json:"id"`
	Name         string         `db:"name" json:"name"`
	CourseKeys   types.JSONText `db:"course_keys" json:"course_keys"`
	DaysAttended int            `db:"days_attended" json:"days_attended"`
	IdleHours    float64        `db:"idle_hours" json:"idle_hours"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}
