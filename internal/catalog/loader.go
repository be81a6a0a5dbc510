// Package catalog reads course catalog dumps from JSON files. The desktop
// exports that feed this service carry one course per entry with its weekly
// meetings; malformed entries are reported per key so a single bad row does
// not sink a whole import.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chupolovski/planner-api/internal/models"
	"github.com/chupolovski/planner-api/internal/timetable"
)

// SessionEntry is one weekly meeting in a catalog file.
type SessionEntry struct {
	Day      string `json:"day"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Parity   string `json:"parity,omitempty"`
	Location string `json:"location,omitempty"`
}

// CourseEntry is one course in a catalog file.
type CourseEntry struct {
	Key        string         `json:"key"`
	Name       string         `json:"name"`
	Code       string         `json:"code,omitempty"`
	Instructor string         `json:"instructor,omitempty"`
	Credits    int            `json:"credits,omitempty"`
	Sessions   []SessionEntry `json:"sessions"`
}

// File is the top-level catalog dump layout.
type File struct {
	Courses []CourseEntry `json:"courses"`
}

// Load reads and decodes a catalog file. The path is resolved relative to
// baseDir unless absolute; escaping baseDir is rejected.
func Load(baseDir, path string) (*File, error) {
	resolved := path
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(baseDir, resolved)
	}
	cleaned := filepath.Clean(resolved)
	if baseDir != "" {
		base := filepath.Clean(baseDir)
		if !strings.HasPrefix(cleaned, base+string(filepath.Separator)) && cleaned != base {
			return nil, fmt.Errorf("catalog path %q escapes import directory", path)
		}
	}

	raw, err := os.ReadFile(cleaned)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var file File
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode catalog file: %w", err)
	}
	return &file, nil
}

// Validate checks one entry against the engine's session rules. It returns
// the engine-ready course so callers validate and convert in one step.
func Validate(entry CourseEntry) (timetable.Course, error) {
	if entry.Key == "" {
		return timetable.Course{}, fmt.Errorf("course entry missing key")
	}
	if len(entry.Sessions) == 0 {
		return timetable.Course{}, fmt.Errorf("course %s has no sessions", entry.Key)
	}

	course := timetable.Course{
		Key:        entry.Key,
		Name:       entry.Name,
		Code:       entry.Code,
		Instructor: entry.Instructor,
		Credits:    entry.Credits,
	}
	for _, s := range entry.Sessions {
		day, ok := timetable.ParseWeekday(s.Day)
		if !ok {
			return timetable.Course{}, fmt.Errorf("course %s: unknown weekday %q", entry.Key, s.Day)
		}
		parity := timetable.Parity(strings.ToUpper(s.Parity))
		switch parity {
		case timetable.ParityNone, timetable.ParityOdd, timetable.ParityEven:
		default:
			return timetable.Course{}, fmt.Errorf("course %s: unknown parity %q", entry.Key, s.Parity)
		}
		session, err := timetable.NewSession(day, s.Start, s.End, parity, s.Location)
		if err != nil {
			return timetable.Course{}, fmt.Errorf("course %s: %w", entry.Key, err)
		}
		course.Sessions = append(course.Sessions, session)
	}
	return course, nil
}

// ToModel converts a validated entry into its persistence shape.
func ToModel(entry CourseEntry) models.CourseWithSessions {
	out := models.CourseWithSessions{
		Course: models.Course{
			Key:        entry.Key,
			Name:       entry.Name,
			Code:       entry.Code,
			Instructor: entry.Instructor,
			Credits:    entry.Credits,
		},
	}
	for _, s := range entry.Sessions {
		out.Sessions = append(out.Sessions, models.CourseSession{
			CourseKey: entry.Key,
			DayOfWeek: strings.ToUpper(s.Day),
			StartTime: s.Start,
			EndTime:   s.End,
			Parity:    strings.ToUpper(s.Parity),
			Location:  s.Location,
		})
	}
	return out
}
