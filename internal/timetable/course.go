// Package timetable implements the schedule conflict-resolution and
// combination-optimization engine: interval overlap reasoning, the odd/even
// week-parity compatibility rule, the weekly grid overlay state machine,
// priority arbitration, and the ranked combination search.
//
// The engine is synchronous and owns no shared state. Callers hand it an
// in-memory course pool snapshot per request; it performs no I/O.
package timetable

import "fmt"

// Parity describes which weeks of the term a session meets on.
type Parity string

const (
	// ParityNone means the session meets every week.
	ParityNone Parity = ""
	ParityOdd  Parity = "ODD"
	ParityEven Parity = "EVEN"
)

// CourseSession is one recurring weekly meeting of a course. Times are
// minutes since midnight and the interval is half-open: [Start, End).
type CourseSession struct {
	Weekday  Weekday `json:"weekday"`
	Start    int     `json:"start"`
	End      int     `json:"end"`
	Parity   Parity  `json:"parity,omitempty"`
	Location string  `json:"location,omitempty"`
}

// NewSession parses clock strings into a session, failing fast on malformed
// catalog data so bad records never reach the search.
func NewSession(day Weekday, start, end string, parity Parity, location string) (CourseSession, error) {
	if !day.Valid() {
		return CourseSession{}, fmt.Errorf("weekday out of range: %d", int(day))
	}
	startMin, err := ToMinutes(start)
	if err != nil {
		return CourseSession{}, err
	}
	endMin, err := ToMinutes(end)
	if err != nil {
		return CourseSession{}, err
	}
	if startMin >= endMin {
		return CourseSession{}, fmt.Errorf("session start %s is not before end %s", start, end)
	}
	return CourseSession{Weekday: day, Start: startMin, End: endMin, Parity: parity, Location: location}, nil
}

// Course is an immutable catalog record. Its identity for conflict purposes
// is Key; the engine treats everything else as opaque.
type Course struct {
	Key        string          `json:"key"`
	Name       string          `json:"name"`
	Code       string          `json:"code"`
	Instructor string          `json:"instructor"`
	Credits    int             `json:"credits"`
	Sessions   []CourseSession `json:"sessions"`
}

// Pool is a caller-owned, read-only course catalog snapshot keyed by course
// key. Two planning sessions never share one pool value.
type Pool map[string]Course

// UnknownCourseError reports an operation referencing a key absent from the
// active pool.
type UnknownCourseError struct {
	Key string
}

func (e *UnknownCourseError) Error() string {
	return fmt.Sprintf("unknown course key %q", e.Key)
}

// Lookup resolves a course or returns UnknownCourseError so callers cannot
// silently act on stale references.
func (p Pool) Lookup(key string) (Course, error) {
	course, ok := p[key]
	if !ok {
		return Course{}, &UnknownCourseError{Key: key}
	}
	return course, nil
}
