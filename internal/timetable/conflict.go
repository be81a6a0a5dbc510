package timetable

// Overlap reports whether two half-open intervals intersect. Intervals that
// only touch at an endpoint do not overlap.
func Overlap(startA, endA, startB, endB int) bool {
	return startA < endB && startB < endA
}

// SessionsCompatible reports whether two sessions can coexist in a weekly
// schedule. Sessions on different weekdays or with disjoint intervals are
// trivially compatible. Overlapping same-day sessions are compatible only
// when one meets on odd weeks and the other on even weeks.
func SessionsCompatible(a, b CourseSession) bool {
	if a.Weekday != b.Weekday {
		return true
	}
	if !Overlap(a.Start, a.End, b.Start, b.End) {
		return true
	}
	return (a.Parity == ParityOdd && b.Parity == ParityEven) ||
		(a.Parity == ParityEven && b.Parity == ParityOdd)
}

// SchedulesConflict reports whether any session pair across the two lists is
// incompatible. Callers must not pass two session lists belonging to the
// same course key; self-conflict is meaningless.
func SchedulesConflict(a, b []CourseSession) bool {
	for _, sa := range a {
		for _, sb := range b {
			if !SessionsCompatible(sa, sb) {
				return true
			}
		}
	}
	return false
}
