package timetable

// UnrankedPriority is the rank of a course absent from the priority list.
// It loses every priority tie-break.
const UnrankedPriority = int(^uint(0) >> 1)

// PriorityList is an ordered sequence of course keys; rank is the 1-based
// position, lower meaning more preferred.
type PriorityList []string

// RankOf returns the 1-based rank of a course, or UnrankedPriority when the
// course is not listed.
func (p PriorityList) RankOf(courseKey string) int {
	for i, key := range p {
		if key == courseKey {
			return i + 1
		}
	}
	return UnrankedPriority
}

// Decision is the arbitration result for a manual placement conflict.
type Decision string

const (
	// DecisionReject keeps the existing courses; the new course is not placed.
	DecisionReject Decision = "REJECT"
	// DecisionReplaceAll removes every conflicting course, then places the
	// new one. There is no partial replacement.
	DecisionReplaceAll Decision = "REPLACE_ALL"
	// DecisionAlreadyCompatible means nothing conflicted.
	DecisionAlreadyCompatible Decision = "ALREADY_COMPATIBLE"
)

// Resolution carries the arbitration decision plus the courses to remove
// when the decision is DecisionReplaceAll.
type Resolution struct {
	Decision Decision `json:"decision"`
	Remove   []string `json:"remove,omitempty"`
}

// Resolve arbitrates a placement conflict by priority rank. The new course
// is rejected as soon as any conflicting course holds a strictly better
// (numerically lower) rank; otherwise every conflicting course is replaced
// together. The decision logic is identical for interactive and batch
// callers; only how the caller acts on ReplaceAll differs.
func Resolve(priorities PriorityList, newCourseKey string, conflicts []string) Resolution {
	if len(conflicts) == 0 {
		return Resolution{Decision: DecisionAlreadyCompatible}
	}
	newRank := priorities.RankOf(newCourseKey)
	for _, key := range conflicts {
		if priorities.RankOf(key) < newRank {
			return Resolution{Decision: DecisionReject}
		}
	}
	remove := make([]string, len(conflicts))
	copy(remove, conflicts)
	return Resolution{Decision: DecisionReplaceAll, Remove: remove}
}
