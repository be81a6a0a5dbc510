package timetable

import (
	"sort"

	"go.uber.org/zap"
)

// Address identifies one weekly grid cell by its slot coordinates.
type Address struct {
	Weekday Weekday `json:"weekday"`
	Start   int     `json:"start"`
	End     int     `json:"end"`
}

// CellKind enumerates the three overlay states of a grid cell.
type CellKind string

const (
	CellEmpty  CellKind = "EMPTY"
	CellSingle CellKind = "SINGLE"
	CellDual   CellKind = "DUAL"
)

// PlacementState is the caller-visible occupancy of one cell. For CellDual
// the odd/even roles follow each session's own parity tag, not placement
// order.
type PlacementState struct {
	Kind    CellKind `json:"kind"`
	Key     string   `json:"key,omitempty"`
	OddKey  string   `json:"oddKey,omitempty"`
	EvenKey string   `json:"evenKey,omitempty"`
}

// PlacementStatus is the outcome category of a single Place call.
type PlacementStatus string

const (
	PlacementPlaced   PlacementStatus = "PLACED"
	PlacementPaired   PlacementStatus = "PAIRED"
	PlacementConflict PlacementStatus = "CONFLICT"
)

// PlacementOutcome reports what a Place call did. ConflictsWith names every
// directly conflicting course when Status is PlacementConflict.
type PlacementOutcome struct {
	Status        PlacementStatus `json:"status"`
	ConflictsWith []string        `json:"conflictsWith,omitempty"`
}

type cellEntry struct {
	courseKey string
	session   CourseSession
}

// Grid owns the overlay state of every occupied (weekday, start, end) cell
// for one planning session. It is not safe for concurrent use; each session
// owns exactly one Grid.
type Grid struct {
	cells  map[Address]*[]cellEntry
	logger *zap.Logger
}

// NewGrid builds an empty grid. A nil logger is replaced with a no-op.
func NewGrid(logger *zap.Logger) *Grid {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Grid{cells: make(map[Address]*[]cellEntry), logger: logger}
}

// Place attempts to put one session of a course onto the grid. Incompatible
// overlaps are surfaced as PlacementConflict without mutating any cell; the
// caller arbitrates via the priority resolver before retrying.
func (g *Grid) Place(courseKey string, session CourseSession) PlacementOutcome {
	conflicts := g.conflictsWith(courseKey, session)
	if len(conflicts) > 0 {
		return PlacementOutcome{Status: PlacementConflict, ConflictsWith: conflicts}
	}

	addr := Address{Weekday: session.Weekday, Start: session.Start, End: session.End}
	entries := g.cells[addr]
	if entries == nil {
		g.cells[addr] = &[]cellEntry{{courseKey: courseKey, session: session}}
		return PlacementOutcome{Status: PlacementPlaced}
	}

	for i, entry := range *entries {
		if entry.courseKey == courseKey {
			// Same course re-placed at its own address: refresh the stored
			// session instead of inserting a duplicate record.
			(*entries)[i].session = session
			if len(*entries) == 2 {
				return PlacementOutcome{Status: PlacementPaired}
			}
			return PlacementOutcome{Status: PlacementPlaced}
		}
	}

	// conflictsWith already proved compatibility, so the occupant here must
	// carry the complementary parity.
	*entries = append(*entries, cellEntry{courseKey: courseKey, session: session})
	return PlacementOutcome{Status: PlacementPaired}
}

// PlaceCourse places every session of a course, stopping at the first
// conflicting session and rolling the course back out so a rejected
// placement never leaves partial state behind.
func (g *Grid) PlaceCourse(course Course) PlacementOutcome {
	paired := false
	for _, session := range course.Sessions {
		outcome := g.Place(course.Key, session)
		if outcome.Status == PlacementConflict {
			g.Remove(course.Key)
			return outcome
		}
		if outcome.Status == PlacementPaired {
			paired = true
		}
	}
	if paired {
		return PlacementOutcome{Status: PlacementPaired}
	}
	return PlacementOutcome{Status: PlacementPlaced}
}

// Remove deletes every cell entry occupied by the course, demoting Dual
// cells to Single and dropping cells whose last occupant leaves.
func (g *Grid) Remove(courseKey string) {
	for addr, entries := range g.cells {
		kept := (*entries)[:0]
		for _, entry := range *entries {
			if entry.courseKey != courseKey {
				kept = append(kept, entry)
			}
		}
		if len(kept) == 0 {
			delete(g.cells, addr)
			continue
		}
		*entries = kept
	}
}

// OccupantAt reports the overlay state of one cell address.
func (g *Grid) OccupantAt(addr Address) PlacementState {
	entries := g.cells[addr]
	if entries == nil || len(*entries) == 0 {
		return PlacementState{Kind: CellEmpty}
	}
	if len(*entries) == 1 {
		return PlacementState{Kind: CellSingle, Key: (*entries)[0].courseKey}
	}
	state, ok := dualState(*entries)
	if !ok {
		// A Dual cell without one odd and one even occupant means the
		// checker/manager coupling was violated upstream. Self-heal to
		// Empty rather than corrupt the rest of the session.
		g.logger.Warn("inconsistent overlay cell, dropping both occupants",
			zap.String("weekday", addr.Weekday.String()),
			zap.Int("start", addr.Start),
			zap.Int("end", addr.End),
		)
		delete(g.cells, addr)
		return PlacementState{Kind: CellEmpty}
	}
	return state
}

// Snapshot returns the occupancy of every non-empty cell, with addresses
// ordered by weekday then start time.
func (g *Grid) Snapshot() map[Address]PlacementState {
	snapshot := make(map[Address]PlacementState, len(g.cells))
	for addr := range g.cells {
		state := g.OccupantAt(addr)
		if state.Kind != CellEmpty {
			snapshot[addr] = state
		}
	}
	return snapshot
}

// CourseKeys lists every distinct course currently on the grid, sorted.
func (g *Grid) CourseKeys() []string {
	seen := make(map[string]struct{})
	for _, entries := range g.cells {
		for _, entry := range *entries {
			seen[entry.courseKey] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Addresses lists every occupied cell ordered by weekday then start time.
func (g *Grid) Addresses() []Address {
	addrs := make([]Address, 0, len(g.cells))
	for addr := range g.cells {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool {
		if addrs[i].Weekday != addrs[j].Weekday {
			return addrs[i].Weekday < addrs[j].Weekday
		}
		if addrs[i].Start != addrs[j].Start {
			return addrs[i].Start < addrs[j].Start
		}
		return addrs[i].End < addrs[j].End
	})
	return addrs
}

// SessionsOf returns the sessions a course currently occupies on the grid.
func (g *Grid) SessionsOf(courseKey string) []CourseSession {
	var sessions []CourseSession
	for _, addr := range g.Addresses() {
		for _, entry := range *g.cells[addr] {
			if entry.courseKey == courseKey {
				sessions = append(sessions, entry.session)
			}
		}
	}
	return sessions
}

func (g *Grid) conflictsWith(courseKey string, session CourseSession) []string {
	seen := make(map[string]struct{})
	var conflicts []string
	for _, entries := range g.cells {
		for _, entry := range *entries {
			if entry.courseKey == courseKey {
				continue
			}
			if SessionsCompatible(session, entry.session) {
				continue
			}
			if _, dup := seen[entry.courseKey]; dup {
				continue
			}
			seen[entry.courseKey] = struct{}{}
			conflicts = append(conflicts, entry.courseKey)
		}
	}
	sort.Strings(conflicts)
	return conflicts
}

func dualState(entries []cellEntry) (PlacementState, bool) {
	state := PlacementState{Kind: CellDual}
	for _, entry := range entries {
		switch entry.session.Parity {
		case ParityOdd:
			if state.OddKey != "" {
				return PlacementState{}, false
			}
			state.OddKey = entry.courseKey
		case ParityEven:
			if state.EvenKey != "" {
				return PlacementState{}, false
			}
			state.EvenKey = entry.courseKey
		default:
			return PlacementState{}, false
		}
	}
	if state.OddKey == "" || state.EvenKey == "" {
		return PlacementState{}, false
	}
	return state, true
}
