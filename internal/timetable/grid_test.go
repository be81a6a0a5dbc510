package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func addrOf(s CourseSession) Address {
	return Address{Weekday: s.Weekday, Start: s.Start, End: s.End}
}

func TestGridPlaceAndOccupantAt(t *testing.T) {
	grid := NewGrid(zap.NewNop())
	session := mustSession(t, Saturday, "08:00", "10:00", ParityNone)

	assert.Equal(t, PlacementState{Kind: CellEmpty}, grid.OccupantAt(addrOf(session)))

	outcome := grid.Place("algo", session)
	assert.Equal(t, PlacementPlaced, outcome.Status)
	assert.Equal(t, PlacementState{Kind: CellSingle, Key: "algo"}, grid.OccupantAt(addrOf(session)))
}

func TestGridDualPairingFollowsParityTags(t *testing.T) {
	grid := NewGrid(zap.NewNop())
	even := mustSession(t, Saturday, "08:00", "10:00", ParityEven)
	odd := mustSession(t, Saturday, "08:00", "10:00", ParityOdd)

	// Place the even course first: the odd/even roles must still follow the
	// parity tags, not placement order.
	require.Equal(t, PlacementPlaced, grid.Place("db-even", even).Status)
	outcome := grid.Place("db-odd", odd)
	assert.Equal(t, PlacementPaired, outcome.Status)

	state := grid.OccupantAt(addrOf(even))
	assert.Equal(t, CellDual, state.Kind)
	assert.Equal(t, "db-odd", state.OddKey)
	assert.Equal(t, "db-even", state.EvenKey)
}

func TestGridConflictDoesNotMutate(t *testing.T) {
	grid := NewGrid(zap.NewNop())
	require.Equal(t, PlacementPlaced, grid.Place("algo", mustSession(t, Saturday, "08:00", "10:00", ParityNone)).Status)

	outcome := grid.Place("os", mustSession(t, Saturday, "09:00", "11:00", ParityNone))
	assert.Equal(t, PlacementConflict, outcome.Status)
	assert.Equal(t, []string{"algo"}, outcome.ConflictsWith)

	assert.Equal(t, []string{"algo"}, grid.CourseKeys())
	assert.Equal(t, PlacementState{Kind: CellEmpty}, grid.OccupantAt(Address{Weekday: Saturday, Start: 540, End: 660}))
}

func TestGridPlacementIdempotent(t *testing.T) {
	grid := NewGrid(zap.NewNop())
	session := mustSession(t, Monday, "10:00", "12:00", ParityNone)

	require.Equal(t, PlacementPlaced, grid.Place("algo", session).Status)
	require.Equal(t, PlacementPlaced, grid.Place("algo", session).Status)

	assert.Equal(t, PlacementState{Kind: CellSingle, Key: "algo"}, grid.OccupantAt(addrOf(session)))
	assert.Len(t, grid.SessionsOf("algo"), 1)
}

func TestGridRemovalRoundTrip(t *testing.T) {
	grid := NewGrid(zap.NewNop())
	even := mustSession(t, Saturday, "08:00", "10:00", ParityEven)
	odd := mustSession(t, Saturday, "08:00", "10:00", ParityOdd)

	require.Equal(t, PlacementPlaced, grid.Place("a", odd).Status)
	require.Equal(t, PlacementPaired, grid.Place("b", even).Status)

	grid.Remove("a")
	assert.Equal(t, PlacementState{Kind: CellSingle, Key: "b"}, grid.OccupantAt(addrOf(even)))

	grid.Remove("b")
	assert.Equal(t, PlacementState{Kind: CellEmpty}, grid.OccupantAt(addrOf(even)))
	assert.Empty(t, grid.CourseKeys())
}

func TestGridRemoveClearsEveryAddress(t *testing.T) {
	grid := NewGrid(zap.NewNop())
	course := Course{Key: "algo", Sessions: []CourseSession{
		mustSession(t, Saturday, "08:00", "10:00", ParityNone),
		mustSession(t, Monday, "10:00", "12:00", ParityNone),
	}}

	require.Equal(t, PlacementPlaced, grid.PlaceCourse(course).Status)
	assert.Len(t, grid.Addresses(), 2)

	grid.Remove("algo")
	assert.Empty(t, grid.Addresses())
}

func TestGridPlaceCourseRollsBackOnConflict(t *testing.T) {
	grid := NewGrid(zap.NewNop())
	require.Equal(t, PlacementPlaced, grid.Place("os", mustSession(t, Monday, "10:00", "12:00", ParityNone)).Status)

	course := Course{Key: "algo", Sessions: []CourseSession{
		mustSession(t, Saturday, "08:00", "10:00", ParityNone),
		mustSession(t, Monday, "11:00", "13:00", ParityNone),
	}}
	outcome := grid.PlaceCourse(course)
	assert.Equal(t, PlacementConflict, outcome.Status)
	assert.Equal(t, []string{"os"}, outcome.ConflictsWith)

	// The Saturday session must not linger after the Monday session failed.
	assert.Equal(t, []string{"os"}, grid.CourseKeys())
}

func TestGridCourseDoesNotConflictWithItself(t *testing.T) {
	grid := NewGrid(zap.NewNop())
	session := mustSession(t, Saturday, "08:00", "10:00", ParityNone)
	require.Equal(t, PlacementPlaced, grid.Place("algo", session).Status)

	shifted := mustSession(t, Saturday, "09:00", "11:00", ParityNone)
	outcome := grid.Place("algo", shifted)
	assert.NotEqual(t, PlacementConflict, outcome.Status)
}

func TestGridSelfHealsInconsistentDual(t *testing.T) {
	grid := NewGrid(zap.NewNop())
	addr := Address{Weekday: Saturday, Start: 480, End: 600}
	grid.cells[addr] = &[]cellEntry{
		{courseKey: "a", session: CourseSession{Weekday: Saturday, Start: 480, End: 600, Parity: ParityEven}},
		{courseKey: "b", session: CourseSession{Weekday: Saturday, Start: 480, End: 600, Parity: ParityEven}},
	}

	assert.Equal(t, PlacementState{Kind: CellEmpty}, grid.OccupantAt(addr))
	_, exists := grid.cells[addr]
	assert.False(t, exists, "inconsistent cell must be dropped entirely")
}
