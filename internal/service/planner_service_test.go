package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chupolovski/planner-api/internal/dto"
	"github.com/chupolovski/planner-api/internal/timetable"
	appErrors "github.com/chupolovski/planner-api/pkg/errors"
)

type poolStub struct {
	pool timetable.Pool
}

func (s poolStub) Pool() timetable.Pool { return s.pool }

func testCourse(t *testing.T, key string, day timetable.Weekday, start, end string, parity timetable.Parity) timetable.Course {
	t.Helper()
	session, err := timetable.NewSession(day, start, end, parity, "")
	require.NoError(t, err)
	return timetable.Course{Key: key, Name: key, Sessions: []timetable.CourseSession{session}}
}

func testPool(t *testing.T) timetable.Pool {
	t.Helper()
	return timetable.Pool{
		"MATH":     testCourse(t, "MATH", timetable.Saturday, "08:00", "09:30", timetable.ParityNone),
		"PHYS":     testCourse(t, "PHYS", timetable.Saturday, "08:00", "09:30", timetable.ParityNone),
		"CHEM":     testCourse(t, "CHEM", timetable.Saturday, "10:00", "11:30", timetable.ParityNone),
		"LAB_ODD":  testCourse(t, "LAB_ODD", timetable.Monday, "14:00", "16:00", timetable.ParityOdd),
		"LAB_EVEN": testCourse(t, "LAB_EVEN", timetable.Monday, "14:00", "16:00", timetable.ParityEven),
	}
}

func newTestPlanner(t *testing.T) *PlannerService {
	t.Helper()
	return NewPlannerService(poolStub{pool: testPool(t)}, PlannerConfig{SessionTTL: time.Hour}, nil, nil, nil)
}

func createSession(t *testing.T, svc *PlannerService, priorities ...string) string {
	t.Helper()
	resp, err := svc.CreateSession(context.Background(), dto.CreateSessionRequest{Priorities: priorities})
	require.NoError(t, err)
	return resp.SessionID
}

func TestPlannerCreateSessionUnknownPriority(t *testing.T) {
	svc := newTestPlanner(t)
	_, err := svc.CreateSession(context.Background(), dto.CreateSessionRequest{Priorities: []string{"GHOST"}})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnknownCourse.Code, appErrors.FromError(err).Code)
}

func TestPlannerPlaceCourse(t *testing.T) {
	svc := newTestPlanner(t)
	id := createSession(t, svc)

	resp, err := svc.PlaceCourse(context.Background(), id, dto.PlaceCourseRequest{CourseKey: "MATH"})
	require.NoError(t, err)
	assert.Equal(t, dto.PlacementStatusPlaced, resp.Status)

	resp, err = svc.PlaceCourse(context.Background(), id, dto.PlaceCourseRequest{CourseKey: "CHEM"})
	require.NoError(t, err)
	assert.Equal(t, dto.PlacementStatusPlaced, resp.Status)
}

func TestPlannerPlaceCourseParityPair(t *testing.T) {
	svc := newTestPlanner(t)
	id := createSession(t, svc)

	_, err := svc.PlaceCourse(context.Background(), id, dto.PlaceCourseRequest{CourseKey: "LAB_ODD"})
	require.NoError(t, err)

	resp, err := svc.PlaceCourse(context.Background(), id, dto.PlaceCourseRequest{CourseKey: "LAB_EVEN"})
	require.NoError(t, err)
	assert.Equal(t, dto.PlacementStatusPaired, resp.Status)
}

func TestPlannerPlaceCourseRejectedByPriority(t *testing.T) {
	svc := newTestPlanner(t)
	id := createSession(t, svc, "MATH", "PHYS")

	_, err := svc.PlaceCourse(context.Background(), id, dto.PlaceCourseRequest{CourseKey: "MATH"})
	require.NoError(t, err)

	resp, err := svc.PlaceCourse(context.Background(), id, dto.PlaceCourseRequest{CourseKey: "PHYS"})
	require.NoError(t, err)
	assert.Equal(t, dto.PlacementRejected, resp.Status)
	assert.Equal(t, []string{"MATH"}, resp.ConflictsWith)
}

func TestPlannerPlaceCourseReplaceFlow(t *testing.T) {
	svc := newTestPlanner(t)
	id := createSession(t, svc, "PHYS", "MATH")

	_, err := svc.PlaceCourse(context.Background(), id, dto.PlaceCourseRequest{CourseKey: "MATH"})
	require.NoError(t, err)

	resp, err := svc.PlaceCourse(context.Background(), id, dto.PlaceCourseRequest{CourseKey: "PHYS"})
	require.NoError(t, err)
	assert.Equal(t, dto.PlacementNeedsConfirmation, resp.Status)
	assert.Equal(t, []string{"MATH"}, resp.ConflictsWith)

	resp, err = svc.PlaceCourse(context.Background(), id, dto.PlaceCourseRequest{CourseKey: "PHYS", ConfirmReplace: true})
	require.NoError(t, err)
	assert.Equal(t, dto.PlacementReplacedAndPlaced, resp.Status)
	assert.Equal(t, []string{"MATH"}, resp.Removed)

	snapshot, err := svc.Snapshot(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, []string{"PHYS"}, snapshot.Courses)
}

func TestPlannerPlaceCourseUnrankedConflictNeedsConfirmation(t *testing.T) {
	svc := newTestPlanner(t)
	id := createSession(t, svc)

	_, err := svc.PlaceCourse(context.Background(), id, dto.PlaceCourseRequest{CourseKey: "MATH"})
	require.NoError(t, err)

	resp, err := svc.PlaceCourse(context.Background(), id, dto.PlaceCourseRequest{CourseKey: "PHYS"})
	require.NoError(t, err)
	assert.Equal(t, dto.PlacementNeedsConfirmation, resp.Status)
}

func TestPlannerRemoveCourse(t *testing.T) {
	svc := newTestPlanner(t)
	id := createSession(t, svc)

	_, err := svc.PlaceCourse(context.Background(), id, dto.PlaceCourseRequest{CourseKey: "MATH"})
	require.NoError(t, err)

	require.NoError(t, svc.RemoveCourse(context.Background(), id, "MATH"))

	err = svc.RemoveCourse(context.Background(), id, "MATH")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestPlannerStats(t *testing.T) {
	svc := newTestPlanner(t)
	id := createSession(t, svc)

	_, err := svc.PlaceCourse(context.Background(), id, dto.PlaceCourseRequest{CourseKey: "MATH"})
	require.NoError(t, err)
	_, err = svc.PlaceCourse(context.Background(), id, dto.PlaceCourseRequest{CourseKey: "CHEM"})
	require.NoError(t, err)

	stats, err := svc.Stats(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.DaysAttended)
	assert.InDelta(t, 0.5, stats.IdleHours, 1e-9)
}

func TestPlannerApplyCombinationBatch(t *testing.T) {
	svc := newTestPlanner(t)
	id := createSession(t, svc, "PHYS")

	_, err := svc.PlaceCourse(context.Background(), id, dto.PlaceCourseRequest{CourseKey: "MATH"})
	require.NoError(t, err)

	resp, err := svc.ApplyCombination(context.Background(), id, []string{"PHYS", "CHEM", "GHOST"})
	require.NoError(t, err)
	assert.Equal(t, []string{"PHYS", "CHEM"}, resp.Placed)
	assert.Equal(t, []string{"GHOST"}, resp.Skipped)
	assert.Equal(t, []string{"MATH"}, resp.Removed)
}

func TestPlannerSessionExpiry(t *testing.T) {
	svc := NewPlannerService(poolStub{pool: testPool(t)}, PlannerConfig{SessionTTL: time.Nanosecond}, nil, nil, nil)
	id := createSession(t, svc)

	time.Sleep(time.Millisecond)

	_, err := svc.Snapshot(context.Background(), id)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSessionExpired.Code, appErrors.FromError(err).Code)
}

func TestPlannerSessionCapacity(t *testing.T) {
	svc := NewPlannerService(poolStub{pool: testPool(t)}, PlannerConfig{SessionTTL: time.Hour, MaxSessions: 1}, nil, nil, nil)
	createSession(t, svc)

	_, err := svc.CreateSession(context.Background(), dto.CreateSessionRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestPlannerSnapshotCells(t *testing.T) {
	svc := newTestPlanner(t)
	id := createSession(t, svc)

	_, err := svc.PlaceCourse(context.Background(), id, dto.PlaceCourseRequest{CourseKey: "LAB_ODD"})
	require.NoError(t, err)
	_, err = svc.PlaceCourse(context.Background(), id, dto.PlaceCourseRequest{CourseKey: "LAB_EVEN"})
	require.NoError(t, err)

	snapshot, err := svc.Snapshot(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, snapshot.Cells, 1)
	cell := snapshot.Cells[0]
	assert.Equal(t, "MONDAY", cell.Weekday)
	assert.Equal(t, "14:00", cell.Start)
	assert.Equal(t, "16:00", cell.End)
	assert.Equal(t, timetable.CellDual, cell.State.Kind)
	assert.Equal(t, "LAB_ODD", cell.State.OddKey)
	assert.Equal(t, "LAB_EVEN", cell.State.EvenKey)
}
