package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPool(t *testing.T) Pool {
	t.Helper()
	return Pool{
		"algo": {Key: "algo", Sessions: []CourseSession{
			mustSession(t, Saturday, "08:00", "09:30", ParityNone),
		}},
		"db": {Key: "db", Sessions: []CourseSession{
			mustSession(t, Saturday, "10:00", "11:00", ParityNone),
		}},
		"os": {Key: "os", Sessions: []CourseSession{
			mustSession(t, Monday, "08:00", "10:00", ParityNone),
			mustSession(t, Wednesday, "08:00", "10:00", ParityNone),
		}},
	}
}

func TestDaysAttended(t *testing.T) {
	pool := testPool(t)

	days, err := DaysAttended(pool, []string{"algo", "db"})
	require.NoError(t, err)
	assert.Equal(t, 1, days, "two courses on the same day count once")

	days, err = DaysAttended(pool, []string{"algo", "os"})
	require.NoError(t, err)
	assert.Equal(t, 3, days)

	days, err = DaysAttended(pool, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, days)
}

func TestDaysAttendedUnknownKey(t *testing.T) {
	_, err := DaysAttended(testPool(t), []string{"algo", "ghost"})
	var unknown *UnknownCourseError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "ghost", unknown.Key)
}

func TestIdleHoursSingleGap(t *testing.T) {
	// 08:00-09:30 then 10:00-11:00 leaves a 30 minute gap.
	idle, err := IdleHours(testPool(t), []string{"algo", "db"})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, idle, 1e-9)
}

func TestIdleHoursSparseDaysContributeNothing(t *testing.T) {
	idle, err := IdleHours(testPool(t), []string{"algo", "os"})
	require.NoError(t, err)
	assert.Zero(t, idle, "days with at most one session have no idle time")
}

func TestIdleHoursBackToBack(t *testing.T) {
	pool := Pool{
		"a": {Key: "a", Sessions: []CourseSession{mustSession(t, Sunday, "08:00", "10:00", ParityNone)}},
		"b": {Key: "b", Sessions: []CourseSession{mustSession(t, Sunday, "10:00", "12:00", ParityNone)}},
	}
	idle, err := IdleHours(pool, []string{"a", "b"})
	require.NoError(t, err)
	assert.Zero(t, idle)
}

func TestIdleHoursClampsOverlap(t *testing.T) {
	// Overlapping sessions should never reach the calculator; when they do,
	// the negative gap clamps to zero instead of reducing the total.
	pool := Pool{
		"a": {Key: "a", Sessions: []CourseSession{mustSession(t, Sunday, "08:00", "10:00", ParityNone)}},
		"b": {Key: "b", Sessions: []CourseSession{mustSession(t, Sunday, "09:00", "11:00", ParityNone)}},
		"c": {Key: "c", Sessions: []CourseSession{mustSession(t, Sunday, "12:00", "13:00", ParityNone)}},
	}
	idle, err := IdleHours(pool, []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, idle, 1e-9)
}
