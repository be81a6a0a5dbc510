package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chupolovski/planner-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	cleanup := func() {
		_ = sqlxDB.Close()
		db.Close()
	}
	return sqlxDB, mock, cleanup
}

func TestCourseRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	rows := sqlmock.NewRows([]string{"key", "name", "code", "instructor", "credits"}).
		AddRow("MATH101", "Calculus I", "1101", "Dr. Hoseini", 3)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT key, name, code, instructor, credits, created_at, updated_at FROM courses WHERE 1=1")).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM courses WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	courses, total, err := repo.List(context.Background(), models.CourseFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, courses, 1)
	assert.Equal(t, "MATH101", courses[0].Key)
}

func TestCourseRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("LOWER(instructor) LIKE $2")).
		WithArgs("%calc%", "%hoseini%").
		WillReturnRows(sqlmock.NewRows([]string{"key", "name", "code", "instructor", "credits"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("%calc%", "%hoseini%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, total, err := repo.List(context.Background(), models.CourseFilter{Query: "Calc", Instructor: "Hoseini"})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestCourseRepositoryFindByKeyMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT key, name, code, instructor, credits, created_at, updated_at FROM courses WHERE key = $1")).
		WithArgs("NOPE").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByKey(context.Background(), "NOPE")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestCourseRepositorySessionsByKey(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	rows := sqlmock.NewRows([]string{"id", "course_key", "day_of_week", "start_time", "end_time", "parity", "location"}).
		AddRow("s-1", "MATH101", "SATURDAY", "08:00", "09:30", "", "B201").
		AddRow("s-2", "MATH101", "MONDAY", "08:00", "09:30", "ODD", "B201")

	mock.ExpectQuery(regexp.QuoteMeta("FROM course_sessions WHERE course_key = $1")).
		WithArgs("MATH101").
		WillReturnRows(rows)

	sessions, err := repo.SessionsByKey(context.Background(), "MATH101")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "ODD", sessions[1].Parity)
}

func TestCourseRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO courses")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM course_sessions WHERE course_key = $1")).
		WithArgs("MATH101").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO course_sessions")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	course := &models.CourseWithSessions{
		Course: models.Course{Key: "MATH101", Name: "Calculus I"},
		Sessions: []models.CourseSession{
			{DayOfWeek: "SATURDAY", StartTime: "08:00", EndTime: "09:30"},
		},
	}
	err := repo.Upsert(context.Background(), course)
	require.NoError(t, err)
	assert.NotEmpty(t, course.Sessions[0].ID)
	assert.Equal(t, "MATH101", course.Sessions[0].CourseKey)
}

func TestPresetRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPresetRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO presets")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	preset := &models.Preset{Name: "Fall plan", CourseKeys: []byte(`["MATH101"]`)}
	err := repo.Create(context.Background(), preset)
	require.NoError(t, err)
	assert.NotEmpty(t, preset.ID)
	assert.False(t, preset.CreatedAt.IsZero())
}

func TestPresetRepositoryFindByIDMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPresetRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM presets WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
