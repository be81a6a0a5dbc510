package service

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chupolovski/planner-api/internal/dto"
	"github.com/chupolovski/planner-api/internal/models"
	appErrors "github.com/chupolovski/planner-api/pkg/errors"
)

type courseRepoStub struct {
	rows []models.CourseWithSessions
	err  error
}

func (s *courseRepoStub) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	out := make([]models.Course, 0, len(s.rows))
	for _, row := range s.rows {
		out = append(out, row.Course)
	}
	return out, len(out), nil
}

func (s *courseRepoStub) FindByKey(ctx context.Context, key string) (*models.Course, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, row := range s.rows {
		if row.Key == key {
			course := row.Course
			return &course, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *courseRepoStub) SessionsByKey(ctx context.Context, key string) ([]models.CourseSession, error) {
	for _, row := range s.rows {
		if row.Key == key {
			return row.Sessions, nil
		}
	}
	return nil, nil
}

func (s *courseRepoStub) AllWithSessions(ctx context.Context) ([]models.CourseWithSessions, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}

func (s *courseRepoStub) Upsert(ctx context.Context, course *models.CourseWithSessions) error {
	if s.err != nil {
		return s.err
	}
	for i, row := range s.rows {
		if row.Key == course.Key {
			s.rows[i] = *course
			return nil
		}
	}
	s.rows = append(s.rows, *course)
	return nil
}

func storedCourse(key, day, start, end, parity string) models.CourseWithSessions {
	return models.CourseWithSessions{
		Course: models.Course{Key: key, Name: key},
		Sessions: []models.CourseSession{
			{CourseKey: key, DayOfWeek: day, StartTime: start, EndTime: end, Parity: parity},
		},
	}
}

func TestCatalogRefreshSkipsMalformedRows(t *testing.T) {
	repo := &courseRepoStub{rows: []models.CourseWithSessions{
		storedCourse("GOOD", "SATURDAY", "08:00", "09:30", ""),
		storedCourse("BAD", "FRIDAY", "08:00", "09:30", ""),
	}}
	svc := NewCatalogService(repo, nil, "", nil)

	require.NoError(t, svc.Refresh(context.Background()))

	pool := svc.Pool()
	assert.Len(t, pool, 1)
	assert.Contains(t, pool, "GOOD")
}

func TestCatalogGetUnknownKey(t *testing.T) {
	svc := NewCatalogService(&courseRepoStub{}, nil, "", nil)

	_, err := svc.Get(context.Background(), "GHOST")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnknownCourse.Code, appErrors.FromError(err).Code)
}

func TestCatalogImport(t *testing.T) {
	dir := t.TempDir()
	content := `{"courses": [
		{"key": "MATH101", "name": "Calculus I", "sessions": [{"day": "saturday", "start": "08:00", "end": "09:30"}]},
		{"key": "BROKEN", "name": "Broken", "sessions": [{"day": "friday", "start": "08:00", "end": "09:30"}]}
	]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "catalog.json"), []byte(content), 0o600))

	repo := &courseRepoStub{}
	svc := NewCatalogService(repo, nil, dir, nil)

	resp, err := svc.Import(context.Background(), dto.ImportCatalogRequest{File: "catalog.json"})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Imported)
	assert.Equal(t, []string{"BROKEN"}, resp.Skipped)

	pool := svc.Pool()
	assert.Contains(t, pool, "MATH101")
}

func TestCatalogImportStrictBadTime(t *testing.T) {
	dir := t.TempDir()
	content := `{"courses": [
		{"key": "MATH101", "name": "Calculus I", "sessions": [{"day": "saturday", "start": "8 o'clock", "end": "09:30"}]}
	]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "catalog.json"), []byte(content), 0o600))

	svc := NewCatalogService(&courseRepoStub{}, nil, dir, nil)

	_, err := svc.Import(context.Background(), dto.ImportCatalogRequest{File: "catalog.json", Strict: true})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTimeFormat.Code, appErrors.FromError(err).Code)
	assert.Contains(t, err.Error(), "MATH101")
}

func TestCatalogImportStrictBadWeekday(t *testing.T) {
	dir := t.TempDir()
	content := `{"courses": [
		{"key": "MATH101", "name": "Calculus I", "sessions": [{"day": "friday", "start": "08:00", "end": "09:30"}]}
	]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "catalog.json"), []byte(content), 0o600))

	svc := NewCatalogService(&courseRepoStub{}, nil, dir, nil)

	_, err := svc.Import(context.Background(), dto.ImportCatalogRequest{File: "catalog.json", Strict: true})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCatalogImportUnreadableFile(t *testing.T) {
	svc := NewCatalogService(&courseRepoStub{}, nil, t.TempDir(), nil)

	_, err := svc.Import(context.Background(), dto.ImportCatalogRequest{File: "missing.json"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
