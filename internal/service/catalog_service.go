package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/chupolovski/planner-api/internal/catalog"
	"github.com/chupolovski/planner-api/internal/dto"
	"github.com/chupolovski/planner-api/internal/models"
	"github.com/chupolovski/planner-api/internal/timetable"
	appErrors "github.com/chupolovski/planner-api/pkg/errors"
)

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error)
	FindByKey(ctx context.Context, key string) (*models.Course, error)
	SessionsByKey(ctx context.Context, key string) ([]models.CourseSession, error)
	AllWithSessions(ctx context.Context) ([]models.CourseWithSessions, error)
	Upsert(ctx context.Context, course *models.CourseWithSessions) error
}

// CatalogService owns the engine-facing course pool. The pool is rebuilt
// from storage on startup and after every import; planning sessions take a
// reference to the immutable snapshot current at creation time, so imports
// never mutate a pool a live session is reading.
type CatalogService struct {
	repo      courseRepository
	cache     *CacheService
	importDir string
	logger    *zap.Logger

	mu   sync.RWMutex
	pool timetable.Pool
}

// NewCatalogService creates the catalog service. Call Refresh before serving.
func NewCatalogService(repo courseRepository, cache *CacheService, importDir string, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{repo: repo, cache: cache, importDir: importDir, logger: logger, pool: timetable.Pool{}}
}

// Pool returns the current catalog snapshot. The returned map must be
// treated as read-only; it is replaced wholesale, never mutated.
func (s *CatalogService) Pool() timetable.Pool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pool
}

// Refresh rebuilds the pool from storage. Rows the engine rejects are
// logged and skipped so one bad record cannot take the catalog down.
func (s *CatalogService) Refresh(ctx context.Context) error {
	rows, err := s.repo.AllWithSessions(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load catalog")
	}

	pool := make(timetable.Pool, len(rows))
	for _, row := range rows {
		course, err := engineCourse(row)
		if err != nil {
			s.logger.Warn("skipping malformed catalog row", zap.String("key", row.Key), zap.Error(err))
			continue
		}
		pool[row.Key] = course
	}

	s.mu.Lock()
	s.pool = pool
	s.mu.Unlock()

	s.logger.Info("catalog pool refreshed", zap.Int("courses", len(pool)))
	return nil
}

// List returns catalog courses with pagination metadata.
func (s *CatalogService) List(ctx context.Context, query dto.CourseQuery) ([]models.Course, int, error) {
	filter := models.CourseFilter{
		Query:      query.Query,
		Instructor: query.Instructor,
		DayOfWeek:  query.DayOfWeek,
		Page:       query.Page,
		PageSize:   query.PageSize,
	}
	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return courses, total, nil
}

// Get returns one course with its sessions.
func (s *CatalogService) Get(ctx context.Context, key string) (*models.CourseWithSessions, error) {
	course, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrUnknownCourse, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	sessions, err := s.repo.SessionsByKey(ctx, key)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course sessions")
	}
	return &models.CourseWithSessions{Course: *course, Sessions: sessions}, nil
}

// Import reads a JSON catalog dump, upserts valid entries and reports
// skipped ones. Search caches are invalidated and the pool rebuilt.
func (s *CatalogService) Import(ctx context.Context, req dto.ImportCatalogRequest) (*dto.ImportCatalogResponse, error) {
	file, err := catalog.Load(s.importDir, req.File)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unreadable catalog file")
	}

	resp := &dto.ImportCatalogResponse{}
	for _, entry := range file.Courses {
		if _, err := catalog.Validate(entry); err != nil {
			if req.Strict {
				return nil, entryError(err)
			}
			s.logger.Warn("skipping catalog entry", zap.String("key", entry.Key), zap.Error(err))
			resp.Skipped = append(resp.Skipped, entry.Key)
			continue
		}
		row := catalog.ToModel(entry)
		if err := s.repo.Upsert(ctx, &row); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store catalog entry")
		}
		resp.Imported++
	}
	sort.Strings(resp.Skipped)

	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, "search:*")
	}

	s.logger.Info("catalog imported",
		zap.String("file", req.File),
		zap.Int("imported", resp.Imported),
		zap.Int("skipped", len(resp.Skipped)))
	return resp, nil
}

// entryError maps a validation failure onto the import error surface.
// Time-of-day failures keep their own code so clients can tell a bad
// clock string apart from other malformed fields.
func entryError(err error) error {
	var timeErr *timetable.InvalidTimeError
	if errors.As(err, &timeErr) {
		return appErrors.Clone(appErrors.ErrInvalidTimeFormat, err.Error())
	}
	return appErrors.Clone(appErrors.ErrValidation, err.Error())
}

// engineCourse converts a stored row into the engine representation.
func engineCourse(row models.CourseWithSessions) (timetable.Course, error) {
	entry := catalog.CourseEntry{
		Key:        row.Key,
		Name:       row.Name,
		Code:       row.Code,
		Instructor: row.Instructor,
		Credits:    row.Credits,
	}
	for _, s := range row.Sessions {
		entry.Sessions = append(entry.Sessions, catalog.SessionEntry{
			Day:      s.DayOfWeek,
			Start:    s.StartTime,
			End:      s.EndTime,
			Parity:   s.Parity,
			Location: s.Location,
		})
	}
	return catalog.Validate(entry)
}
