package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/chupolovski/planner-api/internal/models"
)

// CourseRepository handles persistence for catalog courses and their sessions.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository creates a new repository instance.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns catalog courses matching filters with pagination metadata.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	base := "FROM courses WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Query != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(key) LIKE $%d OR LOWER(name) LIKE $%d OR LOWER(code) LIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Query)+"%")
	}
	if filter.Instructor != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(instructor) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Instructor)+"%")
	}
	if filter.DayOfWeek != "" {
		conditions = append(conditions, fmt.Sprintf("key IN (SELECT course_key FROM course_sessions WHERE day_of_week = $%d)", len(args)+1))
		args = append(args, strings.ToUpper(filter.DayOfWeek))
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "key"
	}
	allowedSorts := map[string]bool{
		"key":        true,
		"name":       true,
		"code":       true,
		"instructor": true,
		"credits":    true,
		"created_at": true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "key"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT key, name, code, instructor, credits, created_at, updated_at %s ORDER BY %s %s LIMIT %d OFFSET %d", base, sortBy, order, size, offset)
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}

	return courses, total, nil
}

// FindByKey returns a single course by its catalog key.
func (r *CourseRepository) FindByKey(ctx context.Context, key string) (*models.Course, error) {
	const query = `SELECT key, name, code, instructor, credits, created_at, updated_at FROM courses WHERE key = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, key); err != nil {
		return nil, err
	}
	return &course, nil
}

// SessionsByKey returns the weekly meetings of one course.
func (r *CourseRepository) SessionsByKey(ctx context.Context, key string) ([]models.CourseSession, error) {
	const query = `SELECT id, course_key, day_of_week, start_time, end_time, parity, location FROM course_sessions WHERE course_key = $1 ORDER BY day_of_week, start_time`
	var sessions []models.CourseSession
	if err := r.db.SelectContext(ctx, &sessions, query, key); err != nil {
		return nil, fmt.Errorf("list course sessions: %w", err)
	}
	return sessions, nil
}

// SessionsByKeys returns meetings for a set of courses in one round trip.
func (r *CourseRepository) SessionsByKeys(ctx context.Context, keys []string) ([]models.CourseSession, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT id, course_key, day_of_week, start_time, end_time, parity, location FROM course_sessions WHERE course_key IN (?) ORDER BY course_key, day_of_week, start_time`, keys)
	if err != nil {
		return nil, fmt.Errorf("build sessions query: %w", err)
	}
	query = r.db.Rebind(query)
	var sessions []models.CourseSession
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, fmt.Errorf("list course sessions: %w", err)
	}
	return sessions, nil
}

// AllWithSessions loads the full catalog, used to build the in-memory pool.
func (r *CourseRepository) AllWithSessions(ctx context.Context) ([]models.CourseWithSessions, error) {
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, `SELECT key, name, code, instructor, credits, created_at, updated_at FROM courses ORDER BY key`); err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	var sessions []models.CourseSession
	if err := r.db.SelectContext(ctx, &sessions, `SELECT id, course_key, day_of_week, start_time, end_time, parity, location FROM course_sessions ORDER BY course_key, day_of_week, start_time`); err != nil {
		return nil, fmt.Errorf("load catalog sessions: %w", err)
	}

	byKey := make(map[string][]models.CourseSession, len(courses))
	for _, s := range sessions {
		byKey[s.CourseKey] = append(byKey[s.CourseKey], s)
	}

	out := make([]models.CourseWithSessions, 0, len(courses))
	for _, c := range courses {
		out = append(out, models.CourseWithSessions{Course: c, Sessions: byKey[c.Key]})
	}
	return out, nil
}

// ExistsByKey checks whether a course key is already taken.
func (r *CourseRepository) ExistsByKey(ctx context.Context, key string) (bool, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, `SELECT 1 FROM courses WHERE key = $1 LIMIT 1`, key); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check course key: %w", err)
	}
	return true, nil
}

// Upsert inserts or replaces a course together with its sessions.
func (r *CourseRepository) Upsert(ctx context.Context, course *models.CourseWithSessions) error {
	now := time.Now().UTC()
	if course.CreatedAt.IsZero() {
		course.CreatedAt = now
	}
	course.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback()

	const courseQuery = `INSERT INTO courses (key, name, code, instructor, credits, created_at, updated_at)
		VALUES (:key, :name, :code, :instructor, :credits, :created_at, :updated_at)
		ON CONFLICT (key) DO UPDATE SET name = EXCLUDED.name, code = EXCLUDED.code, instructor = EXCLUDED.instructor, credits = EXCLUDED.credits, updated_at = EXCLUDED.updated_at`
	if _, err := tx.NamedExecContext(ctx, courseQuery, course.Course); err != nil {
		return fmt.Errorf("upsert course: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM course_sessions WHERE course_key = $1`, course.Key); err != nil {
		return fmt.Errorf("clear course sessions: %w", err)
	}

	const sessionQuery = `INSERT INTO course_sessions (id, course_key, day_of_week, start_time, end_time, parity, location)
		VALUES (:id, :course_key, :day_of_week, :start_time, :end_time, :parity, :location)`
	for i := range course.Sessions {
		s := &course.Sessions[i]
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
		s.CourseKey = course.Key
		if _, err := tx.NamedExecContext(ctx, sessionQuery, s); err != nil {
			return fmt.Errorf("insert course session: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

// Delete removes a course and its sessions.
func (r *CourseRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return nil
}
