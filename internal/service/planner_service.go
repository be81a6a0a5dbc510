package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chupolovski/planner-api/internal/dto"
	"github.com/chupolovski/planner-api/internal/timetable"
	appErrors "github.com/chupolovski/planner-api/pkg/errors"
)

// poolProvider hands out the catalog snapshot a new session pins.
type poolProvider interface {
	Pool() timetable.Pool
}

// PlannerConfig tunes session lifetime and capacity.
type PlannerConfig struct {
	SessionTTL  time.Duration
	MaxSessions int
}

// planningSession is one user's in-progress weekly plan. The grid is
// single-owner; all access goes through the store's per-session lock.
type planningSession struct {
	ID         string
	Pool       timetable.Pool
	Grid       *timetable.Grid
	Priorities timetable.PriorityList
	CreatedAt  time.Time
	TouchedAt  time.Time

	mu sync.Mutex
}

// PlannerService owns planning sessions: creation, interactive placement
// with priority arbitration, removal, snapshots and statistics.
type PlannerService struct {
	catalog   poolProvider
	cfg       PlannerConfig
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*planningSession
}

// NewPlannerService creates the planner service.
func NewPlannerService(catalog poolProvider, cfg PlannerConfig, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *PlannerService {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 2 * time.Hour
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = 256
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlannerService{
		catalog:   catalog,
		cfg:       cfg,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		sessions:  make(map[string]*planningSession),
	}
}

// ActiveSessions reports the live session count, expired ones excluded.
func (s *PlannerService) ActiveSessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, sess := range s.sessions {
		if time.Since(sess.TouchedAt) <= s.cfg.SessionTTL {
			count++
		}
	}
	return count
}

// CreateSession opens a planning session pinned to the current catalog
// snapshot. The optional priority list arbitrates later conflicts.
func (s *PlannerService) CreateSession(ctx context.Context, req dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}

	pool := s.catalog.Pool()
	for _, key := range req.Priorities {
		if _, err := pool.Lookup(key); err != nil {
			return nil, appErrors.Clone(appErrors.ErrUnknownCourse, "priority list references "+key)
		}
	}

	now := time.Now().UTC()
	sess := &planningSession{
		ID:         uuid.NewString(),
		Pool:       pool,
		Grid:       timetable.NewGrid(s.logger),
		Priorities: append(timetable.PriorityList(nil), req.Priorities...),
		CreatedAt:  now,
		TouchedAt:  now,
	}

	s.mu.Lock()
	s.evictExpiredLocked()
	if len(s.sessions) >= s.cfg.MaxSessions {
		s.mu.Unlock()
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "session capacity reached")
	}
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	s.logger.Info("planning session created",
		zap.String("session_id", sess.ID),
		zap.Int("pool_size", len(pool)),
		zap.Int("priorities", len(req.Priorities)))
	return &dto.CreateSessionResponse{SessionID: sess.ID, Courses: len(pool)}, nil
}

// PlaceCourse attempts an interactive placement. Conflicts are arbitrated
// against the session priority list: a strictly better-ranked occupant
// rejects the newcomer; otherwise the caller is asked to confirm replacing
// every conflicting course, and a confirmed request applies the swap.
func (s *PlannerService) PlaceCourse(ctx context.Context, sessionID string, req dto.PlaceCourseRequest) (*dto.PlaceCourseResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid placement payload")
	}

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	course, err := sess.Pool.Lookup(req.CourseKey)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrUnknownCourse, err.Error())
	}

	outcome := sess.Grid.PlaceCourse(course)
	if outcome.Status != timetable.PlacementConflict {
		s.metrics.ObservePlacement(string(outcome.Status))
		return &dto.PlaceCourseResponse{Status: string(outcome.Status)}, nil
	}

	resolution := timetable.Resolve(sess.Priorities, req.CourseKey, outcome.ConflictsWith)
	switch resolution.Decision {
	case timetable.DecisionReject:
		s.metrics.ObservePlacement(dto.PlacementRejected)
		return &dto.PlaceCourseResponse{
			Status:        dto.PlacementRejected,
			ConflictsWith: outcome.ConflictsWith,
		}, nil
	case timetable.DecisionReplaceAll:
		if !req.ConfirmReplace {
			s.metrics.ObservePlacement(dto.PlacementNeedsConfirmation)
			return &dto.PlaceCourseResponse{
				Status:        dto.PlacementNeedsConfirmation,
				ConflictsWith: outcome.ConflictsWith,
			}, nil
		}
		for _, key := range resolution.Remove {
			sess.Grid.Remove(key)
		}
		retry := sess.Grid.PlaceCourse(course)
		if retry.Status == timetable.PlacementConflict {
			// Conflicts were computed under lock; a failed retry means a
			// grid invariant broke, not a race.
			s.logger.Error("replacement retry conflicted",
				zap.String("session_id", sessionID),
				zap.String("course", req.CourseKey),
				zap.Strings("conflicts", retry.ConflictsWith))
			return nil, appErrors.Clone(appErrors.ErrInternal, "replacement failed to converge")
		}
		s.metrics.ObservePlacement(dto.PlacementReplacedAndPlaced)
		return &dto.PlaceCourseResponse{
			Status:  dto.PlacementReplacedAndPlaced,
			Removed: resolution.Remove,
		}, nil
	default:
		s.metrics.ObservePlacement(string(outcome.Status))
		return &dto.PlaceCourseResponse{Status: string(outcome.Status)}, nil
	}
}

// ApplyCombination places a full course set in batch mode: ReplaceAll
// decisions apply immediately without confirmation, Reject skips the course.
func (s *PlannerService) ApplyCombination(ctx context.Context, sessionID string, courseKeys []string) (*dto.ApplyPresetResponse, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	resp := &dto.ApplyPresetResponse{}
	for _, key := range courseKeys {
		course, err := sess.Pool.Lookup(key)
		if err != nil {
			resp.Skipped = append(resp.Skipped, key)
			continue
		}
		outcome := sess.Grid.PlaceCourse(course)
		if outcome.Status != timetable.PlacementConflict {
			resp.Placed = append(resp.Placed, key)
			continue
		}
		resolution := timetable.Resolve(sess.Priorities, key, outcome.ConflictsWith)
		if resolution.Decision != timetable.DecisionReplaceAll {
			resp.Skipped = append(resp.Skipped, key)
			continue
		}
		for _, victim := range resolution.Remove {
			sess.Grid.Remove(victim)
			resp.Removed = append(resp.Removed, victim)
		}
		if retry := sess.Grid.PlaceCourse(course); retry.Status == timetable.PlacementConflict {
			resp.Skipped = append(resp.Skipped, key)
			continue
		}
		resp.Placed = append(resp.Placed, key)
	}
	return resp, nil
}

// RemoveCourse clears every cell the course occupies.
func (s *PlannerService) RemoveCourse(ctx context.Context, sessionID, courseKey string) error {
	sess, err := s.session(sessionID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	placed := false
	for _, key := range sess.Grid.CourseKeys() {
		if key == courseKey {
			placed = true
			break
		}
	}
	if !placed {
		return appErrors.Clone(appErrors.ErrNotFound, "course not placed in session")
	}
	sess.Grid.Remove(courseKey)
	return nil
}

// SetPriorities replaces the session priority list.
func (s *PlannerService) SetPriorities(ctx context.Context, sessionID string, req dto.SetPrioritiesRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid priorities payload")
	}

	sess, err := s.session(sessionID)
	if err != nil {
		return err
	}

	for _, key := range req.Priorities {
		if _, err := sess.Pool.Lookup(key); err != nil {
			return appErrors.Clone(appErrors.ErrUnknownCourse, "priority list references "+key)
		}
	}

	sess.mu.Lock()
	sess.Priorities = append(timetable.PriorityList(nil), req.Priorities...)
	sess.mu.Unlock()
	return nil
}

// Snapshot returns the session's current grid occupancy.
func (s *PlannerService) Snapshot(ctx context.Context, sessionID string) (*dto.SessionResponse, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	resp := &dto.SessionResponse{
		SessionID: sessionID,
		Courses:   sess.Grid.CourseKeys(),
	}
	for _, addr := range sess.Grid.Addresses() {
		state := sess.Grid.OccupantAt(addr)
		if state.Kind == timetable.CellEmpty {
			continue
		}
		resp.Cells = append(resp.Cells, dto.GridCell{
			Weekday: addr.Weekday.String(),
			Start:   timetable.MinutesToClock(addr.Start),
			End:     timetable.MinutesToClock(addr.End),
			State:   state,
		})
	}
	sort.Slice(resp.Cells, func(i, j int) bool {
		if resp.Cells[i].Weekday != resp.Cells[j].Weekday {
			di, _ := timetable.ParseWeekday(resp.Cells[i].Weekday)
			dj, _ := timetable.ParseWeekday(resp.Cells[j].Weekday)
			return di < dj
		}
		return resp.Cells[i].Start < resp.Cells[j].Start
	})
	return resp, nil
}

// Stats computes attendance statistics for the placed course set.
func (s *PlannerService) Stats(ctx context.Context, sessionID string) (*dto.SessionStatsResponse, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	keys := sess.Grid.CourseKeys()
	days, err := timetable.DaysAttended(sess.Pool, keys)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute attendance days")
	}
	idle, err := timetable.IdleHours(sess.Pool, keys)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute idle hours")
	}
	return &dto.SessionStatsResponse{Courses: keys, DaysAttended: days, IdleHours: idle}, nil
}

// PlacedCourses lists the courses currently on the session grid together
// with the pool they resolve against; used by exports.
func (s *PlannerService) PlacedCourses(ctx context.Context, sessionID string) ([]string, timetable.Pool, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.Grid.CourseKeys(), sess.Pool, nil
}

// session resolves a live session, refreshing its TTL clock. TouchedAt is
// only read or written under s.mu.
func (s *PlannerService) session(id string) (*planningSession, error) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if ok && time.Since(sess.TouchedAt) > s.cfg.SessionTTL {
		delete(s.sessions, id)
		ok = false
	}
	if ok {
		sess.TouchedAt = time.Now().UTC()
	}
	s.mu.Unlock()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrSessionExpired, "")
	}
	return sess, nil
}

// evictExpiredLocked drops expired sessions. Caller holds s.mu.
func (s *PlannerService) evictExpiredLocked() {
	for id, sess := range s.sessions {
		if time.Since(sess.TouchedAt) > s.cfg.SessionTTL {
			delete(s.sessions, id)
		}
	}
}
