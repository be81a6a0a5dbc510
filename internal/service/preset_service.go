package service

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/chupolovski/planner-api/internal/dto"
	"github.com/chupolovski/planner-api/internal/models"
	"github.com/chupolovski/planner-api/internal/timetable"
	appErrors "github.com/chupolovski/planner-api/pkg/errors"
)

type presetRepository interface {
	List(ctx context.Context) ([]models.Preset, error)
	FindByID(ctx context.Context, id string) (*models.Preset, error)
	Create(ctx context.Context, preset *models.Preset) error
	Delete(ctx context.Context, id string) error
}

type combinationApplier interface {
	ApplyCombination(ctx context.Context, sessionID string, courseKeys []string) (*dto.ApplyPresetResponse, error)
}

// PresetService stores preferred course combinations and replays them onto
// planning sessions. Statistics are snapshotted at save time against the
// then-current catalog.
type PresetService struct {
	repo      presetRepository
	catalog   poolProvider
	planner   combinationApplier
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPresetService creates the preset service.
func NewPresetService(repo presetRepository, catalog poolProvider, planner combinationApplier, validate *validator.Validate, logger *zap.Logger) *PresetService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PresetService{repo: repo, catalog: catalog, planner: planner, validator: validate, logger: logger}
}

// List returns saved presets, newest first.
func (s *PresetService) List(ctx context.Context) ([]models.Preset, error) {
	presets, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list presets")
	}
	return presets, nil
}

// Save validates the combination is conflict-free against the current
// catalog, snapshots its statistics and persists it.
func (s *PresetService) Save(ctx context.Context, req dto.SavePresetRequest) (*models.Preset, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid preset payload")
	}

	pool := s.catalog.Pool()
	courses := make([]timetable.Course, 0, len(req.Courses))
	for _, key := range req.Courses {
		course, err := pool.Lookup(key)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrUnknownCourse, err.Error())
		}
		courses = append(courses, course)
	}
	for i := range courses {
		for j := i + 1; j < len(courses); j++ {
			if timetable.SchedulesConflict(courses[i].Sessions, courses[j].Sessions) {
				return nil, appErrors.Clone(appErrors.ErrConflict, courses[i].Key+" conflicts with "+courses[j].Key)
			}
		}
	}

	days, err := timetable.DaysAttended(pool, req.Courses)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute preset statistics")
	}
	idle, err := timetable.IdleHours(pool, req.Courses)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute preset statistics")
	}

	keys, err := json.Marshal(req.Courses)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode preset")
	}

	preset := &models.Preset{
		Name:         req.Name,
		CourseKeys:   keys,
		DaysAttended: days,
		IdleHours:    idle,
	}
	if err := s.repo.Create(ctx, preset); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store preset")
	}

	s.logger.Info("preset saved", zap.String("id", preset.ID), zap.Int("courses", len(req.Courses)))
	return preset, nil
}

// Delete removes a preset.
func (s *PresetService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "preset not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load preset")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete preset")
	}
	return nil
}

// Apply replays a preset onto a planning session in batch mode.
func (s *PresetService) Apply(ctx context.Context, id string, req dto.ApplyPresetRequest) (*dto.ApplyPresetResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid apply payload")
	}

	preset, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "preset not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load preset")
	}

	var keys []string
	if err := json.Unmarshal(preset.CourseKeys, &keys); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "corrupt preset payload")
	}

	return s.planner.ApplyCombination(ctx, req.SessionID, keys)
}
