package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/chupolovski/planner-api/internal/models"
)

// PresetRepository handles persistence for saved course combinations.
type PresetRepository struct {
	db *sqlx.DB
}

// NewPresetRepository creates a new repository instance.
func NewPresetRepository(db *sqlx.DB) *PresetRepository {
	return &PresetRepository{db: db}
}

// List returns presets ordered by creation time, newest first.
func (r *PresetRepository) List(ctx context.Context) ([]models.Preset, error) {
	const query = `SELECT id, name, course_keys, days_attended, idle_hours, created_at FROM presets ORDER BY created_at DESC`
	var presets []models.Preset
	if err := r.db.SelectContext(ctx, &presets, query); err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}
	return presets, nil
}

// FindByID returns a preset by id.
func (r *PresetRepository) FindByID(ctx context.Context, id string) (*models.Preset, error) {
	const query = `SELECT id, name, course_keys, days_attended, idle_hours, created_at FROM presets WHERE id = $1`
	var preset models.Preset
	if err := r.db.GetContext(ctx, &preset, query, id); err != nil {
		return nil, err
	}
	return &preset, nil
}

// Create persists a new preset.
func (r *PresetRepository) Create(ctx context.Context, preset *models.Preset) error {
	if preset.ID == "" {
		preset.ID = uuid.NewString()
	}
	if preset.CreatedAt.IsZero() {
		preset.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO presets (id, name, course_keys, days_attended, idle_hours, created_at)
		VALUES (:id, :name, :course_keys, :days_attended, :idle_hours, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, preset); err != nil {
		return fmt.Errorf("create preset: %w", err)
	}
	return nil
}

// Delete removes a preset record.
func (r *PresetRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM presets WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete preset: %w", err)
	}
	return nil
}
