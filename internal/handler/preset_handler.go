package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chupolovski/planner-api/internal/dto"
	"github.com/chupolovski/planner-api/internal/models"
	appErrors "github.com/chupolovski/planner-api/pkg/errors"
	"github.com/chupolovski/planner-api/pkg/response"
)

type presetService interface {
	List(ctx context.Context) ([]models.Preset, error)
	Save(ctx context.Context, req dto.SavePresetRequest) (*models.Preset, error)
	Delete(ctx context.Context, id string) error
	Apply(ctx context.Context, id string, req dto.ApplyPresetRequest) (*dto.ApplyPresetResponse, error)
}

// PresetHandler handles saved-combination endpoints.
type PresetHandler struct {
	service presetService
}

// NewPresetHandler constructs a preset handler.
func NewPresetHandler(svc presetService) *PresetHandler {
	return &PresetHandler{service: svc}
}

// List returns saved presets.
func (h *PresetHandler) List(c *gin.Context) {
	presets, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, presets, nil)
}

// Save stores a preferred combination.
func (h *PresetHandler) Save(c *gin.Context) {
	var req dto.SavePresetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	preset, err := h.service.Save(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, preset)
}

// Delete removes a preset.
func (h *PresetHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Apply replays a preset onto a planning session in batch mode.
func (h *PresetHandler) Apply(c *gin.Context) {
	var req dto.ApplyPresetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	resp, err := h.service.Apply(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}
