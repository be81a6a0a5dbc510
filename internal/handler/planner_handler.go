package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chupolovski/planner-api/internal/dto"
	appErrors "github.com/chupolovski/planner-api/pkg/errors"
	"github.com/chupolovski/planner-api/pkg/response"
)

type plannerService interface {
	CreateSession(ctx context.Context, req dto.CreateSessionRequest) (*dto.CreateSessionResponse, error)
	PlaceCourse(ctx context.Context, sessionID string, req dto.PlaceCourseRequest) (*dto.PlaceCourseResponse, error)
	RemoveCourse(ctx context.Context, sessionID, courseKey string) error
	SetPriorities(ctx context.Context, sessionID string, req dto.SetPrioritiesRequest) error
	Snapshot(ctx context.Context, sessionID string) (*dto.SessionResponse, error)
	Stats(ctx context.Context, sessionID string) (*dto.SessionStatsResponse, error)
}

// PlannerHandler handles planning-session endpoints.
type PlannerHandler struct {
	service plannerService
}

// NewPlannerHandler constructs a planner handler.
func NewPlannerHandler(svc plannerService) *PlannerHandler {
	return &PlannerHandler{service: svc}
}

// CreateSession opens a planning session over the current catalog snapshot.
func (h *PlannerHandler) CreateSession(c *gin.Context) {
	// An empty body is a session with no priority list.
	var req dto.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	resp, err := h.service.CreateSession(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, resp)
}

// PlaceCourse attempts an interactive placement on the session grid.
func (h *PlannerHandler) PlaceCourse(c *gin.Context) {
	var req dto.PlaceCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	resp, err := h.service.PlaceCourse(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	status := http.StatusOK
	if resp.Status == dto.PlacementRejected {
		status = http.StatusConflict
	}
	response.JSON(c, status, resp, nil)
}

// RemoveCourse clears a placed course from every cell it occupies.
func (h *PlannerHandler) RemoveCourse(c *gin.Context) {
	if err := h.service.RemoveCourse(c.Request.Context(), c.Param("id"), c.Param("key")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SetPriorities replaces the session priority list.
func (h *PlannerHandler) SetPriorities(c *gin.Context) {
	var req dto.SetPrioritiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.service.SetPriorities(c.Request.Context(), c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Snapshot returns the session's current grid occupancy.
func (h *PlannerHandler) Snapshot(c *gin.Context) {
	resp, err := h.service.Snapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// Stats returns attendance statistics for the placed course set.
func (h *PlannerHandler) Stats(c *gin.Context) {
	resp, err := h.service.Stats(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}
