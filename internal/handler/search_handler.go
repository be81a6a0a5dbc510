package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chupolovski/planner-api/internal/dto"
	appErrors "github.com/chupolovski/planner-api/pkg/errors"
	"github.com/chupolovski/planner-api/pkg/response"
)

type searchService interface {
	SearchGroups(ctx context.Context, req dto.GroupSearchRequest) (*dto.SearchResponse, error)
	SearchPriority(ctx context.Context, req dto.PrioritySearchRequest) (*dto.SearchResponse, error)
}

// SearchHandler handles combination-search endpoints.
type SearchHandler struct {
	service searchService
}

// NewSearchHandler constructs a search handler.
func NewSearchHandler(svc searchService) *SearchHandler {
	return &SearchHandler{service: svc}
}

// Groups ranks conflict-free selections taking one course per elective group.
func (h *SearchHandler) Groups(c *gin.Context) {
	var req dto.GroupSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	resp, err := h.service.SearchGroups(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// Priority ranks the greedy schedule of an ordered wishlist with alternatives.
func (h *SearchHandler) Priority(c *gin.Context) {
	var req dto.PrioritySearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	resp, err := h.service.SearchPriority(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}
