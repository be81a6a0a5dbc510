package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/chupolovski/planner-api/internal/dto"
	"github.com/chupolovski/planner-api/internal/models"
	appErrors "github.com/chupolovski/planner-api/pkg/errors"
	"github.com/chupolovski/planner-api/pkg/response"
)

type catalogService interface {
	List(ctx context.Context, query dto.CourseQuery) ([]models.Course, int, error)
	Get(ctx context.Context, key string) (*models.CourseWithSessions, error)
	Import(ctx context.Context, req dto.ImportCatalogRequest) (*dto.ImportCatalogResponse, error)
}

// CatalogHandler handles catalog endpoints.
type CatalogHandler struct {
	service catalogService
}

// NewCatalogHandler constructs a catalog handler.
func NewCatalogHandler(svc catalogService) *CatalogHandler {
	return &CatalogHandler{service: svc}
}

// List returns catalog courses with pagination.
func (h *CatalogHandler) List(c *gin.Context) {
	var query dto.CourseQuery
	query.Query = strings.TrimSpace(c.Query("q"))
	query.Instructor = strings.TrimSpace(c.Query("instructor"))
	query.DayOfWeek = c.Query("day")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		query.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		query.PageSize = limit
	}

	courses, total, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	pagination := &response.Pagination{Page: query.Page, PageSize: query.PageSize, Total: total}
	response.JSON(c, http.StatusOK, courses, pagination)
}

// Get returns one course with its weekly sessions.
func (h *CatalogHandler) Get(c *gin.Context) {
	course, err := h.service.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// Import ingests a JSON catalog dump.
func (h *CatalogHandler) Import(c *gin.Context) {
	var req dto.ImportCatalogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	resp, err := h.service.Import(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}
