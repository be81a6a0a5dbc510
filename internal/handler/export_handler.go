package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chupolovski/planner-api/internal/service"
	"github.com/chupolovski/planner-api/pkg/response"
)

type exportService interface {
	Export(ctx context.Context, sessionID, format string) (*service.ExportArtifact, error)
}

// ExportHandler serves schedule downloads.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs an export handler.
func NewExportHandler(svc exportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Download renders the session schedule in the requested format.
func (h *ExportHandler) Download(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	artifact, err := h.service.Export(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+artifact.Filename)
	c.Data(http.StatusOK, artifact.ContentType, artifact.Data)
}
