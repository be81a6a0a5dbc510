package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chupolovski/planner-api/internal/dto"
	appErrors "github.com/chupolovski/planner-api/pkg/errors"
)

type plannerServiceMock struct {
	placeResp *dto.PlaceCourseResponse
	placeErr  error
	statsResp *dto.SessionStatsResponse
	statsErr  error
}

func (m *plannerServiceMock) CreateSession(ctx context.Context, req dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	return &dto.CreateSessionResponse{SessionID: "session-1", Courses: 3}, nil
}

func (m *plannerServiceMock) PlaceCourse(ctx context.Context, sessionID string, req dto.PlaceCourseRequest) (*dto.PlaceCourseResponse, error) {
	if m.placeErr != nil {
		return nil, m.placeErr
	}
	return m.placeResp, nil
}

func (m *plannerServiceMock) RemoveCourse(ctx context.Context, sessionID, courseKey string) error {
	return nil
}

func (m *plannerServiceMock) SetPriorities(ctx context.Context, sessionID string, req dto.SetPrioritiesRequest) error {
	return nil
}

func (m *plannerServiceMock) Snapshot(ctx context.Context, sessionID string) (*dto.SessionResponse, error) {
	return &dto.SessionResponse{SessionID: sessionID}, nil
}

func (m *plannerServiceMock) Stats(ctx context.Context, sessionID string) (*dto.SessionStatsResponse, error) {
	if m.statsErr != nil {
		return nil, m.statsErr
	}
	return m.statsResp, nil
}

func postJSON(t *testing.T, handler gin.HandlerFunc, path string, params gin.Params, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(http.MethodPost, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = params
	handler(c)
	return w
}

func TestPlannerHandlerCreateSessionEmptyBody(t *testing.T) {
	h := NewPlannerHandler(&plannerServiceMock{})
	w := postJSON(t, h.CreateSession, "/sessions", nil, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "session-1")
}

func TestPlannerHandlerPlaceCourse(t *testing.T) {
	h := NewPlannerHandler(&plannerServiceMock{
		placeResp: &dto.PlaceCourseResponse{Status: dto.PlacementStatusPlaced},
	})
	w := postJSON(t, h.PlaceCourse, "/sessions/session-1/courses",
		gin.Params{{Key: "id", Value: "session-1"}},
		dto.PlaceCourseRequest{CourseKey: "MATH"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "PLACED")
}

func TestPlannerHandlerPlaceCourseRejectedMapsToConflict(t *testing.T) {
	h := NewPlannerHandler(&plannerServiceMock{
		placeResp: &dto.PlaceCourseResponse{Status: dto.PlacementRejected, ConflictsWith: []string{"PHYS"}},
	})
	w := postJSON(t, h.PlaceCourse, "/sessions/session-1/courses",
		gin.Params{{Key: "id", Value: "session-1"}},
		dto.PlaceCourseRequest{CourseKey: "MATH"})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "PHYS")
}

func TestPlannerHandlerPlaceCourseInvalidBody(t *testing.T) {
	h := NewPlannerHandler(&plannerServiceMock{})
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/sessions/session-1/courses", bytes.NewReader([]byte("not json")))
	c.Request = req
	h.PlaceCourse(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlannerHandlerStatsExpiredSession(t *testing.T) {
	h := NewPlannerHandler(&plannerServiceMock{
		statsErr: appErrors.Clone(appErrors.ErrSessionExpired, ""),
	})
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/sessions/gone/stats", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "gone"}}
	h.Stats(c)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "SESSION_EXPIRED")
}
