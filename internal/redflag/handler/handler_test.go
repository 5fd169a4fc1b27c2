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
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/festy23/stagegate/internal/identity"
	"github.com/festy23/stagegate/internal/redflag/model"
	"github.com/festy23/stagegate/internal/redflag/service"
	"github.com/festy23/stagegate/internal/response"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) Raise(
	ctx context.Context,
	principal identity.Principal,
	projectID string,
	req *model.RaiseRequest,
) (*model.RedFlag, error) {
	args := m.Called(ctx, principal, projectID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RedFlag), args.Error(1)
}

func (m *mockService) Resolve(ctx context.Context, principal identity.Principal, flagID string) (*model.RedFlag, error) {
	args := m.Called(ctx, principal, flagID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RedFlag), args.Error(1)
}

func (m *mockService) ListForProject(ctx context.Context, projectID string) ([]model.RedFlag, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RedFlag), args.Error(1)
}

var _ service.Service = (*mockService)(nil)

var gatekeeper = identity.Principal{UserID: "gk", Role: identity.RoleGatekeeper}

func setupRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Request = c.Request.WithContext(identity.WithPrincipal(c.Request.Context(), gatekeeper))
		c.Next()
	})
	r.POST("/api/projects/:id/red-flags", h.Raise)
	r.GET("/api/projects/:id/red-flags", h.List)
	r.PUT("/api/red-flags/:id/resolve", h.Resolve)
	return r
}

func TestHandler_Raise(t *testing.T) {
	svc := new(mockService)
	router := setupRouter(New(svc, zap.NewNop().Sugar()))
	svc.On("Raise", mock.Anything, gatekeeper, "p1", &model.RaiseRequest{Title: "Vendor lock-in", Severity: "HIGH"}).
		Return(&model.RedFlag{ID: "f1", Title: "Vendor lock-in", Severity: model.SeverityHigh, Status: model.StatusOpen}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/projects/p1/red-flags",
		bytes.NewBufferString(`{"title":"Vendor lock-in","severity":"HIGH"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		RedFlag model.RedFlag `json:"red_flag"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "f1", resp.RedFlag.ID)
	svc.AssertExpectations(t)
}

func TestHandler_Raise_MissingTitle(t *testing.T) {
	svc := new(mockService)
	router := setupRouter(New(svc, zap.NewNop().Sugar()))

	req := httptest.NewRequest(http.MethodPost, "/api/projects/p1/red-flags", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_Resolve_Conflict(t *testing.T) {
	svc := new(mockService)
	router := setupRouter(New(svc, zap.NewNop().Sugar()))
	svc.On("Resolve", mock.Anything, gatekeeper, "f1").Return(nil, model.ErrAlreadyResolved)

	req := httptest.NewRequest(http.MethodPut, "/api/red-flags/f1/resolve", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	var resp response.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "CONFLICT", resp.Code)
}

func TestHandler_List(t *testing.T) {
	svc := new(mockService)
	router := setupRouter(New(svc, zap.NewNop().Sugar()))
	svc.On("ListForProject", mock.Anything, "p1").Return([]model.RedFlag{{ID: "f1"}, {ID: "f2"}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/projects/p1/red-flags", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		RedFlags []model.RedFlag `json:"red_flags"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.RedFlags, 2)
}
