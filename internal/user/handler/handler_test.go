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
	"github.com/festy23/stagegate/internal/response"
	"github.com/festy23/stagegate/internal/user/model"
	"github.com/festy23/stagegate/internal/user/service"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) UpsertUser(
	ctx context.Context,
	principal identity.Principal,
	req *model.UpsertUserRequest,
) (*model.User, error) {
	args := m.Called(ctx, principal, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockService) SetIsActive(
	ctx context.Context,
	principal identity.Principal,
	req *model.SetIsActiveRequest,
) (*model.User, error) {
	args := m.Called(ctx, principal, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

var _ service.Service = (*mockService)(nil)

var admin = identity.Principal{UserID: "root", Role: identity.RoleAdmin}

func setupRouter(h *Handler, principal *identity.Principal) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if principal != nil {
		p := *principal
		r.Use(func(c *gin.Context) {
			c.Request = c.Request.WithContext(identity.WithPrincipal(c.Request.Context(), p))
			c.Next()
		})
	}
	r.POST("/api/users", h.UpsertUser)
	r.POST("/api/users/setIsActive", h.SetIsActive)
	r.GET("/api/users/:id", h.GetUser)
	return r
}

func TestHandler_UpsertUser(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := new(mockService)
		router := setupRouter(New(svc, zap.NewNop().Sugar()), &admin)

		svc.On("UpsertUser", mock.Anything, admin, mock.AnythingOfType("*model.UpsertUserRequest")).
			Return(&model.User{UserID: "u1", Name: "Alice", Role: identity.RoleReviewer, IsActive: true}, nil)

		body := `{"user_id":"u1","name":"Alice","role":"REVIEWER"}`
		req := httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Success bool       `json:"success"`
			User    model.User `json:"user"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "u1", resp.User.UserID)
		svc.AssertExpectations(t)
	})

	t.Run("invalid body", func(t *testing.T) {
		svc := new(mockService)
		router := setupRouter(New(svc, zap.NewNop().Sugar()), &admin)

		req := httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewBufferString("invalid json"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp response.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "VALIDATION", resp.Code)
		svc.AssertNotCalled(t, "UpsertUser")
	})

	t.Run("forbidden", func(t *testing.T) {
		svc := new(mockService)
		router := setupRouter(New(svc, zap.NewNop().Sugar()), &admin)
		svc.On("UpsertUser", mock.Anything, admin, mock.Anything).Return(nil, model.ErrAdminRequired)

		body := `{"user_id":"u1","name":"Alice","role":"REVIEWER"}`
		req := httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("no principal", func(t *testing.T) {
		svc := new(mockService)
		router := setupRouter(New(svc, zap.NewNop().Sugar()), nil)

		req := httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewBufferString(`{}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestHandler_GetUser(t *testing.T) {
	svc := new(mockService)
	router := setupRouter(New(svc, zap.NewNop().Sugar()), &admin)

	svc.On("GetUser", mock.Anything, "ghost").Return(nil, model.ErrUserNotFound)

	req := httptest.NewRequest(http.MethodGet, "/api/users/ghost", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	var resp response.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "user not found", resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Code)
}

func TestHandler_SetIsActive(t *testing.T) {
	svc := new(mockService)
	router := setupRouter(New(svc, zap.NewNop().Sugar()), &admin)

	svc.On("SetIsActive", mock.Anything, admin, mock.MatchedBy(func(r *model.SetIsActiveRequest) bool {
		return r.UserID == "u1" && r.IsActive != nil && !*r.IsActive
	})).Return(&model.User{UserID: "u1", IsActive: false}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/users/setIsActive", bytes.NewBufferString(`{"user_id":"u1","is_active":false}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"is_active":false`)
	svc.AssertExpectations(t)
}
