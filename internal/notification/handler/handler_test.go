package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/festy23/stagegate/internal/events"
	"github.com/festy23/stagegate/internal/identity"
	"github.com/festy23/stagegate/internal/notification/model"
	"github.com/festy23/stagegate/internal/notification/service"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) Deliver(ctx context.Context, event events.Event) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockService) ListForUser(
	ctx context.Context,
	principal identity.Principal,
	unreadOnly bool,
) ([]model.Notification, error) {
	args := m.Called(ctx, principal, unreadOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Notification), args.Error(1)
}

func (m *mockService) MarkRead(
	ctx context.Context,
	principal identity.Principal,
	notificationID string,
) (*model.Notification, error) {
	args := m.Called(ctx, principal, notificationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Notification), args.Error(1)
}

var _ service.Service = (*mockService)(nil)

var reviewer = identity.Principal{UserID: "r1", Role: identity.RoleReviewer}

func setupRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Request = c.Request.WithContext(identity.WithPrincipal(c.Request.Context(), reviewer))
		c.Next()
	})
	r.GET("/api/notifications", h.ListForUser)
	r.PUT("/api/notifications/:id/read", h.MarkRead)
	return r
}

func TestHandler_ListForUser(t *testing.T) {
	svc := new(mockService)
	router := setupRouter(New(svc, zap.NewNop().Sugar()))

	svc.On("ListForUser", mock.Anything, reviewer, true).Return([]model.Notification{
		{ID: "n1", UserID: "r1", Type: model.TypeReviewAssigned, Title: "assigned", Data: `{"session_id":"s1"}`},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/notifications?unread=true", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":{"session_id":"s1"}`)
	svc.AssertExpectations(t)

	req = httptest.NewRequest(http.MethodGet, "/api/notifications?unread=maybe", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_MarkRead_NotFound(t *testing.T) {
	svc := new(mockService)
	router := setupRouter(New(svc, zap.NewNop().Sugar()))

	svc.On("MarkRead", mock.Anything, reviewer, "n9").Return(nil, model.ErrNotificationNotFound)

	req := httptest.NewRequest(http.MethodPut, "/api/notifications/n9/read", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"NOT_FOUND"`)
}
