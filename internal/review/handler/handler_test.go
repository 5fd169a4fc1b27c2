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
	"github.com/festy23/stagegate/internal/review/model"
	"github.com/festy23/stagegate/internal/review/service"
)

type mockService struct {
	mock.Mock
}

func sessionResult(args mock.Arguments) (*model.SessionResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SessionResponse), args.Error(1)
}

func reviewResult(args mock.Arguments) (*model.GateReview, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GateReview), args.Error(1)
}

func (m *mockService) AssignReviewers(
	ctx context.Context,
	principal identity.Principal,
	req *model.AssignReviewersRequest,
) (*model.SessionResponse, error) {
	return sessionResult(m.Called(ctx, principal, req))
}

func (m *mockService) GetAssignment(ctx context.Context, sessionID, reviewerID string) (*model.ReviewAssignment, error) {
	args := m.Called(ctx, sessionID, reviewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReviewAssignment), args.Error(1)
}

func (m *mockService) AddReviewer(
	ctx context.Context,
	principal identity.Principal,
	sessionID string,
	req *model.AddReviewerRequest,
) (*model.SessionResponse, error) {
	return sessionResult(m.Called(ctx, principal, sessionID, req))
}

func (m *mockService) StartAssignment(
	ctx context.Context,
	principal identity.Principal,
	sessionID string,
) (*model.ReviewAssignment, error) {
	args := m.Called(ctx, principal, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReviewAssignment), args.Error(1)
}

func (m *mockService) SubmitReview(
	ctx context.Context,
	principal identity.Principal,
	req *model.SubmitReviewRequest,
) (*model.GateReview, error) {
	return reviewResult(m.Called(ctx, principal, req))
}

func (m *mockService) UpdateReview(
	ctx context.Context,
	principal identity.Principal,
	reviewID string,
	req *model.UpdateReviewRequest,
) (*model.GateReview, error) {
	return reviewResult(m.Called(ctx, principal, reviewID, req))
}

func (m *mockService) RecordProjectReview(
	ctx context.Context,
	principal identity.Principal,
	projectID string,
	req *model.ProjectReviewRequest,
) (*model.GateReview, error) {
	return reviewResult(m.Called(ctx, principal, projectID, req))
}

func (m *mockService) ListProjectReviews(ctx context.Context, projectID string) ([]model.GateReview, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.GateReview), args.Error(1)
}

func (m *mockService) ApproveSession(
	ctx context.Context,
	principal identity.Principal,
	sessionID string,
	outcome string,
) (*model.ApproveResult, error) {
	args := m.Called(ctx, principal, sessionID, outcome)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ApproveResult), args.Error(1)
}

func (m *mockService) CloseSession(
	ctx context.Context,
	principal identity.Principal,
	sessionID string,
	reason string,
) (*model.SessionResponse, error) {
	return sessionResult(m.Called(ctx, principal, sessionID, reason))
}

func (m *mockService) GetSession(ctx context.Context, sessionID string) (*model.SessionResponse, error) {
	return sessionResult(m.Called(ctx, sessionID))
}

func (m *mockService) ListProjectSessions(ctx context.Context, projectID string) ([]model.ReviewSession, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ReviewSession), args.Error(1)
}

func (m *mockService) ListReviewerAssignments(ctx context.Context, reviewerID string) ([]model.ReviewerAssignment, error) {
	args := m.Called(ctx, reviewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ReviewerAssignment), args.Error(1)
}

var _ service.Service = (*mockService)(nil)

var (
	gatekeeper = identity.Principal{UserID: "gk", Role: identity.RoleGatekeeper}
	reviewer   = identity.Principal{UserID: "r1", Role: identity.RoleReviewer}
)

func setupRouter(h *Handler, principal identity.Principal) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Request = c.Request.WithContext(identity.WithPrincipal(c.Request.Context(), principal))
		c.Next()
	})
	r.POST("/api/review-sessions", h.AssignReviewers)
	r.GET("/api/review-sessions/:id", h.GetSession)
	r.PUT("/api/review-sessions/:id", h.UpdateSession)
	r.POST("/api/review-sessions/:id/reviewers", h.AddReviewer)
	r.POST("/api/review-sessions/:id/start", h.StartAssignment)
	r.GET("/api/review-sessions/:id/assignments/:reviewerId", h.GetAssignment)
	r.POST("/api/reviews", h.SubmitReview)
	r.PUT("/api/reviews/:id", h.UpdateReview)
	r.POST("/api/projects/:id/reviews", h.RecordProjectReview)
	r.GET("/api/projects/:id/reviews", h.ListProjectReviews)
	r.GET("/api/projects/:id/review-sessions", h.ListProjectSessions)
	r.GET("/api/users/:id/assignments", h.ListReviewerAssignments)
	return r
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandler_AssignReviewers(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := new(mockService)
		router := setupRouter(New(svc, zap.NewNop().Sugar()), gatekeeper)

		svc.On("AssignReviewers", mock.Anything, gatekeeper, mock.MatchedBy(func(r *model.AssignReviewersRequest) bool {
			return r.ProjectID == "p1" && r.Stage == "STAGE_1" && len(r.ReviewerIDs) == 2
		})).Return(&model.SessionResponse{
			ReviewSession: model.ReviewSession{ID: "s1", Status: model.SessionPending, RequiredReviewers: 2},
		}, nil)

		w := doJSON(router, http.MethodPost, "/api/review-sessions",
			`{"project_id":"p1","stage":"STAGE_1","reviewer_ids":["r1","r2"]}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		var resp struct {
			Success bool                  `json:"success"`
			Session model.SessionResponse `json:"session"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "s1", resp.Session.ID)
		assert.Equal(t, 2, resp.Session.RequiredReviewers)
	})

	t.Run("missing project id", func(t *testing.T) {
		svc := new(mockService)
		router := setupRouter(New(svc, zap.NewNop().Sugar()), gatekeeper)

		w := doJSON(router, http.MethodPost, "/api/review-sessions", `{"stage":"STAGE_1"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "AssignReviewers", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("duplicate open session", func(t *testing.T) {
		svc := new(mockService)
		router := setupRouter(New(svc, zap.NewNop().Sugar()), gatekeeper)
		svc.On("AssignReviewers", mock.Anything, gatekeeper, mock.Anything).Return(nil, model.ErrOpenSessionExists)

		w := doJSON(router, http.MethodPost, "/api/review-sessions",
			`{"project_id":"p1","stage":"STAGE_1","reviewer_ids":["r1"]}`)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestHandler_SubmitReview_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantKind string
	}{
		{"short comments", model.ErrCommentsTooShort, http.StatusBadRequest, "VALIDATION"},
		{"not assigned", model.ErrNotAssigned, http.StatusForbidden, "FORBIDDEN"},
		{"already submitted", model.ErrAlreadySubmitted, http.StatusConflict, "CONFLICT"},
		{"session closed", model.ErrSessionClosed, http.StatusConflict, "PRECONDITION_FAILED"},
		{"session missing", model.ErrSessionNotFound, http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockService)
			router := setupRouter(New(svc, zap.NewNop().Sugar()), reviewer)
			svc.On("SubmitReview", mock.Anything, reviewer, mock.Anything).Return(nil, tt.err)

			w := doJSON(router, http.MethodPost, "/api/reviews",
				`{"session_id":"s1","score":7,"decision":"GO","comments":"fine work here"}`)

			assert.Equal(t, tt.wantCode, w.Code)
			var resp response.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantKind, resp.Code)
		})
	}
}

func TestHandler_SubmitReview_PassesScore(t *testing.T) {
	svc := new(mockService)
	router := setupRouter(New(svc, zap.NewNop().Sugar()), reviewer)
	decision := model.DecisionGo
	svc.On("SubmitReview", mock.Anything, reviewer, mock.MatchedBy(func(r *model.SubmitReviewRequest) bool {
		return r.SessionID == "s1" && r.Score != nil && *r.Score == 7.5 && r.Decision == "GO"
	})).Return(&model.GateReview{ID: "g1", SessionID: "s1", Decision: &decision, IsCompleted: true}, nil)

	w := doJSON(router, http.MethodPost, "/api/reviews",
		`{"session_id":"s1","score":7.5,"decision":"GO","comments":"fine work here"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	svc.AssertExpectations(t)
}

func TestHandler_UpdateSession(t *testing.T) {
	t.Run("approve", func(t *testing.T) {
		svc := new(mockService)
		router := setupRouter(New(svc, zap.NewNop().Sugar()), gatekeeper)
		svc.On("ApproveSession", mock.Anything, gatekeeper, "s1", "GO").Return(&model.ApproveResult{
			Session:      &model.SessionResponse{ReviewSession: model.ReviewSession{ID: "s1", Status: model.SessionApproved}},
			Applied:      true,
			ProjectStage: "STAGE_2",
			ProjectState: "ACTIVE",
		}, nil)

		w := doJSON(router, http.MethodPut, "/api/review-sessions/s1", `{"action":"Approve","decision":"GO"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Result model.ApproveResult `json:"result"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Result.Applied)
		assert.Equal(t, "STAGE_2", resp.Result.ProjectStage)
	})

	t.Run("approve before completion", func(t *testing.T) {
		svc := new(mockService)
		router := setupRouter(New(svc, zap.NewNop().Sugar()), gatekeeper)
		svc.On("ApproveSession", mock.Anything, gatekeeper, "s1", "GO").Return(nil, model.ErrSessionNotCompleted)

		w := doJSON(router, http.MethodPut, "/api/review-sessions/s1", `{"action":"approve","decision":"GO"}`)

		assert.Equal(t, http.StatusConflict, w.Code)
		var resp response.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "PRECONDITION_FAILED", resp.Code)
	})

	t.Run("close", func(t *testing.T) {
		svc := new(mockService)
		router := setupRouter(New(svc, zap.NewNop().Sugar()), gatekeeper)
		svc.On("CloseSession", mock.Anything, gatekeeper, "s1", "budget freeze").Return(&model.SessionResponse{
			ReviewSession: model.ReviewSession{ID: "s1", Status: model.SessionClosed, ClosedReason: "budget freeze"},
		}, nil)

		w := doJSON(router, http.MethodPut, "/api/review-sessions/s1", `{"action":"close","reason":"budget freeze"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("unknown action", func(t *testing.T) {
		svc := new(mockService)
		router := setupRouter(New(svc, zap.NewNop().Sugar()), gatekeeper)

		w := doJSON(router, http.MethodPut, "/api/review-sessions/s1", `{"action":"reopen"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp response.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "VALIDATION", resp.Code)
	})
}

func TestHandler_ReadEndpoints(t *testing.T) {
	svc := new(mockService)
	router := setupRouter(New(svc, zap.NewNop().Sugar()), reviewer)

	svc.On("GetSession", mock.Anything, "s1").Return(&model.SessionResponse{
		ReviewSession: model.ReviewSession{ID: "s1"},
	}, nil)
	svc.On("GetAssignment", mock.Anything, "s1", "r1").Return(&model.ReviewAssignment{
		SessionID: "s1", ReviewerID: "r1", Status: model.AssignmentAssigned,
	}, nil)
	svc.On("ListProjectReviews", mock.Anything, "p1").Return([]model.GateReview{{ID: "g1"}}, nil)
	svc.On("ListProjectSessions", mock.Anything, "p1").Return([]model.ReviewSession{{ID: "s1"}}, nil)
	svc.On("ListReviewerAssignments", mock.Anything, "r1").Return([]model.ReviewerAssignment{{SessionID: "s1"}}, nil)

	for _, path := range []string{
		"/api/review-sessions/s1",
		"/api/review-sessions/s1/assignments/r1",
		"/api/projects/p1/reviews",
		"/api/projects/p1/review-sessions",
		"/api/users/r1/assignments",
	} {
		w := doJSON(router, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
	svc.AssertExpectations(t)
}

func TestHandler_ReviewerActions(t *testing.T) {
	svc := new(mockService)
	router := setupRouter(New(svc, zap.NewNop().Sugar()), reviewer)

	svc.On("StartAssignment", mock.Anything, reviewer, "s1").Return(&model.ReviewAssignment{
		SessionID: "s1", ReviewerID: "r1", Status: model.AssignmentInProgress,
	}, nil)
	svc.On("UpdateReview", mock.Anything, reviewer, "g1", mock.Anything).Return(nil, model.ErrReviewLocked)
	svc.On("RecordProjectReview", mock.Anything, reviewer, "p1", mock.MatchedBy(func(r *model.ProjectReviewRequest) bool {
		return r.Stage == "STAGE_0" && r.ReviewerID == "r1"
	})).Return(&model.GateReview{ID: "g2"}, nil)
	svc.On("AddReviewer", mock.Anything, reviewer, "s1", &model.AddReviewerRequest{ReviewerID: "r2"}).
		Return(nil, model.ErrGateAuthorityRequired)

	w := doJSON(router, http.MethodPost, "/api/review-sessions/s1/start", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodPut, "/api/reviews/g1", `{"decision":"GO","comments":"updated comments"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(router, http.MethodPost, "/api/projects/p1/reviews",
		`{"stage":"STAGE_0","reviewer_id":"r1","decision":"GO","comments":"works as specified"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodPost, "/api/review-sessions/s1/reviewers", `{"reviewer_id":"r2"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	svc.AssertExpectations(t)
}

func TestHandler_Unauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := new(mockService)
	h := New(svc, zap.NewNop().Sugar())
	r := gin.New()
	r.POST("/api/reviews", h.SubmitReview)

	w := doJSON(r, http.MethodPost, "/api/reviews", `{"session_id":"s1"}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	svc.AssertNotCalled(t, "SubmitReview", mock.Anything, mock.Anything, mock.Anything)
}
