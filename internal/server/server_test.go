package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/festy23/stagegate/internal/config"
	"github.com/festy23/stagegate/internal/database/dbtest"
	"github.com/festy23/stagegate/internal/middleware"
)

const testSecret = "integration-secret"

type client struct {
	t      *testing.T
	engine http.Handler
}

func newClient(t *testing.T) *client {
	t.Helper()
	cfg := config.Config{
		Server:  config.LoadServerConfigFromEnv(),
		Auth:    config.AuthConfig{JWTSecret: testSecret, AllowDevHeaders: true},
		Events:  config.EventsConfig{Async: false, DeliveryAttempts: 1},
		Gate:    config.DefaultGateConfig(),
		GinMode: gin.TestMode,
	}
	srv := New(cfg, dbtest.New(t), dbtest.Logger())
	return &client{t: t, engine: srv.Handler()}
}

// do sends body as JSON on behalf of userID/role and decodes the envelope.
func (c *client) do(method, path, userID, role string, body any) (int, map[string]json.RawMessage) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(middleware.HeaderUserID, userID)
		req.Header.Set(middleware.HeaderUserRole, role)
	}
	w := httptest.NewRecorder()
	c.engine.ServeHTTP(w, req)

	out := map[string]json.RawMessage{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w.Code, out
}

func field[T any](t *testing.T, env map[string]json.RawMessage, key string) T {
	t.Helper()
	var v T
	require.Contains(t, env, key)
	require.NoError(t, json.Unmarshal(env[key], &v))
	return v
}

func TestServer_Health(t *testing.T) {
	c := newClient(t)

	code, body := c.do(http.MethodGet, "/health", "", "", nil)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, `"ok"`, string(body["status"]))
}

func TestServer_APIRequiresPrincipal(t *testing.T) {
	c := newClient(t)

	code, body := c.do(http.MethodGet, "/api/projects", "", "", nil)

	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, `"UNAUTHENTICATED"`, string(body["code"]))
}

func TestServer_BearerToken(t *testing.T) {
	c := newClient(t)
	token, err := middleware.SignToken(principal("admin", "ADMIN"), testSecret)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	c.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_GateReviewFlow(t *testing.T) {
	c := newClient(t)

	for _, u := range []struct{ id, role string }{
		{"lead", "PROJECT_LEAD"},
		{"r1", "REVIEWER"},
		{"r2", "REVIEWER"},
	} {
		code, _ := c.do(http.MethodPost, "/api/users", "admin", "ADMIN", map[string]any{
			"user_id": u.id, "name": u.id, "role": u.role,
		})
		require.Equal(t, http.StatusOK, code, "upsert %s", u.id)
	}

	code, body := c.do(http.MethodPost, "/api/projects", "lead", "PROJECT_LEAD", map[string]any{
		"name": "Solid-state battery",
	})
	require.Equal(t, http.StatusCreated, code)
	project := field[struct {
		ID    string `json:"id"`
		Code  string `json:"code"`
		Stage string `json:"stage"`
	}](t, body, "project")
	assert.Equal(t, "PRJ-0001", project.Code)
	assert.Equal(t, "STAGE_0", project.Stage)

	// reviewers cannot open sessions
	code, _ = c.do(http.MethodPost, "/api/review-sessions", "r1", "REVIEWER", map[string]any{
		"project_id": project.ID, "reviewer_ids": []string{"r1"},
	})
	require.Equal(t, http.StatusForbidden, code)

	code, body = c.do(http.MethodPost, "/api/review-sessions", "gk", "GATEKEEPER", map[string]any{
		"project_id": project.ID, "reviewer_ids": []string{"r1", "r2"},
	})
	require.Equal(t, http.StatusCreated, code)
	session := field[struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}](t, body, "session")
	assert.Equal(t, "PENDING", session.Status)

	code, _ = c.do(http.MethodPost, "/api/review-sessions", "gk", "GATEKEEPER", map[string]any{
		"project_id": project.ID, "reviewer_ids": []string{"r1"},
	})
	require.Equal(t, http.StatusConflict, code)

	for _, r := range []struct {
		id    string
		score float64
	}{{"r1", 8}, {"r2", 6}} {
		code, _ = c.do(http.MethodPost, "/api/reviews", r.id, "REVIEWER", map[string]any{
			"session_id": session.ID,
			"score":      r.score,
			"decision":   "GO",
			"comments":   "solid technical progress",
		})
		require.Equal(t, http.StatusCreated, code, "submit %s", r.id)
	}

	code, body = c.do(http.MethodGet, "/api/review-sessions/"+session.ID, "lead", "PROJECT_LEAD", nil)
	require.Equal(t, http.StatusOK, code)
	got := field[struct {
		Status  string `json:"status"`
		Summary struct {
			AverageScore     *float64 `json:"average_score"`
			ReadyForApproval bool     `json:"ready_for_approval"`
		} `json:"summary"`
	}](t, body, "session")
	assert.Equal(t, "COMPLETED", got.Status)
	require.NotNil(t, got.Summary.AverageScore)
	assert.InDelta(t, 7.0, *got.Summary.AverageScore, 1e-9)
	assert.True(t, got.Summary.ReadyForApproval)

	code, body = c.do(http.MethodPut, "/api/review-sessions/"+session.ID, "gk", "GATEKEEPER", map[string]any{
		"action": "approve", "decision": "GO",
	})
	require.Equal(t, http.StatusOK, code)
	result := field[struct {
		Applied      bool   `json:"applied"`
		ProjectStage string `json:"project_stage"`
	}](t, body, "result")
	assert.True(t, result.Applied)
	assert.Equal(t, "STAGE_1", result.ProjectStage)

	code, body = c.do(http.MethodGet, "/api/notifications", "lead", "PROJECT_LEAD", nil)
	require.Equal(t, http.StatusOK, code)
	notifications := field[[]json.RawMessage](t, body, "notifications")
	assert.NotEmpty(t, notifications)

	code, body = c.do(http.MethodGet, "/api/projects/"+project.ID+"/activity", "lead", "PROJECT_LEAD", nil)
	require.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, body)

	code, body = c.do(http.MethodGet, "/api/statistics/sessions", "gk", "GATEKEEPER", nil)
	require.Equal(t, http.StatusOK, code)
	stats := field[struct {
		TotalSessions int            `json:"total_sessions"`
		ByDecision    map[string]int `json:"by_decision"`
	}](t, body, "statistics")
	assert.Equal(t, 1, stats.TotalSessions)
	assert.Equal(t, 1, stats.ByDecision["GO"])
}

func TestServer_RedFlagFlow(t *testing.T) {
	c := newClient(t)

	code, _ := c.do(http.MethodPost, "/api/users", "admin", "ADMIN", map[string]any{
		"user_id": "lead", "name": "Lead", "role": "PROJECT_LEAD",
	})
	require.Equal(t, http.StatusOK, code)

	code, body := c.do(http.MethodPost, "/api/projects", "lead", "PROJECT_LEAD", map[string]any{"name": "Hydrogen"})
	require.Equal(t, http.StatusCreated, code)
	projectID := field[struct {
		ID string `json:"id"`
	}](t, body, "project").ID

	code, body = c.do(http.MethodPost, "/api/projects/"+projectID+"/red-flags", "lead", "PROJECT_LEAD", map[string]any{
		"title": "Supplier exit", "severity": "high",
	})
	require.Equal(t, http.StatusCreated, code)
	flagID := field[struct {
		ID string `json:"id"`
	}](t, body, "red_flag").ID

	code, body = c.do(http.MethodGet, "/api/projects/"+projectID, "lead", "PROJECT_LEAD", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "RED_FLAG", field[struct {
		Status string `json:"status"`
	}](t, body, "project").Status)

	code, _ = c.do(http.MethodPut, "/api/red-flags/"+flagID+"/resolve", "lead", "PROJECT_LEAD", map[string]any{})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = c.do(http.MethodPut, "/api/red-flags/"+flagID+"/resolve", "gk", "GATEKEEPER", map[string]any{
		"resolution": "second source qualified",
	})
	require.Equal(t, http.StatusOK, code)

	code, body = c.do(http.MethodGet, "/api/projects/"+projectID, "lead", "PROJECT_LEAD", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ACTIVE", field[struct {
		Status string `json:"status"`
	}](t, body, "project").Status)
}
