package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/festy23/stagegate/internal/config"
	"github.com/festy23/stagegate/internal/identity"
	"github.com/festy23/stagegate/internal/response"
)

const testSecret = "test-secret"

func setupAuthRouter(t *testing.T, cfg config.AuthConfig) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Auth(cfg, zaptest.NewLogger(t).Sugar()))
	r.GET("/me", func(c *gin.Context) {
		p, _ := identity.FromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"user_id": p.UserID, "role": p.Role})
	})
	return r
}

func doAuth(r *gin.Engine, headers map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAuth_BearerToken(t *testing.T) {
	r := setupAuthRouter(t, config.AuthConfig{JWTSecret: testSecret})

	token, err := SignToken(identity.Principal{UserID: "u1", Role: identity.RoleGatekeeper}, testSecret)
	require.NoError(t, err)

	w := doAuth(r, map[string]string{"Authorization": "Bearer " + token})

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "u1", body["user_id"])
	assert.Equal(t, "GATEKEEPER", body["role"])
}

func TestAuth_Rejects(t *testing.T) {
	valid, err := SignToken(identity.Principal{UserID: "u1", Role: identity.RoleReviewer}, testSecret)
	require.NoError(t, err)
	foreign, err := SignToken(identity.Principal{UserID: "u1", Role: identity.RoleReviewer}, "other")
	require.NoError(t, err)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
		Role: "REVIEWER",
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Role: "REVIEWER"}).
		SignedString([]byte(testSecret))
	require.NoError(t, err)

	badRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"},
		Role:             "ROOT",
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	hs384, err := jwt.NewWithClaims(jwt.SigningMethodHS384, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"},
		Role:             "REVIEWER",
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name    string
		headers map[string]string
	}{
		{name: "no credentials", headers: nil},
		{name: "wrong scheme", headers: map[string]string{"Authorization": "Basic " + valid}},
		{name: "malformed header", headers: map[string]string{"Authorization": "Bearer"}},
		{name: "foreign signature", headers: map[string]string{"Authorization": "Bearer " + foreign}},
		{name: "expired", headers: map[string]string{"Authorization": "Bearer " + expired}},
		{name: "missing subject", headers: map[string]string{"Authorization": "Bearer " + noSubject}},
		{name: "unknown role", headers: map[string]string{"Authorization": "Bearer " + badRole}},
		{name: "unexpected algorithm", headers: map[string]string{"Authorization": "Bearer " + hs384}},
		{name: "dev headers disabled", headers: map[string]string{HeaderUserID: "u1", HeaderUserRole: "ADMIN"}},
	}

	r := setupAuthRouter(t, config.AuthConfig{JWTSecret: testSecret})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doAuth(r, tt.headers)

			require.Equal(t, http.StatusUnauthorized, w.Code)
			var body response.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "UNAUTHENTICATED", body.Code)
		})
	}
}

func TestAuth_DevHeaders(t *testing.T) {
	r := setupAuthRouter(t, config.AuthConfig{AllowDevHeaders: true})

	t.Run("accepted", func(t *testing.T) {
		w := doAuth(r, map[string]string{HeaderUserID: "u7", HeaderUserRole: "project_lead"})

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"role":"PROJECT_LEAD"`)
	})

	t.Run("unknown role", func(t *testing.T) {
		w := doAuth(r, map[string]string{HeaderUserID: "u7", HeaderUserRole: "boss"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("token wins over headers", func(t *testing.T) {
		w := doAuth(r, map[string]string{
			"Authorization": "Bearer garbage",
			HeaderUserID:    "u7",
			HeaderUserRole:  "ADMIN",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestParseToken_EmptySecret(t *testing.T) {
	_, err := ParseToken("anything", "")
	assert.ErrorIs(t, err, errInvalidCredentials)
}
