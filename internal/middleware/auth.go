package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/festy23/stagegate/internal/apperr"
	"github.com/festy23/stagegate/internal/config"
	"github.com/festy23/stagegate/internal/identity"
	"github.com/festy23/stagegate/internal/response"
)

// Dev headers accepted when AllowDevHeaders is set.
const (
	HeaderUserID   = "X-User-Id"
	HeaderUserRole = "X-User-Role"
)

var errInvalidCredentials = apperr.Unauthenticated("invalid credentials")

// Claims are the token claims issued by the identity provider.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// Auth returns a middleware that resolves the acting principal from a
// bearer token, or from dev headers when enabled, and rejects the request
// with 401 otherwise.
func Auth(cfg config.AuthConfig, logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := authenticate(c, cfg)
		if err != nil {
			logger.Debugw("authentication failed", "path", c.Request.URL.Path, "error", err)
			response.Error(c, logger, err)
			return
		}

		c.Request = c.Request.WithContext(identity.WithPrincipal(c.Request.Context(), principal))
		c.Next()
	}
}

func authenticate(c *gin.Context, cfg config.AuthConfig) (identity.Principal, error) {
	if authz := strings.TrimSpace(c.GetHeader("Authorization")); authz != "" {
		token, ok := bearerToken(authz)
		if !ok {
			return identity.Principal{}, errInvalidCredentials
		}
		return ParseToken(token, cfg.JWTSecret)
	}

	if cfg.AllowDevHeaders {
		userID := strings.TrimSpace(c.GetHeader(HeaderUserID))
		if userID != "" {
			role, ok := identity.ParseRole(c.GetHeader(HeaderUserRole))
			if !ok {
				return identity.Principal{}, errInvalidCredentials
			}
			return identity.Principal{UserID: userID, Role: role}, nil
		}
	}

	return identity.Principal{}, identity.ErrNoPrincipal
}

func bearerToken(authz string) (string, bool) {
	parts := strings.Fields(authz)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

// ParseToken verifies an HS256 token and returns its principal.
func ParseToken(token, secret string) (identity.Principal, error) {
	if strings.TrimSpace(secret) == "" {
		return identity.Principal{}, errInvalidCredentials
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &Claims{}
	parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return identity.Principal{}, apperr.Wrap(errInvalidCredentials, err.Error())
	}
	if !parsed.Valid {
		return identity.Principal{}, errInvalidCredentials
	}
	if claims.Subject == "" {
		return identity.Principal{}, apperr.Wrap(errInvalidCredentials, "subject claim required")
	}
	role, ok := identity.ParseRole(claims.Role)
	if !ok {
		return identity.Principal{}, apperr.Wrap(errInvalidCredentials, "unknown role claim")
	}
	return identity.Principal{UserID: claims.Subject, Role: role}, nil
}

// SignToken issues an HS256 token for p. Used by tests and local tooling.
func SignToken(p identity.Principal, secret string) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret not configured")
	}
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: p.UserID},
		Role:             string(p.Role),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
