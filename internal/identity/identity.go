// Package identity models the acting principal supplied by the identity
// provider and the role checks every core operation performs.
package identity

import (
	"context"
	"strings"

	"github.com/festy23/stagegate/internal/apperr"
)

// Role is the closed set of roles the identity provider issues.
type Role string

const (
	RoleAdmin       Role = "ADMIN"
	RoleGatekeeper  Role = "GATEKEEPER"
	RoleProjectLead Role = "PROJECT_LEAD"
	RoleReviewer    Role = "REVIEWER"
	RoleMember      Role = "MEMBER"
)

var allRoles = map[Role]struct{}{
	RoleAdmin:       {},
	RoleGatekeeper:  {},
	RoleProjectLead: {},
	RoleReviewer:    {},
	RoleMember:      {},
}

// ParseRole converts a provider role string. Matching is case-insensitive.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := allRoles[r]
	return r, ok
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := allRoles[r]
	return ok
}

// GateAuthorities may assign reviewers, approve and close sessions.
var GateAuthorities = []Role{RoleAdmin, RoleGatekeeper}

// Principal is the authenticated caller.
type Principal struct {
	UserID string
	Role   Role
}

// HasRole reports whether the principal holds one of the allowed roles.
func HasRole(p Principal, allowed ...Role) bool {
	for _, r := range allowed {
		if p.Role == r {
			return true
		}
	}
	return false
}

type principalKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal stored by WithPrincipal.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	if !ok || p.UserID == "" {
		return Principal{}, false
	}
	return p, true
}

// ErrNoPrincipal is returned when a request carries no principal.
var ErrNoPrincipal = apperr.Unauthenticated("authentication required")

// Require returns the principal stored in ctx or ErrNoPrincipal.
func Require(ctx context.Context) (Principal, error) {
	p, ok := FromContext(ctx)
	if !ok {
		return Principal{}, ErrNoPrincipal
	}
	return p, nil
}
