package auth

import (
	"slices"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Roles understood by the subjectivity service.
const (
	RoleAdmin  = "admin"  // every operation
	RoleScorer = "scorer" // scoring and assessment writes
	RoleReader = "reader" // stored assessment lookups
)

// Claims is the token payload. TenantID scopes stored assessments; callers
// without one act on the nil tenant.
type Claims struct {
	jwt.RegisteredClaims
	TenantID uuid.UUID `json:"tenant_id"`
	Roles    []string  `json:"roles"`
}

// HasRole reports whether role was granted.
func (c Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// HasAnyRole reports whether at least one of roles was granted.
func (c Claims) HasAnyRole(roles ...string) bool {
	return slices.ContainsFunc(roles, c.HasRole)
}
