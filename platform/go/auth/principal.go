package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Role is the access level carried by a principal's credential.
type Role string

const (
	RoleSuperAdmin  Role = "SUPER_ADMIN"
	RoleSchoolAdmin Role = "SCHOOL_ADMIN"
	RoleTeacher     Role = "TEACHER"
	RoleStudent     Role = "STUDENT"
	RoleParent      Role = "PARENT"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleSchoolAdmin, RoleTeacher, RoleStudent, RoleParent:
		return true
	}
	return false
}

// Principal is the authenticated caller derived from a verified credential.
// It is transient: rebuilt on every request, never persisted.
type Principal struct {
	UserID    uuid.UUID
	Role      Role
	SchoolID  uuid.UUID
	ExpiresAt time.Time
}

type ctxKey struct{}

// WithPrincipal stores the authenticated principal on the context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// PrincipalFromContext extracts the principal and a boolean indicating presence.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	v := ctx.Value(ctxKey{})
	if v == nil {
		return Principal{}, false
	}

	p, ok := v.(Principal)
	return p, ok
}
