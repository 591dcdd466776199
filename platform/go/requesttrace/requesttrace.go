package requesttrace

import (
	"context"

	"github.com/academia-hub/academia-backend/platform/go/auth"
)

type ctxKey struct{}

// ActorKind represents who initiated a request.
type ActorKind string

const (
	ActorKindUser      ActorKind = "user"
	ActorKindAnonymous ActorKind = "anonymous"
	ActorKindSystem    ActorKind = "system"
)

// AuditInfo captures request-scoped metadata needed for traceability and
// auditing. UserID and SchoolID are set only when ActorKind is user.
type AuditInfo struct {
	ActorKind ActorKind
	UserID    *string
	SchoolID  *string
	RequestID string
}

// FromPrincipal builds AuditInfo for an authenticated caller.
func FromPrincipal(p auth.Principal, requestID string) AuditInfo {
	userID := p.UserID.String()
	schoolID := p.SchoolID.String()
	return AuditInfo{
		ActorKind: ActorKindUser,
		UserID:    &userID,
		SchoolID:  &schoolID,
		RequestID: requestID,
	}
}

// Anonymous builds AuditInfo for an unauthenticated caller.
func Anonymous(requestID string) AuditInfo {
	return AuditInfo{ActorKind: ActorKindAnonymous, RequestID: requestID}
}

// IntoContext stores the AuditInfo in the provided context.
func IntoContext(ctx context.Context, audit AuditInfo) context.Context {
	return context.WithValue(ctx, ctxKey{}, audit)
}

// FromContext extracts the AuditInfo from context, returning false when not present.
func FromContext(ctx context.Context) (AuditInfo, bool) {
	if ctx == nil {
		return AuditInfo{}, false
	}
	v := ctx.Value(ctxKey{})
	if v == nil {
		return AuditInfo{}, false
	}

	audit, ok := v.(AuditInfo)
	return audit, ok
}

// FromContextOrAnonymous returns the AuditInfo stored on the context, or an
// anonymous record when absent.
func FromContextOrAnonymous(ctx context.Context) AuditInfo {
	if audit, ok := FromContext(ctx); ok {
		return audit
	}
	return Anonymous("")
}
