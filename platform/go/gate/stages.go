package gate

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/academia-hub/academia-backend/platform/go/auth"
	"github.com/academia-hub/academia-backend/platform/go/ratelimit"
	"github.com/academia-hub/academia-backend/platform/go/tenant"
)

// Response copy for every gating failure.
const (
	MsgInvalidHost             = "Invalid host header"
	MsgSchoolNotFound          = "School not found"
	MsgSubscriptionInactive    = "School subscription is not active"
	MsgSubscriptionExpired     = "School subscription has expired"
	MsgAuthRequired            = "Authentication required"
	MsgInvalidToken            = "Invalid token"
	MsgUserNotFound            = "User not found"
	MsgInsufficientPermissions = "Insufficient permissions"
	MsgTooManyAuthAttempts     = "Too many authentication attempts. Please retry later."
	MsgTooManyRequests         = "Too many requests. Please retry later."
	MsgInternalError           = "Internal server error"
)

// RateStage enforces the per-class request budget. It runs first so abusive
// clients are shed before any lookup work happens.
type RateStage struct {
	Limiter *ratelimit.Limiter
}

func (s *RateStage) Name() string { return "rate" }

func (s *RateStage) Evaluate(ctx context.Context, req *Request, st *State) Decision {
	decision, err := s.Limiter.Check(ctx, req.ClientIP, req.Route.RateClass)
	if err != nil {
		return Reject(http.StatusInternalServerError, MsgInternalError)
	}

	if !decision.Allowed {
		msg := MsgTooManyRequests
		if req.Route.RateClass == ratelimit.ClassAuth {
			msg = MsgTooManyAuthAttempts
		}
		return Reject(http.StatusTooManyRequests, msg)
	}

	st.Rate = &decision
	return Continue()
}

// TenantStage resolves the school from the Host header when the route needs
// tenant scoping. Lookup faults fail closed.
type TenantStage struct {
	Resolver tenant.Resolver
	Timeout  time.Duration
}

func (s *TenantStage) Name() string { return "tenant" }

func (s *TenantStage) Evaluate(ctx context.Context, req *Request, st *State) Decision {
	if !req.Route.RequiresTenant {
		return Continue()
	}

	subdomain, err := tenant.SubdomainFromHost(req.Host)
	if err != nil {
		return Reject(http.StatusBadRequest, MsgInvalidHost)
	}

	lookupCtx, cancel := s.boundedCtx(ctx)
	defer cancel()

	school, err := s.Resolver.BySubdomain(lookupCtx, subdomain)
	switch {
	case err == nil:
	case errors.Is(err, tenant.ErrSchoolNotFound):
		return Reject(http.StatusNotFound, MsgSchoolNotFound)
	default:
		return Reject(http.StatusInternalServerError, MsgInternalError)
	}

	st.School = &school
	return Continue()
}

func (s *TenantStage) boundedCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.Timeout)
}

// SubscriptionStage checks the resolved school's subscription. Statuses other
// than active and expired (including suspended and anything unrecognized) are
// reported as not active.
type SubscriptionStage struct{}

func (s *SubscriptionStage) Name() string { return "subscription" }

func (s *SubscriptionStage) Evaluate(_ context.Context, _ *Request, st *State) Decision {
	if st.School == nil {
		return Continue()
	}

	switch st.School.Status {
	case tenant.StatusActive:
		return Continue()
	case tenant.StatusExpired:
		return Reject(http.StatusForbidden, MsgSubscriptionExpired)
	default:
		return Reject(http.StatusForbidden, MsgSubscriptionInactive)
	}
}

// CredentialVerifier validates a signed credential and extracts the principal.
// Satisfied by *auth.Tokens.
type CredentialVerifier interface {
	VerifyAccess(token string) (auth.Principal, error)
}

// UserDirectory answers whether a credential subject is a known user.
type UserDirectory interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// IdentityStage authenticates the caller on routes that require it. The
// credential must verify and its subject must match a known user.
type IdentityStage struct {
	Verifier CredentialVerifier
	Users    UserDirectory
	Timeout  time.Duration
}

func (s *IdentityStage) Name() string { return "identity" }

func (s *IdentityStage) Evaluate(ctx context.Context, req *Request, st *State) Decision {
	if !req.Route.RequiresAuth {
		return Continue()
	}

	if !req.HasBearer {
		return Reject(http.StatusUnauthorized, MsgAuthRequired)
	}

	principal, err := s.Verifier.VerifyAccess(req.BearerToken)
	if err != nil {
		return Reject(http.StatusUnauthorized, MsgInvalidToken)
	}

	lookupCtx, cancel := s.boundedCtx(ctx)
	defer cancel()

	known, err := s.Users.Exists(lookupCtx, principal.UserID)
	if err != nil {
		return Reject(http.StatusInternalServerError, MsgInternalError)
	}
	if !known {
		return Reject(http.StatusUnauthorized, MsgUserNotFound)
	}

	st.Principal = &principal
	return Continue()
}

func (s *IdentityStage) boundedCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.Timeout)
}

// AccessStage authorizes the principal's role against the route and enforces
// tenant scoping. A principal whose school differs from the resolved tenant is
// denied unless it is a SUPER_ADMIN.
type AccessStage struct{}

func (s *AccessStage) Name() string { return "access" }

func (s *AccessStage) Evaluate(_ context.Context, req *Request, st *State) Decision {
	if !req.Route.RequiresAuth {
		return Continue()
	}
	if st.Principal == nil {
		return Reject(http.StatusUnauthorized, MsgAuthRequired)
	}

	p := st.Principal
	if !req.Route.RoleAllowed(p.Role) {
		return Reject(http.StatusForbidden, MsgInsufficientPermissions)
	}

	if req.Route.RequiresTenant && st.School != nil &&
		p.Role != auth.RoleSuperAdmin && p.SchoolID != st.School.ID {
		return Reject(http.StatusForbidden, MsgInsufficientPermissions)
	}

	return Continue()
}
