package gate

import (
	"context"
	"net"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/academia-hub/academia-backend/platform/go/auth"
	"github.com/academia-hub/academia-backend/platform/go/httpjson"
	"github.com/academia-hub/academia-backend/platform/go/ratelimit"
	"github.com/academia-hub/academia-backend/platform/go/requesttrace"
	"github.com/academia-hub/academia-backend/platform/go/tenant"
)

// RequestContext is the immutable bundle handed to domain handlers once every
// required stage has passed. Downstream code trusts it and must never repeat
// tenant or auth checks.
type RequestContext struct {
	School    *tenant.School
	Principal *auth.Principal
	Rate      ratelimit.Decision
}

type rcCtxKey struct{}

// FromContext extracts the assembled RequestContext.
func FromContext(ctx context.Context) (RequestContext, bool) {
	v := ctx.Value(rcCtxKey{})
	if v == nil {
		return RequestContext{}, false
	}
	rc, ok := v.(RequestContext)
	return rc, ok
}

// Config wires the pipeline's collaborators.
type Config struct {
	Classifier *Classifier
	Limiter    *ratelimit.Limiter
	Resolver   tenant.Resolver
	Verifier   CredentialVerifier
	Users      UserDirectory
	// LookupTimeout bounds the tenant and user store round-trips; zero
	// disables the bound.
	LookupTimeout time.Duration
	Logger        *zap.Logger
}

// Pipeline drives the ordered stages over every request.
type Pipeline struct {
	classifier *Classifier
	stages     []Stage
	logger     *zap.Logger
}

// New assembles the pipeline in its fixed order: rate limiting, tenant
// resolution, subscription check, identity verification, access control.
func New(cfg Config) *Pipeline {
	if cfg.Classifier == nil {
		panic("gate: classifier is required")
	}
	if cfg.Limiter == nil {
		panic("gate: limiter is required")
	}
	if cfg.Resolver == nil {
		panic("gate: tenant resolver is required")
	}
	if cfg.Verifier == nil {
		panic("gate: credential verifier is required")
	}
	if cfg.Users == nil {
		panic("gate: user directory is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Pipeline{
		classifier: cfg.Classifier,
		stages: []Stage{
			&RateStage{Limiter: cfg.Limiter},
			&TenantStage{Resolver: cfg.Resolver, Timeout: cfg.LookupTimeout},
			&SubscriptionStage{},
			&IdentityStage{Verifier: cfg.Verifier, Users: cfg.Users, Timeout: cfg.LookupTimeout},
			&AccessStage{},
		},
		logger: logger,
	}
}

// Handler returns the pipeline as HTTP middleware. A rejection writes the
// stage's status and message and the request never reaches next; success
// attaches the RequestContext (plus school, principal, and audit info) to the
// request context.
func (p *Pipeline) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, hasToken := auth.ExtractBearerToken(r)
		req := Request{
			Host:        r.Host,
			ClientIP:    clientIP(r),
			BearerToken: token,
			HasBearer:   hasToken,
			Route:       p.classifier.Classify(r.URL.Path),
		}

		st := State{}
		for _, stage := range p.stages {
			decision := stage.Evaluate(r.Context(), &req, &st)
			if decision.Rejected {
				p.logger.Info("request gated",
					zap.String("stage", stage.Name()),
					zap.String("route", req.Route.Name),
					zap.String("path", r.URL.Path),
					zap.Int("status", decision.Status),
					zap.String("reason", decision.Message),
				)
				httpjson.Message(w, decision.Status, decision.Message)
				return
			}
		}

		rc := RequestContext{School: st.School, Principal: st.Principal}
		if st.Rate != nil {
			rc.Rate = *st.Rate
		}

		ctx := context.WithValue(r.Context(), rcCtxKey{}, rc)
		if st.School != nil {
			ctx = tenant.WithSchool(ctx, *st.School)
		}

		requestID := chimw.GetReqID(ctx)
		audit := requesttrace.Anonymous(requestID)
		if st.Principal != nil {
			ctx = auth.WithPrincipal(ctx, *st.Principal)
			audit = requesttrace.FromPrincipal(*st.Principal, requestID)
		}
		ctx = requesttrace.IntoContext(ctx, audit)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// clientIP extracts the client address from RemoteAddr. Proxy headers are left
// to chi's RealIP middleware upstream; they are never read here so a spoofed
// header cannot dodge the rate limiter when RealIP is not configured.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
