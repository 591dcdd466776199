package middleware

import (
	"net/http"

	"go.uber.org/zap"

	platformlogging "github.com/academia-hub/academia-backend/platform/go/logging"
	"github.com/academia-hub/academia-backend/platform/go/requesttrace"
)

// ActorLogFields enriches the request-scoped logger with the actor identity
// assembled by the gating pipeline. It must run after the gate so the audit
// info is on the context.
func ActorLogFields(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		audit, ok := requesttrace.FromContext(r.Context())
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		logger := platformlogging.FromRequest(r, nil)
		if logger == nil {
			next.ServeHTTP(w, r)
			return
		}

		fields := []zap.Field{zap.String("actor_kind", string(audit.ActorKind))}
		if audit.UserID != nil && *audit.UserID != "" {
			fields = append(fields, zap.String("user_id", *audit.UserID))
		}
		if audit.SchoolID != nil && *audit.SchoolID != "" {
			fields = append(fields, zap.String("school_id", *audit.SchoolID))
		}

		ctx := platformlogging.WithLogger(r.Context(), logger.With(fields...))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
