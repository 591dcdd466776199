// Package gate implements the request-gating pipeline: the ordered checks
// every request passes before any domain handler runs. Stages are explicit
// objects composed by a fixed driver loop; there is no hidden "next" chaining
// and no retry within a request.
package gate

import (
	"context"

	"github.com/academia-hub/academia-backend/platform/go/auth"
	"github.com/academia-hub/academia-backend/platform/go/ratelimit"
	"github.com/academia-hub/academia-backend/platform/go/tenant"
)

// Decision is a stage outcome: either the request advances or it terminates
// with a status and message.
type Decision struct {
	Rejected bool
	Status   int
	Message  string
}

// Continue advances the request to the next stage.
func Continue() Decision {
	return Decision{}
}

// Reject terminates the request with the given status and message.
func Reject(status int, message string) Decision {
	return Decision{Rejected: true, Status: status, Message: message}
}

// Request carries the gate-relevant slice of an inbound HTTP request.
type Request struct {
	Host        string
	ClientIP    string
	BearerToken string
	HasBearer   bool
	Route       RouteClassification
}

// State accumulates what the stages establish about a request. It is owned by
// a single request; stages mutate it only through their Evaluate call.
type State struct {
	School    *tenant.School
	Principal *auth.Principal
	Rate      *ratelimit.Decision
}

// Stage is one gating check. Evaluate must be side-effect free apart from
// mutating st and bumping rate counters.
type Stage interface {
	Name() string
	Evaluate(ctx context.Context, req *Request, st *State) Decision
}
