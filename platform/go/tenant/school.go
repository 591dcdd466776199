package tenant

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Status enumerates the subscription states a school can be in. The gating
// pipeline only reads the status; it is mutated exclusively by administrative
// tooling.
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusExpired   Status = "expired"
	StatusSuspended Status = "suspended"
)

// School is the tenant record resolved from a request's host name.
type School struct {
	ID        uuid.UUID
	Subdomain string
	Name      string
	Status    Status
	Settings  json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Usable reports whether the subscription admits requests. Anything that is
// not explicitly active is treated as not active (fail closed), including
// suspended and unrecognized statuses.
func (s School) Usable() bool {
	return s.Status == StatusActive
}
