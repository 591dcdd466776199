package gate

import (
	"sort"
	"strings"

	"github.com/academia-hub/academia-backend/platform/go/auth"
	"github.com/academia-hub/academia-backend/platform/go/ratelimit"
)

// RouteClassification is the static per-route configuration the pipeline
// consumes: whether the route needs a resolved tenant, whether it needs an
// authenticated principal, which roles may call it, and which rate class its
// traffic counts against.
type RouteClassification struct {
	Name           string
	PathPrefix     string
	RequiresTenant bool
	RequiresAuth   bool
	AllowedRoles   []auth.Role
	RateClass      ratelimit.Class
}

// RoleAllowed reports whether the role is in the route's allowed set. An empty
// set means any authenticated role.
func (c RouteClassification) RoleAllowed(role auth.Role) bool {
	if len(c.AllowedRoles) == 0 {
		return true
	}
	for _, allowed := range c.AllowedRoles {
		if allowed == role {
			return true
		}
	}
	return false
}

// Classifier maps request paths to their classification by longest matching
// prefix. It is built once at startup and read-only afterwards.
type Classifier struct {
	routes   []RouteClassification
	fallback RouteClassification
}

// NewClassifier builds a classifier over the route table. fallback applies to
// paths no entry matches.
func NewClassifier(routes []RouteClassification, fallback RouteClassification) *Classifier {
	sorted := make([]RouteClassification, len(routes))
	copy(sorted, routes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].PathPrefix) > len(sorted[j].PathPrefix)
	})
	return &Classifier{routes: sorted, fallback: fallback}
}

// Classify returns the classification for the request path.
func (c *Classifier) Classify(path string) RouteClassification {
	for _, route := range c.routes {
		if strings.HasPrefix(path, route.PathPrefix) {
			return route
		}
	}
	return c.fallback
}
