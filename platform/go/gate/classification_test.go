package gate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/academia-hub/academia-backend/platform/go/auth"
	"github.com/academia-hub/academia-backend/platform/go/ratelimit"
)

func TestClassifierLongestPrefixWins(t *testing.T) {
	t.Parallel()

	classifier := NewClassifier([]RouteClassification{
		{Name: "api", PathPrefix: "/api", RateClass: ratelimit.ClassGeneral},
		{Name: "auth", PathPrefix: "/api/auth", RateClass: ratelimit.ClassAuth},
	}, RouteClassification{Name: "default", RateClass: ratelimit.ClassGeneral})

	require.Equal(t, "auth", classifier.Classify("/api/auth/login").Name)
	require.Equal(t, "api", classifier.Classify("/api/students").Name)
	require.Equal(t, "default", classifier.Classify("/healthz").Name)
}

func TestClassifierFallback(t *testing.T) {
	t.Parallel()

	fallback := RouteClassification{Name: "default", RequiresAuth: true, RateClass: ratelimit.ClassGeneral}
	classifier := NewClassifier(nil, fallback)

	got := classifier.Classify("/anything")
	require.Equal(t, "default", got.Name)
	require.True(t, got.RequiresAuth)
}

func TestRoleAllowed(t *testing.T) {
	t.Parallel()

	route := RouteClassification{AllowedRoles: []auth.Role{auth.RoleSuperAdmin, auth.RoleSchoolAdmin}}
	require.True(t, route.RoleAllowed(auth.RoleSuperAdmin))
	require.True(t, route.RoleAllowed(auth.RoleSchoolAdmin))
	require.False(t, route.RoleAllowed(auth.RoleStudent))

	// An empty set admits any authenticated role.
	open := RouteClassification{}
	require.True(t, open.RoleAllowed(auth.RoleParent))
}
