package persistence

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/academia-hub/academia-backend/platform/go/auth"
	"github.com/academia-hub/academia-backend/platform/go/tenant"
)

func TestRefreshTokenStoreRotation(t *testing.T) {
	if _, ok := os.LookupEnv("TEST_DATABASE_URL"); !ok {
		t.Skip("TEST_DATABASE_URL not set; skipping integration test")
	}

	ctx := context.Background()
	pool, cleanup := mustTestPool(t)
	defer cleanup()

	schools, err := NewSchoolStore(ctx, pool)
	require.NoError(t, err)
	school, err := schools.Create(ctx, SchoolRecord{
		SchoolID:  uuid.New(),
		Subdomain: "tokens-" + uuid.NewString()[:8],
		Name:      "Token Test School",
		Status:    string(tenant.StatusActive),
	})
	require.NoError(t, err)
	defer func() { _ = schools.Delete(ctx, school.SchoolID) }()

	users, err := NewUserStore(ctx, pool)
	require.NoError(t, err)
	user, err := users.Create(ctx, UserRecord{
		UserID:       uuid.New(),
		SchoolID:     school.SchoolID,
		Email:        uuid.NewString()[:8] + "@tokens.test",
		PasswordHash: "$2a$10$placeholderplaceholderplaceholderplace",
		FirstName:    "Tok",
		LastName:     "Holder",
		Role:         string(auth.RoleStudent),
		Status:       "active",
	})
	require.NoError(t, err)
	defer func() { _ = users.Delete(ctx, user.UserID) }()

	store, err := NewRefreshTokenStore(ctx, pool)
	require.NoError(t, err)

	token := uuid.NewString()
	rec := RefreshTokenRecord{
		Token:     token,
		UserID:    user.UserID,
		SchoolID:  school.SchoolID,
		ExpiresAt: time.Now().Add(auth.RefreshTokenTTL).UTC(),
	}
	require.NoError(t, store.Save(ctx, rec))

	consumed, err := store.Consume(ctx, token)
	require.NoError(t, err)
	require.Equal(t, user.UserID, consumed.UserID)

	// A token is single-use.
	_, err = store.Consume(ctx, token)
	require.ErrorIs(t, err, ErrRefreshTokenNotFound)

	// Revoking a user clears every remaining token.
	second := uuid.NewString()
	rec.Token = second
	require.NoError(t, store.Save(ctx, rec))
	require.NoError(t, store.RevokeForUser(ctx, user.UserID))
	_, err = store.Consume(ctx, second)
	require.ErrorIs(t, err, ErrRefreshTokenNotFound)

	// Expired tokens are reclaimed by the purge.
	stale := rec
	stale.Token = uuid.NewString()
	stale.ExpiresAt = time.Now().Add(-time.Hour).UTC()
	require.NoError(t, store.Save(ctx, stale))
	purged, err := store.PurgeExpired(ctx)
	require.NoError(t, err)
	require.GreaterOrEqual(t, purged, int64(1))
}
