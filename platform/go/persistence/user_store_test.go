package persistence

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/academia-hub/academia-backend/platform/go/auth"
	"github.com/academia-hub/academia-backend/platform/go/tenant"
)

func TestUserStoreLifecycle(t *testing.T) {
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
		Subdomain: "users-" + uuid.NewString()[:8],
		Name:      "Roosevelt Elementary",
		Status:    string(tenant.StatusActive),
	})
	require.NoError(t, err)
	defer func() { _ = schools.Delete(ctx, school.SchoolID) }()

	store, err := NewUserStore(ctx, pool)
	require.NoError(t, err)

	email := uuid.NewString()[:8] + "@roosevelt.test"
	rec := UserRecord{
		UserID:       uuid.New(),
		SchoolID:     school.SchoolID,
		Email:        " " + email + " ",
		PasswordHash: "$2a$10$placeholderplaceholderplaceholderplace",
		FirstName:    "Maria",
		LastName:     "Lopez",
		Role:         string(auth.RoleTeacher),
		Status:       "active",
	}

	inserted, err := store.Create(ctx, rec)
	require.NoError(t, err)
	require.Equal(t, email, inserted.Email, "email is trimmed and lowercased on insert")

	// Same email again must conflict regardless of case.
	dup := rec
	dup.UserID = uuid.New()
	dup.Email = "  " + email
	_, err = store.Create(ctx, dup)
	require.ErrorIs(t, err, ErrUserConflict)

	fetched, err := store.GetByEmail(ctx, email)
	require.NoError(t, err)
	require.Equal(t, rec.UserID, fetched.UserID)

	found, err := store.Exists(ctx, rec.UserID)
	require.NoError(t, err)
	require.True(t, found)

	found, err = store.Exists(ctx, uuid.New())
	require.NoError(t, err)
	require.False(t, found)

	newFirst := "Mariana"
	updated, err := store.UpdateProfile(ctx, rec.UserID, UpdateProfileParams{FirstName: &newFirst})
	require.NoError(t, err)
	require.Equal(t, newFirst, updated.FirstName)
	require.Equal(t, rec.LastName, updated.LastName)

	listed, err := store.ListBySchool(ctx, school.SchoolID, 50, 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	require.NoError(t, store.Delete(ctx, rec.UserID))
	_, err = store.Get(ctx, rec.UserID)
	require.ErrorIs(t, err, ErrUserNotFound)
	require.ErrorIs(t, store.Delete(ctx, rec.UserID), ErrUserNotFound)
}
