package persistence

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/academia-hub/academia-backend/platform/go/tenant"
)

func TestSchoolStoreLifecycle(t *testing.T) {
	if _, ok := os.LookupEnv("TEST_DATABASE_URL"); !ok {
		t.Skip("TEST_DATABASE_URL not set; skipping integration test")
	}

	ctx := context.Background()
	pool, cleanup := mustTestPool(t)
	defer cleanup()

	store, err := NewSchoolStore(ctx, pool)
	require.NoError(t, err)

	subdomain := "lincoln-" + uuid.NewString()[:8]
	rec := SchoolRecord{
		SchoolID:  uuid.New(),
		Subdomain: subdomain,
		Name:      "Lincoln High",
		Status:    string(tenant.StatusActive),
	}

	inserted, err := store.Create(ctx, rec)
	require.NoError(t, err)
	require.Equal(t, subdomain, inserted.Subdomain)
	require.JSONEq(t, `{}`, string(inserted.Settings))

	// Duplicate subdomain must surface as a conflict.
	dup := rec
	dup.SchoolID = uuid.New()
	_, err = store.Create(ctx, dup)
	require.ErrorIs(t, err, ErrSchoolConflict)

	fetched, err := store.Get(ctx, rec.SchoolID)
	require.NoError(t, err)
	require.Equal(t, inserted.Name, fetched.Name)

	// Subdomain lookup is case-insensitive.
	bySub, err := store.GetBySubdomain(ctx, "LINCOLN-"+subdomain[len("lincoln-"):])
	require.NoError(t, err)
	require.Equal(t, rec.SchoolID, bySub.SchoolID)

	school, err := store.BySubdomain(ctx, subdomain)
	require.NoError(t, err)
	require.Equal(t, rec.SchoolID, school.ID)
	require.True(t, school.Usable())

	updated, err := store.UpdateStatus(ctx, rec.SchoolID, string(tenant.StatusExpired))
	require.NoError(t, err)
	require.Equal(t, string(tenant.StatusExpired), updated.Status)

	listed, err := store.List(ctx, nil, 50, 0)
	require.NoError(t, err)
	require.NotEmpty(t, listed)

	require.NoError(t, store.Delete(ctx, rec.SchoolID))
	_, err = store.Get(ctx, rec.SchoolID)
	require.True(t, errors.Is(err, tenant.ErrSchoolNotFound))
	require.ErrorIs(t, store.Delete(ctx, rec.SchoolID), tenant.ErrSchoolNotFound)
}
