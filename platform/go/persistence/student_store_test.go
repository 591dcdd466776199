package persistence

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/academia-hub/academia-backend/platform/go/tenant"
)

func TestStudentStoreLifecycle(t *testing.T) {
	if _, ok := os.LookupEnv("TEST_DATABASE_URL"); !ok {
		t.Skip("TEST_DATABASE_URL not set; skipping integration test")
	}

	ctx := context.Background()
	pool, cleanup := mustTestPool(t)
	defer cleanup()

	schools, err := NewSchoolStore(ctx, pool)
	require.NoError(t, err)

	mkSchool := func(label string) SchoolRecord {
		school, err := schools.Create(ctx, SchoolRecord{
			SchoolID:  uuid.New(),
			Subdomain: label + "-" + uuid.NewString()[:8],
			Name:      label,
			Status:    string(tenant.StatusActive),
		})
		require.NoError(t, err)
		t.Cleanup(func() { _ = schools.Delete(ctx, school.SchoolID) })
		return school
	}

	schoolA := mkSchool("roster-a")
	schoolB := mkSchool("roster-b")

	store, err := NewStudentStore(ctx, pool)
	require.NoError(t, err)

	className := "5B"
	rec := StudentRecord{
		StudentID: uuid.New(),
		SchoolID:  schoolA.SchoolID,
		FirstName: "Ana",
		LastName:  "Silva",
		ClassName: &className,
	}
	inserted, err := store.Create(ctx, rec)
	require.NoError(t, err)
	require.Equal(t, "Ana", inserted.FirstName)
	require.Nil(t, inserted.Email)

	// School-scoped lookup: the other tenant must not see the record.
	_, err = store.Get(ctx, schoolB.SchoolID, rec.StudentID)
	require.ErrorIs(t, err, ErrStudentNotFound)

	fetched, err := store.Get(ctx, schoolA.SchoolID, rec.StudentID)
	require.NoError(t, err)
	require.Equal(t, className, *fetched.ClassName)

	newClass := "6A"
	updated, err := store.Update(ctx, schoolA.SchoolID, rec.StudentID, UpdateStudentParams{ClassName: &newClass})
	require.NoError(t, err)
	require.Equal(t, newClass, *updated.ClassName)

	listedA, err := store.ListBySchool(ctx, schoolA.SchoolID, 50, 0)
	require.NoError(t, err)
	require.Len(t, listedA, 1)
	listedB, err := store.ListBySchool(ctx, schoolB.SchoolID, 50, 0)
	require.NoError(t, err)
	require.Empty(t, listedB)

	// Deletes are school-scoped too.
	require.ErrorIs(t, store.Delete(ctx, schoolB.SchoolID, rec.StudentID), ErrStudentNotFound)
	require.NoError(t, store.Delete(ctx, schoolA.SchoolID, rec.StudentID))
}
