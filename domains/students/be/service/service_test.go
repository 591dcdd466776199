package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/academia-hub/academia-backend/platform/go/persistence"
	"github.com/academia-hub/academia-backend/platform/go/tenant"
)

type mockRepository struct {
	createFn func(ctx context.Context, rec persistence.StudentRecord) (persistence.StudentRecord, error)
	getFn    func(ctx context.Context, schoolID, studentID uuid.UUID) (persistence.StudentRecord, error)
	listFn   func(ctx context.Context, schoolID uuid.UUID, limit, offset int) ([]persistence.StudentRecord, error)
	updateFn func(ctx context.Context, schoolID, studentID uuid.UUID, params persistence.UpdateStudentParams) (persistence.StudentRecord, error)
	deleteFn func(ctx context.Context, schoolID, studentID uuid.UUID) error
}

func (m *mockRepository) Create(ctx context.Context, rec persistence.StudentRecord) (persistence.StudentRecord, error) {
	if m.createFn == nil {
		panic("createFn not configured")
	}
	return m.createFn(ctx, rec)
}

func (m *mockRepository) Get(ctx context.Context, schoolID, studentID uuid.UUID) (persistence.StudentRecord, error) {
	if m.getFn == nil {
		panic("getFn not configured")
	}
	return m.getFn(ctx, schoolID, studentID)
}

func (m *mockRepository) ListBySchool(ctx context.Context, schoolID uuid.UUID, limit, offset int) ([]persistence.StudentRecord, error) {
	if m.listFn == nil {
		panic("listFn not configured")
	}
	return m.listFn(ctx, schoolID, limit, offset)
}

func (m *mockRepository) Update(ctx context.Context, schoolID, studentID uuid.UUID, params persistence.UpdateStudentParams) (persistence.StudentRecord, error) {
	if m.updateFn == nil {
		panic("updateFn not configured")
	}
	return m.updateFn(ctx, schoolID, studentID, params)
}

func (m *mockRepository) Delete(ctx context.Context, schoolID, studentID uuid.UUID) error {
	if m.deleteFn == nil {
		panic("deleteFn not configured")
	}
	return m.deleteFn(ctx, schoolID, studentID)
}

func schoolCtx(schoolID uuid.UUID) context.Context {
	return tenant.WithSchool(context.Background(), tenant.School{
		ID:     schoolID,
		Status: tenant.StatusActive,
	})
}

func TestCreateRequiresSchoolScope(t *testing.T) {
	t.Parallel()

	svc := New(&mockRepository{})
	_, err := svc.Create(context.Background(), CreateInput{FirstName: "Ana", LastName: "Silva"})
	require.ErrorIs(t, err, ErrNoSchool)
}

func TestCreateValidation(t *testing.T) {
	t.Parallel()

	svc := New(&mockRepository{})
	_, err := svc.Create(schoolCtx(uuid.New()), CreateInput{FirstName: "  ", LastName: ""})

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	require.Contains(t, validationErr.Fields, "firstName")
	require.Contains(t, validationErr.Fields, "lastName")
}

func TestCreateAssignsSchoolFromContext(t *testing.T) {
	t.Parallel()

	schoolID := uuid.New()
	svc := New(&mockRepository{
		createFn: func(_ context.Context, rec persistence.StudentRecord) (persistence.StudentRecord, error) {
			require.Equal(t, schoolID, rec.SchoolID)
			require.NotEqual(t, uuid.Nil, rec.StudentID)
			return rec, nil
		},
	})

	student, err := svc.Create(schoolCtx(schoolID), CreateInput{FirstName: "Ana", LastName: "Silva"})
	require.NoError(t, err)
	require.Equal(t, schoolID, student.SchoolID)
}

func TestOperationsScopeQueriesToSchool(t *testing.T) {
	t.Parallel()

	schoolID := uuid.New()
	studentID := uuid.New()

	repo := &mockRepository{
		getFn: func(_ context.Context, gotSchool, gotStudent uuid.UUID) (persistence.StudentRecord, error) {
			require.Equal(t, schoolID, gotSchool)
			require.Equal(t, studentID, gotStudent)
			return persistence.StudentRecord{}, persistence.ErrStudentNotFound
		},
		deleteFn: func(_ context.Context, gotSchool, _ uuid.UUID) error {
			require.Equal(t, schoolID, gotSchool)
			return persistence.ErrStudentNotFound
		},
		updateFn: func(_ context.Context, gotSchool, _ uuid.UUID, _ persistence.UpdateStudentParams) (persistence.StudentRecord, error) {
			require.Equal(t, schoolID, gotSchool)
			return persistence.StudentRecord{}, persistence.ErrStudentNotFound
		},
	}
	svc := New(repo)
	ctx := schoolCtx(schoolID)

	_, err := svc.Get(ctx, studentID)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Update(ctx, studentID, UpdateInput{})
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, svc.Delete(ctx, studentID), ErrNotFound)
}
