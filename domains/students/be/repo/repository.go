package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/academia-hub/academia-backend/platform/go/persistence"
)

// Repository defines the persistence operations required by the students service.
type Repository interface {
	Create(ctx context.Context, rec persistence.StudentRecord) (persistence.StudentRecord, error)
	Get(ctx context.Context, schoolID, studentID uuid.UUID) (persistence.StudentRecord, error)
	ListBySchool(ctx context.Context, schoolID uuid.UUID, limit, offset int) ([]persistence.StudentRecord, error)
	Update(ctx context.Context, schoolID, studentID uuid.UUID, params persistence.UpdateStudentParams) (persistence.StudentRecord, error)
	Delete(ctx context.Context, schoolID, studentID uuid.UUID) error
}

type postgresRepository struct {
	store *persistence.StudentStore
}

// NewPostgresRepository constructs a repository backed by the shared persistence layer.
func NewPostgresRepository(store *persistence.StudentStore) Repository {
	if store == nil {
		panic("student store is required")
	}
	return &postgresRepository{store: store}
}

func (r *postgresRepository) Create(ctx context.Context, rec persistence.StudentRecord) (persistence.StudentRecord, error) {
	return r.store.Create(ctx, rec)
}

func (r *postgresRepository) Get(ctx context.Context, schoolID, studentID uuid.UUID) (persistence.StudentRecord, error) {
	return r.store.Get(ctx, schoolID, studentID)
}

func (r *postgresRepository) ListBySchool(ctx context.Context, schoolID uuid.UUID, limit, offset int) ([]persistence.StudentRecord, error) {
	return r.store.ListBySchool(ctx, schoolID, limit, offset)
}

func (r *postgresRepository) Update(ctx context.Context, schoolID, studentID uuid.UUID, params persistence.UpdateStudentParams) (persistence.StudentRecord, error) {
	return r.store.Update(ctx, schoolID, studentID, params)
}

func (r *postgresRepository) Delete(ctx context.Context, schoolID, studentID uuid.UUID) error {
	return r.store.Delete(ctx, schoolID, studentID)
}
