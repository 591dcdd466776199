package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/academia-hub/academia-backend/platform/go/persistence"
)

// Repository defines the persistence operations required by the schools service.
type Repository interface {
	Create(ctx context.Context, rec persistence.SchoolRecord) (persistence.SchoolRecord, error)
	Get(ctx context.Context, id uuid.UUID) (persistence.SchoolRecord, error)
	List(ctx context.Context, status *string, limit, offset int) ([]persistence.SchoolRecord, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (persistence.SchoolRecord, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresRepository struct {
	store *persistence.SchoolStore
}

// NewPostgresRepository constructs a repository backed by the shared persistence layer.
func NewPostgresRepository(store *persistence.SchoolStore) Repository {
	if store == nil {
		panic("school store is required")
	}
	return &postgresRepository{store: store}
}

func (r *postgresRepository) Create(ctx context.Context, rec persistence.SchoolRecord) (persistence.SchoolRecord, error) {
	return r.store.Create(ctx, rec)
}

func (r *postgresRepository) Get(ctx context.Context, id uuid.UUID) (persistence.SchoolRecord, error) {
	return r.store.Get(ctx, id)
}

func (r *postgresRepository) List(ctx context.Context, status *string, limit, offset int) ([]persistence.SchoolRecord, error) {
	return r.store.List(ctx, status, limit, offset)
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (persistence.SchoolRecord, error) {
	return r.store.UpdateStatus(ctx, id, status)
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.store.Delete(ctx, id)
}
