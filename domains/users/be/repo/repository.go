package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/academia-hub/academia-backend/platform/go/persistence"
)

// Repository defines the persistence operations required by the users service.
type Repository interface {
	Get(ctx context.Context, id uuid.UUID) (persistence.UserRecord, error)
	ListBySchool(ctx context.Context, schoolID uuid.UUID, limit, offset int) ([]persistence.UserRecord, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, params persistence.UpdateProfileParams) (persistence.UserRecord, error)
	Delete(ctx context.Context, id uuid.UUID) error
	RevokeTokens(ctx context.Context, userID uuid.UUID) error
}

type postgresRepository struct {
	users  *persistence.UserStore
	tokens *persistence.RefreshTokenStore
}

// NewPostgresRepository constructs a repository backed by the shared persistence layer.
func NewPostgresRepository(users *persistence.UserStore, tokens *persistence.RefreshTokenStore) Repository {
	if users == nil {
		panic("user store is required")
	}
	if tokens == nil {
		panic("refresh token store is required")
	}
	return &postgresRepository{users: users, tokens: tokens}
}

func (r *postgresRepository) Get(ctx context.Context, id uuid.UUID) (persistence.UserRecord, error) {
	return r.users.Get(ctx, id)
}

func (r *postgresRepository) ListBySchool(ctx context.Context, schoolID uuid.UUID, limit, offset int) ([]persistence.UserRecord, error) {
	return r.users.ListBySchool(ctx, schoolID, limit, offset)
}

func (r *postgresRepository) UpdateProfile(ctx context.Context, id uuid.UUID, params persistence.UpdateProfileParams) (persistence.UserRecord, error) {
	return r.users.UpdateProfile(ctx, id, params)
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.users.Delete(ctx, id)
}

func (r *postgresRepository) RevokeTokens(ctx context.Context, userID uuid.UUID) error {
	return r.tokens.RevokeForUser(ctx, userID)
}
