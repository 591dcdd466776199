package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/academia-hub/academia-backend/domains/users/be/repo"
	"github.com/academia-hub/academia-backend/platform/go/auth"
	"github.com/academia-hub/academia-backend/platform/go/persistence"
	"github.com/academia-hub/academia-backend/platform/go/tenant"
)

// Domain sentinel errors.
var (
	ErrNotFound = errors.New("user not found")
	ErrNoSchool = errors.New("no school in request scope")
)

// User is the domain view of an account, without the password hash.
type User struct {
	ID        uuid.UUID
	SchoolID  uuid.UUID
	Email     string
	FirstName string
	LastName  string
	Role      auth.Role
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ListOptions controls pagination.
type ListOptions struct {
	Limit  int
	Offset int
}

// UpdateInput encapsulates the fields administrators can change.
type UpdateInput struct {
	FirstName *string
	LastName  *string
	Status    *string
}

// Service defines the business operations for the users domain. Every
// operation is scoped to the request's school; accounts from other schools
// behave as if they do not exist.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (User, error)
	List(ctx context.Context, opts ListOptions) ([]User, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo repo.Repository
}

// New constructs a users Service instance.
func New(r repo.Repository) Service {
	if r == nil {
		panic("users repository is required")
	}
	return &service{repo: r}
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (User, error) {
	rec, err := s.scopedUser(ctx, id)
	if err != nil {
		return User{}, err
	}
	return toDomainUser(rec), nil
}

func (s *service) List(ctx context.Context, opts ListOptions) ([]User, error) {
	school, ok := tenant.SchoolFromContext(ctx)
	if !ok {
		return nil, ErrNoSchool
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	records, err := s.repo.ListBySchool(ctx, school.ID, limit, offset)
	if err != nil {
		return nil, err
	}

	users := make([]User, 0, len(records))
	for _, rec := range records {
		users = append(users, toDomainUser(rec))
	}
	return users, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (User, error) {
	if _, err := s.scopedUser(ctx, id); err != nil {
		return User{}, err
	}

	rec, err := s.repo.UpdateProfile(ctx, id, persistence.UpdateProfileParams{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Status:    input.Status,
	})
	if err != nil {
		if errors.Is(err, persistence.ErrUserNotFound) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}

	// A deactivated account loses its sessions immediately.
	if input.Status != nil && *input.Status != "active" {
		if err := s.repo.RevokeTokens(ctx, id); err != nil {
			return User{}, err
		}
	}
	return toDomainUser(rec), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.scopedUser(ctx, id); err != nil {
		return err
	}

	if err := s.repo.RevokeTokens(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, persistence.ErrUserNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// scopedUser loads a user and hides records belonging to other schools.
func (s *service) scopedUser(ctx context.Context, id uuid.UUID) (persistence.UserRecord, error) {
	school, ok := tenant.SchoolFromContext(ctx)
	if !ok {
		return persistence.UserRecord{}, ErrNoSchool
	}

	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrUserNotFound) {
			return persistence.UserRecord{}, ErrNotFound
		}
		return persistence.UserRecord{}, err
	}
	if rec.SchoolID != school.ID {
		return persistence.UserRecord{}, ErrNotFound
	}
	return rec, nil
}

func toDomainUser(rec persistence.UserRecord) User {
	return User{
		ID:        rec.UserID,
		SchoolID:  rec.SchoolID,
		Email:     rec.Email,
		FirstName: rec.FirstName,
		LastName:  rec.LastName,
		Role:      auth.Role(rec.Role),
		Status:    rec.Status,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}
