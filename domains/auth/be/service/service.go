package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/academia-hub/academia-backend/domains/auth/be/repo"
	"github.com/academia-hub/academia-backend/platform/go/auth"
	"github.com/academia-hub/academia-backend/platform/go/persistence"
	"github.com/academia-hub/academia-backend/platform/go/tenant"
)

// FieldErrors maps request fields to validation issues.
type FieldErrors map[string][]string

// ValidationError is returned when the input payload is invalid.
type ValidationError struct {
	Fields FieldErrors
}

func (v *ValidationError) Error() string {
	return "validation error"
}

// Domain sentinel errors.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidPassword     = errors.New("invalid password")
	ErrAccountDisabled     = errors.New("account disabled")
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrNoSchool            = errors.New("no school in request scope")
)

const (
	bcryptCost        = 10
	minPasswordLength = 8
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// User is the domain view of an account, without the password hash.
type User struct {
	ID        uuid.UUID
	SchoolID  uuid.UUID
	Email     string
	FirstName string
	LastName  string
	Role      auth.Role
	CreatedAt time.Time
}

// Session is an issued token pair plus the account it belongs to.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
	User         User
}

// LoginInput is the credential payload for Login.
type LoginInput struct {
	Email    string
	Password string
}

// RegisterInput is the payload for creating a new account.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      auth.Role
}

// Service defines the business operations for the auth domain.
type Service interface {
	Login(ctx context.Context, input LoginInput) (Session, error)
	Register(ctx context.Context, input RegisterInput) (User, error)
	Refresh(ctx context.Context, refreshToken string) (Session, error)
	Logout(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	repo   repo.Repository
	tokens *auth.Tokens
	now    func() time.Time
}

// New constructs an auth Service instance.
func New(r repo.Repository, tokens *auth.Tokens) Service {
	if r == nil {
		panic("auth repository is required")
	}
	if tokens == nil {
		panic("token issuer is required")
	}
	return &service{repo: r, tokens: tokens, now: time.Now}
}

// Login authenticates an email and password within the request's school and
// issues a token pair. The school comes from context; the tenant resolver
// placed it there before the handler ran.
func (s *service) Login(ctx context.Context, input LoginInput) (Session, error) {
	school, ok := tenant.SchoolFromContext(ctx)
	if !ok {
		return Session{}, ErrNoSchool
	}

	user, err := s.repo.UserByEmail(ctx, strings.TrimSpace(input.Email))
	if err != nil {
		if errors.Is(err, persistence.ErrUserNotFound) {
			return Session{}, ErrUserNotFound
		}
		return Session{}, err
	}
	// An account registered under another school is invisible here.
	if user.SchoolID != school.ID {
		return Session{}, ErrUserNotFound
	}
	if user.Status != "active" {
		return Session{}, ErrAccountDisabled
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return Session{}, ErrInvalidPassword
	}

	return s.issueSession(ctx, user)
}

// Register creates a new account in the request's school.
func (s *service) Register(ctx context.Context, input RegisterInput) (User, error) {
	school, ok := tenant.SchoolFromContext(ctx)
	if !ok {
		return User{}, ErrNoSchool
	}

	if err := validateRegister(input); err != nil {
		return User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return User{}, err
	}

	created, err := s.repo.CreateUser(ctx, persistence.UserRecord{
		UserID:       uuid.New(),
		SchoolID:     school.ID,
		Email:        input.Email,
		PasswordHash: string(hash),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         string(input.Role),
		Status:       "active",
	})
	if err != nil {
		if errors.Is(err, persistence.ErrUserConflict) {
			return User{}, ErrEmailTaken
		}
		return User{}, err
	}

	return toDomainUser(created), nil
}

// Refresh rotates a refresh token: the presented token is consumed and a new
// pair is issued. A token that fails verification, was already used, or
// belongs to a deleted account yields ErrInvalidRefreshToken.
func (s *service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	if _, err := s.tokens.VerifyRefresh(refreshToken); err != nil {
		return Session{}, ErrInvalidRefreshToken
	}

	stored, err := s.repo.ConsumeRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, persistence.ErrRefreshTokenNotFound) {
			return Session{}, ErrInvalidRefreshToken
		}
		return Session{}, err
	}
	if s.now().After(stored.ExpiresAt) {
		return Session{}, ErrInvalidRefreshToken
	}

	user, err := s.repo.User(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, persistence.ErrUserNotFound) {
			return Session{}, ErrInvalidRefreshToken
		}
		return Session{}, err
	}
	if user.Status != "active" {
		return Session{}, ErrAccountDisabled
	}

	return s.issueSession(ctx, user)
}

// Logout revokes every stored refresh token for the user.
func (s *service) Logout(ctx context.Context, userID uuid.UUID) error {
	return s.repo.RevokeUserTokens(ctx, userID)
}

func (s *service) issueSession(ctx context.Context, user persistence.UserRecord) (Session, error) {
	role := auth.Role(user.Role)

	access, err := s.tokens.IssueAccess(user.UserID, role, user.SchoolID)
	if err != nil {
		return Session{}, err
	}
	refresh, err := s.tokens.IssueRefresh(user.UserID, role, user.SchoolID)
	if err != nil {
		return Session{}, err
	}

	if err := s.repo.SaveRefreshToken(ctx, persistence.RefreshTokenRecord{
		Token:     refresh,
		UserID:    user.UserID,
		SchoolID:  user.SchoolID,
		ExpiresAt: s.now().Add(auth.RefreshTokenTTL).UTC(),
	}); err != nil {
		return Session{}, err
	}

	return Session{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(auth.AccessTokenTTL.Seconds()),
		User:         toDomainUser(user),
	}, nil
}

func validateRegister(input RegisterInput) error {
	fields := FieldErrors{}

	email := strings.TrimSpace(input.Email)
	if email == "" {
		fields["email"] = append(fields["email"], "email is required")
	} else if !emailPattern.MatchString(email) {
		fields["email"] = append(fields["email"], "email format is invalid")
	}

	if len(input.Password) < minPasswordLength {
		fields["password"] = append(fields["password"], "password must be at least 8 characters")
	}

	if strings.TrimSpace(input.FirstName) == "" {
		fields["firstName"] = append(fields["firstName"], "first name is required")
	}
	if strings.TrimSpace(input.LastName) == "" {
		fields["lastName"] = append(fields["lastName"], "last name is required")
	}

	if !input.Role.Valid() {
		fields["role"] = append(fields["role"], "role is not recognized")
	} else if input.Role == auth.RoleSuperAdmin {
		fields["role"] = append(fields["role"], "role cannot be self-assigned")
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func toDomainUser(rec persistence.UserRecord) User {
	return User{
		ID:        rec.UserID,
		SchoolID:  rec.SchoolID,
		Email:     rec.Email,
		FirstName: rec.FirstName,
		LastName:  rec.LastName,
		Role:      auth.Role(rec.Role),
		CreatedAt: rec.CreatedAt,
	}
}
