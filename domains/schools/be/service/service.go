package service

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/academia-hub/academia-backend/domains/schools/be/repo"
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
	ErrNotFound = errors.New("school not found")
	ErrConflict = errors.New("school conflict")
)

// Subdomains are DNS labels: lowercase alphanumerics and inner hyphens.
var subdomainPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

// reserved subdomains can never be claimed by a school.
var reservedSubdomains = map[string]struct{}{
	"www": {}, "api": {}, "admin": {}, "app": {}, "static": {},
}

// School is the domain view of a registered school.
type School struct {
	ID        uuid.UUID
	Subdomain string
	Name      string
	Status    tenant.Status
	Settings  json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateInput is the payload for registering a new school.
type CreateInput struct {
	Subdomain string
	Name      string
	Settings  json.RawMessage
}

// ListOptions filters the school listing.
type ListOptions struct {
	Status *string
	Limit  int
	Offset int
}

// Invalidator evicts stale tenant lookups after administrative changes.
// Satisfied by the cached resolver.
type Invalidator interface {
	Invalidate(subdomain string)
}

// Service defines the business operations for the schools domain.
type Service interface {
	Create(ctx context.Context, input CreateInput) (School, error)
	Get(ctx context.Context, id uuid.UUID) (School, error)
	List(ctx context.Context, opts ListOptions) ([]School, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status tenant.Status) (School, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo  repo.Repository
	cache Invalidator
}

// New constructs a schools Service instance. cache may be nil when no tenant
// cache is in front of the registry.
func New(r repo.Repository, cache Invalidator) Service {
	if r == nil {
		panic("schools repository is required")
	}
	return &service{repo: r, cache: cache}
}

func (s *service) Create(ctx context.Context, input CreateInput) (School, error) {
	subdomain := strings.ToLower(strings.TrimSpace(input.Subdomain))
	name := strings.TrimSpace(input.Name)

	fields := FieldErrors{}
	if !subdomainPattern.MatchString(subdomain) {
		fields["subdomain"] = append(fields["subdomain"], "subdomain must be a valid DNS label")
	} else if _, taken := reservedSubdomains[subdomain]; taken {
		fields["subdomain"] = append(fields["subdomain"], "subdomain is reserved")
	}
	if name == "" {
		fields["name"] = append(fields["name"], "name is required")
	}
	if len(input.Settings) > 0 && !json.Valid(input.Settings) {
		fields["settings"] = append(fields["settings"], "settings must be a JSON object")
	}
	if len(fields) > 0 {
		return School{}, &ValidationError{Fields: fields}
	}

	created, err := s.repo.Create(ctx, persistence.SchoolRecord{
		SchoolID:  uuid.New(),
		Subdomain: subdomain,
		Name:      name,
		Status:    string(tenant.StatusActive),
		Settings:  input.Settings,
	})
	if err != nil {
		if errors.Is(err, persistence.ErrSchoolConflict) {
			return School{}, ErrConflict
		}
		return School{}, err
	}

	return toDomainSchool(created), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (School, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return School{}, mapNotFound(err)
	}
	return toDomainSchool(rec), nil
}

func (s *service) List(ctx context.Context, opts ListOptions) ([]School, error) {
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

	records, err := s.repo.List(ctx, opts.Status, limit, offset)
	if err != nil {
		return nil, err
	}

	schools := make([]School, 0, len(records))
	for _, rec := range records {
		schools = append(schools, toDomainSchool(rec))
	}
	return schools, nil
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status tenant.Status) (School, error) {
	switch status {
	case tenant.StatusActive, tenant.StatusInactive, tenant.StatusExpired, tenant.StatusSuspended:
	default:
		return School{}, &ValidationError{Fields: FieldErrors{
			"status": {"status is not recognized"},
		}}
	}

	rec, err := s.repo.UpdateStatus(ctx, id, string(status))
	if err != nil {
		return School{}, mapNotFound(err)
	}

	// Status changes take effect at the gate as soon as the cache forgets.
	if s.cache != nil {
		s.cache.Invalidate(rec.Subdomain)
	}
	return toDomainSchool(rec), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return mapNotFound(err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return mapNotFound(err)
	}
	if s.cache != nil {
		s.cache.Invalidate(rec.Subdomain)
	}
	return nil
}

func mapNotFound(err error) error {
	if errors.Is(err, tenant.ErrSchoolNotFound) {
		return ErrNotFound
	}
	return err
}

func toDomainSchool(rec persistence.SchoolRecord) School {
	return School{
		ID:        rec.SchoolID,
		Subdomain: rec.Subdomain,
		Name:      rec.Name,
		Status:    tenant.Status(rec.Status),
		Settings:  rec.Settings,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}
