package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/academia-hub/academia-backend/domains/students/be/repo"
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
	ErrNotFound = errors.New("student not found")
	ErrNoSchool = errors.New("no school in request scope")
)

// Student is the domain view of a roster entry.
type Student struct {
	ID        uuid.UUID
	SchoolID  uuid.UUID
	FirstName string
	LastName  string
	Email     *string
	ClassName *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateInput is the payload for enrolling a student.
type CreateInput struct {
	FirstName string
	LastName  string
	Email     *string
	ClassName *string
}

// UpdateInput encapsulates the fields that can be changed after enrollment.
type UpdateInput struct {
	FirstName *string
	LastName  *string
	Email     *string
	ClassName *string
}

// ListOptions controls pagination.
type ListOptions struct {
	Limit  int
	Offset int
}

// Service defines the business operations for the students domain. Every
// operation runs in the scope of the request's school.
type Service interface {
	Create(ctx context.Context, input CreateInput) (Student, error)
	Get(ctx context.Context, id uuid.UUID) (Student, error)
	List(ctx context.Context, opts ListOptions) ([]Student, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (Student, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo repo.Repository
}

// New constructs a students Service instance.
func New(r repo.Repository) Service {
	if r == nil {
		panic("students repository is required")
	}
	return &service{repo: r}
}

func (s *service) Create(ctx context.Context, input CreateInput) (Student, error) {
	school, ok := tenant.SchoolFromContext(ctx)
	if !ok {
		return Student{}, ErrNoSchool
	}

	fields := FieldErrors{}
	if strings.TrimSpace(input.FirstName) == "" {
		fields["firstName"] = append(fields["firstName"], "first name is required")
	}
	if strings.TrimSpace(input.LastName) == "" {
		fields["lastName"] = append(fields["lastName"], "last name is required")
	}
	if len(fields) > 0 {
		return Student{}, &ValidationError{Fields: fields}
	}

	rec, err := s.repo.Create(ctx, persistence.StudentRecord{
		StudentID: uuid.New(),
		SchoolID:  school.ID,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		ClassName: input.ClassName,
	})
	if err != nil {
		return Student{}, err
	}
	return toDomainStudent(rec), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (Student, error) {
	school, ok := tenant.SchoolFromContext(ctx)
	if !ok {
		return Student{}, ErrNoSchool
	}

	rec, err := s.repo.Get(ctx, school.ID, id)
	if err != nil {
		return Student{}, mapNotFound(err)
	}
	return toDomainStudent(rec), nil
}

func (s *service) List(ctx context.Context, opts ListOptions) ([]Student, error) {
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

	students := make([]Student, 0, len(records))
	for _, rec := range records {
		students = append(students, toDomainStudent(rec))
	}
	return students, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (Student, error) {
	school, ok := tenant.SchoolFromContext(ctx)
	if !ok {
		return Student{}, ErrNoSchool
	}

	rec, err := s.repo.Update(ctx, school.ID, id, persistence.UpdateStudentParams{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		ClassName: input.ClassName,
	})
	if err != nil {
		return Student{}, mapNotFound(err)
	}
	return toDomainStudent(rec), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	school, ok := tenant.SchoolFromContext(ctx)
	if !ok {
		return ErrNoSchool
	}

	if err := s.repo.Delete(ctx, school.ID, id); err != nil {
		return mapNotFound(err)
	}
	return nil
}

func mapNotFound(err error) error {
	if errors.Is(err, persistence.ErrStudentNotFound) {
		return ErrNotFound
	}
	return err
}

func toDomainStudent(rec persistence.StudentRecord) Student {
	return Student{
		ID:        rec.StudentID,
		SchoolID:  rec.SchoolID,
		FirstName: rec.FirstName,
		LastName:  rec.LastName,
		Email:     rec.Email,
		ClassName: rec.ClassName,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}
