package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StudentsTable is the per-school student roster.
const StudentsTable = "students"

// ErrStudentNotFound indicates a missing student record.
var ErrStudentNotFound = errors.New("student not found")

// StudentRecord represents a row in the students table.
type StudentRecord struct {
	StudentID uuid.UUID `db:"student_id"`
	SchoolID  uuid.UUID `db:"school_id"`
	FirstName string    `db:"first_name"`
	LastName  string    `db:"last_name"`
	Email     *string   `db:"email"`
	ClassName *string   `db:"class_name"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// StudentStore exposes persistence helpers for the students table. Every
// query is school-scoped so one tenant can never touch another's roster.
type StudentStore struct {
	pool *pgxpool.Pool
}

// NewStudentStore returns a store instance.
func NewStudentStore(ctx context.Context, pool *pgxpool.Pool) (*StudentStore, error) {
	if pool == nil {
		return nil, errors.New("pool is required")
	}
	return &StudentStore{pool: pool}, nil
}

const studentColumns = "student_id, school_id, first_name, last_name, email, class_name, created_at, updated_at"

// Create inserts a new student and returns the persisted record.
func (s *StudentStore) Create(ctx context.Context, rec StudentRecord) (StudentRecord, error) {
	if rec.StudentID == uuid.Nil {
		return StudentRecord{}, errors.New("student id is required")
	}

	row := s.pool.QueryRow(ctx, fmt.Sprintf(`
        INSERT INTO %s (student_id, school_id, first_name, last_name, email, class_name)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING %s
    `, StudentsTable, studentColumns),
		rec.StudentID, rec.SchoolID, strings.TrimSpace(rec.FirstName), strings.TrimSpace(rec.LastName),
		rec.Email, rec.ClassName,
	)
	return scanStudentRecord(row)
}

// Get fetches a student within a school.
func (s *StudentStore) Get(ctx context.Context, schoolID, studentID uuid.UUID) (StudentRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE school_id = $1 AND student_id = $2",
		studentColumns, StudentsTable)
	return scanStudentRecord(s.pool.QueryRow(ctx, query, schoolID, studentID))
}

// ListBySchool returns the roster for one school, newest first.
func (s *StudentStore) ListBySchool(ctx context.Context, schoolID uuid.UUID, limit, offset int) ([]StudentRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE school_id = $1 ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		studentColumns, StudentsTable, limit, offset)

	rows, err := s.pool.Query(ctx, query, schoolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []StudentRecord
	for rows.Next() {
		rec, err := scanStudentRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// UpdateStudentParams captures the mutable student fields.
type UpdateStudentParams struct {
	FirstName *string
	LastName  *string
	Email     *string
	ClassName *string
}

// Update applies the provided changes to a student within a school.
func (s *StudentStore) Update(ctx context.Context, schoolID, studentID uuid.UUID, params UpdateStudentParams) (StudentRecord, error) {
	sets := []string{"updated_at = now()"}
	args := []any{schoolID, studentID}

	appendSet := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if params.FirstName != nil {
		appendSet("first_name", strings.TrimSpace(*params.FirstName))
	}
	if params.LastName != nil {
		appendSet("last_name", strings.TrimSpace(*params.LastName))
	}
	if params.Email != nil {
		appendSet("email", *params.Email)
	}
	if params.ClassName != nil {
		appendSet("class_name", *params.ClassName)
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE school_id = $1 AND student_id = $2 RETURNING %s",
		StudentsTable, strings.Join(sets, ", "), studentColumns)
	return scanStudentRecord(s.pool.QueryRow(ctx, query, args...))
}

// Delete removes a student from a school's roster.
func (s *StudentStore) Delete(ctx context.Context, schoolID, studentID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE school_id = $1 AND student_id = $2", StudentsTable),
		schoolID, studentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStudentNotFound
	}
	return nil
}

func scanStudentRecord(row pgx.Row) (StudentRecord, error) {
	var rec StudentRecord
	if err := row.Scan(&rec.StudentID, &rec.SchoolID, &rec.FirstName, &rec.LastName,
		&rec.Email, &rec.ClassName, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return StudentRecord{}, ErrStudentNotFound
		}
		return StudentRecord{}, err
	}
	return rec, nil
}
