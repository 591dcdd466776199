package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UsersTable is the account table backing authentication and administration.
const UsersTable = "users"

var (
	// ErrUserNotFound indicates a missing user record.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserConflict indicates a uniqueness violation (e.g., duplicated email).
	ErrUserConflict = errors.New("user conflict")
)

// UserRecord represents a row in the users table. PasswordHash is a bcrypt
// digest and never leaves the persistence/service boundary.
type UserRecord struct {
	UserID       uuid.UUID `db:"user_id"`
	SchoolID     uuid.UUID `db:"school_id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	FirstName    string    `db:"first_name"`
	LastName     string    `db:"last_name"`
	Role         string    `db:"role"`
	Status       string    `db:"status"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// UserStore exposes persistence helpers for the users table.
type UserStore struct {
	pool *pgxpool.Pool
}

// NewUserStore returns a store instance; assumes migrations already created the table.
func NewUserStore(ctx context.Context, pool *pgxpool.Pool) (*UserStore, error) {
	if pool == nil {
		return nil, errors.New("pool is required")
	}
	return &UserStore{pool: pool}, nil
}

const userColumns = "user_id, school_id, email, password_hash, first_name, last_name, role, status, created_at, updated_at"

// Create inserts a new user and returns the persisted record.
func (s *UserStore) Create(ctx context.Context, rec UserRecord) (UserRecord, error) {
	if rec.UserID == uuid.Nil {
		return UserRecord{}, errors.New("user id is required")
	}

	row := s.pool.QueryRow(ctx, fmt.Sprintf(`
        INSERT INTO %s (user_id, school_id, email, password_hash, first_name, last_name, role, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING %s
    `, UsersTable, userColumns),
		rec.UserID, rec.SchoolID, strings.ToLower(strings.TrimSpace(rec.Email)), rec.PasswordHash,
		strings.TrimSpace(rec.FirstName), strings.TrimSpace(rec.LastName), rec.Role, rec.Status,
	)

	out, err := scanUserRecord(row)
	if err != nil {
		if isUniqueViolation(err) {
			return UserRecord{}, ErrUserConflict
		}
		return UserRecord{}, err
	}
	return out, nil
}

// Get fetches a user by id.
func (s *UserStore) Get(ctx context.Context, id uuid.UUID) (UserRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE user_id = $1", userColumns, UsersTable)
	return scanUserRecord(s.pool.QueryRow(ctx, query, id))
}

// GetByEmail fetches a user by email, case-insensitively.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (UserRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE email = lower($1)", userColumns, UsersTable)
	return scanUserRecord(s.pool.QueryRow(ctx, query, strings.TrimSpace(email)))
}

// Exists reports whether a user id is present. Backs the identity gate's
// subject lookup.
func (s *UserStore) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var found bool
	query := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE user_id = $1)", UsersTable)
	if err := s.pool.QueryRow(ctx, query, id).Scan(&found); err != nil {
		return false, err
	}
	return found, nil
}

// ListBySchool returns the users belonging to one school.
func (s *UserStore) ListBySchool(ctx context.Context, schoolID uuid.UUID, limit, offset int) ([]UserRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE school_id = $1 ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		userColumns, UsersTable, limit, offset)

	rows, err := s.pool.Query(ctx, query, schoolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []UserRecord
	for rows.Next() {
		rec, err := scanUserRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// UpdateProfileParams captures the mutable profile fields.
type UpdateProfileParams struct {
	FirstName *string
	LastName  *string
	Status    *string
}

// UpdateProfile applies the provided profile changes.
func (s *UserStore) UpdateProfile(ctx context.Context, id uuid.UUID, params UpdateProfileParams) (UserRecord, error) {
	sets := []string{"updated_at = now()"}
	args := []any{id}

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
	if params.Status != nil {
		appendSet("status", *params.Status)
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE user_id = $1 RETURNING %s",
		UsersTable, strings.Join(sets, ", "), userColumns)
	return scanUserRecord(s.pool.QueryRow(ctx, query, args...))
}

// Delete removes a user.
func (s *UserStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE user_id = $1", UsersTable), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func scanUserRecord(row pgx.Row) (UserRecord, error) {
	var rec UserRecord
	if err := row.Scan(&rec.UserID, &rec.SchoolID, &rec.Email, &rec.PasswordHash, &rec.FirstName,
		&rec.LastName, &rec.Role, &rec.Status, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserRecord{}, ErrUserNotFound
		}
		return UserRecord{}, err
	}
	return rec, nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint error.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
