package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/academia-hub/academia-backend/platform/go/tenant"
)

// SchoolsTable is the school registry table.
const SchoolsTable = "schools"

// ErrSchoolConflict indicates a subdomain uniqueness violation.
var ErrSchoolConflict = errors.New("school conflict")

// SchoolRecord represents a row in the schools table.
type SchoolRecord struct {
	SchoolID  uuid.UUID       `db:"school_id"`
	Subdomain string          `db:"subdomain"`
	Name      string          `db:"name"`
	Status    string          `db:"status"`
	Settings  json.RawMessage `db:"settings"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}

// SchoolStore provides access to the school registry.
type SchoolStore struct {
	pool *pgxpool.Pool
}

// NewSchoolStore creates a store; assumes migrations already created the table.
func NewSchoolStore(ctx context.Context, pool *pgxpool.Pool) (*SchoolStore, error) {
	if pool == nil {
		return nil, errors.New("pool is required")
	}
	return &SchoolStore{pool: pool}, nil
}

const schoolColumns = "school_id, subdomain, name, status, settings, created_at, updated_at"

// Create inserts a new school.
func (s *SchoolStore) Create(ctx context.Context, rec SchoolRecord) (SchoolRecord, error) {
	if rec.SchoolID == uuid.Nil {
		return SchoolRecord{}, errors.New("school id is required")
	}

	settings := rec.Settings
	if len(settings) == 0 {
		settings = json.RawMessage(`{}`)
	}

	query := fmt.Sprintf(`
        INSERT INTO %s (school_id, subdomain, name, status, settings)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING %s
    `, SchoolsTable, schoolColumns)

	row := s.pool.QueryRow(ctx, query,
		rec.SchoolID, strings.ToLower(strings.TrimSpace(rec.Subdomain)), rec.Name, rec.Status, settings,
	)

	out, err := scanSchoolRecord(row)
	if err != nil {
		if isUniqueViolation(err) {
			return SchoolRecord{}, ErrSchoolConflict
		}
		return SchoolRecord{}, err
	}
	return out, nil
}

// Get fetches a school by id.
func (s *SchoolStore) Get(ctx context.Context, id uuid.UUID) (SchoolRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE school_id = $1", schoolColumns, SchoolsTable)
	return scanSchoolRecord(s.pool.QueryRow(ctx, query, id))
}

// GetBySubdomain returns the school owning the subdomain, case-insensitively.
func (s *SchoolStore) GetBySubdomain(ctx context.Context, subdomain string) (SchoolRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE subdomain = lower($1)", schoolColumns, SchoolsTable)
	return scanSchoolRecord(s.pool.QueryRow(ctx, query, strings.TrimSpace(subdomain)))
}

// List returns schools with an optional status filter.
func (s *SchoolStore) List(ctx context.Context, status *string, limit, offset int) ([]SchoolRecord, error) {
	where := ""
	args := []any{}
	if status != nil {
		where = "WHERE status = $1"
		args = append(args, *status)
	}

	query := fmt.Sprintf(`SELECT %s FROM %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		schoolColumns, SchoolsTable, where, limit, offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []SchoolRecord
	for rows.Next() {
		rec, err := scanSchoolRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// UpdateStatus sets the subscription status; administrative tooling only, the
// gating pipeline never calls this.
func (s *SchoolStore) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (SchoolRecord, error) {
	query := fmt.Sprintf(`
        UPDATE %s SET status = $2, updated_at = now()
        WHERE school_id = $1
        RETURNING %s
    `, SchoolsTable, schoolColumns)
	return scanSchoolRecord(s.pool.QueryRow(ctx, query, id, status))
}

// Delete removes a school from the registry.
func (s *SchoolStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE school_id = $1", SchoolsTable), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return tenant.ErrSchoolNotFound
	}
	return nil
}

// BySubdomain satisfies tenant.Resolver so the store can back the gating
// pipeline directly (usually behind the cached resolver).
func (s *SchoolStore) BySubdomain(ctx context.Context, subdomain string) (tenant.School, error) {
	rec, err := s.GetBySubdomain(ctx, subdomain)
	if err != nil {
		return tenant.School{}, err
	}
	return rec.School(), nil
}

// School converts the row into the domain model consumed by the pipeline.
func (r SchoolRecord) School() tenant.School {
	return tenant.School{
		ID:        r.SchoolID,
		Subdomain: r.Subdomain,
		Name:      r.Name,
		Status:    tenant.Status(r.Status),
		Settings:  r.Settings,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func scanSchoolRecord(row pgx.Row) (SchoolRecord, error) {
	var rec SchoolRecord
	if err := row.Scan(&rec.SchoolID, &rec.Subdomain, &rec.Name, &rec.Status, &rec.Settings, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SchoolRecord{}, tenant.ErrSchoolNotFound
		}
		return SchoolRecord{}, err
	}
	return rec, nil
}
