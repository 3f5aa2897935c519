package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/lfarias/barberbook/internal/catalog"
)

// PgxPool is the subset of pgxpool.Pool the repository needs. Tests inject
// pgxmock through it.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists appointments in Postgres. The slot-uniqueness
// invariant lives in a partial unique index, so check-then-insert is atomic
// even across processes.
type PostgresStore struct {
	pool PgxPool
}

// NewPostgresStore initializes a store backed by pgxpool.
func NewPostgresStore(pool PgxPool) *PostgresStore {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &PostgresStore{pool: pool}
}

var _ Store = (*PostgresStore)(nil)

// Insert persists a new appointment row. A unique-violation on the slot index
// maps to ErrSlotTaken.
func (s *PostgresStore) Insert(ctx context.Context, appt *Appointment) error {
	if appt.Status == "" {
		appt.Status = StatusUnset
	}
	if err := appt.Validate(); err != nil {
		return err
	}

	id := uuid.New()
	query := `
		INSERT INTO appointments (id, customer_name, customer_phone, date, time_slot, services, professional, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := s.pool.QueryRow(ctx, query,
		id,
		appt.CustomerName,
		appt.CustomerPhone,
		appt.Date,
		appt.TimeSlot,
		appt.Services,
		appt.Professional,
		appt.Status,
	).Scan(&createdAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrSlotTaken
		}
		return fmt.Errorf("appointments: insert failed: %w", err)
	}

	appt.ID = id
	appt.CreatedAt = createdAt
	return nil
}

// Query returns appointments matching the filter, most recent first.
func (s *PostgresStore) Query(ctx context.Context, filter Filter) ([]Appointment, error) {
	query := `
		SELECT id, customer_name, customer_phone, date, time_slot, services, professional, status, created_at
		FROM appointments
	`
	var conds []string
	var args []any
	addCond := func(cond string, val any) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.Professional != "" {
		addCond("professional = $%d", filter.Professional)
	}
	if !filter.Date.IsZero() {
		addCond("date = $%d", filter.Date)
	}
	if filter.Status != "" {
		addCond("status = $%d", filter.Status)
	}
	if filter.CustomerPhone != "" {
		addCond("customer_phone = $%d", filter.CustomerPhone)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("appointments: select failed: %w", err)
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		var appt Appointment
		if err := rows.Scan(
			&appt.ID,
			&appt.CustomerName,
			&appt.CustomerPhone,
			&appt.Date,
			&appt.TimeSlot,
			&appt.Services,
			&appt.Professional,
			&appt.Status,
			&appt.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("appointments: scan failed: %w", err)
		}
		result = append(result, appt)
	}
	return result, rows.Err()
}

// UpdateStatus swaps the status only when the current value matches expected.
func (s *PostgresStore) UpdateStatus(ctx context.Context, id uuid.UUID, expected, next Status) (bool, error) {
	query := `
		UPDATE appointments
		SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
	`
	ct, err := s.pool.Exec(ctx, query, id, expected, next)
	if err != nil {
		return false, fmt.Errorf("appointments: update status: %w", err)
	}
	return ct.RowsAffected() == 1, nil
}

// sentinel check shared with the memory store.
func occupiesNamedSlot(professional string, status Status) bool {
	return professional != catalog.AnyProfessional && status != StatusCancelled
}
