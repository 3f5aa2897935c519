package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lfarias/barberbook/internal/appointments"
)

// PostgresReminderStore persists reminders in Postgres.
type PostgresReminderStore struct {
	pool appointments.PgxPool
}

// NewPostgresReminderStore initializes a store backed by pgxpool.
func NewPostgresReminderStore(pool appointments.PgxPool) *PostgresReminderStore {
	if pool == nil {
		panic("scheduler: pgx pool required")
	}
	return &PostgresReminderStore{pool: pool}
}

var _ ReminderStore = (*PostgresReminderStore)(nil)

func (s *PostgresReminderStore) Insert(ctx context.Context, r *Reminder) error {
	id := uuid.New()
	query := `
		INSERT INTO reminders (id, appointment_id, phone, body, fire_at, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := s.pool.QueryRow(ctx, query,
		id,
		r.AppointmentID,
		r.Phone,
		r.Body,
		r.FireAt,
		r.SentAt,
	).Scan(&createdAt); err != nil {
		return fmt.Errorf("scheduler: insert reminder: %w", err)
	}
	r.ID = id
	r.CreatedAt = createdAt
	return nil
}

func (s *PostgresReminderStore) FetchDue(ctx context.Context, now time.Time) ([]Reminder, error) {
	query := `
		SELECT id, appointment_id, phone, body, fire_at, sent_at, created_at
		FROM reminders
		WHERE sent_at IS NULL AND fire_at <= $1
		ORDER BY fire_at ASC
	`
	rows, err := s.pool.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("scheduler: select due reminders: %w", err)
	}
	defer rows.Close()

	var result []Reminder
	for rows.Next() {
		var r Reminder
		if err := rows.Scan(
			&r.ID,
			&r.AppointmentID,
			&r.Phone,
			&r.Body,
			&r.FireAt,
			&r.SentAt,
			&r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scheduler: scan reminder: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func (s *PostgresReminderStore) MarkSent(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE reminders
		SET sent_at = now()
		WHERE id = $1 AND sent_at IS NULL
	`
	ct, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("scheduler: mark reminder sent: %w", err)
	}
	return ct.RowsAffected() == 1, nil
}
