package appointments

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresInsertReturnsCreatedAt(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	createdAt := time.Now().UTC()
	appt := testAppointment("Carlos", "11:00")

	mock.ExpectQuery("INSERT INTO appointments").
		WithArgs(
			pgxmock.AnyArg(),
			appt.CustomerName,
			appt.CustomerPhone,
			appt.Date,
			appt.TimeSlot,
			appt.Services,
			appt.Professional,
			StatusUnset,
		).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(createdAt))

	store := NewPostgresStore(mock)
	require.NoError(t, store.Insert(context.Background(), appt))

	assert.Equal(t, createdAt, appt.CreatedAt)
	assert.NotEqual(t, uuid.Nil, appt.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresInsertMapsUniqueViolationToSlotTaken(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO appointments").
		WithArgs(
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
		).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "appointments_slot_key"})

	store := NewPostgresStore(mock)
	err = store.Insert(context.Background(), testAppointment("Carlos", "11:00"))
	assert.ErrorIs(t, err, ErrSlotTaken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateStatusCompareAndSwap(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectExec("UPDATE appointments").
		WithArgs(id, StatusPending, StatusConfirmed).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE appointments").
		WithArgs(id, StatusPending, StatusConfirmed).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	store := NewPostgresStore(mock)

	ok, err := store.UpdateStatus(context.Background(), id, StatusPending, StatusConfirmed)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.UpdateStatus(context.Background(), id, StatusPending, StatusConfirmed)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresQueryBuildsFilterClauses(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	date := time.Date(2025, 5, 20, 0, 0, 0, 0, time.Local)
	id := uuid.New()
	createdAt := time.Now()

	rows := pgxmock.NewRows([]string{
		"id", "customer_name", "customer_phone", "date", "time_slot",
		"services", "professional", "status", "created_at",
	}).AddRow(
		id, "Maria", "+5511999990001", date, "11:00",
		[]string{"Corte de cabelo"}, "Carlos", StatusUnset, createdAt,
	)

	mock.ExpectQuery(`WHERE professional = \$1 AND date = \$2`).
		WithArgs("Carlos", date).
		WillReturnRows(rows)

	store := NewPostgresStore(mock)
	result, err := store.Query(context.Background(), Filter{Professional: "Carlos", Date: date})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "11:00", result[0].TimeSlot)
	assert.Equal(t, []string{"Corte de cabelo"}, result[0].Services)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresQueryNoFilter(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("ORDER BY created_at DESC").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "customer_name", "customer_phone", "date", "time_slot",
			"services", "professional", "status", "created_at",
		}))

	store := NewPostgresStore(mock)
	result, err := store.Query(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Empty(t, result)
	require.NoError(t, mock.ExpectationsWereMet())
}
