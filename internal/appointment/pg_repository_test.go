package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carelink/telemed-scheduling/internal/schedule"
)

var appointmentMockColumns = []string{
	"id", "doctor_id", "patient_id", "date", "time_minutes", "status", "reason",
	"meeting_link", "diagnosis", "prescription", "doctor_notes", "created_at", "updated_at",
}

func appointmentRow(mock pgxmock.PgxPoolIface, a Appointment) *pgxmock.Rows {
	return mock.NewRows(appointmentMockColumns).AddRow(
		a.ID, a.DoctorID, a.PatientID, a.Date, int32(a.Time), string(a.Status), a.Reason,
		a.MeetingLink, a.Diagnosis, a.Prescription, a.DoctorNotes, a.CreatedAt, a.UpdatedAt,
	)
}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestPgCreatePendingMapsUniqueViolation(t *testing.T) {
	mock := newMock(t)
	repo := NewPgRepository(mock)

	mock.ExpectQuery(`INSERT INTO appointments`).
		WillReturnError(&pgconn.PgError{Code: uniqueViolation, ConstraintName: "appointments_slot_unique"})

	_, err := repo.CreatePending(context.Background(), Appointment{
		DoctorID:  uuid.New(),
		PatientID: uuid.New(),
		Date:      monday,
		Time:      schedule.NewTimeOfDay(9, 0),
	})
	assert.ErrorIs(t, err, ErrSlotUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgCreatePendingReturnsRow(t *testing.T) {
	mock := newMock(t)
	repo := NewPgRepository(mock)

	want := Appointment{
		ID:        uuid.New(),
		DoctorID:  uuid.New(),
		PatientID: uuid.New(),
		Date:      monday,
		Time:      schedule.NewTimeOfDay(9, 30),
		Status:    StatusPending,
		Reason:    "checkup",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	mock.ExpectQuery(`INSERT INTO appointments`).
		WithArgs(want.ID, want.DoctorID, want.PatientID, want.Date, int32(want.Time), want.Reason).
		WillReturnRows(appointmentRow(mock, want))

	got, err := repo.CreatePending(context.Background(), Appointment{
		ID:        want.ID,
		DoctorID:  want.DoctorID,
		PatientID: want.PatientID,
		Date:      want.Date,
		Time:      want.Time,
		Reason:    want.Reason,
	})
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, StatusPending, got.Status)
	assert.Equal(t, want.Time, got.Time)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgUpdateStatusIsConditional(t *testing.T) {
	mock := newMock(t)
	repo := NewPgRepository(mock)
	id := uuid.New()

	link := "https://meet.example/xyz"
	want := Appointment{ID: id, Status: StatusConfirmed, MeetingLink: link, Date: monday}

	mock.ExpectQuery(`UPDATE appointments`).
		WithArgs(id, StatusPending, StatusConfirmed, &link, (*string)(nil), (*string)(nil), (*string)(nil)).
		WillReturnRows(appointmentRow(mock, want))

	got, err := repo.UpdateStatus(context.Background(), id, StatusPending, StatusConfirmed, Update{MeetingLink: &link})
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, got.Status)
	assert.Equal(t, link, got.MeetingLink)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgUpdateStatusNoMatchIsNotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewPgRepository(mock)
	id := uuid.New()

	// Status precondition failed: zero rows come back.
	mock.ExpectQuery(`UPDATE appointments`).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.UpdateStatus(context.Background(), id, StatusPending, StatusConfirmed, Update{})
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgDeleteTerminal(t *testing.T) {
	mock := newMock(t)
	repo := NewPgRepository(mock)
	id := uuid.New()

	mock.ExpectExec(`DELETE FROM appointments`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	deleted, err := repo.DeleteTerminal(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, deleted)

	mock.ExpectExec(`DELETE FROM appointments`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	deleted, err = repo.DeleteTerminal(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgBookedTimes(t *testing.T) {
	mock := newMock(t)
	repo := NewPgRepository(mock)
	doctorID := uuid.New()

	rows := mock.NewRows([]string{"time_minutes"}).
		AddRow(int32(540)).
		AddRow(int32(570))

	mock.ExpectQuery(`SELECT time_minutes`).
		WithArgs(doctorID, monday).
		WillReturnRows(rows)

	times, err := repo.BookedTimes(context.Background(), doctorID, monday)
	require.NoError(t, err)
	assert.Equal(t, []schedule.TimeOfDay{schedule.NewTimeOfDay(9, 0), schedule.NewTimeOfDay(9, 30)}, times)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgGetByIDNotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewPgRepository(mock)
	id := uuid.New()

	mock.ExpectQuery(`SELECT(.|\n)+FROM appointments`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
