package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/carelink/telemed-scheduling/internal/schedule"
)

const uniqueViolation = "23505"

// DB is the subset of pgxpool.Pool the repository needs. pgxmock satisfies
// it in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PgRepository struct {
	db DB
}

func NewPgRepository(db DB) *PgRepository {
	return &PgRepository{db: db}
}

const appointmentColumns = `
	id, doctor_id, patient_id, date, time_minutes, status, reason,
	meeting_link, diagnosis, prescription, doctor_notes, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var timeMinutes int32

	err := row.Scan(
		&a.ID,
		&a.DoctorID,
		&a.PatientID,
		&a.Date,
		&timeMinutes,
		&a.Status,
		&a.Reason,
		&a.MeetingLink,
		&a.Diagnosis,
		&a.Prescription,
		&a.DoctorNotes,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	a.Time = schedule.TimeOfDay(timeMinutes)
	a.Date = schedule.DateOnly(a.Date)
	return &a, nil
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		SELECT`+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) CreatePending(ctx context.Context, a Appointment) (*Appointment, error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO appointments
			(id, doctor_id, patient_id, date, time_minutes, status, reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 'pending', $6, now(), now())
		RETURNING`+appointmentColumns+`
	`, a.ID, a.DoctorID, a.PatientID, a.Date, int32(a.Time), a.Reason)

	created, err := scanAppointment(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrSlotUnavailable
		}
		return nil, err
	}
	return created, nil
}

func (r *PgRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, upd Update) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE appointments
		SET status = $3,
		    meeting_link = COALESCE($4, meeting_link),
		    diagnosis = COALESCE($5, diagnosis),
		    prescription = COALESCE($6, prescription),
		    doctor_notes = COALESCE($7, doctor_notes),
		    updated_at = now()
		WHERE id = $1
		  AND status = $2
		RETURNING`+appointmentColumns+`
	`, id, from, to, upd.MeetingLink, upd.Diagnosis, upd.Prescription, upd.DoctorNotes)

	return scanAppointment(row)
}

func (r *PgRepository) DeleteTerminal(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM appointments
		WHERE id = $1
		  AND status IN ('completed', 'cancelled')
	`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PgRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]Appointment, error) {
	return r.list(ctx, `doctor_id`, doctorID)
}

func (r *PgRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]Appointment, error) {
	return r.list(ctx, `patient_id`, patientID)
}

func (r *PgRepository) list(ctx context.Context, column string, id uuid.UUID) ([]Appointment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT`+appointmentColumns+`
		FROM appointments
		WHERE `+column+` = $1
		ORDER BY date, time_minutes
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	return result, rows.Err()
}

func (r *PgRepository) BookedTimes(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]schedule.TimeOfDay, error) {
	rows, err := r.db.Query(ctx, `
		SELECT time_minutes
		FROM appointments
		WHERE doctor_id = $1
		  AND date = $2
		  AND status IN ('pending', 'confirmed', 'completed')
		ORDER BY time_minutes
	`, doctorID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var times []schedule.TimeOfDay
	for rows.Next() {
		var m int32
		if err := rows.Scan(&m); err != nil {
			return nil, err
		}
		times = append(times, schedule.TimeOfDay(m))
	}
	return times, rows.Err()
}
