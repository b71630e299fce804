package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

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

func (r *PgRepository) GetTemplate(ctx context.Context, doctorID uuid.UUID) (*Template, error) {
	row := r.db.QueryRow(ctx, `
		SELECT doctor_id, days, start_minutes, end_minutes, slot_duration_minutes, fee_cents, updated_at
		FROM availability_templates
		WHERE doctor_id = $1
	`, doctorID)

	var t Template
	var days []int32
	var start, end int32
	err := row.Scan(&t.DoctorID, &days, &start, &end, &t.SlotDuration, &t.FeeCents, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}

	t.StartTime = TimeOfDay(start)
	t.EndTime = TimeOfDay(end)
	t.Days = make([]time.Weekday, 0, len(days))
	for _, d := range days {
		t.Days = append(t.Days, time.Weekday(d))
	}
	return &t, nil
}

func (r *PgRepository) ReplaceTemplate(ctx context.Context, t Template) error {
	days := make([]int32, 0, len(t.Days))
	for _, d := range t.Days {
		days = append(days, int32(d))
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO availability_templates
			(doctor_id, days, start_minutes, end_minutes, slot_duration_minutes, fee_cents, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (doctor_id) DO UPDATE SET
			days = EXCLUDED.days,
			start_minutes = EXCLUDED.start_minutes,
			end_minutes = EXCLUDED.end_minutes,
			slot_duration_minutes = EXCLUDED.slot_duration_minutes,
			fee_cents = EXCLUDED.fee_cents,
			updated_at = now()
	`, t.DoctorID, days, int32(t.StartTime), int32(t.EndTime), t.SlotDuration, t.FeeCents)
	return err
}
