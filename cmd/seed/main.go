package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carelink/telemed-scheduling/internal/db"
	"github.com/carelink/telemed-scheduling/internal/schedule"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	doctors, err := seedDoctors(context.Background(), pool, 25)
	if err != nil {
		log.Fatalf("seed doctors: %v", err)
	}
	patients, err := seedPatients(context.Background(), pool, 500)
	if err != nil {
		log.Fatalf("seed patients: %v", err)
	}
	if err := seedAppointments(context.Background(), pool, doctors, patients, 200); err != nil {
		log.Fatalf("seed appointments: %v", err)
	}

	log.Println("seed complete")
}

var dayPatterns = [][]time.Weekday{
	{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
	{time.Monday, time.Wednesday, time.Friday},
	{time.Tuesday, time.Thursday, time.Saturday},
	{time.Monday, time.Tuesday, time.Thursday, time.Friday},
}

func seedDoctors(ctx context.Context, pool *pgxpool.Pool, count int) ([]uuid.UUID, error) {
	log.Printf("seeding %d doctors with availability", count)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		id := uuid.New()
		ids = append(ids, id)

		_, err := tx.Exec(ctx, `
			INSERT INTO recipients (id, email, role, created_at)
			VALUES ($1, $2, 'doctor', now())
		`, id, gofakeit.Email())
		if err != nil {
			return nil, err
		}

		days := dayPatterns[gofakeit.Number(0, len(dayPatterns)-1)]
		dayInts := make([]int32, 0, len(days))
		for _, d := range days {
			dayInts = append(dayInts, int32(d))
		}

		duration := schedule.AllowedSlotDurations[gofakeit.Number(0, len(schedule.AllowedSlotDurations)-1)]
		start := schedule.NewTimeOfDay(gofakeit.Number(8, 10), 0)
		end := schedule.NewTimeOfDay(gofakeit.Number(15, 18), 0)

		_, err = tx.Exec(ctx, `
			INSERT INTO availability_templates
				(doctor_id, days, start_minutes, end_minutes, slot_duration_minutes, fee_cents, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, now())
		`, id, dayInts, int32(start), int32(end), duration, int64(gofakeit.Number(0, 200))*100)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	log.Println("doctors seeded")
	return ids, nil
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, count int) ([]uuid.UUID, error) {
	log.Printf("seeding %d patients", count)

	const batchSize = 100

	ids := make([]uuid.UUID, 0, count)
	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return nil, err
		}

		for i := offset; i < end; i++ {
			id := uuid.New()
			ids = append(ids, id)

			_, err := tx.Exec(ctx, `
				INSERT INTO recipients (id, email, role, created_at)
				VALUES ($1, $2, 'patient', now())
			`, id, gofakeit.Email())
			if err != nil {
				_ = tx.Rollback(ctx)
				return nil, err
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}

		log.Printf("patients seeded: %d/%d", end, count)
	}

	return ids, nil
}

// seedAppointments books random free slots over the next two weeks by
// walking each doctor's template, so seeded data always satisfies the
// scheduling invariants.
func seedAppointments(ctx context.Context, pool *pgxpool.Pool, doctors, patients []uuid.UUID, count int) error {
	log.Printf("seeding up to %d appointments", count)

	reasons := []string{
		"Follow-up consultation",
		"Persistent headache",
		"Skin rash",
		"Annual checkup",
		"Back pain",
		"Medication review",
	}

	seeded := 0
	for attempt := 0; seeded < count && attempt < count*3; attempt++ {
		doctorID := doctors[gofakeit.Number(0, len(doctors)-1)]
		patientID := patients[gofakeit.Number(0, len(patients)-1)]
		date := schedule.DateOnly(time.Now().AddDate(0, 0, gofakeit.Number(1, 14)))

		row := pool.QueryRow(ctx, `
			SELECT days, start_minutes, end_minutes, slot_duration_minutes
			FROM availability_templates
			WHERE doctor_id = $1
		`, doctorID)

		var days []int32
		var start, end int32
		var duration int
		if err := row.Scan(&days, &start, &end, &duration); err != nil {
			return err
		}

		tmpl := schedule.Template{
			DoctorID:     doctorID,
			StartTime:    schedule.TimeOfDay(start),
			EndTime:      schedule.TimeOfDay(end),
			SlotDuration: duration,
		}
		for _, d := range days {
			tmpl.Days = append(tmpl.Days, time.Weekday(d))
		}

		grid := schedule.Partition(tmpl, date)
		if len(grid) == 0 {
			continue
		}
		slot := grid[gofakeit.Number(0, len(grid)-1)]

		// The partial unique index rejects collisions with earlier seeds;
		// just try another slot.
		_, err := pool.Exec(ctx, `
			INSERT INTO appointments
				(id, doctor_id, patient_id, date, time_minutes, status, reason, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, 'pending', $6, now(), now())
			ON CONFLICT DO NOTHING
		`, uuid.New(), doctorID, patientID, date, int32(slot.Start),
			reasons[gofakeit.Number(0, len(reasons)-1)])
		if err != nil {
			return err
		}
		seeded++
	}

	log.Printf("appointments seeded: %d", seeded)
	return nil
}
