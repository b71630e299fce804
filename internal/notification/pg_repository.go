package notification

import (
	"context"
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

func (r *PgRepository) Insert(ctx context.Context, n Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO notifications (id, recipient_id, type, message, is_read, batch_id, created_at)
		VALUES ($1, $2, $3, $4, false, $5, now())
	`, n.ID, n.RecipientID, n.Type, n.Message, nullableUUID(n.BatchID))
	return err
}

func (r *PgRepository) InsertBatch(ctx context.Context, ns []Notification) error {
	batch := &pgx.Batch{}
	for _, n := range ns {
		id := n.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		batch.Queue(`
			INSERT INTO notifications (id, recipient_id, type, message, is_read, batch_id, created_at)
			VALUES ($1, $2, $3, $4, false, $5, now())
		`, id, n.RecipientID, n.Type, n.Message, nullableUUID(n.BatchID))
	}

	// pgx batches need the concrete pool; fall back to row-at-a-time when
	// running against a test double.
	if sender, ok := r.db.(interface {
		SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	}); ok {
		results := sender.SendBatch(ctx, batch)
		defer results.Close()
		for range ns {
			if _, err := results.Exec(); err != nil {
				return err
			}
		}
		return results.Close()
	}

	for _, n := range ns {
		if err := r.Insert(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

func (r *PgRepository) ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]Notification, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, recipient_id, type, message, is_read, batch_id, created_at
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC
	`, recipientID)
	if err != nil {
		return nil, err
	}
	return scanNotifications(rows)
}

func (r *PgRepository) FetchUnread(ctx context.Context, recipientID uuid.UUID, since time.Time) ([]Notification, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, recipient_id, type, message, is_read, batch_id, created_at
		FROM notifications
		WHERE recipient_id = $1
		  AND is_read = false
		  AND created_at > $2
		ORDER BY created_at
	`, recipientID, since)
	if err != nil {
		return nil, err
	}
	return scanNotifications(rows)
}

func (r *PgRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		UPDATE notifications
		SET is_read = true
		WHERE id = $1
	`, id)
	return err
}

func (r *PgRepository) MarkAllRead(ctx context.Context, recipientID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		UPDATE notifications
		SET is_read = true
		WHERE recipient_id = $1
		  AND is_read = false
	`, recipientID)
	return err
}

func scanNotifications(rows pgx.Rows) ([]Notification, error) {
	defer rows.Close()

	var result []Notification
	for rows.Next() {
		var n Notification
		var batchID *uuid.UUID
		err := rows.Scan(&n.ID, &n.RecipientID, &n.Type, &n.Message, &n.IsRead, &batchID, &n.CreatedAt)
		if err != nil {
			return nil, err
		}
		if batchID != nil {
			n.BatchID = *batchID
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

func nullableUUID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
