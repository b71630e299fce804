package notification

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrRecipientUnknown = errors.New("recipient has no known email")

// Directory resolves a recipient id to an email address. The recipients
// table is a read-only projection kept in sync by the account system; the
// engine itself never writes to it.
type Directory interface {
	EmailFor(ctx context.Context, recipientID uuid.UUID) (string, error)
}

type PgDirectory struct {
	db DB
}

func NewPgDirectory(db DB) *PgDirectory {
	return &PgDirectory{db: db}
}

// RecipientIDs lists recipient ids, optionally filtered by role
// ("doctor" or "patient"); an empty role means everyone. Admin broadcast
// fan-out uses it to resolve its audience.
func (d *PgDirectory) RecipientIDs(ctx context.Context, role string) ([]uuid.UUID, error) {
	query := `SELECT id FROM recipients`
	args := []any{}
	if role != "" {
		query += ` WHERE role = $1`
		args = append(args, role)
	}

	rows, err := d.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (d *PgDirectory) EmailFor(ctx context.Context, recipientID uuid.UUID) (string, error) {
	var email string
	err := d.db.QueryRow(ctx, `
		SELECT email
		FROM recipients
		WHERE id = $1
	`, recipientID).Scan(&email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrRecipientUnknown
		}
		return "", err
	}
	return email, nil
}
