package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository persists notifications. Rows are append-only except for the
// is_read flag, and are retained indefinitely.
type Repository interface {
	Insert(ctx context.Context, n Notification) error
	InsertBatch(ctx context.Context, ns []Notification) error

	// ListByRecipient returns all of a recipient's notifications, newest
	// first.
	ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]Notification, error)

	// FetchUnread returns unread notifications created after since,
	// oldest first, so a poller can resume from its last high-water mark.
	FetchUnread(ctx context.Context, recipientID uuid.UUID, since time.Time) ([]Notification, error)

	// MarkRead sets is_read. Already-read or missing ids are a no-op.
	MarkRead(ctx context.Context, id uuid.UUID) error

	MarkAllRead(ctx context.Context, recipientID uuid.UUID) error
}
