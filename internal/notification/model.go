package notification

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	// TypeBroadcast and TypeAlert are admin fan-outs surfaced to the
	// recipient as a blocking interstitial on the next poll.
	TypeBroadcast Type = "broadcast"
	TypeAlert     Type = "alert"

	// TypeStatusUpdate accompanies appointment lifecycle transitions.
	TypeStatusUpdate Type = "status-update"
)

type Notification struct {
	ID          uuid.UUID
	RecipientID uuid.UUID
	Type        Type
	Message     string
	IsRead      bool

	// BatchID groups the notifications of one broadcast or alert fan-out.
	// Empty for status updates.
	BatchID uuid.UUID

	CreatedAt time.Time
}
