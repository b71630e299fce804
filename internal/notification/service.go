package notification

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
)

// Service is the notification emitter. Emission is a side effect of
// appointment transitions and admin fan-outs: it never fails the caller,
// and a persistence or email error costs at most the notification itself,
// never the state change that triggered it.
type Service struct {
	repo      Repository
	emails    EmailSender
	directory Directory
}

func NewService(repo Repository, emails EmailSender, directory Directory) *Service {
	if emails == nil {
		emails = NopSender{}
	}
	return &Service{repo: repo, emails: emails, directory: directory}
}

// Emit appends an unread notification for the recipient. Best-effort.
func (s *Service) Emit(ctx context.Context, recipientID uuid.UUID, typ Type, message string) {
	n := Notification{
		ID:          uuid.New(),
		RecipientID: recipientID,
		Type:        typ,
		Message:     message,
	}
	if err := s.repo.Insert(ctx, n); err != nil {
		log.Printf("notification insert failed for recipient %s: %v", recipientID, err)
		return
	}
	s.fanOut(ctx, recipientID, message)
}

// StatusUpdate satisfies the appointment service's Notifier dependency.
func (s *Service) StatusUpdate(ctx context.Context, recipientID uuid.UUID, message string) {
	s.Emit(ctx, recipientID, TypeStatusUpdate, message)
}

// Broadcast fans one message out to every recipient under a shared batch
// id, so the batch can be reported on or withdrawn as a unit. Best-effort.
func (s *Service) Broadcast(ctx context.Context, recipientIDs []uuid.UUID, typ Type, message string) uuid.UUID {
	batchID := uuid.New()

	ns := make([]Notification, 0, len(recipientIDs))
	for _, rid := range recipientIDs {
		ns = append(ns, Notification{
			ID:          uuid.New(),
			RecipientID: rid,
			Type:        typ,
			Message:     message,
			BatchID:     batchID,
		})
	}

	if err := s.repo.InsertBatch(ctx, ns); err != nil {
		log.Printf("broadcast %s insert failed: %v", batchID, err)
		return batchID
	}

	for _, rid := range recipientIDs {
		s.fanOut(ctx, rid, message)
	}
	return batchID
}

// FetchUnread is the pull-based subscription: unread notifications created
// after since, oldest first. Clients poll it at the advertised interval
// and surface the first broadcast/alert item as a blocking interstitial.
func (s *Service) FetchUnread(ctx context.Context, recipientID uuid.UUID, since time.Time) ([]Notification, error) {
	return s.repo.FetchUnread(ctx, recipientID, since)
}

// List returns the recipient's full notification history, newest first.
func (s *Service) List(ctx context.Context, recipientID uuid.UUID) ([]Notification, error) {
	return s.repo.ListByRecipient(ctx, recipientID)
}

// MarkRead flips is_read. Marking an already-read or unknown notification
// is a no-op, not an error, so clients can ack without races.
func (s *Service) MarkRead(ctx context.Context, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, id)
}

// MarkAllRead clears the recipient's unread backlog.
func (s *Service) MarkAllRead(ctx context.Context, recipientID uuid.UUID) error {
	return s.repo.MarkAllRead(ctx, recipientID)
}

// fanOut mirrors a notification to email when the recipient's address is
// known. Failures are logged and swallowed.
func (s *Service) fanOut(ctx context.Context, recipientID uuid.UUID, message string) {
	if s.directory == nil {
		return
	}
	email, err := s.directory.EmailFor(ctx, recipientID)
	if err != nil {
		if err != ErrRecipientUnknown {
			log.Printf("email lookup failed for recipient %s: %v", recipientID, err)
		}
		return
	}
	if err := s.emails.Send(ctx, email, "CareLink notification", message); err != nil {
		log.Printf("email fan-out failed for recipient %s: %v", recipientID, err)
	}
}
