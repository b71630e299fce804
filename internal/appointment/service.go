package appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	redisclient "github.com/carelink/telemed-scheduling/internal/redis"
	"github.com/carelink/telemed-scheduling/internal/schedule"
)

// TemplateSource resolves a doctor's current availability template.
type TemplateSource interface {
	GetAvailability(ctx context.Context, doctorID uuid.UUID) (*schedule.Template, error)
}

// Notifier receives appointment lifecycle events. Delivery is best-effort:
// implementations must not fail the triggering transition.
type Notifier interface {
	StatusUpdate(ctx context.Context, recipientID uuid.UUID, message string)
}

type Service struct {
	repo      Repository
	templates TemplateSource
	locker    redisclient.Locker
	notifier  Notifier
}

func NewService(repo Repository, templates TemplateSource, locker redisclient.Locker, notifier Notifier) *Service {
	return &Service{
		repo:      repo,
		templates: templates,
		locker:    locker,
		notifier:  notifier,
	}
}

// Create books a slot for a patient. The requested start time must land on
// the doctor's slot grid for that date; the store's uniqueness constraint
// decides the winner when two patients race for the same slot, and the
// per-slot lock keeps the common case from reaching the constraint at all.
func (s *Service) Create(ctx context.Context, doctorID, patientID uuid.UUID, date time.Time, t schedule.TimeOfDay, reason string) (*Appointment, error) {
	if doctorID == uuid.Nil {
		return nil, &ValidationError{Field: "doctorId", Reason: "doctor is required"}
	}
	if patientID == uuid.Nil {
		return nil, &ValidationError{Field: "patientId", Reason: "patient is required"}
	}

	date = schedule.DateOnly(date)

	tmpl, err := s.templates.GetAvailability(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("load availability: %w", err)
	}
	if !tmpl.WorksOn(date.Weekday()) {
		return nil, &ValidationError{Field: "date", Reason: "doctor is not available on this day"}
	}
	if !schedule.Covers(*tmpl, date, t) {
		return nil, &ValidationError{Field: "time", Reason: "time does not match an available slot"}
	}

	var created *Appointment
	key := slotLockKey(doctorID, date, t)

	err = s.locker.WithLock(ctx, key, func(lockCtx context.Context) error {
		a, err := s.repo.CreatePending(lockCtx, Appointment{
			DoctorID:  doctorID,
			PatientID: patientID,
			Date:      date,
			Time:      t,
			Reason:    strings.TrimSpace(reason),
		})
		if err != nil {
			return err
		}
		created = a
		return nil
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrSlotUnavailable
		}
		return nil, err
	}

	s.notifier.StatusUpdate(ctx, doctorID,
		fmt.Sprintf("New appointment request for %s at %s.", date.Format(time.DateOnly), t))

	return created, nil
}

// Transition applies an action to an appointment on behalf of an actor.
// Only the appointment's doctor may confirm or complete; either party may
// cancel. The status change is a conditional write keyed on the expected
// prior status, so a concurrent update surfaces as InvalidTransitionError
// instead of being silently overwritten.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, actor Actor, action Action, upd Update) (*Appointment, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := authorize(current, actor, action); err != nil {
		return nil, err
	}

	to, ok := Next(current.Status, action)
	if !ok {
		return nil, &InvalidTransitionError{Current: current.Status, Requested: action}
	}

	switch action {
	case ActionComplete:
		if upd.Diagnosis == nil || strings.TrimSpace(*upd.Diagnosis) == "" {
			return nil, &ValidationError{Field: "diagnosis", Reason: "diagnosis is required to complete an appointment"}
		}
		if upd.Prescription == nil || strings.TrimSpace(*upd.Prescription) == "" {
			return nil, &ValidationError{Field: "prescription", Reason: "prescription is required to complete an appointment"}
		}
	case ActionConfirm:
		// Only the meeting link may be attached on confirm.
		upd = Update{MeetingLink: upd.MeetingLink}
	case ActionCancel:
		upd = Update{}
	}

	updated, err := s.repo.UpdateStatus(ctx, id, current.Status, to, upd)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			// Lost a race: the row changed (or vanished) between the read
			// and the conditional write.
			fresh, readErr := s.repo.GetByID(ctx, id)
			if readErr != nil {
				return nil, readErr
			}
			return nil, &InvalidTransitionError{Current: fresh.Status, Requested: action}
		}
		return nil, fmt.Errorf("update status: %w", err)
	}

	s.notifyTransition(ctx, updated, actor, action)
	return updated, nil
}

// Delete permanently removes a terminal appointment. Non-terminal
// appointments must be cancelled first.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, actor Actor) error {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if actor.Role != RoleDoctor || actor.ID != current.DoctorID {
		return ErrNotAuthorized
	}
	if !current.Status.IsTerminal() {
		return &InvalidTransitionError{Current: current.Status, Requested: "delete"}
	}

	deleted, err := s.repo.DeleteTerminal(ctx, id)
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	if !deleted {
		// Status changed out from under us; terminal states cannot regress,
		// so the row must already be gone.
		return ErrAppointmentNotFound
	}
	return nil
}

// Get returns an appointment to one of its parties.
func (s *Service) Get(ctx context.Context, id uuid.UUID, actor Actor) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.party(actor) {
		return nil, ErrNotAuthorized
	}
	return a, nil
}

// ListForActor returns the actor's appointments ordered by date and time.
func (s *Service) ListForActor(ctx context.Context, actor Actor) ([]Appointment, error) {
	switch actor.Role {
	case RoleDoctor:
		return s.repo.ListByDoctor(ctx, actor.ID)
	case RolePatient:
		return s.repo.ListByPatient(ctx, actor.ID)
	}
	return nil, ErrNotAuthorized
}

func authorize(a *Appointment, actor Actor, action Action) error {
	switch action {
	case ActionConfirm, ActionComplete:
		if actor.Role != RoleDoctor || actor.ID != a.DoctorID {
			return ErrNotAuthorized
		}
	case ActionCancel:
		if !a.party(actor) {
			return ErrNotAuthorized
		}
	default:
		return &InvalidTransitionError{Current: a.Status, Requested: action}
	}
	return nil
}

func (s *Service) notifyTransition(ctx context.Context, a *Appointment, actor Actor, action Action) {
	when := fmt.Sprintf("%s at %s", a.Date.Format(time.DateOnly), a.Time)

	switch action {
	case ActionConfirm:
		s.notifier.StatusUpdate(ctx, a.PatientID,
			fmt.Sprintf("Your appointment on %s has been accepted and confirmed.", when))
	case ActionComplete:
		s.notifier.StatusUpdate(ctx, a.PatientID,
			fmt.Sprintf("Your appointment on %s has been marked as completed.", when))
	case ActionCancel:
		// Notify the counterparty of whoever cancelled.
		recipient := a.PatientID
		if actor.Role == RolePatient {
			recipient = a.DoctorID
		}
		s.notifier.StatusUpdate(ctx, recipient,
			fmt.Sprintf("The appointment on %s has been cancelled.", when))
	}
}

func slotLockKey(doctorID uuid.UUID, date time.Time, t schedule.TimeOfDay) string {
	return fmt.Sprintf("lock:slot:%s:%s:%s", doctorID, date.Format(time.DateOnly), t)
}
