package appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/carelink/telemed-scheduling/internal/schedule"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// IsTerminal reports whether no further transitions are permitted.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type Action string

const (
	ActionConfirm  Action = "confirm"
	ActionComplete Action = "complete"
	ActionCancel   Action = "cancel"
)

// transitions is the full state machine: for each current status, the
// actions allowed and the status they lead to. Everything else is rejected.
var transitions = map[Status]map[Action]Status{
	StatusPending: {
		ActionConfirm: StatusConfirmed,
		ActionCancel:  StatusCancelled,
	},
	StatusConfirmed: {
		ActionComplete: StatusCompleted,
		ActionCancel:   StatusCancelled,
	},
}

// Next returns the target status for an action from the given status, or
// false when the transition table does not list it.
func Next(from Status, action Action) (Status, bool) {
	to, ok := transitions[from][action]
	return to, ok
}

type Role string

const (
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
	RoleAdmin   Role = "admin"
)

// Actor is the authenticated caller, resolved by the auth layer upstream.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

type Appointment struct {
	ID        uuid.UUID
	DoctorID  uuid.UUID
	PatientID uuid.UUID
	Date      time.Time // civil date, midnight UTC
	Time      schedule.TimeOfDay
	Status    Status
	Reason    string

	// Set on confirm.
	MeetingLink string

	// Set on completion; the appointment then becomes a read-only
	// clinical record.
	Diagnosis    string
	Prescription string
	DoctorNotes  string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// party reports whether the actor is the doctor or the patient on the
// appointment.
func (a *Appointment) party(actor Actor) bool {
	switch actor.Role {
	case RoleDoctor:
		return actor.ID == a.DoctorID
	case RolePatient:
		return actor.ID == a.PatientID
	}
	return false
}

// Update carries the optional fields a transition may set alongside the
// status change.
type Update struct {
	MeetingLink  *string
	Diagnosis    *string
	Prescription *string
	DoctorNotes  *string
}
