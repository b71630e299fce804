package api

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carelink/telemed-scheduling/internal/appointment"
	"github.com/carelink/telemed-scheduling/internal/notification"
	"github.com/carelink/telemed-scheduling/internal/schedule"
)

type AvailabilityRequest struct {
	Days                []string           `json:"days"`
	StartTime           schedule.TimeOfDay `json:"startTime"`
	EndTime             schedule.TimeOfDay `json:"endTime"`
	SlotDurationMinutes int                `json:"slotDurationMinutes"`
	FeeCents            int64              `json:"feeCents"`
}

type AvailabilityResponse struct {
	DoctorID            uuid.UUID          `json:"doctorId"`
	Days                []string           `json:"days"`
	StartTime           schedule.TimeOfDay `json:"startTime"`
	EndTime             schedule.TimeOfDay `json:"endTime"`
	SlotDurationMinutes int                `json:"slotDurationMinutes"`
	FeeCents            int64              `json:"feeCents"`
}

type SlotResponse struct {
	StartTime schedule.TimeOfDay `json:"startTime"`
	EndTime   schedule.TimeOfDay `json:"endTime"`
}

type SlotsResponse struct {
	Date  string         `json:"date"`
	Slots []SlotResponse `json:"slots"`
}

type CreateAppointmentRequest struct {
	DoctorID string             `json:"doctorId"`
	Date     string             `json:"date"`
	Time     schedule.TimeOfDay `json:"time"`
	Reason   string             `json:"reason,omitempty"`
}

type TransitionRequest struct {
	MeetingLink  *string `json:"meetingLink,omitempty"`
	Diagnosis    *string `json:"diagnosis,omitempty"`
	Prescription *string `json:"prescription,omitempty"`
	DoctorNotes  *string `json:"doctorNotes,omitempty"`
}

type AppointmentResponse struct {
	ID           uuid.UUID          `json:"id"`
	DoctorID     uuid.UUID          `json:"doctorId"`
	PatientID    uuid.UUID          `json:"patientId"`
	Date         string             `json:"date"`
	Time         schedule.TimeOfDay `json:"time"`
	Status       string             `json:"status"`
	Reason       string             `json:"reason,omitempty"`
	MeetingLink  string             `json:"meetingLink,omitempty"`
	Diagnosis    string             `json:"diagnosis,omitempty"`
	Prescription string             `json:"prescription,omitempty"`
	DoctorNotes  string             `json:"doctorNotes,omitempty"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

type NotificationResponse struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

type BroadcastRequest struct {
	Message string `json:"message"`
	Target  string `json:"target"` // all, doctors, patients
}

type BroadcastResponse struct {
	BatchID    uuid.UUID `json:"batchId"`
	Recipients int       `json:"recipients"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func toAppointmentResponse(a *appointment.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:           a.ID,
		DoctorID:     a.DoctorID,
		PatientID:    a.PatientID,
		Date:         a.Date.Format(time.DateOnly),
		Time:         a.Time,
		Status:       string(a.Status),
		Reason:       a.Reason,
		MeetingLink:  a.MeetingLink,
		Diagnosis:    a.Diagnosis,
		Prescription: a.Prescription,
		DoctorNotes:  a.DoctorNotes,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func toAvailabilityResponse(t *schedule.Template) AvailabilityResponse {
	days := make([]string, 0, len(t.Days))
	for _, d := range t.Days {
		days = append(days, d.String())
	}
	return AvailabilityResponse{
		DoctorID:            t.DoctorID,
		Days:                days,
		StartTime:           t.StartTime,
		EndTime:             t.EndTime,
		SlotDurationMinutes: t.SlotDuration,
		FeeCents:            t.FeeCents,
	}
}

func toNotificationResponse(n notification.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Type:      string(n.Type),
		Message:   n.Message,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}

var weekdayNames = map[string]time.Weekday{
	"Sunday":    time.Sunday,
	"Monday":    time.Monday,
	"Tuesday":   time.Tuesday,
	"Wednesday": time.Wednesday,
	"Thursday":  time.Thursday,
	"Friday":    time.Friday,
	"Saturday":  time.Saturday,
}

func parseWeekdays(names []string) ([]time.Weekday, error) {
	days := make([]time.Weekday, 0, len(names))
	for _, name := range names {
		d, ok := weekdayNames[name]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", name)
		}
		days = append(days, d)
	}
	return days, nil
}
