package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Service owns availability templates and derives bookable slots from them.
type Service struct {
	repo   Repository
	booked BookedLookup
}

func NewService(repo Repository, booked BookedLookup) *Service {
	return &Service{repo: repo, booked: booked}
}

// SetAvailability validates and atomically replaces the doctor's template.
func (s *Service) SetAvailability(ctx context.Context, doctorID uuid.UUID, t Template) (*Template, error) {
	t.DoctorID = doctorID
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceTemplate(ctx, t); err != nil {
		return nil, fmt.Errorf("replace template: %w", err)
	}
	return &t, nil
}

// GetAvailability returns the doctor's current template, falling back to
// the documented default (Mon-Fri 09:00-17:00, 30 min, fee 0) when the
// doctor has never saved one.
func (s *Service) GetAvailability(ctx context.Context, doctorID uuid.UUID) (*Template, error) {
	t, err := s.repo.GetTemplate(ctx, doctorID)
	if err != nil {
		if errors.Is(err, ErrTemplateNotFound) {
			def := DefaultTemplate(doctorID)
			return &def, nil
		}
		return nil, fmt.Errorf("load template: %w", err)
	}
	return t, nil
}

// Slots answers "what is bookable for this doctor on this date": the
// template's slot grid minus slots held by pending, confirmed or completed
// appointments. A date outside the doctor's working days yields an empty
// result, not an error. The output is ordered ascending by start time and
// is deterministic for identical inputs.
func (s *Service) Slots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]Slot, error) {
	tmpl, err := s.GetAvailability(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	grid := Partition(*tmpl, date)
	if len(grid) == 0 {
		return nil, nil
	}

	taken, err := s.booked.BookedTimes(ctx, doctorID, DateOnly(date))
	if err != nil {
		return nil, fmt.Errorf("load booked times: %w", err)
	}
	if len(taken) == 0 {
		return grid, nil
	}

	takenSet := make(map[TimeOfDay]bool, len(taken))
	for _, t := range taken {
		takenSet[t] = true
	}

	free := grid[:0:0]
	for _, slot := range grid {
		if !takenSet[slot.Start] {
			free = append(free, slot)
		}
	}
	return free, nil
}
