package traffic

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"temple_pass/internal/models"
)

// GenerateInput describes a batch of equal-width slots for one route.
// Zero IntervalMinutes and MaxCapacity fall back to the service interval and
// the route's capacity.
type GenerateInput struct {
	RouteID          uint
	Start            time.Time
	End              time.Time
	IntervalMinutes  int
	MaxCapacity      int
	IsSpecialEvent   bool
	SpecialEventName string
}

// GenerateSlots creates back-to-back slots from Start while the slot start is
// before End. Slots are written one by one; a failure leaves the ones
// already written in place.
func (s *Service) GenerateSlots(ctx context.Context, in GenerateInput) ([]models.TimeSlot, error) {
	if in.Start.IsZero() || in.End.IsZero() {
		return nil, invalid("start and end dates are required")
	}
	if !in.End.After(in.Start) {
		return nil, invalid("end must be after start")
	}
	if limit := time.Duration(s.generationDays) * 24 * time.Hour; in.End.Sub(in.Start) > limit {
		return nil, invalid("date range exceeds %d days", s.generationDays)
	}
	if in.IntervalMinutes < 0 || in.MaxCapacity < 0 {
		return nil, invalid("interval and capacity must be positive")
	}

	route, err := s.store.GetRoute(ctx, in.RouteID)
	if err != nil {
		return nil, err
	}

	interval := s.slotInterval
	if in.IntervalMinutes > 0 {
		interval = time.Duration(in.IntervalMinutes) * time.Minute
	}
	capacity := in.MaxCapacity
	if capacity == 0 {
		capacity = route.MaxCapacity
	}

	var slots []models.TimeSlot
	for t := in.Start; t.Before(in.End); t = t.Add(interval) {
		slot := models.TimeSlot{
			StartTime:        t,
			EndTime:          t.Add(interval),
			RouteID:          route.ID,
			MaxCapacity:      capacity,
			IsSpecialEvent:   in.IsSpecialEvent,
			SpecialEventName: in.SpecialEventName,
		}
		slot.RefreshStatus()
		if err := s.store.CreateSlot(ctx, &slot); err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"route_id": route.ID,
				"written":  len(slots),
			}).Error("Slot generation stopped part way")
			return slots, err
		}
		slots = append(slots, slot)
	}

	s.log.WithFields(logrus.Fields{
		"route_id": route.ID,
		"slots":    len(slots),
		"interval": interval.String(),
	}).Info("Time slots generated")
	return slots, nil
}

// SlotFilter narrows ListSlots. A zero Date means any day.
type SlotFilter struct {
	RouteID uint
	Date    time.Time
	Status  models.SlotStatus
}

func (s *Service) ListSlots(ctx context.Context, f SlotFilter) ([]models.TimeSlot, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, invalid("time slot status %q", f.Status)
	}
	q := SlotQuery{RouteID: f.RouteID, Status: f.Status}
	if !f.Date.IsZero() {
		q.From, q.Before = dayBounds(f.Date)
	}
	return s.store.FindSlots(ctx, q)
}

func (s *Service) GetSlot(ctx context.Context, id uint) (*models.TimeSlot, error) {
	return s.store.GetSlot(ctx, id, true)
}

// UpdateSlotStatus closes a slot or reopens it. Filling and full follow from
// the counts and cannot be set by hand.
func (s *Service) UpdateSlotStatus(ctx context.Context, id uint, status models.SlotStatus) (*models.TimeSlot, error) {
	var closed bool
	switch status {
	case models.SlotClosed:
		closed = true
	case models.SlotAvailable:
		closed = false
	case models.SlotFilling, models.SlotFull:
		return nil, invalid("status %q is derived from the vehicle count", status)
	default:
		return nil, invalid("time slot status %q", status)
	}

	slot, err := s.store.SetSlotClosed(ctx, id, closed)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"time_slot_id": id, "status": slot.Status}).Info("Time slot status updated")
	s.announceSlot(slot)
	return slot, nil
}
