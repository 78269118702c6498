package traffic

import (
	"context"
	"time"

	"temple_pass/internal/models"
)

// SlotLoad is one slot's line in a load analysis.
type SlotLoad struct {
	TimeSlotID     uint      `json:"time_slot_id"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	CurrentCount   int       `json:"current_count"`
	MaxCapacity    int       `json:"max_capacity"`
	LoadPercentage float64   `json:"load_percentage"`
	Overloaded     bool      `json:"overloaded"`
	Underloaded    bool      `json:"underloaded"`
}

// LoadAnalysis classifies one day's slots of a route against their mean.
type LoadAnalysis struct {
	RouteID          uint       `json:"route_id"`
	Date             time.Time  `json:"date"`
	TotalSlots       int        `json:"total_slots"`
	TotalVehicles    int        `json:"total_vehicles"`
	AverageLoad      float64    `json:"average_load"`
	OverloadedSlots  int        `json:"overloaded_slots"`
	UnderloadedSlots int        `json:"underloaded_slots"`
	LoadDistribution []SlotLoad `json:"load_distribution"`
}

// Analyze reports how the route's vehicles spread over the slots of date's
// calendar day. The average is the plain mean of counts, independent of
// each slot's capacity; a slot is overloaded above 120% of it and
// underloaded below 80%. Nothing is moved.
func (s *Service) Analyze(ctx context.Context, routeID uint, date time.Time) (*LoadAnalysis, error) {
	if _, err := s.store.GetRoute(ctx, routeID); err != nil {
		return nil, err
	}

	from, next := dayBounds(date)
	slots, err := s.store.FindSlots(ctx, SlotQuery{RouteID: routeID, From: from, Before: next})
	if err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return nil, notFound("no time slots for route %d on %s", routeID, from.Format(time.DateOnly))
	}

	total := 0
	for _, slot := range slots {
		total += slot.CurrentCount
	}
	avg := float64(total) / float64(len(slots))

	analysis := &LoadAnalysis{
		RouteID:          routeID,
		Date:             date,
		TotalSlots:       len(slots),
		TotalVehicles:    total,
		AverageLoad:      avg,
		LoadDistribution: make([]SlotLoad, 0, len(slots)),
	}
	for _, slot := range slots {
		count := float64(slot.CurrentCount)
		line := SlotLoad{
			TimeSlotID:     slot.ID,
			StartTime:      slot.StartTime,
			EndTime:        slot.EndTime,
			CurrentCount:   slot.CurrentCount,
			MaxCapacity:    slot.MaxCapacity,
			LoadPercentage: loadPercentage(slot),
			Overloaded:     count > avg*1.2,
			Underloaded:    count < avg*0.8,
		}
		if line.Overloaded {
			analysis.OverloadedSlots++
		}
		if line.Underloaded {
			analysis.UnderloadedSlots++
		}
		analysis.LoadDistribution = append(analysis.LoadDistribution, line)
	}
	return analysis, nil
}

func loadPercentage(slot models.TimeSlot) float64 {
	if slot.MaxCapacity <= 0 {
		return 100
	}
	return float64(slot.CurrentCount) / float64(slot.MaxCapacity) * 100
}
