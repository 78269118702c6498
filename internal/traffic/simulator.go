package traffic

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"temple_pass/internal/models"
)

// SlotDelta records what a simulation did to one slot.
type SlotDelta struct {
	TimeSlotID    uint              `json:"time_slot_id"`
	StartTime     time.Time         `json:"start_time"`
	EndTime       time.Time         `json:"end_time"`
	PreviousCount int               `json:"previous_count"`
	AddedVehicles int               `json:"added_vehicles"`
	NewCount      int               `json:"new_count"`
	Status        models.SlotStatus `json:"status"`
}

// SimulationResult is also the payload announced to the route's observers.
type SimulationResult struct {
	RouteID           uint                `json:"route_id"`
	SimulatedVehicles int                 `json:"simulated_vehicles"`
	TrafficLevel      models.TrafficLevel `json:"traffic_level"`
	TimeSlots         []SlotDelta         `json:"time_slots"`
}

// Distribute splits total into n shares that differ by at most one, the
// larger shares going to the first slots. The shares always sum to total.
func Distribute(total, n int) []int {
	if n <= 0 {
		return nil
	}
	shares := make([]int, n)
	base, rem := total/n, total%n
	for i := range shares {
		shares[i] = base
		if i < rem {
			shares[i]++
		}
	}
	return shares
}

// LevelForCapacity classifies a mean slot count as a fraction of the route's
// capacity. Unlike LevelForDensity it ignores distance; the two scales are
// separate and may disagree.
func LevelForCapacity(avg float64, capacity int) models.TrafficLevel {
	c := float64(capacity)
	switch {
	case avg > c*0.8:
		return models.TrafficSevere
	case avg > c*0.6:
		return models.TrafficHigh
	case avg > c*0.4:
		return models.TrafficMedium
	default:
		return models.TrafficLow
	}
}

// Simulate adds vehicleCount vehicles to the route's slots starting within
// [start, end], spread evenly in start order, then stores the route's new
// traffic level and announces the run on the route topic. A window that
// holds no slots, including one that ends before it starts, is NotFound.
// Slots are written one at a time; a failure part way leaves earlier slots
// updated.
func (s *Service) Simulate(ctx context.Context, routeID uint, start, end time.Time, vehicleCount int) (*SimulationResult, error) {
	if vehicleCount <= 0 {
		return nil, invalid("vehicle count must be a positive integer, got %d", vehicleCount)
	}
	if start.IsZero() || end.IsZero() {
		return nil, invalid("start and end time are required")
	}

	route, err := s.store.GetRoute(ctx, routeID)
	if err != nil {
		return nil, err
	}
	slots, err := s.store.FindSlots(ctx, SlotQuery{RouteID: routeID, From: start, To: end})
	if err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return nil, notFound("no time slots for route %d in the specified period", routeID)
	}

	result := &SimulationResult{
		RouteID:           routeID,
		SimulatedVehicles: vehicleCount,
		TimeSlots:         make([]SlotDelta, 0, len(slots)),
	}
	sum := 0
	for i, share := range Distribute(vehicleCount, len(slots)) {
		slot := &slots[i]
		updated := slot
		if share > 0 {
			if updated, err = s.store.AdjustSlotCount(ctx, slot.ID, share); err != nil {
				return nil, err
			}
			if updated.Status != slot.Status {
				s.announceSlot(updated)
			}
		}
		result.TimeSlots = append(result.TimeSlots, SlotDelta{
			TimeSlotID:    updated.ID,
			StartTime:     updated.StartTime,
			EndTime:       updated.EndTime,
			PreviousCount: updated.CurrentCount - share,
			AddedVehicles: share,
			NewCount:      updated.CurrentCount,
			Status:        updated.Status,
		})
		sum += updated.CurrentCount
	}

	avg := float64(sum) / float64(len(result.TimeSlots))
	result.TrafficLevel = LevelForCapacity(avg, route.MaxCapacity)
	if _, err := s.store.UpdateRouteTrafficLevel(ctx, routeID, result.TrafficLevel); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"route_id":      routeID,
		"vehicles":      vehicleCount,
		"slots":         len(result.TimeSlots),
		"average_load":  avg,
		"traffic_level": result.TrafficLevel,
	}).Info("Traffic simulation applied")

	s.publisher.Publish(RouteTopic(routeID), Event{Name: EventTrafficSimulation, Data: result})
	return result, nil
}

func (s *Service) announceSlot(slot *models.TimeSlot) {
	s.publisher.Publish(TopicAll, Event{Name: EventTimeSlotUpdate, Data: TimeSlotUpdate{
		TimeSlotID: slot.ID,
		RouteID:    slot.RouteID,
		Status:     slot.Status,
		UpdatedAt:  s.now(),
	}})
}
