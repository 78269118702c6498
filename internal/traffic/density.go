package traffic

import (
	"context"
	"time"

	"temple_pass/internal/models"
)

// densityWindow is the half-width of the window around the queried instant.
const densityWindow = time.Hour

// DensityResult is the congestion of a route around one instant.
type DensityResult struct {
	RouteID         uint                `json:"route_id"`
	Density         float64             `json:"density"` // vehicles per km
	TrafficLevel    models.TrafficLevel `json:"traffic_level"`
	TotalVehicles   int                 `json:"total_vehicles"`
	SlotsConsidered int                 `json:"time_slots"`
}

// LevelForDensity classifies vehicles-per-kilometre density.
func LevelForDensity(density float64) models.TrafficLevel {
	switch {
	case density > 100:
		return models.TrafficSevere
	case density > 50:
		return models.TrafficHigh
	case density > 20:
		return models.TrafficMedium
	default:
		return models.TrafficLow
	}
}

// DensityFor sums the vehicles of every slot of the route that starts within
// an hour either side of at and divides by the route length. The result is
// advisory; the route record is not touched.
func (s *Service) DensityFor(ctx context.Context, routeID uint, at time.Time) (*DensityResult, error) {
	route, err := s.store.GetRoute(ctx, routeID)
	if err != nil {
		return nil, err
	}
	return s.densityForRoute(ctx, route, at)
}

func (s *Service) densityForRoute(ctx context.Context, route *models.Route, at time.Time) (*DensityResult, error) {
	if route.Distance <= 0 {
		return nil, invalid("route %d has non-positive distance %v", route.ID, route.Distance)
	}

	slots, err := s.store.FindSlots(ctx, SlotQuery{
		RouteID: route.ID,
		From:    at.Add(-densityWindow),
		To:      at.Add(densityWindow),
	})
	if err != nil {
		return nil, err
	}

	total := 0
	for _, slot := range slots {
		total += slot.CurrentCount
	}
	density := float64(total) / route.Distance

	return &DensityResult{
		RouteID:         route.ID,
		Density:         density,
		TrafficLevel:    LevelForDensity(density),
		TotalVehicles:   total,
		SlotsConsidered: len(slots),
	}, nil
}
