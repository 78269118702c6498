package traffic

import (
	"context"
	"errors"
	"time"

	"temple_pass/internal/models"
)

type RouteTraffic struct {
	RouteID       uint                `json:"route_id"`
	RouteName     string              `json:"route_name"`
	StartPoint    string              `json:"start_point"`
	EndPoint      string              `json:"end_point"`
	IsTempleRoute bool                `json:"is_temple_route"`
	TrafficLevel  models.TrafficLevel `json:"traffic_level"`
	Density       float64             `json:"density"`
	Status        models.RouteStatus  `json:"status"`
}

type TrafficOverview struct {
	Timestamp time.Time      `json:"timestamp"`
	Routes    []RouteTraffic `json:"routes"`
}

// Overview reports the current density of every route that is not closed.
// TrafficLevel is the density classification, not the stored level.
func (s *Service) Overview(ctx context.Context) (*TrafficOverview, error) {
	routes, err := s.store.FindRoutes(ctx, RouteQuery{ExcludeStatus: models.RouteClosed})
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := &TrafficOverview{Timestamp: now, Routes: make([]RouteTraffic, 0, len(routes))}
	for i := range routes {
		route := &routes[i]
		d, err := s.densityForRoute(ctx, route, now)
		if errors.Is(err, ErrInvalidArgument) {
			s.log.WithError(err).WithField("route_id", route.ID).Warn("Skipping route in overview")
			continue
		}
		if err != nil {
			return nil, err
		}
		out.Routes = append(out.Routes, RouteTraffic{
			RouteID:       route.ID,
			RouteName:     route.Name,
			StartPoint:    route.StartPoint,
			EndPoint:      route.EndPoint,
			IsTempleRoute: route.IsTempleRoute,
			TrafficLevel:  d.TrafficLevel,
			Density:       d.Density,
			Status:        route.Status,
		})
	}
	s.log.WithField("routes", len(out.Routes)).Debug("Traffic overview computed")
	return out, nil
}
