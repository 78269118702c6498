package traffic

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"temple_pass/internal/models"
)

// RouteInput is what an administrator supplies to create a route.
type RouteInput struct {
	Name             string
	Description      string
	StartPoint       string
	EndPoint         string
	Waypoints        []models.Waypoint
	Distance         float64
	EstimatedTime    int
	MaxCapacity      int
	IsTempleRoute    bool
	VehicleTypes     []models.VehicleType
	TimeRestrictions []models.TimeRestriction
}

func (in *RouteInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.StartPoint = strings.TrimSpace(in.StartPoint)
	in.EndPoint = strings.TrimSpace(in.EndPoint)
	if in.Name == "" || in.StartPoint == "" || in.EndPoint == "" {
		return invalid("name, start point, and end point are required")
	}
	if in.Distance <= 0 {
		return invalid("distance must be positive, got %v", in.Distance)
	}
	if in.EstimatedTime < 0 {
		return invalid("estimated time must not be negative")
	}
	if in.MaxCapacity < 0 {
		return invalid("max capacity must be positive")
	}
	for _, vt := range in.VehicleTypes {
		if !vt.Valid() {
			return invalid("vehicle type %q", vt)
		}
	}
	for _, tr := range in.TimeRestrictions {
		if err := tr.Validate(); err != nil {
			return invalid("time restriction: %v", err)
		}
	}
	return nil
}

// CreateRoute validates and stores a new route. Names are unique.
func (s *Service) CreateRoute(ctx context.Context, in RouteInput) (*models.Route, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.MaxCapacity == 0 {
		in.MaxCapacity = models.DefaultCapacity
	}

	route := &models.Route{
		Name:             in.Name,
		Description:      in.Description,
		StartPoint:       in.StartPoint,
		EndPoint:         in.EndPoint,
		Distance:         in.Distance,
		EstimatedTime:    in.EstimatedTime,
		MaxCapacity:      in.MaxCapacity,
		IsTempleRoute:    in.IsTempleRoute,
		TrafficLevel:     models.TrafficLow,
		Status:           models.RouteOpen,
		TimeRestrictions: in.TimeRestrictions,
		Waypoints:        in.Waypoints,
	}
	for _, vt := range in.VehicleTypes {
		route.VehicleTypes = append(route.VehicleTypes, string(vt))
	}
	for i := range route.Waypoints {
		if route.Waypoints[i].Seq == 0 {
			route.Waypoints[i].Seq = i + 1
		}
	}
	if err := route.BuildGeometry(); err != nil {
		return nil, invalid("waypoints: %v", err)
	}

	if err := s.store.CreateRoute(ctx, route); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"route_id": route.ID, "name": route.Name}).Info("Route created")
	return route, nil
}

func (s *Service) GetRoute(ctx context.Context, id uint) (*models.Route, error) {
	return s.store.GetRoute(ctx, id)
}

func (s *Service) ListRoutes(ctx context.Context) ([]models.Route, error) {
	return s.store.FindRoutes(ctx, RouteQuery{})
}

// UpdateRouteTraffic overrides the stored traffic level and tells the
// route's observers.
func (s *Service) UpdateRouteTraffic(ctx context.Context, id uint, level models.TrafficLevel) (*models.Route, error) {
	if !level.Valid() {
		return nil, invalid("traffic level %q", level)
	}
	route, err := s.store.UpdateRouteTrafficLevel(ctx, id, level)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"route_id": id, "traffic_level": level}).Info("Route traffic level updated")
	s.publisher.Publish(RouteTopic(id), Event{Name: EventTrafficUpdate, Data: TrafficUpdate{
		RouteID:      id,
		TrafficLevel: level,
		UpdatedAt:    s.now(),
	}})
	return route, nil
}

// UpdateRouteStatus opens, closes, or restricts a route and tells the route's
// observers.
func (s *Service) UpdateRouteStatus(ctx context.Context, id uint, status models.RouteStatus) (*models.Route, error) {
	if !status.Valid() {
		return nil, invalid("route status %q", status)
	}
	route, err := s.store.UpdateRouteStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"route_id": id, "status": status}).Info("Route status updated")
	s.publisher.Publish(RouteTopic(id), Event{Name: EventRouteStatusUpdate, Data: RouteStatusUpdate{
		RouteID:   id,
		Status:    status,
		UpdatedAt: s.now(),
	}})
	return route, nil
}
