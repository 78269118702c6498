package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"temple_pass/internal/models"
	"temple_pass/internal/traffic"
)

// RouteResponse mirrors models.Route with the geometry rendered as GeoJSON.
type RouteResponse struct {
	ID               uint                     `json:"id"`
	CreatedAt        time.Time                `json:"created_at"`
	UpdatedAt        time.Time                `json:"updated_at"`
	Name             string                   `json:"name"`
	Description      string                   `json:"description"`
	StartPoint       string                   `json:"start_point"`
	EndPoint         string                   `json:"end_point"`
	Waypoints        []models.Waypoint        `json:"waypoints"`
	Distance         float64                  `json:"distance"`
	EstimatedTime    int                      `json:"estimated_time"`
	MaxCapacity      int                      `json:"max_capacity"`
	IsTempleRoute    bool                     `json:"is_temple_route"`
	TrafficLevel     models.TrafficLevel      `json:"traffic_level"`
	Status           models.RouteStatus       `json:"status"`
	VehicleTypes     []string                 `json:"vehicle_types"`
	TimeRestrictions []models.TimeRestriction `json:"time_restrictions"`
	Geometry         string                   `json:"geometry,omitempty"`
}

// toRouteResponse converts a models.Route to a RouteResponse
func toRouteResponse(route models.Route) RouteResponse {
	jsonGeom, err := route.GeoJSON()
	if err != nil {
		logrus.WithError(err).WithField("route_id", route.ID).Warn("Stored route geometry is unreadable")
	}
	vehicleTypes := []string(route.VehicleTypes)
	if vehicleTypes == nil {
		vehicleTypes = []string{}
	}
	return RouteResponse{
		ID:               route.ID,
		CreatedAt:        route.CreatedAt,
		UpdatedAt:        route.UpdatedAt,
		Name:             route.Name,
		Description:      route.Description,
		StartPoint:       route.StartPoint,
		EndPoint:         route.EndPoint,
		Waypoints:        route.Waypoints,
		Distance:         route.Distance,
		EstimatedTime:    route.EstimatedTime,
		MaxCapacity:      route.MaxCapacity,
		IsTempleRoute:    route.IsTempleRoute,
		TrafficLevel:     route.TrafficLevel,
		Status:           route.Status,
		VehicleTypes:     vehicleTypes,
		TimeRestrictions: route.TimeRestrictions,
		Geometry:         jsonGeom,
	}
}

type createRouteInput struct {
	Name          string  `json:"name" binding:"required"`
	Description   string  `json:"description"`
	StartPoint    string  `json:"start_point" binding:"required"`
	EndPoint      string  `json:"end_point" binding:"required"`
	Distance      float64 `json:"distance" binding:"required"`
	EstimatedTime int     `json:"estimated_time"`
	MaxCapacity   int     `json:"max_capacity"`
	IsTempleRoute bool    `json:"is_temple_route"`
	Waypoints     []struct {
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"waypoints"`
	Restrictions struct {
		VehicleTypes     []models.VehicleType     `json:"vehicle_types"`
		TimeRestrictions []models.TimeRestriction `json:"time_restrictions"`
	} `json:"restrictions"`
}

// CreateRoute registers a new route.
func (ctl *Controller) CreateRoute(c *gin.Context) {
	var input createRouteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		logrus.WithError(err).Warn("CreateRoute: invalid input payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	in := traffic.RouteInput{
		Name:             input.Name,
		Description:      input.Description,
		StartPoint:       input.StartPoint,
		EndPoint:         input.EndPoint,
		Distance:         input.Distance,
		EstimatedTime:    input.EstimatedTime,
		MaxCapacity:      input.MaxCapacity,
		IsTempleRoute:    input.IsTempleRoute,
		VehicleTypes:     input.Restrictions.VehicleTypes,
		TimeRestrictions: input.Restrictions.TimeRestrictions,
	}
	for i, w := range input.Waypoints {
		in.Waypoints = append(in.Waypoints, models.Waypoint{Seq: i + 1, Name: w.Name, Latitude: w.Latitude, Longitude: w.Longitude})
	}

	route, err := ctl.svc.CreateRoute(c.Request.Context(), in)
	if err != nil {
		respondError(c, "CreateRoute", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Route created successfully", "route": toRouteResponse(*route)})
}

// ListRoutes returns every route.
func (ctl *Controller) ListRoutes(c *gin.Context) {
	routes, err := ctl.svc.ListRoutes(c.Request.Context())
	if err != nil {
		respondError(c, "ListRoutes", err)
		return
	}
	out := make([]RouteResponse, 0, len(routes))
	for _, r := range routes {
		out = append(out, toRouteResponse(r))
	}
	c.JSON(http.StatusOK, gin.H{"routes": out})
}

// GetRoute returns a single route.
func (ctl *Controller) GetRoute(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	route, err := ctl.svc.GetRoute(c.Request.Context(), id)
	if err != nil {
		respondError(c, "GetRoute", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"route": toRouteResponse(*route)})
}

// UpdateRouteTraffic overrides a route's stored traffic level.
func (ctl *Controller) UpdateRouteTraffic(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var input struct {
		TrafficLevel models.TrafficLevel `json:"traffic_level" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid traffic level"})
		return
	}

	route, err := ctl.svc.UpdateRouteTraffic(c.Request.Context(), id, input.TrafficLevel)
	if err != nil {
		respondError(c, "UpdateRouteTraffic", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Route traffic level updated", "route": toRouteResponse(*route)})
}

// UpdateRouteStatus opens, closes, or restricts a route.
func (ctl *Controller) UpdateRouteStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var input struct {
		Status models.RouteStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	route, err := ctl.svc.UpdateRouteStatus(c.Request.Context(), id, input.Status)
	if err != nil {
		respondError(c, "UpdateRouteStatus", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Route status updated", "route": toRouteResponse(*route)})
}
