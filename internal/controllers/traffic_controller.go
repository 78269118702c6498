package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"temple_pass/internal/traffic"
)

// GetRouteTraffic returns the density around ?time= (default now).
func (ctl *Controller) GetRouteTraffic(c *gin.Context) {
	routeID, ok := parseID(c, "routeId")
	if !ok {
		return
	}
	at, err := parseTime(c.Query("time"), time.Now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid time: " + err.Error()})
		return
	}

	result, err := ctl.svc.DensityFor(c.Request.Context(), routeID, at)
	if err != nil {
		respondError(c, "GetRouteTraffic", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type optimalSlotInput struct {
	StartLocation  string `json:"start_location" binding:"required"`
	Destination    string `json:"destination" binding:"required"`
	VisitingTemple *bool  `json:"visiting_temple"`
	PreferredDate  string `json:"preferred_date" binding:"required"`
}

// GetOptimalSlot picks the least loaded slot for a journey.
func (ctl *Controller) GetOptimalSlot(c *gin.Context) {
	var input optimalSlotInput
	if err := c.ShouldBindJSON(&input); err != nil {
		logrus.WithError(err).Warn("GetOptimalSlot: invalid input payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Start location, destination, and preferred date are required"})
		return
	}
	date, err := parseTime(input.PreferredDate, time.Time{})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid preferred_date: " + err.Error()})
		return
	}

	result, err := ctl.svc.FindOptimal(c.Request.Context(), traffic.JourneyRequest{
		StartLocation:  input.StartLocation,
		Destination:    input.Destination,
		VisitingTemple: input.VisitingTemple,
		Date:           date,
	})
	if err != nil {
		respondError(c, "GetOptimalSlot", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// BalanceLoad analyses one day (?date=, default today) of a route's slots.
func (ctl *Controller) BalanceLoad(c *gin.Context) {
	routeID, ok := parseID(c, "routeId")
	if !ok {
		return
	}
	date, err := parseTime(c.Query("date"), time.Now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date: " + err.Error()})
		return
	}

	result, err := ctl.svc.Analyze(c.Request.Context(), routeID, date)
	if err != nil {
		respondError(c, "BalanceLoad", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetTrafficOverview lists current density for all routes that are not closed.
func (ctl *Controller) GetTrafficOverview(c *gin.Context) {
	result, err := ctl.svc.Overview(c.Request.Context())
	if err != nil {
		respondError(c, "GetTrafficOverview", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type simulateInput struct {
	RouteID      uint      `json:"route_id" binding:"required"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	VehicleCount int       `json:"vehicle_count"`
}

// SimulateTraffic spreads a batch of vehicles over a route's slots.
func (ctl *Controller) SimulateTraffic(c *gin.Context) {
	var input simulateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		logrus.WithError(err).Warn("SimulateTraffic: invalid input payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Route ID, start time, end time, and vehicle count are required"})
		return
	}

	result, err := ctl.svc.Simulate(c.Request.Context(), input.RouteID, input.StartTime, input.EndTime, input.VehicleCount)
	if err != nil {
		respondError(c, "SimulateTraffic", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":            "Traffic simulation completed",
		"route_id":           result.RouteID,
		"simulated_vehicles": result.SimulatedVehicles,
		"traffic_level":      result.TrafficLevel,
		"time_slots":         result.TimeSlots,
	})
}
