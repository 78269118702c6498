package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"temple_pass/internal/models"
	"temple_pass/internal/traffic"
)

// ListTimeSlots filters by ?routeId=, ?date= and ?status=.
func (ctl *Controller) ListTimeSlots(c *gin.Context) {
	var f traffic.SlotFilter
	if raw := c.Query("routeId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid routeId"})
			return
		}
		f.RouteID = uint(id)
	}
	date, err := parseTime(c.Query("date"), time.Time{})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date: " + err.Error()})
		return
	}
	f.Date = date
	if raw := c.Query("status"); raw != "" {
		status, err := models.ParseSlotStatus(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		f.Status = status
	}

	slots, err := ctl.svc.ListSlots(c.Request.Context(), f)
	if err != nil {
		respondError(c, "ListTimeSlots", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"time_slots": slots})
}

// GetTimeSlot returns a slot with the passes issued against it.
func (ctl *Controller) GetTimeSlot(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	slot, err := ctl.svc.GetSlot(c.Request.Context(), id)
	if err != nil {
		respondError(c, "GetTimeSlot", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"time_slot": slot})
}

type generateSlotsInput struct {
	RouteID          uint      `json:"route_id" binding:"required"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
	IntervalMinutes  int       `json:"interval_minutes"`
	MaxCapacity      int       `json:"max_capacity"`
	IsSpecialEvent   bool      `json:"is_special_event"`
	SpecialEventName string    `json:"special_event_name"`
}

// GenerateTimeSlots bulk-creates slots for a route over a date range.
func (ctl *Controller) GenerateTimeSlots(c *gin.Context) {
	var input generateSlotsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		logrus.WithError(err).Warn("GenerateTimeSlots: invalid input payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	slots, err := ctl.svc.GenerateSlots(c.Request.Context(), traffic.GenerateInput{
		RouteID:          input.RouteID,
		Start:            input.StartDate,
		End:              input.EndDate,
		IntervalMinutes:  input.IntervalMinutes,
		MaxCapacity:      input.MaxCapacity,
		IsSpecialEvent:   input.IsSpecialEvent,
		SpecialEventName: input.SpecialEventName,
	})
	if err != nil {
		respondError(c, "GenerateTimeSlots", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":    fmt.Sprintf("%d time slots generated successfully", len(slots)),
		"time_slots": slots,
	})
}

// UpdateTimeSlotStatus closes or reopens a slot.
func (ctl *Controller) UpdateTimeSlotStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var input struct {
		Status models.SlotStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	slot, err := ctl.svc.UpdateSlotStatus(c.Request.Context(), id, input.Status)
	if err != nil {
		respondError(c, "UpdateTimeSlotStatus", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Time slot status updated", "time_slot": slot})
}
