package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"temple_pass/internal/traffic"
)

// Controller exposes the traffic service over HTTP.
type Controller struct {
	svc *traffic.Service
}

func New(svc *traffic.Service) *Controller {
	return &Controller{svc: svc}
}

// respondError maps core failures to status codes; anything unrecognised is
// a server error.
func respondError(c *gin.Context, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, traffic.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, traffic.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, traffic.ErrConflict):
		status = http.StatusConflict
	}

	entry := logrus.WithError(err).WithField("op", op)
	if status == http.StatusInternalServerError {
		entry.Error("Request failed")
		c.JSON(status, gin.H{"error": "Server error"})
		return
	}
	entry.Warn("Request rejected")
	c.JSON(status, gin.H{"error": err.Error()})
}

// parseID reads a positive integer path parameter, answering 400 itself when
// it is malformed.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// parseTime accepts RFC 3339 timestamps and bare YYYY-MM-DD dates, the latter
// in the server's local zone. An empty string yields fallback.
func parseTime(raw string, fallback time.Time) (time.Time, error) {
	if raw == "" {
		return fallback, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, nil
	}
	return time.ParseInLocation(time.DateOnly, raw, time.Local)
}
