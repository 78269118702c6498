package models

import (
	"fmt"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// DefaultCapacity is the per-slot vehicle limit used when none is given.
const DefaultCapacity = 500

// Route represents a fixed path vehicles travel toward a destination.
// Temple routes lead to the capacity-restricted destination and are matched
// separately from ordinary routes.
type Route struct {
	gorm.Model

	Name          string  `json:"name" gorm:"uniqueIndex;not null"`
	Description   string  `json:"description"`
	StartPoint    string  `json:"start_point" gorm:"index:idx_route_endpoints;not null"`
	EndPoint      string  `json:"end_point" gorm:"index:idx_route_endpoints;not null"`
	Distance      float64 `json:"distance"`       // kilometres
	EstimatedTime int     `json:"estimated_time"` // minutes
	MaxCapacity   int     `json:"max_capacity" gorm:"default:500"`
	IsTempleRoute bool    `json:"is_temple_route" gorm:"default:false"`

	TrafficLevel TrafficLevel `json:"traffic_level" gorm:"type:varchar(16);default:'low'"`
	Status       RouteStatus  `json:"status" gorm:"type:varchar(16);default:'open'"`

	// Restrictions. An empty VehicleTypes list admits every vehicle type.
	VehicleTypes     pq.StringArray    `json:"vehicle_types" gorm:"type:text[]"`
	TimeRestrictions []TimeRestriction `json:"time_restrictions,omitempty" gorm:"foreignKey:RouteID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`

	// Waypoints in travel order; Geometry is the WKB LINESTRING built from them.
	Waypoints []Waypoint `json:"waypoints,omitempty" gorm:"foreignKey:RouteID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Geometry  []byte     `json:"-" gorm:"type:bytea"`
}

// Waypoint is a named point along a route.
type Waypoint struct {
	ID        uint    `json:"-" gorm:"primaryKey"`
	RouteID   uint    `json:"-" gorm:"index"`
	Seq       int     `json:"seq"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// TimeRestriction closes a route to new passes on one weekday between two
// wall-clock times given as HH:MM.
type TimeRestriction struct {
	ID        uint   `json:"-" gorm:"primaryKey"`
	RouteID   uint   `json:"-" gorm:"index"`
	DayOfWeek int    `json:"day_of_week"` // 0 = Sunday
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// Covers reports whether t falls inside the restriction window.
func (tr TimeRestriction) Covers(t time.Time) bool {
	if int(t.Weekday()) != tr.DayOfWeek {
		return false
	}
	from, err := clockMinutes(tr.StartTime)
	if err != nil {
		return false
	}
	to, err := clockMinutes(tr.EndTime)
	if err != nil {
		return false
	}
	m := t.Hour()*60 + t.Minute()
	return m >= from && m < to
}

// Validate checks the weekday and the HH:MM bounds.
func (tr TimeRestriction) Validate() error {
	if tr.DayOfWeek < 0 || tr.DayOfWeek > 6 {
		return fmt.Errorf("day_of_week %d: %w", tr.DayOfWeek, ErrInvalidEnum)
	}
	from, err := clockMinutes(tr.StartTime)
	if err != nil {
		return err
	}
	to, err := clockMinutes(tr.EndTime)
	if err != nil {
		return err
	}
	if to <= from {
		return fmt.Errorf("restriction %s-%s ends before it starts: %w", tr.StartTime, tr.EndTime, ErrInvalidEnum)
	}
	return nil
}

func clockMinutes(hhmm string) (int, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// AllowsVehicle reports whether the route admits vehicles of type vt.
func (r *Route) AllowsVehicle(vt VehicleType) bool {
	if len(r.VehicleTypes) == 0 {
		return true
	}
	for _, allowed := range r.VehicleTypes {
		if allowed == string(vt) {
			return true
		}
	}
	return false
}

// RestrictedAt reports whether any time restriction covers t.
func (r *Route) RestrictedAt(t time.Time) bool {
	for _, tr := range r.TimeRestrictions {
		if tr.Covers(t) {
			return true
		}
	}
	return false
}
