package models

import (
	"errors"
	"fmt"
)

// ErrInvalidEnum is returned when a status or level string is not one of the
// values its type accepts.
var ErrInvalidEnum = errors.New("unrecognized value")

// TrafficLevel is the coarse congestion classification of a route.
type TrafficLevel string

const (
	TrafficLow    TrafficLevel = "low"
	TrafficMedium TrafficLevel = "medium"
	TrafficHigh   TrafficLevel = "high"
	TrafficSevere TrafficLevel = "severe"
)

// RouteStatus is the operational state of a route.
type RouteStatus string

const (
	RouteOpen       RouteStatus = "open"
	RouteClosed     RouteStatus = "closed"
	RouteRestricted RouteStatus = "restricted"
)

// SlotStatus is the occupancy state of a time slot.
type SlotStatus string

const (
	SlotAvailable SlotStatus = "available"
	SlotFilling   SlotStatus = "filling"
	SlotFull      SlotStatus = "full"
	SlotClosed    SlotStatus = "closed"
)

// PassStatus is the lifecycle state of an issued pass.
type PassStatus string

const (
	PassActive    PassStatus = "active"
	PassUsed      PassStatus = "used"
	PassExpired   PassStatus = "expired"
	PassCancelled PassStatus = "cancelled"
)

// VehicleType classifies the vehicle a pass is issued for.
type VehicleType string

const (
	VehicleCar   VehicleType = "car"
	VehicleBike  VehicleType = "bike"
	VehicleBus   VehicleType = "bus"
	VehicleTruck VehicleType = "truck"
	VehicleOther VehicleType = "other"
)

var (
	trafficLevels = []TrafficLevel{TrafficLow, TrafficMedium, TrafficHigh, TrafficSevere}
	routeStatuses = []RouteStatus{RouteOpen, RouteClosed, RouteRestricted}
	slotStatuses  = []SlotStatus{SlotAvailable, SlotFilling, SlotFull, SlotClosed}
	passStatuses  = []PassStatus{PassActive, PassUsed, PassExpired, PassCancelled}
	vehicleTypes  = []VehicleType{VehicleCar, VehicleBike, VehicleBus, VehicleTruck, VehicleOther}
)

func parseEnum[T ~string](kind, raw string, allowed []T) (T, error) {
	for _, v := range allowed {
		if string(v) == raw {
			return v, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%s %q: %w", kind, raw, ErrInvalidEnum)
}

func ParseTrafficLevel(s string) (TrafficLevel, error) {
	return parseEnum("traffic level", s, trafficLevels)
}

func ParseRouteStatus(s string) (RouteStatus, error) {
	return parseEnum("route status", s, routeStatuses)
}

func ParseSlotStatus(s string) (SlotStatus, error) {
	return parseEnum("time slot status", s, slotStatuses)
}

func ParsePassStatus(s string) (PassStatus, error) {
	return parseEnum("pass status", s, passStatuses)
}

func ParseVehicleType(s string) (VehicleType, error) {
	return parseEnum("vehicle type", s, vehicleTypes)
}

func (l TrafficLevel) Valid() bool { _, err := ParseTrafficLevel(string(l)); return err == nil }
func (s RouteStatus) Valid() bool  { _, err := ParseRouteStatus(string(s)); return err == nil }
func (s SlotStatus) Valid() bool   { _, err := ParseSlotStatus(string(s)); return err == nil }
func (s PassStatus) Valid() bool   { _, err := ParsePassStatus(string(s)); return err == nil }
func (v VehicleType) Valid() bool  { _, err := ParseVehicleType(string(v)); return err == nil }

// The UnmarshalText methods make JSON binding reject unknown values before
// they reach a handler.

func (l *TrafficLevel) UnmarshalText(b []byte) error {
	v, err := ParseTrafficLevel(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

func (s *RouteStatus) UnmarshalText(b []byte) error {
	v, err := ParseRouteStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (s *SlotStatus) UnmarshalText(b []byte) error {
	v, err := ParseSlotStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (s *PassStatus) UnmarshalText(b []byte) error {
	v, err := ParsePassStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (v *VehicleType) UnmarshalText(b []byte) error {
	p, err := ParseVehicleType(string(b))
	if err != nil {
		return err
	}
	*v = p
	return nil
}
