package traffic

import (
	"strconv"
	"time"

	"temple_pass/internal/models"
)

// Event names as seen by realtime subscribers.
const (
	EventTrafficUpdate     = "trafficUpdate"
	EventRouteStatusUpdate = "routeStatusUpdate"
	EventTrafficSimulation = "trafficSimulation"
	EventTimeSlotUpdate    = "timeSlotUpdate"
)

// TopicAll addresses every subscriber.
const TopicAll = ""

// RouteTopic addresses subscribers of one route.
func RouteTopic(routeID uint) string {
	return "route:" + strconv.FormatUint(uint64(routeID), 10)
}

// Event is one announcement to observers.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data"`
}

// Publisher delivers events to whoever listens on a topic. Publish must not
// block the caller on slow subscribers.
type Publisher interface {
	Publish(topic string, ev Event)
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(string, Event) {}

type TrafficUpdate struct {
	RouteID      uint                `json:"route_id"`
	TrafficLevel models.TrafficLevel `json:"traffic_level"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

type RouteStatusUpdate struct {
	RouteID   uint               `json:"route_id"`
	Status    models.RouteStatus `json:"status"`
	UpdatedAt time.Time          `json:"updated_at"`
}

type TimeSlotUpdate struct {
	TimeSlotID uint              `json:"time_slot_id"`
	RouteID    uint              `json:"route_id"`
	Status     models.SlotStatus `json:"status"`
	UpdatedAt  time.Time         `json:"updated_at"`
}
