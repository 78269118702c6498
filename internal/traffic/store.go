package traffic

import (
	"context"
	"time"

	"temple_pass/internal/models"
)

// RouteQuery selects routes. Empty fields do not filter.
type RouteQuery struct {
	StartPoint    string
	EndPoint      string
	IsTempleRoute *bool
	ExcludeStatus models.RouteStatus
}

// SlotQuery selects time slots by route and by start time. From and To are
// inclusive, Before is exclusive; a zero bound does not filter.
type SlotQuery struct {
	RouteID         uint
	From            time.Time
	To              time.Time
	Before          time.Time
	Status          models.SlotStatus
	ExcludeStatuses []models.SlotStatus
}

type RouteStore interface {
	CreateRoute(ctx context.Context, route *models.Route) error
	GetRoute(ctx context.Context, id uint) (*models.Route, error)
	// FindRoutes returns matching routes ordered by ID.
	FindRoutes(ctx context.Context, q RouteQuery) ([]models.Route, error)
	UpdateRouteTrafficLevel(ctx context.Context, id uint, level models.TrafficLevel) (*models.Route, error)
	UpdateRouteStatus(ctx context.Context, id uint, status models.RouteStatus) (*models.Route, error)
}

type SlotStore interface {
	CreateSlot(ctx context.Context, slot *models.TimeSlot) error
	GetSlot(ctx context.Context, id uint, withPasses bool) (*models.TimeSlot, error)
	// FindSlots returns matching slots ordered by start time, then ID.
	FindSlots(ctx context.Context, q SlotQuery) ([]models.TimeSlot, error)
	// AdjustSlotCount adds delta to the slot's count and re-derives its
	// status as one step; concurrent adjustments of a slot never lose updates.
	AdjustSlotCount(ctx context.Context, id uint, delta int) (*models.TimeSlot, error)
	// SetSlotClosed forces a slot closed, or reopens it and re-derives status.
	SetSlotClosed(ctx context.Context, id uint, closed bool) (*models.TimeSlot, error)
}

type PassStore interface {
	// CreatePass stores the pass and counts it against its slot as one step.
	// The slot is re-checked while held; a full or closed slot fails with
	// ErrInvalidArgument and nothing is written.
	CreatePass(ctx context.Context, pass *models.Pass) (*models.TimeSlot, error)
	GetPass(ctx context.Context, passID string) (*models.Pass, error)
	// ListPassesByUser returns the user's passes, latest slot first.
	ListPassesByUser(ctx context.Context, userID uint) ([]models.Pass, error)
	UpdatePassStatus(ctx context.Context, passID string, status models.PassStatus) (*models.Pass, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uint) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Store is everything the traffic core reads and writes.
type Store interface {
	RouteStore
	SlotStore
	PassStore
	UserStore
}
