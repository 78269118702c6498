package store

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"temple_pass/internal/models"
	"temple_pass/internal/traffic"
)

// slotEntry owns one slot. Its mutex is the single writer for the slot's
// count and status.
type slotEntry struct {
	mu   sync.Mutex
	slot models.TimeSlot
}

// MemoryStore keeps everything in process. It is used for tests and for
// running without a database.
type MemoryStore struct {
	mu     sync.RWMutex
	routes map[uint]*models.Route
	slots  map[uint]*slotEntry
	passes map[string]*models.Pass
	users  map[uint]*models.User

	nextRoute, nextSlot, nextPass, nextUser uint
}

var _ traffic.Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		routes: make(map[uint]*models.Route),
		slots:  make(map[uint]*slotEntry),
		passes: make(map[string]*models.Pass),
		users:  make(map[uint]*models.User),
	}
}

func (m *MemoryStore) CreateRoute(_ context.Context, route *models.Route) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.routes {
		if r.Name == route.Name {
			return fmt.Errorf("route %q: %w", route.Name, traffic.ErrConflict)
		}
	}
	m.nextRoute++
	now := time.Now()
	route.ID, route.CreatedAt, route.UpdatedAt = m.nextRoute, now, now
	if route.TrafficLevel == "" {
		route.TrafficLevel = models.TrafficLow
	}
	if route.Status == "" {
		route.Status = models.RouteOpen
	}
	if route.MaxCapacity == 0 {
		route.MaxCapacity = models.DefaultCapacity
	}
	for i := range route.Waypoints {
		route.Waypoints[i].RouteID = route.ID
	}
	for i := range route.TimeRestrictions {
		route.TimeRestrictions[i].RouteID = route.ID
	}
	m.routes[route.ID] = cloneRoute(route)
	return nil
}

// cloneRoute copies r including its slices so callers never share backing
// arrays with the stored record.
func cloneRoute(r *models.Route) *models.Route {
	cp := *r
	cp.VehicleTypes = slices.Clone(r.VehicleTypes)
	cp.TimeRestrictions = slices.Clone(r.TimeRestrictions)
	cp.Waypoints = slices.Clone(r.Waypoints)
	cp.Geometry = slices.Clone(r.Geometry)
	return &cp
}

func (m *MemoryStore) GetRoute(_ context.Context, id uint) (*models.Route, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.routes[id]
	if !ok {
		return nil, fmt.Errorf("route %d: %w", id, traffic.ErrNotFound)
	}
	return cloneRoute(r), nil
}

func (m *MemoryStore) FindRoutes(_ context.Context, q traffic.RouteQuery) ([]models.Route, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Route{}
	for _, r := range m.routes {
		if q.StartPoint != "" && r.StartPoint != q.StartPoint {
			continue
		}
		if q.EndPoint != "" && r.EndPoint != q.EndPoint {
			continue
		}
		if q.IsTempleRoute != nil && r.IsTempleRoute != *q.IsTempleRoute {
			continue
		}
		if q.ExcludeStatus != "" && r.Status == q.ExcludeStatus {
			continue
		}
		out = append(out, *cloneRoute(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) UpdateRouteTrafficLevel(_ context.Context, id uint, level models.TrafficLevel) (*models.Route, error) {
	return m.updateRoute(id, func(r *models.Route) { r.TrafficLevel = level })
}

func (m *MemoryStore) UpdateRouteStatus(_ context.Context, id uint, status models.RouteStatus) (*models.Route, error) {
	return m.updateRoute(id, func(r *models.Route) { r.Status = status })
}

func (m *MemoryStore) updateRoute(id uint, fn func(*models.Route)) (*models.Route, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.routes[id]
	if !ok {
		return nil, fmt.Errorf("route %d: %w", id, traffic.ErrNotFound)
	}
	fn(r)
	r.UpdatedAt = time.Now()
	return cloneRoute(r), nil
}

func (m *MemoryStore) CreateSlot(_ context.Context, slot *models.TimeSlot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.routes[slot.RouteID]; !ok {
		return fmt.Errorf("route %d: %w", slot.RouteID, traffic.ErrNotFound)
	}
	m.nextSlot++
	now := time.Now()
	slot.ID, slot.CreatedAt, slot.UpdatedAt = m.nextSlot, now, now
	slot.RefreshStatus()
	stored := *slot
	stored.Route, stored.Passes = nil, nil
	m.slots[slot.ID] = &slotEntry{slot: stored}
	return nil
}

func (m *MemoryStore) entry(id uint) (*slotEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.slots[id]
	if !ok {
		return nil, fmt.Errorf("time slot %d: %w", id, traffic.ErrNotFound)
	}
	return e, nil
}

func (m *MemoryStore) GetSlot(_ context.Context, id uint, withPasses bool) (*models.TimeSlot, error) {
	e, err := m.entry(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	slot := e.slot
	e.mu.Unlock()
	slot.Passes = nil
	if withPasses {
		m.mu.RLock()
		for _, p := range m.passes {
			if p.TimeSlotID == id {
				slot.Passes = append(slot.Passes, *p)
			}
		}
		m.mu.RUnlock()
		sort.Slice(slot.Passes, func(i, j int) bool { return slot.Passes[i].ID < slot.Passes[j].ID })
	}
	return &slot, nil
}

func (m *MemoryStore) FindSlots(_ context.Context, q traffic.SlotQuery) ([]models.TimeSlot, error) {
	m.mu.RLock()
	entries := make([]*slotEntry, 0, len(m.slots))
	for _, e := range m.slots {
		entries = append(entries, e)
	}
	m.mu.RUnlock()

	out := []models.TimeSlot{}
	for _, e := range entries {
		e.mu.Lock()
		slot := e.slot
		e.mu.Unlock()
		if matchSlot(slot, q) {
			out = append(out, slot)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func matchSlot(slot models.TimeSlot, q traffic.SlotQuery) bool {
	if q.RouteID != 0 && slot.RouteID != q.RouteID {
		return false
	}
	if !q.From.IsZero() && slot.StartTime.Before(q.From) {
		return false
	}
	if !q.To.IsZero() && slot.StartTime.After(q.To) {
		return false
	}
	if !q.Before.IsZero() && !slot.StartTime.Before(q.Before) {
		return false
	}
	if q.Status != "" && slot.Status != q.Status {
		return false
	}
	for _, st := range q.ExcludeStatuses {
		if slot.Status == st {
			return false
		}
	}
	return true
}

func (m *MemoryStore) AdjustSlotCount(_ context.Context, id uint, delta int) (*models.TimeSlot, error) {
	e, err := m.entry(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.slot.AddVehicles(delta)
	e.slot.UpdatedAt = time.Now()
	slot := e.slot
	return &slot, nil
}

func (m *MemoryStore) SetSlotClosed(_ context.Context, id uint, closed bool) (*models.TimeSlot, error) {
	e, err := m.entry(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if closed {
		e.slot.Status = models.SlotClosed
	} else {
		e.slot.Reopen()
	}
	e.slot.UpdatedAt = time.Now()
	slot := e.slot
	return &slot, nil
}

func (m *MemoryStore) CreatePass(_ context.Context, pass *models.Pass) (*models.TimeSlot, error) {
	e, err := m.entry(pass.TimeSlotID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.slot.Status == models.SlotFull || e.slot.Status == models.SlotClosed {
		return nil, fmt.Errorf("time slot %d is %s: %w", e.slot.ID, e.slot.Status, traffic.ErrInvalidArgument)
	}

	m.mu.Lock()
	if _, dup := m.passes[pass.PassID]; dup {
		m.mu.Unlock()
		return nil, fmt.Errorf("pass %s: %w", pass.PassID, traffic.ErrConflict)
	}
	m.nextPass++
	pass.ID = m.nextPass
	cp := *pass
	m.passes[pass.PassID] = &cp
	m.mu.Unlock()

	e.slot.AddVehicles(1)
	e.slot.UpdatedAt = time.Now()
	slot := e.slot
	return &slot, nil
}

func (m *MemoryStore) GetPass(_ context.Context, passID string) (*models.Pass, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.passes[passID]
	if !ok {
		return nil, fmt.Errorf("pass %s: %w", passID, traffic.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (m *MemoryStore) ListPassesByUser(_ context.Context, userID uint) ([]models.Pass, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Pass{}
	for _, p := range m.passes {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SlotTime.Equal(out[j].SlotTime) {
			return out[i].SlotTime.After(out[j].SlotTime)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) UpdatePassStatus(_ context.Context, passID string, status models.PassStatus) (*models.Pass, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.passes[passID]
	if !ok {
		return nil, fmt.Errorf("pass %s: %w", passID, traffic.ErrNotFound)
	}
	p.Status = status
	cp := *p
	return &cp, nil
}

func (m *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return fmt.Errorf("email %s: %w", user.Email, traffic.ErrConflict)
		}
	}
	m.nextUser++
	now := time.Now()
	user.ID, user.CreatedAt, user.UpdatedAt = m.nextUser, now, now
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *MemoryStore) GetUser(_ context.Context, id uint) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, traffic.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (m *MemoryStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, traffic.ErrNotFound)
}
