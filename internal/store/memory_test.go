package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"temple_pass/internal/models"
	"temple_pass/internal/traffic"
)

var start = time.Date(2026, time.March, 14, 6, 0, 0, 0, time.UTC)

func seedSlot(t *testing.T, m *MemoryStore, capacity int) *models.TimeSlot {
	t.Helper()
	ctx := context.Background()
	route := &models.Route{Name: "Old Track", StartPoint: "Katra", EndPoint: "Bhawan", Distance: 12}
	require.NoError(t, m.CreateRoute(ctx, route))
	slot := &models.TimeSlot{RouteID: route.ID, StartTime: start, EndTime: start.Add(30 * time.Minute), MaxCapacity: capacity}
	require.NoError(t, m.CreateSlot(ctx, slot))
	return slot
}

func TestMemoryStoreConcurrentAdjust(t *testing.T) {
	m := NewMemoryStore()
	slot := seedSlot(t, m, 50)

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.AdjustSlotCount(context.Background(), slot.ID, 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := m.GetSlot(context.Background(), slot.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 200, got.CurrentCount, "no increment may be lost")
	assert.Equal(t, models.SlotFull, got.Status)
}

func TestMemoryStoreCreatePassRespectsCapacity(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	slot := seedSlot(t, m, 2)

	for i, id := range []string{"a", "b"} {
		updated, err := m.CreatePass(ctx, &models.Pass{PassID: id, UserID: 1, TimeSlotID: slot.ID})
		require.NoError(t, err)
		assert.Equal(t, i+1, updated.CurrentCount)
	}

	_, err := m.CreatePass(ctx, &models.Pass{PassID: "c", UserID: 1, TimeSlotID: slot.ID})
	assert.ErrorIs(t, err, traffic.ErrInvalidArgument)

	got, err := m.GetSlot(ctx, slot.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CurrentCount)
	assert.Len(t, got.Passes, 2)
}

func TestMemoryStoreClosedSlot(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	slot := seedSlot(t, m, 10)

	closed, err := m.SetSlotClosed(ctx, slot.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.SlotClosed, closed.Status)

	_, err = m.CreatePass(ctx, &models.Pass{PassID: "a", TimeSlotID: slot.ID})
	assert.ErrorIs(t, err, traffic.ErrInvalidArgument)

	open, err := m.SetSlotClosed(ctx, slot.ID, false)
	require.NoError(t, err)
	assert.Equal(t, models.SlotAvailable, open.Status)
}

func TestMemoryStoreFindSlots(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	slot := seedSlot(t, m, 10)
	later := &models.TimeSlot{RouteID: slot.RouteID, StartTime: start.Add(time.Hour), EndTime: start.Add(90 * time.Minute), MaxCapacity: 10, CurrentCount: 10}
	require.NoError(t, m.CreateSlot(ctx, later))

	all, err := m.FindSlots(ctx, traffic.SlotQuery{RouteID: slot.RouteID})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, slot.ID, all[0].ID)

	bounded, err := m.FindSlots(ctx, traffic.SlotQuery{From: start, To: start})
	require.NoError(t, err)
	require.Len(t, bounded, 1)
	assert.Equal(t, slot.ID, bounded[0].ID)

	exclusive, err := m.FindSlots(ctx, traffic.SlotQuery{From: start, Before: later.StartTime})
	require.NoError(t, err)
	require.Len(t, exclusive, 1, "Before excludes a slot starting exactly at the bound")
	assert.Equal(t, slot.ID, exclusive[0].ID)

	open, err := m.FindSlots(ctx, traffic.SlotQuery{ExcludeStatuses: []models.SlotStatus{models.SlotFull}})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, slot.ID, open[0].ID)

	_, err = m.GetSlot(ctx, 99, false)
	assert.ErrorIs(t, err, traffic.ErrNotFound)
}

func TestMemoryStoreConflicts(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	require.NoError(t, m.CreateRoute(ctx, &models.Route{Name: "Old Track"}))
	assert.ErrorIs(t, m.CreateRoute(ctx, &models.Route{Name: "Old Track"}), traffic.ErrConflict)

	require.NoError(t, m.CreateUser(ctx, &models.User{Email: "a@example.com"}))
	assert.ErrorIs(t, m.CreateUser(ctx, &models.User{Email: "a@example.com"}), traffic.ErrConflict)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	slot := seedSlot(t, m, 10)

	got, err := m.GetSlot(ctx, slot.ID, false)
	require.NoError(t, err)
	got.CurrentCount = 99

	again, err := m.GetSlot(ctx, slot.ID, false)
	require.NoError(t, err)
	assert.Zero(t, again.CurrentCount)
}

func TestMemoryStoreRouteCopiesAreDeep(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	route := &models.Route{
		Name:             "Old Track",
		VehicleTypes:     []string{"bus", "car"},
		TimeRestrictions: []models.TimeRestriction{{DayOfWeek: 6, StartTime: "22:00", EndTime: "23:00"}},
		Waypoints: []models.Waypoint{
			{Seq: 1, Name: "Katra", Latitude: 32.99, Longitude: 74.93},
			{Seq: 2, Name: "Bhawan", Latitude: 33.03, Longitude: 74.95},
		},
	}
	require.NoError(t, m.CreateRoute(ctx, route))

	route.Waypoints[0].Name = "changed after create"
	route.VehicleTypes[0] = "truck"

	got, err := m.GetRoute(ctx, route.ID)
	require.NoError(t, err)
	got.Waypoints[1].Name = "changed after get"
	got.TimeRestrictions[0].StartTime = "00:00"

	list, err := m.FindRoutes(ctx, traffic.RouteQuery{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	list[0].VehicleTypes[1] = "bicycle"

	again, err := m.GetRoute(ctx, route.ID)
	require.NoError(t, err)
	assert.Equal(t, "Katra", again.Waypoints[0].Name)
	assert.Equal(t, "Bhawan", again.Waypoints[1].Name)
	assert.Equal(t, []string{"bus", "car"}, []string(again.VehicleTypes))
	assert.Equal(t, "22:00", again.TimeRestrictions[0].StartTime)
}
