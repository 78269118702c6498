package traffic_test

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"temple_pass/internal/models"
	"temple_pass/internal/traffic"
)

func passRequest(userID, slotID uint) traffic.PassRequest {
	return traffic.PassRequest{
		UserID:         userID,
		StartLocation:  "Katra",
		Destination:    "Bhawan",
		VisitingTemple: true,
		TimeSlotID:     slotID,
	}
}

func TestIssuePass(t *testing.T) {
	f := newFixture(t)
	route := f.route(t, "Old Track", 12, true)
	slot := f.slot(t, route.ID, 6*time.Hour, 0, 10)
	user := f.user(t, models.VehicleCar)

	pass, err := f.svc.IssuePass(ctx, passRequest(user.ID, slot.ID))
	require.NoError(t, err)
	_, err = uuid.Parse(pass.PassID)
	assert.NoError(t, err)
	assert.Equal(t, models.PassActive, pass.Status)
	assert.Equal(t, route.ID, pass.RouteID)
	assert.Equal(t, slot.StartTime, pass.SlotTime)
	assert.Equal(t, slot.EndTime, pass.ValidUntil)
	assert.Equal(t, now, pass.GeneratedAt)
	assert.Equal(t, models.VehicleCar, pass.VehicleType)

	got, err := f.svc.GetSlot(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CurrentCount)
	require.Len(t, got.Passes, 1)
	assert.Equal(t, pass.PassID, got.Passes[0].PassID)

	passes, err := f.svc.ListUserPasses(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, passes, 1)

	used, err := f.svc.UpdatePassStatus(ctx, pass.PassID, models.PassUsed)
	require.NoError(t, err)
	assert.Equal(t, models.PassUsed, used.Status)

	_, err = f.svc.UpdatePassStatus(ctx, pass.PassID, "lost")
	assert.ErrorIs(t, err, traffic.ErrInvalidArgument)
	_, err = f.svc.GetPass(ctx, "missing")
	assert.ErrorIs(t, err, traffic.ErrNotFound)
}

func TestIssuePassAnnouncesFilling(t *testing.T) {
	f := newFixture(t)
	route := f.route(t, "Old Track", 12, true)
	slot := f.slot(t, route.ID, 6*time.Hour, 3, 5)
	user := f.user(t, models.VehicleCar)

	_, err := f.svc.IssuePass(ctx, passRequest(user.ID, slot.ID))
	require.NoError(t, err)
	_, err = f.svc.IssuePass(ctx, passRequest(user.ID, slot.ID))
	require.NoError(t, err)

	_, err = f.svc.IssuePass(ctx, passRequest(user.ID, slot.ID))
	assert.ErrorIs(t, err, traffic.ErrInvalidArgument, "slot is full")

	events := f.pub.named(traffic.EventTimeSlotUpdate)
	require.Len(t, events, 2)
	assert.Equal(t, models.SlotFilling, events[0].ev.Data.(traffic.TimeSlotUpdate).Status)
	assert.Equal(t, models.SlotFull, events[1].ev.Data.(traffic.TimeSlotUpdate).Status)
}

func TestIssuePassRejections(t *testing.T) {
	f := newFixture(t)
	route := f.route(t, "Old Track", 12, true)
	slot := f.slot(t, route.ID, 6*time.Hour, 0, 10)
	car := f.user(t, models.VehicleCar)
	truck := f.user(t, models.VehicleTruck)

	restricted, err := f.svc.CreateRoute(ctx, traffic.RouteInput{
		Name:          "Battery Car Lane",
		StartPoint:    "Katra",
		EndPoint:      "Bhawan",
		Distance:      9,
		IsTempleRoute: true,
		VehicleTypes:  []models.VehicleType{models.VehicleCar, models.VehicleBike},
		TimeRestrictions: []models.TimeRestriction{
			{DayOfWeek: int(day.Weekday()), StartTime: "05:00", EndTime: "07:00"},
		},
	})
	require.NoError(t, err)
	blocked := f.slot(t, restricted.ID, 6*time.Hour, 0, 10)
	open := f.slot(t, restricted.ID, 8*time.Hour, 0, 10)

	tests := []struct {
		name string
		req  func() traffic.PassRequest
		want error
	}{
		{"missing fields", func() traffic.PassRequest { return traffic.PassRequest{UserID: car.ID} }, traffic.ErrInvalidArgument},
		{"unknown user", func() traffic.PassRequest { return passRequest(99, slot.ID) }, traffic.ErrNotFound},
		{"unknown slot", func() traffic.PassRequest { return passRequest(car.ID, 99) }, traffic.ErrNotFound},
		{"wrong destination", func() traffic.PassRequest {
			r := passRequest(car.ID, slot.ID)
			r.Destination = "Sanjichhat"
			return r
		}, traffic.ErrInvalidArgument},
		{"not a temple visit", func() traffic.PassRequest {
			r := passRequest(car.ID, slot.ID)
			r.VisitingTemple = false
			return r
		}, traffic.ErrInvalidArgument},
		{"vehicle not allowed", func() traffic.PassRequest { return passRequest(truck.ID, open.ID) }, traffic.ErrInvalidArgument},
		{"restricted hours", func() traffic.PassRequest { return passRequest(car.ID, blocked.ID) }, traffic.ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.IssuePass(ctx, tt.req())
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err = f.svc.IssuePass(ctx, passRequest(car.ID, open.ID))
	assert.NoError(t, err)

	_, err = f.svc.UpdateRouteStatus(ctx, route.ID, models.RouteClosed)
	require.NoError(t, err)
	_, err = f.svc.IssuePass(ctx, passRequest(car.ID, slot.ID))
	assert.ErrorIs(t, err, traffic.ErrInvalidArgument, "route closed")
}

func TestIssuePassNeverOverbooks(t *testing.T) {
	f := newFixture(t)
	route := f.route(t, "Old Track", 12, true)
	slot := f.slot(t, route.ID, 6*time.Hour, 0, 30)
	user := f.user(t, models.VehicleBike)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		issued  int
		refused int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.IssuePass(ctx, passRequest(user.ID, slot.ID))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				refused++
				return
			}
			issued++
		}()
	}
	wg.Wait()

	assert.Equal(t, 30, issued)
	assert.Equal(t, 20, refused)
	got, err := f.svc.GetSlot(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, got.CurrentCount)
	assert.Equal(t, models.SlotFull, got.Status)
}
