package traffic_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"temple_pass/internal/models"
	"temple_pass/internal/traffic"
)

func TestLevelForDensity(t *testing.T) {
	tests := []struct {
		density float64
		want    models.TrafficLevel
	}{
		{0, models.TrafficLow},
		{20, models.TrafficLow},
		{20.5, models.TrafficMedium},
		{50, models.TrafficMedium},
		{51, models.TrafficHigh},
		{100, models.TrafficHigh},
		{100.1, models.TrafficSevere},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, traffic.LevelForDensity(tt.density), "density %v", tt.density)
	}
}

func TestDensityFor(t *testing.T) {
	f := newFixture(t)
	route := f.route(t, "Old Track", 10, true)
	other := f.route(t, "New Track", 10, false)

	// Window is 09:00..11:00 inclusive of both ends.
	f.slot(t, route.ID, 9*time.Hour, 100, 500)
	f.slot(t, route.ID, 10*time.Hour, 100, 500)
	f.slot(t, route.ID, 11*time.Hour, 50, 500)
	f.slot(t, route.ID, 11*time.Hour+time.Minute, 400, 500)
	f.slot(t, route.ID, 8*time.Hour+59*time.Minute, 400, 500)
	f.slot(t, other.ID, 10*time.Hour, 400, 500)

	got, err := f.svc.DensityFor(ctx, route.ID, now)
	require.NoError(t, err)
	assert.Equal(t, route.ID, got.RouteID)
	assert.Equal(t, 250, got.TotalVehicles)
	assert.Equal(t, 3, got.SlotsConsidered)
	assert.InDelta(t, 25.0, got.Density, 1e-9)
	assert.Equal(t, models.TrafficMedium, got.TrafficLevel)

	again, err := f.svc.DensityFor(ctx, route.ID, now)
	require.NoError(t, err)
	assert.Equal(t, got, again)

	stored, err := f.svc.GetRoute(ctx, route.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TrafficLow, stored.TrafficLevel, "density is advisory and must not be persisted")
}

func TestDensityForEmptyWindow(t *testing.T) {
	f := newFixture(t)
	route := f.route(t, "Old Track", 12, false)

	got, err := f.svc.DensityFor(ctx, route.ID, now)
	require.NoError(t, err)
	assert.Zero(t, got.Density)
	assert.Zero(t, got.SlotsConsidered)
	assert.Equal(t, models.TrafficLow, got.TrafficLevel)
}

func TestDensityForUnknownRoute(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.DensityFor(ctx, 404, now)
	assert.ErrorIs(t, err, traffic.ErrNotFound)
}

func TestDensityForRejectsZeroDistance(t *testing.T) {
	f := newFixture(t)
	route := &models.Route{Name: "Broken", StartPoint: "A", EndPoint: "B"}
	require.NoError(t, f.st.CreateRoute(ctx, route))

	_, err := f.svc.DensityFor(ctx, route.ID, now)
	assert.ErrorIs(t, err, traffic.ErrInvalidArgument)
}

func TestOverview(t *testing.T) {
	f := newFixture(t)
	open := f.route(t, "Old Track", 10, true)
	closed := f.route(t, "New Track", 5, false)
	restricted := f.route(t, "Helipad Path", 2, true)
	_, err := f.svc.UpdateRouteStatus(ctx, closed.ID, models.RouteClosed)
	require.NoError(t, err)
	_, err = f.svc.UpdateRouteStatus(ctx, restricted.ID, models.RouteRestricted)
	require.NoError(t, err)

	f.slot(t, open.ID, 10*time.Hour, 600, 1000)
	f.slot(t, restricted.ID, 10*time.Hour, 30, 500)

	got, err := f.svc.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, now, got.Timestamp)
	require.Len(t, got.Routes, 2)

	assert.Equal(t, open.ID, got.Routes[0].RouteID)
	assert.InDelta(t, 60.0, got.Routes[0].Density, 1e-9)
	assert.Equal(t, models.TrafficHigh, got.Routes[0].TrafficLevel)
	assert.Equal(t, restricted.ID, got.Routes[1].RouteID)
	assert.Equal(t, models.RouteRestricted, got.Routes[1].Status)
	assert.Equal(t, models.TrafficLow, got.Routes[1].TrafficLevel)
}
