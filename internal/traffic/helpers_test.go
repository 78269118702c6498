package traffic_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"temple_pass/internal/models"
	"temple_pass/internal/store"
	"temple_pass/internal/traffic"
)

var (
	ctx = context.Background()
	day = time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC)
	now = day.Add(10 * time.Hour)
)

type published struct {
	topic string
	ev    traffic.Event
}

type recorder struct {
	mu     sync.Mutex
	events []published
}

func (r *recorder) Publish(topic string, ev traffic.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, published{topic: topic, ev: ev})
}

func (r *recorder) named(name string) []published {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []published
	for _, p := range r.events {
		if p.ev.Name == name {
			out = append(out, p)
		}
	}
	return out
}

type fixture struct {
	svc *traffic.Service
	st  *store.MemoryStore
	pub *recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := store.NewMemoryStore()
	pub := &recorder{}
	svc := traffic.NewService(st,
		traffic.WithPublisher(pub),
		traffic.WithClock(func() time.Time { return now }),
	)
	return &fixture{svc: svc, st: st, pub: pub}
}

func (f *fixture) route(t *testing.T, name string, distance float64, temple bool) *models.Route {
	t.Helper()
	r, err := f.svc.CreateRoute(ctx, traffic.RouteInput{
		Name:          name,
		StartPoint:    "Katra",
		EndPoint:      "Bhawan",
		Distance:      distance,
		EstimatedTime: 90,
		IsTempleRoute: temple,
	})
	require.NoError(t, err)
	return r
}

// slot stores a 30 minute slot starting at day+offset with the given load.
func (f *fixture) slot(t *testing.T, routeID uint, offset time.Duration, count, capacity int) models.TimeSlot {
	t.Helper()
	s := models.TimeSlot{
		StartTime:    day.Add(offset),
		EndTime:      day.Add(offset + 30*time.Minute),
		RouteID:      routeID,
		MaxCapacity:  capacity,
		CurrentCount: count,
	}
	require.NoError(t, f.st.CreateSlot(ctx, &s))
	return s
}

func (f *fixture) user(t *testing.T, vt models.VehicleType) *models.User {
	t.Helper()
	u := &models.User{Name: "Asha", Email: string(vt) + "@example.com", Password: "x", VehicleType: vt, VehicleNumber: "JK02-1234"}
	require.NoError(t, f.svc.RegisterUser(ctx, u))
	return u
}
