// Package traffic allocates vehicles to capacity-bounded time slots and
// reports congestion per route.
package traffic

import (
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultSlotInterval   = 30 * time.Minute
	defaultGenerationDays = 31
)

// Service runs every traffic operation against a Store and announces
// mutations through a Publisher.
type Service struct {
	store     Store
	publisher Publisher
	now       func() time.Time
	log       *logrus.Entry

	slotInterval   time.Duration
	generationDays int
}

type Option func(*Service)

// WithPublisher sets where events are announced. The default drops them.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithSlotInterval sets the default width of generated slots.
func WithSlotInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.slotInterval = d
		}
	}
}

// WithGenerationLimit bounds the date span a single slot generation may cover.
func WithGenerationLimit(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.generationDays = days
		}
	}
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:          store,
		publisher:      NopPublisher{},
		now:            time.Now,
		log:            logrus.WithField("component", "traffic"),
		slotInterval:   defaultSlotInterval,
		generationDays: defaultGenerationDays,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// dayBounds returns the midnight that starts t's calendar day and the one
// that ends it, in t's location. Use the end as an exclusive bound.
func dayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
