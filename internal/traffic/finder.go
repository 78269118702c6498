package traffic

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"temple_pass/internal/models"
)

const maxAlternatives = 3

// JourneyRequest describes the trip a traveller wants a slot for.
// A nil VisitingTemple matches temple and ordinary routes alike.
type JourneyRequest struct {
	StartLocation  string
	Destination    string
	VisitingTemple *bool
	Date           time.Time
}

// SlotCandidate is a bookable slot together with its route.
type SlotCandidate struct {
	TimeSlot   models.TimeSlot `json:"time_slot"`
	Route      models.Route    `json:"route"`
	LoadFactor float64         `json:"load_factor"`
}

// OptimalSlot is the least loaded candidate and the next few after it.
type OptimalSlot struct {
	Best         SlotCandidate   `json:"best"`
	Alternatives []SlotCandidate `json:"alternatives"`
}

// FindOptimal ranks every bookable slot on the requested day across all
// matching routes by load factor and returns the lowest. Full slots and
// slots an administrator has closed are never offered. Ties keep the order
// in which candidates were gathered: route by route, earliest start first.
// Each request is answered greedily, without regard to other pending ones.
func (s *Service) FindOptimal(ctx context.Context, req JourneyRequest) (*OptimalSlot, error) {
	req.StartLocation = strings.TrimSpace(req.StartLocation)
	req.Destination = strings.TrimSpace(req.Destination)
	if req.StartLocation == "" || req.Destination == "" || req.Date.IsZero() {
		return nil, invalid("start location, destination, and preferred date are required")
	}

	routes, err := s.store.FindRoutes(ctx, RouteQuery{
		StartPoint:    req.StartLocation,
		EndPoint:      req.Destination,
		IsTempleRoute: req.VisitingTemple,
	})
	if err != nil {
		return nil, err
	}
	if len(routes) == 0 {
		return nil, notFound("no suitable routes from %q to %q", req.StartLocation, req.Destination)
	}

	from, next := dayBounds(req.Date)
	var candidates []SlotCandidate
	for _, route := range routes {
		slots, err := s.store.FindSlots(ctx, SlotQuery{
			RouteID:         route.ID,
			From:            from,
			Before:          next,
			ExcludeStatuses: []models.SlotStatus{models.SlotFull, models.SlotClosed},
		})
		if err != nil {
			return nil, err
		}
		for _, slot := range slots {
			candidates = append(candidates, SlotCandidate{
				TimeSlot:   slot,
				Route:      route,
				LoadFactor: slot.LoadFactor(),
			})
		}
	}
	if len(candidates) == 0 {
		return nil, notFound("no available time slots on %s", from.Format(time.DateOnly))
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].LoadFactor < candidates[j].LoadFactor
	})

	s.log.WithFields(logrus.Fields{
		"start":      req.StartLocation,
		"dest":       req.Destination,
		"candidates": len(candidates),
		"slot_id":    candidates[0].TimeSlot.ID,
	}).Debug("Optimal slot selected")

	end := min(len(candidates), 1+maxAlternatives)
	return &OptimalSlot{
		Best:         candidates[0],
		Alternatives: append([]SlotCandidate{}, candidates[1:end]...),
	}, nil
}
