package traffic

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"temple_pass/internal/models"
)

// PassRequest asks for a pass on a specific slot.
type PassRequest struct {
	UserID         uint
	StartLocation  string
	Destination    string
	VisitingTemple bool
	TimeSlotID     uint
}

// IssuePass binds a new pass to the requested slot and counts it against the
// slot. The slot's route must serve the journey and admit the user's vehicle
// at the slot's start time.
func (s *Service) IssuePass(ctx context.Context, req PassRequest) (*models.Pass, error) {
	req.StartLocation = strings.TrimSpace(req.StartLocation)
	req.Destination = strings.TrimSpace(req.Destination)
	if req.UserID == 0 || req.TimeSlotID == 0 || req.StartLocation == "" || req.Destination == "" {
		return nil, invalid("user, time slot, start location, and destination are required")
	}

	user, err := s.store.GetUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	slot, err := s.store.GetSlot(ctx, req.TimeSlotID, false)
	if err != nil {
		return nil, err
	}
	if slot.Status == models.SlotFull || slot.Status == models.SlotClosed {
		return nil, invalid("time slot %d is %s", slot.ID, slot.Status)
	}

	route, err := s.store.GetRoute(ctx, slot.RouteID)
	if err != nil {
		return nil, err
	}
	switch {
	case route.Status == models.RouteClosed:
		return nil, invalid("route %q is closed", route.Name)
	case route.StartPoint != req.StartLocation || route.EndPoint != req.Destination:
		return nil, invalid("time slot %d does not serve %s to %s", slot.ID, req.StartLocation, req.Destination)
	case route.IsTempleRoute != req.VisitingTemple:
		return nil, invalid("time slot %d is not on a route for this kind of visit", slot.ID)
	case !route.AllowsVehicle(user.VehicleType):
		return nil, invalid("vehicle type %q is not allowed on route %q", user.VehicleType, route.Name)
	case route.RestrictedAt(slot.StartTime):
		return nil, invalid("route %q is restricted at %s", route.Name, slot.StartTime.Format("Mon 15:04"))
	}

	pass := &models.Pass{
		PassID:         uuid.NewString(),
		UserID:         user.ID,
		StartLocation:  req.StartLocation,
		Destination:    req.Destination,
		VisitingTemple: req.VisitingTemple,
		TimeSlotID:     slot.ID,
		SlotTime:       slot.StartTime,
		RouteID:        route.ID,
		Status:         models.PassActive,
		VehicleType:    user.VehicleType,
		VehicleNumber:  user.VehicleNumber,
		GeneratedAt:    s.now(),
		ValidUntil:     slot.EndTime,
	}
	updated, err := s.store.CreatePass(ctx, pass)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"pass_id":      pass.PassID,
		"user_id":      user.ID,
		"time_slot_id": slot.ID,
		"count":        updated.CurrentCount,
	}).Info("Pass issued")
	if updated.Status != slot.Status {
		s.announceSlot(updated)
	}
	return pass, nil
}

func (s *Service) GetPass(ctx context.Context, passID string) (*models.Pass, error) {
	return s.store.GetPass(ctx, passID)
}

func (s *Service) ListUserPasses(ctx context.Context, userID uint) ([]models.Pass, error) {
	return s.store.ListPassesByUser(ctx, userID)
}

// UpdatePassStatus records a lifecycle change. Slot counts are not touched.
func (s *Service) UpdatePassStatus(ctx context.Context, passID string, status models.PassStatus) (*models.Pass, error) {
	if !status.Valid() {
		return nil, invalid("pass status %q", status)
	}
	pass, err := s.store.UpdatePassStatus(ctx, passID, status)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"pass_id": passID, "status": status}).Info("Pass status updated")
	return pass, nil
}
