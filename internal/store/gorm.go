package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"temple_pass/internal/models"
	"temple_pass/internal/traffic"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a duplicate key.
const uniqueViolation = "23505"

// GormStore persists the traffic data in PostgreSQL. Slot counts are
// changed under a row lock so concurrent writers to one slot serialise.
type GormStore struct {
	db *gorm.DB
}

var _ traffic.Store = (*GormStore)(nil)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// translate maps driver errors onto the traffic error kinds.
func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, traffic.ErrNotFound)
	}
	var pgErr *pq.Error
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", what, traffic.ErrConflict)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func (g *GormStore) CreateRoute(ctx context.Context, route *models.Route) error {
	return translate(g.db.WithContext(ctx).Create(route).Error, "create route "+route.Name)
}

func (g *GormStore) GetRoute(ctx context.Context, id uint) (*models.Route, error) {
	var route models.Route
	err := g.db.WithContext(ctx).
		Preload("Waypoints", func(db *gorm.DB) *gorm.DB { return db.Order("seq") }).
		Preload("TimeRestrictions").
		First(&route, id).Error
	if err != nil {
		return nil, translate(err, fmt.Sprintf("route %d", id))
	}
	return &route, nil
}

func (g *GormStore) FindRoutes(ctx context.Context, q traffic.RouteQuery) ([]models.Route, error) {
	tx := g.db.WithContext(ctx).
		Preload("Waypoints", func(db *gorm.DB) *gorm.DB { return db.Order("seq") }).
		Preload("TimeRestrictions")
	if q.StartPoint != "" {
		tx = tx.Where("start_point = ?", q.StartPoint)
	}
	if q.EndPoint != "" {
		tx = tx.Where("end_point = ?", q.EndPoint)
	}
	if q.IsTempleRoute != nil {
		tx = tx.Where("is_temple_route = ?", *q.IsTempleRoute)
	}
	if q.ExcludeStatus != "" {
		tx = tx.Where("status <> ?", q.ExcludeStatus)
	}
	var routes []models.Route
	if err := tx.Order("id").Find(&routes).Error; err != nil {
		return nil, translate(err, "find routes")
	}
	return routes, nil
}

func (g *GormStore) UpdateRouteTrafficLevel(ctx context.Context, id uint, level models.TrafficLevel) (*models.Route, error) {
	return g.updateRoute(ctx, id, "traffic_level", level)
}

func (g *GormStore) UpdateRouteStatus(ctx context.Context, id uint, status models.RouteStatus) (*models.Route, error) {
	return g.updateRoute(ctx, id, "status", status)
}

func (g *GormStore) updateRoute(ctx context.Context, id uint, column string, value any) (*models.Route, error) {
	res := g.db.WithContext(ctx).Model(&models.Route{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return nil, translate(res.Error, fmt.Sprintf("route %d", id))
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("route %d: %w", id, traffic.ErrNotFound)
	}
	return g.GetRoute(ctx, id)
}

func (g *GormStore) CreateSlot(ctx context.Context, slot *models.TimeSlot) error {
	return translate(g.db.WithContext(ctx).Create(slot).Error, "create time slot")
}

func (g *GormStore) GetSlot(ctx context.Context, id uint, withPasses bool) (*models.TimeSlot, error) {
	tx := g.db.WithContext(ctx)
	if withPasses {
		tx = tx.Preload("Passes", func(db *gorm.DB) *gorm.DB { return db.Order("id") })
	}
	var slot models.TimeSlot
	if err := tx.First(&slot, id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("time slot %d", id))
	}
	return &slot, nil
}

func (g *GormStore) FindSlots(ctx context.Context, q traffic.SlotQuery) ([]models.TimeSlot, error) {
	var slots []models.TimeSlot
	if err := slotQuery(g.db.WithContext(ctx), q).Find(&slots).Error; err != nil {
		return nil, translate(err, "find time slots")
	}
	return slots, nil
}

// slotQuery applies q to tx. Before is strict so a day window never reaches
// the next midnight, whatever precision the server rounds to.
func slotQuery(tx *gorm.DB, q traffic.SlotQuery) *gorm.DB {
	tx = tx.Model(&models.TimeSlot{})
	if q.RouteID != 0 {
		tx = tx.Where("route_id = ?", q.RouteID)
	}
	if !q.From.IsZero() {
		tx = tx.Where("start_time >= ?", q.From)
	}
	if !q.To.IsZero() {
		tx = tx.Where("start_time <= ?", q.To)
	}
	if !q.Before.IsZero() {
		tx = tx.Where("start_time < ?", q.Before)
	}
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}
	if len(q.ExcludeStatuses) > 0 {
		tx = tx.Where("status NOT IN ?", q.ExcludeStatuses)
	}
	return tx.Order("start_time").Order("id")
}

// withLockedSlot loads the slot FOR UPDATE inside a transaction, applies fn
// and saves it. BeforeSave re-derives the status.
func (g *GormStore) withLockedSlot(ctx context.Context, id uint, fn func(tx *gorm.DB, slot *models.TimeSlot) error) (*models.TimeSlot, error) {
	var slot models.TimeSlot
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&slot, id).Error; err != nil {
			return err
		}
		if err := fn(tx, &slot); err != nil {
			return err
		}
		return tx.Save(&slot).Error
	})
	if err != nil {
		if errors.Is(err, traffic.ErrInvalidArgument) || errors.Is(err, traffic.ErrConflict) {
			return nil, err
		}
		return nil, translate(err, fmt.Sprintf("time slot %d", id))
	}
	return &slot, nil
}

func (g *GormStore) AdjustSlotCount(ctx context.Context, id uint, delta int) (*models.TimeSlot, error) {
	return g.withLockedSlot(ctx, id, func(_ *gorm.DB, slot *models.TimeSlot) error {
		slot.AddVehicles(delta)
		return nil
	})
}

func (g *GormStore) SetSlotClosed(ctx context.Context, id uint, closed bool) (*models.TimeSlot, error) {
	return g.withLockedSlot(ctx, id, func(_ *gorm.DB, slot *models.TimeSlot) error {
		if closed {
			slot.Status = models.SlotClosed
		} else {
			slot.Reopen()
		}
		return nil
	})
}

func (g *GormStore) CreatePass(ctx context.Context, pass *models.Pass) (*models.TimeSlot, error) {
	return g.withLockedSlot(ctx, pass.TimeSlotID, func(tx *gorm.DB, slot *models.TimeSlot) error {
		if slot.Status == models.SlotFull || slot.Status == models.SlotClosed {
			return fmt.Errorf("time slot %d is %s: %w", slot.ID, slot.Status, traffic.ErrInvalidArgument)
		}
		if err := tx.Create(pass).Error; err != nil {
			return translate(err, "create pass")
		}
		slot.AddVehicles(1)
		return nil
	})
}

func (g *GormStore) GetPass(ctx context.Context, passID string) (*models.Pass, error) {
	var pass models.Pass
	if err := g.db.WithContext(ctx).Where("pass_id = ?", passID).First(&pass).Error; err != nil {
		return nil, translate(err, "pass "+passID)
	}
	return &pass, nil
}

func (g *GormStore) ListPassesByUser(ctx context.Context, userID uint) ([]models.Pass, error) {
	var passes []models.Pass
	err := g.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("slot_time DESC").Order("id DESC").Find(&passes).Error
	if err != nil {
		return nil, translate(err, "list passes")
	}
	return passes, nil
}

func (g *GormStore) UpdatePassStatus(ctx context.Context, passID string, status models.PassStatus) (*models.Pass, error) {
	res := g.db.WithContext(ctx).Model(&models.Pass{}).Where("pass_id = ?", passID).Update("status", status)
	if res.Error != nil {
		return nil, translate(res.Error, "pass "+passID)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("pass %s: %w", passID, traffic.ErrNotFound)
	}
	return g.GetPass(ctx, passID)
}

func (g *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	return translate(g.db.WithContext(ctx).Create(user).Error, "create user "+user.Email)
}

func (g *GormStore) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := g.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("user %d", id))
	}
	return &user, nil
}

func (g *GormStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := g.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err, "user "+email)
	}
	return &user, nil
}
