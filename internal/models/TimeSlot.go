package models

import (
	"time"

	"gorm.io/gorm"
)

// TimeSlot is a fixed window during which a route accepts a bounded number of
// vehicles. CurrentCount may exceed MaxCapacity; overflow shows up as status
// full rather than being refused.
type TimeSlot struct {
	gorm.Model

	StartTime    time.Time  `json:"start_time" gorm:"index:idx_slot_route_start,priority:2;not null"`
	EndTime      time.Time  `json:"end_time" gorm:"not null"`
	RouteID      uint       `json:"route_id" gorm:"index:idx_slot_route_start,priority:1;not null"`
	Route        *Route     `json:"route,omitempty" gorm:"foreignKey:RouteID"`
	MaxCapacity  int        `json:"max_capacity" gorm:"default:500"`
	CurrentCount int        `json:"current_count" gorm:"default:0"`
	Status       SlotStatus `json:"status" gorm:"type:varchar(16);default:'available'"`

	Passes []Pass `json:"passes,omitempty" gorm:"foreignKey:TimeSlotID"`

	IsSpecialEvent   bool   `json:"is_special_event" gorm:"default:false"`
	SpecialEventName string `json:"special_event_name"`
}

// SlotStatusFor derives occupancy status from a count and a capacity:
// full at or above capacity, filling at or above 80% of it, available
// otherwise. A zero capacity is always full.
func SlotStatusFor(count, capacity int) SlotStatus {
	switch {
	case count >= capacity:
		return SlotFull
	case count*5 >= capacity*4:
		return SlotFilling
	default:
		return SlotAvailable
	}
}

// RefreshStatus re-derives Status from the counts unless the slot has been
// closed by an administrator.
func (s *TimeSlot) RefreshStatus() {
	if s.Status == SlotClosed {
		return
	}
	s.Status = SlotStatusFor(s.CurrentCount, s.MaxCapacity)
}

// AddVehicles adjusts the occupant count and re-derives the status.
func (s *TimeSlot) AddVehicles(n int) {
	s.CurrentCount += n
	if s.CurrentCount < 0 {
		s.CurrentCount = 0
	}
	s.RefreshStatus()
}

// Reopen lifts an administrative close and re-derives the status.
func (s *TimeSlot) Reopen() {
	s.Status = ""
	s.RefreshStatus()
}

// LoadFactor is CurrentCount / MaxCapacity.
func (s *TimeSlot) LoadFactor() float64 {
	if s.MaxCapacity <= 0 {
		return 1
	}
	return float64(s.CurrentCount) / float64(s.MaxCapacity)
}

// BeforeSave keeps the status consistent with the count on every write.
func (s *TimeSlot) BeforeSave(tx *gorm.DB) error {
	s.RefreshStatus()
	return nil
}
