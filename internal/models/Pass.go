package models

import "time"

// Pass authorises one vehicle to travel a route during one time slot.
// PassID is the externally visible token; ID stays internal.
type Pass struct {
	ID             uint        `json:"-" gorm:"primaryKey"`
	PassID         string      `json:"pass_id" gorm:"uniqueIndex;not null"`
	UserID         uint        `json:"user_id" gorm:"index;not null"`
	StartLocation  string      `json:"start_location"`
	Destination    string      `json:"destination"`
	VisitingTemple bool        `json:"visiting_temple"`
	TimeSlotID     uint        `json:"time_slot_id" gorm:"index;not null"`
	SlotTime       time.Time   `json:"time_slot"`
	RouteID        uint        `json:"route_id" gorm:"index;not null"`
	Status         PassStatus  `json:"status" gorm:"type:varchar(16);default:'active'"`
	VehicleType    VehicleType `json:"vehicle_type" gorm:"type:varchar(16)"`
	VehicleNumber  string      `json:"vehicle_number"`
	GeneratedAt    time.Time   `json:"pass_generated_at"`
	ValidUntil     time.Time   `json:"valid_until"`
}
