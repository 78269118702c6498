package models

import "gorm.io/gorm"

const (
	RoleCommuter = "commuter"
	RoleAdmin    = "admin"
)

type User struct {
	gorm.Model
	Name          string      `json:"name"`
	Email         string      `json:"email" gorm:"unique"`
	Password      string      `json:"-"`
	Phone         string      `json:"phone"`
	Role          string      `json:"role"` // "commuter", "admin"
	VehicleType   VehicleType `json:"vehicle_type" gorm:"type:varchar(16)"`
	VehicleNumber string      `json:"vehicle_number"`
}
