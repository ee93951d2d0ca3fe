package model

import "time"

// DeviceStatus is the availability state shared by stations and controllers.
type DeviceStatus string

const (
	StatusAvailable   DeviceStatus = "available"
	StatusOccupied    DeviceStatus = "occupied"
	StatusInUse       DeviceStatus = "in_use"
	StatusMaintenance DeviceStatus = "maintenance"
)

// DeviceType identifies a console platform.
type DeviceType string

const (
	DevicePS5    DeviceType = "ps5"
	DeviceXbox   DeviceType = "xbox"
	DeviceSwitch DeviceType = "switch"
	DevicePC     DeviceType = "pc"
	DeviceSimRig DeviceType = "sim_rig"
)

// Station represents a rentable gaming station (console plus display).
type Station struct {
	ID               int64        `gorm:"primaryKey" json:"id"`
	DeviceType       DeviceType   `gorm:"size:32;not null" json:"device_type"`
	Status           DeviceStatus `gorm:"size:32;not null;default:available" json:"status"`
	Location         string       `gorm:"size:128;not null" json:"location"`
	PricePerMinute   float64      `gorm:"not null" json:"price_per_minute"`
	CurrentSessionID *int64       `json:"current_session_id"`
	LastSessionID    *int64       `json:"last_session_id"`
	CreatedAt        time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time    `gorm:"not null" json:"updated_at"`
}
