package model

import "time"

// Controller represents a rentable peripheral attachable to a session.
type Controller struct {
	ID                int64        `gorm:"primaryKey" json:"id"`
	DeviceType        DeviceType   `gorm:"size:32;not null" json:"device_type"`
	Status            DeviceStatus `gorm:"size:32;not null;default:available" json:"status"`
	PricePerMinute    float64      `gorm:"not null" json:"price_per_minute"`
	Identifier        string       `gorm:"uniqueIndex;size:64;not null" json:"identifier"`
	LastMaintenanceAt *time.Time   `json:"last_maintenance_at"`
	CreatedAt         time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time    `gorm:"not null" json:"updated_at"`
}
