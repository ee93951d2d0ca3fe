package model

import "time"

// Game represents a title offered for per-minute play.
type Game struct {
	ID             int64        `gorm:"primaryKey" json:"id"`
	Name           string       `gorm:"size:256;not null" json:"name"`
	PricePerMinute float64      `gorm:"not null" json:"price_per_minute"`
	DeviceTypes    []DeviceType `gorm:"serializer:json" json:"device_types"`
	IsMultiplayer  bool         `gorm:"not null" json:"is_multiplayer"`
	IsActive       bool         `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"not null" json:"updated_at"`
}

// SupportsDevice reports whether the game can run on the given device type.
func (g *Game) SupportsDevice(dt DeviceType) bool {
	for _, d := range g.DeviceTypes {
		if d == dt {
			return true
		}
	}
	return false
}
