package model

import "time"

// PushSubscription holds the information for a browser push subscription.
// Members subscribe to stations to be notified when one frees up.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	Stations []*Station `gorm:"many2many:subscription_station_mapping;"`
}
