package model

import "time"

// DiscountConfig maps a (membership type, discount type) pair to a rate in [0,1].
// At most one active row exists per pair.
type DiscountConfig struct {
	ID             int64     `gorm:"primaryKey" json:"id"`
	MembershipType string    `gorm:"size:32;not null;uniqueIndex:idx_discount_pair" json:"membership_type"`
	DiscountType   string    `gorm:"size:32;not null;uniqueIndex:idx_discount_pair" json:"discount_type"`
	Rate           float64   `gorm:"not null" json:"rate"`
	IsActive       bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}
