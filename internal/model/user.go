package model

import "time"

// Membership tiers recognized by the discount configuration.
const (
	MembershipStandard = "standard"
	MembershipPremium  = "premium"
	MembershipVIP      = "vip"
)

// User represents a lounge member as read from the membership directory.
type User struct {
	ID             int64     `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"size:128;not null" json:"name"`
	MembershipType string    `gorm:"size:32;not null;default:standard" json:"membership_type"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`

	// Associations
	Sessions []Session `gorm:"foreignKey:UserID" json:"-"`
}
