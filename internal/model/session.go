package model

import "time"

// Session is one billable rental period on a station.
//
// BasePrice, DiscountRate and FinalPrice are per-minute figures recomputed
// whenever the attachment set changes. TotalAmount is written exactly once,
// at close; a session with a non-nil EndTime is immutable.
type Session struct {
	ID             int64      `gorm:"primaryKey" json:"id"`
	StationID      int64      `gorm:"index;not null" json:"station_id"`
	UserID         int64      `gorm:"index;not null" json:"user_id"`
	GameID         *int64     `json:"game_id"`
	CreatedBy      int64      `gorm:"not null" json:"created_by"`
	MembershipType string     `gorm:"size:32;not null" json:"membership_type"`
	StartTime      time.Time  `gorm:"not null" json:"start_time"`
	EndTime        *time.Time `json:"end_time"`
	BasePrice      float64    `gorm:"not null" json:"base_price"`
	DiscountRate   float64    `gorm:"not null" json:"discount_rate"`
	FinalPrice     float64    `gorm:"not null" json:"final_price"`
	TotalAmount    *float64   `json:"total_amount"`
	CreatedAt      time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null" json:"updated_at"`

	// Associations
	Attachments []SessionController `gorm:"foreignKey:SessionID" json:"attachments"`
}

// Active reports whether the session is still open.
func (s *Session) Active() bool {
	return s.EndTime == nil
}

// SessionController is one row of a session's ordered attachment set.
// RatePerMinute snapshots the controller rate at attach time for auditing;
// price recomputation always reads the live catalog rate.
type SessionController struct {
	SessionID     int64     `gorm:"primaryKey" json:"session_id"`
	ControllerID  int64     `gorm:"primaryKey" json:"controller_id"`
	Position      int       `gorm:"not null" json:"position"`
	RatePerMinute float64   `gorm:"not null" json:"rate_per_minute"`
	AttachedAt    time.Time `gorm:"not null" json:"attached_at"`
}
