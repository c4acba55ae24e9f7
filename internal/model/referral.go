package model

import (
	"time"
)

// ReferralEvent records one attributed signup. A user is referred at most once.
type ReferralEvent struct {
	ID             int64     `gorm:"primaryKey" json:"id"`
	ReferrerID     int64     `gorm:"not null;index" json:"referrer_id"`
	ReferredUserID int64     `gorm:"not null;uniqueIndex" json:"referred_user_id"`
	Code           string    `gorm:"size:100;not null" json:"code"`
	Commission     float64   `gorm:"type:decimal(12,2);not null;default:0" json:"commission"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`

	ReferredUser *User `gorm:"foreignKey:ReferredUserID" json:"referred_user,omitempty"`
}

func (ReferralEvent) TableName() string {
	return "referral_events"
}
