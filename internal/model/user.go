package model

import (
	"time"
)

// User is the profile row keyed by the identity provider's subject (UID).
type User struct {
	ID             int64     `gorm:"primaryKey" json:"id"`
	UID            string    `gorm:"column:uid;size:64;uniqueIndex;not null" json:"uid"`
	Email          string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash   *string   `gorm:"size:255" json:"-"`
	Nickname       string    `gorm:"size:50" json:"nickname"`
	UserLevel      int       `gorm:"not null;index" json:"user_level"`
	ReferralCode   string    `gorm:"size:100;uniqueIndex;not null" json:"referral_code"`
	ReferredBy     *int64    `gorm:"index" json:"referred_by,omitempty"`
	TotalReferrals int       `gorm:"not null;default:0" json:"total_referrals"`
	AvatarURL      string    `gorm:"size:500" json:"avatar_url"`
	Bio            string    `gorm:"type:text" json:"bio"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
