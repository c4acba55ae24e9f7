package dto

// UserInfo is the profile as returned to the client.
type UserInfo struct {
	ID             int64  `json:"id"`
	UID            string `json:"uid"`
	Email          string `json:"email"`
	Nickname       string `json:"nickname"`
	UserLevel      int    `json:"user_level"`
	LevelName      string `json:"level_name"`
	Dashboard      string `json:"dashboard"`
	ReferralCode   string `json:"referral_code"`
	TotalReferrals int    `json:"total_referrals"`
	AvatarURL      string `json:"avatar_url"`
	Bio            string `json:"bio"`
	IsFounder      bool   `json:"is_founder"`
	CanModerate    bool   `json:"can_moderate"`
	CreatedAt      string `json:"created_at,omitempty"`
}

type UpdateProfileRequest struct {
	Nickname *string `json:"nickname,omitempty" binding:"omitempty,max=50"`
	Bio      *string `json:"bio,omitempty" binding:"omitempty,max=500"`
}

type SetLevelRequest struct {
	Level *int `json:"level" binding:"required,min=1,max=6"`
}

type LevelItem struct {
	Level     int    `json:"level"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Dashboard string `json:"dashboard"`
}
