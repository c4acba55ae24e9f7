package dto

type RegisterRequest struct {
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8,max=72"`
	Nickname     string `json:"nickname" binding:"required,max=50"`
	ReferralCode string `json:"referral_code" binding:"omitempty,max=100"`
}

type RegisterResponse struct {
	Token    string          `json:"token"`
	User     *UserInfo       `json:"user"`
	Referral *ReferralResult `json:"referral,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string    `json:"token"`
	User  *UserInfo `json:"user"`
}

// SessionResponse is the canonical session: identity plus profile.
type SessionResponse struct {
	UID  string    `json:"uid"`
	User *UserInfo `json:"user"`
}
