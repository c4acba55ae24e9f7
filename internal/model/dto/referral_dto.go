package dto

type ProcessReferralRequest struct {
	ReferralCode string `json:"referral_code" binding:"required,max=100"`
}

// ReferralResult is the outcome of an attribution attempt. Business
// rejections are Success=false with a Message, never an error.
type ReferralResult struct {
	Success          bool    `json:"success"`
	Message          string  `json:"message,omitempty"`
	ReferrerID       int64   `json:"referrer_id,omitempty"`
	ReferrerNickname string  `json:"referrer_nickname,omitempty"`
	Commission       float64 `json:"commission,omitempty"`
	AlreadyProcessed bool    `json:"already_processed,omitempty"`
}

type ValidateReferralResponse struct {
	Success          bool   `json:"success"`
	Valid            bool   `json:"valid"`
	ReferrerNickname string `json:"referrer_nickname,omitempty"`
}

type ReferredUser struct {
	ID         int64   `json:"id"`
	Nickname   string  `json:"nickname"`
	UserLevel  int     `json:"user_level"`
	Commission float64 `json:"commission"`
	JoinedAt   string  `json:"joined_at"`
}

type ReferralStats struct {
	ReferralCode    string         `json:"referral_code"`
	ReferralLink    string         `json:"referral_link"`
	TotalReferrals  int            `json:"total_referrals"`
	TotalCommission float64        `json:"total_commission"`
	ReferredUsers   []ReferredUser `json:"referred_users"`
}

type NormalizeCodesRequest struct {
	DryRun *bool `json:"dry_run,omitempty"`
}

type CodeChange struct {
	UserID int64  `json:"user_id"`
	From   string `json:"from"`
	To     string `json:"to"`
}

type NormalizeReport struct {
	DryRun  bool         `json:"dry_run"`
	Scanned int          `json:"scanned"`
	Changes []CodeChange `json:"changes"`
	Failed  []CodeChange `json:"failed,omitempty"`
}
