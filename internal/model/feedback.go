package model

import (
	"time"
)

const (
	FeedbackStatusPending    = "pending"
	FeedbackStatusInProgress = "in_progress"
	FeedbackStatusResolved   = "resolved"
)

const (
	FeedbackCategoryGeneral    = "general"
	FeedbackCategoryBug        = "bug"
	FeedbackCategorySuggestion = "suggestion"
	FeedbackCategoryContent    = "content"
	FeedbackCategoryAccount    = "account"
)

var feedbackStatusRank = map[string]int{
	FeedbackStatusPending:    0,
	FeedbackStatusInProgress: 1,
	FeedbackStatusResolved:   2,
}

// ValidFeedbackStatus reports whether s is a known ticket status.
func ValidFeedbackStatus(s string) bool {
	_, ok := feedbackStatusRank[s]
	return ok
}

// FeedbackStatusRank orders statuses; tickets only move forward.
func FeedbackStatusRank(s string) int {
	if r, ok := feedbackStatusRank[s]; ok {
		return r
	}
	return -1
}

func ValidFeedbackCategory(c string) bool {
	switch c {
	case FeedbackCategoryGeneral, FeedbackCategoryBug, FeedbackCategorySuggestion,
		FeedbackCategoryContent, FeedbackCategoryAccount:
		return true
	}
	return false
}

type Feedback struct {
	ID         int64      `gorm:"primaryKey" json:"id"`
	UserID     int64      `gorm:"not null;index" json:"user_id"`
	Email      string     `gorm:"size:255" json:"email"`
	Subject    string     `gorm:"size:200;not null" json:"subject"`
	Message    string     `gorm:"type:text;not null" json:"message"`
	Category   string     `gorm:"size:20;not null" json:"category"`
	Status     string     `gorm:"size:20;not null;index" json:"status"`
	Response   *string    `gorm:"type:text" json:"response,omitempty"`
	ResponseBy *int64     `json:"response_by,omitempty"`
	ResponseAt *time.Time `json:"response_at,omitempty"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Feedback) TableName() string {
	return "feedback"
}

// FeedbackResponse is one maestro reply in a ticket's history.
type FeedbackResponse struct {
	ID             int64     `gorm:"primaryKey" json:"id"`
	FeedbackID     int64     `gorm:"not null;index" json:"feedback_id"`
	ResponderID    int64     `gorm:"not null" json:"responder_id"`
	ResponderEmail string    `gorm:"size:255" json:"responder_email"`
	Message        string    `gorm:"type:text;not null" json:"message"`
	CreatedAt      time.Time `json:"created_at"`
}

func (FeedbackResponse) TableName() string {
	return "feedback_responses"
}
