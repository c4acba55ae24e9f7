package testutil

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cryptoforce/platform/internal/model"
	"github.com/cryptoforce/platform/internal/pkg/referral"
)

var seq int64

func next() int64 {
	return atomic.AddInt64(&seq, 1)
}

// TestUser creates an Iniciado with a unique e-mail, nickname and code.
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	n := next()
	nickname := fmt.Sprintf("Guerrero%d", n)
	user := &model.User{
		UID:          uuid.NewString(),
		Email:        fmt.Sprintf("test_%d@example.com", n),
		Nickname:     nickname,
		UserLevel:    1,
		ReferralCode: referral.Generate(nickname),
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = email
	}
}

// WithNickname also regenerates the referral code.
func WithNickname(nickname string) func(*model.User) {
	return func(u *model.User) {
		u.Nickname = nickname
		u.ReferralCode = referral.Generate(nickname)
	}
}

func WithLevel(level int) func(*model.User) {
	return func(u *model.User) {
		u.UserLevel = level
	}
}

func WithReferralCode(code string) func(*model.User) {
	return func(u *model.User) {
		u.ReferralCode = code
	}
}

func WithUID(uid string) func(*model.User) {
	return func(u *model.User) {
		u.UID = uid
	}
}

func WithReferredBy(id int64) func(*model.User) {
	return func(u *model.User) {
		u.ReferredBy = &id
	}
}

func WithPasswordHash(hash string) func(*model.User) {
	return func(u *model.User) {
		u.PasswordHash = &hash
	}
}

// TestFeedback creates a pending ticket owned by user.
func TestFeedback(t *testing.T, db *gorm.DB, user *model.User, opts ...func(*model.Feedback)) *model.Feedback {
	t.Helper()

	fb := &model.Feedback{
		UserID:   user.ID,
		Email:    user.Email,
		Subject:  fmt.Sprintf("Ticket %d", next()),
		Message:  "No puedo acceder a mi dashboard",
		Category: model.FeedbackCategoryGeneral,
		Status:   model.FeedbackStatusPending,
	}

	for _, opt := range opts {
		opt(fb)
	}

	if err := db.Create(fb).Error; err != nil {
		t.Fatalf("Failed to create test feedback: %v", err)
	}

	return fb
}

func WithFeedbackStatus(status string) func(*model.Feedback) {
	return func(f *model.Feedback) {
		f.Status = status
		if status == model.FeedbackStatusResolved {
			now := time.Now()
			f.ResolvedAt = &now
		}
	}
}

func WithCategory(category string) func(*model.Feedback) {
	return func(f *model.Feedback) {
		f.Category = category
	}
}

// TestContent creates a pending, unpublished Tribunal module by author.
func TestContent(t *testing.T, db *gorm.DB, authorID int64, opts ...func(*model.TribunalContent)) *model.TribunalContent {
	t.Helper()

	c := &model.TribunalContent{
		Title:       fmt.Sprintf("Módulo %d", next()),
		Description: "Introducción al análisis técnico",
		Content:     model.Blocks{json.RawMessage(`{"type":"text","body":"Soportes y resistencias"}`)},
		Level:       1,
		Category:    model.TribunalCategoryTheoretical,
		Status:      model.TribunalStatusPending,
		CreatedBy:   authorID,
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := db.Create(c).Error; err != nil {
		t.Fatalf("Failed to create test content: %v", err)
	}

	return c
}

// WithPublished marks the content approved and published.
func WithPublished() func(*model.TribunalContent) {
	return func(c *model.TribunalContent) {
		now := time.Now()
		c.Status = model.TribunalStatusApproved
		c.IsPublished = true
		c.PublishedAt = &now
		c.ReviewedAt = &now
	}
}

func WithContentStatus(status string) func(*model.TribunalContent) {
	return func(c *model.TribunalContent) {
		c.Status = status
	}
}

func WithContentLevel(level int) func(*model.TribunalContent) {
	return func(c *model.TribunalContent) {
		c.Level = level
	}
}

func WithContentCategory(category string) func(*model.TribunalContent) {
	return func(c *model.TribunalContent) {
		c.Category = category
	}
}
