package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const (
	TribunalStatusPending  = "pending"
	TribunalStatusApproved = "approved"
	TribunalStatusRejected = "rejected"
)

const (
	TribunalCategoryTheoretical = "theoretical"
	TribunalCategoryPractical   = "practical"
)

func ValidTribunalCategory(c string) bool {
	return c == TribunalCategoryTheoretical || c == TribunalCategoryPractical
}

// Blocks holds the module body as opaque JSON blocks.
type Blocks []json.RawMessage

func (b Blocks) Value() (driver.Value, error) {
	if b == nil {
		return "[]", nil
	}
	data, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (b *Blocks) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*b = Blocks{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported blocks type %T", value)
	}
	return json.Unmarshal(data, b)
}

type TribunalContent struct {
	ID              int64      `gorm:"primaryKey" json:"id"`
	Title           string     `gorm:"size:200;not null" json:"title"`
	Description     string     `gorm:"type:text" json:"description"`
	Content         Blocks     `gorm:"type:text" json:"content"`
	Level           int        `gorm:"not null;index" json:"level"`
	Category        string     `gorm:"size:20;not null;index" json:"category"`
	Status          string     `gorm:"size:20;not null;index" json:"status"`
	IsPublished     bool       `gorm:"not null;default:false;index" json:"is_published"`
	CreatedBy       int64      `gorm:"not null;index" json:"created_by"`
	ReviewedBy      *int64     `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	RejectionReason string     `gorm:"type:text" json:"rejection_reason,omitempty"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	CreatedAt       time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	Author *User `gorm:"foreignKey:CreatedBy" json:"author,omitempty"`
}

func (TribunalContent) TableName() string {
	return "tribunal_content"
}
