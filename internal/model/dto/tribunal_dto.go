package dto

import (
	"encoding/json"
	"time"
)

type SubmitContentRequest struct {
	Title       string            `json:"title" binding:"required,max=200"`
	Description string            `json:"description" binding:"max=2000"`
	Content     []json.RawMessage `json:"content"`
	Level       int               `json:"level" binding:"required,min=1,max=6"`
	Category    string            `json:"category" binding:"required,oneof=theoretical practical"`
}

type UpdateContentRequest struct {
	Title       *string           `json:"title,omitempty" binding:"omitempty,max=200"`
	Description *string           `json:"description,omitempty" binding:"omitempty,max=2000"`
	Content     []json.RawMessage `json:"content,omitempty"`
	Level       *int              `json:"level,omitempty" binding:"omitempty,min=1,max=6"`
	Category    *string           `json:"category,omitempty" binding:"omitempty,oneof=theoretical practical"`
}

type RejectContentRequest struct {
	Reason string `json:"reason" binding:"required,max=2000"`
}

type ContentListQuery struct {
	Category string `form:"category" binding:"omitempty,oneof=theoretical practical"`
	Page     int    `form:"page,default=1" binding:"min=1"`
	PageSize int    `form:"page_size,default=20" binding:"min=1,max=100"`
}

// TribunalAuthor is the public face of a content author.
type TribunalAuthor struct {
	ID        int64  `json:"id"`
	Nickname  string `json:"nickname"`
	AvatarURL string `json:"avatar_url"`
	Level     int    `json:"user_level"`
}

// TribunalContentItem is content as shown to readers.
type TribunalContentItem struct {
	ID              int64             `json:"id"`
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	Content         []json.RawMessage `json:"content"`
	Level           int               `json:"level"`
	Category        string            `json:"category"`
	Status          string            `json:"status"`
	IsPublished     bool              `json:"is_published"`
	CreatedBy       int64             `json:"created_by"`
	RejectionReason string            `json:"rejection_reason,omitempty"`
	PublishedAt     *time.Time        `json:"published_at,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	Author          *TribunalAuthor   `json:"author,omitempty"`
}
