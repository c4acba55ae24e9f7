package repository

import (
	"gorm.io/gorm"

	"github.com/cryptoforce/platform/internal/model"
)

type FeedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

func (r *FeedbackRepository) Create(fb *model.Feedback) error {
	return r.db.Create(fb).Error
}

func (r *FeedbackRepository) GetByID(id int64) (*model.Feedback, error) {
	var fb model.Feedback
	err := r.db.Where("id = ?", id).First(&fb).Error
	if err != nil {
		return nil, err
	}
	return &fb, nil
}

func (r *FeedbackRepository) ListByUserID(userID int64) ([]*model.Feedback, error) {
	var items []*model.Feedback
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

// List returns a page of tickets, optionally filtered by status.
func (r *FeedbackRepository) List(status string, page, pageSize int) ([]*model.Feedback, int64, error) {
	var items []*model.Feedback
	var total int64

	query := r.db.Model(&model.Feedback{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("User").
		Order("created_at DESC").
		Offset(offset).Limit(pageSize).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// AddResponse appends resp and applies fields to its ticket in one
// transaction. Resolved tickets are left untouched (ErrStaleState).
func (r *FeedbackRepository) AddResponse(resp *model.FeedbackResponse, fields map[string]interface{}) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Feedback{}).
			Where("id = ? AND status <> ?", resp.FeedbackID, model.FeedbackStatusResolved).
			Updates(fields)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleState
		}
		return tx.Create(resp).Error
	})
}

// Transition applies fields only while the ticket is still in status from.
func (r *FeedbackRepository) Transition(id int64, from string, fields map[string]interface{}) error {
	res := r.db.Model(&model.Feedback{}).
		Where("id = ? AND status = ?", id, from).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

func (r *FeedbackRepository) ListResponses(feedbackID int64) ([]*model.FeedbackResponse, error) {
	var items []*model.FeedbackResponse
	err := r.db.Where("feedback_id = ?", feedbackID).
		Order("created_at ASC, id ASC").
		Find(&items).Error
	return items, err
}

// Delete removes the ticket together with its response history.
func (r *FeedbackRepository) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("feedback_id = ?", id).Delete(&model.FeedbackResponse{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Feedback{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
