package repository

import (
	"gorm.io/gorm"

	"github.com/cryptoforce/platform/internal/model"
)

type ReferralRepository struct {
	db *gorm.DB
}

func NewReferralRepository(db *gorm.DB) *ReferralRepository {
	return &ReferralRepository{db: db}
}

// Attribute stores the event, links the referred user and bumps the
// referrer's counter in one transaction.
func (r *ReferralRepository) Attribute(event *model.ReferralEvent) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.User{}).
			Where("id = ? AND referred_by IS NULL", event.ReferredUserID).
			Update("referred_by", event.ReferrerID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyReferred
		}

		if err := tx.Create(event).Error; err != nil {
			return err
		}

		return tx.Model(&model.User{}).
			Where("id = ?", event.ReferrerID).
			Update("total_referrals", gorm.Expr("total_referrals + 1")).Error
	})
}

func (r *ReferralRepository) ListByReferrer(referrerID int64) ([]*model.ReferralEvent, error) {
	var events []*model.ReferralEvent
	err := r.db.Where("referrer_id = ?", referrerID).
		Order("created_at DESC").
		Find(&events).Error
	return events, err
}

func (r *ReferralRepository) TotalCommission(referrerID int64) (float64, error) {
	var total float64
	err := r.db.Model(&model.ReferralEvent{}).
		Where("referrer_id = ?", referrerID).
		Select("COALESCE(SUM(commission), 0)").
		Scan(&total).Error
	return total, err
}
