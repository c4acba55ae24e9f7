package repository

import (
	"gorm.io/gorm"

	"github.com/cryptoforce/platform/internal/model"
)

type TribunalRepository struct {
	db *gorm.DB
}

func NewTribunalRepository(db *gorm.DB) *TribunalRepository {
	return &TribunalRepository{db: db}
}

func (r *TribunalRepository) Create(c *model.TribunalContent) error {
	return r.db.Create(c).Error
}

func (r *TribunalRepository) GetByID(id int64) (*model.TribunalContent, error) {
	var c model.TribunalContent
	err := r.db.Where("id = ?", id).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *TribunalRepository) GetByIDWithAuthor(id int64) (*model.TribunalContent, error) {
	var c model.TribunalContent
	err := r.db.Preload("Author").Where("id = ?", id).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *TribunalRepository) Update(c *model.TribunalContent) error {
	return r.db.Save(c).Error
}

func (r *TribunalRepository) Delete(id int64) error {
	return r.db.Delete(&model.TribunalContent{}, id).Error
}

// Transition applies fields only while the content is still in status from.
func (r *TribunalRepository) Transition(id int64, from string, fields map[string]interface{}) error {
	res := r.db.Model(&model.TribunalContent{}).
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

// ListPublished returns approved, published content up to maxLevel.
func (r *TribunalRepository) ListPublished(category string, maxLevel, page, pageSize int) ([]*model.TribunalContent, int64, error) {
	query := r.db.Model(&model.TribunalContent{}).
		Where("status = ? AND is_published = ? AND level <= ?", model.TribunalStatusApproved, true, maxLevel)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	return r.page(query, "published_at DESC, id DESC", page, pageSize)
}

func (r *TribunalRepository) ListPending(page, pageSize int) ([]*model.TribunalContent, int64, error) {
	query := r.db.Model(&model.TribunalContent{}).
		Where("status = ?", model.TribunalStatusPending)
	return r.page(query, "created_at ASC, id ASC", page, pageSize)
}

func (r *TribunalRepository) ListByAuthor(authorID int64) ([]*model.TribunalContent, error) {
	var items []*model.TribunalContent
	err := r.db.Where("created_by = ?", authorID).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

func (r *TribunalRepository) page(query *gorm.DB, order string, page, pageSize int) ([]*model.TribunalContent, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []*model.TribunalContent
	offset := (page - 1) * pageSize
	err := query.Preload("Author").
		Order(order).
		Offset(offset).Limit(pageSize).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
