package repository

import (
	"gorm.io/gorm"

	"github.com/cryptoforce/platform/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

func (r *UserRepository) GetByID(id int64) (*model.User, error) {
	var user model.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByUID(uid string) (*model.User, error) {
	var user model.User
	err := r.db.Where("uid = ?", uid).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail expects an already normalized (trimmed, lower-cased) address.
func (r *UserRepository) GetByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByReferralCode(code string) (*model.User, error) {
	var user model.User
	err := r.db.Where("referral_code = ?", code).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Update(user *model.User) error {
	return r.db.Save(user).Error
}

func (r *UserRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.User{}).Where("id = ?", id).Updates(fields).Error
}

func (r *UserRepository) ExistsByEmail(email string) (bool, error) {
	var count int64
	err := r.db.Model(&model.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// ReferralCodeTaken reports whether code belongs to a user other than exceptID.
func (r *UserRepository) ReferralCodeTaken(code string, exceptID int64) (bool, error) {
	var count int64
	err := r.db.Model(&model.User{}).
		Where("referral_code = ? AND id <> ?", code, exceptID).
		Count(&count).Error
	return count > 0, err
}

// ListReferralCodes loads id, nickname and referral_code of every user.
func (r *UserRepository) ListReferralCodes() ([]*model.User, error) {
	var users []*model.User
	err := r.db.Select("id", "nickname", "referral_code").Order("id ASC").Find(&users).Error
	return users, err
}

func (r *UserRepository) ListReferredBy(referrerID int64) ([]*model.User, error) {
	var users []*model.User
	err := r.db.Where("referred_by = ?", referrerID).Order("created_at DESC").Find(&users).Error
	return users, err
}

// ReconcileReferralCounts recomputes total_referrals from referred_by and
// returns how many users were corrected.
// Counters are read before the counts and each correction only applies if
// the counter is still the one observed, so concurrent attributions survive.
func (r *UserRepository) ReconcileReferralCounts() (int64, error) {
	var users []*model.User
	if err := r.db.Select("id", "total_referrals").Find(&users).Error; err != nil {
		return 0, err
	}

	var counts []struct {
		ReferredBy int64
		Total      int
	}
	err := r.db.Model(&model.User{}).
		Select("referred_by, COUNT(*) AS total").
		Where("referred_by IS NOT NULL").
		Group("referred_by").
		Find(&counts).Error
	if err != nil {
		return 0, err
	}

	actual := make(map[int64]int, len(counts))
	for _, c := range counts {
		actual[c.ReferredBy] = c.Total
	}

	var fixed int64
	for _, u := range users {
		want := actual[u.ID]
		if u.TotalReferrals == want {
			continue
		}
		res := r.db.Model(&model.User{}).
			Where("id = ? AND total_referrals = ?", u.ID, u.TotalReferrals).
			Update("total_referrals", want)
		if res.Error != nil {
			return fixed, res.Error
		}
		fixed += res.RowsAffected
	}
	return fixed, nil
}
