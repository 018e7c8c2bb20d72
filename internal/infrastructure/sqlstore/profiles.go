package sqlstore

import (
	"context"
	"fmt"

	"github.com/go-blog-auth/internal/domain"
	"gorm.io/gorm"
)

type ProfileRepo struct {
	db *gorm.DB
}

func NewProfileRepo(db *gorm.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

func (r *ProfileRepo) Create(ctx context.Context, p *domain.Profile) error {
	return translate(r.db.WithContext(ctx).Create(fromProfile(p)).Error, "profile")
}

func (r *ProfileRepo) GetByUser(ctx context.Context, userID string) (*domain.Profile, error) {
	var m profileModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error; err != nil {
		return nil, translate(err, "profile")
	}
	return m.toDomain(), nil
}

func (r *ProfileRepo) Update(ctx context.Context, profileID string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return fmt.Errorf("no fields to update")
	}
	res := r.db.WithContext(ctx).Model(&profileModel{}).Where("id = ?", profileID).Updates(updates)
	if res.Error != nil {
		return translate(res.Error, "profile")
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("profile not found: %w", domain.ErrNotFound)
	}
	return nil
}
