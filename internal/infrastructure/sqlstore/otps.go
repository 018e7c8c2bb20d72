package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-blog-auth/internal/domain"
	"gorm.io/gorm"
)

type OtpRepo struct {
	db *gorm.DB
}

func NewOtpRepo(db *gorm.DB) *OtpRepo {
	return &OtpRepo{db: db}
}

func (r *OtpRepo) Get(ctx context.Context, userID string) (*domain.Otp, error) {
	var m otpModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error; err != nil {
		return nil, translate(err, "otp")
	}
	return m.toDomain(), nil
}

// Upsert overwrites the user's OTP row only if it expired at or before now,
// using a conditional UPDATE; when no row matched it inserts one, and the
// unique user_id index turns a live row or a concurrent insert into
// domain.ErrConflict. o.OtpID is set to the id actually stored.
func (r *OtpRepo) Upsert(ctx context.Context, o *domain.Otp, now time.Time) (created bool, err error) {
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&otpModel{}).
			Where("user_id = ? AND expires_in <= ?", o.UserID, now.UTC()).
			Updates(map[string]interface{}{
				"code":       o.Code,
				"expires_in": o.ExpiresIn.UTC(),
				"method":     string(o.Method),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			var m otpModel
			if err := tx.Select("id").Where("user_id = ?", o.UserID).First(&m).Error; err != nil {
				return err
			}
			o.OtpID = m.ID
			return nil
		}

		if err := tx.Create(fromOtp(o)).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("live otp exists: %w", domain.ErrConflict)
			}
			return err
		}
		created = true
		return nil
	})
	return created, err
}
