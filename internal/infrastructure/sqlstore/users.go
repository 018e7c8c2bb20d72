package sqlstore

import (
	"context"
	"fmt"

	"github.com/go-blog-auth/internal/domain"
	"gorm.io/gorm"
)

// UserRepo stores users in the users table. The unique indexes on username,
// email and phone are the authoritative duplicate guard.
type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	m := fromUser(u)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translate(err, "user")
	}
	u.CreatedAt, u.UpdatedAt = m.CreatedAt, m.UpdatedAt
	return nil
}

func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	return r.first(ctx, "id = ?", userID)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *UserRepo) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return r.first(ctx, "phone = ?", phone)
}

// GetByIdentifier matches identifier against username, email or phone in one
// query. When it matches columns of different users the oldest id wins.
func (r *UserRepo) GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	return r.first(ctx, "username = ? OR email = ? OR phone = ?", identifier, identifier, identifier)
}

func (r *UserRepo) first(ctx context.Context, query string, args ...interface{}) (*domain.User, error) {
	var m userModel
	if err := r.db.WithContext(ctx).Where(query, args...).Order("id").First(&m).Error; err != nil {
		return nil, translate(err, "user")
	}
	return m.toDomain(), nil
}

// Update applies a partial update keyed by column name. A nil value sets NULL.
func (r *UserRepo) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return fmt.Errorf("no fields to update")
	}
	res := r.db.WithContext(ctx).Model(&userModel{}).Where("id = ?", userID).Updates(updates)
	if res.Error != nil {
		return translate(res.Error, "user")
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	return nil
}

// PromoteIdentifier makes value the user's own identifier for m in a single
// UPDATE; a unique violation surfaces as domain.ErrConflict.
func (r *UserRepo) PromoteIdentifier(ctx context.Context, userID string, m domain.AuthMethod, value string) error {
	updates := domain.PromoteFields(m, value)
	if updates == nil {
		return fmt.Errorf("cannot promote method %q: %w", m, domain.ErrBadRequest)
	}
	return r.Update(ctx, userID, updates)
}
