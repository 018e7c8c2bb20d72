package http

import (
	"context"
	"time"

	"github.com/go-blog-auth/internal/domain"
)

// UserRepository is the user store the router requires. Both the gorm and
// the DynamoDB stores satisfy it.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	// GetByIdentifier matches username, email or phone.
	GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	PromoteIdentifier(ctx context.Context, userID string, m domain.AuthMethod, value string) error
}

// OtpRepository is the OTP store the router requires.
type OtpRepository interface {
	Get(ctx context.Context, userID string) (*domain.Otp, error)
	Upsert(ctx context.Context, o *domain.Otp, now time.Time) (created bool, err error)
}

// ProfileRepository is the profile store the router requires.
type ProfileRepository interface {
	Create(ctx context.Context, p *domain.Profile) error
	GetByUser(ctx context.Context, userID string) (*domain.Profile, error)
	Update(ctx context.Context, profileID string, updates map[string]interface{}) error
}

// Dispatcher delivers OTP codes out of band.
type Dispatcher interface {
	Send(ctx context.Context, method domain.AuthMethod, recipient, code string) error
}

// GoogleIdentity drives Google sign-in.
type GoogleIdentity interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*domain.GoogleProfile, error)
	ProfileFromIDToken(ctx context.Context, idToken string) (*domain.GoogleProfile, error)
}
