package sqlstore

import (
	"time"

	"github.com/go-blog-auth/internal/domain"
)

// userModel keeps optional identifiers as NULL so the unique indexes only
// apply to values that are present.
type userModel struct {
	ID          string  `gorm:"primaryKey;size:26"`
	Username    string  `gorm:"uniqueIndex;size:100;not null"`
	Email       *string `gorm:"uniqueIndex;size:255"`
	Phone       *string `gorm:"uniqueIndex;size:32"`
	NewEmail    *string `gorm:"size:255"`
	NewPhone    *string `gorm:"size:32"`
	VerifyEmail bool    `gorm:"not null;default:false"`
	VerifyPhone bool    `gorm:"not null;default:false"`
	Password    *string
	OtpID       *string `gorm:"size:26"`
	ProfileID   *string `gorm:"size:26"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (userModel) TableName() string { return "users" }

type otpModel struct {
	ID        string    `gorm:"primaryKey;size:26"`
	UserID    string    `gorm:"uniqueIndex;size:26;not null"`
	Code      string    `gorm:"size:5;not null"`
	ExpiresIn time.Time `gorm:"not null"`
	Method    string    `gorm:"size:16;not null"`
}

func (otpModel) TableName() string { return "otps" }

type profileModel struct {
	ID              string `gorm:"primaryKey;size:26"`
	UserID          string `gorm:"uniqueIndex;size:26;not null"`
	Nickname        string `gorm:"size:100"`
	Bio             string `gorm:"size:200"`
	ProfileImage    string
	ProfileBgImage  string
	Gender          string `gorm:"size:8"`
	Birthday        *time.Time
	LinkedinProfile string
}

func (profileModel) TableName() string { return "profiles" }

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func fromUser(u *domain.User) *userModel {
	return &userModel{
		ID:          u.UserID,
		Username:    u.Username,
		Email:       nullable(u.Email),
		Phone:       nullable(u.Phone),
		NewEmail:    nullable(u.NewEmail),
		NewPhone:    nullable(u.NewPhone),
		VerifyEmail: u.VerifyEmail,
		VerifyPhone: u.VerifyPhone,
		Password:    nullable(u.Password),
		OtpID:       nullable(u.OtpID),
		ProfileID:   nullable(u.ProfileID),
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func (m *userModel) toDomain() *domain.User {
	return &domain.User{
		UserID:      m.ID,
		Username:    m.Username,
		Email:       deref(m.Email),
		Phone:       deref(m.Phone),
		NewEmail:    deref(m.NewEmail),
		NewPhone:    deref(m.NewPhone),
		VerifyEmail: m.VerifyEmail,
		VerifyPhone: m.VerifyPhone,
		Password:    deref(m.Password),
		OtpID:       deref(m.OtpID),
		ProfileID:   deref(m.ProfileID),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func fromOtp(o *domain.Otp) *otpModel {
	return &otpModel{
		ID:        o.OtpID,
		UserID:    o.UserID,
		Code:      o.Code,
		ExpiresIn: o.ExpiresIn.UTC(),
		Method:    string(o.Method),
	}
}

func (m *otpModel) toDomain() *domain.Otp {
	return &domain.Otp{
		OtpID:     m.ID,
		UserID:    m.UserID,
		Code:      m.Code,
		ExpiresIn: m.ExpiresIn,
		Method:    domain.AuthMethod(m.Method),
	}
}

func fromProfile(p *domain.Profile) *profileModel {
	return &profileModel{
		ID:              p.ProfileID,
		UserID:          p.UserID,
		Nickname:        p.Nickname,
		Bio:             p.Bio,
		ProfileImage:    p.ProfileImage,
		ProfileBgImage:  p.ProfileBgImage,
		Gender:          p.Gender,
		Birthday:        p.Birthday,
		LinkedinProfile: p.LinkedinProfile,
	}
}

func (m *profileModel) toDomain() *domain.Profile {
	return &domain.Profile{
		ProfileID:       m.ID,
		UserID:          m.UserID,
		Nickname:        m.Nickname,
		Bio:             m.Bio,
		ProfileImage:    m.ProfileImage,
		ProfileBgImage:  m.ProfileBgImage,
		Gender:          m.Gender,
		Birthday:        m.Birthday,
		LinkedinProfile: m.LinkedinProfile,
	}
}
