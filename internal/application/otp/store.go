// Package otp keeps one OTP per user and refuses to replace a code that is
// still live.
package otp

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/go-blog-auth/internal/domain"
	"github.com/go-blog-auth/internal/pkg/id"
)

const (
	codeMin   = 10000
	codeRange = 90000 // codes are 10000..99999
)

type otpStore interface {
	Get(ctx context.Context, userID string) (*domain.Otp, error)
	Upsert(ctx context.Context, o *domain.Otp, now time.Time) (created bool, err error)
}

type userLinker interface {
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type Store struct {
	otps  otpStore
	users userLinker
	ttl   time.Duration
	now   func() time.Time
	code  func() (string, error)
}

type StoreDeps struct {
	OtpRepo  otpStore
	UserRepo userLinker
	TTL      time.Duration
}

func NewStore(deps StoreDeps) *Store {
	return &Store{
		otps:  deps.OtpRepo,
		users: deps.UserRepo,
		ttl:   deps.TTL,
		now:   time.Now,
		code:  GenerateCode,
	}
}

// GenerateCode returns a uniformly random 5-digit code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeRange))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+codeMin, 10), nil
}

// Issue creates or replaces the user's OTP. It fails with
// domain.ErrNotExpiredOTP while the current code is still live. A first-time
// OTP is linked to the user record.
func (s *Store) Issue(ctx context.Context, userID string, method domain.AuthMethod) (*domain.Otp, error) {
	code, err := s.code()
	if err != nil {
		return nil, fmt.Errorf("generate otp: %w", err)
	}
	now := s.now()
	o := &domain.Otp{
		OtpID:     id.New(),
		UserID:    userID,
		Code:      code,
		ExpiresIn: now.Add(s.ttl),
		Method:    method,
	}
	created, err := s.otps.Upsert(ctx, o, now)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.ErrNotExpiredOTP
		}
		return nil, err
	}
	if created {
		if err := s.users.Update(ctx, userID, map[string]interface{}{domain.FieldOtpID: o.OtpID}); err != nil {
			return nil, fmt.Errorf("link otp: %w", err)
		}
	}
	return o, nil
}

// Verify checks code against the user's OTP. A matching code is not
// consumed: it stays valid until it expires or is replaced.
func (s *Store) Verify(ctx context.Context, userID, code string) (*domain.Otp, error) {
	o, err := s.otps.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrOtpNotFound
		}
		return nil, err
	}
	if o.Expired(s.now()) {
		return nil, domain.ErrExpiredCode
	}
	if subtle.ConstantTimeCompare([]byte(o.Code), []byte(code)) != 1 {
		return nil, domain.ErrIncorrectCode
	}
	return o, nil
}
