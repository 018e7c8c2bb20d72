package jwtinfra

import (
	"errors"
	"testing"
	"time"

	"github.com/go-blog-auth/internal/config"
	"github.com/go-blog-auth/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		OTPTokenSecret:    "otp-secret",
		AccessTokenSecret: "access-secret",
		EmailTokenSecret:  "email-secret",
		PhoneTokenSecret:  "phone-secret",
		OTPTokenTTL:       2 * time.Minute,
		AccessTokenTTL:    365 * 24 * time.Hour,
		ChangeTokenTTL:    2 * time.Minute,
	}
}

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	p, err := NewProvider(testConfig())
	require.NoError(t, err)
	return p
}

func TestNewProvider_MissingSecret(t *testing.T) {
	cfg := testConfig()
	cfg.PhoneTokenSecret = ""
	_, err := NewProvider(cfg)
	assert.Error(t, err)
}

func TestNewProvider_SharedSecretRejected(t *testing.T) {
	cfg := testConfig()
	cfg.EmailTokenSecret = cfg.OTPTokenSecret
	_, err := NewProvider(cfg)
	assert.Error(t, err)
}

func TestSignVerify_RoundTrip(t *testing.T) {
	p := newTestProvider(t)
	cases := []struct {
		purpose Purpose
		claims  Claims
	}{
		{PurposeOTP, Claims{UserID: "u1"}},
		{PurposeAccess, Claims{UserID: "u1"}},
		{PurposeEmail, Claims{Email: "a@b.com"}},
		{PurposePhone, Claims{Phone: "09121234567"}},
	}
	for _, tc := range cases {
		t.Run(string(tc.purpose), func(t *testing.T) {
			signed, err := p.Sign(tc.purpose, tc.claims)
			require.NoError(t, err)

			got, err := p.Verify(tc.purpose, signed)
			require.NoError(t, err)
			assert.Equal(t, tc.claims.UserID, got.UserID)
			assert.Equal(t, tc.claims.Email, got.Email)
			assert.Equal(t, tc.claims.Phone, got.Phone)
		})
	}
}

func TestVerify_CrossPurposeRejected(t *testing.T) {
	p := newTestProvider(t)
	otpToken, err := p.Sign(PurposeOTP, Claims{UserID: "u1"})
	require.NoError(t, err)

	_, err = p.Verify(PurposeAccess, otpToken)
	assert.True(t, errors.Is(err, domain.ErrAuthorizationFailed))

	_, err = p.Verify(PurposeEmail, otpToken)
	assert.True(t, errors.Is(err, domain.ErrInvalidToken))
}

func TestVerify_Expired(t *testing.T) {
	p := newTestProvider(t)
	p.now = func() time.Time { return time.Now().Add(-3 * time.Minute) }
	signed, err := p.Sign(PurposeOTP, Claims{UserID: "u1"})
	require.NoError(t, err)

	p.now = time.Now
	_, err = p.Verify(PurposeOTP, signed)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrAuthorizationFailed))
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestVerify_ExpiredChangeTokenIsBadRequest(t *testing.T) {
	p := newTestProvider(t)
	p.now = func() time.Time { return time.Now().Add(-time.Hour) }
	signed, err := p.Sign(PurposePhone, Claims{Phone: "09121234567"})
	require.NoError(t, err)

	p.now = time.Now
	_, err = p.Verify(PurposePhone, signed)
	assert.True(t, errors.Is(err, domain.ErrInvalidToken))
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestVerify_MissingRequiredClaim(t *testing.T) {
	p := newTestProvider(t)
	signed, err := p.Sign(PurposeEmail, Claims{UserID: "u1"})
	require.NoError(t, err)

	_, err = p.Verify(PurposeEmail, signed)
	assert.True(t, errors.Is(err, domain.ErrInvalidToken))
}

func TestVerify_Garbage(t *testing.T) {
	p := newTestProvider(t)
	_, err := p.Verify(PurposeAccess, "not-a-jwt")
	assert.True(t, errors.Is(err, domain.ErrAuthorizationFailed))
}

func TestVerify_NoneAlgorithmRejected(t *testing.T) {
	p := newTestProvider(t)
	claims := Claims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{string(PurposeAccess)},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = p.Verify(PurposeAccess, unsigned)
	assert.True(t, errors.Is(err, domain.ErrAuthorizationFailed))
}

func TestVerify_WrongSecretSameAudience(t *testing.T) {
	p := newTestProvider(t)
	claims := Claims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{string(PurposeAccess)},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("otp-secret"))
	require.NoError(t, err)

	_, err = p.Verify(PurposeAccess, forged)
	assert.True(t, errors.Is(err, domain.ErrAuthorizationFailed))
}
