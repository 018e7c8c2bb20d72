package jwtinfra

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-blog-auth/internal/config"
	"github.com/go-blog-auth/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// Purpose scopes a token to a single use. Each purpose is signed with its own
// secret and carries the purpose as audience.
type Purpose string

const (
	PurposeOTP    Purpose = "otp"
	PurposeAccess Purpose = "access"
	PurposeEmail  Purpose = "email"
	PurposePhone  Purpose = "phone"
)

// Claims holds the JWT payload fields. Exactly one of the custom claims is set
// depending on the purpose.
type Claims struct {
	UserID string `json:"userId,omitempty"`
	Email  string `json:"email,omitempty"`
	Phone  string `json:"phone,omitempty"`
	jwt.RegisteredClaims
}

type key struct {
	secret []byte
	expiry time.Duration
}

// Provider signs and verifies HS256 JWTs for the four token purposes.
type Provider struct {
	keys map[Purpose]key
	now  func() time.Time
}

func NewProvider(cfg *config.Config) (*Provider, error) {
	secrets := map[Purpose]string{
		PurposeOTP:    cfg.OTPTokenSecret,
		PurposeAccess: cfg.AccessTokenSecret,
		PurposeEmail:  cfg.EmailTokenSecret,
		PurposePhone:  cfg.PhoneTokenSecret,
	}
	expiries := map[Purpose]time.Duration{
		PurposeOTP:    cfg.OTPTokenTTL,
		PurposeAccess: cfg.AccessTokenTTL,
		PurposeEmail:  cfg.ChangeTokenTTL,
		PurposePhone:  cfg.ChangeTokenTTL,
	}

	p := &Provider{keys: make(map[Purpose]key, len(secrets)), now: time.Now}
	seen := make(map[string]Purpose, len(secrets))
	for purpose, secret := range secrets {
		if secret == "" {
			return nil, fmt.Errorf("missing %s token secret", purpose)
		}
		if other, dup := seen[secret]; dup {
			return nil, fmt.Errorf("%s and %s token secrets must differ", other, purpose)
		}
		seen[secret] = purpose
		p.keys[purpose] = key{secret: []byte(secret), expiry: expiries[purpose]}
	}
	return p, nil
}

// Sign issues a token for purpose carrying claims.
func (p *Provider) Sign(purpose Purpose, claims Claims) (string, error) {
	k, ok := p.keys[purpose]
	if !ok {
		return "", fmt.Errorf("unknown token purpose %q", purpose)
	}
	now := p.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Audience:  jwt.ClaimStrings{string(purpose)},
		ExpiresAt: jwt.NewNumericDate(now.Add(k.expiry)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(k.secret)
}

// Verify checks signature, expiry, audience and the purpose's required claim.
// OTP and access failures are domain.ErrAuthorizationFailed; email and phone
// change-token failures are domain.ErrInvalidToken.
func (p *Provider) Verify(purpose Purpose, tokenStr string) (*Claims, error) {
	fail := failure(purpose)
	k, ok := p.keys[purpose]
	if !ok {
		return nil, fail
	}
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return k.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(string(purpose)),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", fail, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || !hasRequiredClaim(purpose, claims) {
		return nil, fail
	}
	return claims, nil
}

func failure(purpose Purpose) error {
	switch purpose {
	case PurposeEmail, PurposePhone:
		return domain.ErrInvalidToken
	default:
		return domain.ErrAuthorizationFailed
	}
}

func hasRequiredClaim(purpose Purpose, c *Claims) bool {
	switch purpose {
	case PurposeEmail:
		return c.Email != ""
	case PurposePhone:
		return c.Phone != ""
	default:
		return c.UserID != ""
	}
}
