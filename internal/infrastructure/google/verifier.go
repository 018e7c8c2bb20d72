package google

import (
	"context"
	"fmt"

	"github.com/go-blog-auth/internal/domain"
	"google.golang.org/api/idtoken"
)

// Payload holds the verified claims extracted from a Google ID token.
type Payload struct {
	Sub           string
	Email         string
	EmailVerified bool
	FirstName     string
	LastName      string
	Picture       string
}

// Profile converts the payload to the data the sign-in flow trusts.
func (p *Payload) Profile() *domain.GoogleProfile {
	return &domain.GoogleProfile{
		Email:           p.Email,
		FirstName:       p.FirstName,
		LastName:        p.LastName,
		ProfileImageURL: p.Picture,
	}
}

// Verifier verifies Google ID tokens against a specific client ID.
type Verifier struct {
	clientID string
	validate func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

func NewVerifier(clientID string) *Verifier {
	return &Verifier{clientID: clientID, validate: idtoken.Validate}
}

// Verify validates the Google ID token and returns the extracted payload.
// Tokens without a verified email are rejected: the email is the account key.
func (v *Verifier) Verify(ctx context.Context, token string) (*Payload, error) {
	p, err := v.validate(ctx, token, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("invalid google token: %w", domain.ErrAuthorizationFailed)
	}
	email, _ := p.Claims["email"].(string)
	emailVerified, _ := p.Claims["email_verified"].(bool)
	firstName, _ := p.Claims["given_name"].(string)
	lastName, _ := p.Claims["family_name"].(string)
	picture, _ := p.Claims["picture"].(string)
	if email == "" || !emailVerified {
		return nil, fmt.Errorf("google account email not verified: %w", domain.ErrAuthorizationFailed)
	}
	return &Payload{
		Sub:           p.Subject,
		Email:         email,
		EmailVerified: emailVerified,
		FirstName:     firstName,
		LastName:      lastName,
		Picture:       picture,
	}, nil
}
