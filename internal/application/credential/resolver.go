// Package credential validates identifiers against the method they claim to
// be and finds the account that owns one.
package credential

import (
	"context"
	"strings"

	"github.com/go-blog-auth/internal/domain"
	"github.com/go-blog-auth/internal/pkg/validate"
)

type userFinder interface {
	GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
}

type Resolver struct {
	users  userFinder
	region string
}

// NewResolver validates phone numbers as mobile numbers of region (ISO 3166-1
// alpha-2, e.g. "IR").
func NewResolver(users userFinder, region string) *Resolver {
	return &Resolver{users: users, region: region}
}

// Validate checks identifier against method and returns its canonical form:
// emails are lowercased, phone numbers are written in E.164. Usernames are
// free-form and only trimmed.
func (r *Resolver) Validate(method domain.AuthMethod, identifier string) (string, error) {
	identifier = strings.TrimSpace(identifier)
	switch method {
	case domain.MethodEmail:
		if !validate.Email(identifier) {
			return "", domain.ErrInvalidEmail
		}
		return strings.ToLower(identifier), nil
	case domain.MethodPhone:
		if !validate.MobilePhone(identifier, r.region) {
			return "", domain.ErrInvalidPhone
		}
		e164, err := validate.E164(identifier, r.region)
		if err != nil {
			return "", domain.ErrInvalidPhone
		}
		return e164, nil
	case domain.MethodUsername:
		return identifier, nil
	default:
		return "", domain.ErrInvalidAuthMethod
	}
}

// FindUser returns the user whose username, email or phone equals
// identifier. The lookup deliberately ignores the method: a login identifier
// may name any of the three columns. Not found is domain.ErrNotFound.
func (r *Resolver) FindUser(ctx context.Context, identifier string) (*domain.User, error) {
	return r.users.GetByIdentifier(ctx, identifier)
}
