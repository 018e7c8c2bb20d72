// Package cookie reads and writes HMAC-signed, HTTP-only cookies used to carry
// short-lived verification tokens between the request and confirm steps.
package cookie

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
)

// Cookie names for the short-lived tokens.
const (
	OTP         = "otp_token"
	Email       = "email_token"
	Phone       = "phone_token"
	GoogleState = "google_state"
)

// maxAge bounds the signed timestamp of every cookie; the per-cookie lifetime
// is enforced by Expires and by the token's own exp claim.
const maxAge = 15 * time.Minute

// Signer signs cookie values so the client cannot forge or alter them.
type Signer struct {
	codec  *securecookie.SecureCookie
	secure bool
}

// NewSigner returns a Signer keyed with hashKey, which must be at least 32 bytes.
func NewSigner(hashKey []byte, secure bool) (*Signer, error) {
	if len(hashKey) < 32 {
		return nil, errors.New("cookie hash key must be at least 32 bytes")
	}
	// Values are JWTs or random state; signing is enough, no block key.
	codec := securecookie.New(hashKey, nil).MaxAge(int(maxAge.Seconds()))
	return &Signer{codec: codec, secure: secure}, nil
}

// Set writes a signed cookie that expires after ttl.
func (s *Signer) Set(w http.ResponseWriter, name, value string, ttl time.Duration) error {
	encoded, err := s.codec.Encode(name, value)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    encoded,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Get returns the verified value of the named cookie. It returns "" when the
// cookie is missing, tampered with or past its signed max age.
func (s *Signer) Get(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	var value string
	if err := s.codec.Decode(name, c.Value, &value); err != nil {
		return ""
	}
	return value
}

// Clear expires the named cookie on the client.
func (s *Signer) Clear(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
	})
}
