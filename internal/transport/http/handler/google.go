package handler

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-blog-auth/internal/application/auth"
	"github.com/go-blog-auth/internal/domain"
	"github.com/go-blog-auth/internal/pkg/cookie"
	"github.com/gorilla/securecookie"
)

const stateTTL = 10 * time.Minute

type googleIdentity interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*domain.GoogleProfile, error)
	ProfileFromIDToken(ctx context.Context, idToken string) (*domain.GoogleProfile, error)
}

// GoogleHandler signs users in with Google, either through the consent
// redirect or with an ID token the client already holds.
type GoogleHandler struct {
	svc     auth.Service
	google  googleIdentity
	cookies *cookie.Signer
}

func NewGoogleHandler(svc auth.Service, google googleIdentity, cookies *cookie.Signer) *GoogleHandler {
	return &GoogleHandler{svc: svc, google: google, cookies: cookies}
}

// Login redirects to Google's consent screen. The state is echoed back by
// Google and must match the signed cookie set here.
func (h *GoogleHandler) Login(w http.ResponseWriter, r *http.Request) {
	raw := securecookie.GenerateRandomKey(32)
	if raw == nil {
		writeError(w, errors.New("generate oauth state"))
		return
	}
	state := base64.RawURLEncoding.EncodeToString(raw)
	if err := h.cookies.Set(w, cookie.GoogleState, state, stateTTL); err != nil {
		writeError(w, err)
		return
	}
	http.Redirect(w, r, h.google.AuthCodeURL(state), http.StatusFound)
}

func (h *GoogleHandler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	want := h.cookies.Get(r, cookie.GoogleState)
	got := q.Get("state")
	if want == "" || subtle.ConstantTimeCompare([]byte(want), []byte(got)) != 1 {
		slog.Warn("google callback state mismatch")
		writeError(w, domain.ErrAuthorizationFailed)
		return
	}
	h.cookies.Clear(w, cookie.GoogleState)

	if e := q.Get("error"); e != "" {
		slog.Warn("google consent denied", "error", e)
		writeError(w, domain.ErrAuthorizationFailed)
		return
	}
	profile, err := h.google.Exchange(r.Context(), q.Get("code"))
	if err != nil {
		writeError(w, err)
		return
	}
	h.signIn(w, r, profile)
}

func (h *GoogleHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req domain.GoogleTokenRequest
	if !decode(w, r, &req) {
		return
	}
	profile, err := h.google.ProfileFromIDToken(r.Context(), req.IDToken)
	if err != nil {
		writeError(w, err)
		return
	}
	h.signIn(w, r, profile)
}

func (h *GoogleHandler) signIn(w http.ResponseWriter, r *http.Request, profile *domain.GoogleProfile) {
	res, err := h.svc.GoogleAuth(r.Context(), profile)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
