package handler

import (
	"net/http"
	"time"

	"github.com/go-blog-auth/internal/application/auth"
	"github.com/go-blog-auth/internal/domain"
	"github.com/go-blog-auth/internal/pkg/cookie"
	"github.com/go-blog-auth/internal/transport/http/middleware"
)

// AuthHandler serves the OTP login flow and the email/phone change flows.
// OTP and change tokens travel in signed cookies, never in the body.
type AuthHandler struct {
	svc       auth.Service
	cookies   *cookie.Signer
	otpTTL    time.Duration
	changeTTL time.Duration
}

func NewAuthHandler(svc auth.Service, cookies *cookie.Signer, otpTTL, changeTTL time.Duration) *AuthHandler {
	return &AuthHandler{svc: svc, cookies: cookies, otpTTL: otpTTL, changeTTL: changeTTL}
}

func currentUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, domain.ErrAuthorizationFailed)
	}
	return u, ok
}

// respondOtp sets the token cookie whenever an OTP was issued, even if
// delivery failed, then writes either the error or the result.
func (h *AuthHandler) respondOtp(w http.ResponseWriter, name string, ttl time.Duration, res *domain.OtpResult, err error) {
	if res != nil && res.Token != "" {
		if cerr := h.cookies.Set(w, name, res.Token, ttl); cerr != nil {
			writeError(w, cerr)
			return
		}
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *AuthHandler) UserExistence(w http.ResponseWriter, r *http.Request) {
	var req domain.AuthRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.UserExistence(r.Context(), req)
	h.respondOtp(w, cookie.OTP, h.otpTTL, res, err)
}

func (h *AuthHandler) CheckOtp(w http.ResponseWriter, r *http.Request) {
	var req domain.CheckOtpRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.CheckOtp(r.Context(), h.cookies.Get(r, cookie.OTP), req.Code)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *AuthHandler) CheckLogin(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *AuthHandler) ChangeEmail(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req domain.ChangeEmailRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.ChangeEmail(r.Context(), u, req.Email)
	h.respondOtp(w, cookie.Email, h.changeTTL, res, err)
}

func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req domain.CheckOtpRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.VerifyEmail(r.Context(), u, h.cookies.Get(r, cookie.Email), req.Code)
	if err != nil {
		writeError(w, err)
		return
	}
	h.cookies.Clear(w, cookie.Email)
	writeJSON(w, http.StatusOK, res)
}

func (h *AuthHandler) ChangePhone(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req domain.ChangePhoneRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.ChangePhone(r.Context(), u, req.Phone)
	h.respondOtp(w, cookie.Phone, h.changeTTL, res, err)
}

func (h *AuthHandler) VerifyPhone(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req domain.CheckOtpRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.VerifyPhone(r.Context(), u, h.cookies.Get(r, cookie.Phone), req.Code)
	if err != nil {
		writeError(w, err)
		return
	}
	h.cookies.Clear(w, cookie.Phone)
	writeJSON(w, http.StatusOK, res)
}
