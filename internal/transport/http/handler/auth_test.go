package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-blog-auth/internal/domain"
	"github.com/go-blog-auth/internal/pkg/cookie"
	"github.com/go-blog-auth/internal/transport/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mock ---

type mockAuthSvc struct{ mock.Mock }

func (m *mockAuthSvc) UserExistence(ctx context.Context, req domain.AuthRequest) (*domain.OtpResult, error) {
	args := m.Called(ctx, req)
	r, _ := args.Get(0).(*domain.OtpResult)
	return r, args.Error(1)
}
func (m *mockAuthSvc) CheckOtp(ctx context.Context, otpToken, code string) (*domain.LoginResult, error) {
	args := m.Called(ctx, otpToken, code)
	r, _ := args.Get(0).(*domain.LoginResult)
	return r, args.Error(1)
}
func (m *mockAuthSvc) ValidateAccessToken(ctx context.Context, token string) (*domain.User, error) {
	args := m.Called(ctx, token)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}
func (m *mockAuthSvc) GoogleAuth(ctx context.Context, p *domain.GoogleProfile) (*domain.LoginResult, error) {
	args := m.Called(ctx, p)
	r, _ := args.Get(0).(*domain.LoginResult)
	return r, args.Error(1)
}
func (m *mockAuthSvc) ChangeEmail(ctx context.Context, u *domain.User, email string) (*domain.OtpResult, error) {
	args := m.Called(ctx, u, email)
	r, _ := args.Get(0).(*domain.OtpResult)
	return r, args.Error(1)
}
func (m *mockAuthSvc) VerifyEmail(ctx context.Context, u *domain.User, changeToken, code string) (*domain.MessageResult, error) {
	args := m.Called(ctx, u, changeToken, code)
	r, _ := args.Get(0).(*domain.MessageResult)
	return r, args.Error(1)
}
func (m *mockAuthSvc) ChangePhone(ctx context.Context, u *domain.User, phone string) (*domain.OtpResult, error) {
	args := m.Called(ctx, u, phone)
	r, _ := args.Get(0).(*domain.OtpResult)
	return r, args.Error(1)
}
func (m *mockAuthSvc) VerifyPhone(ctx context.Context, u *domain.User, changeToken, code string) (*domain.MessageResult, error) {
	args := m.Called(ctx, u, changeToken, code)
	r, _ := args.Get(0).(*domain.MessageResult)
	return r, args.Error(1)
}

// --- helpers ---

func newTestSigner(t *testing.T) *cookie.Signer {
	t.Helper()
	s, err := cookie.NewSigner([]byte(strings.Repeat("k", 32)), false)
	require.NoError(t, err)
	return s
}

func jsonReq(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	return httptest.NewRequest(method, target, bytes.NewReader(b))
}

func asUser(r *http.Request, u *domain.User) *http.Request {
	return r.WithContext(middleware.WithUser(r.Context(), u))
}

// withCookie signs value under name and attaches it to r.
func withCookie(t *testing.T, s *cookie.Signer, r *http.Request, name, value string) *http.Request {
	t.Helper()
	rr := httptest.NewRecorder()
	require.NoError(t, s.Set(rr, name, value, time.Minute))
	for _, c := range rr.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func findCookie(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func errorBody(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var env MessageEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	return env.Error
}

// --- UserExistence ---

func TestUserExistence_SetsOtpCookie(t *testing.T) {
	svc := &mockAuthSvc{}
	signer := newTestSigner(t)
	h := NewAuthHandler(svc, signer, 2*time.Minute, 2*time.Minute)
	req := domain.AuthRequest{Method: domain.MethodEmail, Type: domain.TypeRegister, Username: "a@b.com"}
	svc.On("UserExistence", mock.Anything, req).Return(&domain.OtpResult{
		Message: domain.MsgSendOTP,
		Token:   "otp.jwt.token",
		Debug:   &domain.DevDebugInfo{Code: "12345", Token: "otp.jwt.token"},
	}, nil)

	rr := httptest.NewRecorder()
	h.UserExistence(rr, jsonReq(t, http.MethodPost, "/v1/auth/user-existence", req))

	require.Equal(t, http.StatusOK, rr.Code)
	c := findCookie(rr, cookie.OTP)
	require.NotNil(t, c)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, 120, c.MaxAge)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, domain.MsgSendOTP, body["message"])
	assert.NotContains(t, body, "Token")
	debug, _ := body["debug"].(map[string]interface{})
	assert.Equal(t, "12345", debug["code"])

	// The cookie round-trips to the token.
	next := httptest.NewRequest(http.MethodPost, "/", nil)
	next.AddCookie(c)
	assert.Equal(t, "otp.jwt.token", signer.Get(next, cookie.OTP))
}

func TestUserExistence_ValidationFailure(t *testing.T) {
	svc := &mockAuthSvc{}
	h := NewAuthHandler(svc, newTestSigner(t), time.Minute, time.Minute)

	rr := httptest.NewRecorder()
	h.UserExistence(rr, jsonReq(t, http.MethodPost, "/", map[string]string{"method": "email"}))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "UserExistence", mock.Anything, mock.Anything)
}

func TestUserExistence_ErrorKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{domain.ErrInvalidAuthType, http.StatusBadRequest, domain.MsgInvalidAuthType},
		{domain.ErrInvalidData, http.StatusUnauthorized, domain.MsgInvalidData},
		{domain.ErrAccountExists, http.StatusConflict, domain.MsgAccountExists},
		{domain.ErrInvalidEmail, http.StatusUnprocessableEntity, domain.MsgInvalidEmail},
		{errors.New("dynamo exploded"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tc := range cases {
		t.Run(tc.msg, func(t *testing.T) {
			svc := &mockAuthSvc{}
			h := NewAuthHandler(svc, newTestSigner(t), time.Minute, time.Minute)
			svc.On("UserExistence", mock.Anything, mock.Anything).Return(nil, tc.err)

			rr := httptest.NewRecorder()
			h.UserExistence(rr, jsonReq(t, http.MethodPost, "/", domain.AuthRequest{
				Method: domain.MethodEmail, Type: domain.TypeLogin, Username: "x",
			}))
			assert.Equal(t, tc.status, rr.Code)
			assert.Equal(t, tc.msg, errorBody(t, rr))
			assert.Nil(t, findCookie(rr, cookie.OTP))
		})
	}
}

func TestUserExistence_DispatchFailureStillSetsCookie(t *testing.T) {
	svc := &mockAuthSvc{}
	h := NewAuthHandler(svc, newTestSigner(t), time.Minute, time.Minute)
	svc.On("UserExistence", mock.Anything, mock.Anything).Return(
		&domain.OtpResult{Message: domain.MsgSendOTP, Token: "otp.jwt.token"},
		&domain.DispatchError{Provider: "sns", Err: errors.New("throttled")},
	)

	rr := httptest.NewRecorder()
	h.UserExistence(rr, jsonReq(t, http.MethodPost, "/", domain.AuthRequest{
		Method: domain.MethodPhone, Type: domain.TypeLogin, Username: "09121234567",
	}))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotNil(t, findCookie(rr, cookie.OTP))
}

// --- CheckOtp ---

func TestCheckOtp_ReadsSignedCookie(t *testing.T) {
	svc := &mockAuthSvc{}
	signer := newTestSigner(t)
	h := NewAuthHandler(svc, signer, time.Minute, time.Minute)
	svc.On("CheckOtp", mock.Anything, "otp.jwt.token", "12345").
		Return(&domain.LoginResult{Message: domain.MsgLogin, AccessToken: "access"}, nil)

	req := withCookie(t, signer, jsonReq(t, http.MethodPost, "/", domain.CheckOtpRequest{Code: "12345"}), cookie.OTP, "otp.jwt.token")
	rr := httptest.NewRecorder()
	h.CheckOtp(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var res domain.LoginResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.Equal(t, "access", res.AccessToken)
}

func TestCheckOtp_MissingCookie(t *testing.T) {
	svc := &mockAuthSvc{}
	h := NewAuthHandler(svc, newTestSigner(t), time.Minute, time.Minute)
	svc.On("CheckOtp", mock.Anything, "", "12345").Return(nil, domain.ErrExpiredCode)

	rr := httptest.NewRecorder()
	h.CheckOtp(rr, jsonReq(t, http.MethodPost, "/", domain.CheckOtpRequest{Code: "12345"}))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, domain.MsgExpiredCode, errorBody(t, rr))
}

func TestCheckOtp_MalformedCode(t *testing.T) {
	svc := &mockAuthSvc{}
	h := NewAuthHandler(svc, newTestSigner(t), time.Minute, time.Minute)

	rr := httptest.NewRecorder()
	h.CheckOtp(rr, jsonReq(t, http.MethodPost, "/", domain.CheckOtpRequest{Code: "12a"}))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "CheckOtp", mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckLogin(t *testing.T) {
	h := NewAuthHandler(&mockAuthSvc{}, newTestSigner(t), time.Minute, time.Minute)
	u := &domain.User{UserID: "u1", Username: "alice", Password: "secret"}

	rr := httptest.NewRecorder()
	h.CheckLogin(rr, asUser(httptest.NewRequest(http.MethodGet, "/", nil), u))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"username":"alice"`)
	assert.NotContains(t, rr.Body.String(), "secret")

	rr = httptest.NewRecorder()
	h.CheckLogin(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

// --- change / verify ---

func TestChangeEmail_SetsChangeCookie(t *testing.T) {
	svc := &mockAuthSvc{}
	h := NewAuthHandler(svc, newTestSigner(t), time.Minute, 2*time.Minute)
	u := &domain.User{UserID: "u1"}
	svc.On("ChangeEmail", mock.Anything, u, "new@b.com").
		Return(&domain.OtpResult{Message: domain.MsgSendOTP, Token: "email.jwt.token"}, nil)

	rr := httptest.NewRecorder()
	h.ChangeEmail(rr, asUser(jsonReq(t, http.MethodPatch, "/", domain.ChangeEmailRequest{Email: "new@b.com"}), u))
	require.Equal(t, http.StatusOK, rr.Code)
	c := findCookie(rr, cookie.Email)
	require.NotNil(t, c)
	assert.Equal(t, 120, c.MaxAge)
}

func TestChangeEmail_OwnEmailNoCookie(t *testing.T) {
	svc := &mockAuthSvc{}
	h := NewAuthHandler(svc, newTestSigner(t), time.Minute, time.Minute)
	u := &domain.User{UserID: "u1", Email: "a@b.com"}
	svc.On("ChangeEmail", mock.Anything, u, "a@b.com").Return(&domain.OtpResult{Message: domain.MsgDefault}, nil)

	rr := httptest.NewRecorder()
	h.ChangeEmail(rr, asUser(jsonReq(t, http.MethodPatch, "/", domain.ChangeEmailRequest{Email: "a@b.com"}), u))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Nil(t, findCookie(rr, cookie.Email))
}

func TestChangeEmail_Duplicate(t *testing.T) {
	svc := &mockAuthSvc{}
	h := NewAuthHandler(svc, newTestSigner(t), time.Minute, time.Minute)
	u := &domain.User{UserID: "u1"}
	svc.On("ChangeEmail", mock.Anything, u, "taken@b.com").Return(nil, domain.ErrDuplicateEmail)

	rr := httptest.NewRecorder()
	h.ChangeEmail(rr, asUser(jsonReq(t, http.MethodPatch, "/", domain.ChangeEmailRequest{Email: "taken@b.com"}), u))
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, domain.MsgDuplicateEmail, errorBody(t, rr))
}

func TestVerifyEmail_ClearsCookieOnSuccess(t *testing.T) {
	svc := &mockAuthSvc{}
	signer := newTestSigner(t)
	h := NewAuthHandler(svc, signer, time.Minute, time.Minute)
	u := &domain.User{UserID: "u1", NewEmail: "new@b.com"}
	svc.On("VerifyEmail", mock.Anything, u, "email.jwt.token", "12345").
		Return(&domain.MessageResult{Message: domain.MsgDefault}, nil)

	req := withCookie(t, signer, jsonReq(t, http.MethodPost, "/", domain.CheckOtpRequest{Code: "12345"}), cookie.Email, "email.jwt.token")
	rr := httptest.NewRecorder()
	h.VerifyEmail(rr, asUser(req, u))

	require.Equal(t, http.StatusOK, rr.Code)
	c := findCookie(rr, cookie.Email)
	require.NotNil(t, c)
	assert.Equal(t, -1, c.MaxAge)
}

func TestVerifyPhone_MissingCookie(t *testing.T) {
	svc := &mockAuthSvc{}
	h := NewAuthHandler(svc, newTestSigner(t), time.Minute, time.Minute)
	u := &domain.User{UserID: "u1"}
	svc.On("VerifyPhone", mock.Anything, u, "", "12345").Return(nil, domain.ErrChangeTokenMissing)

	rr := httptest.NewRecorder()
	h.VerifyPhone(rr, asUser(jsonReq(t, http.MethodPost, "/", domain.CheckOtpRequest{Code: "12345"}), u))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestVerifyEmail_WrongCodeKeepsSession(t *testing.T) {
	svc := &mockAuthSvc{}
	signer := newTestSigner(t)
	h := NewAuthHandler(svc, signer, time.Minute, time.Minute)
	u := &domain.User{UserID: "u1", NewEmail: "new@b.com"}
	svc.On("VerifyEmail", mock.Anything, u, "email.jwt.token", "99999").Return(nil, domain.ErrChangeIncorrectCode)

	req := withCookie(t, signer, jsonReq(t, http.MethodPost, "/", domain.CheckOtpRequest{Code: "99999"}), cookie.Email, "email.jwt.token")
	rr := httptest.NewRecorder()
	h.VerifyEmail(rr, asUser(req, u))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, domain.MsgIncorrectCode, errorBody(t, rr))
	assert.Nil(t, findCookie(rr, cookie.Email))
}

func TestChangePhone_RequiresUser(t *testing.T) {
	svc := &mockAuthSvc{}
	h := NewAuthHandler(svc, newTestSigner(t), time.Minute, time.Minute)

	rr := httptest.NewRecorder()
	h.ChangePhone(rr, jsonReq(t, http.MethodPatch, "/", domain.ChangePhoneRequest{Phone: "09121234567"}))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	svc.AssertNotCalled(t, "ChangePhone", mock.Anything, mock.Anything, mock.Anything)
}
