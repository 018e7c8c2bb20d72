package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-blog-auth/internal/domain"
	"github.com/go-blog-auth/internal/pkg/cookie"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockGoogle struct{ mock.Mock }

func (m *mockGoogle) AuthCodeURL(state string) string {
	return "https://accounts.google.com/o/oauth2/auth?state=" + url.QueryEscape(state)
}
func (m *mockGoogle) Exchange(ctx context.Context, code string) (*domain.GoogleProfile, error) {
	args := m.Called(ctx, code)
	p, _ := args.Get(0).(*domain.GoogleProfile)
	return p, args.Error(1)
}
func (m *mockGoogle) ProfileFromIDToken(ctx context.Context, idToken string) (*domain.GoogleProfile, error) {
	args := m.Called(ctx, idToken)
	p, _ := args.Get(0).(*domain.GoogleProfile)
	return p, args.Error(1)
}

func TestGoogleLogin_RedirectsWithState(t *testing.T) {
	signer := newTestSigner(t)
	h := NewGoogleHandler(&mockAuthSvc{}, &mockGoogle{}, signer)

	rr := httptest.NewRecorder()
	h.Login(rr, httptest.NewRequest(http.MethodGet, "/v1/auth/google", nil))

	require.Equal(t, http.StatusFound, rr.Code)
	loc, err := url.Parse(rr.Header().Get("Location"))
	require.NoError(t, err)
	state := loc.Query().Get("state")
	assert.NotEmpty(t, state)

	c := findCookie(rr, cookie.GoogleState)
	require.NotNil(t, c)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	assert.Equal(t, state, signer.Get(req, cookie.GoogleState))
}

func TestGoogleCallback_StateMismatch(t *testing.T) {
	signer := newTestSigner(t)
	g := &mockGoogle{}
	h := NewGoogleHandler(&mockAuthSvc{}, g, signer)

	req := withCookie(t, signer, httptest.NewRequest(http.MethodGet, "/cb?state=other&code=c1", nil), cookie.GoogleState, "expected")
	rr := httptest.NewRecorder()
	h.Callback(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	g.AssertNotCalled(t, "Exchange", mock.Anything, mock.Anything)
}

func TestGoogleCallback_NoStateCookie(t *testing.T) {
	g := &mockGoogle{}
	h := NewGoogleHandler(&mockAuthSvc{}, g, newTestSigner(t))

	rr := httptest.NewRecorder()
	h.Callback(rr, httptest.NewRequest(http.MethodGet, "/cb?state=&code=c1", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestGoogleCallback_SignsIn(t *testing.T) {
	signer := newTestSigner(t)
	g := &mockGoogle{}
	svc := &mockAuthSvc{}
	h := NewGoogleHandler(svc, g, signer)
	profile := &domain.GoogleProfile{Email: "a@b.com"}
	g.On("Exchange", mock.Anything, "c1").Return(profile, nil)
	svc.On("GoogleAuth", mock.Anything, profile).Return(&domain.LoginResult{Message: domain.MsgLogin, AccessToken: "access"}, nil)

	req := withCookie(t, signer, httptest.NewRequest(http.MethodGet, "/cb?state=s1&code=c1", nil), cookie.GoogleState, "s1")
	rr := httptest.NewRecorder()
	h.Callback(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"accessToken":"access"`)
	c := findCookie(rr, cookie.GoogleState)
	require.NotNil(t, c)
	assert.Equal(t, -1, c.MaxAge)
}

func TestGoogleCallback_ExchangeFails(t *testing.T) {
	signer := newTestSigner(t)
	g := &mockGoogle{}
	h := NewGoogleHandler(&mockAuthSvc{}, g, signer)
	g.On("Exchange", mock.Anything, "bad").Return(nil, domain.ErrAuthorizationFailed)

	req := withCookie(t, signer, httptest.NewRequest(http.MethodGet, "/cb?state=s1&code=bad", nil), cookie.GoogleState, "s1")
	rr := httptest.NewRecorder()
	h.Callback(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestGoogleToken(t *testing.T) {
	g := &mockGoogle{}
	svc := &mockAuthSvc{}
	h := NewGoogleHandler(svc, g, newTestSigner(t))
	profile := &domain.GoogleProfile{Email: "a@b.com"}
	g.On("ProfileFromIDToken", mock.Anything, "id-token").Return(profile, nil)
	svc.On("GoogleAuth", mock.Anything, profile).Return(&domain.LoginResult{Message: domain.MsgLogin, AccessToken: "access"}, nil)

	rr := httptest.NewRecorder()
	h.Token(rr, jsonReq(t, http.MethodPost, "/", domain.GoogleTokenRequest{IDToken: "id-token"}))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"accessToken":"access"`)
}

func TestGoogleToken_Missing(t *testing.T) {
	g := &mockGoogle{}
	h := NewGoogleHandler(&mockAuthSvc{}, g, newTestSigner(t))

	rr := httptest.NewRecorder()
	h.Token(rr, jsonReq(t, http.MethodPost, "/", map[string]string{}))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	g.AssertNotCalled(t, "ProfileFromIDToken", mock.Anything, mock.Anything)
}
