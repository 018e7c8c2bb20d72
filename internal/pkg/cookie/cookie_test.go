package cookie

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte(strings.Repeat("k", 32))

func roundTrip(t *testing.T, s *Signer, name, value string) *http.Request {
	t.Helper()
	rr := httptest.NewRecorder()
	require.NoError(t, s.Set(rr, name, value, 2*time.Minute))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestNewSigner_ShortKey(t *testing.T) {
	_, err := NewSigner([]byte("short"), false)
	assert.Error(t, err)
}

func TestSigner_SetGet(t *testing.T) {
	s, err := NewSigner(testKey, false)
	require.NoError(t, err)

	req := roundTrip(t, s, OTP, "token-value")
	assert.Equal(t, "token-value", s.Get(req, OTP))
}

func TestSigner_CookieAttributes(t *testing.T) {
	s, err := NewSigner(testKey, true)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	require.NoError(t, s.Set(rr, Email, "v", 2*time.Minute))
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, 120, cookies[0].MaxAge)
	assert.NotEqual(t, "v", cookies[0].Value)
}

func TestSigner_Missing(t *testing.T) {
	s, err := NewSigner(testKey, false)
	require.NoError(t, err)
	assert.Empty(t, s.Get(httptest.NewRequest(http.MethodGet, "/", nil), OTP))
}

func TestSigner_Tampered(t *testing.T) {
	s, err := NewSigner(testKey, false)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: OTP, Value: "forged"})
	assert.Empty(t, s.Get(req, OTP))
}

func TestSigner_WrongName(t *testing.T) {
	s, err := NewSigner(testKey, false)
	require.NoError(t, err)

	// A value signed for one cookie name does not verify under another.
	rr := httptest.NewRecorder()
	require.NoError(t, s.Set(rr, Email, "v", time.Minute))
	c := rr.Result().Cookies()[0]

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: Phone, Value: c.Value})
	assert.Empty(t, s.Get(req, Phone))
}
