package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-at-least-16-chars"

func issueToken(t *testing.T, svc *TokenService, uid string, expiry time.Time) string {
	t.Helper()
	token, err := svc.Generate(uid, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(expiry),
	})
	require.NoError(t, err)
	return token
}

func TestNewTokenService(t *testing.T) {
	t.Run("rejects short secret", func(t *testing.T) {
		_, err := NewTokenService("short")
		assert.Error(t, err)
	})

	t.Run("accepts long secret", func(t *testing.T) {
		svc, err := NewTokenService(testSecret)
		require.NoError(t, err)
		assert.NotNil(t, svc)
	})
}

func TestTokenService_Verify(t *testing.T) {
	svc, err := NewTokenService(testSecret)
	require.NoError(t, err)

	t.Run("valid token round-trips the subject", func(t *testing.T) {
		token := issueToken(t, svc, "user-42", time.Now().Add(time.Hour))
		uid, err := svc.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "user-42", uid)
	})

	t.Run("expired token rejected", func(t *testing.T) {
		token := issueToken(t, svc, "user-42", time.Now().Add(-time.Hour))
		_, err := svc.Verify(token)
		assert.ErrorContains(t, err, "expired")
	})

	t.Run("token without expiry rejected", func(t *testing.T) {
		token, err := svc.Generate("user-42", jwt.RegisteredClaims{})
		require.NoError(t, err)
		_, err = svc.Verify(token)
		assert.Error(t, err)
	})

	t.Run("token signed with another secret rejected", func(t *testing.T) {
		other, err := NewTokenService("another-secret-16-chars-long")
		require.NoError(t, err)
		token := issueToken(t, other, "user-42", time.Now().Add(time.Hour))
		_, err = svc.Verify(token)
		assert.Error(t, err)
	})

	t.Run("garbage rejected", func(t *testing.T) {
		_, err := svc.Verify("not.a.jwt")
		assert.Error(t, err)
	})
}

func TestRequire(t *testing.T) {
	svc, err := NewTokenService(testSecret)
	require.NoError(t, err)

	var seenUID string
	handler := Require(svc, func(w http.ResponseWriter, r *http.Request) {
		seenUID = UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	t.Run("valid token passes through", func(t *testing.T) {
		token := issueToken(t, svc, "user-1", time.Now().Add(time.Hour))
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		handler(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "user-1", seenUID)
	})

	t.Run("missing header rejected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		rr := httptest.NewRecorder()
		handler(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("malformed header rejected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rr := httptest.NewRecorder()
		handler(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}

func TestMaybe(t *testing.T) {
	svc, err := NewTokenService(testSecret)
	require.NoError(t, err)

	var seenUID string
	handler := Maybe(svc, func(w http.ResponseWriter, r *http.Request) {
		seenUID = UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	t.Run("anonymous passes through with empty id", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		rr := httptest.NewRecorder()
		handler(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "", seenUID)
	})

	t.Run("invalid token treated as anonymous", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rr := httptest.NewRecorder()
		handler(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "", seenUID)
	})

	t.Run("valid token attaches the id", func(t *testing.T) {
		token := issueToken(t, svc, "user-2", time.Now().Add(time.Hour))
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		handler(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "user-2", seenUID)
	})
}
