package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_sessionToken(t *testing.T) {
	app := &RelayApp{signingKey: []byte("test_signing_key")}

	t.Run("round trip", func(t *testing.T) {
		token, err := app.createSessionToken(Session{Name: "Ada", RoomCode: "AB12XY", IsCreator: true}, time.Hour)
		assert.NoError(t, err, "expected token to be signed")

		sess, err := app.sessionFromToken(token)
		assert.NoError(t, err, "expected token to verify")
		assert.Equal(t, Session{Name: "Ada", RoomCode: "AB12XY", IsCreator: true}, sess, "expected claims to round trip")
	})

	t.Run("rejects token signed with a different key", func(t *testing.T) {
		other := &RelayApp{signingKey: []byte("some_other_key")}
		token, err := other.createSessionToken(Session{Name: "Ada", RoomCode: "AB12XY"}, time.Hour)
		assert.NoError(t, err, "expected token to be signed")

		_, err = app.sessionFromToken(token)
		assert.Error(t, err, "expected signature verification to fail")
	})

	t.Run("rejects expired token", func(t *testing.T) {
		token, err := app.createSessionToken(Session{Name: "Ada", RoomCode: "AB12XY"}, -time.Hour)
		assert.NoError(t, err, "expected token to be signed")

		_, err = app.sessionFromToken(token)
		assert.Error(t, err, "expected expired token to be rejected")
	})

	t.Run("rejects empty name claim", func(t *testing.T) {
		token, err := app.createSessionToken(Session{RoomCode: "AB12XY"}, time.Hour)
		assert.NoError(t, err, "expected token to be signed")

		_, err = app.sessionFromToken(token)
		assert.Error(t, err, "expected token without a name to be rejected")
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := app.sessionFromToken("not-a-token")
		assert.Error(t, err, "expected malformed token to be rejected")
	})
}

func Test_sessionFromRequest(t *testing.T) {
	app := &RelayApp{signingKey: []byte("test_signing_key")}

	t.Run("reads session from cookie", func(t *testing.T) {
		token, err := app.createSessionToken(Session{Name: "Ada", RoomCode: "AB12XY"}, time.Hour)
		assert.NoError(t, err, "expected token to be signed")

		req := httptest.NewRequest(http.MethodGet, "/chat/AB12XY", nil)
		req.AddCookie(createSessionCookie(token, time.Hour))

		sess, err := app.sessionFromRequest(req)
		assert.NoError(t, err, "expected session to be read")
		assert.Equal(t, "Ada", sess.Name, "expected name from cookie")
	})

	t.Run("missing cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/chat/AB12XY", nil)
		_, err := app.sessionFromRequest(req)
		assert.Error(t, err, "expected error without a cookie")
	})
}

func Test_createSessionCookie(t *testing.T) {
	cookie := createSessionCookie("token-value", time.Hour)

	assert.Equal(t, sessionCookieKey, cookie.Name, "expected the session cookie name")
	assert.Equal(t, "token-value", cookie.Value, "expected the token as the value")
	assert.Equal(t, "/", cookie.Path, "expected a site-wide cookie")
	assert.Equal(t, 3600, cookie.MaxAge, "expected max age in seconds")
	assert.True(t, cookie.HttpOnly, "expected an http-only cookie")
}
