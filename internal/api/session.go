package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt"
)

const (
	sessionCookieKey = "session"
	// matches the 30-day cookie lifetime clients expect
	defaultSessionExpiration = 30 * 24 * time.Hour
)

const (
	nameClaim      = "name"
	roomCodeClaim  = "room_code"
	isCreatorClaim = "is_creator"
	expClaim       = "exp"
)

// Session is the signed state carried by the cookie: a self-asserted
// display name, the room it was issued for, and whether the holder
// created that room. The creator flag is informational only.
type Session struct {
	Name      string
	RoomCode  string
	IsCreator bool
}

func (s *RelayApp) createSessionToken(sess Session, exp time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		nameClaim:      sess.Name,
		roomCodeClaim:  sess.RoomCode,
		isCreatorClaim: sess.IsCreator,
		expClaim:       time.Now().Add(exp).Unix(),
	})

	return token.SignedString(s.signingKey)
}

func (s *RelayApp) sessionFromToken(tokenString string) (Session, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil {
		return Session{}, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Session{}, fmt.Errorf("invalid token claims")
	}

	name, ok := claims[nameClaim].(string)
	if !ok || name == "" {
		return Session{}, fmt.Errorf("invalid name claim")
	}

	roomCode, _ := claims[roomCodeClaim].(string)
	isCreator, _ := claims[isCreatorClaim].(bool)

	return Session{
		Name:      name,
		RoomCode:  roomCode,
		IsCreator: isCreator,
	}, nil
}

func (s *RelayApp) sessionFromRequest(r *http.Request) (Session, error) {
	cookie, err := r.Cookie(sessionCookieKey)
	if err != nil {
		return Session{}, fmt.Errorf("get cookie: %w", err)
	}

	return s.sessionFromToken(cookie.Value)
}

func createSessionCookie(token string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieKey,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
