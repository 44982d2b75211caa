package client

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Session is the authenticated state handed back by Auth. The token is an
// opaque bearer credential as far as the server is concerned; the client
// parses its claims without verification purely to know who is logged in
// and when the session lapses.
type Session struct {
	Token string
	User  User

	expiresAt time.Time
}

// Expired reports whether the session's token has lapsed. Tokens without an
// exp claim never expire client-side; the server still rejects them when it
// disagrees.
func (s *Session) Expired() bool {
	if s == nil || s.expiresAt.IsZero() {
		return false
	}
	return time.Now().After(s.expiresAt)
}

// UserID is the logged-in user's id, or 0 when logged out.
func (s *Session) UserID() int {
	if s == nil {
		return 0
	}
	return s.User.UserID
}

func newSession(token string, user User) *Session {
	s := &Session{Token: token, User: user}

	// Unverified parse: the signature belongs to the server, the client
	// only reads the expiry.
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err == nil {
		if claims.ExpiresAt != nil {
			s.expiresAt = claims.ExpiresAt.Time
		}
	}
	return s
}

// Auth exchanges phone number and password for a session and installs it on
// the client, so every later call carries the bearer credential.
func (c *Client) Auth(phoneNumber, password string) (*Session, error) {
	payload := struct {
		PhoneNumber string `json:"phone_number"`
		Password    string `json:"password"`
	}{phoneNumber, password}

	var resp struct {
		Token string `json:"token"`
		User  User   `json:"user"`
	}
	if err := c.do("POST", "/user/auth", payload, &resp); err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("auth: empty token in response")
	}

	s := newSession(resp.Token, resp.User)
	c.SetSession(s)
	return s, nil
}

// Logout clears the installed session.
func (c *Client) Logout() {
	c.SetSession(nil)
}
