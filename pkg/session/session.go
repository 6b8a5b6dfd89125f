// Package session verifies Firebase ID tokens and carries the resulting
// Session on the request context. Sessions live for one request; there is
// no server-side sign-out state.
package session

import (
	"context"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/fitai/fitai-server/pkg/errors"
)

// Session is the authenticated user behind a request.
type Session struct {
	UID           string    `json:"uid"`
	Email         string    `json:"email,omitempty"`
	EmailVerified bool      `json:"emailVerified"`
	Name          string    `json:"name,omitempty"`
	IssuedAt      time.Time `json:"issuedAt"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

// Expired reports whether the token behind the session has expired at now.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt.IsZero() || !now.Before(s.ExpiresAt)
}

// Verifier turns a raw bearer token into a Session.
type Verifier interface {
	Verify(ctx context.Context, rawToken string) (*Session, error)
}

var (
	ErrMissingToken = apperrors.ErrUserUnauthorized.WithMessage("missing bearer token")
	ErrInvalidToken = apperrors.ErrUserUnauthorized.WithMessage("invalid token")
)

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// FromRequest verifies the request's bearer token.
func FromRequest(r *http.Request, v Verifier) (*Session, error) {
	token, ok := BearerToken(r.Header.Get("Authorization"))
	if !ok {
		if _, dev := v.(DevVerifier); !dev {
			return nil, ErrMissingToken
		}
	}
	return v.Verify(r.Context(), token)
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored by NewContext, if any.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}

// DevVerifier accepts any token, or none, and returns a fixed session.
// It is only wired when DEV_AUTH_BYPASS_UID is set for local runs.
type DevVerifier struct {
	UID string
}

func (d DevVerifier) Verify(ctx context.Context, rawToken string) (*Session, error) {
	now := time.Now()
	return &Session{
		UID:           d.UID,
		Email:         d.UID + "@localhost",
		EmailVerified: true,
		Name:          "Local Developer",
		IssuedAt:      now,
		ExpiresAt:     now.Add(time.Hour),
	}, nil
}
