package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// FirebaseIssuerPrefix is joined with the project ID to form the expected
// token issuer.
const FirebaseIssuerPrefix = "https://securetoken.google.com/"

type firebaseClaims struct {
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
	Name          string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// FirebaseVerifier validates Firebase Auth ID tokens.
type FirebaseVerifier struct {
	projectID string
	keys      KeySource
	now       func() time.Time
	leeway    time.Duration
}

// NewFirebaseVerifier creates a verifier for tokens minted for projectID.
// A nil key source uses the public Google JWKS endpoint.
func NewFirebaseVerifier(projectID string, keys KeySource) (*FirebaseVerifier, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, fmt.Errorf("firebase project ID is required")
	}
	if keys == nil {
		keys = NewJWKSCache(nil, FirebaseJWKSURL)
	}
	return &FirebaseVerifier{
		projectID: projectID,
		keys:      keys,
		now:       time.Now,
		leeway:    30 * time.Second,
	}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, rawToken string) (*Session, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, ErrMissingToken
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(FirebaseIssuerPrefix+v.projectID),
		jwt.WithAudience(v.projectID),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(v.leeway),
		jwt.WithTimeFunc(v.now),
	)

	claims := &firebaseClaims{}
	_, err := parser.ParseWithClaims(rawToken, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if strings.TrimSpace(kid) == "" {
			return nil, fmt.Errorf("missing kid")
		}
		return v.keys.Key(ctx, kid)
	})
	if err != nil {
		slog.Default().With("component", "session").DebugContext(ctx, "token rejected", "error", err)
		return nil, ErrInvalidToken.WithCause(err)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrInvalidToken.WithCause(fmt.Errorf("missing sub"))
	}

	s := &Session{
		UID:           claims.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Name:          claims.Name,
	}
	if claims.IssuedAt != nil {
		s.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}
