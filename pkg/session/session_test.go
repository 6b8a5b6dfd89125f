package session

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/fitai/fitai-server/pkg/errors"
)

const testProject = "fitai-test"

var testKey = func() *rsa.PrivateKey {
	k, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		panic(err)
	}
	return k
}()

func sign(t *testing.T, method jwt.SigningMethod, key any, kid string, claims jwt.Claims) string {
	t.Helper()
	tok := jwt.NewWithClaims(method, claims)
	tok.Header["kid"] = kid
	s, err := tok.SignedString(key)
	require.NoError(t, err)
	return s
}

func validClaims(now time.Time) *firebaseClaims {
	return &firebaseClaims{
		Email:         "jo@example.com",
		EmailVerified: true,
		Name:          "Jo",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    FirebaseIssuerPrefix + testProject,
			Audience:  jwt.ClaimStrings{testProject},
			Subject:   "user-123",
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

func newTestVerifier(t *testing.T, now time.Time) *FirebaseVerifier {
	t.Helper()
	v, err := NewFirebaseVerifier(testProject, StaticKeys{"k1": &testKey.PublicKey})
	require.NoError(t, err)
	v.now = func() time.Time { return now }
	return v
}

func TestFirebaseVerifier_Valid(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	v := newTestVerifier(t, now)

	s, err := v.Verify(context.Background(), sign(t, jwt.SigningMethodRS256, testKey, "k1", validClaims(now)))

	require.NoError(t, err)
	assert.Equal(t, "user-123", s.UID)
	assert.Equal(t, "jo@example.com", s.Email)
	assert.True(t, s.EmailVerified)
	assert.Equal(t, "Jo", s.Name)
	assert.Equal(t, now.Add(time.Hour).Unix(), s.ExpiresAt.Unix())
	assert.False(t, s.Expired(now))
	assert.True(t, s.Expired(now.Add(2*time.Hour)))
}

func TestFirebaseVerifier_Rejects(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	v := newTestVerifier(t, now)
	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token func() string
	}{
		{"empty", func() string { return "" }},
		{"garbage", func() string { return "not.a.jwt" }},
		{"wrong issuer", func() string {
			c := validClaims(now)
			c.Issuer = "https://accounts.google.com"
			return sign(t, jwt.SigningMethodRS256, testKey, "k1", c)
		}},
		{"wrong audience", func() string {
			c := validClaims(now)
			c.Audience = jwt.ClaimStrings{"other-project"}
			return sign(t, jwt.SigningMethodRS256, testKey, "k1", c)
		}},
		{"expired", func() string {
			c := validClaims(now)
			c.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Hour))
			return sign(t, jwt.SigningMethodRS256, testKey, "k1", c)
		}},
		{"no expiry", func() string {
			c := validClaims(now)
			c.ExpiresAt = nil
			return sign(t, jwt.SigningMethodRS256, testKey, "k1", c)
		}},
		{"issued in future", func() string {
			c := validClaims(now)
			c.IssuedAt = jwt.NewNumericDate(now.Add(time.Hour))
			return sign(t, jwt.SigningMethodRS256, testKey, "k1", c)
		}},
		{"missing subject", func() string {
			c := validClaims(now)
			c.Subject = ""
			return sign(t, jwt.SigningMethodRS256, testKey, "k1", c)
		}},
		{"unknown kid", func() string {
			return sign(t, jwt.SigningMethodRS256, testKey, "k2", validClaims(now))
		}},
		{"wrong key", func() string {
			return sign(t, jwt.SigningMethodRS256, otherKey, "k1", validClaims(now))
		}},
		{"hmac", func() string {
			return sign(t, jwt.SigningMethodHS256, []byte("secret"), "k1", validClaims(now))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), tt.token())
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrUserUnauthorized)
			assert.Equal(t, 401, apperrors.HTTPStatus(apperrors.GetCode(err)))
		})
	}
}

func TestNewFirebaseVerifier_RequiresProject(t *testing.T) {
	_, err := NewFirebaseVerifier(" ", nil)
	assert.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer  abc ", "abc", true},
		{"Basic abc", "", false},
		{"Bearer", "", false},
		{"Bearer   ", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, ok := BearerToken(tt.header)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromRequest(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	v := newTestVerifier(t, now)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := FromRequest(r, v)
	assert.ErrorIs(t, err, ErrMissingToken)

	r.Header.Set("Authorization", "Bearer "+sign(t, jwt.SigningMethodRS256, testKey, "k1", validClaims(now)))
	s, err := FromRequest(r, v)
	require.NoError(t, err)
	assert.Equal(t, "user-123", s.UID)

	dev, err := FromRequest(httptest.NewRequest(http.MethodGet, "/", nil), DevVerifier{UID: "local-user"})
	require.NoError(t, err)
	assert.Equal(t, "local-user", dev.UID)
}

func TestContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := NewContext(context.Background(), &Session{UID: "u1"})
	s, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "u1", s.UID)
}

func TestJWKSCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		pub := testKey.PublicKey
		_ = json.NewEncoder(w).Encode(jwkSet{Keys: []jwk{
			{Kty: "RSA", Kid: "k1", N: base64.RawURLEncoding.EncodeToString(pub.N.Bytes()), E: base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes())},
			{Kty: "EC", Kid: "ec"},
		}})
	}))
	defer srv.Close()

	cache := NewJWKSCache(srv.Client(), srv.URL)
	cache.MinRefreshInterval = 0

	k, err := cache.Key(context.Background(), "k1")
	require.NoError(t, err)
	assert.Equal(t, 0, testKey.PublicKey.N.Cmp(k.N))
	assert.Equal(t, testKey.PublicKey.E, k.E)

	_, err = cache.Key(context.Background(), "k1")
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())

	_, err = cache.Key(context.Background(), "ec")
	assert.Error(t, err)
	assert.Equal(t, int32(2), hits.Load())

	cache.TTL = 0
	_, err = cache.Key(context.Background(), "k1")
	require.NoError(t, err)
	assert.Equal(t, int32(3), hits.Load())
}

func TestJWKSCache_ServesStaleKeyOnFailure(t *testing.T) {
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		pub := testKey.PublicKey
		_ = json.NewEncoder(w).Encode(jwkSet{Keys: []jwk{
			{Kty: "RSA", Kid: "k1", N: base64.RawURLEncoding.EncodeToString(pub.N.Bytes()), E: base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes())},
		}})
	}))
	defer srv.Close()

	cache := NewJWKSCache(srv.Client(), srv.URL)
	cache.MinRefreshInterval = 0
	_, err := cache.Key(context.Background(), "k1")
	require.NoError(t, err)

	fail.Store(true)
	cache.TTL = 0
	k, err := cache.Key(context.Background(), "k1")
	require.NoError(t, err)
	assert.NotNil(t, k)

	_, err = cache.Key(context.Background(), "k9")
	assert.Error(t, err)
}

func TestJWKSCache_UnknownKidsDoNotRefetch(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		pub := testKey.PublicKey
		_ = json.NewEncoder(w).Encode(jwkSet{Keys: []jwk{
			{Kty: "RSA", Kid: "k1", N: base64.RawURLEncoding.EncodeToString(pub.N.Bytes()), E: base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes())},
		}})
	}))
	defer srv.Close()

	cache := NewJWKSCache(srv.Client(), srv.URL)
	assert.Equal(t, DefaultJWKSMinRefresh, cache.MinRefreshInterval)

	_, err := cache.Key(context.Background(), "k1")
	require.NoError(t, err)

	for _, kid := range []string{"r1", "r2", "r3", "r4"} {
		_, err := cache.Key(context.Background(), kid)
		assert.Error(t, err, kid)
	}
	assert.Equal(t, int32(1), hits.Load())

	k, err := cache.Key(context.Background(), "k1")
	require.NoError(t, err)
	assert.NotNil(t, k)
	assert.Equal(t, int32(1), hits.Load())
}

func TestJWKSCache_FailedFetchIsThrottled(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cache := NewJWKSCache(srv.Client(), srv.URL)
	_, err := cache.Key(context.Background(), "k1")
	require.Error(t, err)
	_, err = cache.Key(context.Background(), "k1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Equal(t, int32(1), hits.Load())
}
