package session

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"
)

// FirebaseJWKSURL serves the keys that sign Firebase ID tokens.
const FirebaseJWKSURL = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"

// DefaultJWKSTTL is how long fetched keys are trusted before a refresh.
const DefaultJWKSTTL = 6 * time.Hour

// DefaultJWKSMinRefresh is the shortest gap between two fetches, however
// many unknown key IDs arrive in between.
const DefaultJWKSMinRefresh = time.Minute

// KeySource resolves a key ID to a verification key.
type KeySource interface {
	Key(ctx context.Context, kid string) (*rsa.PublicKey, error)
}

// StaticKeys is a fixed key set, used in tests and for pinned keys.
type StaticKeys map[string]*rsa.PublicKey

func (s StaticKeys) Key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	if k, ok := s[kid]; ok {
		return k, nil
	}
	return nil, fmt.Errorf("unknown kid %q", kid)
}

// JWKSCache fetches RSA keys from a JWKS endpoint and caches them for TTL.
// Fetches are at least MinRefreshInterval apart.
type JWKSCache struct {
	httpClient         *http.Client
	url                string
	TTL                time.Duration
	MinRefreshInterval time.Duration

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time

	// guarded by refreshMu
	refreshMu   sync.Mutex
	attemptedAt time.Time
	attemptErr  error
}

// NewJWKSCache creates a cache for url. A nil client gets a 10s timeout.
func NewJWKSCache(httpClient *http.Client, url string) *JWKSCache {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &JWKSCache{
		httpClient:         httpClient,
		url:                url,
		TTL:                DefaultJWKSTTL,
		MinRefreshInterval: DefaultJWKSMinRefresh,
		keys:               map[string]*rsa.PublicKey{},
	}
}

type jwkSet struct {
	Keys []jwk `json:"keys"`
}

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func (j *JWKSCache) Key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	j.mu.RLock()
	key := j.keys[kid]
	stale := time.Since(j.fetchedAt) > j.TTL
	j.mu.RUnlock()

	if key != nil && !stale {
		return key, nil
	}

	if err := j.throttledRefresh(ctx); err != nil {
		// a stale key beats no key while the endpoint is down
		if key != nil {
			return key, nil
		}
		return nil, err
	}

	j.mu.RLock()
	defer j.mu.RUnlock()
	if key = j.keys[kid]; key == nil {
		return nil, fmt.Errorf("kid not found in jwks: %s", kid)
	}
	return key, nil
}

// throttledRefresh fetches the key set unless the last attempt was within
// MinRefreshInterval, in which case it reports that attempt's result.
func (j *JWKSCache) throttledRefresh(ctx context.Context) error {
	j.refreshMu.Lock()
	defer j.refreshMu.Unlock()

	if !j.attemptedAt.IsZero() && time.Since(j.attemptedAt) < j.MinRefreshInterval {
		return j.attemptErr
	}
	j.attemptedAt = time.Now()
	j.attemptErr = j.refresh(ctx)
	return j.attemptErr
}

func (j *JWKSCache) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, j.url, nil)
	if err != nil {
		return err
	}
	res, err := j.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("jwks fetch: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("jwks fetch failed: %s", res.Status)
	}

	var set jwkSet
	if err := json.NewDecoder(res.Body).Decode(&set); err != nil {
		return fmt.Errorf("jwks decode: %w", err)
	}

	next := map[string]*rsa.PublicKey{}
	for _, k := range set.Keys {
		if k.Kty != "RSA" || strings.TrimSpace(k.Kid) == "" {
			continue
		}
		if pub, err := rsaFromModExp(k.N, k.E); err == nil {
			next[k.Kid] = pub
		}
	}
	if len(next) == 0 {
		return errors.New("jwks contained no usable keys")
	}

	j.mu.Lock()
	j.keys = next
	j.fetchedAt = time.Now()
	j.mu.Unlock()
	return nil
}

func rsaFromModExp(nB64, eB64 string) (*rsa.PublicKey, error) {
	nb, err := base64.RawURLEncoding.DecodeString(nB64)
	if err != nil {
		return nil, err
	}
	eb, err := base64.RawURLEncoding.DecodeString(eB64)
	if err != nil {
		return nil, err
	}

	e := 0
	for _, b := range eb {
		e = e<<8 + int(b)
	}
	if e == 0 {
		return nil, fmt.Errorf("invalid exponent")
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nb), E: e}, nil
}
