package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"slices"

	"github.com/go-faster/errors"
)

// ScopeDeviceControl allows issuing fleet control actions.
const ScopeDeviceControl = "device_control"

var (
	// ErrUnauthorized is returned for missing, unknown or mismatching keys.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrKeyNotFound is returned by repositories when no key matches the hash.
	ErrKeyNotFound = errors.New("api key not found")
)

// APIKeyInfo holds the identity and permission data for a validated API key.
type APIKeyInfo struct {
	ID      string
	KeyHash string
	Name    string
	Scopes  []string
}

// HasScope reports whether the key grants scope.
func (i *APIKeyInfo) HasScope(scope string) bool {
	return slices.Contains(i.Scopes, scope)
}

// Repository provides lookup of API keys by their HMAC hash.
type Repository interface {
	FindByHash(ctx context.Context, hash string) (*APIKeyInfo, error)
}

// Service authenticates callers of protected operations.
type Service interface {
	Authenticate(ctx context.Context, rawKey string) (*APIKeyInfo, error)
}

var _ Service = (*Authenticator)(nil)

// Authenticator validates raw API keys by HMAC-SHA256 hashing them with a
// server-side pepper and looking the hash up in a Repository.
type Authenticator struct {
	keys   Repository
	pepper []byte
}

// NewAuthenticator creates an Authenticator with the given key repository and
// HMAC pepper.
func NewAuthenticator(keys Repository, pepper []byte) *Authenticator {
	return &Authenticator{keys: keys, pepper: pepper}
}

// HashKey returns the hex HMAC-SHA256 of rawKey under pepper.
func HashKey(pepper []byte, rawKey string) string {
	return hex.EncodeToString(sum(pepper, rawKey))
}

func sum(pepper []byte, rawKey string) []byte {
	mac := hmac.New(sha256.New, pepper)
	mac.Write([]byte(rawKey))
	return mac.Sum(nil)
}

// Authenticate resolves rawKey to its APIKeyInfo. The stored hash is compared
// in constant time against the computed one.
func (a *Authenticator) Authenticate(ctx context.Context, rawKey string) (*APIKeyInfo, error) {
	if rawKey == "" {
		return nil, ErrUnauthorized
	}

	hash := sum(a.pepper, rawKey)
	info, err := a.keys.FindByHash(ctx, hex.EncodeToString(hash))
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, errors.Wrap(err, "find api key")
	}

	stored, err := hex.DecodeString(info.KeyHash)
	if err != nil || subtle.ConstantTimeCompare(hash, stored) != 1 {
		return nil, ErrUnauthorized
	}
	return info, nil
}
