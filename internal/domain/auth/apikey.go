package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"github.com/go-faster/errors"
)

// ErrUnauthorized is returned for any failed API key check. The cause is
// deliberately not distinguished.
var ErrUnauthorized = errors.New("unauthorized")

// APIKeyInfo holds the identity data for a validated back office API key.
type APIKeyInfo struct {
	ID      string
	KeyHash string
	Name    string
}

// Repository provides lookup of API keys by their HMAC-SHA256 hash.
type Repository interface {
	FindByHash(ctx context.Context, hash string) (*APIKeyInfo, error)
}

// Verifier authenticates raw API keys against peppered HMAC-SHA256 hashes
// stored in the repository.
type Verifier struct {
	repo   Repository
	pepper []byte
}

// NewVerifier creates a Verifier with the given repository and HMAC pepper.
func NewVerifier(repo Repository, pepper []byte) *Verifier {
	return &Verifier{repo: repo, pepper: pepper}
}

// HashKey computes the peppered HMAC-SHA256 of a raw API key, hex encoded.
func HashKey(pepper []byte, key string) string {
	mac := hmac.New(sha256.New, pepper)
	mac.Write([]byte(key))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify authenticates a raw API key. It computes the peppered hash, looks it
// up, and compares in constant time to guard against timing side-channels
// even though the lookup already succeeded.
func (v *Verifier) Verify(ctx context.Context, key string) (*APIKeyInfo, error) {
	mac := hmac.New(sha256.New, v.pepper)
	mac.Write([]byte(key))
	computed := mac.Sum(nil)

	info, err := v.repo.FindByHash(ctx, hex.EncodeToString(computed))
	if err != nil {
		return nil, ErrUnauthorized
	}

	stored, err := hex.DecodeString(info.KeyHash)
	if err != nil {
		return nil, ErrUnauthorized
	}
	if subtle.ConstantTimeCompare(computed, stored) != 1 {
		return nil, ErrUnauthorized
	}
	return info, nil
}
