package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

// Verifier turns a freshly generated random token into a cookie value and
// later decides whether a presented cookie value proves a login.
type Verifier interface {
	Issue(ctx context.Context, token string) (string, error)
	Verify(ctx context.Context, value string) (bool, error)
	Revoke(ctx context.Context, value string) error
}

// Mode names a Verifier implementation.
type Mode string

const (
	ModePresence Mode = "presence"
	ModeSigned   Mode = "signed"
	ModeStored   Mode = "stored"
)

// ParseMode maps SESSION_VERIFICATION onto a Mode. Empty means signed.
func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ModeSigned:
		return ModeSigned, nil
	case ModePresence:
		return ModePresence, nil
	case ModeStored:
		return ModeStored, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownVerification, raw)
	}
}

// PresenceVerifier accepts any non-empty cookie value. The value is never
// checked against anything, so a forged cookie with the right name passes.
// Kept for compatibility with deployments that depend on that behaviour.
type PresenceVerifier struct{}

func (PresenceVerifier) Issue(_ context.Context, token string) (string, error) {
	return token, nil
}

func (PresenceVerifier) Verify(_ context.Context, value string) (bool, error) {
	return value != "", nil
}

func (PresenceVerifier) Revoke(context.Context, string) error {
	return nil
}

const signedIssuer = "leadgate-admin"

// SignedVerifier wraps the random token in an HS256 JWT. Logout cannot revoke
// a copied cookie before it expires; use StoredVerifier for that.
type SignedVerifier struct {
	key    []byte
	maxAge time.Duration
	now    func() time.Time
}

// NewSignedVerifier signs with key. maxAge bounds the token lifetime.
func NewSignedVerifier(key string, maxAge time.Duration) (*SignedVerifier, error) {
	if key == "" {
		return nil, errors.New("session: signing key required")
	}
	return &SignedVerifier{key: []byte(key), maxAge: maxAge, now: time.Now}, nil
}

func (v *SignedVerifier) Issue(_ context.Context, token string) (string, error) {
	now := v.now()
	claims := jwt.RegisteredClaims{
		ID:        token,
		Issuer:    signedIssuer,
		Subject:   "admin",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(v.maxAge)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.key)
	if err != nil {
		return "", fmt.Errorf("session: sign token: %w", err)
	}
	return signed, nil
}

func (v *SignedVerifier) Verify(_ context.Context, value string) (bool, error) {
	if value == "" {
		return false, nil
	}
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(value, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return v.key, nil
	},
		jwt.WithIssuer(signedIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil || !token.Valid || claims.ID == "" {
		return false, nil
	}
	return true, nil
}

func (v *SignedVerifier) Revoke(context.Context, string) error {
	return nil
}

const storedKeyPrefix = "admin_session:"

// StoredVerifier keeps issued tokens in Redis with a TTL.
type StoredVerifier struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewStoredVerifier returns a verifier backed by client.
func NewStoredVerifier(client redis.UniversalClient, ttl time.Duration) (*StoredVerifier, error) {
	if client == nil {
		return nil, errors.New("session: redis client required")
	}
	return &StoredVerifier{client: client, ttl: ttl}, nil
}

// Keys hold the SHA-256 of the token, never the token itself.
func storedKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return storedKeyPrefix + hex.EncodeToString(sum[:])
}

func (v *StoredVerifier) Issue(ctx context.Context, token string) (string, error) {
	if err := v.client.Set(ctx, storedKey(token), time.Now().UTC().Format(time.RFC3339), v.ttl).Err(); err != nil {
		return "", fmt.Errorf("session: store token: %w", err)
	}
	return token, nil
}

func (v *StoredVerifier) Verify(ctx context.Context, value string) (bool, error) {
	if value == "" {
		return false, nil
	}
	n, err := v.client.Exists(ctx, storedKey(value)).Result()
	if err != nil {
		return false, fmt.Errorf("session: lookup token: %w", err)
	}
	return n == 1, nil
}

func (v *StoredVerifier) Revoke(ctx context.Context, value string) error {
	if value == "" {
		return nil
	}
	if err := v.client.Del(ctx, storedKey(value)).Err(); err != nil {
		return fmt.Errorf("session: revoke token: %w", err)
	}
	return nil
}

var (
	_ Verifier = PresenceVerifier{}
	_ Verifier = (*SignedVerifier)(nil)
	_ Verifier = (*StoredVerifier)(nil)
)
