package session

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		raw  string
		want Mode
	}{
		{"", ModeSigned},
		{"signed", ModeSigned},
		{" Presence ", ModePresence},
		{"STORED", ModeStored},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.raw)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseMode("cookie")
	assert.ErrorIs(t, err, ErrUnknownVerification)
}

func TestPresenceVerifierAcceptsAnyValue(t *testing.T) {
	ctx := context.Background()
	v := PresenceVerifier{}

	value, err := v.Issue(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", value)

	ok, _ := v.Verify(ctx, "forged-by-anyone")
	assert.True(t, ok, "presence mode accepts any non-empty value")
	ok, _ = v.Verify(ctx, "")
	assert.False(t, ok)
}

func TestSignedVerifierRoundTrip(t *testing.T) {
	ctx := context.Background()
	v, err := NewSignedVerifier("s3cret", time.Hour)
	require.NoError(t, err)

	value, err := v.Issue(ctx, "deadbeef")
	require.NoError(t, err)
	assert.NotEqual(t, "deadbeef", value)

	ok, err := v.Verify(ctx, value)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = v.Verify(ctx, "forged")
	assert.False(t, ok)
	ok, _ = v.Verify(ctx, "")
	assert.False(t, ok)
}

func TestSignedVerifierRejectsOtherKeyAndExpiry(t *testing.T) {
	ctx := context.Background()
	issuer, _ := NewSignedVerifier("key-a", time.Hour)
	other, _ := NewSignedVerifier("key-b", time.Hour)

	value, err := issuer.Issue(ctx, "tok")
	require.NoError(t, err)
	ok, _ := other.Verify(ctx, value)
	assert.False(t, ok, "token signed with another key must fail")

	issuer.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	ok, _ = issuer.Verify(ctx, value)
	assert.False(t, ok, "expired token must fail")
}

func TestSignedVerifierRejectsNoneAlgorithm(t *testing.T) {
	v, _ := NewSignedVerifier("key", time.Hour)
	claims := jwt.RegisteredClaims{ID: "x", Issuer: signedIssuer, ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	ok, _ := v.Verify(context.Background(), unsigned)
	assert.False(t, ok)
}

func TestNewSignedVerifierNeedsKey(t *testing.T) {
	_, err := NewSignedVerifier("", time.Hour)
	assert.Error(t, err)
}

func TestStoredVerifierLifecycle(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	v, err := NewStoredVerifier(client, time.Hour)
	require.NoError(t, err)

	value, err := v.Issue(ctx, "token-1")
	require.NoError(t, err)
	assert.Equal(t, "token-1", value)
	assert.False(t, mr.Exists(storedKeyPrefix+"token-1"), "raw token must not be a key")
	assert.True(t, mr.Exists(storedKey("token-1")))

	ok, err := v.Verify(ctx, value)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = v.Verify(ctx, "token-2")
	assert.False(t, ok)

	require.NoError(t, v.Revoke(ctx, value))
	ok, _ = v.Verify(ctx, value)
	assert.False(t, ok)
	require.NoError(t, v.Revoke(ctx, value), "revoke is idempotent")
}

func TestStoredVerifierExpires(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	v, _ := NewStoredVerifier(client, time.Minute)

	value, err := v.Issue(ctx, "token")
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)

	ok, err := v.Verify(ctx, value)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoredVerifierRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	v, _ := NewStoredVerifier(client, time.Minute)
	mr.Close()

	_, err := v.Verify(context.Background(), "token")
	assert.Error(t, err)
}
