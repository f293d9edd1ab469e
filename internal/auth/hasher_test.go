package auth

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestHasher(t *testing.T) *BcryptHasher {
	t.Helper()
	h, err := NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func TestHashPassword_RoundTrip(t *testing.T) {
	h := newTestHasher(t)
	ctx := context.Background()

	for _, pw := range []string{"Secret123", "", "pässwörd ✓", strings.Repeat("x", 72)} {
		cred, err := h.HashPassword(ctx, pw)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(cred.Hash, cred.Salt), "hash embeds its salt")
		assert.Len(t, cred.Salt, 29)

		ok, err := h.VerifyPassword(ctx, pw, cred.Hash)
		require.NoError(t, err)
		assert.True(t, ok, "password %q should verify", pw)
	}
}

func TestVerifyPassword_WrongPassword(t *testing.T) {
	h := newTestHasher(t)
	ctx := context.Background()

	cred, err := h.HashPassword(ctx, "Secret123")
	require.NoError(t, err)

	ok, err := h.VerifyPassword(ctx, "Secret124", cred.Hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPassword_NonDeterministic(t *testing.T) {
	h := newTestHasher(t)
	ctx := context.Background()

	a, err := h.HashPassword(ctx, "same")
	require.NoError(t, err)
	b, err := h.HashPassword(ctx, "same")
	require.NoError(t, err)

	assert.NotEqual(t, a.Salt, b.Salt)
	assert.NotEqual(t, a.Hash, b.Hash)
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	h := newTestHasher(t)

	_, err := h.VerifyPassword(context.Background(), "pw", "not-a-bcrypt-hash")
	assert.ErrorIs(t, err, ErrHashing)
}

func TestVerifyPassword_RejectsOverLimit(t *testing.T) {
	h := newTestHasher(t)
	ctx := context.Background()
	pw := strings.Repeat("z", MaxPasswordBytes)

	cred, err := h.HashPassword(ctx, pw)
	require.NoError(t, err)

	ok, err := h.VerifyPassword(ctx, pw, cred.Hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.VerifyPassword(ctx, pw+"suffix", cred.Hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPassword_TooLong(t *testing.T) {
	h := newTestHasher(t)

	_, err := h.HashPassword(context.Background(), strings.Repeat("x", 73))
	assert.ErrorIs(t, err, ErrHashing)
}

func TestHashPassword_Cancelled(t *testing.T) {
	h := newTestHasher(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.HashPassword(ctx, "pw")
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrHashing)

	_, err = h.VerifyPassword(ctx, "pw", "$2a$04$abcdefghijklmnopqrstuu")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewBcryptHasher_Cost(t *testing.T) {
	h, err := NewBcryptHasher(0)
	require.NoError(t, err)
	assert.Equal(t, DefaultHashCost, h.Cost())

	_, err = NewBcryptHasher(bcrypt.MaxCost + 1)
	assert.Error(t, err)
	_, err = NewBcryptHasher(2)
	assert.Error(t, err)
}

func TestHashPassword_UsesConfiguredCost(t *testing.T) {
	h, err := NewBcryptHasher(5)
	require.NoError(t, err)
	cred, err := h.HashPassword(context.Background(), "pw")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(cred.Hash))
	require.NoError(t, err)
	assert.Equal(t, 5, cost)
}
