package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBcryptHasher_HashAndCompare(t *testing.T) {
	h := NewBcryptHasher(4) // minimum cost, keeps the test fast

	salt, err := h.GenerateSalt()
	require.NoError(t, err)
	require.Len(t, salt, 64) // 32 bytes hex-encoded

	hash, err := h.Hash(salt, "correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	require.NoError(t, h.Compare(hash, salt, "correct horse battery staple"))
	assert.Error(t, h.Compare(hash, salt, "wrong password"))
	assert.Error(t, h.Compare(hash, "other-salt", "correct horse battery staple"))
}

func TestBcryptHasher_SaltsAreUnique(t *testing.T) {
	h := NewBcryptHasher(0)
	a, err := h.GenerateSalt()
	require.NoError(t, err)
	b, err := h.GenerateSalt()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
