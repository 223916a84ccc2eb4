package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasherHashIsSaltedAndVerifiable(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	first, err := h.Hash("pw1")
	require.NoError(t, err)
	second, err := h.Hash("pw1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "two hashes of the same password must differ")
	assert.NotEqual(t, "pw1", first)
	assert.True(t, h.Check("pw1", first))
	assert.True(t, h.Check("pw1", second))
	assert.False(t, h.Check("pw2", first))
	assert.False(t, h.Check("", first))
}

func TestBcryptHasherEncodesCost(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost + 1)

	hash, err := h.Hash("secret")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost+1, cost)
}

func TestNewBcryptHasherClampsCost(t *testing.T) {
	assert.Equal(t, bcrypt.MinCost, NewBcryptHasher(0).cost)
	assert.Equal(t, bcrypt.MaxCost, NewBcryptHasher(99).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(bcrypt.DefaultCost).cost)
}

func TestBcryptHasherCheckRejectsMalformedHash(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	assert.False(t, h.Check("pw", "not-a-bcrypt-hash"))
	assert.False(t, h.Check("pw", ""))
}

func TestBcryptHasherRejectsOverlongPassword(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	_, err := h.Hash(strings.Repeat("a", 73))
	require.Error(t, err)
}
