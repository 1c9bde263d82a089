package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("correct horse", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.NoError(t, ComparePassword(hash, "correct horse"))
	assert.ErrorIs(t, ComparePassword(hash, "battery staple"), ErrPasswordMismatch)
}

func TestHashPasswordFallsBackToDefaultCost(t *testing.T) {
	hash, err := HashPassword("pw", 0)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}
