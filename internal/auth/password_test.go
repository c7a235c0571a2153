package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/staff-service/internal/domain"
)

func TestHashPassword(t *testing.T) {
	hashed, err := HashPassword("correct horse", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hashed)

	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hashed), []byte("correct horse")))
	assert.ErrorIs(t, bcrypt.CompareHashAndPassword([]byte(hashed), []byte("battery staple")), bcrypt.ErrMismatchedHashAndPassword)
}

func TestHashPassword_CostOutOfRangeFallsBack(t *testing.T) {
	hashed, err := HashPassword("correct horse", 99)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hashed))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestCheckPassword(t *testing.T) {
	assert.ErrorIs(t, CheckPassword("short"), domain.ErrPasswordTooShort)
	assert.NoError(t, CheckPassword(strings.Repeat("x", MinPasswordLength)))
	assert.NoError(t, CheckPassword(strings.Repeat("x", 72)))
	assert.ErrorIs(t, CheckPassword(strings.Repeat("x", 73)), domain.ErrPasswordTooLong)

	_, err := HashPassword("short", bcrypt.MinCost)
	assert.ErrorIs(t, err, domain.ErrPasswordTooShort)
}
