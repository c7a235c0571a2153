package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/staff-service/internal/domain"
)

func testStaff() *domain.StaffMember {
	return &domain.StaffMember{
		ID:        "5f0c1a2e-8d1b-4c0e-9d7a-2b3c4d5e6f70",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Team:      "platform",
		Role:      domain.StaffRoleAdmin,
		Active:    true,
	}
}

func TestSessionMinter_MintAndVerify(t *testing.T) {
	minter := NewSessionMinter("access-secret", "refresh-secret", time.Hour, 2*time.Hour)
	issued := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	minter.now = func() time.Time { return issued }

	pair, err := minter.Mint(testStaff())
	require.NoError(t, err)
	assert.Equal(t, issued.Add(time.Hour), pair.AccessExpiresAt)
	assert.Equal(t, issued.Add(2*time.Hour), pair.RefreshExpiresAt)

	claims, err := minter.Verify(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "5f0c1a2e-8d1b-4c0e-9d7a-2b3c4d5e6f70", claims.ID)
	assert.Equal(t, domain.StaffRoleAdmin, claims.Role)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "platform", claims.Team)
	assert.Equal(t, "Ada", claims.FirstName)
	assert.Equal(t, "Lovelace", claims.LastName)
	assert.Equal(t, claims.ID, claims.Subject)

	refreshClaims, err := minter.VerifyRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, claims.ID, refreshClaims.ID)
}

func TestSessionMinter_SecretsAreNotInterchangeable(t *testing.T) {
	minter := NewSessionMinter("access-secret", "refresh-secret", 0, 0)
	pair, err := minter.Mint(testStaff())
	require.NoError(t, err)

	_, err = minter.Verify(pair.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrInvalidCredential)
	_, err = minter.VerifyRefresh(pair.AccessToken)
	assert.ErrorIs(t, err, domain.ErrInvalidCredential)
}

func TestSessionMinter_DefaultTTLs(t *testing.T) {
	minter := NewSessionMinter("a", "b", 0, -time.Second)
	assert.Equal(t, DefaultAccessTTL, minter.accessTTL)
	assert.Equal(t, DefaultRefreshTTL, minter.refreshTTL)
}

func TestSessionMinter_Expired(t *testing.T) {
	minter := NewSessionMinter("access-secret", "refresh-secret", time.Hour, 2*time.Hour)
	issued := time.Now().Add(-3 * time.Hour)
	minter.now = func() time.Time { return issued }
	pair, err := minter.Mint(testStaff())
	require.NoError(t, err)

	minter.now = time.Now
	_, err = minter.Verify(pair.AccessToken)
	assert.ErrorIs(t, err, domain.ErrInvalidCredential)
	_, err = minter.VerifyRefresh(pair.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrInvalidCredential)
}

func TestSessionMinter_MissingSecret(t *testing.T) {
	minter := NewSessionMinter("", "refresh-secret", time.Hour, time.Hour)

	_, err := minter.Mint(testStaff())
	assert.ErrorIs(t, err, domain.ErrSigningKeyMissing)
	_, err = minter.Verify("anything")
	assert.ErrorIs(t, err, domain.ErrSigningKeyMissing)
}

func TestSessionMinter_RejectsOtherAlgorithms(t *testing.T) {
	minter := NewSessionMinter("access-secret", "refresh-secret", time.Hour, time.Hour)
	claims := ClaimsFor(testStaff())
	claims.RegisteredClaims = jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, &claims).SignedString([]byte("access-secret"))
	require.NoError(t, err)

	_, err = minter.Verify(signed)
	assert.ErrorIs(t, err, domain.ErrInvalidCredential)
}

func TestSessionMinter_RejectsMissingExpiry(t *testing.T) {
	minter := NewSessionMinter("access-secret", "refresh-secret", time.Hour, time.Hour)
	claims := ClaimsFor(testStaff())

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims).SignedString([]byte("access-secret"))
	require.NoError(t, err)

	_, err = minter.Verify(signed)
	assert.ErrorIs(t, err, domain.ErrInvalidCredential)
}

func TestSessionMinter_Garbage(t *testing.T) {
	minter := NewSessionMinter("access-secret", "refresh-secret", time.Hour, time.Hour)
	_, err := minter.Verify("not.a.jwt")
	assert.ErrorIs(t, err, domain.ErrInvalidCredential)
}
