package jwt

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	jwtgo "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupKeys(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	SetKeys(key)
}

func signClaims(t *testing.T, claims jwtgo.RegisteredClaims) string {
	signed, err := jwtgo.NewWithClaims(jwtgo.SigningMethodRS256, claims).SignedString(privateKey)
	require.NoError(t, err)
	return signed
}

func TestSignAndValidatePlayerID(t *testing.T) {
	setupKeys(t)

	sign, err := Sign("user-18", time.Hour)
	assert.NoError(t, err)

	id, err := ValidPlayerID(sign)
	assert.NoError(t, err)
	assert.Equal(t, "user-18", id)
}

func TestValidPlayerID_InvalidAudience(t *testing.T) {
	setupKeys(t)

	id, err := ValidPlayerID(signClaims(t, jwtgo.RegisteredClaims{
		Audience: jwtgo.ClaimStrings{"different-audience"},
		ID:       uuid.New().String(),
		IssuedAt: jwtgo.NewNumericDate(time.Now()),
		Issuer:   Issuer,
		Subject:  "15",
	}))
	assert.EqualError(t, err, "invalid audience")
	assert.Equal(t, "", id)
}

func TestValidPlayerID_InvalidIssuer(t *testing.T) {
	setupKeys(t)

	id, err := ValidPlayerID(signClaims(t, jwtgo.RegisteredClaims{
		Audience: jwtgo.ClaimStrings{Audience},
		ID:       uuid.New().String(),
		IssuedAt: jwtgo.NewNumericDate(time.Now()),
		Issuer:   "invalid-issuer",
		Subject:  "15",
	}))
	assert.EqualError(t, err, "invalid issuer")
	assert.Equal(t, "", id)
}

func TestValidPlayerID_MissingSubject(t *testing.T) {
	setupKeys(t)

	_, err := ValidPlayerID(signClaims(t, jwtgo.RegisteredClaims{
		Audience: jwtgo.ClaimStrings{Audience},
		Issuer:   Issuer,
	}))
	assert.EqualError(t, err, "missing subject")
}

func TestValidPlayerID_Expired(t *testing.T) {
	setupKeys(t)

	id, err := ValidPlayerID(signClaims(t, jwtgo.RegisteredClaims{
		Audience:  jwtgo.ClaimStrings{Audience},
		ID:        uuid.New().String(),
		IssuedAt:  jwtgo.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		Issuer:    Issuer,
		ExpiresAt: jwtgo.NewNumericDate(time.Now().Add(-time.Hour)),
		Subject:   "15",
	}))
	assert.ErrorIs(t, err, jwtgo.ErrTokenExpired)
	assert.Equal(t, "", id)
}

func TestValidPlayerID_WrongKey(t *testing.T) {
	setupKeys(t)
	signed, err := Sign("p1", 0)
	require.NoError(t, err)

	setupKeys(t)
	_, err = ValidPlayerID(signed)
	assert.Error(t, err)
}
