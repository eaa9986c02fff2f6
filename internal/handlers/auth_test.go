package handlers

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("irrelevant"))
	require.NoError(t, err)
	return token
}

func TestDecodeClaims(t *testing.T) {
	token := sign(t, jwt.MapClaims{
		"sub":            "user-1",
		"email":          "pat@example.com",
		"name":           "Pat Lee",
		"cognito:groups": []string{"Admins", "Members"},
	})

	claims, err := decodeClaims(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "pat@example.com", claims.Email)
	assert.Equal(t, "Pat Lee", claims.Name)
	assert.True(t, claims.InGroup("Admins"))
	assert.False(t, claims.InGroup("Reviewers"))
}

func TestDecodeClaimsNameFallsBackToUsername(t *testing.T) {
	token := sign(t, jwt.MapClaims{
		"sub":              "user-1",
		"email":            "pat@example.com",
		"cognito:username": "patlee",
	})

	claims, err := decodeClaims(token)
	require.NoError(t, err)
	assert.Equal(t, "patlee", claims.Name)
}

func TestDecodeClaimsSingleGroupString(t *testing.T) {
	token := sign(t, jwt.MapClaims{
		"sub":            "user-1",
		"cognito:groups": "Admins",
	})

	claims, err := decodeClaims(token)
	require.NoError(t, err)
	assert.True(t, claims.InGroup("Admins"))
}

func TestDecodeClaimsRequiresSubject(t *testing.T) {
	token := sign(t, jwt.MapClaims{"email": "pat@example.com"})

	_, err := decodeClaims(token)
	assert.Error(t, err)
}

func TestDecodeClaimsRejectsGarbage(t *testing.T) {
	_, err := decodeClaims("not.a.token")
	assert.Error(t, err)
}
