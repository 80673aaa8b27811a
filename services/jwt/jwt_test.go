package jwt

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	userID := uuid.NewString()
	token, err := GenerateToken(userID, "secret")
	require.NoError(t, err)

	claims, err := ValidateAndGetClaims(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, userID, claims["id"])
}

func TestValidate_WrongSecret(t *testing.T) {
	token, err := GenerateToken(uuid.NewString(), "secret")
	require.NoError(t, err)

	_, err = ValidateAndGetClaims(token, "other-secret")
	assert.Error(t, err)
}

func TestValidate_Garbage(t *testing.T) {
	_, err := ValidateAndGetClaims("not-a-token", "secret")
	assert.Error(t, err)
}
