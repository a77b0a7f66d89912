package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "vims/pkg/domain"
	dErrors "vims/pkg/domain-errors"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := NewService("test-signing-key", "vims-test")
	userID := id.NewUserID()

	token, err := svc.GenerateAccessToken(userID, "session-1", time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "session-1", claims.SessionID)
}

func TestValidateRejectsWrongKey(t *testing.T) {
	signer := NewService("key-one", "vims-test")
	verifier := NewService("key-two", "vims-test")

	token, err := signer.GenerateAccessToken(id.NewUserID(), "session-1", time.Hour)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateRejectsExpired(t *testing.T) {
	svc := NewService("test-signing-key", "vims-test")

	token, err := svc.GenerateAccessToken(id.NewUserID(), "session-1", -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	assert.Contains(t, err.Error(), "expired")
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := NewService("test-signing-key", "vims-test")

	_, err := svc.ValidateToken("not.a.token")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
