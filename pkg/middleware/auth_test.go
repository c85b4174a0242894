package middleware_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/middleware"
)

func TestSignAndParseToken(t *testing.T) {
	userID := uuid.New()
	secret := "test-secret"
	expiry := time.Now().Add(time.Hour)

	token := middleware.SignToken(userID, expiry, secret)

	parsed, err := middleware.ParseToken(token, secret, time.Now())
	require.NoError(t, err)
	require.Equal(t, userID, parsed)
}

func TestParseTokenRejectsTampered(t *testing.T) {
	userID := uuid.New()
	expiry := time.Now().Add(time.Hour)
	token := middleware.SignToken(userID, expiry, "secret-a")

	_, err := middleware.ParseToken(token, "secret-b", time.Now())
	require.ErrorIs(t, err, middleware.ErrInvalidToken)

	_, err = middleware.ParseToken("not-a-token", "secret-a", time.Now())
	require.ErrorIs(t, err, middleware.ErrInvalidToken)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	userID := uuid.New()
	expiry := time.Now().Add(-time.Minute)
	token := middleware.SignToken(userID, expiry, "secret")

	_, err := middleware.ParseToken(token, "secret", time.Now())
	require.ErrorIs(t, err, middleware.ErrTokenExpired)
}
