package server

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/unihan-tabular/internal/config"
)

func TestTokenService_RoundTrip(t *testing.T) {
	tokens := testTokens(t)

	token, err := tokens.GenerateToken("ops")
	require.NoError(t, err)

	claims, err := tokens.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
	assert.Equal(t, ScopeWrite, claims.Scope)
	assert.Equal(t, config.AppName, claims.Issuer)

	subject, err := tokens.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, "ops", subject)
}

func TestTokenService_EmptySubject(t *testing.T) {
	_, err := testTokens(t).GenerateToken("")
	assert.Error(t, err)
}

func TestTokenService_Expired(t *testing.T) {
	tokens := testTokens(t)
	issued := time.Now().Add(-2 * time.Hour)
	tokens.now = func() time.Time { return issued }
	token, err := tokens.GenerateToken("ops")
	require.NoError(t, err)

	tokens.now = time.Now
	_, err = tokens.ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token expired")
}

func TestTokenService_Rejects(t *testing.T) {
	tokens := testTokens(t)

	other := NewTokenService(&config.TokenConfig{Secret: "another-secret-of-32-characters!", ExpirationHours: 1, Issuer: config.AppName})
	foreign, err := other.GenerateToken("ops")
	require.NoError(t, err)

	readOnly, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Scope: "read",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "viewer",
			Issuer:    config.AppName,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	otherIssuer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Scope: ScopeWrite,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "ops",
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr string
	}{
		{name: "empty", token: "", wantErr: "empty"},
		{name: "garbage", token: "not.a.token", wantErr: "malformed token"},
		{name: "wrong secret", token: foreign, wantErr: "invalid token signature"},
		{name: "read scope", token: readOnly, wantErr: "does not allow writes"},
		{name: "wrong issuer", token: otherIssuer, wantErr: "failed to parse token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tokens.Authenticate(tt.token)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
