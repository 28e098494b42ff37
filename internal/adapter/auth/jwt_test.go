package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func TestVerifier_RoundTrip(t *testing.T) {
	v := NewVerifier(testSecret)
	userID := uuid.New()

	token, err := v.Sign(userID, time.Hour)
	require.NoError(t, err)

	got, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestVerifier_VerifyHeader(t *testing.T) {
	v := NewVerifier(testSecret)
	userID := uuid.New()
	token, err := v.Sign(userID, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		wantErr error
	}{
		{name: "Bearer prefix", header: "Bearer " + token},
		{name: "Lowercase bearer", header: "bearer " + token},
		{name: "Bare token", header: token},
		{name: "Empty header", header: "", wantErr: ErrMissingToken},
		{name: "Bearer without token", header: "Bearer ", wantErr: ErrMissingToken},
		{name: "Garbage", header: "Bearer not-a-jwt", wantErr: ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.VerifyHeader(tt.header)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, userID, got)
		})
	}
}

func TestVerifier_Rejects(t *testing.T) {
	v := NewVerifier(testSecret)
	userID := uuid.New()

	sign := func(method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	future := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name  string
		token string
	}{
		{"Wrong secret", sign(jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"sub": userID.String(), "exp": future})},
		{"Expired", sign(jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": userID.String(), "exp": time.Now().Add(-time.Minute).Unix()})},
		{"No expiry", sign(jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": userID.String()})},
		{"Missing subject", sign(jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"exp": future})},
		{"Subject is an email", sign(jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "user@example.com", "exp": future})},
		{"Unsigned", sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, jwt.MapClaims{"sub": userID.String(), "exp": future})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(tt.token)
			assert.True(t, errors.Is(err, ErrInvalidToken), "got %v", err)
		})
	}
}

func TestUserIDContext(t *testing.T) {
	ctx := context.Background()

	_, ok := UserIDFromContext(ctx)
	assert.False(t, ok)

	userID := uuid.New()
	got, ok := UserIDFromContext(WithUserID(ctx, userID))
	assert.True(t, ok)
	assert.Equal(t, userID, got)

	_, ok = UserIDFromContext(WithUserID(ctx, uuid.Nil))
	assert.False(t, ok)
}
