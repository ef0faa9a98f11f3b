package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/macrotrack-backend/internal/config"
)

const testSecret = "test-secret-at-least-32-chars-long-for-security"

func newTestManager(issuer string, ttl time.Duration) *JWTManager {
	return NewJWTManager(config.AuthConfig{JWTSecret: testSecret, JWTIssuer: issuer, AccessTokenTTL: ttl})
}

func TestJWTManager_IssueAndValidate(t *testing.T) {
	t.Parallel()

	m := newTestManager("macrotrack-test", 15*time.Minute)
	userID := uuid.New()

	token, expires, err := m.IssueAccessToken(userID, 0)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expires, 5*time.Second)

	got, err := m.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestJWTManager_TTLOverride(t *testing.T) {
	t.Parallel()

	m := newTestManager("macrotrack-test", 15*time.Minute)
	_, expires, err := m.IssueAccessToken(uuid.New(), 24*time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), expires, 5*time.Second)
}

func TestJWTManager_Rejects(t *testing.T) {
	t.Parallel()

	valid := newTestManager("macrotrack-test", time.Hour)
	userID := uuid.New()

	past := newTestManager("macrotrack-test", time.Hour)
	past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _, err := past.IssueAccessToken(userID, 0)
	require.NoError(t, err)

	otherIssuer, _, err := newTestManager("someone-else", time.Hour).IssueAccessToken(userID, 0)
	require.NoError(t, err)

	otherSecret, _, err := NewJWTManager(config.AuthConfig{
		JWTSecret: "another-secret-at-least-32-chars-long!!", JWTIssuer: "macrotrack-test", AccessTokenTTL: time.Hour,
	}).IssueAccessToken(userID, 0)
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   userID.String(),
		Issuer:    "macrotrack-test",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "not-a-uuid",
		Issuer:    "macrotrack-test",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: userID.String(),
		Issuer:  "macrotrack-test",
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.jwt"},
		{"expired", expired},
		{"wrong issuer", otherIssuer},
		{"wrong secret", otherSecret},
		{"none algorithm", noneAlg},
		{"bad subject", badSubject},
		{"missing expiry", noExpiry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := valid.ValidateToken(context.Background(), tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
