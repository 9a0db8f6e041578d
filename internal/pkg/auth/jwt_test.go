// internal/pkg/auth/jwt_test.go
package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sokohub/sokohub-backend/internal/config"
)

func testManager() *JWTManager {
	return NewJWTManager(&config.Config{
		App: config.AppConfig{Name: "test"},
		JWT: config.JWTConfig{
			Secret:             "test-secret-that-is-long-enough-for-hmac",
			AccessTokenExpiry:  time.Hour,
			RefreshTokenExpiry: 24 * time.Hour,
		},
	})
}

func TestIssuePairAndParse(t *testing.T) {
	m := testManager()

	pair, err := m.IssuePair(42, "jane@example.com", true)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	access, err := m.ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(42), access.UserID)
	assert.Equal(t, "jane@example.com", access.Email)
	assert.True(t, access.Admin)
	assert.Equal(t, TokenAccess, access.Kind)

	refresh, err := m.ParseRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, uint(42), refresh.UserID)
	assert.False(t, refresh.Admin, "refresh tokens never carry the admin claim")
}

func TestParseRejectsWrongKind(t *testing.T) {
	m := testManager()

	pair, err := m.IssuePair(1, "x@example.com", false)
	require.NoError(t, err)

	_, err = m.ParseAccess(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.ParseRefresh(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsForeignSecret(t *testing.T) {
	m := testManager()
	other := NewJWTManager(&config.Config{
		App: config.AppConfig{Name: "test"},
		JWT: config.JWTConfig{
			Secret:             "another-secret-entirely-also-long-enough",
			AccessTokenExpiry:  time.Hour,
			RefreshTokenExpiry: time.Hour,
		},
	})

	pair, err := other.IssuePair(1, "x@example.com", false)
	require.NoError(t, err)

	_, err = m.ParseAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractTokenFromHeader(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi"},
		{"bearer abc.def.ghi", "abc.def.ghi"},
		{"Basic dXNlcjpwYXNz", ""},
		{"Bearer", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractTokenFromHeader(tt.header))
	}
}
