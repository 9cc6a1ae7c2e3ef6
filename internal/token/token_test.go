package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIssueAndParse(t *testing.T) {
	issuer := NewIssuer("access-secret-0123456789abcdefghij", "refresh-secret-0123456789abcdefghi", "test")

	t.Run("Access token round trip", func(t *testing.T) {
		tok, err := issuer.IssueAccessToken("user-1")
		assert.NoError(t, err)

		userID, err := issuer.ParseAccessToken(tok)
		assert.NoError(t, err)
		assert.Equal(t, "user-1", userID)
	})

	t.Run("Refresh token round trip", func(t *testing.T) {
		tok, err := issuer.IssueRefreshToken("user-1")
		assert.NoError(t, err)

		userID, err := issuer.ParseRefreshToken(tok)
		assert.NoError(t, err)
		assert.Equal(t, "user-1", userID)
	})

	t.Run("Access token rejected as refresh token", func(t *testing.T) {
		tok, err := issuer.IssueAccessToken("user-1")
		assert.NoError(t, err)

		_, err = issuer.ParseRefreshToken(tok)
		assert.Error(t, err)
	})

	t.Run("Refresh token rejected as access token", func(t *testing.T) {
		tok, err := issuer.IssueRefreshToken("user-1")
		assert.NoError(t, err)

		_, err = issuer.ParseAccessToken(tok)
		assert.Error(t, err)
	})

	t.Run("Token from another issuer rejected", func(t *testing.T) {
		other := NewIssuer("another-access-secret-0123456789ab", "another-refresh-secret-0123456789a", "test")

		tok, err := other.IssueAccessToken("user-1")
		assert.NoError(t, err)

		_, err = issuer.ParseAccessToken(tok)
		assert.Error(t, err)
	})

	t.Run("Garbage token rejected", func(t *testing.T) {
		_, err := issuer.ParseAccessToken("not-a-jwt")
		assert.Error(t, err)
	})
}

func TestIssuePair(t *testing.T) {
	issuer := NewIssuer("access-secret-0123456789abcdefghij", "refresh-secret-0123456789abcdefghi", "test")

	pair, err := issuer.IssuePair("user-1")
	assert.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
}
