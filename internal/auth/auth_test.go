package auth

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Rrens/knowledge-drive/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestTokenSourceWithoutToken(t *testing.T) {
	s := NewSession("id", "secret", filepath.Join(t.TempDir(), "token.json"))

	_, err := s.TokenSource(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestTokenSaveLoadRoundTrip(t *testing.T) {
	s := NewSession("id", "secret", filepath.Join(t.TempDir(), "token.json"))

	in := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour).Round(time.Second),
	}
	require.NoError(t, s.saveToken(in))

	out, err := s.loadToken()
	require.NoError(t, err)
	assert.Equal(t, in.AccessToken, out.AccessToken)
	assert.Equal(t, in.RefreshToken, out.RefreshToken)
	assert.True(t, in.Expiry.Equal(out.Expiry))
}

func TestLoadTokenRejectsEmptyToken(t *testing.T) {
	s := NewSession("id", "secret", filepath.Join(t.TempDir(), "token.json"))
	require.NoError(t, s.saveToken(&oauth2.Token{}))

	_, err := s.loadToken()
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}
