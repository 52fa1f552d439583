package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/ytarchive/errs"
)

func writeCreds(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "creds-user.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadCredentials(t *testing.T) {
	path := writeCreds(t, `{
		"token": "ya29.abc",
		"refresh_token": "1//refresh",
		"client_id": "id.apps.googleusercontent.com",
		"client_secret": "secret",
		"token_uri": "https://oauth2.googleapis.com/token",
		"scopes": ["https://www.googleapis.com/auth/youtube.readonly"],
		"expiry": "2030-01-02T03:04:05Z"
	}`)

	c, err := LoadCredentials(path)
	require.NoError(t, err)
	assert.Equal(t, "ya29.abc", c.Token)
	assert.True(t, c.Refreshable())
	assert.Equal(t, []string{ReadOnlyScope}, c.Scopes)
	assert.Equal(t, 2030, c.Expiry.Year())

	tok := c.OAuthToken()
	assert.True(t, tok.Valid())
}

func TestLoadCredentialsErrors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.json") }},
		{"malformed", func(t *testing.T) string { return writeCreds(t, `{"token":`) }},
		{"no tokens", func(t *testing.T) string { return writeCreds(t, `{"client_id":"x"}`) }},
		{"refresh without client", func(t *testing.T) string { return writeCreds(t, `{"refresh_token":"r"}`) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCredentials(tt.path(t))
			require.Error(t, err)
			assert.ErrorIs(t, err, errs.ErrInvalidCredentials)
		})
	}
}

func TestDefaultTokenURI(t *testing.T) {
	c, err := ParseCredentials([]byte(`{"token":"t"}`))
	require.NoError(t, err)
	assert.Equal(t, DefaultTokenURI, c.TokenURI)
	assert.False(t, c.Refreshable())
}

func TestStaticTokenSource(t *testing.T) {
	c, err := ParseCredentials([]byte(`{"token":"only-access"}`))
	require.NoError(t, err)

	tok, err := c.TokenSource(context.Background()).Token()
	require.NoError(t, err)
	assert.Equal(t, "only-access", tok.AccessToken)
}

func TestTokenSourceRefreshes(t *testing.T) {
	var gotGrant, gotRefresh string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotGrant = r.PostForm.Get("grant_type")
		gotRefresh = r.PostForm.Get("refresh_token")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"fresh","token_type":"Bearer","expires_in":3600}`))
	}))
	defer srv.Close()

	c := &Credentials{
		Token:        "stale",
		RefreshToken: "1//refresh",
		ClientID:     "id",
		ClientSecret: "secret",
		TokenURI:     srv.URL,
		Expiry:       time.Now().Add(-time.Hour),
	}

	tok, err := c.TokenSource(context.Background()).Token()
	require.NoError(t, err)
	assert.Equal(t, "fresh", tok.AccessToken)
	assert.Equal(t, "refresh_token", gotGrant)
	assert.Equal(t, "1//refresh", gotRefresh)
}

func TestNoExpiryForcesRefresh(t *testing.T) {
	c := &Credentials{Token: "t", RefreshToken: "r", ClientID: "id"}
	assert.False(t, c.OAuthToken().Valid())

	c = &Credentials{Token: "t"}
	assert.True(t, c.OAuthToken().Valid())
}
