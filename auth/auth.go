// Package auth loads a stored OAuth2 token bundle and turns it into a
// refreshing token source.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/ytget/ytarchive/errs"
	"github.com/ytget/ytarchive/internal/logger"
)

// DefaultTokenURI is used when the bundle does not name a token endpoint.
const DefaultTokenURI = "https://oauth2.googleapis.com/token"

// ReadOnlyScope grants read access to the user's account.
const ReadOnlyScope = "https://www.googleapis.com/auth/youtube.readonly"

// Credentials mirrors the authorized-user token bundle written by Google's
// client libraries.
type Credentials struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refresh_token"`
	ClientID     string    `json:"client_id"`
	ClientSecret string    `json:"client_secret"`
	TokenURI     string    `json:"token_uri"`
	Scopes       []string  `json:"scopes"`
	Expiry       time.Time `json:"expiry,omitzero"`
}

// LoadCredentials reads and validates a credentials file.
func LoadCredentials(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credentials %s: %w: %w", path, errs.ErrInvalidCredentials, err)
	}
	creds, err := ParseCredentials(data)
	if err != nil {
		return nil, fmt.Errorf("credentials %s: %w", path, err)
	}
	logger.WithComponent(logger.ComponentAuth).Debug("credentials loaded", map[string]any{
		"path":          path,
		"scopes":        strings.Join(creds.Scopes, " "),
		"refreshable":   creds.Refreshable(),
		"has_token":     creds.Token != "",
		"token_expires": creds.Expiry,
	})
	return creds, nil
}

// ParseCredentials decodes a credentials JSON document.
func ParseCredentials(data []byte) (*Credentials, error) {
	var c Credentials
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidCredentials, err)
	}
	if c.Token == "" && c.RefreshToken == "" {
		return nil, fmt.Errorf("%w: neither token nor refresh_token is set", errs.ErrInvalidCredentials)
	}
	if c.RefreshToken != "" && c.ClientID == "" {
		return nil, fmt.Errorf("%w: refresh_token requires client_id", errs.ErrInvalidCredentials)
	}
	if c.TokenURI == "" {
		c.TokenURI = DefaultTokenURI
	}
	return &c, nil
}

// Refreshable reports whether an expired access token can be renewed.
func (c *Credentials) Refreshable() bool {
	return c.RefreshToken != "" && c.ClientID != ""
}

// OAuthConfig returns the client configuration used for token refresh.
func (c *Credentials) OAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.TokenURI,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		Scopes: c.Scopes,
	}
}

// OAuthToken returns the stored token. A bundle without expiry but with a
// refresh token is treated as expired so the first request refreshes it.
func (c *Credentials) OAuthToken() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  c.Token,
		RefreshToken: c.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       c.Expiry,
	}
	if c.Token == "" || (c.Expiry.IsZero() && c.Refreshable()) {
		tok.Expiry = time.Unix(1, 0)
	}
	return tok
}

// TokenSource returns a token source that refreshes through the token
// endpoint when the stored token expires. ctx governs refresh requests.
func (c *Credentials) TokenSource(ctx context.Context) oauth2.TokenSource {
	if !c.Refreshable() {
		return oauth2.StaticTokenSource(c.OAuthToken())
	}
	return c.OAuthConfig().TokenSource(ctx, c.OAuthToken())
}
