package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fivetwenty-io/oneroster/internal/constants"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// OAuth2Config holds the client credentials grant settings.
type OAuth2Config struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
	// HTTPClient is used for token requests. Defaults to a client with a
	// short timeout.
	HTTPClient *http.Client
}

// OAuth2Authenticator sets a bearer token obtained with the client
// credentials grant. Tokens are cached and renewed by the token source.
type OAuth2Authenticator struct {
	source oauth2.TokenSource
}

// NewOAuth2Authenticator creates an authenticator for config.
func NewOAuth2Authenticator(ctx context.Context, config *OAuth2Config) (*OAuth2Authenticator, error) {
	if config.TokenURL == "" {
		return nil, constants.ErrMissingTokenURL
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: constants.ShortHTTPTimeout}
	}

	ccConfig := &clientcredentials.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		TokenURL:     config.TokenURL,
		Scopes:       config.Scopes,
	}

	tokenCtx := context.WithValue(ctx, oauth2.HTTPClient, httpClient)

	return &OAuth2Authenticator{
		source: ccConfig.TokenSource(tokenCtx),
	}, nil
}

// Authenticate implements Authenticator.
func (a *OAuth2Authenticator) Authenticate(req *http.Request) error {
	token, err := a.source.Token()
	if err != nil {
		return fmt.Errorf("fetching oauth2 token: %w", err)
	}

	token.SetAuthHeader(req)

	return nil
}
