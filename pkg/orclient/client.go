// Package orclient provides the main entry point for creating roster API clients.
package orclient

import (
	"fmt"
	"strings"

	"github.com/fivetwenty-io/oneroster/internal/client"
	"github.com/fivetwenty-io/oneroster/internal/constants"
	"github.com/fivetwenty-io/oneroster/pkg/oneroster"
)

// New creates a roster API client from config. The config is copied; later
// changes to it have no effect on the client.
func New(config *oneroster.Config, opts ...oneroster.ConnectionOption) (oneroster.Client, error) {
	if config == nil {
		return nil, oneroster.ErrConfigRequired
	}

	cfg := *config
	cfg.APIURL = normalizeURL(cfg.APIURL)

	conn, err := oneroster.NewConnection(cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection: %w", err)
	}

	return client.New(conn), nil
}

// NewWithCredentials creates a client signing requests with OAuth 1.0a.
func NewWithCredentials(apiURL, appID, appSecret string) (oneroster.Client, error) {
	return New(&oneroster.Config{
		APIURL:    apiURL,
		AppID:     appID,
		AppSecret: appSecret,
	})
}

// NewWithClientCredentials creates a client authenticating with an OAuth 2
// client credentials grant against tokenURL.
func NewWithClientCredentials(apiURL, tokenURL, clientID, clientSecret string, scopes ...string) (oneroster.Client, error) {
	return New(&oneroster.Config{
		APIURL:     apiURL,
		AppID:      clientID,
		AppSecret:  clientSecret,
		AuthScheme: constants.AuthSchemeOAuth2,
		TokenURL:   tokenURL,
		Scopes:     scopes,
	})
}

// normalizeURL trims trailing slashes and defaults the scheme to https.
func normalizeURL(apiURL string) string {
	apiURL = strings.TrimRight(strings.TrimSpace(apiURL), "/")
	if apiURL == "" {
		return apiURL
	}

	if !strings.HasPrefix(apiURL, "http://") && !strings.HasPrefix(apiURL, "https://") {
		apiURL = "https://" + apiURL
	}

	return apiURL
}
