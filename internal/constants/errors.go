package constants

import "errors"

// Configuration errors.
var (
	ErrNoAPIURLConfigured    = errors.New("no API URL configured, use 'oneroster config set api_url <url>'")
	ErrNoCredentials         = errors.New("no credentials configured, use 'oneroster config init'")
	ErrUnknownConfigKey      = errors.New("unknown configuration key")
	ErrTerminalRequired      = errors.New("a terminal is required to read the app secret")
	ErrInvalidOutputFormat   = errors.New("invalid output format")
	ErrUnsupportedAuthScheme = errors.New("unsupported auth scheme")
	ErrInvalidRetries        = errors.New("retries must be a non-negative integer")
)

// Auth errors.
var (
	ErrMissingConsumerKey = errors.New("oauth1 consumer key is required")
	ErrMissingTokenURL    = errors.New("oauth2 token URL is required")
)
