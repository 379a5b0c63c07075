package oneroster

import (
	"fmt"
	"time"

	"github.com/fivetwenty-io/oneroster/internal/constants"
	"github.com/go-playground/validator/v10"
)

// PageLimit is the default page size used whenever a read omits "limit".
const PageLimit = constants.PageLimit

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config represents client configuration for building a Connection.
//
// # Authentication
//
// AppID and AppSecret are the two-legged credential issued by the roster
// provider. With AuthScheme "oauth1" (the default) every request is signed
// with OAuth 1.0a HMAC-SHA1. With "oauth2" the pair is exchanged for a bearer
// token at TokenURL using the client credentials grant.
//
// # Retries
//
// RetryMax only covers connection errors in the transport. A response that
// arrived is never retried by the connection, whatever its status.
// RetryAttempts is read by the resource clients, which retry gateway
// timeouts on the caller's side.
type Config struct {
	// AppID is the consumer key / client id.
	AppID string `validate:"required"`
	// AppSecret is the consumer secret / client secret. It is never logged.
	AppSecret string `validate:"required"`
	// APIURL is the base URL of the roster API, for example
	// "https://example.oneroster.com/ims/oneroster/v1p1".
	APIURL string `validate:"required,url"`

	// Logger receives request lifecycle logs. Optional.
	Logger Logger `validate:"-"`
	// ErrorSink receives fatal conditions (gateway timeouts). Optional.
	ErrorSink ErrorSink `validate:"-"`

	// AuthScheme is "oauth1" (default) or "oauth2".
	AuthScheme string `validate:"omitempty,oneof=oauth1 oauth2"`
	// TokenURL is the OAuth 2 token endpoint. Required with "oauth2".
	TokenURL string `validate:"omitempty,url"`
	// Scopes are requested with the OAuth 2 client credentials grant.
	Scopes []string

	// UserAgent overrides the default User-Agent header.
	UserAgent string
	// Debug enables transport-level request/response logging.
	Debug bool
	// HTTPTimeout bounds each HTTP attempt. Defaults to 30s.
	HTTPTimeout time.Duration `validate:"gte=0"`
	// RetryMax is the number of transport retries for connection errors.
	RetryMax int `validate:"gte=0"`
	// RetryAttempts is the number of caller-side retries on gateway timeouts
	// performed by resource clients. Zero disables them.
	RetryAttempts int `validate:"gte=0"`

	// UsernameSource selects how user records resolve their username:
	// "sourcedId" uses the uid, "username" the provider's username field,
	// anything else is read as a literal field name.
	UsernameSource string
}

// Validate checks required fields and formats.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigRequired
	}

	err := validate.Struct(c)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if c.AuthScheme == constants.AuthSchemeOAuth2 && c.TokenURL == "" {
		return fmt.Errorf("invalid config: %w", ErrTokenURLRequired)
	}

	return nil
}

// Redacted returns a copy safe to display, with the secret masked.
func (c Config) Redacted() Config {
	if c.AppSecret != "" {
		c.AppSecret = constants.MaskedSecret
	}

	return c
}

func (c *Config) authScheme() string {
	if c.AuthScheme == "" {
		return constants.AuthSchemeOAuth1
	}

	return c.AuthScheme
}

func (c *Config) httpTimeout() time.Duration {
	if c.HTTPTimeout <= 0 {
		return constants.DefaultHTTPTimeout
	}

	return c.HTTPTimeout
}
