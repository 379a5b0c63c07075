package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// Client identity.
const (
	// ClientName is the product token sent in the User-Agent header.
	ClientName = "oneroster-go"

	// ClientVersion is the library version reported in the User-Agent header.
	ClientVersion = "0.4.0"

	// TransportModule is the module path of the HTTP transport library.
	TransportModule = "github.com/hashicorp/go-retryablehttp"

	// TransportName is the product token used for the transport library.
	TransportName = "go-retryablehttp"

	// Provider is the provider tag stamped onto mapped records.
	Provider = "oneroster"
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations such as token fetches.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits.
const (
	// DefaultRetryMax is the transport retry count for connection errors.
	// Zero means the first response is always the one classified.
	DefaultRetryMax = 0

	// DefaultRetryWaitMin is the minimum wait between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second

	// GatewayTimeoutRetryDelay is the base delay for caller-side 504 retries.
	GatewayTimeoutRetryDelay = 500 * time.Millisecond
)

// Pagination.
const (
	// PageLimit is the default number of records requested per page.
	PageLimit = 100

	// DefaultOffset is the starting offset of a paginated read.
	DefaultOffset = 0

	// ParamLimit is the query parameter carrying the page size.
	ParamLimit = "limit"

	// ParamOffset is the query parameter carrying the page offset.
	ParamOffset = "offset"

	// HeaderTotalCount carries the total number of records for a collection.
	HeaderTotalCount = "X-Total-Count"
)

// Concurrency limits.
const (
	// DefaultConcurrencyLimit limits concurrent resource fetches.
	DefaultConcurrencyLimit = 3
)

// Auth schemes.
const (
	// AuthSchemeOAuth1 signs each request with OAuth 1.0a (two-legged).
	AuthSchemeOAuth1 = "oauth1"

	// AuthSchemeOAuth2 uses the OAuth 2 client credentials grant.
	AuthSchemeOAuth2 = "oauth2"
)

// Username sources.
const (
	// UsernameSourceSourcedID resolves usernames to the record uid.
	UsernameSourceSourcedID = "sourcedId"

	// UsernameSourceUsername resolves usernames to the provider username field.
	UsernameSourceUsername = "username"
)

// Output formats.
const (
	// FormatJSON renders JSON.
	FormatJSON = "json"

	// FormatYAML renders YAML.
	FormatYAML = "yaml"

	// FormatTable renders a table.
	FormatTable = "table"
)

// Display constants.
const (
	// NotAvailable is shown for absent values.
	NotAvailable = "N/A"

	// MaskedSecret replaces secrets in displayed config.
	MaskedSecret = "***"
)

// Environment.
const (
	// EnvPrefix is the prefix for environment variables read by the CLI.
	EnvPrefix = "ONEROSTER"

	// ConfigDirName is the directory under $HOME holding the CLI config.
	ConfigDirName = ".oneroster"
)

// CLI defaults.
const (
	// ConfigFileName is the CLI config file inside ConfigDirName.
	ConfigFileName = "config.yml"

	// DefaultNATSSubject is the subject error events are published on.
	DefaultNATSSubject = "oneroster.errors"

	// SentryFlushTimeout bounds how long the CLI waits for Sentry on exit.
	SentryFlushTimeout = 2 * time.Second

	// IndentSize is the indentation of JSON and YAML output.
	IndentSize = 2
)
