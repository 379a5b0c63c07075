package oneroster

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/fivetwenty-io/oneroster/internal/auth"
	"github.com/fivetwenty-io/oneroster/internal/constants"
	orhttp "github.com/fivetwenty-io/oneroster/internal/http"
)

// RawRequest is one call handed to a Transport. Path is relative to the
// configured API URL.
type RawRequest struct {
	Method Method
	Path   string
	Query  url.Values
	Body   interface{}
}

// RawResponse is what a Transport returns for a received response.
type RawResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	// Parsed is the decoded body when the content type is JSON.
	Parsed interface{}
	// DecodeErr is set when a JSON body failed to decode.
	DecodeErr error
}

// Transport performs an authenticated HTTP request. It returns an error only
// when no response was received; status codes are reported, not judged.
type Transport interface {
	Do(ctx context.Context, req *RawRequest) (*RawResponse, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, req *RawRequest) (*RawResponse, error)

// Do implements Transport.
func (f TransportFunc) Do(ctx context.Context, req *RawRequest) (*RawResponse, error) {
	return f(ctx, req)
}

// TransportFactory builds the transport for a config.
type TransportFactory func(cfg Config) (Transport, error)

// HTTPTransport is the default Transport: a retryablehttp client with auth
// middleware, a JSON decoder and logging hooks.
type HTTPTransport struct {
	client *orhttp.Client
	scheme string
}

// NewHTTPTransport builds the default transport for cfg.
func NewHTTPTransport(cfg Config) (Transport, error) {
	authenticator, err := newAuthenticator(cfg)
	if err != nil {
		return nil, err
	}

	opts := []orhttp.Option{orhttp.WithTimeout(cfg.httpTimeout())}

	if cfg.Logger != nil {
		opts = append(opts, orhttp.WithLogger(cfg.Logger))
	}

	if cfg.Debug {
		opts = append(opts, orhttp.WithDebug(true))
	}

	if cfg.UserAgent != "" {
		opts = append(opts, orhttp.WithUserAgent(cfg.UserAgent))
	}

	if cfg.RetryMax > 0 {
		opts = append(opts, orhttp.WithRetryConfig(cfg.RetryMax, constants.DefaultRetryWaitMin, constants.DefaultRetryWaitMax))
	}

	return &HTTPTransport{
		client: orhttp.NewClient(cfg.APIURL, authenticator, opts...),
		scheme: cfg.authScheme(),
	}, nil
}

func newAuthenticator(cfg Config) (auth.Authenticator, error) {
	switch cfg.authScheme() {
	case constants.AuthSchemeOAuth1:
		signer, err := auth.NewOAuth1Signer(cfg.AppID, cfg.AppSecret)
		if err != nil {
			return nil, fmt.Errorf("creating oauth1 signer: %w", err)
		}

		return signer, nil
	case constants.AuthSchemeOAuth2:
		authenticator, err := auth.NewOAuth2Authenticator(context.Background(), &auth.OAuth2Config{
			TokenURL:     cfg.TokenURL,
			ClientID:     cfg.AppID,
			ClientSecret: cfg.AppSecret,
			Scopes:       cfg.Scopes,
		})
		if err != nil {
			return nil, fmt.Errorf("creating oauth2 authenticator: %w", err)
		}

		return authenticator, nil
	default:
		return nil, fmt.Errorf("%w: %q", constants.ErrUnsupportedAuthScheme, cfg.AuthScheme)
	}
}

// Do implements Transport.
func (t *HTTPTransport) Do(ctx context.Context, req *RawRequest) (*RawResponse, error) {
	resp, err := t.client.Do(ctx, &orhttp.Request{
		Method: string(req.Method),
		Path:   req.Path,
		Query:  req.Query,
		Body:   req.Body,
	})
	if err != nil {
		return nil, err
	}

	return &RawResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       resp.Body,
		Parsed:     resp.Parsed,
		DecodeErr:  resp.DecodeErr,
	}, nil
}

// UserAgent returns the User-Agent header sent with each request.
func (t *HTTPTransport) UserAgent() string {
	return t.client.UserAgent()
}

// AuthScheme returns the authentication scheme of the middleware.
func (t *HTTPTransport) AuthScheme() string {
	return t.scheme
}
