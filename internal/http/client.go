// Package http is the transport used by the roster connection: a
// retryablehttp client bound to a base URL, with authentication middleware,
// a JSON response decoder and request/response hooks.
package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"time"

	"github.com/fivetwenty-io/oneroster/internal/auth"
	"github.com/fivetwenty-io/oneroster/internal/constants"
	"github.com/hashicorp/go-retryablehttp"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Logger is the structured logger used by the transport.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Request describes one call relative to the client's base URL.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    interface{}
	Headers map[string]string
}

// Response is the raw result of a call. Status codes are not interpreted.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	// Parsed holds the decoded body when the content type is JSON.
	Parsed interface{}
	// DecodeErr is set when a JSON body could not be decoded.
	DecodeErr error
	Duration  time.Duration
}

// Client performs authenticated requests against one base URL.
type Client struct {
	baseURL       string
	httpClient    *retryablehttp.Client
	authenticator auth.Authenticator
	logger        Logger
	debug         bool
	userAgent     string
	timeout       time.Duration
	retryMax      int
	retryWaitMin  time.Duration
	retryWaitMax  time.Duration
	baseTransport http.RoundTripper

	requestHooks  []RequestHook
	responseHooks []ResponseHook
}

// Option configures the Client.
type Option func(*Client)

// WithLogger sets the logger used by the logging hooks.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithTimeout sets the per-attempt HTTP timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithRetryConfig enables retries of connection errors. Responses with a
// status code are never retried.
func WithRetryConfig(maxRetries int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.retryMax = maxRetries
		c.retryWaitMin = waitMin
		c.retryWaitMax = waitMax
	}
}

// WithHTTPTransport replaces the underlying round tripper.
func WithHTTPTransport(transport http.RoundTripper) Option {
	return func(c *Client) {
		c.baseTransport = transport
	}
}

// WithRequestHook appends a request hook.
func WithRequestHook(hook RequestHook) Option {
	return func(c *Client) {
		c.requestHooks = append(c.requestHooks, hook)
	}
}

// WithResponseHook appends a response hook.
func WithResponseHook(hook ResponseHook) Option {
	return func(c *Client) {
		c.responseHooks = append(c.responseHooks, hook)
	}
}

// NewClient creates a transport for baseURL. A nil authenticator sends
// requests unauthenticated.
func NewClient(baseURL string, authenticator auth.Authenticator, opts ...Option) *Client {
	client := &Client{
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		authenticator: authenticator,
		userAgent:     DefaultUserAgent(),
		timeout:       constants.DefaultHTTPTimeout,
		retryMax:      constants.DefaultRetryMax,
		retryWaitMin:  constants.DefaultRetryWaitMin,
		retryWaitMax:  constants.DefaultRetryWaitMax,
	}

	for _, opt := range opts {
		opt(client)
	}

	// Built-in hooks run before caller hooks.
	client.requestHooks = append([]RequestHook{
		HeaderHook(map[string]string{
			"User-Agent": client.userAgent,
			"Accept":     "application/json",
		}),
		RequestIDHook(),
		LoggingRequestHook(client),
	}, client.requestHooks...)
	client.responseHooks = append([]ResponseHook{LoggingResponseHook(client)}, client.responseHooks...)

	client.httpClient = client.newRetryableClient()

	return client
}

func (c *Client) newRetryableClient() *retryablehttp.Client {
	retryClient := retryablehttp.NewClient()
	retryClient.Logger = nil
	retryClient.RetryMax = c.retryMax
	retryClient.RetryWaitMin = c.retryWaitMin
	retryClient.RetryWaitMax = c.retryWaitMax
	retryClient.CheckRetry = checkRetry
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	base := c.baseTransport
	if base == nil {
		base = retryClient.HTTPClient.Transport
	}

	retryClient.HTTPClient.Transport = auth.NewRoundTripper(base, c.authenticator)
	retryClient.HTTPClient.Timeout = c.timeout

	return retryClient
}

// checkRetry retries connection errors only. A received response, whatever
// its status, is handed back to the caller for classification.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	if resp != nil {
		return false, nil
	}

	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// Do executes req.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	for _, hook := range c.requestHooks {
		err := hook(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("request hook failed: %w", err)
		}
	}

	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if httpResp != nil {
			_ = httpResp.Body.Close()
		}

		return nil, fmt.Errorf("executing request: %w", err)
	}

	defer func() {
		_ = httpResp.Body.Close()
	}()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       body,
		Duration:   time.Since(start),
	}

	decodeJSON(resp)

	// The response has been received; a failing hook must not hide it.
	for _, hook := range c.responseHooks {
		err := hook(ctx, req, resp)
		if err != nil && c.logger != nil {
			c.logger.Warn("response hook failed", map[string]interface{}{
				"method":      req.Method,
				"path":        req.Path,
				"status_code": resp.StatusCode,
				"error":       err.Error(),
			})
		}
	}

	return resp, nil
}

func (c *Client) buildRequest(ctx context.Context, req *Request) (*retryablehttp.Request, error) {
	target := c.baseURL + "/" + strings.TrimPrefix(req.Path, "/")
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body interface{}

	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}

		body = bytes.NewReader(encoded)
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	return httpReq, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}

// UserAgent returns the User-Agent header value the client sends.
func (c *Client) UserAgent() string {
	return c.userAgent
}

// decodeJSON fills Parsed when the response declares a JSON body.
func decodeJSON(resp *Response) {
	if len(resp.Body) == 0 || !isJSON(resp.Headers.Get("Content-Type")) {
		return
	}

	var parsed interface{}

	err := json.Unmarshal(resp.Body, &parsed)
	if err != nil {
		resp.DecodeErr = fmt.Errorf("decoding JSON body: %w", err)

		return
	}

	resp.Parsed = parsed
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// DefaultUserAgent identifies the client and the transport library version.
func DefaultUserAgent() string {
	return fmt.Sprintf("%s/%s %s/%s",
		constants.ClientName, constants.ClientVersion,
		constants.TransportName, transportVersion())
}

func transportVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}

	for _, dep := range info.Deps {
		if dep.Path == constants.TransportModule {
			if dep.Replace != nil {
				return dep.Replace.Version
			}

			return dep.Version
		}
	}

	return "unknown"
}
