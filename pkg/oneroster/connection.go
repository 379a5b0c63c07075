package oneroster

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Outcome is the classification of a received status code.
type Outcome int

// Outcomes of a call.
const (
	// OutcomeSuccess is any 2xx.
	OutcomeSuccess Outcome = iota
	// OutcomeFailure is a non-fatal failure returned as a Response.
	OutcomeFailure
	// OutcomeTransient is a 502: returned as a Response, never reported.
	OutcomeTransient
	// OutcomeFatal is a 504: reported, then returned as GatewayTimeoutError.
	OutcomeFatal
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	case OutcomeTransient:
		return "transient"
	case OutcomeFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Classify maps an HTTP status to an Outcome.
func Classify(status int) Outcome {
	switch {
	case status >= 200 && status < 300:
		return OutcomeSuccess
	case status == http.StatusBadGateway:
		return OutcomeTransient
	case status == http.StatusGatewayTimeout:
		return OutcomeFatal
	default:
		return OutcomeFailure
	}
}

// Connection executes calls against the roster API and classifies the
// results. It is safe for concurrent use.
type Connection struct {
	config  Config
	factory TransportFactory
	tel     *telemetry

	once         sync.Once
	transport    Transport
	transportErr error
}

type connectionOptions struct {
	factory        TransportFactory
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// ConnectionOption configures a Connection.
type ConnectionOption func(*connectionOptions)

// WithTransport makes the Connection use transport instead of building one.
func WithTransport(transport Transport) ConnectionOption {
	return func(o *connectionOptions) {
		o.factory = func(Config) (Transport, error) {
			return transport, nil
		}
	}
}

// WithTransportFactory sets how the transport is built on first use.
func WithTransportFactory(factory TransportFactory) ConnectionOption {
	return func(o *connectionOptions) {
		o.factory = factory
	}
}

// WithTracerProvider sets the tracer provider. Defaults to the global one.
func WithTracerProvider(tp trace.TracerProvider) ConnectionOption {
	return func(o *connectionOptions) {
		o.tracerProvider = tp
	}
}

// WithMeterProvider sets the meter provider. Defaults to the global one.
func WithMeterProvider(mp metric.MeterProvider) ConnectionOption {
	return func(o *connectionOptions) {
		o.meterProvider = mp
	}
}

// NewConnection validates cfg and returns a Connection holding a copy of it.
func NewConnection(cfg Config, opts ...ConnectionOption) (*Connection, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	options := connectionOptions{factory: NewHTTPTransport}
	for _, opt := range opts {
		opt(&options)
	}

	cfg.Scopes = append([]string(nil), cfg.Scopes...)

	return &Connection{
		config:  cfg,
		factory: options.factory,
		tel:     newTelemetry(options.tracerProvider, options.meterProvider),
	}, nil
}

// Config returns a copy of the connection's configuration.
func (c *Connection) Config() Config {
	cfg := c.config
	cfg.Scopes = append([]string(nil), c.config.Scopes...)

	return cfg
}

// Connection returns the transport, building it on first use. Every call
// returns the same handle, or the same construction error.
func (c *Connection) Connection() (Transport, error) {
	c.once.Do(func() {
		c.transport, c.transportErr = c.factory(c.Config())
		if c.transportErr != nil {
			c.transportErr = fmt.Errorf("building transport: %w", c.transportErr)
		}
	})

	return c.transport, c.transportErr
}

// Execute performs one call and classifies the result.
//
// Any received status other than 504 comes back as a Response, successful or
// not, with a nil error. A 504 is reported to the error sink and returned as
// *GatewayTimeoutError. Transport failures return *TransportError and a 2xx
// whose JSON body does not parse returns *DecodeError. Execute never retries.
func (c *Connection) Execute(ctx context.Context, path string, method Method, params Params) (*Response, error) {
	if !method.valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMethod, method)
	}

	ctx, span := c.tel.start(ctx, method, path)
	defer span.End()

	transport, err := c.Connection()
	if err != nil {
		c.tel.fail(span, err)

		return nil, err
	}

	req := buildRequest(path, method, params)

	c.info("OneRoster request", map[string]interface{}{
		"method": string(method),
		"path":   path,
	})

	start := time.Now()

	raw, err := transport.Do(ctx, req)
	elapsed := time.Since(start)

	if err != nil {
		transportErr := &TransportError{Method: method, Path: path, Err: err}
		c.tel.fail(span, transportErr)
		c.logError("OneRoster request failed", map[string]interface{}{
			"method": string(method),
			"path":   path,
			"error":  err.Error(),
		})

		return nil, transportErr
	}

	outcome := Classify(raw.StatusCode)

	c.info("OneRoster response", map[string]interface{}{
		"method":      string(method),
		"path":        path,
		"status":      raw.StatusCode,
		"outcome":     outcome.String(),
		"duration_ms": elapsed.Milliseconds(),
	})
	c.tel.record(ctx, span, method, raw.StatusCode, outcome, float64(elapsed.Microseconds())/1000)

	switch outcome {
	case OutcomeSuccess:
		if raw.DecodeErr != nil {
			decodeErr := &DecodeError{Method: method, Path: path, StatusCode: raw.StatusCode, Err: raw.DecodeErr}
			c.tel.fail(span, decodeErr)

			return nil, decodeErr
		}

		return newResponse(raw, path), nil
	case OutcomeFatal:
		captureSafely(c.config.ErrorSink, c.config.Logger, fmt.Sprintf(
			"OneRoster gateway timeout: %s %s returned 504 from %s", method, path, c.config.APIURL))

		return nil, &GatewayTimeoutError{Method: method, Path: path, Body: raw.Body}
	default:
		// A decode failure on an error page is not reported; ParsedBody stays nil.
		return newResponse(raw, path), nil
	}
}

// Log writes message at info level. It is a no-op without a logger.
func (c *Connection) Log(message string) {
	c.info(message, nil)
}

func (c *Connection) info(msg string, fields map[string]interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Info(msg, fields)
	}
}

func (c *Connection) logError(msg string, fields map[string]interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Error(msg, fields)
	}
}

func buildRequest(path string, method Method, params Params) *RawRequest {
	req := &RawRequest{Method: method, Path: path}

	switch method {
	case MethodGet:
		req.Query = params.withPagination().Values()
	case MethodDelete:
		if len(params) > 0 {
			req.Query = params.Values()
		}
	case MethodPost, MethodPut:
		if params != nil {
			req.Body = map[string]interface{}(params)
		}
	}

	return req
}
