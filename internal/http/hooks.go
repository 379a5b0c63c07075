package http

import (
	"context"
	"maps"

	"github.com/google/uuid"
)

// RequestHook runs before a request is sent and may modify it.
type RequestHook func(ctx context.Context, req *Request) error

// ResponseHook runs after a response is read.
type ResponseHook func(ctx context.Context, req *Request, resp *Response) error

// HeaderRequestID is the header carrying the per-request correlation id.
const HeaderRequestID = "X-Request-ID"

// HeaderHook sets headers that the request does not already carry.
func HeaderHook(headers map[string]string) RequestHook {
	return func(ctx context.Context, req *Request) error {
		merged := make(map[string]string, len(headers)+len(req.Headers))
		maps.Copy(merged, headers)
		maps.Copy(merged, req.Headers)
		req.Headers = merged

		return nil
	}
}

// RequestIDHook tags each request with a fresh X-Request-ID unless one is set.
func RequestIDHook() RequestHook {
	return func(ctx context.Context, req *Request) error {
		if _, ok := req.Headers[HeaderRequestID]; ok {
			return nil
		}

		if req.Headers == nil {
			req.Headers = make(map[string]string)
		}

		req.Headers[HeaderRequestID] = uuid.NewString()

		return nil
	}
}

// LoggingRequestHook logs outgoing requests when debug is enabled. Headers are
// never logged since they carry credentials.
func LoggingRequestHook(c *Client) RequestHook {
	return func(ctx context.Context, req *Request) error {
		if !c.debug || c.logger == nil {
			return nil
		}

		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method":     req.Method,
			"path":       req.Path,
			"query":      req.Query.Encode(),
			"request_id": req.Headers[HeaderRequestID],
		})

		return nil
	}
}

// LoggingResponseHook logs responses when debug is enabled.
func LoggingResponseHook(c *Client) ResponseHook {
	return func(ctx context.Context, req *Request, resp *Response) error {
		if !c.debug || c.logger == nil {
			return nil
		}

		fields := map[string]interface{}{
			"method":      req.Method,
			"path":        req.Path,
			"status_code": resp.StatusCode,
			"duration_ms": resp.Duration.Milliseconds(),
			"request_id":  req.Headers[HeaderRequestID],
		}

		if resp.DecodeErr != nil {
			fields["decode_error"] = resp.DecodeErr.Error()
		}

		c.logger.Debug("HTTP Response", fields)

		return nil
	}
}
