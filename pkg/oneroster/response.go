package oneroster

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/fivetwenty-io/oneroster/internal/constants"
	jsoniter "github.com/json-iterator/go"
	"github.com/tidwall/gjson"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Response is the classified result of one call. It is never modified after
// construction; accessors return copies of mutable data.
type Response struct {
	status      int
	rawBody     []byte
	parsedBody  interface{}
	headers     http.Header
	requestPath string
}

func newResponse(raw *RawResponse, requestPath string) *Response {
	headers := raw.Headers.Clone()
	if headers == nil {
		headers = http.Header{}
	}

	return &Response{
		status:      raw.StatusCode,
		rawBody:     bytes.Clone(raw.Body),
		parsedBody:  raw.Parsed,
		headers:     headers,
		requestPath: requestPath,
	}
}

// Success reports whether the status is 2xx.
func (r *Response) Success() bool {
	return r.status >= 200 && r.status < 300
}

// StatusCode returns the HTTP status.
func (r *Response) StatusCode() int {
	return r.status
}

// RawBody returns a copy of the undecoded body.
func (r *Response) RawBody() []byte {
	return bytes.Clone(r.rawBody)
}

// Body returns the undecoded body as a string.
func (r *Response) Body() string {
	return string(r.rawBody)
}

// ParsedBody returns the decoded JSON body, or nil when the body was not
// JSON. Callers must not modify it.
func (r *Response) ParsedBody() interface{} {
	return r.parsedBody
}

// Headers returns a copy of the response headers.
func (r *Response) Headers() http.Header {
	return r.headers.Clone()
}

// RequestPath returns the API-relative path that produced this response.
func (r *Response) RequestPath() string {
	return r.requestPath
}

// Decode unmarshals the body into v.
func (r *Response) Decode(v interface{}) error {
	err := json.Unmarshal(r.rawBody, v)
	if err != nil {
		return fmt.Errorf("decoding response body: %w", err)
	}

	return nil
}

// Get returns the value at a gjson path of the body.
func (r *Response) Get(path string) gjson.Result {
	return gjson.GetBytes(r.rawBody, path)
}

// Records returns the elements of the array under key, or nil when key is
// missing or not an array.
func (r *Response) Records(key string) []gjson.Result {
	result := r.Get(key)
	if !result.IsArray() {
		return nil
	}

	return result.Array()
}

// TotalCount returns the X-Total-Count header when present and numeric.
func (r *Response) TotalCount() (int, bool) {
	return parseCount(r.headers.Get(constants.HeaderTotalCount))
}
