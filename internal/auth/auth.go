// Package auth attaches roster API credentials to outgoing requests.
package auth

import (
	"fmt"
	"net/http"
)

// Authenticator adds credentials to a request in place.
type Authenticator interface {
	Authenticate(req *http.Request) error
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(req *http.Request) error

// Authenticate implements Authenticator.
func (f AuthenticatorFunc) Authenticate(req *http.Request) error {
	return f(req)
}

// RoundTripper authenticates every request before handing it to Base,
// including each retry attempt.
type RoundTripper struct {
	Base          http.RoundTripper
	Authenticator Authenticator
}

// NewRoundTripper wraps base with authenticator. A nil base uses
// http.DefaultTransport.
func NewRoundTripper(base http.RoundTripper, authenticator Authenticator) *RoundTripper {
	return &RoundTripper{
		Base:          base,
		Authenticator: authenticator,
	}
}

// RoundTrip implements http.RoundTripper.
func (t *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Authenticator == nil {
		return t.base().RoundTrip(req)
	}

	clone := req.Clone(req.Context())

	err := t.Authenticator.Authenticate(clone)
	if err != nil {
		if req.Body != nil {
			_ = req.Body.Close()
		}

		return nil, fmt.Errorf("authenticating request: %w", err)
	}

	return t.base().RoundTrip(clone)
}

func (t *RoundTripper) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}

	return http.DefaultTransport
}
