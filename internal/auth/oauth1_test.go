package auth

import (
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // OAuth 1.0a
	"encoding/base64"
	"net/http"
	"net/url"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFixedSigner(t *testing.T) *OAuth1Signer {
	t.Helper()

	signer, err := NewOAuth1Signer("app_id", "app_secret")
	require.NoError(t, err)

	signer.nonce = func() string { return "abc" }
	signer.now = func() time.Time { return time.Unix(1700000000, 0) }

	return signer
}

func headerParams(t *testing.T, header string) map[string]string {
	t.Helper()

	require.Regexp(t, `^OAuth `, header)

	params := map[string]string{}
	for _, match := range regexp.MustCompile(`(\w+)="([^"]*)"`).FindAllStringSubmatch(header, -1) {
		value, err := url.PathUnescape(match[2])
		require.NoError(t, err)

		params[match[1]] = value
	}

	return params
}

func TestOAuth1Signer_Authenticate(t *testing.T) {
	t.Parallel()

	signer := newFixedSigner(t)

	req, err := http.NewRequest(http.MethodGet, "https://api.example.com/ims/oneroster/v1p1/schools?offset=0&limit=100", nil)
	require.NoError(t, err)

	require.NoError(t, signer.Authenticate(req))

	params := headerParams(t, req.Header.Get("Authorization"))
	assert.Equal(t, "app_id", params["oauth_consumer_key"])
	assert.Equal(t, "abc", params["oauth_nonce"])
	assert.Equal(t, "HMAC-SHA1", params["oauth_signature_method"])
	assert.Equal(t, "1700000000", params["oauth_timestamp"])
	assert.Equal(t, "1.0", params["oauth_version"])
	assert.NotContains(t, req.Header.Get("Authorization"), "app_secret")

	base := "GET&https%3A%2F%2Fapi.example.com%2Fims%2Foneroster%2Fv1p1%2Fschools&" +
		"limit%3D100%26oauth_consumer_key%3Dapp_id%26oauth_nonce%3Dabc%26" +
		"oauth_signature_method%3DHMAC-SHA1%26oauth_timestamp%3D1700000000%26" +
		"oauth_version%3D1.0%26offset%3D0"

	mac := hmac.New(sha1.New, []byte("app_secret&"))
	_, _ = mac.Write([]byte(base))
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	assert.Equal(t, expected, params["oauth_signature"])
}

func TestSignatureBase(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		method   string
		rawURL   string
		expected string
	}{
		{
			name:     "lowercases scheme and host and drops default port",
			method:   "get",
			rawURL:   "HTTPS://API.Example.com:443/orgs",
			expected: "GET&https%3A%2F%2Fapi.example.com%2Forgs&k%3Dv",
		},
		{
			name:     "keeps non default port",
			method:   "POST",
			rawURL:   "http://localhost:8080/orgs",
			expected: "POST&http%3A%2F%2Flocalhost%3A8080%2Forgs&k%3Dv",
		},
		{
			name:     "encodes reserved characters in query values",
			method:   "GET",
			rawURL:   "https://api.example.com/users?filter=role%3D%27student%27",
			expected: "GET&https%3A%2F%2Fapi.example.com%2Fusers&filter%3Drole%253D%2527student%2527%26k%3Dv",
		},
		{
			name:     "empty path becomes slash",
			method:   "GET",
			rawURL:   "https://api.example.com",
			expected: "GET&https%3A%2F%2Fapi.example.com%2F&k%3Dv",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			target, err := url.Parse(tt.rawURL)
			require.NoError(t, err)

			assert.Equal(t, tt.expected, signatureBase(tt.method, target, map[string]string{"k": "v"}))
		})
	}
}

func TestPercentEncode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abc-._~XYZ019", percentEncode("abc-._~XYZ019"))
	assert.Equal(t, "a%20b%2Bc%26d%3De", percentEncode("a b+c&d=e"))
	assert.Equal(t, "%C3%A9", percentEncode("é"))
}

func TestNewOAuth1Signer_RequiresKey(t *testing.T) {
	t.Parallel()

	_, err := NewOAuth1Signer("", "secret")
	require.Error(t, err)
}

func TestRoundTripper_SignsClone(t *testing.T) {
	t.Parallel()

	var seen string

	base := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		seen = req.Header.Get("Authorization")

		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody, Request: req}, nil
	})

	rt := NewRoundTripper(base, newFixedSigner(t))

	req, err := http.NewRequest(http.MethodGet, "https://api.example.com/orgs", nil)
	require.NoError(t, err)

	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, seen, `oauth_consumer_key="app_id"`)
	assert.Empty(t, req.Header.Get("Authorization"), "original request must not be modified")
}

func TestRoundTripper_AuthenticatorError(t *testing.T) {
	t.Parallel()

	called := false
	base := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		called = true

		return nil, nil
	})

	rt := NewRoundTripper(base, AuthenticatorFunc(func(*http.Request) error {
		return ErrTestAuth
	}))

	req, err := http.NewRequest(http.MethodGet, "https://api.example.com/orgs", nil)
	require.NoError(t, err)

	_, err = rt.RoundTrip(req)
	require.ErrorIs(t, err, ErrTestAuth)
	assert.False(t, called)
}
