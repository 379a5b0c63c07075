package auth

import (
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // HMAC-SHA1 is mandated by OAuth 1.0a
	"encoding/base64"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fivetwenty-io/oneroster/internal/constants"
	"github.com/google/uuid"
)

const (
	oauthVersion         = "1.0"
	oauthSignatureMethod = "HMAC-SHA1"
)

// OAuth1Signer signs requests with two-legged OAuth 1.0a (consumer key and
// secret, no token). JSON request bodies are not part of the signature.
type OAuth1Signer struct {
	consumerKey    string
	consumerSecret string

	nonce func() string
	now   func() time.Time
}

// NewOAuth1Signer creates a signer for the given consumer credentials.
func NewOAuth1Signer(consumerKey, consumerSecret string) (*OAuth1Signer, error) {
	if consumerKey == "" {
		return nil, constants.ErrMissingConsumerKey
	}

	return &OAuth1Signer{
		consumerKey:    consumerKey,
		consumerSecret: consumerSecret,
		nonce: func() string {
			return strings.ReplaceAll(uuid.NewString(), "-", "")
		},
		now: time.Now,
	}, nil
}

// Authenticate implements Authenticator by setting the OAuth Authorization header.
func (s *OAuth1Signer) Authenticate(req *http.Request) error {
	oauthParams := map[string]string{
		"oauth_consumer_key":     s.consumerKey,
		"oauth_nonce":            s.nonce(),
		"oauth_signature_method": oauthSignatureMethod,
		"oauth_timestamp":        strconv.FormatInt(s.now().Unix(), 10),
		"oauth_version":          oauthVersion,
	}

	base := signatureBase(req.Method, req.URL, oauthParams)
	oauthParams["oauth_signature"] = s.sign(base)

	req.Header.Set("Authorization", authorizationHeader(oauthParams))

	return nil
}

func (s *OAuth1Signer) sign(base string) string {
	key := percentEncode(s.consumerSecret) + "&"
	mac := hmac.New(sha1.New, []byte(key))
	_, _ = mac.Write([]byte(base))

	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// signatureBase builds the RFC 5849 section 3.4.1 signature base string.
func signatureBase(method string, target *url.URL, oauthParams map[string]string) string {
	pairs := make([]string, 0, len(oauthParams))

	for key, values := range target.Query() {
		for _, value := range values {
			pairs = append(pairs, percentEncode(key)+"="+percentEncode(value))
		}
	}

	for key, value := range oauthParams {
		pairs = append(pairs, percentEncode(key)+"="+percentEncode(value))
	}

	sort.Strings(pairs)

	return strings.ToUpper(method) + "&" +
		percentEncode(baseURI(target)) + "&" +
		percentEncode(strings.Join(pairs, "&"))
}

func baseURI(target *url.URL) string {
	scheme := strings.ToLower(target.Scheme)
	host := strings.ToLower(target.Hostname())

	port := target.Port()
	if port != "" && !(scheme == "http" && port == "80") && !(scheme == "https" && port == "443") {
		host += ":" + port
	}

	path := target.EscapedPath()
	if path == "" {
		path = "/"
	}

	return scheme + "://" + host + path
}

func authorizationHeader(oauthParams map[string]string) string {
	keys := make([]string, 0, len(oauthParams))
	for key := range oauthParams {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, percentEncode(key)+`="`+percentEncode(oauthParams[key])+`"`)
	}

	return "OAuth " + strings.Join(parts, ", ")
}

// percentEncode encodes everything but RFC 3986 unreserved characters.
func percentEncode(value string) string {
	const hex = "0123456789ABCDEF"

	var builder strings.Builder

	for i := range len(value) {
		c := value[i]
		if isUnreserved(c) {
			builder.WriteByte(c)

			continue
		}

		builder.WriteByte('%')
		builder.WriteByte(hex[c>>4])
		builder.WriteByte(hex[c&0x0F])
	}

	return builder.String()
}

func isUnreserved(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		return true
	case c == '-', c == '.', c == '_', c == '~':
		return true
	default:
		return false
	}
}
