package oneroster

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var ErrTestConnectionRefused = errors.New("connection refused")

// MockLogger records log calls.
type MockLogger struct {
	mu   sync.Mutex
	logs []map[string]interface{}
}

func (l *MockLogger) record(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.logs = append(l.logs, map[string]interface{}{"level": level, "msg": msg, "fields": fields})
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) { l.record("debug", msg, fields) }
func (l *MockLogger) Info(msg string, fields map[string]interface{})  { l.record("info", msg, fields) }
func (l *MockLogger) Warn(msg string, fields map[string]interface{})  { l.record("warn", msg, fields) }
func (l *MockLogger) Error(msg string, fields map[string]interface{}) { l.record("error", msg, fields) }

func (l *MockLogger) entries(level string) []map[string]interface{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []map[string]interface{}

	for _, entry := range l.logs {
		if entry["level"] == level {
			out = append(out, entry)
		}
	}

	return out
}

func (l *MockLogger) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return fmt.Sprint(l.logs)
}

// MockSink is a testify mock ErrorSink.
type MockSink struct {
	mock.Mock
}

func (m *MockSink) CaptureMessage(message string) {
	m.Called(message)
}

// fakeTransport returns a canned response and records requests.
type fakeTransport struct {
	mu       sync.Mutex
	resp     *RawResponse
	err      error
	requests []*RawRequest
}

func (f *fakeTransport) Do(ctx context.Context, req *RawRequest) (*RawResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, req)

	return f.resp, f.err
}

func (f *fakeTransport) lastRequest() *RawRequest {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.requests) == 0 {
		return nil
	}

	return f.requests[len(f.requests)-1]
}

func cannedTransport(status int, body string) *fakeTransport {
	return &fakeTransport{resp: &RawResponse{
		StatusCode: status,
		Headers:    http.Header{},
		Body:       []byte(body),
	}}
}

func testConfig(logger Logger, sink ErrorSink) Config {
	return Config{
		AppID:     "app_id",
		AppSecret: "app_secret",
		APIURL:    "https://bjulez.oneroster.com/",
		Logger:    logger,
		ErrorSink: sink,
	}
}

func newTestConnection(t *testing.T, transport Transport, logger Logger, sink ErrorSink, opts ...ConnectionOption) *Connection {
	t.Helper()

	opts = append([]ConnectionOption{WithTransport(transport)}, opts...)

	conn, err := NewConnection(testConfig(logger, sink), opts...)
	require.NoError(t, err)

	return conn
}
