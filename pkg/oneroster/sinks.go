package oneroster

import (
	"fmt"
	"time"

	"github.com/fivetwenty-io/oneroster/internal/constants"
	"github.com/getsentry/sentry-go"
	"github.com/nats-io/nats.go"
)

// ErrorSink records fatal conditions for operational visibility. Calls are
// fire-and-forget; a failing sink never fails the request that triggered it.
type ErrorSink interface {
	CaptureMessage(message string)
}

// SinkFunc adapts a function to ErrorSink.
type SinkFunc func(message string)

// CaptureMessage implements ErrorSink.
func (f SinkFunc) CaptureMessage(message string) {
	f(message)
}

// MessageCapturer is the part of *sentry.Hub used by SentrySink.
type MessageCapturer interface {
	CaptureMessage(message string) *sentry.EventID
}

// SentrySink reports messages to Sentry.
type SentrySink struct {
	hub MessageCapturer
}

// NewSentrySink creates a sink over hub. A nil hub uses sentry.CurrentHub().
func NewSentrySink(hub MessageCapturer) *SentrySink {
	if hub == nil {
		hub = sentry.CurrentHub()
	}

	return &SentrySink{hub: hub}
}

// CaptureMessage implements ErrorSink.
func (s *SentrySink) CaptureMessage(message string) {
	s.hub.CaptureMessage(message)
}

// Publisher is the part of *nats.Conn used by NATSSink.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATSSink publishes messages as JSON events on a NATS subject.
type NATSSink struct {
	publisher Publisher
	subject   string
	logger    Logger
}

type sinkEvent struct {
	Message   string    `json:"message"`
	Provider  string    `json:"provider"`
	Timestamp time.Time `json:"timestamp"`
}

// NewNATSSink creates a sink publishing to subject. Publish failures are
// logged to logger when it is set.
func NewNATSSink(publisher Publisher, subject string, logger Logger) *NATSSink {
	return &NATSSink{
		publisher: publisher,
		subject:   subject,
		logger:    logger,
	}
}

// ConnectNATSSink dials url and returns a sink over the new connection
// along with a function closing it.
func ConnectNATSSink(url, subject string, logger Logger, opts ...nats.Option) (*NATSSink, func(), error) {
	opts = append([]nats.Option{nats.Name(constants.ClientName)}, opts...)

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	closer := func() {
		_ = conn.Drain()
	}

	return NewNATSSink(conn, subject, logger), closer, nil
}

// CaptureMessage implements ErrorSink.
func (s *NATSSink) CaptureMessage(message string) {
	payload, err := json.Marshal(sinkEvent{
		Message:   message,
		Provider:  constants.Provider,
		Timestamp: time.Now().UTC(),
	})
	if err == nil {
		err = s.publisher.Publish(s.subject, payload)
	}

	if err != nil && s.logger != nil {
		s.logger.Warn("Failed to publish error event", map[string]interface{}{
			"subject": s.subject,
			"error":   err.Error(),
		})
	}
}

// captureSafely reports message to sink, recovering from sink panics.
func captureSafely(sink ErrorSink, logger Logger, message string) {
	if sink == nil {
		return
	}

	defer func() {
		if recovered := recover(); recovered != nil && logger != nil {
			logger.Warn("Error sink failed", map[string]interface{}{
				"panic": fmt.Sprint(recovered),
			})
		}
	}()

	sink.CaptureMessage(message)
}
