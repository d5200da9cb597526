// Package nats provides a NATS implementation of the event publisher.
package nats

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/hawkline-systems/hawkline/internal/messaging"
	"github.com/hawkline-systems/hawkline/internal/signal"
)

// Config holds NATS connection settings.
type Config struct {
	// URL is the NATS server URL (e.g. "nats://localhost:4222").
	URL string
	// Name identifies this client on the server.
	Name string
	// MaxReconnects caps reconnection attempts; -1 means retry forever.
	MaxReconnects int
	// ReconnectWait is the delay between reconnection attempts.
	ReconnectWait time.Duration
	// Timeout is the initial connection timeout.
	Timeout time.Duration
}

// DefaultConfig returns connection settings suitable for a local server.
func DefaultConfig() Config {
	return Config{
		URL:           nats.DefaultURL,
		Name:          "hawkline",
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
		Timeout:       5 * time.Second,
	}
}

// Publisher publishes composites and alerts to NATS subjects as JSON.
type Publisher struct {
	conn *nats.Conn
}

// Connect establishes a NATS connection with the given settings.
func Connect(cfg Config) (*Publisher, error) {
	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.Timeout),
	}
	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &Publisher{conn: conn}, nil
}

// PublishComposite publishes one composite signal.
func (p *Publisher) PublishComposite(c signal.Composite) error {
	return p.publish(messaging.SubjectCompositeDetected, c)
}

// PublishAlert publishes one triggered alert.
func (p *Publisher) PublishAlert(a signal.TriggeredAlert) error {
	return p.publish(messaging.SubjectAlertTriggered, a)
}

func (p *Publisher) publish(subject string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal message for %s: %w", subject, err)
	}
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	return nil
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	if p.conn != nil {
		_ = p.conn.Drain()
	}
}
