// Package events publishes pipeline events to other systems.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/custodia-labs/procdocs/internal/core/ports/driven"
	"github.com/custodia-labs/procdocs/internal/logger"
)

// Ensure publishers implement the interface.
var (
	_ driven.EventPublisher = (*NATSPublisher)(nil)
	_ driven.EventPublisher = NoopPublisher{}
)

// flushTimeout bounds Close.
const flushTimeout = 2 * time.Second

// NATSPublisher publishes JSON events on NATS subjects under a prefix.
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
}

// NewNATSPublisher connects to url. The connection retries in the background
// so an unavailable server does not block start-up.
func NewNATSPublisher(url, token, prefix string) (*NATSPublisher, error) {
	opts := []nats.Option{
		nats.Name("procdocs"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("NATS reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &NATSPublisher{conn: nc, prefix: prefix}, nil
}

// Publish sends payload as JSON on the prefixed subject.
func (p *NATSPublisher) Publish(ctx context.Context, subject string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	full := Subject(p.prefix, subject)
	if err := p.conn.Publish(full, data); err != nil {
		return fmt.Errorf("publish %s: %w", full, err)
	}
	logger.Debug("Published %s (%d bytes)", full, len(data))
	return nil
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	if err := p.conn.FlushTimeout(flushTimeout); err != nil && p.conn.IsConnected() {
		logger.Warn("NATS flush: %v", err)
	}
	p.conn.Close()
	return nil
}

// Subject joins prefix and subject with a dot, ignoring an empty prefix.
func Subject(prefix, subject string) string {
	prefix = strings.Trim(prefix, ".")
	if prefix == "" {
		return subject
	}
	return prefix + "." + subject
}

// NoopPublisher discards events. Used when no broker is configured.
type NoopPublisher struct{}

// Publish does nothing.
func (NoopPublisher) Publish(context.Context, string, any) error { return nil }

// Close does nothing.
func (NoopPublisher) Close() error { return nil }
