package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ishihatta/HamiotFirebase/internal/notify"
	"github.com/nats-io/nats.go"
)

// MessageIDHeader carries the relay message id, which also lets JetStream
// deduplicate republished pushes.
const MessageIDHeader = "Nats-Msg-Id"

// NATSClient publishes pushes to a relay that owns the device-facing
// provider credentials.
type NATSClient struct {
	conn    *nats.Conn
	subject string
}

// NewNATSClient connects to NATS and publishes pushes on subject.
func NewNATSClient(url, subject string) (*NATSClient, error) {
	opts := []nats.Option{
		nats.Name("hamiot-gateway"),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(10),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				slog.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSClient{conn: conn, subject: subject}, nil
}

// Send implements notify.Gateway. It returns once the server has received
// the push; delivery to the device is the relay's concern.
func (c *NATSClient) Send(ctx context.Context, push notify.Push) (string, error) {
	data, err := json.Marshal(push)
	if err != nil {
		return "", fmt.Errorf("failed to marshal push: %w", err)
	}

	id := uuid.Must(uuid.NewV7()).String()
	msg := nats.NewMsg(c.subject)
	msg.Header.Set(MessageIDHeader, id)
	msg.Data = data

	if err := c.conn.PublishMsg(msg); err != nil {
		return "", fmt.Errorf("failed to publish push: %w", err)
	}
	if err := c.conn.FlushWithContext(ctx); err != nil {
		return "", fmt.Errorf("failed to flush push: %w", err)
	}

	return id, nil
}

// Close drains and closes the NATS connection
func (c *NATSClient) Close() {
	if c.conn != nil {
		c.conn.Drain()
		c.conn.Close()
	}
}
