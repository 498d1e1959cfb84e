package mqtt

import (
	"context"
)

// MessageHandler is the callback invoked for received messages. Handlers run on
// their own goroutines, so a slow handler never blocks the broker reader loop.
type MessageHandler func(ctx context.Context, topic string, payload []byte)

// Publisher is the minimal outbound surface. Components that only emit
// telemetry should depend on this rather than the full Client.
type Publisher interface {
	// Publish sends a message to the given topic.
	Publish(ctx context.Context, topic string, qos int, retain bool, payload []byte) error
}

// Client is a generic MQTT v5 client abstracting the paho implementation.
type Client interface {
	Publisher

	// Start initiates the connection to the broker. It is non-blocking and
	// returns immediately; use AwaitConnection to wait for the session.
	Start(ctx context.Context) error

	// Disconnect cleanly closes the connection.
	Disconnect(ctx context.Context)

	// Subscribe registers a handler for a topic filter (wildcards supported).
	// If the connection is lost and restored the subscription is re-sent.
	Subscribe(ctx context.Context, topic string, qos int, handler MessageHandler) error

	// Unsubscribe removes the handler and sends an UNSUBSCRIBE packet.
	Unsubscribe(ctx context.Context, topic string) error

	// AwaitConnection blocks until the client is connected to the broker.
	AwaitConnection(ctx context.Context) error
}
