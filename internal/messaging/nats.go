// Package messaging provides a NATS client wrapper for the moderation bot.
// It handles connection lifecycle, the classification request/reply channel
// and the flagged-message audit feed.
package messaging

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// NATS subjects used by the bot and the classifier service.
const (
	// SubjectClassifyRequest carries classification requests; the classifier
	// service replies on the request's reply inbox.
	SubjectClassifyRequest = "classify.request"

	// SubjectModerationFlagged carries audit events for flagged messages.
	SubjectModerationFlagged = "moderation.flagged"
)

// Client wraps the NATS connection with helper methods for the bot's channels.
type Client struct {
	conn *nats.Conn
	mu   sync.Mutex
	subs map[string]*nats.Subscription
}

// Config holds NATS connection settings.
type Config struct {
	URL           string        // nats://localhost:4222
	Name          string        // client name for identification
	ReconnectWait time.Duration // time between reconnect attempts
	MaxReconnects int           // max reconnect attempts (-1 for infinite)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		URL:           "nats://localhost:4222",
		Name:          "modbot",
		ReconnectWait: 2 * time.Second,
		MaxReconnects: -1, // infinite reconnects
	}
}

// NewClient connects to NATS with the given config and returns a ready client.
// It returns an error if the initial connection fails.
func NewClient(config Config) (*Client, error) {
	opts := []nats.Option{
		nats.Name(config.Name),
		nats.ReconnectWait(config.ReconnectWait),
		nats.MaxReconnects(config.MaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Printf("[nats] disconnected: %v", err)
			} else {
				log.Printf("[nats] disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("[nats] reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Printf("[nats] connection closed")
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	log.Printf("[nats] connected to %s", nc.ConnectedUrl())

	return &Client{
		conn: nc,
		subs: make(map[string]*nats.Subscription),
	}, nil
}

// Request sends data to a subject and waits for a single reply, bounded by ctx.
func (c *Client) Request(ctx context.Context, subject string, data []byte) ([]byte, error) {
	msg, err := c.conn.RequestWithContext(ctx, subject, data)
	if err != nil {
		return nil, fmt.Errorf("nats request %s: %w", subject, err)
	}
	return msg.Data, nil
}

// Publish sends data to the given NATS subject.
func (c *Client) Publish(subject string, data []byte) error {
	return c.conn.Publish(subject, data)
}

// PublishFlagged publishes a flagged-message audit event.
func (c *Client) PublishFlagged(data []byte) error {
	return c.Publish(SubjectModerationFlagged, data)
}

// SubscribeClassifyRequests registers a request handler for classification.
// The handler's return value is sent back on the request's reply inbox.
func (c *Client) SubscribeClassifyRequests(handler func(data []byte) []byte) error {
	sub, err := c.conn.Subscribe(SubjectClassifyRequest, func(msg *nats.Msg) {
		reply := handler(msg.Data)
		if msg.Reply == "" {
			return
		}
		if err := msg.Respond(reply); err != nil {
			log.Printf("[nats] respond on %s failed: %v", SubjectClassifyRequest, err)
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe %s: %w", SubjectClassifyRequest, err)
	}

	c.mu.Lock()
	c.subs[SubjectClassifyRequest] = sub
	c.mu.Unlock()
	return nil
}

// SubscribeFlagged subscribes to flagged-message audit events.
func (c *Client) SubscribeFlagged(handler func(data []byte)) error {
	sub, err := c.conn.Subscribe(SubjectModerationFlagged, func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return fmt.Errorf("nats subscribe %s: %w", SubjectModerationFlagged, err)
	}

	c.mu.Lock()
	c.subs[SubjectModerationFlagged] = sub
	c.mu.Unlock()
	return nil
}

// Close drains all active subscriptions and closes the NATS connection.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for subject, sub := range c.subs {
		if err := sub.Drain(); err != nil {
			log.Printf("[nats] drain %s: %v", subject, err)
		}
	}
	c.subs = make(map[string]*nats.Subscription)

	if err := c.conn.Drain(); err != nil {
		log.Printf("[nats] connection drain: %v", err)
	}

	log.Printf("[nats] client closed")
}
