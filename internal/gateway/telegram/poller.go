package telegram

import (
	"context"
	"errors"
	"log"
	"time"
)

// Poller drives the getUpdates long-poll loop and hands each update to a
// handler. Offset tracking acknowledges processed batches to the API.
type Poller struct {
	client  *Client
	timeout time.Duration
}

// NewPoller creates a poller with the given long-poll hold time.
func NewPoller(client *Client, timeout time.Duration) *Poller {
	return &Poller{client: client, timeout: timeout}
}

// Run polls until ctx is canceled. The handler is called synchronously for
// each update in arrival order; handlers that do slow work should hand off
// to their own goroutines. Poll errors are logged and retried with a short
// backoff.
func (p *Poller) Run(ctx context.Context, handler func(Update)) error {
	var offset int64

	for {
		// Leave slack over the server-side hold time.
		pollCtx, cancel := context.WithTimeout(ctx, p.timeout+10*time.Second)
		updates, err := p.client.GetUpdates(pollCtx, offset, p.timeout)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if !errors.Is(err, context.DeadlineExceeded) {
				log.Printf("[poller] getUpdates failed: %v", err)
			}
			select {
			case <-time.After(2 * time.Second):
				continue
			case <-ctx.Done():
				return nil
			}
		}

		for _, update := range updates {
			offset = update.UpdateID + 1
			handler(update)
		}
	}
}
