package classify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hatewatch/modbot/internal/messaging"
)

// Request is the wire format for classification over NATS. The classifier
// service replies with a Result.
type Request struct {
	Text string `json:"text"`
}

// NATS classifies text by request/reply against the classifier service
// listening on the classify.request subject. The caller's context bounds
// the round trip.
type NATS struct {
	client *messaging.Client
}

// NewNATS creates a NATS classifier over an established messaging client.
func NewNATS(client *messaging.Client) *NATS {
	return &NATS{client: client}
}

// Classify sends the text to the classifier service and decodes its reply.
func (n *NATS) Classify(ctx context.Context, text string) (Result, error) {
	data, err := json.Marshal(Request{Text: text})
	if err != nil {
		return Result{}, fmt.Errorf("classify: marshal request: %w", err)
	}

	reply, err := n.client.Request(ctx, messaging.SubjectClassifyRequest, data)
	if err != nil {
		return Result{}, fmt.Errorf("classify: nats request: %w", err)
	}

	var result Result
	if err := json.Unmarshal(reply, &result); err != nil {
		return Result{}, fmt.Errorf("classify: decode reply: %w", err)
	}
	if result.Label == "" {
		return Result{}, fmt.Errorf("classify: empty label in reply")
	}
	return result, nil
}
