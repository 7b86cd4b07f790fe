// Package classify defines the text-classification contract used by the
// moderation engine, plus the available adapters: an in-process lexicon
// model, an HTTP client for a remote inference server, and a NATS
// request/reply client for the standalone classifier service.
package classify

import "context"

// Labels produced by the classifiers. Adapters for external models may
// return additional labels; the engine only acts on the configured set.
const (
	LabelSafe  = "safe"
	LabelToxic = "toxic"
	LabelHate  = "hate"
)

// Result is the outcome of classifying one message. Confidence is in [0,1].
type Result struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Classifier maps message text to a label and confidence score.
// Implementations must be safe for concurrent use.
type Classifier interface {
	Classify(ctx context.Context, text string) (Result, error)
}
