package classify

import (
	"context"
	"time"
)

// timeoutClassifier bounds each Classify call with its own deadline so a
// stalled model cannot hold up the message pipeline.
type timeoutClassifier struct {
	inner   Classifier
	timeout time.Duration
}

// WithTimeout wraps a classifier with a per-call deadline. A non-positive
// timeout returns the classifier unchanged.
func WithTimeout(c Classifier, timeout time.Duration) Classifier {
	if timeout <= 0 {
		return c
	}
	return &timeoutClassifier{inner: c, timeout: timeout}
}

func (t *timeoutClassifier) Classify(ctx context.Context, text string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Classify(ctx, text)
}
