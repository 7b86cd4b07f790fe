package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// Remote classifies text by calling an external inference server over HTTP.
// The wire contract matches common text-classification servers:
//
//	POST <url>  {"text": "..."}
//	200         {"label": "toxic", "confidence": 0.95}
//
// Transient failures are retried by the underlying client; the caller's
// context bounds the total call time.
type Remote struct {
	url    string
	client *retryablehttp.Client
}

// NewRemote creates a Remote classifier for the given endpoint URL.
func NewRemote(url string) *Remote {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 1 * time.Second
	client.Logger = nil // request logging is handled by the caller
	return &Remote{url: url, client: client}
}

type remoteRequest struct {
	Text string `json:"text"`
}

// Classify sends text to the inference server and decodes the result.
func (r *Remote) Classify(ctx context.Context, text string) (Result, error) {
	body, err := json.Marshal(remoteRequest{Text: text})
	if err != nil {
		return Result{}, fmt.Errorf("classify: marshal request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("classify: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("classify: call inference server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Read a little of the body for the error message.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return Result{}, fmt.Errorf("classify: inference server returned %d: %s", resp.StatusCode, snippet)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Result{}, fmt.Errorf("classify: decode response: %w", err)
	}
	if result.Confidence < 0 || result.Confidence > 1 {
		return Result{}, fmt.Errorf("classify: confidence %v outside [0,1]", result.Confidence)
	}
	return result, nil
}
