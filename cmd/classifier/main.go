package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hatewatch/modbot/internal/classify"
	"github.com/hatewatch/modbot/internal/messaging"
)

func main() {
	log.Println("Starting classification service...")

	// NATS setup.
	natsConfig := messaging.DefaultConfig()
	if v := os.Getenv("NATS_URL"); v != "" {
		natsConfig.URL = v
	}
	natsConfig.Name = "modbot-classifier"

	natsClient, err := messaging.NewClient(natsConfig)
	if err != nil {
		log.Fatalf("failed to connect to NATS: %v", err)
	}

	// The lexicon model handles every request; it holds no state and is
	// safe for concurrent callbacks.
	model := classify.NewLexicon()

	err = natsClient.SubscribeClassifyRequests(func(data []byte) []byte {
		var req classify.Request
		if err := json.Unmarshal(data, &req); err != nil {
			log.Printf("[classifier] failed to unmarshal request: %v", err)
			return errorReply()
		}

		result, err := model.Classify(context.Background(), req.Text)
		if err != nil {
			log.Printf("[classifier] classification failed: %v", err)
			return errorReply()
		}

		if result.Label != classify.LabelSafe {
			log.Printf("[classifier] FLAGGED label=%s confidence=%.2f", result.Label, result.Confidence)
		}

		reply, err := json.Marshal(result)
		if err != nil {
			log.Printf("[classifier] failed to marshal result: %v", err)
			return errorReply()
		}
		return reply
	})
	if err != nil {
		log.Fatalf("failed to subscribe to classification requests: %v", err)
	}

	log.Printf("Classification service running")
	log.Printf("  nats_url: %s", natsConfig.URL)

	// Graceful shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Printf("received signal %v, shutting down...", sig)

	natsClient.Close()
}

// errorReply is an empty-label reply; the bot's NATS adapter treats it as a
// classification failure and fails open.
func errorReply() []byte {
	return []byte(`{}`)
}
