package engine

import (
	"context"
	"log"
	"time"

	"github.com/hatewatch/modbot/internal/gateway"
	"github.com/hatewatch/modbot/internal/metrics"
)

// Execute runs intents against the gateway in order. Each intent gets its
// own deadline so one unresponsive recipient cannot stall the rest, and
// every failure is logged and counted independently: a failed delivery never
// aborts sibling intents and nothing is rolled back.
func Execute(ctx context.Context, gw gateway.Gateway, intents []Intent, perIntentTimeout time.Duration) {
	for _, intent := range intents {
		intentCtx, cancel := context.WithTimeout(ctx, perIntentTimeout)
		err := executeOne(intentCtx, gw, intent)
		cancel()

		if err != nil {
			metrics.IntentFailures.WithLabelValues(string(intent.Kind)).Inc()
			log.Printf("[engine] %s failed (chat=%d user=%d): %v",
				intent.Kind, intent.ChatID, intent.UserID, err)
		}
	}
}

func executeOne(ctx context.Context, gw gateway.Gateway, intent Intent) error {
	switch intent.Kind {
	case IntentDeleteMessage:
		return gw.DeleteMessage(ctx, intent.ChatID, intent.MessageID)
	case IntentNotifyUser, IntentNotifyModerator:
		return gw.SendPrivate(ctx, intent.UserID, intent.Text)
	case IntentBanUser:
		return gw.BanMember(ctx, intent.ChatID, intent.UserID)
	case IntentReplyInChat:
		return gw.SendChat(ctx, intent.ChatID, intent.Text)
	default:
		log.Printf("[engine] unknown intent kind %q, skipping", intent.Kind)
		return nil
	}
}
