// Package engine implements the moderation decision core. For each inbound
// text message it classifies the content, accrues warnings for flagged
// messages, and produces an ordered list of side-effect intents (delete,
// notify, ban) that the platform gateway executes.
package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/hatewatch/modbot/internal/classify"
	"github.com/hatewatch/modbot/internal/metrics"
)

// Message is one inbound text message under inspection.
type Message struct {
	ID       int64 // platform message id, used for deletion
	ChatID   int64
	UserID   int64
	Username string
	Text     string
}

// IntentKind identifies the side effect an Intent describes.
type IntentKind string

const (
	IntentDeleteMessage   IntentKind = "delete_message"
	IntentNotifyUser      IntentKind = "notify_user"
	IntentNotifyModerator IntentKind = "notify_moderator"
	IntentBanUser         IntentKind = "ban_user"
	IntentReplyInChat     IntentKind = "reply_in_chat"
)

// Intent describes one side effect for the platform gateway to execute.
// Which fields are meaningful depends on Kind.
type Intent struct {
	Kind      IntentKind
	ChatID    int64
	UserID    int64 // sender for delete/notify_user/ban, recipient for notify_moderator
	MessageID int64 // delete_message only
	Text      string
}

// Event is the audit record of one flagged-message decision, published to
// the moderation.flagged subject for downstream consumers.
type Event struct {
	ID           string  `json:"id"`
	ChatID       int64   `json:"chat_id"`
	UserID       int64   `json:"user_id"`
	Username     string  `json:"username"`
	Text         string  `json:"text"`
	Label        string  `json:"label"`
	Confidence   float64 `json:"confidence"`
	WarningCount int     `json:"warning_count"`
	Banned       bool    `json:"banned"`
	Ts           int64   `json:"ts"`
}

// Decision is the outcome of inspecting one message. Intents are ordered;
// the gateway executes them front to back.
type Decision struct {
	Flagged      bool
	Result       classify.Result
	WarningCount int
	Banned       bool
	Intents      []Intent
	Event        *Event // nil unless flagged
}

// WarningStore is the persistence the engine needs for warning accrual.
type WarningStore interface {
	Record(ctx context.Context, userID, chatID int64) (int, error)
}

// Roster supplies the moderator ids to notify about violations.
type Roster interface {
	List(ctx context.Context) ([]int64, error)
}

// Config holds the engine's decision parameters.
type Config struct {
	// Threshold is the minimum classifier confidence to flag a message.
	Threshold float64
	// WarningCeiling is the warning count at which the sender is banned.
	WarningCeiling int
	// ToxicLabels is the set of classifier labels treated as violations.
	ToxicLabels []string
}

// DefaultConfig returns the engine defaults: threshold 0.7, ceiling 5,
// labels toxic and hate.
func DefaultConfig() Config {
	return Config{
		Threshold:      0.7,
		WarningCeiling: 5,
		ToxicLabels:    []string{classify.LabelToxic, classify.LabelHate},
	}
}

// Engine is the moderation decision state machine.
type Engine struct {
	classifier classify.Classifier
	warnings   WarningStore
	roster     Roster
	cfg        Config
	toxic      map[string]bool
}

// New creates an Engine with the given collaborators and configuration.
func New(classifier classify.Classifier, warnings WarningStore, roster Roster, cfg Config) *Engine {
	toxic := make(map[string]bool, len(cfg.ToxicLabels))
	for _, label := range cfg.ToxicLabels {
		toxic[label] = true
	}
	return &Engine{
		classifier: classifier,
		warnings:   warnings,
		roster:     roster,
		cfg:        cfg,
		toxic:      toxic,
	}
}

// Inspect runs the decision state machine for one message.
//
// Classification failure is fail-open: the error is logged and counted, and
// the message passes through unflagged. Storage failures are fatal for the
// decision: the returned Decision holds the intents that remain valid
// (deletion is independent of everything that follows) and the error is
// returned so the caller can surface it. No escalation happens on a count
// that was not durably recorded.
func (e *Engine) Inspect(ctx context.Context, msg Message) (*Decision, error) {
	metrics.MessagesInspected.Inc()

	start := time.Now()
	result, err := e.classifier.Classify(ctx, msg.Text)
	metrics.ClassifyDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		// Fail-open: a transient model error must not delete arbitrary messages.
		metrics.ClassifyFailures.Inc()
		log.Printf("[engine] classification failed, passing message through: %v", err)
		return &Decision{}, nil
	}

	if !e.flagged(result) {
		return &Decision{Result: result}, nil
	}

	metrics.MessagesFlagged.WithLabelValues(result.Label).Inc()

	d := &Decision{Flagged: true, Result: result}

	// Deletion comes first and is independent of notification outcomes.
	d.Intents = append(d.Intents, Intent{
		Kind:      IntentDeleteMessage,
		ChatID:    msg.ChatID,
		UserID:    msg.UserID,
		MessageID: msg.ID,
	})

	// The single authoritative increment for this message. Every later step
	// works from this snapshot; the count is never re-queried.
	count, err := e.warnings.Record(ctx, msg.UserID, msg.ChatID)
	if err != nil {
		return d, fmt.Errorf("engine: record warning: %w", err)
	}
	metrics.WarningsIssued.Inc()
	d.WarningCount = count

	d.Intents = append(d.Intents, Intent{
		Kind:   IntentNotifyUser,
		ChatID: msg.ChatID,
		UserID: msg.UserID,
		Text: fmt.Sprintf("⚠️ Warning %d/%d: Your message was flagged as hate speech and deleted.",
			count, e.cfg.WarningCeiling),
	})

	// Roster snapshot at decision time. A storage failure here stops the
	// decision before fan-out and escalation; the count above is durable, so
	// a later message re-drives escalation from it.
	admins, err := e.roster.List(ctx)
	if err != nil {
		return d, fmt.Errorf("engine: roster snapshot: %w", err)
	}

	alert := fmt.Sprintf("🚨 Hate Speech Alert\nUser: @%s (ID: %d)\nMessage: %s\nWarnings: %d/%d",
		msg.Username, msg.UserID, msg.Text, count, e.cfg.WarningCeiling)
	for _, adminID := range admins {
		d.Intents = append(d.Intents, Intent{
			Kind:   IntentNotifyModerator,
			ChatID: msg.ChatID,
			UserID: adminID,
			Text:   alert,
		})
	}

	if count >= e.cfg.WarningCeiling {
		metrics.Bans.Inc()
		d.Banned = true
		d.Intents = append(d.Intents,
			Intent{
				Kind:   IntentBanUser,
				ChatID: msg.ChatID,
				UserID: msg.UserID,
			},
			Intent{
				Kind:   IntentReplyInChat,
				ChatID: msg.ChatID,
				Text: fmt.Sprintf("User @%s has been removed after %d warnings.",
					msg.Username, e.cfg.WarningCeiling),
			},
		)
	}

	d.Event = &Event{
		ID:           uuid.NewString(),
		ChatID:       msg.ChatID,
		UserID:       msg.UserID,
		Username:     msg.Username,
		Text:         msg.Text,
		Label:        result.Label,
		Confidence:   result.Confidence,
		WarningCount: count,
		Banned:       d.Banned,
		Ts:           time.Now().Unix(),
	}

	return d, nil
}

// flagged applies the flag rule: label in the configured toxic set and
// confidence at or above the threshold.
func (e *Engine) flagged(r classify.Result) bool {
	return e.toxic[r.Label] && r.Confidence >= e.cfg.Threshold
}
