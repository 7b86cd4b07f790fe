package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hatewatch/modbot/internal/classify"
	"github.com/hatewatch/modbot/internal/command"
	"github.com/hatewatch/modbot/internal/config"
	"github.com/hatewatch/modbot/internal/dedup"
	"github.com/hatewatch/modbot/internal/engine"
	"github.com/hatewatch/modbot/internal/gateway/telegram"
	"github.com/hatewatch/modbot/internal/messaging"
	"github.com/hatewatch/modbot/internal/metrics"
	"github.com/hatewatch/modbot/internal/roster"
	"github.com/hatewatch/modbot/internal/storage"
	"github.com/hatewatch/modbot/internal/warnings"
)

func main() {
	log.Println("Starting moderation bot...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- PostgreSQL ---
	db, err := storage.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()
	if err := storage.Migrate(db); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}

	warningStore := warnings.NewStore(db)
	rosterStore := roster.NewStore(db)

	// --- Redis (optional dedup guard) ---
	var guard *dedup.Guard
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatalf("failed to connect to Redis: %v", err)
		}
		defer rdb.Close()
		guard = dedup.NewGuard(rdb)
	}

	// --- NATS (classification in nats mode, flagged-event audit feed) ---
	var natsClient *messaging.Client
	if cfg.NATSURL != "" {
		natsConfig := messaging.DefaultConfig()
		natsConfig.URL = cfg.NATSURL
		natsConfig.Name = "modbot"

		natsClient, err = messaging.NewClient(natsConfig)
		if err != nil {
			if cfg.ClassifierMode == "nats" {
				log.Fatalf("failed to connect to NATS: %v", err)
			}
			log.Printf("[bot] NATS unavailable, audit feed disabled: %v", err)
			natsClient = nil
		} else {
			defer natsClient.Close()
		}
	} else if cfg.ClassifierMode == "nats" {
		log.Fatalf("classifier mode nats requires NATS_URL")
	}

	// --- Classifier ---
	var classifier classify.Classifier
	switch cfg.ClassifierMode {
	case "lexicon":
		classifier = classify.NewLexicon()
	case "remote":
		classifier = classify.NewRemote(cfg.ClassifierURL)
	case "nats":
		classifier = classify.NewNATS(natsClient)
	}
	classifier = classify.WithTimeout(classifier, cfg.ClassifyTimeout)

	// --- Engine, gateway, commands ---
	eng := engine.New(classifier, warningStore, rosterStore, engine.Config{
		Threshold:      cfg.Threshold,
		WarningCeiling: cfg.WarningCeiling,
		ToxicLabels:    cfg.ToxicLabels,
	})

	tg := telegram.NewClient(cfg.BotToken)
	router := command.NewRouter(rosterStore, warningStore, tg)

	// --- Metrics ---
	metricsServer := &http.Server{Addr: cfg.MetricsAddr, Handler: metrics.Handler()}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("[bot] metrics server: %v", err)
		}
	}()

	log.Printf("Moderation bot running")
	log.Printf("  classifier_mode: %s", cfg.ClassifierMode)
	log.Printf("  threshold:       %.2f", cfg.Threshold)
	log.Printf("  warning_ceiling: %d", cfg.WarningCeiling)
	log.Printf("  metrics_addr:    %s", cfg.MetricsAddr)

	handleUpdate := func(update telegram.Update) {
		msg := update.Message
		if msg == nil || msg.From == nil || msg.From.IsBot || msg.Text == "" {
			return
		}

		// Skip updates the bot already processed before a restart.
		if guard != nil {
			first, err := guard.FirstSeen(ctx, msg.Chat.ID, msg.MessageID)
			if err != nil {
				log.Printf("[bot] dedup check failed, processing anyway: %v", err)
			} else if !first {
				return
			}
		}

		if command.IsCommand(msg.Text) {
			reply, err := router.Handle(ctx, command.Request{
				ChatID: msg.Chat.ID,
				UserID: msg.From.ID,
				Text:   msg.Text,
			})
			if err != nil {
				log.Printf("[bot] command failed (chat=%d user=%d): %v", msg.Chat.ID, msg.From.ID, err)
			}
			if reply != "" {
				replyCtx, cancel := context.WithTimeout(ctx, cfg.NotifyTimeout)
				if err := tg.SendChat(replyCtx, msg.Chat.ID, reply); err != nil {
					log.Printf("[bot] command reply failed (chat=%d): %v", msg.Chat.ID, err)
				}
				cancel()
			}
			return
		}

		decision, err := eng.Inspect(ctx, engine.Message{
			ID:       msg.MessageID,
			ChatID:   msg.Chat.ID,
			UserID:   msg.From.ID,
			Username: msg.From.DisplayName(),
			Text:     msg.Text,
		})
		if err != nil {
			log.Printf("[bot] moderation decision failed (chat=%d user=%d): %v", msg.Chat.ID, msg.From.ID, err)
		}
		if decision == nil || len(decision.Intents) == 0 {
			return
		}

		engine.Execute(ctx, tg, decision.Intents, cfg.NotifyTimeout)

		// Best-effort audit feed.
		if natsClient != nil && decision.Event != nil {
			if data, err := json.Marshal(decision.Event); err == nil {
				if err := natsClient.PublishFlagged(data); err != nil {
					log.Printf("[bot] audit publish failed: %v", err)
				}
			}
		}
	}

	poller := telegram.NewPoller(tg, cfg.PollTimeout)
	if err := poller.Run(ctx, func(update telegram.Update) {
		// Updates are independent; handle each concurrently so a slow
		// classification or delivery never stalls the poll loop.
		go handleUpdate(update)
	}); err != nil {
		log.Printf("[bot] poller stopped: %v", err)
	}

	log.Printf("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("[bot] metrics shutdown: %v", err)
	}
}
