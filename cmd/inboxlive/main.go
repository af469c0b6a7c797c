// Command inboxlive connects to the messaging backend as one dashboard user
// and prints realtime events as they arrive.
//
//	inboxlive -config configs/inboxlive.yaml -user 42 -conversation t_123
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/inbox-dashboard/internal/api"
	"github.com/rickgao/inbox-dashboard/internal/config"
	"github.com/rickgao/inbox-dashboard/internal/connection"
	"github.com/rickgao/inbox-dashboard/internal/router"
	"github.com/rickgao/inbox-dashboard/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to config file (YAML or .toml); defaults apply when empty")
	userID := flag.String("user", "", "dashboard user id (overrides session.user_id)")
	conversationID := flag.String("conversation", "", "conversation to highlight (overrides session.conversation_id)")
	origin := flag.String("origin", "", "backend origin (overrides backend.origin)")
	history := flag.Int("history", 10, "messages of the watched conversation to print before going live (0 = none)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("inboxlive", version.String())
		return
	}

	cfg, err := loadConfig(*configPath, *userID, *conversationID, *origin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting inboxlive",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
		"origin", cfg.Backend.Origin,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	if err := run(ctx, cfg, *history, logger); err != nil {
		logger.Error("inboxlive failed", "error", err)
		os.Exit(1)
	}
	logger.Info("inboxlive stopped")
}

func loadConfig(path, userID, conversationID, origin string) (*config.Config, error) {
	var cfg *config.Config
	if path == "" {
		cfg = config.Default()
	} else {
		loaded, err := config.LoadWithDefaults(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if userID != "" {
		cfg.Session.UserID = userID
	}
	if conversationID != "" {
		cfg.Session.ConversationID = conversationID
	}
	if origin != "" {
		cfg.Backend.Origin = origin
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	if cfg.Session.UserID == "" {
		return nil, errors.New("a user id is required (-user or session.user_id)")
	}
	return cfg, nil
}

func run(ctx context.Context, cfg *config.Config, history int, logger *slog.Logger) error {
	apiClient := api.NewClient(
		cfg.Backend.Origin,
		cfg.Backend.APIKey,
		api.WithLogger(logger),
		api.WithTimeout(cfg.Backend.Timeout),
		api.WithRetries(cfg.Backend.MaxRetries, time.Second),
	)

	p := newPrinter(os.Stdout, cfg.Session.ConversationID)

	// Resolve the user before opening the realtime channel.
	user, err := apiClient.GetUser(ctx, cfg.Session.UserID)
	switch {
	case api.IsNotFound(err):
		return fmt.Errorf("user %s does not exist", cfg.Session.UserID)
	case err != nil:
		logger.Warn("could not resolve user, connecting anyway", "user_id", cfg.Session.UserID, "error", err)
	default:
		p.User(user)
	}

	if cfg.Session.ConversationID != "" && history > 0 {
		msgs, err := apiClient.GetConversationMessages(ctx, cfg.Session.ConversationID, api.HistoryParams{
			UserID: cfg.Session.UserID,
			Limit:  history,
		})
		if err != nil {
			logger.Warn("could not load conversation history", "conversation_id", cfg.Session.ConversationID, "error", err)
		} else {
			p.History(msgs)
		}
	}

	rt := router.New(router.Config{SubscriberBuffer: cfg.Realtime.SubscriberBuffer}, logger.With("component", "router"))
	defer rt.Close()

	mgr := connection.NewManager(managerConfig(cfg), rt, logger.With("component", "connection"))

	sub := rt.Subscribe()
	defer sub.Close()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p.Run(gctx, sub)
		return nil
	})

	var healthServer *http.Server
	if cfg.Health.Port > 0 {
		healthServer = &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Health.Port),
			Handler:           newHealthHandler(cfg.Health.Path, mgr, rt),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Info("starting health server", "port", cfg.Health.Port, "path", cfg.Health.Path)
			if err := healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("health server: %w", err)
			}
			return nil
		})
	}

	if err := mgr.Start(gctx, cfg.Session.UserID); err != nil {
		return fmt.Errorf("start connection manager: %w", err)
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := mgr.Stop(shutdownCtx); err != nil {
			logger.Warn("connection manager did not stop cleanly", "error", err)
		}
		if healthServer != nil {
			healthServer.Shutdown(shutdownCtx)
		}
		return nil
	})

	return g.Wait()
}

func managerConfig(cfg *config.Config) connection.ManagerConfig {
	mc := connection.DefaultManagerConfig()
	mc.Origin = cfg.Backend.Origin
	mc.PathTemplate = cfg.Backend.WSPathTemplate
	mc.HeartbeatInterval = cfg.Realtime.HeartbeatInterval
	mc.PongTimeout = cfg.Realtime.PongTimeout
	mc.ReconnectBaseWait = cfg.Realtime.ReconnectBaseDelay
	mc.ReconnectMaxWait = cfg.Realtime.ReconnectMaxDelay
	mc.HandshakeTimeout = cfg.Realtime.HandshakeTimeout
	mc.WriteTimeout = cfg.Realtime.WriteTimeout
	mc.MessageBufferSize = cfg.Realtime.BufferSize
	if cfg.Backend.APIKey != "" {
		mc.Header = http.Header{"X-API-Key": []string{cfg.Backend.APIKey}}
	}
	return mc
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	// Events go to stdout; logs stay on stderr so the two never interleave.
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
