// Command backendsim runs the simulated messaging backend for local testing
// of inboxlive.
//
//	backendsim -addr :8000 -user 42 -publish-every 5s
//
// Failure modes are switched at runtime through the control endpoints, e.g.
//
//	curl -X POST 'localhost:8000/control/silent?on=true'
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
	"strconv"
	"syscall"
	"time"

	"github.com/fatih/color"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/inbox-dashboard/internal/backendsim"
	"github.com/rickgao/inbox-dashboard/internal/model"
	"github.com/rickgao/inbox-dashboard/internal/version"
)

func main() {
	addr := flag.String("addr", ":8000", "listen address")
	userID := flag.Int64("user", 42, "id of the demo user")
	username := flag.String("username", "demo", "name of the demo user")
	conversation := flag.String("conversation", "c1", "conversation used by the demo publisher")
	publishEvery := flag.Duration("publish-every", 0, "publish a demo message this often (0 = off)")
	verbose := flag.Bool("verbose", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	sim := backendsim.New(logger)
	sim.AddUser(model.User{
		ID:        *userID,
		Username:  *username,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	})

	mux := http.NewServeMux()
	mux.Handle("/api/", sim)
	mux.Handle("/control/", sim.ControlHandler())

	server := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)
	cyan.Printf("backendsim %s\n", version.String())
	green.Print("    ▶ ")
	fmt.Printf("Listening:  %s\n", *addr)
	green.Print("    ▶ ")
	fmt.Printf("Realtime:   ws://localhost%s/api/ws/%d\n", *addr, *userID)
	green.Print("    ▶ ")
	fmt.Printf("Control:    http://localhost%s/control/stats\n", *addr)
	fmt.Println()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	if *publishEvery > 0 {
		subject := strconv.FormatInt(*userID, 10)
		g.Go(func() error {
			return publishLoop(gctx, sim, subject, *conversation, *publishEvery, logger)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		sim.DropAll()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("backendsim failed", "error", err)
		os.Exit(1)
	}
	logger.Info("backendsim stopped")
}

func publishLoop(ctx context.Context, sim *backendsim.Server, subject, conversation string, every time.Duration, logger *slog.Logger) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	n := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n++
			text := fmt.Sprintf("demo message #%d", n)
			delivered, err := sim.PublishNewMessage(subject, backendsim.DemoMessage(conversation, "demo-bot", text))
			if err != nil {
				return fmt.Errorf("publish: %w", err)
			}
			logger.Debug("published demo message", "n", n, "delivered", delivered)
		}
	}
}
