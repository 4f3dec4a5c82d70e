// Command mentorbot runs the advisor consultation bot: an HTTP server that
// receives LINE webhook callbacks and replies through the Messaging API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mentorline/mentorbot/bot"
	"github.com/mentorline/mentorbot/core/bootstrap"
	coreconfig "github.com/mentorline/mentorbot/core/config"
	"github.com/mentorline/mentorbot/core/line"
	"github.com/mentorline/mentorbot/core/logger"
)

const defaultConfigPath = "config.yaml"

func main() {
	if err := run(); err != nil {
		log.Fatalf("mentorbot: %v", err)
	}
}

func run() error {
	startedAt := time.Now()
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = defaultConfigPath
	}
	log.Printf("loading config: %s", cfgPath)
	cfg, err := coreconfig.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	app, err := bootstrap.Run(bootstrap.Options{Config: cfg})
	if err != nil {
		return fmt.Errorf("bootstrap failed: %w", err)
	}
	defer func() {
		if err := logger.Shutdown(); err != nil {
			log.Printf("logger shutdown error: %v", err)
		}
	}()

	client, err := line.NewClient(cfg.Line.ChannelToken)
	if err != nil {
		return fmt.Errorf("messaging client init failed: %w", err)
	}
	dispatcher := line.NewDispatcher(line.Options{})
	b := bot.New(app.Engine, line.NewSender(client), dispatcher, cfg.RateLimit.Interval())

	mux := http.NewServeMux()
	mux.Handle("POST "+cfg.Server.CallbackPath, line.NewWebhook(cfg.Line.ChannelSecret, b))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	addr := net.JoinHostPort(cfg.Server.Listen, strconv.Itoa(cfg.Server.Port))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	appLog := logger.Component("app")
	appLog.Info("app ready",
		slog.String("event", "ready"),
		slog.String("addr", addr),
		slog.String("callback_path", cfg.Server.CallbackPath),
		slog.Duration("startup_duration", logger.RoundMS(time.Since(startedAt))),
	)

	select {
	case err := <-errCh:
		dispatcher.Close()
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	appLog.Info("shutting down...",
		slog.String("event", "shutdown"),
	)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}

	// Drain queued replies before the process exits.
	dispatcher.Close()
	if errs := dispatcher.ErrorCount(); errs > 0 {
		appLog.Warn("outbound errors during run",
			slog.String("event", "shutdown.stats"),
			slog.Uint64("send_errors", errs),
		)
	}
	return nil
}
