package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/agentdeck/internal/adapters/otel"
	"github.com/emiliopalmerini/agentdeck/internal/adapters/turso"
	"github.com/emiliopalmerini/agentdeck/internal/app"
	"github.com/emiliopalmerini/agentdeck/internal/backend"
	"github.com/emiliopalmerini/agentdeck/internal/board"
	"github.com/emiliopalmerini/agentdeck/internal/github"
	"github.com/emiliopalmerini/agentdeck/internal/ports"
	"github.com/emiliopalmerini/agentdeck/internal/querycache"
	"github.com/emiliopalmerini/agentdeck/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web board",
	Long: `Start the local web board server.

Configuration is read from AGENTDECK_* environment variables;
AGENTDECK_BACKEND_URL is required.

Examples:
  agentdeck serve                          # Listen on :8080
  AGENTDECK_ADDR=:3000 agentdeck serve     # Listen on :3000`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := app.New()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var metrics ports.Metrics
	otelCfg := otel.LoadConfig()
	if otelCfg.Enabled {
		exporter, err := otel.NewExporter(ctx, otelCfg)
		if err != nil {
			log.Printf("WARN metrics exporter unavailable, continuing without: %v", err)
			metrics = otel.NewNoOpExporter()
		} else {
			metrics = exporter
		}
	} else {
		metrics = otel.NewNoOpExporter()
	}
	defer func() {
		if err := metrics.Close(context.Background()); err != nil {
			log.Printf("WARN metrics shutdown: %v", err)
		}
	}()

	db, err := turso.NewDB(cfg.PrefsDatabaseURL, cfg.PrefsAuthToken)
	if err != nil {
		return fmt.Errorf("failed to open preferences database: %w", err)
	}
	defer db.Close()

	prefs, err := turso.NewPrefsRepository(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to initialize preferences: %w", err)
	}

	client := backend.NewClient(cfg.BackendURL, cfg.BackendToken,
		backend.WithObserver(func(op string, elapsed time.Duration, err error) {
			metrics.RecordBackendRequest(op, elapsed, err != nil)
		}))
	gh := github.NewClient("", cfg.GitHubToken)

	hub := web.NewHub()
	b := board.New(client, querycache.NewStore(), web.NewHubNotifier(hub), metrics, board.Config{
		ListTTL:      cfg.ListTTL,
		PollInterval: cfg.PollInterval,
	})
	go b.WatchSessions(ctx)

	server := web.NewServer(b, gh, prefs, hub)

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")
		cancel()
		shutdownCtx, done := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer done()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("WARN server shutdown: %v", err)
		}
	}()

	fmt.Printf("Starting agentdeck at http://localhost%s\n", cfg.Addr)
	if err := server.Start(cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
