package docsonar

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/docsonar/docsonar"
	"github.com/docsonar/docsonar/pkg/config"
	"github.com/docsonar/docsonar/pkg/logger"
	"github.com/docsonar/docsonar/pkg/server"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the docsonar HTTP server",
	Long: `Start the docsonar HTTP server to provide REST API access to fused search.

The server provides endpoints for:
- Fused multi-source search
- Graph navigation (related pages, related functions, stats)
- Search quality evaluation
- Health checks

Configuration can be provided through config files, environment variables, or command-line flags.`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().String("host", "", "Server host")
	serverCmd.Flags().Int("port", 0, "Server port")
	serverCmd.Flags().String("mode", "", "Server mode (debug, release, test)")

	serverCmd.Flags().String("snapshot", "", "Knowledge graph snapshot path")
	serverCmd.Flags().String("index-url", "", "Document index base URL")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	overrideServerFlags(cmd, cfg)

	log := logger.NewLogger(cfg.Log.Format, cfg.Log.Level)

	ctx := context.Background()
	client, err := docsonar.NewClient(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize docsonar: %w", err)
	}

	srv := server.New(cfg, client)
	srv.Setup()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		log.Info("received signal, shutting down", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Stop(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
		return client.Close(shutdownCtx)
	}
}

func overrideServerFlags(cmd *cobra.Command, cfg *config.Config) {
	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.Server.Host = host
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.Server.Port = port
	}
	if mode, _ := cmd.Flags().GetString("mode"); mode != "" {
		cfg.Server.Mode = mode
	}
	if snapshot, _ := cmd.Flags().GetString("snapshot"); snapshot != "" {
		cfg.Graph.SnapshotPath = snapshot
	}
	if indexURL, _ := cmd.Flags().GetString("index-url"); indexURL != "" {
		cfg.Adapter.BaseURL = indexURL
	}
}
