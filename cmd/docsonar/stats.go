package docsonar

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/docsonar/docsonar"
	"github.com/docsonar/docsonar/pkg/config"
	"github.com/docsonar/docsonar/pkg/logger"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print knowledge graph statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.NewLogger(cfg.Log.Format, cfg.Log.Level)

	ctx := context.Background()
	client, err := docsonar.NewClient(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize docsonar: %w", err)
	}
	defer client.Close(ctx)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(client.GraphStats())
}
