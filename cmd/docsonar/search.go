package docsonar

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docsonar/docsonar"
	"github.com/docsonar/docsonar/pkg/config"
	"github.com/docsonar/docsonar/pkg/logger"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Run one fused search from the command line",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().Int("limit", 0, "Maximum number of results")
	searchCmd.Flags().Bool("json", false, "Print the full result as JSON")
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.NewLogger(cfg.Log.Format, cfg.Log.Level)
	query := strings.Join(args, " ")

	ctx := context.Background()
	client, err := docsonar.NewClient(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize docsonar: %w", err)
	}
	defer client.Close(ctx)

	opts := client.DefaultSearchOptions()
	if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 {
		opts.MaxResults = limit
	}

	result, err := client.Search(ctx, query, opts)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	if len(result.FailedSources) > 0 {
		fmt.Printf("warning: sources failed: %s\n", strings.Join(result.FailedSources, ", "))
	}
	for i, r := range result.Results {
		fmt.Printf("%2d. [%.3f] %s (%s)\n", i+1, r.Score, r.Title, r.Source)
		if r.URL != "" {
			fmt.Printf("    %s\n", r.URL)
		}
	}
	fmt.Printf("%d results in %s\n", len(result.Results), result.Duration)
	return nil
}
