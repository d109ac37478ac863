package docsonar

import (
	"bufio"
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

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [queries...]",
	Short: "Score search quality for a set of queries",
	Long: `Score search quality for a set of queries. Queries are taken from the
arguments, or one per line from the file given with --file.`,
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().String("file", "", "File with one query per line")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	queries := args
	if file, _ := cmd.Flags().GetString("file"); file != "" {
		fromFile, err := readQueryFile(file)
		if err != nil {
			return err
		}
		queries = append(queries, fromFile...)
	}
	if len(queries) == 0 {
		return fmt.Errorf("no queries given")
	}

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

	report, err := client.EvaluateSearchQuality(ctx, queries)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func readQueryFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open query file: %w", err)
	}
	defer f.Close()

	var queries []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			queries = append(queries, line)
		}
	}
	return queries, scanner.Err()
}
