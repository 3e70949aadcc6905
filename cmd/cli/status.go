package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sevigo/review-gate/internal/config"
	"github.com/sevigo/review-gate/internal/db"
	"github.com/sevigo/review-gate/internal/storage"
)

var (
	outputJSON  bool
	statusSince time.Duration
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Shows how often each recovery tier was needed recently",
	Long: `Shows how often each recovery tier was needed recently.

A healthy model answers with well-formed JSON and every run lands on the
structural tier. Growing regex or manual counts mean the model's output
quality is drifting.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx := context.Background()

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		dbConn, cleanup, err := db.NewDatabase(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer cleanup()

		store := storage.NewStore(dbConn.DB)
		counts, err := store.ListRecoveryTierCounts(ctx, time.Now().Add(-statusSince))
		if err != nil {
			return fmt.Errorf("failed to retrieve recovery tier counts: %w", err)
		}

		if outputJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(counts)
		}

		if len(counts) == 0 {
			fmt.Printf("No review runs recorded in the last %s.\n", statusSince)
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "RECOVERY TIER\tRUNS")
		for _, tier := range []string{"structural", "regex", "manual", "terminal", "generation_error"} {
			if count, ok := counts[tier]; ok {
				fmt.Fprintf(w, "%s\t%d\n", tier, count)
			}
		}
		return w.Flush()
	},
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	statusCmd.Flags().BoolVar(&outputJSON, "json", false, "Output status as JSON")
	statusCmd.Flags().DurationVar(&statusSince, "since", 7*24*time.Hour, "Look-back window")
	rootCmd.AddCommand(statusCmd)
}
