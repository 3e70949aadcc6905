package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sevigo/review-gate/internal/core"
	"github.com/sevigo/review-gate/internal/diff"
	"github.com/sevigo/review-gate/internal/review"
)

var (
	parsePatches     []string
	parseMinSeverity string
	parseMaxComments int
	parseJSON        bool
	parseVerbose     bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [response-file]",
	Short: "Run a saved model response through the review recovery pipeline",
	Long: `Run a saved model response through the review recovery pipeline.

Reads the raw model output from the given file (or stdin when the argument
is "-"), recovers a structured review from it, and prints the result. Patch
files can be supplied to anchor comments to changed lines, exactly as the
service does.

Examples:
  gate-cli parse response.txt
  gate-cli parse response.txt --patch main.go=main.patch --min-severity high
  cat response.txt | gate-cli parse - --json`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	parseCmd.Flags().StringArrayVar(&parsePatches, "patch", nil, "Patch for one file as path=patchfile; repeatable")
	parseCmd.Flags().StringVar(&parseMinSeverity, "min-severity", "", "Drop comments below this severity (critical, high, medium, low)")
	parseCmd.Flags().IntVar(&parseMaxComments, "max-comments", 0, "Cap the number of comments; 0 means unbounded")
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "Output the recovered review as JSON")
	parseCmd.Flags().BoolVarP(&parseVerbose, "verbose", "v", false, "Show pipeline logs")
	rootCmd.AddCommand(parseCmd)
}

func runParse(_ *cobra.Command, args []string) error {
	raw, err := readResponse(args[0])
	if err != nil {
		return err
	}

	filter, err := buildFilter(parseMinSeverity, parseMaxComments)
	if err != nil {
		return err
	}

	ranges, err := loadPatchRanges(parsePatches)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if parseVerbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	result, tier := review.NewPipeline(filter, logger).Run(raw, ranges)

	if parseJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(struct {
			Tier   string                 `json:"tier"`
			Review *core.StructuredReview `json:"review"`
		}{Tier: string(tier), Review: result})
	}

	printReview(result, string(tier))
	return nil
}

func readResponse(arg string) (string, error) {
	if arg == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read response from stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(arg)
	if err != nil {
		return "", fmt.Errorf("failed to read response file: %w", err)
	}
	return string(data), nil
}

func buildFilter(minSeverity string, maxComments int) (core.FilterConfig, error) {
	var filter core.FilterConfig

	if minSeverity != "" {
		severity := core.ParsePriority(minSeverity)
		if severity == "" {
			return filter, fmt.Errorf("invalid --min-severity %q; use critical, high, medium or low", minSeverity)
		}
		filter.MinSeverity = severity
	}
	if maxComments > 0 {
		filter.MaxComments = maxComments
	}
	return filter, nil
}

// loadPatchRanges turns repeated path=patchfile flags into the per-file
// changed-line ranges the validator needs.
func loadPatchRanges(patches []string) (map[string][]core.DiffRange, error) {
	if len(patches) == 0 {
		return nil, nil
	}

	ranges := make(map[string][]core.DiffRange)
	for _, spec := range patches {
		path, patchFile, ok := strings.Cut(spec, "=")
		if !ok || path == "" || patchFile == "" {
			return nil, fmt.Errorf("invalid --patch %q; expected path=patchfile", spec)
		}

		data, err := os.ReadFile(patchFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read patch file %s: %w", patchFile, err)
		}
		ranges[path] = diff.RangesFromPatch(string(data), nil)
	}
	return ranges, nil
}
