package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sevigo/review-gate/internal/config"
	"github.com/sevigo/review-gate/internal/core"
	"github.com/sevigo/review-gate/internal/diff"
	"github.com/sevigo/review-gate/internal/github"
	"github.com/sevigo/review-gate/internal/llm"
	"github.com/sevigo/review-gate/internal/review"
)

var (
	verbose        bool
	reviewProvider string
	reviewModel    string
	ollamaHost     string
	minSeverity    string
	maxComments    int
)

var reviewCmd = &cobra.Command{
	Use:   "review [pr-url]",
	Short: "Review a GitHub pull request locally and print the result",
	Long: `Review a GitHub pull request locally and print the result.

The review command fetches the PR diff with a personal access token, asks the
configured model for feedback, and runs the response through the same recovery
pipeline the service uses. Nothing is posted to GitHub.

Examples:
  gate-cli review https://github.com/owner/repo/pull/123
  gate-cli review --provider ollama --model gemma3:latest https://github.com/owner/repo/pull/123`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	reviewCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output with timing information")
	reviewCmd.Flags().StringVar(&reviewProvider, "provider", "ollama", "Model provider (ollama or gemini)")
	reviewCmd.Flags().StringVar(&reviewModel, "model", "gemma3:latest", "Model name")
	reviewCmd.Flags().StringVar(&ollamaHost, "ollama-host", "http://localhost:11434", "Ollama server URL")
	reviewCmd.Flags().StringVar(&minSeverity, "min-severity", "", "Drop comments below this severity")
	reviewCmd.Flags().IntVar(&maxComments, "max-comments", 0, "Cap the number of comments; 0 means unbounded")
	rootCmd.AddCommand(reviewCmd)
}

// stepTimer tracks timing for verbose output
type stepTimer struct {
	stepNum    int
	totalSteps int
	start      time.Time
	verbose    bool
}

func newStepTimer(totalSteps int, verbose bool) *stepTimer {
	return &stepTimer{
		stepNum:    0,
		totalSteps: totalSteps,
		verbose:    verbose,
	}
}

func (t *stepTimer) step(name string) {
	t.stepNum++
	t.start = time.Now()
	if t.verbose {
		titleColor.Printf("\n🔧 Step %d/%d: %s...\n", t.stepNum, t.totalSteps, name)
	} else {
		fmt.Printf("%s...\n", name)
	}
}

func (t *stepTimer) done(details ...string) {
	if t.verbose {
		elapsed := time.Since(t.start).Round(time.Millisecond)
		successColor.Printf("   ✓ Done (%s)\n", elapsed)
		for _, d := range details {
			dimColor.Printf("   └── %s\n", d)
		}
	}
}

func (t *stepTimer) info(format string, args ...any) {
	if t.verbose {
		dimColor.Printf("   ├── "+format+"\n", args...)
	}
}

func runReview(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	prURL := args[0]

	timer := newStepTimer(4, verbose)
	overallStart := time.Now()

	titleColor.Println("🚀 Review-Gate - PR Review")
	dimColor.Printf("   Target: %s\n\n", prURL)

	filter, err := buildFilter(minSeverity, maxComments)
	if err != nil {
		return err
	}

	logger := newCLILogger()

	// 1. Fetch PR metadata
	timer.step("Fetching PR metadata")
	owner, repoName, prNumber, err := parsePullRequestURL(prURL)
	if err != nil {
		return fmt.Errorf("invalid PR URL: %w\n\nExpected format: https://github.com/owner/repo/pull/123", err)
	}

	token := viper.GetString("GITHUB_TOKEN")
	if token == "" {
		return fmt.Errorf("GITHUB_TOKEN is not set\n\nTip: Set RG_GITHUB_TOKEN or pass --github-token")
	}
	ghClient := github.NewPATClient(ctx, token, logger)

	pr, err := ghClient.GetPullRequest(ctx, owner, repoName, prNumber)
	if err != nil {
		return fmt.Errorf("failed to fetch PR: %w\n\nTip: Check that the PR exists and your token has access", err)
	}
	timer.info("PR #%d: %s", pr.GetNumber(), pr.GetTitle())
	timer.info("Head SHA: %s", truncateSHA(pr.GetHead().GetSHA()))
	timer.done()

	// 2. Fetch changed files
	timer.step("Fetching changed files")
	files, err := ghClient.GetChangedFiles(ctx, owner, repoName, prNumber)
	if err != nil {
		return fmt.Errorf("failed to list changed files: %w", err)
	}

	var diffs []llm.FileDiff
	ranges := make(map[string][]core.DiffRange)
	for _, f := range files {
		if f.Patch == "" {
			continue
		}
		diffs = append(diffs, llm.FileDiff{Path: f.Filename, Patch: f.Patch})
		ranges[f.Filename] = diff.RangesFromPatch(f.Patch, logger)
	}
	if len(diffs) == 0 {
		return fmt.Errorf("pull request has no reviewable file changes")
	}
	timer.info("Files with patches: %d", len(diffs))
	timer.done()

	// 3. Generate review
	timer.step("Generating review")
	generator, err := llm.NewGenerator(ctx, cliConfig(), logger)
	if err != nil {
		return fmt.Errorf("failed to create generator: %w\n\nTip: Check that the model service is running", err)
	}

	raw, err := generator.GenerateReview(ctx, llm.ReviewRequest{
		RepoFullName: fmt.Sprintf("%s/%s", owner, repoName),
		PRTitle:      pr.GetTitle(),
		Files:        diffs,
	})
	if err != nil {
		return fmt.Errorf("failed to generate review: %w", err)
	}
	timer.info("Response bytes: %d", len(raw))
	timer.done()

	// 4. Recover structured review
	timer.step("Recovering structured review")
	result, tier := review.NewPipeline(filter, logger).Run(raw, ranges)
	timer.info("Tier: %s", tier)
	timer.done()

	if verbose {
		dimColor.Printf("\n⏱️  Total time: %s\n", time.Since(overallStart).Round(time.Millisecond))
	}

	printReview(result, string(tier))
	return nil
}

// cliConfig builds just enough service configuration for the generator.
func cliConfig() *config.Config {
	return &config.Config{
		LLM: config.LLMConfig{
			Provider:     reviewProvider,
			ModelName:    reviewModel,
			OllamaHost:   ollamaHost,
			GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		},
	}
}

func newCLILogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// parsePullRequestURL splits https://github.com/owner/repo/pull/123 into its
// parts.
func parsePullRequestURL(raw string) (owner, repo string, number int, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", 0, err
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 4 || parts[2] != "pull" {
		return "", "", 0, fmt.Errorf("unexpected path %q", u.Path)
	}

	number, err = strconv.Atoi(parts[3])
	if err != nil || number <= 0 {
		return "", "", 0, fmt.Errorf("invalid pull request number %q", parts[3])
	}
	return parts[0], parts[1], number, nil
}

func truncateSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
