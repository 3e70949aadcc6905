package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sevigo/review-gate/internal/config"
	"github.com/sevigo/review-gate/internal/core"
	"github.com/sevigo/review-gate/internal/diff"
	"github.com/sevigo/review-gate/internal/github"
	"github.com/sevigo/review-gate/internal/llm"
	"github.com/sevigo/review-gate/internal/review"
	"github.com/sevigo/review-gate/internal/storage"
)

// ClientFactory creates a GitHub client scoped to one App installation.
// Injected so tests can substitute a mock client.
type ClientFactory func(ctx context.Context, cfg *config.Config, installationID int64, logger *slog.Logger) (github.Client, error)

// tier recorded when the model never produced text to recover from.
const tierGenerationError = "generation_error"

// ReviewJob is a background job that reviews a single pull request: it pulls
// the changed files, asks the generator for feedback, recovers a structured
// review from whatever text comes back, and publishes the result.
type ReviewJob struct {
	cfg       *config.Config
	generator llm.Generator
	store     storage.Store
	newClient ClientFactory
	logger    *slog.Logger
}

// NewReviewJob creates a ReviewJob with its collaborators.
func NewReviewJob(cfg *config.Config, generator llm.Generator, store storage.Store, newClient ClientFactory, logger *slog.Logger) core.Job {
	if cfg == nil {
		panic("config cannot be nil")
	}
	if generator == nil {
		panic("generator cannot be nil")
	}
	if newClient == nil {
		newClient = github.CreateInstallationClient
	}
	return &ReviewJob{
		cfg:       cfg,
		generator: generator,
		store:     store,
		newClient: newClient,
		logger:    logger,
	}
}

// Run executes the review job for a given event.
func (j *ReviewJob) Run(ctx context.Context, event *core.ReviewEvent) error {
	if err := j.validateInputs(ctx, event); err != nil {
		j.logger.Error("input validation failed", "error", err)
		return fmt.Errorf("input validation failed: %w", err)
	}

	j.logger.Info("starting review job", "repo", event.RepoFullName, "pr", event.PRNumber)

	ghClient, err := j.newClient(ctx, j.cfg, event.InstallationID, j.logger)
	if err != nil {
		j.logger.Error("failed to create GitHub client", "error", err)
		return fmt.Errorf("failed to create GitHub client: %w", err)
	}
	publisher := github.NewPublisher(ghClient, j.logger)

	pr, err := ghClient.GetPullRequest(ctx, event.RepoOwner, event.RepoName, event.PRNumber)
	if err != nil {
		j.logger.Error("failed to get PR details", "error", err)
		return fmt.Errorf("failed to get PR details: %w", err)
	}
	if pr.GetHead() == nil || pr.GetHead().GetSHA() == "" {
		return fmt.Errorf("PR %d has no valid head SHA", event.PRNumber)
	}
	event.HeadSHA = pr.GetHead().GetSHA()
	if event.PRTitle == "" {
		event.PRTitle = pr.GetTitle()
	}

	checkRunID, err := publisher.InProgress(ctx, event, "Code Review", "Automated review in progress...")
	if err != nil {
		j.logger.Error("failed to set in-progress status", "error", err)
		return fmt.Errorf("failed to set in-progress status: %w", err)
	}

	files, err := ghClient.GetChangedFiles(ctx, event.RepoOwner, event.RepoName, event.PRNumber)
	if err != nil {
		j.completeOnError(ctx, publisher, event, checkRunID, "Failed to list changed files")
		return fmt.Errorf("failed to list changed files: %w", err)
	}

	repoCfg := j.loadRepoConfig(ctx, ghClient, event)
	effectiveFilter := repoCfg.Apply(j.cfg.Filter)

	diffs, ranges := j.collectDiffs(files, repoCfg.ExcludePaths)
	if len(diffs) == 0 {
		j.logger.Info("no reviewable files in pull request", "repo", event.RepoFullName, "pr", event.PRNumber)
		return publisher.Completed(ctx, event, checkRunID, "neutral", "Nothing to Review",
			"The pull request contains no reviewable file changes.")
	}

	result, tier := j.generateAndRecover(ctx, event, diffs, ranges, effectiveFilter)

	j.saveRecord(ctx, event, result, tier)

	if err := publisher.PublishReview(ctx, event, result); err != nil {
		j.completeOnError(ctx, publisher, event, checkRunID, "Failed to publish review")
		return fmt.Errorf("failed to publish review: %w", err)
	}

	if core.IsFailureSentinel(result.Summary) {
		j.completeOnError(ctx, publisher, event, checkRunID, "The model response could not be turned into a review")
		return fmt.Errorf("review for %s#%d degraded to a failure sentinel", event.RepoFullName, event.PRNumber)
	}

	if err := publisher.Completed(ctx, event, checkRunID, "success", "Review Complete",
		fmt.Sprintf("Posted %d review comments.", len(result.Comments))); err != nil {
		j.logger.Error("failed to update completion status", "error", err)
		return fmt.Errorf("failed to update completion status: %w", err)
	}

	j.logger.Info("review job completed successfully",
		"repo", event.RepoFullName,
		"pr", event.PRNumber,
		"tier", tier,
		"comments", len(result.Comments),
	)
	return nil
}

// generateAndRecover calls the generator and runs the recovery pipeline over
// its raw output. It never fails; a model that produced nothing yields a
// sentinel review the publisher will suppress.
func (j *ReviewJob) generateAndRecover(
	ctx context.Context,
	event *core.ReviewEvent,
	diffs []llm.FileDiff,
	ranges map[string][]core.DiffRange,
	filter core.FilterConfig,
) (*core.StructuredReview, string) {
	raw, err := j.generator.GenerateReview(ctx, llm.ReviewRequest{
		RepoFullName: event.RepoFullName,
		PRTitle:      event.PRTitle,
		Files:        diffs,
	})
	if err != nil || strings.TrimSpace(raw) == "" {
		j.logger.Error("model produced no usable response", "repo", event.RepoFullName, "pr", event.PRNumber, "error", err)
		return &core.StructuredReview{
			Summary:  core.SentinelGenerationError,
			Comments: []core.ReviewComment{},
		}, tierGenerationError
	}

	pipeline := review.NewPipeline(filter, j.logger)
	result, tier := pipeline.Run(raw, ranges)
	return result, string(tier)
}

// collectDiffs converts the changed files into generator input and the
// per-file changed-line ranges used to anchor comments. Files without patch
// data (binary, too large) and excluded paths contribute neither.
func (j *ReviewJob) collectDiffs(files []github.ChangedFile, excludePaths []string) ([]llm.FileDiff, map[string][]core.DiffRange) {
	var diffs []llm.FileDiff
	ranges := make(map[string][]core.DiffRange)

	for _, f := range files {
		if f.Patch == "" {
			continue
		}
		if isExcluded(f.Filename, excludePaths) {
			j.logger.Debug("skipping excluded path", "path", f.Filename)
			continue
		}
		diffs = append(diffs, llm.FileDiff{Path: f.Filename, Patch: f.Patch})
		if r := diff.RangesFromPatch(f.Patch, j.logger); len(r) > 0 {
			ranges[f.Filename] = r
		}
	}
	return diffs, ranges
}

// loadRepoConfig fetches .review-gate.yml from the head commit. Any problem
// falls back to defaults; a repo must never be able to break its own reviews
// with a bad config file.
func (j *ReviewJob) loadRepoConfig(ctx context.Context, ghClient github.Client, event *core.ReviewEvent) *core.RepoConfig {
	data, err := ghClient.GetFileContent(ctx, event.RepoOwner, event.RepoName, config.RepoConfigFileName, event.HeadSHA)
	if err != nil {
		j.logger.Warn("failed to fetch repo config, using defaults", "repo", event.RepoFullName, "error", err)
		return core.DefaultRepoConfig()
	}

	repoCfg, err := config.ParseRepoConfig(data)
	if err != nil {
		if !errors.Is(err, config.ErrRepoConfigNotFound) {
			j.logger.Warn("invalid repo config, using defaults", "repo", event.RepoFullName, "error", err)
		}
		return core.DefaultRepoConfig()
	}

	j.logger.Debug("applying repo config overrides",
		"repo", event.RepoFullName,
		"min_severity", repoCfg.MinSeverity,
		"max_comments", repoCfg.MaxComments,
	)
	return repoCfg
}

// saveRecord persists the run outcome. Storage trouble is logged, not fatal;
// the review itself matters more than its bookkeeping.
func (j *ReviewJob) saveRecord(ctx context.Context, event *core.ReviewEvent, result *core.StructuredReview, tier string) {
	if j.store == nil {
		return
	}
	record := &core.ReviewRecord{
		RepoFullName:      event.RepoFullName,
		PRNumber:          event.PRNumber,
		HeadSHA:           event.HeadSHA,
		Summary:           result.Summary,
		CommentsParsed:    len(result.Comments),
		CommentsPublished: len(result.Comments),
		RecoveryTier:      tier,
	}
	if core.IsFailureSentinel(result.Summary) {
		record.CommentsPublished = 0
	}
	if err := j.store.SaveReview(ctx, record); err != nil {
		j.logger.Error("failed to save review record", "repo", event.RepoFullName, "pr", event.PRNumber, "error", err)
	}
}

// validateInputs ensures the event contains all required fields.
func (j *ReviewJob) validateInputs(ctx context.Context, event *core.ReviewEvent) error {
	if ctx == nil {
		return fmt.Errorf("context cannot be nil")
	}
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}
	if event.RepoOwner == "" {
		return fmt.Errorf("repository owner cannot be empty")
	}
	if event.RepoName == "" {
		return fmt.Errorf("repository name cannot be empty")
	}
	if event.RepoFullName == "" {
		return fmt.Errorf("repository full name cannot be empty")
	}
	if event.PRNumber <= 0 {
		return fmt.Errorf("pull request number must be positive, got: %d", event.PRNumber)
	}
	if event.InstallationID <= 0 {
		return fmt.Errorf("installation ID must be positive, got: %d", event.InstallationID)
	}
	return nil
}

func isExcluded(path string, excludePaths []string) bool {
	cleaned := strings.TrimPrefix(path, "./")
	for _, prefix := range excludePaths {
		if strings.HasPrefix(cleaned, strings.TrimPrefix(prefix, "./")) {
			return true
		}
	}
	return false
}

// completeOnError marks the check run as failed.
func (j *ReviewJob) completeOnError(ctx context.Context, publisher github.Publisher, event *core.ReviewEvent, checkRunID int64, message string) {
	if err := publisher.Completed(ctx, event, checkRunID, "failure", "Review Failed", message); err != nil {
		j.logger.Error("failed to update failure status", "error", err)
	}
}
