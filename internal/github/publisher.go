package github

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/go-github/v73/github"

	"github.com/sevigo/review-gate/internal/core"
)

// Publisher renders a StructuredReview onto a pull request: one free-text
// note plus a location-anchored annotation per surviving comment. It also
// maintains the check-run lifecycle around a review job.
//
//go:generate mockgen -destination=../../mocks/mock_publisher.go -package=mocks . Publisher
type Publisher interface {
	InProgress(ctx context.Context, event *core.ReviewEvent, title, summary string) (int64, error)
	Completed(ctx context.Context, event *core.ReviewEvent, checkRunID int64, conclusion, title, summary string) error
	PublishReview(ctx context.Context, event *core.ReviewEvent, review *core.StructuredReview) error
}

type publisher struct {
	client Client
	logger *slog.Logger
}

// NewPublisher creates a Publisher backed by the given GitHub client.
func NewPublisher(client Client, logger *slog.Logger) Publisher {
	return &publisher{client: client, logger: logger}
}

// InProgress creates a new check run with an "in_progress" status.
func (p *publisher) InProgress(ctx context.Context, event *core.ReviewEvent, title, summary string) (int64, error) {
	opts := github.CreateCheckRunOptions{
		Name:    "Review-Gate",
		HeadSHA: event.HeadSHA,
		Status:  github.Ptr("in_progress"),
		Output: &github.CheckRunOutput{
			Title:   &title,
			Summary: &summary,
		},
	}
	checkRun, err := p.client.CreateCheckRun(ctx, event.RepoOwner, event.RepoName, opts)
	if err != nil {
		return 0, fmt.Errorf("failed to create check run: %w", err)
	}
	return checkRun.GetID(), nil
}

// Completed updates an existing check run to a "completed" status.
func (p *publisher) Completed(ctx context.Context, event *core.ReviewEvent, checkRunID int64, conclusion, title, summary string) error {
	now := time.Now()
	opts := github.UpdateCheckRunOptions{
		Name:        "Review-Gate",
		Status:      github.Ptr("completed"),
		Conclusion:  &conclusion,
		CompletedAt: &github.Timestamp{Time: now},
		Output: &github.CheckRunOutput{
			Title:   &title,
			Summary: &summary,
		},
	}
	_, err := p.client.UpdateCheckRun(ctx, event.RepoOwner, event.RepoName, checkRunID, opts)
	return err
}

// PublishReview posts the review. A review whose summary is one of the
// failure sentinels is suppressed entirely; users never see internal-error
// strings. When no comments survived filtering only the summary note is
// posted.
func (p *publisher) PublishReview(ctx context.Context, event *core.ReviewEvent, review *core.StructuredReview) error {
	if core.IsFailureSentinel(review.Summary) {
		p.logger.Warn("suppressing degraded review, nothing will be posted",
			"repo", event.RepoFullName,
			"pr", event.PRNumber,
		)
		return nil
	}

	if len(review.Comments) == 0 {
		return p.client.CreateComment(ctx, event.RepoOwner, event.RepoName, event.PRNumber, formatSummary(review))
	}

	var comments []DraftReviewComment
	for _, c := range review.Comments {
		if c.Path == "" || c.Line <= 0 || c.Body == "" {
			continue
		}
		comments = append(comments, DraftReviewComment{
			Path: c.Path,
			Line: c.Line,
			Body: formatInlineComment(c),
		})
	}

	return p.client.CreateReview(ctx, event.RepoOwner, event.RepoName, event.PRNumber, formatSummary(review), comments)
}

// formatInlineComment prefixes the comment body with a severity badge when a
// priority label is present.
func formatInlineComment(c core.ReviewComment) string {
	if c.Priority == "" {
		return c.Body
	}
	return fmt.Sprintf("**%s %s**\n\n%s", priorityEmoji(c.Priority), priorityTitle(c.Priority), c.Body)
}

// formatSummary renders the summary note with a severity count table when
// comments are present.
func formatSummary(review *core.StructuredReview) string {
	var sb strings.Builder
	sb.WriteString("### 📝 Code Review Summary\n\n")
	sb.WriteString(review.Summary)

	if len(review.Comments) > 0 {
		counts := map[core.Priority]int{}
		for _, c := range review.Comments {
			counts[normalizedPriority(c.Priority)]++
		}

		sb.WriteString("\n\n---\n")
		sb.WriteString("| Severity | Count |\n")
		sb.WriteString("|----------|-------|\n")
		for _, p := range []core.Priority{core.PriorityCritical, core.PriorityHigh, core.PriorityMedium, core.PriorityLow} {
			if count := counts[p]; count > 0 {
				fmt.Fprintf(&sb, "| %s %s | %d |\n", priorityEmoji(p), priorityTitle(p), count)
			}
		}
	}

	return sb.String()
}

// normalizedPriority buckets unlabeled comments with low severity for the
// summary table, matching how the ranker treats them.
func normalizedPriority(p core.Priority) core.Priority {
	if p == "" {
		return core.PriorityLow
	}
	return p
}

func priorityTitle(p core.Priority) string {
	s := string(normalizedPriority(p))
	return strings.ToUpper(s[:1]) + s[1:]
}

func priorityEmoji(p core.Priority) string {
	switch normalizedPriority(p) {
	case core.PriorityCritical:
		return "🔴"
	case core.PriorityHigh:
		return "🟠"
	case core.PriorityMedium:
		return "🟡"
	default:
		return "🟢"
	}
}
