package github_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sevigo/review-gate/internal/core"
	gh "github.com/sevigo/review-gate/internal/github"
	"github.com/sevigo/review-gate/mocks"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testEvent() *core.ReviewEvent {
	return &core.ReviewEvent{
		RepoOwner:    "sevigo",
		RepoName:     "review-gate",
		RepoFullName: "sevigo/review-gate",
		PRNumber:     42,
		HeadSHA:      "abc123",
	}
}

func TestPublishReviewSuppressesSentinels(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	publisher := gh.NewPublisher(client, testLogger())

	for _, sentinel := range []string{
		core.SentinelParseFailure,
		core.SentinelGenerationError,
		core.SentinelUnknownError,
	} {
		review := &core.StructuredReview{Summary: sentinel}
		// No client expectations are registered; any call would fail the test.
		err := publisher.PublishReview(context.Background(), testEvent(), review)
		assert.NoError(t, err)
	}
}

func TestPublishReviewSummaryOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	publisher := gh.NewPublisher(client, testLogger())

	var posted string
	client.EXPECT().
		CreateComment(gomock.Any(), "sevigo", "review-gate", 42, gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, _ int, body string) error {
			posted = body
			return nil
		})

	review := &core.StructuredReview{Summary: "All good.", Comments: nil}
	err := publisher.PublishReview(context.Background(), testEvent(), review)
	require.NoError(t, err)
	assert.Contains(t, posted, "All good.")
	assert.NotContains(t, posted, "| Severity |", "no table without comments")
}

func TestPublishReviewWithComments(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	publisher := gh.NewPublisher(client, testLogger())

	var postedBody string
	var postedComments []gh.DraftReviewComment
	client.EXPECT().
		CreateReview(gomock.Any(), "sevigo", "review-gate", 42, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, _ int, body string, comments []gh.DraftReviewComment) error {
			postedBody = body
			postedComments = comments
			return nil
		})

	review := &core.StructuredReview{
		Summary: "Two findings.",
		Comments: []core.ReviewComment{
			{Path: "a.go", Line: 3, Body: "bug here", Priority: core.PriorityCritical},
			{Path: "b.go", Line: 9, Body: "style nit"},
			{Path: "", Line: 0, Body: ""}, // unpostable, skipped
		},
	}

	err := publisher.PublishReview(context.Background(), testEvent(), review)
	require.NoError(t, err)

	require.Len(t, postedComments, 2)
	assert.Equal(t, "a.go", postedComments[0].Path)
	assert.True(t, strings.Contains(postedComments[0].Body, "Critical"), "severity badge expected")
	assert.Equal(t, "style nit", postedComments[1].Body, "unlabeled comment posted as-is")

	assert.Contains(t, postedBody, "Two findings.")
	assert.Contains(t, postedBody, "| Severity |")
	assert.Contains(t, postedBody, "Critical")
}
