package jobs_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	gogithub "github.com/google/go-github/v73/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sevigo/review-gate/internal/config"
	"github.com/sevigo/review-gate/internal/core"
	"github.com/sevigo/review-gate/internal/github"
	"github.com/sevigo/review-gate/internal/jobs"
	"github.com/sevigo/review-gate/internal/llm"
	"github.com/sevigo/review-gate/internal/storage"
	"github.com/sevigo/review-gate/mocks"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeStore struct {
	saved   []*core.ReviewRecord
	saveErr error
}

func (f *fakeStore) SaveReview(_ context.Context, record *core.ReviewRecord) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, record)
	return nil
}

func (f *fakeStore) GetLatestReviewForPR(context.Context, string, int) (*core.ReviewRecord, error) {
	return nil, storage.ErrNoReview
}

func (f *fakeStore) ListRecoveryTierCounts(context.Context, time.Time) (map[string]int, error) {
	return map[string]int{}, nil
}

func testEvent() *core.ReviewEvent {
	return &core.ReviewEvent{
		RepoOwner:      "sevigo",
		RepoName:       "demo",
		RepoFullName:   "sevigo/demo",
		PRNumber:       42,
		PRTitle:        "Add config loader",
		InstallationID: 99,
	}
}

func clientFactory(client github.Client) jobs.ClientFactory {
	return func(context.Context, *config.Config, int64, *slog.Logger) (github.Client, error) {
		return client, nil
	}
}

func expectPRLookup(client *mocks.MockClient, sha string) {
	pr := &gogithub.PullRequest{
		Title: gogithub.Ptr("Add config loader"),
		Head:  &gogithub.PullRequestBranch{SHA: gogithub.Ptr(sha)},
	}
	client.EXPECT().GetPullRequest(gomock.Any(), "sevigo", "demo", 42).Return(pr, nil)
}

func expectCheckRunLifecycle(t *testing.T, client *mocks.MockClient, wantConclusion string) {
	t.Helper()
	checkRun := &gogithub.CheckRun{ID: gogithub.Ptr(int64(7))}
	client.EXPECT().CreateCheckRun(gomock.Any(), "sevigo", "demo", gomock.Any()).Return(checkRun, nil)
	client.EXPECT().
		UpdateCheckRun(gomock.Any(), "sevigo", "demo", int64(7), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, _ int64, opts gogithub.UpdateCheckRunOptions) (*gogithub.CheckRun, error) {
			assert.Equal(t, wantConclusion, opts.GetConclusion())
			return checkRun, nil
		})
}

const changedPatch = "@@ -1,2 +1,3 @@\n package main\n+import \"os\"\n func main() {}"

func TestReviewJobHappyPath(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	generator := mocks.NewMockGenerator(ctrl)
	store := &fakeStore{}

	expectPRLookup(client, "abc123")
	expectCheckRunLifecycle(t, client, "success")
	client.EXPECT().GetChangedFiles(gomock.Any(), "sevigo", "demo", 42).Return([]github.ChangedFile{
		{Filename: "main.go", Patch: changedPatch},
	}, nil)
	client.EXPECT().
		GetFileContent(gomock.Any(), "sevigo", "demo", config.RepoConfigFileName, "abc123").
		Return(nil, nil)

	generator.EXPECT().
		GenerateReview(gomock.Any(), gomock.Any()).
		Return(`{"summary":"Looks solid overall.","comments":[{"path":"main.go","line":2,"body":"Handle the import error.","priority":"high"}]}`, nil)

	var gotBody string
	var gotComments []github.DraftReviewComment
	client.EXPECT().
		CreateReview(gomock.Any(), "sevigo", "demo", 42, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, _ int, body string, comments []github.DraftReviewComment) error {
			gotBody = body
			gotComments = comments
			return nil
		})

	job := jobs.NewReviewJob(&config.Config{}, generator, store, clientFactory(client), discardLogger())
	event := testEvent()

	require.NoError(t, job.Run(context.Background(), event))

	assert.Equal(t, "abc123", event.HeadSHA)
	assert.Contains(t, gotBody, "Looks solid overall.")
	require.Len(t, gotComments, 1)
	assert.Equal(t, "main.go", gotComments[0].Path)
	assert.Equal(t, 2, gotComments[0].Line)

	require.Len(t, store.saved, 1)
	record := store.saved[0]
	assert.Equal(t, "structural", record.RecoveryTier)
	assert.Equal(t, 1, record.CommentsParsed)
	assert.Equal(t, 1, record.CommentsPublished)
	assert.Equal(t, "abc123", record.HeadSHA)
}

func TestReviewJobGenerationFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	generator := mocks.NewMockGenerator(ctrl)
	store := &fakeStore{}

	expectPRLookup(client, "abc123")
	expectCheckRunLifecycle(t, client, "failure")
	client.EXPECT().GetChangedFiles(gomock.Any(), "sevigo", "demo", 42).Return([]github.ChangedFile{
		{Filename: "main.go", Patch: changedPatch},
	}, nil)
	client.EXPECT().
		GetFileContent(gomock.Any(), "sevigo", "demo", config.RepoConfigFileName, "abc123").
		Return(nil, nil)

	generator.EXPECT().
		GenerateReview(gomock.Any(), gomock.Any()).
		Return("", fmt.Errorf("model unreachable"))

	// The sentinel review is suppressed; no comment or review may be posted.

	job := jobs.NewReviewJob(&config.Config{}, generator, store, clientFactory(client), discardLogger())
	err := job.Run(context.Background(), testEvent())
	require.Error(t, err)

	require.Len(t, store.saved, 1)
	assert.Equal(t, "generation_error", store.saved[0].RecoveryTier)
	assert.Equal(t, core.SentinelGenerationError, store.saved[0].Summary)
	assert.Equal(t, 0, store.saved[0].CommentsPublished)
}

func TestReviewJobNoReviewableFiles(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	generator := mocks.NewMockGenerator(ctrl)

	expectPRLookup(client, "abc123")
	expectCheckRunLifecycle(t, client, "neutral")
	// A binary-only change carries no patch data.
	client.EXPECT().GetChangedFiles(gomock.Any(), "sevigo", "demo", 42).Return([]github.ChangedFile{
		{Filename: "logo.png", Patch: ""},
	}, nil)
	client.EXPECT().
		GetFileContent(gomock.Any(), "sevigo", "demo", config.RepoConfigFileName, "abc123").
		Return(nil, nil)

	job := jobs.NewReviewJob(&config.Config{}, generator, &fakeStore{}, clientFactory(client), discardLogger())
	require.NoError(t, job.Run(context.Background(), testEvent()))
}

func TestReviewJobRepoConfigOverrides(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	generator := mocks.NewMockGenerator(ctrl)
	store := &fakeStore{}

	expectPRLookup(client, "abc123")
	expectCheckRunLifecycle(t, client, "success")
	client.EXPECT().GetChangedFiles(gomock.Any(), "sevigo", "demo", 42).Return([]github.ChangedFile{
		{Filename: "main.go", Patch: changedPatch},
		{Filename: "vendor/dep/dep.go", Patch: changedPatch},
	}, nil)
	client.EXPECT().
		GetFileContent(gomock.Any(), "sevigo", "demo", config.RepoConfigFileName, "abc123").
		Return([]byte("min_severity: high\nexclude_paths:\n  - vendor/\n"), nil)

	generator.EXPECT().
		GenerateReview(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req llm.ReviewRequest) (string, error) {
			// The excluded vendor file must not reach the model.
			require.Len(t, req.Files, 1)
			assert.Equal(t, "main.go", req.Files[0].Path)
			return `{"summary":"Mixed findings.","comments":[` +
				`{"path":"main.go","line":2,"body":"Low-level nit.","priority":"low"},` +
				`{"path":"main.go","line":3,"body":"Unchecked error.","priority":"critical"}]}`, nil
		})

	var gotComments []github.DraftReviewComment
	client.EXPECT().
		CreateReview(gomock.Any(), "sevigo", "demo", 42, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, _ int, _ string, comments []github.DraftReviewComment) error {
			gotComments = comments
			return nil
		})

	job := jobs.NewReviewJob(&config.Config{}, generator, store, clientFactory(client), discardLogger())
	require.NoError(t, job.Run(context.Background(), testEvent()))

	// The severity floor from .review-gate.yml drops the low-priority nit.
	require.Len(t, gotComments, 1)
	assert.Contains(t, gotComments[0].Body, "Unchecked error.")
}

func TestReviewJobRejectsInvalidEvent(t *testing.T) {
	ctrl := gomock.NewController(t)
	generator := mocks.NewMockGenerator(ctrl)
	client := mocks.NewMockClient(ctrl)

	job := jobs.NewReviewJob(&config.Config{}, generator, &fakeStore{}, clientFactory(client), discardLogger())

	err := job.Run(context.Background(), &core.ReviewEvent{RepoOwner: "sevigo"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input validation failed")
}
