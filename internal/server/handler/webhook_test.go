package handler_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/review-gate/internal/config"
	"github.com/sevigo/review-gate/internal/core"
	"github.com/sevigo/review-gate/internal/server/handler"
)

const webhookSecret = "test-secret"

type fakeDispatcher struct {
	dispatched []*core.ReviewEvent
	err        error
}

func (f *fakeDispatcher) Dispatch(_ context.Context, event *core.ReviewEvent) error {
	if f.err != nil {
		return f.err
	}
	f.dispatched = append(f.dispatched, event)
	return nil
}

func (f *fakeDispatcher) Stop() {}

func newTestHandler(dispatcher core.JobDispatcher) *handler.WebhookHandler {
	cfg := &config.Config{
		GitHub: config.GitHubConfig{WebhookSecret: webhookSecret},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return handler.NewWebhookHandler(cfg, dispatcher, logger)
}

func signedRequest(t *testing.T, eventType string, payload []byte) *http.Request {
	t.Helper()

	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write(payload)
	signature := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook/github", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Event", eventType)
	req.Header.Set("X-Hub-Signature-256", signature)
	return req
}

const reviewCommandPayload = `{
	"action": "created",
	"issue": {
		"number": 42,
		"title": "Add config loader",
		"pull_request": {"url": "https://api.github.com/repos/sevigo/demo/pulls/42"}
	},
	"comment": {
		"body": "/review",
		"user": {"login": "octocat"}
	},
	"repository": {
		"name": "demo",
		"full_name": "sevigo/demo",
		"owner": {"login": "sevigo"}
	},
	"installation": {"id": 99}
}`

func TestWebhookDispatchesReviewCommand(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	h := newTestHandler(dispatcher)

	rec := httptest.NewRecorder()
	h.Handle(rec, signedRequest(t, "issue_comment", []byte(reviewCommandPayload)))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, dispatcher.dispatched, 1)
	event := dispatcher.dispatched[0]
	assert.Equal(t, "sevigo/demo", event.RepoFullName)
	assert.Equal(t, 42, event.PRNumber)
	assert.Equal(t, "octocat", event.Commenter)
	assert.Equal(t, int64(99), event.InstallationID)
}

func TestWebhookIgnoresNonReviewComment(t *testing.T) {
	payload := []byte(`{
		"action": "created",
		"issue": {"number": 42, "pull_request": {"url": "x"}},
		"comment": {"body": "nice work", "user": {"login": "octocat"}},
		"repository": {"name": "demo", "full_name": "sevigo/demo", "owner": {"login": "sevigo"}},
		"installation": {"id": 99}
	}`)

	dispatcher := &fakeDispatcher{}
	h := newTestHandler(dispatcher)

	rec := httptest.NewRecorder()
	h.Handle(rec, signedRequest(t, "issue_comment", payload))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, dispatcher.dispatched)
}

func TestWebhookDispatchesOpenedPullRequest(t *testing.T) {
	payload := []byte(`{
		"action": "opened",
		"pull_request": {
			"number": 7,
			"title": "Fix dispatcher race",
			"head": {"sha": "abc123"}
		},
		"repository": {"name": "demo", "full_name": "sevigo/demo", "owner": {"login": "sevigo"}},
		"sender": {"login": "octocat"},
		"installation": {"id": 99}
	}`)

	dispatcher := &fakeDispatcher{}
	h := newTestHandler(dispatcher)

	rec := httptest.NewRecorder()
	h.Handle(rec, signedRequest(t, "pull_request", payload))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, dispatcher.dispatched, 1)
	assert.Equal(t, 7, dispatcher.dispatched[0].PRNumber)
	assert.Equal(t, "abc123", dispatcher.dispatched[0].HeadSHA)
}

func TestWebhookIgnoresClosedPullRequest(t *testing.T) {
	payload := []byte(`{
		"action": "closed",
		"pull_request": {"number": 7, "head": {"sha": "abc123"}},
		"repository": {"name": "demo", "full_name": "sevigo/demo", "owner": {"login": "sevigo"}},
		"installation": {"id": 99}
	}`)

	dispatcher := &fakeDispatcher{}
	h := newTestHandler(dispatcher)

	rec := httptest.NewRecorder()
	h.Handle(rec, signedRequest(t, "pull_request", payload))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, dispatcher.dispatched)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	h := newTestHandler(dispatcher)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook/github", bytes.NewReader([]byte(reviewCommandPayload)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Event", "issue_comment")
	req.Header.Set("X-Hub-Signature-256", "sha256=deadbeef")

	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, dispatcher.dispatched)
}

func TestWebhookQueueFullReturnsServerError(t *testing.T) {
	dispatcher := &fakeDispatcher{err: assert.AnError}
	h := newTestHandler(dispatcher)

	rec := httptest.NewRecorder()
	h.Handle(rec, signedRequest(t, "issue_comment", []byte(reviewCommandPayload)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
