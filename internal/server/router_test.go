package server_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sevigo/review-gate/internal/config"
	"github.com/sevigo/review-gate/internal/core"
	"github.com/sevigo/review-gate/internal/server"
)

type noopDispatcher struct{}

func (noopDispatcher) Dispatch(context.Context, *core.ReviewEvent) error { return nil }
func (noopDispatcher) Stop()                                            {}

func TestRouterHealthEndpoint(t *testing.T) {
	cfg := &config.Config{GitHub: config.GitHubConfig{WebhookSecret: "secret"}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := server.NewRouter(cfg, noopDispatcher{}, logger)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestRouterUnsignedWebhookRejected(t *testing.T) {
	cfg := &config.Config{GitHub: config.GitHubConfig{WebhookSecret: "secret"}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := server.NewRouter(cfg, noopDispatcher{}, logger)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook/github", nil)
	req.Header.Set("X-GitHub-Event", "issue_comment")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
