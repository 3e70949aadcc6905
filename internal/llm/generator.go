// Package llm is the thin collaborator boundary to the generative model.
// Everything past GenerateReview is untrusted free-form text; the review
// pipeline is responsible for making sense of it.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sevigo/goframe/llms"
	"github.com/sevigo/goframe/llms/gemini"
	"github.com/sevigo/goframe/llms/ollama"

	"github.com/sevigo/review-gate/internal/config"
)

// FileDiff is one changed file handed to the generator as review input.
type FileDiff struct {
	Path  string
	Patch string
}

// ReviewRequest carries everything the generator needs for one review.
type ReviewRequest struct {
	RepoFullName string
	PRTitle      string
	Files        []FileDiff
}

// Generator produces the raw review text for a pull request.
//
//go:generate mockgen -destination=../../mocks/mock_generator.go -package=mocks . Generator
type Generator interface {
	GenerateReview(ctx context.Context, req ReviewRequest) (string, error)
}

type modelGenerator struct {
	model   llms.Model
	prompts *PromptManager
	logger  *slog.Logger
}

// NewGenerator creates a Generator backed by the configured model provider.
func NewGenerator(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Generator, error) {
	model, err := newModel(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	prompts, err := NewPromptManager()
	if err != nil {
		return nil, err
	}

	return &modelGenerator{model: model, prompts: prompts, logger: logger}, nil
}

// GenerateReview renders the review prompt and calls the model once. The
// response is returned verbatim; callers must not assume it is valid JSON.
func (g *modelGenerator) GenerateReview(ctx context.Context, req ReviewRequest) (string, error) {
	if len(req.Files) == 0 {
		return "", fmt.Errorf("no changed files to review")
	}

	prompt, err := g.prompts.Render(ReviewPrompt, promptData{
		RepoFullName: req.RepoFullName,
		PRTitle:      req.PRTitle,
		Diff:         joinDiffs(req.Files),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render review prompt: %w", err)
	}

	g.logger.Debug("calling generator model", "prompt_bytes", len(prompt), "files", len(req.Files))
	response, err := g.model.Call(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("model call failed: %w", err)
	}
	return response, nil
}

func joinDiffs(files []FileDiff) string {
	var sb strings.Builder
	for _, f := range files {
		fmt.Fprintf(&sb, "--- %s ---\n%s\n\n", f.Path, f.Patch)
	}
	return sb.String()
}

func newModel(ctx context.Context, cfg *config.Config, logger *slog.Logger) (llms.Model, error) {
	switch cfg.LLM.Provider {
	case "gemini":
		if cfg.LLM.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is not set for the gemini provider")
		}
		return gemini.New(ctx,
			gemini.WithModel(cfg.LLM.ModelName),
			gemini.WithAPIKey(cfg.LLM.GeminiAPIKey),
		)
	case "ollama":
		return ollama.New(
			ollama.WithServerURL(cfg.LLM.OllamaHost),
			ollama.WithModel(cfg.LLM.ModelName),
			ollama.WithHTTPClient(newOllamaHTTPClient()),
			ollama.WithLogger(logger),
		)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLM.Provider)
	}
}

// newOllamaHTTPClient creates an HTTP client with longer timeouts; local
// model servers can take a while to answer.
func newOllamaHTTPClient() *http.Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxConnsPerHost:     10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   5 * time.Minute,
	}
}
