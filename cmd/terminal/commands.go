package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/sevigo/review-gate/internal/core"
	"github.com/sevigo/review-gate/internal/diff"
	"github.com/sevigo/review-gate/internal/review"
)

func loadResponseCmd(path string) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return responseLoadedMsg{path: path, err: fmt.Errorf("failed to read response file: %w", err)}
		}
		if len(strings.TrimSpace(string(data))) == 0 {
			return responseLoadedMsg{path: path, err: fmt.Errorf("response file %s is empty", path)}
		}
		return responseLoadedMsg{path: path, raw: string(data)}
	}
}

func loadPatchCmd(filePath, patchFile string) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(patchFile)
		if err != nil {
			return patchLoadedMsg{path: filePath, err: fmt.Errorf("failed to read patch file: %w", err)}
		}

		ranges := diff.RangesFromPatch(string(data), nil)
		if len(ranges) == 0 {
			return patchLoadedMsg{path: filePath, err: fmt.Errorf("no hunk headers found in %s", patchFile)}
		}
		return patchLoadedMsg{path: filePath, ranges: ranges}
	}
}

func recoverReviewCmd(raw string, ranges map[string][]core.DiffRange, filter core.FilterConfig) tea.Cmd {
	return func() tea.Msg {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		result, tier := review.NewPipeline(filter, logger).Run(raw, ranges)

		rendered, err := renderMarkdown(result.Summary)
		if err != nil {
			// Fall back to the raw markdown rather than failing the run.
			rendered = result.Summary
		}

		return reviewRecoveredMsg{
			review:   result,
			tier:     string(tier),
			rendered: rendered,
		}
	}
}

// renderMarkdown pretty-prints the review summary for the terminal.
func renderMarkdown(markdown string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(markdown)
}
