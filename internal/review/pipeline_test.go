package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/review-gate/internal/core"
)

func TestPipelineRun(t *testing.T) {
	logger := discardLogger()

	t.Run("Well-formed fenced response parses structurally", func(t *testing.T) {
		raw := "Here you go:\n```json\n" +
			`{"summary": "Looks solid.", "comments": [{"path": "a.go", "line": 2, "body": "nit", "priority": "low"}]}` +
			"\n```"

		p := NewPipeline(core.FilterConfig{}, logger)
		got, tier := p.Run(raw, nil)
		assert.Equal(t, TierStructural, tier)
		assert.Equal(t, "Looks solid.", got.Summary)
		require.Len(t, got.Comments, 1)
	})

	t.Run("Unparseable extracted payload recovers via regex tier", func(t *testing.T) {
		raw := "```json\n" +
			`{"summary": "Mixed bag", "comments": [{"path": "a.go", "line": 5, "body": "bug", "priority": "critical"},], "oops": }` +
			"\n```"

		p := NewPipeline(core.FilterConfig{}, logger)
		got, tier := p.Run(raw, nil)
		assert.Equal(t, TierRegex, tier)
		assert.Equal(t, "Mixed bag", got.Summary)
		require.Len(t, got.Comments, 1)
		assert.Equal(t, core.PriorityCritical, got.Comments[0].Priority)
	})

	t.Run("No extractable payload recovers from raw text", func(t *testing.T) {
		raw := `The review fields were "summary": "Fine overall" but I forgot the braces.`

		p := NewPipeline(core.FilterConfig{}, logger)
		got, tier := p.Run(raw, nil)
		assert.Equal(t, TierManual, tier)
		assert.Equal(t, "Fine overall", got.Summary)
		assert.Empty(t, got.Comments)
	})

	t.Run("Hopeless input degrades terminally", func(t *testing.T) {
		p := NewPipeline(core.FilterConfig{}, logger)
		got, tier := p.Run("I have no idea what you are asking for.", nil)
		assert.Equal(t, TierTerminal, tier)
		assert.Equal(t, core.SentinelParseFailure, got.Summary)
		assert.NotNil(t, got.Comments)
		assert.Empty(t, got.Comments)
		assert.True(t, core.IsFailureSentinel(got.Summary))
	})

	t.Run("Diff ranges drop unanchorable comments", func(t *testing.T) {
		raw := "```json\n" + `{"summary": "S", "comments": [` +
			`{"path": "a.go", "line": 12, "body": "in range"},` +
			`{"path": "a.go", "line": 90, "body": "out of range"},` +
			`{"path": "ghost.go", "line": 1, "body": "unknown file"}]}` + "\n```"
		ranges := map[string][]core.DiffRange{
			"a.go": {{Start: 10, End: 20}},
		}

		p := NewPipeline(core.FilterConfig{}, logger)
		got, tier := p.Run(raw, ranges)
		assert.Equal(t, TierStructural, tier)
		require.Len(t, got.Comments, 1)
		assert.Equal(t, "in range", got.Comments[0].Body)
	})

	t.Run("Filter config applied after validation", func(t *testing.T) {
		raw := "```json\n" + `{"summary": "S", "comments": [` +
			`{"path": "a.go", "line": 11, "body": "minor", "priority": "low"},` +
			`{"path": "a.go", "line": 12, "body": "major", "priority": "critical"}]}` + "\n```"
		ranges := map[string][]core.DiffRange{"a.go": {{Start: 10, End: 20}}}

		p := NewPipeline(core.FilterConfig{MinSeverity: core.PriorityHigh}, logger)
		got, _ := p.Run(raw, ranges)
		require.Len(t, got.Comments, 1)
		assert.Equal(t, "major", got.Comments[0].Body)
		assert.Contains(t, got.Summary, "Showing 1 of 2 review comments")
	})

	t.Run("Identical input yields identical output", func(t *testing.T) {
		raw := "```json\n" + `{"summary": "S", "comments": [{"path": "a.go", "line": 1, "body": "B"}]}` + "\n```"
		p := NewPipeline(core.FilterConfig{}, logger)

		first, _ := p.Run(raw, nil)
		second, _ := p.Run(raw, nil)
		assert.Equal(t, first, second)
	})
}
