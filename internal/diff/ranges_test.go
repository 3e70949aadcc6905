package diff

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/review-gate/internal/core"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRangesFromPatch(t *testing.T) {
	logger := testLogger()

	tests := []struct {
		name  string
		patch string
		want  []core.DiffRange
	}{
		{
			name: "Single hunk",
			patch: "@@ -1,5 +1,7 @@\n context\n+added\n context",
			want: []core.DiffRange{{Start: 1, End: 7}},
		},
		{
			name: "Multiple hunks",
			patch: "@@ -1,3 +1,3 @@\n line\n@@ -10,4 +12,6 @@\n line",
			want: []core.DiffRange{{Start: 1, End: 3}, {Start: 12, End: 17}},
		},
		{
			name:  "Header without count means one line",
			patch: "@@ -4 +6 @@\n+x",
			want:  []core.DiffRange{{Start: 6, End: 6}},
		},
		{
			name:  "Pure deletion hunk contributes nothing",
			patch: "@@ -8,3 +7,0 @@\n-gone\n-gone\n-gone",
			want:  nil,
		},
		{
			name:  "Malformed header skipped",
			patch: "@@ not a real header @@\n+x\n@@ -1,2 +3,4 @@\n line",
			want:  []core.DiffRange{{Start: 3, End: 6}},
		},
		{
			name:  "Empty patch",
			patch: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RangesFromPatch(tt.patch, logger)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterComments(t *testing.T) {
	logger := testLogger()

	ranges := map[string][]core.DiffRange{
		"main.go":     {{Start: 1, End: 10}, {Start: 40, End: 45}},
		"pkg/util.go": {{Start: 5, End: 5}},
	}

	review := &core.StructuredReview{
		Summary: "S",
		Comments: []core.ReviewComment{
			{Path: "main.go", Line: 3, Body: "kept"},
			{Path: "main.go", Line: 42, Body: "kept second range"},
			{Path: "main.go", Line: 11, Body: "dropped, outside ranges"},
			{Path: "./pkg/util.go", Line: 5, Body: "kept after prefix normalization"},
			{Path: "missing.go", Line: 1, Body: "dropped, unknown path"},
		},
	}

	got := FilterComments(review, ranges, logger)
	require.Len(t, got.Comments, 3)
	assert.Equal(t, "kept", got.Comments[0].Body)
	assert.Equal(t, "kept second range", got.Comments[1].Body)
	assert.Equal(t, "pkg/util.go", got.Comments[2].Path, "./ prefix stripped on the way out")
	assert.Equal(t, "S", got.Summary)

	t.Run("Empty range map skips validation", func(t *testing.T) {
		got := FilterComments(review, nil, logger)
		assert.Len(t, got.Comments, len(review.Comments))
	})

	t.Run("All comments dropped still keeps summary", func(t *testing.T) {
		lonely := &core.StructuredReview{
			Summary:  "summary survives",
			Comments: []core.ReviewComment{{Path: "other.go", Line: 1, Body: "B"}},
		}
		got := FilterComments(lonely, ranges, logger)
		assert.Empty(t, got.Comments)
		assert.Equal(t, "summary survives", got.Summary)
	})
}
