package diff

import (
	"log/slog"
	"strings"

	"github.com/sevigo/review-gate/internal/core"
)

// FilterComments discards comments that cannot be anchored to the change set:
// comments on paths absent from the range map, and comments whose line falls
// outside every range for their path. This guards against the model
// hallucinating line numbers or commenting on context lines. The summary is
// untouched; when everything is dropped the caller still publishes it alone.
//
// A nil or empty range map means no diff information is available, in which
// case validation is skipped and all comments pass through.
func FilterComments(r *core.StructuredReview, ranges map[string][]core.DiffRange, logger *slog.Logger) *core.StructuredReview {
	if len(ranges) == 0 {
		logger.Warn("no diff ranges supplied, skipping comment anchoring validation")
		return r
	}

	anchored := make([]core.ReviewComment, 0, len(r.Comments))
	for _, c := range r.Comments {
		cleanPath := strings.TrimPrefix(c.Path, "./")
		fileRanges, exists := ranges[cleanPath]
		if !exists {
			logger.Warn("dropping comment on file not in change set",
				"original", c.Path,
				"normalized", cleanPath,
			)
			continue
		}

		if !lineInRanges(c.Line, fileRanges) {
			logger.Warn("dropping comment on line outside change set",
				"path", cleanPath,
				"line", c.Line,
			)
			continue
		}

		c.Path = cleanPath
		anchored = append(anchored, c)
	}

	return &core.StructuredReview{Summary: r.Summary, Comments: anchored}
}

func lineInRanges(line int, ranges []core.DiffRange) bool {
	for _, rg := range ranges {
		if rg.Contains(line) {
			return true
		}
	}
	return false
}
