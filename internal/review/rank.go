package review

import (
	"fmt"
	"sort"

	"github.com/sevigo/review-gate/internal/core"
)

// Rank orders comments by descending severity and applies the configured
// severity floor and maximum count. Ties preserve the original relative
// order. When filtering removed comments, a deterministic note about the
// kept/dropped counts is appended to the summary; the review is otherwise
// rebuilt unchanged.
func Rank(r *core.StructuredReview, cfg core.FilterConfig) *core.StructuredReview {
	total := len(r.Comments)

	ranked := make([]core.ReviewComment, total)
	copy(ranked, r.Comments)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Priority.Ordinal() > ranked[j].Priority.Ordinal()
	})

	if floor := cfg.MinSeverity.Ordinal(); floor > 0 {
		kept := ranked[:0]
		for _, c := range ranked {
			if c.Priority.Ordinal() >= floor {
				kept = append(kept, c)
			}
		}
		ranked = kept
	}

	// Truncation happens after sorting and floor filtering so the
	// highest-severity comments survive.
	if cfg.MaxComments > 0 && len(ranked) > cfg.MaxComments {
		ranked = ranked[:cfg.MaxComments]
	}

	summary := r.Summary
	if len(ranked) < total {
		summary += "\n\n" + filterNotice(len(ranked), total)
	}

	return &core.StructuredReview{Summary: summary, Comments: ranked}
}

// filterNotice is a pure function of the two counts so re-running the
// pipeline on identical input yields an identical summary.
func filterNotice(kept, total int) string {
	return fmt.Sprintf("_Showing %d of %d review comments after priority filtering._", kept, total)
}
