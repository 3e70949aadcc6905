// Package diff derives changed-line ranges from unified-diff patches and
// filters review comments against them.
package diff

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/sevigo/review-gate/internal/core"
)

var hunkHeaderRegex = regexp.MustCompile(`^@@ -\d+(?:,\d+)? \+(\d+)(?:,(\d+))? @@`)

// RangesFromPatch extracts the new-file line intervals described by the hunk
// headers of a unified-diff patch. Each "@@ -a,b +c,d @@" header contributes
// the inclusive interval [c, c+d-1]; a header without a count means a single
// line. Malformed headers are skipped, not fatal.
func RangesFromPatch(patch string, logger *slog.Logger) []core.DiffRange {
	var ranges []core.DiffRange

	for _, line := range strings.Split(patch, "\n") {
		if !strings.HasPrefix(line, "@@") {
			continue
		}
		matches := hunkHeaderRegex.FindStringSubmatch(line)
		if len(matches) < 2 {
			if logger != nil {
				logger.Warn("skipped malformed hunk header", "line", line)
			}
			continue
		}

		start, err := strconv.Atoi(matches[1])
		if err != nil || start <= 0 {
			if logger != nil {
				logger.Warn("skipped hunk header with invalid start line", "line", line)
			}
			continue
		}

		count := 1
		if matches[2] != "" {
			count, err = strconv.Atoi(matches[2])
			if err != nil {
				if logger != nil {
					logger.Warn("skipped hunk header with invalid line count", "line", line)
				}
				continue
			}
		}
		if count == 0 {
			// Pure-deletion hunk; nothing on the new side to anchor to.
			continue
		}

		ranges = append(ranges, core.DiffRange{Start: start, End: start + count - 1})
	}

	return ranges
}
