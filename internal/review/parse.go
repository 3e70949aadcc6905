package review

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/sevigo/review-gate/internal/core"
)

// placeholderComment replaces a single malformed comment entry so that one
// bad element never invalidates an otherwise-good review.
var placeholderComment = core.ReviewComment{
	Path: "unknown",
	Line: 0,
	Body: "Error: Invalid comment structure received.",
}

// rawComment accepts whatever types the model emitted; normalizeComment
// decides whether they are usable.
type rawComment struct {
	Path     any `json:"path"`
	Line     any `json:"line"`
	Body     any `json:"body"`
	Priority any `json:"priority"`
}

// Parse sanitizes and decodes a payload presumed to be JSON and returns a
// fully normalized StructuredReview. Decode and shape failures surface as a
// *ParseError so the fallback chain can engage; a malformed individual
// comment is downgraded to a placeholder instead.
func Parse(payload string, logger *slog.Logger) (*core.StructuredReview, error) {
	sanitized := Sanitize(payload)

	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(sanitized), &top); err != nil {
		return nil, &ParseError{Reason: "payload is not a JSON object", Err: err}
	}

	summaryRaw, hasSummary := top["summary"]
	commentsRaw, hasComments := top["comments"]
	if !hasSummary || !hasComments {
		return nil, &ParseError{
			Reason: fmt.Sprintf("missing required fields (summary present: %t, comments present: %t, got: %s)",
				hasSummary, hasComments, strings.Join(topLevelKeys(top), ", ")),
		}
	}

	// Extra top-level fields are logged and discarded; the review is rebuilt
	// from the two canonical fields only. Their presence is never fatal.
	if extras := extraKeys(top); len(extras) > 0 {
		logger.Debug("dropping unexpected top-level fields from model response", "fields", extras)
	}

	var summary string
	if err := json.Unmarshal(summaryRaw, &summary); err != nil {
		return nil, &ParseError{Reason: "summary is not a string", Err: err}
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(commentsRaw, &elements); err != nil {
		return nil, &ParseError{Reason: "comments is not an array", Err: err}
	}

	comments := make([]core.ReviewComment, 0, len(elements))
	for i, element := range elements {
		var raw rawComment
		if err := json.Unmarshal(element, &raw); err != nil {
			logger.Warn("comment entry is not an object, replacing with placeholder", "index", i)
			comments = append(comments, placeholderComment)
			continue
		}
		comment, ok := normalizeComment(raw)
		if !ok {
			logger.Warn("comment entry has invalid structure, replacing with placeholder", "index", i)
			comments = append(comments, placeholderComment)
			continue
		}
		comments = append(comments, comment)
	}

	return &core.StructuredReview{Summary: summary, Comments: comments}, nil
}

// normalizeComment verifies the field types of a decoded comment and repairs
// residual fence artifacts in its body.
func normalizeComment(raw rawComment) (core.ReviewComment, bool) {
	path, ok := raw.Path.(string)
	if !ok || path == "" {
		return core.ReviewComment{}, false
	}
	line, ok := raw.Line.(float64)
	if !ok {
		return core.ReviewComment{}, false
	}
	body, ok := raw.Body.(string)
	if !ok {
		return core.ReviewComment{}, false
	}

	comment := core.ReviewComment{
		Path: path,
		Line: int(line),
		Body: RepairFenceArtifacts(body),
	}
	if label, ok := raw.Priority.(string); ok {
		comment.Priority = core.ParsePriority(label)
	}
	return comment, true
}

func topLevelKeys(top map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(top))
	for k := range top {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func extraKeys(top map[string]json.RawMessage) []string {
	var extras []string
	for _, k := range topLevelKeys(top) {
		if k != "summary" && k != "comments" {
			extras = append(extras, k)
		}
	}
	return extras
}
