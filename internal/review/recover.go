package review

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/sevigo/review-gate/internal/core"
)

var (
	summaryFieldRegex  = regexp.MustCompile(`"summary"\s*:\s*"((?:\\.|[^"\\])*)"`)
	commentsArrayRegex = regexp.MustCompile(`(?s)"comments"\s*:\s*\[(.*)\]`)
	commentObjectRegex = regexp.MustCompile(`(?s)\{[^{}]*\}`)
	pathFieldRegex     = regexp.MustCompile(`"path"\s*:\s*"((?:\\.|[^"\\])*)"`)
	lineFieldRegex     = regexp.MustCompile(`"line"\s*:\s*"?(\d+)"?`)
	bodyFieldRegex     = regexp.MustCompile(`"body"\s*:\s*"((?:\\.|[^"\\])*)"`)
	priorityFieldRegex = regexp.MustCompile(`"priority"\s*:\s*"([A-Za-z]+)"`)
)

// recoverWithRegex is the permissive tier shared by the structured-recovery
// and last-resort stages. It pulls summary and comment fields out of text
// that would not decode as JSON, dropping anything it cannot match. It fails
// only when neither a summary nor a single comment can be found.
func recoverWithRegex(text string, logger *slog.Logger) (*core.StructuredReview, error) {
	text = stripControlChars(text)

	var summary string
	if m := summaryFieldRegex.FindStringSubmatch(text); len(m) > 1 {
		summary = unescapeField(m[1])
	}

	var comments []core.ReviewComment
	if m := commentsArrayRegex.FindStringSubmatch(text); len(m) > 1 {
		for _, object := range commentObjectRegex.FindAllString(m[1], -1) {
			comment, ok := recoverComment(object)
			if !ok {
				// Silent drop: fallback tiers never fabricate placeholders.
				logger.Debug("skipping unrecoverable comment object in fallback recovery")
				continue
			}
			comments = append(comments, comment)
		}
	}

	if summary == "" && len(comments) == 0 {
		return nil, &ParseError{Reason: "regex recovery matched neither summary nor comments"}
	}

	return &core.StructuredReview{Summary: summary, Comments: comments}, nil
}

// recoverComment extracts one path/line/body triple from a brace-bounded
// object. All three fields are required; priority stays optional.
func recoverComment(object string) (core.ReviewComment, bool) {
	pathMatch := pathFieldRegex.FindStringSubmatch(object)
	lineMatch := lineFieldRegex.FindStringSubmatch(object)
	bodyMatch := bodyFieldRegex.FindStringSubmatch(object)
	if len(pathMatch) < 2 || len(lineMatch) < 2 || len(bodyMatch) < 2 {
		return core.ReviewComment{}, false
	}

	line, err := strconv.Atoi(lineMatch[1])
	if err != nil {
		return core.ReviewComment{}, false
	}

	comment := core.ReviewComment{
		Path: unescapeField(pathMatch[1]),
		Line: line,
		Body: unescapeField(bodyMatch[1]),
	}
	if m := priorityFieldRegex.FindStringSubmatch(object); len(m) > 1 {
		comment.Priority = core.ParsePriority(m[1])
	}
	return comment, true
}

// unescapeField undoes the JSON escapes a regex capture leaves behind.
// Quotes and newlines must be handled before the fence-backtick repair and
// backslash collapse; reordering changes behavior on inputs with literal
// backslashes inside code examples.
func unescapeField(s string) string {
	s = strings.ReplaceAll(s, `\"`, `"`)
	s = strings.ReplaceAll(s, `\n`, "\n")
	s = strings.ReplaceAll(s, `\t`, "\t")
	s = RepairFenceArtifacts(s)
	s = strings.ReplaceAll(s, `\\`, `\`)
	return s
}

// stripControlChars removes non-printable control characters outside the
// tab/newline/carriage-return set; truncated model output often carries them.
func stripControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}
