// Package core defines the essential interfaces and data structures that form the
// backbone of the application. These components are designed to be abstract,
// allowing for flexible and decoupled implementations of the application's logic.
package core

import (
	"strings"
	"time"
)

// Priority is the severity label a comment may carry. An empty value means
// the model did not state one; for ranking purposes it counts as the lowest
// severity, never as an error.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Ordinal maps a priority label to its numeric rank for sorting and
// floor filtering. Missing and unrecognized labels rank lowest.
func (p Priority) Ordinal() int {
	switch Priority(strings.ToLower(string(p))) {
	case PriorityCritical:
		return 3
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	default:
		return 0
	}
}

// ParsePriority normalizes a free-form label from the model into a Priority.
// Unknown labels come back empty so they rank as lowest severity.
func ParsePriority(s string) Priority {
	switch Priority(strings.ToLower(strings.TrimSpace(s))) {
	case PriorityCritical:
		return PriorityCritical
	case PriorityHigh:
		return PriorityHigh
	case PriorityMedium:
		return PriorityMedium
	case PriorityLow:
		return PriorityLow
	default:
		return ""
	}
}

// ReviewComment is a single location-anchored piece of feedback.
// Line is 1-based and refers to the new version of the file.
type ReviewComment struct {
	Path     string   `json:"path"`
	Line     int      `json:"line"`
	Body     string   `json:"body"`
	Priority Priority `json:"priority,omitempty"`
}

// StructuredReview is the normalized review result recovered from the model's
// raw response: a markdown summary plus an ordered list of comments.
type StructuredReview struct {
	Summary  string          `json:"summary"`
	Comments []ReviewComment `json:"comments"`
}

// DiffRange is an inclusive [Start, End] interval of new-file line numbers
// that are part of the current change, derived from a unified-diff hunk header.
type DiffRange struct {
	Start int
	End   int
}

// Contains reports whether the given line falls inside the range.
func (r DiffRange) Contains(line int) bool {
	return line >= r.Start && line <= r.End
}

// FilterConfig holds the two independent ranking knobs. The zero value means
// no severity floor and an unbounded comment count.
type FilterConfig struct {
	MinSeverity Priority
	MaxComments int
}

// Failure sentinel summaries. A review carrying one of these is knowingly
// degenerate; the publisher must suppress posting it rather than surface an
// internal-error string to end users.
const (
	SentinelParseFailure    = "Automated review failed: the model response could not be parsed into a structured review."
	SentinelGenerationError = "Automated review failed: the model did not produce a response."
	SentinelUnknownError    = "Automated review failed: an unknown internal error occurred."
)

// IsFailureSentinel reports whether a summary equals one of the recognized
// failure sentinels.
func IsFailureSentinel(summary string) bool {
	switch strings.TrimSpace(summary) {
	case SentinelParseFailure, SentinelGenerationError, SentinelUnknownError:
		return true
	}
	return false
}

// ReviewRecord represents a single processed review run stored in the database.
type ReviewRecord struct {
	ID                int64
	RepoFullName      string
	PRNumber          int
	HeadSHA           string
	Summary           string
	CommentsParsed    int
	CommentsPublished int
	RecoveryTier      string
	CreatedAt         time.Time
}
