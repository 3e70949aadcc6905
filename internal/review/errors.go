// Package review implements the extraction, sanitization, and multi-tier
// recovery pipeline that turns an untrusted model response into a validated
// StructuredReview, plus the priority-based filtering applied afterward.
package review

import "fmt"

// ExtractionError indicates that no JSON-like span could be located anywhere
// in the raw response text. It is recoverable: the last-resort tier runs its
// field regexes over the raw text directly.
type ExtractionError struct {
	Reason string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("payload extraction failed: %s", e.Reason)
}

// ParseError indicates that an extracted payload is not valid JSON or lacks
// the required fields. It is recoverable by the regex tiers.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("structural parse failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("structural parse failed: %s", e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
