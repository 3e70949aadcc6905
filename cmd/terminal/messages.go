package main

import (
	"github.com/sevigo/review-gate/internal/core"
)

// Indicates that a raw model response file has been loaded.
type responseLoadedMsg struct {
	path string
	raw  string
	err  error
}

// Indicates that a patch file has been parsed into changed-line ranges.
type patchLoadedMsg struct {
	path   string
	ranges []core.DiffRange
	err    error
}

// Indicates that the recovery pipeline has finished.
type reviewRecoveredMsg struct {
	review   *core.StructuredReview
	tier     string
	rendered string
	err      error
}

// A generic error message for reporting failures from commands.
type errorMsg struct{ err error }

func (e errorMsg) Error() string {
	return e.err.Error()
}
