package review

import (
	"errors"
	"log/slog"

	"github.com/sevigo/review-gate/internal/core"
	"github.com/sevigo/review-gate/internal/diff"
)

// Tier identifies which recovery stage produced a pipeline result.
type Tier string

const (
	TierStructural Tier = "structural"
	TierRegex      Tier = "regex"
	TierManual     Tier = "manual"
	TierTerminal   Tier = "terminal"
)

// Pipeline turns a raw model response into a validated, diff-anchored,
// priority-filtered StructuredReview. It holds no mutable state across runs;
// each Run is independent and yields an identical result for identical input.
type Pipeline struct {
	filter core.FilterConfig
	logger *slog.Logger
}

// NewPipeline creates a pipeline with the filter configuration for this run.
func NewPipeline(filter core.FilterConfig, logger *slog.Logger) *Pipeline {
	return &Pipeline{filter: filter, logger: logger}
}

// Run executes the full chain: extract, sanitize, parse, fall back through
// the recovery tiers, validate against the diff ranges, then rank and filter.
// It never fails; in the worst case the result carries the parse-failure
// sentinel summary and no comments. A nil range map skips anchoring.
func (p *Pipeline) Run(raw string, ranges map[string][]core.DiffRange) (*core.StructuredReview, Tier) {
	parsed, tier := p.parseWithFallback(raw)

	validated := diff.FilterComments(parsed, ranges, p.logger)
	final := Rank(validated, p.filter)

	p.logger.Info("review pipeline finished",
		"tier", string(tier),
		"comments_parsed", len(parsed.Comments),
		"comments_final", len(final.Comments),
	)
	return final, tier
}

// parseWithFallback walks the recovery tiers in their fixed order, keeping
// each tier's failure reason for diagnostics. A tier that yields a summary or
// any comment is a success; the chain never continues past one.
func (p *Pipeline) parseWithFallback(raw string) (*core.StructuredReview, Tier) {
	payload, extractErr := ExtractPayload(raw)
	if extractErr == nil {
		parsed, parseErr := Parse(payload, p.logger)
		if parseErr == nil {
			return parsed, TierStructural
		}
		p.logger.Warn("structural parse failed, trying regex recovery", "error", parseErr)

		// Tier 2 works on the extracted-but-unparseable substring.
		recovered, regexErr := recoverWithRegex(payload, p.logger)
		if regexErr == nil {
			return recovered, TierRegex
		}
		p.logger.Warn("regex recovery failed, trying last-resort recovery", "error", regexErr)
	} else {
		var ee *ExtractionError
		if !errors.As(extractErr, &ee) {
			p.logger.Warn("unexpected extraction failure", "error", extractErr)
		}
		p.logger.Warn("no payload extracted, trying last-resort recovery", "error", extractErr)
	}

	// Tier 3 runs the same regexes over the original raw text; extraction may
	// have failed or truncated, so surrounding prose must be tolerated.
	recovered, manualErr := recoverWithRegex(raw, p.logger)
	if manualErr == nil {
		return recovered, TierManual
	}
	p.logger.Error("all recovery tiers exhausted, returning degraded review", "error", manualErr)

	return &core.StructuredReview{
		Summary:  core.SentinelParseFailure,
		Comments: []core.ReviewComment{},
	}, TierTerminal
}
