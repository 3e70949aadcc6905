package review

import (
	"regexp"
	"strings"
)

// Matches a fence marker whose language tag was split onto its own escaped
// line, e.g. "```\ngo\n" emitted as literal backslash-n sequences.
var splitFenceRegex = regexp.MustCompile("```\\\\n([A-Za-z0-9+#.-]{1,20})\\\\n")

// Sanitize repairs the non-standard escape sequences models commonly invent
// inside a JSON-like payload, making it more likely to decode cleanly.
//
// Rules are applied in a fixed order and each must not reverse a prior one:
//  1. Collapse doubled backslashes left behind by double-escaped output.
//  2. Turn escaped backticks and escaped fences back into literals; JSON has
//     no backtick escape, the model invented one.
//  3. Rejoin fence openings whose language tag was split onto its own line.
//
// The two standard escapes for quotes and newlines are left exactly as
// emitted so the JSON decoder can interpret them. Sanitize never fails and a
// second application of it is a no-op for already-sanitized input.
func Sanitize(s string) string {
	// Rule 1: `\\` -> `\`, applied a single time. Running this after the
	// backtick fix would under- or over-correct sequences like `\\```.
	s = strings.ReplaceAll(s, `\\`, `\`)

	// Rule 2: escaped fences first, then lone escaped backticks.
	s = strings.ReplaceAll(s, "\\`\\`\\`", "```")
	s = strings.ReplaceAll(s, "\\`", "`")

	// Rule 3: "```\ngo\n" -> "```go\n" (literal \n sequences).
	s = splitFenceRegex.ReplaceAllString(s, "```$1\\n")

	return s
}

// RepairFenceArtifacts mirrors rule 2 for already-decoded text. Decoding can
// re-introduce literal backslash-backtick pairs from valid JSON escapes, so
// comment bodies get this applied post-decode.
func RepairFenceArtifacts(s string) string {
	s = strings.ReplaceAll(s, "\\`\\`\\`", "```")
	return strings.ReplaceAll(s, "\\`", "`")
}
