package review

import (
	"regexp"
	"strings"
)

var (
	// A fenced code block explicitly tagged as JSON containing one object.
	fencedJSONRegex = regexp.MustCompile("(?s)```(?:json|JSON)\\s*(\\{.*?\\})\\s*```")
	// Any fenced code block containing one object, tagged or not.
	fencedAnyRegex = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*(\\{.*?\\})\\s*```")
)

// ExtractPayload locates the substring of a raw model response most likely to
// be the intended JSON object. Strategies are tried in order, first match
// wins: a json-tagged fenced block, any fenced block, then the largest
// brace-delimited span found anywhere in the text.
func ExtractPayload(raw string) (string, error) {
	if m := fencedJSONRegex.FindStringSubmatch(raw); len(m) > 1 {
		return strings.TrimSpace(m[1]), nil
	}

	if m := fencedAnyRegex.FindStringSubmatch(raw); len(m) > 1 {
		return strings.TrimSpace(m[1]), nil
	}

	if span := largestBraceSpan(raw); span != "" {
		return span, nil
	}

	return "", &ExtractionError{Reason: "no JSON object found in response text"}
}

// largestBraceSpan scans the text for balanced {...} spans and returns the
// longest one, or "" when no span closes. Brace counting is deliberately
// naive about string contents; the regex tiers pick up the pathological cases.
func largestBraceSpan(s string) string {
	var best string
	depth := 0
	start := -1

	for i, r := range s {
		switch r {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start >= 0 {
				if candidate := s[start : i+1]; len(candidate) > len(best) {
					best = candidate
				}
				start = -1
			}
		}
	}

	return best
}
