package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "Doubled backslashes collapsed",
			input: `{"summary": "first\\nsecond"}`,
			want:  `{"summary": "first\nsecond"}`,
		},
		{
			name:  "Escaped backtick becomes literal",
			input: `{"body": "use \` + "`" + `gofmt\` + "`" + ` here"}`,
			want:  `{"body": "use ` + "`gofmt`" + ` here"}`,
		},
		{
			name:  "Escaped fence becomes literal",
			input: `{"body": "\` + "`" + `\` + "`" + `\` + "`" + `go"}`,
			want:  `{"body": "` + "```" + `go"}`,
		},
		{
			name:  "Split fence language rejoined",
			input: `{"body": "` + "```" + `\ngo\nfunc main() {}"}`,
			want:  `{"body": "` + "```" + `go\nfunc main() {}"}`,
		},
		{
			name:  "Standard quote and newline escapes untouched",
			input: `{"summary": "line\n\"quoted\" text"}`,
			want:  `{"summary": "line\n\"quoted\" text"}`,
		},
		{
			name:  "Empty input",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.input))
		})
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		`{"summary": "first\\nsecond"}`,
		`{"body": "use \` + "`" + `gofmt\` + "`" + `"}`,
		`{"body": "` + "```" + `\npython\nprint()"}`,
		`{"summary": "plain text with\na real newline"}`,
	}

	for _, input := range inputs {
		once := Sanitize(input)
		assert.Equal(t, once, Sanitize(once), "second application must be a no-op for %q", input)
	}
}

func TestRepairFenceArtifacts(t *testing.T) {
	assert.Equal(t, "run `go vet` first", RepairFenceArtifacts(`run \`+"`"+`go vet\`+"`"+` first`))
	assert.Equal(t, "```go\ncode\n```", RepairFenceArtifacts("\\`\\`\\`go\ncode\n\\`\\`\\`"))
	assert.Equal(t, "untouched", RepairFenceArtifacts("untouched"))
}
