package review

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPayload(t *testing.T) {
	object := `{"summary": "S", "comments": []}`

	tests := []struct {
		name      string
		input     string
		want      string
		expectErr bool
	}{
		{
			name:  "JSON-tagged fenced block",
			input: "Here is the review:\n```json\n" + object + "\n```\nLet me know!",
			want:  object,
		},
		{
			name:  "Untagged fenced block",
			input: "```\n" + object + "\n```",
			want:  object,
		},
		{
			name:  "JSON-tagged fence wins over untagged",
			input: "```\n{\"other\": true}\n```\nand\n```json\n" + object + "\n```",
			want:  object,
		},
		{
			name:  "Bare object surrounded by prose",
			input: "The model says " + object + " which should do.",
			want:  object,
		},
		{
			name:  "Largest brace span wins",
			input: `{"ok": 1} trailing prose ` + object,
			want:  object,
		},
		{
			name:  "Nested braces handled",
			input: `prose {"summary": "S", "comments": [{"path": "a.go", "line": 1, "body": "B"}]} prose`,
			want:  `{"summary": "S", "comments": [{"path": "a.go", "line": 1, "body": "B"}]}`,
		},
		{
			name:      "No structure at all",
			input:     "I could not produce a review, sorry.",
			expectErr: true,
		},
		{
			name:      "Unclosed object is not a span",
			input:     `{"summary": "truncated...`,
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractPayload(tt.input)
			if tt.expectErr {
				require.Error(t, err)
				var ee *ExtractionError
				assert.True(t, errors.As(err, &ee), "error must be an ExtractionError")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
