package llm

import (
	"encoding/json"
	"testing"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "clean object",
			input: `{"type": "bug", "summary": "x"}`,
			want:  `{"type": "bug", "summary": "x"}`,
		},
		{
			name:  "markdown fence",
			input: "```json\n{\"type\": \"bug\"}\n```",
			want:  `{"type": "bug"}`,
		},
		{
			name:  "fence without language tag",
			input: "```\n{\"type\": \"feature\"}\n```",
			want:  `{"type": "feature"}`,
		},
		{
			name:  "prose around object",
			input: `Here is the result: {"type": "bug"} hope that helps`,
			want:  `{"type": "bug"}`,
		},
		{
			name:  "nested braces",
			input: `{"a": {"b": {"c": 1}}}`,
			want:  `{"a": {"b": {"c": 1}}}`,
		},
		{
			name:  "braces inside string literals",
			input: `{"text": "a } inside", "n": 1}`,
			want:  `{"text": "a } inside", "n": 1}`,
		},
		{
			name:  "escaped quote in string",
			input: `{"text": "say \"hi\" {ok}"}`,
			want:  `{"text": "say \"hi\" {ok}"}`,
		},
		{
			name:  "top-level array",
			input: `[{"a": 1}, {"b": 2}]`,
			want:  `[{"a": 1}, {"b": 2}]`,
		},
		{
			name:  "unterminated object",
			input: `{"type": "bug",`,
			want:  "",
		},
		{
			name:  "no JSON at all",
			input: "just some prose",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractJSON(tt.input)
			if got != tt.want {
				t.Errorf("ExtractJSON() = %q, want %q", got, tt.want)
			}
			if got != "" && !json.Valid([]byte(got)) {
				t.Errorf("ExtractJSON() returned invalid JSON: %q", got)
			}
		})
	}
}
