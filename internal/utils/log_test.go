package utils

import "testing"

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{
			name:   "non-positive limit hides the text",
			input:  "Senior Data Engineer | Analytics",
			limit:  -1,
			expect: "",
		},
		{
			name:   "short embedding text is kept",
			input:  "python | sql",
			limit:  40,
			expect: "python | sql",
		},
		{
			name:   "long embedding text is cut",
			input:  "Tech Lead | Leads delivery | required: leadership, system design",
			limit:  9,
			expect: "Tech Lead...",
		},
		{
			name:   "multi-byte runes are not split",
			input:  "Руководитель проекта | управление",
			limit:  12,
			expect: "Руководитель...",
		},
		{
			name:   "limit equal to rune count is kept",
			input:  "日本語スキル",
			limit:  6,
			expect: "日本語スキル",
		},
		{
			name:   "surrounding whitespace is trimmed before counting",
			input:  "\n  Mentor: Ana  \t",
			limit:  11,
			expect: "Mentor: Ana",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateForLog(tt.input, tt.limit); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}
