package utils

import (
	"errors"
	"testing"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "Pure JSON",
			input: `{"propertyType": "2bhk", "maxBudget": 15000}`,
			want:  `{"propertyType": "2bhk", "maxBudget": 15000}`,
		},
		{
			name:  "JSON in markdown code block",
			input: "```json\n{\"locality\": \"Koramangala\"}\n```",
			want:  `{"locality": "Koramangala"}`,
		},
		{
			name:  "JSON in untagged code block",
			input: "```\n{\"bedrooms\": 2}\n```",
			want:  `{"bedrooms": 2}`,
		},
		{
			name:  "Unterminated code block",
			input: "```json\n{\"bedrooms\": 3}",
			want:  `{"bedrooms": 3}`,
		},
		{
			name:  "JSON with surrounding text",
			input: `Sure! Here you go: {"city": "Pune"} Let me know.`,
			want:  `{"city": "Pune"}`,
		},
		{
			name:  "JSON with trailing comma",
			input: `{"city": "Pune",}`,
			want:  `{"city": "Pune"}`,
		},
		{
			name:  "JSON with unquoted keys",
			input: `{city: "Pune"}`,
			want:  `{"city": "Pune"}`,
		},
		{
			name:  "JSON with single quotes",
			input: `{'city': 'Pune'}`,
			want:  `{"city": "Pune"}`,
		},
		{
			name:    "Empty string",
			input:   "   ",
			wantErr: true,
		},
		{
			name:    "Prose only",
			input:   "I could not understand that.",
			wantErr: true,
		},
		{
			name:    "Array is not an object",
			input:   `["2bhk"]`,
			wantErr: true,
		},
		{
			name:    "Null is not an object",
			input:   `null`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.input)

			if (err != nil) != tt.wantErr {
				t.Fatalf("ExtractJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrNoJSONObject) {
					t.Errorf("ExtractJSON() error = %v, want ErrNoJSONObject", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ExtractJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractFromMarkdown(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "JSON code block with json tag",
			input: "```json\n{\"test\": true}\n```",
			want:  `{"test": true}`,
		},
		{
			name:  "JSON code block with upper-case tag",
			input: "```JSON\n{\"test\": true}\n```",
			want:  `{"test": true}`,
		},
		{
			name:  "JSON code block without tag",
			input: "```\n{\"test\": true}\n```",
			want:  `{"test": true}`,
		},
		{
			name:  "No code block",
			input: `{"test": true}`,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractFromMarkdown(tt.input)
			if got != tt.want {
				t.Errorf("extractFromMarkdown() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractBalancedBraces(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "Simple object",
			input: `{"a": 1}`,
			want:  `{"a": 1}`,
		},
		{
			name:  "Nested objects",
			input: `{"a": {"b": 2}}`,
			want:  `{"a": {"b": 2}}`,
		},
		{
			name:  "Object with string containing braces",
			input: `{"text": "Hello {world}"}`,
			want:  `{"text": "Hello {world}"}`,
		},
		{
			name:  "Quoted prose before the object",
			input: `You said "2bhk" so: {"propertyType": "2bhk"}`,
			want:  `{"propertyType": "2bhk"}`,
		},
		{
			name:  "Unbalanced",
			input: `{"a": 1`,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractBalancedBraces(tt.input, '{', '}')
			if got != tt.want {
				t.Errorf("extractBalancedBraces() = %v, want %v", got, tt.want)
			}
		})
	}
}
