package jsonutil

import (
	"strings"
	"testing"
)

func TestStripMarkdownFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "no fences",
			in:   `{"a": 1}`,
			want: `{"a": 1}`,
		},
		{
			name: "json language tag",
			in:   "```json\n{\"a\": 1}\n```",
			want: `{"a": 1}`,
		},
		{
			name: "uppercase language tag",
			in:   "```JSON\n{\"a\": 1}\n```",
			want: `{"a": 1}`,
		},
		{
			name: "bare fences",
			in:   "```\n[1, 2, 3]\n```",
			want: `[1, 2, 3]`,
		},
		{
			name: "surrounding whitespace",
			in:   "  ```json\n{\"b\": true}\n```  \n",
			want: `{"b": true}`,
		},
		{
			name: "fences only at start",
			in:   "```json\n{\"a\": 1}",
			want: "```json\n{\"a\": 1}",
		},
		{
			name: "multiline body",
			in:   "```json\n{\n  \"a\": 1,\n  \"b\": 2\n}\n```",
			want: "{\n  \"a\": 1,\n  \"b\": 2\n}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripMarkdownFences(tt.in); got != tt.want {
				t.Errorf("StripMarkdownFences() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseJSON(t *testing.T) {
	type payload struct {
		Style  string `json:"style"`
		Levels int    `json:"levels"`
	}

	t.Run("fenced object", func(t *testing.T) {
		got, err := ParseJSON[payload]("```json\n{\"style\": \"line\", \"levels\": 3}\n```")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Style != "line" || got.Levels != 3 {
			t.Errorf("unexpected payload: %+v", got)
		}
	})

	t.Run("bare object", func(t *testing.T) {
		got, err := ParseJSON[payload](`{"style": "shaded", "levels": 1}`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Style != "shaded" {
			t.Errorf("unexpected payload: %+v", got)
		}
	})

	t.Run("malformed payload includes preview", func(t *testing.T) {
		_, err := ParseJSON[payload]("I could not produce JSON, sorry.")
		if err == nil {
			t.Fatal("expected error for non-JSON response")
		}
		if !strings.Contains(err.Error(), "could not produce JSON") {
			t.Errorf("error should include a response preview: %v", err)
		}
	})

	t.Run("long preview is truncated", func(t *testing.T) {
		_, err := ParseJSON[payload](strings.Repeat("x", 2000))
		if err == nil {
			t.Fatal("expected error")
		}
		if len(err.Error()) > 700 {
			t.Errorf("error preview not truncated, length %d", len(err.Error()))
		}
	})
}
