package textutil

import "testing"

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"whitespace", "   ", ""},
		{"plain", "  A plain summary. ", "A plain summary."},
		{"paragraph", "<p>A <b>bold</b> show.</p>", "A bold show."},
		{"entities", "<p>Tom &amp; Jerry</p>", "Tom & Jerry"},
		{"nested", "<p><i>Quiet</i> drama</p>\n", "Quiet drama"},
		{"attributes", `<a href="https://example.com">link</a> text`, "link text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripMarkup(tt.input); got != tt.expected {
				t.Errorf("StripMarkup(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Fatalf("expected unchanged, got %q", got)
	}
	if got := Truncate("a longer title", 8); got != "a lon..." {
		t.Fatalf("unexpected truncation %q", got)
	}
	if got := Truncate("héllo", 2); got != "hé" {
		t.Fatalf("expected rune-safe cut, got %q", got)
	}
}
