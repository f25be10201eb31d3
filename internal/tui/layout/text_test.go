package layout

import (
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestVisibleLength(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"plain text", "hello", 5},
		{"with ANSI bold", "\x1b[1mhello\x1b[0m", 5},
		{"wide runes take two cells", "こんにちは", 10},
		{"empty", "", 0},
		{"only ANSI", "\x1b[1m\x1b[0m", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := VisibleLength(tt.input)
			if got != tt.want {
				t.Errorf("VisibleLength(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestTruncateText(t *testing.T) {
	cfg := DefaultConfig().Text

	tests := []struct {
		name      string
		text      string
		maxWidth  int
		want      string
		truncated bool
	}{
		{"fits", "hello", 5, "hello", false},
		{"cut with ellipsis", "hello world", 8, "hello w…", true},
		{"only ellipsis fits", "hello", 1, "…", true},
		{"zero width", "hello", 0, "", true},
		{"empty text", "", 0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, truncated := TruncateText(tt.text, tt.maxWidth, cfg)
			if got != tt.want || truncated != tt.truncated {
				t.Errorf("TruncateText(%q, %d) = (%q, %v), want (%q, %v)",
					tt.text, tt.maxWidth, got, truncated, tt.want, tt.truncated)
			}
		})
	}
}

func TestTruncateWithPrefixSuffix(t *testing.T) {
	cfg := DefaultConfig().Text

	tests := []struct {
		name     string
		text     string
		maxWidth int
		prefix   string
		suffix   string
		want     string
	}{
		{"fits", "Docs", 20, "• ", " 3", "• Docs 3"},
		{"keeps prefix and suffix", "Development", 12, "• ", " 3", "• Develop… 3"},
		{"no room for text", "abc", 4, "[x] ", "", "[x]…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := TruncateWithPrefixSuffix(tt.text, tt.maxWidth, tt.prefix, tt.suffix, cfg)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			if VisibleLength(got) > tt.maxWidth {
				t.Errorf("%q is wider than %d", got, tt.maxWidth)
			}
		})
	}
}

func TestTruncateStyled(t *testing.T) {
	cfg := DefaultConfig().Text

	short := "\x1b[1mhi\x1b[0m"
	if got := TruncateStyled(short, 10, cfg); got != short {
		t.Errorf("short text should be unchanged, got %q", got)
	}

	got := TruncateStyled("\x1b[31mhello world\x1b[0m", 6, cfg)
	if ansi.Strip(got) != "hello…" {
		t.Errorf("expected visible 'hello…', got %q", ansi.Strip(got))
	}
	if VisibleLength(got) != 6 {
		t.Errorf("expected width 6, got %d", VisibleLength(got))
	}
}

func TestPadRight(t *testing.T) {
	if got := PadRight("ab", 4); got != "ab  " {
		t.Errorf("PadRight = %q", got)
	}
	if got := PadRight("abcdef", 4); got != "abcdef" {
		t.Errorf("PadRight should not cut, got %q", got)
	}
	if got := PadRight("\x1b[1mab\x1b[0m", 3); VisibleLength(got) != 3 {
		t.Errorf("PadRight should ignore ANSI codes, got %q", got)
	}
}
