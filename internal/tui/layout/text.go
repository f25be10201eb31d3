package layout

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// VisibleLength returns the display width of a string, ignoring ANSI codes.
// Wide runes count as two cells.
func VisibleLength(s string) int {
	return ansi.StringWidth(s)
}

// TruncateText cuts text to maxWidth cells, ending in the ellipsis.
// It reports whether anything was cut.
func TruncateText(text string, maxWidth int, cfg TextConfig) (string, bool) {
	if maxWidth <= 0 {
		return "", text != ""
	}
	if ansi.StringWidth(text) <= maxWidth {
		return text, false
	}
	if ansi.StringWidth(cfg.Ellipsis) >= maxWidth {
		return ansi.Truncate(cfg.Ellipsis, maxWidth, ""), true
	}
	return ansi.Truncate(text, maxWidth, cfg.Ellipsis), true
}

// TruncateWithPrefixSuffix truncates text while keeping prefix and suffix
// intact, e.g. ("Development", 12, "• ", " 3") -> "• Develop… 3".
func TruncateWithPrefixSuffix(text string, maxWidth int, prefix, suffix string, cfg TextConfig) (string, bool) {
	if maxWidth <= 0 {
		return "", true
	}

	combined := prefix + text + suffix
	if ansi.StringWidth(combined) <= maxWidth {
		return combined, false
	}

	room := maxWidth - ansi.StringWidth(prefix) - ansi.StringWidth(suffix)
	if room <= ansi.StringWidth(cfg.Ellipsis) {
		// Not even one rune of text fits; cut the whole line instead.
		return TruncateText(combined, maxWidth, cfg)
	}

	cut, _ := TruncateText(text, room, cfg)
	return prefix + cut + suffix, true
}

// TruncateStyled truncates text that already carries styling. A reset code
// is appended so the cut style does not bleed into what follows.
func TruncateStyled(styled string, maxWidth int, cfg TextConfig) string {
	if maxWidth <= 0 {
		return ""
	}
	if ansi.StringWidth(styled) <= maxWidth {
		return styled
	}
	return ansi.Truncate(styled, maxWidth, cfg.Ellipsis) + "\x1b[0m"
}

// PadRight fills s with spaces up to width cells, for full-row highlights.
func PadRight(s string, width int) string {
	gap := width - ansi.StringWidth(s)
	if gap <= 0 {
		return s
	}
	return s + strings.Repeat(" ", gap)
}
