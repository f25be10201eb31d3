package tui

import (
	"strings"

	"github.com/nikbrunner/lnk/internal/model"
	"github.com/nikbrunner/lnk/internal/tui/layout"
)

// rowPrefix marks unread bookmarks.
func rowPrefix(b model.Bookmark) string {
	if b.Unread {
		return "• "
	}
	return "  "
}

// rowSuffix marks shared bookmarks.
func rowSuffix(b model.Bookmark) string {
	if b.Shared {
		return " ↗"
	}
	return ""
}

// renderRow renders one list row, truncated to maxWidth.
func (a App) renderRow(b model.Bookmark, isCursor bool, maxWidth int) string {
	line, _ := layout.TruncateWithPrefixSuffix(b.DisplayTitle(), maxWidth, rowPrefix(b), rowSuffix(b), a.layoutConfig.Text)

	if isCursor {
		return a.styles.ItemSelected.Render(layout.PadRight(line, maxWidth))
	}
	if b.Unread {
		return a.styles.Unread.Render(line)
	}
	return a.styles.Item.Render(line)
}

// rowActions are the entries of the inline action panel, in display order.
func (a App) rowActions(b model.Bookmark) []Hint {
	archive := "archive"
	if b.Archived {
		archive = "unarchive"
	}
	unread := "mark unread"
	if b.Unread {
		unread = "mark read"
	}
	shared := "share"
	if b.Shared {
		shared = "unshare"
	}
	return []Hint{
		{Key: "o", Desc: "open"},
		{Key: "Y", Desc: "yank"},
		{Key: "e", Desc: "edit"},
		{Key: "a", Desc: archive},
		{Key: "u", Desc: unread},
		{Key: "s", Desc: shared},
		{Key: "d", Desc: "delete"},
	}
}

func joinTags(tags []string) string {
	return strings.Join(tags, " ")
}

func hashTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return "#" + strings.Join(tags, " #")
}
