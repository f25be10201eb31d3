package exporter

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nikbrunner/lnk/internal/model"
)

// DefaultExportPath returns the default export file path.
// Format: ~/Downloads/lnk-export-YYYY-MM-DD.html
func DefaultExportPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("lnk-export-%s.html", time.Now().Format("2006-01-02"))
	return filepath.Join(home, "Downloads", filename), nil
}

// ExportHTML writes bookmarks as Netscape bookmark HTML, in the flavour
// linkding itself exports: a flat list with tags, unread and shared state
// kept in attributes.
func ExportHTML(bookmarks []model.Bookmark) string {
	var b strings.Builder

	// Header
	b.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	b.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	b.WriteString("<TITLE>Bookmarks</TITLE>\n")
	b.WriteString("<H1>Bookmarks</H1>\n")
	b.WriteString("<DL><p>\n")

	for i := range bookmarks {
		writeBookmark(&b, &bookmarks[i])
	}

	// Footer
	b.WriteString("</DL><p>\n")

	return b.String()
}

func writeBookmark(b *strings.Builder, bm *model.Bookmark) {
	const prefix = "    "

	private := "1"
	if bm.Shared {
		private = "0"
	}
	toRead := "0"
	if bm.Unread {
		toRead = "1"
	}

	fmt.Fprintf(b,
		"%s<DT><A HREF=\"%s\" ADD_DATE=\"%d\" PRIVATE=\"%s\" TOREAD=\"%s\" TAGS=\"%s\">%s</A>\n",
		prefix,
		html.EscapeString(bm.URL),
		bm.CreatedAt.Unix(),
		private,
		toRead,
		html.EscapeString(strings.Join(bm.Tags, ",")),
		html.EscapeString(bm.DisplayTitle()),
	)
	if desc := strings.TrimSpace(bm.Description); desc != "" {
		fmt.Fprintf(b, "%s<DD>%s\n", prefix, html.EscapeString(desc))
	}
}

// WriteFile exports bookmarks to path, creating parent directories.
func WriteFile(path string, bookmarks []model.Bookmark) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	return os.WriteFile(path, []byte(ExportHTML(bookmarks)), 0o644)
}
