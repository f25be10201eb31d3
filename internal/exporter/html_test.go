package exporter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nikbrunner/lnk/internal/importer"
	"github.com/nikbrunner/lnk/internal/model"
)

func TestExportHTML_Empty(t *testing.T) {
	html := ExportHTML(nil)

	// Should have basic structure even when empty
	if !strings.Contains(html, "<!DOCTYPE NETSCAPE-Bookmark-file-1>") {
		t.Error("expected DOCTYPE declaration")
	}
	if !strings.Contains(html, "<TITLE>Bookmarks</TITLE>") {
		t.Error("expected TITLE element")
	}
	if !strings.Contains(html, "<H1>Bookmarks</H1>") {
		t.Error("expected H1 element")
	}
	if strings.Contains(html, "<DT>") {
		t.Error("expected no entries")
	}
}

func TestExportHTML_SingleBookmark(t *testing.T) {
	html := ExportHTML([]model.Bookmark{{
		ID:        1,
		Title:     "GitHub",
		URL:       "https://github.com",
		Tags:      []string{"code", "git"},
		Unread:    true,
		CreatedAt: time.Unix(1700000000, 0),
	}})

	if !strings.Contains(html, `<A HREF="https://github.com"`) {
		t.Error("expected bookmark URL")
	}
	if !strings.Contains(html, "GitHub</A>") {
		t.Error("expected bookmark title")
	}
	if !strings.Contains(html, `ADD_DATE="1700000000"`) {
		t.Error("expected ADD_DATE timestamp")
	}
	if !strings.Contains(html, `TAGS="code,git"`) {
		t.Error("expected comma-joined tags")
	}
	if !strings.Contains(html, `TOREAD="1"`) || !strings.Contains(html, `PRIVATE="1"`) {
		t.Error("expected unread private bookmark")
	}
}

func TestExportHTML_FallsBackToWebsiteTitle(t *testing.T) {
	html := ExportHTML([]model.Bookmark{{
		ID:           1,
		URL:          "https://go.dev",
		WebsiteTitle: "The Go Programming Language",
	}})

	if !strings.Contains(html, "The Go Programming Language</A>") {
		t.Errorf("expected scraped title, got:\n%s", html)
	}
}

func TestExportHTML_EscapesSpecialCharacters(t *testing.T) {
	html := ExportHTML([]model.Bookmark{{
		ID:          1,
		Title:       "Tom & Jerry's <Show>",
		URL:         "https://example.com?a=1&b=2",
		Description: "quotes \"here\"",
	}})

	if !strings.Contains(html, "Tom &amp; Jerry&#39;s &lt;Show&gt;") {
		t.Error("expected escaped title")
	}
	if !strings.Contains(html, "https://example.com?a=1&amp;b=2") {
		t.Error("expected escaped URL")
	}
	if !strings.Contains(html, "<DD>quotes &#34;here&#34;") {
		t.Error("expected escaped description")
	}
}

func TestExportHTML_RoundTripsThroughImporter(t *testing.T) {
	in := []model.Bookmark{
		{
			ID:          1,
			Title:       "Go Blog",
			URL:         "https://go.dev/blog",
			Description: "Posts from the Go team",
			Tags:        []string{"go", "blog"},
			Shared:      true,
			CreatedAt:   time.Unix(1700000000, 0),
		},
		{
			ID:        2,
			Title:     "Later",
			URL:       "https://example.com/later",
			Unread:    true,
			CreatedAt: time.Unix(1700000100, 0),
		},
	}

	entries, err := importer.ParseHTMLBookmarks(strings.NewReader(ExportHTML(in)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	blog := entries[0]
	if blog.Draft.URL != "https://go.dev/blog" || blog.Draft.Title != "Go Blog" {
		t.Errorf("unexpected first entry: %+v", blog.Draft)
	}
	if strings.Join(blog.Draft.Tags, ",") != "go,blog" {
		t.Errorf("expected tags to survive, got %v", blog.Draft.Tags)
	}
	if blog.Draft.Description != "Posts from the Go team" {
		t.Errorf("expected description to survive, got %q", blog.Draft.Description)
	}
	if !blog.Draft.Shared || blog.Draft.Unread {
		t.Errorf("expected shared read bookmark, got %+v", blog.Draft)
	}
	if !blog.AddedAt.Equal(time.Unix(1700000000, 0)) {
		t.Errorf("expected ADD_DATE to survive, got %v", blog.AddedAt)
	}

	later := entries[1].Draft
	if !later.Unread || later.Shared || later.Description != "" {
		t.Errorf("unexpected second entry: %+v", later)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "export.html")

	err := WriteFile(path, []model.Bookmark{{ID: 1, Title: "A", URL: "https://a.example"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(data), `HREF="https://a.example"`) {
		t.Error("expected bookmark in written file")
	}
}

func TestDefaultExportPath(t *testing.T) {
	path, err := DefaultExportPath()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(path, "Downloads") {
		t.Errorf("expected path in Downloads, got %s", path)
	}
	if !strings.HasSuffix(path, ".html") {
		t.Errorf("expected .html extension, got %s", path)
	}
	if !strings.Contains(path, "lnk-export-") {
		t.Errorf("expected lnk-export- prefix, got %s", path)
	}
}
