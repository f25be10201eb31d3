package model_test

import (
	"testing"

	"github.com/nikbrunner/lnk/internal/model"
)

// Helper functions for pointers
func stringPtr(s string) *string { return &s }
func boolPtr(b bool) *bool       { return &b }

func TestBookmark_DisplayTitle(t *testing.T) {
	tests := []struct {
		name     string
		bookmark model.Bookmark
		want     string
	}{
		{"user title wins", model.Bookmark{Title: "Mine", WebsiteTitle: "Site", URL: "https://a.dev"}, "Mine"},
		{"website title fallback", model.Bookmark{WebsiteTitle: "Site", URL: "https://a.dev"}, "Site"},
		{"url as last resort", model.Bookmark{URL: "https://a.dev"}, "https://a.dev"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.bookmark.DisplayTitle(); got != tt.want {
				t.Errorf("DisplayTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"example.com", "https://example.com"},
		{"  https://example.com  ", "https://example.com"},
		{"http://example.com/a", "http://example.com/a"},
		{"HTTPS://EXAMPLE.COM", "HTTPS://EXAMPLE.COM"},
		{"   ", ""},
	}

	for _, tt := range tests {
		if got := model.NormalizeURL(tt.in); got != tt.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseTags(t *testing.T) {
	got := model.ParseTags("go, reading ,, Go,tools  cli")
	want := []string{"go", "reading", "tools", "cli"}

	if len(got) != len(want) {
		t.Fatalf("expected %d tags, got %d (%v)", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tag %d: got %q, want %q", i, got[i], want[i])
		}
	}

	if empty := model.ParseTags(""); len(empty) != 0 || empty == nil {
		t.Errorf("expected empty non-nil slice, got %#v", empty)
	}
}

func TestPage_HasMore(t *testing.T) {
	full := &model.Page{Items: make([]model.Bookmark, 20), Total: 45, Limit: 20, Offset: 0}
	if !full.HasMore() {
		t.Error("full page should report more")
	}
	if full.Next() != 20 {
		t.Errorf("expected next offset 20, got %d", full.Next())
	}

	short := &model.Page{Items: make([]model.Bookmark, 5), Total: 45, Limit: 20, Offset: 40}
	if short.HasMore() {
		t.Error("short page should not report more")
	}

	var nilPage *model.Page
	if nilPage.HasMore() {
		t.Error("nil page should not report more")
	}
}

func TestPage_CloneIsIndependent(t *testing.T) {
	p := &model.Page{Items: []model.Bookmark{{ID: 1, Title: "a"}}, Total: 1, Limit: 10}
	c := p.Clone()
	c.Items[0].Title = "changed"

	if p.Items[0].Title != "a" {
		t.Error("mutating the clone changed the original")
	}
}

func TestParseView(t *testing.T) {
	for _, v := range model.Views {
		got, err := model.ParseView(v.String())
		if err != nil {
			t.Fatalf("ParseView(%q): %v", v.String(), err)
		}
		if got != v {
			t.Errorf("round trip %q: got %v", v.String(), got)
		}
	}

	if _, err := model.ParseView("starred"); err == nil {
		t.Error("expected error for unknown view")
	}
}

func TestView_IsVirtual(t *testing.T) {
	virtual := map[model.View]bool{model.ViewUnread: true, model.ViewUntagged: true, model.ViewShared: true}
	for _, v := range model.Views {
		if v.IsVirtual() != virtual[v] {
			t.Errorf("%s: IsVirtual() = %v", v, v.IsVirtual())
		}
	}
}

func TestChange_Affects(t *testing.T) {
	tests := []struct {
		name   string
		change model.Change
		view   model.View
		want   bool
	}{
		{"delete hits unread", model.Change{Kind: model.ChangeDeleted}, model.ViewUnread, true},
		{"archive hits shared", model.Change{Kind: model.ChangeArchived}, model.ViewShared, true},
		{
			"mark read hits unread",
			model.Change{Kind: model.ChangeUpdated, Patch: model.BookmarkPatch{Unread: boolPtr(false)}},
			model.ViewUnread, true,
		},
		{
			"mark read leaves shared",
			model.Change{Kind: model.ChangeUpdated, Patch: model.BookmarkPatch{Unread: boolPtr(false)}},
			model.ViewShared, false,
		},
		{
			"title edit leaves untagged",
			model.Change{Kind: model.ChangeUpdated, Patch: model.BookmarkPatch{Title: stringPtr("x")}},
			model.ViewUntagged, false,
		},
		{
			"tag edit hits untagged",
			model.Change{Kind: model.ChangeUpdated, Patch: model.BookmarkPatch{Tags: &[]string{"go"}}},
			model.ViewUntagged, true,
		},
		{
			"unread create hits unread",
			model.Change{Kind: model.ChangeCreated, Bookmark: model.Bookmark{Unread: true, Tags: []string{"go"}}},
			model.ViewUnread, true,
		},
		{
			"tagged create leaves untagged",
			model.Change{Kind: model.ChangeCreated, Bookmark: model.Bookmark{Tags: []string{"go"}}},
			model.ViewUntagged, false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.change.Affects(tt.view); got != tt.want {
				t.Errorf("Affects(%s) = %v, want %v", tt.view, got, tt.want)
			}
		})
	}
}

func TestBookmarkPatch_Apply(t *testing.T) {
	b := model.Bookmark{ID: 7, Title: "old", Tags: []string{"a"}, Unread: true}
	patch := model.BookmarkPatch{Title: stringPtr("new"), Unread: boolPtr(false)}

	got := patch.Apply(b)
	if got.Title != "new" || got.Unread {
		t.Errorf("patch not applied: %+v", got)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "a" {
		t.Errorf("untouched field changed: %v", got.Tags)
	}
	if b.Title != "old" {
		t.Error("Apply mutated its input")
	}
	if (model.BookmarkPatch{}).IsEmpty() != true {
		t.Error("zero patch should be empty")
	}
}
