package model

import (
	"strings"
	"time"
)

// Bookmark is a transient copy of a record owned by the linkding server.
type Bookmark struct {
	ID                 int       `json:"id"`
	URL                string    `json:"url"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	Notes              string    `json:"notes"`
	Tags               []string  `json:"tags"`
	Archived           bool      `json:"archived"`
	Unread             bool      `json:"unread"`
	Shared             bool      `json:"shared"`
	CreatedAt          time.Time `json:"createdAt"`
	ModifiedAt         time.Time `json:"modifiedAt"`
	PreviewImageURL    string    `json:"previewImageUrl,omitempty"`
	WebsiteTitle       string    `json:"websiteTitle,omitempty"`
	WebsiteDescription string    `json:"websiteDescription,omitempty"`
}

// DisplayTitle returns the user title, falling back to the scraped website
// title and finally the URL.
func (b Bookmark) DisplayTitle() string {
	if b.Title != "" {
		return b.Title
	}
	if b.WebsiteTitle != "" {
		return b.WebsiteTitle
	}
	return b.URL
}

// DisplayDescription returns the user description or the scraped one.
func (b Bookmark) DisplayDescription() string {
	if b.Description != "" {
		return b.Description
	}
	return b.WebsiteDescription
}

// HasTag reports whether the bookmark carries the given tag (case-insensitive).
func (b Bookmark) HasTag(name string) bool {
	for _, t := range b.Tags {
		if strings.EqualFold(t, name) {
			return true
		}
	}
	return false
}

// BookmarkDraft holds the fields sent when creating a bookmark.
type BookmarkDraft struct {
	URL         string
	Title       string
	Description string
	Notes       string
	Tags        []string
	Archived    bool
	Unread      bool
	Shared      bool
}

// BookmarkPatch is a partial update. Nil fields are left untouched on the server.
type BookmarkPatch struct {
	URL         *string
	Title       *string
	Description *string
	Notes       *string
	Tags        *[]string
	Archived    *bool
	Unread      *bool
	Shared      *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p BookmarkPatch) IsEmpty() bool {
	return p.URL == nil && p.Title == nil && p.Description == nil && p.Notes == nil &&
		p.Tags == nil && p.Archived == nil && p.Unread == nil && p.Shared == nil
}

// Apply returns a copy of b with the patch fields applied.
func (p BookmarkPatch) Apply(b Bookmark) Bookmark {
	if p.URL != nil {
		b.URL = *p.URL
	}
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Description != nil {
		b.Description = *p.Description
	}
	if p.Notes != nil {
		b.Notes = *p.Notes
	}
	if p.Tags != nil {
		b.Tags = append([]string(nil), (*p.Tags)...)
	}
	if p.Archived != nil {
		b.Archived = *p.Archived
	}
	if p.Unread != nil {
		b.Unread = *p.Unread
	}
	if p.Shared != nil {
		b.Shared = *p.Shared
	}
	return b
}

// Metadata is what the server scraped from a URL that is not bookmarked yet.
type Metadata struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// LookupResult is the answer to "is this URL bookmarked already?".
// Exactly one of Bookmark or Metadata is set; Bookmark wins when both are present.
type LookupResult struct {
	Bookmark      *Bookmark
	Metadata      *Metadata
	SuggestedTags []string
}

// Exists reports whether the URL is already bookmarked.
func (r LookupResult) Exists() bool {
	return r.Bookmark != nil
}

// NormalizeURL trims the input and adds an https scheme when none is given.
func NormalizeURL(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" {
		return ""
	}
	lower := strings.ToLower(u)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		u = "https://" + u
	}
	return u
}

// ParseTags splits a comma-separated tag string, dropping blanks and duplicates.
func ParseTags(s string) []string {
	tags := []string{}
	seen := make(map[string]bool)
	for _, part := range strings.Split(s, ",") {
		for _, t := range strings.Fields(part) {
			key := strings.ToLower(t)
			if seen[key] {
				continue
			}
			seen[key] = true
			tags = append(tags, t)
		}
	}
	return tags
}
