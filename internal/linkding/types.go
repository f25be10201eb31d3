package linkding

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/nikbrunner/lnk/internal/model"
)

// TagList decodes tag_names sent either as a JSON array or as a
// comma-joined string. It never leaves this package as anything but []string.
type TagList []string

func (t *TagList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*t = TagList{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = splitTags(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return err
	}
	out := make(TagList, 0, len(list))
	for _, name := range list {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	*t = out
	return nil
}

func splitTags(s string) TagList {
	out := TagList{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// bookmarkJSON is the wire shape of a bookmark.
type bookmarkJSON struct {
	ID                 int       `json:"id"`
	URL                string    `json:"url"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	Notes              string    `json:"notes"`
	WebsiteTitle       string    `json:"website_title"`
	WebsiteDescription string    `json:"website_description"`
	PreviewImageURL    string    `json:"preview_image_url"`
	IsArchived         bool      `json:"is_archived"`
	Unread             bool      `json:"unread"`
	Shared             bool      `json:"shared"`
	TagNames           TagList   `json:"tag_names"`
	DateAdded          time.Time `json:"date_added"`
	DateModified       time.Time `json:"date_modified"`
}

func (b bookmarkJSON) toModel() model.Bookmark {
	tags := []string(b.TagNames)
	if tags == nil {
		tags = []string{}
	}
	return model.Bookmark{
		ID:                 b.ID,
		URL:                b.URL,
		Title:              b.Title,
		Description:        b.Description,
		Notes:              b.Notes,
		Tags:               tags,
		Archived:           b.IsArchived,
		Unread:             b.Unread,
		Shared:             b.Shared,
		CreatedAt:          b.DateAdded,
		ModifiedAt:         b.DateModified,
		PreviewImageURL:    b.PreviewImageURL,
		WebsiteTitle:       b.WebsiteTitle,
		WebsiteDescription: b.WebsiteDescription,
	}
}

type bookmarkListJSON struct {
	Count    int            `json:"count"`
	Next     *string        `json:"next"`
	Previous *string        `json:"previous"`
	Results  []bookmarkJSON `json:"results"`
}

// draftJSON is the create payload.
type draftJSON struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Notes       string   `json:"notes"`
	TagNames    []string `json:"tag_names"`
	IsArchived  bool     `json:"is_archived"`
	Unread      bool     `json:"unread"`
	Shared      bool     `json:"shared"`
}

func newDraftJSON(d model.BookmarkDraft) draftJSON {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return draftJSON{
		URL:         d.URL,
		Title:       d.Title,
		Description: d.Description,
		Notes:       d.Notes,
		TagNames:    tags,
		IsArchived:  d.Archived,
		Unread:      d.Unread,
		Shared:      d.Shared,
	}
}

// patchJSON only carries the fields being changed.
type patchJSON struct {
	URL         *string   `json:"url,omitempty"`
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Notes       *string   `json:"notes,omitempty"`
	TagNames    *[]string `json:"tag_names,omitempty"`
	IsArchived  *bool     `json:"is_archived,omitempty"`
	Unread      *bool     `json:"unread,omitempty"`
	Shared      *bool     `json:"shared,omitempty"`
}

func newPatchJSON(p model.BookmarkPatch) patchJSON {
	return patchJSON{
		URL:         p.URL,
		Title:       p.Title,
		Description: p.Description,
		Notes:       p.Notes,
		TagNames:    p.Tags,
		IsArchived:  p.Archived,
		Unread:      p.Unread,
		Shared:      p.Shared,
	}
}

type checkJSON struct {
	Bookmark *bookmarkJSON `json:"bookmark"`
	Metadata *struct {
		URL         string `json:"url"`
		Title       string `json:"title"`
		Description string `json:"description"`
	} `json:"metadata"`
	AutoTags TagList `json:"auto_tags"`
}

func (c checkJSON) toModel() *model.LookupResult {
	res := &model.LookupResult{SuggestedTags: []string(c.AutoTags)}
	if res.SuggestedTags == nil {
		res.SuggestedTags = []string{}
	}
	if c.Bookmark != nil {
		b := c.Bookmark.toModel()
		res.Bookmark = &b
		return res
	}
	if c.Metadata != nil {
		res.Metadata = &model.Metadata{
			URL:         c.Metadata.URL,
			Title:       c.Metadata.Title,
			Description: c.Metadata.Description,
		}
	}
	return res
}

type tagJSON struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	DateAdded time.Time `json:"date_added"`
	// Only some server versions send this.
	BookmarkCount int `json:"bookmark_count"`
}

func (t tagJSON) toModel() model.Tag {
	return model.Tag{ID: t.ID, Name: t.Name, BookmarkCount: t.BookmarkCount}
}

type tagListJSON struct {
	Count   int       `json:"count"`
	Next    *string   `json:"next"`
	Results []tagJSON `json:"results"`
}
