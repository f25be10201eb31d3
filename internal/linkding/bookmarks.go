package linkding

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/nikbrunner/lnk/internal/model"
)

// ListBookmarks fetches one page of the given view.
func (c *Client) ListBookmarks(ctx context.Context, view model.View, p model.ListParams) (*model.Page, error) {
	path, q, err := listRequest(view, p)
	if err != nil {
		return nil, err
	}

	var resp bookmarkListJSON
	if err := c.getJSON(ctx, path, q, &resp); err != nil {
		return nil, err
	}

	page := &model.Page{
		Items:  make([]model.Bookmark, 0, len(resp.Results)),
		Total:  resp.Count,
		Limit:  p.Limit,
		Offset: p.Offset,
	}
	for _, b := range resp.Results {
		page.Items = append(page.Items, b.toModel())
	}
	return page, nil
}

// Ping checks that the server accepts the token.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.ListBookmarks(ctx, model.ViewDefault, model.ListParams{Limit: 1})
	return err
}

// GetBookmark fetches a single bookmark.
func (c *Client) GetBookmark(ctx context.Context, id int) (*model.Bookmark, error) {
	var b bookmarkJSON
	if err := c.getJSON(ctx, bookmarkPath(id), nil, &b); err != nil {
		return nil, err
	}
	bm := b.toModel()
	return &bm, nil
}

// LookupByURL asks the server whether the URL is bookmarked. When it is not,
// the result carries scraped metadata and suggested tags instead.
func (c *Client) LookupByURL(ctx context.Context, rawURL string) (*model.LookupResult, error) {
	q := url.Values{}
	q.Set("url", rawURL)

	var resp checkJSON
	if err := c.getJSON(ctx, "/api/bookmarks/check/", q, &resp); err != nil {
		return nil, err
	}
	return resp.toModel(), nil
}

// CreateBookmark stores a new bookmark and returns the server copy.
func (c *Client) CreateBookmark(ctx context.Context, d model.BookmarkDraft) (*model.Bookmark, error) {
	var b bookmarkJSON
	if err := c.sendJSON(ctx, http.MethodPost, "/api/bookmarks/", newDraftJSON(d), &b); err != nil {
		return nil, err
	}
	bm := b.toModel()
	return &bm, nil
}

// UpdateBookmark sends a partial update; fields absent from the patch are kept.
func (c *Client) UpdateBookmark(ctx context.Context, id int, p model.BookmarkPatch) (*model.Bookmark, error) {
	if p.IsEmpty() {
		return c.GetBookmark(ctx, id)
	}
	var b bookmarkJSON
	if err := c.sendJSON(ctx, http.MethodPatch, bookmarkPath(id), newPatchJSON(p), &b); err != nil {
		return nil, err
	}
	bm := b.toModel()
	return &bm, nil
}

// SetArchived flips only the archived flag.
func (c *Client) SetArchived(ctx context.Context, id int, archived bool) (*model.Bookmark, error) {
	return c.UpdateBookmark(ctx, id, model.BookmarkPatch{Archived: &archived})
}

// DeleteBookmark removes a bookmark. Only 204 No Content counts as success.
func (c *Client) DeleteBookmark(ctx context.Context, id int) error {
	return c.sendJSON(ctx, http.MethodDelete, bookmarkPath(id), nil, nil, http.StatusNoContent)
}

func bookmarkPath(id int) string {
	return fmt.Sprintf("/api/bookmarks/%d/", id)
}
