package listctl

import (
	"context"
	"fmt"

	"github.com/nikbrunner/lnk/internal/model"
)

// Archive sets the archived flag on the server. Once the server confirms,
// the row is dropped from this list if it no longer belongs here and total
// is decremented. A failed write leaves the list untouched.
func (c *Controller) Archive(ctx context.Context, id int, archived bool) error {
	updated, err := c.remote.SetArchived(ctx, id, archived)
	if err != nil {
		c.log.WithError(err).WithField("id", id).Warn("list: archive failed")
		return fmt.Errorf("archive bookmark %d: %w", id, err)
	}

	b := c.resolve(id, updated, func(b *model.Bookmark) { b.Archived = archived })
	c.reconcile(b)
	c.invalidate(model.Change{Kind: model.ChangeArchived, Bookmark: b})
	return nil
}

// Delete removes the bookmark on the server, then from this list.
func (c *Controller) Delete(ctx context.Context, id int) error {
	if err := c.remote.DeleteBookmark(ctx, id); err != nil {
		c.log.WithError(err).WithField("id", id).Warn("list: delete failed")
		return fmt.Errorf("delete bookmark %d: %w", id, err)
	}

	b := c.resolve(id, nil, nil)
	c.Remove(id)
	c.invalidate(model.Change{Kind: model.ChangeDeleted, Bookmark: b})
	return nil
}

// Update sends a partial update. The row is replaced with the server copy,
// or dropped when the new state no longer matches this list (marking a
// bookmark read in the unread list, for example).
func (c *Controller) Update(ctx context.Context, id int, patch model.BookmarkPatch) (*model.Bookmark, error) {
	updated, err := c.remote.UpdateBookmark(ctx, id, patch)
	if err != nil {
		c.log.WithError(err).WithField("id", id).Warn("list: update failed")
		return nil, fmt.Errorf("update bookmark %d: %w", id, err)
	}

	b := c.resolve(id, updated, func(b *model.Bookmark) { *b = patch.Apply(*b) })
	c.reconcile(b)
	c.invalidate(model.Change{Kind: model.ChangeUpdated, Bookmark: b, Patch: patch})
	return &b, nil
}

// Create stores a new bookmark. It is put at the top of this list when it
// belongs here and no search is active; otherwise the list is left alone.
func (c *Controller) Create(ctx context.Context, d model.BookmarkDraft) (*model.Bookmark, error) {
	created, err := c.remote.CreateBookmark(ctx, d)
	if err != nil {
		c.log.WithError(err).WithField("url", d.URL).Warn("list: create failed")
		return nil, fmt.Errorf("create bookmark: %w", err)
	}

	c.mu.Lock()
	if c.query == "" && c.view.Contains(*created, c.tagName) && model.IndexOf(c.items, created.ID) < 0 {
		items := make([]model.Bookmark, 0, len(c.items)+1)
		items = append(items, *created)
		c.items = append(items, c.items...)
		c.total++
		c.shift++
		c.mu.Unlock()
		c.notify()
	} else {
		c.mu.Unlock()
	}

	c.invalidate(model.Change{Kind: model.ChangeCreated, Bookmark: *created})
	return created, nil
}

// Remove drops a row locally and decrements total. The next page is
// requested one row earlier to cover the row that moves up on the server.
// It reports whether the row was present.
func (c *Controller) Remove(id int) bool {
	c.mu.Lock()
	idx := model.IndexOf(c.items, id)
	if idx < 0 {
		c.mu.Unlock()
		return false
	}
	items := make([]model.Bookmark, 0, len(c.items)-1)
	items = append(items, c.items[:idx]...)
	c.items = append(items, c.items[idx+1:]...)
	if c.total > 0 {
		c.total--
	}
	c.shift--
	if c.focused == id {
		c.focused = 0
	}
	c.mu.Unlock()

	c.notify()
	return true
}

// Item returns the row with the given ID.
func (c *Controller) Item(id int) (model.Bookmark, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if idx := model.IndexOf(c.items, id); idx >= 0 {
		return c.items[idx], true
	}
	return model.Bookmark{}, false
}

// resolve picks the best known copy of a bookmark after a write: the server
// copy when there is one, else the local row with fix applied.
func (c *Controller) resolve(id int, server *model.Bookmark, fix func(*model.Bookmark)) model.Bookmark {
	if server != nil {
		return *server
	}
	b, ok := c.Item(id)
	if !ok {
		b = model.Bookmark{ID: id}
	}
	if fix != nil {
		fix(&b)
	}
	return b
}

// reconcile replaces the row with b, or removes it when b left the view.
func (c *Controller) reconcile(b model.Bookmark) {
	if !c.view.Contains(b, c.tagName) {
		c.Remove(b.ID)
		return
	}

	c.mu.Lock()
	idx := model.IndexOf(c.items, b.ID)
	if idx < 0 {
		c.mu.Unlock()
		return
	}
	items := make([]model.Bookmark, len(c.items))
	copy(items, c.items)
	items[idx] = b
	c.items = items
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) invalidate(change model.Change) {
	if c.cache == nil {
		return
	}
	c.cache.InvalidateAfter(change)
}

// Focus opens the action panel of one row, closing any other. It reports
// false when the row is not in the list.
func (c *Controller) Focus(id int) bool {
	c.mu.Lock()
	if model.IndexOf(c.items, id) < 0 {
		c.mu.Unlock()
		return false
	}
	changed := c.focused != id
	c.focused = id
	c.mu.Unlock()

	if changed {
		c.notify()
	}
	return true
}

// Blur closes the open action panel, if any.
func (c *Controller) Blur() {
	c.mu.Lock()
	changed := c.focused != 0
	c.focused = 0
	c.mu.Unlock()

	if changed {
		c.notify()
	}
}

// Focused returns the ID of the row whose action panel is open, or 0.
func (c *Controller) Focused() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.focused
}
