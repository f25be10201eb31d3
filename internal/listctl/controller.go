// Package listctl drives one scrollable bookmark list: first-page loads,
// incremental "load more", debounced search and optimistic removal after
// confirmed writes.
package listctl

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/nikbrunner/lnk/internal/logger"
	"github.com/nikbrunner/lnk/internal/model"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultPageSize is the number of bookmarks requested per page.
	DefaultPageSize = 100
	// DefaultDebounce is how long SetSearch waits for typing to settle.
	DefaultDebounce = 100 * time.Millisecond
	// DefaultThreshold is how many rows from the end NearEnd starts to fire.
	DefaultThreshold = 10
)

// State is where a list is in its load cycle.
type State int

const (
	// Idle means nothing is in flight; the last load, if any, succeeded.
	Idle State = iota
	// Loading means the first page is being fetched after a reset.
	Loading
	// LoadingMore means the next page is being fetched.
	LoadingMore
	// Error means the last load failed. Items from earlier pages are kept.
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case LoadingMore:
		return "loading more"
	case Error:
		return "error"
	}
	return "unknown"
}

// Remote is the subset of the linkding client a list needs.
type Remote interface {
	ListBookmarks(ctx context.Context, view model.View, p model.ListParams) (*model.Page, error)
	CreateBookmark(ctx context.Context, d model.BookmarkDraft) (*model.Bookmark, error)
	UpdateBookmark(ctx context.Context, id int, p model.BookmarkPatch) (*model.Bookmark, error)
	SetArchived(ctx context.Context, id int, archived bool) (*model.Bookmark, error)
	DeleteBookmark(ctx context.Context, id int) error
}

// ViewCache is the read side of the view cache plus its invalidation hook.
type ViewCache interface {
	Get(view model.View) (*model.Page, bool)
	InvalidateAfter(change model.Change) []model.View
}

// Params configures a Controller. Remote and View are required.
type Params struct {
	Remote  Remote
	Cache   ViewCache // optional
	View    model.View
	TagName string // by-tag lists only

	PageSize  int
	Debounce  time.Duration
	Threshold int // rows from the end at which NearEnd fires

	// OnChange is called, outside the lock, after every state change.
	OnChange func(Snapshot)
	Logger   *logrus.Logger
}

// Snapshot is a copy of a list's state, safe to read from any goroutine.
type Snapshot struct {
	View    model.View
	TagName string
	Query   string
	State   State
	Items   []model.Bookmark
	Total   int
	HasMore bool
	Err     error
	Focused int // ID of the row with its action panel open, 0 for none
	// FromCache is true when the items were served by the view cache.
	FromCache bool
}

// Controller owns the state of one list screen.
type Controller struct {
	remote    Remote
	cache     ViewCache
	view      model.View
	tagName   string
	pageSize  int
	debounce  time.Duration
	threshold int
	onChange  func(Snapshot)
	log       *logrus.Entry

	// ctx is cancelled by Close; debounced refreshes run under it.
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	state   State
	items   []model.Bookmark
	total   int
	hasMore bool
	// offset counts rows fetched since the last reset. shift counts rows
	// that confirmed writes inserted (+) or removed (-) in the loaded part
	// of the server's list since then; the next page starts at offset+shift.
	offset    int
	shift     int
	query     string
	err       error
	fromCache bool
	focused   int
	// gen is bumped by every reset; responses from older generations
	// are dropped.
	gen       uint64
	timer     *time.Timer
	searchSeq uint64
	closed    bool
}

// New creates an idle controller. Call Refresh to load the first page.
func New(p Params) *Controller {
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.Debounce <= 0 {
		p.Debounce = DefaultDebounce
	}
	if p.Threshold <= 0 {
		p.Threshold = DefaultThreshold
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		remote:    p.Remote,
		cache:     p.Cache,
		view:      p.View,
		tagName:   p.TagName,
		pageSize:  p.PageSize,
		debounce:  p.Debounce,
		threshold: p.Threshold,
		onChange:  p.OnChange,
		log: logger.OrDiscard(p.Logger).WithFields(logrus.Fields{
			"view": p.View.String(),
			"tag":  p.TagName,
		}),
		ctx:    ctx,
		cancel: cancel,
	}
}

// View returns the view this list shows.
func (c *Controller) View() model.View { return c.view }

// TagName returns the tag of a by-tag list.
func (c *Controller) TagName() string { return c.tagName }

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	items := make([]model.Bookmark, len(c.items))
	copy(items, c.items)
	return Snapshot{
		View:      c.view,
		TagName:   c.tagName,
		Query:     c.query,
		State:     c.state,
		Items:     items,
		Total:     c.total,
		HasMore:   c.hasMore,
		Err:       c.err,
		Focused:   c.focused,
		FromCache: c.fromCache,
	}
}

func (c *Controller) notify() {
	if c.onChange == nil {
		return
	}
	c.onChange(c.Snapshot())
}

// Refresh discards the accumulated list and loads the first page.
// It supersedes any load in flight. A virtual view with no search text is
// served from the view cache when it holds a snapshot.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return context.Canceled
	}
	c.gen++
	gen := c.gen
	c.state = Loading
	c.items = nil
	c.total = 0
	c.hasMore = false
	c.offset = 0
	c.shift = 0
	c.err = nil
	c.fromCache = false
	c.focused = 0
	query := c.query
	c.mu.Unlock()
	c.notify()

	if query == "" && c.view.IsVirtual() && c.cache != nil {
		if page, ok := c.cache.Get(c.view); ok {
			c.log.WithField("items", len(page.Items)).Debug("list: served from cache")
			c.apply(gen, page, page.Limit, 0, false, true)
			return nil
		}
	}

	page, err := c.remote.ListBookmarks(ctx, c.view, c.params(query, 0))
	if err != nil {
		c.fail(gen, err)
		return err
	}
	c.apply(gen, page, c.pageSize, 0, false, false)
	return nil
}

// LoadMore fetches the next page and appends it. It does nothing while a
// load is in flight or when the last page was short. A failed LoadMore can
// be retried by calling it again.
func (c *Controller) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	if c.closed || c.state == Loading || c.state == LoadingMore || !c.hasMore {
		c.mu.Unlock()
		return nil
	}
	c.state = LoadingMore
	c.err = nil
	gen := c.gen
	offset := c.offset
	start := max(c.offset+c.shift, 0)
	query := c.query
	c.mu.Unlock()
	c.notify()

	page, err := c.remote.ListBookmarks(ctx, c.view, c.params(query, start))
	if err != nil {
		c.fail(gen, err)
		return err
	}
	c.apply(gen, page, c.pageSize, offset, true, false)
	return nil
}

// NearEnd reports whether the row at index is close enough to the end of
// the list that the next page should be requested.
func (c *Controller) NearEnd(index int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hasMore || c.state == Loading || c.state == LoadingMore {
		return false
	}
	return index >= len(c.items)-c.threshold
}

func (c *Controller) params(query string, offset int) model.ListParams {
	return model.ListParams{
		TagName: c.tagName,
		Query:   query,
		Limit:   c.pageSize,
		Offset:  offset,
	}
}

// apply stores a fetched page unless a reset happened since it was requested.
func (c *Controller) apply(gen uint64, page *model.Page, limit, offset int, appendItems, fromCache bool) bool {
	c.mu.Lock()
	if gen != c.gen || c.closed {
		c.mu.Unlock()
		c.log.Debug("list: dropping stale page")
		return false
	}

	var fetched []model.Bookmark
	total := 0
	if page != nil {
		fetched = page.Items
		total = page.Total
	}

	if appendItems {
		seen := make(map[int]struct{}, len(c.items))
		for _, b := range c.items {
			seen[b.ID] = struct{}{}
		}
		items := make([]model.Bookmark, len(c.items), len(c.items)+len(fetched))
		copy(items, c.items)
		dups := 0
		for _, b := range fetched {
			if _, ok := seen[b.ID]; ok {
				dups++
				continue
			}
			seen[b.ID] = struct{}{}
			items = append(items, b)
		}
		if dups > 0 {
			c.log.WithField("duplicates", dups).Debug("list: skipped duplicate rows")
		}
		c.items = items
	} else {
		c.items = make([]model.Bookmark, len(fetched))
		copy(c.items, fetched)
		c.fromCache = fromCache
	}

	c.total = total
	c.hasMore = limit > 0 && len(fetched) == limit
	c.offset = offset + len(fetched)
	c.state = Idle
	c.err = nil
	c.mu.Unlock()

	c.notify()
	return true
}

func (c *Controller) fail(gen uint64, err error) {
	c.mu.Lock()
	if gen != c.gen || c.closed {
		c.mu.Unlock()
		return
	}
	c.state = Error
	c.err = err
	c.mu.Unlock()

	c.log.WithError(err).Warn("list: load failed")
	c.notify()
}

// Query returns the search text currently applied to the list.
func (c *Controller) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// SetSearch schedules a refresh with new search text. Each call restarts
// the debounce timer so only the last text in a burst is fetched. Clearing
// the search refreshes without delay.
func (c *Controller) SetSearch(text string) {
	text = strings.TrimSpace(text)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.searchSeq++
	seq := c.searchSeq

	delay := c.debounce
	if text == "" {
		delay = 0
	}
	c.timer = time.AfterFunc(delay, func() {
		c.mu.Lock()
		// A timer that was stopped too late still runs; the sequence
		// check makes it a no-op.
		if c.closed || seq != c.searchSeq {
			c.mu.Unlock()
			return
		}
		c.timer = nil
		c.query = text
		c.mu.Unlock()

		_ = c.Refresh(c.ctx)
	})
}

// Close stops pending timers and cancels debounced loads. Later results
// are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.cancel()
}
