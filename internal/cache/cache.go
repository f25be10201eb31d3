// Package cache holds the in-memory snapshots of the virtual bookmark views
// and a small LRU of URL lookups. Nothing here is ever written to disk.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nikbrunner/lnk/internal/logger"
	"github.com/nikbrunner/lnk/internal/model"
	"github.com/sirupsen/logrus"
)

// DefaultLimit is how many bookmarks a single populate fetches.
// Virtual views are over-fetched once rather than paginated.
const DefaultLimit = 1000

// ErrNotCacheable is returned when asked to populate a non-virtual view.
var ErrNotCacheable = errors.New("cache: view is not cacheable")

// Lister is the part of the remote client the cache needs.
type Lister interface {
	ListBookmarks(ctx context.Context, view model.View, p model.ListParams) (*model.Page, error)
}

// Cache stores one whole-page snapshot per virtual view.
type Cache struct {
	lister Lister
	limit  int
	log    *logrus.Logger

	mu      sync.RWMutex
	buckets map[model.View]*model.Page
	// epochs bump on every invalidation so in-flight populates can tell
	// their result is stale.
	epochs map[model.View]uint64
}

// New creates an empty cache. A non-positive limit uses DefaultLimit.
func New(lister Lister, limit int, log *logrus.Logger) *Cache {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Cache{
		lister:  lister,
		limit:   limit,
		log:     logger.OrDiscard(log),
		buckets: make(map[model.View]*model.Page),
		epochs:  make(map[model.View]uint64),
	}
}

// Limit returns the page size used by Populate.
func (c *Cache) Limit() int { return c.limit }

// SetLister swaps the remote used by later populates, e.g. after login.
func (c *Cache) SetLister(l Lister) {
	c.mu.Lock()
	c.lister = l
	c.mu.Unlock()
}

// Get returns a copy of the cached snapshot for view. The bool is false on
// a miss; callers must not treat a miss as an error.
func (c *Cache) Get(view model.View) (*model.Page, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	page, ok := c.buckets[view]
	if !ok {
		return nil, false
	}
	return page.Clone(), true
}

// Populate fetches view with the cache limit and replaces its bucket.
// On failure the bucket is left as it was.
func (c *Cache) Populate(ctx context.Context, view model.View) (*model.Page, error) {
	if !view.IsVirtual() {
		return nil, fmt.Errorf("%w: %s", ErrNotCacheable, view)
	}

	c.mu.RLock()
	lister := c.lister
	epoch := c.epochs[view]
	c.mu.RUnlock()

	if lister == nil {
		return nil, errors.New("cache: no remote configured")
	}

	page, err := lister.ListBookmarks(ctx, view, model.ListParams{Limit: c.limit})
	if err != nil {
		c.log.WithError(err).WithField("view", view.String()).Warn("cache: populate failed")
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epochs[view] != epoch {
		c.log.WithField("view", view.String()).Debug("cache: dropping populate result after invalidation")
		return page.Clone(), nil
	}
	c.buckets[view] = page.Clone()
	c.log.WithFields(logrus.Fields{
		"view":  view.String(),
		"items": len(page.Items),
		"total": page.Total,
	}).Debug("cache: populated")
	return page, nil
}

// PopulateAll populates every virtual view concurrently and joins the errors.
// Successful buckets are kept even when others fail.
func (c *Cache) PopulateAll(ctx context.Context) error {
	var wg sync.WaitGroup
	errs := make([]error, len(model.VirtualViews))

	for i, view := range model.VirtualViews {
		wg.Add(1)
		go func(i int, view model.View) {
			defer wg.Done()
			if _, err := c.Populate(ctx, view); err != nil {
				errs[i] = fmt.Errorf("populate %s: %w", view, err)
			}
		}(i, view)
	}

	wg.Wait()
	return errors.Join(errs...)
}

// Invalidate drops the given buckets, or all of them when called with none.
func (c *Cache) Invalidate(views ...model.View) {
	if len(views) == 0 {
		views = model.VirtualViews
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, v := range views {
		delete(c.buckets, v)
		c.epochs[v]++
	}
}

// InvalidateAfter drops the buckets whose membership the confirmed change
// can alter. It returns the views that were dropped.
func (c *Cache) InvalidateAfter(change model.Change) []model.View {
	var affected []model.View
	for _, v := range model.VirtualViews {
		if change.Affects(v) {
			affected = append(affected, v)
		}
	}
	if len(affected) == 0 {
		return nil
	}
	c.Invalidate(affected...)
	c.log.WithFields(logrus.Fields{
		"change": change.Kind.String(),
		"views":  affected,
	}).Debug("cache: invalidated after write")
	return affected
}
