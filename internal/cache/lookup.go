package cache

import (
	"context"
	"errors"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/nikbrunner/lnk/internal/model"
)

// DefaultLookupSize bounds the lookup LRU when no size is configured.
const DefaultLookupSize = 64

// Checker is the part of the remote client that resolves a URL.
type Checker interface {
	LookupByURL(ctx context.Context, rawURL string) (*model.LookupResult, error)
}

// Lookups remembers recent URL checks so the add form can re-check
// cheaply while the user edits the URL.
type Lookups struct {
	entries *lru.Cache[string, *model.LookupResult]
}

// NewLookups creates a lookup cache holding at most size entries.
func NewLookups(size int) (*Lookups, error) {
	if size <= 0 {
		size = DefaultLookupSize
	}
	entries, err := lru.New[string, *model.LookupResult](size)
	if err != nil {
		return nil, err
	}
	return &Lookups{entries: entries}, nil
}

// Check returns the cached result for the URL or asks the checker.
// Failed lookups are not cached.
func (l *Lookups) Check(ctx context.Context, checker Checker, rawURL string) (*model.LookupResult, error) {
	key := model.NormalizeURL(rawURL)
	if key == "" {
		return nil, errors.New("cache: empty URL")
	}
	if res, ok := l.entries.Get(key); ok {
		return res, nil
	}

	res, err := checker.LookupByURL(ctx, key)
	if err != nil {
		return nil, err
	}
	l.entries.Add(key, res)
	return res, nil
}

// Purge drops every entry. Any write can change what a lookup returns.
func (l *Lookups) Purge() {
	l.entries.Purge()
}

// Len returns the number of cached lookups.
func (l *Lookups) Len() int {
	return l.entries.Len()
}
