package listctl_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nikbrunner/lnk/internal/cache"
	"github.com/nikbrunner/lnk/internal/listctl"
	"github.com/nikbrunner/lnk/internal/model"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
	"gotest.tools/v3/poll"
)

type listCall struct {
	View   model.View
	Params model.ListParams
}

// fakeRemote serves a fixed data set in server order and records calls.
type fakeRemote struct {
	mu      sync.Mutex
	data    []model.Bookmark
	calls   []listCall
	listErr error
	// writeErr fails archive, update, delete and create.
	writeErr error
	deleted  []int
	// overlap makes every page after the first repeat its predecessor's last row.
	overlap bool
	gate    chan struct{}
}

func newFakeRemote(n int) *fakeRemote {
	data := make([]model.Bookmark, n)
	for i := range data {
		data[i] = model.Bookmark{ID: i + 1, URL: "https://example.com", Unread: true, Tags: []string{"reading"}}
	}
	return &fakeRemote{data: data}
}

func (f *fakeRemote) ListBookmarks(ctx context.Context, view model.View, p model.ListParams) (*model.Page, error) {
	f.mu.Lock()
	f.calls = append(f.calls, listCall{View: view, Params: p})
	gate := f.gate
	err := f.listErr
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	start := p.Offset
	if f.overlap && start > 0 {
		start--
	}
	if start > len(f.data) {
		start = len(f.data)
	}
	end := start + p.Limit
	if end > len(f.data) {
		end = len(f.data)
	}
	items := make([]model.Bookmark, end-start)
	copy(items, f.data[start:end])
	return &model.Page{Items: items, Total: len(f.data), Limit: p.Limit, Offset: p.Offset}, nil
}

func (f *fakeRemote) CreateBookmark(ctx context.Context, d model.BookmarkDraft) (*model.Bookmark, error) {
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	b := model.Bookmark{ID: 1000, URL: d.URL, Tags: d.Tags, Unread: d.Unread}
	f.mu.Lock()
	f.data = append([]model.Bookmark{b}, f.data...)
	f.mu.Unlock()
	return &b, nil
}

func (f *fakeRemote) UpdateBookmark(ctx context.Context, id int, p model.BookmarkPatch) (*model.Bookmark, error) {
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	b := p.Apply(model.Bookmark{ID: id, Unread: true, Tags: []string{"reading"}})
	return &b, nil
}

func (f *fakeRemote) SetArchived(ctx context.Context, id int, archived bool) (*model.Bookmark, error) {
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	return &model.Bookmark{ID: id, Archived: archived, Tags: []string{"reading"}}, nil
}

func (f *fakeRemote) DeleteBookmark(ctx context.Context, id int) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.mu.Lock()
	f.deleted = append(f.deleted, id)
	if i := model.IndexOf(f.data, id); i >= 0 {
		f.data = append(f.data[:i:i], f.data[i+1:]...)
	}
	f.mu.Unlock()
	return nil
}

func (f *fakeRemote) listCalls() []listCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]listCall, len(f.calls))
	copy(out, f.calls)
	return out
}

func newController(remote *fakeRemote, view model.View, pageSize int) *listctl.Controller {
	return listctl.New(listctl.Params{
		Remote:   remote,
		View:     view,
		TagName:  "reading",
		PageSize: pageSize,
		Debounce: 30 * time.Millisecond,
	})
}

func ids(items []model.Bookmark) []int {
	out := make([]int, len(items))
	for i, b := range items {
		out[i] = b.ID
	}
	return out
}

func assertUniqueIDs(t *testing.T, items []model.Bookmark) {
	t.Helper()
	seen := map[int]bool{}
	for _, b := range items {
		assert.Assert(t, !seen[b.ID], "duplicate id %d", b.ID)
		seen[b.ID] = true
	}
}

func TestRefresh_ByTagFirstPage(t *testing.T) {
	remote := newFakeRemote(45)
	c := newController(remote, model.ViewByTag, 20)
	defer c.Close()

	assert.NilError(t, c.Refresh(context.Background()))

	snap := c.Snapshot()
	assert.Equal(t, snap.State, listctl.Idle)
	assert.Equal(t, len(snap.Items), 20)
	assert.Equal(t, snap.Total, 45)
	assert.Assert(t, snap.HasMore)

	calls := remote.listCalls()
	assert.Assert(t, is.Len(calls, 1))
	assert.Equal(t, calls[0].View, model.ViewByTag)
	assert.DeepEqual(t, calls[0].Params, model.ListParams{TagName: "reading", Limit: 20, Offset: 0})
}

func TestLoadMore_AccumulatesUntilShortPage(t *testing.T) {
	remote := newFakeRemote(45)
	c := newController(remote, model.ViewByTag, 20)
	defer c.Close()
	ctx := context.Background()

	assert.NilError(t, c.Refresh(ctx))
	assert.NilError(t, c.LoadMore(ctx))

	snap := c.Snapshot()
	assert.Equal(t, len(snap.Items), 40)
	assert.Assert(t, snap.HasMore)

	assert.NilError(t, c.LoadMore(ctx))
	snap = c.Snapshot()
	assert.Equal(t, len(snap.Items), 45)
	assert.Equal(t, len(snap.Items), snap.Total)
	assert.Assert(t, !snap.HasMore)
	assertUniqueIDs(t, snap.Items)

	offsets := []int{}
	for _, call := range remote.listCalls() {
		offsets = append(offsets, call.Params.Offset)
	}
	assert.DeepEqual(t, offsets, []int{0, 20, 40})

	// Nothing more to load: no request.
	assert.NilError(t, c.LoadMore(ctx))
	assert.Equal(t, len(remote.listCalls()), 3)
}

func TestLoadMore_SumOfPages(t *testing.T) {
	for _, size := range []int{1, 7, 10, 33, 50} {
		remote := newFakeRemote(33)
		c := newController(remote, model.ViewDefault, size)
		ctx := context.Background()

		assert.NilError(t, c.Refresh(ctx))
		pages := 1
		for c.Snapshot().HasMore {
			assert.NilError(t, c.LoadMore(ctx))
			pages++
		}
		snap := c.Snapshot()
		assert.Equal(t, len(snap.Items), 33, "page size %d", size)
		assertUniqueIDs(t, snap.Items)
		assert.Equal(t, len(remote.listCalls()), pages)
		c.Close()
	}
}

func TestLoadMore_ExactMultipleNeedsOneEmptyPage(t *testing.T) {
	remote := newFakeRemote(40)
	c := newController(remote, model.ViewDefault, 20)
	defer c.Close()
	ctx := context.Background()

	assert.NilError(t, c.Refresh(ctx))
	assert.NilError(t, c.LoadMore(ctx))
	assert.Assert(t, c.Snapshot().HasMore, "a full page always implies more")

	assert.NilError(t, c.LoadMore(ctx))
	snap := c.Snapshot()
	assert.Assert(t, !snap.HasMore)
	assert.Equal(t, len(snap.Items), 40)
}

func TestLoadMore_DeduplicatesOverlap(t *testing.T) {
	remote := newFakeRemote(30)
	remote.overlap = true
	c := newController(remote, model.ViewDefault, 10)
	defer c.Close()
	ctx := context.Background()

	assert.NilError(t, c.Refresh(ctx))
	assert.NilError(t, c.LoadMore(ctx))

	snap := c.Snapshot()
	assertUniqueIDs(t, snap.Items)
	assert.Equal(t, len(snap.Items), 19)
}

func TestLoadMore_FailureKeepsItems(t *testing.T) {
	remote := newFakeRemote(45)
	c := newController(remote, model.ViewDefault, 20)
	defer c.Close()
	ctx := context.Background()

	assert.NilError(t, c.Refresh(ctx))
	before := c.Snapshot()

	boom := errors.New("connection reset")
	remote.mu.Lock()
	remote.listErr = boom
	remote.mu.Unlock()

	err := c.LoadMore(ctx)
	assert.Assert(t, errors.Is(err, boom))

	snap := c.Snapshot()
	assert.Equal(t, snap.State, listctl.Error)
	assert.Assert(t, errors.Is(snap.Err, boom))
	assert.DeepEqual(t, ids(snap.Items), ids(before.Items))
	assert.Equal(t, snap.Total, before.Total)

	// Retry from the error state picks up where it failed.
	remote.mu.Lock()
	remote.listErr = nil
	remote.mu.Unlock()
	assert.NilError(t, c.LoadMore(ctx))
	assert.Equal(t, len(c.Snapshot().Items), 40)
}

func TestRefresh_FailureSurfacesError(t *testing.T) {
	remote := newFakeRemote(5)
	remote.listErr = errors.New("HTTP 500")
	c := newController(remote, model.ViewDefault, 20)
	defer c.Close()

	err := c.Refresh(context.Background())
	assert.ErrorContains(t, err, "HTTP 500")
	snap := c.Snapshot()
	assert.Equal(t, snap.State, listctl.Error)
	assert.Assert(t, !snap.HasMore)
}

func TestLoadMore_IgnoredWhileLoading(t *testing.T) {
	remote := newFakeRemote(45)
	c := newController(remote, model.ViewDefault, 20)
	defer c.Close()
	ctx := context.Background()
	assert.NilError(t, c.Refresh(ctx))

	remote.mu.Lock()
	remote.gate = make(chan struct{})
	remote.mu.Unlock()

	done := make(chan error)
	go func() { done <- c.LoadMore(ctx) }()
	poll.WaitOn(t, func(poll.LogT) poll.Result {
		if c.Snapshot().State == listctl.LoadingMore {
			return poll.Success()
		}
		return poll.Continue("waiting for LoadingMore")
	}, poll.WithTimeout(time.Second))

	assert.NilError(t, c.LoadMore(ctx))
	assert.Assert(t, !c.NearEnd(19))
	assert.Equal(t, len(remote.listCalls()), 2)

	close(remote.gate)
	assert.NilError(t, <-done)
	assert.Equal(t, len(c.Snapshot().Items), 40)
}

func TestRefresh_DiscardsSupersededResponse(t *testing.T) {
	remote := newFakeRemote(45)
	c := newController(remote, model.ViewDefault, 20)
	defer c.Close()
	ctx := context.Background()
	assert.NilError(t, c.Refresh(ctx))

	remote.mu.Lock()
	remote.gate = make(chan struct{})
	remote.mu.Unlock()

	stale := make(chan error)
	go func() { stale <- c.LoadMore(ctx) }()
	poll.WaitOn(t, func(poll.LogT) poll.Result {
		if len(remote.listCalls()) == 2 {
			return poll.Success()
		}
		return poll.Continue("waiting for load more request")
	}, poll.WithTimeout(time.Second))

	fresh := make(chan error)
	go func() { fresh <- c.Refresh(ctx) }()
	poll.WaitOn(t, func(poll.LogT) poll.Result {
		if len(remote.listCalls()) == 3 {
			return poll.Success()
		}
		return poll.Continue("waiting for refresh request")
	}, poll.WithTimeout(time.Second))

	close(remote.gate)
	assert.NilError(t, <-stale)
	assert.NilError(t, <-fresh)

	snap := c.Snapshot()
	assert.Equal(t, len(snap.Items), 20, "stale page must not be appended")
	assertUniqueIDs(t, snap.Items)
}

func TestNearEnd(t *testing.T) {
	remote := newFakeRemote(100)
	c := listctl.New(listctl.Params{Remote: remote, View: model.ViewDefault, PageSize: 30, Threshold: 5})
	defer c.Close()
	assert.NilError(t, c.Refresh(context.Background()))

	assert.Assert(t, !c.NearEnd(10))
	assert.Assert(t, c.NearEnd(25))
	assert.Assert(t, c.NearEnd(29))
}

func TestRefresh_ServesVirtualViewFromCache(t *testing.T) {
	seed := newFakeRemote(12)
	vc := cache.New(seed, 0, nil)
	_, err := vc.Populate(context.Background(), model.ViewUnread)
	assert.NilError(t, err)

	remote := newFakeRemote(12)
	c := listctl.New(listctl.Params{Remote: remote, Cache: vc, View: model.ViewUnread, PageSize: 20})
	defer c.Close()

	assert.NilError(t, c.Refresh(context.Background()))
	snap := c.Snapshot()
	assert.Equal(t, len(remote.listCalls()), 0, "cache hit must not touch the network")
	assert.Equal(t, len(snap.Items), 12)
	assert.Assert(t, snap.FromCache)
	assert.Assert(t, !snap.HasMore)
}

func TestRefresh_CacheSkippedWithSearchOrMiss(t *testing.T) {
	seed := newFakeRemote(12)
	vc := cache.New(seed, 0, nil)
	_, err := vc.Populate(context.Background(), model.ViewUnread)
	assert.NilError(t, err)

	t.Run("miss", func(t *testing.T) {
		remote := newFakeRemote(3)
		c := listctl.New(listctl.Params{Remote: remote, Cache: vc, View: model.ViewShared})
		defer c.Close()
		assert.NilError(t, c.Refresh(context.Background()))
		assert.Equal(t, len(remote.listCalls()), 1)
		assert.Assert(t, !c.Snapshot().FromCache)
	})

	t.Run("non-virtual view", func(t *testing.T) {
		remote := newFakeRemote(3)
		c := listctl.New(listctl.Params{Remote: remote, Cache: vc, View: model.ViewDefault})
		defer c.Close()
		assert.NilError(t, c.Refresh(context.Background()))
		assert.Equal(t, len(remote.listCalls()), 1)
	})

	t.Run("search active", func(t *testing.T) {
		remote := newFakeRemote(3)
		c := listctl.New(listctl.Params{Remote: remote, Cache: vc, View: model.ViewUnread, Debounce: time.Millisecond})
		defer c.Close()
		c.SetSearch("go")
		poll.WaitOn(t, func(poll.LogT) poll.Result {
			if len(remote.listCalls()) == 1 && c.Snapshot().State == listctl.Idle {
				return poll.Success()
			}
			return poll.Continue("waiting for search fetch")
		}, poll.WithTimeout(time.Second))
		assert.Equal(t, remote.listCalls()[0].Params.Query, "go")
	})
}

func TestSetSearch_Debounces(t *testing.T) {
	remote := newFakeRemote(5)
	c := newController(remote, model.ViewDefault, 20)
	defer c.Close()

	c.SetSearch("a")
	c.SetSearch("ab")
	c.SetSearch("abc")

	poll.WaitOn(t, func(poll.LogT) poll.Result {
		if len(remote.listCalls()) >= 1 && c.Snapshot().State == listctl.Idle {
			return poll.Success()
		}
		return poll.Continue("waiting for debounced fetch")
	}, poll.WithTimeout(time.Second))
	time.Sleep(100 * time.Millisecond)

	calls := remote.listCalls()
	assert.Assert(t, is.Len(calls, 1))
	assert.Equal(t, calls[0].Params.Query, "abc")
	assert.Equal(t, c.Query(), "abc")
}

func TestSetSearch_EmptyFiresImmediately(t *testing.T) {
	remote := newFakeRemote(5)
	c := listctl.New(listctl.Params{Remote: remote, View: model.ViewDefault, Debounce: time.Hour})
	defer c.Close()

	c.SetSearch("   ")
	poll.WaitOn(t, func(poll.LogT) poll.Result {
		if len(remote.listCalls()) == 1 {
			return poll.Success()
		}
		return poll.Continue("waiting for fetch")
	}, poll.WithTimeout(time.Second))
	assert.Equal(t, remote.listCalls()[0].Params.Query, "")
}

func TestClose_StopsPendingSearch(t *testing.T) {
	remote := newFakeRemote(5)
	c := newController(remote, model.ViewDefault, 20)

	c.SetSearch("go")
	c.Close()
	time.Sleep(80 * time.Millisecond)

	assert.Equal(t, len(remote.listCalls()), 0)
	assert.Assert(t, errors.Is(c.Refresh(context.Background()), context.Canceled))
}

func TestOnChange_ReportsTransitions(t *testing.T) {
	remote := newFakeRemote(3)
	var mu sync.Mutex
	var states []listctl.State
	c := listctl.New(listctl.Params{
		Remote: remote,
		View:   model.ViewDefault,
		OnChange: func(s listctl.Snapshot) {
			mu.Lock()
			states = append(states, s.State)
			mu.Unlock()
		},
	})
	defer c.Close()

	assert.NilError(t, c.Refresh(context.Background()))
	mu.Lock()
	defer mu.Unlock()
	assert.DeepEqual(t, states, []listctl.State{listctl.Loading, listctl.Idle})
}
