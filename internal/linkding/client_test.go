package linkding

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nikbrunner/lnk/internal/model"
	"github.com/sirupsen/logrus"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(baseURL, "secret", 2*time.Second)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func logrusDiscard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func requireToken(t *testing.T, r *http.Request) {
	t.Helper()
	if got := r.Header.Get("Authorization"); got != "Token secret" {
		t.Fatalf("Authorization=%q", got)
	}
}

func bookmarksBody(count int, ids ...int) string {
	results := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		results = append(results, map[string]any{
			"id":        id,
			"url":       "https://example.com/" + string(rune('a'+id%26)),
			"title":     "",
			"tag_names": []string{"reading"},
			"unread":    true,
		})
	}
	b, _ := json.Marshal(map[string]any{"count": count, "results": results})
	return string(b)
}

func seq(from, n int) []int {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = from + i
	}
	return ids
}

func TestNewClient_NormalizesBaseURL(t *testing.T) {
	c, err := NewClient("  https://links.example.com//  ", "tok", 0)
	assert.NilError(t, err)
	assert.Equal(t, c.BaseURL, "https://links.example.com")
	assert.Equal(t, c.HTTP.Timeout, defaultTimeout)

	_, err = NewClient("   ", "tok", 0)
	assert.ErrorContains(t, err, "base URL is empty")
}

func TestComposeQuery(t *testing.T) {
	tests := []struct {
		name  string
		view  model.View
		tag   string
		query string
		want  string
	}{
		{"by-tag alone", model.ViewByTag, "reading", "", "#reading"},
		{"by-tag with query", model.ViewByTag, "reading", "go", "#reading go"},
		{"by-tag strips hash", model.ViewByTag, "#reading", "", "#reading"},
		{"untagged alone", model.ViewUntagged, "", "", "!untagged"},
		{"untagged with query", model.ViewUntagged, "", "rust", "!untagged rust"},
		{"default passes query", model.ViewDefault, "", " rust ", "rust"},
		{"unread empty", model.ViewUnread, "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, ComposeQuery(tt.view, tt.tag, tt.query), tt.want)
		})
	}
}

func TestListBookmarks_ByTag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requireToken(t, r)
		assert.Equal(t, r.URL.Path, "/api/bookmarks/")
		q := r.URL.Query()
		assert.Equal(t, q.Get("q"), "#reading")
		assert.Equal(t, q.Get("limit"), "20")
		assert.Equal(t, q.Get("offset"), "")
		assert.Assert(t, strings.Contains(r.URL.RawQuery, "q=%23reading"))
		io.WriteString(w, bookmarksBody(45, seq(1, 20)...))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	page, err := c.ListBookmarks(context.Background(), model.ViewByTag, model.ListParams{TagName: "reading", Limit: 20})
	assert.NilError(t, err)
	assert.Equal(t, page.Total, 45)
	assert.Equal(t, len(page.Items), 20)
	assert.Assert(t, page.HasMore())
	assert.DeepEqual(t, page.Items[0].Tags, []string{"reading"})
}

func TestListBookmarks_ViewEndpoints(t *testing.T) {
	tests := []struct {
		view     model.View
		query    string
		wantPath string
		wantKey  string
		wantVal  string
	}{
		{model.ViewArchive, "go", "/api/bookmarks/archived/", "q", "go"},
		{model.ViewUnread, "", "/api/bookmarks/", "unread", "yes"},
		{model.ViewShared, "", "/api/bookmarks/", "shared", "yes"},
		{model.ViewUntagged, "rust", "/api/bookmarks/", "q", "!untagged rust"},
		{model.ViewDefault, "a b&c", "/api/bookmarks/", "q", "a b&c"},
	}

	for _, tt := range tests {
		t.Run(tt.view.String(), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, r.URL.Path, tt.wantPath)
				assert.Equal(t, r.URL.Query().Get(tt.wantKey), tt.wantVal)
				assert.Equal(t, r.URL.Query().Get("offset"), "100")
				io.WriteString(w, bookmarksBody(0))
			}))
			defer srv.Close()

			c := newTestClient(t, srv.URL)
			page, err := c.ListBookmarks(context.Background(), tt.view, model.ListParams{Query: tt.query, Limit: 100, Offset: 100})
			assert.NilError(t, err)
			assert.Equal(t, len(page.Items), 0)
			assert.Assert(t, !page.HasMore())
		})
	}
}

func TestListBookmarks_ByTagWithoutTag(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:1")
	_, err := c.ListBookmarks(context.Background(), model.ViewByTag, model.ListParams{Limit: 10})
	assert.Assert(t, errors.Is(err, ErrNoTag))
}

func TestListBookmarks_CommaJoinedTags(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"count":1,"results":[{"id":3,"url":"https://go.dev","tag_names":"go, docs ,,tools","date_added":"2024-05-01T10:00:00.123456Z"}]}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	page, err := c.ListBookmarks(context.Background(), model.ViewDefault, model.ListParams{Limit: 10})
	assert.NilError(t, err)
	assert.DeepEqual(t, page.Items[0].Tags, []string{"go", "docs", "tools"})
	assert.Equal(t, page.Items[0].CreatedAt.Year(), 2024)
}

func TestErrors_Taxonomy(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(t *testing.T, err error)
	}{
		{"401 is auth", http.StatusUnauthorized, func(t *testing.T, err error) {
			assert.Assert(t, IsAuth(err))
		}},
		{"403 is auth", http.StatusForbidden, func(t *testing.T, err error) {
			assert.Assert(t, IsAuth(err))
		}},
		{"400 is remote", http.StatusBadRequest, func(t *testing.T, err error) {
			var remote *RemoteError
			assert.Assert(t, errors.As(err, &remote))
			assert.Equal(t, remote.Status, 400)
			assert.Equal(t, remote.Body, `{"url":["required"]}`)
			assert.Assert(t, !remote.ServerSide())
		}},
		{"502 is remote server side", http.StatusBadGateway, func(t *testing.T, err error) {
			var remote *RemoteError
			assert.Assert(t, errors.As(err, &remote))
			assert.Assert(t, remote.ServerSide())
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(tt.status)
				io.WriteString(w, `{"url":["required"]}`)
			}))
			defer srv.Close()

			c := newTestClient(t, srv.URL)
			_, err := c.ListBookmarks(context.Background(), model.ViewDefault, model.ListParams{Limit: 10})
			assert.Assert(t, err != nil)
			tt.check(t, err)
			assert.Equal(t, calls, 1, "client must not retry")
		})
	}
}

func TestErrors_Network(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := newTestClient(t, url)
	_, err := c.ListBookmarks(context.Background(), model.ViewDefault, model.ListParams{Limit: 10})
	assert.Assert(t, IsNetwork(err), "got %v", err)
	assert.Assert(t, !IsAuth(err))
}

func TestErrors_NoToken(t *testing.T) {
	c, err := NewClient("http://127.0.0.1:1", "", time.Second)
	assert.NilError(t, err)
	_, err = c.ListBookmarks(context.Background(), model.ViewDefault, model.ListParams{Limit: 10})
	assert.Assert(t, IsAuth(err))
}

func TestDeleteBookmark(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{"204 succeeds", http.StatusNoContent, false},
		{"200 is not enough", http.StatusOK, true},
		{"404 fails", http.StatusNotFound, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, r.Method, http.MethodDelete)
				assert.Equal(t, r.URL.Path, "/api/bookmarks/7/")
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			err := newTestClient(t, srv.URL).DeleteBookmark(context.Background(), 7)
			assert.Equal(t, err != nil, tt.wantErr, "err=%v", err)
		})
	}
}

func TestSetArchived_SendsOnlyFlag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, r.Method, http.MethodPatch)
		assert.Equal(t, r.URL.Path, "/api/bookmarks/7/")
		assert.Equal(t, r.Header.Get("Content-Type"), "application/json")

		var body map[string]any
		assert.NilError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.DeepEqual(t, body, map[string]any{"is_archived": true})

		io.WriteString(w, `{"id":7,"url":"https://a.dev","title":"kept","is_archived":true,"tag_names":["x"]}`)
	}))
	defer srv.Close()

	b, err := newTestClient(t, srv.URL).SetArchived(context.Background(), 7, true)
	assert.NilError(t, err)
	assert.Assert(t, b.Archived)
	assert.Equal(t, b.Title, "kept")
}

func TestUpdateBookmark_FalseValuesAreSent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		assert.NilError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.DeepEqual(t, body, map[string]any{"unread": false, "tag_names": []any{}})
		io.WriteString(w, `{"id":9}`)
	}))
	defer srv.Close()

	unread := false
	tags := []string{}
	_, err := newTestClient(t, srv.URL).UpdateBookmark(context.Background(), 9, model.BookmarkPatch{Unread: &unread, Tags: &tags})
	assert.NilError(t, err)
}

func TestCreateBookmark(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, r.Method, http.MethodPost)
		assert.Equal(t, r.URL.Path, "/api/bookmarks/")
		var body draftJSON
		assert.NilError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, body.URL, "https://go.dev")
		assert.DeepEqual(t, body.TagNames, []string{})
		assert.Assert(t, body.Unread)

		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id":11,"url":"https://go.dev","unread":true,"tag_names":[]}`)
	}))
	defer srv.Close()

	b, err := newTestClient(t, srv.URL).CreateBookmark(context.Background(), model.BookmarkDraft{URL: "https://go.dev", Unread: true})
	assert.NilError(t, err)
	assert.Equal(t, b.ID, 11)
	assert.Assert(t, b.Tags != nil)
}

func TestLookupByURL(t *testing.T) {
	t.Run("existing bookmark", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, r.URL.Path, "/api/bookmarks/check/")
			assert.Equal(t, r.URL.Query().Get("url"), "https://go.dev/?a=1&b=2")
			io.WriteString(w, `{"bookmark":{"id":5,"url":"https://go.dev/?a=1&b=2","title":"Go","tag_names":["go"]},"metadata":{"title":"ignored"},"auto_tags":[]}`)
		}))
		defer srv.Close()

		res, err := newTestClient(t, srv.URL).LookupByURL(context.Background(), "https://go.dev/?a=1&b=2")
		assert.NilError(t, err)
		assert.Assert(t, res.Exists())
		assert.Equal(t, res.Bookmark.ID, 5)
		assert.Assert(t, res.Metadata == nil, "metadata must be dropped when the bookmark exists")
	})

	t.Run("metadata only", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"bookmark":null,"metadata":{"url":"https://rust-lang.org","title":"Rust","description":"A language"},"auto_tags":["rust"]}`)
		}))
		defer srv.Close()

		res, err := newTestClient(t, srv.URL).LookupByURL(context.Background(), "https://rust-lang.org")
		assert.NilError(t, err)
		assert.Assert(t, !res.Exists())
		assert.Equal(t, res.Metadata.Title, "Rust")
		assert.DeepEqual(t, res.SuggestedTags, []string{"rust"})
	})
}

func TestSearchTags_CapsResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, r.URL.Query().Get("limit"), "5")
		assert.Equal(t, r.URL.Query().Get("q"), "go")
		io.WriteString(w, `{"count":7,"results":[{"id":1,"name":"go"},{"id":2,"name":"golang"},{"id":3,"name":"gopher"},{"id":4,"name":"google"},{"id":5,"name":"gold"},{"id":6,"name":"goal"},{"id":7,"name":"gone"}]}`)
	}))
	defer srv.Close()

	tags, err := newTestClient(t, srv.URL).SearchTags(context.Background(), " go ")
	assert.NilError(t, err)
	assert.Assert(t, is.Len(tags, 5))
}

func TestAllTags_Pages(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, r.URL.Query().Get("limit"), "2000")
		io.WriteString(w, `{"count":2,"results":[{"id":1,"name":"go"},{"id":2,"name":"rust"}]}`)
	}))
	defer srv.Close()

	tags, err := newTestClient(t, srv.URL).AllTags(context.Background())
	assert.NilError(t, err)
	assert.Equal(t, len(tags), 2)
	assert.Equal(t, calls, 1)
}

func TestCreateTag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NilError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, body["name"], "reading")
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id":4,"name":"reading"}`)
	}))
	defer srv.Close()

	tag, err := newTestClient(t, srv.URL).CreateTag(context.Background(), " reading ")
	assert.NilError(t, err)
	assert.Equal(t, tag.Name, "reading")

	_, err = newTestClient(t, srv.URL).CreateTag(context.Background(), "  ")
	assert.ErrorContains(t, err, "tag name is empty")
}

func TestGetBookmark(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requireToken(t, r)
		if r.URL.Path != "/api/bookmarks/7/" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		io.WriteString(w, `{"id":7,"url":"https://go.dev","title":"","website_title":"The Go Programming Language",
			"is_archived":true,"tag_names":"go,lang","date_added":"2024-03-01T10:00:00Z"}`)
	}))
	defer srv.Close()
	c := newTestClient(t, srv.URL)

	b, err := c.GetBookmark(context.Background(), 7)
	assert.NilError(t, err)
	assert.Equal(t, b.ID, 7)
	assert.Equal(t, b.DisplayTitle(), "The Go Programming Language")
	assert.Assert(t, b.Archived)
	assert.DeepEqual(t, b.Tags, []string{"go", "lang"})
	assert.Equal(t, b.CreatedAt.Year(), 2024)

	_, err = c.GetBookmark(context.Background(), 8)
	var remote *RemoteError
	assert.Assert(t, errors.As(err, &remote), "got %v", err)
	assert.Equal(t, remote.Status, http.StatusNotFound)
}

func TestGetUserProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, r.URL.Path, "/api/user/profile/")
		io.WriteString(w, `{"theme":"dark","enable_sharing":true,"search_preferences":{"sort":"added_desc"}}`)
	}))
	defer srv.Close()

	p, err := newTestClient(t, srv.URL).GetUserProfile(context.Background())
	assert.NilError(t, err)
	assert.Equal(t, p.Theme, "dark")
	assert.Assert(t, p.EnableSharing)
	assert.Equal(t, p.SearchPreferences.Sort, "added_desc")
}

func TestEnableLogging_SetsRequestID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Assert(t, r.Header.Get("X-Request-ID") != "")
		io.WriteString(w, bookmarksBody(0))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	log := logrusDiscard()
	c.EnableLogging(log)
	c.EnableLogging(log) // idempotent

	_, ok := c.HTTP.Transport.(*logTransport)
	assert.Assert(t, ok)
	assert.NilError(t, c.Ping(context.Background()))
}
