package linkding

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/nikbrunner/lnk/internal/model"
)

// ErrNoTag is returned when a by-tag list is requested without a tag.
var ErrNoTag = errors.New("linkding: by-tag view requires a tag name")

const untaggedQuery = "!untagged"

// ComposeQuery builds the server search expression for a view.
//
//	by-tag:   "#" + tag [+ " " + query]
//	untagged: "!untagged" [+ " " + query]
//	others:   query as typed
func ComposeQuery(view model.View, tagName, query string) string {
	query = strings.TrimSpace(query)
	var prefix string
	switch view {
	case model.ViewByTag:
		prefix = "#" + strings.TrimPrefix(strings.TrimSpace(tagName), "#")
	case model.ViewUntagged:
		prefix = untaggedQuery
	default:
		return query
	}
	if query == "" {
		return prefix
	}
	return prefix + " " + query
}

// listRequest maps a view to its endpoint path and query parameters.
func listRequest(view model.View, p model.ListParams) (string, url.Values, error) {
	if view == model.ViewByTag && strings.TrimSpace(p.TagName) == "" {
		return "", nil, ErrNoTag
	}

	path := "/api/bookmarks/"
	q := url.Values{}
	switch view {
	case model.ViewArchive:
		path = "/api/bookmarks/archived/"
	case model.ViewUnread:
		q.Set("unread", "yes")
	case model.ViewShared:
		q.Set("shared", "yes")
	}

	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Offset > 0 {
		q.Set("offset", strconv.Itoa(p.Offset))
	}
	if search := ComposeQuery(view, p.TagName, p.Query); search != "" {
		q.Set("q", search)
	}
	return path, q, nil
}
