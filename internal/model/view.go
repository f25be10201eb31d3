package model

import "fmt"

// View names one filtered slice of the bookmark collection.
type View int

const (
	ViewDefault View = iota
	ViewArchive
	ViewUnread
	ViewUntagged
	ViewShared
	ViewByTag
)

// Views lists every view in display order.
var Views = []View{ViewDefault, ViewArchive, ViewUnread, ViewUntagged, ViewShared, ViewByTag}

// VirtualViews are the views backed by the in-memory view cache.
var VirtualViews = []View{ViewUnread, ViewUntagged, ViewShared}

var viewNames = map[View]string{
	ViewDefault:  "default",
	ViewArchive:  "archive",
	ViewUnread:   "unread",
	ViewUntagged: "untagged",
	ViewShared:   "shared",
	ViewByTag:    "bytag",
}

// String returns the view identifier.
func (v View) String() string {
	if name, ok := viewNames[v]; ok {
		return name
	}
	return fmt.Sprintf("view(%d)", int(v))
}

// IsVirtual reports whether the view is served from the view cache.
func (v View) IsVirtual() bool {
	return v == ViewUnread || v == ViewUntagged || v == ViewShared
}

// ParseView maps an identifier back to a View. "all" is accepted for default.
func ParseView(s string) (View, error) {
	if s == "all" || s == "" {
		return ViewDefault, nil
	}
	for v, name := range viewNames {
		if name == s {
			return v, nil
		}
	}
	return ViewDefault, fmt.Errorf("unknown view %q", s)
}

// Contains reports whether a bookmark with the given state belongs in the view.
// tag is only used for ViewByTag.
func (v View) Contains(b Bookmark, tag string) bool {
	switch v {
	case ViewArchive:
		return b.Archived
	case ViewUnread:
		return !b.Archived && b.Unread
	case ViewUntagged:
		return !b.Archived && len(b.Tags) == 0
	case ViewShared:
		return !b.Archived && b.Shared
	case ViewByTag:
		return !b.Archived && b.HasTag(tag)
	default:
		return !b.Archived
	}
}
