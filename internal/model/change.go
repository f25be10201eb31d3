package model

// ChangeKind classifies a confirmed write.
type ChangeKind int

const (
	ChangeCreated ChangeKind = iota
	ChangeUpdated
	ChangeDeleted
	ChangeArchived
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeCreated:
		return "created"
	case ChangeUpdated:
		return "updated"
	case ChangeDeleted:
		return "deleted"
	case ChangeArchived:
		return "archived"
	}
	return "unknown"
}

// Change describes a write the server has accepted. Caches use it to decide
// which buckets may have changed membership.
type Change struct {
	Kind     ChangeKind
	Bookmark Bookmark      // the record after the write (before it, for deletes)
	Patch    BookmarkPatch // fields sent, for ChangeUpdated
}

// Affects reports whether the change can alter the membership of view v.
func (c Change) Affects(v View) bool {
	switch c.Kind {
	case ChangeDeleted, ChangeArchived:
		return true
	case ChangeCreated:
		return v.Contains(c.Bookmark, "")
	case ChangeUpdated:
		switch v {
		case ViewUnread:
			return c.Patch.Unread != nil || c.Patch.Archived != nil
		case ViewUntagged:
			return c.Patch.Tags != nil || c.Patch.Archived != nil
		case ViewShared:
			return c.Patch.Shared != nil || c.Patch.Archived != nil
		default:
			return !c.Patch.IsEmpty()
		}
	}
	return false
}
