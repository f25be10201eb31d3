package model

// ListParams narrows a list request.
type ListParams struct {
	TagName string // required for ViewByTag
	Query   string // user search text
	Limit   int
	Offset  int
}

// Page is one fetched batch of bookmarks.
// len(Items) <= Limit; a short page means nothing follows it.
type Page struct {
	Items  []Bookmark
	Total  int
	Limit  int
	Offset int
}

// HasMore reports whether another page may follow this one.
func (p *Page) HasMore() bool {
	if p == nil || p.Limit <= 0 {
		return false
	}
	return len(p.Items) == p.Limit
}

// Next returns the offset of the page after this one.
func (p *Page) Next() int {
	if p == nil {
		return 0
	}
	return p.Offset + len(p.Items)
}

// Clone returns a deep enough copy for handing out of a shared cache.
func (p *Page) Clone() *Page {
	if p == nil {
		return nil
	}
	c := *p
	c.Items = make([]Bookmark, len(p.Items))
	copy(c.Items, p.Items)
	return &c
}

// IndexOf returns the position of the bookmark with the given ID, or -1.
func IndexOf(items []Bookmark, id int) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}
