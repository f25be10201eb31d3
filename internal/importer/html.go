package importer

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nikbrunner/lnk/internal/model"
	"golang.org/x/net/html"
)

// Entry is one bookmark read from an export file.
type Entry struct {
	Draft   model.BookmarkDraft
	AddedAt time.Time
	// Folders is the folder path the bookmark was found in, outermost first.
	Folders []string
}

// ParseHTMLBookmarks parses Netscape bookmark HTML. linkding has no folders,
// so the folder path of each bookmark is turned into tags alongside any
// TAGS attribute.
func ParseHTMLBookmarks(r io.Reader) ([]Entry, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var entries []Entry

	// Track current folder stack for hierarchy
	var folderStack []string
	var pendingFolder string // folder waiting to be pushed on next DL
	// lastEntry is the bookmark a following DD describes, -1 for none.
	lastEntry := -1

	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "h3":
				// Folder definition - get name from text content
				if name := getTextContent(n); name != "" {
					pendingFolder = name
				}
				lastEntry = -1
				return // Don't recurse into H3

			case "a":
				href := strings.TrimSpace(getAttr(n, "href"))
				if href == "" || strings.HasPrefix(strings.ToLower(href), "javascript:") {
					return
				}

				title := getTextContent(n)
				if title == href {
					// Let the server scrape a real title
					title = ""
				}

				addedAt := time.Now()
				if addDate := getAttr(n, "add_date"); addDate != "" {
					if ts, err := strconv.ParseInt(addDate, 10, 64); err == nil {
						addedAt = time.Unix(ts, 0)
					}
				}

				folders := append([]string(nil), folderStack...)
				entries = append(entries, Entry{
					Draft: model.BookmarkDraft{
						URL:    href,
						Title:  title,
						Tags:   tagsFor(folders, getAttr(n, "tags")),
						Unread: getAttr(n, "toread") == "1",
						Shared: getAttr(n, "private") == "0",
					},
					AddedAt: addedAt,
					Folders: folders,
				})
				lastEntry = len(entries) - 1
				return // Don't recurse into A

			case "dd":
				if lastEntry >= 0 && entries[lastEntry].Draft.Description == "" {
					entries[lastEntry].Draft.Description = ownText(n)
				}
				lastEntry = -1
				// Recurse: the parser may nest the next DT inside the DD

			case "dl":
				// Definition list - marks folder contents
				pushedFolder := false
				if pendingFolder != "" {
					folderStack = append(folderStack, pendingFolder)
					pendingFolder = ""
					pushedFolder = true
				}
				lastEntry = -1

				for c := n.FirstChild; c != nil; c = c.NextSibling {
					parse(c)
				}

				if pushedFolder && len(folderStack) > 0 {
					folderStack = folderStack[:len(folderStack)-1]
				}
				return // Don't recurse further, we handled children
			}
		}

		// Recurse into children
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}

	parse(doc)
	return entries, nil
}

// tagsFor merges folder-derived tags with an explicit TAGS attribute.
func tagsFor(folders []string, tagsAttr string) []string {
	parts := make([]string, 0, len(folders)+1)
	for _, f := range folders {
		if tag := FolderTag(f); tag != "" {
			parts = append(parts, tag)
		}
	}
	parts = append(parts, tagsAttr)
	return model.ParseTags(strings.Join(parts, ","))
}

// FolderTag turns a folder name into a linkding tag: lower case, with runs of
// whitespace replaced by dashes.
func FolderTag(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), "-"))
}

// ownText returns the text of n, stopping at the first nested element
// that starts a new item.
func ownText(n *html.Node) string {
	var text strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			switch strings.ToLower(c.Data) {
			case "dt", "dl", "h3", "a":
				return strings.TrimSpace(text.String())
			}
		}
		if c.Type == html.TextNode {
			text.WriteString(c.Data)
		}
	}
	return strings.TrimSpace(text.String())
}

// getTextContent returns the text content of a node.
func getTextContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}

// getAttr returns the value of an attribute, case-insensitive.
func getAttr(n *html.Node, key string) string {
	key = strings.ToLower(key)
	for _, attr := range n.Attr {
		if strings.ToLower(attr.Key) == key {
			return attr.Val
		}
	}
	return ""
}
