// Package search ranks bookmarks and tags locally with fuzzy matching.
// Server-side search narrows the set; this orders what came back.
package search

import (
	"strings"

	"github.com/nikbrunner/lnk/internal/model"
	"github.com/sahilm/fuzzy"
)

// SearchResult represents a fuzzy search match.
type SearchResult struct {
	Bookmark       *model.Bookmark
	MatchedIndexes []int
	Score          int
}

// TagResult is a tag matched against a filter.
type TagResult struct {
	Tag            model.Tag
	MatchedIndexes []int
	Score          int
}

// bookmarkTitles implements fuzzy.Source over display titles.
type bookmarkTitles []*model.Bookmark

func (bt bookmarkTitles) String(i int) string {
	return bt[i].DisplayTitle()
}

func (bt bookmarkTitles) Len() int {
	return len(bt)
}

type tagNames []model.Tag

func (tn tagNames) String(i int) string { return tn[i].Name }
func (tn tagNames) Len() int            { return len(tn) }

// FuzzySearchBookmarks searches bookmarks by display title using fuzzy
// matching. Returns results sorted by match score (best first).
func FuzzySearchBookmarks(items []model.Bookmark, query string) []SearchResult {
	if query == "" {
		return nil
	}

	bookmarks := make(bookmarkTitles, len(items))
	for i := range items {
		bookmarks[i] = &items[i]
	}

	matches := fuzzy.FindFrom(query, bookmarks)

	results := make([]SearchResult, len(matches))
	for i, m := range matches {
		results[i] = SearchResult{
			Bookmark:       bookmarks[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}

	return results
}

// Rank orders server search results for the picker. Fuzzy title matches
// come first; the rest keep server order, since the server also matched
// on descriptions, notes and tags.
func Rank(items []model.Bookmark, query string) []SearchResult {
	ranked := FuzzySearchBookmarks(items, query)

	seen := make(map[int]bool, len(ranked))
	for _, r := range ranked {
		seen[r.Bookmark.ID] = true
	}
	for i := range items {
		if !seen[items[i].ID] {
			ranked = append(ranked, SearchResult{Bookmark: &items[i]})
		}
	}
	return ranked
}

// FilterTags returns tags whose names fuzzy-match the filter, best first.
// An empty filter returns every tag in its original order.
func FilterTags(tags []model.Tag, filter string) []TagResult {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		results := make([]TagResult, len(tags))
		for i, t := range tags {
			results[i] = TagResult{Tag: t}
		}
		return results
	}

	matches := fuzzy.FindFrom(filter, tagNames(tags))
	results := make([]TagResult, len(matches))
	for i, m := range matches {
		results[i] = TagResult{
			Tag:            tags[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}
	return results
}

// TagWord returns the partial tag at the end of a tag input and the tags
// entered before it. The word is "" when the input ends in a separator.
func TagWord(input string) (string, []string) {
	words := strings.Fields(strings.ReplaceAll(input, ",", " "))
	if len(words) == 0 || strings.HasSuffix(input, " ") || strings.HasSuffix(input, ",") {
		return "", words
	}
	return words[len(words)-1], words[:len(words)-1]
}

// CompleteTag suggests tag names for the last word of a tag input.
// Tags already present in the input are skipped.
func CompleteTag(tags []model.Tag, input string, max int) []string {
	prefix, _ := TagWord(input)
	if prefix == "" {
		return nil
	}
	results := FilterTags(tags, prefix)
	names := make([]string, len(results))
	for i, r := range results {
		names[i] = r.Tag.Name
	}
	return DropUsedTags(names, input, max)
}

// DropUsedTags keeps the candidate names that are neither entered in input
// already nor identical to the word being typed, up to max.
func DropUsedTags(names []string, input string, max int) []string {
	prefix, entered := TagWord(input)
	used := make(map[string]bool, len(entered))
	for _, w := range entered {
		used[strings.ToLower(w)] = true
	}

	var out []string
	for _, name := range names {
		if used[strings.ToLower(name)] || name == prefix {
			continue
		}
		out = append(out, name)
		if max > 0 && len(out) == max {
			break
		}
	}
	return out
}
