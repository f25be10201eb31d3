package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nikbrunner/lnk/internal/cache"
	"github.com/nikbrunner/lnk/internal/listctl"
	"github.com/nikbrunner/lnk/internal/model"
)

// listChangedMsg means the active list published a new state.
type listChangedMsg struct{}

// loadDoneMsg reports the end of a Refresh or LoadMore.
type loadDoneMsg struct {
	list *listctl.Controller
	err  error
}

// writeDoneMsg reports a confirmed (or failed) write.
type writeDoneMsg struct {
	verb     string // "Archived", "Deleted", ...
	title    string
	bookmark *model.Bookmark
	err      error
}

type lookupDoneMsg struct {
	url    string
	result *model.LookupResult
	err    error
}

type tagsLoadedMsg struct {
	tags []model.Tag
	err  error
}

// tagSearchDueMsg fires when typing in the tags field has paused.
type tagSearchDueMsg struct{ query string }

// tagSuggestionsMsg carries server completions for query.
type tagSuggestionsMsg struct {
	query string
	tags  []model.Tag
	err   error
}

type tagCreatedMsg struct {
	tag *model.Tag
	err error
}

type profileLoadedMsg struct {
	profile *model.UserProfile
	err     error
}

type loginDoneMsg struct{ err error }

type logoutDoneMsg struct{ err error }

type warmDoneMsg struct{ err error }

// waitForChange blocks until the active list signals a change.
func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return listChangedMsg{}
	}
}

func refreshCmd(ctx context.Context, list *listctl.Controller) tea.Cmd {
	return func() tea.Msg {
		return loadDoneMsg{list: list, err: list.Refresh(ctx)}
	}
}

func loadMoreCmd(ctx context.Context, list *listctl.Controller) tea.Cmd {
	return func() tea.Msg {
		return loadDoneMsg{list: list, err: list.LoadMore(ctx)}
	}
}

func archiveCmd(ctx context.Context, list *listctl.Controller, lookups *cache.Lookups, b model.Bookmark) tea.Cmd {
	return func() tea.Msg {
		archived := !b.Archived
		verb := "Archived"
		if !archived {
			verb = "Unarchived"
		}
		err := list.Archive(ctx, b.ID, archived)
		if err == nil {
			lookups.Purge()
		}
		return writeDoneMsg{verb: verb, title: b.DisplayTitle(), err: err}
	}
}

func deleteCmd(ctx context.Context, list *listctl.Controller, lookups *cache.Lookups, id int, title string) tea.Cmd {
	return func() tea.Msg {
		err := list.Delete(ctx, id)
		if err == nil {
			lookups.Purge()
		}
		return writeDoneMsg{verb: "Deleted", title: title, err: err}
	}
}

func updateCmd(ctx context.Context, list *listctl.Controller, lookups *cache.Lookups, id int, patch model.BookmarkPatch, verb, title string) tea.Cmd {
	return func() tea.Msg {
		updated, err := list.Update(ctx, id, patch)
		if err == nil {
			lookups.Purge()
		}
		return writeDoneMsg{verb: verb, title: title, bookmark: updated, err: err}
	}
}

func createCmd(ctx context.Context, list *listctl.Controller, lookups *cache.Lookups, d model.BookmarkDraft) tea.Cmd {
	return func() tea.Msg {
		created, err := list.Create(ctx, d)
		title := d.URL
		if err == nil {
			lookups.Purge()
			title = created.DisplayTitle()
		}
		return writeDoneMsg{verb: "Added", title: title, bookmark: created, err: err}
	}
}

func lookupCmd(ctx context.Context, lookups *cache.Lookups, checker cache.Checker, url string) tea.Cmd {
	return func() tea.Msg {
		res, err := lookups.Check(ctx, checker, url)
		return lookupDoneMsg{url: url, result: res, err: err}
	}
}

func loadTagsCmd(ctx context.Context, remote Remote) tea.Cmd {
	return func() tea.Msg {
		tags, err := remote.AllTags(ctx)
		return tagsLoadedMsg{tags: tags, err: err}
	}
}

func searchTagsCmd(ctx context.Context, remote Remote, query string) tea.Cmd {
	return func() tea.Msg {
		tags, err := remote.SearchTags(ctx, query)
		return tagSuggestionsMsg{query: query, tags: tags, err: err}
	}
}

func createTagCmd(ctx context.Context, remote Remote, name string) tea.Cmd {
	return func() tea.Msg {
		tag, err := remote.CreateTag(ctx, name)
		return tagCreatedMsg{tag: tag, err: err}
	}
}

func loadProfileCmd(ctx context.Context, remote Remote) tea.Cmd {
	return func() tea.Msg {
		p, err := remote.GetUserProfile(ctx)
		return profileLoadedMsg{profile: p, err: err}
	}
}

func loginCmd(ctx context.Context, s Session, baseURL, token string) tea.Cmd {
	return func() tea.Msg {
		return loginDoneMsg{err: s.Login(ctx, baseURL, token)}
	}
}

func logoutCmd(s Session) tea.Cmd {
	return func() tea.Msg {
		return logoutDoneMsg{err: s.Logout()}
	}
}

func warmCmd(ctx context.Context, s Session) tea.Cmd {
	return func() tea.Msg {
		return warmDoneMsg{err: s.Warm(ctx)}
	}
}

func describe(verb, title string) string {
	return fmt.Sprintf("%s %q", verb, title)
}
