package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/nikbrunner/lnk/internal/model"
	"github.com/nikbrunner/lnk/internal/search"
)

// viewKeys maps the number keys to views. "6" opens the tag browser.
var viewKeys = map[string]model.View{
	"1": model.ViewDefault,
	"2": model.ViewArchive,
	"3": model.ViewUnread,
	"4": model.ViewUntagged,
	"5": model.ViewShared,
	"6": model.ViewByTag,
}

// handleKey routes a key press to the handler of the current mode.
func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return a.quit()
	}

	switch a.mode {
	case ModeLogin:
		return a.handleLoginKey(msg)
	case ModeSearch:
		return a.handleSearchKey(msg)
	case ModeActions:
		return a.handleActionsKey(msg)
	case ModeConfirmDelete:
		return a.handleConfirmKey(msg)
	case ModeAdd, ModeEdit:
		return a.handleFormKey(msg)
	case ModeTags:
		return a.handleTagsKey(msg)
	case ModeProfile:
		if key.Matches(msg, a.keys.Back, a.keys.Quit, a.keys.Profile) {
			a.mode = ModeNormal
		}
		return a, nil
	case ModeHelp:
		switch {
		case key.Matches(msg, a.keys.Quit):
			return a.quit()
		case key.Matches(msg, a.keys.Back, a.keys.Help):
			a.mode = a.prevMode
		}
		return a, nil
	default:
		return a.handleNormalKey(msg)
	}
}

func (a App) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a.clearMessage()

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a.quit()

	case key.Matches(msg, a.keys.Down):
		return a, a.moveCursor(1)

	case key.Matches(msg, a.keys.Up):
		return a, a.moveCursor(-1)

	case key.Matches(msg, a.keys.Top):
		a.cursor = 0
		return a, nil

	case key.Matches(msg, a.keys.Bottom):
		return a, a.moveCursor(len(a.items()))

	case key.Matches(msg, a.keys.Views):
		view := viewKeys[msg.String()]
		if view == model.ViewByTag {
			return a, a.openTags()
		}
		return a, a.switchView(view, "")

	case key.Matches(msg, a.keys.Tags):
		return a, a.openTags()

	case key.Matches(msg, a.keys.Search):
		if a.list == nil {
			return a, nil
		}
		a.mode = ModeSearch
		a.searchInput.SetValue(a.list.Query())
		a.searchInput.CursorEnd()
		return a, a.searchInput.Focus()

	case key.Matches(msg, a.keys.Refresh):
		if a.list == nil {
			return a, nil
		}
		return a, refreshCmd(a.ctx, a.list)

	case key.Matches(msg, a.keys.Actions):
		b, ok := a.current()
		if ok && a.list.Focus(b.ID) {
			a.mode = ModeActions
		}
		return a, nil

	case key.Matches(msg, a.keys.Add):
		return a, a.openAddForm()

	case key.Matches(msg, a.keys.Profile):
		return a, a.openProfile()

	case key.Matches(msg, a.keys.Logout):
		return a, logoutCmd(a.session)

	case key.Matches(msg, a.keys.Help):
		a.prevMode = a.mode
		a.mode = ModeHelp
		return a, nil

	case key.Matches(msg, a.keys.Back):
		if a.list != nil && a.list.Query() != "" {
			a.searchInput.Reset()
			a.list.SetSearch("")
			a.cursor = 0
		}
		return a, nil
	}

	if b, ok := a.current(); ok {
		if cmd, handled := a.applyRowKey(msg, b); handled {
			return a, cmd
		}
	}
	return a, nil
}

// applyRowKey runs a row action on b. Shared by the list and the action panel.
func (a *App) applyRowKey(msg tea.KeyMsg, b model.Bookmark) (tea.Cmd, bool) {
	lookups := a.session.Lookups()

	switch {
	case key.Matches(msg, a.keys.Archive):
		return archiveCmd(a.ctx, a.list, lookups, b), true

	case key.Matches(msg, a.keys.Delete):
		a.confirm = ConfirmState{ID: b.ID, Title: b.DisplayTitle()}
		a.mode = ModeConfirmDelete
		return nil, true

	case key.Matches(msg, a.keys.ToggleUnread):
		unread := !b.Unread
		verb := "Marked read"
		if unread {
			verb = "Marked unread"
		}
		return updateCmd(a.ctx, a.list, lookups, b.ID, model.BookmarkPatch{Unread: &unread}, verb, b.DisplayTitle()), true

	case key.Matches(msg, a.keys.ToggleShared):
		shared := !b.Shared
		verb := "Unshared"
		if shared {
			verb = "Shared"
		}
		return updateCmd(a.ctx, a.list, lookups, b.ID, model.BookmarkPatch{Shared: &shared}, verb, b.DisplayTitle()), true

	case key.Matches(msg, a.keys.Edit):
		a.openEditForm(b)
		return nil, true

	case key.Matches(msg, a.keys.Open):
		if err := a.openURL(b.URL); err != nil {
			a.setMessage("Could not open browser: "+err.Error(), MessageError)
		} else {
			a.setMessage("Opened "+b.URL, MessageInfo)
		}
		return nil, true

	case key.Matches(msg, a.keys.YankURL):
		if err := a.writeClipboard(b.URL); err != nil {
			a.setMessage("Clipboard unavailable: "+err.Error(), MessageError)
		} else {
			a.setMessage("Copied "+b.URL, MessageSuccess)
		}
		return nil, true
	}
	return nil, false
}

func (a App) handleActionsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Back, a.keys.Actions):
		a.list.Blur()
		a.mode = ModeNormal
		return a, nil
	case key.Matches(msg, a.keys.Quit):
		return a.quit()
	case key.Matches(msg, a.keys.Up, a.keys.Down):
		a.list.Blur()
		a.mode = ModeNormal
		return a.handleNormalKey(msg)
	}

	b, ok := a.list.Item(a.list.Focused())
	if !ok {
		// The row left the list underneath the panel.
		a.list.Blur()
		a.mode = ModeNormal
		return a, nil
	}
	cmd, handled := a.applyRowKey(msg, b)
	if !handled {
		return a, nil
	}
	a.list.Blur()
	if a.mode == ModeActions {
		a.mode = ModeNormal
	}
	return a, cmd
}

func (a App) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Confirm):
		a.mode = ModeNormal
		c := a.confirm
		a.confirm = ConfirmState{}
		return a, deleteCmd(a.ctx, a.list, a.session.Lookups(), c.ID, c.Title)
	case key.Matches(msg, a.keys.Cancel):
		a.mode = ModeNormal
		a.confirm = ConfirmState{}
	}
	return a, nil
}

func (a App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		a.mode = ModeNormal
		a.searchInput.Blur()
		return a, nil
	case tea.KeyEsc:
		a.mode = ModeNormal
		a.searchInput.Blur()
		a.searchInput.Reset()
		a.list.SetSearch("")
		a.cursor = 0
		return a, nil
	}

	before := a.searchInput.Value()
	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	if v := a.searchInput.Value(); v != before {
		a.list.SetSearch(v)
		a.cursor = 0
	}
	return a, cmd
}

func (a App) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.login.Busy {
		return a, nil
	}

	switch msg.Type {
	case tea.KeyEsc:
		return a.quit()
	case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
		a.login.SetFocus(1 - a.login.Focus)
		return a, nil
	case tea.KeyEnter:
		if a.login.Focus == 0 {
			a.login.SetFocus(1)
			return a, nil
		}
		baseURL := strings.TrimSpace(a.login.URLInput.Value())
		token := strings.TrimSpace(a.login.TokenInput.Value())
		if baseURL == "" || token == "" {
			a.login.Err = errMissingCredentials
			return a, nil
		}
		a.login.Busy = true
		a.login.Err = nil
		return a, loginCmd(a.ctx, a.session, baseURL, token)
	}

	var cmd tea.Cmd
	if a.login.Focus == 0 {
		a.login.URLInput, cmd = a.login.URLInput.Update(msg)
	} else {
		a.login.TokenInput, cmd = a.login.TokenInput.Update(msg)
	}
	return a, cmd
}

func (a App) handleTagsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.mode = ModeNormal
		return a, nil
	case tea.KeyEnter:
		tag := a.tags.Selected()
		if tag == "" {
			return a, a.createTag()
		}
		a.mode = ModeNormal
		return a, a.switchView(model.ViewByTag, tag)
	case tea.KeyUp, tea.KeyCtrlP:
		if a.tags.Cursor > 0 {
			a.tags.Cursor--
		}
		return a, nil
	case tea.KeyDown, tea.KeyCtrlN:
		if a.tags.Cursor < len(a.tags.Results)-1 {
			a.tags.Cursor++
		}
		return a, nil
	}

	before := a.tags.Filter.Value()
	var cmd tea.Cmd
	a.tags.Filter, cmd = a.tags.Filter.Update(msg)
	if a.tags.Filter.Value() != before {
		a.filterTags()
	}
	return a, cmd
}

// openTags shows the tag browser and fetches a fresh tag list.
func (a *App) openTags() tea.Cmd {
	remote, err := a.session.Remote()
	if err != nil {
		a.toLogin()
		return nil
	}
	a.tags = NewTagBrowserState(a.layoutConfig)
	a.tags.Loading = a.allTags == nil
	a.filterTags()
	a.mode = ModeTags
	return loadTagsCmd(a.ctx, remote)
}

func (a *App) reloadTags() tea.Cmd {
	remote, err := a.session.Remote()
	if err != nil {
		return nil
	}
	return loadTagsCmd(a.ctx, remote)
}

// createTag creates the tag typed into the filter when no tag matches it.
func (a *App) createTag() tea.Cmd {
	name := a.tags.NewTagName()
	if name == "" || a.tags.Loading || a.tags.Creating {
		return nil
	}
	remote, err := a.session.Remote()
	if err != nil {
		a.toLogin()
		return nil
	}
	a.tags.Creating = true
	return createTagCmd(a.ctx, remote, name)
}

func (a *App) filterTags() {
	a.tags.Results = search.FilterTags(a.allTags, a.tags.Filter.Value())
	if a.tags.Cursor >= len(a.tags.Results) {
		a.tags.Cursor = max(len(a.tags.Results)-1, 0)
	}
}

func (a *App) openProfile() tea.Cmd {
	remote, err := a.session.Remote()
	if err != nil {
		a.toLogin()
		return nil
	}
	a.profile = ProfileState{Loading: true}
	a.mode = ModeProfile
	return loadProfileCmd(a.ctx, remote)
}

// updateFocusedInput forwards non-key messages such as cursor blinks.
func (a App) updateFocusedInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.mode {
	case ModeSearch:
		a.searchInput, cmd = a.searchInput.Update(msg)
	case ModeAdd, ModeEdit:
		f := a.form.Focus
		a.form.Inputs[f], cmd = a.form.Inputs[f].Update(msg)
	case ModeTags:
		a.tags.Filter, cmd = a.tags.Filter.Update(msg)
	case ModeLogin:
		if a.login.Focus == 0 {
			a.login.URLInput, cmd = a.login.URLInput.Update(msg)
		} else {
			a.login.TokenInput, cmd = a.login.TokenInput.Update(msg)
		}
	}
	return a, cmd
}
