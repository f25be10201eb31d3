package tui

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/nikbrunner/lnk/internal/linkding"
	"github.com/nikbrunner/lnk/internal/model"
	"github.com/nikbrunner/lnk/internal/search"
)

var (
	errMissingCredentials = errors.New("server URL and API token are required")
	errMissingURL         = errors.New("URL is required")
)

// openAddForm shows an empty add form, prefilled with a URL from the
// clipboard when there is one.
func (a *App) openAddForm() tea.Cmd {
	if a.list == nil {
		return nil
	}
	a.form = NewFormState(a.layoutConfig)
	a.mode = ModeAdd

	clip, err := a.readClipboard()
	if err != nil {
		a.log.WithError(err).Debug("tui: clipboard read failed")
		return nil
	}
	clip = strings.TrimSpace(clip)
	if !looksLikeURL(clip) {
		return nil
	}
	a.form.Inputs[FieldURL].SetValue(clip)
	a.form.Inputs[FieldURL].CursorEnd()
	return a.startLookup()
}

// openEditForm shows the edit form for b.
func (a *App) openEditForm(b model.Bookmark) {
	a.form = NewFormState(a.layoutConfig)
	a.form.EditID = b.ID
	a.form.Original = b
	a.form.Fill(b)
	a.form.Inputs[FieldURL].CursorEnd()
	a.mode = ModeEdit
}

func looksLikeURL(s string) bool {
	if s == "" || strings.ContainsAny(s, " \t\n") {
		return false
	}
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// startLookup checks the URL field against the server unless the same URL
// was checked already.
func (a *App) startLookup() tea.Cmd {
	if a.mode != ModeAdd {
		return nil
	}
	url := model.NormalizeURL(a.form.Value(FieldURL))
	if url == "" || url == a.form.LookupURL {
		return nil
	}
	remote, err := a.session.Remote()
	if err != nil {
		return nil
	}
	a.form.LookupURL = url
	a.form.Lookup = nil
	a.form.LookupErr = nil
	a.form.Checking = true
	return lookupCmd(a.ctx, a.session.Lookups(), remote, url)
}

// applyLookup prefills the add form from a lookup answer. An existing
// bookmark turns the form into an edit of that bookmark.
func (a *App) applyLookup(msg lookupDoneMsg) {
	if a.mode != ModeAdd || msg.url != a.form.LookupURL {
		return
	}
	a.form.Checking = false
	if msg.err != nil {
		a.form.LookupErr = msg.err
		return
	}
	a.form.Lookup = msg.result
	if msg.result == nil {
		return
	}

	if msg.result.Exists() {
		b := *msg.result.Bookmark
		focus := a.form.Focus
		a.form.EditID = b.ID
		a.form.Original = b
		a.form.Fill(b)
		a.form.SetFocus(focus)
		a.mode = ModeEdit
		a.setMessage("Already bookmarked, editing it instead", MessageWarning)
		return
	}

	if meta := msg.result.Metadata; meta != nil {
		if a.form.Value(FieldTitle) == "" {
			a.form.Inputs[FieldTitle].SetValue(meta.Title)
		}
		if a.form.Value(FieldDescription) == "" {
			a.form.Inputs[FieldDescription].SetValue(meta.Description)
		}
	}
	if a.form.Value(FieldTags) == "" && len(msg.result.SuggestedTags) > 0 {
		a.form.Inputs[FieldTags].SetValue(joinTags(msg.result.SuggestedTags))
	}
}

func (a App) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.form.Saving {
		return a, nil
	}
	onTags := a.form.Focus == FieldTags && len(a.form.Suggestions) > 0

	switch {
	case key.Matches(msg, a.keys.Back):
		a.mode = ModeNormal
		return a, nil

	case onTags && (msg.Type == tea.KeyUp || msg.Type == tea.KeyDown):
		n := len(a.form.Suggestions)
		if msg.Type == tea.KeyDown {
			a.form.SuggestionIdx = (a.form.SuggestionIdx + 1) % n
		} else {
			a.form.SuggestionIdx = (a.form.SuggestionIdx - 1 + n) % n
		}
		return a, nil

	case onTags && msg.Type == tea.KeyTab:
		a.acceptSuggestion(max(a.form.SuggestionIdx, 0))
		return a, nil

	case onTags && msg.Type == tea.KeyEnter && a.form.SuggestionIdx >= 0:
		a.acceptSuggestion(a.form.SuggestionIdx)
		return a, nil

	case key.Matches(msg, a.keys.NextField):
		return a, a.moveFormFocus(1)

	case key.Matches(msg, a.keys.PrevField):
		return a, a.moveFormFocus(-1)

	case key.Matches(msg, a.keys.Submit):
		return a, a.submitForm()
	}

	var cmd tea.Cmd
	f := a.form.Focus
	before := a.form.Value(f)
	a.form.Inputs[f], cmd = a.form.Inputs[f].Update(msg)
	if f == FieldTags && a.form.Value(f) != before {
		return a, tea.Batch(cmd, a.suggestTags())
	}
	return a, cmd
}

// suggestTags completes the word being typed in the tags field. A loaded
// tag list is filtered locally; otherwise the server is asked once typing
// pauses.
func (a *App) suggestTags() tea.Cmd {
	value := a.form.Value(FieldTags)
	a.form.SuggestionIdx = -1
	if a.allTags != nil {
		a.form.TagQuery = ""
		a.form.Suggestions = search.CompleteTag(a.allTags, value, a.layoutConfig.Modal.SuggestionsMax)
		return nil
	}

	word, _ := search.TagWord(value)
	a.form.TagQuery = word
	if word == "" {
		a.form.Suggestions = nil
		return nil
	}
	return tea.Tick(a.debounce, func(time.Time) tea.Msg {
		return tagSearchDueMsg{query: word}
	})
}

// tagSearchDue asks the server for completions if query is still the word
// being typed.
func (a *App) tagSearchDue(msg tagSearchDueMsg) tea.Cmd {
	if (a.mode != ModeAdd && a.mode != ModeEdit) || msg.query != a.form.TagQuery {
		return nil
	}
	remote, err := a.session.Remote()
	if err != nil {
		return nil
	}
	return searchTagsCmd(a.ctx, remote, msg.query)
}

// applyTagSuggestions shows server completions that still match the input.
func (a *App) applyTagSuggestions(msg tagSuggestionsMsg) {
	if (a.mode != ModeAdd && a.mode != ModeEdit) || msg.query != a.form.TagQuery {
		return
	}
	if msg.err != nil {
		a.log.WithError(msg.err).Debug("tui: tag completion failed")
		return
	}
	names := make([]string, len(msg.tags))
	for i, t := range msg.tags {
		names[i] = t.Name
	}
	a.form.Suggestions = search.DropUsedTags(names, a.form.Value(FieldTags), a.layoutConfig.Modal.SuggestionsMax)
	a.form.SuggestionIdx = -1
}

// moveFormFocus changes field and starts a lookup when leaving the URL.
func (a *App) moveFormFocus(delta int) tea.Cmd {
	leaving := a.form.Focus
	a.form.SetFocus(a.form.Focus + delta)
	if leaving == FieldURL {
		return a.startLookup()
	}
	return nil
}

// acceptSuggestion replaces the word being typed with suggestion i.
func (a *App) acceptSuggestion(i int) {
	if i < 0 || i >= len(a.form.Suggestions) {
		return
	}
	value := a.form.Value(FieldTags)
	cut := strings.LastIndexAny(value, " ,") + 1
	a.form.Inputs[FieldTags].SetValue(value[:cut] + a.form.Suggestions[i] + " ")
	a.form.Inputs[FieldTags].CursorEnd()
	a.form.Suggestions = nil
	a.form.SuggestionIdx = -1
	a.form.TagQuery = ""
}

func (a *App) submitForm() tea.Cmd {
	lookups := a.session.Lookups()

	if a.mode == ModeEdit {
		patch := a.form.Patch()
		if patch.URL != nil && *patch.URL == "" {
			a.setMessage(errMissingURL.Error(), MessageError)
			return nil
		}
		if patch.IsEmpty() {
			a.mode = ModeNormal
			a.setMessage("Nothing changed", MessageInfo)
			return nil
		}
		a.form.Saving = true
		title := patch.Apply(a.form.Original).DisplayTitle()
		return updateCmd(a.ctx, a.list, lookups, a.form.EditID, patch, "Saved", title)
	}

	draft := a.form.Draft()
	if draft.URL == "" {
		a.setMessage(errMissingURL.Error(), MessageError)
		return nil
	}
	a.form.Saving = true
	return createCmd(a.ctx, a.list, lookups, draft)
}

// handleWriteDone reports a finished write and closes the form it came from.
func (a App) handleWriteDone(msg writeDoneMsg) (tea.Model, tea.Cmd) {
	inForm := (a.mode == ModeAdd || a.mode == ModeEdit) && a.form.Saving

	if msg.err != nil {
		text := msg.verb + " failed: " + msg.err.Error()
		if linkding.IsAuth(msg.err) {
			text = "The server rejected the token; press L to log in again"
		}
		a.setMessage(text, MessageError)
		if inForm {
			a.form.Saving = false
		}
		a.clampCursor()
		return a, nil
	}

	a.setMessage(describe(msg.verb, msg.title), MessageSuccess)
	if inForm {
		a.mode = ModeNormal
		a.form = FormState{}
		if msg.verb == "Added" {
			a.cursor = 0
		}
	}
	a.clampCursor()
	return a, nil
}
