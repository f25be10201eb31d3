package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/nikbrunner/lnk/internal/model"
	"github.com/nikbrunner/lnk/internal/search"
	"github.com/nikbrunner/lnk/internal/tui/layout"
)

// Mode is what the keyboard currently drives.
type Mode int

const (
	ModeLogin Mode = iota
	ModeNormal
	ModeSearch        // typing in the search line
	ModeActions       // action panel of one row is open
	ModeConfirmDelete // waiting for y/n
	ModeAdd
	ModeEdit
	ModeTags // tag browser
	ModeProfile
	ModeHelp
)

// MessageType styles the status message.
type MessageType int

const (
	MessageInfo MessageType = iota
	MessageSuccess
	MessageWarning
	MessageError
)

// LoginState holds the server URL and API token inputs.
type LoginState struct {
	URLInput   textinput.Model
	TokenInput textinput.Model
	Focus      int // 0 = URL, 1 = token
	Busy       bool
	Err        error
}

// NewLoginState creates a LoginState with the URL input focused.
func NewLoginState(cfg layout.LayoutConfig) LoginState {
	urlInput := textinput.New()
	urlInput.Placeholder = "https://links.example.com"
	urlInput.CharLimit = cfg.Input.URLCharLimit
	urlInput.Width = cfg.Input.StandardWidth
	urlInput.Focus()

	tokenInput := textinput.New()
	tokenInput.Placeholder = "API token (Settings → Integrations)"
	tokenInput.CharLimit = cfg.Input.TokenCharLimit
	tokenInput.Width = cfg.Input.StandardWidth
	tokenInput.EchoMode = textinput.EchoPassword
	tokenInput.EchoCharacter = '•'

	return LoginState{URLInput: urlInput, TokenInput: tokenInput}
}

// SetFocus moves the cursor between the two inputs.
func (l *LoginState) SetFocus(i int) {
	l.Focus = i
	if i == 0 {
		l.URLInput.Focus()
		l.TokenInput.Blur()
		return
	}
	l.URLInput.Blur()
	l.TokenInput.Focus()
}

// Form field order.
const (
	FieldURL = iota
	FieldTitle
	FieldDescription
	FieldTags
	FieldNotes
	fieldCount
)

// FormState backs the add and edit bookmark forms.
type FormState struct {
	Inputs [fieldCount]textinput.Model
	Focus  int

	// EditID is the bookmark being edited, 0 when adding.
	EditID int
	// Original is the bookmark as it was when the edit started.
	Original model.Bookmark

	// LookupURL is the normalized URL the last lookup was made for.
	LookupURL string
	Lookup    *model.LookupResult
	LookupErr error
	Checking  bool

	Suggestions   []string
	SuggestionIdx int // -1 = none selected
	// TagQuery is the word the last server completion was asked for.
	TagQuery string
	Saving   bool
}

// NewFormState creates an empty form.
func NewFormState(cfg layout.LayoutConfig) FormState {
	var f FormState
	specs := [fieldCount]struct {
		placeholder string
		limit       int
	}{
		FieldURL:         {"https://...", cfg.Input.URLCharLimit},
		FieldTitle:       {"Title (scraped when empty)", cfg.Input.TitleCharLimit},
		FieldDescription: {"Description", cfg.Input.TitleCharLimit},
		FieldTags:        {"tag1 tag2", cfg.Input.TagsCharLimit},
		FieldNotes:       {"Notes", cfg.Input.NotesCharLimit},
	}
	for i, s := range specs {
		in := textinput.New()
		in.Placeholder = s.placeholder
		in.CharLimit = s.limit
		in.Width = cfg.Input.StandardWidth
		f.Inputs[i] = in
	}
	f.SuggestionIdx = -1
	f.SetFocus(FieldURL)
	return f
}

// SetFocus focuses one input and blurs the rest.
func (f *FormState) SetFocus(field int) {
	f.Focus = (field + fieldCount) % fieldCount
	for i := range f.Inputs {
		if i == f.Focus {
			f.Inputs[i].Focus()
		} else {
			f.Inputs[i].Blur()
		}
	}
	f.Suggestions = nil
	f.SuggestionIdx = -1
}

// Value returns the trimmed-as-typed text of a field.
func (f *FormState) Value(field int) string {
	return f.Inputs[field].Value()
}

// Fill copies a bookmark into the inputs.
func (f *FormState) Fill(b model.Bookmark) {
	f.Inputs[FieldURL].SetValue(b.URL)
	f.Inputs[FieldTitle].SetValue(b.Title)
	f.Inputs[FieldDescription].SetValue(b.Description)
	f.Inputs[FieldTags].SetValue(joinTags(b.Tags))
	f.Inputs[FieldNotes].SetValue(b.Notes)
}

// Draft builds a create payload from the inputs.
func (f *FormState) Draft() model.BookmarkDraft {
	return model.BookmarkDraft{
		URL:         model.NormalizeURL(f.Value(FieldURL)),
		Title:       f.Value(FieldTitle),
		Description: f.Value(FieldDescription),
		Notes:       f.Value(FieldNotes),
		Tags:        model.ParseTags(f.Value(FieldTags)),
	}
}

// Patch returns only the fields that differ from Original.
func (f *FormState) Patch() model.BookmarkPatch {
	var p model.BookmarkPatch
	if url := model.NormalizeURL(f.Value(FieldURL)); url != f.Original.URL {
		p.URL = &url
	}
	if v := f.Value(FieldTitle); v != f.Original.Title {
		p.Title = &v
	}
	if v := f.Value(FieldDescription); v != f.Original.Description {
		p.Description = &v
	}
	if v := f.Value(FieldNotes); v != f.Original.Notes {
		p.Notes = &v
	}
	if tags := model.ParseTags(f.Value(FieldTags)); joinTags(tags) != joinTags(f.Original.Tags) {
		p.Tags = &tags
	}
	return p
}

// TagBrowserState holds the tag list and its fuzzy filter.
type TagBrowserState struct {
	Filter  textinput.Model
	Results []search.TagResult
	Cursor  int
	Loading bool
	Err     error
	// Creating is set while a new tag is being sent to the server.
	Creating bool
}

// NewTagBrowserState creates a TagBrowserState with the filter focused.
func NewTagBrowserState(cfg layout.LayoutConfig) TagBrowserState {
	in := textinput.New()
	in.Placeholder = "Filter tags..."
	in.CharLimit = cfg.Input.SearchCharLimit
	in.Width = cfg.Input.SearchWidth
	in.Focus()
	return TagBrowserState{Filter: in}
}

// Selected returns the highlighted tag name, or "".
func (t *TagBrowserState) Selected() string {
	if t.Cursor < 0 || t.Cursor >= len(t.Results) {
		return ""
	}
	return t.Results[t.Cursor].Tag.Name
}

// NewTagName returns the filter as a tag name when no existing tag matches
// it exactly, or "". Tag names cannot contain spaces.
func (t *TagBrowserState) NewTagName() string {
	name := strings.TrimPrefix(strings.TrimSpace(t.Filter.Value()), "#")
	if name == "" || strings.ContainsAny(name, " \t,") {
		return ""
	}
	for _, r := range t.Results {
		if strings.EqualFold(r.Tag.Name, name) {
			return ""
		}
	}
	return name
}

// ConfirmState names the bookmark waiting for delete confirmation.
type ConfirmState struct {
	ID    int
	Title string
}

// ProfileState holds the fetched user profile.
type ProfileState struct {
	Profile *model.UserProfile
	Loading bool
	Err     error
}
