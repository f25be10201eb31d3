// Package tui is the interactive bookmark browser.
package tui

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/nikbrunner/lnk/internal/linkding"
	"github.com/nikbrunner/lnk/internal/listctl"
	"github.com/nikbrunner/lnk/internal/logger"
	"github.com/nikbrunner/lnk/internal/model"
	"github.com/nikbrunner/lnk/internal/tui/layout"
	"github.com/sirupsen/logrus"
)

// App is the main bubbletea model for the bookmark browser.
type App struct {
	session      Session
	ctx          context.Context
	log          *logrus.Logger
	keys         KeyMap
	styles       Styles
	layoutConfig layout.LayoutConfig

	pageSize int
	debounce time.Duration

	// list is the active screen; changed is signalled by every list.
	list    *listctl.Controller
	changed chan struct{}
	cursor  int

	mode        Mode
	prevMode    Mode // restored when the help overlay closes
	login       LoginState
	form        FormState
	tags        TagBrowserState
	allTags     []model.Tag
	confirm     ConfirmState
	profile     ProfileState
	searchInput textinput.Model
	spinner     spinner.Model

	messageText string
	messageType MessageType

	readClipboard  func() (string, error)
	writeClipboard func(string) error
	openURL        func(string) error

	width  int
	height int
}

// AppParams holds parameters for creating a new App.
type AppParams struct {
	Session  Session
	Context  context.Context // cancelled when the program exits
	Logger   *logrus.Logger
	PageSize int
	Debounce time.Duration

	Keys         *KeyMap              // optional, uses default if nil
	Styles       *Styles              // optional, uses default if nil
	LayoutConfig *layout.LayoutConfig // optional, uses default if nil

	// Overridable for tests.
	ReadClipboard  func() (string, error)
	WriteClipboard func(string) error
	OpenURL        func(string) error
}

// NewApp creates a new App. Without a logged-in session it starts on the
// login form.
func NewApp(params AppParams) App {
	keys := DefaultKeyMap()
	if params.Keys != nil {
		keys = *params.Keys
	}

	styles := DefaultStyles()
	if params.Styles != nil {
		styles = *params.Styles
	}

	layoutConfig := layout.DefaultConfig()
	if params.LayoutConfig != nil {
		layoutConfig = *params.LayoutConfig
	}

	ctx := params.Context
	if ctx == nil {
		ctx = context.Background()
	}

	searchInput := textinput.New()
	searchInput.Placeholder = "Search..."
	searchInput.CharLimit = layoutConfig.Input.SearchCharLimit
	searchInput.Width = layoutConfig.Input.SearchWidth

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = styles.Info

	app := App{
		session:        params.Session,
		ctx:            ctx,
		log:            logger.OrDiscard(params.Logger),
		keys:           keys,
		styles:         styles,
		layoutConfig:   layoutConfig,
		pageSize:       params.PageSize,
		debounce:       params.Debounce,
		changed:        make(chan struct{}, 1),
		login:          NewLoginState(layoutConfig),
		searchInput:    searchInput,
		spinner:        sp,
		readClipboard:  params.ReadClipboard,
		writeClipboard: params.WriteClipboard,
		openURL:        params.OpenURL,
		width:          80,
		height:         24,
	}
	if app.readClipboard == nil {
		app.readClipboard = clipboard.ReadAll
	}
	if app.writeClipboard == nil {
		app.writeClipboard = clipboard.WriteAll
	}
	if app.openURL == nil {
		app.openURL = OpenURL
	}

	app.mode = ModeLogin
	if remote, err := app.session.Remote(); err == nil {
		app.mode = ModeNormal
		app.list = app.newList(remote, model.ViewDefault, "")
	}
	return app
}

// newList creates a controller that signals a.changed on every change.
func (a *App) newList(remote Remote, view model.View, tag string) *listctl.Controller {
	ch := a.changed
	return listctl.New(listctl.Params{
		Remote:   remote,
		Cache:    a.session.Cache(),
		View:     view,
		TagName:  tag,
		PageSize: a.pageSize,
		Debounce: a.debounce,
		Logger:   a.log,
		OnChange: func(listctl.Snapshot) {
			select {
			case ch <- struct{}{}:
			default:
			}
		},
	})
}

// switchView replaces the active list and loads its first page.
func (a *App) switchView(view model.View, tag string) tea.Cmd {
	remote, err := a.session.Remote()
	if err != nil {
		a.toLogin()
		return nil
	}
	if a.list != nil {
		a.list.Close()
	}
	a.list = a.newList(remote, view, tag)
	a.cursor = 0
	a.searchInput.Reset()
	return refreshCmd(a.ctx, a.list)
}

// toLogin drops the active list and shows the login form.
func (a *App) toLogin() {
	if a.list != nil {
		a.list.Close()
		a.list = nil
	}
	a.cursor = 0
	a.allTags = nil
	a.searchInput.Reset()
	a.login = NewLoginState(a.layoutConfig)
	a.mode = ModeLogin
}

// WithDimensions returns a copy of the App with the given terminal size.
func (a App) WithDimensions(width, height int) App {
	a.width = width
	a.height = height
	return a
}

// Mode returns the current input mode.
func (a App) Mode() Mode {
	return a.mode
}

// Cursor returns the current cursor position.
func (a App) Cursor() int {
	return a.cursor
}

// Snapshot returns the state of the active list.
func (a App) Snapshot() listctl.Snapshot {
	if a.list == nil {
		return listctl.Snapshot{}
	}
	return a.list.Snapshot()
}

// Message returns the status line text.
func (a App) Message() string {
	return a.messageText
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.spinner.Tick, waitForChange(a.changed), textinput.Blink}
	if a.list != nil {
		cmds = append(cmds, refreshCmd(a.ctx, a.list), warmCmd(a.ctx, a.session))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case listChangedMsg:
		a.clampCursor()
		return a, waitForChange(a.changed)

	case loadDoneMsg:
		if msg.list != a.list {
			return a, nil
		}
		a.clampCursor()
		if linkding.IsAuth(msg.err) {
			a.setMessage("The server rejected the token; press L to log in again", MessageError)
		}
		return a, nil

	case writeDoneMsg:
		return a.handleWriteDone(msg)

	case lookupDoneMsg:
		a.applyLookup(msg)
		return a, nil

	case tagsLoadedMsg:
		a.tags.Loading = false
		a.tags.Err = msg.err
		if msg.err == nil {
			a.allTags = msg.tags
		}
		a.filterTags()
		return a, nil

	case tagSearchDueMsg:
		return a, a.tagSearchDue(msg)

	case tagSuggestionsMsg:
		a.applyTagSuggestions(msg)
		return a, nil

	case tagCreatedMsg:
		a.tags.Creating = false
		if msg.err != nil {
			a.setMessage("Create tag failed: "+msg.err.Error(), MessageError)
			return a, nil
		}
		a.setMessage("Created tag #"+msg.tag.Name, MessageSuccess)
		if a.allTags == nil {
			// No list to extend; fetch the server's.
			a.tags.Loading = true
			return a, a.reloadTags()
		}
		a.allTags = append(a.allTags, *msg.tag)
		a.filterTags()
		return a, nil

	case profileLoadedMsg:
		a.profile = ProfileState{Profile: msg.profile, Err: msg.err}
		return a, nil

	case loginDoneMsg:
		a.login.Busy = false
		if msg.err != nil {
			a.login.Err = msg.err
			return a, nil
		}
		a.mode = ModeNormal
		a.login = NewLoginState(a.layoutConfig)
		a.setMessage("Logged in", MessageSuccess)
		return a, a.switchView(model.ViewDefault, "")

	case logoutDoneMsg:
		if msg.err != nil {
			a.setMessage("Logout failed: "+msg.err.Error(), MessageError)
			return a, nil
		}
		a.toLogin()
		return a, nil

	case warmDoneMsg:
		if msg.err != nil {
			a.log.WithError(msg.err).Warn("tui: cache warm-up failed")
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a.updateFocusedInput(msg)
}

// View implements tea.Model.
func (a App) View() string {
	return a.renderView()
}

func (a *App) setMessage(text string, t MessageType) {
	a.messageText = text
	a.messageType = t
}

func (a *App) clearMessage() {
	a.messageText = ""
}

// items returns the rows of the active list.
func (a App) items() []model.Bookmark {
	return a.Snapshot().Items
}

// current returns the bookmark under the cursor.
func (a App) current() (model.Bookmark, bool) {
	items := a.items()
	if a.cursor < 0 || a.cursor >= len(items) {
		return model.Bookmark{}, false
	}
	return items[a.cursor], true
}

func (a *App) clampCursor() {
	n := len(a.items())
	if a.cursor >= n {
		a.cursor = max(n-1, 0)
	}
}

// moveCursor moves by delta and requests the next page near the end.
func (a *App) moveCursor(delta int) tea.Cmd {
	n := len(a.items())
	if n == 0 {
		a.cursor = 0
		return nil
	}
	a.cursor = min(max(a.cursor+delta, 0), n-1)
	return a.maybeLoadMore()
}

func (a *App) maybeLoadMore() tea.Cmd {
	if a.list != nil && a.list.NearEnd(a.cursor) {
		return loadMoreCmd(a.ctx, a.list)
	}
	return nil
}

func (a *App) quit() (tea.Model, tea.Cmd) {
	if a.list != nil {
		a.list.Close()
	}
	return *a, tea.Quit
}
