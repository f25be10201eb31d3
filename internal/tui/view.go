package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/nikbrunner/lnk/internal/linkding"
	"github.com/nikbrunner/lnk/internal/listctl"
	"github.com/nikbrunner/lnk/internal/model"
	"github.com/nikbrunner/lnk/internal/tui/layout"
)

// viewLabels are the tab captions, indexed by model.View.
var viewLabels = map[model.View]string{
	model.ViewDefault:  "all",
	model.ViewArchive:  "archive",
	model.ViewUnread:   "unread",
	model.ViewUntagged: "untagged",
	model.ViewShared:   "shared",
	model.ViewByTag:    "tags",
}

// renderView renders the screen for the current mode.
func (a App) renderView() string {
	switch a.mode {
	case ModeLogin:
		return a.renderLogin()
	case ModeHelp:
		return a.renderHelpOverlay()
	case ModeConfirmDelete, ModeAdd, ModeEdit, ModeTags, ModeProfile:
		return a.renderModal()
	}

	snap := a.Snapshot()
	paneHeight := layout.CalculatePaneHeight(a.height, a.layoutConfig.Pane)
	panes := layout.CalculatePaneWidths(a.width, a.layoutConfig.Pane)

	columns := a.renderListPane(snap, panes.ListWidth, paneHeight)
	if panes.ShowPreview {
		columns = lipgloss.JoinHorizontal(
			lipgloss.Top,
			columns,
			a.renderPreviewPane(snap, panes.PreviewWidth, paneHeight),
		)
	}

	content := a.styles.App.Render(
		lipgloss.JoinVertical(lipgloss.Left, a.renderTabs(snap), a.renderStatusLine(snap), columns, a.renderHelpBar()),
	)

	// Use Place to ensure exact terminal dimensions and prevent overflow
	return lipgloss.Place(a.width, a.height, lipgloss.Left, lipgloss.Top, content)
}

// renderTabs renders the view tabs and the row count.
func (a App) renderTabs(snap listctl.Snapshot) string {
	var tabs []string
	for i, v := range model.Views {
		label := fmt.Sprintf("%d %s", i+1, viewLabels[v])
		if v == model.ViewByTag && snap.View == v {
			label = fmt.Sprintf("%d #%s", i+1, snap.TagName)
		}
		if v == snap.View {
			tabs = append(tabs, a.styles.TabActive.Render(label))
		} else {
			tabs = append(tabs, a.styles.Tab.Render(label))
		}
	}

	line := strings.Join(tabs, "")
	count := a.styles.Date.Render(fmt.Sprintf("%d/%d", len(snap.Items), snap.Total))
	gap := a.width - 4 - layout.VisibleLength(line) - layout.VisibleLength(count)
	return line + strings.Repeat(" ", max(gap, 1)) + count
}

// renderStatusLine shows the search input or query and the load state.
func (a App) renderStatusLine(snap listctl.Snapshot) string {
	var parts []string

	switch {
	case a.mode == ModeSearch:
		parts = append(parts, a.searchInput.View())
	case snap.Query != "":
		parts = append(parts, a.styles.Tag.Render("/"+snap.Query))
	}

	switch snap.State {
	case listctl.Loading:
		parts = append(parts, a.spinner.View()+a.styles.Empty.Render(" loading"))
	case listctl.LoadingMore:
		parts = append(parts, a.spinner.View()+a.styles.Empty.Render(" loading more"))
	case listctl.Error:
		parts = append(parts, a.styles.Error.Render("✗ "+errText(snap.Err)))
	default:
		if snap.FromCache {
			parts = append(parts, a.styles.Empty.Render("cached"))
		}
	}

	return strings.Join(parts, "  ")
}

// renderListPane renders the bookmark rows with the action panel under the
// focused one.
func (a App) renderListPane(snap listctl.Snapshot, width, height int) string {
	var content strings.Builder
	itemWidth := layout.CalculateItemWidth(width, a.layoutConfig.Pane)
	items := snap.Items

	switch {
	case len(items) == 0 && snap.State == listctl.Loading:
		content.WriteString(a.spinner.View() + " Loading" + a.layoutConfig.Text.Ellipsis)
	case len(items) == 0 && snap.State == listctl.Error:
		content.WriteString(a.styles.Error.Render("✗ "+errText(snap.Err)) + "\n")
		content.WriteString(a.styles.Empty.Render("press r to retry"))
	case len(items) == 0 && snap.Query != "":
		content.WriteString(a.styles.Empty.Render("(no matches)"))
	case len(items) == 0:
		content.WriteString(a.styles.Empty.Render("(no bookmarks)"))
	default:
		reserved := 0
		if snap.HasMore || snap.State == listctl.LoadingMore || snap.State == listctl.Error {
			reserved++
		}
		if snap.Focused != 0 {
			reserved++
		}
		visibleHeight := layout.CalculateVisibleHeight(height, reserved)
		cursor := min(a.cursor, len(items)-1)
		offset := layout.CalculateViewportOffset(cursor, len(items), visibleHeight)
		end := min(offset+visibleHeight, len(items))

		for i := offset; i < end; i++ {
			b := items[i]
			content.WriteString(a.renderRow(b, i == cursor, itemWidth) + "\n")
			if b.ID == snap.Focused {
				panel := layout.TruncateStyled(a.renderHintsInline(a.rowActions(b)), itemWidth-3, a.layoutConfig.Text)
				content.WriteString(a.styles.Panel.Render(panel) + "\n")
			}
		}

		switch {
		case snap.State == listctl.LoadingMore:
			content.WriteString(a.spinner.View() + a.styles.Empty.Render(" loading more"))
		case snap.State == listctl.Error:
			content.WriteString(a.styles.Error.Render("✗ load failed, scroll to retry"))
		case snap.HasMore:
			content.WriteString(a.styles.Empty.Render("↓ more"))
		}
	}

	return a.styles.PaneActive.
		Width(width).
		Height(height).
		Render(strings.TrimRight(content.String(), "\n"))
}

// renderPreviewPane shows the details of the bookmark under the cursor.
func (a App) renderPreviewPane(snap listctl.Snapshot, width, height int) string {
	var content strings.Builder
	itemWidth := layout.CalculateItemWidth(width, a.layoutConfig.Pane)

	if a.cursor < len(snap.Items) {
		b := snap.Items[a.cursor]

		title, _ := layout.TruncateText(b.DisplayTitle(), itemWidth, a.layoutConfig.Text)
		content.WriteString(a.styles.Title.Render(title) + "\n")

		url, _ := layout.TruncateText(b.URL, itemWidth, a.layoutConfig.Text)
		content.WriteString(a.styles.URL.Render(url) + "\n\n")

		if desc := b.DisplayDescription(); desc != "" {
			content.WriteString(desc + "\n\n")
		}

		if len(b.Tags) > 0 {
			content.WriteString(a.styles.Tag.Render(hashTags(b.Tags)) + "\n\n")
		}

		if b.Notes != "" {
			content.WriteString(a.styles.HintLabel.Render("notes") + "\n")
			content.WriteString(b.Notes + "\n\n")
		}

		if flags := bookmarkFlags(b); flags != "" {
			content.WriteString(a.styles.Help.Render(flags) + "\n")
		}

		if !b.CreatedAt.IsZero() {
			content.WriteString(a.styles.Date.Render("Added "+humanize.Time(b.CreatedAt)) + "\n")
		}
		if b.ModifiedAt.After(b.CreatedAt) {
			content.WriteString(a.styles.Date.Render("Modified " + humanize.Time(b.ModifiedAt)))
		}
	}

	return a.styles.Pane.
		Width(width).
		Height(height).
		MaxHeight(height + 2).
		Render(strings.TrimRight(content.String(), "\n"))
}

func bookmarkFlags(b model.Bookmark) string {
	var flags []string
	if b.Unread {
		flags = append(flags, "unread")
	}
	if b.Shared {
		flags = append(flags, "shared")
	}
	if b.Archived {
		flags = append(flags, "archived")
	}
	return strings.Join(flags, " · ")
}

func errText(err error) string {
	var remote *linkding.RemoteError
	switch {
	case err == nil:
		return "error"
	case linkding.IsNetwork(err):
		return "server unreachable"
	case errors.As(err, &remote) && remote.ServerSide():
		return fmt.Sprintf("server error (%d)", remote.Status)
	}
	return err.Error()
}

// renderModal renders the centered dialog of the current mode.
func (a App) renderModal() string {
	var title, content strings.Builder

	widthPercent := a.layoutConfig.Modal.DefaultWidthPercent
	if a.mode == ModeAdd || a.mode == ModeEdit {
		widthPercent = a.layoutConfig.Modal.LargeWidthPercent
	}
	modalWidth := layout.CalculateModalWidth(a.width, widthPercent, a.layoutConfig.Modal)

	switch a.mode {
	case ModeConfirmDelete:
		title.WriteString("Delete Bookmark?\n\n")
		content.WriteString(fmt.Sprintf("%q\n\n", a.confirm.Title))
		content.WriteString(a.styles.Help.Render("This action cannot be undone.") + "\n\n")
		content.WriteString(a.renderHintsInline([]Hint{
			{Key: "y", Desc: "confirm"},
			{Key: "n/Esc", Desc: "cancel"},
		}))

	case ModeAdd, ModeEdit:
		if a.mode == ModeAdd {
			title.WriteString("Add Bookmark\n\n")
		} else {
			title.WriteString("Edit Bookmark\n\n")
		}
		a.renderForm(&content)

	case ModeTags:
		title.WriteString("Tags\n\n")
		a.renderTagBrowser(&content)

	case ModeProfile:
		title.WriteString("Profile\n\n")
		a.renderProfile(&content)
	}

	modalContent := a.styles.Title.Render(title.String()) + strings.TrimRight(content.String(), "\n")

	// Place modal in center, then add help bar at bottom
	modal := lipgloss.Place(
		a.width,
		a.height-3, // Leave room for help bar
		lipgloss.Center,
		lipgloss.Center,
		a.styles.Modal.Width(modalWidth).Render(modalContent),
	)

	return lipgloss.JoinVertical(lipgloss.Left, modal, a.renderHelpBar())
}

var fieldLabels = [fieldCount]string{
	FieldURL:         "URL:",
	FieldTitle:       "Title:",
	FieldDescription: "Description:",
	FieldTags:        "Tags:",
	FieldNotes:       "Notes:",
}

func (a App) renderForm(content *strings.Builder) {
	for i := range a.form.Inputs {
		label := fieldLabels[i]
		if i == a.form.Focus {
			content.WriteString(a.styles.Title.Render(label) + "\n")
		} else {
			content.WriteString(label + "\n")
		}
		content.WriteString(a.form.Inputs[i].View() + "\n")

		switch i {
		case FieldURL:
			if status := a.lookupStatus(); status != "" {
				content.WriteString(status + "\n")
			}
		case FieldTags:
			for j, tag := range a.form.Suggestions {
				if j == a.form.SuggestionIdx {
					content.WriteString(a.styles.ItemSelected.Render("▸ "+tag) + "\n")
				} else {
					content.WriteString(a.styles.Help.Render("  "+tag) + "\n")
				}
			}
		}
		content.WriteString("\n")
	}

	if a.form.Saving {
		content.WriteString(a.spinner.View() + " saving" + a.layoutConfig.Text.Ellipsis)
	} else if a.messageText != "" && a.messageType == MessageError {
		content.WriteString(a.renderMessageLine())
	}
}

// lookupStatus describes the URL check below the URL field.
func (a App) lookupStatus() string {
	switch {
	case a.form.Checking:
		return a.spinner.View() + a.styles.Empty.Render(" checking"+a.layoutConfig.Text.Ellipsis)
	case a.form.LookupErr != nil:
		return a.styles.Warning.Render("⚠ lookup failed: " + a.form.LookupErr.Error())
	case a.mode == ModeEdit && a.form.Lookup != nil && a.form.Lookup.Exists():
		return a.styles.Warning.Render("⚠ already bookmarked")
	case a.form.Lookup != nil:
		return a.styles.Success.Render("✓ new bookmark")
	}
	return ""
}

func (a App) renderTagBrowser(content *strings.Builder) {
	content.WriteString(a.tags.Filter.View() + "\n\n")

	switch {
	case a.tags.Loading && len(a.tags.Results) == 0:
		content.WriteString(a.spinner.View() + " Loading tags" + a.layoutConfig.Text.Ellipsis)
		return
	case a.tags.Err != nil && len(a.tags.Results) == 0:
		content.WriteString(a.styles.Error.Render("✗ " + a.tags.Err.Error()))
		return
	case a.tags.Creating:
		content.WriteString(a.spinner.View() + " Creating #" + a.tags.NewTagName() + a.layoutConfig.Text.Ellipsis)
		return
	case len(a.tags.Results) == 0:
		content.WriteString(a.styles.Empty.Render("No matching tags"))
		if name := a.tags.NewTagName(); name != "" {
			content.WriteString("\n\n" + a.renderHintsInline([]Hint{{Key: "Enter", Desc: "create #" + name}}))
		}
		return
	}

	start, end := layout.CalculateVisibleListItems(a.layoutConfig.Modal.TagsMaxVisible, a.tags.Cursor, len(a.tags.Results))
	for i := start; i < end; i++ {
		r := a.tags.Results[i]
		count := a.styles.Date.Render(fmt.Sprintf(" (%d)", r.Tag.BookmarkCount))
		if i == a.tags.Cursor {
			content.WriteString(a.styles.ItemSelected.Render("▸ "+r.Tag.Name) + count + "\n")
		} else {
			content.WriteString("  " + a.highlight(r.Tag.Name, r.MatchedIndexes) + count + "\n")
		}
	}
}

// highlight renders the matched byte offsets of s in the match style.
func (a App) highlight(s string, matched []int) string {
	if len(matched) == 0 {
		return a.styles.Item.Render(s)
	}
	hit := make(map[int]bool, len(matched))
	for _, i := range matched {
		hit[i] = true
	}

	var b strings.Builder
	for i, r := range s {
		if hit[i] {
			b.WriteString(a.styles.Match.Render(string(r)))
		} else {
			b.WriteString(a.styles.Item.Render(string(r)))
		}
	}
	return b.String()
}

func (a App) renderProfile(content *strings.Builder) {
	switch {
	case a.profile.Loading:
		content.WriteString(a.spinner.View() + " Loading profile" + a.layoutConfig.Text.Ellipsis)
		return
	case a.profile.Err != nil:
		content.WriteString(a.styles.Error.Render("✗ " + a.profile.Err.Error()))
		return
	case a.profile.Profile == nil:
		content.WriteString(a.styles.Empty.Render("(no profile)"))
		return
	}

	p := a.profile.Profile
	rows := [][2]string{
		{"theme", p.Theme},
		{"date display", p.BookmarkDateDisplay},
		{"link target", p.BookmarkLinkTarget},
		{"web archive", p.WebArchiveIntegration},
		{"tag search", p.TagSearch},
		{"sharing", onOff(p.EnableSharing)},
		{"public sharing", onOff(p.EnablePublicSharing)},
		{"favicons", onOff(p.EnableFavicons)},
		{"display url", onOff(p.DisplayURL)},
		{"permanent notes", onOff(p.PermanentNotes)},
		{"sort", p.SearchPreferences.Sort},
	}
	for _, r := range rows {
		content.WriteString(a.styles.Help.Render(layout.PadRight(r[0], 17)) + r[1] + "\n")
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// renderLogin renders the server URL and token form.
func (a App) renderLogin() string {
	var content strings.Builder
	content.WriteString(a.styles.Title.Render("Connect to linkding") + "\n\n")
	content.WriteString("Server URL:\n")
	content.WriteString(a.login.URLInput.View() + "\n\n")
	content.WriteString("API token:\n")
	content.WriteString(a.login.TokenInput.View() + "\n\n")

	switch {
	case a.login.Busy:
		content.WriteString(a.spinner.View() + " connecting" + a.layoutConfig.Text.Ellipsis + "\n\n")
	case a.login.Err != nil:
		content.WriteString(a.styles.Error.Render("✗ "+a.login.Err.Error()) + "\n\n")
	}

	content.WriteString(a.renderHintsInline([]Hint{
		{Key: "Tab", Desc: "next"},
		{Key: "Enter", Desc: "connect"},
		{Key: "Esc", Desc: "quit"},
	}))

	modalWidth := layout.CalculateModalWidth(a.width, a.layoutConfig.Modal.LargeWidthPercent, a.layoutConfig.Modal)
	return lipgloss.Place(
		a.width,
		a.height,
		lipgloss.Center,
		lipgloss.Center,
		a.styles.Modal.Width(modalWidth).Render(content.String()),
	)
}

// renderHelpBar renders the message line and the key hints.
func (a App) renderHelpBar() string {
	var lines []string

	// Line 1: Empty spacer OR message (message replaces the gap)
	if a.messageText != "" {
		lines = append(lines, a.renderMessageLine())
	} else {
		lines = append(lines, "")
	}

	// Line 2: Local (contextual) keyboard hints
	localHints := a.renderHints(a.getContextualHints())
	if localHints != "" {
		lines = append(lines, a.styles.HintLabel.Render("Local  ")+localHints)
	}

	// Line 3: Global keyboard hints (only in normal mode - modals have their own flow)
	if a.mode == ModeNormal {
		globalHints := a.renderHintSlice(a.getGlobalHints())
		if globalHints != "" {
			lines = append(lines, a.styles.HintLabel.Render("Global ")+globalHints)
		}
	}

	return strings.Join(lines, "\n")
}

// renderHintSlice renders a slice of hints in horizontal format.
func (a App) renderHintSlice(hints []Hint) string {
	if len(hints) == 0 {
		return ""
	}

	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = a.renderHint(h)
	}
	return strings.Join(parts, " ")
}

// renderMessageLine renders the styled message with prefix icon based on type.
func (a App) renderMessageLine() string {
	switch a.messageType {
	case MessageError:
		return a.styles.Error.Render("✗ " + a.messageText)
	case MessageWarning:
		return a.styles.Warning.Render("⚠ " + a.messageText)
	case MessageSuccess:
		return a.styles.Success.Render("✓ " + a.messageText)
	default:
		return a.styles.Info.Render(a.messageText)
	}
}

// renderHelpOverlay renders the full key reference.
func (a App) renderHelpOverlay() string {
	// Brutalist style: no border, just raw columns
	modalStyle := lipgloss.NewStyle().
		Padding(1, 2)

	// Left column: navigation and views
	var left strings.Builder
	left.WriteString(a.styles.Title.Render("nav") + "\n")
	left.WriteString("j/k    move\n")
	left.WriteString("g/G    top/bottom\n")
	left.WriteString("/      search\n")
	left.WriteString("r      refresh\n")
	left.WriteString("Esc    clear search\n")
	left.WriteString("\n")
	left.WriteString(a.styles.Title.Render("views") + "\n")
	left.WriteString("1      all\n")
	left.WriteString("2      archive\n")
	left.WriteString("3      unread\n")
	left.WriteString("4      untagged\n")
	left.WriteString("5      shared\n")
	left.WriteString("6/t    by tag\n")

	// Right column: row actions and account
	var right strings.Builder
	right.WriteString(a.styles.Title.Render("act") + "\n")
	right.WriteString("Enter  action panel\n")
	right.WriteString("o      open url\n")
	right.WriteString("Y      yank url\n")
	right.WriteString("n      add bookmark\n")
	right.WriteString("e      edit\n")
	right.WriteString("a      archive\n")
	right.WriteString("u      toggle unread\n")
	right.WriteString("s      toggle shared\n")
	right.WriteString("d      delete\n")
	right.WriteString("\n")
	right.WriteString(a.styles.Title.Render("account") + "\n")
	right.WriteString("p      profile\n")
	right.WriteString("L      log out\n")
	right.WriteString("\n")
	right.WriteString(a.styles.Help.Render("[?/esc] close  [q] quit"))

	// Join columns
	leftCol := lipgloss.NewStyle().Width(a.layoutConfig.Modal.HelpLeftColumnWidth).Render(left.String())
	rightCol := lipgloss.NewStyle().Width(a.layoutConfig.Modal.HelpRightColumnWidth).Render(right.String())
	cols := lipgloss.JoinHorizontal(lipgloss.Top, leftCol, "  ", rightCol)

	// Top-left aligned, brutalist style
	return lipgloss.Place(
		a.width,
		a.height,
		lipgloss.Left,
		lipgloss.Top,
		modalStyle.Render(cols),
	)
}
