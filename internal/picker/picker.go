// Package picker is the one-shot selection screen behind `lnk <query>`.
package picker

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/nikbrunner/lnk/internal/model"
	"github.com/nikbrunner/lnk/internal/search"
)

var (
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	matchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Underline(true)

	urlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Italic(true)

	tagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("109"))

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")).
			Bold(true).
			MarginBottom(1)
)

// Action is what the user chose to do with the selection.
type Action int

const (
	ActionNone Action = iota
	ActionOpen
	ActionYank
)

// linesPerItem is the height of one rendered result.
const linesPerItem = 2

// Picker is a simple TUI for selecting from search results.
type Picker struct {
	results   []search.SearchResult
	query     string
	total     int
	cursor    int
	offset    int
	action    Action
	cancelled bool
	width     int
	height    int
}

// New creates a new Picker with the given search results. total is the
// server's match count, which may exceed len(results).
func New(results []search.SearchResult, query string, total int) Picker {
	if total < len(results) {
		total = len(results)
	}
	return Picker{
		results: results,
		query:   query,
		total:   total,
		width:   80,
		height:  24,
	}
}

// Init implements tea.Model.
func (p Picker) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
		p.scroll()
		return p, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEsc, tea.KeyCtrlC:
			p.cancelled = true
			return p, tea.Quit

		case tea.KeyEnter:
			if len(p.results) == 0 {
				return p, nil
			}
			p.action = ActionOpen
			return p, tea.Quit

		case tea.KeyDown:
			p.move(1)
			return p, nil

		case tea.KeyUp:
			p.move(-1)
			return p, nil
		}

		// Handle vim keys
		if msg.Type == tea.KeyRunes {
			switch string(msg.Runes) {
			case "j":
				p.move(1)
				return p, nil
			case "k":
				p.move(-1)
				return p, nil
			case "g":
				p.cursor = 0
				p.scroll()
				return p, nil
			case "G":
				p.cursor = max(len(p.results)-1, 0)
				p.scroll()
				return p, nil
			case "y":
				if len(p.results) == 0 {
					return p, nil
				}
				p.action = ActionYank
				return p, tea.Quit
			case "q":
				p.cancelled = true
				return p, tea.Quit
			}
		}
	}

	return p, nil
}

func (p *Picker) move(delta int) {
	next := p.cursor + delta
	if next < 0 || next >= len(p.results) {
		return
	}
	p.cursor = next
	p.scroll()
}

// visibleItems is how many results fit between header and footer.
func (p Picker) visibleItems() int {
	n := (p.height - 4) / linesPerItem
	if n < 1 {
		n = 1
	}
	return n
}

// scroll keeps the cursor inside the visible window.
func (p *Picker) scroll() {
	visible := p.visibleItems()
	if p.cursor < p.offset {
		p.offset = p.cursor
	}
	if p.cursor >= p.offset+visible {
		p.offset = p.cursor - visible + 1
	}
}

// View implements tea.Model.
func (p Picker) View() string {
	var b strings.Builder

	// Header
	header := fmt.Sprintf("Search: %s (%d results)", p.query, len(p.results))
	if p.total > len(p.results) {
		header = fmt.Sprintf("Search: %s (%d of %d results)", p.query, len(p.results), p.total)
	}
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n\n")

	if len(p.results) == 0 {
		b.WriteString(urlStyle.Render("  No bookmarks found"))
		b.WriteString("\n")
	}

	end := min(p.offset+p.visibleItems(), len(p.results))
	for i := p.offset; i < end; i++ {
		result := p.results[i]
		cursor := "  "
		style := normalStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedStyle
		}

		title := highlight(result.Bookmark.DisplayTitle(), result.MatchedIndexes, style)
		if result.Bookmark.Unread {
			title += style.Render(" •")
		}
		line := urlStyle.Render(result.Bookmark.URL)
		if len(result.Bookmark.Tags) > 0 {
			line += "  " + tagStyle.Render("#"+strings.Join(result.Bookmark.Tags, " #"))
		}

		b.WriteString(fmt.Sprintf("%s%s\n", cursor, title))
		b.WriteString(fmt.Sprintf("   %s\n", line))
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render("j/k: move  Enter: open  y: copy URL  q/Esc: cancel"))

	return b.String()
}

// highlight renders matched rune positions with matchStyle.
func highlight(s string, matched []int, base lipgloss.Style) string {
	if len(matched) == 0 {
		return base.Render(s)
	}
	hit := make(map[int]bool, len(matched))
	for _, i := range matched {
		hit[i] = true
	}

	var b strings.Builder
	// fuzzy reports byte offsets
	for i, r := range s {
		if hit[i] {
			b.WriteString(matchStyle.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}
	return b.String()
}

// SelectedBookmark returns the selected bookmark, or nil if cancelled.
func (p Picker) SelectedBookmark() *model.Bookmark {
	if p.cancelled || p.action == ActionNone {
		return nil
	}
	if p.cursor < len(p.results) {
		return p.results[p.cursor].Bookmark
	}
	return nil
}

// Action returns what should be done with SelectedBookmark.
func (p Picker) Action() Action {
	if p.cancelled {
		return ActionNone
	}
	return p.action
}

// Cancelled returns true if the user cancelled the selection.
func (p Picker) Cancelled() bool {
	return p.cancelled
}
