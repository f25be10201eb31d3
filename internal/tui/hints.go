package tui

import "strings"

// Hint represents a single keybind hint for display.
type Hint struct {
	Key  string // Display key (e.g., "j/k", "Enter")
	Desc string // Short description (e.g., "move", "open")
}

// renderHint renders a single hint as "key:desc" with styling.
func (a App) renderHint(h Hint) string {
	return a.styles.HintKey.Render(h.Key) + ":" + a.styles.HintDesc.Render(h.Desc)
}

// renderHints renders hints in horizontal format for bottom bar: "j/k:move /:search r:refresh"
func (a App) renderHints(hints HintSet) string {
	allHints := hints.All()
	if len(allHints) == 0 {
		return ""
	}

	parts := make([]string, len(allHints))
	for i, h := range allHints {
		parts[i] = a.renderHint(h)
	}
	return strings.Join(parts, " ")
}

// renderHintsInline renders hints in inline format for modals: "Enter confirm  Esc cancel"
func (a App) renderHintsInline(hints []Hint) string {
	if len(hints) == 0 {
		return ""
	}

	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = a.styles.HintKey.Render(h.Key) + " " + a.styles.HintDesc.Render(h.Desc)
	}
	return strings.Join(parts, "  ")
}

// HintSet is an ordered collection of hints by group.
type HintSet struct {
	Nav    []Hint // Navigation hints (j/k, 1-6)
	Edit   []Hint // Edit hints (a, e, d, etc.)
	Action []Hint // Action hints (Enter, /, r)
	System []Hint // System hints (?, q, Esc)
}

// All returns all hints flattened in display order: Nav + Action + Edit + System.
func (h HintSet) All() []Hint {
	result := make([]Hint, 0, len(h.Nav)+len(h.Action)+len(h.Edit)+len(h.System))
	result = append(result, h.Nav...)
	result = append(result, h.Action...)
	result = append(result, h.Edit...)
	result = append(result, h.System...)
	return result
}

// getContextualHints returns the appropriate hints for the current mode.
func (a App) getContextualHints() HintSet {
	switch a.mode {
	case ModeNormal:
		return a.getNormalModeHints()
	case ModeSearch:
		return HintSet{
			Nav:    []Hint{{Key: "type", Desc: "search"}},
			Action: []Hint{{Key: "Enter", Desc: "keep"}},
			System: []Hint{{Key: "Esc", Desc: "clear"}},
		}
	case ModeActions:
		return HintSet{
			System: []Hint{{Key: "Esc", Desc: "close"}},
		}
	case ModeAdd, ModeEdit:
		return a.getFormHints()
	case ModeTags:
		return HintSet{
			Nav:    []Hint{{Key: "↑/↓", Desc: "nav"}, {Key: "type", Desc: "filter"}},
			Action: []Hint{{Key: "Enter", Desc: "open"}},
			System: []Hint{{Key: "Esc", Desc: "cancel"}},
		}
	case ModeProfile:
		return HintSet{
			System: []Hint{{Key: "p/Esc", Desc: "close"}},
		}
	case ModeHelp:
		// Help overlay covers screen, minimal hints
		return HintSet{
			System: []Hint{{Key: "?/q/Esc", Desc: "close"}},
		}
	default:
		// Confirm and login show their hints inside the modal.
		return HintSet{}
	}
}

// getNormalModeHints returns hints for ModeNormal (main browse).
func (a App) getNormalModeHints() HintSet {
	hints := HintSet{
		Nav: []Hint{
			{Key: "j/k", Desc: "move"},
			{Key: "1-6", Desc: "view"},
		},
		Action: []Hint{
			{Key: "Enter", Desc: "actions"},
			{Key: "/", Desc: "search"},
			{Key: "r", Desc: "refresh"},
		},
		Edit: []Hint{
			{Key: "n", Desc: "add"},
			{Key: "e", Desc: "edit"},
			{Key: "a", Desc: "archive"},
			{Key: "d", Desc: "del"},
		},
		System: []Hint{
			{Key: "?", Desc: "help"},
			{Key: "q", Desc: "quit"},
		},
	}
	if a.list != nil && a.list.Query() != "" {
		hints.System = append([]Hint{{Key: "Esc", Desc: "clear search"}}, hints.System...)
	}
	return hints
}

// getFormHints returns hints for the add and edit forms.
func (a App) getFormHints() HintSet {
	hints := HintSet{
		Nav: []Hint{
			{Key: "Tab", Desc: "next"},
		},
		Action: []Hint{
			{Key: "Enter", Desc: "save"},
		},
		System: []Hint{
			{Key: "Esc", Desc: "cancel"},
		},
	}
	if a.form.Focus == FieldTags && len(a.form.Suggestions) > 0 {
		hints.Nav = []Hint{
			{Key: "↑/↓", Desc: "suggest"},
			{Key: "Tab", Desc: "accept"},
		}
	}
	return hints
}

// getGlobalHints returns the keys that work from the list in any view.
func (a App) getGlobalHints() []Hint {
	return []Hint{
		{Key: "t", Desc: "tags"},
		{Key: "p", Desc: "profile"},
		{Key: "L", Desc: "logout"},
	}
}
