package layout

// LayoutConfig holds all layout-related configuration values.
type LayoutConfig struct {
	Pane  PaneConfig
	Modal ModalConfig
	Input InputConfig
	Text  TextConfig
}

// PaneConfig sizes the list and preview panes.
type PaneConfig struct {
	// HeightReduction is subtracted from terminal height for pane content.
	// app padding (1) + view tabs (1) + search line (1) + pane borders (2) + help bar (3) = 8
	HeightReduction int

	// MinHeight is the minimum pane height.
	MinHeight int

	// SplitWidthOffset is subtracted before splitting list and preview:
	// app padding (4) + two pane borders (4).
	SplitWidthOffset int

	// SingleWidthOffset is subtracted when only the list is shown.
	SingleWidthOffset int

	// PreviewWidthPercent is the preview's share of the split width.
	PreviewWidthPercent int

	// MinListWidth keeps the list readable when the preview is shown.
	MinListWidth int

	// PreviewMinTerminalWidth hides the preview on narrower terminals.
	PreviewMinTerminalWidth int

	// ContentPadding is subtracted from pane width for row rendering.
	ContentPadding int
}

// ModalConfig holds modal dialog configuration.
type ModalConfig struct {
	DefaultWidthPercent int
	// LargeWidthPercent is used by the bookmark form and the tag browser.
	LargeWidthPercent int
	MinWidth          int
	MaxWidth          int

	// TagsMaxVisible caps the rows of the tag browser.
	TagsMaxVisible int
	// SuggestionsMax caps tag completions under the tags input.
	SuggestionsMax int

	HelpLeftColumnWidth  int
	HelpRightColumnWidth int
}

// InputConfig holds text input configuration.
type InputConfig struct {
	TitleCharLimit  int
	URLCharLimit    int
	TagsCharLimit   int
	NotesCharLimit  int
	SearchCharLimit int
	TokenCharLimit  int

	// StandardWidth is used by form inputs, SearchWidth by the list search line.
	StandardWidth int
	SearchWidth   int
}

// TextConfig holds text truncation configuration.
type TextConfig struct {
	Ellipsis string
}

// DefaultConfig returns the default layout configuration.
func DefaultConfig() LayoutConfig {
	return LayoutConfig{
		Pane: PaneConfig{
			HeightReduction:         8,
			MinHeight:               5,
			SplitWidthOffset:        8,
			SingleWidthOffset:       6,
			PreviewWidthPercent:     40,
			MinListWidth:            30,
			PreviewMinTerminalWidth: 80,
			ContentPadding:          2,
		},
		Modal: ModalConfig{
			DefaultWidthPercent:  40,
			LargeWidthPercent:    60,
			MinWidth:             50,
			MaxWidth:             90,
			TagsMaxVisible:       12,
			SuggestionsMax:       5,
			HelpLeftColumnWidth:  22,
			HelpRightColumnWidth: 24,
		},
		Input: InputConfig{
			TitleCharLimit:  512,
			URLCharLimit:    2048,
			TagsCharLimit:   512,
			NotesCharLimit:  2048,
			SearchCharLimit: 200,
			TokenCharLimit:  128,
			StandardWidth:   48,
			SearchWidth:     40,
		},
		Text: TextConfig{
			Ellipsis: "…",
		},
	}
}
