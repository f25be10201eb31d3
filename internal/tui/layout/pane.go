package layout

// PaneLayout holds the calculated list and preview widths.
type PaneLayout struct {
	ListWidth    int
	PreviewWidth int
	ShowPreview  bool
}

// CalculatePaneHeight computes the content height for panes.
// Returns at least MinHeight.
func CalculatePaneHeight(terminalHeight int, cfg PaneConfig) int {
	height := terminalHeight - cfg.HeightReduction
	if height < cfg.MinHeight {
		return cfg.MinHeight
	}
	return height
}

// CalculatePaneWidths splits the terminal between the list and the preview.
// Narrow terminals get the list alone.
func CalculatePaneWidths(terminalWidth int, cfg PaneConfig) PaneLayout {
	if terminalWidth < cfg.PreviewMinTerminalWidth {
		return PaneLayout{ListWidth: max(terminalWidth-cfg.SingleWidthOffset, 1)}
	}

	available := terminalWidth - cfg.SplitWidthOffset
	preview := available * cfg.PreviewWidthPercent / 100
	list := available - preview
	if list < cfg.MinListWidth {
		list = cfg.MinListWidth
		preview = available - list
	}
	if preview < 1 {
		return PaneLayout{ListWidth: max(terminalWidth-cfg.SingleWidthOffset, 1)}
	}

	return PaneLayout{
		ListWidth:    list,
		PreviewWidth: preview,
		ShowPreview:  true,
	}
}

// CalculateItemWidth computes the width available for row content.
func CalculateItemWidth(paneWidth int, cfg PaneConfig) int {
	return max(paneWidth-cfg.ContentPadding, 1)
}

// CalculateVisibleHeight computes the visible row count in a pane.
func CalculateVisibleHeight(paneHeight, headerLines int) int {
	height := paneHeight - headerLines
	if height < 1 {
		return 1
	}
	return height
}

// CalculateViewportOffset returns the first visible row so that the
// selected row stays on screen, roughly centered.
func CalculateViewportOffset(selected, total, viewportHeight int) int {
	if total <= viewportHeight {
		return 0
	}

	offset := selected - viewportHeight/2
	if offset < 0 {
		offset = 0
	}

	maxOffset := total - viewportHeight
	if offset > maxOffset {
		offset = maxOffset
	}

	return offset
}
