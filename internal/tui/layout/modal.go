package layout

// CalculateModalWidth computes a modal width as a percentage of the
// terminal, clamped to MinWidth and MaxWidth and never wider than the
// terminal minus a small margin.
func CalculateModalWidth(terminalWidth, widthPercent int, cfg ModalConfig) int {
	width := terminalWidth * widthPercent / 100
	width = min(max(width, cfg.MinWidth), cfg.MaxWidth)

	if width > terminalWidth-4 {
		width = terminalWidth - 4
	}
	return max(width, 1)
}

// CalculateVisibleListItems computes the window of a scrollable list.
// items[start:end] should be displayed.
func CalculateVisibleListItems(maxVisible, selectedIdx, totalItems int) (start, end int) {
	if totalItems <= maxVisible {
		return 0, totalItems
	}

	if selectedIdx >= maxVisible {
		start = selectedIdx - maxVisible + 1
	}

	end = min(start+maxVisible, totalItems)
	return start, end
}
