package chat

const inputMaxHeight = 6
const inputPadding = 1

// chromeHeight is the header, the slot line under the viewport and the
// status line.
const chromeHeight = 3

func (m *Model) mainWidth() int {
	if m.width < 1 {
		return 1
	}
	return m.width
}

func (m *Model) resize() {
	if m.width == 0 || m.height == 0 {
		return
	}

	width := m.mainWidth()
	inputWidth := width - inputPadding
	if inputWidth < 1 {
		inputWidth = 1
	}
	m.input.SetWidth(inputWidth)
	lineCount := m.input.LineCount()
	if lineCount < 1 {
		lineCount = 1
	}
	if lineCount > inputMaxHeight {
		lineCount = inputMaxHeight
	}
	m.input.SetHeight(lineCount)
	inputHeight := m.input.Height() + 2

	bannerHeight := 0
	if m.errorBanner() != "" {
		bannerHeight = 1
	}
	atBottom := m.viewport.Height == 0 || m.distanceFromBottom() == 0
	m.viewport.Width = width
	m.viewport.Height = m.height - inputHeight - chromeHeight - bannerHeight
	if m.viewport.Height < 1 {
		m.viewport.Height = 1
	}
	m.refreshViewport(atBottom)
}
