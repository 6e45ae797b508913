package ui

import (
	"regexp"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// applySearch sets the search pattern and jumps to the first match.
func (v *fileView) applySearch(query string, re *regexp.Regexp) {
	v.searchQuery = query
	v.searchRegex = re
	v.searchMatchIdx = 0
	v.findSearchMatches()
	if len(v.searchMatches) > 0 {
		v.scrollToSearchMatch()
	}
	v.contentDirt = true
}

// clearSearch clears the search state.
func (v *fileView) clearSearch() {
	v.searchRegex = nil
	v.searchQuery = ""
	v.searchMatches = nil
	v.searchMatchIdx = 0
	v.contentDirt = true // Search highlighting changed
}

// refreshSearch recomputes matches after the content changed, keeping the
// active match index in range.
func (v *fileView) refreshSearch() {
	if v.searchRegex == nil {
		return
	}
	v.findSearchMatches()
	if v.searchMatchIdx >= len(v.searchMatches) {
		v.searchMatchIdx = max(len(v.searchMatches)-1, 0)
	}
}

// findSearchMatches finds all lines matching the current search regex.
func (v *fileView) findSearchMatches() {
	v.searchMatches = nil
	if v.searchRegex == nil {
		return
	}
	for i := range v.lineCount() {
		if v.searchRegex.MatchString(lineText(v.doc, i)) {
			v.searchMatches = append(v.searchMatches, i)
		}
	}
}

// nextSearchMatch moves to the next search match.
func (v *fileView) nextSearchMatch() {
	if len(v.searchMatches) == 0 {
		return
	}
	v.searchMatchIdx = (v.searchMatchIdx + 1) % len(v.searchMatches)
	v.contentDirt = true // Active match changed
	v.scrollToSearchMatch()
}

// previousSearchMatch moves to the previous search match.
func (v *fileView) previousSearchMatch() {
	if len(v.searchMatches) == 0 {
		return
	}
	v.searchMatchIdx = (v.searchMatchIdx - 1 + len(v.searchMatches)) % len(v.searchMatches)
	v.contentDirt = true // Active match changed
	v.scrollToSearchMatch()
}

// scrollToSearchMatch stops following and centers the current match.
func (v *fileView) scrollToSearchMatch() {
	if len(v.searchMatches) == 0 || v.searchMatchIdx >= len(v.searchMatches) {
		return
	}
	target := v.searchMatches[v.searchMatchIdx]
	v.follow = false
	v.pendingOffset = max(target-v.viewport.Height/2, 0)
	v.hasPending = true
}

// handleSearchInput handles keyboard input while the search prompt is open.
func (m Model) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		query := m.searchInput.Value()
		m.searchActive = false
		m.searchInput.Blur()
		v := m.activeView()
		if query == "" || v == nil {
			return m, nil
		}

		re, err := regexp.Compile("(?i)" + query)
		if err != nil {
			// Invalid regex - stay in search mode
			m.searchActive = true
			m.searchInput.Focus()
			m.flash("invalid pattern: " + err.Error())
			return m, nil
		}
		v.applySearch(query, re)
		m.refreshView()
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		// Cancel search input
		m.searchActive = false
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		return m, nil
	}

	// Let the text input handle the key
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}
