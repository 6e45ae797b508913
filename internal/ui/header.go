package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// flashDuration is how long a transient message stays in the command bar.
const flashDuration = 5 * time.Second

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	// Header line 1: logo + file tabs
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	// Header line 2: command bar
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")

	// Main content
	b.WriteString(m.renderLogs())

	return b.String()
}

// renderHeader renders the logo and one tab per open file.
func (m Model) renderHeader() string {
	// Header uses Surface background
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	parts := []string{bg.Render("logview", styles.Logo)}
	if len(m.views) == 0 {
		parts = append(parts, bg.Render("no files", styles.MutedText))
	}
	for i, v := range m.views {
		label := fmt.Sprintf("%d:%s", i+1, truncateMiddle(v.title(), 24))
		var tab string
		switch {
		case i == m.active:
			tab = styles.Selected.Bold(true).Render(" " + label + " ")
		default:
			tab = bg.Render(label, styles.MutedText)
		}
		if v.lastError != nil {
			tab += bg.Render("!", styles.DangerText)
		}
		parts = append(parts, tab)
	}

	content := bg.Join(parts, "  ")
	return styles.Header.Width(m.width).Render(ansi.Truncate(content, max(m.width-2, 0), "…"))
}

// renderCommandBar renders the command hints bar.
func (m Model) renderCommandBar() string {
	// Command bar uses Surface background
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	commands := []cmd{
		{"o", "Open"},
	}
	if v := m.activeView(); v != nil {
		followLabel := "Pause"
		if !v.follow {
			followLabel = "Follow"
		}
		commands = append(commands,
			cmd{"Space", followLabel},
			cmd{"/", "Search"},
			cmd{"n/N", "Next/Prev"},
			cmd{"y/Y", "Copy"},
			cmd{"E", "Encoding"},
			cmd{"x", "Close"},
		)
	}
	commands = append(commands,
		cmd{"r", "Rules"},
		cmd{"?", "More"},
	)

	colon := bg.Sep(":")
	sep := bg.Spaces(2)

	segments := make([]string, 0, len(commands)+2)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	if m.flashText != "" && time.Since(m.flashAt) < flashDuration {
		segments = append(segments, bg.Render(truncate(m.flashText, 60), styles.WarningText))
	}

	// Add theme indicator
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	content := strings.Join(segments, sep)
	return styles.Header.Width(m.width).Render(ansi.Truncate(content, max(m.width-2, 0), "…"))
}

// renderLogs renders the active file in a titled box with its status bar.
func (m Model) renderLogs() string {
	// Logs view is always focused when shown, so use FocusBg
	bg := NewBgStyle(m.theme.FocusBg)
	styles := m.theme.Styles()
	contentHeight := m.height - HeaderRows - StatusRows

	v := m.activeView()
	if v == nil {
		empty := bg.FillLine(bg.Render("No files open. Press o to open a log file.", styles.MutedText), max(m.width-2, 0))
		return m.renderTitledBox("logview", empty, m.width, contentHeight, true)
	}

	box := m.renderTitledBox(truncateMiddle(v.path, max(m.width-8, 8)), v.viewport.View(), m.width, contentHeight, true)
	return box + "\n" + m.renderLogStatus(v, styles, bg)
}

// renderLogStatus renders the status bar of a file view.
func (m Model) renderLogStatus(v *fileView, styles Styles, bg BgStyle) string {
	if m.searchActive {
		return bg.FillLine(bg.Render("search: ", styles.AccentText)+m.searchInput.View(), m.width)
	}

	// If we have an active search with matches, show search status instead
	if v.searchRegex != nil && len(v.searchMatches) > 0 {
		return bg.FillLine(bg.Render(fmt.Sprintf("/%s", v.searchQuery), styles.AccentText)+
			bg.Render(" - ", styles.FaintText)+
			bg.Render(fmt.Sprintf("%d/%d", v.searchMatchIdx+1, len(v.searchMatches)), styles.WarningText)+
			bg.Render(" - Press ", styles.FaintText)+
			bg.Render("n", styles.AccentText)+
			bg.Render(" for next, ", styles.FaintText)+
			bg.Render("N", styles.AccentText)+
			bg.Render(" for previous, ", styles.FaintText)+
			bg.Render("Esc", styles.AccentText)+
			bg.Render(" to clear", styles.FaintText), m.width)
	}

	// If search regex exists but no matches
	if v.searchRegex != nil {
		return bg.FillLine(bg.Render("Pattern not found: "+v.searchQuery, styles.DangerText), m.width)
	}

	follow := "off"
	if v.follow {
		follow = "on"
	}
	parts := []string{
		bg.Render(fmt.Sprintf("%d lines", v.lineCount()), styles.FaintText),
		bg.Render(v.encoding, styles.FaintText),
		bg.Render("follow "+follow, styles.FaintText),
	}
	if v.trimmedLines > 0 {
		parts = append(parts, bg.Render(fmt.Sprintf("%d lines dropped", v.trimmedLines), styles.MutedText))
	}
	if v.lastError != nil {
		parts = append(parts, bg.Render(v.lastError.Error(), styles.DangerText))
	}

	// Join with styled bullet separator
	sep := bg.Space() + bg.Render("•", styles.FaintText) + bg.Space()
	return bg.FillLine(ansi.Truncate(strings.Join(parts, sep), m.width, "…"), m.width)
}

// renderTitledBox draws content inside a border with the title embedded in
// the top edge.
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	var borderColorStr, bgColorStr string
	if focused {
		borderColorStr = m.theme.BorderFocus
		bgColorStr = m.theme.FocusBg
	} else {
		borderColorStr = m.theme.Border
		bgColorStr = m.theme.SurfaceAlt
	}
	bg := NewBgStyle(bgColorStr)
	borderColor := lipgloss.Color(borderColorStr)
	bgColor := lipgloss.Color(bgColorStr)
	borderStyle := lipgloss.NewStyle().Foreground(borderColor)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	// Build the top border with embedded title
	innerWidth := max(width-2, 0) // Account for left and right border chars
	title = truncateMiddle(title, max(innerWidth-4, 0))
	titleLen := lipgloss.Width(title)
	leftPad := max((innerWidth-titleLen-2)/2, 0) // -2 for spaces around title
	rightPad := max(innerWidth-titleLen-2-leftPad, 0)

	topBorder := bg.Render("┌", borderStyle) +
		bg.Render(strings.Repeat("─", leftPad), borderStyle) +
		titleStyle.Background(bgColor).Render(" "+title+" ") +
		bg.Render(strings.Repeat("─", rightPad), borderStyle) +
		bg.Render("┐", borderStyle)

	// Build the bottom border
	bottomBorder := bg.Render("└", borderStyle) +
		bg.Render(strings.Repeat("─", innerWidth), borderStyle) +
		bg.Render("┘", borderStyle)

	// Style for side borders and content background
	contentStyle := lipgloss.NewStyle().Width(innerWidth).MaxWidth(innerWidth).Background(bgColor)

	contentLines := strings.Split(content, "\n")
	boxHeight := max(height-2, 0) // -2 for top and bottom borders

	// Pad or truncate content lines
	paddedLines := make([]string, 0, boxHeight)
	for i := 0; i < boxHeight; i++ {
		var line string
		if i < len(contentLines) {
			line = contentLines[i]
		}
		paddedLines = append(paddedLines,
			bg.Render("│", borderStyle)+
				contentStyle.Render(line)+
				bg.Render("│", borderStyle))
	}

	return topBorder + "\n" + strings.Join(paddedLines, "\n") + "\n" + bottomBorder
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

// truncateMiddle truncates a string in the middle, preserving start and end.
func truncateMiddle(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	if max <= 5 {
		return s[:max]
	}
	// Keep more of the end (file name) than the start
	endLen := (max - 3) * 2 / 3
	startLen := max - 3 - endLen
	return s[:startLen] + "..." + s[len(s)-endLen:]
}
