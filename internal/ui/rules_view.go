package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/five82/logview/internal/rules"
)

// rulesChangedMsg reports that the rule order changed.
type rulesChangedMsg struct{}

// rulesModal lists the highlight rules in priority order and lets the user
// move the selected rule up or down.
type rulesModal struct {
	set      *rules.Set
	selected int
}

func newRulesModal(set *rules.Set) *rulesModal {
	return &rulesModal{set: set}
}

func (r *rulesModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return r, nil, false
	}
	if key.Matches(keyMsg, keys.Escape) || key.Matches(keyMsg, keys.Rules) {
		return r, nil, true
	}
	if r.set.Len() == 0 {
		return r, nil, false
	}

	moved := func(next int) tea.Cmd {
		if next == r.selected {
			return nil
		}
		r.selected = next
		return func() tea.Msg { return rulesChangedMsg{} }
	}

	switch {
	case key.Matches(keyMsg, keys.MoveRuleUp):
		return r, moved(r.set.MoveUp(r.selected)), false
	case key.Matches(keyMsg, keys.MoveRuleDown):
		return r, moved(r.set.MoveDown(r.selected)), false
	case key.Matches(keyMsg, keys.Up):
		r.selected = max(r.selected-1, 0)
	case key.Matches(keyMsg, keys.Down):
		r.selected = min(r.selected+1, r.set.Len()-1)
	case key.Matches(keyMsg, keys.Top):
		r.selected = 0
	case key.Matches(keyMsg, keys.Bottom):
		r.selected = r.set.Len() - 1
	}
	return r, nil, false
}

func (r *rulesModal) View(theme Theme, width, _ int) string {
	styles := theme.Styles()
	inner := max(width-6, 20)

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Highlight Rules"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(fmt.Sprintf("palette %s, first rule wins", r.set.Palette().Name())))
	b.WriteString("\n\n")

	if r.set.Len() == 0 {
		b.WriteString(styles.MutedText.Render("No rules defined"))
		return b.String()
	}

	for i, rule := range r.set.Rules() {
		name := fmt.Sprintf("%2d %-10s", i+1, rule.Name)
		pattern := ansi.Truncate(rule.Pattern, max(inner-len(name)-1, 4), "…")
		var line string
		if i == r.selected {
			line = styles.Selected.Render(name + " " + pattern)
		} else {
			line = rangeStyle(rule.Style(), theme).Render(name) + " " + styles.MutedText.Render(pattern)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("j/k select • K/J move • esc close"))
	return b.String()
}
