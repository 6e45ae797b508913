package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

// promptModal asks for a single line of text. Confirming closes it and
// emits the message built by submit.
type promptModal struct {
	title  string
	hint   string
	input  textinput.Model
	submit func(value string) tea.Msg
}

func newPrompt(title, hint, value string, submit func(string) tea.Msg) *promptModal {
	ti := textinput.New()
	ti.CharLimit = 4096
	ti.Prompt = "> "
	ti.SetValue(value)
	ti.CursorEnd()
	ti.Focus()
	return &promptModal{title: title, hint: hint, input: ti, submit: submit}
}

func (p *promptModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Confirm):
			value := strings.TrimSpace(p.input.Value())
			if value == "" {
				return p, nil, true
			}
			submit := p.submit
			return p, func() tea.Msg { return submit(value) }, true
		case key.Matches(msg, keys.Escape):
			return p, nil, true
		}
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd, false
}

func (p *promptModal) View(theme Theme, width, _ int) string {
	styles := theme.Styles()
	p.input.Width = max(width-12, 10)

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(p.title))
	b.WriteString("\n\n")
	b.WriteString(p.input.View())
	if p.hint != "" {
		b.WriteString("\n\n")
		b.WriteString(styles.FaintText.Render(p.hint))
	}
	return b.String()
}
