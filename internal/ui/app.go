package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/logview/internal/logtail"
	"github.com/five82/logview/internal/prefs"
	"github.com/five82/logview/internal/rules"
	"github.com/five82/logview/internal/state"
)

// FileController opens, closes and re-decodes files on behalf of the UI.
type FileController interface {
	Follow(path, encoding string) bool
	Unfollow(path string)
	SetEncoding(path, encoding string) bool
}

// storeFiles opens files in the store without reading them. It serves when
// no follower is attached.
type storeFiles struct{ store *state.Store }

func (s storeFiles) Follow(path, encoding string) bool { return s.store.Open(path, encoding) }
func (s storeFiles) Unfollow(path string)              { s.store.Close(path) }
func (s storeFiles) SetEncoding(path, encoding string) bool {
	return s.store.SetEncoding(path, encoding)
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Store     *state.Store
	Files     FileController
	Rules     *rules.Set
	RulesPath string
	Logger    *slog.Logger
	Encoding  string
	PollTick  time.Duration
	ThemeName string
	PrefsPath string
	// Clipboard receives copied text; nil uses the system clipboard.
	Clipboard func(string) error
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	store     *state.Store
	files     FileController
	rules     *rules.Set
	rulesPath string
	scanner   *rules.Scanner
	logger    *slog.Logger
	encoding  string
	prefsPath string
	pollTick  time.Duration
	clipboard func(string) error
	keys      keyMap

	// UI state
	theme  Theme
	width  int
	height int
	ready  bool

	// Data state
	views       []*fileView
	active      int
	activate    string // path to select once it shows up in a snapshot
	lastUpdated time.Time

	// Search prompt
	searchActive bool
	searchInput  textinput.Model

	// Overlays
	modal    Modal
	showHelp bool

	// Transient message in the command bar
	flashText string
	flashAt   time.Time
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick == 0 {
		pollTick = DefaultUIInterval
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Nightfox"
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	copyText := opts.Clipboard
	if copyText == nil {
		copyText = clipboard.WriteAll
	}

	files := opts.Files
	if files == nil && opts.Store != nil {
		files = storeFiles{opts.Store}
	}

	ruleSet := opts.Rules
	if ruleSet == nil {
		palette, _ := rules.NewPalette("")
		ruleSet = rules.DefaultSet(palette)
	}

	ti := textinput.New()
	ti.Placeholder = "Search (regex)..."
	ti.CharLimit = 200

	return Model{
		ctx:         ctx,
		store:       opts.Store,
		files:       files,
		rules:       ruleSet,
		rulesPath:   opts.RulesPath,
		scanner:     rules.NewScanner(ruleSet),
		logger:      logger,
		encoding:    opts.Encoding,
		prefsPath:   prefsPath,
		pollTick:    pollTick,
		clipboard:   copyText,
		keys:        DefaultKeyMap(),
		theme:       GetTheme(themeName),
		searchInput: ti,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tickCmd(m.pollTick),
	}
	// Fetch snapshot immediately on start
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.refreshView()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.applySnapshot(state.Snapshot(msg))
		return m, nil

	case openFileMsg:
		return m.openFile(msg.path)

	case setEncodingMsg:
		return m.setEncoding(msg.path, msg.name)

	case rulesChangedMsg:
		m.rulesChanged()
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.flash("copy failed: " + msg.err.Error())
		} else {
			m.flash(fmt.Sprintf("copied %s", msg.what))
		}
		return m, nil
	}

	// Cursor blinks and similar belong to the open prompt
	if m.modal != nil {
		var cmd tea.Cmd
		m.modal, cmd, _ = m.modal.Update(msg, m.keys)
		return m, cmd
	}
	if m.searchActive {
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	// Show help overlay if active
	if m.showHelp {
		return m.renderHelp()
	}

	if m.modal != nil {
		width := min(72, max(m.width-4, 20))
		return m.renderModal(m.modal.View(m.theme, width, m.height), width+6)
	}

	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle help overlay
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.modal != nil {
		var cmd tea.Cmd
		var closed bool
		m.modal, cmd, closed = m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		}
		return m, cmd
	}

	if m.searchActive {
		return m.handleSearchInput(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.savePrefs()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		m.refreshView()
		return m, nil

	case key.Matches(msg, m.keys.NextFile):
		if len(m.views) > 0 {
			m.active = (m.active + 1) % len(m.views)
			m.refreshView()
		}
		return m, nil

	case key.Matches(msg, m.keys.PrevFile):
		if len(m.views) > 0 {
			m.active = (m.active - 1 + len(m.views)) % len(m.views)
			m.refreshView()
		}
		return m, nil

	case key.Matches(msg, m.keys.Open):
		m.modal = newPrompt("Open log file", "Missing files are followed until they appear.", "",
			func(path string) tea.Msg { return openFileMsg{path: path} })
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Rules):
		m.modal = newRulesModal(m.rules)
		return m, nil

	case key.Matches(msg, m.keys.CloseAll):
		if m.files == nil {
			return m, nil
		}
		for _, v := range m.views {
			m.files.Unfollow(v.path)
		}
		m.views = nil
		m.active = 0
		return m, nil
	}

	return m.handleFileKey(msg)
}

// handleFileKey processes keys acting on the active file.
func (m Model) handleFileKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := m.activeView()
	if v == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Close):
		m.files.Unfollow(v.path)
		m.views = append(m.views[:m.active:m.active], m.views[m.active+1:]...)
		m.active = min(m.active, max(len(m.views)-1, 0))
		m.refreshView()
		return m, nil

	case key.Matches(msg, m.keys.Encoding):
		path := v.path
		m.modal = newPrompt("Encoding for "+v.title(), "e.g. utf-8, latin1, windows-1252, utf-16le, shift_jis", v.encoding,
			func(name string) tea.Msg { return setEncodingMsg{path: path, name: name} })
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Copy):
		n := min(v.viewport.Height, max(v.lineCount()-v.viewport.YOffset, 0))
		return m, copyCmd(m.clipboard, v.visibleText(), fmt.Sprintf("%d lines", n))

	case key.Matches(msg, m.keys.CopyAll):
		return m, copyCmd(m.clipboard, v.doc.Get(), v.title())

	case key.Matches(msg, m.keys.ToggleFollow):
		v.follow = !v.follow
		if v.follow {
			v.viewport.GotoBottom()
		}

	case key.Matches(msg, m.keys.Search):
		m.searchActive = true
		m.searchInput.SetValue("")
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.NextMatch):
		v.nextSearchMatch()

	case key.Matches(msg, m.keys.PrevMatch):
		v.previousSearchMatch()

	case key.Matches(msg, m.keys.Escape):
		if v.searchRegex != nil {
			v.clearSearch()
		}

	case key.Matches(msg, m.keys.Top):
		v.viewport.GotoTop()
		v.follow = false

	case key.Matches(msg, m.keys.Bottom):
		v.viewport.GotoBottom()
		v.follow = true

	case key.Matches(msg, m.keys.Down):
		v.viewport.ScrollDown(1)
		v.follow = v.viewport.AtBottom()

	case key.Matches(msg, m.keys.Up):
		v.viewport.ScrollUp(1)
		v.follow = false

	case key.Matches(msg, m.keys.HalfPageDown):
		v.viewport.HalfPageDown()
		v.follow = v.viewport.AtBottom()

	case key.Matches(msg, m.keys.HalfPageUp):
		v.viewport.HalfPageUp()
		v.follow = false

	case key.Matches(msg, m.keys.PageDown):
		v.viewport.PageDown()
		v.follow = v.viewport.AtBottom()

	case key.Matches(msg, m.keys.PageUp):
		v.viewport.PageUp()
		v.follow = false

	default:
		return m, nil
	}

	m.refreshView()
	return m, nil
}

// handleTick processes the polling tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{tickCmd(m.pollTick)}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return m, tea.Batch(cmds...)
}

// applySnapshot mirrors the store into the file views. Views follow the
// store's order; files closed elsewhere disappear.
func (m *Model) applySnapshot(snap state.Snapshot) {
	m.lastUpdated = time.Now()

	byPath := make(map[string]*fileView, len(m.views))
	for _, v := range m.views {
		byPath[v.path] = v
	}
	var current string
	if v := m.activeView(); v != nil {
		current = v.path
	}

	views := make([]*fileView, 0, len(snap.Files))
	for _, f := range snap.Files {
		v, ok := byPath[f.Path]
		if !ok {
			var err error
			v, err = newFileView(f.Path, m.scanner, m.logger.With(slog.String("path", f.Path)))
			if err != nil {
				m.logger.Error("cannot show file", "path", f.Path, "error", err)
				continue
			}
		}
		v.sync(f)
		views = append(views, v)
	}
	m.views = views

	m.active = 0
	for i, v := range m.views {
		if v.path == current {
			m.active = i
		}
	}
	for i, v := range m.views {
		if v.path == m.activate {
			m.active = i
			m.activate = ""
		}
	}
	m.refreshView()
}

// activeView returns the selected file view, or nil when no file is open.
func (m Model) activeView() *fileView {
	if m.active < 0 || m.active >= len(m.views) {
		return nil
	}
	return m.views[m.active]
}

// refreshView sizes and renders the active view.
func (m *Model) refreshView() {
	v := m.activeView()
	if v == nil || !m.ready {
		return
	}
	// Box inner = box height - 2 (top and bottom borders)
	v.resize(max(m.width-2, 1), max(m.height-HeaderRows-StatusRows-2, 1))
	v.render(m.theme)
}

// openFile starts following path and selects it.
func (m Model) openFile(path string) (tea.Model, tea.Cmd) {
	if m.files == nil {
		return m, nil
	}
	abs, err := expandPath(path)
	if err != nil {
		m.flash(err.Error())
		return m, nil
	}
	info, err := os.Stat(abs)
	switch {
	case err == nil && info.IsDir():
		m.flash(abs + " is a directory")
		return m, nil
	case errors.Is(err, os.ErrNotExist):
		m.flash("waiting for " + abs)
	case err != nil:
		m.flash(err.Error())
		return m, nil
	}

	if !m.files.Follow(abs, m.encoding) {
		m.flash(filepath.Base(abs) + " is already open")
	}
	m.activate = abs
	return m, fetchSnapshotCmd(m.store)
}

// setEncoding rereads path with the named encoding.
func (m Model) setEncoding(path, name string) (tea.Model, tea.Cmd) {
	if m.files == nil {
		return m, nil
	}
	_, canonical, err := logtail.LookupEncoding(name)
	if err != nil {
		m.flash(err.Error())
		return m, nil
	}
	if m.files.SetEncoding(path, canonical) {
		m.flash(filepath.Base(path) + " decoded as " + canonical)
	}
	return m, fetchSnapshotCmd(m.store)
}

// rulesChanged persists the rule order and restyles every open file.
func (m *Model) rulesChanged() {
	if m.rulesPath != "" {
		if err := rules.Save(m.rulesPath, m.rules); err != nil {
			m.logger.Error("saving rules failed", "error", err)
			m.flash("saving rules failed: " + err.Error())
		}
	}
	for _, v := range m.views {
		v.restyle()
	}
	m.refreshView()
}

// savePrefs records the theme and the open files.
func (m Model) savePrefs() {
	p := prefs.Prefs{Theme: m.theme.Name}
	for _, v := range m.views {
		p.Files = append(p.Files, v.path)
	}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.logger.Warn("saving preferences failed", "error", err)
	}
}

func (m *Model) flash(text string) {
	m.flashText = text
	m.flashAt = time.Now()
}

func expandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Abs(path)
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type openFileMsg struct{ path string }

type setEncodingMsg struct{ path, name string }

type copiedMsg struct {
	what string
	err  error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func copyCmd(copyText func(string) error, text, what string) tea.Cmd {
	return func() tea.Msg {
		return copiedMsg{what: what, err: copyText(text)}
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
