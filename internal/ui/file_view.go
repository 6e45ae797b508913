package ui

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/five82/logview/internal/presentation"
	"github.com/five82/logview/internal/state"
	"github.com/five82/logview/internal/text"
)

// cachedLine is the rendered body of one document line.
type cachedLine struct {
	body string
	ok   bool
}

// fileView is one open file: its document, the reconciler keeping the
// document's styles current, and the viewport showing it.
type fileView struct {
	path     string
	encoding string
	doc      *text.Document
	rec      *presentation.Reconciler
	logger   *slog.Logger

	// What the document mirrors from the store.
	generation   int
	trimmed      int
	trimmedLines int
	lastError    error

	viewport      viewport.Model
	follow        bool
	pendingOffset int // applied once the content is rendered
	hasPending    bool

	// Search
	searchQuery    string
	searchRegex    *regexp.Regexp
	searchMatches  []int // Line indices that match
	searchMatchIdx int   // Current match index

	// Rendered lines, invalidated by the regions the reconciler reports.
	cache       []cachedLine
	cacheWidth  int
	cacheTheme  string
	contentDirt bool
}

func newFileView(path string, scanner presentation.Scanner, logger *slog.Logger) (*fileView, error) {
	repairer, err := presentation.NewDamageRepairer(scanner, logger)
	if err != nil {
		return nil, fmt.Errorf("create repairer: %w", err)
	}
	doc := text.New("")
	rec := presentation.NewReconciler(doc, repairer)
	rec.Install()

	return &fileView{
		path:        path,
		doc:         doc,
		rec:         rec,
		logger:      logger,
		generation:  -1,
		follow:      true,
		viewport:    viewport.New(0, 0),
		contentDirt: true,
	}, nil
}

// title returns the tab label.
func (v *fileView) title() string {
	return filepath.Base(v.path)
}

// sync brings the document in line with f and reports whether it changed.
// Content replaced under a new generation is installed from scratch; a
// content window that lost lines at the front and gained text at the end is
// applied as two edits, so only the damaged lines are presented again.
func (v *fileView) sync(f state.File) bool {
	v.encoding = f.Encoding
	if (f.LastError == nil) != (v.lastError == nil) {
		v.contentDirt = true
	}
	v.lastError = f.LastError

	if f.Generation != v.generation {
		v.doc.Set(f.Content)
		v.rec.Install()
		v.generation = f.Generation
		v.trimmed = f.Trimmed
		v.trimmedLines = 0
		v.cache = nil
		v.refreshSearch()
		v.contentDirt = true
		return true
	}

	if f.Trimmed == v.trimmed && len(f.Content) == v.doc.Length() {
		return false
	}

	changed := false
	if d := f.Trimmed - v.trimmed; d > 0 && d <= v.doc.Length() {
		lines, err := v.doc.LineOfOffset(d)
		if err != nil {
			lines = 0
		}
		ev, err := v.doc.Replace(0, d, "")
		if err != nil {
			v.logger.Warn("trim failed", "path", v.path, "error", err)
			return v.reload(f)
		}
		damage := v.rec.DocumentChanged(ev)
		v.cache = v.cache[min(lines, len(v.cache)):]
		v.invalidate(damage)
		v.trimmed = f.Trimmed
		v.trimmedLines += lines
		changed = true
	}

	switch n := v.doc.Length(); {
	case len(f.Content) < n || !sameTail(f.Content[:n], v.doc.Get()):
		return v.reload(f)
	case len(f.Content) > n:
		ev := v.doc.Append(f.Content[n:])
		damage := v.rec.DocumentChanged(ev)
		v.invalidate(damage)
		changed = true
	}

	if changed {
		v.refreshSearch()
		v.contentDirt = true
	}
	return changed
}

// sameTail compares the last bytes of a and b, which have equal length.
func sameTail(a, b string) bool {
	k := max(len(a)-64, 0)
	return a[k:] == b[k:]
}

// reload installs f from scratch when the document no longer mirrors it.
func (v *fileView) reload(f state.File) bool {
	v.generation = -1
	return v.sync(f)
}

// invalidate drops cached lines overlapping damage. Lines from the start of
// damage onward are dropped together, as appends only ever damage the tail.
func (v *fileView) invalidate(damage text.Region) {
	first, err := v.doc.LineOfOffset(min(damage.Offset, v.doc.Length()))
	if err != nil {
		v.cache = nil
		return
	}
	last, err := v.doc.LineOfOffset(min(damage.End(), v.doc.Length()))
	if err != nil {
		last = v.doc.NumberOfLines() - 1
	}
	for i := first; i <= last && i < len(v.cache); i++ {
		v.cache[i].ok = false
	}
	if n := v.doc.NumberOfLines(); len(v.cache) > n {
		v.cache = v.cache[:n]
	}
}

// restyle re-presents the whole document, e.g. after the rules changed.
func (v *fileView) restyle() {
	v.rec.Invalidate()
	v.cache = nil
	v.contentDirt = true
}

// lineCount returns the number of displayed lines. A trailing delimiter
// does not open a visible empty line.
func (v *fileView) lineCount() int {
	n := v.doc.NumberOfLines()
	if n > 1 {
		if info, err := v.doc.LineInformation(n - 1); err == nil && info.Length == 0 {
			n--
		}
	}
	if n == 1 && v.doc.Length() == 0 {
		return 0
	}
	return n
}

// visibleText returns the lines currently in the viewport.
func (v *fileView) visibleText() string {
	start := v.viewport.YOffset
	end := min(start+v.viewport.Height, v.lineCount())
	lines := make([]string, 0, max(end-start, 0))
	for i := start; i < end; i++ {
		lines = append(lines, lineText(v.doc, i))
	}
	return strings.Join(lines, "\n")
}

// resize updates the viewport dimensions.
func (v *fileView) resize(width, height int) {
	if v.viewport.Width == width && v.viewport.Height == height {
		return
	}
	v.viewport.Width = width
	v.viewport.Height = height
	v.contentDirt = true
}

// render refreshes the viewport content when anything it shows changed.
func (v *fileView) render(theme Theme) {
	if theme.Name != v.cacheTheme {
		v.cache = nil
		v.cacheTheme = theme.Name
		v.contentDirt = true
	}
	v.viewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(theme.FocusBg))
	if v.contentDirt {
		v.viewport.SetContent(v.renderContent(theme))
		v.contentDirt = false
		if v.follow {
			v.viewport.GotoBottom()
		}
	}
	if v.hasPending {
		v.viewport.SetYOffset(v.pendingOffset)
		v.hasPending = false
	}
}

// renderContent renders every line with a line-number gutter and search
// highlighting.
func (v *fileView) renderContent(theme Theme) string {
	bg := NewBgStyle(theme.FocusBg)
	styles := theme.Styles()
	width := v.viewport.Width

	count := v.lineCount()
	if count == 0 {
		msg := "Empty file, waiting for lines"
		if v.lastError != nil {
			msg = "Cannot read file: " + v.lastError.Error()
		}
		return bg.FillLine(bg.Render(msg, styles.MutedText), width)
	}

	// Build a set of matching line indices for quick lookup
	matchSet := make(map[int]bool, len(v.searchMatches))
	for _, idx := range v.searchMatches {
		matchSet[idx] = true
	}
	activeMatchLine := -1
	if len(v.searchMatches) > 0 && v.searchMatchIdx < len(v.searchMatches) {
		activeMatchLine = v.searchMatches[v.searchMatchIdx]
	}

	gutterWidth := len(fmt.Sprint(v.trimmedLines+count)) + 3
	bodyWidth := max(width-gutterWidth, 1)
	if bodyWidth != v.cacheWidth {
		v.cache = nil
		v.cacheWidth = bodyWidth
	}
	if len(v.cache) < count {
		v.cache = append(v.cache, make([]cachedLine, count-len(v.cache))...)
	}

	var b strings.Builder
	for i := range count {
		gutter := fmt.Sprintf("%*d │ ", gutterWidth-3, v.trimmedLines+i+1)

		var line string
		switch {
		case i == activeMatchLine:
			// Active match: highlighted background
			hl := lipgloss.NewStyle().
				Background(lipgloss.Color(theme.Warning)).
				Foreground(lipgloss.Color(theme.Background))
			line = hl.Render(gutter) + hl.Render(ansi.Truncate(expandTabs(lineText(v.doc, i)), bodyWidth, "…"))
		case matchSet[i]:
			// Passive match: accent gutter
			line = bg.Render(gutter, styles.AccentText) + v.body(i, theme, bodyWidth)
		default:
			line = bg.Render(gutter, styles.FaintText) + v.body(i, theme, bodyWidth)
		}

		b.WriteString(bg.FillLine(line, width))
		if i < count-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (v *fileView) body(line int, theme Theme, width int) string {
	c := &v.cache[line]
	if !c.ok {
		c.body = renderStyledLine(v.doc, v.rec, line, theme, width)
		c.ok = true
	}
	return c.body
}
