package ui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/five82/logview/internal/presentation"
	"github.com/five82/logview/internal/text"
)

// renderStyledLine draws the content of one document line with the styles
// the reconciler holds for it. The result is cut to width cells.
func renderStyledLine(doc *text.Document, rec *presentation.Reconciler, line int, theme Theme, width int) string {
	info, err := doc.LineInformation(line)
	if err != nil || info.Length == 0 {
		return ""
	}
	content, err := doc.GetRange(info.Offset, info.Length)
	if err != nil {
		return ""
	}

	plain := rangeStyle(presentation.Style{}, theme)
	var b strings.Builder
	pos := info.Offset
	for _, sr := range rec.StylesIn(info) {
		if sr.Offset > pos {
			b.WriteString(plain.Render(expandTabs(content[pos-info.Offset : sr.Offset-info.Offset])))
		}
		b.WriteString(rangeStyle(sr.Style(), theme).Render(expandTabs(content[sr.Offset-info.Offset : sr.End()-info.Offset])))
		pos = sr.End()
	}
	if pos < info.End() {
		b.WriteString(plain.Render(expandTabs(content[pos-info.Offset:])))
	}
	return ansi.Truncate(b.String(), width, "…")
}

// lineText returns the content of line without its delimiter.
func lineText(doc *text.Document, line int) string {
	info, err := doc.LineInformation(line)
	if err != nil {
		return ""
	}
	s, _ := doc.GetRange(info.Offset, info.Length)
	return s
}
