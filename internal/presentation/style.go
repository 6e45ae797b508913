package presentation

// Attr is a set of text attributes carried by a Style.
type Attr uint8

const (
	AttrBold Attr = 1 << iota
	AttrItalic
	AttrStrikeout
	AttrUnderline
)

// Style describes how a run of text is drawn. Colors are "#rrggbb" or empty
// when unset. The zero value is the default, unstyled descriptor; two styles
// are equal iff all fields match.
type Style struct {
	Foreground string
	Background string
	Attrs      Attr
}

// IsDefault reports whether s is the unstyled descriptor.
func (s Style) IsDefault() bool {
	return s == Style{}
}

// FontStyle packs the bold and italic bits of a StyledRange.
type FontStyle uint8

const (
	FontNormal FontStyle = 0
	FontBold   FontStyle = FontStyle(AttrBold)
	FontItalic FontStyle = FontStyle(AttrItalic)
)

// StyledRange is the unit written into a presentation.
type StyledRange struct {
	Offset     int
	Length     int
	Foreground string
	Background string
	FontStyle  FontStyle
	Strikeout  bool
	Underline  bool
}

// NewStyledRange derives the range drawn for style over [offset, offset+length).
func NewStyledRange(offset, length int, style Style) StyledRange {
	return StyledRange{
		Offset:     offset,
		Length:     length,
		Foreground: style.Foreground,
		Background: style.Background,
		FontStyle:  FontStyle(style.Attrs & (AttrBold | AttrItalic)),
		Strikeout:  style.Attrs&AttrStrikeout != 0,
		Underline:  style.Attrs&AttrUnderline != 0,
	}
}

// End returns the exclusive end offset.
func (r StyledRange) End() int {
	return r.Offset + r.Length
}

// Style returns the descriptor the range was derived from.
func (r StyledRange) Style() Style {
	attrs := Attr(r.FontStyle) & (AttrBold | AttrItalic)
	if r.Strikeout {
		attrs |= AttrStrikeout
	}
	if r.Underline {
		attrs |= AttrUnderline
	}
	return Style{Foreground: r.Foreground, Background: r.Background, Attrs: attrs}
}
