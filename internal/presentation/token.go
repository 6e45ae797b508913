package presentation

import (
	"iter"

	"github.com/five82/logview/internal/text"
)

// Document is the read-only view of a document the presentation layer needs.
// Every lookup fails with an error wrapping text.ErrBadLocation when the
// offset or line is invalid for the current content.
type Document interface {
	LineInformationOfOffset(offset int) (text.Region, error)
	LineOfOffset(offset int) (int, error)
	LineInformation(line int) (text.Region, error)
	LineOffset(line int) (int, error)
	// LineLength includes the line delimiter.
	LineLength(line int) (int, error)
	Length() int
	GetRange(offset, length int) (string, error)
}

// TokenData is the style information a classifier attaches to a token.
// Lower Priority values win.
type TokenData struct {
	Style    Style
	Priority int
}

// Token is one classified span. A nil Data means the span carries no style
// and is drawn with the default descriptor at priority 0.
type Token struct {
	Offset int
	Length int
	Data   *TokenData
}

func (t Token) resolve() (Style, int) {
	if t.Data == nil {
		return Style{}, 0
	}
	return t.Data.Style, t.Data.Priority
}

// Scanner classifies the text of a region into tokens. The returned sequence
// is lazy, finite and is consumed at most once.
type Scanner interface {
	Tokens(doc Document, region text.Region) iter.Seq[Token]
}

// ScannerFunc adapts a function to the Scanner interface.
type ScannerFunc func(doc Document, region text.Region) iter.Seq[Token]

func (f ScannerFunc) Tokens(doc Document, region text.Region) iter.Seq[Token] {
	return f(doc, region)
}

// Sink receives the styled ranges of a presentation pass.
type Sink interface {
	// Len returns the number of ranges added so far.
	Len() int
	AddStyledRange(r StyledRange)
}
