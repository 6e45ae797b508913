package rules

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/five82/logview/internal/presentation"
)

// DefaultPalette is used when the configuration names none.
const DefaultPalette = "dracula"

// ErrUnknownClass is returned for a rule class the palette cannot resolve.
var ErrUnknownClass = errors.New("unknown class")

// classTokens maps rule classes onto chroma token types, so any chroma style
// can color log levels.
var classTokens = map[string]chroma.TokenType{
	"error":   chroma.GenericDeleted,
	"warning": chroma.LiteralNumber,
	"info":    chroma.NameFunction,
	"debug":   chroma.Comment,
	"trace":   chroma.CommentPreproc,
	"success": chroma.GenericInserted,
	"accent":  chroma.Keyword,
}

// Classes returns the class names a palette resolves, sorted.
func Classes() []string {
	names := make([]string, 0, len(classTokens))
	for name := range classTokens {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Palette resolves rule classes to styles through a chroma style.
type Palette struct {
	name  string
	style *chroma.Style
}

// NewPalette looks up a chroma style by name. An empty name selects
// DefaultPalette.
func NewPalette(name string) (Palette, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = DefaultPalette
	}
	style, ok := styles.Registry[name]
	if !ok {
		return Palette{}, fmt.Errorf("unknown palette %q", name)
	}
	return Palette{name: name, style: style}, nil
}

// Name returns the chroma style name.
func (p Palette) Name() string {
	return p.name
}

// Class returns the style for class. The empty class is unstyled.
func (p Palette) Class(class string) (presentation.Style, error) {
	if class == "" {
		return presentation.Style{}, nil
	}
	tt, ok := classTokens[class]
	if !ok {
		return presentation.Style{}, fmt.Errorf("%w %q", ErrUnknownClass, class)
	}
	if p.style == nil {
		p.style = styles.Fallback
	}

	entry := p.style.Get(tt)
	var s presentation.Style
	if entry.Colour.IsSet() {
		s.Foreground = entry.Colour.String()
	}
	if entry.Bold == chroma.Yes {
		s.Attrs |= presentation.AttrBold
	}
	if entry.Italic == chroma.Yes {
		s.Attrs |= presentation.AttrItalic
	}
	if entry.Underline == chroma.Yes {
		s.Attrs |= presentation.AttrUnderline
	}
	return s, nil
}

// NormalizeColor validates a color and returns it as #rrggbb. The empty
// string stays empty.
func NormalizeColor(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	if !strings.HasPrefix(value, "#") {
		value = "#" + value
	}
	c, err := colorful.Hex(value)
	if err != nil {
		return "", fmt.Errorf("invalid color %q: %w", value, err)
	}
	return c.Hex(), nil
}
