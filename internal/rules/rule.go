// Package rules holds the ordered highlight rules that classify log lines
// and the scanner that turns them into presentation tokens.
//
// A rule's priority is its position in the Set: the first rule wins a line
// matched by several rules.
package rules

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/five82/logview/internal/presentation"
)

// Rule colors every line its pattern matches.
type Rule struct {
	Name       string `toml:"name"`
	Pattern    string `toml:"pattern"`
	IgnoreCase bool   `toml:"ignore_case,omitempty"`
	Class      string `toml:"class,omitempty"`
	Foreground string `toml:"foreground,omitempty"`
	Background string `toml:"background,omitempty"`
	Bold       bool   `toml:"bold,omitempty"`
	Italic     bool   `toml:"italic,omitempty"`
	Underline  bool   `toml:"underline,omitempty"`
	Strikeout  bool   `toml:"strikeout,omitempty"`

	re    *regexp.Regexp
	style presentation.Style
}

// Style returns the resolved style. It is the zero Style until the rule has
// been added to a Set.
func (r Rule) Style() presentation.Style {
	return r.style
}

// compile resolves the pattern and style of r against p.
func (r *Rule) compile(p Palette) error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("rule name is empty")
	}
	pattern := r.Pattern
	if r.IgnoreCase {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("rule %q: invalid pattern: %w", r.Name, err)
	}

	style, err := p.Class(r.Class)
	if err != nil {
		return fmt.Errorf("rule %q: %w", r.Name, err)
	}
	if r.Foreground, err = NormalizeColor(r.Foreground); err != nil {
		return fmt.Errorf("rule %q: foreground: %w", r.Name, err)
	}
	if r.Background, err = NormalizeColor(r.Background); err != nil {
		return fmt.Errorf("rule %q: background: %w", r.Name, err)
	}
	if r.Foreground != "" {
		style.Foreground = r.Foreground
	}
	if r.Background != "" {
		style.Background = r.Background
	}
	for _, attr := range []struct {
		on   bool
		flag presentation.Attr
	}{
		{r.Bold, presentation.AttrBold},
		{r.Italic, presentation.AttrItalic},
		{r.Underline, presentation.AttrUnderline},
		{r.Strikeout, presentation.AttrStrikeout},
	} {
		if attr.on {
			style.Attrs |= attr.flag
		}
	}

	r.re = re
	r.style = style
	return nil
}

// Set is an ordered list of compiled rules.
type Set struct {
	palette Palette
	rules   []Rule
}

// NewSet compiles rules against palette. Rule names must be unique.
func NewSet(palette Palette, rules []Rule) (*Set, error) {
	s := &Set{palette: palette, rules: make([]Rule, 0, len(rules))}
	for _, r := range rules {
		if s.Find(r.Name) >= 0 {
			return nil, fmt.Errorf("rule %q: duplicate name", r.Name)
		}
		if err := r.compile(palette); err != nil {
			return nil, err
		}
		s.rules = append(s.rules, r)
	}
	return s, nil
}

// Len returns the number of rules.
func (s *Set) Len() int {
	return len(s.rules)
}

// At returns the rule at position i.
func (s *Set) At(i int) Rule {
	return s.rules[i]
}

// Rules returns a copy of the rules in priority order.
func (s *Set) Rules() []Rule {
	return slices.Clone(s.rules)
}

// Palette returns the palette the rules were compiled against.
func (s *Set) Palette() Palette {
	return s.palette
}

// Find returns the position of the named rule or -1.
func (s *Set) Find(name string) int {
	return slices.IndexFunc(s.rules, func(r Rule) bool { return r.Name == name })
}

// MoveUp raises the priority of the rule at i by swapping it with its
// predecessor and returns its new position.
func (s *Set) MoveUp(i int) int {
	if i <= 0 || i >= len(s.rules) {
		return i
	}
	s.rules[i-1], s.rules[i] = s.rules[i], s.rules[i-1]
	return i - 1
}

// MoveDown lowers the priority of the rule at i and returns its new position.
func (s *Set) MoveDown(i int) int {
	if i < 0 || i >= len(s.rules)-1 {
		return i
	}
	s.rules[i+1], s.rules[i] = s.rules[i], s.rules[i+1]
	return i + 1
}

// Restyle recompiles every rule against p.
func (s *Set) Restyle(p Palette) error {
	next, err := NewSet(p, s.rules)
	if err != nil {
		return err
	}
	*s = *next
	return nil
}

// DefaultRules returns the built-in rules used when no rules file exists.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "error", Pattern: `\b(ERROR|ERR|FATAL|CRITICAL|PANIC|SEVERE)\b`, Class: "error", Bold: true},
		{Name: "warning", Pattern: `\b(WARN|WARNING)\b`, Class: "warning"},
		{Name: "exception", Pattern: `^\s+at \S+\(|\w+(Exception|Error):|^Traceback \(most recent call last\)`, Class: "error"},
		{Name: "success", Pattern: `\b(success(ful|fully)?|completed|passed)\b`, IgnoreCase: true, Class: "success"},
		{Name: "info", Pattern: `\bINFO\b`, Class: "info"},
		{Name: "debug", Pattern: `\bDEBUG\b`, Class: "debug"},
		{Name: "trace", Pattern: `\bTRACE\b`, Class: "trace"},
	}
}

// DefaultSet compiles DefaultRules against palette.
func DefaultSet(palette Palette) *Set {
	s, err := NewSet(palette, DefaultRules())
	if err != nil {
		panic(fmt.Sprintf("rules: default rules do not compile: %v", err))
	}
	return s
}
