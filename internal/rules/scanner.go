package rules

import (
	"iter"
	"slices"

	"github.com/five82/logview/internal/presentation"
	"github.com/five82/logview/internal/text"
)

// Scanner classifies whole lines with the rules of a Set. It implements
// presentation.Scanner.
type Scanner struct {
	set *Set
}

// NewScanner returns a scanner over set. Reordering set takes effect on the
// next scan.
func NewScanner(set *Set) *Scanner {
	return &Scanner{set: set}
}

type match struct {
	col  int
	rule int
}

// Tokens emits, for every line overlapping region, one token covering the
// line and its delimiter (clipped to region) per matching rule. Tokens of a
// line are ordered by the column of the first match, then by rule position.
// A line no rule matches yields a single token without data.
func (s *Scanner) Tokens(doc presentation.Document, region text.Region) iter.Seq[presentation.Token] {
	return func(yield func(presentation.Token) bool) {
		line, err := doc.LineOfOffset(region.Offset)
		if err != nil {
			return
		}
		var matches []match
		for ; ; line++ {
			offset, err := doc.LineOffset(line)
			if err != nil || offset >= region.End() && region.Length > 0 {
				return
			}
			total, err := doc.LineLength(line)
			if err != nil || total == 0 {
				return
			}
			span := text.Region{Offset: offset, Length: total}.Intersect(region)
			if span.Length > 0 {
				info, err := doc.LineInformation(line)
				if err != nil {
					return
				}
				content, err := doc.GetRange(info.Offset, info.Length)
				if err != nil {
					return
				}

				matches = s.match(content, matches[:0])
				if len(matches) == 0 {
					if !yield(presentation.Token{Offset: span.Offset, Length: span.Length}) {
						return
					}
				}
				for _, m := range matches {
					data := &presentation.TokenData{Style: s.set.rules[m.rule].style, Priority: m.rule}
					if !yield(presentation.Token{Offset: span.Offset, Length: span.Length, Data: data}) {
						return
					}
				}
			}
			if region.Length == 0 {
				return
			}
		}
	}
}

func (s *Scanner) match(content string, out []match) []match {
	for i, r := range s.set.rules {
		if loc := r.re.FindStringIndex(content); loc != nil {
			out = append(out, match{col: loc[0], rule: i})
		}
	}
	slices.SortStableFunc(out, func(a, b match) int {
		return a.col - b.col
	})
	return out
}
