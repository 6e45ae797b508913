package presentation

import (
	"slices"

	"github.com/five82/logview/internal/text"
)

// Presentation collects the styled ranges computed for an extent of a
// document. Ranges keep the order they were added in; a later range drawn
// over the same characters wins.
type Presentation struct {
	extent text.Region
	ranges []StyledRange
}

// NewPresentation returns an empty presentation for extent.
func NewPresentation(extent text.Region) *Presentation {
	return &Presentation{extent: extent}
}

// Extent returns the document region the presentation covers.
func (p *Presentation) Extent() text.Region {
	return p.extent
}

// Len implements Sink.
func (p *Presentation) Len() int {
	return len(p.ranges)
}

// AddStyledRange implements Sink.
func (p *Presentation) AddStyledRange(r StyledRange) {
	p.ranges = append(p.ranges, r)
}

// Ranges returns a copy of the collected ranges in insertion order.
func (p *Presentation) Ranges() []StyledRange {
	return slices.Clone(p.ranges)
}
