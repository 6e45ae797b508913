package text

import "fmt"

// DefaultContentType tags every partition of a log document.
const DefaultContentType = "__log_line"

// Region is a half-open span [Offset, Offset+Length) of document characters.
type Region struct {
	Offset int
	Length int
}

// End returns the exclusive end offset.
func (r Region) End() int {
	return r.Offset + r.Length
}

// Contains reports whether off lies inside the region.
func (r Region) Contains(off int) bool {
	return off >= r.Offset && off < r.End()
}

// Overlaps reports whether two regions share at least one character.
func (r Region) Overlaps(other Region) bool {
	return r.Offset < other.End() && other.Offset < r.End()
}

// Intersect returns the common part of two regions. The result has zero
// length when they do not overlap.
func (r Region) Intersect(other Region) Region {
	start := max(r.Offset, other.Offset)
	end := min(r.End(), other.End())
	if end < start {
		return Region{Offset: start}
	}
	return Region{Offset: start, Length: end - start}
}

// Union returns the smallest region covering both regions.
func (r Region) Union(other Region) Region {
	start := min(r.Offset, other.Offset)
	end := max(r.End(), other.End())
	return Region{Offset: start, Length: end - start}
}

func (r Region) String() string {
	return fmt.Sprintf("[%d,%d)", r.Offset, r.End())
}

// Partition is a typed region the presentation layer styles in one pass.
type Partition struct {
	Region
	Type string
}

// EditEvent describes one document mutation. Length is the number of
// characters removed at Offset and Text the replacement. NoText marks an
// event whose replacement text is unknown; damage computation then falls
// back to the removed length.
type EditEvent struct {
	Offset int
	Length int
	Text   string
	NoText bool
}

// InsertedLength returns the span the edit occupies after it was applied.
func (e EditEvent) InsertedLength() int {
	if e.NoText {
		return e.Length
	}
	return len(e.Text)
}
