package presentation

import (
	"slices"
	"sort"
	"strings"

	"github.com/five82/logview/internal/text"
)

// Reconciler keeps the styled ranges of a whole document current as the
// document changes. It asks the DamageRepairer for the damage of each edit
// and re-presents only the partitions inside it.
type Reconciler struct {
	doc      *text.Document
	repairer *DamageRepairer
	ranges   []StyledRange // sorted by offset; insertion order kept for equal offsets
	maxLen   int
	lines    int
}

// NewReconciler binds repairer to doc.
func NewReconciler(doc *text.Document, repairer *DamageRepairer) *Reconciler {
	repairer.SetDocument(doc)
	return &Reconciler{doc: doc, repairer: repairer}
}

// Install presents the whole document from scratch and returns the region
// that was presented.
func (r *Reconciler) Install() text.Region {
	r.ranges = nil
	r.maxLen = 0
	r.lines = r.doc.NumberOfLines()
	return r.present(text.Region{Length: r.doc.Length()})
}

// Invalidate re-presents the whole document, e.g. after the highlight rules
// changed.
func (r *Reconciler) Invalidate() text.Region {
	return r.Install()
}

// DocumentChanged updates the presentation after ev was applied to the
// document and returns the region that was re-presented.
func (r *Reconciler) DocumentChanged(ev text.EditEvent) text.Region {
	lines := r.doc.NumberOfLines()
	partitioningChanged := lines != r.lines || strings.ContainsAny(ev.Text, "\r\n")
	r.lines = lines

	affected := text.Region{Offset: ev.Offset, Length: ev.InsertedLength()}
	touched, dropped := r.shift(ev)
	if dropped {
		affected = affected.Union(touched)
	}

	var damage text.Region
	found := false
	for _, p := range r.doc.Partitions(affected) {
		d := r.repairer.DamageRegion(p, ev, partitioningChanged)
		if !found {
			damage, found = d, true
			continue
		}
		damage = damage.Union(d)
	}
	if !found {
		return text.Region{Offset: ev.Offset}
	}
	// lines whose cached ranges were dropped must be presented again even
	// when the edit left their partition in place
	if dropped {
		damage = damage.Union(touched)
	}
	return r.present(damage)
}

// shift moves cached ranges behind the edit and drops the ones it touched.
// It returns the span, in post-edit offsets, the dropped ranges covered.
func (r *Reconciler) shift(ev text.EditEvent) (text.Region, bool) {
	oldEnd := ev.Offset + ev.Length
	newEnd := ev.Offset + ev.InsertedLength()
	delta := newEnd - oldEnd

	var touched text.Region
	dropped := false
	kept := r.ranges[:0]
	for _, sr := range r.ranges {
		switch {
		case sr.End() <= ev.Offset:
		case sr.Offset >= oldEnd:
			sr.Offset += delta
		default:
			start, end := min(sr.Offset, ev.Offset), newEnd
			if sr.End() > oldEnd {
				end = sr.End() + delta
			}
			span := text.Region{Offset: start, Length: end - start}
			if dropped {
				touched = touched.Union(span)
			} else {
				touched, dropped = span, true
			}
			continue
		}
		kept = append(kept, sr)
	}
	r.ranges = kept
	return touched, dropped
}

// present rebuilds the partitions overlapping damage and returns the extent
// that was replaced.
func (r *Reconciler) present(damage text.Region) text.Region {
	parts := r.doc.Partitions(damage)
	if len(parts) == 0 {
		r.dropOverlapping(damage)
		return damage
	}
	extent := parts[0].Region.Union(parts[len(parts)-1].Region)
	r.dropOverlapping(extent)

	pres := NewPresentation(extent)
	for _, p := range parts {
		r.repairer.CreatePresentation(pres, p.Region)
	}
	r.merge(pres.Ranges())
	return extent
}

func (r *Reconciler) dropOverlapping(extent text.Region) {
	r.ranges = slices.DeleteFunc(r.ranges, func(sr StyledRange) bool {
		span := text.Region{Offset: sr.Offset, Length: sr.Length}
		return span.Overlaps(extent)
	})
	r.maxLen = 0
	for _, sr := range r.ranges {
		r.maxLen = max(r.maxLen, sr.Length)
	}
}

func (r *Reconciler) merge(added []StyledRange) {
	for _, sr := range added {
		if sr.Length == 0 {
			continue
		}
		r.ranges = append(r.ranges, sr)
		r.maxLen = max(r.maxLen, sr.Length)
	}
	slices.SortStableFunc(r.ranges, func(a, b StyledRange) int {
		return a.Offset - b.Offset
	})
}

// Ranges returns a copy of all cached ranges, or nil when there are none.
func (r *Reconciler) Ranges() []StyledRange {
	if len(r.ranges) == 0 {
		return nil
	}
	return slices.Clone(r.ranges)
}

// StylesIn returns the effective, non-overlapping styled segments inside
// region. Where cached ranges overlap, the one stored later wins. Segments
// with the default style are omitted.
func (r *Reconciler) StylesIn(region text.Region) []StyledRange {
	if region.Length <= 0 {
		return nil
	}
	lo := sort.Search(len(r.ranges), func(i int) bool {
		return r.ranges[i].Offset > region.Offset-r.maxLen
	})

	var hits []StyledRange
	bounds := []int{region.Offset, region.End()}
	for _, sr := range r.ranges[lo:] {
		if sr.Offset >= region.End() {
			break
		}
		span := text.Region{Offset: sr.Offset, Length: sr.Length}.Intersect(region)
		if span.Length == 0 {
			continue
		}
		hits = append(hits, sr)
		bounds = append(bounds, span.Offset, span.End())
	}
	if len(hits) == 0 {
		return nil
	}
	slices.Sort(bounds)
	bounds = slices.Compact(bounds)

	var out []StyledRange
	for i := 0; i+1 < len(bounds); i++ {
		start, end := bounds[i], bounds[i+1]
		var top *StyledRange
		for j := range hits {
			if hits[j].Offset <= start && start < hits[j].End() {
				top = &hits[j]
			}
		}
		if top == nil || top.Style().IsDefault() {
			continue
		}
		if n := len(out); n > 0 && out[n-1].End() == start && out[n-1].Style() == top.Style() {
			out[n-1].Length += end - start
			continue
		}
		out = append(out, NewStyledRange(start, end-start, top.Style()))
	}
	return out
}
