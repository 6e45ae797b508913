package presentation

import (
	"errors"
	"io"
	"iter"
	"log/slog"

	"github.com/five82/logview/internal/text"
)

// DamageRepairer computes the region an edit damages and rebuilds the styled
// ranges of a region from the tokens of a Scanner. Runs are always widened
// to the line containing their start before they are committed.
type DamageRepairer struct {
	scanner Scanner
	logger  *slog.Logger
	doc     Document
	pending pendingRanges
}

// NewDamageRepairer creates a repairer classifying text with scanner. A nil
// logger discards output.
func NewDamageRepairer(scanner Scanner, logger *slog.Logger) (*DamageRepairer, error) {
	if scanner == nil {
		return nil, errors.New("presentation: scanner is required")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &DamageRepairer{scanner: scanner, logger: logger}, nil
}

// SetDocument sets the document subsequent calls operate on.
func (d *DamageRepairer) SetDocument(doc Document) {
	d.doc = doc
}

// DamageRegion returns the part of partition whose presentation must be
// recomputed after ev. When partitioning changed, or a position lookup
// fails, the whole partition is damaged.
func (d *DamageRepairer) DamageRegion(partition text.Partition, ev text.EditEvent, partitioningChanged bool) text.Region {
	if partitioningChanged || d.doc == nil {
		return partition.Region
	}
	damage, err := d.damage(partition.Region, ev)
	if err != nil {
		d.logger.Info("unable to find location in document to repair a given region",
			"partition", partition.Region.String(),
			"offset", ev.Offset,
			"error", err)
		return partition.Region
	}
	return damage
}

func (d *DamageRepairer) damage(partition text.Region, ev text.EditEvent) (text.Region, error) {
	info, err := d.doc.LineInformationOfOffset(ev.Offset)
	if err != nil {
		return text.Region{}, err
	}
	start := max(partition.Offset, info.Offset)

	end := ev.Offset + ev.InsertedLength()
	if info.Offset <= end && end <= info.End() {
		// single-line edit
		end = info.End()
	} else {
		end, err = d.endOfLineOf(end)
		if err != nil {
			return text.Region{}, err
		}
	}

	end = min(partition.End(), end)
	return text.Region{Offset: start, Length: end - start}, nil
}

// endOfLineOf returns the end offset of the line containing offset, or of the
// following line when offset lies inside a line delimiter.
func (d *DamageRepairer) endOfLineOf(offset int) (int, error) {
	info, err := d.doc.LineInformationOfOffset(offset)
	if err != nil {
		return 0, err
	}
	if offset <= info.End() {
		return info.End(), nil
	}

	line, err := d.doc.LineOfOffset(offset)
	if err != nil {
		return 0, err
	}
	next, err := d.doc.LineInformation(line + 1)
	if err != nil {
		return d.doc.Length(), nil
	}
	return next.End(), nil
}

// run is a sequence of adjacent tokens sharing one style.
type run struct {
	offset   int
	length   int
	style    Style
	priority int
}

// runs merges the tokens of region into runs. The last run is always
// yielded, even when the scanner produced no token at all.
func (d *DamageRepairer) runs(region text.Region) iter.Seq[run] {
	return func(yield func(run) bool) {
		current := run{offset: region.Offset}
		first := true

		for tok := range d.scanner.Tokens(d.doc, region) {
			style, priority := tok.resolve()
			if style == current.style {
				current.length += tok.Length
				first = false
				continue
			}
			if !first && !yield(current) {
				return
			}
			first = false
			current = run{offset: tok.Offset, length: tok.Length, style: style, priority: priority}
		}
		yield(current)
	}
}

// CreatePresentation rebuilds the styled ranges of region into sink.
func (d *DamageRepairer) CreatePresentation(sink Sink, region text.Region) {
	if d.doc == nil {
		return
	}
	for r := range d.runs(region) {
		d.addRange(sink, r)
	}
}

// addRange widens r to its line and commits it when it wins its slot.
func (d *DamageRepairer) addRange(sink Sink, r run) {
	offset, length := r.offset, r.length
	if line, err := d.doc.LineOfOffset(offset); err == nil {
		start, errStart := d.doc.LineOffset(line)
		lineLength, errLength := d.doc.LineLength(line)
		if errStart == nil && errLength == nil {
			offset, length = start, lineLength
		}
	}

	if !d.pending.admit(sink, slot{offset: offset, length: length}, r.priority) {
		return
	}
	sink.AddStyledRange(NewStyledRange(offset, length, r.style))
}
