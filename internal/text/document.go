// Package text holds the mutable log document and its line and partition
// queries. Offsets are byte offsets into the decoded UTF-8 content.
package text

import (
	"errors"
	"fmt"
	"sort"
)

// ErrBadLocation is returned for offsets or line numbers that are invalid in
// the current document state.
var ErrBadLocation = errors.New("bad location")

type lineInfo struct {
	offset int
	length int // excludes the delimiter
	delim  int
}

func (l lineInfo) total() int {
	return l.length + l.delim
}

// Document is a line-indexed text buffer. It is not safe for concurrent use;
// the UI goroutine owns it.
type Document struct {
	content string
	lines   []lineInfo
}

// New creates a document holding content.
func New(content string) *Document {
	d := &Document{content: content}
	d.rebuild(0)
	return d
}

// Get returns the full content.
func (d *Document) Get() string {
	return d.content
}

// GetRange returns length characters starting at offset.
func (d *Document) GetRange(offset, length int) (string, error) {
	if offset < 0 || length < 0 || offset+length > len(d.content) {
		return "", fmt.Errorf("range %d+%d: %w", offset, length, ErrBadLocation)
	}
	return d.content[offset : offset+length], nil
}

// Length returns the number of characters in the document.
func (d *Document) Length() int {
	return len(d.content)
}

// NumberOfLines returns the line count. A document with k delimiters has
// k+1 lines, so a trailing delimiter produces an empty last line.
func (d *Document) NumberOfLines() int {
	return len(d.lines)
}

// LineOfOffset returns the line containing offset. Offsets inside a
// delimiter belong to the line the delimiter terminates.
func (d *Document) LineOfOffset(offset int) (int, error) {
	if offset < 0 || offset > len(d.content) {
		return 0, fmt.Errorf("offset %d: %w", offset, ErrBadLocation)
	}
	idx := sort.Search(len(d.lines), func(i int) bool {
		return d.lines[i].offset > offset
	})
	return idx - 1, nil
}

// LineInformation returns the region of line without its delimiter.
func (d *Document) LineInformation(line int) (Region, error) {
	info, err := d.line(line)
	if err != nil {
		return Region{}, err
	}
	return Region{Offset: info.offset, Length: info.length}, nil
}

// LineInformationOfOffset returns the region, without delimiter, of the line
// containing offset.
func (d *Document) LineInformationOfOffset(offset int) (Region, error) {
	line, err := d.LineOfOffset(offset)
	if err != nil {
		return Region{}, err
	}
	return d.LineInformation(line)
}

// LineOffset returns the offset of the first character of line.
func (d *Document) LineOffset(line int) (int, error) {
	info, err := d.line(line)
	if err != nil {
		return 0, err
	}
	return info.offset, nil
}

// LineLength returns the length of line including its delimiter.
func (d *Document) LineLength(line int) (int, error) {
	info, err := d.line(line)
	if err != nil {
		return 0, err
	}
	return info.total(), nil
}

// LineDelimiter returns the delimiter terminating line, or "" for the last line.
func (d *Document) LineDelimiter(line int) (string, error) {
	info, err := d.line(line)
	if err != nil {
		return "", err
	}
	start := info.offset + info.length
	return d.content[start : start+info.delim], nil
}

func (d *Document) line(line int) (lineInfo, error) {
	if line < 0 || line >= len(d.lines) {
		return lineInfo{}, fmt.Errorf("line %d: %w", line, ErrBadLocation)
	}
	return d.lines[line], nil
}

// Replace substitutes length characters at offset with s and returns the
// event describing the change.
func (d *Document) Replace(offset, length int, s string) (EditEvent, error) {
	if offset < 0 || length < 0 || offset+length > len(d.content) {
		return EditEvent{}, fmt.Errorf("replace %d+%d: %w", offset, length, ErrBadLocation)
	}
	first, err := d.LineOfOffset(offset)
	if err != nil {
		return EditEvent{}, err
	}
	// A lone "\r" on the previous line may pair with an inserted "\n".
	if first > 0 {
		first--
	}
	d.content = d.content[:offset] + s + d.content[offset+length:]
	d.rebuild(first)
	return EditEvent{Offset: offset, Length: length, Text: s}, nil
}

// Set replaces the whole content.
func (d *Document) Set(s string) EditEvent {
	ev, _ := d.Replace(0, len(d.content), s)
	return ev
}

// Append adds s at the end of the document.
func (d *Document) Append(s string) EditEvent {
	ev, _ := d.Replace(len(d.content), 0, s)
	return ev
}

// rebuild recomputes the line table from line first onward.
func (d *Document) rebuild(first int) {
	start := 0
	if first > 0 && first < len(d.lines) {
		start = d.lines[first].offset
		d.lines = d.lines[:first]
	} else {
		d.lines = d.lines[:0]
	}

	lineStart := start
	for i := start; i < len(d.content); i++ {
		switch d.content[i] {
		case '\n':
			d.lines = append(d.lines, lineInfo{offset: lineStart, length: i - lineStart, delim: 1})
			lineStart = i + 1
		case '\r':
			delim := 1
			if i+1 < len(d.content) && d.content[i+1] == '\n' {
				delim = 2
			}
			d.lines = append(d.lines, lineInfo{offset: lineStart, length: i - lineStart, delim: delim})
			i += delim - 1
			lineStart = i + 1
		}
	}
	d.lines = append(d.lines, lineInfo{offset: lineStart, length: len(d.content) - lineStart})
}

// PartitionAt returns the line partition containing offset. The end of the
// document belongs to the last non-empty line.
func (d *Document) PartitionAt(offset int) (Partition, error) {
	line, err := d.LineOfOffset(offset)
	if err != nil {
		return Partition{}, err
	}
	info := d.lines[line]
	if info.total() == 0 && line > 0 {
		info = d.lines[line-1]
	}
	return Partition{
		Region: Region{Offset: info.offset, Length: info.total()},
		Type:   DefaultContentType,
	}, nil
}

// Partitions returns the line partitions overlapping r in document order.
// An empty r yields the partition containing its offset.
func (d *Document) Partitions(r Region) []Partition {
	if r.Length == 0 {
		p, err := d.PartitionAt(r.Offset)
		if err != nil || p.Length == 0 {
			return nil
		}
		return []Partition{p}
	}
	first, err := d.LineOfOffset(max(r.Offset, 0))
	if err != nil {
		return nil
	}
	var parts []Partition
	for i := first; i < len(d.lines); i++ {
		info := d.lines[i]
		if info.offset >= r.End() {
			break
		}
		span := Region{Offset: info.offset, Length: info.total()}
		if span.Length == 0 || !span.Overlaps(r) {
			continue
		}
		parts = append(parts, Partition{Region: span, Type: DefaultContentType})
	}
	return parts
}
