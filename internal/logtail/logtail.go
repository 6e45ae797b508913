package logtail

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultEncoding is assumed for files without an explicit encoding.
const DefaultEncoding = "utf-8"

// maxChunk bounds a single Follow read.
const maxChunk = 4 << 20

// Chunk is decoded text read from a log file.
type Chunk struct {
	Text string
	// Next is the file offset the following read starts at. Bytes of an
	// incomplete trailing character are left for that read.
	Next int64
	// Reset reports that the file shrank; Text replaces everything read
	// before.
	Reset bool
}

// LookupEncoding resolves an encoding label such as "latin1" or "utf-16le"
// and returns the encoding with its canonical name.
func LookupEncoding(name string) (encoding.Encoding, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultEncoding
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, "", fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	canonical, err := htmlindex.Name(enc)
	if err != nil {
		canonical = strings.ToLower(name)
	}
	return enc, canonical, nil
}

// Tail returns the last maxLines lines of the file at path, delimiters
// included. maxLines <= 0 reads the whole file. A missing file yields an
// empty chunk.
func Tail(path string, maxLines int, enc encoding.Encoding) (Chunk, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Chunk{}, nil
		}
		return Chunk{}, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	var raw []byte
	var size int64
	if maxLines <= 0 {
		raw, err = io.ReadAll(file)
		if err != nil {
			return Chunk{}, fmt.Errorf("read log: %w", err)
		}
		size = int64(len(raw))
	} else {
		raw, size, err = lastLines(file, maxLines)
		if err != nil {
			return Chunk{}, err
		}
	}

	text, n, err := decode(enc, raw)
	if err != nil {
		return Chunk{}, err
	}
	return Chunk{Text: text, Next: size - int64(len(raw)-n)}, nil
}

// lastLines keeps the last maxLines lines in a ring while scanning the file
// once. It returns them joined and the number of bytes read.
func lastLines(r io.Reader, maxLines int) ([]byte, int64, error) {
	ring := make([][]byte, maxLines)
	reader := bufio.NewReaderSize(r, 64*1024)
	var size int64
	count := 0
	idx := 0
	for {
		line, err := reader.ReadBytes('\n')
		if len(line) > 0 {
			ring[idx] = line
			idx = (idx + 1) % maxLines
			if count < maxLines {
				count++
			}
			size += int64(len(line))
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("read log: %w", err)
		}
	}

	parts := make([][]byte, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			parts[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(parts, ring[:count])
	}
	return bytes.Join(parts, nil), size, nil
}

// Follow reads what was appended to the file at path since offset. When the
// file is shorter than offset it was truncated or replaced, and Follow
// returns a fresh Tail with Reset set. A missing file reads as unchanged.
func Follow(path string, offset int64, maxLines int, enc encoding.Encoding) (Chunk, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Chunk{Next: offset}, nil
		}
		return Chunk{}, fmt.Errorf("stat log: %w", err)
	}
	if info.Size() < offset {
		chunk, err := Tail(path, maxLines, enc)
		chunk.Reset = true
		return chunk, err
	}
	if info.Size() == offset {
		return Chunk{Next: offset}, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return Chunk{}, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return Chunk{}, fmt.Errorf("seek log: %w", err)
	}
	raw, err := io.ReadAll(io.LimitReader(file, min(info.Size()-offset, maxChunk)))
	if err != nil {
		return Chunk{}, fmt.Errorf("read log: %w", err)
	}

	text, n, err := decode(enc, raw)
	if err != nil {
		return Chunk{}, err
	}
	return Chunk{Text: text, Next: offset + int64(n)}, nil
}

// decode converts src to UTF-8 and reports how many bytes it consumed. An
// incomplete character at the end of src is not consumed; undecodable bytes
// followed by a line delimiter, or by enough bytes to complete any character,
// are.
func decode(enc encoding.Encoding, src []byte) (string, int, error) {
	if enc == nil {
		enc = unicode.UTF8
	}
	t := enc.NewDecoder()

	var out strings.Builder
	dst := make([]byte, 32*1024)
	consumed := 0
	for consumed < len(src) {
		nDst, nSrc, err := t.Transform(dst, src[consumed:], false)
		out.Write(dst[:nDst])
		consumed += nSrc
		switch {
		case err == nil, errors.Is(err, transform.ErrShortDst):
		case errors.Is(err, transform.ErrShortSrc):
			k := settled(src[consumed:])
			if k == 0 {
				return out.String(), consumed, nil
			}
			nDst, nSrc, err := t.Transform(dst, src[consumed:consumed+k], true)
			if err != nil && !errors.Is(err, transform.ErrShortDst) {
				return "", 0, fmt.Errorf("decode log: %w", err)
			}
			out.Write(dst[:nDst])
			if nSrc == 0 {
				return out.String(), consumed, nil
			}
			consumed += nSrc
		default:
			return "", 0, fmt.Errorf("decode log: %w", err)
		}
	}
	return out.String(), consumed, nil
}

// settled returns how many leading bytes of rest, which a decoder refused as
// a short source, can never become part of a valid character. It is zero
// when rest may still be the start of one.
func settled(rest []byte) int {
	if i := bytes.IndexAny(rest, "\r\n"); i > 0 {
		return i
	}
	if len(rest) >= utf8.UTFMax {
		return utf8.UTFMax
	}
	return 0
}
