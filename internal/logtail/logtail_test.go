package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeLog(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test log file: %v", err)
	}
}

func appendLog(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open for append: %v", err)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("append: %v", err)
	}
}

func TestTail(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	var content strings.Builder
	var lines []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d\n", i)
		content.WriteString(line)
		lines = append(lines, line)
	}
	writeLog(t, logPath, content.String())

	tests := []struct {
		name     string
		maxLines int
		expected string
	}{
		{name: "read all (0)", maxLines: 0, expected: content.String()},
		{name: "read all (negative)", maxLines: -1, expected: content.String()},
		{name: "read partial (5)", maxLines: 5, expected: strings.Join(lines[5:], "")},
		{name: "read exactly all (10)", maxLines: 10, expected: content.String()},
		{name: "read more than exists (20)", maxLines: 20, expected: content.String()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Tail(logPath, tt.maxLines, nil)
			if err != nil {
				t.Fatalf("Tail() error = %v", err)
			}
			if got.Text != tt.expected {
				t.Errorf("Tail() = %q, want %q", got.Text, tt.expected)
			}
			if got.Next != int64(content.Len()) {
				t.Errorf("Next = %d, want %d", got.Next, content.Len())
			}
		})
	}
}

func TestTailKeepsDelimiters(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "crlf.log")
	writeLog(t, logPath, "a\r\nb\r\nc")

	got, err := Tail(logPath, 2, nil)
	if err != nil {
		t.Fatalf("Tail() error = %v", err)
	}
	if got.Text != "b\r\nc" {
		t.Fatalf("Tail() = %q, want %q", got.Text, "b\r\nc")
	}
}

func TestTailMissingFile(t *testing.T) {
	got, err := Tail(filepath.Join(t.TempDir(), "missing.log"), 10, nil)
	if err != nil {
		t.Fatalf("Tail() error = %v", err)
	}
	if got != (Chunk{}) {
		t.Fatalf("Tail() = %+v, want empty chunk", got)
	}
}

func TestFollow(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "follow.log")
	writeLog(t, logPath, "one\n")

	first, err := Tail(logPath, 100, nil)
	if err != nil {
		t.Fatalf("Tail() error = %v", err)
	}

	same, err := Follow(logPath, first.Next, 100, nil)
	if err != nil {
		t.Fatalf("Follow() error = %v", err)
	}
	if same.Text != "" || same.Next != first.Next {
		t.Fatalf("unchanged file: got %+v", same)
	}

	appendLog(t, logPath, "two\nthr")
	next, err := Follow(logPath, first.Next, 100, nil)
	if err != nil {
		t.Fatalf("Follow() error = %v", err)
	}
	if next.Text != "two\nthr" || next.Next != 11 || next.Reset {
		t.Fatalf("Follow() = %+v", next)
	}
}

func TestFollowHoldsBackSplitRune(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "utf8.log")
	euro := "€" // three bytes
	writeLog(t, logPath, "x"+euro[:1])

	got, err := Follow(logPath, 0, 100, nil)
	if err != nil {
		t.Fatalf("Follow() error = %v", err)
	}
	if got.Text != "x" || got.Next != 1 {
		t.Fatalf("split rune: got %+v", got)
	}

	appendLog(t, logPath, euro[1:]+"\n")
	got, err = Follow(logPath, got.Next, 100, nil)
	if err != nil {
		t.Fatalf("Follow() error = %v", err)
	}
	if got.Text != euro+"\n" || got.Next != 5 {
		t.Fatalf("completed rune: got %+v", got)
	}
}

func TestInvalidByteBeforeDelimiterIsConsumed(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "latin.log")
	writeLog(t, logPath, "ok\nERROR caf\xe9\n")

	got, err := Tail(logPath, 0, nil)
	if err != nil {
		t.Fatalf("Tail() error = %v", err)
	}
	if got.Text != "ok\nERROR caf\uFFFD\n" || got.Next != 14 {
		t.Fatalf("Tail() = %+v", got)
	}

	got, err = Follow(logPath, 3, 100, nil)
	if err != nil {
		t.Fatalf("Follow() error = %v", err)
	}
	if got.Text != "ERROR caf\uFFFD\n" || got.Next != 14 {
		t.Fatalf("Follow() = %+v", got)
	}
}

func TestDecodeHoldsBackOnlyIncompleteTail(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantText string
		wantN    int
	}{
		{name: "split rune", src: "a\xe2\x82", wantText: "a", wantN: 1},
		{name: "invalid then CR", src: "a\xe9\r", wantText: "a\uFFFD\r", wantN: 3},
		{name: "invalid then CRLF", src: "a\xe2\x82\r\nb", wantText: "a\uFFFD\r\nb", wantN: 6},
		{name: "valid", src: "caf\u00e9\n", wantText: "caf\u00e9\n", wantN: 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, n, err := decode(nil, []byte(tt.src))
			if err != nil {
				t.Fatalf("decode() error = %v", err)
			}
			if text != tt.wantText || n != tt.wantN {
				t.Fatalf("decode(%q) = %q, %d; want %q, %d", tt.src, text, n, tt.wantText, tt.wantN)
			}
		})
	}
}

func TestFollowDetectsTruncation(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "rotate.log")
	writeLog(t, logPath, "old line one\nold line two\n")

	writeLog(t, logPath, "new\n")
	got, err := Follow(logPath, 26, 100, nil)
	if err != nil {
		t.Fatalf("Follow() error = %v", err)
	}
	if !got.Reset || got.Text != "new\n" || got.Next != 4 {
		t.Fatalf("Follow() = %+v, want reset to new content", got)
	}
}

func TestFollowMissingFileIsUnchanged(t *testing.T) {
	got, err := Follow(filepath.Join(t.TempDir(), "gone.log"), 42, 100, nil)
	if err != nil {
		t.Fatalf("Follow() error = %v", err)
	}
	if got.Next != 42 || got.Reset {
		t.Fatalf("Follow() = %+v", got)
	}
}

func TestLookupEncoding(t *testing.T) {
	tests := []struct {
		label     string
		canonical string
		wantErr   bool
	}{
		{label: "", canonical: "utf-8"},
		{label: "UTF8", canonical: "utf-8"},
		{label: "latin1", canonical: "windows-1252"},
		{label: "shift_jis", canonical: "shift_jis"},
		{label: "klingon", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			_, name, err := LookupEncoding(tt.label)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("LookupEncoding(%q) expected error", tt.label)
				}
				return
			}
			if err != nil {
				t.Fatalf("LookupEncoding(%q) error = %v", tt.label, err)
			}
			if name != tt.canonical {
				t.Errorf("LookupEncoding(%q) = %q, want %q", tt.label, name, tt.canonical)
			}
		})
	}
}

func TestTailDecodesLegacyEncoding(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "latin1.log")
	writeLog(t, logPath, "caf\xe9 ERROR\n")

	enc, _, err := LookupEncoding("latin1")
	if err != nil {
		t.Fatalf("LookupEncoding: %v", err)
	}
	got, err := Tail(logPath, 10, enc)
	if err != nil {
		t.Fatalf("Tail() error = %v", err)
	}
	if got.Text != "café ERROR\n" || got.Next != 11 {
		t.Fatalf("Tail() = %+v", got)
	}
}
