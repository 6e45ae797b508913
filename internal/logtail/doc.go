// Package logtail reads log files for display: an initial tail of the last
// lines and incremental reads of whatever was appended since.
//
// # Reading
//
// Tail scans the file once and keeps the last maxLines lines in a ring
// buffer, so memory stays O(maxLines) regardless of file size. Line
// delimiters are preserved exactly; the document model needs them to map
// offsets back to lines.
//
// Follow picks up at the offset the previous read returned. A file that
// became shorter than that offset was truncated or rotated in place, and is
// re-read from scratch (Chunk.Reset).
//
// # Encodings
//
// Files are decoded to UTF-8 with golang.org/x/text. Encoding names are
// WHATWG labels resolved through htmlindex ("latin1", "shift_jis",
// "utf-16le"). A multi-byte character split across two reads is held back
// until its remaining bytes arrive; Chunk.Next points at its first byte.
//
// # Error Handling
//
// A missing file is not an error: Tail returns an empty chunk and Follow
// reports no change, so a log can be opened before it is created. Other
// I/O errors are returned wrapped.
package logtail
