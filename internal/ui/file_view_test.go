package ui

import (
	"regexp"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/logview/internal/rules"
	"github.com/five82/logview/internal/state"
)

func newTestView(t *testing.T) *fileView {
	t.Helper()
	palette, err := rules.NewPalette("")
	require.NoError(t, err)
	v, err := newFileView("/var/log/app.log", rules.NewScanner(rules.DefaultSet(palette)), discardLogger())
	require.NoError(t, err)
	v.resize(80, 10)
	return v
}

func TestFileViewInstallsNewGeneration(t *testing.T) {
	v := newTestView(t)

	changed := v.sync(state.File{Path: v.path, Encoding: "utf-8", Content: "ERROR a\nok\n", Generation: 1})

	assert.True(t, changed)
	assert.Equal(t, "ERROR a\nok\n", v.doc.Get())
	assert.Equal(t, "utf-8", v.encoding)
	assert.Equal(t, 2, v.lineCount())
	assert.Equal(t, "app.log", v.title())
}

func TestFileViewUnchangedFileIsNoop(t *testing.T) {
	v := newTestView(t)
	f := state.File{Path: v.path, Content: "ok\n", Generation: 1}
	v.sync(f)
	v.render(GetTheme("Nightfox"))

	assert.False(t, v.sync(f))
	assert.False(t, v.contentDirt)
}

func TestFileViewAppendKeepsRenderedLines(t *testing.T) {
	v := newTestView(t)
	theme := GetTheme("Nightfox")
	v.sync(state.File{Path: v.path, Content: "ERROR a\n", Generation: 1})
	v.render(theme)
	require.Len(t, v.cache, 1)
	require.True(t, v.cache[0].ok)

	changed := v.sync(state.File{Path: v.path, Content: "ERROR a\nWARN b\n", Generation: 1})

	require.True(t, changed)
	assert.Equal(t, "ERROR a\nWARN b\n", v.doc.Get())
	assert.True(t, v.cache[0].ok, "first line should stay cached")

	v.render(theme)
	require.Len(t, v.cache, 2)
	assert.True(t, v.cache[1].ok)
	assert.Contains(t, ansi.Strip(v.viewport.View()), "WARN b")
}

func TestFileViewPartialLineIsRerendered(t *testing.T) {
	v := newTestView(t)
	theme := GetTheme("Nightfox")
	v.sync(state.File{Path: v.path, Content: "ok\nstarting", Generation: 1})
	v.render(theme)
	require.Len(t, v.cache, 2)

	v.sync(state.File{Path: v.path, Content: "ok\nstarting ERROR", Generation: 1})

	assert.True(t, v.cache[0].ok)
	assert.False(t, v.cache[1].ok)
	assert.Equal(t, "starting ERROR", lineText(v.doc, 1))
}

func TestFileViewFrontTrim(t *testing.T) {
	v := newTestView(t)
	v.sync(state.File{Path: v.path, Content: "ERROR a\nWARN b\n", Generation: 1})

	changed := v.sync(state.File{Path: v.path, Content: "WARN b\nINFO c\n", Trimmed: 8, Generation: 1})

	require.True(t, changed)
	assert.Equal(t, "WARN b\nINFO c\n", v.doc.Get())
	assert.Equal(t, 1, v.trimmedLines)
	assert.Equal(t, 8, v.trimmed)
	assert.Equal(t, 2, v.lineCount())

	v.render(GetTheme("Nightfox"))
	assert.Contains(t, ansi.Strip(v.viewport.View()), "2 │ WARN b")
}

func TestFileViewNewGenerationResetsTrim(t *testing.T) {
	v := newTestView(t)
	v.sync(state.File{Path: v.path, Content: "a\nb\n", Generation: 1})
	v.sync(state.File{Path: v.path, Content: "b\nc\n", Trimmed: 2, Generation: 1})
	require.Equal(t, 1, v.trimmedLines)

	v.sync(state.File{Path: v.path, Content: "fresh\n", Generation: 2})

	assert.Equal(t, "fresh\n", v.doc.Get())
	assert.Zero(t, v.trimmedLines)
	assert.Zero(t, v.trimmed)
}

func TestFileViewReloadsOnDivergedContent(t *testing.T) {
	v := newTestView(t)
	v.sync(state.File{Path: v.path, Content: "one\ntwo\n", Generation: 1})

	changed := v.sync(state.File{Path: v.path, Content: "uno\ndos\ntres\n", Generation: 1})

	assert.True(t, changed)
	assert.Equal(t, "uno\ndos\ntres\n", v.doc.Get())
	assert.Equal(t, 1, v.generation)
}

func TestFileViewLineCount(t *testing.T) {
	tests := []struct {
		content string
		want    int
	}{
		{"", 0},
		{"a", 1},
		{"a\n", 1},
		{"a\nb", 2},
		{"a\r\nb\r\n", 2},
		{"\n\n", 2},
	}
	for _, tt := range tests {
		v := newTestView(t)
		v.sync(state.File{Path: v.path, Content: tt.content, Generation: 1})
		assert.Equal(t, tt.want, v.lineCount(), "content %q", tt.content)
	}
}

func TestFileViewRestyleDropsCache(t *testing.T) {
	v := newTestView(t)
	v.sync(state.File{Path: v.path, Content: "ERROR a\n", Generation: 1})
	v.render(GetTheme("Nightfox"))
	require.NotEmpty(t, v.cache)

	v.restyle()

	assert.Nil(t, v.cache)
	assert.True(t, v.contentDirt)
}

func TestFileViewSearch(t *testing.T) {
	v := newTestView(t)
	v.sync(state.File{Path: v.path, Content: "WARN a\nok\nwarn b\nok\n", Generation: 1})

	v.applySearch("warn", regexp.MustCompile("(?i)warn"))

	assert.Equal(t, []int{0, 2}, v.searchMatches)
	assert.Zero(t, v.searchMatchIdx)
	assert.False(t, v.follow)

	v.nextSearchMatch()
	assert.Equal(t, 1, v.searchMatchIdx)
	v.nextSearchMatch()
	assert.Zero(t, v.searchMatchIdx, "next wraps around")
	v.previousSearchMatch()
	assert.Equal(t, 1, v.searchMatchIdx, "previous wraps around")

	v.sync(state.File{Path: v.path, Content: "WARN a\nok\nwarn b\nok\nWARN c\n", Generation: 1})
	assert.Equal(t, []int{0, 2, 4}, v.searchMatches, "matches follow appended lines")

	v.clearSearch()
	assert.Nil(t, v.searchRegex)
	assert.Empty(t, v.searchMatches)
}

func TestFileViewVisibleText(t *testing.T) {
	v := newTestView(t)
	v.resize(80, 2)
	v.sync(state.File{Path: v.path, Content: "a\nb\nc\n", Generation: 1})
	v.render(GetTheme("Nightfox"))

	assert.Equal(t, "b\nc", v.visibleText(), "following shows the last lines")

	v.viewport.GotoTop()
	assert.Equal(t, "a\nb", v.visibleText())
}

func TestFileViewRendersReadError(t *testing.T) {
	v := newTestView(t)
	v.sync(state.File{Path: v.path, Generation: 1, LastError: assert.AnError})
	v.render(GetTheme("Nightfox"))

	assert.Contains(t, ansi.Strip(v.viewport.View()), "Cannot read file")
}
