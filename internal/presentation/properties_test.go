package presentation

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/five82/logview/internal/text"
)

var pieces = []string{"ERROR", "WARN", "ok ", "\n", "\r\n", "\r"}

func logText() *rapid.Generator[string] {
	return rapid.Custom(func(t *rapid.T) string {
		parts := rapid.SliceOfN(rapid.SampledFrom(pieces), 0, 6).Draw(t, "pieces")
		return strings.Join(parts, "")
	})
}

func TestIncrementalMatchesFreshInstall(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		doc := text.New(logText().Draw(t, "initial"))
		d, err := NewDamageRepairer(levels, nil)
		require.NoError(t, err)
		r := NewReconciler(doc, d)
		r.Install()

		steps := rapid.IntRange(1, 8).Draw(t, "steps")
		for range steps {
			off := rapid.IntRange(0, doc.Length()).Draw(t, "offset")
			n := rapid.IntRange(0, doc.Length()-off).Draw(t, "length")
			ev, err := doc.Replace(off, n, logText().Draw(t, "text"))
			require.NoError(t, err)
			r.DocumentChanged(ev)

			fd, err := NewDamageRepairer(levels, nil)
			require.NoError(t, err)
			fresh := NewReconciler(text.New(doc.Get()), fd)
			fresh.Install()

			require.Equal(t, fresh.Ranges(), r.Ranges(), "content %q", doc.Get())
		}
	})
}

func TestCreatePresentationIsIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		doc := text.New(logText().Draw(t, "content"))
		d, err := NewDamageRepairer(levels, nil)
		require.NoError(t, err)
		d.SetDocument(doc)

		whole := text.Region{Length: doc.Length()}
		a, b := NewPresentation(whole), NewPresentation(whole)
		d.CreatePresentation(a, whole)
		d.CreatePresentation(b, whole)

		assert.Equal(t, a.Ranges(), b.Ranges())
	})
}

func TestOverlapWinnerIsLowestPriority(t *testing.T) {
	styles := []Style{errorStyle, warnStyle, {Foreground: "#8be9fd"}, {Foreground: "#50fa7b"}}

	rapid.Check(t, func(t *rapid.T) {
		order := rapid.Permutation([]int{0, 1, 2, 3}).Draw(t, "priorities")
		toks := make([]Token, len(order))
		for i, p := range order {
			toks[i] = Token{Offset: 0, Length: 5, Data: &TokenData{Style: styles[p], Priority: p}}
		}
		doc := text.New("line\n")
		d, err := NewDamageRepairer(fixedTokens(toks...), nil)
		require.NoError(t, err)
		d.SetDocument(doc)

		pres := NewPresentation(text.Region{Length: 5})
		d.CreatePresentation(pres, text.Region{Length: 5})

		got := pres.Ranges()
		require.NotEmpty(t, got)
		assert.Equal(t, errorStyle, got[len(got)-1].Style())
		// every committed range improves on the one before it
		for i := 1; i < len(got); i++ {
			assert.Less(t, slices.Index(styles, got[i].Style()), slices.Index(styles, got[i-1].Style()))
		}
	})
}

func TestPartitioningChangeDamagesWholePartition(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		doc := text.New(logText().Draw(t, "content"))
		if doc.Length() == 0 {
			t.Skip("empty document has no partition")
		}
		off := rapid.IntRange(0, doc.Length()-1).Draw(t, "offset")
		part, err := doc.PartitionAt(off)
		require.NoError(t, err)

		d, err := NewDamageRepairer(levels, nil)
		require.NoError(t, err)
		d.SetDocument(doc)

		ev := text.EditEvent{Offset: off, Text: logText().Draw(t, "text")}
		assert.Equal(t, part.Region, d.DamageRegion(part, ev, true))
	})
}

func TestReconcilerDelimiterEdits(t *testing.T) {
	tests := []struct {
		name    string
		content string
		off     int
		length  int
		insert  string
	}{
		{name: "drop LF of CRLF", content: "a\r\nERROR", off: 2, length: 1},
		{name: "drop CR of CRLF", content: "WARN\r\nb", off: 4, length: 1},
		{name: "LF after CRLF", content: "a\r\nERROR", off: 2, insert: "\n"},
		{name: "split CRLF", content: "ERROR\r\nb", off: 6, insert: "x"},
		{name: "pair lone CR", content: "a\rWARN", off: 2, insert: "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, r := newReconciler(t, tt.content)
			ev, err := doc.Replace(tt.off, tt.length, tt.insert)
			require.NoError(t, err)
			r.DocumentChanged(ev)

			_, fresh := newReconciler(t, doc.Get())
			assert.Equal(t, fresh.Ranges(), r.Ranges())
		})
	}
}
