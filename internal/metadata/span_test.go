package metadata

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestDeleteSpans(t *testing.T) {
	s := "0123456789abcdefghijKLMNOpqrst"
	got := DeleteSpans(s, []Span{{Start: 5, End: 10}, {Start: 20, End: 25}})
	assert.Equal(t, "01234abcdefghijpqrst", got)
}

func TestDeleteSpans_AdjacentAndEmpty(t *testing.T) {
	assert.Equal(t, "abc", DeleteSpans("abc", nil))
	assert.Equal(t, "af", DeleteSpans("abcdef", []Span{{1, 3}, {3, 5}}))
	assert.Equal(t, "", DeleteSpans("abc", []Span{{0, 3}}))
}

func TestDeleteSpans_MatchesKeepMask(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.StringMatching(`[a-z]{0,40}`).Draw(t, "s")
		n := rapid.IntRange(0, 5).Draw(t, "n")

		var spans []Span
		pos := 0
		for i := 0; i < n && pos < len(s); i++ {
			start := rapid.IntRange(pos, len(s)).Draw(t, "start")
			end := rapid.IntRange(start, len(s)).Draw(t, "end")
			spans = append(spans, Span{Start: start, End: end})
			pos = end
		}

		var want strings.Builder
		for i := 0; i < len(s); i++ {
			drop := false
			for _, sp := range spans {
				if i >= sp.Start && i < sp.End {
					drop = true
					break
				}
			}
			if !drop {
				want.WriteByte(s[i])
			}
		}
		assert.Equal(t, want.String(), DeleteSpans(s, spans))
	})
}
