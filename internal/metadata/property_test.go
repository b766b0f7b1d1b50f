package metadata

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var (
	keyGen   = rapid.StringMatching(`k[a-z0-9_]{0,5}`)
	valueGen = rapid.StringMatching(`v[a-z0-9]{0,5}`)
	// yamlValueGen adds the characters YAML gives a meaning to.
	yamlValueGen = rapid.OneOf(
		valueGen,
		rapid.SampledFrom([]string{"", "~", "null", "x: y", "Doe, J", "[draft]", "#tag", "a #b", "- item", "{a}", "'q'", `"dq"`, " lead", "trail ", "*alias", "&a", "!t", "%p", "@x", "|", ">", "3.50", "yes"}),
		rapid.StringMatching(`[a-z:,\[\]#{} '"&*!-]{0,8}`),
	)
)

func drawFields(t *rapid.T, values *rapid.Generator[string]) *Fields {
	keys := rapid.SliceOfN(keyGen, 0, 6).Draw(t, "keys")
	f := NewFields()
	for _, key := range keys {
		if f.Has(key) {
			continue
		}
		f.Set(key, rapid.SliceOfN(values, 0, 4).Draw(t, "values"))
	}
	return f
}

func TestFrontmatter_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		want := drawFields(t, yamlValueGen)
		fm := &Frontmatter{NewContainer(KindFrontmatter, want.Clone())}

		got, body, err := ParseFrontmatter(fm.String()+"body", nil)
		require.NoError(t, err)
		require.Equal(t, want.Keys(), got.Keys())
		require.Equal(t, want.Map(), got.Map())
		if want.Len() > 0 {
			require.Equal(t, "body", body)
		}
	})
}

func drawNote(t *rapid.T) string {
	lineGen := rapid.OneOf(
		rapid.SampledFrom([]string{
			"Some text.",
			"",
			"# Heading",
			"see [example:: value] for syntax",
			"a link (ref:: here) inline",
		}),
		rapid.Custom(func(t *rapid.T) string {
			prefix := rapid.SampledFrom([]string{"", "- ", "> ", "text "}).Draw(t, "prefix")
			values := rapid.SliceOfN(valueGen, 0, 3).Draw(t, "values")
			return prefix + keyGen.Draw(t, "key") + ":: " + strings.Join(values, ", ")
		}),
	)
	lines := rapid.SliceOfN(lineGen, 0, 10).Draw(t, "lines")
	body := strings.Join(lines, "\n")

	fm := drawFields(t, valueGen)
	if fm.Len() == 0 {
		return body
	}
	return (&Frontmatter{NewContainer(KindFrontmatter, fm)}).String() + body
}

func TestNoteMetadata_UpdateIsIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := drawNote(t)
		position := rapid.SampledFrom([]Position{Top, Bottom}).Draw(t, "position")
		inplace := rapid.Bool().Draw(t, "inplace")

		m, err := New(text, DefaultPolicy())
		require.NoError(t, err)
		require.NoError(t, m.Add(keyGen.Draw(t, "addKey"), valueGen.Draw(t, "addValue"), KindInline))

		once, err := m.UpdateContent(text, WithInlinePosition(position), WithInlineInplace(inplace))
		require.NoError(t, err)

		again, err := New(once, DefaultPolicy())
		require.NoError(t, err)
		twice, err := again.UpdateContent(once, WithInlinePosition(position), WithInlineInplace(inplace))
		require.NoError(t, err)
		require.Equal(t, once, twice)
	})
}

func TestParseInline_NeverReadsEnclosed(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		key := keyGen.Draw(t, "key")
		open := rapid.SampledFrom([]string{"[", "("}).Draw(t, "open")
		closing := map[string]string{"[": "]", "(": ")"}[open]
		line := "see " + open + key + ":: " + valueGen.Draw(t, "value") + closing + " here"

		require.False(t, ParseInline(line, nil).Has(key))
		require.Equal(t, line, EraseInline(line))

		in := &Inline{NewContainer(KindInline, nil)}
		out, err := in.UpdateContent(line, Bottom, true, nil)
		require.NoError(t, err)
		require.Equal(t, line, out)
	})
}
