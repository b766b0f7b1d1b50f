package note

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/notemeta/internal/metadata"
	"github.com/starford/notemeta/internal/storage"
)

func testVault(t *testing.T, files map[string]string) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	store, err := storage.NewFS(dir)
	require.NoError(t, err)
	return dir, store
}

func TestLoad(t *testing.T) {
	_, store := testVault(t, map[string]string{
		"a.md": "---\ntitle: A\n---\nbody\nstatus:: open\n",
	})
	n, err := Load(store, "a.md", metadata.DefaultPolicy())
	require.NoError(t, err)

	assert.Equal(t, "a.md", n.Name())
	assert.True(t, n.Metadata.Has("title", "A", metadata.KindFrontmatter))
	assert.True(t, n.Metadata.Has("status", "open", metadata.KindInline))
	assert.False(t, n.Changed())
}

func TestLoad_Errors(t *testing.T) {
	_, store := testVault(t, map[string]string{
		"bad.md": "---\n: invalid: yaml: {{{\n---\nBody\n",
	})

	_, err := Load(store, "missing.md", nil)
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "missing.md", loadErr.Path)
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	_, err = Load(store, "bad.md", nil)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "bad.md", parseErr.Path)
	var fmErr *metadata.InvalidFrontmatterError
	assert.ErrorAs(t, err, &fmErr)
}

func TestNote_AppendAndSub(t *testing.T) {
	n, err := New("x.md", "hello world", nil)
	require.NoError(t, err)

	n.Append("world", false)
	assert.Equal(t, "hello world", n.Content)
	n.Append("world", true)
	assert.Equal(t, "hello world\nworld", n.Content)

	require.NoError(t, n.Sub("world", "there", false))
	assert.Equal(t, "hello there\nthere", n.Content)
	require.NoError(t, n.Sub(`th(e)re`, "h${1}llo", true))
	assert.Equal(t, "hello hello\nhello", n.Content)
	assert.Error(t, n.Sub("(", "", true))

	require.NoError(t, n.Sub("a.b", "x", false))
	assert.Equal(t, "hello hello\nhello", n.Content, "literal patterns are not regular expressions")
	assert.True(t, n.Changed())
}

func TestNote_UpdateAndWrite(t *testing.T) {
	dir, store := testVault(t, map[string]string{
		"a.md": "---\ntags: a, b\n---\nBody line.\nproject:: work\n",
	})
	n, err := Load(store, "a.md", metadata.DefaultPolicy())
	require.NoError(t, err)

	require.NoError(t, n.Metadata.Add("tags", "c", metadata.KindFrontmatter))
	require.NoError(t, n.UpdateContent())
	require.True(t, n.Changed())
	require.NoError(t, n.Write())
	assert.False(t, n.Changed())

	data, err := os.ReadFile(filepath.Join(dir, "a.md"))
	require.NoError(t, err)
	assert.Equal(t, "---\ntags: [ a, b, c ]\n---\nBody line.\nproject:: work", string(data))

	require.NoError(t, n.WriteAs("copy/a.md"))
	data, err = os.ReadFile(filepath.Join(dir, "copy", "a.md"))
	require.NoError(t, err)
	assert.Equal(t, n.Content, string(data))
	assert.Equal(t, "a.md", n.Path)
}

func TestNote_UpdateError(t *testing.T) {
	n, err := New("x.md", "body", nil)
	require.NoError(t, err)
	err = n.UpdateContent(metadata.WithInlinePosition("middle"))
	var updErr *UpdateError
	require.ErrorAs(t, err, &updErr)
	assert.Equal(t, "x.md", updErr.Path)
	var argErr *metadata.ArgTypeError
	assert.ErrorAs(t, err, &argErr)
}

func TestNote_WriteWithoutStore(t *testing.T) {
	n, err := New("x.md", "body", nil)
	require.NoError(t, err)
	assert.Error(t, n.Write())
}

func notePaths(ns *Notes) []string {
	var out []string
	for _, n := range ns.Notes() {
		out = append(out, n.Path)
	}
	sort.Strings(out)
	return out
}

func TestLoadNotes(t *testing.T) {
	_, store := testVault(t, map[string]string{
		"a.md":         "a",
		"daily/b.md":   "b",
		"daily/x/c.md": "c",
		"other.txt":    "skip",
	})
	ctx := context.Background()

	ns, err := LoadNotes(ctx, store, nil, []string{""}, true, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.md", "daily/b.md", "daily/x/c.md"}, notePaths(ns))

	ns, err = LoadNotes(ctx, store, nil, []string{"daily"}, false, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"daily/b.md"}, notePaths(ns))

	ns, err = LoadNotes(ctx, store, nil, []string{"a.md", "", "a.md"}, false, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.md"}, notePaths(ns))

	_, err = LoadNotes(ctx, store, nil, []string{"nope.md"}, false, 2)
	var loadErr *LoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestNotes_Filter(t *testing.T) {
	_, store := testVault(t, map[string]string{
		"2024-01-01.md": "status:: open",
		"2024-01-02.md": "---\nstatus: done\n---\n",
		"project.md":    "status:: open\ntags:: work",
	})
	load := func() *Notes {
		ns, err := LoadNotes(context.Background(), store, metadata.DefaultPolicy(), []string{""}, true, 4)
		require.NoError(t, err)
		return ns
	}

	ns := load()
	require.NoError(t, ns.Filter(Filter{Prefix: "2024"}))
	assert.Equal(t, []string{"2024-01-01.md", "2024-01-02.md"}, notePaths(ns))

	ns = load()
	require.NoError(t, ns.Filter(Filter{Pattern: `\d{4}-01-02`}))
	assert.Equal(t, []string{"2024-01-02.md"}, notePaths(ns))

	ns = load()
	require.NoError(t, ns.Filter(Filter{Pattern: `01-02`}))
	assert.Zero(t, ns.Len(), "pattern must match from the start of the name")

	ns = load()
	require.NoError(t, ns.Filter(Filter{Suffix: "ct.md"}))
	assert.Equal(t, []string{"project.md"}, notePaths(ns))

	ns = load()
	require.NoError(t, ns.Filter(Filter{HasMeta: []MetaQuery{
		{Key: "status", Values: "open", Kind: metadata.KindAll},
		{Key: "tags", Kind: metadata.KindInline},
	}}))
	assert.Equal(t, []string{"project.md"}, notePaths(ns))

	assert.Error(t, load().Filter(Filter{Pattern: "("}))
}

func TestNotes_BatchEditAndWrite(t *testing.T) {
	dir, store := testVault(t, map[string]string{
		"a.md": "Body A\npriority:: 1",
		"b.md": "---\ntitle: B\n---\nBody B",
	})
	p := metadata.DefaultPolicy()
	p.Fields["priority"] = metadata.FieldOptions{DefaultMeta: "frontmatter"}

	ns, err := LoadNotes(context.Background(), store, p, []string{""}, true, 2)
	require.NoError(t, err)

	batch := ns.Metadata()
	require.NoError(t, batch.MoveToDefaults())
	require.NoError(t, batch.Add("reviewed", "yes", metadata.KindInline))
	require.NoError(t, ns.UpdateContent(context.Background()))
	assert.Len(t, ns.Changed(), 2)
	require.NoError(t, ns.Write(context.Background()))
	assert.Empty(t, ns.Changed())

	a, err := os.ReadFile(filepath.Join(dir, "a.md"))
	require.NoError(t, err)
	assert.Equal(t, "---\npriority: 1\n---\nBody A\n\nreviewed:: yes", string(a))
	b, err := os.ReadFile(filepath.Join(dir, "b.md"))
	require.NoError(t, err)
	assert.Equal(t, "---\ntitle: B\n---\nBody B\n\nreviewed:: yes", string(b))
}

func TestBatch_ErrorNamesNote(t *testing.T) {
	a, err := New("a.md", "x", nil)
	require.NoError(t, err)
	ns := NewNotes(a)

	err = ns.Metadata().Add("k", "v", metadata.KindAll)
	var updErr *UpdateError
	require.ErrorAs(t, err, &updErr)
	assert.Equal(t, "a.md", updErr.Path)
	var kindErr *metadata.UnsupportedKindError
	assert.ErrorAs(t, err, &kindErr)
}

func TestNotes_AppendAndOrder(t *testing.T) {
	a, err := New("a.md", "---\nb: [2, 1]\na: x\n---\n", nil)
	require.NoError(t, err)
	ns := NewNotes(a)

	ns.Append("footer", false)
	ns.Append("footer", false)
	require.NoError(t, ns.Metadata().Order(metadata.KindAll, metadata.Asc, metadata.Asc))
	require.NoError(t, ns.UpdateContent(context.Background()))
	assert.Equal(t, "---\na: x\nb: [ 1, 2 ]\n---\nfooter", a.Content)
}
