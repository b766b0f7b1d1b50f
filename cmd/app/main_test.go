package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/notemeta/internal/metadata"
	"github.com/starford/notemeta/internal/note"
)

func writeVault(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	err := app.Run(context.Background(), append([]string{"notemeta"}, args...))
	return out.String(), err
}

func readNote(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return string(data)
}

func TestShow(t *testing.T) {
	dir := writeVault(t, map[string]string{
		"a.md": "---\ntitle: A\n---\nBody\nstatus:: open\n",
	})

	out, err := run(t, "--vault", dir, "show", "a.md")
	require.NoError(t, err)

	var got struct {
		Path        string              `json:"path"`
		Frontmatter map[string][]string `json:"frontmatter"`
		Inline      map[string][]string `json:"inline"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "a.md", got.Path)
	assert.Equal(t, []string{"A"}, got.Frontmatter["title"])
	assert.Equal(t, []string{"open"}, got.Inline["status"])

	_, err = run(t, "--vault", dir, "show")
	assert.Error(t, err)
}

func TestAdd_WritesOnlyMatchingNotes(t *testing.T) {
	dir := writeVault(t, map[string]string{
		"2024-01-01.md": "---\ntitle: Day\n---\nBody\n",
		"project.md":    "---\ntitle: Project\n---\nBody\n",
	})

	_, err := run(t, "--vault", dir, "add", "--kind", "frontmatter", "--name-prefix", "2024", "tags", "x", "y")
	require.NoError(t, err)

	assert.Contains(t, readNote(t, dir, "2024-01-01.md"), "tags: [ x, y ]")
	assert.Equal(t, "---\ntitle: Project\n---\nBody\n", readNote(t, dir, "project.md"))
}

func TestDryRun_WritesNothing(t *testing.T) {
	const content = "Body\nstatus:: open\n"
	dir := writeVault(t, map[string]string{"a.md": content})

	_, err := run(t, "--vault", dir, "--dry-run", "remove", "status")
	require.NoError(t, err)
	assert.Equal(t, content, readNote(t, dir, "a.md"))

	_, err = run(t, "--vault", dir, "remove", "status")
	require.NoError(t, err)
	assert.NotContains(t, readNote(t, dir, "a.md"), "status::")
}

func TestMove(t *testing.T) {
	const content = "Body\nstatus:: open\npriority:: 1\n"
	dir := writeVault(t, map[string]string{"a.md": content})

	_, err := run(t, "--vault", dir, "move", "status")
	assert.Error(t, err)
	_, err = run(t, "--vault", dir, "move", "--to", "frontmatter", "status")
	assert.Error(t, err)
	assert.Equal(t, content, readNote(t, dir, "a.md"))

	_, err = run(t, "--vault", dir, "move", "--from", "inline", "--to", "frontmatter", "status")
	require.NoError(t, err)
	got := readNote(t, dir, "a.md")
	assert.Contains(t, got, "---\nstatus: open\n---\n")
	assert.Contains(t, got, "priority:: 1")
}

func TestCommand_Errors(t *testing.T) {
	dir := writeVault(t, map[string]string{"a.md": "Body\n"})

	_, err := run(t, "--vault", dir, "add")
	assert.Error(t, err)

	_, err = run(t, "--vault", dir, "add", "--kind", "sideways", "k", "v")
	var argErr *metadata.ArgTypeError
	assert.ErrorAs(t, err, &argErr)

	_, err = run(t, "--vault", dir, "order", "--keys", "random")
	assert.ErrorAs(t, err, &argErr)

	_, err = run(t, "--vault", dir, "--config", filepath.Join(dir, "missing.yaml"), "normalize")
	assert.Error(t, err)
}

func TestParseHas(t *testing.T) {
	assert.Equal(t, []note.MetaQuery{
		{Key: "status", Kind: metadata.KindAll},
		{Key: "tags", Values: "work", Kind: metadata.KindAll},
	}, parseHas([]string{"status", "tags=work"}))
}
