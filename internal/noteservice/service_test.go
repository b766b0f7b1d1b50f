package noteservice

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/notemeta/internal/apperr"
	"github.com/starford/notemeta/internal/index"
	"github.com/starford/notemeta/internal/metadata"
	"github.com/starford/notemeta/internal/storage"
	"github.com/starford/notemeta/internal/testutil"
)

func newTestService(t *testing.T, files map[string]string) (*Service, string) {
	t.Helper()
	dir, store := testutil.TestVault(t, files)
	db := testutil.TestDB(t)
	_, err := index.Sync(db, store, metadata.DefaultPolicy(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return NewService(store, db, metadata.DefaultPolicy()), dir
}

func TestGetMetadata(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{
		"a.md": "---\ntitle: A\ntags: x, y\n---\nstatus:: open\n",
	})
	ctx := context.Background()

	d, err := svc.GetMetadata(ctx, "a.md", false)
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"title": {"A"}, "tags": {"x", "y"}}, d.Frontmatter.Map())
	assert.Equal(t, map[string][]string{"status": {"open"}}, d.Inline.Map())
	assert.Empty(t, d.Content)
	assert.Len(t, d.Checksum, 64)

	_, err = svc.GetMetadata(ctx, "missing.md", false)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = svc.GetMetadata(ctx, "a.txt", false)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestGetMetadata_InvalidNote(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{
		"bad.md": "---\n: invalid: yaml: {{{\n---\n",
	})
	_, err := svc.GetMetadata(context.Background(), "bad.md", false)
	assert.ErrorIs(t, err, apperr.ErrInvalidNote)
}

func TestApplyEdits(t *testing.T) {
	svc, dir := newTestService(t, map[string]string{
		"a.md": "---\ntags: x\n---\nBody\nstatus:: open\n",
	})
	ctx := context.Background()

	d, err := svc.ApplyEdits(ctx, "a.md", EditRequest{Edits: []Edit{
		{Op: OpAdd, Key: "tags", Values: []string{"y"}},
		{Op: OpRemove, Key: "status", Kind: "inline"},
		{Op: OpAdd, Key: "due", Values: []string{"2024-05-01"}, Kind: "inline"},
	}})
	require.NoError(t, err)
	assert.True(t, d.Changed)
	want := "---\ntags: [ x, y ]\n---\nBody\n\ndue:: 2024-05-01"
	assert.Equal(t, want, d.Content)
	assert.Equal(t, want, testutil.ReadFile(t, dir, "a.md"))
	assert.Equal(t, storage.Checksum([]byte(want)), d.Checksum)

	paths, err := svc.Find(ctx, "due", nil, "inline")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.md"}, paths, "edited note is re-indexed")
	paths, err = svc.Find(ctx, "status", nil, "")
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestApplyEdits_DryRunAndNoop(t *testing.T) {
	original := "---\ntags: x\n---\nBody"
	svc, dir := newTestService(t, map[string]string{"a.md": original})
	ctx := context.Background()

	d, err := svc.ApplyEdits(ctx, "a.md", EditRequest{
		Edits:  []Edit{{Op: OpAdd, Key: "tags", Values: []string{"y"}}},
		DryRun: true,
	})
	require.NoError(t, err)
	assert.True(t, d.Changed)
	assert.Equal(t, original, testutil.ReadFile(t, dir, "a.md"))

	d, err = svc.ApplyEdits(ctx, "a.md", EditRequest{Edits: []Edit{{Op: OpDedupe}}})
	require.NoError(t, err)
	assert.False(t, d.Changed)
}

func TestApplyEdits_Conflict(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{"a.md": "body"})
	_, err := svc.ApplyEdits(context.Background(), "a.md", EditRequest{
		Edits:   []Edit{{Op: OpAdd, Key: "k", Values: []string{"v"}}},
		IfMatch: "stale",
	})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = svc.ApplyEdits(context.Background(), "a.md", EditRequest{
		Edits:   []Edit{{Op: OpAdd, Key: "k", Values: []string{"v"}}},
		IfMatch: storage.Checksum([]byte("body")),
	})
	assert.NoError(t, err)
}

func TestApplyEdits_InvalidEditWritesNothing(t *testing.T) {
	svc, dir := newTestService(t, map[string]string{"a.md": "body"})
	_, err := svc.ApplyEdits(context.Background(), "a.md", EditRequest{Edits: []Edit{
		{Op: OpAdd, Key: "k", Values: []string{"v"}},
		{Op: OpMove, Kind: "notemeta", To: "inline"},
	}})
	assert.ErrorIs(t, err, apperr.ErrInvalidEdit)
	assert.Equal(t, "body", testutil.ReadFile(t, dir, "a.md"))
}

func TestFindAndFields(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{
		"a.md": "---\ntags: go, db\n---\n",
		"b.md": "tags:: go",
	})
	ctx := context.Background()

	v := "db"
	paths, err := svc.Find(ctx, "tags", &v, "notemeta")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.md"}, paths)

	_, err = svc.Find(ctx, " ", nil, "")
	assert.ErrorIs(t, err, apperr.ErrInvalidEdit)
	_, err = svc.Find(ctx, "tags", nil, "sidecar")
	assert.ErrorIs(t, err, apperr.ErrInvalidEdit)

	counts, err := svc.Fields(ctx, "")
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, "frontmatter", counts[0].Kind)
	assert.Equal(t, "inline", counts[1].Kind)

	notes, total, err := svc.ListNotes(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, notes, 2)
}
