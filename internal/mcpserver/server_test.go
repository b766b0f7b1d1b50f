package mcpserver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/notemeta/internal/index"
	"github.com/starford/notemeta/internal/metadata"
	"github.com/starford/notemeta/internal/noteservice"
	"github.com/starford/notemeta/internal/testutil"
)

func testServer(t *testing.T) (*Server, string) {
	t.Helper()

	vaultDir, store := testutil.TestVault(t, map[string]string{
		"a.md":     "---\ntags: go, db\n---\nBody\nstatus:: open\n",
		"sub/b.md": "status:: done\n",
	})
	db := testutil.TestDB(t)
	policy := metadata.DefaultPolicy()
	if _, err := index.Sync(db, store, policy, slog.New(slog.NewTextHandler(io.Discard, nil))); err != nil {
		t.Fatal(err)
	}
	return New(noteservice.NewService(store, db, policy), "test"), vaultDir
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so the handlers are
	// called directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "get_metadata":
		result, err = srv.getMetadata(ctx, req)
	case "edit_metadata":
		result, err = srv.editMetadata(ctx, req)
	case "find_notes":
		result, err = srv.findNotes(ctx, req)
	case "list_fields":
		result, err = srv.listFields(ctx, req)
	case "get_syntax":
		result, err = srv.getSyntax(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestGetMetadata(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "get_metadata", map[string]interface{}{"path": "a.md"})
	if r.IsError {
		t.Fatalf("get_metadata failed: %s", resultText(r))
	}
	var got struct {
		Frontmatter map[string][]string `json:"frontmatter"`
		Inline      map[string][]string `json:"inline"`
	}
	if err := json.Unmarshal([]byte(resultText(r)), &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Frontmatter["tags"]) != 2 || got.Inline["status"][0] != "open" {
		t.Errorf("metadata = %+v", got)
	}
}

func TestGetMetadataMissing(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_metadata", map[string]interface{}{"path": "nope.md"})
	if !r.IsError {
		t.Error("expected error for missing note")
	}
}

func TestEditMetadata(t *testing.T) {
	srv, vaultDir := testServer(t)

	r := callTool(t, srv, "edit_metadata", map[string]interface{}{
		"path": "a.md",
		"edits": []interface{}{
			map[string]interface{}{"op": "add", "key": "tags", "values": []interface{}{"mcp"}},
			map[string]interface{}{"op": "remove", "key": "status"},
		},
	})
	if r.IsError {
		t.Fatalf("edit_metadata failed: %s", resultText(r))
	}
	want := "---\ntags: [ go, db, mcp ]\n---\nBody"
	if got := testutil.ReadFile(t, vaultDir, "a.md"); got != want {
		t.Errorf("file = %q, want %q", got, want)
	}

	r = callTool(t, srv, "find_notes", map[string]interface{}{"key": "status"})
	if text := resultText(r); text != "sub/b.md" {
		t.Errorf("find after edit = %q, want sub/b.md", text)
	}
}

func TestEditMetadataErrors(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "edit_metadata", map[string]interface{}{"path": "a.md"})
	if !r.IsError {
		t.Error("missing edits should fail")
	}
	r = callTool(t, srv, "edit_metadata", map[string]interface{}{
		"path":  "a.md",
		"edits": "add tags",
	})
	if !r.IsError {
		t.Error("malformed edits should fail")
	}
	r = callTool(t, srv, "edit_metadata", map[string]interface{}{
		"path":     "a.md",
		"edits":    []interface{}{map[string]interface{}{"op": "dedupe"}},
		"if_match": "stale",
	})
	if !r.IsError || !strings.Contains(resultText(r), "conflict") {
		t.Errorf("stale checksum should conflict, got %q", resultText(r))
	}
}

func TestFindNotes(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "find_notes", map[string]interface{}{"key": "status", "value": "done"})
	if text := resultText(r); text != "sub/b.md" {
		t.Errorf("find = %q, want sub/b.md", text)
	}
	r = callTool(t, srv, "find_notes", map[string]interface{}{"key": "status", "kind": "frontmatter"})
	if text := resultText(r); text != "no notes found" {
		t.Errorf("find = %q, want none", text)
	}
	r = callTool(t, srv, "find_notes", map[string]interface{}{})
	if !r.IsError {
		t.Error("missing key should fail")
	}
}

func TestListFields(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "list_fields", map[string]interface{}{"kind": "inline"})
	var fields []struct {
		Key   string `json:"key"`
		Notes int    `json:"notes"`
	}
	if err := json.Unmarshal([]byte(resultText(r)), &fields); err != nil {
		t.Fatal(err)
	}
	if len(fields) != 1 || fields[0].Key != "status" || fields[0].Notes != 2 {
		t.Errorf("fields = %+v", fields)
	}
}

func TestGetSyntax(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_syntax", nil)
	if !strings.Contains(resultText(r), "key:: value") {
		t.Error("syntax guide should describe inline fields")
	}

	contents, err := srv.readSyntaxResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil || len(contents) != 1 {
		t.Fatalf("resource = %v, %v", contents, err)
	}
}
