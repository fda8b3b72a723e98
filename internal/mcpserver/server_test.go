package mcpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/mosaic/internal/gallery"
	"github.com/starford/mosaic/internal/generator"
	"github.com/starford/mosaic/internal/index"
	"github.com/starford/mosaic/internal/models"
	"github.com/starford/mosaic/internal/session"
	"github.com/starford/mosaic/internal/testutil"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	m := session.NewManager(testutil.TestIndex(t), logger, session.Config{
		NewBatcher:    func() gallery.Batcher { return testutil.Factory(5) },
		Options:       gallery.DefaultOptions(),
		Threshold:     gallery.BottomThreshold,
		IdleTTL:       time.Minute,
		FacetThrottle: 10 * time.Millisecond,
	})
	t.Cleanup(m.CloseAll)

	srv, err := New(m, generator.StaticPool(generator.DefaultTagPool))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return srv
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" helper; handlers are called directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_images":
		result, err = srv.listImages(ctx, req)
	case "load_more":
		result, err = srv.loadMore(ctx, req)
	case "select_tag":
		result, err = srv.selectTag(ctx, req)
	case "clear_filter":
		result, err = srv.clearFilter(ctx, req)
	case "add_tag":
		result, err = srv.addTag(ctx, req)
	case "list_tags":
		result, err = srv.listTags(ctx, req)
	case "get_gallery_guide":
		result, err = srv.getGuide(ctx, req)
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

func snapshot(t *testing.T, srv *Server) session.Snapshot {
	t.Helper()
	var snap session.Snapshot
	if err := json.Unmarshal([]byte(resultText(callTool(t, srv, "list_images", nil))), &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	return snap
}

func TestListAndLoadMore(t *testing.T) {
	srv := testServer(t)
	if snap := snapshot(t, srv); len(snap.Images) != 12 {
		t.Fatalf("initial images = %d, want 12", len(snap.Images))
	}
	r := callTool(t, srv, "load_more", nil)
	if text := resultText(r); text != "loaded 6 images, 18 total" {
		t.Errorf("load_more = %q", text)
	}
}

func TestSelectAndClear(t *testing.T) {
	srv := testServer(t)
	first := snapshot(t, srv).Images[0]
	tag := first.Tags[0]

	r := callTool(t, srv, "select_tag", map[string]interface{}{"tag": "#" + tag})
	if r.IsError {
		t.Fatalf("select_tag error: %s", resultText(r))
	}
	var snap session.Snapshot
	_ = json.Unmarshal([]byte(resultText(r)), &snap)
	if snap.SelectedTag != tag {
		t.Errorf("selected = %q, want %q", snap.SelectedTag, tag)
	}
	for _, img := range snap.Images {
		if !img.Tags.Has(tag) {
			t.Errorf("image %s lacks %q", img.ID, tag)
		}
	}

	if text := resultText(callTool(t, srv, "clear_filter", nil)); text != "filter cleared" {
		t.Errorf("clear_filter = %q", text)
	}
	if snap := snapshot(t, srv); snap.Mode != "unfiltered" || len(snap.Images) != 12 {
		t.Errorf("after clear: %s with %d images", snap.Mode, len(snap.Images))
	}
}

func TestSelectEmptyTag(t *testing.T) {
	srv := testServer(t)
	if r := callTool(t, srv, "select_tag", map[string]interface{}{"tag": "  "}); !r.IsError {
		t.Error("expected error for blank tag")
	}
	if r := callTool(t, srv, "select_tag", map[string]interface{}{}); !r.IsError {
		t.Error("expected error for missing tag")
	}
}

func TestAddTag(t *testing.T) {
	srv := testServer(t)
	id := snapshot(t, srv).Images[2].ID

	r := callTool(t, srv, "add_tag", map[string]interface{}{"image_id": id, "tag": "Special"})
	var img models.Image
	if err := json.Unmarshal([]byte(resultText(r)), &img); err != nil {
		t.Fatalf("decode image: %v (%s)", err, resultText(r))
	}
	if !img.Tags.Has("Special") {
		t.Errorf("tags = %v", img.Tags)
	}

	r = callTool(t, srv, "add_tag", map[string]interface{}{"image_id": id, "tag": "Special"})
	if resultText(r) != "unchanged" {
		t.Errorf("duplicate add = %q", resultText(r))
	}
	r = callTool(t, srv, "add_tag", map[string]interface{}{"image_id": "nope", "tag": "Special"})
	if r.IsError || resultText(r) != "unchanged" {
		t.Errorf("unknown id = %q (error %v)", resultText(r), r.IsError)
	}
}

func TestListTags(t *testing.T) {
	srv := testServer(t)
	var counts []index.TagCount
	if err := json.Unmarshal([]byte(resultText(callTool(t, srv, "list_tags", nil))), &counts); err != nil {
		t.Fatal(err)
	}
	if len(counts) == 0 {
		t.Fatal("no tag counts")
	}
	for _, c := range counts {
		found := false
		for _, p := range generator.DefaultTagPool {
			if p == c.Tag {
				found = true
			}
		}
		if !found {
			t.Errorf("tag %q not from pool", c.Tag)
		}
	}
}

func TestGuideAndPool(t *testing.T) {
	srv := testServer(t)
	if text := resultText(callTool(t, srv, "get_gallery_guide", nil)); !strings.Contains(text, "load_more") {
		t.Error("guide does not mention load_more")
	}
	contents, err := srv.readTagPool(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || !strings.Contains(tc.Text, "Diversition") {
		t.Errorf("tag pool resource = %+v", contents[0])
	}
}

func TestCloseUnmountsSession(t *testing.T) {
	srv := testServer(t)
	if err := srv.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if r := callTool(t, srv, "list_images", nil); !r.IsError {
		t.Error("expected error after close")
	}
}
