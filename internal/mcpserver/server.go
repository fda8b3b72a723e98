// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes one gallery session as tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/mosaic/internal/generator"
	"github.com/starford/mosaic/internal/parser"
	"github.com/starford/mosaic/internal/session"
)

// Server wraps the MCP server with gallery tools bound to one session.
type Server struct {
	mcp      *server.MCPServer
	sessions *session.Manager
	sess     *session.Session
	pool     generator.Pool
}

// New mounts a gallery session and registers the tools that drive it.
func New(sessions *session.Manager, pool generator.Pool) (*Server, error) {
	sess, err := sessions.Create()
	if err != nil {
		return nil, fmt.Errorf("mcpserver: create session: %w", err)
	}
	s := &Server{sessions: sessions, sess: sess, pool: pool}

	s.mcp = server.NewMCPServer(
		"Mosaic",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_images",
		mcp.WithDescription("List the images visible under the current tag filter, in display order."),
	), s.listImages)

	s.mcp.AddTool(mcp.NewTool("load_more",
		mcp.WithDescription("Append one page of new images to the end of the gallery."),
	), s.loadMore)

	s.mcp.AddTool(mcp.NewTool("select_tag",
		mcp.WithDescription("Show only images carrying the given tag."),
		mcp.WithString("tag", mcp.Required(), mcp.Description("Tag to filter by (e.g. AI)")),
	), s.selectTag)

	s.mcp.AddTool(mcp.NewTool("clear_filter",
		mcp.WithDescription("Remove the tag filter and show every image."),
	), s.clearFilter)

	s.mcp.AddTool(mcp.NewTool("add_tag",
		mcp.WithDescription("Add a tag to one image. Duplicates, blank tags and unknown ids are ignored."),
		mcp.WithString("image_id", mcp.Required(), mcp.Description("Image id as returned by list_images")),
		mcp.WithString("tag", mcp.Required(), mcp.Description("Tag text")),
	), s.addTag)

	s.mcp.AddTool(mcp.NewTool("list_tags",
		mcp.WithDescription("Count images per tag, most common first."),
	), s.listTags)

	s.mcp.AddTool(mcp.NewTool("get_gallery_guide",
		mcp.WithDescription("Explain how the gallery, its filter and its tags behave."),
	), s.getGuide)

	s.mcp.AddResource(
		mcp.NewResource("mosaic://tag-pool", "Tag Pool",
			mcp.WithResourceDescription("Candidate tags drawn for newly generated images."),
			mcp.WithMIMEType("text/plain"),
		),
		s.readTagPool,
	)

	return s, nil
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// Close unmounts the session behind the tools.
func (s *Server) Close() error {
	return s.sessions.Close(s.sess.ID)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) listImages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := s.sess.Snapshot()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(snap), nil
}

func (s *Server) loadMore(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n, err := s.sess.LoadMore()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	snap, err := s.sess.Snapshot()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("loaded %d images, %d total", n, snap.Total)), nil
}

func (s *Server) selectTag(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("tag")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tag := parser.NormalizeTag(raw)
	if tag == "" {
		return mcp.NewToolResultError("tag is empty"), nil
	}
	if err := s.sess.SelectTag(tag); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.listImages(ctx, req)
}

func (s *Server) clearFilter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.sess.ClearFilter(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("filter cleared"), nil
}

func (s *Server) addTag(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("image_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tag, err := req.RequireString("tag")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	added, err := s.sess.AddTag(id, tag)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !added {
		return mcp.NewToolResultText("unchanged"), nil
	}
	img, _, err := s.sess.Image(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(img), nil
}

func (s *Server) listTags(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	counts, err := s.sess.TagCounts()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(counts), nil
}

func (s *Server) getGuide(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(GalleryGuide), nil
}

func (s *Server) readTagPool(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "mosaic://tag-pool",
			MIMEType: "text/plain",
			Text:     strings.Join(s.pool.Tags(), "\n"),
		},
	}, nil
}
