// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the vault's tag tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/mad/internal/dirmap"
	"github.com/starford/mad/internal/index"
	"github.com/starford/mad/internal/models"
	"github.com/starford/mad/internal/parser"
	"github.com/starford/mad/internal/retag"
	"github.com/starford/mad/internal/scan"
	"github.com/starford/mad/internal/storage"
)

// Deps are the services the tools call into.
type Deps struct {
	Store    storage.Provider
	Scanner  index.Scanner
	Cache    index.TagIndex
	Retag    *retag.Engine
	DirIndex func() (*dirmap.Index, error)
}

// Server wraps the MCP server with the tag tools.
type Server struct {
	mcp  *server.MCPServer
	deps Deps
}

// New creates a new MCP server with all tools registered.
func New(deps Deps) *Server {
	s := &Server{deps: deps}

	s.mcp = server.NewMCPServer(
		"mad",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_tags",
		mcp.WithDescription("List every tag in the vault, one slash-separated tag per line."),
		mcp.WithBoolean("primary", mcp.Description("Only primary tags (the { #tag } marker)")),
	), s.listTags)

	s.mcp.AddTool(mcp.NewTool("find_notes",
		mcp.WithDescription("List notes tagged with the given tag or any tag below it."),
		mcp.WithString("tag", mcp.Required(), mcp.Description("Tag such as dev/project")),
	), s.findNotes)

	s.mcp.AddTool(mcp.NewTool("tag_dirs",
		mcp.WithDescription("List vault directories holding notes whose primary tag is the given tag."),
		mcp.WithString("tag", mcp.Required(), mcp.Description("Primary tag")),
	), s.tagDirs)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read the full content of a Markdown note."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path relative to the vault (e.g. Notas/dev/note.md)")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("retag_note",
		mcp.WithDescription("Set a note's primary tag from its location, keeping the old tag as an alias. "+
			"A backup copy is written first. Read the contract via get_tag_contract first."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path relative to the vault")),
	), s.retagNote)

	s.mcp.AddTool(mcp.NewTool("where",
		mcp.WithDescription("Resolve a work or documentation directory to its mapped counterpart and tag."),
		mcp.WithString("dir", mcp.Required(), mcp.Description("Absolute directory path")),
	), s.where)

	s.mcp.AddTool(mcp.NewTool("get_tag_contract",
		mcp.WithDescription("Returns how notes carry primary and secondary tags."),
	), s.getTagContract)

	s.mcp.AddResource(
		mcp.NewResource("mad://tag-format", "Note Tag Contract",
			mcp.WithResourceDescription("How notes carry primary and secondary tags."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readTagFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) rel(p string) string {
	r, err := filepath.Rel(s.deps.Store.Root(), p)
	if err != nil {
		return p
	}
	return filepath.ToSlash(r)
}

func requireTag(req mcp.CallToolRequest) (models.TagPath, error) {
	raw, err := req.RequireString("tag")
	if err != nil {
		return nil, err
	}
	tag := models.ParseTagPath(strings.TrimPrefix(raw, "#"))
	if tag.IsZero() {
		return nil, fmt.Errorf("empty tag %q", raw)
	}
	return tag, nil
}

func (s *Server) listTags(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var root *models.TagNode
	if req.GetBool("primary", false) {
		p, err := s.deps.Cache.LoadPrimary()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		root = p.Root
	} else {
		var err error
		if root, err = s.deps.Cache.LoadTags(); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	var lines []string
	for _, p := range root.Paths() {
		lines = append(lines, p.String())
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) findNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tag, err := requireTag(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	items, err := s.deps.Scanner.Scan()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	type hit struct {
		Path       string   `json:"path"`
		PrimaryTag string   `json:"primary_tag,omitempty"`
		Tags       []string `json:"tags"`
	}
	hits := []hit{}
	for _, item := range scan.FindByTag(items, tag) {
		h := hit{Path: s.rel(item.Path), PrimaryTag: item.PrimaryTag.String(), Tags: []string{}}
		for _, t := range item.SecondaryTags {
			h.Tags = append(h.Tags, t.String())
		}
		hits = append(hits, h)
	}
	out, _ := json.MarshalIndent(hits, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) tagDirs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tag, err := requireTag(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := s.deps.Cache.LoadPrimary()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dirs := p.Dirs(tag)
	if len(dirs) == 0 {
		return mcp.NewToolResultText("no directories found"), nil
	}
	return mcp.NewToolResultText(strings.Join(dirs, "\n")), nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.deps.Store.Read(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) retagNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(s.deps.Store.Root(), filepath.FromSlash(path))
	}
	updated, err := s.deps.Retag.File(abs, retag.Options{})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !updated {
		return mcp.NewToolResultText(fmt.Sprintf("unchanged: %s", path)), nil
	}

	data, err := s.deps.Store.Read(abs)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	primary, _, _ := parser.Classify(data)
	return mcp.NewToolResultText(fmt.Sprintf("retagged: %s -> %s", path, primary)), nil
}

func (s *Server) where(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir, err := req.RequireString("dir")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	idx, err := s.deps.DirIndex()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	loc, err := idx.Locate(dir)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(map[string]string{
		"direction": loc.Direction.String(),
		"work_dir":  loc.Match.WorkDir,
		"doc_dir":   loc.Match.DocDir,
		"tag":       loc.Tag.String(),
		"mapping":   loc.Match.Mapping.WorkPrefix + " -> " + loc.Match.Mapping.DocSubpath,
	}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getTagContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(TagFormatContract), nil
}

func (s *Server) readTagFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "mad://tag-format",
			MIMEType: "text/markdown",
			Text:     TagFormatContract,
		},
	}, nil
}
