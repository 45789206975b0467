// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Mimir tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/mimir/internal/models"
	"github.com/starford/mimir/internal/trackerservice"
)

// Server wraps the MCP server with Mimir tools.
type Server struct {
	mcp *server.MCPServer
	svc *trackerservice.Service
}

// New creates a new MCP server with all Mimir tools registered.
func New(svc *trackerservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Mimir",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_due_topics",
		mcp.WithDescription("List unlocked topics currently due for review, soonest first."),
		mcp.WithString("limit", mcp.Description("Optional maximum number of topics to return")),
	), s.listDueTopics)

	s.mcp.AddTool(mcp.NewTool("list_topics",
		mcp.WithDescription("List all tracked topics, or only those carrying a tag."),
		mcp.WithString("tag", mcp.Description("Optional tag to filter by")),
	), s.listTopics)

	s.mcp.AddTool(mcp.NewTool("review_topic",
		mcp.WithDescription("Complete a review for a topic with a confidence rating "+
			"(hard, good, or easy). Returns the updated topic plus any mastery, "+
			"unlocked dependents, and new achievements."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Topic id")),
		mcp.WithString("confidence", mcp.Required(), mcp.Description("One of: hard, good, easy")),
	), s.reviewTopic)

	s.mcp.AddTool(mcp.NewTool("add_topic",
		mcp.WithDescription("Add a new topic to the tracker. Follow the topic contract "+
			"(get_topic_contract tool or the mimir://topic-contract resource) for "+
			"title and tag conventions."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Topic title")),
		mcp.WithString("tags", mcp.Description("Optional comma-separated tags")),
	), s.addTopic)

	s.mcp.AddTool(mcp.NewTool("capture_topic",
		mcp.WithDescription("Drop a topic title into the quick-capture inbox for later triage."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Topic title to capture")),
	), s.captureTopic)

	s.mcp.AddTool(mcp.NewTool("get_progress",
		mcp.WithDescription("Get the learner's streak, mastery counts, and weekly goal progress."),
	), s.getProgress)

	s.mcp.AddTool(mcp.NewTool("get_topic_contract",
		mcp.WithDescription("Returns the Mimir topic contract. Call this before adding "+
			"or reviewing topics to follow the correct conventions."),
	), s.getTopicContract)

	// Resource: topic contract.
	s.mcp.AddResource(
		mcp.NewResource("mimir://topic-contract", "Topic Contract",
			mcp.WithResourceDescription("Conventions for topics, tags, reviews, and capture."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readTopicContractResource,
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

func toolJSON(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listDueTopics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := 0
	if raw, err := req.RequireString("limit"); err == nil {
		fmt.Sscanf(raw, "%d", &limit)
	}
	items, err := s.svc.DueQueue(ctx, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(items) == 0 {
		return mcp.NewToolResultText("no topics are due"), nil
	}
	return toolJSON(items)
}

func (s *Server) listTopics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tag := ""
	if t, err := req.RequireString("tag"); err == nil {
		tag = t
	}

	var (
		items models.Collection
		err   error
	)
	if tag != "" {
		items, err = s.svc.CramQueue(ctx, tag)
	} else {
		items, err = s.svc.Items(ctx)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var lines []string
	for _, it := range items {
		lines = append(lines, fmt.Sprintf("%s\t%s\tlevel %d", it.ID, it.Title, it.Level))
	}
	if len(lines) == 0 {
		return mcp.NewToolResultText("no topics found"), nil
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) reviewTopic(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	confidence, err := req.RequireString("confidence")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.svc.Review(ctx, id, models.Confidence(strings.ToLower(strings.TrimSpace(confidence))))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toolJSON(result)
}

func (s *Server) addTopic(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var tags []string
	if raw, err := req.RequireString("tags"); err == nil {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}

	item, err := s.svc.CreateItem(ctx, title, nil, tags, "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toolJSON(item)
}

func (s *Server) captureTopic(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	added, err := s.svc.CaptureInbox(ctx, []string{title})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if added == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("already tracked or captured: %s", title)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("captured: %s", title)), nil
}

func (s *Server) getProgress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := s.svc.Progress(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toolJSON(report)
}

func (s *Server) getTopicContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(TopicContract), nil
}

func (s *Server) readTopicContractResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "mimir://topic-contract",
			MIMEType: "text/markdown",
			Text:     TopicContract,
		},
	}, nil
}
