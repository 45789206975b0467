package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/mimir/internal/schedule"
	"github.com/starford/mimir/internal/testutil"
	"github.com/starford/mimir/internal/trackerservice"
)

func testServer(t *testing.T) (*Server, *trackerservice.Service) {
	t.Helper()

	db := testutil.TestDB(t)
	svc := trackerservice.NewService(db, schedule.NewEngine(nil))
	return New(svc), svc
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_due_topics":
		result, err = srv.listDueTopics(ctx, req)
	case "list_topics":
		result, err = srv.listTopics(ctx, req)
	case "review_topic":
		result, err = srv.reviewTopic(ctx, req)
	case "add_topic":
		result, err = srv.addTopic(ctx, req)
	case "capture_topic":
		result, err = srv.captureTopic(ctx, req)
	case "get_progress":
		result, err = srv.getProgress(ctx, req)
	case "get_topic_contract":
		result, err = srv.getTopicContract(ctx, req)
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

func TestAddAndListTopics(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "add_topic", map[string]interface{}{
		"title": "Binary search trees",
		"tags":  "cs, algorithms",
	})
	if r.IsError {
		t.Fatalf("add_topic failed: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), "Binary search trees") {
		t.Errorf("add result = %q", resultText(r))
	}

	r = callTool(t, srv, "list_topics", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "Binary search trees") {
		t.Errorf("list result = %q", text)
	}
	if !strings.Contains(text, "level 0") {
		t.Errorf("new topic should be at level 0, got %q", text)
	}
}

func TestListTopicsByTag(t *testing.T) {
	srv, _ := testServer(t)

	callTool(t, srv, "add_topic", map[string]interface{}{"title": "Raft", "tags": "distributed-systems"})
	callTool(t, srv, "add_topic", map[string]interface{}{"title": "B-trees", "tags": "storage"})

	r := callTool(t, srv, "list_topics", map[string]interface{}{"tag": "storage"})
	text := resultText(r)
	if !strings.Contains(text, "B-trees") || strings.Contains(text, "Raft") {
		t.Errorf("tag filter result = %q", text)
	}
}

func TestReviewTopic(t *testing.T) {
	srv, svc := testServer(t)

	item, err := svc.CreateItem(context.Background(), "Bloom filters", nil, nil, "")
	if err != nil {
		t.Fatal(err)
	}

	r := callTool(t, srv, "review_topic", map[string]interface{}{
		"id":         item.ID,
		"confidence": "good",
	})
	if r.IsError {
		t.Fatalf("review_topic failed: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), `"level": 1`) {
		t.Errorf("review result should show level 1, got %q", resultText(r))
	}
}

func TestReviewTopicUnknownConfidence(t *testing.T) {
	srv, svc := testServer(t)

	item, err := svc.CreateItem(context.Background(), "Bloom filters", nil, nil, "")
	if err != nil {
		t.Fatal(err)
	}

	r := callTool(t, srv, "review_topic", map[string]interface{}{
		"id":         item.ID,
		"confidence": "perfect",
	})
	if !r.IsError {
		t.Error("unknown confidence should fail")
	}
}

func TestCaptureTopicDeduplicates(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "capture_topic", map[string]interface{}{"title": "Paxos"})
	if resultText(r) != "captured: Paxos" {
		t.Errorf("first capture = %q", resultText(r))
	}

	r = callTool(t, srv, "capture_topic", map[string]interface{}{"title": "Paxos"})
	if !strings.Contains(resultText(r), "already tracked or captured") {
		t.Errorf("second capture = %q", resultText(r))
	}
}

func TestListDueTopicsEmpty(t *testing.T) {
	srv, _ := testServer(t)

	callTool(t, srv, "add_topic", map[string]interface{}{"title": "Fresh topic"})

	// A just-created topic is scheduled in the future, so nothing is due.
	r := callTool(t, srv, "list_due_topics", map[string]interface{}{})
	if resultText(r) != "no topics are due" {
		t.Errorf("due list = %q", resultText(r))
	}
}

func TestGetTopicContract(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_topic_contract", map[string]interface{}{})
	if !strings.Contains(resultText(r), "Mimir Topic Contract") {
		t.Error("contract text missing")
	}
}
