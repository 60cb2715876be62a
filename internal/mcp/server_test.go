package mcp_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	mcpserver "mirror/internal/mcp"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	})))
	os.Exit(m.Run())
}

const historyJSON = `{
  "tests.test_clock.test_drift": ["pass", "fail", "pass", "fail", "pass"],
  "tests.test_clock.test_skew": ["pass", "pass", "pass", "fail"],
  "tests.test_api.test_stable": ["pass", "pass", "pass", "pass", "pass"],
  "tests.test_api.test_new": ["fail", "pass"]
}
`

func writeHistory(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reports", "test_history.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func connectInMemory(t *testing.T, ctx context.Context, srv *mcpserver.Server) *sdkmcp.ClientSession {
	t.Helper()
	t1, t2 := sdkmcp.NewInMemoryTransports()
	serverSession, err := srv.MCPServer.Connect(ctx, t1, nil)
	if err != nil {
		t.Fatalf("server.Connect: %v", err)
	}
	t.Cleanup(func() { serverSession.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, t2, nil)
	if err != nil {
		t.Fatalf("client.Connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func callTool(t *testing.T, ctx context.Context, session *sdkmcp.ClientSession, name string, args map[string]any) map[string]any {
	t.Helper()
	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	if res.IsError {
		for _, c := range res.Content {
			if tc, ok := c.(*sdkmcp.TextContent); ok {
				t.Fatalf("CallTool(%s) returned error: %s", name, tc.Text)
			}
		}
		t.Fatalf("CallTool(%s) returned error", name)
	}
	result := make(map[string]any)
	for _, c := range res.Content {
		if tc, ok := c.(*sdkmcp.TextContent); ok {
			if err := json.Unmarshal([]byte(tc.Text), &result); err != nil {
				t.Fatalf("unmarshal tool result: %v (text: %s)", err, tc.Text)
			}
			return result
		}
	}
	t.Fatalf("no text content in tool result")
	return nil
}

func callToolExpectError(t *testing.T, ctx context.Context, session *sdkmcp.ClientSession, name string, args map[string]any) {
	t.Helper()
	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		return
	}
	if !res.IsError {
		t.Fatalf("CallTool(%s): expected IsError=true", name)
	}
}

func TestServer_ToolDiscovery(t *testing.T) {
	srv := mcpserver.NewServer(writeHistory(t, "{}"))
	ctx := context.Background()
	session := connectInMemory(t, ctx, srv)

	tools, err := session.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	want := map[string]bool{
		"get_flaky_tests":  false,
		"get_test_history": false,
		"list_tests":       false,
	}
	for _, tool := range tools.Tools {
		if _, ok := want[tool.Name]; ok {
			want[tool.Name] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("tool %q not found in ListTools", name)
		}
	}
}

func TestGetFlakyTests(t *testing.T) {
	path := writeHistory(t, historyJSON)
	before, _ := os.ReadFile(path)
	srv := mcpserver.NewServer(path)
	ctx := context.Background()
	session := connectInMemory(t, ctx, srv)

	got := callTool(t, ctx, session, "get_flaky_tests", map[string]any{})
	if got["tracked"].(float64) != 4 || got["flaky"].(float64) != 2 {
		t.Errorf("counts: %v", got)
	}
	tests := got["tests"].([]any)
	if len(tests) != 2 {
		t.Fatalf("tests = %v", tests)
	}
	first := tests[0].(map[string]any)
	if first["test_id"] != "tests.test_clock.test_drift" || first["score"].(float64) != 1 {
		t.Errorf("first = %v", first)
	}
	second := tests[1].(map[string]any)
	if second["test_id"] != "tests.test_clock.test_skew" || second["score"].(float64) != 0.333 {
		t.Errorf("second = %v", second)
	}

	limited := callTool(t, ctx, session, "get_flaky_tests", map[string]any{"top": 1})
	if n := len(limited["tests"].([]any)); n != 1 {
		t.Errorf("top=1 returned %d tests", n)
	}

	after, _ := os.ReadFile(path)
	if string(before) != string(after) {
		t.Error("history file was modified by a read-only tool")
	}
}

func TestGetFlakyTests_NegativeTop(t *testing.T) {
	srv := mcpserver.NewServer(writeHistory(t, historyJSON))
	ctx := context.Background()
	session := connectInMemory(t, ctx, srv)
	callToolExpectError(t, ctx, session, "get_flaky_tests", map[string]any{"top": -1})
}

func TestGetTestHistory(t *testing.T) {
	srv := mcpserver.NewServer(writeHistory(t, historyJSON))
	ctx := context.Background()
	session := connectInMemory(t, ctx, srv)

	got := callTool(t, ctx, session, "get_test_history", map[string]any{"test_id": "tests.test_clock.test_skew"})
	if got["found"] != true || got["flaky"] != true || got["runs"].(float64) != 4 {
		t.Errorf("skew = %v", got)
	}
	if got["score"].(float64) != 0.333 {
		t.Errorf("score = %v", got["score"])
	}

	short := callTool(t, ctx, session, "get_test_history", map[string]any{"test_id": "tests.test_api.test_new"})
	if _, has := short["score"]; has {
		t.Errorf("short window should have no score: %v", short)
	}
	if short["flaky"] != false {
		t.Errorf("short window flagged flaky: %v", short)
	}

	missing := callTool(t, ctx, session, "get_test_history", map[string]any{"test_id": "nope"})
	if missing["found"] != false || len(missing["outcomes"].([]any)) != 0 {
		t.Errorf("missing = %v", missing)
	}

	callToolExpectError(t, ctx, session, "get_test_history", map[string]any{"test_id": " "})
}

func TestListTests(t *testing.T) {
	srv := mcpserver.NewServer(writeHistory(t, historyJSON))
	ctx := context.Background()
	session := connectInMemory(t, ctx, srv)

	got := callTool(t, ctx, session, "list_tests", map[string]any{"prefix": "tests.test_api."})
	tests := got["tests"].([]any)
	if got["total"].(float64) != 2 || tests[0] != "tests.test_api.test_new" || tests[1] != "tests.test_api.test_stable" {
		t.Errorf("list = %v", got)
	}
}

func TestMissingHistory_IsEmpty(t *testing.T) {
	srv := mcpserver.NewServer(filepath.Join(t.TempDir(), "absent.json"))
	ctx := context.Background()
	session := connectInMemory(t, ctx, srv)

	got := callTool(t, ctx, session, "get_flaky_tests", map[string]any{})
	if got["tracked"].(float64) != 0 || len(got["tests"].([]any)) != 0 {
		t.Errorf("got %v", got)
	}
}

func TestCorruptHistory_ToolError(t *testing.T) {
	srv := mcpserver.NewServer(writeHistory(t, "{not json"))
	ctx := context.Background()
	session := connectInMemory(t, ctx, srv)
	callToolExpectError(t, ctx, session, "get_flaky_tests", map[string]any{})
}

func TestWatchParent_StopsWhenContextCanceled(t *testing.T) {
	old := mcpserver.ParentPollInterval
	mcpserver.ParentPollInterval = 10 * time.Millisecond
	t.Cleanup(func() { mcpserver.ParentPollInterval = old })

	ctx, cancel := context.WithCancel(context.Background())
	called := make(chan struct{}, 1)
	mcpserver.WatchParent(ctx, func() { called <- struct{}{} })
	cancel()

	time.Sleep(50 * time.Millisecond)
	select {
	case <-called:
		t.Error("cancel invoked although the parent is alive")
	default:
	}
}
