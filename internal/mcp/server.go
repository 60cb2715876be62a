// Package mcp exposes the test history over the Model Context Protocol so
// coding agents can ask which tests are flaky without parsing report files.
package mcp

import (
	"context"
	"fmt"
	"sort"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"mirror/internal/display"
	"mirror/internal/flaky"
	"mirror/internal/history"
	"mirror/internal/logging"
	"mirror/internal/model"
)

// Version is reported in the MCP handshake.
var Version = "dev"

// Server wraps the MCP SDK server. Every tool reads the history file fresh
// and none of them write it.
type Server struct {
	MCPServer   *sdkmcp.Server
	HistoryPath string
}

// NewServer creates an MCP server over the history at historyPath.
func NewServer(historyPath string) *Server {
	if historyPath == "" {
		historyPath = history.DefaultPath
	}
	s := &Server{HistoryPath: historyPath}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "mirror", Version: Version},
		nil,
	)
	s.registerTools()
	return s
}

// Run serves over stdio until ctx is done or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "get_flaky_tests",
		Description: "List tests whose recent outcomes flip between pass and fail, most flaky first.",
	}, s.handleGetFlakyTests)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "get_test_history",
		Description: "Show the recorded outcome window of one test with its flakiness score.",
	}, s.handleGetTestHistory)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "list_tests",
		Description: "List tracked test ids, optionally filtered by prefix.",
	}, s.handleListTests)
}

// --- Tool input/output types ---

type getFlakyTestsInput struct {
	Top int `json:"top,omitempty" jsonschema:"maximum number of tests to return (default 10, 0 = default)"`
}

type flakyTest struct {
	TestID      string  `json:"test_id"`
	Score       float64 `json:"score"`
	Transitions int     `json:"transitions"`
	Runs        int     `json:"runs"`
	Recent      string  `json:"recent"`
}

type getFlakyTestsOutput struct {
	Tracked int         `json:"tracked"`
	Flaky   int         `json:"flaky"`
	Tests   []flakyTest `json:"tests"`
}

type getTestHistoryInput struct {
	TestID string `json:"test_id" jsonschema:"test id as classname.name"`
}

type getTestHistoryOutput struct {
	TestID   string   `json:"test_id"`
	Found    bool     `json:"found"`
	Outcomes []string `json:"outcomes"`
	Runs     int      `json:"runs"`
	Score    *float64 `json:"score,omitempty"`
	Flaky    bool     `json:"flaky"`
}

type listTestsInput struct {
	Prefix string `json:"prefix,omitempty" jsonschema:"only ids starting with this prefix"`
}

type listTestsOutput struct {
	Tests []string `json:"tests"`
	Total int      `json:"total"`
}

// --- Tool handlers ---

func (s *Server) load() (*history.Store, error) {
	store, err := history.Load(s.HistoryPath)
	if err != nil {
		logging.New("mcp").Warn("history unavailable", "path", s.HistoryPath, "error", err)
		return nil, fmt.Errorf("load history: %w", err)
	}
	return store, nil
}

func (s *Server) handleGetFlakyTests(ctx context.Context, _ *sdkmcp.CallToolRequest, input getFlakyTestsInput) (*sdkmcp.CallToolResult, getFlakyTestsOutput, error) {
	if input.Top < 0 {
		return nil, getFlakyTestsOutput{}, fmt.Errorf("top must not be negative")
	}
	store, err := s.load()
	if err != nil {
		return nil, getFlakyTestsOutput{}, err
	}
	top := input.Top
	if top == 0 {
		top = flaky.DefaultTop
	}

	findings := flaky.Detect(store.All())
	out := getFlakyTestsOutput{
		Tracked: store.Len(),
		Flaky:   len(findings),
		Tests:   []flakyTest{},
	}
	for _, f := range flaky.Top(findings, top) {
		out.Tests = append(out.Tests, flakyTest{
			TestID:      string(f.ID),
			Score:       f.Score,
			Transitions: f.Transitions,
			Runs:        f.Runs,
			Recent:      display.OutcomeStrip(outcomeCodes(f.Outcomes)),
		})
	}
	return nil, out, nil
}

func (s *Server) handleGetTestHistory(ctx context.Context, _ *sdkmcp.CallToolRequest, input getTestHistoryInput) (*sdkmcp.CallToolResult, getTestHistoryOutput, error) {
	if strings.TrimSpace(input.TestID) == "" {
		return nil, getTestHistoryOutput{}, fmt.Errorf("test_id is required")
	}
	store, err := s.load()
	if err != nil {
		return nil, getTestHistoryOutput{}, err
	}

	out := getTestHistoryOutput{TestID: input.TestID, Outcomes: []string{}}
	w, ok := store.Window(model.TestID(input.TestID))
	if !ok {
		return nil, out, nil
	}
	outcomes := w.Outcomes()
	out.Found = true
	out.Outcomes = outcomeCodes(outcomes)
	out.Runs = len(outcomes)
	if score, ok := flaky.Score(outcomes); ok {
		rounded := flaky.Round(score)
		out.Score = &rounded
		out.Flaky = flaky.IsFlaky(score)
	}
	return nil, out, nil
}

func (s *Server) handleListTests(ctx context.Context, _ *sdkmcp.CallToolRequest, input listTestsInput) (*sdkmcp.CallToolResult, listTestsOutput, error) {
	store, err := s.load()
	if err != nil {
		return nil, listTestsOutput{}, err
	}
	out := listTestsOutput{Tests: []string{}}
	for _, e := range store.All() {
		if strings.HasPrefix(string(e.ID), input.Prefix) {
			out.Tests = append(out.Tests, string(e.ID))
		}
	}
	sort.Strings(out.Tests)
	out.Total = len(out.Tests)
	return nil, out, nil
}

func outcomeCodes(outcomes []model.Outcome) []string {
	codes := make([]string, len(outcomes))
	for i, o := range outcomes {
		codes[i] = string(o)
	}
	return codes
}
