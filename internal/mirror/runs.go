package mirror

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"mirror/internal/payload"
)

// Received echoes what the API ingested from a payload.
type Received struct {
	Events          int `json:"events"`
	Decisions       int `json:"decisions"`
	ArtifactsHashed int `json:"artifacts_hashed"`
}

// RunCreateResponse is the answer to POST /runs.
type RunCreateResponse struct {
	RunID        string   `json:"run_id"`
	DashboardURL string   `json:"dashboard_url"`
	Received     Received `json:"received"`
}

// RunListItem is one row of GET /runs.
type RunListItem struct {
	payload.RunMeta
	Coverage payload.Coverage `json:"coverage"`
}

// RunDetail is the answer to GET /runs/{id}.
type RunDetail struct {
	Run       payload.RunMeta     `json:"run"`
	Manifest  payload.RunManifest `json:"manifest"`
	Coverage  payload.Coverage    `json:"coverage"`
	Decisions []payload.Decision  `json:"decisions"`
}

// IdempotencyKey derives a stable key from the run id, so re-pushing the
// same run is recognized by the API.
func IdempotencyKey(runID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("mirror:run:"+runID)).String()
}

// CreateRun POSTs p to /runs. It is not retried.
func (c *Client) CreateRun(ctx context.Context, p *payload.Payload) (*RunCreateResponse, error) {
	if p == nil || p.Run.RunID == "" || p.Run.Project == "" {
		return nil, fmt.Errorf("create run: run_id and project are required")
	}
	h := http.Header{}
	h.Set("Idempotency-Key", IdempotencyKey(p.Run.RunID))

	var out RunCreateResponse
	if err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/runs", "create run", p, &out, h); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListRuns returns recent runs, optionally filtered by project. limit <= 0
// uses the server default.
func (c *Client) ListRuns(ctx context.Context, project string, limit int) ([]RunListItem, error) {
	q := url.Values{}
	if project != "" {
		q.Set("project", project)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	u := c.baseURL + "/runs"
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	var out []RunListItem
	if err := c.doJSON(ctx, http.MethodGet, u, "list runs", nil, &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

// GetRun fetches one run with its manifest, coverage and decisions.
func (c *Client) GetRun(ctx context.Context, runID string) (*RunDetail, error) {
	var out RunDetail
	u := c.baseURL + "/runs/" + url.PathEscape(runID)
	if err := c.doJSON(ctx, http.MethodGet, u, "get run", nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetDecisions fetches only the oracle decisions of a run.
func (c *Client) GetDecisions(ctx context.Context, runID string) ([]payload.Decision, error) {
	var out []payload.Decision
	u := c.baseURL + "/runs/" + url.PathEscape(runID) + "/decisions"
	if err := c.doJSON(ctx, http.MethodGet, u, "get decisions", nil, &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}
