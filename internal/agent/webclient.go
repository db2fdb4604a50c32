package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Endpoint describes one structured-lookup HTTP API.
type Endpoint struct {
	BaseURL    string // e.g. https://lookup.example.com
	Path       string // e.g. /api/v1/person
	QueryParam string // query-string parameter carrying the target; default "q"
	APIKey     string // Bearer token, optional
	Source     string // source label for findings; defaults to the endpoint host
}

// HTTPInvoker is a generic JSON-over-HTTP lookup adapter. One instance per
// endpoint; a single GET per invocation, the decoded JSON object is the
// agent payload verbatim.
type HTTPInvoker struct {
	HTTPClient *http.Client
	Endpoint   Endpoint
}

// NewHTTPInvoker returns an invoker for the endpoint. HTTPClient defaults to
// http.DefaultClient.
func NewHTTPInvoker(ep Endpoint) *HTTPInvoker {
	ep.BaseURL = strings.TrimSuffix(ep.BaseURL, "/")
	if ep.QueryParam == "" {
		ep.QueryParam = "q"
	}
	return &HTTPInvoker{HTTPClient: http.DefaultClient, Endpoint: ep}
}

// Invoke performs the lookup. A non-2xx status is an agent invocation error;
// an empty JSON object is a successful no_data outcome.
func (c *HTTPInvoker) Invoke(ctx context.Context, task Task) (*Result, error) {
	u := fmt.Sprintf("%s%s?%s=%s",
		c.Endpoint.BaseURL, c.Endpoint.Path, c.Endpoint.QueryParam, url.QueryEscape(task.Target))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	if c.Endpoint.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.Endpoint.APIKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("lookup %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return &Result{Data: payload, Source: c.source()}, nil
}

func (c *HTTPInvoker) source() string {
	if c.Endpoint.Source != "" {
		return c.Endpoint.Source
	}
	s := strings.TrimPrefix(strings.TrimPrefix(c.Endpoint.BaseURL, "https://"), "http://")
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	return s
}
