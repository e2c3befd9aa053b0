package catalogserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/iangithub/langchain-ai-agent/llm"
	"github.com/iangithub/langchain-ai-agent/tool"
)

// Client talks to a catalog server and proxies its tools.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client for the server at baseURL.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// Tools fetches the server's tool definitions and returns local proxies that
// forward Call over HTTP.
func (c *Client) Tools(ctx context.Context) ([]tool.Tool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/tools", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalogserver: list tools: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalogserver: list tools: unexpected status %d", resp.StatusCode)
	}

	var defs []llm.ToolDefinition
	if err := json.NewDecoder(resp.Body).Decode(&defs); err != nil {
		return nil, fmt.Errorf("catalogserver: decode tool list: %w", err)
	}

	out := make([]tool.Tool, 0, len(defs))
	for _, d := range defs {
		d := d
		out = append(out, tool.NewFunc(d.Name, d.Description, d.Parameters,
			func(ctx context.Context, args map[string]any) (string, error) {
				return c.call(ctx, d.Name, args)
			}))
	}
	return out, nil
}

func (c *Client) call(ctx context.Context, name string, args map[string]any) (string, error) {
	body, err := json.Marshal(callRequest{Name: name, Arguments: args})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tools/call", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("catalogserver: call %s: %w", name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("catalogserver: call %s: read response: %w", name, err)
	}
	var cr callResponse
	if err := json.Unmarshal(raw, &cr); err != nil {
		return "", fmt.Errorf("catalogserver: call %s: decode response: %w", name, err)
	}
	if cr.Error != "" {
		return "", fmt.Errorf("catalogserver: call %s: %s", name, cr.Error)
	}
	return cr.Result, nil
}
