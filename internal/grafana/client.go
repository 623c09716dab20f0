// Package grafana synthesizes dashboard JSON documents and deploys them to a
// Grafana-compatible observability backend over its HTTP API.
package grafana

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Config holds connection settings for the observability backend.
type Config struct {
	BaseURL  string
	Username string
	Password string
	Timeout  time.Duration
	Logger   *slog.Logger
}

// Client is a basic-auth HTTP client for the dashboard API. Unlike the BI
// backend, this API is idempotent by uid (create-or-overwrite), so the client
// carries no reconciliation state.
type Client struct {
	baseURL  string
	username string
	password string
	client   *http.Client
	logger   *slog.Logger
}

// NewClient returns a client for the given backend.
func NewClient(cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		username: cfg.Username,
		password: cfg.Password,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		enc, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to encode body for %s: %w", path, err)
		}
		reader = bytes.NewReader(enc)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	req.SetBasicAuth(c.username, c.password)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, fmt.Errorf("failed to read response from %s: %w", path, err)
	}
	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, fmt.Errorf("%s %s returned malformed body: %w", method, path, err)
		}
	}
	return resp.StatusCode, nil
}

// CreateOrUpdate posts a dashboard payload. The call is idempotent by uid:
// with overwrite set, the backend replaces any existing dashboard.
func (c *Client) CreateOrUpdate(ctx context.Context, payload DashboardPayload) (string, error) {
	var out struct {
		Status  string `json:"status"`
		UID     string `json:"uid"`
		Message string `json:"message"`
	}
	status, err := c.do(ctx, http.MethodPost, "/api/dashboards/db", payload, &out)
	if err != nil {
		return "", err
	}
	if status < 200 || status >= 300 || (out.Status != "success" && out.UID == "") {
		return "", fmt.Errorf("dashboard deploy rejected: %d: %s", status, out.Message)
	}
	return out.UID, nil
}

// SearchHit is one entry from the dashboard search endpoint.
type SearchHit struct {
	UID   string `json:"uid"`
	Title string `json:"title"`
}

// SearchByTag lists dashboards carrying the given tag.
func (c *Client) SearchByTag(ctx context.Context, tag string) ([]SearchHit, error) {
	var hits []SearchHit
	path := "/api/search?tag=" + url.QueryEscape(tag)
	status, err := c.do(ctx, http.MethodGet, path, nil, &hits)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("dashboard search returned %d", status)
	}
	return hits, nil
}

// DeleteByUID removes a dashboard. Deleting a missing uid is an error.
func (c *Client) DeleteByUID(ctx context.Context, uid string) error {
	status, err := c.do(ctx, http.MethodDelete, "/api/dashboards/uid/"+url.PathEscape(uid), nil, nil)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("delete of dashboard %s returned %d", uid, status)
	}
	return nil
}

// Clean deletes every dashboard tagged with family whose title ends in the
// family suffix, and returns how many were removed. Search failures are soft:
// a backend without any matching dashboards is a normal starting state.
func (c *Client) Clean(ctx context.Context, family string) (int, error) {
	hits, err := c.SearchByTag(ctx, family)
	if err != nil {
		c.logger.Warn("could not search existing dashboards", "tag", family, "error", err)
		return 0, nil
	}

	suffix := "-" + family
	deleted := 0
	for _, hit := range hits {
		if hit.UID == "" || !strings.HasSuffix(hit.Title, suffix) {
			continue
		}
		if err := c.DeleteByUID(ctx, hit.UID); err != nil {
			c.logger.Warn("failed to delete dashboard", "uid", hit.UID, "error", err)
			continue
		}
		c.logger.Info("deleted dashboard", "title", hit.Title, "uid", hit.UID)
		deleted++
	}
	return deleted, nil
}

// DeployFile loads a dashboard document from disk and deploys it with
// overwrite semantics. The document's id is cleared so the backend treats it
// as a create. When clean is set, any dashboard with the document's uid is
// deleted first.
func (c *Client) DeployFile(ctx context.Context, path string, clean bool) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read dashboard file: %w", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", fmt.Errorf("invalid dashboard JSON in %s: %w", path, err)
	}
	doc["id"] = nil

	if clean {
		if uid, _ := doc["uid"].(string); uid != "" {
			if err := c.DeleteByUID(ctx, uid); err != nil {
				c.logger.Debug("no existing dashboard to delete", "uid", uid, "error", err)
			}
		}
	}

	payload := DashboardPayload{
		Dashboard: doc,
		Overwrite: true,
		Message:   "Deployed via dashforge",
	}
	return c.CreateOrUpdate(ctx, payload)
}
