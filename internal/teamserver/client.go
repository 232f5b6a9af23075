// File: internal/teamserver/client.go
// Package teamserver is a minimal client for the Contrast TeamServer REST
// API, covering only the organization policy (rules) surface this tool needs.
package teamserver

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	json "github.com/json-iterator/go"
	"go.uber.org/zap"
)

// apiPath is the REST path prefix shared by the hosted and on-premise (EOP)
// deployment flavors. Whatever the operator configures, requests go here.
const apiPath = "/Contrast/api/ng/"

const maxErrorBody = 512

// APIError describes a non-2xx response from the platform.
type APIError struct {
	Status int
	Path   string
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("teamserver: %s returned HTTP %d: %s", e.Path, e.Status, e.Body)
}

// IsAuthFailure reports whether the error represents rejected credentials.
func (e *APIError) IsAuthFailure() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// Config holds the connection settings for a Client.
type Config struct {
	BaseURL    string
	OrgID      string
	APIKey     string
	AuthHeader string
}

// Client talks to a single organization on one TeamServer deployment.
// It is safe for concurrent use, though the sync pass is sequential.
type Client struct {
	baseURL    string // normalized, ends with apiPath
	orgID      string
	apiKey     string
	authHeader string
	httpc      *http.Client
	logger     *zap.Logger
}

// New validates the connection settings and returns a ready client.
func New(cfg Config, httpc *http.Client, logger *zap.Logger) (*Client, error) {
	base, err := NormalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	if cfg.OrgID == "" {
		return nil, fmt.Errorf("teamserver: organization ID is required")
	}
	if cfg.APIKey == "" || cfg.AuthHeader == "" {
		return nil, fmt.Errorf("teamserver: API key and authorization header are required")
	}
	if httpc == nil {
		httpc = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    base,
		orgID:      cfg.OrgID,
		apiKey:     cfg.APIKey,
		authHeader: cfg.AuthHeader,
		httpc:      httpc,
		logger:     logger.Named("teamserver"),
	}, nil
}

// NormalizeBaseURL rewrites any operator-supplied TeamServer URL to the
// canonical API root. Host-only values, trailing slashes and full UI paths
// all resolve to scheme://host/Contrast/api/ng/.
func NormalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("teamserver: invalid base URL %q: %w", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("teamserver: base URL %q must include a scheme and host", raw)
	}
	if u.Path == apiPath {
		return raw, nil
	}
	return u.Scheme + "://" + u.Host + apiPath, nil
}

// BaseURL returns the normalized API root this client targets.
func (c *Client) BaseURL() string { return c.baseURL }

// statusResponse is the envelope the platform wraps around mutation results.
type statusResponse struct {
	Success  bool     `json:"success"`
	Messages []string `json:"messages"`
}

// ListRules fetches every Assess policy rule for the organization.
func (c *Client) ListRules(ctx context.Context) ([]Rule, error) {
	var out struct {
		Count int    `json:"count"`
		Rules []Rule `json:"rules"`
	}
	path := c.orgID + "/rules?expand=skip_links"
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	c.logger.Debug("Fetched organization policy", zap.Int("rules", len(out.Rules)))
	return out.Rules, nil
}

// GetRule fetches a single rule by name.
func (c *Client) GetRule(ctx context.Context, name string) (*Rule, error) {
	var out Rule
	if err := c.get(ctx, c.orgID+"/rules/"+url.PathEscape(name), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateRuleReferences fully overwrites the rule's reference list. Passing an
// empty slice clears it. Any manual content previously saved on the rule is
// destroyed; callers are expected to have warned the operator.
func (c *Client) UpdateRuleReferences(ctx context.Context, ruleName string, references []string) error {
	if references == nil {
		// The API distinguishes a missing field from an empty list; an
		// explicit [] is what clears the references.
		references = []string{}
	}
	body := struct {
		References []string `json:"references"`
	}{References: references}

	var out statusResponse
	path := c.orgID + "/rules/" + url.PathEscape(ruleName)
	if err := c.post(ctx, path, body, &out); err != nil {
		return err
	}
	if !out.Success {
		return fmt.Errorf("teamserver: rule %s update rejected: %s", ruleName, strings.Join(out.Messages, "; "))
	}
	return nil
}

// SendUsageEvent posts a diagnostics event recording whether the integration
// was set up or undone. Best-effort; callers should not fail a pass on error.
func (c *Client) SendUsageEvent(ctx context.Context, reset bool) error {
	mode := "setup"
	if reset {
		mode = "undo"
	}
	body := struct {
		Type string `json:"type"`
	}{Type: mode}

	var out statusResponse
	return c.post(ctx, c.orgID+"/integrations/diagnostics/scw", body, &out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("teamserver: building request for %s: %w", path, err)
	}
	return c.do(req, path, out)
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("teamserver: encoding request for %s: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("teamserver: building request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, path, out)
}

// do attaches the auth headers, executes the request and decodes the JSON
// response into out.
func (c *Client) do(req *http.Request, path string, out any) error {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("API-Key", c.apiKey)
	req.Header.Set("Authorization", c.authHeader)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("teamserver: request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &APIError{Status: resp.StatusCode, Path: path, Body: strings.TrimSpace(string(body))}
		if apiErr.IsAuthFailure() {
			c.logger.Error("Platform rejected the configured credentials",
				zap.Int("status", resp.StatusCode), zap.String("path", path))
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("teamserver: decoding response from %s: %w", path, err)
	}
	return nil
}
