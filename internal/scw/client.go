// File: internal/scw/client.go
// Package scw is a client for the Secure Code Warrior integration (trial)
// API, which maps vulnerability identifiers to training videos and exercises.
package scw

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	json "github.com/json-iterator/go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Mapping lists understood by the trial endpoint.
const (
	// MappingCWE keys content by numeric CWE identifier.
	MappingCWE = "cwe"
	// MappingDefault keys content by SCW's own category keys, e.g.
	// "InjectionFlaws:SQLInjection". Used by the reserve and override tables.
	MappingDefault = "default"
)

// ErrNoContent is returned when the catalog has no training content for a
// mapping key. This is the expected common case, not a failure.
var ErrNoContent = errors.New("scw: no training content for mapping key")

const notFoundName = "Not Found"

// Client queries the integration API. Requests are rate limited; the trial
// endpoint is shared infrastructure and a full catalog pass issues one
// lookup per rule.
type Client struct {
	baseURL       string
	integrationID string
	httpc         *http.Client
	limiter       *rate.Limiter
	logger        *zap.Logger
}

// Config holds the settings for a Client.
type Config struct {
	BaseURL       string
	IntegrationID string
	// RateLimit is the sustained request rate in requests per second.
	RateLimit float64
}

// New returns a ready client.
func New(cfg Config, httpc *http.Client, logger *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("scw: base URL is required")
	}
	if cfg.IntegrationID == "" {
		return nil, fmt.Errorf("scw: integration ID is required")
	}
	if cfg.RateLimit <= 0 {
		return nil, fmt.Errorf("scw: rate limit must be positive")
	}
	if httpc == nil {
		httpc = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:       cfg.BaseURL,
		integrationID: cfg.IntegrationID,
		httpc:         httpc,
		limiter:       rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		logger:        logger.Named("scw"),
	}, nil
}

// TrialURL composes the catalog lookup URL for a mapping key. The same URL,
// extended with a language key, doubles as the operator-facing deep link, so
// it is exposed to the reference builder.
func (c *Client) TrialURL(mappingList, mappingKey string) string {
	q := url.Values{}
	q.Set("Id", c.integrationID)
	q.Set("MappingList", mappingList)
	q.Set("MappingKey", mappingKey)
	return c.baseURL + "/trial?" + q.Encode()
}

// Lookup fetches the training content for a mapping key. Absence of content
// is reported as ErrNoContent so callers can branch with errors.Is.
func (c *Client) Lookup(ctx context.Context, mappingList, mappingKey string) (*Content, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("scw: waiting for rate limiter: %w", err)
	}

	lookupURL := c.TrialURL(mappingList, mappingKey) + "&redirect=false"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return nil, fmt.Errorf("scw: building lookup request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("Looking up training content",
		zap.String("mapping_list", mappingList), zap.String("mapping_key", mappingKey))

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scw: lookup for %s/%s failed: %w", mappingList, mappingKey, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNoContent
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("scw: lookup for %s/%s returned HTTP %d", mappingList, mappingKey, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("scw: reading lookup response: %w", err)
	}
	// The endpoint reports a miss inconsistently: sometimes a bare 200 with
	// no body at all, sometimes a payload carrying a sentinel name.
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ErrNoContent
	}

	var content Content
	if err := json.Unmarshal(body, &content); err != nil {
		return nil, fmt.Errorf("scw: decoding lookup response: %w", err)
	}
	if content.Name == notFoundName || content.isEmpty() {
		return nil, ErrNoContent
	}
	return &content, nil
}

// ExerciseURL builds the per-language deep link into the training platform.
// languageKey is the source platform's language name; the endpoint resolves
// it on redirect.
func ExerciseURL(trialURL, languageKey string) string {
	return trialURL + "&LanguageKey=" + url.QueryEscape(languageKey) + "&redirect=true"
}
