// Package notion talks to the Notion REST API: paged database queries,
// page blocks, and page create/update for the prospect registry.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"TalentRadar/internal/config"
	"TalentRadar/internal/domain"
)

const (
	defaultBaseURL = "https://api.notion.com/v1"
	defaultVersion = "2022-06-28"
	errorBodyLimit = 2048
)

// Client is a throttled JSON client for the Notion API.
type Client struct {
	token      string
	baseURL    string
	version    string
	minGap     time.Duration
	httpClient *http.Client

	mu      sync.Mutex
	lastReq time.Time
}

// NewClient builds a client from configuration. A missing token is reported
// by the first request, not here.
func NewClient(cfg config.NotionConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	version := cfg.Version
	if version == "" {
		version = defaultVersion
	}
	return &Client{
		token:      strings.TrimSpace(cfg.Token),
		baseURL:    baseURL,
		version:    version,
		minGap:     cfg.MinRequestGap,
		httpClient: httpClient,
	}
}

// APIError is a non-2xx answer from Notion.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notion API %s %s returned %d %s: %s", e.Method, e.Path, e.Status, e.Code, e.Message)
}

// Is classifies the failure: rate limits, auth and server errors are upstream
// outages, 404 is a missing object, any other 4xx is a rejected request.
func (e *APIError) Is(target error) bool {
	switch target {
	case domain.ErrUpstreamUnavailable:
		return e.Status >= 500 || e.Status == http.StatusTooManyRequests ||
			e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	case domain.ErrNotFound:
		return e.Status == http.StatusNotFound
	case domain.ErrQueryRejected:
		return e.Status >= 400 && e.Status < 500 && e.Status != http.StatusNotFound &&
			e.Status != http.StatusTooManyRequests && e.Status != http.StatusUnauthorized &&
			e.Status != http.StatusForbidden
	}
	return false
}

type errorBody struct {
	Object  string `json:"object"`
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *Client) throttle(ctx context.Context) error {
	if c.minGap <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.lastReq.IsZero() {
		if wait := c.minGap - time.Since(c.lastReq); wait > 0 {
			timer := time.NewTimer(wait)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	c.lastReq = time.Now()
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, payload, out any) error {
	if c.token == "" {
		return fmt.Errorf("%w: notion token", domain.ErrConfigurationMissing)
	}
	if err := c.throttle(ctx); err != nil {
		return err
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", c.version)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Upstream(fmt.Errorf("executing request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		apiErr := &APIError{Method: method, Path: path, Status: resp.StatusCode}
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil && eb.Object == "error" {
			apiErr.Code, apiErr.Message = eb.Code, eb.Message
		} else {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.Upstream(fmt.Errorf("decode response: %w", err))
	}
	return nil
}
