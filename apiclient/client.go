package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/coreybb/newsdash/models"
	"github.com/coreybb/newsdash/webutil"
)

const (
	preferencesPath = "/api/preferences"
	trendingPath    = "/api/news/trending"
	versionPath     = "/api/version"

	defaultTimeout = 10 * time.Second
	maxErrorBody   = 512
)

// StatusError is returned when the news API answers with a non-2xx status.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s returned status %d", e.Method, e.Path, e.Code)
	}
	return fmt.Sprintf("%s %s returned status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Client talks to the news API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client for the API rooted at baseURL. A zero timeout
// selects a 10s default.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetPreferences fetches the full preferences object.
func (c *Client) GetPreferences(ctx context.Context) (*models.Preferences, error) {
	var prefs models.Preferences
	if err := c.getJSON(ctx, preferencesPath, &prefs); err != nil {
		return nil, err
	}
	return &prefs, nil
}

// UpdatePreferences replaces the preferences object wholesale. The
// response body is not interpreted.
func (c *Client) UpdatePreferences(ctx context.Context, prefs *models.Preferences) error {
	body, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+preferencesPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create preferences request: %w", err)
	}
	req.Header.Set(webutil.HeaderContentType, webutil.ContentTypeJSON)

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// GetTrending fetches the current trending topics.
func (c *Client) GetTrending(ctx context.Context) (*models.TrendingResponse, error) {
	var trending models.TrendingResponse
	if err := c.getJSON(ctx, trendingPath, &trending); err != nil {
		return nil, err
	}
	return &trending, nil
}

// GetVersion fetches the API build metadata.
func (c *Client) GetVersion(ctx context.Context) (*models.VersionInfo, error) {
	var info models.VersionInfo
	if err := c.getJSON(ctx, versionPath, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request for %s: %w", path, err)
	}
	req.Header.Set("Accept", webutil.ContentTypeJSON)

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

// do sends req and turns non-2xx answers into *StatusError.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s request failed: %w", req.Method, req.URL.Path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{
			Method: req.Method,
			Path:   req.URL.Path,
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(respBody)),
		}
	}
	return resp, nil
}
