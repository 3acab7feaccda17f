package patterns

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-gol-engine/model"
)

const (
	patternsPath   = "/patterns"
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 512
)

// Client is an HTTP JSON client for a remote pattern catalog exposing
// GET and POST on {baseURL}/patterns.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a catalog client. A nil httpClient uses one with a 10s timeout.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("[NewClient] base URL is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{baseURL: baseURL, http: httpClient}, nil
}

// List fetches every stored pattern. Failures wrap model.ErrFetchFailed.
func (c *Client) List(ctx context.Context) ([]model.Pattern, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+patternsPath, nil)
	if err != nil {
		return nil, errors.Wrapf(model.ErrFetchFailed, "[List] failed to build request: %v", err)
	}
	req.Header.Set("Accept", "application/json")

	var out []model.Pattern
	if err := c.do(req, &out); err != nil {
		return nil, errors.Wrapf(model.ErrFetchFailed, "[List] %v", err)
	}
	return out, nil
}

// Create stores a new pattern. Failures wrap model.ErrPersistFailed.
func (c *Client) Create(ctx context.Context, p model.PatternRequest) (model.Pattern, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return model.Pattern{}, errors.Wrapf(model.ErrPersistFailed, "[Create] failed to encode pattern: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+patternsPath, bytes.NewReader(body))
	if err != nil {
		return model.Pattern{}, errors.Wrapf(model.ErrPersistFailed, "[Create] failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	var out model.Pattern
	if err := c.do(req, &out); err != nil {
		return model.Pattern{}, errors.Wrapf(model.ErrPersistFailed, "[Create] %v", err)
	}
	return out, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", req.Method, req.URL)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return errors.Errorf("%s %s: backend returned %d: %s", req.Method, req.URL, resp.StatusCode, bytes.TrimSpace(snippet))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "%s %s: failed to decode response", req.Method, req.URL)
	}
	return nil
}
