package linkding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultTimeout = 15 * time.Second

// Client talks to the linkding REST API. It holds no state beyond the
// endpoint and token; it never retries and never touches any cache.
type Client struct {
	BaseURL   string
	Token     string
	HTTP      *http.Client
	UserAgent string
	Log       *logrus.Logger
}

// NewClient creates a client for the given server. The base URL is trimmed
// of surrounding space and trailing slashes.
func NewClient(baseURL, token string, timeout time.Duration) (*Client, error) {
	base := NormalizeBaseURL(baseURL)
	if base == "" {
		return nil, errors.New("linkding: base URL is empty")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("linkding: invalid base URL %q: %w", baseURL, err)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		BaseURL:   base,
		Token:     token,
		HTTP:      &http.Client{Timeout: timeout},
		UserAgent: "lnk/0.1",
	}, nil
}

// NormalizeBaseURL trims whitespace and trailing slashes from a server URL.
func NormalizeBaseURL(raw string) string {
	return strings.TrimRight(strings.TrimSpace(raw), "/")
}

// do sends one request and returns the status code and raw body.
// Transport failures come back as *NetworkError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any) (int, []byte, error) {
	if c.Token == "" {
		return 0, nil, ErrNoToken
	}

	fullURL := c.BaseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.Token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, nil, ctxErr
		}
		return 0, nil, &NetworkError{Op: method + " " + path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &NetworkError{Op: "read " + path, Err: err}
	}
	return resp.StatusCode, b, nil
}

// getJSON performs a GET and decodes a 2xx body into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	status, body, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	if err := checkStatus(status, body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// sendJSON performs a write and decodes the response when out is non-nil.
func (c *Client) sendJSON(ctx context.Context, method, path string, payload, out any, want ...int) error {
	status, body, err := c.do(ctx, method, path, nil, payload)
	if err != nil {
		return err
	}
	if err := checkStatus(status, body, want...); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
