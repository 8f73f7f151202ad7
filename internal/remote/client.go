package remote

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

	"golang.org/x/time/rate"
)

// Client talks to the weekly HTTP API. It implements Backend.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	limiter *rate.Limiter
}

type ClientOption func(*Client)

// WithHTTPClient swaps the underlying transport.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.http = h }
}

// WithRateLimit paces outgoing requests to rps per second with a burst of
// rps. Zero or negative disables pacing.
func WithRateLimit(rps int) ClientOption {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), rps)
	}
}

// NewClient creates a client for baseURL authenticated with a bearer token.
// An empty token still allows GetPublic.
func NewClient(baseURL, token string, timeout time.Duration, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type apiError struct {
	Error string `json:"error"`
}

type createRequest struct {
	Name string `json:"name"`
}

type createResponse struct {
	ID string `json:"id"`
}

type shareResponse struct {
	ShareToken string `json:"shareToken,omitempty"`
}

func (c *Client) List(ctx context.Context) ([]Meta, error) {
	var out []Meta
	if err := c.do(ctx, OpList, http.MethodGet, "/api/schedules", true, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Get(ctx context.Context, id string) (Record, error) {
	var out Record
	err := c.do(ctx, OpGet, http.MethodGet, "/api/schedules/"+url.PathEscape(id), true, nil, &out)
	return out, err
}

func (c *Client) GetPublic(ctx context.Context, token string) (Record, error) {
	var out Record
	err := c.do(ctx, OpGetPublic, http.MethodGet, "/api/public/"+url.PathEscape(token), false, nil, &out)
	return out, err
}

func (c *Client) Create(ctx context.Context, name string) (string, error) {
	var out createResponse
	if err := c.do(ctx, OpCreate, http.MethodPost, "/api/schedules", true, createRequest{Name: name}, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("remote create: empty id in response")
	}
	return out.ID, nil
}

func (c *Client) Update(ctx context.Context, id string, p Patch) error {
	return c.do(ctx, OpUpdate, http.MethodPatch, "/api/schedules/"+url.PathEscape(id), true, p, nil)
}

func (c *Client) Delete(ctx context.Context, id string) error {
	err := c.do(ctx, OpDelete, http.MethodDelete, "/api/schedules/"+url.PathEscape(id), true, nil, nil)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

func (c *Client) TogglePublic(ctx context.Context, id string) (string, error) {
	var out shareResponse
	err := c.do(ctx, OpTogglePublic, http.MethodPost, "/api/schedules/"+url.PathEscape(id)+"/share", true, nil, &out)
	return out.ShareToken, err
}

// do performs one request. There is no retry: a failure is reported once.
func (c *Client) do(ctx context.Context, op Op, method, path string, auth bool, in, out any) error {
	if auth && c.token == "" {
		return ErrUnauthenticated
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &NetworkError{Op: string(op), Err: err}
		}
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("remote %s: marshal request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("remote %s: create request: %w", op, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if auth {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: string(op), Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: string(op), Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(op, resp.StatusCode, respBody)
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("remote %s: decode response: %w", op, err)
	}
	return nil
}

func statusError(op Op, code int, body []byte) error {
	switch code {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusUnauthorized:
		return ErrUnauthenticated
	}
	msg := strings.TrimSpace(string(body))
	var apiErr apiError
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
		msg = apiErr.Error
	}
	if code >= 500 {
		return &NetworkError{Op: string(op), Err: fmt.Errorf("server error (%d): %s", code, msg)}
	}
	return fmt.Errorf("remote %s: request rejected (%d): %s", op, code, msg)
}
