package client

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"
)

type Response struct {
	StatusCode int
	Body       []byte
}

type Interface interface {
	Get(ctx context.Context, path string) (*Response, error)
	PostJSON(ctx context.Context, path string, body []byte) (*Response, error)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	GetFunc    func(ctx context.Context, path string) (*Response, error)
	PostFunc   func(ctx context.Context, path string, body []byte) (*Response, error)
}

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

func New(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}

	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}

	return &Client{
		baseURL: opts.BaseURL,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		maxRetries: opts.MaxRetries,
	}
}

func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	if c.GetFunc != nil {
		return c.GetFunc(ctx, path)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.fullURL(path), nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

// PostJSON posts a JSON payload and returns the raw response.
func (c *Client) PostJSON(ctx context.Context, path string, body []byte) (*Response, error) {
	if c.PostFunc != nil {
		return c.PostFunc(ctx, path, body)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.fullURL(path), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) fullURL(path string) string {
	if c.baseURL == "" {
		return path // If no base URL, treat path as full URL
	}
	return c.baseURL + path
}

func (c *Client) do(req *http.Request) (*Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			return
		}
	}(resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}
