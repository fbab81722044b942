package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sadamiak/doodle/internal/core"
	"github.com/sadamiak/doodle/internal/types"
)

// MessagesPath is the collection endpoint for reads and writes.
const MessagesPath = "/api/v1/messages"

// Client talks to the messages API.
type Client struct {
	baseURL    string
	token      string
	pageSize   int
	httpClient *http.Client
	clock      core.Clock
	ids        core.IDGenerator
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithClock sets the clock used for fabricated send records.
func WithClock(clock core.Clock) Option {
	return func(c *Client) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithIDGenerator sets the id source for fabricated send records.
func WithIDGenerator(ids core.IDGenerator) Option {
	return func(c *Client) {
		if ids != nil {
			c.ids = ids
		}
	}
}

// NewClient constructs a messages API client from cfg.
func NewClient(cfg core.Config, opts ...Option) (*Client, error) {
	normalized, err := NormalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = core.DefaultPageSize
	}
	c := &Client{
		baseURL:  normalized,
		token:    cfg.Token,
		pageSize: pageSize,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		clock: core.SystemClock,
		ids:   core.UUIDGenerator,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NormalizeBaseURL normalizes a base URL and ensures it has a scheme.
func NormalizeBaseURL(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", fmt.Errorf("base url cannot be empty")
	}
	parsed, err := url.Parse(value)
	if err != nil {
		return "", fmt.Errorf("invalid base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("base url must include scheme and host (http://)")
	}
	return strings.TrimRight(value, "/"), nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// PageSize returns the limit used when FetchParams.Limit is unset.
func (c *Client) PageSize() int {
	return c.pageSize
}

// FetchPage reads one page of messages. A cancelled ctx returns ctx.Err()
// and no records.
func (c *Client) FetchPage(ctx context.Context, params types.FetchParams) (types.Page, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = c.pageSize
	}
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	if params.Before != "" {
		query.Set("before", params.Before)
	}
	if params.After != "" {
		query.Set("after", params.After)
	}

	status, body, err := c.do(ctx, "fetch", http.MethodGet, query, nil)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, &FetchFailure{Status: status}
	}

	env, err := ParseEnvelope(body)
	if err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return env.Records, nil
}

// SendRecord posts a new message and returns the server's record for it.
// When the response carries no recognizable record, one is fabricated from
// the input with a fresh id and the current time.
func (c *Client) SendRecord(ctx context.Context, input types.SendInput) (types.RawRecord, error) {
	status, body, err := c.do(ctx, "send", http.MethodPost, nil, input)
	if err != nil {
		return types.RawRecord{}, err
	}
	if status < 200 || status >= 300 {
		return types.RawRecord{}, &SendFailure{Status: status, Message: sendErrorText(body)}
	}

	if env, err := ParseEnvelope(body); err == nil {
		if len(env.Records) > 0 && !env.Records[0].IsZero() {
			return env.Records[0], nil
		}
		if env.Bare != nil {
			return *env.Bare, nil
		}
	}

	return types.RawRecord{
		ID:        c.ids.NewID(),
		Author:    input.Author,
		Body:      input.Body,
		CreatedAt: core.FormatTimestamp(c.clock.Now()),
	}, nil
}

func (c *Client) do(ctx context.Context, op, method string, query url.Values, reqBody any) (int, []byte, error) {
	endpoint, err := c.buildURL(MessagesPath, query)
	if err != nil {
		return 0, nil, err
	}

	var body io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return 0, nil, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, c.transportError(ctx, op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, c.transportError(ctx, op, err)
	}
	return resp.StatusCode, data, nil
}

func (c *Client) transportError(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); errors.Is(ctxErr, context.Canceled) {
		return ctxErr
	}
	return &TransportFailure{Op: op, Err: err}
}

func (c *Client) buildURL(path string, query url.Values) (string, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(path)
	if err != nil {
		return "", err
	}
	endpoint := base.ResolveReference(ref)
	if len(query) > 0 {
		endpoint.RawQuery = query.Encode()
	}
	return endpoint.String(), nil
}
