// Package client is a typed HTTP client for the apartment listing API.
//
// It mirrors what the web front end does: page-numbered listing with a fixed
// page size, lookup by id and creation. Idempotent requests are retried on
// 429 and 5xx responses, honouring Retry-After.
package client

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

	"golang.org/x/time/rate"

	"github.com/helixir/apartment-listing-service/internal/domain"
)

// DefaultPageSize is the number of listings shown per page.
const DefaultPageSize = 12

// Config configures the client.
type Config struct {
	// BaseURL is the API root, e.g. http://localhost:4000.
	BaseURL string

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// RateLimit is the maximum requests per second. Zero disables limiting.
	RateLimit float64

	// Burst is the maximum burst when RateLimit is set.
	Burst int

	// MaxRetries is the number of retries for GET requests.
	MaxRetries int

	// RetryDelay is the wait between retries when the server gives no Retry-After.
	RetryDelay time.Duration

	// UserAgent is sent with every request.
	UserAgent string
}

// Client talks to the apartment listing API. It is safe for concurrent use.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	limiter *rate.Limiter
	config  Config
}

// New creates a client. BaseURL must be an absolute http(s) URL.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("client: base URL is required")
	}
	u, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("client: invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("client: unsupported scheme %q", u.Scheme)
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 500 * time.Millisecond
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "apartment-listing-client/1.0"
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: cfg.Timeout},
		config:  cfg,
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return c, nil
}

// ListOptions selects a page of listings. Page is 1-based; values below 1
// mean the first page. PageSize defaults to DefaultPageSize.
type ListOptions struct {
	Page     int
	PageSize int
	Query    string
}

// Page is one page of listings.
type Page struct {
	Apartments []*domain.Apartment
	Total      int64
	Page       int
	PageSize   int
	TotalPages int
	SearchTerm string
}

// List fetches a page of listings with offset (page-1)*pageSize.
func (c *Client) List(ctx context.Context, opts ListOptions) (*Page, error) {
	page := opts.Page
	if page < 1 {
		page = 1
	}
	size := opts.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}

	q := url.Values{}
	q.Set("limit", strconv.Itoa(size))
	q.Set("offset", strconv.Itoa((page-1)*size))
	if term := strings.TrimSpace(opts.Query); term != "" {
		q.Set("q", term)
	}

	var resp struct {
		Data domain.ApartmentList `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/apartments", q, nil, &resp); err != nil {
		return nil, err
	}

	result := &Page{
		Apartments: resp.Data.Apartments,
		Total:      resp.Data.Total,
		Page:       page,
		PageSize:   size,
		TotalPages: int((resp.Data.Total + int64(size) - 1) / int64(size)),
	}
	if resp.Data.SearchTerm != nil {
		result.SearchTerm = *resp.Data.SearchTerm
	}
	return result, nil
}

// Get fetches one listing. A missing listing is an *APIError with status 404.
func (c *Client) Get(ctx context.Context, id int64) (*domain.Apartment, error) {
	var resp struct {
		Data *domain.Apartment `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/apartments/"+strconv.FormatInt(id, 10), nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Create submits a new listing. Validation failures are an *APIError with
// status 400 whose Detail is the server's field message.
func (c *Client) Create(ctx context.Context, input domain.CreateApartmentInput) (*domain.Apartment, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("encode apartment: %w", err)
	}

	var resp struct {
		Message string            `json:"message"`
		Data    *domain.Apartment `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/apartments", nil, body, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Health calls the liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/health", nil, nil, &resp); err != nil {
		return err
	}
	if resp.Status != "ok" {
		return fmt.Errorf("server reported status %q", resp.Status)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body []byte, out interface{}) error {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	retries := 0
	if method == http.MethodGet {
		retries = c.config.MaxRetries
	}

	for attempt := 0; ; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("rate limiter wait: %w", err)
			}
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", c.config.UserAgent)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || attempt >= retries {
				return fmt.Errorf("request failed: %w", err)
			}
			if err := wait(ctx, c.config.RetryDelay); err != nil {
				return err
			}
			continue
		}

		if shouldRetry(resp.StatusCode) && attempt < retries {
			delay := retryDelay(resp, c.config.RetryDelay)
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			if err := wait(ctx, delay); err != nil {
				return err
			}
			continue
		}

		return decodeResponse(resp, out)
	}
}

func decodeResponse(resp *http.Response, out interface{}) error {
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func shouldRetry(status int) bool {
	return status == http.StatusTooManyRequests || (status >= 500 && status < 600)
}

// retryDelay respects Retry-After given in seconds or as an HTTP date.
func retryDelay(resp *http.Response, fallback time.Duration) time.Duration {
	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		return fallback
	}
	if seconds, err := strconv.ParseInt(retryAfter, 10, 64); err == nil {
		if seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
		return fallback
	}
	if t, err := http.ParseTime(retryAfter); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return fallback
}

func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
