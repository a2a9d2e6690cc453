//go:generate go run github.com/golang/mock/mockgen -destination=./mocks/remote_client.go -package=mocks . RemoteClient

// Package api implements the client for the smart meter account API.
//
// The client is stateless apart from the bearer token obtained by Login.
// Every call is throttled by a token bucket so that polling many metering
// points cannot flood the vendor.
//
// Example usage:
//
//	client := api.NewClient("https://smartmeter.example", "user", "secret",
//	    api.WithHTTPClient(api.NewHTTPClient(30*time.Second)))
//	if err := client.Login(ctx); err != nil {
//	    return err
//	}
//	samples, err := client.IntervalReadings(ctx, "AT0010000000000000001000004392265", start, end)
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/tejusbharadwaj/wnsm-sync/internal/models"
)

// RemoteClient defines the blocking calls offered by the smart meter account.
type RemoteClient interface {
	// Login establishes a session. Rejected credentials yield ErrAuth.
	Login(ctx context.Context) error

	// ListPoints returns all metering points known to the account.
	ListPoints(ctx context.Context) ([]models.PointSummary, error)

	// PointDetails returns the current attributes of a metering point.
	PointDetails(ctx context.Context, id string) (models.PointDetails, error)

	// IntervalReadings returns the cumulative samples within [start, end).
	IntervalReadings(ctx context.Context, id string, start, end time.Time) ([]models.ReadingSample, error)
}

// APIResponse represents the readings payload of the smart meter API.
type APIResponse struct {
	Result []struct {
		Time  int64   `json:"time"`
		Value float64 `json:"value"`
	} `json:"result"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Client implements RemoteClient over HTTP/JSON.
type Client struct {
	baseURL  string
	username string
	password string
	client   *http.Client
	limiter  *rate.Limiter

	mu    sync.RWMutex
	token string
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.client = c
		}
	}
}

// WithRateLimit sets the request rate (per second) and burst toward the API.
func WithRateLimit(rps float64, burst int) Option {
	return func(cl *Client) {
		if rps > 0 && burst > 0 {
			cl.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL, username, password string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		client:   &http.Client{Timeout: 30 * time.Second},
		limiter:  rate.NewLimiter(5, 10), // 5 requests per second, burst size of 10
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login exchanges the credentials for a bearer token.
func (c *Client) Login(ctx context.Context) error {
	var resp loginResponse
	body := loginRequest{Username: c.username, Password: c.password}
	if err := c.doJSON(ctx, http.MethodPost, "/login", nil, body, &resp); err != nil {
		return err
	}
	if resp.Token == "" {
		return fmt.Errorf("%w: empty token in login response", ErrAuth)
	}

	c.mu.Lock()
	c.token = resp.Token
	c.mu.Unlock()
	return nil
}

func (c *Client) ListPoints(ctx context.Context) ([]models.PointSummary, error) {
	var points []models.PointSummary
	if err := c.doJSON(ctx, http.MethodGet, "/zaehlpunkte", nil, nil, &points); err != nil {
		return nil, err
	}
	return points, nil
}

func (c *Client) PointDetails(ctx context.Context, id string) (models.PointDetails, error) {
	var details models.PointDetails
	if err := c.doJSON(ctx, http.MethodGet, "/zaehlpunkte/"+url.PathEscape(id), nil, nil, &details); err != nil {
		return nil, err
	}
	return details, nil
}

func (c *Client) IntervalReadings(ctx context.Context, id string, start, end time.Time) ([]models.ReadingSample, error) {
	query := url.Values{}
	query.Set("start", start.UTC().Format(time.RFC3339))
	query.Set("end", end.UTC().Format(time.RFC3339))

	var apiResp APIResponse
	path := "/zaehlpunkte/" + url.PathEscape(id) + "/messwerte"
	if err := c.doJSON(ctx, http.MethodGet, path, query, nil, &apiResp); err != nil {
		return nil, err
	}

	samples := make([]models.ReadingSample, len(apiResp.Result))
	for i, data := range apiResp.Result {
		samples[i] = models.ReadingSample{
			Time:  time.Unix(data.Time, 0).UTC(),
			Value: data.Value,
		}
	}
	return samples, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limiter: %v", ErrTransientFetch, err)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.mu.RLock()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.mu.RUnlock()

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransientFetch, err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(method, path, resp.StatusCode); err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrTransientFetch, err)
	}
	return nil
}

func classifyStatus(method, path string, code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: %s %s got %d", ErrAuth, method, path, code)
	case code == http.StatusTooManyRequests || code >= 500:
		return fmt.Errorf("%w: %s %s got %d", ErrTransientFetch, method, path, code)
	default:
		return fmt.Errorf("%w: %s %s got %d", ErrUnexpectedStatus, method, path, code)
	}
}

// Compile-time interface implementation check
var _ RemoteClient = (*Client)(nil)
