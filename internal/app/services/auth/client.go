// Package auth talks to the remote authentication service. Failures of any
// kind — network errors included — are recovered into a uniform result
// shape and never propagated as faults to the caller.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/lunaredge/storefront/internal/app/domain/profile"
	"github.com/lunaredge/storefront/internal/app/metrics"
	"github.com/lunaredge/storefront/pkg/logger"
)

// Result is the uniform outcome shape of every auth call.
type Result struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	User    *profile.User `json:"user,omitempty"`
}

// Client calls the remote auth API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *logger.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithRateLimit caps auth attempts to r per second with the given burst.
func WithRateLimit(r float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(r), burst) }
}

// NewClient constructs an auth client for the given API base URL.
func NewClient(baseURL string, log *logger.Logger, opts ...Option) *Client {
	if log == nil {
		log = logger.NewDefault("auth")
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(1), 5),
		log:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register creates a new remote account.
func (c *Client) Register(ctx context.Context, username, email, password string) Result {
	return c.post(ctx, "register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
}

// Login authenticates with the remote service.
func (c *Client) Login(ctx context.Context, email, password string) Result {
	return c.post(ctx, "login", map[string]string{
		"email":    email,
		"password": password,
	})
}

func (c *Client) post(ctx context.Context, op string, payload map[string]string) Result {
	if !c.limiter.Allow() {
		metrics.AuthRequest(op, "throttled")
		return Result{Success: false, Message: "too many attempts, please wait and retry"}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return c.networkFailure(op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+op, bytes.NewReader(body))
	if err != nil {
		return c.networkFailure(op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.networkFailure(op, err)
	}
	defer resp.Body.Close()

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return c.badResponse(op, resp.StatusCode, err)
	}
	if result.Message == "" && !result.Success {
		result.Message = fmt.Sprintf("%s failed (status %d)", op, resp.StatusCode)
	}

	outcome := "failure"
	if result.Success {
		outcome = "success"
	}
	metrics.AuthRequest(op, outcome)
	return result
}

// networkFailure logs the underlying error and hands the caller a
// user-facing message instead.
func (c *Client) networkFailure(op string, err error) Result {
	metrics.AuthRequest(op, "network_error")
	c.log.WithError(err).WithField("op", op).Warn("auth request failed")
	return Result{Success: false, Message: "could not reach the authentication service"}
}

// badResponse covers a reachable server answering with something that is
// not the expected JSON (a proxy error page, for instance).
func (c *Client) badResponse(op string, status int, err error) Result {
	metrics.AuthRequest(op, "bad_response")
	c.log.WithError(err).WithField("op", op).WithField("status", status).Warn("auth response malformed")
	return Result{Success: false, Message: "the authentication service returned an unexpected response"}
}
