// API service for making requests to the watchlist backend
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/wtx/internal/models"
	"github.com/desertthunder/wtx/internal/shared"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "http://127.0.0.1:3080/api"

// APIService makes HTTP requests against the backend's base URL.
//
// Authentication is the transport's job: build the client with an
// [AuthGuard] for guarded calls, or a plain client for login endpoints.
type APIService struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	retries    uint
	retryDelay time.Duration
	logger     *log.Logger
}

// APIOption configures an [APIService].
type APIOption func(*APIService)

// WithRateLimit paces outgoing requests to r per second with the given burst.
// A non-positive r disables pacing.
func WithRateLimit(r float64, burst int) APIOption {
	return func(a *APIService) {
		if r <= 0 {
			a.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		a.limiter = rate.NewLimiter(rate.Limit(r), burst)
	}
}

// WithRetries sets how many times [APIService.GetJSON] tries a request.
func WithRetries(n uint, delay time.Duration) APIOption {
	return func(a *APIService) {
		a.retries = max(n, 1)
		a.retryDelay = delay
	}
}

// WithAPILogger sets the logger.
func WithAPILogger(l *log.Logger) APIOption {
	return func(a *APIService) { a.logger = l }
}

// NewAPIService creates a new API service instance for the backend.
func NewAPIService(baseURL string, client *http.Client, opts ...APIOption) *APIService {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	a := &APIService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
		retries:    1,
		retryDelay: 200 * time.Millisecond,
		logger:     shared.DiscardLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// BaseURL returns the backend base URL without a trailing slash.
func (a *APIService) BaseURL() string { return a.baseURL }

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// OK reports whether the status code is 2xx.
func (r *APIResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// StatusError is a non-2xx backend response.
type StatusError struct {
	StatusCode int
	// Message is the backend's error text when it sent one.
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %d: %s", shared.ErrHTTPStatus, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %d", shared.ErrHTTPStatus, e.StatusCode)
}

// Unwrap lets callers match [shared.ErrHTTPStatus] and, for 401 responses,
// [shared.ErrUnauthorized].
func (e *StatusError) Unwrap() []error {
	if e.StatusCode == http.StatusUnauthorized {
		return []error{shared.ErrHTTPStatus, shared.ErrUnauthorized}
	}
	return []error{shared.ErrHTTPStatus}
}

// ErrorMessage returns the backend's error text carried by err, if any.
func ErrorMessage(err error) string {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Message
	}
	return ""
}

// Get performs a GET request to the specified path and returns the raw response.
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	return a.do(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with the given JSON data and returns the raw response.
func (a *APIService) Post(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	return a.do(ctx, http.MethodPost, path, data)
}

// Put performs a PUT request with the given JSON data and returns the raw response.
func (a *APIService) Put(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	return a.do(ctx, http.MethodPut, path, data)
}

// Delete performs a DELETE request and returns the raw response.
func (a *APIService) Delete(ctx context.Context, path string) (*APIResponse, error) {
	return a.do(ctx, http.MethodDelete, path, nil)
}

func (a *APIService) do(ctx context.Context, method, path string, data []byte) (*APIResponse, error) {
	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
		}
	}

	var body io.Reader
	if data != nil {
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	a.logger.Debug("backend request", "method", method, "path", path)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       raw,
	}

	var jsonData any
	if err := json.Unmarshal(raw, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}

// DoJSON sends in (when non-nil) as JSON and decodes a 2xx body into out
// (when non-nil). Non-2xx responses become a [*StatusError].
func (a *APIService) DoJSON(ctx context.Context, method, path string, in, out any) error {
	var data []byte
	if in != nil {
		var err error
		if data, err = json.Marshal(in); err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	resp, err := a.do(ctx, method, path, data)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return statusError(resp)
	}
	if out == nil || len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// GetJSON is DoJSON for GET requests, retried on transport errors and 5xx
// responses. Only use it for idempotent reads.
func (a *APIService) GetJSON(ctx context.Context, path string, out any) error {
	return retry.Do(
		func() error { return a.DoJSON(ctx, http.MethodGet, path, nil, out) },
		retry.Context(ctx),
		retry.Attempts(a.retries),
		retry.Delay(a.retryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
		retry.OnRetry(func(n uint, err error) {
			a.logger.Warn("retrying backend read", "path", path, "attempt", n+1, "error", err)
		}),
	)
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, shared.ErrNoCredential) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode >= 500
	}
	return errors.Is(err, shared.ErrAPIRequest)
}

func statusError(resp *APIResponse) *StatusError {
	se := &StatusError{StatusCode: resp.StatusCode}
	var body models.ErrorResponse
	if resp.IsJSON && json.Unmarshal(resp.Body, &body) == nil {
		se.Message = body.Error
	}
	return se
}
