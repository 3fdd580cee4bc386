package ultra

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

const (
	// DefaultBaseURL is the UltraDNS REST API endpoint.
	DefaultBaseURL = "https://restapi.ultradns.com"

	// DefaultTimeout bounds every API request.
	DefaultTimeout = 5 * time.Second

	// DefaultUserAgent is sent when no other user agent is configured.
	DefaultUserAgent = "ultrasync/dev"

	// errorCodeNoData is the API error code for "Data not found".
	errorCodeNoData = 70002
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client performs authenticated requests against the UltraDNS REST API.
// It holds no caches; see Provider for those.
type Client struct {
	baseURL   string
	userAgent string
	timeout   time.Duration
	base      http.RoundTripper
	http      *http.Client
	logger    *slog.Logger
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithBaseURL overrides DefaultBaseURL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) { c.timeout = timeout }
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) { c.userAgent = userAgent }
}

// WithTransport sets the underlying round tripper (default http.DefaultTransport).
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(c *Client) { c.base = rt }
}

// WithLogger sets the logger used for request tracing and failures.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates an unauthenticated client. Call Login before issuing
// API requests.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		userAgent: DefaultUserAgent,
		timeout:   DefaultTimeout,
		base:      http.DefaultTransport,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	c.baseURL = strings.TrimRight(c.baseURL, "/")
	c.base = &userAgentTransport{base: c.base, userAgent: c.userAgent}
	c.http = &http.Client{Timeout: c.timeout, Transport: c.base}
	return c
}

// request sends one API request. query and body may be nil; a non-nil body
// is sent as JSON. The raw response body is returned on success.
//
// With expectJSON set, a "data not found" body yields ErrNoZonesExist.
// Any 401 yields ErrUnauthorized. Other failures yield *HTTPError.
func (c *Client) request(ctx context.Context, method, path string, query url.Values, body any, expectJSON bool) ([]byte, error) {
	c.logger.Debug("request", "method", method, "path", path)

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body for %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response for %s %s: %w", method, path, err)
	}

	c.logger.Debug("response", "method", method, "path", path, "status", resp.StatusCode)

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}

	if expectJSON && isNoData(data) {
		return nil, ErrNoZonesExist
	}

	if resp.StatusCode >= http.StatusBadRequest {
		httpErr := &HTTPError{
			Method:     method,
			URL:        u,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(data),
		}
		c.logger.Error("request failed",
			"method", method,
			"url", u,
			"status", resp.StatusCode,
			"reason", http.StatusText(resp.StatusCode),
			"body", string(data),
		)
		return nil, httpErr
	}

	return data, nil
}

// getJSON issues a GET and decodes the response into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	data, err := c.request(ctx, http.MethodGet, path, query, nil, true)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response for GET %s: %w", path, err)
	}
	return nil
}

// isNoData reports whether body is the API's single-element error array
// carrying errorCode 70002.
func isNoData(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return false
	}
	var errs []apiError
	if err := json.Unmarshal(trimmed, &errs); err != nil {
		return false
	}
	return len(errs) == 1 && errs[0].ErrorCode == errorCodeNoData
}

type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(req)
}
