package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestTimeout is the fixed timeout carried by every outbound call.
const RequestTimeout = 30 * time.Second

const hiddenValue = "***HIDDEN***"

var sensitiveHeaders = []string{"x-token", "authorization", "x-company-login"}

var sensitiveFields = []string{"password", "token", "refresh_token", "auth_token", "api_key", "secret"}

// Doer issues a single HTTP request. *http.Client satisfies it, as does the
// standard client of a retryablehttp client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Response is the fully-read result of an outbound call.
type Response struct {
	StatusCode int
	Body       []byte
}

// Decode unmarshals the response body into v.
func (r *Response) Decode(v interface{}) error {
	return json.Unmarshal(r.Body, v)
}

// IsError reports whether the response carries an HTTP error status.
func (r *Response) IsError() bool { return r.StatusCode >= 400 }

// Client wraps outbound HTTP calls to the SimplyBook API with correlation-ID
// tagged logging. Sensitive header and body fields are masked before being
// recorded.
type Client struct {
	baseURL string
	headers map[string]string
	doer    Doer
	log     *zap.SugaredLogger
}

// New builds a client with the default transport and the fixed request
// timeout.
func New(baseURL string, headers map[string]string, logger *zap.SugaredLogger) *Client {
	return NewWithDoer(baseURL, headers, &http.Client{Timeout: RequestTimeout}, logger)
}

// NewWithDoer builds a client on a caller-supplied transport. Resource
// clients use this to bring a retrying transport.
func NewWithDoer(baseURL string, headers map[string]string, doer Doer, logger *zap.SugaredLogger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		headers: headers,
		doer:    doer,
		log:     logger,
	}
}

// WithHeaders returns a copy of the client with the given headers merged
// over the existing ones. The transport and logger are shared.
func (c *Client) WithHeaders(h map[string]string) *Client {
	merged := make(map[string]string, len(c.headers)+len(h))
	for k, v := range c.headers {
		merged[k] = v
	}
	for k, v := range h {
		merged[k] = v
	}
	return &Client{baseURL: c.baseURL, headers: merged, doer: c.doer, log: c.log}
}

func (c *Client) Get(ctx context.Context, path string, params url.Values) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, params, nil)
}

func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.do(ctx, http.MethodPost, path, nil, body)
}

func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.do(ctx, http.MethodPut, path, nil, body)
}

func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body interface{}) (*Response, error) {
	fullURL := c.baseURL + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("unable to encode request body: %w", err)
		}
	}

	requestID := "req-" + uuid.NewString()
	c.log.Debugw("API request",
		"request_id", requestID,
		"method", method,
		"url", fullURL,
		"headers", sanitizeHeaders(c.headers),
		"body", sanitizeBody(payload),
	)

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("unable to create a new request: %w", err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.doer.Do(req)
	if err != nil {
		c.log.Errorw("API error",
			"request_id", requestID,
			"method", method,
			"url", fullURL,
			"error", err.Error(),
		)
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.Errorw("API error",
			"request_id", requestID,
			"method", method,
			"url", fullURL,
			"error", err.Error(),
		)
		return nil, fmt.Errorf("unable to read response body: %w", err)
	}

	c.log.Debugw("API response",
		"request_id", requestID,
		"status_code", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
		"success", resp.StatusCode < 400,
		"body", sanitizeBody(respBody),
	)

	return &Response{StatusCode: resp.StatusCode, Body: respBody}, nil
}

func sanitizeHeaders(headers map[string]string) map[string]string {
	safe := make(map[string]string, len(headers))
	for k, v := range headers {
		safe[k] = v
		for _, s := range sensitiveHeaders {
			if strings.EqualFold(k, s) {
				safe[k] = hiddenValue
				break
			}
		}
	}
	return safe
}

// sanitizeBody masks secret fields at the top level of a JSON object body.
// Non-object bodies are recorded as-is.
func sanitizeBody(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}

	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return string(raw)
	}

	for _, field := range sensitiveFields {
		if _, ok := data[field]; ok {
			data[field] = hiddenValue
		}
	}

	safe, err := json.Marshal(data)
	if err != nil {
		return ""
	}
	return string(safe)
}
