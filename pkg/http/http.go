// Package http is the outbound HTTP client used for webhooks. Requests are
// built fluently and retried with exponential backoff:
//
//	resp, err := http.Post(webhookURL).
//	    WithContext(ctx).
//	    Body(payload).
//	    Timeout(5 * time.Second).
//	    Retry(3, 500*time.Millisecond).
//	    Send()
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	gohttp "net/http"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/logger"
)

var defaultTransport = &gohttp.Transport{
	MaxIdleConns:        50,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     90 * time.Second,
}

// DefaultClient sends every request. Tests may swap its Transport.
var DefaultClient = &gohttp.Client{Transport: defaultTransport}

func ResetTransport() { DefaultClient.Transport = defaultTransport }

type Request struct {
	method    string
	url       string
	headers   map[string]string
	body      any
	timeout   time.Duration
	attempts  int
	retryWait time.Duration
	ctx       context.Context
}

func Get(url string) *Request  { return newRequest(gohttp.MethodGet, url) }
func Post(url string) *Request { return newRequest(gohttp.MethodPost, url) }

func newRequest(method, url string) *Request {
	return &Request{
		method:    method,
		url:       url,
		headers:   map[string]string{"Accept": "application/json"},
		timeout:   10 * time.Second,
		attempts:  1,
		retryWait: 500 * time.Millisecond,
		ctx:       context.Background(),
	}
}

func (r *Request) Header(key, value string) *Request {
	r.headers[key] = value
	return r
}

func (r *Request) Headers(h map[string]string) *Request {
	for k, v := range h {
		r.headers[k] = v
	}
	return r
}

// Body sets the payload. Strings and byte slices are sent raw, anything
// else as JSON.
func (r *Request) Body(v any) *Request {
	r.body = v
	return r
}

// Timeout bounds each attempt.
func (r *Request) Timeout(d time.Duration) *Request {
	r.timeout = d
	return r
}

// Retry sets the total number of attempts and the first backoff, which
// doubles after every failure.
func (r *Request) Retry(attempts int, wait time.Duration) *Request {
	if attempts < 1 {
		attempts = 1
	}
	r.attempts = attempts
	r.retryWait = wait
	return r
}

func (r *Request) WithContext(ctx context.Context) *Request {
	r.ctx = ctx
	return r
}

// Send runs the request. Transport errors and 5xx answers are retried;
// the last 5xx response is returned as-is once attempts run out.
func (r *Request) Send() (*Response, error) {
	var (
		resp    *Response
		lastErr error
	)
	backoff := r.retryWait

	for attempt := 1; attempt <= r.attempts; attempt++ {
		resp, lastErr = r.do()
		if lastErr == nil && resp.StatusCode < 500 {
			return resp, nil
		}
		if attempt == r.attempts {
			break
		}

		logger.WithCtx(r.ctx).Warn("http: request failed, retrying",
			"url", r.url, "attempt", attempt, "backoff", backoff, "error", describe(resp, lastErr))
		select {
		case <-time.After(backoff):
		case <-r.ctx.Done():
			return nil, r.ctx.Err()
		}
		backoff *= 2
	}

	if lastErr != nil {
		return nil, fmt.Errorf("http: %s %s failed after %d attempts: %w", r.method, r.url, r.attempts, lastErr)
	}
	return resp, nil
}

func describe(resp *Response, err error) string {
	if err != nil {
		return err.Error()
	}
	return fmt.Sprintf("HTTP %d", resp.StatusCode)
}

func (r *Request) do() (*Response, error) {
	body, ct, err := r.encodeBody()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
	defer cancel()

	req, err := gohttp.NewRequestWithContext(ctx, r.method, r.url, body)
	if err != nil {
		return nil, fmt.Errorf("http: build request: %w", err)
	}
	if ct != "" {
		req.Header.Set("Content-Type", ct)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	resp, err := DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("http: read body: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Raw: raw}, nil
}

func (r *Request) encodeBody() (io.Reader, string, error) {
	switch v := r.body.(type) {
	case nil:
		return nil, "", nil
	case string:
		return bytes.NewBufferString(v), "text/plain", nil
	case []byte:
		return bytes.NewReader(v), "application/octet-stream", nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, "", fmt.Errorf("http: marshal body: %w", err)
		}
		return bytes.NewReader(b), "application/json", nil
	}
}

type Response struct {
	StatusCode int
	Header     gohttp.Header
	Raw        []byte
}

func (r *Response) OK() bool { return r.StatusCode >= 200 && r.StatusCode < 300 }

func (r *Response) JSON(dest any) error {
	if err := json.Unmarshal(r.Raw, dest); err != nil {
		return fmt.Errorf("http: decode JSON: %w", err)
	}
	return nil
}

// Throw turns a non-2xx answer into an error.
func (r *Response) Throw() error {
	if !r.OK() {
		return fmt.Errorf("HTTP %d", r.StatusCode)
	}
	return nil
}
