package testkit

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// MockTransport replaces the outbound client's transport for one scenario.
// Requests that match no step fail with an error instead of reaching the
// network.
type MockTransport struct {
	mu    sync.Mutex
	steps []MockStep
	calls []int
}

func NewMockTransport(steps []MockStep) *MockTransport {
	return &MockTransport{steps: steps, calls: make([]int, len(steps))}
}

func (m *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Body != nil {
		_, _ = io.Copy(io.Discard, req.Body)
		_ = req.Body.Close()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	url := req.URL.String()
	for i, step := range m.steps {
		if step.MatchURL != "" && !strings.HasPrefix(url, step.MatchURL) {
			continue
		}
		m.calls[i]++
		code := step.StatusCode
		if code == 0 {
			code = http.StatusOK
		}
		return &http.Response{
			StatusCode: code,
			Status:     http.StatusText(code),
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       io.NopCloser(bytes.NewReader(step.Body)),
			Request:    req,
		}, nil
	}
	return nil, fmt.Errorf("testkit: unmocked outbound %s %s", req.Method, url)
}

// Calls returns how often the step at i answered.
func (m *MockTransport) Calls(i int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[i]
}

// Unmet lists steps called fewer times than they require.
func (m *MockTransport) Unmet() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []string
	for i, step := range m.steps {
		if m.calls[i] < step.Times {
			out = append(out, fmt.Sprintf("%q called %d times, want at least %d", step.MatchURL, m.calls[i], step.Times))
		}
	}
	return out
}
