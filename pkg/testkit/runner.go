package testkit

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	outbound "github.com/shashiranjanraj/storefront/pkg/http"
)

// Runner fires scenarios at Handler. Tokens maps a scenario's "as" value
// to the bearer token sent with it.
type Runner struct {
	Handler http.Handler
	Tokens  map[string]string
}

// RunDir runs every *.json file in dir as a subtest, in file name order.
func (r *Runner) RunDir(t *testing.T, dir string) {
	t.Helper()

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil || len(files) == 0 {
		t.Fatalf("testkit: no scenario files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		scenarios, err := Load(f)
		if err != nil {
			t.Fatal(err)
		}
		t.Run(strings.TrimSuffix(filepath.Base(f), ".json"), func(t *testing.T) {
			for _, s := range scenarios {
				t.Run(s.Name, func(t *testing.T) { r.Run(t, s) })
			}
		})
	}
}

// Run fires s and checks the status code, the body subset and the
// outbound mocks. It returns the recorded response.
func (r *Runner) Run(t *testing.T, s *Scenario) *httptest.ResponseRecorder {
	t.Helper()

	mt := NewMockTransport(s.Outbound)
	previous := outbound.DefaultClient.Transport
	outbound.DefaultClient.Transport = mt
	defer func() { outbound.DefaultClient.Transport = previous }()

	var body io.Reader
	if len(s.Body) > 0 {
		body = bytes.NewReader(s.Body)
	}
	req := httptest.NewRequest(s.Method, s.URL, body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if s.As != "" {
		token, ok := r.Tokens[s.As]
		if !ok {
			t.Fatalf("[%s] no token registered for %q", s.Name, s.As)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range s.Headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	r.Handler.ServeHTTP(rec, req)

	assert.Equal(t, s.ExpectedCode, rec.Code, "[%s] status\nbody: %s", s.Name, rec.Body.String())
	AssertSubset(t, s.Expect, rec.Body.Bytes(), s.Name)
	for _, miss := range mt.Unmet() {
		assert.Fail(t, "outbound mock not called", "[%s] %s", s.Name, miss)
	}
	return rec
}
