// Package testkit drives HTTP API tests from JSON scenario files.
//
// A file holds one scenario or an array of them. Files in a directory run
// in name order and scenarios inside a file run in the order written, all
// against the same handler, so a later step can rely on rows an earlier
// one created:
//
//	[
//	  {
//	    "name": "customer places an order",
//	    "method": "POST",
//	    "url": "/api/v1/orders",
//	    "as": "customer",
//	    "body": {"items": [{"productId": 1, "quantity": 2}]},
//	    "expectedCode": 200,
//	    "expect": {"data": {"status": "PENDING", "totalAmount": "39.98"}}
//	  }
//	]
//
// "expect" is matched as a subset of the response body; the string "*"
// matches any present value. "as" names a bearer token registered on the
// Runner. "outbound" mocks calls made through pkg/http.
package testkit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

type Scenario struct {
	Name         string            `json:"name"`
	Method       string            `json:"method"`
	URL          string            `json:"url"`
	As           string            `json:"as"`
	Headers      map[string]string `json:"headers"`
	Body         json.RawMessage   `json:"body"`
	ExpectedCode int               `json:"expectedCode"`
	Expect       json.RawMessage   `json:"expect"`
	Outbound     []MockStep        `json:"outbound"`
}

// MockStep answers outbound requests whose URL starts with MatchURL.
type MockStep struct {
	MatchURL   string          `json:"matchUrl"`
	StatusCode int             `json:"statusCode"`
	Body       json.RawMessage `json:"body"`
	// Times is the minimum number of calls expected; 0 means optional.
	Times int `json:"times"`
}

// Load reads the scenarios in path.
func Load(path string) ([]*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testkit: read %s: %w", path, err)
	}

	var list []*Scenario
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		var one Scenario
		if err := json.Unmarshal(trimmed, &one); err != nil {
			return nil, fmt.Errorf("testkit: parse %s: %w", path, err)
		}
		list = []*Scenario{&one}
	} else if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("testkit: parse %s: %w", path, err)
	}

	for i, s := range list {
		if err := s.validate(); err != nil {
			return nil, fmt.Errorf("testkit: %s[%d]: %w", filepath.Base(path), i, err)
		}
	}
	return list, nil
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.URL == "" {
		return fmt.Errorf("%s: url is required", s.Name)
	}
	if s.Method == "" {
		s.Method = http.MethodGet
	}
	s.Method = strings.ToUpper(s.Method)
	if s.ExpectedCode == 0 {
		s.ExpectedCode = http.StatusOK
	}
	return nil
}
