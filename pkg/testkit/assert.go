package testkit

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wildcard in an expected document matches any present value.
const Wildcard = "*"

// AssertSubset checks that every field in expected appears in actual with
// the same value. Arrays match element by element over expected's length.
func AssertSubset(t testing.TB, expected, actual []byte, scenario string) {
	t.Helper()
	if len(expected) == 0 {
		return
	}

	var want, got any
	require.NoError(t, json.Unmarshal(expected, &want), "[%s] expect is not valid JSON", scenario)
	if !assert.NoError(t, json.Unmarshal(actual, &got), "[%s] response is not JSON\nbody: %s", scenario, actual) {
		return
	}

	for _, d := range Diff("", want, got) {
		assert.Fail(t, "response mismatch", "[%s] %s\nbody: %s", scenario, d, actual)
	}
}

// Diff returns one line per place where actual does not contain expected.
func Diff(path string, expected, actual any) []string {
	if s, ok := expected.(string); ok && s == Wildcard {
		if actual == nil {
			return []string{fmt.Sprintf("%s: missing", at(path))}
		}
		return nil
	}

	switch want := expected.(type) {
	case map[string]any:
		got, ok := actual.(map[string]any)
		if !ok {
			return []string{fmt.Sprintf("%s: want object, got %T", at(path), actual)}
		}
		var out []string
		for k, v := range want {
			av, present := got[k]
			if !present {
				out = append(out, fmt.Sprintf("%s.%s: missing", at(path), k))
				continue
			}
			out = append(out, Diff(path+"."+k, v, av)...)
		}
		return out
	case []any:
		got, ok := actual.([]any)
		if !ok {
			return []string{fmt.Sprintf("%s: want array, got %T", at(path), actual)}
		}
		if len(got) < len(want) {
			return []string{fmt.Sprintf("%s: want at least %d elements, got %d", at(path), len(want), len(got))}
		}
		var out []string
		for i := range want {
			out = append(out, Diff(fmt.Sprintf("%s[%d]", path, i), want[i], got[i])...)
		}
		return out
	default:
		if !assert.ObjectsAreEqual(expected, actual) {
			return []string{fmt.Sprintf("%s: want %v, got %v", at(path), expected, actual)}
		}
		return nil
	}
}

func at(path string) string {
	if path == "" {
		return "$"
	}
	return "$" + path
}
