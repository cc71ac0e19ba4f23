package testkit_test

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	outbound "github.com/shashiranjanraj/storefront/pkg/http"
	"github.com/shashiranjanraj/storefront/pkg/response"
	"github.com/shashiranjanraj/storefront/pkg/testkit"
)

func handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, map[string]any{"pong": true, "caller": r.Header.Get("Authorization")})
	})
	mux.HandleFunc("POST /relay", func(w http.ResponseWriter, r *http.Request) {
		resp, err := outbound.Post("https://hooks.example.com/relay").WithContext(r.Context()).Body(map[string]string{"text": "hello"}).Send()
		if err != nil {
			response.Error(w, http.StatusBadGateway, err.Error())
			return
		}
		response.Write(w, http.StatusAccepted, response.Envelope{
			Status: http.StatusAccepted,
			Data:   map[string]any{"upstream": resp.StatusCode, "id": "r-1"},
		})
	})
	return mux
}

func TestRunDir(t *testing.T) {
	r := &testkit.Runner{Handler: handler(), Tokens: map[string]string{"admin": "admin-token"}}
	r.RunDir(t, "testdata")
}

func TestLoadAcceptsObjectAndArray(t *testing.T) {
	one, err := testkit.Load(filepath.Join("testdata", "02_relay.json"))
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, http.MethodPost, one[0].Method)
	assert.Equal(t, http.StatusAccepted, one[0].ExpectedCode)

	many, err := testkit.Load(filepath.Join("testdata", "01_ping.json"))
	require.NoError(t, err)
	require.Len(t, many, 2)
	assert.Equal(t, http.MethodGet, many[0].Method)
	assert.Equal(t, http.StatusOK, many[0].ExpectedCode)
}

func TestLoadRejectsScenarioWithoutURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"no url"}`), 0o644))

	_, err := testkit.Load(path)
	assert.ErrorContains(t, err, "url is required")
}

func TestDiff(t *testing.T) {
	actual := map[string]any{
		"status": float64(200),
		"data": []any{
			map[string]any{"id": float64(2), "sku": "MUG-1"},
			map[string]any{"id": float64(1), "sku": "TEE-1"},
		},
	}

	assert.Empty(t, testkit.Diff("", map[string]any{"data": []any{map[string]any{"id": "*"}}}, actual))
	assert.Equal(t,
		[]string{"$.data[0].sku: want TEE-1, got MUG-1"},
		testkit.Diff("", map[string]any{"data": []any{map[string]any{"sku": "TEE-1"}}}, actual))
	assert.Equal(t,
		[]string{"$.message: missing"},
		testkit.Diff("", map[string]any{"message": "*"}, actual))
}

func TestMockTransportRejectsUnmatchedCalls(t *testing.T) {
	mt := testkit.NewMockTransport([]testkit.MockStep{{MatchURL: "https://a.example/", Times: 1}})
	client := &http.Client{Transport: mt}

	_, err := client.Get("https://b.example/x")
	assert.Error(t, err)
	assert.Len(t, mt.Unmet(), 1)

	resp, err := client.Get("https://a.example/x")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, 1, mt.Calls(0))
	assert.Empty(t, mt.Unmet())
}
