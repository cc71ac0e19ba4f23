package ctx_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestSuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	appctx.Wrap(func(c *appctx.Context) {
		c.Success(map[string]any{"id": 1})
	})(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, 200, env.Status)
	assert.Equal(t, map[string]any{"id": float64(1)}, env.Data)
}

func TestParamUint(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/products/{id}", appctx.Wrap(func(c *appctx.Context) {
		id, ok := c.ParamUint("id")
		if !ok {
			c.NotFound("Product not found")
			return
		}
		c.Success(id)
	}))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/12", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(12), decode(t, rec).Data)

	for _, bad := range []string{"0", "-3", "abc"} {
		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/"+bad, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, bad)
	}
}

func TestIdentityFromAuth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(middleware.WithIdentity(req.Context(), middleware.Identity{UserID: 5, Role: "ADMIN"}))

	appctx.Wrap(func(c *appctx.Context) {
		assert.Equal(t, uint(5), c.UserID())
		assert.Equal(t, "ADMIN", c.Role())
		c.Message("ok")
	})(httptest.NewRecorder(), req)

	appctx.Wrap(func(c *appctx.Context) {
		assert.Zero(t, c.UserID())
		c.Message("ok")
	})(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}

func TestBindJSON(t *testing.T) {
	type input struct {
		Name  string `json:"name"  validate:"required"`
		Email string `json:"email" validate:"required,email"`
	}

	cases := []struct {
		name string
		body string
		ok   bool
		code int
	}{
		{"valid", `{"name":"John","email":"john@example.com"}`, true, http.StatusOK},
		{"invalid fields", `{"name":""}`, false, http.StatusUnprocessableEntity},
		{"malformed", `{"name":`, false, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			appctx.Wrap(func(c *appctx.Context) {
				var in input
				ok := c.BindJSON(&in)
				assert.Equal(t, tc.ok, ok)
				if ok {
					c.Success(in.Name)
				}
			})(rec, req)
			assert.Equal(t, tc.code, rec.Code)
		})
	}
}
