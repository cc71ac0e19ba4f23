// Package bind decodes an HTTP JSON body into a struct and validates it.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/validate"
)

const defaultMaxBody = 1 << 20

// JSON decodes r.Body into dest (capped at MAX_BODY_BYTES) and validates it.
// It returns (errs, nil) for validation failures and (nil, err) when the
// body is empty, malformed or too large.
func JSON(r *http.Request, dest interface{}) (map[string]string, error) {
	limit := int64(config.Int("MAX_BODY_BYTES", defaultMaxBody))
	r.Body = http.MaxBytesReader(nil, r.Body, limit)

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return nil, fmt.Errorf("request body too large (max %d bytes)", maxErr.Limit)
		case errors.Is(err, io.EOF):
			return nil, errors.New("request body is empty")
		default:
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	}

	if errs := validate.Struct(dest); validate.HasErrors(errs) {
		return errs, nil
	}
	return nil, nil
}
