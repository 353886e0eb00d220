package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/namjco/sales-tracker/internal/apperr"
)

const maxBodyBytes = 1 << 20

// writeJSON encodes v before touching the response, so an encoding error can
// still be rendered as an error response.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck
	w.Write(append(b, '\n'))
	return nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return apperr.ValidationErr.WrapParent(fmt.Errorf("decode request body: %w", err))
	}
	return nil
}
