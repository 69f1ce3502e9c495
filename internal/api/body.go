package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// MaxBodyBytes is the request body ceiling for JSON endpoints (25 MiB).
const MaxBodyBytes = 25 << 20

// Body read failures. Their messages are returned to the client as-is.
var (
	ErrPayloadTooLarge = errors.New("Payload too large")
	ErrInvalidJSON     = errors.New("Invalid JSON")
)

// ReadJSONBody buffers at most maxBytes of the request body and decodes it
// into v. An empty body leaves v untouched and is not an error. Exceeding
// the limit stops the read and marks the connection for closing.
func ReadJSONBody(w http.ResponseWriter, r *http.Request, maxBytes int64, v any) error {
	if r.Body == nil {
		return nil
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return ErrPayloadTooLarge
		}
		return fmt.Errorf("read request body: %w", err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return ErrInvalidJSON
	}
	return nil
}
