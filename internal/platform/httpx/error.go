package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

// Error represents the canonical JSON error envelope returned by the API.
// Every error response carries a null data field and a numeric code that
// mirrors the HTTP status.
type Error struct {
	Code    int
	Message string
	Details map[string]any
}

// NewError constructs a new Error with the provided status code and message.
func NewError(code int, message string) Error {
	if code == 0 {
		code = http.StatusInternalServerError
	}
	return Error{
		Code:    code,
		Message: sanitize(message, 512),
	}
}

// WithDetails attaches additional JSON-serialisable metadata.
func (e Error) WithDetails(details map[string]any) Error {
	if len(details) == 0 {
		return e
	}
	copyDetails := make(map[string]any, len(details))
	for k, v := range details {
		copyDetails[k] = v
	}
	e.Details = copyDetails
	return e
}

// WriteError writes the structured error as JSON to the provided response writer.
func WriteError(ctx context.Context, w http.ResponseWriter, err Error) {
	status := err.Code
	if status == 0 {
		status = http.StatusInternalServerError
	}

	inner := map[string]any{
		"code":    status,
		"message": err.Message,
	}
	if len(err.Details) > 0 {
		inner["details"] = err.Details
	}
	if requestID := sanitize(middleware.GetReqID(ctx), 80); requestID != "" {
		inner["request_id"] = requestID
	}

	payload := map[string]any{
		"data":  nil,
		"error": inner,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteJSON writes a successful payload wrapped in the data envelope.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
}

// WriteList writes a successful list payload with its total row count in the
// metadata block.
func WriteList(w http.ResponseWriter, status int, data any, total int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data":     data,
		"metadata": map[string]any{"total": total},
	})
}

func sanitize(value string, limit int) string {
	if limit <= 0 {
		limit = 256
	}
	value = strings.ReplaceAll(value, "\n", " ")
	value = strings.ReplaceAll(value, "\r", " ")
	value = strings.TrimSpace(value)
	if len(value) > limit {
		value = value[:limit]
	}
	return value
}
