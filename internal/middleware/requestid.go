// Package middleware provides HTTP middleware for TaskRelay.
package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/Strob0t/TaskRelay/internal/logger"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-ID"

// maxInboundIDLen bounds caller-supplied ids before they reach the logs.
const maxInboundIDLen = 128

// RequestID is HTTP middleware that takes X-Request-ID from the request or
// generates a UUID. The id is stored in the context and echoed on the
// response header.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if !validInboundID(id) {
			id = uuid.NewString()
		}

		ctx := logger.WithRequestID(r.Context(), id)
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// validInboundID accepts short printable ASCII ids.
func validInboundID(id string) bool {
	if id == "" || len(id) > maxInboundIDLen {
		return false
	}
	for i := range len(id) {
		if c := id[i]; c < 0x21 || c > 0x7e {
			return false
		}
	}
	return true
}
