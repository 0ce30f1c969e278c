package middleware

import (
	"net/http"
)

// MaxBodySize is the default request body limit.
const MaxBodySize = 1 << 20

// MaxBody caps request bodies at maxSize bytes, MaxBodySize when maxSize is
// not positive. Handlers see *http.MaxBytesError once the cap is hit.
func MaxBody(maxSize int64) Middleware {
	if maxSize <= 0 {
		maxSize = MaxBodySize
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxSize {
				writeError(w, r, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			if r.Body != nil && r.Body != http.NoBody {
				r.Body = http.MaxBytesReader(w, r.Body, maxSize)
			}
			next.ServeHTTP(w, r)
		})
	}
}
