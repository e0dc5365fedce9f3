package middleware

import (
	"net/http"
	"os"
	"strconv"
	"strings"
)

func envBytes(key string, def int64) int64 {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil && v > 0 {
			return v
		}
	}
	return def
}

// MaxBodyMiddleware enforces a maximum request body size read from env var MAX_BODY_BYTES (in bytes),
// default 1 MiB. Multipart requests (submission and spreadsheet uploads) get a separate, larger
// cap from MAX_MULTIPART_BYTES, default 12 MiB; the handlers enforce their own per-file limits.
func MaxBodyMiddleware(next http.Handler) http.Handler {
	max := envBytes("MAX_BODY_BYTES", 1<<20)
	maxMultipart := envBytes("MAX_MULTIPART_BYTES", 12<<20)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit := max
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			limit = maxMultipart
		}
		r.Body = http.MaxBytesReader(w, r.Body, limit)
		next.ServeHTTP(w, r)
	})
}
