package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/yanizio/regform/internal/requestinfo"
)

// RequestLog writes one structured line per request through the global zap
// logger.  Health and metrics scrapes log at debug to keep the file quiet.
func RequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		log := zap.S().Infow
		if r.URL.Path == "/healthz" || r.URL.Path == "/metrics" {
			log = zap.S().Debugw
		}
		kv := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed", time.Since(start),
			"request_id", chimw.GetReqID(r.Context()),
		}
		kv = append(kv, requestinfo.FromContext(r.Context()).LogFields()...)
		log("http request", kv...)
	})
}
