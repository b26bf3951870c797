package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/deeptime/pkg/observability"
)

// logRequests logs each request with its status and duration and reports
// it to the HTTP hooks.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		observability.HTTP().OnRequest(ctx, r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		dur := time.Since(start)
		observability.HTTP().OnResponse(ctx, r.Method, r.URL.Path, status, dur)

		fields := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", dur.Round(time.Microsecond),
			"request_id", middleware.GetReqID(ctx),
		}
		if status >= 500 {
			s.logger.Error("request", fields...)
		} else {
			s.logger.Debug("request", fields...)
		}
	})
}
