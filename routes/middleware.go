package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"yochan/logger"
)

// accessLog logs method, path, status code and duration for every request.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		logger.Request(r.Method, r.URL.Path, status, time.Since(start), middleware.GetReqID(r.Context()))
	})
}
