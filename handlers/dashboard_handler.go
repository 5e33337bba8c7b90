// handlers/dashboard_handler.go
package handlers

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// NewRouter serves the pre-rendered dashboard at "/" and nothing else.
func NewRouter(page []byte, logger log.FieldLogger) http.Handler {
	router := mux.NewRouter()
	router.Use(requestLogger(logger))

	router.Handle("/", DashboardHandler(page)).Methods(http.MethodGet, http.MethodHead)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.WithFields(log.Fields{"method": r.Method, "path": r.URL.Path}).Debug("No such route")
		http.NotFound(w, r)
	})
	return router
}

// DashboardHandler writes the same page bytes for every request.
func DashboardHandler(page []byte) http.Handler {
	modified := time.Now()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		http.ServeContent(w, r, "index.html", modified, bytes.NewReader(page))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger log.FieldLogger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			logger.WithFields(log.Fields{
				"method":  r.Method,
				"path":    r.URL.Path,
				"status":  rec.status,
				"latency": time.Since(start).String(),
				"remote":  r.RemoteAddr,
			}).Info("Served request")
		})
	}
}
