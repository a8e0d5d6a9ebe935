package api

import (
	"fmt"
	"net/http"
	"time"
)

// TimingMiddleware records request processing time in the X-Process-Time
// header.
func TimingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		w.Header().Set("X-Process-Time", "pending")
		wrapped := &timingWriter{ResponseWriter: w, start: start}
		next.ServeHTTP(wrapped, r)
	})
}

type timingWriter struct {
	http.ResponseWriter
	start       time.Time
	wroteHeader bool
}

func (tw *timingWriter) WriteHeader(status int) {
	if !tw.wroteHeader {
		elapsed := time.Since(tw.start).Seconds()
		tw.Header().Set("X-Process-Time", fmt.Sprintf("%.6f", elapsed))
		tw.wroteHeader = true
	}
	tw.ResponseWriter.WriteHeader(status)
}

func (tw *timingWriter) Write(b []byte) (int, error) {
	if !tw.wroteHeader {
		tw.WriteHeader(http.StatusOK)
	}
	return tw.ResponseWriter.Write(b)
}
