// Package middleware holds the cross-cutting request pipeline wrapped around
// every handler: request ids, the API version header, access logging and
// panic recovery.
//
// Each middleware has the shape func(http.Handler) http.Handler so they can
// be composed with Chain.
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/aanand-mishra/students-crud/internal/utils/response"
)

const (
	// HeaderRequestID carries the per-request correlation id in both directions.
	HeaderRequestID = "X-Request-ID"
	// HeaderAPIVersion is set on every response to the configured API version.
	HeaderAPIVersion = "X-API-Version"
)

type contextKey string

const requestIDKey contextKey = "requestID"

// Chain applies mws so that the first one listed is the outermost.
func Chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// RequestID reuses the caller's X-Request-ID or mints a new UUID, echoes it
// on the response and stores it in the request context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(HeaderRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, reqID)
		ctx := context.WithValue(r.Context(), requestIDKey, reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID returns the id stored by RequestID, or "".
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// APIVersion sets X-API-Version before the handler runs, so no handler can
// leave it out.
func APIVersion(version string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(HeaderAPIVersion, version)
			next.ServeHTTP(w, r)
		})
	}
}

// statusRecorder remembers the status code written by the handler.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.wroteHeader {
		sr.status = code
		sr.wroteHeader = true
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.wroteHeader {
		sr.WriteHeader(http.StatusOK)
	}
	return sr.ResponseWriter.Write(b)
}

func (sr *statusRecorder) Unwrap() http.ResponseWriter {
	return sr.ResponseWriter
}

// Logger logs one line per request after the handler has returned, so the
// status and elapsed time are final.
func Logger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			log.Info("request completed",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.status),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", GetRequestID(r.Context())),
			)
		})
	}
}

// Recoverer is the terminal error handler. A panicking handler produces a
// 500 with the standard error body; the stack goes to the log only. If the
// handler had already started its response, the panic is only logged.
func Recoverer(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("%v", rec)
				}

				log.Error("panic while handling request",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
					slog.String("stack", string(debug.Stack())),
				)

				if sr.wroteHeader {
					return
				}
				response.WriteJSON(w, http.StatusInternalServerError, response.InternalError(err))
			}()

			next.ServeHTTP(sr, r)
		})
	}
}

// NotFound is the catch-all for routes nothing else matched.
func NotFound(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusNotFound,
		response.GeneralErrorf("Route %s %s not found", r.Method, r.URL.Path))
}
