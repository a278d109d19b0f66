package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, nil))
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}), mark("a"), mark("b"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"a", "b", "handler"}, order)
}

func TestRequestID_Generated(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotEmpty(t, seen)
	assert.Len(t, seen, 36)
	assert.Equal(t, seen, rec.Header().Get(HeaderRequestID))
}

func TestRequestID_Propagated(t *testing.T) {
	h := RequestID(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(HeaderRequestID))
}

func TestAPIVersion_SetBeforeHandler(t *testing.T) {
	var duringHandler string
	h := APIVersion("1.0")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		duringHandler = w.Header().Get(HeaderAPIVersion)
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "1.0", duringHandler)
	assert.Equal(t, "1.0", rec.Header().Get(HeaderAPIVersion))
}

func TestLogger_RecordsStatusAfterResponse(t *testing.T) {
	var buf bytes.Buffer
	h := Logger(newLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Zero(t, buf.Len(), "logged before the handler finished")
		w.WriteHeader(http.StatusCreated)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/students", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "request completed", entry["msg"])
	assert.Equal(t, "POST", entry["method"])
	assert.Equal(t, "/api/v1/students", entry["path"])
	assert.Equal(t, float64(http.StatusCreated), entry["status"])
	assert.Contains(t, entry, "duration")
}

func TestLogger_ImplicitOK(t *testing.T) {
	var buf bytes.Buffer
	h := Logger(newLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hi"))
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, float64(http.StatusOK), entry["status"])
}

func TestRecoverer(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		message string
	}{
		{"error", errors.New("nil map write"), "nil map write"},
		{"string", "something broke", "something broke"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := Recoverer(newLogger(&buf))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				panic(tt.value)
			}))

			rec := httptest.NewRecorder()
			require.NotPanics(t, func() {
				h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
			})

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.JSONEq(t, `{"error":"Internal server error","message":"`+tt.message+`"}`, rec.Body.String())
			assert.NotContains(t, rec.Body.String(), "goroutine")
			assert.Contains(t, buf.String(), "stack")
		})
	}
}

func TestRecoverer_AfterPartialWrite(t *testing.T) {
	var buf bytes.Buffer
	h := Recoverer(newLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"partial":`))
		panic("late failure")
	}))

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/late", nil))
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `{"partial":`, rec.Body.String())
	assert.Contains(t, buf.String(), "late failure")
}

func TestRecoverer_AbortHandlerRepanics(t *testing.T) {
	var buf bytes.Buffer
	h := Recoverer(newLogger(&buf))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestNotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	NotFound(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Route GET /nope not found"}`, rec.Body.String())
}
