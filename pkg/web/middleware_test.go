package web

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCORS(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := CORS(DefaultCORSOptions)(okHandler)

	testCases := []struct {
		name            string
		method          string
		headers         map[string]string
		expectedStatus  int
		expectedOrigin  string
		expectedMaxAge  string
		expectedHeaders string
	}{
		{
			name:           "request without origin passes through untouched",
			method:         http.MethodGet,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "simple request echoes origin",
			method:         http.MethodGet,
			headers:        map[string]string{"Origin": "http://shop.example"},
			expectedStatus: http.StatusOK,
			expectedOrigin: "http://shop.example",
		},
		{
			name:   "preflight is answered directly",
			method: http.MethodOptions,
			headers: map[string]string{
				"Origin":                        "http://shop.example",
				"Access-Control-Request-Method": http.MethodPatch,
			},
			expectedStatus:  http.StatusNoContent,
			expectedOrigin:  "http://shop.example",
			expectedMaxAge:  "3600",
			expectedHeaders: "Authorization, Content-Type, X-Requested-With, Accept, Origin",
		},
		{
			name:   "preflight does not echo arbitrary requested headers",
			method: http.MethodOptions,
			headers: map[string]string{
				"Origin":                         "http://shop.example",
				"Access-Control-Request-Method":  http.MethodPost,
				"Access-Control-Request-Headers": "X-Admin-Override, Content-Type",
			},
			expectedStatus:  http.StatusNoContent,
			expectedOrigin:  "http://shop.example",
			expectedMaxAge:  "3600",
			expectedHeaders: "Authorization, Content-Type, X-Requested-With, Accept, Origin",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			req := httptest.NewRequest(tc.method, "/api/v1/products", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			rr := httptest.NewRecorder()

			// when
			handler.ServeHTTP(rr, req)

			// then
			assert.Equal(t, tc.expectedStatus, rr.Code)
			assert.Equal(t, tc.expectedOrigin, rr.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tc.expectedMaxAge, rr.Header().Get("Access-Control-Max-Age"))
			assert.Equal(t, tc.expectedHeaders, rr.Header().Get("Access-Control-Allow-Headers"))
		})
	}
}

func TestRequestIDInjector(t *testing.T) {
	var got string
	handler := middleware.RequestID(RequestIDInjector(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = GetRequestID(r.Context())
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "req-42", got)
	assert.Equal(t, "req-42", rec.Header().Get(middleware.RequestIDHeader))
}

func TestRecoverer(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	handler := Recoverer(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()

	require.NotPanics(t, func() {
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rr.Body.String())
}

func TestRecoverer_AbortHandlerPropagates(t *testing.T) {
	handler := Recoverer(slog.New(slog.DiscardHandler))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestStructuredLogger(t *testing.T) {
	testCases := []struct {
		name          string
		path          string
		status        int
		expectedLevel string
	}{
		{name: "success", path: "/api/v1/stats", status: http.StatusOK, expectedLevel: "INFO"},
		{name: "client error", path: "/api/v1/sentiment", status: http.StatusBadRequest, expectedLevel: "WARN"},
		{name: "server error", path: "/api/v1/sentiment", status: http.StatusServiceUnavailable, expectedLevel: "ERROR"},
		{name: "probe", path: "/healthz", status: http.StatusOK, expectedLevel: "DEBUG"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
			handler := StructuredLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))

			// when
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tc.path, nil))

			// then
			var record map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
			assert.Equal(t, tc.expectedLevel, record["level"])
			assert.Equal(t, tc.path, record["path"])
			assert.EqualValues(t, tc.status, record["status"])
		})
	}
}
