package middleware_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/hotelstaff/roster/pkg/middleware"
)

func TestWithLoggerAssignsRequestID(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	var seen string
	h := middleware.WithLogger(logger, middleware.DefaultLoggerOptions())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := middleware.UseRequestID(r.Context())
			require.True(t, ok)
			seen = id
			body, _ := io.ReadAll(r.Body)
			require.JSONEq(t, `{"name":"Ann"}`, string(body))
			middleware.UseLogger(r.Context()).Info("inside")
			w.WriteHeader(http.StatusCreated)
		}),
	)

	req := httptest.NewRequest(http.MethodPost, "/staff", strings.NewReader(`{"name":"Ann"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotEmpty(t, seen)
	require.Equal(t, seen, rec.Header().Get("X-Request-ID"))

	var inside *logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Message == "inside" {
			inside = e
		}
	}
	require.NotNil(t, inside)
	require.Equal(t, seen, inside.Data["request_id"])
	require.Equal(t, "request completed", hook.LastEntry().Message)
	require.Equal(t, http.StatusCreated, hook.LastEntry().Data["status_code"])
}

func TestWithLoggerKeepsIncomingRequestID(t *testing.T) {
	logger, _ := test.NewNullLogger()
	h := middleware.WithLogger(logger, middleware.DefaultLoggerOptions())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}),
	)
	req := httptest.NewRequest(http.MethodGet, "/staff", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestWithLoggerRecoversPanic(t *testing.T) {
	logger, hook := test.NewNullLogger()
	h := middleware.WithLogger(logger, middleware.DefaultLoggerOptions())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}),
	)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/staff", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "INTERNAL_SERVER_ERROR", body["code"])
	require.Equal(t, "panic recovered in request handler", hook.LastEntry().Message)
}

func TestRateLimit(t *testing.T) {
	h := middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerPeriod: 2,
		Store:             middleware.NewMemoryStore(),
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/staff", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	require.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest(http.MethodGet, "/staff", nil)
	req.RemoteAddr = "10.0.0.2:5000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
}

func TestRateLimitDisabled(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	h := middleware.RateLimit(middleware.RateLimitConfig{})(next)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}

func TestCors(t *testing.T) {
	h := middleware.Cors("http://front.example")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(w, bytes.NewBufferString("ok"))
	}))

	req := httptest.NewRequest(http.MethodOptions, "/roster/api/staff", nil)
	req.Header.Set("Origin", "http://front.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, "http://front.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/roster/api/staff", nil)
	req.Header.Set("Origin", "http://other.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "ok", rec.Body.String())
}
