package middleware

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
)

type ctxKey int

const (
	loggerKey ctxKey = iota
	requestIDKey
)

const defaultRequestIDHeader = "X-Request-ID"

type LoggerOptions struct {
	RequestIDHeader string
	// RealIPHeader names a proxy header holding the client address.
	RealIPHeader string
	// LogBodies logs JSON request bodies of mutating calls at debug level,
	// cut to MaxBodyLength bytes. Uploads are never logged.
	LogBodies     bool
	MaxBodyLength int
	Repanic       bool
}

func DefaultLoggerOptions() LoggerOptions {
	return LoggerOptions{
		RequestIDHeader: defaultRequestIDHeader,
		LogBodies:       true,
		MaxBodyLength:   512,
	}
}

// UseLogger returns the request-scoped logger, or the standard logger outside a request.
func UseLogger(ctx context.Context) logrus.FieldLogger {
	if l, ok := ctx.Value(loggerKey).(logrus.FieldLogger); ok {
		return l
	}
	return logrus.StandardLogger()
}

// UseRequestID returns the id assigned by WithLogger.
func UseRequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey).(string)
	return id, ok
}

type statusWriter struct {
	http.ResponseWriter
	status  int
	written bool
}

func (w *statusWriter) WriteHeader(code int) {
	if w.written {
		return
	}
	w.status = code
	w.written = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := w.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

func (w *statusWriter) code() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

func requestID(r *http.Request, header string) string {
	if v := strings.TrimSpace(r.Header.Get(header)); v != "" {
		return v
	}
	return uuid.NewString()
}

func clientAddr(r *http.Request, header string) string {
	if header != "" {
		if v := strings.TrimSpace(r.Header.Get(header)); v != "" {
			return v
		}
	}
	return r.RemoteAddr
}

// logBody logs a JSON body of a mutating call and restores it for the handler.
func logBody(log logrus.FieldLogger, r *http.Request, limit int) {
	switch r.Method {
	case http.MethodPost, http.MethodPatch, http.MethodPut:
	default:
		return
	}
	if r.Body == nil || !strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "json") {
		return
	}
	raw, err := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		log.WithError(err).Warn("request body unreadable")
		return
	}
	if limit > 0 && len(raw) > limit {
		raw = append(raw[:limit:limit], "..."...)
	}
	log.WithField("body", string(raw)).Debug("request body")
}

func writePanicResponse(w *statusWriter, id string) {
	if w.written {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"code":    "INTERNAL_SERVER_ERROR",
		"message": "internal server error",
		"meta":    map[string]string{"request_id": id},
	})
}

// WithLogger logs every request, opens its root span and turns handler panics
// into a JSON 500.
func WithLogger(logger *logrus.Logger, opts LoggerOptions) mux.MiddlewareFunc {
	if opts.RequestIDHeader == "" {
		opts.RequestIDHeader = defaultRequestIDHeader
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			id := requestID(r, opts.RequestIDHeader)
			addr := clientAddr(r, opts.RealIPHeader)

			log := logger.WithFields(logrus.Fields{
				"request_id": id,
				"method":     r.Method,
				"path":       r.URL.Path,
			})
			log.WithFields(logrus.Fields{
				"remote_addr": addr,
				"user_agent":  r.UserAgent(),
			}).Debug("request started")
			if opts.LogBodies {
				logBody(log, r, opts.MaxBodyLength)
			}

			ctx, span := startSpan(r, "http.request",
				attribute.String("http.request_id", id),
				attribute.String("net.peer.ip", addr),
			)
			defer span.End()
			propagation.TraceContext{}.Inject(ctx, propagation.HeaderCarrier(w.Header()))
			if sc := span.SpanContext(); sc.HasTraceID() {
				w.Header().Set("X-Trace-Id", sc.TraceID().String())
				log = log.WithField("trace_id", sc.TraceID().String())
			}

			ctx = context.WithValue(ctx, loggerKey, log)
			ctx = context.WithValue(ctx, requestIDKey, id)
			r.Header.Set(opts.RequestIDHeader, id)
			w.Header().Set(opts.RequestIDHeader, id)

			sw := &statusWriter{ResponseWriter: w}
			defer func() {
				recovered := recover()
				if recovered == nil {
					return
				}
				log.WithFields(logrus.Fields{
					"panic":    recovered,
					"stack":    string(debug.Stack()),
					"duration": time.Since(start),
				}).Error("panic recovered in request handler")
				writePanicResponse(sw, id)
				if opts.Repanic {
					panic(recovered)
				}
			}()

			next.ServeHTTP(sw, r.WithContext(ctx))

			status := sw.code()
			elapsed := time.Since(start)
			span.SetAttributes(
				attribute.Int("http.status_code", status),
				attribute.Int64("http.duration_ms", elapsed.Milliseconds()),
			)
			entry := log.WithFields(logrus.Fields{
				"status_code": status,
				"duration":    elapsed,
			})
			if status >= http.StatusInternalServerError {
				entry.Warn("request completed")
				return
			}
			entry.Info("request completed")
		})
	}
}
