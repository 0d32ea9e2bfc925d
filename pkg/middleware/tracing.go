package middleware

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/hotelstaff/roster/pkg/middleware")

// startSpan continues the caller's W3C trace when the request carries one.
func startSpan(r *http.Request, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx := propagation.TraceContext{}.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	attrs = append(attrs,
		attribute.String("http.method", r.Method),
		attribute.String("http.target", r.URL.Path),
	)
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// TracedMiddleware wraps the rest of the chain in a span named after one
// middleware stage.
func TracedMiddleware(name string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := startSpan(r, "middleware."+name, attribute.String("middleware.name", name))
			defer span.End()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
