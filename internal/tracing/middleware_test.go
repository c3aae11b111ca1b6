package tracing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func spanContextValid(ctx context.Context) bool {
	return trace.SpanContextFromContext(ctx).IsValid()
}

func TestHTTPMiddleware_NilTracerPassesThrough(t *testing.T) {
	var reached bool
	handler := HTTPMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.True(t, reached)
}

func TestHTTPMiddleware_CreatesServerSpan(t *testing.T) {
	provider, err := NewProvider(Config{
		Enabled:  true,
		Exporter: "file",
		FilePath: filepath.Join(t.TempDir(), "traces.jsonl"),
	})
	require.NoError(t, err)
	defer func() { _ = provider.Shutdown(context.Background()) }()

	var sawSpanContext bool
	handler := HTTPMiddleware(provider.Tracer())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The request context must carry the live span.
		sawSpanContext = spanContextValid(r.Context())
		w.WriteHeader(http.StatusNotFound)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/datasets/absent", nil))

	require.True(t, sawSpanContext)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
