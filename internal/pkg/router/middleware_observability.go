package router

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/shandysiswandi/tailor/internal/pkg/instrument"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const maxLoggedBody = 32 * 1024

// statusRecorder captures the status, size and a bounded copy of the body.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
	body   bytes.Buffer
	err    error
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	if room := maxLoggedBody - w.body.Len(); room > 0 {
		w.body.Write(p[:min(room, len(p))])
	}
	n, err := w.ResponseWriter.Write(p)
	w.bytes += n
	return n, err
}

// SetError lets the endpoint report the error behind a failed response.
func (w *statusRecorder) SetError(err error) { w.err = err }

func (w *statusRecorder) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *statusRecorder) code() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

func matchedRoutePath(r *http.Request) string {
	if p := httprouter.ParamsFromContext(r.Context()).MatchedRoutePath(); p != "" {
		return p
	}
	return r.URL.Path
}

// peekBody reads up to maxLoggedBody bytes and restores the body for the handler.
func peekBody(r *http.Request) []byte {
	if r.Body == nil {
		return nil
	}

	head, _ := io.ReadAll(io.LimitReader(r.Body, maxLoggedBody)) //nolint:errcheck // best effort for logging
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(head), r.Body), r.Body}
	return head
}

// loggable returns JSON bodies as raw messages so the log handler can mask
// their keys, and anything else as text.
func loggable(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	if json.Valid(b) {
		return json.RawMessage(b)
	}
	return string(b)
}

func headerTree(h http.Header) map[string]any {
	out := make(map[string]any, len(h))
	for k, v := range h {
		if len(v) == 1 {
			out[k] = v[0]
			continue
		}
		out[k] = v
	}
	return out
}

func middlewareObservability(ins instrument.Instrumentation) Middleware {
	tracer := ins.Tracer("http.server")
	meter := ins.Meter("http.server")

	requests, err := meter.Int64Counter("http.server.requests", metric.WithDescription("Number of HTTP requests received"))
	if err != nil {
		slog.Error("failed to create http request counter", "error", err)
	}

	duration, err := meter.Float64Histogram("http.server.duration",
		metric.WithDescription("HTTP request duration"), metric.WithUnit("ms"))
	if err != nil {
		slog.Error("failed to create http duration histogram", "error", err)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := matchedRoutePath(r)
			start := time.Now()

			ctx, span := tracer.Start(r.Context(), r.Method+" "+route,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					semconv.HTTPRequestMethodKey.String(r.Method),
					semconv.HTTPRouteKey.String(route),
				),
			)
			defer span.End()

			slog.InfoContext(ctx, "request received",
				"method", r.Method,
				"path", route,
				"remote_addr", r.RemoteAddr,
				"headers", headerTree(r.Header),
				"body", loggable(peekBody(r)),
			)

			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r.WithContext(ctx))

			status := rec.code()
			attrs := []attribute.KeyValue{
				semconv.HTTPRequestMethodKey.String(r.Method),
				semconv.HTTPRouteKey.String(route),
				semconv.HTTPResponseStatusCodeKey.Int(status),
			}

			if rec.err != nil {
				span.RecordError(rec.err)
			}
			if status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(status))
			}
			span.SetAttributes(attrs...)

			elapsed := time.Since(start)
			if requests != nil {
				requests.Add(ctx, 1, metric.WithAttributes(attrs...))
			}
			if duration != nil {
				duration.Record(ctx, float64(elapsed.Microseconds())/1000, metric.WithAttributes(attrs...))
			}

			slog.InfoContext(ctx, "response sent",
				"method", r.Method,
				"path", route,
				"status", status,
				"bytes", rec.bytes,
				"latency_ms", elapsed.Milliseconds(),
				"body", loggable(rec.body.Bytes()),
			)
		})
	}
}
