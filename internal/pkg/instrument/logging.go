package instrument

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

const masked = "***"

func initLogging(cfg *Config, lp *sdklog.LoggerProvider) {
	slog.SetDefault(slog.New(newHandler(os.Stdout, cfg, lp)))
}

func newHandler(w io.Writer, cfg *Config, lp *sdklog.LoggerProvider) slog.Handler {
	var h slog.Handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       parseLevel(cfg.LogLevel),
		AddSource:   true,
		ReplaceAttr: replaceAttr,
	})

	if lp != nil {
		h = multiHandler{h, otelslog.NewHandler(cfg.ServiceName, otelslog.WithLoggerProvider(lp))}
	}

	return &contextHandler{
		Handler: &maskHandler{Handler: h, keys: lowerSet(cfg.MaskFields)},
		service: cfg.ServiceName,
	}
}

func parseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}

	switch a.Key {
	case slog.TimeKey:
		a.Key = "ts"
	case slog.LevelKey:
		a.Key = "severity"
	case slog.SourceKey:
		src, ok := a.Value.Any().(*slog.Source)
		if !ok {
			return a
		}
		_, rel, found := strings.Cut(src.File, "/internal/")
		if !found {
			return slog.Attr{}
		}
		return slog.String("file", "internal/"+rel+":"+strconv.Itoa(src.Line))
	}
	return a
}

// contextHandler decorates records with request-scoped attributes.
type contextHandler struct {
	slog.Handler
	service string
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if cID := GetCorrelationID(ctx); cID != "" {
		r.AddAttrs(slog.String("_cID", cID))
	}
	if h.service != "" {
		r.AddAttrs(slog.String("service", h.service))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithAttrs(attrs), service: h.service}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithGroup(name), service: h.service}
}

type multiHandler []slog.Handler

func (m multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m multiHandler) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range m {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(multiHandler, len(m))
	for i, h := range m {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (m multiHandler) WithGroup(name string) slog.Handler {
	out := make(multiHandler, len(m))
	for i, h := range m {
		out[i] = h.WithGroup(name)
	}
	return out
}

// maskHandler hides configured keys in attributes and in JSON payloads
// logged as strings, bytes or maps.
type maskHandler struct {
	slog.Handler
	keys map[string]struct{}
}

func (h *maskHandler) Handle(ctx context.Context, r slog.Record) error {
	if len(h.keys) == 0 {
		return h.Handler.Handle(ctx, r)
	}

	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.mask(a))
		return true
	})
	return h.Handler.Handle(ctx, out)
}

func (h *maskHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	m := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		m[i] = h.mask(a)
	}
	return &maskHandler{Handler: h.Handler.WithAttrs(m), keys: h.keys}
}

func (h *maskHandler) WithGroup(name string) slog.Handler {
	return &maskHandler{Handler: h.Handler.WithGroup(name), keys: h.keys}
}

func (h *maskHandler) hidden(key string) bool {
	_, ok := h.keys[strings.ToLower(key)]
	return ok
}

func (h *maskHandler) mask(a slog.Attr) slog.Attr {
	if h.hidden(a.Key) {
		return slog.String(a.Key, masked)
	}

	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindGroup:
		group := v.Group()
		out := make([]slog.Attr, len(group))
		for i, ga := range group {
			out[i] = h.mask(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	case slog.KindString:
		if s, ok := h.maskJSON([]byte(v.String())); ok {
			return slog.String(a.Key, s)
		}
	case slog.KindAny:
		switch val := v.Any().(type) {
		case []byte:
			if s, ok := h.maskJSON(val); ok {
				return slog.String(a.Key, s)
			}
		case json.RawMessage:
			if s, ok := h.maskJSON(val); ok {
				return slog.String(a.Key, s)
			}
		case map[string]any:
			return slog.Any(a.Key, h.maskTree(val))
		}
	}

	return slog.Attr{Key: a.Key, Value: v}
}

func (h *maskHandler) maskJSON(raw []byte) (string, bool) {
	if len(raw) == 0 || (raw[0] != '{' && raw[0] != '[') {
		return "", false
	}

	var tree any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return "", false
	}

	out, err := json.Marshal(h.maskTree(tree))
	if err != nil {
		return "", false
	}
	return string(out), true
}

func (h *maskHandler) maskTree(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			if h.hidden(k) {
				out[k] = masked
				continue
			}
			out[k] = h.maskTree(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = h.maskTree(item)
		}
		return out
	default:
		return v
	}
}

func lowerSet(fields []string) map[string]struct{} {
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			set[f] = struct{}{}
		}
	}
	return set
}
