// Package router adapts julienschmidt/httprouter to handlers that return a
// payload or an error, encoding both into a JSON envelope.
package router

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/shandysiswandi/tailor/internal/pkg/config"
	"github.com/shandysiswandi/tailor/internal/pkg/goerror"
	"github.com/shandysiswandi/tailor/internal/pkg/instrument"
	"github.com/shandysiswandi/tailor/internal/pkg/jwt"
	"github.com/shandysiswandi/tailor/internal/pkg/uid"
	"github.com/shandysiswandi/tailor/internal/pkg/validator"
)

type errorResponse struct {
	Message string            `json:"message" example:"Filter already exists"`
	Error   map[string]string `json:"error,omitempty"`
}

type successResponse struct {
	Message string         `json:"message" example:"request has been successfully"`
	Data    any            `json:"data" swaggertype:"object"`
	Meta    map[string]any `json:"meta,omitempty" swaggertype:"object"`
}

// Handler is the application-style handler used by this router.
//
// The returned payload is wrapped in the success envelope. Payloads may
// implement StatusCode() int, Message() string and Meta() map[string]any to
// customise the response; a nil payload produces 204 No Content.
type Handler func(r *Request) (any, error)

// Config holds dependencies required to build a Router.
type Config struct {
	Config     config.Config
	UUID       uid.StringID
	JWT        jwt.JWT
	Instrument instrument.Instrumentation
	// Public lists "METHOD /route" entries served without credentials.
	Public []string
}

// Router is an http.Handler that wraps httprouter and a middleware chain.
type Router struct {
	hr  *httprouter.Router
	mws []Middleware
}

// NewRouter builds the application router with the standard middleware stack.
func NewRouter(cfg Config) *Router {
	hr := &httprouter.Router{
		RedirectTrailingSlash:  true,
		RedirectFixedPath:      true,
		HandleMethodNotAllowed: true,
		HandleOPTIONS:          true,
		SaveMatchedRoutePath:   true,
		NotFound: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, errorResponse{Message: "endpoint not found"}, http.StatusNotFound)
		}),
		MethodNotAllowed: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, errorResponse{Message: "method not allowed"}, http.StatusMethodNotAllowed)
		}),
	}

	ins := cfg.Instrument
	if ins == nil {
		ins = instrument.NewNoop()
	}

	public := make(map[string]struct{}, len(cfg.Public))
	for _, p := range cfg.Public {
		public[p] = struct{}{}
	}

	return &Router{
		hr: hr,
		mws: []Middleware{
			middlewareRecoverer,
			middlewareIP,
			middlewareCorrelationID(cfg.UUID),
			middlewareObservability(ins),
			middlewareMaintenance(cfg.Config),
			middlewareAuthentication(cfg.JWT, public),
		},
	}
}

// GET registers a GET endpoint.
func (r *Router) GET(path string, h Handler, mws ...Middleware) {
	r.endpoint(http.MethodGet, path, h, mws...)
}

// POST registers a POST endpoint.
func (r *Router) POST(path string, h Handler, mws ...Middleware) {
	r.endpoint(http.MethodPost, path, h, mws...)
}

// PUT registers a PUT endpoint.
func (r *Router) PUT(path string, h Handler, mws ...Middleware) {
	r.endpoint(http.MethodPut, path, h, mws...)
}

// PATCH registers a PATCH endpoint.
func (r *Router) PATCH(path string, h Handler, mws ...Middleware) {
	r.endpoint(http.MethodPatch, path, h, mws...)
}

// DELETE registers a DELETE endpoint.
func (r *Router) DELETE(path string, h Handler, mws ...Middleware) {
	r.endpoint(http.MethodDelete, path, h, mws...)
}

func (r *Router) endpoint(method, path string, h Handler, mws ...Middleware) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		resp, err := h(&Request{Request: req})
		if err != nil {
			if setter, ok := w.(interface{ SetError(error) }); ok {
				setter.SetError(err)
			}
			writeError(w, err)
			return
		}
		writeSuccess(w, resp)
	})

	all := make([]Middleware, 0, len(r.mws)+len(mws))
	all = append(all, r.mws...)
	all = append(all, mws...)
	r.hr.Handler(method, path, Chain(handler, all...))
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.hr.ServeHTTP(w, req)
}

// WriteError encodes err the way endpoint errors are encoded. Route
// middlewares use it to reject requests.
func WriteError(w http.ResponseWriter, err error) {
	writeError(w, err)
}

func writeError(w http.ResponseWriter, err error) {
	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		writeJSON(w, errorResponse{Message: "Internal server error"}, http.StatusInternalServerError)
		return
	}

	resp := errorResponse{Message: gerr.Msg()}

	var verr validator.V10ValidationError
	if errors.As(err, &verr) {
		resp.Error = verr.Values()
	} else if len(gerr.Fields()) > 0 {
		resp.Error = gerr.Fields()
	}

	writeJSON(w, resp, gerr.StatusCode())
}

func writeSuccess(w http.ResponseWriter, resp any) {
	if resp == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	code := http.StatusOK
	if sc, ok := resp.(interface{ StatusCode() int }); ok {
		code = sc.StatusCode()
	}
	if code == http.StatusNoContent {
		w.WriteHeader(code)
		return
	}

	body := successResponse{Message: "request has been successfully", Data: resp}
	if m, ok := resp.(interface{ Message() string }); ok {
		body.Message = m.Message()
	}
	if m, ok := resp.(interface{ Meta() map[string]any }); ok {
		body.Meta = m.Meta()
	}
	if d, ok := resp.(interface{ Payload() any }); ok {
		body.Data = d.Payload()
	}

	writeJSON(w, body, code)
}

func writeJSON(w http.ResponseWriter, data any, code int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("router: failed to encode response", "error", err)
	}
}
