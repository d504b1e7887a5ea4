package router

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/shandysiswandi/tailor/internal/pkg/goerror"
	"github.com/shandysiswandi/tailor/internal/pkg/valueobject"
)

const maxBodyBytes = 1 << 20

// Request wraps http.Request with helpers for inbound handlers.
type Request struct {
	*http.Request
}

// GetParam reads a path parameter stored by httprouter.
func (r *Request) GetParam(key string) string {
	return httprouter.ParamsFromContext(r.Context()).ByName(key)
}

// GetQuery returns the trimmed query value for key.
func (r *Request) GetQuery(key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

// DecodeBody strictly decodes a single JSON document into dst.
func (r *Request) DecodeBody(dst any) error {
	if r == nil || r.Body == nil {
		return goerror.NewInvalidFormat()
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return goerror.NewInvalidFormat()
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return goerror.NewInvalidFormat()
	}

	return nil
}

// DecodeMap decodes a JSON object body of arbitrary shape. An empty body
// yields an empty map.
func (r *Request) DecodeMap() (valueobject.JSONMap, error) {
	if r == nil || r.Body == nil {
		return valueobject.JSONMap{}, nil
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, goerror.NewInvalidFormat()
	}
	if strings.TrimSpace(string(raw)) == "" {
		return valueobject.JSONMap{}, nil
	}

	var m valueobject.JSONMap
	if err := json.Unmarshal(raw, &m); err != nil || m == nil {
		return nil, goerror.NewInvalidFormat("Request body must be a JSON object")
	}
	return m, nil
}
