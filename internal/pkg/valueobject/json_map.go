package valueobject

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// ErrScanValueNotBytes indicates the database value is not a byte slice.
var ErrScanValueNotBytes = errors.New("valueobject: jsonmap scan value is not []byte")

// JSONMap is a JSON object tree: nested objects are maps, arrays are []any
// and scalars are string, float64, bool or nil.
// @swaggertype object
type JSONMap map[string]any

// FromStruct converts any JSON-serialisable value into its object tree.
func FromStruct(v any) (JSONMap, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var m JSONMap
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// Decode rebuilds a typed value from the tree. Unknown keys are rejected.
func (j JSONMap) Decode(dst any) error {
	raw, err := json.Marshal(j)
	if err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// Clone returns a deep copy of the tree.
func (j JSONMap) Clone() JSONMap {
	if j == nil {
		return nil
	}

	out := make(JSONMap, len(j))
	for k, v := range j {
		out[k] = cloneValue(v)
	}
	return out
}

// Merge returns a copy of j with patch merged in. Where both sides hold an
// object at the same key the objects are merged recursively; any other patch
// value, arrays included, replaces the original value. Neither input is
// modified.
func (j JSONMap) Merge(patch JSONMap) JSONMap {
	out := j.Clone()
	if out == nil {
		out = JSONMap{}
	}
	mergeInto(out, patch)
	return out
}

func mergeInto(dst, patch map[string]any) {
	for k, pv := range patch {
		pm, patchIsMap := asMap(pv)
		dm, dstIsMap := asMap(dst[k])
		if patchIsMap && dstIsMap {
			mergeInto(dm, pm)
			dst[k] = dm
			continue
		}
		dst[k] = cloneValue(pv)
	}
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case JSONMap:
		return m, true
	case map[string]any:
		return m, true
	default:
		return nil, false
	}
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case JSONMap:
		return t.Clone()
	case map[string]any:
		return map[string]any(JSONMap(t).Clone())
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

// Value implements driver.Valuer for JSONMap.
func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner for JSONMap.
func (j *JSONMap) Scan(value any) error {
	var raw []byte

	switch v := value.(type) {
	case nil:
		*j = JSONMap{}
		return nil
	case map[string]any:
		*j = JSONMap(v)
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return ErrScanValueNotBytes
	}

	var result JSONMap
	if err := json.Unmarshal(raw, &result); err != nil {
		return err
	}

	*j = result
	return nil
}

// Has reports whether key is present.
func (j JSONMap) Has(key string) bool {
	_, ok := j[key]
	return ok
}

// GetString returns the string at key, or "" when missing or not a string.
func (j JSONMap) GetString(key string) string {
	if v, ok := j[key].(string); ok {
		return v
	}
	return ""
}
