package databind

import (
	"encoding/json"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var jsonAPI = jsoniter.Config{
	EscapeHTML:             false,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

// DecodeJSON decodes a JSON document into the generic value model.
func (m *Mapper) DecodeJSON(data []byte) (Value, error) {
	var raw any
	if err := jsonAPI.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "parsing json")
	}
	return normalizeJSON(raw)
}

// EncodeJSON serializes a generic value as JSON.
func (m *Mapper) EncodeJSON(v Value) ([]byte, error) {
	out, err := jsonAPI.MarshalIndent(v, "", "  ")
	return out, errors.Wrap(err, "writing json")
}

// normalizeJSON rewrites the decoder's raw shapes into Map/Seq and turns
// json.Number into int64 where it fits, float64 otherwise.
func normalizeJSON(raw any) (Value, error) {
	switch t := raw.(type) {
	case map[string]any:
		m := make(Map, len(t))
		for k, v := range t {
			nv, err := normalizeJSON(v)
			if err != nil {
				return nil, err
			}
			m[k] = nv
		}
		return m, nil
	case []any:
		s := make(Seq, len(t))
		for i, v := range t {
			nv, err := normalizeJSON(v)
			if err != nil {
				return nil, err
			}
			s[i] = nv
		}
		return s, nil
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, nil
		}
		f, err := t.Float64()
		return f, errors.Wrapf(err, "number %q", t.String())
	case nil, bool, string:
		return t, nil
	default:
		return nil, errors.Errorf("unexpected json value of type %T", raw)
	}
}
