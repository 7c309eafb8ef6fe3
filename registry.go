package databind

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Codec converts between the generic value model and one bindable type.
// Codecs are explicit per type: there is no runtime field introspection.
type Codec interface {
	Decode(v Value) (any, error)
	Encode(v any) (Value, error)
}

// Registry maps a type identifier to its codec. Populate it at startup;
// lookups at bind time are plain map reads.
type Registry struct {
	codecs map[string]Codec
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{codecs: make(map[string]Codec)}
}

// Register binds a type identifier to a codec, replacing any previous
// binding.
func (r *Registry) Register(id string, c Codec) {
	r.codecs[id] = c
}

// Lookup returns the codec for a type identifier.
func (r *Registry) Lookup(id string) (Codec, bool) {
	c, ok := r.codecs[id]
	return c, ok
}

// Field describes one object field for DecodeObject/EncodeObject: the wire
// name, options, and explicit accessors supplied by the codec author.
type Field struct {
	Name      string
	Required  bool
	OmitEmpty bool
	Set       func(Value) error
	Get       func() Value
}

// DecodeObject binds a mapping onto an object through its field specs.
// strict rejects keys with no matching spec.
func DecodeObject(m Map, fields []Field, strict bool) error {
	byName := make(map[string]*Field, len(fields))
	for i := range fields {
		byName[fields[i].Name] = &fields[i]
	}
	if strict {
		for key := range m {
			if _, ok := byName[key]; !ok {
				return errors.Errorf("unknown field %q", key)
			}
		}
	}
	for _, f := range fields {
		v, ok := m[f.Name]
		if !ok {
			if f.Required {
				return errors.Errorf("required field %q not found", f.Name)
			}
			continue
		}
		if f.Set == nil {
			continue
		}
		if err := f.Set(v); err != nil {
			return errors.Wrapf(err, "field %q", f.Name)
		}
	}
	return nil
}

// EncodeObject builds a mapping from an object through its field specs.
func EncodeObject(fields []Field) Map {
	m := make(Map, len(fields))
	for _, f := range fields {
		if f.Get == nil {
			continue
		}
		v := f.Get()
		if f.OmitEmpty && isEmptyValue(v) {
			continue
		}
		m[f.Name] = v
	}
	return m
}

func isEmptyValue(v Value) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case int64:
		return t == 0
	case float64:
		return t == 0
	case Map:
		return len(t) == 0
	case Seq:
		return len(t) == 0
	}
	return false
}

// Scalar coercion helpers for codec authors. Scalars decoded from YAML may
// arrive as typed values or as strings depending on their source style.

// AsString coerces a value to a string.
func AsString(v Value) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case bool:
		return strconv.FormatBool(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64), nil
	case json.Number:
		return t.String(), nil
	}
	return "", errors.Errorf("cannot convert %T to string", v)
}

// AsInt coerces a value to an int64.
func AsInt(v Value) (int64, error) {
	switch t := v.(type) {
	case int64:
		return t, nil
	case float64:
		return int64(t), nil
	case json.Number:
		return t.Int64()
	case string:
		n, err := strconv.ParseInt(strings.ReplaceAll(t, "_", ""), 0, 64)
		if err != nil {
			return 0, errors.Wrap(err, "cannot parse as int")
		}
		return n, nil
	}
	return 0, errors.Errorf("cannot convert %T to int", v)
}

// AsFloat coerces a value to a float64.
func AsFloat(v Value) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case int64:
		return float64(t), nil
	case json.Number:
		return t.Float64()
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, errors.Wrap(err, "cannot parse as float")
		}
		return f, nil
	}
	return 0, errors.Errorf("cannot convert %T to float", v)
}

// AsBool coerces a value to a bool, accepting the YAML boolean spellings.
func AsBool(v Value) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		switch strings.ToLower(t) {
		case "true", "yes", "on", "1":
			return true, nil
		case "false", "no", "off", "0":
			return false, nil
		}
		return false, errors.Errorf("invalid bool value %q", t)
	}
	return false, errors.Errorf("cannot convert %T to bool", v)
}
