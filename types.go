// Package databind provides multi-format data binding (YAML/JSON/XML) over
// a streaming YAML tokenizer core.
package databind

// Value represents any bound value: nil, bool, int64, float64, string,
// json.Number, Map or Seq.
type Value = any

// Map represents a bound mapping.
type Map map[string]Value

// Seq represents a bound sequence.
type Seq []Value

// Format identifies a data format handled by the Mapper.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
)
