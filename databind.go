package databind

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/jetleaf/databind/yaml"
)

// Mapper binds documents in the supported formats onto the generic value
// model and back. A Mapper is cheap to create and safe to reuse; each
// decode/encode call owns its own tokenizer or emitter instance.
type Mapper struct {
	features Features
	naming   NamingStrategy
	registry *Registry
}

// NewMapper creates a Mapper with default configuration.
func NewMapper() *Mapper {
	return &Mapper{
		features: DefaultFeatures,
		naming:   NamingIdentity,
		registry: NewRegistry(),
	}
}

// WithNaming configures the key naming strategy.
func (m *Mapper) WithNaming(s NamingStrategy) *Mapper {
	m.naming = s
	return m
}

// WithFeatures configures the feature set.
func (m *Mapper) WithFeatures(f Features) *Mapper {
	m.features = f
	return m
}

// WithRegistry configures the type registry.
func (m *Mapper) WithRegistry(r *Registry) *Mapper {
	m.registry = r
	return m
}

// Registry returns the mapper's type registry.
func (m *Mapper) Registry() *Registry {
	return m.registry
}

// DecodeYAML decodes the first document of a YAML text.
func (m *Mapper) DecodeYAML(src string) (Value, error) {
	docs, err := m.DecodeYAMLDocuments(src)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return docs[0], nil
}

// DecodeYAMLDocuments decodes every document of a YAML stream, in source
// order.
func (m *Mapper) DecodeYAMLDocuments(src string) ([]Value, error) {
	t := yaml.NewTokenizer(src)
	defer t.Close()
	d := &yamlDecoder{
		tok:      t,
		naming:   m.naming,
		features: m.features,
		anchors:  make(map[string]Value),
	}
	if err := d.next(); err != nil {
		return nil, err
	}
	var docs []Value
	for !d.eof {
		switch d.cur.Kind {
		case yaml.KindDocumentStart:
			d.anchors = make(map[string]Value) // anchors are scoped per document
			if err := d.next(); err != nil {
				return nil, err
			}
			v, err := d.body()
			if err != nil {
				return nil, err
			}
			docs = append(docs, v)
			if !d.eof && d.cur.Kind == yaml.KindDocumentEnd {
				if err := d.next(); err != nil {
					return nil, err
				}
			}
		case yaml.KindDocumentEnd:
			if err := d.next(); err != nil {
				return nil, err
			}
		default:
			v, err := d.body()
			if err != nil {
				return nil, err
			}
			docs = append(docs, v)
		}
	}
	return docs, nil
}

// DecodeYAMLInto decodes YAML and binds the result through the registered
// codec for the given type identifier.
func (m *Mapper) DecodeYAMLInto(src, typeID string) (any, error) {
	codec, ok := m.registry.Lookup(typeID)
	if !ok {
		return nil, errors.Errorf("no codec registered for type %q", typeID)
	}
	v, err := m.DecodeYAML(src)
	if err != nil {
		return nil, err
	}
	out, err := codec.Decode(v)
	return out, errors.Wrapf(err, "decoding %s", typeID)
}

// EncodeYAMLFrom encodes a typed value through its registered codec.
func (m *Mapper) EncodeYAMLFrom(v any, typeID string) (string, error) {
	codec, ok := m.registry.Lookup(typeID)
	if !ok {
		return "", errors.Errorf("no codec registered for type %q", typeID)
	}
	generic, err := codec.Encode(v)
	if err != nil {
		return "", errors.Wrapf(err, "encoding %s", typeID)
	}
	return m.EncodeYAML(generic)
}

// EncodeYAML serializes a generic value as YAML text.
func (m *Mapper) EncodeYAML(v Value) (string, error) {
	e := yaml.NewEmitter()
	enc := &yamlEncoder{e: e, naming: m.naming, features: m.features}
	if err := enc.value(v, false); err != nil {
		return "", err
	}
	text, err := e.YAML()
	if err != nil {
		return "", err
	}
	if m.features.Has(EmitDocumentMarkers) {
		text = "---\n" + text + "...\n"
	}
	return text, nil
}

// Convert transcodes a document between formats.
func (m *Mapper) Convert(data []byte, from, to Format) ([]byte, error) {
	var v Value
	var err error
	switch from {
	case FormatYAML:
		v, err = m.DecodeYAML(string(data))
	case FormatJSON:
		v, err = m.DecodeJSON(data)
	case FormatXML:
		var node *XMLNode
		if node, err = m.DecodeXML(data); err == nil {
			v = node.Value()
		}
	default:
		return nil, errors.Errorf("unknown source format %q", from)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", from)
	}
	switch to {
	case FormatYAML:
		text, err := m.EncodeYAML(v)
		return []byte(text), err
	case FormatJSON:
		return m.EncodeJSON(v)
	case FormatXML:
		return nil, errors.Wrap(yaml.ErrUnsupported, "xml output requires an element tree source")
	}
	return nil, errors.Errorf("unknown target format %q", to)
}

// yamlDecoder materializes the token stream into the generic value model.
// Block mappings arrive as flat KEY/value runs; nesting is recovered from
// the key columns. Consecutive single-item sequence frames at one column
// (block dash items) coalesce into one Seq.
type yamlDecoder struct {
	tok      *yaml.Tokenizer
	naming   NamingStrategy
	features Features
	anchors  map[string]Value
	cur      yaml.Token
	eof      bool
}

func (d *yamlDecoder) next() error {
	ok, err := d.tok.Next()
	if err != nil {
		return err
	}
	d.eof = !ok
	d.cur = d.tok.Current()
	return nil
}

// body decodes one document body.
func (d *yamlDecoder) body() (Value, error) {
	if d.eof {
		return nil, nil
	}
	switch d.cur.Kind {
	case yaml.KindDocumentEnd, yaml.KindDocumentStart:
		return nil, nil
	case yaml.KindKey:
		return d.blockMapping(d.cur.Pos.Column)
	default:
		return d.node()
	}
}

// blockMapping decodes a run of KEY/value pairs at one column.
func (d *yamlDecoder) blockMapping(col int) (Value, error) {
	m := make(Map)
	anchor := ""
	for !d.eof && d.cur.Kind == yaml.KindKey && d.cur.Pos.Column == col {
		if anchor == "" && len(m) == 0 {
			anchor = d.cur.Anchor
		}
		name := d.naming(d.cur.Value)
		if err := d.next(); err != nil {
			return nil, err
		}
		v, err := d.keyValue(col)
		if err != nil {
			return nil, err
		}
		if _, dup := m[name]; dup && d.features.Has(FailOnDuplicateKey) {
			return nil, errors.Errorf("duplicate key %q", name)
		}
		m[name] = v
	}
	if anchor != "" {
		d.anchors[anchor] = m
	}
	return m, nil
}

// keyValue decodes the value following a key at the given column.
func (d *yamlDecoder) keyValue(col int) (Value, error) {
	if d.eof {
		return nil, nil
	}
	switch d.cur.Kind {
	case yaml.KindKey:
		if d.cur.Pos.Column > col {
			return d.blockMapping(d.cur.Pos.Column)
		}
		return nil, nil
	case yaml.KindDocumentEnd, yaml.KindDocumentStart, yaml.KindSequenceEnd, yaml.KindMappingEnd:
		return nil, nil
	default:
		return d.node()
	}
}

// node decodes one value node starting at the current token.
func (d *yamlDecoder) node() (Value, error) {
	switch d.cur.Kind {
	case yaml.KindScalar:
		v := d.scalarValue(d.cur)
		if d.cur.Anchor != "" {
			d.anchors[d.cur.Anchor] = v
		}
		return v, d.next()
	case yaml.KindAlias:
		v := d.anchors[d.cur.Value]
		return v, d.next()
	case yaml.KindSequenceStart:
		return d.sequence()
	case yaml.KindMappingStart:
		return d.flowMapping()
	case yaml.KindKey:
		return d.blockMapping(d.cur.Pos.Column)
	default:
		return nil, d.next()
	}
}

func (d *yamlDecoder) sequence() (Value, error) {
	col := d.cur.Pos.Column
	anchor := d.cur.Anchor
	seq := Seq{}
	for {
		if err := d.next(); err != nil { // past SEQUENCE_START
			return nil, err
		}
		for !d.eof && d.cur.Kind != yaml.KindSequenceEnd {
			item, err := d.node()
			if err != nil {
				return nil, err
			}
			seq = append(seq, item)
		}
		if !d.eof && d.cur.Kind == yaml.KindSequenceEnd {
			if err := d.next(); err != nil {
				return nil, err
			}
		}
		// Sibling dash item at the same column continues the same list.
		if !d.eof && d.cur.Kind == yaml.KindSequenceStart && d.cur.Pos.Column == col {
			continue
		}
		break
	}
	if anchor != "" {
		d.anchors[anchor] = seq
	}
	return seq, nil
}

func (d *yamlDecoder) flowMapping() (Value, error) {
	anchor := d.cur.Anchor
	m := make(Map)
	if err := d.next(); err != nil {
		return nil, err
	}
	for !d.eof && d.cur.Kind != yaml.KindMappingEnd {
		if d.cur.Kind != yaml.KindKey {
			return nil, errors.Errorf("flow mapping item without a key at %s", d.cur.Pos)
		}
		name := d.naming(d.cur.Value)
		if err := d.next(); err != nil {
			return nil, err
		}
		var v Value
		if !d.eof && d.cur.Kind != yaml.KindMappingEnd && d.cur.Kind != yaml.KindKey {
			var err error
			if v, err = d.node(); err != nil {
				return nil, err
			}
		}
		if _, dup := m[name]; dup && d.features.Has(FailOnDuplicateKey) {
			return nil, errors.Errorf("duplicate key %q", name)
		}
		m[name] = v
	}
	if !d.eof && d.cur.Kind == yaml.KindMappingEnd {
		if err := d.next(); err != nil {
			return nil, err
		}
	}
	if anchor != "" {
		d.anchors[anchor] = m
	}
	return m, nil
}

// scalarValue infers typed values for plain scalars; quoted and block
// scalars always stay strings.
func (d *yamlDecoder) scalarValue(tok yaml.Token) Value {
	if tok.Null {
		return nil
	}
	if tok.Style != yaml.StylePlain && tok.Style != yaml.StyleFlow {
		return tok.Value
	}
	switch strings.ToLower(tok.Value) {
	case "", "null", "~":
		return nil
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseInt(tok.Value, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(tok.Value, 64); err == nil {
		return f
	}
	return tok.Value
}

// yamlEncoder replays a generic value into the emitter. Sequences at
// block level are written one frame per item so they render as dash
// lines; inside flow context a sequence is one frame.
type yamlEncoder struct {
	e        *yaml.Emitter
	naming   NamingStrategy
	features Features
}

func (enc *yamlEncoder) value(v Value, inFlow bool) error {
	switch t := v.(type) {
	case nil:
		return enc.e.WriteNull()
	case Map:
		return enc.mapping(t, inFlow)
	case map[string]Value:
		return enc.mapping(t, inFlow)
	case Seq:
		return enc.seq(t, inFlow)
	case []Value:
		return enc.seq(t, inFlow)
	case string:
		return enc.str(t)
	case bool:
		return enc.e.WriteScalar(strconv.FormatBool(t), yaml.StylePlain)
	case int:
		return enc.e.WriteScalar(strconv.Itoa(t), yaml.StylePlain)
	case int64:
		return enc.e.WriteScalar(strconv.FormatInt(t, 10), yaml.StylePlain)
	case float64:
		return enc.e.WriteScalar(strconv.FormatFloat(t, 'g', -1, 64), yaml.StylePlain)
	case json.Number:
		return enc.e.WriteScalar(t.String(), yaml.StylePlain)
	default:
		return errors.Errorf("cannot encode %T as YAML", v)
	}
}

func (enc *yamlEncoder) mapping(m Map, inFlow bool) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if inFlow {
		if err := enc.e.WriteStartMapping(); err != nil {
			return err
		}
	}
	for _, k := range keys {
		if err := enc.e.WriteKey(enc.naming(k)); err != nil {
			return err
		}
		if err := enc.value(m[k], true); err != nil {
			return err
		}
	}
	if inFlow {
		return enc.e.WriteEndMapping()
	}
	return nil
}

func (enc *yamlEncoder) seq(items Seq, inFlow bool) error {
	if inFlow && len(items) != 1 {
		if err := enc.e.WriteStartSequence(); err != nil {
			return err
		}
		for _, item := range items {
			if err := enc.value(item, true); err != nil {
				return err
			}
		}
		return enc.e.WriteEndSequence()
	}
	for _, item := range items {
		if err := enc.e.WriteStartSequence(); err != nil {
			return err
		}
		if err := enc.value(item, true); err != nil {
			return err
		}
		if err := enc.e.WriteEndSequence(); err != nil {
			return err
		}
	}
	return nil
}

func (enc *yamlEncoder) str(s string) error {
	style := yaml.StylePlain
	switch {
	case strings.Contains(s, "\n"):
		style = yaml.StyleLiteral
	case enc.features.Has(QuoteAmbiguousStrings) && ambiguousString(s):
		style = yaml.StyleDoubleQuoted
	}
	return enc.e.WriteScalar(s, style)
}

// ambiguousString reports whether a plain rendering of s would decode back
// as something other than a string.
func ambiguousString(s string) bool {
	switch strings.ToLower(s) {
	case "", "null", "~", "true", "false", "yes", "no", "on", "off":
		return true
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return true
	}
	return false
}
