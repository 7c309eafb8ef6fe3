package databind

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapper_DecodeYAML(t *testing.T) {
	src := `server:
  host: localhost
  port: 8080
tags:
  - web
  - prod
limits: {cpu: 2, mem: 512}
title: "Hello"
ratio: 1.5
enabled: true
empty:
`
	v, err := NewMapper().DecodeYAML(src)
	require.NoError(t, err)

	want := Map{
		"server":  Map{"host": "localhost", "port": int64(8080)},
		"tags":    Seq{"web", "prod"},
		"limits":  Map{"cpu": int64(2), "mem": int64(512)},
		"title":   "Hello",
		"ratio":   1.5,
		"enabled": true,
		"empty":   nil,
	}
	require.Equal(t, want, v)
}

func TestMapper_DecodeYAML_PlainScalarInference(t *testing.T) {
	src := "a: 42\nb: -1.5\nc: true\nd: null\ne: ~\nf: hello\ng: \"42\"\n"
	v, err := NewMapper().DecodeYAML(src)
	require.NoError(t, err)

	m, ok := v.(Map)
	require.True(t, ok)
	assert.Equal(t, int64(42), m["a"])
	assert.Equal(t, -1.5, m["b"])
	assert.Equal(t, true, m["c"])
	assert.Nil(t, m["d"])
	assert.Nil(t, m["e"])
	assert.Equal(t, "hello", m["f"])
	assert.Equal(t, "42", m["g"], "quoted scalars stay strings")
}

func TestMapper_DecodeYAML_Anchors(t *testing.T) {
	src := "port: &p 8080\nmirror: *p\n"
	v, err := NewMapper().DecodeYAML(src)
	require.NoError(t, err)

	m := v.(Map)
	assert.Equal(t, int64(8080), m["port"])
	assert.Equal(t, int64(8080), m["mirror"])
}

func TestMapper_DecodeYAML_AnchoredMapping(t *testing.T) {
	src := "base: &base\n  x: 1\nmerged:\n  <<: *base\n"
	v, err := NewMapper().DecodeYAML(src)
	require.NoError(t, err)

	m := v.(Map)
	base := Map{"x": int64(1)}
	assert.Equal(t, base, m["base"])
	// Merge keys are carried literally; expansion is the caller's policy.
	assert.Equal(t, Map{"<<": base}, m["merged"])
}

func TestMapper_DecodeYAMLDocuments(t *testing.T) {
	docs, err := NewMapper().DecodeYAMLDocuments("---\na: 1\n---\nb: 2\n")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, Map{"a": int64(1)}, docs[0])
	assert.Equal(t, Map{"b": int64(2)}, docs[1])
}

func TestMapper_DecodeYAML_SequenceOfMappings(t *testing.T) {
	src := "servers:\n  - name: web-1\n    port: 80\n  - name: web-2\n    port: 81\n"
	v, err := NewMapper().DecodeYAML(src)
	require.NoError(t, err)

	want := Map{"servers": Seq{
		Map{"name": "web-1", "port": int64(80)},
		Map{"name": "web-2", "port": int64(81)},
	}}
	require.Equal(t, want, v)
}

func TestMapper_DuplicateKeys(t *testing.T) {
	src := "a: 1\na: 2\n"

	v, err := NewMapper().DecodeYAML(src)
	require.NoError(t, err)
	assert.Equal(t, Map{"a": int64(2)}, v, "last writer wins by default")

	strict := NewMapper().WithFeatures(DefaultFeatures.With(FailOnDuplicateKey))
	_, err = strict.DecodeYAML(src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate key")
}

func TestMapper_Naming(t *testing.T) {
	src := "userName: ada\nHomeDir: /home/ada\n"
	v, err := NewMapper().WithNaming(NamingSnakeCase).DecodeYAML(src)
	require.NoError(t, err)
	assert.Equal(t, Map{"user_name": "ada", "home_dir": "/home/ada"}, v)
}

func TestMapper_EncodeYAML(t *testing.T) {
	m := Map{
		"name":   "John Doe",
		"count":  int64(3),
		"tags":   Seq{"a", "b"},
		"nested": Map{"x": int64(1)},
	}
	out, err := NewMapper().EncodeYAML(m)
	require.NoError(t, err)

	want := "count: 3\nname: John Doe\nnested: {x: 1}\ntags:\n  [a, b]\n"
	assert.Equal(t, want, out)
}

func TestMapper_EncodeYAML_QuotesAmbiguous(t *testing.T) {
	out, err := NewMapper().EncodeYAML(Map{"s": "true", "n": "42"})
	require.NoError(t, err)
	assert.Equal(t, "n: \"42\"\ns: \"true\"\n", out)

	bare := NewMapper().WithFeatures(DefaultFeatures.Without(QuoteAmbiguousStrings))
	out, err = bare.EncodeYAML(Map{"s": "maybe"})
	require.NoError(t, err)
	assert.Equal(t, "s: maybe\n", out)
}

func TestMapper_EncodeYAML_DocumentMarkers(t *testing.T) {
	m := NewMapper().WithFeatures(DefaultFeatures.With(EmitDocumentMarkers))
	out, err := m.EncodeYAML(Map{"a": int64(1)})
	require.NoError(t, err)
	assert.Equal(t, "---\na: 1\n...\n", out)
}

func TestMapper_EncodeYAML_MultilineString(t *testing.T) {
	out, err := NewMapper().EncodeYAML(Map{"text": "line1\nline2\n"})
	require.NoError(t, err)
	assert.Equal(t, "text: |\n  line1\n  line2\n", out)
}

func TestMapper_YAMLRoundTrip(t *testing.T) {
	original := Map{
		"service": Map{"host": "localhost", "port": int64(8080)},
		"tags":    Seq{"web", "prod"},
		"ratio":   2.5,
		"debug":   false,
		"label":   "42",
	}
	mapper := NewMapper()
	text, err := mapper.EncodeYAML(original)
	require.NoError(t, err)

	decoded, err := mapper.DecodeYAML(text)
	require.NoError(t, err)
	require.Equal(t, original, decoded)
}

func TestMapper_DecodeEmptyInput(t *testing.T) {
	v, err := NewMapper().DecodeYAML("")
	require.NoError(t, err)
	assert.Nil(t, v)

	docs, err := NewMapper().DecodeYAMLDocuments("# nothing here\n")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestMapper_DecodeError(t *testing.T) {
	_, err := NewMapper().DecodeYAML("a: *missing\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unresolved alias")
}

func TestMapper_Convert(t *testing.T) {
	mapper := NewMapper()

	out, err := mapper.Convert([]byte("a: 1\nlist: [x, y]\n"), FormatYAML, FormatJSON)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 1, "list": ["x", "y"]}`, string(out))

	out, err = mapper.Convert([]byte(`{"name": "web", "port": 80}`), FormatJSON, FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, "name: web\nport: 80\n", string(out))

	out, err = mapper.Convert([]byte("<root><item>1</item><item>2</item></root>"), FormatXML, FormatJSON)
	require.NoError(t, err)
	assert.JSONEq(t, `{"item": ["1", "2"]}`, string(out))

	_, err = mapper.Convert([]byte("a: 1\n"), FormatYAML, FormatXML)
	require.Error(t, err)

	_, err = mapper.Convert([]byte("a: 1\n"), Format("toml"), FormatJSON)
	require.Error(t, err)
}
