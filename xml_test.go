package databind

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeXML(t *testing.T) {
	src := `<config env="prod"><host>localhost</host><port>8080</port></config>`
	root, err := NewMapper().DecodeXML([]byte(src))
	require.NoError(t, err)

	assert.Equal(t, "config", root.Name)
	assert.Equal(t, map[string]string{"env": "prod"}, root.Attrs)
	require.Len(t, root.Children, 2)
	assert.Equal(t, "host", root.Children[0].Name)
	assert.Equal(t, "localhost", root.Children[0].Text)
}

func TestDecodeXML_Errors(t *testing.T) {
	mapper := NewMapper()

	_, err := mapper.DecodeXML([]byte(""))
	assert.Error(t, err)

	_, err = mapper.DecodeXML([]byte("<a><b></a>"))
	assert.Error(t, err)
}

func TestXMLNode_Value(t *testing.T) {
	src := `<root id="1"><item>a</item><item>b</item><name>web</name></root>`
	root, err := NewMapper().DecodeXML([]byte(src))
	require.NoError(t, err)

	want := Map{
		"@id":  "1",
		"item": Seq{"a", "b"},
		"name": "web",
	}
	assert.Equal(t, want, root.Value())
}

func TestXMLNode_ValueLeaf(t *testing.T) {
	root, err := NewMapper().DecodeXML([]byte("<x>  text  </x>"))
	require.NoError(t, err)
	assert.Equal(t, "text", root.Value())
}

func TestEncodeXML(t *testing.T) {
	node := &XMLNode{
		Name:  "config",
		Attrs: map[string]string{"env": "prod"},
		Children: []*XMLNode{
			{Name: "host", Text: "localhost"},
		},
	}
	out, err := NewMapper().EncodeXML(node)
	require.NoError(t, err)

	want := "<config env=\"prod\">\n  <host>localhost</host>\n</config>"
	assert.Equal(t, want, string(out))
}

func TestXMLRoundTrip(t *testing.T) {
	src := `<root><a x="1">v</a><b>w</b></root>`
	mapper := NewMapper()

	first, err := mapper.DecodeXML([]byte(src))
	require.NoError(t, err)

	encoded, err := mapper.EncodeXML(first)
	require.NoError(t, err)

	second, err := mapper.DecodeXML(encoded)
	require.NoError(t, err)
	assert.Equal(t, first.Value(), second.Value())
}
