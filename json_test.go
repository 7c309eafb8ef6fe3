package databind

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	src := `{"name": "web", "port": 8080, "ratio": 1.5, "on": true, "none": null, "list": [1, "x"]}`
	v, err := NewMapper().DecodeJSON([]byte(src))
	require.NoError(t, err)

	want := Map{
		"name":  "web",
		"port":  int64(8080),
		"ratio": 1.5,
		"on":    true,
		"none":  nil,
		"list":  Seq{int64(1), "x"},
	}
	require.Equal(t, want, v)
}

func TestDecodeJSON_BigInteger(t *testing.T) {
	v, err := NewMapper().DecodeJSON([]byte(`{"n": 9007199254740993}`))
	require.NoError(t, err)
	assert.Equal(t, Map{"n": int64(9007199254740993)}, v,
		"integers past float53 must not lose precision")
}

func TestDecodeJSON_Invalid(t *testing.T) {
	_, err := NewMapper().DecodeJSON([]byte(`{"a": `))
	require.Error(t, err)
}

func TestEncodeJSON(t *testing.T) {
	out, err := NewMapper().EncodeJSON(Map{"a": int64(1), "b": Seq{"x"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 1, "b": ["x"]}`, string(out))
}

func TestJSONRoundTrip(t *testing.T) {
	src := `{"nested": {"deep": [true, null, 3]}, "s": "v"}`
	mapper := NewMapper()

	v, err := mapper.DecodeJSON([]byte(src))
	require.NoError(t, err)

	out, err := mapper.EncodeJSON(v)
	require.NoError(t, err)
	assert.JSONEq(t, src, string(out))
}
