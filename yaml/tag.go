package yaml

import (
	"strconv"
	"strings"
)

// Built-in type tags. Everything else passes through unresolved: the tag
// text is attached to the token informationally and the value is left
// untouched. This is a deliberate permissive policy, not a validation
// failure.
const (
	tagStr   = "!!str"
	tagInt   = "!!int"
	tagFloat = "!!float"
	tagBool  = "!!bool"
	tagNull  = "!!null"
)

// applyTag resolves a pending tag against a scalar token. Numeric tags
// reparse the text and replace it with its canonical string form; the
// value stays text, type decisions belong to the consuming binder.
func applyTag(tag string, tok *Token) {
	switch tag {
	case tagStr:
		// no-op
	case tagInt:
		if n, err := strconv.ParseInt(strings.ReplaceAll(tok.Value, "_", ""), 0, 64); err == nil {
			tok.Value = strconv.FormatInt(n, 10)
		}
	case tagFloat:
		if f, err := strconv.ParseFloat(strings.ReplaceAll(tok.Value, "_", ""), 64); err == nil {
			tok.Value = strconv.FormatFloat(f, 'g', -1, 64)
		}
	case tagBool:
		if b, ok := normalizeBool(tok.Value); ok {
			tok.Value = b
		}
	case tagNull:
		tok.Value = ""
		tok.Null = true
	default:
		tok.Tag = tag
	}
}

// normalizeBool maps the common boolean spellings to canonical true/false.
func normalizeBool(s string) (string, bool) {
	switch strings.ToLower(s) {
	case "true", "yes", "on", "y":
		return "true", true
	case "false", "no", "off", "n":
		return "false", true
	}
	return s, false
}
