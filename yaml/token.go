// Package yaml implements a streaming YAML tokenizer and its symmetric
// emitter. The tokenizer converts raw YAML text into a sequential token
// stream without building an intermediate parse tree; the emitter accepts
// structural write calls and serializes them back to YAML text.
package yaml

// Kind identifies a token in the stream.
type Kind int

const (
	KindNone Kind = iota
	KindDocumentStart
	KindDocumentEnd
	KindMappingStart
	KindMappingEnd
	KindSequenceStart
	KindSequenceEnd
	KindKey
	KindScalar
	KindAlias
	KindStreamEnd
)

var kindNames = map[Kind]string{
	KindNone:          "NONE",
	KindDocumentStart: "DOCUMENT_START",
	KindDocumentEnd:   "DOCUMENT_END",
	KindMappingStart:  "MAPPING_START",
	KindMappingEnd:    "MAPPING_END",
	KindSequenceStart: "SEQUENCE_START",
	KindSequenceEnd:   "SEQUENCE_END",
	KindKey:           "KEY",
	KindScalar:        "SCALAR",
	KindAlias:         "ALIAS",
	KindStreamEnd:     "STREAM_END",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "UNKNOWN"
}

// IsStart reports whether k opens a structural region.
func (k Kind) IsStart() bool {
	return k == KindDocumentStart || k == KindMappingStart || k == KindSequenceStart
}

// IsEnd reports whether k closes a structural region.
func (k Kind) IsEnd() bool {
	return k == KindDocumentEnd || k == KindMappingEnd || k == KindSequenceEnd
}

// Style describes how a scalar was written in the source, and therefore how
// the emitter should re-quote it.
type Style int

const (
	StylePlain Style = iota
	StyleSingleQuoted
	StyleDoubleQuoted
	StyleLiteral
	StyleFolded
	StyleFlow
	StyleMultilineFlow
)

var styleNames = map[Style]string{
	StylePlain:         "plain",
	StyleSingleQuoted:  "single-quoted",
	StyleDoubleQuoted:  "double-quoted",
	StyleLiteral:       "literal",
	StyleFolded:        "folded",
	StyleFlow:          "flow",
	StyleMultilineFlow: "multiline-flow",
}

func (s Style) String() string {
	if n, ok := styleNames[s]; ok {
		return n
	}
	return "unknown"
}

// Chomping controls how trailing newlines of a block scalar are kept.
type Chomping int

const (
	// ChompClip keeps exactly one trailing newline. Default.
	ChompClip Chomping = iota
	// ChompKeep preserves all trailing newlines.
	ChompKeep
	// ChompStrip removes all trailing newlines.
	ChompStrip
)

// Token is one element of the stream. Value is meaningful for KEY, SCALAR
// and ALIAS tokens; Null marks a scalar whose value was cleared by !!null.
// Anchor carries a deferred &name definition attached to this token, and
// Tag carries an unresolved tag passed through informationally.
type Token struct {
	Kind   Kind
	Value  string
	Null   bool
	Style  Style
	Anchor string
	Tag    string
	Pos    Position
}
