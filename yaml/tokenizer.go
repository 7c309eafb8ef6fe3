package yaml

import "strings"

// Tokenizer is the orchestrating state machine. A caller repeatedly asks it
// for the next token; internally it drives the scanner, the block-scalar
// engine, the tag resolver and the anchor table, and may push several
// tokens into its queue in one pass so that START/END pairs stay balanced
// even for single-line constructs.
//
// A Tokenizer owns its scanner, queue, anchor table and context stack
// exclusively. It is single-threaded and pull-based; instances must not be
// shared across goroutines without external synchronization.
type Tokenizer struct {
	scan  *Scanner
	queue []Token // FIFO for multi-token productions
	cur   Token

	docs       []*docContext // bottom entry is the implicit root scope
	dashes     []int         // open block-sequence item indents
	flowDepth  int
	inDocument bool

	pendingAnchor string
	pendingTag    string

	lineStart     bool
	curLineIndent int
	afterKey      bool
	keyIndent     int

	done   bool
	closed bool
}

// NewTokenizer creates a tokenizer over the given text. All state is fresh
// per instance and fully torn down by Close.
func NewTokenizer(src string) *Tokenizer {
	return &Tokenizer{
		scan:      NewScanner(src),
		docs:      []*docContext{newDocContext(0, false)},
		lineStart: true,
	}
}

// Next advances to the next token. It returns true when a token is now
// current and false only at true end-of-stream. Any internal failure is
// wrapped with the position where detection occurred; after an error the
// instance must be discarded.
func (t *Tokenizer) Next() (bool, error) {
	if t.closed || t.done {
		return false, nil
	}
	tok, err := t.advance()
	if err != nil {
		return false, &ParseError{Pos: t.scan.Position(), Err: err}
	}
	t.cur = tok
	if tok.Kind == KindKey {
		t.afterKey = true
		t.keyIndent = t.curLineIndent
	} else {
		t.afterKey = false
	}
	if tok.Kind == KindStreamEnd {
		t.done = true
		return false, nil
	}
	return true, nil
}

// Current returns the token produced by the last successful Next call.
func (t *Tokenizer) Current() Token {
	return t.cur
}

// Value returns the current token's scalar text.
func (t *Tokenizer) Value() string {
	return t.cur.Value
}

// Anchor returns the anchor name attached to the current token, if any.
func (t *Tokenizer) Anchor() string {
	return t.cur.Anchor
}

// Alias returns the referenced anchor name when the current token is an
// alias, and an empty string otherwise.
func (t *Tokenizer) Alias() string {
	if t.cur.Kind == KindAlias {
		return t.cur.Value
	}
	return ""
}

// Skip fast-forwards past the current structural node and all of its
// descendants, balancing nested START/END pairs by depth counting. On a
// KEY token it skips the key's value node; block-nested mappings arrive as
// a run of deeper KEY/value pairs, which are consumed by column. On
// anything else it is a no-op.
func (t *Tokenizer) Skip() error {
	switch {
	case t.cur.Kind.IsStart():
		depth := 1
		for depth > 0 {
			ok, err := t.Next()
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			if t.cur.Kind.IsStart() {
				depth++
			} else if t.cur.Kind.IsEnd() {
				depth--
			}
		}
	case t.cur.Kind == KindKey:
		col := t.cur.Pos.Column
		ok, err := t.Next()
		if err != nil || !ok {
			return err
		}
		switch {
		case t.cur.Kind.IsStart():
			// Consecutive block dash items arrive as sibling frames at
			// the same dash column; consume the whole run.
			frameCol := t.cur.Pos.Column
			for {
				if err := t.Skip(); err != nil {
					return err
				}
				ok, err := t.Next()
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
				if t.cur.Kind != KindSequenceStart || t.cur.Pos.Column != frameCol {
					t.unread()
					return nil
				}
			}
		case t.cur.Kind == KindKey && t.cur.Pos.Column > col:
			// Consume every KEY/value pair nested under the key's
			// column, then put the follow token back for the next call.
			for t.cur.Kind == KindKey && t.cur.Pos.Column > col {
				if err := t.Skip(); err != nil {
					return err
				}
				ok, err := t.Next()
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
			}
			t.unread()
		}
	}
	return nil
}

// unread puts the current token back so the next Next call returns it
// again.
func (t *Tokenizer) unread() {
	t.queue = append([]Token{t.cur}, t.queue...)
}

// Close releases the queue, anchor table and context stack. Idempotent and
// safe to call multiple times.
func (t *Tokenizer) Close() {
	if t.closed {
		return
	}
	t.closed = true
	t.queue = nil
	t.docs = nil
	t.dashes = nil
}

// advance performs at most one structural decision plus the characters
// needed to materialize the next token. Block-scalar bodies are the one
// exception: a single call scans the scalar's own lines.
func (t *Tokenizer) advance() (Token, error) {
	for {
		if len(t.queue) > 0 {
			return t.popQueue(), nil
		}

		t.skipBlank()

		// A pending tag with no inline value synthesizes the scalar that
		// carries it (e.g. `key: !!null` at end of line).
		if t.pendingTag != "" && (t.scan.Done() || t.lineStart) {
			tok := Token{Kind: KindScalar, Pos: t.scan.Position()}
			applyTag(t.pendingTag, &tok)
			t.pendingTag = ""
			return t.finish(tok), nil
		}

		if t.scan.Done() {
			return t.finishStream()
		}

		if t.lineStart && t.flowDepth == 0 {
			if t.handleLineStart() {
				continue // tokens were queued
			}
		}
		t.lineStart = false

		pos := t.scan.Position()
		c := t.scan.Peek()

		switch {
		case t.atMarker("---"):
			return t.documentStart(pos)
		case t.atMarker("..."):
			if tok, ok := t.documentEnd(pos); ok {
				return tok, nil
			}
			continue // stray marker outside a document
		case c == '%' && pos.Column == 1:
			// %YAML/%TAG directives are consumed without effect.
			t.scan.ReadLine()
			t.lineStart = true
			continue
		case c == '[':
			t.scan.Advance(1)
			t.flowDepth++
			return t.finish(Token{Kind: KindSequenceStart, Pos: pos}), nil
		case c == ']':
			if t.flowDepth == 0 {
				return Token{}, syntaxErrorf("unexpected ']' outside flow collection")
			}
			t.scan.Advance(1)
			t.flowDepth--
			return t.finish(Token{Kind: KindSequenceEnd, Pos: pos}), nil
		case c == '}' && t.afterKey && t.flowDepth > 0:
			// The key's value never came; make it an explicit null before
			// the collection closes.
			t.scan.Advance(1)
			t.flowDepth--
			t.queue = append(t.queue, Token{Kind: KindMappingEnd, Pos: pos})
			return Token{Kind: KindScalar, Null: true, Pos: pos}, nil
		case c == '{':
			t.scan.Advance(1)
			t.flowDepth++
			return t.finish(Token{Kind: KindMappingStart, Pos: pos}), nil
		case c == '}':
			if t.flowDepth == 0 {
				return Token{}, syntaxErrorf("unexpected '}' outside flow collection")
			}
			t.scan.Advance(1)
			t.flowDepth--
			return t.finish(Token{Kind: KindMappingEnd, Pos: pos}), nil
		case c == '&':
			name, err := t.scanName("anchor")
			if err != nil {
				return Token{}, err
			}
			t.topDoc().define(name)
			t.pendingAnchor = name
			continue
		case c == '*':
			name, err := t.scanName("alias")
			if err != nil {
				return Token{}, err
			}
			if _, ok := t.topDoc().resolve(name); !ok {
				return Token{}, &UnresolvedAliasError{Name: name}
			}
			return t.finish(Token{Kind: KindAlias, Value: name, Pos: pos}), nil
		case c == '!':
			tag, err := t.scanTag()
			if err != nil {
				return Token{}, err
			}
			t.pendingTag = tag
			continue
		case c == '|' || c == '>':
			return t.blockScalar(pos, c == '>')
		case c == '?':
			t.scan.Advance(1)
			t.scan.SkipSpaces()
			return t.explicitKey(pos)
		case c == ':':
			// A bare colon at structural position is an empty implicit key.
			t.scan.Advance(1)
			return t.finish(Token{Kind: KindKey, Pos: pos}), nil
		case c == '-' && t.flowDepth == 0 && t.atDashItem():
			t.scan.Advance(1)
			t.dashes = append(t.dashes, pos.Column-1)
			return t.finish(Token{Kind: KindSequenceStart, Pos: pos}), nil
		default:
			return t.scalarOrKey(pos)
		}
	}
}

// skipBlank consumes intra-line whitespace, comments, line breaks and, in
// flow context, item separators. Crossing a line break arms the next
// line-start bookkeeping pass.
func (t *Tokenizer) skipBlank() {
	for !t.scan.Done() {
		switch c := t.scan.Peek(); {
		case c == ' ' || c == '\t' || c == '\r':
			t.scan.Advance(1)
		case c == '\n':
			t.scan.Advance(1)
			t.lineStart = true
		case c == '#':
			t.scan.ReadLine()
			t.lineStart = true
		case c == ',' && t.flowDepth > 0:
			t.scan.Advance(1)
		default:
			return
		}
	}
}

// handleLineStart runs the per-line indentation bookkeeping: it measures
// the new line's indent, synthesizes a null value for a key left dangling
// by a dedent, and closes block-sequence items the new line no longer
// belongs to. Returns true when tokens were queued.
func (t *Tokenizer) handleLineStart() bool {
	t.lineStart = false
	indent := t.scan.Position().Column - 1
	t.curLineIndent = indent

	// A dash item at the key's own indent is still the key's value
	// (zero-indented block sequences); anything else at or above the key's
	// indent means the key's value line never came.
	dashItem := t.scan.Peek() == '-' && t.atDashItem()
	queued := false
	if t.afterKey && (indent < t.keyIndent || (indent == t.keyIndent && !dashItem)) {
		t.queue = append(t.queue, Token{Kind: KindScalar, Null: true, Pos: t.scan.Position()})
		t.afterKey = false
		queued = true
	}
	for len(t.dashes) > 0 && t.dashes[len(t.dashes)-1] >= indent {
		t.dashes = t.dashes[:len(t.dashes)-1]
		t.queue = append(t.queue, Token{Kind: KindSequenceEnd, Pos: t.scan.Position()})
		queued = true
	}
	return queued
}

// finishStream closes everything still open at end of input: a dangling
// key value, open block-sequence items, then the open document, then the
// stream itself.
func (t *Tokenizer) finishStream() (Token, error) {
	if t.flowDepth > 0 {
		return Token{}, syntaxErrorf("unterminated flow collection")
	}
	pos := t.scan.Position()
	if t.afterKey {
		t.queue = append(t.queue, Token{Kind: KindScalar, Null: true, Pos: pos})
		t.afterKey = false
	}
	for range t.dashes {
		t.queue = append(t.queue, Token{Kind: KindSequenceEnd, Pos: pos})
	}
	t.dashes = nil
	if t.inDocument {
		t.queue = append(t.queue, Token{Kind: KindDocumentEnd, Pos: pos})
		t.popDocument()
		t.inDocument = false
	}
	if len(t.queue) > 0 {
		return t.popQueue(), nil
	}
	return Token{Kind: KindStreamEnd, Pos: pos}, nil
}

// documentStart handles a --- marker, implicitly closing a document still
// open from the previous stream segment.
func (t *Tokenizer) documentStart(pos Position) (Token, error) {
	t.scan.Advance(3)
	if t.inDocument {
		t.popDocument()
		t.pushDocument()
		t.queue = append(t.queue, Token{Kind: KindDocumentStart, Pos: pos})
		return Token{Kind: KindDocumentEnd, Pos: pos}, nil
	}
	t.pushDocument()
	t.inDocument = true
	return Token{Kind: KindDocumentStart, Pos: pos}, nil
}

func (t *Tokenizer) documentEnd(pos Position) (Token, bool) {
	t.scan.Advance(3)
	if !t.inDocument {
		return Token{}, false
	}
	t.popDocument()
	t.inDocument = false
	return Token{Kind: KindDocumentEnd, Pos: pos}, true
}

// atMarker reports whether a document marker starts at the cursor: the
// marker text at column 1 followed by a break, a space or end of input.
func (t *Tokenizer) atMarker(marker string) bool {
	if t.scan.Position().Column != 1 || t.scan.PeekString(3) != marker {
		return false
	}
	next := t.scan.PeekAt(3)
	return next == 0 || next == ' ' || next == '\t' || next == '\n' || next == '\r'
}

// atDashItem reports whether the dash at the cursor opens a block-sequence
// item rather than starting a plain scalar such as -17.
func (t *Tokenizer) atDashItem() bool {
	next := t.scan.PeekAt(1)
	return next == 0 || next == ' ' || next == '\t' || next == '\n' || next == '\r'
}

// blockScalar hands off to the block-scalar engine and emits one SCALAR.
func (t *Tokenizer) blockScalar(pos Position, folded bool) (Token, error) {
	t.scan.Advance(1)
	header := parseBlockHeader(t.scan)
	t.lineStart = true
	text := parseBlockBody(t.scan, t.curLineIndent, header, folded)
	tok := Token{Kind: KindScalar, Value: text, Style: StyleLiteral, Pos: pos}
	if folded {
		tok.Style = StyleFolded
	}
	if t.pendingTag != "" {
		applyTag(t.pendingTag, &tok)
		t.pendingTag = ""
	}
	return t.finish(tok), nil
}

// explicitKey handles the ? indicator by reading the following scalar as a
// KEY token.
func (t *Tokenizer) explicitKey(pos Position) (Token, error) {
	tok, err := t.scanScalar()
	if err != nil {
		return Token{}, err
	}
	tok.Kind = KindKey
	tok.Pos = pos
	// The trailing colon of an explicit key is part of the indicator pair.
	t.scan.SkipSpaces()
	if t.scan.Peek() == ':' {
		t.scan.Advance(1)
	}
	return t.finish(tok), nil
}

// scalarOrKey reads a scalar and promotes it to a KEY when a colon
// directly follows it.
func (t *Tokenizer) scalarOrKey(pos Position) (Token, error) {
	tok, err := t.scanScalar()
	if err != nil {
		return Token{}, err
	}
	tok.Pos = pos
	if t.scan.Peek() == ':' && t.colonIsStructural() {
		t.scan.Advance(1)
		tok.Kind = KindKey
		tok.Null = false
		return t.finish(tok), nil
	}
	if t.pendingTag != "" {
		applyTag(t.pendingTag, &tok)
		t.pendingTag = ""
	}
	return t.finish(tok), nil
}

// colonIsStructural reports whether the colon at the cursor separates a key
// from its value.
func (t *Tokenizer) colonIsStructural() bool {
	next := t.scan.PeekAt(1)
	if next == 0 || next == ' ' || next == '\t' || next == '\n' || next == '\r' {
		return true
	}
	if t.flowDepth > 0 && (next == ',' || next == ']' || next == '}') {
		return true
	}
	return false
}

// scanScalar reads one scalar in plain, single-quoted or double-quoted
// style, honoring quote state.
func (t *Tokenizer) scanScalar() (Token, error) {
	switch t.scan.Peek() {
	case '"':
		return t.scanDoubleQuoted()
	case '\'':
		return t.scanSingleQuoted()
	default:
		return t.scanPlain(), nil
	}
}

// scanPlain reads a plain scalar. It runs to the end of the line, stopping
// early at a structural colon, at a comment opened after whitespace, and
// inside flow collections at the flow indicators. Trailing blanks are not
// part of the value.
func (t *Tokenizer) scanPlain() Token {
	style := StylePlain
	if t.flowDepth > 0 {
		style = StyleFlow
	}
	var b strings.Builder
	lastBlank := false
	for !t.scan.Done() {
		c := t.scan.Peek()
		if c == '\n' || c == '\r' {
			break
		}
		if c == '#' && lastBlank {
			break
		}
		if c == ':' && t.colonIsStructural() {
			break
		}
		if t.flowDepth > 0 && (c == ',' || c == '[' || c == ']' || c == '{' || c == '}') {
			break
		}
		lastBlank = c == ' ' || c == '\t'
		b.WriteByte(c)
		t.scan.Advance(1)
	}
	value := strings.TrimRight(b.String(), " \t")
	if value == "" && !t.scan.Done() && t.scan.Peek() != '\n' {
		// Stray structural character with no production of its own; consume
		// it as a one-character scalar so the machine always makes progress.
		value = string(t.scan.Read())
	}
	return Token{Kind: KindScalar, Value: value, Style: style}
}

func (t *Tokenizer) scanDoubleQuoted() (Token, error) {
	t.scan.Advance(1)
	style := StyleDoubleQuoted
	var b strings.Builder
	for {
		if t.scan.Done() {
			return Token{}, syntaxErrorf("unterminated double-quoted scalar")
		}
		c := t.scan.Read()
		switch c {
		case '"':
			return Token{Kind: KindScalar, Value: b.String(), Style: style}, nil
		case '\\':
			if t.scan.Done() {
				return Token{}, syntaxErrorf("unterminated escape sequence")
			}
			if err := readEscape(t.scan, &b); err != nil {
				return Token{}, err
			}
		case '\n':
			style = StyleMultilineFlow
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
}

func (t *Tokenizer) scanSingleQuoted() (Token, error) {
	t.scan.Advance(1)
	style := StyleSingleQuoted
	var b strings.Builder
	for {
		if t.scan.Done() {
			return Token{}, syntaxErrorf("unterminated single-quoted scalar")
		}
		c := t.scan.Read()
		if c == '\'' {
			if t.scan.Peek() == '\'' {
				t.scan.Advance(1)
				b.WriteByte('\'')
				continue
			}
			return Token{Kind: KindScalar, Value: b.String(), Style: style}, nil
		}
		if c == '\n' {
			style = StyleMultilineFlow
		}
		b.WriteByte(c)
	}
}

// readEscape decodes one escape sequence after a backslash.
func readEscape(s *Scanner, b *strings.Builder) error {
	c := s.Read()
	switch c {
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case '0':
		b.WriteByte(0)
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case '"', '\\', '/', '\'':
		b.WriteByte(c)
	case 'u':
		return readHexEscape(s, b, 4)
	case 'U':
		return readHexEscape(s, b, 8)
	default:
		// Unknown escapes pass through with the backslash dropped.
		b.WriteByte(c)
	}
	return nil
}

func readHexEscape(s *Scanner, b *strings.Builder, digits int) error {
	var r rune
	for i := 0; i < digits; i++ {
		if s.Done() {
			return syntaxErrorf("unterminated unicode escape")
		}
		c := s.Read()
		switch {
		case c >= '0' && c <= '9':
			r = r<<4 | rune(c-'0')
		case c >= 'a' && c <= 'f':
			r = r<<4 | rune(c-'a'+10)
		case c >= 'A' && c <= 'F':
			r = r<<4 | rune(c-'A'+10)
		default:
			return syntaxErrorf("invalid unicode escape digit %q", c)
		}
	}
	b.WriteRune(r)
	return nil
}

// scanName reads the identifier of an anchor or alias after its indicator.
func (t *Tokenizer) scanName(what string) (string, error) {
	t.scan.Advance(1)
	var b strings.Builder
	for !t.scan.Done() {
		c := t.scan.Peek()
		if isNameChar(c) {
			b.WriteByte(c)
			t.scan.Advance(1)
			continue
		}
		break
	}
	if b.Len() == 0 {
		return "", syntaxErrorf("%s name expected", what)
	}
	return b.String(), nil
}

// scanTag reads a shorthand (!name, !!name) or verbatim (!<...>) tag.
func (t *Tokenizer) scanTag() (string, error) {
	t.scan.Advance(1)
	var b strings.Builder
	b.WriteByte('!')
	if t.scan.Peek() == '<' {
		b.WriteByte(t.scan.Read())
		for {
			if t.scan.Done() {
				return "", syntaxErrorf("unterminated verbatim tag")
			}
			c := t.scan.Read()
			if c == '\n' {
				return "", syntaxErrorf("unterminated verbatim tag")
			}
			b.WriteByte(c)
			if c == '>' {
				return b.String(), nil
			}
		}
	}
	if t.scan.Peek() == '!' {
		b.WriteByte(t.scan.Read())
	}
	for !t.scan.Done() {
		c := t.scan.Peek()
		if isNameChar(c) || c == '.' || c == ':' {
			b.WriteByte(c)
			t.scan.Advance(1)
			continue
		}
		break
	}
	return b.String(), nil
}

func isNameChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' || c == '_' || c == '-'
}

// finish applies the deferred anchor to a produced token and fills the
// anchor slot when the token carries a scalar value.
func (t *Tokenizer) finish(tok Token) Token {
	if t.pendingAnchor != "" {
		tok.Anchor = t.pendingAnchor
		t.pendingAnchor = ""
		if tok.Kind == KindScalar {
			if slot, ok := t.topDoc().resolve(tok.Anchor); ok && !slot.filled {
				slot.value = tok.Value
				slot.null = tok.Null
				slot.filled = true
			}
		}
	}
	return tok
}

func (t *Tokenizer) popQueue() Token {
	tok := t.queue[0]
	t.queue = t.queue[1:]
	return tok
}

func (t *Tokenizer) topDoc() *docContext {
	return t.docs[len(t.docs)-1]
}

func (t *Tokenizer) pushDocument() {
	t.docs = append(t.docs, newDocContext(t.curLineIndent, t.flowDepth > 0))
}

func (t *Tokenizer) popDocument() {
	if len(t.docs) > 1 {
		t.docs = t.docs[:len(t.docs)-1]
	}
}
