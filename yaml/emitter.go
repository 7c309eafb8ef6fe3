package yaml

import (
	"errors"
	"fmt"
	"strings"
)

// Emitter is the write-side counterpart of the Tokenizer. It accepts
// structural and value write calls in token order, mirrors the tokenizer's
// nesting bookkeeping, and serializes valid YAML text on YAML().
//
// Layout policy: mappings opened with WriteStartMapping render in flow
// style; sequence frames render as a block "- " item when they hold a
// single value or a block mapping, and in flow style when they hold
// several direct values. Under the token model this is origin-preserving:
// block dash items always arrive as single-item frames and block mappings
// arrive as bare keys, so only flow-origin collections ever produce
// multi-item or mapping frames.
type Emitter struct {
	root          []*enode
	stack         []*enode
	pendingAnchor string
	closed        bool
}

type enodeKind int

const (
	eScalar enodeKind = iota
	eAlias
	eKeyed
	eMapping
	eSequence
)

type enode struct {
	kind     enodeKind
	key      string
	text     string
	null     bool
	style    Style
	anchor   string
	values   []*enode // eKeyed: the key's value(s); sibling micro-sequences stack
	children []*enode // containers
	hasValue bool
	block    bool // eMapping: implicit block mapping opened by a nested key
}

// ErrUnbalanced reports an end-write without a matching start, or output
// requested while containers are still open. Structural misuse is a
// programming error and fails immediately.
var ErrUnbalanced = errors.New("unbalanced structural write")

// NewEmitter creates an empty emitter.
func NewEmitter() *Emitter {
	return &Emitter{}
}

// WriteStartMapping opens a mapping.
func (e *Emitter) WriteStartMapping() error {
	n := &enode{kind: eMapping}
	if err := e.place(n); err != nil {
		return err
	}
	e.stack = append(e.stack, n)
	return nil
}

// WriteEndMapping closes the innermost mapping.
func (e *Emitter) WriteEndMapping() error {
	return e.pop(eMapping, "mapping")
}

// WriteStartSequence opens a sequence.
func (e *Emitter) WriteStartSequence() error {
	n := &enode{kind: eSequence}
	if err := e.place(n); err != nil {
		return err
	}
	e.stack = append(e.stack, n)
	return nil
}

// WriteEndSequence closes the innermost sequence.
func (e *Emitter) WriteEndSequence() error {
	return e.pop(eSequence, "sequence")
}

// WriteKey writes a mapping key. Keys may appear at the root, inside an
// open mapping, or inside a sequence item (block mappings nested under a
// dash). A key following a key still awaiting its value opens an implicit
// nested block mapping under it: in a tokenizer-produced stream a KEY
// directly after a KEY always means nesting, since dangling keys get an
// explicit synthesized null.
func (e *Emitter) WriteKey(name string) error {
	if e.closed {
		return ErrUnbalanced
	}
	siblings := e.attach()
	if last := lastKeyed(*siblings); last != nil && !last.hasValue {
		m := &enode{kind: eMapping, block: true}
		last.values = append(last.values, m)
		last.hasValue = true
		siblings = &m.children
	}
	n := &enode{kind: eKeyed, key: name, anchor: e.takeAnchor()}
	*siblings = append(*siblings, n)
	return nil
}

// WriteScalar writes a scalar value in the requested style.
func (e *Emitter) WriteScalar(text string, style Style) error {
	return e.place(&enode{kind: eScalar, text: text, style: style})
}

// WriteNull writes an explicit null value.
func (e *Emitter) WriteNull() error {
	return e.place(&enode{kind: eScalar, null: true})
}

// WriteAnchor attaches an anchor definition to the next written node.
func (e *Emitter) WriteAnchor(name string) error {
	if e.closed {
		return ErrUnbalanced
	}
	e.pendingAnchor = name
	return nil
}

// WriteAlias writes an alias reference as a value.
func (e *Emitter) WriteAlias(name string) error {
	return e.place(&enode{kind: eAlias, text: name})
}

// YAML renders the accumulated writes as YAML text. All containers must be
// closed.
func (e *Emitter) YAML() (string, error) {
	if len(e.stack) > 0 {
		return "", fmt.Errorf("%w: %d container(s) still open", ErrUnbalanced, len(e.stack))
	}
	var b strings.Builder
	renderBlock(&b, e.root, 0)
	return b.String(), nil
}

// Close discards all accumulated state. Idempotent.
func (e *Emitter) Close() {
	e.closed = true
	e.root = nil
	e.stack = nil
	e.pendingAnchor = ""
}

func (e *Emitter) takeAnchor() string {
	a := e.pendingAnchor
	e.pendingAnchor = ""
	return a
}

// currentChildren returns the slice new nodes are appended to: the open
// container's children, or the root.
func (e *Emitter) currentChildren() *[]*enode {
	if len(e.stack) == 0 {
		return &e.root
	}
	return &e.stack[len(e.stack)-1].children
}

func lastKeyed(nodes []*enode) *enode {
	if len(nodes) == 0 {
		return nil
	}
	if n := nodes[len(nodes)-1]; n.kind == eKeyed {
		return n
	}
	return nil
}

// attach returns the sibling list new nodes join: the open container's
// children, descended through any implicit block mappings still growing at
// their tail. Implicit mappings have no end-write, so the deepest one stays
// the attach point; a dedent back to an outer level is not representable
// without positions.
func (e *Emitter) attach() *[]*enode {
	siblings := e.currentChildren()
	for {
		last := lastKeyed(*siblings)
		if last == nil || !last.hasValue {
			return siblings
		}
		if v := last.values[len(last.values)-1]; v.kind == eMapping && v.block {
			siblings = &v.children
			continue
		}
		return siblings
	}
}

// place attaches a value node: to a key awaiting its value, as a sibling
// micro-sequence on an already filled key, or as a container item.
func (e *Emitter) place(n *enode) error {
	if e.closed {
		return ErrUnbalanced
	}
	n.anchor = e.takeAnchor()
	siblings := e.attach()
	if last := lastKeyed(*siblings); last != nil {
		if !last.hasValue {
			last.values = append(last.values, n)
			last.hasValue = true
			return nil
		}
		// Consecutive block dash items under one key arrive as sibling
		// sequence frames; they stack onto the same key.
		if n.kind == eSequence && last.values[len(last.values)-1].kind == eSequence {
			last.values = append(last.values, n)
			return nil
		}
	}
	*siblings = append(*siblings, n)
	return nil
}

func (e *Emitter) pop(kind enodeKind, what string) error {
	if e.closed || len(e.stack) == 0 {
		return fmt.Errorf("%w: end of %s without matching start", ErrUnbalanced, what)
	}
	top := e.stack[len(e.stack)-1]
	if top.kind != kind {
		return fmt.Errorf("%w: end of %s does not match open container", ErrUnbalanced, what)
	}
	if last := lastKeyed(top.children); last != nil && !last.hasValue {
		last.values = append(last.values, &enode{kind: eScalar, null: true})
		last.hasValue = true
	}
	e.stack = e.stack[:len(e.stack)-1]
	return nil
}

const indentStep = 2

// renderBlock renders nodes as block-style lines at the given indent.
func renderBlock(b *strings.Builder, nodes []*enode, indent int) {
	for _, n := range nodes {
		switch n.kind {
		case eKeyed:
			renderKeyed(b, n, indent)
		case eSequence:
			renderSeqBlock(b, n, indent)
		case eScalar, eAlias, eMapping:
			writeIndent(b, indent)
			b.WriteString(renderInline(n))
			b.WriteByte('\n')
		}
	}
}

func renderKeyed(b *strings.Builder, n *enode, indent int) {
	writeIndent(b, indent)
	if n.anchor != "" {
		b.WriteString("&" + n.anchor + " ")
	}
	b.WriteString(renderScalarText(n.key, StylePlain, false, true))
	b.WriteByte(':')
	if len(n.values) == 0 {
		b.WriteString(" null\n")
		return
	}
	v := n.values[0]
	switch {
	case v.kind == eMapping && v.block:
		// Nested block mapping: keys on the following lines.
		b.WriteByte('\n')
		renderBlock(b, v.children, indent+indentStep)
	case len(n.values) > 1 || v.kind == eSequence:
		// Dash items on the following lines.
		b.WriteByte('\n')
		for _, val := range n.values {
			renderSeqBlock(b, val, indent+indentStep)
		}
	case v.kind == eScalar && needsBlockScalar(v):
		b.WriteByte(' ')
		renderLiteral(b, v.text, indent+indentStep)
	default:
		b.WriteByte(' ')
		b.WriteString(renderInline(v))
		b.WriteByte('\n')
	}
}

// renderSeqBlock renders one sequence frame in block position.
func renderSeqBlock(b *strings.Builder, seq *enode, indent int) {
	if anyKeyed(seq.children) {
		// One dash item holding a block mapping: merge the first key onto
		// the dash line, continue the rest at the item indent.
		var sub strings.Builder
		renderBlock(&sub, seq.children, indent+indentStep)
		mergeDash(b, sub.String(), indent, seq.anchor)
		return
	}
	if len(seq.children) != 1 {
		writeIndent(b, indent)
		b.WriteString(renderInline(seq))
		b.WriteByte('\n')
		return
	}
	item := seq.children[0]
	switch {
	case item.kind == eSequence:
		var sub strings.Builder
		renderSeqBlock(&sub, item, indent+indentStep)
		mergeDash(b, sub.String(), indent, seq.anchor)
	case item.kind == eScalar && needsBlockScalar(item):
		writeIndent(b, indent)
		b.WriteString("- ")
		renderLiteral(b, item.text, indent+indentStep)
	default:
		writeIndent(b, indent)
		b.WriteString("- ")
		if seq.anchor != "" {
			b.WriteString("&" + seq.anchor + " ")
		}
		b.WriteString(renderInline(item))
		b.WriteByte('\n')
	}
}

// mergeDash rewrites the first line of an already rendered block so that
// it begins with the dash marker at the frame's indent.
func mergeDash(b *strings.Builder, sub string, indent int, anchor string) {
	lines := strings.SplitAfter(sub, "\n")
	writeIndent(b, indent)
	b.WriteString("- ")
	if anchor != "" {
		b.WriteString("&" + anchor + " ")
	}
	if len(lines) > 0 {
		b.WriteString(strings.TrimLeft(lines[0], " "))
		for _, line := range lines[1:] {
			b.WriteString(line)
		}
	}
}

// renderInline renders a node in flow/inline position.
func renderInline(n *enode) string {
	prefix := ""
	if n.anchor != "" {
		prefix = "&" + n.anchor + " "
	}
	switch n.kind {
	case eScalar:
		return prefix + renderScalarText(n.text, n.style, n.null, false)
	case eAlias:
		return prefix + "*" + n.text
	case eMapping:
		parts := make([]string, 0, len(n.children))
		for _, c := range n.children {
			if c.kind != eKeyed {
				parts = append(parts, renderInline(c))
				continue
			}
			val := "null"
			if len(c.values) > 0 {
				val = renderInline(c.values[0])
			}
			parts = append(parts, renderScalarText(c.key, StylePlain, false, true)+": "+val)
		}
		return prefix + "{" + strings.Join(parts, ", ") + "}"
	case eSequence:
		parts := make([]string, 0, len(n.children))
		for _, c := range n.children {
			parts = append(parts, renderInline(c))
		}
		return prefix + "[" + strings.Join(parts, ", ") + "]"
	}
	return prefix
}

func anyKeyed(nodes []*enode) bool {
	for _, n := range nodes {
		if n.kind == eKeyed {
			return true
		}
	}
	return false
}

func needsBlockScalar(n *enode) bool {
	return !n.null && strings.Contains(n.text, "\n")
}

// renderLiteral writes a scalar containing line breaks as a literal block
// with the chomping indicator implied by its trailing newlines.
func renderLiteral(b *strings.Builder, text string, indent int) {
	body := strings.TrimRight(text, "\n")
	trailing := len(text) - len(body)
	b.WriteByte('|')
	switch {
	case trailing == 0:
		b.WriteByte('-')
	case trailing > 1:
		b.WriteByte('+')
	}
	b.WriteByte('\n')
	for _, line := range strings.Split(body, "\n") {
		if line != "" {
			writeIndent(b, indent)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	for i := 1; i < trailing; i++ {
		b.WriteByte('\n')
	}
}

// renderScalarText chooses the serialized form of a scalar: the requested
// quoting style, escalated to quotes whenever the text would not survive a
// round trip as a plain scalar.
func renderScalarText(text string, style Style, null bool, isKey bool) string {
	if null {
		return "null"
	}
	switch style {
	case StyleSingleQuoted:
		return "'" + strings.ReplaceAll(text, "'", "''") + "'"
	case StyleDoubleQuoted, StyleMultilineFlow:
		return quoteDouble(text)
	}
	if plainSafe(text) || (isKey && text == "<<") {
		return text
	}
	return quoteDouble(text)
}

// plainSafe reports whether text re-tokenizes as a single plain scalar in
// both block and flow position.
func plainSafe(text string) bool {
	if text == "" {
		return false
	}
	if strings.ContainsAny(text, ",:[]{}#&*!|>\"'\\\n\t\r") {
		return false
	}
	switch text[0] {
	case '-', '?', '%', '@', '`', ' ':
		return false
	}
	return text[len(text)-1] != ' '
}

func quoteDouble(text string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range text {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\u%04X`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

func writeIndent(b *strings.Builder, indent int) {
	for i := 0; i < indent; i++ {
		b.WriteByte(' ')
	}
}
