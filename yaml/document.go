package yaml

// anchorSlot is a deferred value reserved by an anchor definition. The slot
// exists as soon as &name is seen; the first scalar emitted for the anchored
// node fills it. Slots are write-once per emission but redefining the same
// name overwrites the slot (last writer wins); duplicate-anchor semantics
// are not validated at this layer.
type anchorSlot struct {
	value  string
	null   bool
	filled bool
}

// docContext tracks per-document state across a multi-document stream: the
// indentation baseline and flow-nesting flag snapshotted at the moment the
// document opened, and the document's own anchor scope. Contexts form a
// stack modeling document transitions, not containment.
type docContext struct {
	baseIndent int
	inFlow     bool
	anchors    map[string]*anchorSlot
}

func newDocContext(baseIndent int, inFlow bool) *docContext {
	return &docContext{
		baseIndent: baseIndent,
		inFlow:     inFlow,
		anchors:    make(map[string]*anchorSlot),
	}
}

// define reserves a slot for an anchor name in this document's scope.
func (d *docContext) define(name string) *anchorSlot {
	slot := &anchorSlot{}
	d.anchors[name] = slot
	return slot
}

// resolve looks up an anchor slot. The second result is false when the name
// was never defined in this scope.
func (d *docContext) resolve(name string) (*anchorSlot, bool) {
	slot, ok := d.anchors[name]
	return slot, ok
}
