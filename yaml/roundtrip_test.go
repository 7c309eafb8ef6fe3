package yaml

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// replay feeds a token stream back through an emitter.
func replay(t *testing.T, tokens []Token) string {
	t.Helper()
	e := NewEmitter()
	defer e.Close()
	write := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("replay write failed: %v", err)
		}
	}
	for _, tok := range tokens {
		if tok.Anchor != "" {
			write(e.WriteAnchor(tok.Anchor))
		}
		switch tok.Kind {
		case KindMappingStart:
			write(e.WriteStartMapping())
		case KindMappingEnd:
			write(e.WriteEndMapping())
		case KindSequenceStart:
			write(e.WriteStartSequence())
		case KindSequenceEnd:
			write(e.WriteEndSequence())
		case KindKey:
			write(e.WriteKey(tok.Value))
		case KindScalar:
			if tok.Null {
				write(e.WriteNull())
			} else {
				write(e.WriteScalar(tok.Value, tok.Style))
			}
		case KindAlias:
			write(e.WriteAlias(tok.Value))
		}
	}
	out, err := e.YAML()
	if err != nil {
		t.Fatalf("YAML() failed: %v", err)
	}
	return out
}

// TestRoundTrip checks that emitting a token stream and tokenizing the
// result reproduces the stream, up to position and presentation style.
func TestRoundTrip(t *testing.T) {
	inputs := []string{
		"name: John Doe\nage: 30\n",
		"items:\n  - one\n  - two\n",
		"tags: [a, b, c]\n",
		"point: {x: 1, y: 2}\n",
		"grid: [[1, 2], [3, 4]]\n",
		"base: &b 1\nref: *b\n",
		"text: |\n  line1\n  line2\n",
		"- a: 1\n  b: 2\n",
		"outer:\n  inner: 1\nnext: 2\n",
		"a:\n  b:\n    c: 1\n",
		"empty: []\n",
		"quoted: \"a: b\"\n",
	}
	ignore := cmpopts.IgnoreFields(Token{}, "Pos", "Style")
	for _, src := range inputs {
		first := collect(t, src)
		emitted := replay(t, first)
		second := collect(t, emitted)
		if diff := cmp.Diff(first, second, ignore); diff != "" {
			t.Errorf("Round trip of %q via %q changed the stream (-first +second):\n%s",
				src, emitted, diff)
		}
	}
}

// TestRoundTripStable checks that a second pass through the pipeline
// reproduces the first pass's text exactly.
func TestRoundTripStable(t *testing.T) {
	src := "server:\n  - {host: localhost, port: 8080}\nnames: [ada, grace]\n"
	once := replay(t, collect(t, src))
	twice := replay(t, collect(t, once))
	if once != twice {
		t.Errorf("Second pass diverged:\nfirst:  %q\nsecond: %q", once, twice)
	}
}
