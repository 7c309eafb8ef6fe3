package yaml

import (
	"fmt"
	"sort"
)

// Position is a line/column coordinate in the source text, computed on
// demand from a precomputed table of line-start offsets. Line and Column
// are 1-based; Offset is a 0-based byte offset. Positions are used only
// for diagnostics and never drive parsing decisions.
type Position struct {
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

// lineIndex maps byte offsets to line/column coordinates.
type lineIndex struct {
	starts []int // byte offset of the first character of each line
}

func newLineIndex(src string) *lineIndex {
	starts := []int{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &lineIndex{starts: starts}
}

// locate converts a byte offset into a Position. Offsets past the end of
// the text resolve to one past the last character.
func (ix *lineIndex) locate(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	line := sort.SearchInts(ix.starts, offset+1) - 1
	return Position{
		Offset: offset,
		Line:   line + 1,
		Column: offset - ix.starts[line] + 1,
	}
}
