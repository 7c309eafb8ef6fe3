package yaml

import "strings"

// Scanner is a cursor over the input text. The cursor is a plain integer
// offset into the original string, so saving and restoring a position via
// Pos/SetPos rewinds all derived state at zero cost. Reading past the end
// is reported through Done rather than an error; callers check Done before
// reading.
type Scanner struct {
	src   string
	pos   int
	index *lineIndex
}

// NewScanner creates a scanner over src.
func NewScanner(src string) *Scanner {
	return &Scanner{src: src, index: newLineIndex(src)}
}

// Done reports whether the cursor has passed the last character.
func (s *Scanner) Done() bool {
	return s.pos >= len(s.src)
}

// Peek returns the current character without consuming it, or 0 when done.
func (s *Scanner) Peek() byte {
	if s.Done() {
		return 0
	}
	return s.src[s.pos]
}

// PeekAt returns the character at the given offset past the cursor, or 0
// when that offset is out of range.
func (s *Scanner) PeekAt(offset int) byte {
	if s.pos+offset >= len(s.src) || s.pos+offset < 0 {
		return 0
	}
	return s.src[s.pos+offset]
}

// PeekString returns up to n characters ahead without consuming them.
func (s *Scanner) PeekString(n int) string {
	end := s.pos + n
	if end > len(s.src) {
		end = len(s.src)
	}
	return s.src[s.pos:end]
}

// Read consumes and returns the current character, or 0 when done.
func (s *Scanner) Read() byte {
	if s.Done() {
		return 0
	}
	c := s.src[s.pos]
	s.pos++
	return c
}

// Advance moves the cursor forward n characters, clamping at the end.
func (s *Scanner) Advance(n int) {
	s.pos += n
	if s.pos > len(s.src) {
		s.pos = len(s.src)
	}
}

// ReadLine consumes the rest of the current line including its line break
// and returns the consumed text without the break.
func (s *Scanner) ReadLine() string {
	if s.Done() {
		return ""
	}
	nl := strings.IndexByte(s.src[s.pos:], '\n')
	if nl < 0 {
		line := s.src[s.pos:]
		s.pos = len(s.src)
		return strings.TrimSuffix(line, "\r")
	}
	line := s.src[s.pos : s.pos+nl]
	s.pos += nl + 1
	return strings.TrimSuffix(line, "\r")
}

// SkipSpaces consumes intra-line whitespace (spaces and tabs).
func (s *Scanner) SkipSpaces() {
	for !s.Done() {
		c := s.src[s.pos]
		if c != ' ' && c != '\t' {
			return
		}
		s.pos++
	}
}

// Pos returns the raw cursor offset for save/restore.
func (s *Scanner) Pos() int {
	return s.pos
}

// SetPos restores a previously saved cursor offset.
func (s *Scanner) SetPos(pos int) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(s.src) {
		pos = len(s.src)
	}
	s.pos = pos
}

// Position returns the current line/column coordinate.
func (s *Scanner) Position() Position {
	return s.index.locate(s.pos)
}

// PositionAt returns the line/column coordinate of an arbitrary offset.
func (s *Scanner) PositionAt(offset int) Position {
	return s.index.locate(offset)
}
