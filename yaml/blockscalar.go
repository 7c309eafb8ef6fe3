package yaml

import "strings"

// blockHeader is the parsed |/> header: a chomping indicator and an
// explicit indent, 0 meaning auto-detect.
type blockHeader struct {
	chomp  Chomping
	indent int
}

// parseBlockHeader reads the header that follows a |/> indicator: an
// optional chomping indicator (+ keep, - strip) and an optional explicit
// indent (multi-digit allowed), in either order. The remainder of the
// header line is discarded. Header parsing is fully consumed before any
// body characters are read.
func parseBlockHeader(s *Scanner) blockHeader {
	h := blockHeader{chomp: ChompClip}
	for !s.Done() {
		c := s.Peek()
		switch {
		case c == '+':
			h.chomp = ChompKeep
			s.Advance(1)
		case c == '-':
			h.chomp = ChompStrip
			s.Advance(1)
		case c >= '0' && c <= '9':
			h.indent = h.indent*10 + int(c-'0')
			s.Advance(1)
		default:
			s.ReadLine()
			return h
		}
	}
	return h
}

// parseBlockBody reads the indented lines forming a block scalar's content
// and reconstructs the scalar text. baseIndent is the indentation column of
// the line carrying the indicator; content must be indented past it. When
// the header gave no explicit indent, the content indent is auto-detected
// by probing the first non-blank line without consuming it (tabs count as
// 2 columns). Chomping is applied exactly once, at the end.
func parseBlockBody(s *Scanner, baseIndent int, h blockHeader, folded bool) string {
	contentIndent := 0
	if h.indent > 0 {
		contentIndent = baseIndent + h.indent
	} else {
		saved := s.Pos()
		contentIndent = probeIndent(s, baseIndent)
		s.SetPos(saved)
	}

	var lines []string
	for !s.Done() {
		saved := s.Pos()
		line := s.ReadLine()
		if strings.TrimRight(line, " \t") == "" {
			lines = append(lines, "")
			continue
		}
		if indentColumns(line) < contentIndent {
			s.SetPos(saved)
			break
		}
		lines = append(lines, dropIndent(line, contentIndent))
	}

	// Trailing blank lines beyond the content belong to the scalar only as
	// line breaks; assemble first, chomp after.
	var text string
	if folded {
		text = foldLines(lines)
	} else {
		var b strings.Builder
		for _, line := range lines {
			b.WriteString(line)
			b.WriteByte('\n')
		}
		text = b.String()
	}
	return chomp(text, h.chomp)
}

// probeIndent peeks forward past blank lines and measures the leading
// whitespace of the first non-blank line. Falls back to one column past the
// base indent when no content follows.
func probeIndent(s *Scanner, baseIndent int) int {
	for !s.Done() {
		line := s.ReadLine()
		if strings.TrimRight(line, " \t") == "" {
			continue
		}
		if cols := indentColumns(line); cols > baseIndent {
			return cols
		}
		break
	}
	return baseIndent + 1
}

// indentColumns measures leading whitespace in columns; tabs count as 2.
func indentColumns(line string) int {
	cols := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case ' ':
			cols++
		case '\t':
			cols += 2
		default:
			return cols
		}
	}
	return cols
}

// dropIndent removes leading whitespace up to the given column count.
func dropIndent(line string, cols int) string {
	seen := 0
	for i := 0; i < len(line); i++ {
		if seen >= cols {
			return line[i:]
		}
		switch line[i] {
		case ' ':
			seen++
		case '\t':
			seen += 2
		default:
			return line[i:]
		}
	}
	return ""
}

// foldLines implements folded (>) reconstruction: a single line break
// between two non-blank lines becomes one space, blank lines are preserved
// as explicit breaks, and the final line contributes its own break.
func foldLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	var b strings.Builder
	needSpace := false
	for _, line := range lines {
		if line == "" {
			b.WriteByte('\n')
			needSpace = false
			continue
		}
		if needSpace {
			b.WriteByte(' ')
		}
		b.WriteString(line)
		needSpace = true
	}
	b.WriteByte('\n')
	return b.String()
}

// chomp applies the trailing-newline rule: CLIP keeps exactly one, STRIP
// removes all, KEEP leaves the text as collected.
func chomp(text string, mode Chomping) string {
	switch mode {
	case ChompStrip:
		return strings.TrimRight(text, "\n")
	case ChompKeep:
		return text
	default:
		trimmed := strings.TrimRight(text, "\n")
		if trimmed == "" {
			return ""
		}
		return trimmed + "\n"
	}
}
