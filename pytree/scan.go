package pytree

import (
	"strings"
	"unicode/utf8"
)

// lineInfo is the per-line classification the structural pass works from.
type lineInfo struct {
	indent      int    // display columns of leading whitespace
	endCol      int    // rune count with trailing whitespace trimmed
	stripped    string // line with leading whitespace removed
	blank       bool
	commentOnly bool
	// contStart marks lines that begin inside an open string, bracket pair,
	// or after a backslash: they can never open or close a block.
	contStart bool
}

// analyzeLines classifies every line in one pass, carrying string, bracket,
// and backslash state across line boundaries so keywords inside literals or
// implicit line joins are never mistaken for block headers.
func (pp *PythonParser) analyzeLines(lines []string) []lineInfo {
	infos := make([]lineInfo, len(lines))
	var sc scanner
	for i, line := range lines {
		li := lineInfo{
			stripped:  strings.TrimLeft(line, " \t"),
			contStart: sc.continued(),
		}
		trimmed := strings.TrimRight(line, " \t\r")
		li.endCol = utf8.RuneCountInString(trimmed)
		li.blank = strings.TrimRight(li.stripped, " \t\r") == ""
		li.indent = pp.indentOf(line)
		if !li.contStart && !li.blank && strings.HasPrefix(li.stripped, "#") {
			li.commentOnly = true
		}
		sc.scanLine(line)
		infos[i] = li
	}
	return infos
}

func (pp *PythonParser) indentOf(line string) int {
	col := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case ' ':
			col++
		case '\t':
			col += pp.tabWidth - col%pp.tabWidth
		default:
			return col
		}
	}
	return col
}

// scanner carries lexical state across lines.
type scanner struct {
	triple    string // open triple-quote delimiter, "" when closed
	depth     int    // open bracket depth
	backslash bool   // previous line ended with a continuation backslash
}

func (sc *scanner) continued() bool {
	return sc.triple != "" || sc.depth > 0 || sc.backslash
}

// scanLine advances the lexical state over one line. Strings and comments are
// skipped wholesale so their contents never affect bracket depth.
func (sc *scanner) scanLine(line string) {
	sc.backslash = false
	i := 0
	if sc.triple != "" {
		idx := strings.Index(line, sc.triple)
		if idx < 0 {
			return
		}
		i = idx + len(sc.triple)
		sc.triple = ""
	}
	for i < len(line) {
		ch := line[i]
		switch ch {
		case '#':
			return
		case '\'', '"':
			quote := string(ch)
			delim := quote + quote + quote
			if strings.HasPrefix(line[i:], delim) {
				rest := line[i+3:]
				idx := strings.Index(rest, delim)
				if idx < 0 {
					sc.triple = delim
					return
				}
				i += 3 + idx + 3
				continue
			}
			i = skipSingleString(line, i)
			continue
		case '(', '[', '{':
			sc.depth++
		case ')', ']', '}':
			if sc.depth > 0 {
				sc.depth--
			}
		case '\\':
			if i == len(line)-1 || strings.TrimRight(line[i+1:], " \t\r") == "" {
				sc.backslash = true
				return
			}
		}
		i++
	}
}

// skipSingleString returns the index just past a single-quoted string literal
// starting at i. Unterminated literals are treated as ending at end of line.
func skipSingleString(line string, i int) int {
	quote := line[i]
	j := i + 1
	for j < len(line) {
		switch line[j] {
		case '\\':
			j += 2
		case quote:
			return j + 1
		default:
			j++
		}
	}
	return len(line)
}
