package pytree

import (
	"strings"
	"unicode/utf8"
)

// PythonParser builds a structural tree from Python source using a
// line-oriented indentation scan. It is deliberately tolerant: invalid or
// partial source never produces an error, only the most plausible tree.
type PythonParser struct {
	tabWidth int
}

// NewPythonParser returns a ready-to-use Python parser.
func NewPythonParser() *PythonParser {
	return &PythonParser{tabWidth: 8}
}

func (pp *PythonParser) Language() string { return "python" }

// Parse converts Python source into a Tree. The returned error is always nil;
// it exists to satisfy the Parser interface.
func (pp *PythonParser) Parse(content string, path string) (*Tree, error) {
	lines := strings.Split(content, "\n")
	infos := pp.analyzeLines(lines)

	root := &Node{Kind: KindModule, Start: Point{0, 0}}
	tree := &Tree{Root: root, Path: path, Language: "python", LineCount: len(lines)}

	st := &parseState{infos: infos}
	st.push(&openBody{owner: root, stmt: root, indent: -1, lastLine: -1})

	i := 0
	for i < len(infos) {
		li := infos[i]
		if li.blank {
			i++
			continue
		}
		if li.contStart {
			// continuation of a multi-line statement or string literal
			st.top().extend(i, li.endCol)
			i++
			continue
		}
		if li.commentOnly {
			st.commentOwner(li.indent).extend(i, li.endCol)
			i++
			continue
		}

		kw := leadingKeyword(li.stripped)
		i = st.handleCodeLine(i, li, kw)
	}

	for len(st.stack) > 1 {
		st.pop()
	}
	mod := st.stack[0]
	if mod.lastLine >= 0 {
		root.End = Point{mod.lastLine, mod.lastCol}
	}
	return tree, nil
}

// openBody tracks one body being filled: either a compound statement's own
// block or a clause block. stmt points at the enclosing compound statement so
// clause keywords at the same indent can re-attach to it.
type openBody struct {
	owner    *Node
	stmt     *Node
	block    *Node
	indent   int
	lastLine int
	lastCol  int
}

func (ob *openBody) extend(line, endCol int) {
	ob.lastLine = line
	ob.lastCol = endCol
}

type parseState struct {
	infos []lineInfo
	stack []*openBody
}

func (st *parseState) push(ob *openBody) { st.stack = append(st.stack, ob) }

func (st *parseState) top() *openBody { return st.stack[len(st.stack)-1] }

// pop finalizes the top body and propagates its extent into the new top so
// enclosing blocks cover nested constructs.
func (st *parseState) pop() {
	ob := st.top()
	st.stack = st.stack[:len(st.stack)-1]
	end := ob.owner.HeaderEnd
	if ob.block != nil && ob.lastLine >= 0 {
		ob.block.End = Point{ob.lastLine, ob.lastCol}
		end = ob.block.End
	}
	ob.owner.End = end
	if ob.stmt != ob.owner && end.Line > ob.stmt.End.Line {
		ob.stmt.End = end
	}
	parent := st.top()
	if end.Line > parent.lastLine {
		parent.extend(end.Line, end.Column)
	}
}

// commentOwner picks the innermost open body a comment line belongs to: the
// deepest one opened at a shallower indent than the comment itself. Comments
// never open or close blocks.
func (st *parseState) commentOwner(indent int) *openBody {
	for i := len(st.stack) - 1; i >= 0; i-- {
		if st.stack[i].indent < indent {
			return st.stack[i]
		}
	}
	return st.stack[0]
}

// ensureBlock lazily creates the body block on its first content line.
func (st *parseState) ensureBlock(ob *openBody, line, indent, endCol int) *Node {
	if ob.owner.Kind == KindModule {
		if ob.lastLine < line {
			ob.extend(line, endCol)
		}
		return ob.owner
	}
	if ob.block == nil {
		ob.block = &Node{Kind: KindBlock, Start: Point{line, indent}}
		ob.owner.addChild(ob.block)
		ob.extend(line, endCol)
	}
	return ob.block
}

// handleCodeLine closes finished bodies, attaches clauses to their owning
// statement, and opens new compound statements. It returns the next line to
// process.
func (st *parseState) handleCodeLine(i int, li lineInfo, kw string) int {
	for len(st.stack) > 1 {
		top := st.top()
		if top.indent < li.indent {
			break
		}
		if top.indent == li.indent && isClauseKeyword(kw) && clauseAllowed(kw, top.stmt.Kind) {
			stmt := top.stmt
			st.pop()
			return st.openClause(i, li, kw, stmt)
		}
		st.pop()
	}

	if kind, compound := compoundKind(kw); compound {
		return st.openStatement(i, li, kind)
	}
	if isClauseKeyword(kw) {
		// stray clause with no owning statement; keep it as a standalone
		// construct so the rest of the file still parses
		return st.openClause(i, li, kw, nil)
	}
	st.ensureBlock(st.top(), i, li.indent, li.endCol)
	st.top().extend(i, li.endCol)
	return i + 1
}

func (st *parseState) openStatement(i int, li lineInfo, kind NodeKind) int {
	hEnd := st.headerEnd(i)
	node := &Node{
		Kind:      kind,
		Start:     Point{i, li.indent},
		HeaderEnd: Point{hEnd, st.infos[hEnd].endCol},
	}
	if kind == KindFunction || kind == KindClass {
		node.Name = definitionName(li.stripped)
	}
	parent := st.ensureBlock(st.top(), i, li.indent, li.endCol)
	parent.addChild(node)
	st.push(&openBody{owner: node, stmt: node, indent: li.indent, lastLine: -1})
	return hEnd + 1
}

func (st *parseState) openClause(i int, li lineInfo, kw string, stmt *Node) int {
	hEnd := st.headerEnd(i)
	clause := &Node{
		Kind:      clauseKind(kw),
		Start:     Point{i, li.indent},
		HeaderEnd: Point{hEnd, st.infos[hEnd].endCol},
	}
	if stmt != nil {
		stmt.addChild(clause)
	} else {
		parent := st.ensureBlock(st.top(), i, li.indent, li.endCol)
		parent.addChild(clause)
		stmt = clause
	}
	st.push(&openBody{owner: clause, stmt: stmt, indent: li.indent, lastLine: -1})
	return hEnd + 1
}

// headerEnd returns the last line of a possibly multi-line header: lines keep
// belonging to the header while the following line starts inside an open
// bracket, string, or backslash continuation.
func (st *parseState) headerEnd(start int) int {
	j := start
	for j+1 < len(st.infos) && st.infos[j+1].contStart {
		j++
	}
	return j
}

func compoundKind(kw string) (NodeKind, bool) {
	switch kw {
	case "def":
		return KindFunction, true
	case "class":
		return KindClass, true
	case "for":
		return KindFor, true
	case "while":
		return KindWhile, true
	case "if":
		return KindIf, true
	case "try":
		return KindTry, true
	}
	return "", false
}

func isClauseKeyword(kw string) bool {
	switch kw {
	case "elif", "else", "except", "finally":
		return true
	}
	return false
}

func clauseKind(kw string) NodeKind {
	switch kw {
	case "elif":
		return KindElifClause
	case "except":
		return KindExcept
	case "finally":
		return KindFinally
	default:
		return KindElseClause
	}
}

func clauseAllowed(kw string, owner NodeKind) bool {
	switch kw {
	case "elif":
		return owner == KindIf
	case "else":
		return owner == KindIf || owner == KindFor || owner == KindWhile || owner == KindTry
	case "except", "finally":
		return owner == KindTry
	}
	return false
}

// leadingKeyword extracts the first identifier of a stripped line, resolving
// an "async" prefix to the statement it modifies.
func leadingKeyword(stripped string) string {
	word := firstWord(stripped)
	if word == "async" {
		rest := strings.TrimLeft(stripped[len(word):], " \t")
		return firstWord(rest)
	}
	return word
}

func firstWord(s string) string {
	end := 0
	for end < len(s) && isIdentByte(s[end]) {
		end++
	}
	return s[:end]
}

func isIdentByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// definitionName pulls the identifier following "def"/"class" (skipping an
// "async" modifier), stopping at the parameter list or colon.
func definitionName(stripped string) string {
	rest := stripped
	for i := 0; i < 2; i++ {
		word := firstWord(rest)
		rest = strings.TrimLeft(rest[len(word):], " \t")
		if word != "async" {
			break
		}
	}
	end := 0
	for end < len(rest) && (isIdentByte(rest[end]) || rest[end] >= utf8.RuneSelf) {
		end++
	}
	return rest[:end]
}
