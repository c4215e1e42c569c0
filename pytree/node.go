package pytree

// NodeKind identifies the grammatical shape of a node. The names follow the
// conventions used by mainstream Python grammars so hosts that already speak
// tree-sitter vocabulary can map kinds one to one.
type NodeKind string

const (
	KindModule     NodeKind = "module"
	KindFunction   NodeKind = "function_definition"
	KindClass      NodeKind = "class_definition"
	KindFor        NodeKind = "for_statement"
	KindWhile      NodeKind = "while_statement"
	KindIf         NodeKind = "if_statement"
	KindElifClause NodeKind = "elif_clause"
	KindElseClause NodeKind = "else_clause"
	KindTry        NodeKind = "try_statement"
	KindExcept     NodeKind = "except_clause"
	KindFinally    NodeKind = "finally_clause"
	KindBlock      NodeKind = "block"
)

// Point is a zero-based buffer coordinate.
type Point struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Node is one element of the structural tree. Start covers the introducing
// keyword, HeaderEnd the last column of the signature (after a multi-line
// signature this can sit on a later line than Start), and End the last line
// of the subtree including every clause and the body.
type Node struct {
	Kind      NodeKind
	Name      string
	Start     Point
	HeaderEnd Point
	End       Point
	Parent    *Node
	Children  []*Node
}

// Block returns the body block of a compound statement or clause, or nil
// when the source never produced one (header without an indented body).
func (n *Node) Block() *Node {
	for _, child := range n.Children {
		if child.Kind == KindBlock {
			return child
		}
	}
	return nil
}

// Clauses returns the attached clause children of a compound statement in
// document order, excluding the body block.
func (n *Node) Clauses() []*Node {
	clauses := make([]*Node, 0, len(n.Children))
	for _, child := range n.Children {
		switch child.Kind {
		case KindElifClause, KindElseClause, KindExcept, KindFinally:
			clauses = append(clauses, child)
		}
	}
	return clauses
}

// Tree wraps the module root for one parsed buffer snapshot.
type Tree struct {
	Root     *Node
	Path     string
	Language string
	// LineCount is the number of lines in the parsed snapshot, used by
	// consumers that need to bounds-check marker coordinates.
	LineCount int
}

// Walk visits every node depth-first in document order. Returning false from
// the visitor skips the node's children.
func (t *Tree) Walk(visit func(*Node) bool) {
	if t == nil || t.Root == nil {
		return
	}
	walkNode(t.Root, visit)
}

func walkNode(n *Node, visit func(*Node) bool) {
	if !visit(n) {
		return
	}
	for _, child := range n.Children {
		walkNode(child, visit)
	}
}

func (n *Node) addChild(child *Node) {
	child.Parent = n
	n.Children = append(n.Children, child)
}
