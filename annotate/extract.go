package annotate

import "github.com/lexcodex/bracepy/pytree"

// Extract walks the tree and produces one BlockStructure per recognized,
// enabled construct in document order. A nil tree yields an empty slice, and
// a construct whose body block cannot be located is dropped silently: both
// cases degrade to "annotate what we can" rather than failing the pass.
func Extract(tree *pytree.Tree, opts Options) []BlockStructure {
	if tree == nil || tree.Root == nil {
		return nil
	}
	ex := &extractor{opts: opts, chains: make(map[*pytree.Node]int)}
	tree.Walk(func(node *pytree.Node) bool {
		ex.visit(node)
		return true
	})
	return ex.out
}

type extractor struct {
	opts      Options
	out       []BlockStructure
	chains    map[*pytree.Node]int
	nextChain int
}

func (ex *extractor) visit(node *pytree.Node) {
	switch node.Kind {
	case pytree.KindFunction:
		ex.emit(node, KindFunction, SubNone, node.Name)
	case pytree.KindClass:
		ex.emit(node, KindClass, SubNone, node.Name)
	case pytree.KindFor, pytree.KindWhile:
		ex.emit(node, KindLoop, SubNone, "")
	case pytree.KindIf:
		ex.emitChained(node, node, KindConditional, SubIf)
	case pytree.KindElifClause:
		ex.emitChained(node, node.Parent, KindConditional, SubElif)
	case pytree.KindElseClause:
		kind, owner := elseClassification(node)
		ex.emitChained(node, owner, kind, SubElse)
	case pytree.KindTry:
		ex.emitChained(node, node, KindException, SubTry)
	case pytree.KindExcept:
		ex.emitChained(node, node.Parent, KindException, SubExcept)
	case pytree.KindFinally:
		ex.emitChained(node, node.Parent, KindException, SubFinally)
	}
}

// elseClassification decides which kind an else clause belongs to: a try
// statement's else reads as part of the exception group, everything else
// (if ladders, loop else) as a conditional.
func elseClassification(node *pytree.Node) (Kind, *pytree.Node) {
	owner := node.Parent
	if owner != nil && owner.Kind == pytree.KindTry {
		return KindException, owner
	}
	if owner != nil && owner.Kind == pytree.KindIf {
		return KindConditional, owner
	}
	// loop else or stray clause: singleton, no chain partner
	return KindConditional, nil
}

func (ex *extractor) emit(node *pytree.Node, kind Kind, sub Subkind, name string) {
	ex.emitWithChain(node, kind, sub, name, 0)
}

// emitChained assigns the clause and its owning statement one shared chain
// identifier so chain resolution can group them exactly, without any
// line-proximity guessing.
func (ex *extractor) emitChained(node, owner *pytree.Node, kind Kind, sub Subkind) {
	if owner != nil && owner.Kind != pytree.KindIf && owner.Kind != pytree.KindTry {
		// stray clause with no real owner; leave it unchained
		owner = nil
	}
	chain := 0
	if owner != nil {
		var ok bool
		chain, ok = ex.chains[owner]
		if !ok {
			ex.nextChain++
			chain = ex.nextChain
			ex.chains[owner] = chain
		}
	}
	ex.emitWithChain(node, kind, sub, "", chain)
}

func (ex *extractor) emitWithChain(node *pytree.Node, kind Kind, sub Subkind, name string, chain int) {
	if !ex.opts.KindEnabled(kind) {
		return
	}
	block := node.Block()
	if block == nil {
		return
	}
	ex.out = append(ex.out, BlockStructure{
		Kind:         kind,
		Subkind:      sub,
		Name:         name,
		StartLine:    node.HeaderEnd.Line,
		StartColumn:  node.HeaderEnd.Column,
		EndLine:      block.End.Line,
		EndColumn:    0,
		ChainEndLine: block.End.Line,
		Chain:        chain,
	})
}
