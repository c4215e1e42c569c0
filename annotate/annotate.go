// Package annotate turns a Python structural tree into virtual block
// boundary markers: non-editable end-of-line overlays that show readers of
// indentation-delimited code where each function, class, loop, conditional,
// or exception block opens and closes.
//
// Every analysis pass is a pure function from (tree snapshot, options) to a
// marker list; the package holds no cross-call state, so concurrent calls on
// different trees are safe. A caller racing two passes for one buffer must
// apply only the result computed for the most recent buffer version.
package annotate

import "github.com/lexcodex/bracepy/pytree"

// Annotate runs the full pipeline: structure extraction, chain resolution,
// marker composition. A nil or empty tree yields an empty marker list.
func Annotate(tree *pytree.Tree, opts Options) []LineMarker {
	structures := Extract(tree, opts)
	resolved := ResolveChains(structures)
	return Compose(resolved, opts)
}
