package annotate

// ResolveChains rewrites ChainEndLine so every clause of one if/elif/else
// ladder or try/except group closes at the same line: the maximum end line
// among the chain's members. Grouping follows the parent linkage recorded
// during extraction (the Chain identifier), so blank lines or comments
// between clauses can never split or merge a chain. Structures outside any
// chain keep ChainEndLine equal to their own end line.
//
// The input is not mutated; a new slice with the same cardinality and order
// is returned.
func ResolveChains(structures []BlockStructure) []BlockStructure {
	resolved := make([]BlockStructure, len(structures))
	copy(resolved, structures)

	maxEnd := make(map[int]int)
	for _, s := range resolved {
		if s.Chain == 0 || !chainable(s.Kind) {
			continue
		}
		if end, ok := maxEnd[s.Chain]; !ok || s.EndLine > end {
			maxEnd[s.Chain] = s.EndLine
		}
	}
	for i := range resolved {
		s := &resolved[i]
		if s.Chain == 0 || !chainable(s.Kind) {
			s.ChainEndLine = s.EndLine
			continue
		}
		s.ChainEndLine = maxEnd[s.Chain]
	}
	return resolved
}

func chainable(kind Kind) bool {
	return kind == KindConditional || kind == KindException
}
