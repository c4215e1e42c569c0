package annotate

import "testing"

func TestResolveChainsSharesMaxEnd(t *testing.T) {
	structures := []BlockStructure{
		{Kind: KindConditional, Subkind: SubIf, StartLine: 0, EndLine: 1, ChainEndLine: 1, Chain: 1},
		{Kind: KindConditional, Subkind: SubElif, StartLine: 2, EndLine: 3, ChainEndLine: 3, Chain: 1},
		{Kind: KindConditional, Subkind: SubElse, StartLine: 4, EndLine: 7, ChainEndLine: 7, Chain: 1},
	}

	resolved := ResolveChains(structures)
	for i, s := range resolved {
		if s.ChainEndLine != 7 {
			t.Fatalf("member %d: expected chain end 7, got %d", i, s.ChainEndLine)
		}
	}
}

func TestResolveChainsLeavesSingletons(t *testing.T) {
	structures := []BlockStructure{
		{Kind: KindFunction, StartLine: 0, EndLine: 5, ChainEndLine: 5},
		{Kind: KindConditional, Subkind: SubElse, StartLine: 6, EndLine: 8, ChainEndLine: 8},
	}

	resolved := ResolveChains(structures)
	if resolved[0].ChainEndLine != 5 {
		t.Fatalf("function chain end changed to %d", resolved[0].ChainEndLine)
	}
	if resolved[1].ChainEndLine != 8 {
		t.Fatalf("unchained else chain end changed to %d", resolved[1].ChainEndLine)
	}
}

func TestResolveChainsIgnoresUnchainableKinds(t *testing.T) {
	structures := []BlockStructure{
		{Kind: KindFunction, StartLine: 0, EndLine: 2, ChainEndLine: 2, Chain: 9},
		{Kind: KindLoop, StartLine: 3, EndLine: 9, ChainEndLine: 9, Chain: 9},
	}

	resolved := ResolveChains(structures)
	if resolved[0].ChainEndLine != 2 || resolved[1].ChainEndLine != 9 {
		t.Fatalf("unchainable kinds must keep their own end lines: %+v", resolved)
	}
}

func TestResolveChainsDistinctGroups(t *testing.T) {
	structures := []BlockStructure{
		{Kind: KindConditional, Subkind: SubIf, EndLine: 1, ChainEndLine: 1, Chain: 1},
		{Kind: KindConditional, Subkind: SubElse, EndLine: 3, ChainEndLine: 3, Chain: 1},
		{Kind: KindException, Subkind: SubTry, EndLine: 5, ChainEndLine: 5, Chain: 2},
		{Kind: KindException, Subkind: SubExcept, EndLine: 9, ChainEndLine: 9, Chain: 2},
	}

	resolved := ResolveChains(structures)
	if resolved[0].ChainEndLine != 3 || resolved[1].ChainEndLine != 3 {
		t.Fatalf("conditional chain should close at 3: %+v", resolved[:2])
	}
	if resolved[2].ChainEndLine != 9 || resolved[3].ChainEndLine != 9 {
		t.Fatalf("exception chain should close at 9: %+v", resolved[2:])
	}
}

func TestResolveChainsDoesNotMutateInput(t *testing.T) {
	structures := []BlockStructure{
		{Kind: KindConditional, Subkind: SubIf, EndLine: 1, ChainEndLine: 1, Chain: 1},
		{Kind: KindConditional, Subkind: SubElse, EndLine: 4, ChainEndLine: 4, Chain: 1},
	}

	_ = ResolveChains(structures)
	if structures[0].ChainEndLine != 1 {
		t.Fatalf("input mutated: %+v", structures[0])
	}
}
