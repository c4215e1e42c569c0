package annotate

import "testing"

func TestComposeSingleStructure(t *testing.T) {
	structures := []BlockStructure{
		{Kind: KindFunction, StartLine: 0, StartColumn: 8, EndLine: 3, ChainEndLine: 3},
	}

	markers := Compose(structures, DefaultOptions())
	if len(markers) != 2 {
		t.Fatalf("expected 2 markers, got %d", len(markers))
	}
	start := markers[0]
	if start.Line != 0 || start.Column != 8 {
		t.Fatalf("unexpected start marker position %d:%d", start.Line, start.Column)
	}
	if len(start.Segments) != 1 || start.Segments[0].Text != "{ func" {
		t.Fatalf("unexpected start segments %+v", start.Segments)
	}
	if start.Segments[0].Style != "bracepy.marker" {
		t.Fatalf("unexpected style %q", start.Segments[0].Style)
	}
	end := markers[1]
	if end.Line != 3 || end.Column != 0 {
		t.Fatalf("unexpected end marker position %d:%d", end.Line, end.Column)
	}
	if len(end.Segments) != 1 || end.Segments[0].Text != "func }" {
		t.Fatalf("unexpected end segments %+v", end.Segments)
	}
}

func TestComposeMergesSameLineSegments(t *testing.T) {
	structures := []BlockStructure{
		{Kind: KindConditional, Subkind: SubIf, StartLine: 0, StartColumn: 5, EndLine: 1, ChainEndLine: 3},
		{Kind: KindConditional, Subkind: SubElse, StartLine: 2, StartColumn: 5, EndLine: 3, ChainEndLine: 3},
	}

	markers := Compose(structures, DefaultOptions())
	if len(markers) != 3 {
		t.Fatalf("expected 3 markers, got %d", len(markers))
	}
	merged := markers[2]
	if merged.Line != 3 {
		t.Fatalf("expected merged marker on line 3, got %d", merged.Line)
	}
	if len(merged.Segments) != 2 {
		t.Fatalf("expected 2 merged segments, got %d", len(merged.Segments))
	}
	if merged.Segments[0].Text != "if }" || merged.Segments[1].Text != "else }" {
		t.Fatalf("unexpected segment order %+v", merged.Segments)
	}
}

func TestComposeEndsPrecedeStarts(t *testing.T) {
	structures := []BlockStructure{
		{Kind: KindFunction, StartLine: 0, StartColumn: 8, EndLine: 4, ChainEndLine: 4},
		{Kind: KindClass, StartLine: 4, StartColumn: 12, EndLine: 9, ChainEndLine: 9},
	}

	markers := Compose(structures, DefaultOptions())
	var shared *LineMarker
	for i := range markers {
		if markers[i].Line == 4 {
			shared = &markers[i]
		}
	}
	if shared == nil {
		t.Fatal("expected a merged marker on line 4")
	}
	if len(shared.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(shared.Segments))
	}
	if shared.Segments[0].Text != "func }" || shared.Segments[1].Text != "{ class" {
		t.Fatalf("end segment must precede start segment: %+v", shared.Segments)
	}
	if shared.Column != 0 {
		t.Fatalf("a merged marker with an end segment anchors at column 0, got %d", shared.Column)
	}
}

func TestComposeMultiWayOrdering(t *testing.T) {
	structures := []BlockStructure{
		{Kind: KindConditional, Subkind: SubIf, StartLine: 2, StartColumn: 9, EndLine: 7, ChainEndLine: 7},
		{Kind: KindLoop, StartLine: 0, StartColumn: 15, EndLine: 7, ChainEndLine: 7},
		{Kind: KindFunction, StartLine: 7, StartColumn: 12, EndLine: 12, ChainEndLine: 12},
		{Kind: KindClass, StartLine: 7, StartColumn: 4, EndLine: 14, ChainEndLine: 14},
	}

	markers := Compose(structures, DefaultOptions())
	var shared *LineMarker
	for i := range markers {
		if markers[i].Line == 7 {
			shared = &markers[i]
		}
	}
	if shared == nil {
		t.Fatal("expected a merged marker on line 7")
	}
	want := []string{"if }", "loop }", "{ class", "{ func"}
	if len(shared.Segments) != len(want) {
		t.Fatalf("expected %d segments, got %d", len(want), len(shared.Segments))
	}
	for i, text := range want {
		if shared.Segments[i].Text != text {
			t.Fatalf("segment %d: expected %q, got %q (all: %+v)", i, text, shared.Segments[i].Text, shared.Segments)
		}
	}
}

func TestComposeLineUniqueness(t *testing.T) {
	structures := []BlockStructure{
		{Kind: KindFunction, StartLine: 0, StartColumn: 8, EndLine: 5, ChainEndLine: 5},
		{Kind: KindConditional, Subkind: SubIf, StartLine: 1, StartColumn: 9, EndLine: 5, ChainEndLine: 5},
		{Kind: KindLoop, StartLine: 2, StartColumn: 15, EndLine: 5, ChainEndLine: 5},
	}

	markers := Compose(structures, DefaultOptions())
	seen := make(map[int]bool)
	for _, marker := range markers {
		if seen[marker.Line] {
			t.Fatalf("duplicate marker on line %d", marker.Line)
		}
		seen[marker.Line] = true
	}
	prev := -1
	for _, marker := range markers {
		if marker.Line <= prev {
			t.Fatalf("markers not sorted by line: %v then %v", prev, marker.Line)
		}
		prev = marker.Line
	}
}

func TestComposeCustomIcons(t *testing.T) {
	opts := DefaultOptions()
	opts.Icons[IconKey{KindFunction, SubNone}] = Icon{Start: "<<", End: ">>"}

	markers := Compose([]BlockStructure{
		{Kind: KindFunction, StartLine: 0, StartColumn: 8, EndLine: 2, ChainEndLine: 2},
	}, opts)
	if markers[0].Segments[0].Text != "<<" || markers[1].Segments[0].Text != ">>" {
		t.Fatalf("custom icons not applied: %+v", markers)
	}
}

func TestComposeEmptyInput(t *testing.T) {
	if markers := Compose(nil, DefaultOptions()); len(markers) != 0 {
		t.Fatalf("expected no markers, got %d", len(markers))
	}
}
