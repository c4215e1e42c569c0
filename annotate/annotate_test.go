package annotate

import (
	"reflect"
	"testing"
)

func TestAnnotateFunctionScenario(t *testing.T) {
	source := "def f():\n" +
		"    a = 1\n" +
		"    b = 2\n" +
		"    return a + b\n"
	markers := Annotate(parse(t, source), DefaultOptions())

	if len(markers) != 2 {
		t.Fatalf("expected exactly 2 markers, got %d", len(markers))
	}
	if markers[0].Line != 0 || markers[0].Segments[0].Text != "{ func" {
		t.Fatalf("unexpected start marker %+v", markers[0])
	}
	if markers[1].Line != 3 || markers[1].Segments[0].Text != "func }" {
		t.Fatalf("unexpected end marker %+v", markers[1])
	}
}

func TestAnnotateIfElseChainScenario(t *testing.T) {
	source := "if a:\n" +
		"    x = 1\n" +
		"else:\n" +
		"    x = 2\n"
	markers := Annotate(parse(t, source), DefaultOptions())

	if len(markers) != 3 {
		t.Fatalf("expected 3 markers, got %d", len(markers))
	}
	if markers[0].Line != 0 || markers[0].Segments[0].Text != "{ if" {
		t.Fatalf("unexpected if marker %+v", markers[0])
	}
	if markers[1].Line != 2 || markers[1].Segments[0].Text != "{ else" {
		t.Fatalf("unexpected else marker %+v", markers[1])
	}
	closing := markers[2]
	if closing.Line != 3 {
		t.Fatalf("both clauses must close at the chain end, got line %d", closing.Line)
	}
	if len(closing.Segments) != 2 || closing.Segments[0].Text != "if }" || closing.Segments[1].Text != "else }" {
		t.Fatalf("unexpected closing segments %+v", closing.Segments)
	}
}

func TestAnnotateIdempotent(t *testing.T) {
	source := "class C:\n" +
		"    def m(self):\n" +
		"        try:\n" +
		"            for i in range(3):\n" +
		"                if i:\n" +
		"                    work(i)\n" +
		"        except Exception:\n" +
		"            pass\n"
	tree := parse(t, source)
	opts := DefaultOptions()

	first := Annotate(tree, opts)
	second := Annotate(tree, opts)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated runs differ:\n%+v\n%+v", first, second)
	}
}

func TestAnnotateStartCountsMatchConstructs(t *testing.T) {
	source := "def f():\n" +
		"    return 1\n" +
		"\n" +
		"class C:\n" +
		"    def m(self):\n" +
		"        while True:\n" +
		"            break\n" +
		"\n" +
		"for i in x:\n" +
		"    if i:\n" +
		"        use(i)\n"
	markers := Annotate(parse(t, source), DefaultOptions())

	starts := make(map[string]int)
	for _, marker := range markers {
		for _, seg := range marker.Segments {
			if len(seg.Text) > 0 && seg.Text[0] == '{' {
				starts[seg.Text]++
			}
		}
	}
	want := map[string]int{"{ func": 2, "{ class": 1, "{ loop": 2, "{ if": 1}
	if !reflect.DeepEqual(starts, want) {
		t.Fatalf("start segment counts %v, want %v", starts, want)
	}
}

func TestAnnotateDisabledLoopsProduceNothing(t *testing.T) {
	source := "for i in x:\n" +
		"    while i:\n" +
		"        for j in y:\n" +
		"            use(j)\n"
	opts := DefaultOptions()
	opts.Enabled[KindLoop] = false

	if markers := Annotate(parse(t, source), opts); len(markers) != 0 {
		t.Fatalf("expected no markers with loops disabled, got %+v", markers)
	}
}

func TestAnnotateNilTree(t *testing.T) {
	if markers := Annotate(nil, DefaultOptions()); len(markers) != 0 {
		t.Fatalf("nil tree should yield no markers, got %d", len(markers))
	}
}

func TestOptionsValidate(t *testing.T) {
	opts := DefaultOptions()
	if err := opts.Validate(); err != nil {
		t.Fatalf("default options should validate: %v", err)
	}

	bad := DefaultOptions()
	bad.Icons[IconKey{KindFunction, SubTry}] = Icon{Start: "x", End: "y"}
	if err := bad.Validate(); err == nil {
		t.Fatal("expected illegal icon key to fail validation")
	}

	missing := DefaultOptions()
	delete(missing.Icons, IconKey{KindLoop, SubNone})
	if err := missing.Validate(); err == nil {
		t.Fatal("expected missing icon for enabled kind to fail validation")
	}
	missing.Enabled[KindLoop] = false
	if err := missing.Validate(); err != nil {
		t.Fatalf("disabled kinds may omit icons: %v", err)
	}
}
