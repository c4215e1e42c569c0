package annotate

// Kind is the closed set of annotatable construct kinds.
type Kind int

const (
	KindFunction Kind = iota
	KindClass
	KindLoop
	KindConditional
	KindException
)

var kindNames = [...]string{"function", "class", "loop", "conditional", "exception"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// AllKinds lists every construct kind in declaration order.
func AllKinds() []Kind {
	return []Kind{KindFunction, KindClass, KindLoop, KindConditional, KindException}
}

// Subkind distinguishes the clause flavor of conditional and exception
// structures. Other kinds carry SubNone.
type Subkind int

const (
	SubNone Subkind = iota
	SubIf
	SubElif
	SubElse
	SubTry
	SubExcept
	SubFinally
)

var subkindNames = [...]string{"", "if", "elif", "else", "try", "except", "finally"}

func (s Subkind) String() string {
	if s < 0 || int(s) >= len(subkindNames) {
		return ""
	}
	return subkindNames[s]
}

// BlockStructure is one recognized construct with resolved coordinates. All
// coordinates are zero-based. Chain is a non-zero group identifier shared by
// every clause of one if/try statement; zero means the structure is not part
// of any chain. After ResolveChains runs the value is final: structures are
// produced fresh on every analysis pass and never mutated afterwards.
type BlockStructure struct {
	Kind         Kind
	Subkind      Subkind
	Name         string
	StartLine    int
	StartColumn  int
	EndLine      int
	EndColumn    int
	ChainEndLine int
	Chain        int
}

// Segment is one styled run of text inside a line marker.
type Segment struct {
	Text  string
	Style string
}

// LineMarker is one overlay instruction bound to a buffer line. At most one
// marker exists per line in a compositor result; overlapping annotations are
// merged into a single ordered segment sequence with closing segments first.
type LineMarker struct {
	Line     int
	Column   int
	Segments []Segment
}
