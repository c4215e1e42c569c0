package annotate

import "sort"

// segmentClass orders segments that share a line: closing annotations read
// before opening ones.
type segmentClass int

const (
	classEnd segmentClass = iota
	classStart
)

// pendingSegment is one start or end instruction before same-line merging.
type pendingSegment struct {
	line   int
	column int // anchor column: signature end for starts, 0 for ends
	class  segmentClass
	origin int // originating structure's start column, for same-class order
	index  int // extraction order tiebreaker
	text   string
}

// Compose converts resolved structures into per-line markers. Each structure
// contributes a start segment at its signature end and an end segment at its
// chain end line. Segments landing on one line merge into a single marker:
// end segments precede start segments, same-class segments order by origin
// column, then by extraction order. The output is sorted by line and is
// deterministic for identical input.
func Compose(structures []BlockStructure, opts Options) []LineMarker {
	pending := make([]pendingSegment, 0, len(structures)*2)
	for i, s := range structures {
		icon := opts.Icon(s.Kind, s.Subkind)
		pending = append(pending,
			pendingSegment{
				line:   s.StartLine,
				column: s.StartColumn,
				class:  classStart,
				origin: s.StartColumn,
				index:  i,
				text:   icon.Start,
			},
			pendingSegment{
				line:   s.ChainEndLine,
				column: 0,
				class:  classEnd,
				origin: s.StartColumn,
				index:  i,
				text:   icon.End,
			},
		)
	}

	byLine := make(map[int][]pendingSegment)
	for _, seg := range pending {
		byLine[seg.line] = append(byLine[seg.line], seg)
	}
	lines := make([]int, 0, len(byLine))
	for line := range byLine {
		lines = append(lines, line)
	}
	sort.Ints(lines)

	markers := make([]LineMarker, 0, len(lines))
	for _, line := range lines {
		segs := byLine[line]
		sort.SliceStable(segs, func(a, b int) bool {
			if segs[a].class != segs[b].class {
				return segs[a].class < segs[b].class
			}
			if segs[a].origin != segs[b].origin {
				return segs[a].origin < segs[b].origin
			}
			return segs[a].index < segs[b].index
		})
		marker := LineMarker{Line: line, Column: markerColumn(segs)}
		for _, seg := range segs {
			marker.Segments = append(marker.Segments, Segment{Text: seg.text, Style: opts.StyleTag})
		}
		markers = append(markers, marker)
	}
	return markers
}

// markerColumn anchors merged markers: any closing segment pins the marker
// to column zero (end-of-line placement), otherwise the leftmost start
// column wins.
func markerColumn(segs []pendingSegment) int {
	column := -1
	for _, seg := range segs {
		if seg.class == classEnd {
			return 0
		}
		if column < 0 || seg.column < column {
			column = seg.column
		}
	}
	if column < 0 {
		return 0
	}
	return column
}
