package viewer

import (
	"fmt"
	"strings"

	"github.com/lexcodex/bracepy/annotate"
	"github.com/lexcodex/bracepy/overlay"
)

// BuildLines produces the annotated, optionally gutter-numbered lines the
// viewport scrolls through. It is a pure function so the layout can be
// verified without driving a terminal.
func BuildLines(source string, markers []annotate.LineMarker, styles overlay.Styles, numbered bool) []string {
	rendered := overlay.RenderSource(source, markers, styles, false, nil)
	lines := strings.Split(rendered, "\n")
	if !numbered {
		return lines
	}
	width := gutterWidth(len(lines))
	out := make([]string, len(lines))
	for i, line := range lines {
		gutter := lineNumberStyle.Render(fmt.Sprintf("%*d", width, i+1))
		out[i] = gutter + " " + line
	}
	return out
}

func gutterWidth(lineCount int) int {
	width := 1
	for n := lineCount; n >= 10; n /= 10 {
		width++
	}
	return width
}

// statusLine summarizes the buffer for the status bar.
func statusLine(path string, markerCount, lineCount int, percent float64) string {
	return fmt.Sprintf("%s  markers:%d  lines:%d  %3.0f%%", path, markerCount, lineCount, percent*100)
}
