package overlay

import (
	"log"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lexcodex/bracepy/annotate"
)

var (
	colorMarker = lipgloss.Color("241")
	colorAccent = lipgloss.Color("39")
)

// Styles maps marker style tags to terminal styles.
type Styles struct {
	tags     map[string]lipgloss.Style
	fallback lipgloss.Style
}

// DefaultStyles renders markers dimmed so they read as decoration, not code.
func DefaultStyles() Styles {
	return Styles{
		tags: map[string]lipgloss.Style{
			"bracepy.marker": lipgloss.NewStyle().Foreground(colorMarker),
			"bracepy.accent": lipgloss.NewStyle().Foreground(colorAccent).Bold(true),
		},
		fallback: lipgloss.NewStyle().Foreground(colorMarker),
	}
}

func (s Styles) style(tag string) lipgloss.Style {
	if style, ok := s.tags[tag]; ok {
		return style
	}
	return s.fallback
}

// MarkerText flattens a marker's segments into the text appended to a line:
// one leading space, segments joined by single spaces.
func MarkerText(marker annotate.LineMarker) string {
	parts := make([]string, 0, len(marker.Segments))
	for _, seg := range marker.Segments {
		parts = append(parts, seg.Text)
	}
	return " " + strings.Join(parts, " ")
}

// RenderLine appends a marker to one source line. With plain=true the marker
// text is left unstyled for non-TTY output.
func RenderLine(line string, marker annotate.LineMarker, styles Styles, plain bool) string {
	if len(marker.Segments) == 0 {
		return line
	}
	if plain {
		return line + MarkerText(marker)
	}
	var b strings.Builder
	b.WriteString(line)
	for _, seg := range marker.Segments {
		b.WriteString(" ")
		b.WriteString(styles.style(seg.Style).Render(seg.Text))
	}
	return b.String()
}

// RenderSource applies a marker set to a full buffer. Markers whose line
// falls outside the buffer (stale coordinates) are skipped and logged; the
// remaining markers still render, matching the engine's degrade-don't-fail
// error policy.
func RenderSource(src string, markers []annotate.LineMarker, styles Styles, plain bool, logger *log.Logger) string {
	lines := strings.Split(src, "\n")
	byLine := make(map[int]annotate.LineMarker, len(markers))
	for _, marker := range markers {
		if marker.Line < 0 || marker.Line >= len(lines) {
			if logger != nil {
				logger.Printf("overlay: skipping marker at line %d (buffer has %d lines)", marker.Line, len(lines))
			}
			continue
		}
		byLine[marker.Line] = marker
	}
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteString("\n")
		}
		if marker, ok := byLine[i]; ok {
			b.WriteString(RenderLine(line, marker, styles, plain))
			continue
		}
		b.WriteString(line)
	}
	return b.String()
}
