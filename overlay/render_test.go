package overlay

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexcodex/bracepy/annotate"
)

func TestMarkerText(t *testing.T) {
	m := annotate.LineMarker{Segments: []annotate.Segment{
		{Text: "if }"},
		{Text: "else }"},
	}}
	assert.Equal(t, " if } else }", MarkerText(m))
}

func TestRenderLinePlain(t *testing.T) {
	m := marker(0, "{ func")
	assert.Equal(t, "def f(): { func", RenderLine("def f():", m, DefaultStyles(), true))
}

func TestRenderLineNoSegments(t *testing.T) {
	assert.Equal(t, "x = 1", RenderLine("x = 1", annotate.LineMarker{}, DefaultStyles(), true))
}

func TestRenderSourcePlain(t *testing.T) {
	src := "def f():\n    return 1\n"
	markers := []annotate.LineMarker{marker(0, "{ func"), marker(1, "func }")}

	out := RenderSource(src, markers, DefaultStyles(), true, nil)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "def f(): { func", lines[0])
	assert.Equal(t, "    return 1 func }", lines[1])
	assert.Equal(t, "", lines[2])
}

func TestRenderSourceSkipsStaleMarkers(t *testing.T) {
	src := "x = 1"
	markers := []annotate.LineMarker{marker(0, "{ func"), marker(12, "func }")}
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)

	out := RenderSource(src, markers, DefaultStyles(), true, logger)
	assert.Equal(t, "x = 1 { func", out)
	assert.Contains(t, buf.String(), "skipping marker at line 12")
}

func TestRenderSourceStyledContainsMarkerText(t *testing.T) {
	src := "def f():\n    return 1\n"
	markers := []annotate.LineMarker{marker(0, "{ func")}

	out := RenderSource(src, markers, DefaultStyles(), false, nil)
	assert.Contains(t, out, "{ func")
	assert.Contains(t, out, "def f():")
}
