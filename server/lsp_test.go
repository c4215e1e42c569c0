package server

import (
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"github.com/lexcodex/bracepy/annotate"
)

const funcSource = "def f():\n    x = 1\n    y = 2\n    return y\n"

func newTestServer(t *testing.T) *LSPServer {
	t.Helper()
	return NewLSPServer(annotate.DefaultOptions(), log.New(io.Discard, "", 0))
}

func fullRange() protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: 0, Character: 0},
		End:   protocol.Position{Line: 10000, Character: 0},
	}
}

func TestInitializeCapabilities(t *testing.T) {
	s := newTestServer(t)
	result := s.initialize()
	require.NotNil(t, result)
	assert.Equal(t, 1, result.Capabilities["textDocumentSync"])
	assert.Equal(t, true, result.Capabilities["inlayHintProvider"])
}

func TestDidOpenProducesMarkers(t *testing.T) {
	s := newTestServer(t)
	uri := protocol.DocumentURI("file:///tmp/sample.py")

	s.DidOpen(uri, "python", 1, funcSource)

	markers := s.Overlays().Markers(string(uri))
	require.Len(t, markers, 2)
	assert.Equal(t, 0, markers[0].Line)
	assert.Equal(t, "{ func", markers[0].Segments[0].Text)
	assert.Equal(t, 3, markers[1].Line)
	assert.Equal(t, "func }", markers[1].Segments[0].Text)
	assert.Equal(t, int32(1), s.Overlays().Version(string(uri)))
}

func TestDidOpenNonPythonGetsNoMarkers(t *testing.T) {
	s := newTestServer(t)
	uri := protocol.DocumentURI("file:///tmp/readme.md")

	s.DidOpen(uri, "markdown", 1, "# heading\n\nsome prose\n")

	assert.Empty(t, s.Overlays().Markers(string(uri)))
	assert.Empty(t, s.InlayHints(uri, fullRange()))
}

func TestDidChangeReplacesMarkers(t *testing.T) {
	s := newTestServer(t)
	uri := protocol.DocumentURI("file:///tmp/sample.py")
	s.DidOpen(uri, "python", 1, funcSource)
	require.Len(t, s.Overlays().Markers(string(uri)), 2)

	s.DidChange(uri, 2, "x = 1\ny = 2\n")

	assert.Empty(t, s.Overlays().Markers(string(uri)))
	assert.Equal(t, int32(2), s.Overlays().Version(string(uri)))
}

func TestStaleVersionDoesNotClobberNewerMarkers(t *testing.T) {
	s := newTestServer(t)
	uri := protocol.DocumentURI("file:///tmp/sample.py")
	s.DidOpen(uri, "python", 5, "x = 1\n")
	require.Empty(t, s.Overlays().Markers(string(uri)))

	s.DidChange(uri, 3, funcSource)

	assert.Empty(t, s.Overlays().Markers(string(uri)))
	assert.Equal(t, int32(5), s.Overlays().Version(string(uri)))
}

func TestDidCloseClearsOverlays(t *testing.T) {
	s := newTestServer(t)
	uri := protocol.DocumentURI("file:///tmp/sample.py")
	s.DidOpen(uri, "python", 1, funcSource)
	require.NotEmpty(t, s.Overlays().Markers(string(uri)))

	s.DidClose(uri)

	assert.Empty(t, s.Overlays().Markers(string(uri)))
	assert.Empty(t, s.InlayHints(uri, fullRange()))
}

func TestInlayHintsAnchorAtLineEnd(t *testing.T) {
	s := newTestServer(t)
	uri := protocol.DocumentURI("file:///tmp/sample.py")
	s.DidOpen(uri, "python", 1, funcSource)

	hints := s.InlayHints(uri, fullRange())
	require.Len(t, hints, 2)

	assert.Equal(t, uint32(0), hints[0].Position.Line)
	assert.Equal(t, uint32(len("def f():")), hints[0].Position.Character)
	assert.Equal(t, "{ func", hints[0].Label)
	assert.True(t, hints[0].PaddingLeft)

	assert.Equal(t, uint32(3), hints[1].Position.Line)
	assert.Equal(t, uint32(len("    return y")), hints[1].Position.Character)
	assert.Equal(t, "func }", hints[1].Label)
}

func TestInlayHintsHonorRequestedRange(t *testing.T) {
	s := newTestServer(t)
	uri := protocol.DocumentURI("file:///tmp/sample.py")
	s.DidOpen(uri, "python", 1, funcSource)

	hints := s.InlayHints(uri, protocol.Range{
		Start: protocol.Position{Line: 0, Character: 0},
		End:   protocol.Position{Line: 0, Character: 0},
	})
	require.Len(t, hints, 1)
	assert.Equal(t, "{ func", hints[0].Label)
}

func TestInlayHintsUnknownDocument(t *testing.T) {
	s := newTestServer(t)
	assert.Nil(t, s.InlayHints(protocol.DocumentURI("file:///tmp/ghost.py"), fullRange()))
}

func TestFileExtensionFallbackWhenLanguageIDMissing(t *testing.T) {
	s := newTestServer(t)
	uri := protocol.DocumentURI("file:///tmp/script.py")

	s.DidOpen(uri, "", 1, funcSource)

	assert.Len(t, s.Overlays().Markers(string(uri)), 2)
}

func TestPathToURIRoundTrip(t *testing.T) {
	uri := PathToURI("/home/user/project/app.py")
	assert.Equal(t, "file:///home/user/project/app.py", uri)
	assert.Equal(t, "/home/user/project/app.py", uriToPath(uri))
}
