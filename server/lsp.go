// Package server exposes the annotation engine to editors over the Language
// Server Protocol. Markers are served as end-of-line inlay hints; the editor
// is responsible for drawing them as non-editable decorations.
package server

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/sourcegraph/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/lexcodex/bracepy/annotate"
	"github.com/lexcodex/bracepy/overlay"
	"github.com/lexcodex/bracepy/pytree"
)

// LSPServer tracks open documents and keeps the overlay registry in sync
// with their latest annotated state.
type LSPServer struct {
	opts      annotate.Options
	parser    pytree.Parser
	detector  *pytree.LanguageDetector
	overlays  *overlay.Registry
	mu        sync.RWMutex
	documents map[protocol.DocumentURI]*Document
	logger    *log.Logger
}

// Document tracks one open file from the editor.
type Document struct {
	URI        protocol.DocumentURI
	LanguageID string
	Version    int32
	Text       string
}

// NewLSPServer builds a server instance.
func NewLSPServer(opts annotate.Options, logger *log.Logger) *LSPServer {
	if logger == nil {
		logger = log.Default()
	}
	return &LSPServer{
		opts:      opts,
		parser:    pytree.NewPythonParser(),
		detector:  pytree.NewLanguageDetector(),
		overlays:  overlay.NewRegistry(),
		documents: make(map[protocol.DocumentURI]*Document),
		logger:    logger,
	}
}

// Overlays exposes the registry, mainly for tests and the CLI status view.
func (s *LSPServer) Overlays() *overlay.Registry { return s.overlays }

// RunStdio serves LSP over stdin/stdout until the client disconnects.
func (s *LSPServer) RunStdio(ctx context.Context) error {
	rwc := &stdioReadWriteCloser{reader: os.Stdin, writer: os.Stdout}
	stream := jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{})
	conn := jsonrpc2.NewConn(ctx, stream, s.handler())
	select {
	case <-ctx.Done():
		_ = conn.Close()
		return ctx.Err()
	case <-conn.DisconnectNotify():
		return nil
	}
}

// InitializeResult partial struct.
type InitializeResult struct {
	Capabilities map[string]interface{} `json:"capabilities"`
}

// InlayHintParams partial struct; declared locally because protocol v0.12
// predates the inlay hint request.
type InlayHintParams struct {
	TextDocument protocol.TextDocumentIdentifier `json:"textDocument"`
	Range        protocol.Range                  `json:"range"`
}

// InlayHint is the wire shape of one rendered marker.
type InlayHint struct {
	Position    protocol.Position `json:"position"`
	Label       string            `json:"label"`
	PaddingLeft bool              `json:"paddingLeft,omitempty"`
}

func (s *LSPServer) handler() jsonrpc2.Handler {
	return jsonrpc2.HandlerWithError(func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
		switch req.Method {
		case "initialize":
			return s.initialize(), nil
		case "initialized":
			return nil, nil
		case "textDocument/didOpen":
			var params protocol.DidOpenTextDocumentParams
			if err := unmarshalParams(req, &params); err != nil {
				return nil, err
			}
			s.DidOpen(params.TextDocument.URI, string(params.TextDocument.LanguageID), params.TextDocument.Version, params.TextDocument.Text)
			return nil, nil
		case "textDocument/didChange":
			var params protocol.DidChangeTextDocumentParams
			if err := unmarshalParams(req, &params); err != nil {
				return nil, err
			}
			if len(params.ContentChanges) == 0 {
				return nil, nil
			}
			// full sync: the last change carries the whole buffer
			text := params.ContentChanges[len(params.ContentChanges)-1].Text
			s.DidChange(params.TextDocument.URI, params.TextDocument.Version, text)
			return nil, nil
		case "textDocument/didClose":
			var params protocol.DidCloseTextDocumentParams
			if err := unmarshalParams(req, &params); err != nil {
				return nil, err
			}
			s.DidClose(params.TextDocument.URI)
			return nil, nil
		case "textDocument/inlayHint":
			var params InlayHintParams
			if err := unmarshalParams(req, &params); err != nil {
				return nil, err
			}
			return s.InlayHints(params.TextDocument.URI, params.Range), nil
		case "shutdown":
			return nil, nil
		case "exit":
			_ = conn.Close()
			return nil, nil
		default:
			if req.Notif {
				return nil, nil
			}
			return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: "method not handled"}
		}
	})
}

func unmarshalParams(req *jsonrpc2.Request, dst interface{}) error {
	if req.Params == nil {
		return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "params required"}
	}
	return json.Unmarshal(*req.Params, dst)
}

func (s *LSPServer) initialize() *InitializeResult {
	return &InitializeResult{
		Capabilities: map[string]interface{}{
			"textDocumentSync":  1, // full
			"inlayHintProvider": true,
		},
	}
}

// DidOpen stores document state and computes its markers.
func (s *LSPServer) DidOpen(uri protocol.DocumentURI, languageID string, version int32, text string) {
	doc := &Document{URI: uri, LanguageID: languageID, Version: version, Text: text}
	s.mu.Lock()
	s.documents[uri] = doc
	s.mu.Unlock()
	s.refresh(doc)
}

// DidChange replaces document text and recomputes markers for the new
// version. Each pass re-analyzes the full buffer.
func (s *LSPServer) DidChange(uri protocol.DocumentURI, version int32, text string) {
	s.mu.Lock()
	doc, ok := s.documents[uri]
	if !ok {
		doc = &Document{URI: uri}
		s.documents[uri] = doc
	}
	doc.Version = version
	doc.Text = text
	snapshot := *doc
	s.mu.Unlock()
	s.refresh(&snapshot)
}

// DidClose forgets the document and clears its overlays.
func (s *LSPServer) DidClose(uri protocol.DocumentURI) {
	s.mu.Lock()
	delete(s.documents, uri)
	s.mu.Unlock()
	s.overlays.Clear(string(uri))
}

// refresh runs one full analysis pass and applies the result with
// full-replace semantics. Buffers without a usable tree get an empty set so
// stale markers never linger.
func (s *LSPServer) refresh(doc *Document) {
	if !s.annotatable(doc) {
		s.overlays.Replace(string(doc.URI), doc.Version, nil)
		return
	}
	tree, err := s.parser.Parse(doc.Text, uriToPath(string(doc.URI)))
	if err != nil {
		s.logger.Printf("parse failed for %s: %v", doc.URI, err)
		s.overlays.Replace(string(doc.URI), doc.Version, nil)
		return
	}
	markers := annotate.Annotate(tree, s.opts)
	if !s.overlays.Replace(string(doc.URI), doc.Version, markers) {
		s.logger.Printf("discarding stale markers for %s version %d", doc.URI, doc.Version)
	}
}

func (s *LSPServer) annotatable(doc *Document) bool {
	if doc.LanguageID == "python" {
		return true
	}
	return s.detector.IsPython(uriToPath(string(doc.URI)))
}

// InlayHints renders the applied marker set for one document as inlay hints
// anchored at end of line, restricted to the requested range.
func (s *LSPServer) InlayHints(uri protocol.DocumentURI, rng protocol.Range) []InlayHint {
	s.mu.RLock()
	doc, ok := s.documents[uri]
	var lines []string
	if ok {
		lines = strings.Split(doc.Text, "\n")
	}
	s.mu.RUnlock()
	if !ok {
		return nil
	}

	markers := s.overlays.Markers(string(uri))
	hints := make([]InlayHint, 0, len(markers))
	for _, marker := range markers {
		if marker.Line < int(rng.Start.Line) || marker.Line > int(rng.End.Line) {
			continue
		}
		if marker.Line < 0 || marker.Line >= len(lines) {
			// stale coordinate; skip this marker, keep the rest
			s.logger.Printf("skipping marker at line %d for %s (out of range)", marker.Line, uri)
			continue
		}
		label := strings.TrimPrefix(overlay.MarkerText(marker), " ")
		hints = append(hints, InlayHint{
			Position: protocol.Position{
				Line:      uint32(marker.Line),
				Character: uint32(utf8.RuneCountInString(lines[marker.Line])),
			},
			Label:       label,
			PaddingLeft: true,
		})
	}
	return hints
}

type stdioReadWriteCloser struct {
	reader io.ReadCloser
	writer io.WriteCloser
}

func (s *stdioReadWriteCloser) Read(p []byte) (int, error)  { return s.reader.Read(p) }
func (s *stdioReadWriteCloser) Write(p []byte) (int, error) { return s.writer.Write(p) }
func (s *stdioReadWriteCloser) Close() error {
	_ = s.reader.Close()
	return s.writer.Close()
}

func uriToPath(uri string) string {
	uri = strings.TrimPrefix(uri, "file://")
	uri = strings.ReplaceAll(uri, "%3A", ":")
	return filepath.FromSlash(uri)
}

// PathToURI converts a filesystem path into a file URI for clients that
// address documents by path.
func PathToURI(path string) string {
	path = filepath.Clean(path)
	if runtime.GOOS == "windows" {
		path = strings.ReplaceAll(path, "\\", "/")
		return "file:///" + strings.ReplaceAll(path, ":", "%3A")
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return "file://" + path
}
