// Package viewer renders an annotated source buffer in a scrollable terminal
// view so markers can be inspected without an editor attached.
package viewer

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lexcodex/bracepy/annotate"
	"github.com/lexcodex/bracepy/overlay"
)

// Document is one annotated buffer handed to the viewer.
type Document struct {
	Path    string
	Source  string
	Markers []annotate.LineMarker
}

// Run opens the viewer and blocks until the user quits.
func Run(ctx context.Context, doc Document) error {
	program := tea.NewProgram(
		NewModel(doc),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := program.Run()
	return err
}

// Model implements the Bubble Tea Model interface around a single viewport.
type Model struct {
	doc      Document
	styles   overlay.Styles
	viewport viewport.Model

	numbered bool
	width    int
	height   int
	ready    bool
}

// NewModel builds the viewer model with default styling.
func NewModel(doc Document) *Model {
	return &Model{doc: doc, styles: overlay.DefaultStyles(), numbered: true}
}

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "n":
			m.numbered = !m.numbered
			m.setContent()
			return m, nil
		case "g":
			m.viewport.GotoTop()
			return m, nil
		case "G":
			m.viewport.GotoBottom()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) View() string {
	if !m.ready {
		return "loading..."
	}
	header := headerStyle.Render(fmt.Sprintf("bracepy %s", m.doc.Path))
	status := statusStyle.Render(statusLine(
		m.doc.Path,
		len(m.doc.Markers),
		strings.Count(m.doc.Source, "\n")+1,
		m.viewport.ScrollPercent(),
	))
	help := helpStyle.Render("j/k scroll  g/G top/bottom  n line numbers  q quit")
	return strings.Join([]string{header, m.viewport.View(), status, help}, "\n")
}

// layout sizes the viewport to the window minus header, status, and help rows.
func (m *Model) layout() {
	contentHeight := m.height - 3
	if contentHeight < 1 {
		contentHeight = 1
	}
	if !m.ready {
		m.viewport = viewport.New(m.width, contentHeight)
		m.ready = true
	} else {
		m.viewport.Width = m.width
		m.viewport.Height = contentHeight
	}
	m.setContent()
}

func (m *Model) setContent() {
	lines := BuildLines(m.doc.Source, m.doc.Markers, m.styles, m.numbered)
	m.viewport.SetContent(strings.Join(lines, "\n"))
}
