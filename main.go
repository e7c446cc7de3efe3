package main

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

func main() {
	p := tea.NewProgram(
		initialModel(),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}
}

var shapeOrder = []ShapeKind{
	ShapeRectangle, ShapeDiamond, ShapeEllipse,
	ShapeParallelogram, ShapeHexagon, ShapeStorage,
}

type model struct {
	width  int
	height int

	config   *Config
	logger   *zap.Logger
	store    *Store
	viewport *Viewport
	gestures *GestureRouter
	saver    *saver

	mode          Mode
	confirmAction ConfirmAction
	pendingKind   ShapeKind
	selected      string

	editNodeID string
	editText   string
	editCursor int

	mouseDown      bool
	statusMsg      string
	statusMsgUntil time.Time
}

func initialModel() *model {
	config := loadConfig()
	logger := newLogger(config.DataDir())
	blobs := newFileBlobStore(config.DataDir())

	store := NewStore(loadDocument(blobs, logger), logger)
	sv := newSaver(blobs, logger)
	if config.Autosave {
		store.OnChange(func() {
			sv.DocumentChanged(store.Document().Clone())
		})
	}

	m := &model{
		config:      config,
		logger:      logger,
		store:       store,
		viewport:    NewViewport(80*cellWidth, 23*cellHeight),
		gestures:    NewGestureRouter(),
		saver:       sv,
		mode:        ModeNormal,
		pendingKind: ShapeKind(config.DefaultShape),
	}
	return m
}

func (m *model) Init() tea.Cmd {
	return nil
}

// Gesture intents. The router calls back into these with classified,
// coordinate-converted results.

func (m *model) PanBy(dx, dy float64) {
	m.viewport.Pan(dx, dy)
}

func (m *model) CommitMove(nodeID string, x, y float64) {
	m.store.MoveNode(nodeID, x, y)
}

func (m *model) Connect(fromID string, fromAnchor Anchor, toID string, toAnchor Anchor) {
	m.store.AddEdge(fromID, fromAnchor, toID, toAnchor)
}

func (m *model) Extend(fromID string, anchor Anchor) {
	m.store.ExtendNode(fromID, anchor, m.pendingKind)
}

func (m *model) TapNode(nodeID string) {
	m.selected = nodeID
}

func (m *model) TapCanvas() {
	m.selected = ""
}

func (m *model) refreshGestures() {
	m.gestures.Update(GestureContext{
		Nodes:    m.store.Document().Nodes,
		Viewport: m.viewport,
		Intents:  m,
	})
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.SetSize(float64(msg.Width)*cellWidth, float64(msg.Height-1)*cellHeight)
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		switch m.mode {
		case ModeEditLabel:
			return m.handleEditKey(msg)
		case ModeConfirm:
			return m.handleConfirmKey(msg)
		case ModeHelp:
			m.mode = ModeNormal
			return m, nil
		default:
			return m.handleNormalKey(msg)
		}
	}
	return m, nil
}

func (m *model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.viewport.ZoomIn()
		return m, nil
	case tea.MouseButtonWheelDown:
		m.viewport.ZoomOut()
		return m, nil
	}

	// Label editing keeps the pointer inert so a stray click cannot
	// yank the node being edited.
	if m.mode != ModeNormal {
		return m, nil
	}

	sx := float64(msg.X) * cellWidth
	sy := float64(msg.Y) * cellHeight

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		m.mouseDown = true
		m.refreshGestures()
		m.gestures.PointerDown(sx, sy)
	case tea.MouseActionMotion:
		if !m.mouseDown {
			return m, nil
		}
		m.refreshGestures()
		m.gestures.PointerMove(sx, sy)
	case tea.MouseActionRelease:
		if !m.mouseDown {
			return m, nil
		}
		m.mouseDown = false
		m.refreshGestures()
		m.gestures.PointerUp(sx, sy)
		m.dropStaleSelection()
	}
	return m, nil
}

func (m *model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		if m.config.Confirmations {
			return m.askConfirm(ConfirmQuit), nil
		}
		return m.quit()

	case "a":
		n := m.store.AddNode(m.pendingKind)
		m.selected = n.ID
		m.flash("added " + n.Label)

	case "tab":
		m.pendingKind = nextShape(m.pendingKind)

	case "1", "2", "3", "4", "5", "6":
		m.pendingKind = shapeOrder[int(msg.String()[0]-'1')]

	case "u":
		m.store.Undo()
		m.dropStaleSelection()

	case "ctrl+r", "U":
		m.store.Redo()
		m.dropStaleSelection()

	case "+", "=":
		m.viewport.ZoomIn()
	case "-", "_":
		m.viewport.ZoomOut()
	case "f":
		m.viewport.FitAll(m.store.Document().Nodes)
	case "0":
		m.viewport.ResetView()

	case "h", "left":
		m.viewport.Pan(4*cellWidth, 0)
	case "l", "right":
		m.viewport.Pan(-4*cellWidth, 0)
	case "k", "up":
		m.viewport.Pan(0, 2*cellHeight)
	case "j", "down":
		m.viewport.Pan(0, -2*cellHeight)

	case "enter":
		if n := m.store.Document().FindNode(m.selected); n != nil {
			m.mode = ModeEditLabel
			m.editNodeID = n.ID
			m.editText = n.Label
			m.editCursor = len([]rune(n.Label))
		}

	case "d", "x":
		if m.selected == "" {
			break
		}
		if m.config.Confirmations {
			return m.askConfirm(ConfirmDeleteNode), nil
		}
		m.deleteSelected()

	case "c":
		if m.config.Confirmations {
			return m.askConfirm(ConfirmClearChart), nil
		}
		m.store.ClearChart()
		m.selected = ""

	case "e":
		path := filepath.Join(m.config.DataDir(), "chart.png")
		if err := exportPNG(m.store.Document(), path); err != nil {
			m.flash("export failed: " + err.Error())
		} else {
			m.flash("exported " + path)
		}

	case "y":
		if err := copyChartToClipboard(m.store.Document()); err != nil {
			m.flash("copy failed: " + err.Error())
		} else {
			m.flash("chart copied to clipboard")
		}

	case "?":
		m.mode = ModeHelp
	}
	return m, nil
}

func (m *model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		// The whole editing session commits as one history entry.
		m.store.SetLabel(m.editNodeID, m.editText)
		m.stopEditing()
	case "esc":
		m.stopEditing()
	case "backspace":
		runes := []rune(m.editText)
		if m.editCursor > 0 {
			m.editText = string(append(runes[:m.editCursor-1:m.editCursor-1], runes[m.editCursor:]...))
			m.editCursor--
		}
	case "left":
		if m.editCursor > 0 {
			m.editCursor--
		}
	case "right":
		if m.editCursor < len([]rune(m.editText)) {
			m.editCursor++
		}
	default:
		if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
			runes := []rune(m.editText)
			insert := msg.Runes
			if msg.Type == tea.KeySpace {
				insert = []rune{' '}
			}
			out := make([]rune, 0, len(runes)+len(insert))
			out = append(out, runes[:m.editCursor]...)
			out = append(out, insert...)
			out = append(out, runes[m.editCursor:]...)
			m.editText = string(out)
			m.editCursor += len(insert)
		}
	}
	return m, nil
}

func (m *model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		m.mode = ModeNormal
		switch m.confirmAction {
		case ConfirmClearChart:
			m.store.ClearChart()
			m.selected = ""
		case ConfirmDeleteNode:
			m.deleteSelected()
		case ConfirmQuit:
			return m.quit()
		}
	case "n", "esc":
		m.mode = ModeNormal
	}
	return m, nil
}

func (m *model) askConfirm(action ConfirmAction) *model {
	m.mode = ModeConfirm
	m.confirmAction = action
	return m
}

func (m *model) deleteSelected() {
	m.store.DeleteNode(m.selected)
	m.selected = ""
}

func (m *model) stopEditing() {
	m.mode = ModeNormal
	m.editNodeID = ""
	m.editText = ""
	m.editCursor = 0
}

// dropStaleSelection clears the selection when the node it pointed at is
// gone, e.g. after an undo past its creation.
func (m *model) dropStaleSelection() {
	if m.selected != "" && !m.store.Document().HasNode(m.selected) {
		m.selected = ""
	}
}

func (m *model) quit() (tea.Model, tea.Cmd) {
	m.saver.Flush(m.store.Document().Clone())
	_ = m.logger.Sync()
	return m, tea.Quit
}

func (m *model) flash(msg string) {
	m.statusMsg = msg
	m.statusMsgUntil = time.Now().Add(4 * time.Second)
}

func nextShape(kind ShapeKind) ShapeKind {
	for i, k := range shapeOrder {
		if k == kind {
			return shapeOrder[(i+1)%len(shapeOrder)]
		}
	}
	return shapeOrder[0]
}

var (
	statusStyle = lipgloss.NewStyle().Reverse(true)
	helpStyle   = lipgloss.NewStyle().Padding(1, 2)
)

func (m *model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.mode == ModeHelp {
		return helpStyle.Render(helpText)
	}

	rows := m.height - 1
	editID, editText := "", ""
	if m.mode == ModeEditLabel {
		editID = m.editNodeID
		runes := []rune(m.editText)
		editText = string(runes[:m.editCursor]) + "│" + string(runes[m.editCursor:])
	}
	lines := renderCanvas(
		m.store.Document(), m.viewport, m.gestures.Overlay(),
		m.selected, editID, editText, m.width, rows,
	)

	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(m.statusBar())
	return b.String()
}

func (m *model) statusBar() string {
	doc := m.store.Document()

	var text string
	switch m.mode {
	case ModeEditLabel:
		text = " EDIT  enter:save  esc:cancel"
	case ModeConfirm:
		switch m.confirmAction {
		case ConfirmClearChart:
			text = " clear the whole chart? (y/n)"
		case ConfirmDeleteNode:
			text = " delete selected node and its edges? (y/n)"
		case ConfirmQuit:
			text = " quit? (y/n)"
		}
	default:
		undo, redo := " ", " "
		if m.store.CanUndo() {
			undo = "u"
		}
		if m.store.CanRedo() {
			redo = "r"
		}
		text = fmt.Sprintf(" %s  zoom %s  nodes %d  edges %d  autosave %s  [%s%s]",
			m.pendingKind,
			formatZoom(m.viewport.Scale), len(doc.Nodes), len(doc.Edges),
			onOff(m.config.Autosave), undo, redo)
		if m.statusMsg != "" && time.Now().Before(m.statusMsgUntil) {
			text += "  " + m.statusMsg
		}
	}

	if len(text) < m.width {
		text += strings.Repeat(" ", m.width-len(text))
	}
	return statusStyle.Render(text)
}

const helpText = `nodal

mouse
  drag empty canvas ........ pan
  drag a node .............. move it
  drag from an anchor dot .. draw an edge to another node
  tap an anchor twice ...... grow a connected node outward
  wheel .................... zoom

keys
  a        add node (tab / 1-6 pick the shape)
  enter    edit the selected node's label
  d or x   delete the selected node
  u / U    undo / redo
  + / -    zoom in / out
  f / 0    fit all / reset view
  h j k l  pan
  c        clear chart
  e        export PNG
  y        copy chart JSON to clipboard
  q        quit

press any key to close`
