package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	cfg := loadConfig()

	roomFlag := flag.String("room", "", "shared room id (empty for single-user editing)")
	uriFlag := flag.String("uri", "", "mongodb connection uri (overrides config)")
	userFlag := flag.String("user", "", "display name used for presence")
	offlineFlag := flag.Bool("offline", false, "never connect, even when a room is given")
	flag.Parse()

	if *uriFlag != "" {
		cfg.MongoURI = *uriFlag
	}
	if *userFlag != "" {
		cfg.UserName = *userFlag
	}
	if *offlineFlag {
		cfg.Offline = true
	}

	logger := newLogger()
	defer logger.Sync()

	m := initialModel(cfg, logger)

	if *roomFlag != "" && !cfg.Offline {
		if err := m.connect(*roomFlag); err != nil {
			fmt.Fprintln(os.Stderr, "ermit:", err)
			os.Exit(1)
		}
	} else if LoadLocal(m.eng.Diagram()) {
		logger.Infow("restored autosave", "nodes", len(m.eng.Diagram().Nodes))
	}

	// All-motion mode so hover movement feeds presence, not just drags.
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}
	m.shutdown()
}

const panelWidth = 30

type model struct {
	width  int
	height int

	cfg *Config
	log *zap.SugaredLogger

	eng *Engine

	sync        *SyncEngine
	store       Store
	cancelWatch context.CancelFunc
	remote      <-chan Snapshot
	presence    <-chan []Presence
	cursors     []Presence

	uiMode  UIMode
	help    bool
	showSQL bool

	// text entry state, shared by label edits, column edits and file
	// name prompts
	editText      string
	editCursorPos int
	editNodeID    string
	editColumnID  string
	editColType   bool // editing the column type rather than its name

	colIndex int

	fileOp   FileOperation
	filename string

	confirmAction ConfirmAction

	errorMessage   string
	successMessage string
}

func initialModel(cfg *Config, logger *zap.SugaredLogger) *model {
	return &model{
		cfg: cfg,
		log: logger,
		eng: NewEngine(NewDiagram()),
	}
}

// connect opens the shared store, hydrates the room and starts the
// document and presence watchers. Called before the program runs, so a
// bad URI fails fast instead of behind the alt screen.
func (m *model) connect(roomID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := newMongoStore(ctx, m.cfg.MongoURI, m.cfg.Database, m.log)
	if err != nil {
		return err
	}

	userID := m.cfg.UserName
	if userID == "" {
		userID = uuid.NewString()[:8]
	}
	s := NewSyncEngine(store, roomID, userID, m.log)

	snap, err := s.Hydrate(ctx)
	if err != nil {
		store.Close(context.Background())
		return err
	}
	m.eng.Diagram().Apply(snap)

	watchCtx, cancelWatch := context.WithCancel(context.Background())
	remote, err := s.Watch(watchCtx)
	if err != nil {
		cancelWatch()
		store.Close(context.Background())
		return err
	}
	presence, err := s.WatchPresence(watchCtx)
	if err != nil {
		cancelWatch()
		store.Close(context.Background())
		return err
	}

	m.sync = s
	m.store = store
	m.cancelWatch = cancelWatch
	m.remote = remote
	m.presence = presence
	return nil
}

func (m *model) shutdown() {
	if m.cancelWatch != nil {
		m.cancelWatch()
	}
	if m.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		m.store.Close(ctx)
	}
}

type remoteMsg Snapshot

type presenceMsg []Presence

type syncErrMsg struct{ err error }

func waitRemote(ch <-chan Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return nil
		}
		return remoteMsg(snap)
	}
}

func waitPresence(ch <-chan []Presence) tea.Cmd {
	return func() tea.Msg {
		ps, ok := <-ch
		if !ok {
			return nil
		}
		return presenceMsg(ps)
	}
}

func waitSyncErr(ch <-chan error) tea.Cmd {
	return func() tea.Msg {
		err, ok := <-ch
		if !ok {
			return nil
		}
		return syncErrMsg{err}
	}
}

func (m *model) Init() tea.Cmd {
	if m.sync == nil {
		return nil
	}
	return tea.Batch(
		waitRemote(m.remote),
		waitPresence(m.presence),
		waitSyncErr(m.sync.Errors()),
	)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case remoteMsg:
		if Reconcile(m.eng.Diagram(), Snapshot(msg), m.eng.DragInFlight()) {
			m.eng.PruneSelection()
		}
		return m, waitRemote(m.remote)

	case presenceMsg:
		m.cursors = msg
		return m, waitPresence(m.presence)

	case syncErrMsg:
		m.errorMessage = "sync: " + msg.err.Error()
		return m, waitSyncErr(m.sync.Errors())

	case tea.MouseMsg:
		return m.updateMouse(msg)

	case tea.KeyMsg:
		switch m.uiMode {
		case UIEditLabel, UIColumnEdit, UIFileInput:
			return m.updateTextEntry(msg)
		case UIColumns:
			return m.updateColumns(msg)
		case UIConfirm:
			return m.updateConfirm(msg)
		default:
			return m.updateNormal(msg)
		}
	}
	return m, nil
}

func (m *model) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.uiMode != UINormal {
		return m, nil
	}
	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonLeft:
			m.afterChange(m.eng.PointerDown(msg.X, msg.Y, false, msg.Shift))
		case tea.MouseButtonRight:
			m.eng.PointerDown(msg.X, msg.Y, true, msg.Shift)
		case tea.MouseButtonWheelUp:
			m.eng.View().ZoomBy(zoomStep)
		case tea.MouseButtonWheelDown:
			m.eng.View().ZoomBy(-zoomStep)
		}
	case tea.MouseActionMotion:
		m.eng.PointerMove(msg.X, msg.Y)
		if m.sync != nil {
			wx, wy := m.eng.PointerWorld()
			m.sync.PublishCursor(wx, wy)
		}
	case tea.MouseActionRelease:
		m.afterChange(m.eng.PointerUp(msg.X, msg.Y))
	}
	return m, nil
}

func (m *model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	m.errorMessage = ""
	m.successMessage = ""

	if m.help {
		m.help = false
		return m, nil
	}

	switch key {
	case "ctrl+c", "q":
		m.confirmAction = ConfirmQuit
		m.uiMode = UIConfirm

	case "?":
		m.help = true

	case "esc":
		m.eng.Cancel()
		m.showSQL = false

	case "s":
		m.eng.SetTool(ToolSelect)
	case "e":
		m.pickTool(ToolEntity)
	case "r":
		m.pickTool(ToolRelationship)
	case "a":
		m.pickTool(ToolAttribute)
	case "t":
		m.pickTool(ToolTable)
	case "c":
		m.pickTool(ToolConnection)

	case "1":
		m.afterChange(m.eng.SetMode(ModeConceptual))
	case "2":
		m.afterChange(m.eng.SetMode(ModeLogical))
	case "3":
		m.afterChange(m.eng.SetMode(ModePhysical))

	case "d", "delete":
		if len(m.eng.Selected()) > 0 {
			m.confirmAction = ConfirmDeleteSelection
			m.uiMode = UIConfirm
		}

	case "n":
		if len(m.eng.Diagram().Nodes) > 0 {
			m.confirmAction = ConfirmClear
			m.uiMode = UIConfirm
		}

	case "enter":
		id := m.eng.SoleSelected()
		if n := m.eng.Diagram().NodeByID(id); n != nil {
			m.uiMode = UIEditLabel
			m.editNodeID = id
			m.editText = n.Label
			m.editCursorPos = len([]rune(n.Label))
		}

	case "w":
		m.afterChange(m.eng.ToggleWeak(m.eng.SoleSelected()))
	case "y":
		m.afterChange(m.eng.CycleAttrType(m.eng.SoleSelected()))
	case "[":
		m.afterChange(m.eng.CycleCardinality(m.eng.SoleSelected(), false))
	case "]":
		m.afterChange(m.eng.CycleCardinality(m.eng.SoleSelected(), true))

	case "C":
		id := m.eng.SoleSelected()
		if n := m.eng.Diagram().NodeByID(id); n != nil && n.Type == NodeTable {
			m.uiMode = UIColumns
			m.editNodeID = id
			m.colIndex = 0
		}

	case "E":
		m.beginFileInput(FileOpExportJSON, "diagram.json")
	case "I":
		m.beginFileInput(FileOpImportJSON, "diagram.json")
	case "P":
		m.beginFileInput(FileOpExportPNG, "diagram.png")

	case "S":
		sql := GenerateSQL(m.eng.Diagram())
		if sql == "" {
			m.errorMessage = "no tables to generate SQL from"
		} else if err := clipboard.WriteAll(sql); err != nil {
			m.errorMessage = "clipboard: " + err.Error()
		} else {
			m.successMessage = "SQL copied to clipboard"
		}

	case "v":
		m.showSQL = !m.showSQL

	case "+", "=", "-", "0":
		m.handleZoomKey(key)

	case "h", "j", "k", "l", "H", "J", "K", "L",
		"left", "right", "up", "down",
		"shift+left", "shift+right", "shift+up", "shift+down":
		m.handlePan(key, panSpeed(key))
	}
	return m, nil
}

func (m *model) pickTool(t Tool) {
	if !m.eng.ToolAllowed(t) {
		m.errorMessage = fmt.Sprintf("%s tool is not available in %s mode", t, m.eng.Diagram().Mode)
		return
	}
	m.eng.SetTool(t)
}

func (m *model) beginFileInput(op FileOperation, def string) {
	if op != FileOpImportJSON && len(m.eng.Diagram().Nodes) == 0 {
		m.errorMessage = "nothing to export"
		return
	}
	m.uiMode = UIFileInput
	m.fileOp = op
	m.editText = def
	m.editCursorPos = len([]rune(def))
}

// updateTextEntry drives the single shared line editor for label edits,
// column edits and file name prompts.
func (m *model) updateTextEntry(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	runes := []rune(m.editText)
	switch msg.Type {
	case tea.KeyEscape:
		m.exitTextEntry()
		return m, nil

	case tea.KeyEnter:
		return m.commitTextEntry()

	case tea.KeyBackspace:
		if m.editCursorPos > 0 {
			m.editText = string(runes[:m.editCursorPos-1]) + string(runes[m.editCursorPos:])
			m.editCursorPos--
		}

	case tea.KeyLeft:
		if m.editCursorPos > 0 {
			m.editCursorPos--
		}
	case tea.KeyRight:
		if m.editCursorPos < len(runes) {
			m.editCursorPos++
		}
	case tea.KeyHome, tea.KeyCtrlA:
		m.editCursorPos = 0
	case tea.KeyEnd, tea.KeyCtrlE:
		m.editCursorPos = len(runes)

	case tea.KeySpace:
		m.insertText(" ")
	case tea.KeyRunes:
		m.insertText(string(msg.Runes))
	}
	return m, nil
}

func (m *model) insertText(s string) {
	runes := []rune(m.editText)
	m.editText = string(runes[:m.editCursorPos]) + s + string(runes[m.editCursorPos:])
	m.editCursorPos += len([]rune(s))
}

func (m *model) exitTextEntry() {
	switch m.uiMode {
	case UIColumnEdit:
		m.uiMode = UIColumns
	default:
		m.uiMode = UINormal
	}
	m.editText = ""
	m.editColumnID = ""
}

func (m *model) commitTextEntry() (tea.Model, tea.Cmd) {
	switch m.uiMode {
	case UIEditLabel:
		m.afterChange(m.eng.SetLabel(m.editNodeID, m.editText))
		m.uiMode = UINormal

	case UIColumnEdit:
		n := m.eng.Diagram().NodeByID(m.editNodeID)
		if n != nil {
			for i := range n.Columns {
				if n.Columns[i].ID != m.editColumnID {
					continue
				}
				if m.editColType {
					n.Columns[i].Type = strings.ToUpper(strings.TrimSpace(m.editText))
				} else {
					n.Columns[i].Name = strings.TrimSpace(m.editText)
				}
				m.afterChange(ChangeDocument)
				break
			}
		}
		m.uiMode = UIColumns

	case UIFileInput:
		m.runFileOp(strings.TrimSpace(m.editText))
		m.uiMode = UINormal
	}
	m.editText = ""
	m.editColumnID = ""
	return m, nil
}

func (m *model) runFileOp(name string) {
	if name == "" {
		m.errorMessage = "no filename given"
		return
	}
	switch m.fileOp {
	case FileOpExportJSON:
		if filepath.Ext(name) == "" {
			name += ".json"
		}
		path := m.cfg.GetSavePath(name)
		if err := ExportJSON(m.eng.Diagram(), path); err != nil {
			m.errorMessage = "export failed: " + err.Error()
			return
		}
		m.successMessage = "exported to " + path

	case FileOpImportJSON:
		path := m.cfg.GetSavePath(name)
		if err := ImportJSON(m.eng.Diagram(), path); err != nil {
			m.errorMessage = "import failed: " + err.Error()
			return
		}
		m.eng.PruneSelection()
		m.afterChange(ChangeDocument)
		m.successMessage = "imported " + path

	case FileOpExportPNG:
		if filepath.Ext(name) == "" {
			name += ".png"
		}
		path := m.cfg.GetSavePath(name)
		if err := ExportPNG(m.eng.Diagram(), path); err != nil {
			m.errorMessage = "export failed: " + err.Error()
			return
		}
		m.successMessage = "exported to " + path
	}
}

func (m *model) updateColumns(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := m.eng.Diagram().NodeByID(m.editNodeID)
	if n == nil || n.Type != NodeTable {
		// the table was deleted under us, typically by a remote write
		m.uiMode = UINormal
		return m, nil
	}
	if m.colIndex >= len(n.Columns) {
		m.colIndex = len(n.Columns) - 1
	}
	if m.colIndex < 0 {
		m.colIndex = 0
	}

	switch msg.String() {
	case "esc", "q", "C":
		m.uiMode = UINormal

	case "j", "down":
		if m.colIndex < len(n.Columns)-1 {
			m.colIndex++
		}
	case "k", "up":
		if m.colIndex > 0 {
			m.colIndex--
		}

	case "a":
		m.eng.Diagram().AddColumn(n.ID)
		m.colIndex = len(n.Columns) - 1
		m.afterChange(ChangeDocument)

	case "d":
		if len(n.Columns) > 0 {
			if m.eng.Diagram().RemoveColumn(n.ID, n.Columns[m.colIndex].ID) {
				m.afterChange(ChangeDocument)
			}
		}

	case "p":
		if len(n.Columns) > 0 {
			n.Columns[m.colIndex].IsPk = !n.Columns[m.colIndex].IsPk
			m.afterChange(ChangeDocument)
		}
	case "f":
		if len(n.Columns) > 0 {
			n.Columns[m.colIndex].IsFk = !n.Columns[m.colIndex].IsFk
			m.afterChange(ChangeDocument)
		}

	case "enter", "n":
		if len(n.Columns) > 0 {
			m.beginColumnEdit(n.Columns[m.colIndex], false)
		}
	case "t":
		if len(n.Columns) > 0 {
			m.beginColumnEdit(n.Columns[m.colIndex], true)
		}
	}
	return m, nil
}

func (m *model) beginColumnEdit(col Column, editType bool) {
	m.uiMode = UIColumnEdit
	m.editColumnID = col.ID
	m.editColType = editType
	if editType {
		m.editText = col.Type
	} else {
		m.editText = col.Name
	}
	m.editCursorPos = len([]rune(m.editText))
}

func (m *model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		m.uiMode = UINormal
		switch m.confirmAction {
		case ConfirmQuit:
			if err := SaveLocal(m.eng.Diagram()); err != nil {
				m.log.Warnw("autosave on quit failed", "error", err)
			}
			return m, tea.Quit
		case ConfirmClear:
			m.eng.Diagram().Clear()
			m.eng.Cancel()
			m.eng.PruneSelection()
			m.afterChange(ChangeDocument)
		case ConfirmDeleteSelection:
			m.afterChange(m.eng.DeleteSelection())
		}
	case "n", "N", "esc", "q":
		m.uiMode = UINormal
	}
	return m, nil
}

// afterChange persists and publishes a committed mutation. ChangeNone is
// a no-op so call sites can pass engine results straight through.
func (m *model) afterChange(ch Change) {
	if ch != ChangeDocument {
		return
	}
	if err := SaveLocal(m.eng.Diagram()); err != nil {
		m.log.Warnw("autosave failed", "error", err)
	}
	if m.sync != nil {
		m.sync.Push(m.eng.Diagram().Snapshot())
	}
}

func (m *model) View() string {
	if m.width == 0 || m.height < 3 {
		return ""
	}
	if m.help {
		return m.helpView()
	}

	canvasH := m.height - 2
	canvasW := m.width

	var panel string
	switch {
	case m.showSQL:
		panel = m.sqlPanel(canvasH)
	case m.eng.SoleSelected() != "" || m.uiMode == UIColumns || m.uiMode == UIColumnEdit:
		panel = m.propertiesPanel(canvasH)
	}
	if panel != "" {
		canvasW = m.width - panelWidth
		if canvasW < 20 {
			canvasW = 20
		}
	}

	box := m.sceneBox()
	px, py := m.eng.PointerWorld()
	scene := BuildScene(SceneInput{
		Diagram:       m.eng.Diagram(),
		Selection:     m.eng.Selection(),
		PendingSource: m.eng.PendingSource(),
		PointerX:      px,
		PointerY:      py,
		Box:           box,
		Cursors:       m.cursors,
	})
	lines := RenderScene(scene, *m.eng.View(), canvasW, canvasH)
	canvas := strings.Join(lines, "\n")

	body := canvas
	if panel != "" {
		body = lipgloss.JoinHorizontal(lipgloss.Top, canvas, panel)
	}
	return m.headerView() + "\n" + body + "\n" + m.statusView()
}

func (m *model) sceneBox() *Rect {
	minX, minY, maxX, maxY, active := m.eng.SelectionBox()
	if !active {
		return nil
	}
	return &Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

var (
	headerStyle  = lipgloss.NewStyle().Reverse(true).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	panelStyle   = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).PaddingLeft(1)
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

func (m *model) headerView() string {
	d := m.eng.Diagram()
	parts := []string{"ermit", string(d.Mode), "tool:" + m.eng.Tool().String()}
	if m.sync != nil {
		parts = append(parts, "room:"+m.sync.RoomID())
		if len(m.cursors) > 0 {
			parts = append(parts, fmt.Sprintf("%d online", len(m.cursors)+1))
		}
	}
	parts = append(parts, fmt.Sprintf("zoom:%d%%", int(m.eng.View().Zoom*100+0.5)))
	line := " " + strings.Join(parts, " │ ")
	if w := lipgloss.Width(line); w < m.width {
		line += strings.Repeat(" ", m.width-w)
	}
	return headerStyle.Render(line)
}

func (m *model) statusView() string {
	switch {
	case m.errorMessage != "":
		return errorStyle.Render(" " + m.errorMessage)
	case m.uiMode == UIEditLabel:
		return " Label: " + m.inputView()
	case m.uiMode == UIColumnEdit && m.editColType:
		return " Type: " + m.inputView()
	case m.uiMode == UIColumnEdit:
		return " Column: " + m.inputView()
	case m.uiMode == UIFileInput:
		return " File: " + m.inputView()
	case m.uiMode == UIConfirm:
		return " " + m.confirmPrompt() + " (y/n)"
	case m.uiMode == UIColumns:
		return dimStyle.Render(" columns: j/k move · a add · d delete · p pk · f fk · enter rename · t type · esc done")
	case m.successMessage != "":
		return successStyle.Render(" " + m.successMessage)
	default:
		return dimStyle.Render(" s/e/r/a/t/c tools · 1/2/3 mode · enter rename · d delete · v sql · ? help · q quit")
	}
}

func (m *model) confirmPrompt() string {
	switch m.confirmAction {
	case ConfirmQuit:
		return "Quit?"
	case ConfirmClear:
		return "Clear the whole diagram?"
	case ConfirmDeleteSelection:
		n := len(m.eng.Selected())
		if n == 1 {
			return "Delete selected element?"
		}
		return fmt.Sprintf("Delete %d selected elements?", n)
	}
	return "Are you sure?"
}

func (m *model) inputView() string {
	runes := []rune(m.editText)
	if m.editCursorPos >= len(runes) {
		return m.editText + "█"
	}
	return string(runes[:m.editCursorPos]) + "█" + string(runes[m.editCursorPos:])
}

func (m *model) propertiesPanel(height int) string {
	d := m.eng.Diagram()
	var lines []string

	id := m.eng.SoleSelected()
	if m.uiMode == UIColumns || m.uiMode == UIColumnEdit {
		id = m.editNodeID
	}

	if n := d.NodeByID(id); n != nil {
		lines = append(lines, "── "+string(n.Type)+" ──", "")
		lines = append(lines, "Label: "+n.Label)
		switch n.Type {
		case NodeEntity, NodeRelationship:
			weak := "no"
			if n.IsWeak {
				weak = "yes"
			}
			lines = append(lines, "Weak:  "+weak+"  (w)")
		case NodeAttribute:
			lines = append(lines, "Kind:  "+string(n.AttrType)+"  (y)")
		case NodeTable:
			lines = append(lines, "", "Columns (C to edit):")
			for i, col := range n.Columns {
				marker := "  "
				if (m.uiMode == UIColumns || m.uiMode == UIColumnEdit) && i == m.colIndex {
					marker = "> "
				}
				flags := ""
				if col.IsPk {
					flags += " PK"
				}
				if col.IsFk {
					flags += " FK"
				}
				lines = append(lines, fmt.Sprintf("%s%s %s%s", marker, col.Name, col.Type, flags))
			}
		}
		lines = append(lines, "", fmt.Sprintf("at (%.0f, %.0f)", n.X, n.Y))
	} else if c := d.ConnectionByID(id); c != nil {
		lines = append(lines, "── connection ──", "")
		if s, t, ok := d.Resolve(*c); ok {
			lines = append(lines, "From: "+s.Label)
			lines = append(lines, "To:   "+t.Label)
		}
		lines = append(lines, "Cardinality: "+cardLabel(c.CardinalitySource)+" ([)")
		lines = append(lines, "             "+cardLabel(c.CardinalityTarget)+" (])")
	} else {
		return ""
	}

	return panelStyle.Width(panelWidth - 2).Height(height).Render(strings.Join(lines, "\n"))
}

func cardLabel(c string) string {
	if c == "" {
		return "(none)"
	}
	return c
}

func (m *model) sqlPanel(height int) string {
	sql := GenerateSQL(m.eng.Diagram())
	if sql == "" {
		sql = "-- no tables in the diagram"
	}
	body := "── SQL (S to copy) ──\n\n" + sql
	return panelStyle.Width(panelWidth - 2).Height(height).Render(body)
}

func (m *model) helpView() string {
	help := `
 ermit: collaborative ER diagram editor

 Tools                      Modes
   s  select                  1  conceptual
   e  entity                  2  logical
   r  relationship            3  physical
   a  attribute
   t  table (physical)      Properties
   c  connection              enter  rename
                              w      toggle weak
 Mouse                       y      cycle attribute kind
   left drag    move/select   [ ]    cycle cardinalities
   shift+drag   extend box    C      edit table columns
   right drag   pan
   wheel        zoom        Files
                              E  export JSON
 View                         I  import JSON
   h j k l / arrows  pan      P  export PNG
   + - 0             zoom     v  SQL view
                              S  copy SQL
 Other
   d    delete selection
   n    clear diagram
   esc  cancel gesture
   q    quit

 press any key to return`
	return help
}
