package main

import "math"

// Change tells the caller what a pointer or key operation did to shared
// state. Selection and gesture progress stay local; only committed
// document mutations are worth a push.
type Change int

const (
	ChangeNone Change = iota
	ChangeDocument
)

// Engine is the pointer-event state machine. It owns the diagram and the
// viewport for the duration of any gesture; the sync layer must not apply
// a remote snapshot while DragInFlight reports true.
type Engine struct {
	diagram *Diagram
	view    Viewport

	tool          Tool
	selection     map[string]bool
	pendingSource string

	gesture Gesture

	// pan gesture: screen anchor and the pan offset at gesture start
	panAnchorX, panAnchorY float64
	panOriginX, panOriginY float64

	// box selection: anchor and current corner in world space
	boxAnchorX, boxAnchorY float64
	boxCurX, boxCurY       float64
	boxExtend              bool
	priorSelection         map[string]bool

	// group drag: world point of pointer-down plus a position snapshot of
	// every node selected at that moment
	dragStartX, dragStartY float64
	dragOrigin             map[string][2]float64
	dragMoved              bool

	// last known pointer position in world space (guide line, presence)
	pointerX, pointerY float64
}

func NewEngine(d *Diagram) *Engine {
	return &Engine{
		diagram:   d,
		view:      NewViewport(),
		tool:      ToolSelect,
		selection: make(map[string]bool),
	}
}

func (e *Engine) Diagram() *Diagram     { return e.diagram }
func (e *Engine) View() *Viewport       { return &e.view }
func (e *Engine) Tool() Tool            { return e.tool }
func (e *Engine) Gesture() Gesture      { return e.gesture }
func (e *Engine) PendingSource() string { return e.pendingSource }

func (e *Engine) PointerWorld() (float64, float64) {
	return e.pointerX, e.pointerY
}

func (e *Engine) Selection() map[string]bool { return e.selection }

// Selected returns the ids in selection in diagram order (nodes first,
// then connections) so callers get a stable ordering.
func (e *Engine) Selected() []string {
	var ids []string
	for _, n := range e.diagram.Nodes {
		if e.selection[n.ID] {
			ids = append(ids, n.ID)
		}
	}
	for _, c := range e.diagram.Connections {
		if e.selection[c.ID] {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// SoleSelected returns the id of the single selected element, or "".
func (e *Engine) SoleSelected() string {
	if len(e.selection) != 1 {
		return ""
	}
	for id := range e.selection {
		return id
	}
	return ""
}

// DragInFlight reports whether a group drag is mutating node positions.
// The sync layer discards remote snapshots while this is true.
func (e *Engine) DragInFlight() bool {
	return e.gesture == GestureDraggingNodes
}

// GestureActive reports any in-progress pointer gesture.
func (e *Engine) GestureActive() bool {
	return e.gesture != GestureIdle
}

// ToolAllowed filters creation tools by the current diagram mode.
// Select and connection are always available.
func (e *Engine) ToolAllowed(t Tool) bool {
	switch t {
	case ToolSelect, ToolConnection:
		return true
	case ToolEntity, ToolRelationship, ToolAttribute:
		return e.diagram.Mode == ModeConceptual
	case ToolTable:
		return e.diagram.Mode == ModeLogical || e.diagram.Mode == ModePhysical
	}
	return false
}

// SetTool switches the active tool if the mode allows it. Switching away
// from the connection tool drops any pending source.
func (e *Engine) SetTool(t Tool) {
	if !e.ToolAllowed(t) {
		return
	}
	e.tool = t
	if t != ToolConnection {
		e.pendingSource = ""
	}
}

// SetMode switches the diagram notation. Existing nodes of now-unavailable
// types are kept; only the offered creation tools change. Returns
// ChangeDocument because mode is part of the shared document.
func (e *Engine) SetMode(m DiagramMode) Change {
	if e.diagram.Mode == m {
		return ChangeNone
	}
	e.diagram.Mode = m
	if !e.ToolAllowed(e.tool) {
		e.tool = ToolSelect
	}
	return ChangeDocument
}

// PointerDown handles a primary or secondary button press at screen
// coordinates. shift is the extend-selection modifier.
func (e *Engine) PointerDown(sx, sy int, secondary, shift bool) Change {
	wx, wy := e.view.ToWorld(float64(sx), float64(sy))
	e.pointerX, e.pointerY = wx, wy

	// A secondary button always pans, regardless of tool.
	if secondary {
		e.gesture = GesturePanning
		e.panAnchorX, e.panAnchorY = float64(sx), float64(sy)
		e.panOriginX, e.panOriginY = e.view.PanX, e.view.PanY
		return ChangeNone
	}

	id, isNode, hit := e.hitTest(wx, wy)
	if !hit {
		return e.emptyPointerDown(wx, wy, shift)
	}

	if e.tool == ToolConnection {
		if !isNode {
			return ChangeNone
		}
		return e.connectionClick(id)
	}

	// Resolve selection. With the modifier, toggle membership. Without it,
	// keep the whole selection if the target is already in it (group drag),
	// otherwise collapse to the clicked element.
	if shift {
		if e.selection[id] {
			delete(e.selection, id)
		} else {
			e.selection[id] = true
		}
	} else if !e.selection[id] {
		e.selection = map[string]bool{id: true}
	}

	if isNode && e.selection[id] {
		e.beginDrag(wx, wy)
	}
	return ChangeNone
}

func (e *Engine) emptyPointerDown(wx, wy float64, shift bool) Change {
	switch e.tool {
	case ToolSelect:
		e.gesture = GestureBoxSelecting
		e.boxAnchorX, e.boxAnchorY = wx, wy
		e.boxCurX, e.boxCurY = wx, wy
		e.boxExtend = shift
		if shift {
			e.priorSelection = e.selection
		} else {
			e.priorSelection = nil
			e.selection = make(map[string]bool)
		}
		return ChangeNone
	case ToolEntity, ToolRelationship, ToolAttribute, ToolTable:
		t := map[Tool]NodeType{
			ToolEntity:       NodeEntity,
			ToolRelationship: NodeRelationship,
			ToolAttribute:    NodeAttribute,
			ToolTable:        NodeTable,
		}[e.tool]
		n := e.diagram.NewNode(t, wx, wy)
		e.selection = map[string]bool{n.ID: true}
		e.tool = ToolSelect // single-shot creation
		return ChangeDocument
	}
	// Connection tool on empty canvas does nothing.
	return ChangeNone
}

// connectionClick runs the two-click protocol. First click records the
// source; a second click on a different node creates the edge; a second
// click on the same node cancels silently.
func (e *Engine) connectionClick(id string) Change {
	if e.pendingSource == "" {
		e.pendingSource = id
		return ChangeNone
	}
	if e.pendingSource == id {
		e.pendingSource = ""
		e.tool = ToolSelect
		return ChangeNone
	}
	c := e.diagram.Connect(e.pendingSource, id)
	e.pendingSource = ""
	e.tool = ToolSelect
	e.selection = map[string]bool{c.ID: true}
	return ChangeDocument
}

func (e *Engine) beginDrag(wx, wy float64) {
	e.gesture = GestureDraggingNodes
	e.dragStartX, e.dragStartY = wx, wy
	e.dragMoved = false
	e.dragOrigin = make(map[string][2]float64)
	for _, n := range e.diagram.Nodes {
		if e.selection[n.ID] {
			e.dragOrigin[n.ID] = [2]float64{n.X, n.Y}
		}
	}
}

// PointerMove advances whichever gesture is active. Node positions mutate
// locally during a drag but are only committed on PointerUp.
func (e *Engine) PointerMove(sx, sy int) Change {
	fx, fy := float64(sx), float64(sy)
	e.pointerX, e.pointerY = e.view.ToWorld(fx, fy)

	switch e.gesture {
	case GesturePanning:
		e.view.PanX = e.panOriginX + (fx - e.panAnchorX)
		e.view.PanY = e.panOriginY + (fy - e.panAnchorY)
	case GestureBoxSelecting:
		e.boxCurX, e.boxCurY = e.pointerX, e.pointerY
	case GestureDraggingNodes:
		dx := e.pointerX - e.dragStartX
		dy := e.pointerY - e.dragStartY
		if dx != 0 || dy != 0 {
			e.dragMoved = true
		}
		for i := range e.diagram.Nodes {
			if origin, ok := e.dragOrigin[e.diagram.Nodes[i].ID]; ok {
				e.diagram.Nodes[i].X = origin[0] + dx
				e.diagram.Nodes[i].Y = origin[1] + dy
			}
		}
	}
	return ChangeNone
}

// PointerUp ends the active gesture. A finished drag commits the final
// positions as one mutation; a finished box selection resolves the
// selected set.
func (e *Engine) PointerUp(sx, sy int) Change {
	e.PointerMove(sx, sy)
	g := e.gesture
	e.gesture = GestureIdle

	switch g {
	case GestureDraggingNodes:
		e.dragOrigin = nil
		if e.dragMoved {
			e.dragMoved = false
			return ChangeDocument
		}
	case GestureBoxSelecting:
		e.finishBoxSelection()
	}
	return ChangeNone
}

func (e *Engine) finishBoxSelection() {
	minX := math.Min(e.boxAnchorX, e.boxCurX)
	maxX := math.Max(e.boxAnchorX, e.boxCurX)
	minY := math.Min(e.boxAnchorY, e.boxCurY)
	maxY := math.Max(e.boxAnchorY, e.boxCurY)

	picked := make(map[string]bool)
	if e.boxExtend {
		for id := range e.priorSelection {
			picked[id] = true
		}
	}
	for _, n := range e.diagram.Nodes {
		if n.X >= minX && n.X <= maxX && n.Y >= minY && n.Y <= maxY {
			picked[n.ID] = true
		}
	}
	e.selection = picked
	e.priorSelection = nil
}

// SelectionBox returns the current selection rectangle in world space
// while a box-select gesture is active.
func (e *Engine) SelectionBox() (minX, minY, maxX, maxY float64, active bool) {
	if e.gesture != GestureBoxSelecting {
		return 0, 0, 0, 0, false
	}
	return math.Min(e.boxAnchorX, e.boxCurX), math.Min(e.boxAnchorY, e.boxCurY),
		math.Max(e.boxAnchorX, e.boxCurX), math.Max(e.boxAnchorY, e.boxCurY), true
}

// Cancel aborts any pending connection and in-progress box selection.
// An active drag keeps its current positions (there is no rollback).
func (e *Engine) Cancel() {
	e.pendingSource = ""
	if e.gesture == GestureBoxSelecting {
		if e.priorSelection != nil {
			e.selection = e.priorSelection
			e.priorSelection = nil
		}
	}
	e.gesture = GestureIdle
	e.dragOrigin = nil
}

// Delete removes one element by id, with node deletes cascading to
// incident connections. Selection is cleared afterwards.
func (e *Engine) Delete(id string) Change {
	if !e.diagram.Remove(id) {
		return ChangeNone
	}
	e.selection = make(map[string]bool)
	if e.pendingSource == id {
		e.pendingSource = ""
	}
	return ChangeDocument
}

// DeleteSelection removes every selected element.
func (e *Engine) DeleteSelection() Change {
	ids := e.Selected()
	removed := false
	for _, id := range ids {
		// A cascade may already have taken a selected connection with it.
		if e.diagram.Remove(id) {
			removed = true
		}
	}
	e.selection = make(map[string]bool)
	if !removed {
		return ChangeNone
	}
	return ChangeDocument
}

// PruneSelection drops selected ids that a remote merge deleted, along
// with a pending connection source that no longer resolves.
func (e *Engine) PruneSelection() {
	for id := range e.selection {
		if e.diagram.NodeByID(id) == nil && e.diagram.ConnectionByID(id) == nil {
			delete(e.selection, id)
		}
	}
	if e.pendingSource != "" && e.diagram.NodeByID(e.pendingSource) == nil {
		e.pendingSource = ""
	}
}

// Property edits, used by the panel. Each returns ChangeDocument only
// when something actually changed.

func (e *Engine) SetLabel(id, label string) Change {
	n := e.diagram.NodeByID(id)
	if n == nil || n.Label == label {
		return ChangeNone
	}
	n.Label = label
	return ChangeDocument
}

func (e *Engine) ToggleWeak(id string) Change {
	n := e.diagram.NodeByID(id)
	if n == nil || (n.Type != NodeEntity && n.Type != NodeRelationship) {
		return ChangeNone
	}
	n.IsWeak = !n.IsWeak
	return ChangeDocument
}

func (e *Engine) CycleAttrType(id string) Change {
	n := e.diagram.NodeByID(id)
	if n == nil || n.Type != NodeAttribute {
		return ChangeNone
	}
	for i, t := range attrTypes {
		if t == n.AttrType {
			n.AttrType = attrTypes[(i+1)%len(attrTypes)]
			return ChangeDocument
		}
	}
	n.AttrType = AttrNormal
	return ChangeDocument
}

// CycleCardinality advances one endpoint label of a connection through
// the fixed vocabulary. Only the addressed connection changes.
func (e *Engine) CycleCardinality(id string, targetEnd bool) Change {
	c := e.diagram.ConnectionByID(id)
	if c == nil {
		return ChangeNone
	}
	field := &c.CardinalitySource
	if targetEnd {
		field = &c.CardinalityTarget
	}
	for i, v := range cardinalities {
		if v == *field {
			*field = cardinalities[(i+1)%len(cardinalities)]
			return ChangeDocument
		}
	}
	*field = cardinalities[0]
	return ChangeDocument
}

// hitTest resolves the topmost element under a world point: nodes in
// reverse z-order first, then connection segments within the hit radius.
func (e *Engine) hitTest(wx, wy float64) (id string, isNode, ok bool) {
	for i := len(e.diagram.Nodes) - 1; i >= 0; i-- {
		if nodeContains(e.diagram.Nodes[i], wx, wy) {
			return e.diagram.Nodes[i].ID, true, true
		}
	}
	for i := len(e.diagram.Connections) - 1; i >= 0; i-- {
		c := e.diagram.Connections[i]
		s, t, resolved := e.diagram.Resolve(c)
		if !resolved {
			continue // orphaned edges never match
		}
		if distToSegment(wx, wy, s.X, s.Y, t.X, t.Y) <= edgeHitRadius {
			return c.ID, false, true
		}
	}
	return "", false, false
}

// nodeContains tests world-space containment against the same geometry the
// projector draws.
func nodeContains(n Node, wx, wy float64) bool {
	dx := wx - n.X
	dy := wy - n.Y
	switch n.Type {
	case NodeEntity:
		return math.Abs(dx) <= entityWidth/2 && math.Abs(dy) <= entityHeight/2
	case NodeRelationship:
		return math.Abs(dx)/rhombusHalfW+math.Abs(dy)/rhombusHalfH <= 1
	case NodeAttribute:
		nx := dx / ellipseRX
		ny := dy / ellipseRY
		return nx*nx+ny*ny <= 1
	case NodeTable:
		h := tableHeight(n)
		top := n.Y - tableHeaderH/2
		return math.Abs(dx) <= tableWidth/2 && wy >= top && wy <= top+h
	}
	return false
}

func tableHeight(n Node) float64 {
	return tableHeaderH + float64(len(n.Columns))*tableRowH + 1
}

// distToSegment is the distance from point p to the segment a-b.
func distToSegment(px, py, ax, ay, bx, by float64) float64 {
	dx := bx - ax
	dy := by - ay
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(px-ax, py-ay)
	}
	t := ((px-ax)*dx + (py-ay)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return math.Hypot(px-(ax+t*dx), py-(ay+t*dy))
}
