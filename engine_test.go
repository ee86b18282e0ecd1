package main

import "testing"

// screen converts integer world coordinates to the screen cell they map
// to under the default viewport.
func screen(wx, wy int) (int, int) {
	return wx, wy + headerRows
}

func click(e *Engine, wx, wy int) Change {
	sx, sy := screen(wx, wy)
	ch := e.PointerDown(sx, sy, false, false)
	if up := e.PointerUp(sx, sy); up == ChangeDocument {
		return up
	}
	return ch
}

func shiftClick(e *Engine, wx, wy int) {
	sx, sy := screen(wx, wy)
	e.PointerDown(sx, sy, false, true)
	e.PointerUp(sx, sy)
}

func drag(e *Engine, fromX, fromY, toX, toY int) Change {
	sx, sy := screen(fromX, fromY)
	e.PointerDown(sx, sy, false, false)
	tx, ty := screen(toX, toY)
	e.PointerMove(tx, ty)
	return e.PointerUp(tx, ty)
}

func TestToolModeGating(t *testing.T) {
	e := NewEngine(NewDiagram())

	for _, tool := range []Tool{ToolEntity, ToolRelationship, ToolAttribute} {
		if !e.ToolAllowed(tool) {
			t.Errorf("%v should be allowed in conceptual mode", tool)
		}
	}
	if e.ToolAllowed(ToolTable) {
		t.Error("table tool allowed in conceptual mode")
	}

	e.SetTool(ToolTable)
	if e.Tool() != ToolSelect {
		t.Errorf("disallowed SetTool changed tool to %v", e.Tool())
	}

	if ch := e.SetMode(ModePhysical); ch != ChangeDocument {
		t.Error("mode change did not report a document change")
	}
	if ch := e.SetMode(ModePhysical); ch != ChangeNone {
		t.Error("no-op mode change reported a document change")
	}
	if e.ToolAllowed(ToolEntity) {
		t.Error("entity tool allowed in physical mode")
	}
	if !e.ToolAllowed(ToolTable) || !e.ToolAllowed(ToolConnection) {
		t.Error("table and connection tools should be allowed in physical mode")
	}
}

func TestModeChangeResetsDisallowedTool(t *testing.T) {
	e := NewEngine(NewDiagram())
	e.SetTool(ToolEntity)
	e.SetMode(ModeLogical)
	if e.Tool() != ToolSelect {
		t.Errorf("tool = %v after mode change, want select", e.Tool())
	}
}

func TestSingleShotCreation(t *testing.T) {
	e := NewEngine(NewDiagram())
	e.SetTool(ToolEntity)

	if ch := click(e, 10, 10); ch != ChangeDocument {
		t.Fatal("creating a node did not report a document change")
	}
	if len(e.Diagram().Nodes) != 1 {
		t.Fatalf("node count = %d, want 1", len(e.Diagram().Nodes))
	}
	n := e.Diagram().Nodes[0]
	if n.X != 10 || n.Y != 10 {
		t.Errorf("node placed at (%v,%v), want (10,10)", n.X, n.Y)
	}
	if !e.Selection()[n.ID] {
		t.Error("new node is not selected")
	}
	if e.Tool() != ToolSelect {
		t.Errorf("tool = %v after creation, want select", e.Tool())
	}

	// a second click must not create another node
	if ch := click(e, 10, 10); ch == ChangeDocument && len(e.Diagram().Nodes) > 1 {
		t.Error("creation tool survived its single shot")
	}
}

func TestCreationAccountsForPanAndZoom(t *testing.T) {
	e := NewEngine(NewDiagram())
	e.View().PanX = 20
	e.View().PanY = 6
	e.View().Zoom = 2

	e.SetTool(ToolEntity)
	sx, sy := e.View().ToScreen(10, 10)
	e.PointerDown(int(sx), int(sy), false, false)
	e.PointerUp(int(sx), int(sy))

	n := e.Diagram().Nodes[0]
	if n.X != 10 || n.Y != 10 {
		t.Errorf("node placed at (%v,%v), want world (10,10)", n.X, n.Y)
	}
}

func TestConnectionTwoClick(t *testing.T) {
	e := NewEngine(NewDiagram())
	a := e.Diagram().NewNode(NodeEntity, 10, 10)
	b := e.Diagram().NewNode(NodeEntity, 60, 10)

	e.SetTool(ToolConnection)
	if ch := click(e, 10, 10); ch != ChangeNone {
		t.Error("first click reported a document change")
	}
	if e.PendingSource() != a.ID {
		t.Fatalf("pending source = %q, want %q", e.PendingSource(), a.ID)
	}

	if ch := click(e, 60, 10); ch != ChangeDocument {
		t.Fatal("second click did not create a connection")
	}
	if len(e.Diagram().Connections) != 1 {
		t.Fatalf("connection count = %d, want 1", len(e.Diagram().Connections))
	}
	c := e.Diagram().Connections[0]
	if c.Source != a.ID || c.Target != b.ID {
		t.Errorf("connection %q -> %q, want %q -> %q", c.Source, c.Target, a.ID, b.ID)
	}
	if c.CardinalitySource != "" || c.CardinalityTarget != "" {
		t.Error("new connection has non-empty cardinalities")
	}
	if e.Tool() != ToolSelect || e.PendingSource() != "" {
		t.Error("connection tool did not reset after completing")
	}
	if !e.Selection()[c.ID] {
		t.Error("new connection is not selected")
	}
}

func TestConnectionSameNodeCancels(t *testing.T) {
	e := NewEngine(NewDiagram())
	e.Diagram().NewNode(NodeEntity, 10, 10)

	e.SetTool(ToolConnection)
	click(e, 10, 10)
	if ch := click(e, 10, 10); ch != ChangeNone {
		t.Error("same-node second click reported a document change")
	}
	if len(e.Diagram().Connections) != 0 {
		t.Error("same-node second click created a connection")
	}
	if e.PendingSource() != "" {
		t.Error("pending source survived the cancel")
	}
}

func TestConnectionToolEmptyClick(t *testing.T) {
	e := NewEngine(NewDiagram())
	e.SetTool(ToolConnection)
	if ch := click(e, 30, 30); ch != ChangeNone {
		t.Error("empty click with connection tool mutated the document")
	}
	if e.Gesture() != GestureIdle {
		t.Error("empty click with connection tool started a gesture")
	}
}

func TestCancelDropsPendingSource(t *testing.T) {
	e := NewEngine(NewDiagram())
	e.Diagram().NewNode(NodeEntity, 10, 10)
	e.SetTool(ToolConnection)
	click(e, 10, 10)
	e.Cancel()
	if e.PendingSource() != "" {
		t.Error("Cancel kept the pending source")
	}
}

func TestGroupDragKeepsRelativeOffsets(t *testing.T) {
	e := NewEngine(NewDiagram())
	a := e.Diagram().NewNode(NodeEntity, 10, 10)
	b := e.Diagram().NewNode(NodeEntity, 60, 30)
	shiftClick(e, 10, 10)
	shiftClick(e, 60, 30)

	if ch := drag(e, 10, 10, 25, 18); ch != ChangeDocument {
		t.Fatal("finished drag did not report a document change")
	}

	na := e.Diagram().NodeByID(a.ID)
	nb := e.Diagram().NodeByID(b.ID)
	if na.X != 25 || na.Y != 18 {
		t.Errorf("dragged node at (%v,%v), want (25,18)", na.X, na.Y)
	}
	if nb.X != 75 || nb.Y != 38 {
		t.Errorf("group member at (%v,%v), want (75,38)", nb.X, nb.Y)
	}
}

func TestClickWithoutMoveCommitsNothing(t *testing.T) {
	e := NewEngine(NewDiagram())
	e.Diagram().NewNode(NodeEntity, 10, 10)
	if ch := drag(e, 10, 10, 10, 10); ch != ChangeNone {
		t.Error("press-release without motion reported a document change")
	}
}

func TestDragInFlightFlag(t *testing.T) {
	e := NewEngine(NewDiagram())
	e.Diagram().NewNode(NodeEntity, 10, 10)
	sx, sy := screen(10, 10)
	e.PointerDown(sx, sy, false, false)
	if !e.DragInFlight() {
		t.Error("DragInFlight false while dragging a node")
	}
	e.PointerUp(sx, sy)
	if e.DragInFlight() {
		t.Error("DragInFlight true after release")
	}
}

func TestClickMemberKeepsGroupSelection(t *testing.T) {
	e := NewEngine(NewDiagram())
	e.Diagram().NewNode(NodeEntity, 10, 10)
	e.Diagram().NewNode(NodeEntity, 60, 10)
	shiftClick(e, 10, 10)
	shiftClick(e, 60, 10)

	click(e, 10, 10)
	if len(e.Selection()) != 2 {
		t.Errorf("selection size = %d after clicking a member, want 2", len(e.Selection()))
	}
}

func TestClickNonMemberCollapsesSelection(t *testing.T) {
	e := NewEngine(NewDiagram())
	e.Diagram().NewNode(NodeEntity, 10, 10)
	b := e.Diagram().NewNode(NodeEntity, 60, 10)
	shiftClick(e, 10, 10)

	click(e, 60, 10)
	if len(e.Selection()) != 1 || !e.Selection()[b.ID] {
		t.Errorf("selection = %v, want only %q", e.Selected(), b.ID)
	}
}

func TestShiftClickToggles(t *testing.T) {
	e := NewEngine(NewDiagram())
	a := e.Diagram().NewNode(NodeEntity, 10, 10)
	shiftClick(e, 10, 10)
	if !e.Selection()[a.ID] {
		t.Fatal("shift-click did not select")
	}
	shiftClick(e, 10, 10)
	if e.Selection()[a.ID] {
		t.Error("second shift-click did not deselect")
	}
}

func TestBoxSelectionOrderIndependent(t *testing.T) {
	for _, anchor := range [][4]int{{0, 0, 30, 20}, {30, 20, 0, 0}} {
		e := NewEngine(NewDiagram())
		in := e.Diagram().NewNode(NodeEntity, 15, 10)
		out := e.Diagram().NewNode(NodeEntity, 80, 40)

		drag(e, anchor[0], anchor[1], anchor[2], anchor[3])

		if !e.Selection()[in.ID] {
			t.Errorf("box %v missed the contained node", anchor)
		}
		if e.Selection()[out.ID] {
			t.Errorf("box %v picked up an outside node", anchor)
		}
	}
}

func TestBoxSelectionExtends(t *testing.T) {
	e := NewEngine(NewDiagram())
	a := e.Diagram().NewNode(NodeEntity, 10, 10)
	b := e.Diagram().NewNode(NodeEntity, 80, 40)
	shiftClick(e, 10, 10)

	// shift-drag a box around b only; a must stay selected
	sx, sy := screen(70, 35)
	e.PointerDown(sx, sy, false, true)
	tx, ty := screen(95, 45)
	e.PointerMove(tx, ty)
	e.PointerUp(tx, ty)

	if !e.Selection()[a.ID] || !e.Selection()[b.ID] {
		t.Errorf("extend selection = %v, want both nodes", e.Selected())
	}
}

func TestBoxSelectionReplaces(t *testing.T) {
	e := NewEngine(NewDiagram())
	a := e.Diagram().NewNode(NodeEntity, 10, 10)
	b := e.Diagram().NewNode(NodeEntity, 80, 40)
	shiftClick(e, 10, 10)

	drag(e, 70, 35, 95, 45)

	if e.Selection()[a.ID] {
		t.Error("plain box select kept the prior selection")
	}
	if !e.Selection()[b.ID] {
		t.Error("plain box select missed the boxed node")
	}
}

func TestCancelRestoresSelectionDuringExtendBox(t *testing.T) {
	e := NewEngine(NewDiagram())
	a := e.Diagram().NewNode(NodeEntity, 10, 10)
	shiftClick(e, 10, 10)

	sx, sy := screen(50, 30)
	e.PointerDown(sx, sy, false, true)
	e.Cancel()

	if !e.Selection()[a.ID] {
		t.Error("Cancel during extend box lost the prior selection")
	}
	if e.GestureActive() {
		t.Error("gesture still active after Cancel")
	}
}

func TestSecondaryButtonPans(t *testing.T) {
	e := NewEngine(NewDiagram())
	e.PointerDown(50, 20, true, false)
	e.PointerMove(62, 25)
	e.PointerUp(62, 25)

	v := e.View()
	if v.PanX != 12 || v.PanY != 5 {
		t.Errorf("pan = (%v,%v), want (12,5)", v.PanX, v.PanY)
	}
}

func TestHitTestPrefersTopmost(t *testing.T) {
	e := NewEngine(NewDiagram())
	e.Diagram().NewNode(NodeEntity, 10, 10)
	top := e.Diagram().NewNode(NodeEntity, 12, 11)

	click(e, 11, 10)
	if !e.Selection()[top.ID] || len(e.Selection()) != 1 {
		t.Errorf("selection = %v, want the later-added node %q", e.Selected(), top.ID)
	}
}

func TestEdgeHitTest(t *testing.T) {
	e := NewEngine(NewDiagram())
	a := e.Diagram().NewNode(NodeEntity, 10, 10)
	b := e.Diagram().NewNode(NodeEntity, 50, 10)
	c := e.Diagram().Connect(a.ID, b.ID)

	// midpoint is clear of both entity boxes
	click(e, 30, 10)
	if !e.Selection()[c.ID] {
		t.Errorf("selection = %v, want connection %q", e.Selected(), c.ID)
	}
}

func TestDeleteSelectionCascades(t *testing.T) {
	e := NewEngine(NewDiagram())
	a := e.Diagram().NewNode(NodeEntity, 10, 10)
	b := e.Diagram().NewNode(NodeEntity, 60, 10)
	e.Diagram().Connect(a.ID, b.ID)
	shiftClick(e, 10, 10)

	if ch := e.DeleteSelection(); ch != ChangeDocument {
		t.Fatal("delete did not report a document change")
	}
	if e.Diagram().NodeByID(a.ID) != nil {
		t.Error("selected node survived the delete")
	}
	if len(e.Diagram().Connections) != 0 {
		t.Error("incident connection survived the delete")
	}
	if len(e.Selection()) != 0 {
		t.Error("selection not cleared after delete")
	}
	if ch := e.DeleteSelection(); ch != ChangeNone {
		t.Error("empty delete reported a document change")
	}
}

func TestDeleteByID(t *testing.T) {
	e := NewEngine(NewDiagram())
	a := e.Diagram().NewNode(NodeEntity, 10, 10)
	b := e.Diagram().NewNode(NodeEntity, 60, 10)
	e.Diagram().Connect(a.ID, b.ID)

	if ch := e.Delete(a.ID); ch != ChangeDocument {
		t.Fatal("delete did not report a document change")
	}
	if e.Diagram().NodeByID(a.ID) != nil || len(e.Diagram().Connections) != 0 {
		t.Error("delete left the node or its connection behind")
	}
	if ch := e.Delete("nope"); ch != ChangeNone {
		t.Error("deleting an unknown id reported a document change")
	}
}

func TestDeleteSelectedNodeAndEdgeTogether(t *testing.T) {
	e := NewEngine(NewDiagram())
	a := e.Diagram().NewNode(NodeEntity, 10, 10)
	b := e.Diagram().NewNode(NodeEntity, 60, 10)
	c := e.Diagram().Connect(a.ID, b.ID)
	e.Selection()[a.ID] = true
	e.Selection()[c.ID] = true

	if ch := e.DeleteSelection(); ch != ChangeDocument {
		t.Fatal("delete did not report a document change")
	}
	if len(e.Diagram().Connections) != 0 || e.Diagram().NodeByID(a.ID) != nil {
		t.Error("delete left elements behind")
	}
}

func TestPruneSelection(t *testing.T) {
	e := NewEngine(NewDiagram())
	a := e.Diagram().NewNode(NodeEntity, 10, 10)
	b := e.Diagram().NewNode(NodeEntity, 60, 10)
	e.Selection()[a.ID] = true
	e.Selection()[b.ID] = true

	// simulate a remote write that removed a
	e.Diagram().Apply(Snapshot{Nodes: []Node{*e.Diagram().NodeByID(b.ID)}, Mode: ModeConceptual})
	e.PruneSelection()

	if e.Selection()[a.ID] {
		t.Error("selection kept a remotely deleted node")
	}
	if !e.Selection()[b.ID] {
		t.Error("selection lost a surviving node")
	}
}

func TestPropertyEdits(t *testing.T) {
	e := NewEngine(NewDiagram())
	a := e.Diagram().NewNode(NodeEntity, 10, 10)
	attr := e.Diagram().NewNode(NodeAttribute, 60, 10)
	c := e.Diagram().Connect(a.ID, attr.ID)

	if ch := e.SetLabel(a.ID, "Customer"); ch != ChangeDocument {
		t.Error("label change not reported")
	}
	if ch := e.SetLabel(a.ID, "Customer"); ch != ChangeNone {
		t.Error("no-op label change reported a document change")
	}

	if ch := e.ToggleWeak(a.ID); ch != ChangeDocument || !e.Diagram().NodeByID(a.ID).IsWeak {
		t.Error("weak toggle failed")
	}
	if ch := e.ToggleWeak(attr.ID); ch != ChangeNone {
		t.Error("weak toggled on an attribute")
	}

	e.CycleAttrType(attr.ID)
	if got := e.Diagram().NodeByID(attr.ID).AttrType; got != AttrKey {
		t.Errorf("attribute kind = %q after one cycle, want %q", got, AttrKey)
	}

	for i := 0; i < len(cardinalities); i++ {
		e.CycleCardinality(c.ID, false)
	}
	if got := e.Diagram().ConnectionByID(c.ID).CardinalitySource; got != "" {
		t.Errorf("cardinality = %q after a full cycle, want empty", got)
	}
	e.CycleCardinality(c.ID, true)
	if got := e.Diagram().ConnectionByID(c.ID).CardinalityTarget; got != "1" {
		t.Errorf("target cardinality = %q, want %q", got, "1")
	}
	if got := e.Diagram().ConnectionByID(c.ID).CardinalitySource; got != "" {
		t.Errorf("cycling the target end moved the source end to %q", got)
	}
}

// The end-to-end flow: build a tiny schema with pointer events only, the
// way a user would.
func TestPointerWorkflow(t *testing.T) {
	e := NewEngine(NewDiagram())

	e.SetTool(ToolEntity)
	click(e, 20, 10)
	e.SetTool(ToolEntity)
	click(e, 70, 10)
	e.SetTool(ToolRelationship)
	click(e, 45, 25)

	if len(e.Diagram().Nodes) != 3 {
		t.Fatalf("node count = %d, want 3", len(e.Diagram().Nodes))
	}

	e.SetTool(ToolConnection)
	click(e, 20, 10)
	click(e, 45, 25)
	e.SetTool(ToolConnection)
	click(e, 70, 10)
	click(e, 45, 25)

	if len(e.Diagram().Connections) != 2 {
		t.Fatalf("connection count = %d, want 2", len(e.Diagram().Connections))
	}

	// drag the relationship; connections must follow because endpoints
	// are resolved by id
	drag(e, 45, 25, 45, 40)
	for _, c := range e.Diagram().Connections {
		if _, _, ok := e.Diagram().Resolve(c); !ok {
			t.Error("connection orphaned by a drag")
		}
	}
}
