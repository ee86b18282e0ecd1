package main

// DiagramMode selects which notation the diagram is edited in. It gates
// which creation tools are offered; it never deletes existing nodes.
type DiagramMode string

const (
	ModeConceptual DiagramMode = "conceptual"
	ModeLogical    DiagramMode = "logical"
	ModePhysical   DiagramMode = "physical"
)

type NodeType string

const (
	NodeEntity       NodeType = "entity"
	NodeRelationship NodeType = "relationship"
	NodeAttribute    NodeType = "attribute"
	NodeTable        NodeType = "table"
)

type AttrType string

const (
	AttrNormal      AttrType = "normal"
	AttrKey         AttrType = "key"
	AttrDerived     AttrType = "derived"
	AttrMultivalued AttrType = "multivalued"
)

type Tool int

const (
	ToolSelect Tool = iota
	ToolEntity
	ToolRelationship
	ToolAttribute
	ToolTable
	ToolConnection
)

func (t Tool) String() string {
	switch t {
	case ToolSelect:
		return "select"
	case ToolEntity:
		return "entity"
	case ToolRelationship:
		return "relationship"
	case ToolAttribute:
		return "attribute"
	case ToolTable:
		return "table"
	case ToolConnection:
		return "connection"
	}
	return "unknown"
}

// Gesture is the single active pointer gesture. Exactly one variant is
// active at a time; the pending connection source is tracked separately
// because it survives across clicks.
type Gesture int

const (
	GestureIdle Gesture = iota
	GesturePanning
	GestureBoxSelecting
	GestureDraggingNodes
)

// cardinalities is the full vocabulary, in cycle order. The empty string
// means "no label".
var cardinalities = []string{"", "1", "n", "(0,1)", "(1,1)", "(0,n)", "(1,n)"}

// attrTypes in cycle order for the properties panel.
var attrTypes = []AttrType{AttrNormal, AttrKey, AttrDerived, AttrMultivalued}

// UIMode is the keyboard-level editor mode, as opposed to the pointer
// gesture. Mirrors the usual modal-editor split.
type UIMode int

const (
	UINormal UIMode = iota
	UIEditLabel
	UIColumns
	UIColumnEdit
	UIFileInput
	UIConfirm
)

type FileOperation int

const (
	FileOpExportJSON FileOperation = iota
	FileOpImportJSON
	FileOpExportPNG
)

type ConfirmAction int

const (
	ConfirmQuit ConfirmAction = iota
	ConfirmClear
	ConfirmDeleteSelection
)

// Shape geometry in world units (one world unit = one terminal cell at
// zoom 1). Nodes are positioned by their center.
const (
	entityWidth   = 16.0
	entityHeight  = 5.0
	rhombusHalfW  = 9.0
	rhombusHalfH  = 4.0
	ellipseRX     = 8.0
	ellipseRY     = 2.0
	tableWidth    = 22.0
	tableHeaderH  = 3.0
	tableRowH     = 1.0
	edgeHitRadius = 1.5
)

// Zoom bounds and steps.
const (
	zoomMin  = 0.1
	zoomMax  = 3.0
	zoomStep = 0.1
)

// headerRows is the fixed chrome above the canvas; pointer Y coordinates
// include it, world coordinates do not.
const headerRows = 1

const numColors = 8 // presence color palette size
