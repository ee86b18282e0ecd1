package main

import (
	"github.com/google/uuid"
)

// Column belongs to a table node. Order is meaningful and preserved.
type Column struct {
	ID   string `json:"id" bson:"id"`
	Name string `json:"name" bson:"name"`
	Type string `json:"type" bson:"type"`
	IsPk bool   `json:"isPk" bson:"isPk"`
	IsFk bool   `json:"isFk" bson:"isFk"`
}

// Node is a diagram element. X/Y are world-space center coordinates.
// The per-type fields (IsWeak, AttrType, Columns) are only meaningful for
// the matching Type and stay zero otherwise.
type Node struct {
	ID       string   `json:"id" bson:"id"`
	Type     NodeType `json:"type" bson:"type"`
	X        float64  `json:"x" bson:"x"`
	Y        float64  `json:"y" bson:"y"`
	Label    string   `json:"label" bson:"label"`
	IsWeak   bool     `json:"isWeak,omitempty" bson:"isWeak,omitempty"`
	AttrType AttrType `json:"attrType,omitempty" bson:"attrType,omitempty"`
	Columns  []Column `json:"columns,omitempty" bson:"columns,omitempty"`
}

// Connection is an edge between two nodes, referenced by id. A connection
// whose source or target no longer resolves is orphaned: it is skipped by
// rendering and hit-testing, and the deleting mutation is expected to have
// removed it anyway.
type Connection struct {
	ID                string `json:"id" bson:"id"`
	Source            string `json:"source" bson:"source"`
	Target            string `json:"target" bson:"target"`
	CardinalitySource string `json:"cardinalitySource" bson:"cardinalitySource"`
	CardinalityTarget string `json:"cardinalityTarget" bson:"cardinalityTarget"`
}

// Snapshot is the wire/persistence form of a diagram: the whole document,
// consumed and produced wholesale, never patched per field.
type Snapshot struct {
	Nodes       []Node       `json:"nodes" bson:"nodes"`
	Connections []Connection `json:"connections" bson:"connections"`
	Mode        DiagramMode  `json:"mode" bson:"mode"`
}

// Diagram is the in-memory aggregate. Node slice order is insertion order,
// which doubles as z-order for rendering.
type Diagram struct {
	Nodes       []Node
	Connections []Connection
	Mode        DiagramMode
}

func NewDiagram() *Diagram {
	return &Diagram{Mode: ModeConceptual}
}

func newID() string {
	return uuid.NewString()
}

// NodeByID returns a pointer into the node slice, or nil. The pointer is
// invalidated by the next Add/Remove.
func (d *Diagram) NodeByID(id string) *Node {
	for i := range d.Nodes {
		if d.Nodes[i].ID == id {
			return &d.Nodes[i]
		}
	}
	return nil
}

func (d *Diagram) ConnectionByID(id string) *Connection {
	for i := range d.Connections {
		if d.Connections[i].ID == id {
			return &d.Connections[i]
		}
	}
	return nil
}

// NewNode builds a node of the given type at a world position with the
// type-specific defaults and appends it to the diagram.
func (d *Diagram) NewNode(t NodeType, x, y float64) *Node {
	n := Node{ID: newID(), Type: t, X: x, Y: y}
	switch t {
	case NodeEntity:
		n.Label = "Entity"
	case NodeRelationship:
		n.Label = "Rel"
	case NodeAttribute:
		n.Label = "Attribute"
		n.AttrType = AttrNormal
	case NodeTable:
		n.Label = "Table"
		n.Columns = []Column{{ID: newID(), Name: "id", Type: "INT", IsPk: true}}
	}
	d.Nodes = append(d.Nodes, n)
	return &d.Nodes[len(d.Nodes)-1]
}

// Connect creates a connection between two existing nodes with empty
// cardinalities and returns it. Source and target must differ; the caller
// enforces that (the two-click protocol cancels on a same-node click).
func (d *Diagram) Connect(source, target string) *Connection {
	c := Connection{ID: newID(), Source: source, Target: target}
	d.Connections = append(d.Connections, c)
	return &d.Connections[len(d.Connections)-1]
}

// Remove deletes the element with the given id. Deleting a node cascades
// to every connection referencing it, so no orphan survives the mutation.
// Returns false if the id matched nothing.
func (d *Diagram) Remove(id string) bool {
	for i := range d.Nodes {
		if d.Nodes[i].ID == id {
			d.Nodes = append(d.Nodes[:i], d.Nodes[i+1:]...)
			kept := d.Connections[:0]
			for _, c := range d.Connections {
				if c.Source != id && c.Target != id {
					kept = append(kept, c)
				}
			}
			d.Connections = kept
			return true
		}
	}
	for i := range d.Connections {
		if d.Connections[i].ID == id {
			d.Connections = append(d.Connections[:i], d.Connections[i+1:]...)
			return true
		}
	}
	return false
}

// Resolve returns both endpoints of a connection, or ok=false when either
// reference dangles.
func (d *Diagram) Resolve(c Connection) (source, target *Node, ok bool) {
	source = d.NodeByID(c.Source)
	target = d.NodeByID(c.Target)
	return source, target, source != nil && target != nil
}

func (d *Diagram) AddColumn(nodeID string) *Column {
	n := d.NodeByID(nodeID)
	if n == nil || n.Type != NodeTable {
		return nil
	}
	n.Columns = append(n.Columns, Column{ID: newID(), Name: "column", Type: "VARCHAR"})
	return &n.Columns[len(n.Columns)-1]
}

func (d *Diagram) RemoveColumn(nodeID, colID string) bool {
	n := d.NodeByID(nodeID)
	if n == nil {
		return false
	}
	for i := range n.Columns {
		if n.Columns[i].ID == colID {
			n.Columns = append(n.Columns[:i], n.Columns[i+1:]...)
			return true
		}
	}
	return false
}

// Clear drops every node and connection but keeps the mode.
func (d *Diagram) Clear() {
	d.Nodes = nil
	d.Connections = nil
}

// Snapshot deep-copies the diagram into its wire form.
func (d *Diagram) Snapshot() Snapshot {
	s := Snapshot{
		Nodes:       make([]Node, len(d.Nodes)),
		Connections: make([]Connection, len(d.Connections)),
		Mode:        d.Mode,
	}
	for i, n := range d.Nodes {
		s.Nodes[i] = n
		if n.Columns != nil {
			s.Nodes[i].Columns = append([]Column(nil), n.Columns...)
		}
	}
	copy(s.Connections, d.Connections)
	return s
}

// Apply replaces the diagram contents with a snapshot. The snapshot is
// deep-copied so later remote reuse cannot alias local state.
func (d *Diagram) Apply(s Snapshot) {
	d.Nodes = make([]Node, len(s.Nodes))
	for i, n := range s.Nodes {
		d.Nodes[i] = n
		if n.Columns != nil {
			d.Nodes[i].Columns = append([]Column(nil), n.Columns...)
		}
	}
	d.Connections = append([]Connection(nil), s.Connections...)
	if s.Mode != "" {
		d.Mode = s.Mode
	}
}

// EqualSnapshot reports whether the diagram and snapshot are equal by
// value. Used as the cheap guard against re-applying echoed self-writes.
func (d *Diagram) EqualSnapshot(s Snapshot) bool {
	if d.Mode != s.Mode {
		return false
	}
	if len(d.Nodes) != len(s.Nodes) || len(d.Connections) != len(s.Connections) {
		return false
	}
	for i := range d.Nodes {
		if !nodesEqual(d.Nodes[i], s.Nodes[i]) {
			return false
		}
	}
	for i := range d.Connections {
		if d.Connections[i] != s.Connections[i] {
			return false
		}
	}
	return true
}

func nodesEqual(a, b Node) bool {
	if a.ID != b.ID || a.Type != b.Type || a.X != b.X || a.Y != b.Y ||
		a.Label != b.Label || a.IsWeak != b.IsWeak || a.AttrType != b.AttrType {
		return false
	}
	if len(a.Columns) != len(b.Columns) {
		return false
	}
	for i := range a.Columns {
		if a.Columns[i] != b.Columns[i] {
			return false
		}
	}
	return true
}
