package main

import (
	"fmt"
	"math"
	"strings"
)

// The projector is a pure function from diagram + interaction state to a
// Scene of drawable primitives in world space. It holds no state, so the
// same inputs always produce the same scene; the terminal renderer and
// the PNG exporter both consume it.

type Rect struct {
	X, Y, W, H float64 // top-left corner, world units
}

type Segment struct {
	X1, Y1, X2, Y2 float64
}

type ShapeKind int

const (
	ShapeRect ShapeKind = iota
	ShapeRhombus
	ShapeEllipse
	ShapeTable
)

type Shape struct {
	ID       string
	Kind     ShapeKind
	Bounds   Rect
	Label    string
	Selected bool
	Double   bool // weak entity/relationship, multivalued attribute
	Dashed   bool // derived attribute
	KeyAttr  bool
	Columns  []Column // table shapes only
}

type Edge struct {
	ID           string
	Seg          Segment
	Selected     bool
	SourceLabel  string
	TargetLabel  string
	SourceAnchor [2]float64 // 25% along source→target
	TargetAnchor [2]float64 // 75% along source→target
}

type CursorMark struct {
	UserID string
	X, Y   float64
	Color  string
}

type Scene struct {
	Shapes       []Shape
	Edges        []Edge
	Guide        *Segment // dashed, while a connection is pending
	SelectionBox *Rect
	Cursors      []CursorMark
}

type SceneInput struct {
	Diagram       *Diagram
	Selection     map[string]bool
	PendingSource string
	PointerX      float64
	PointerY      float64
	Box           *Rect
	Cursors       []Presence
}

func nodeBounds(n Node) Rect {
	switch n.Type {
	case NodeEntity:
		return Rect{n.X - entityWidth/2, n.Y - entityHeight/2, entityWidth, entityHeight}
	case NodeRelationship:
		return Rect{n.X - rhombusHalfW, n.Y - rhombusHalfH, rhombusHalfW * 2, rhombusHalfH * 2}
	case NodeAttribute:
		return Rect{n.X - ellipseRX, n.Y - ellipseRY, ellipseRX * 2, ellipseRY * 2}
	case NodeTable:
		return Rect{n.X - tableWidth/2, n.Y - tableHeaderH/2, tableWidth, tableHeight(n)}
	}
	return Rect{n.X, n.Y, 0, 0}
}

func BuildScene(in SceneInput) Scene {
	d := in.Diagram
	var scene Scene

	// Edges first so nodes draw over them. Connections whose endpoints
	// no longer resolve are skipped.
	for _, c := range d.Connections {
		s, t, ok := d.Resolve(c)
		if !ok {
			continue
		}
		e := Edge{
			ID:          c.ID,
			Seg:         Segment{s.X, s.Y, t.X, t.Y},
			Selected:    in.Selection[c.ID],
			SourceLabel: c.CardinalitySource,
			TargetLabel: c.CardinalityTarget,
		}
		e.SourceAnchor = [2]float64{s.X + (t.X-s.X)*0.25, s.Y + (t.Y-s.Y)*0.25}
		e.TargetAnchor = [2]float64{s.X + (t.X-s.X)*0.75, s.Y + (t.Y-s.Y)*0.75}
		scene.Edges = append(scene.Edges, e)
	}

	for _, n := range d.Nodes {
		sh := Shape{
			ID:       n.ID,
			Bounds:   nodeBounds(n),
			Label:    n.Label,
			Selected: in.Selection[n.ID],
		}
		switch n.Type {
		case NodeEntity:
			sh.Kind = ShapeRect
			sh.Double = n.IsWeak
		case NodeRelationship:
			sh.Kind = ShapeRhombus
			sh.Double = n.IsWeak
		case NodeAttribute:
			sh.Kind = ShapeEllipse
			sh.Double = n.AttrType == AttrMultivalued
			sh.Dashed = n.AttrType == AttrDerived
			sh.KeyAttr = n.AttrType == AttrKey
		case NodeTable:
			sh.Kind = ShapeTable
			sh.Columns = n.Columns
		}
		scene.Shapes = append(scene.Shapes, sh)
	}

	if in.PendingSource != "" {
		if src := d.NodeByID(in.PendingSource); src != nil {
			scene.Guide = &Segment{src.X, src.Y, in.PointerX, in.PointerY}
		}
	}
	scene.SelectionBox = in.Box

	for _, p := range in.Cursors {
		scene.Cursors = append(scene.Cursors, CursorMark{
			UserID: p.UserID, X: p.X, Y: p.Y, Color: p.Color,
		})
	}
	return scene
}

// grid is the terminal cell target. It works in screen coordinates (the
// header row already consumed) and clips everything out of range.
type grid struct {
	w, h   int
	cells  [][]rune
	colors map[[2]int]string // ANSI prefix per cell
}

func newGrid(w, h int) *grid {
	cells := make([][]rune, h)
	for i := range cells {
		cells[i] = make([]rune, w)
		for j := range cells[i] {
			cells[i][j] = ' '
		}
	}
	return &grid{w: w, h: h, cells: cells, colors: make(map[[2]int]string)}
}

func (g *grid) set(x, y int, r rune) {
	y -= headerRows
	if x < 0 || y < 0 || x >= g.w || y >= g.h {
		return
	}
	g.cells[y][x] = r
}

func (g *grid) setColored(x, y int, r rune, ansi string) {
	g.set(x, y, r)
	yy := y - headerRows
	if x >= 0 && yy >= 0 && x < g.w && yy < g.h {
		g.colors[[2]int{x, yy}] = ansi
	}
}

func (g *grid) text(x, y int, s string) {
	for i, r := range s {
		g.set(x+i, y, r)
	}
}

func (g *grid) lines() []string {
	out := make([]string, g.h)
	var b strings.Builder
	for y := 0; y < g.h; y++ {
		b.Reset()
		for x := 0; x < g.w; x++ {
			if ansi, ok := g.colors[[2]int{x, y}]; ok {
				b.WriteString(ansi)
				b.WriteRune(g.cells[y][x])
				b.WriteString(colorReset)
			} else {
				b.WriteRune(g.cells[y][x])
			}
		}
		out[y] = b.String()
	}
	return out
}

// RenderScene projects a scene through the viewport into terminal lines.
// width/height cover the canvas area only; the caller owns header and
// status chrome.
func RenderScene(scene Scene, view Viewport, width, height int) []string {
	g := newGrid(width, height)

	for _, e := range scene.Edges {
		drawEdge(g, view, e)
	}
	if scene.Guide != nil {
		drawDashedLine(g, view, *scene.Guide)
	}
	for _, sh := range scene.Shapes {
		drawShape(g, view, sh)
	}
	if scene.SelectionBox != nil {
		drawSelectionBox(g, view, *scene.SelectionBox)
	}
	for _, c := range scene.Cursors {
		x, y := view.Cell(c.X, c.Y)
		g.setColored(x, y, '▲', ansiForColor(c.Color))
		g.text(x+1, y, trimLabel(c.UserID, 8))
	}
	return g.lines()
}

func drawEdge(g *grid, view Viewport, e Edge) {
	x1, y1 := view.Cell(e.Seg.X1, e.Seg.Y1)
	x2, y2 := view.Cell(e.Seg.X2, e.Seg.Y2)
	r := lineRune(x1, y1, x2, y2)
	if e.Selected {
		r = '='
	}
	plotLine(x1, y1, x2, y2, func(x, y int) { g.set(x, y, r) })

	if e.SourceLabel != "" {
		x, y := view.Cell(e.SourceAnchor[0], e.SourceAnchor[1])
		g.text(x, y-1, e.SourceLabel)
	}
	if e.TargetLabel != "" {
		x, y := view.Cell(e.TargetAnchor[0], e.TargetAnchor[1])
		g.text(x, y-1, e.TargetLabel)
	}
}

func drawDashedLine(g *grid, view Viewport, s Segment) {
	x1, y1 := view.Cell(s.X1, s.Y1)
	x2, y2 := view.Cell(s.X2, s.Y2)
	i := 0
	plotLine(x1, y1, x2, y2, func(x, y int) {
		if i%2 == 0 {
			g.set(x, y, '·')
		}
		i++
	})
}

func lineRune(x1, y1, x2, y2 int) rune {
	if y1 == y2 {
		return '─'
	}
	if x1 == x2 {
		return '│'
	}
	return '·'
}

// plotLine is Bresenham over cells.
func plotLine(x1, y1, x2, y2 int, plot func(x, y int)) {
	dx := abs(x2 - x1)
	dy := -abs(y2 - y1)
	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}
	err := dx + dy
	for {
		plot(x1, y1)
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x1 += sx
		}
		if e2 <= dx {
			err += dx
			y1 += sy
		}
	}
}

func drawShape(g *grid, view Viewport, sh Shape) {
	x0, y0 := view.Cell(sh.Bounds.X, sh.Bounds.Y)
	x1, y1 := view.Cell(sh.Bounds.X+sh.Bounds.W, sh.Bounds.Y+sh.Bounds.H)
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}

	switch sh.Kind {
	case ShapeRect:
		drawBorder(g, x0, y0, x1, y1, sh.Selected)
		if sh.Double {
			drawBorder(g, x0-1, y0-1, x1+1, y1+1, false)
		}
		clearInside(g, x0, y0, x1, y1)
		centerText(g, x0, x1, (y0+y1)/2, sh.Label)
	case ShapeRhombus:
		drawRhombus(g, x0, y0, x1, y1, sh.Selected)
		centerText(g, x0, x1, (y0+y1)/2, sh.Label)
	case ShapeEllipse:
		drawEllipse(g, x0, y0, x1, y1, sh)
		label := sh.Label
		if sh.KeyAttr {
			label = "*" + label
		}
		centerText(g, x0, x1, (y0+y1)/2, label)
	case ShapeTable:
		drawTable(g, view, x0, y0, x1, y1, sh)
	}
}

func drawBorder(g *grid, x0, y0, x1, y1 int, selected bool) {
	h, v, tl, tr, bl, br := '─', '│', '┌', '┐', '└', '┘'
	if selected {
		// Selected elements use the heavy marker border.
		h, v, tl, tr, bl, br = '#', '#', '#', '#', '#', '#'
	}
	for x := x0 + 1; x < x1; x++ {
		g.set(x, y0, h)
		g.set(x, y1, h)
	}
	for y := y0 + 1; y < y1; y++ {
		g.set(x0, y, v)
		g.set(x1, y, v)
	}
	g.set(x0, y0, tl)
	g.set(x1, y0, tr)
	g.set(x0, y1, bl)
	g.set(x1, y1, br)
}

func clearInside(g *grid, x0, y0, x1, y1 int) {
	for y := y0 + 1; y < y1; y++ {
		for x := x0 + 1; x < x1; x++ {
			g.set(x, y, ' ')
		}
	}
}

func drawRhombus(g *grid, x0, y0, x1, y1 int, selected bool) {
	cx := (x0 + x1) / 2
	cy := (y0 + y1) / 2
	halfH := cy - y0
	if halfH < 1 {
		halfH = 1
	}
	halfW := cx - x0
	if halfW < 1 {
		halfW = 1
	}
	for dy := -halfH; dy <= halfH; dy++ {
		dx := int(math.Round(float64(halfW) * (1 - math.Abs(float64(dy))/float64(halfH))))
		l, r := '/', '\\'
		if dy > 0 {
			l, r = '\\', '/'
		} else if dy == 0 {
			l, r = '<', '>'
		}
		if selected {
			l, r = '#', '#'
		}
		for x := cx - dx + 1; x < cx+dx; x++ {
			g.set(x, cy+dy, ' ')
		}
		g.set(cx-dx, cy+dy, l)
		g.set(cx+dx, cy+dy, r)
	}
}

func drawEllipse(g *grid, x0, y0, x1, y1 int, sh Shape) {
	cx := float64(x0+x1) / 2
	cy := float64(y0+y1) / 2
	rx := float64(x1-x0) / 2
	ry := float64(y1-y0) / 2
	if rx < 1 {
		rx = 1
	}
	if ry < 1 {
		ry = 1
	}
	border := '.'
	if sh.Selected {
		border = '#'
	}
	steps := int(8 * (rx + ry))
	if steps < 16 {
		steps = 16
	}
	for i := 0; i < steps; i++ {
		if sh.Dashed && i%2 == 1 {
			continue
		}
		a := 2 * math.Pi * float64(i) / float64(steps)
		x := int(math.Round(cx + rx*math.Cos(a)))
		y := int(math.Round(cy + ry*math.Sin(a)))
		r := border
		if !sh.Selected {
			switch {
			case x == int(math.Round(cx-rx)):
				r = '('
			case x == int(math.Round(cx+rx)):
				r = ')'
			}
		}
		g.set(x, y, r)
	}
	if sh.Double {
		g.set(int(math.Round(cx-rx))+1, int(math.Round(cy)), '(')
		g.set(int(math.Round(cx+rx))-1, int(math.Round(cy)), ')')
	}
}

func drawTable(g *grid, view Viewport, x0, y0, x1, y1 int, sh Shape) {
	drawBorder(g, x0, y0, x1, y1, sh.Selected)
	clearInside(g, x0, y0, x1, y1)

	// Header separator sits under the title row when zoom leaves room.
	sepY := y0 + int(math.Round(tableHeaderH*view.Zoom)) - 1
	if sepY > y0 && sepY < y1 {
		g.set(x0, sepY, '├')
		g.set(x1, sepY, '┤')
		for x := x0 + 1; x < x1; x++ {
			g.set(x, sepY, '─')
		}
	}
	centerText(g, x0, x1, (y0+sepY)/2, sh.Label)

	rowY := sepY + 1
	for _, col := range sh.Columns {
		if rowY >= y1 {
			break
		}
		tag := "  "
		if col.IsPk {
			tag = "PK"
		} else if col.IsFk {
			tag = "FK"
		}
		row := fmt.Sprintf("%s %s %s", tag, col.Name, col.Type)
		g.text(x0+1, rowY, trimLabel(row, x1-x0-1))
		rowY += int(math.Round(tableRowH * view.Zoom))
		if rowY <= sepY {
			rowY = sepY + 1
		}
	}
}

func drawSelectionBox(g *grid, view Viewport, r Rect) {
	x0, y0 := view.Cell(r.X, r.Y)
	x1, y1 := view.Cell(r.X+r.W, r.Y+r.H)
	for x := x0; x <= x1; x++ {
		g.set(x, y0, '·')
		g.set(x, y1, '·')
	}
	for y := y0; y <= y1; y++ {
		g.set(x0, y, '·')
		g.set(x1, y, '·')
	}
	g.set(x0, y0, '+')
	g.set(x1, y0, '+')
	g.set(x0, y1, '+')
	g.set(x1, y1, '+')
}

func centerText(g *grid, x0, x1 int, y int, s string) {
	s = trimLabel(s, x1-x0-1)
	start := x0 + (x1-x0-len([]rune(s)))/2
	if start <= x0 {
		start = x0 + 1
	}
	g.text(start, y, s)
}

func trimLabel(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max == 1 {
		return string(r[:1])
	}
	return string(r[:max-1]) + "…"
}
