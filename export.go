package main

import (
	"encoding/json"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

// ExportJSON writes the { nodes, connections, mode } snapshot to a file.
func ExportJSON(d *Diagram, filename string) error {
	data, err := json.MarshalIndent(d.Snapshot(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}

// ImportJSON parses a snapshot file and replaces the diagram contents.
// Validation is loose: any JSON that decodes into the snapshot shape is
// accepted; node types are not second-guessed.
func ImportJSON(d *Diagram, filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("parsing %s: %w", filename, err)
	}
	if snap.Mode == "" {
		snap.Mode = ModeConceptual
	}
	d.Apply(snap)
	return nil
}

// The autosave slot mirrors the diagram on every mutation so single-user
// sessions survive restarts.

func autosavePath() (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "autosave.json"), nil
}

func SaveLocal(d *Diagram) error {
	path, err := autosavePath()
	if err != nil {
		return err
	}
	data, err := json.Marshal(d.Snapshot())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadLocal restores the autosave slot. A missing or malformed snapshot
// means "no prior state": the diagram is left empty and no error escapes.
func LoadLocal(d *Diagram) bool {
	path, err := autosavePath()
	if err != nil {
		return false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return false
	}
	if snap.Mode == "" {
		snap.Mode = ModeConceptual
	}
	d.Apply(snap)
	return true
}

// PNG export renders the scene through gg at a fixed cell scale, so the
// image matches the terminal layout at zoom 1.
const (
	pngCharWidth  = 8.0
	pngCharHeight = 16.0
	pngPadding    = 4.0
)

func ExportPNG(d *Diagram, filename string) error {
	scene := BuildScene(SceneInput{Diagram: d, Selection: map[string]bool{}})
	if len(scene.Shapes) == 0 {
		return fmt.Errorf("nothing to export")
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, sh := range scene.Shapes {
		minX = math.Min(minX, sh.Bounds.X)
		minY = math.Min(minY, sh.Bounds.Y)
		maxX = math.Max(maxX, sh.Bounds.X+sh.Bounds.W)
		maxY = math.Max(maxY, sh.Bounds.Y+sh.Bounds.H)
	}
	minX -= pngPadding
	minY -= pngPadding
	maxX += pngPadding
	maxY += pngPadding

	dc := gg.NewContext(int((maxX-minX)*pngCharWidth), int((maxY-minY)*pngCharHeight))
	dc.SetColor(color.White)
	dc.Clear()
	dc.SetColor(color.Black)

	ttfFont, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return fmt.Errorf("failed to parse font: %v", err)
	}
	face := truetype.NewFace(ttfFont, &truetype.Options{
		Size:    12,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	dc.SetFontFace(face)

	px := func(wx float64) float64 { return (wx - minX) * pngCharWidth }
	py := func(wy float64) float64 { return (wy - minY) * pngCharHeight }

	for _, e := range scene.Edges {
		dc.DrawLine(px(e.Seg.X1), py(e.Seg.Y1), px(e.Seg.X2), py(e.Seg.Y2))
		dc.Stroke()
		if e.SourceLabel != "" {
			dc.DrawStringAnchored(e.SourceLabel, px(e.SourceAnchor[0]), py(e.SourceAnchor[1])-5, 0.5, 0)
		}
		if e.TargetLabel != "" {
			dc.DrawStringAnchored(e.TargetLabel, px(e.TargetAnchor[0]), py(e.TargetAnchor[1])-5, 0.5, 0)
		}
	}

	for _, sh := range scene.Shapes {
		drawShapePNG(dc, sh, px, py)
	}

	return dc.SavePNG(filename)
}

func drawShapePNG(dc *gg.Context, sh Shape, px, py func(float64) float64) {
	x0, y0 := px(sh.Bounds.X), py(sh.Bounds.Y)
	x1, y1 := px(sh.Bounds.X+sh.Bounds.W), py(sh.Bounds.Y+sh.Bounds.H)
	cx, cy := (x0+x1)/2, (y0+y1)/2

	switch sh.Kind {
	case ShapeRect:
		fillStroke(dc, func() { dc.DrawRectangle(x0, y0, x1-x0, y1-y0) })
		if sh.Double {
			dc.DrawRectangle(x0-3, y0-3, x1-x0+6, y1-y0+6)
			dc.Stroke()
		}
		dc.DrawStringAnchored(sh.Label, cx, cy, 0.5, 0.35)
	case ShapeRhombus:
		rhombus := func(inset float64) {
			dc.MoveTo(cx, y0+inset)
			dc.LineTo(x1-2*inset, cy)
			dc.LineTo(cx, y1-inset)
			dc.LineTo(x0+2*inset, cy)
			dc.ClosePath()
		}
		fillStroke(dc, func() { rhombus(0) })
		if sh.Double {
			rhombus(3)
			dc.Stroke()
		}
		dc.DrawStringAnchored(sh.Label, cx, cy, 0.5, 0.35)
	case ShapeEllipse:
		if sh.Dashed {
			dc.SetDash(4, 4)
		}
		fillStroke(dc, func() { dc.DrawEllipse(cx, cy, (x1-x0)/2, (y1-y0)/2) })
		dc.SetDash()
		if sh.Double {
			dc.DrawEllipse(cx, cy, (x1-x0)/2-4, (y1-y0)/2-4)
			dc.Stroke()
		}
		label := sh.Label
		if sh.KeyAttr {
			label = "*" + label
		}
		dc.DrawStringAnchored(label, cx, cy, 0.5, 0.35)
	case ShapeTable:
		fillStroke(dc, func() { dc.DrawRectangle(x0, y0, x1-x0, y1-y0) })
		sepY := y0 + tableHeaderH*pngCharHeight
		dc.DrawLine(x0, sepY, x1, sepY)
		dc.Stroke()
		dc.DrawStringAnchored(sh.Label, cx, (y0+sepY)/2, 0.5, 0.35)
		rowY := sepY + tableRowH*pngCharHeight
		for _, col := range sh.Columns {
			tag := "  "
			if col.IsPk {
				tag = "PK"
			} else if col.IsFk {
				tag = "FK"
			}
			dc.DrawString(fmt.Sprintf("%s %s %s", tag, col.Name, col.Type), x0+6, rowY-4)
			rowY += tableRowH * pngCharHeight
		}
	}
}

// fillStroke paints the shape white first so edges never show through.
func fillStroke(dc *gg.Context, path func()) {
	path()
	dc.SetColor(color.White)
	dc.FillPreserve()
	dc.SetColor(color.Black)
	dc.Stroke()
}
