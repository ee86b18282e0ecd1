package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestJSONRoundTrip(t *testing.T) {
	d := NewDiagram()
	d.Mode = ModePhysical
	tbl := d.NewNode(NodeTable, 10, 5)
	tbl.Label = "orders"
	ent := d.NewNode(NodeEntity, 50, 5)
	d.Connect(tbl.ID, ent.ID)
	d.Connections[0].CardinalitySource = "(1,n)"

	path := filepath.Join(t.TempDir(), "out.json")
	if err := ExportJSON(d, path); err != nil {
		t.Fatalf("export: %v", err)
	}

	got := NewDiagram()
	if err := ImportJSON(got, path); err != nil {
		t.Fatalf("import: %v", err)
	}
	if !got.EqualSnapshot(d.Snapshot()) {
		t.Error("imported diagram differs from the exported one")
	}
}

func TestImportMissingFile(t *testing.T) {
	d := NewDiagram()
	if err := ImportJSON(d, filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("import of a missing file did not error")
	}
}

func TestImportMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	d := NewDiagram()
	d.NewNode(NodeEntity, 0, 0)
	if err := ImportJSON(d, path); err == nil {
		t.Error("import of malformed JSON did not error")
	}
	if len(d.Nodes) != 1 {
		t.Error("failed import mutated the diagram")
	}
}

func TestImportDefaultsMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.json")
	if err := os.WriteFile(path, []byte(`{"nodes":[],"connections":[]}`), 0644); err != nil {
		t.Fatal(err)
	}
	d := NewDiagram()
	d.Mode = ModePhysical
	if err := ImportJSON(d, path); err != nil {
		t.Fatal(err)
	}
	if d.Mode != ModeConceptual {
		t.Errorf("mode = %q after importing a file without one, want conceptual", d.Mode)
	}
}

func TestExportPNG(t *testing.T) {
	d := NewDiagram()
	a := d.NewNode(NodeEntity, 10, 5)
	attr := d.NewNode(NodeAttribute, 40, 20)
	d.Connect(a.ID, attr.ID)

	path := filepath.Join(t.TempDir(), "out.png")
	if err := ExportPNG(d, path); err != nil {
		t.Fatalf("export: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() == 0 {
		t.Error("exported PNG is empty")
	}
}

func TestExportPNGEmptyDiagram(t *testing.T) {
	if err := ExportPNG(NewDiagram(), filepath.Join(t.TempDir(), "out.png")); err == nil {
		t.Error("exporting an empty diagram did not error")
	}
}
