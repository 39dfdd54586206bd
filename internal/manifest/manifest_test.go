package manifest

import (
	"testing"

	"github.com/mierune/point-tiler/internal/export"
	"github.com/mierune/point-tiler/internal/glb"
	"github.com/mierune/point-tiler/internal/tilekey"
)

func sampleContents() []export.Content {
	return []export.Content{
		{Key: tilekey.Key{Z: 1, X: 0, Y: 0}, MinLon: 0, MinLat: 0, MaxLon: 10, MaxLat: 10, MinHeight: 0, MaxHeight: 5, GLBPath: "1/0/0.glb"},
		{Key: tilekey.Key{Z: 2, X: 0, Y: 0}, MinLon: 0, MinLat: 0, MaxLon: 5, MaxLat: 5, MinHeight: 0, MaxHeight: 2, GLBPath: "2/0/0.glb"},
		{Key: tilekey.Key{Z: 2, X: 1, Y: 0}, MinLon: 5, MinLat: 0, MaxLon: 10, MaxLat: 5, MinHeight: 0, MaxHeight: 2, GLBPath: "2/1/0.glb"},
		{Key: tilekey.Key{Z: 2, X: 0, Y: 1}, MinLon: 0, MinLat: 5, MaxLon: 5, MaxLat: 10, MinHeight: 0, MaxHeight: 2, GLBPath: "2/0/1.glb"},
		{Key: tilekey.Key{Z: 2, X: 1, Y: 1}, MinLon: 5, MinLat: 5, MaxLon: 10, MaxLat: 10, MinHeight: 0, MaxHeight: 2, GLBPath: "2/1/1.glb"},
	}
}

func TestBuildTreeShape(t *testing.T) {
	ts, err := Build(sampleContents(), glb.Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if ts.GeometricError != rootGeometricError {
		t.Errorf("tileset geometricError = %v, want %v", ts.GeometricError, rootGeometricError)
	}
	if ts.Root.GeometricError != rootGeometricError {
		t.Errorf("root node geometricError = %v, want %v", ts.Root.GeometricError, rootGeometricError)
	}
	if len(ts.Root.Children) != 1 {
		t.Fatalf("got %d root children, want 1 (single zmin=1 tile)", len(ts.Root.Children))
	}

	zminNode := ts.Root.Children[0]
	if zminNode.Content == nil || zminNode.Content.URI != "1/0/0.glb" {
		t.Errorf("zmin node content = %+v, want 1/0/0.glb", zminNode.Content)
	}
	if len(zminNode.Children) != 4 {
		t.Fatalf("got %d children under the zmin tile, want 4", len(zminNode.Children))
	}
	for _, child := range zminNode.Children {
		if child.Content == nil || child.Content.URI == "" {
			t.Errorf("leaf child missing content: %+v", child)
		}
		if len(child.Children) != 0 {
			t.Errorf("leaf child should have no children: %+v", child)
		}
	}
}

func TestBuildRejectsEmptyInput(t *testing.T) {
	if _, err := Build(nil, glb.Options{}); err == nil {
		t.Fatal("expected an error building a tileset from no tile content")
	}
}

func TestBuildDeclaresExtensionsUsed(t *testing.T) {
	ts, err := Build(sampleContents(), glb.Options{Quantize: true})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	found := false
	for _, e := range ts.ExtensionsUsed {
		if e == glb.ExtensionKHRMeshQuantization {
			found = true
		}
	}
	if !found {
		t.Errorf("expected %s in extensionsUsed, got %v", glb.ExtensionKHRMeshQuantization, ts.ExtensionsUsed)
	}
}

func TestMarshalPrettyProducesIndentedJSON(t *testing.T) {
	ts, err := Build(sampleContents(), glb.Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	data, err := MarshalPretty(ts)
	if err != nil {
		t.Fatalf("MarshalPretty: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty JSON output")
	}
}

func TestRegionConvertsDegreesToRadians(t *testing.T) {
	c := export.Content{MinLon: 180, MinLat: 0, MaxLon: 180, MaxLat: 0, MinHeight: 0, MaxHeight: 0}
	r := regionOf(c)
	want := 3.141592653589793
	if diff := r.Region[0] - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("west = %v, want ~%v radians", r.Region[0], want)
	}
}
