package models

import (
	"math"
	"testing"

	"github.com/taigrr/shine/pkg/math3d"
)

// TestFaceMaterialIndex verifies per-face material assignment.
func TestFaceMaterialIndex(t *testing.T) {
	mesh := NewMesh("test")

	// Add some materials
	mesh.Materials = []Material{
		{Name: "red", BaseColor: [4]float64{1, 0, 0, 1}},
		{Name: "green", BaseColor: [4]float64{0, 1, 0, 1}},
		{Name: "blue", BaseColor: [4]float64{0, 0, 1, 1}},
	}

	// Add faces with different materials
	mesh.Faces = []Face{
		{V: [3]int{0, 1, 2}, Material: 0},    // red
		{V: [3]int{3, 4, 5}, Material: 1},    // green
		{V: [3]int{6, 7, 8}, Material: 2},    // blue
		{V: [3]int{9, 10, 11}, Material: -1}, // no material
	}

	if mesh.GetFaceMaterial(0) != 0 {
		t.Errorf("Face 0 should have material 0, got %d", mesh.GetFaceMaterial(0))
	}
	if mesh.GetFaceMaterial(3) != -1 {
		t.Errorf("Face 3 should have material -1, got %d", mesh.GetFaceMaterial(3))
	}

	mat := mesh.GetMaterial(0)
	if mat == nil || mat.Name != "red" {
		t.Errorf("GetMaterial(0) should return 'red' material")
	}
	if mesh.GetMaterial(-1) != nil {
		t.Errorf("GetMaterial(-1) should return nil")
	}
	if mesh.GetMaterial(99) != nil {
		t.Errorf("GetMaterial(99) should return nil for out-of-bounds")
	}

	fallback := math3d.RGB(10, 10, 10)
	tests := []struct {
		face int
		want math3d.Color
	}{
		{0, math3d.RGB(255, 0, 0)},
		{1, math3d.RGB(0, 255, 0)},
		{2, math3d.RGB(0, 0, 255)},
		{3, fallback},
	}
	for _, tt := range tests {
		if got := mesh.FaceColor(tt.face, fallback); got != tt.want {
			t.Errorf("FaceColor(%d) = %v, want %v", tt.face, got, tt.want)
		}
	}
}

func TestCalculateBoundsEmpty(t *testing.T) {
	mesh := NewMesh("empty")
	mesh.CalculateBounds()
	if mesh.Size() != math3d.Zero3() {
		t.Errorf("empty mesh size = %v", mesh.Size())
	}
}

func TestMaterialPhongExponent(t *testing.T) {
	tests := []struct {
		roughness float64
		want      float64
		ok        bool
	}{
		{0, MaxPhongExponent, true},
		{0.5, 30, true},
		{0.1, MaxPhongExponent, true}, // 19998 before the cap
		{1, 0, false},
		{2, 0, false},
		{-1, MaxPhongExponent, true},
	}
	for _, tt := range tests {
		m := Material{Roughness: tt.roughness}
		got, ok := m.PhongExponent()
		if ok != tt.ok || math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("roughness %g: PhongExponent() = (%g, %v), want (%g, %v)", tt.roughness, got, ok, tt.want, tt.ok)
		}
	}
}

func TestMaterialReflectivity(t *testing.T) {
	tests := []struct {
		metallic, roughness float64
		want                float64
	}{
		{1, 0, 1},
		{1, 0.5, 0.5},
		{0, 0, 0},
		{1, 1, 0},
		{0.5, 0.5, 0.25},
		{math.NaN(), 0, 0},
		{3, 0, 1},
	}
	for _, tt := range tests {
		m := Material{Metallic: tt.metallic, Roughness: tt.roughness}
		if got := m.Reflectivity(); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Reflectivity(metallic %g, roughness %g) = %g, want %g", tt.metallic, tt.roughness, got, tt.want)
		}
	}
}
