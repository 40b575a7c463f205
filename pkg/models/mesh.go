// Package models provides triangle mesh loading for shine scenes.
package models

import (
	"github.com/taigrr/shine/pkg/math3d"
)

// Mesh represents an indexed triangle mesh with per-face materials.
type Mesh struct {
	Name      string
	Vertices  []math3d.Vec3
	Faces     []Face
	Materials []Material

	// Bounding box (calculated on load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// Face represents a triangle face with vertex indices and material reference.
// Vertices are in counter-clockwise order seen from the front.
type Face struct {
	V        [3]int // Indices into Mesh.Vertices
	Material int    // Index into Mesh.Materials (-1 for no material)
}

// Material is the subset of a glTF PBR material the tracer can express.
type Material struct {
	Name      string
	BaseColor [4]float64 // RGBA in 0-1 range
	Metallic  float64    // 0 = dielectric, 1 = metal
	Roughness float64    // 0 = smooth, 1 = rough
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:     name,
		Vertices: make([]math3d.Vec3, 0),
		Faces:    make([]Face, 0),
	}
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		return
	}

	m.BoundsMin = m.Vertices[0]
	m.BoundsMax = m.Vertices[0]

	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v)
		m.BoundsMax = m.BoundsMax.Max(v)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// Extent returns the largest bounding box dimension.
func (m *Mesh) Extent() float64 {
	s := m.Size()
	return max(s.X, s.Y, s.Z)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// Triangle returns the three vertex positions of face i.
func (m *Mesh) Triangle(i int) [3]math3d.Vec3 {
	f := m.Faces[i].V
	return [3]math3d.Vec3{m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]}
}

// GetFaceMaterial returns the material index for face i.
// Returns -1 if no material assigned.
func (m *Mesh) GetFaceMaterial(i int) int {
	return m.Faces[i].Material
}

// GetMaterial returns the material at index i.
// Returns nil if index is out of bounds or -1.
func (m *Mesh) GetMaterial(i int) *Material {
	if i < 0 || i >= len(m.Materials) {
		return nil
	}
	return &m.Materials[i]
}

// MaterialCount returns the number of materials.
func (m *Mesh) MaterialCount() int {
	return len(m.Materials)
}

// MaxPhongExponent caps PhongExponent for perfectly smooth materials.
const MaxPhongExponent = 1000

// PhongExponent maps roughness onto a Phong specular exponent through the
// Blinn-Phong equivalence n = 2/α² - 2 with α = roughness². Fully rough
// materials have no highlight and report ok = false.
func (m *Material) PhongExponent() (n float64, ok bool) {
	a := unit(m.Roughness) * unit(m.Roughness)
	switch {
	case a >= 1:
		return 0, false
	case a == 0:
		return MaxPhongExponent, true
	}
	return min(2/(a*a)-2, MaxPhongExponent), true
}

// Reflectivity is the mirror share of the material: smooth metals reflect,
// rough surfaces and dielectrics do not.
func (m *Material) Reflectivity() float64 {
	return unit(m.Metallic) * (1 - unit(m.Roughness))
}

// unit clamps v to [0, 1]; NaN becomes 0.
func unit(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	return min(v, 1)
}

// FaceColor returns the base color of face i's material scaled to 0-255, or
// fallback when the face has none.
func (m *Mesh) FaceColor(i int, fallback math3d.Color) math3d.Color {
	mat := m.GetMaterial(m.GetFaceMaterial(i))
	if mat == nil {
		return fallback
	}
	return math3d.NewColor(mat.BaseColor[0]*255, mat.BaseColor[1]*255, mat.BaseColor[2]*255)
}
