// Package scene describes what the tracer renders: a camera, spheres,
// triangles, lights and the render settings that travel with them.
//
// A Scene is built once, validated, and then treated as read-only for the
// duration of a render.
package scene

import (
	"errors"
	"fmt"
	"math"

	"github.com/taigrr/shine/pkg/math3d"
)

var (
	// ErrDegenerate reports geometry that cannot be intersected or shaded:
	// zero-area triangles, non-positive radii, zero-length light directions.
	ErrDegenerate = errors.New("degenerate geometry")
	// ErrInvalid reports out-of-range parameters.
	ErrInvalid = errors.New("invalid parameter")
)

// NoSpecular disables the specular term for a surface.
const NoSpecular = -1.0

// Surface holds the shading parameters shared by every primitive.
type Surface struct {
	Color math3d.Color `json:"color"`
	// Specular is the Phong exponent, or NoSpecular.
	Specular float64 `json:"specular"`
	// Reflectivity is the mirror blend factor in [0, 1].
	Reflectivity float64 `json:"reflectivity"`
}

// Sphere is a sphere primitive.
type Sphere struct {
	Center math3d.Position `json:"center"`
	Radius float64         `json:"radius"`
	Surface
}

// Triangle is a flat triangle. Vertex order is significant: the face normal is
// cross(v1-v0, v2-v0), so the triangle faces the side from which its vertices
// appear counter-clockwise.
type Triangle struct {
	Vertices [3]math3d.Position `json:"vertices"`
	Surface
}

// Edges returns v1-v0 and v2-v0.
func (t *Triangle) Edges() (e1, e2 math3d.Vec3) {
	v0 := t.Vertices[0].Vec()
	return t.Vertices[1].Vec().Sub(v0), t.Vertices[2].Vec().Sub(v0)
}

// Normal returns the unit face normal. It is not finite for a degenerate
// triangle.
func (t *Triangle) Normal() math3d.Vec3 {
	e1, e2 := t.Edges()
	return e1.Cross(e2).Normalize()
}

// Area returns the triangle's surface area.
func (t *Triangle) Area() float64 {
	e1, e2 := t.Edges()
	return e1.Cross(e2).Len() / 2
}

// Camera is a pinhole camera. Rotation is applied to viewport-space directions
// as a row-major matrix product.
type Camera struct {
	Position       math3d.Position `json:"position"`
	ViewportWidth  float64         `json:"viewport_width"`
	ViewportHeight float64         `json:"viewport_height"`
	Distance       float64         `json:"distance"`
	Rotation       math3d.Mat3     `json:"rotation"`
}

// DefaultCamera returns a unit viewport at distance 1 looking down +Z from
// the origin.
func DefaultCamera() Camera {
	return Camera{
		ViewportWidth:  1,
		ViewportHeight: 1,
		Distance:       1,
		Rotation:       math3d.Identity3(),
	}
}

// Oriented returns a copy of the camera turned by pitch (around X) and then
// yaw (around Y), both in radians, on top of its current rotation.
func (c Camera) Oriented(pitch, yaw float64) Camera {
	c.Rotation = math3d.RotationY(yaw).Mul(math3d.RotationX(pitch)).Mul(c.Rotation)
	return c
}

// Settings are the render parameters stored with a scene.
type Settings struct {
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	Supersampling int     `json:"supersampling"`
	MaxDepth      int     `json:"max_depth"`
	Epsilon       float64 `json:"epsilon"`
}

// DefaultSettings returns 600x600, no supersampling, three reflection bounces
// and an epsilon of 1e-3.
func DefaultSettings() Settings {
	return Settings{
		Width:         600,
		Height:        600,
		Supersampling: 1,
		MaxDepth:      3,
		Epsilon:       1e-3,
	}
}

// Scene is everything needed to render a frame. Slice order is iteration
// order, and therefore tie-break order between coincident surfaces.
type Scene struct {
	Name       string       `json:"name,omitempty"`
	Camera     Camera       `json:"camera"`
	Background math3d.Color `json:"background"`
	Spheres    []Sphere     `json:"spheres,omitempty"`
	Triangles  []Triangle   `json:"triangles,omitempty"`
	Lights     []Light      `json:"lights,omitempty"`
	Settings   Settings     `json:"settings"`
}

// New returns an empty scene with the default camera and settings.
func New(name string) *Scene {
	return &Scene{
		Name:     name,
		Camera:   DefaultCamera(),
		Settings: DefaultSettings(),
	}
}

// AddSphere appends a sphere.
func (s *Scene) AddSphere(center math3d.Position, radius float64, surf Surface) {
	s.Spheres = append(s.Spheres, Sphere{Center: center, Radius: radius, Surface: surf})
}

// AddTriangle appends a triangle.
func (s *Scene) AddTriangle(v0, v1, v2 math3d.Position, surf Surface) {
	s.Triangles = append(s.Triangles, Triangle{Vertices: [3]math3d.Position{v0, v1, v2}, Surface: surf})
}

// AddLight appends a light.
func (s *Scene) AddLight(l Light) {
	s.Lights = append(s.Lights, l)
}

// Validate checks the scene for degenerate geometry and out-of-range
// parameters. The returned error wraps ErrDegenerate or ErrInvalid.
func (s *Scene) Validate() error {
	if err := s.Camera.validate(); err != nil {
		return fmt.Errorf("camera: %w", err)
	}
	if err := s.Settings.validate(); err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	for i := range s.Spheres {
		sp := &s.Spheres[i]
		if !finite(sp.Radius) || sp.Radius <= 0 || !sp.Center.Vec().IsFinite() {
			return fmt.Errorf("sphere %d: %w: radius %g at %v", i, ErrDegenerate, sp.Radius, sp.Center)
		}
		if err := sp.Surface.validate(); err != nil {
			return fmt.Errorf("sphere %d: %w", i, err)
		}
	}
	for i := range s.Triangles {
		tri := &s.Triangles[i]
		if !tri.Normal().IsFinite() || tri.Area() == 0 {
			return fmt.Errorf("triangle %d: %w: zero area", i, ErrDegenerate)
		}
		if err := tri.Surface.validate(); err != nil {
			return fmt.Errorf("triangle %d: %w", i, err)
		}
	}
	for i := range s.Lights {
		if err := s.Lights[i].validate(); err != nil {
			return fmt.Errorf("light %d: %w", i, err)
		}
	}
	return nil
}

func (c Camera) validate() error {
	if !finite(c.ViewportWidth) || c.ViewportWidth <= 0 || !finite(c.ViewportHeight) || c.ViewportHeight <= 0 {
		return fmt.Errorf("%w: viewport %gx%g", ErrInvalid, c.ViewportWidth, c.ViewportHeight)
	}
	if !finite(c.Distance) || c.Distance <= 0 {
		return fmt.Errorf("%w: distance %g", ErrInvalid, c.Distance)
	}
	if !c.Position.Vec().IsFinite() {
		return fmt.Errorf("%w: position %v", ErrInvalid, c.Position)
	}
	if d := c.Rotation.Determinant(); d == 0 || !finite(d) {
		return fmt.Errorf("%w: singular rotation", ErrInvalid)
	}
	return nil
}

func (st Settings) validate() error {
	switch {
	case st.Width <= 0 || st.Height <= 0:
		return fmt.Errorf("%w: size %dx%d", ErrInvalid, st.Width, st.Height)
	case st.Supersampling < 1:
		return fmt.Errorf("%w: supersampling %d", ErrInvalid, st.Supersampling)
	case st.MaxDepth < 0:
		return fmt.Errorf("%w: max depth %d", ErrInvalid, st.MaxDepth)
	case !finite(st.Epsilon) || st.Epsilon <= 0:
		return fmt.Errorf("%w: epsilon %g", ErrInvalid, st.Epsilon)
	}
	return nil
}

func (sf Surface) validate() error {
	if !finite(sf.Reflectivity) || sf.Reflectivity < 0 || sf.Reflectivity > 1 {
		return fmt.Errorf("%w: reflectivity %g outside [0, 1]", ErrInvalid, sf.Reflectivity)
	}
	if sf.Specular != NoSpecular && (!finite(sf.Specular) || sf.Specular < 0) {
		return fmt.Errorf("%w: specular exponent %g", ErrInvalid, sf.Specular)
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
