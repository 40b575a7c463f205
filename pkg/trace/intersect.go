package trace

import (
	"math"

	"github.com/taigrr/shine/pkg/math3d"
	"github.com/taigrr/shine/pkg/scene"
)

// PrimitiveKind identifies which scene slice a Hit refers to.
type PrimitiveKind int

const (
	PrimitiveSphere PrimitiveKind = iota
	PrimitiveTriangle
)

func (k PrimitiveKind) String() string {
	switch k {
	case PrimitiveSphere:
		return "sphere"
	case PrimitiveTriangle:
		return "triangle"
	}
	return "unknown"
}

// Hit describes the closest intersection along a ray.
type Hit struct {
	T      float64
	Point  math3d.Position
	Normal math3d.Vec3 // unit length
	Kind   PrimitiveKind
	Index  int // into Scene.Spheres or Scene.Triangles
	scene.Surface
}

// IntersectSphere solves |O + tD - C|^2 = r^2 for t. a is D·D, computed once
// per ray by the caller. Both roots are returned unordered as
// ((-b+√disc)/2a, (-b-√disc)/2a); a miss returns (+Inf, +Inf).
func IntersectSphere(origin math3d.Position, dir math3d.Vec3, a float64, s *scene.Sphere) (t1, t2 float64) {
	co := origin.Vec().Sub(s.Center.Vec())
	b := 2 * co.Dot(dir)
	c := co.Dot(co) - s.Radius*s.Radius

	disc := b*b - 4*a*c
	if disc < 0 {
		return math.Inf(1), math.Inf(1)
	}
	sq := math.Sqrt(disc)
	return (-b + sq) / (2 * a), (-b - sq) / (2 * a)
}

// IntersectTriangle is the Möller–Trumbore test. It returns the ray
// parameter and the barycentric coordinates (u, v) of the hit, or t = +Inf
// when the ray is parallel to the plane (|det| < eps) or passes outside the
// triangle. t may be negative; range filtering is the caller's job.
func IntersectTriangle(origin math3d.Position, dir math3d.Vec3, tri *scene.Triangle, eps float64) (t, u, v float64) {
	miss := math.Inf(1)
	e1, e2 := tri.Edges()

	p := dir.Cross(e2)
	det := e1.Dot(p)
	if det > -eps && det < eps {
		return miss, 0, 0
	}
	inv := 1 / det

	s := origin.Vec().Sub(tri.Vertices[0].Vec())
	u = s.Dot(p) * inv
	if u < 0 || u > 1 {
		return miss, 0, 0
	}

	q := s.Cross(e1)
	v = dir.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return miss, 0, 0
	}

	return e2.Dot(q) * inv, u, v
}

// ClosestHit scans every sphere, then every triangle, and keeps the nearest
// t with tMin < t < tMax. Comparisons are strict, so on an exact tie the
// primitive seen first wins.
func (e *Engine) ClosestHit(origin math3d.Position, dir math3d.Vec3, tMin, tMax float64) (Hit, bool) {
	closest := math.Inf(1)
	kind, index := PrimitiveSphere, -1

	a := dir.Dot(dir)
	for i := range e.scene.Spheres {
		t1, t2 := IntersectSphere(origin, dir, a, &e.scene.Spheres[i])
		if t1 > tMin && t1 < tMax && t1 < closest {
			closest, kind, index = t1, PrimitiveSphere, i
		}
		if t2 > tMin && t2 < tMax && t2 < closest {
			closest, kind, index = t2, PrimitiveSphere, i
		}
	}
	for i := range e.scene.Triangles {
		t, _, _ := IntersectTriangle(origin, dir, &e.scene.Triangles[i], e.cfg.Epsilon)
		if t > tMin && t < tMax && t < closest {
			closest, kind, index = t, PrimitiveTriangle, i
		}
	}

	if index < 0 {
		return Hit{}, false
	}

	point := origin.Vec().Add(dir.Scale(closest))
	hit := Hit{T: closest, Point: point.Position(), Kind: kind, Index: index}
	switch kind {
	case PrimitiveSphere:
		sp := &e.scene.Spheres[index]
		hit.Normal = point.Sub(sp.Center.Vec()).Normalize()
		hit.Surface = sp.Surface
	case PrimitiveTriangle:
		tri := &e.scene.Triangles[index]
		hit.Normal = e.triNormals[index]
		hit.Surface = tri.Surface
	}
	return hit, true
}

// occluded reports whether anything lies strictly between tMin and tMax along
// the ray. It answers the same question as ClosestHit but stops at the first
// blocker.
func (e *Engine) occluded(origin math3d.Position, dir math3d.Vec3, tMin, tMax float64) bool {
	a := dir.Dot(dir)
	for i := range e.scene.Spheres {
		t1, t2 := IntersectSphere(origin, dir, a, &e.scene.Spheres[i])
		if (t1 > tMin && t1 < tMax) || (t2 > tMin && t2 < tMax) {
			return true
		}
	}
	for i := range e.scene.Triangles {
		t, _, _ := IntersectTriangle(origin, dir, &e.scene.Triangles[i], e.cfg.Epsilon)
		if t > tMin && t < tMax {
			return true
		}
	}
	return false
}
