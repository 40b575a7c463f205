package scene

import (
	"github.com/taigrr/shine/pkg/math3d"
	"github.com/taigrr/shine/pkg/models"
)

// Placement positions an imported mesh in the scene. Vertices are recentered
// (optionally), scaled, rotated by pitch then yaw, and finally translated.
type Placement struct {
	Position math3d.Position `json:"position"`
	// Scale is a uniform factor; 0 means 1.
	Scale float64 `json:"scale,omitempty"`
	// Fit, when positive, overrides Scale so the largest bounding box
	// dimension equals Fit.
	Fit   float64 `json:"fit,omitempty"`
	Yaw   float64 `json:"yaw,omitempty"`
	Pitch float64 `json:"pitch,omitempty"`
	// Recenter moves the bounding box center to the origin before scaling.
	Recenter bool `json:"recenter,omitempty"`
}

func (p Placement) transform(mesh *models.Mesh) func(math3d.Vec3) math3d.Vec3 {
	scale := p.Scale
	if scale == 0 {
		scale = 1
	}
	if ext := mesh.Extent(); p.Fit > 0 && ext > 0 {
		scale = p.Fit / ext
	}
	var pivot math3d.Vec3
	if p.Recenter {
		pivot = mesh.Center()
	}
	rot := math3d.RotationY(p.Yaw).Mul(math3d.RotationX(p.Pitch)).Mul(math3d.ScaleUniform3(scale))
	offset := p.Position.Vec()
	return func(v math3d.Vec3) math3d.Vec3 {
		return rot.MulVec(v.Sub(pivot)).Add(offset)
	}
}

// AddMesh appends every face of mesh as a triangle. Faces with a material take
// its base color, and its roughness and metallic factors as specular exponent
// and reflectivity; the rest take surf. Faces that collapse to zero area after
// placement are skipped.
func (s *Scene) AddMesh(mesh *models.Mesh, p Placement, surf Surface) (added, skipped int) {
	xf := p.transform(mesh)
	for i := range mesh.Faces {
		src := mesh.Triangle(i)
		tri := Triangle{Surface: faceSurface(mesh, i, surf)}
		for j, v := range src {
			tri.Vertices[j] = xf(v).Position()
		}
		if !tri.Normal().IsFinite() || tri.Area() == 0 {
			skipped++
			continue
		}
		s.Triangles = append(s.Triangles, tri)
		added++
	}
	return added, skipped
}

func faceSurface(mesh *models.Mesh, i int, fallback Surface) Surface {
	mat := mesh.GetMaterial(mesh.GetFaceMaterial(i))
	if mat == nil {
		return fallback
	}
	surf := Surface{
		Color:        mesh.FaceColor(i, fallback.Color),
		Specular:     NoSpecular,
		Reflectivity: mat.Reflectivity(),
	}
	if n, ok := mat.PhongExponent(); ok {
		surf.Specular = n
	}
	return surf
}
