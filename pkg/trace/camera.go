package trace

import (
	"math"

	"github.com/taigrr/shine/pkg/math3d"
	"github.com/taigrr/shine/pkg/scene"
)

// CanvasToViewport maps canvas coordinates (origin top-left, y down) to a
// point on the camera's viewport plane in camera space (y up). Fractional
// coordinates address sub-pixel positions.
func CanvasToViewport(cam *scene.Camera, x, y float64, width, height int) math3d.Vec3 {
	w, h := float64(width), float64(height)
	return math3d.Vec3{
		X: (x - w/2) * cam.ViewportWidth / w,
		Y: -(y - h/2) * cam.ViewportHeight / h,
		Z: cam.Distance,
	}
}

// PrimaryRay returns the world-space ray through canvas point (x, y). The
// direction is not normalized; its length places the viewport at t = 1.
func PrimaryRay(cam *scene.Camera, x, y float64, width, height int) (origin math3d.Position, dir math3d.Vec3) {
	return cam.Position, cam.Rotation.MulVec(CanvasToViewport(cam, x, y, width, height))
}

// RenderPixel traces the primary ray through canvas point (x, y). Only hits
// beyond t = camera distance count.
func (e *Engine) RenderPixel(x, y float64, width, height int) math3d.Color {
	cam := &e.scene.Camera
	origin, dir := PrimaryRay(cam, x, y, width, height)
	return e.Trace(origin, dir, cam.Distance, math.Inf(1), e.cfg.MaxDepth)
}
