package trace

import (
	"math"

	"github.com/taigrr/shine/pkg/math3d"
	"github.com/taigrr/shine/pkg/scene"
)

// ComputeLighting returns the per-channel light gain at point. normal is the
// unit surface normal, view points from the surface back towards the viewer
// and need not be normalized.
//
// Ambient lights always contribute. Point and directional lights are skipped
// when a shadow query towards them finds any blocker; otherwise they add a
// Lambertian term and, unless specular is scene.NoSpecular, a Phong term.
func (e *Engine) ComputeLighting(point math3d.Position, normal, view math3d.Vec3, specular float64) math3d.Vec3 {
	var gain math3d.Vec3
	for i := range e.scene.Lights {
		light := &e.scene.Lights[i]
		if !light.Casts() {
			if light.Kind == scene.LightAmbient {
				gain = gain.Add(light.Intensity)
			}
			continue
		}

		l := light.Direction
		if light.Kind == scene.LightPoint {
			l = light.Position.Vec().Sub(point.Vec())
		}

		e.shadowRays.Add(1)
		if e.occluded(point, l, e.cfg.Epsilon, light.ShadowRange()) {
			continue
		}

		if nDotL := normal.Dot(l); nDotL > 0 {
			gain = gain.Add(light.Intensity.Scale(nDotL / (normal.Len() * l.Len())))
		}

		if specular != scene.NoSpecular {
			r := l.ReflectAbout(normal)
			if rDotV := r.Dot(view); rDotV > 0 {
				gain = gain.Add(light.Intensity.Scale(math.Pow(rDotV/(r.Len()*view.Len()), specular)))
			}
		}
	}
	return gain
}
