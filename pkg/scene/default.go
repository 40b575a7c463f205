package scene

import "github.com/taigrr/shine/pkg/math3d"

// Default returns the demo scene: three spheres over a reflective white floor,
// lit by a dim ambient light and one directional light.
func Default() *Scene {
	s := New("default")
	s.Background = math3d.RGB(92, 195, 206)
	s.Camera = Camera{
		Position:       math3d.P3(0, 4, -6),
		ViewportWidth:  1,
		ViewportHeight: 1,
		Distance:       1,
		Rotation: math3d.Mat3{
			{1, 0, 0},
			{0, 1, -0.5},
			{0, 0, 1},
		},
	}

	s.AddSphere(math3d.P3(0, 0, 5), 1, Surface{Color: math3d.RGB(255, 0, 0), Specular: 1000, Reflectivity: 0.5})
	s.AddSphere(math3d.P3(-2, 0, 5), 1, Surface{Color: math3d.RGB(0, 255, 0), Specular: 1000, Reflectivity: 0.4})
	s.AddSphere(math3d.P3(2, 0, 5), 1, Surface{Color: math3d.RGB(0, 0, 255), Specular: 1000, Reflectivity: 0})

	floor := Surface{Color: math3d.RGB(255, 255, 255), Specular: 0, Reflectivity: 0.5}
	s.AddTriangle(math3d.P3(-10000, -1, 10000), math3d.P3(10000, -1, 10000), math3d.P3(10000, -1, -10000), floor)
	s.AddTriangle(math3d.P3(-10000, -1, 10000), math3d.P3(-10000, -1, -10000), math3d.P3(10000, -1, -10000), floor)

	s.AddLight(Ambient(math3d.V3(0.1, 0.1, 0.1)))
	s.AddLight(Directional(math3d.V3(1, 3, 1), math3d.V3(1, 1, 1)))

	return s
}

// Stage returns the default lights, camera and floor without any spheres,
// ready for an imported model.
func Stage(name string) *Scene {
	s := Default()
	s.Name = name
	s.Spheres = nil
	return s
}
