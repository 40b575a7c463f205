package scene

import (
	"errors"
	"math"
	"testing"

	"github.com/taigrr/shine/pkg/math3d"
)

func TestDefaultSceneIsValid(t *testing.T) {
	s := Default()
	if err := s.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if len(s.Spheres) != 3 || len(s.Triangles) != 2 || len(s.Lights) != 2 {
		t.Errorf("got %d spheres, %d triangles, %d lights", len(s.Spheres), len(s.Triangles), len(s.Lights))
	}
	if s.Background != math3d.RGB(92, 195, 206) {
		t.Errorf("Background = %v", s.Background)
	}
	if s.Settings != DefaultSettings() {
		t.Errorf("Settings = %+v", s.Settings)
	}
}

func TestStageHasNoSpheres(t *testing.T) {
	s := Stage("model")
	if len(s.Spheres) != 0 || len(s.Triangles) != 2 || s.Name != "model" {
		t.Errorf("Stage = %d spheres, %d triangles, name %q", len(s.Spheres), len(s.Triangles), s.Name)
	}
}

func TestValidate(t *testing.T) {
	red := Surface{Color: math3d.RGB(255, 0, 0), Specular: 10}

	tests := []struct {
		name   string
		mutate func(s *Scene)
		want   error
	}{
		{"zero radius", func(s *Scene) { s.AddSphere(math3d.P3(0, 0, 5), 0, red) }, ErrDegenerate},
		{"negative radius", func(s *Scene) { s.AddSphere(math3d.P3(0, 0, 5), -1, red) }, ErrDegenerate},
		{"collinear triangle", func(s *Scene) {
			s.AddTriangle(math3d.P3(0, 0, 0), math3d.P3(1, 1, 1), math3d.P3(2, 2, 2), red)
		}, ErrDegenerate},
		{"repeated vertex", func(s *Scene) {
			s.AddTriangle(math3d.P3(0, 0, 0), math3d.P3(0, 0, 0), math3d.P3(2, 0, 0), red)
		}, ErrDegenerate},
		{"zero light direction", func(s *Scene) {
			s.AddLight(Directional(math3d.Zero3(), math3d.V3(1, 1, 1)))
		}, ErrDegenerate},
		{"reflectivity above one", func(s *Scene) {
			s.AddSphere(math3d.P3(0, 0, 5), 1, Surface{Reflectivity: 1.5})
		}, ErrInvalid},
		{"negative reflectivity", func(s *Scene) {
			s.AddSphere(math3d.P3(0, 0, 5), 1, Surface{Reflectivity: -0.1})
		}, ErrInvalid},
		{"negative specular", func(s *Scene) {
			s.AddSphere(math3d.P3(0, 0, 5), 1, Surface{Specular: -5})
		}, ErrInvalid},
		{"unknown light", func(s *Scene) { s.AddLight(Light{Kind: LightKind(9)}) }, ErrInvalid},
		{"zero viewport", func(s *Scene) { s.Camera.ViewportWidth = 0 }, ErrInvalid},
		{"zero distance", func(s *Scene) { s.Camera.Distance = 0 }, ErrInvalid},
		{"singular rotation", func(s *Scene) { s.Camera.Rotation = math3d.Mat3{} }, ErrInvalid},
		{"zero width", func(s *Scene) { s.Settings.Width = 0 }, ErrInvalid},
		{"no samples", func(s *Scene) { s.Settings.Supersampling = 0 }, ErrInvalid},
		{"negative depth", func(s *Scene) { s.Settings.MaxDepth = -1 }, ErrInvalid},
		{"zero epsilon", func(s *Scene) { s.Settings.Epsilon = 0 }, ErrInvalid},
		{"nan epsilon", func(s *Scene) { s.Settings.Epsilon = math.NaN() }, ErrInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New("test")
			tt.mutate(s)
			err := s.Validate()
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestValidateAcceptsEdgeValues(t *testing.T) {
	s := New("edges")
	s.AddSphere(math3d.P3(0, 0, 5), 1, Surface{Specular: NoSpecular, Reflectivity: 0})
	s.AddSphere(math3d.P3(0, 0, 9), 1, Surface{Specular: 0, Reflectivity: 1})
	s.AddLight(Point(math3d.P3(0, 5, 0), math3d.V3(0.5, 0.5, 0.5)))
	s.Settings.MaxDepth = 0
	if err := s.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestTriangleNormalFollowsWinding(t *testing.T) {
	ccw := Triangle{Vertices: [3]math3d.Position{math3d.P3(0, 0, 0), math3d.P3(2, 0, 0), math3d.P3(0, 2, 0)}}
	cw := Triangle{Vertices: [3]math3d.Position{math3d.P3(0, 0, 0), math3d.P3(0, 2, 0), math3d.P3(2, 0, 0)}}

	if got := ccw.Normal(); got != math3d.V3(0, 0, 1) {
		t.Errorf("ccw Normal = %v, want (0,0,1)", got)
	}
	if got := cw.Normal(); got != math3d.V3(0, 0, -1) {
		t.Errorf("cw Normal = %v, want (0,0,-1)", got)
	}
	if got := ccw.Area(); got != 2 {
		t.Errorf("Area = %v, want 2", got)
	}
}

func TestLightShadowRange(t *testing.T) {
	tests := []struct {
		light Light
		want  float64
		casts bool
	}{
		{Ambient(math3d.V3(1, 1, 1)), 0, false},
		{Point(math3d.P3(0, 1, 0), math3d.V3(1, 1, 1)), 1, true},
		{Directional(math3d.V3(0, 1, 0), math3d.V3(1, 1, 1)), math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.light.Kind.String(), func(t *testing.T) {
			if got := tt.light.ShadowRange(); got != tt.want {
				t.Errorf("ShadowRange() = %v, want %v", got, tt.want)
			}
			if got := tt.light.Casts(); got != tt.casts {
				t.Errorf("Casts() = %v, want %v", got, tt.casts)
			}
		})
	}
}

func TestCameraOriented(t *testing.T) {
	cam := DefaultCamera()
	if got := cam.Oriented(0, 0); got != cam {
		t.Errorf("Oriented(0, 0) changed the camera: %+v", got)
	}

	turned := cam.Oriented(0, math.Pi/2)
	fwd := turned.Rotation.MulVec(math3d.V3(0, 0, 1))
	if math.Abs(fwd.X-1) > 1e-9 || math.Abs(fwd.Z) > 1e-9 {
		t.Errorf("yaw quarter turn forward = %v, want (1,0,0)", fwd)
	}
	if cam.Rotation != math3d.Identity3() {
		t.Error("Oriented must not modify the receiver")
	}
}
