package scene

import (
	"fmt"
	"math"

	"github.com/taigrr/shine/pkg/math3d"
)

// LightKind selects which fields of a Light are meaningful.
type LightKind int

const (
	// LightAmbient adds its intensity everywhere, unshadowed.
	LightAmbient LightKind = iota
	// LightPoint radiates from Position.
	LightPoint
	// LightDirectional shines along Direction from infinitely far away.
	// Direction points from the surface towards the light.
	LightDirectional
)

var lightKindNames = map[LightKind]string{
	LightAmbient:     "ambient",
	LightPoint:       "point",
	LightDirectional: "directional",
}

func (k LightKind) String() string {
	if name, ok := lightKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("LightKind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k LightKind) MarshalText() ([]byte, error) {
	name, ok := lightKindNames[k]
	if !ok {
		return nil, fmt.Errorf("%w: light kind %d", ErrInvalid, int(k))
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *LightKind) UnmarshalText(text []byte) error {
	for kind, name := range lightKindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("%w: unknown light type %q", ErrInvalid, text)
}

// Light is a tagged union over the three light kinds. Intensity is a
// per-channel gain.
type Light struct {
	Kind      LightKind       `json:"type"`
	Intensity math3d.Vec3     `json:"intensity"`
	Position  math3d.Position `json:"position,omitzero"`
	Direction math3d.Vec3     `json:"direction,omitzero"`
}

// Ambient creates an ambient light.
func Ambient(intensity math3d.Vec3) Light {
	return Light{Kind: LightAmbient, Intensity: intensity}
}

// Point creates a point light.
func Point(pos math3d.Position, intensity math3d.Vec3) Light {
	return Light{Kind: LightPoint, Intensity: intensity, Position: pos}
}

// Directional creates a directional light shining along dir.
func Directional(dir, intensity math3d.Vec3) Light {
	return Light{Kind: LightDirectional, Intensity: intensity, Direction: dir}
}

// ShadowRange is the exclusive upper bound for the shadow query towards this
// light. A point light's vector spans exactly surface-to-light, so the range
// ends at 1; directional light has no end. Ambient lights cast no shadows.
func (l Light) ShadowRange() float64 {
	switch l.Kind {
	case LightPoint:
		return 1
	case LightDirectional:
		return math.Inf(1)
	}
	return 0
}

// Casts reports whether the light is directional or positional, i.e. whether
// it takes part in shadowing and Phong terms.
func (l Light) Casts() bool {
	return l.Kind == LightPoint || l.Kind == LightDirectional
}

func (l Light) validate() error {
	if _, ok := lightKindNames[l.Kind]; !ok {
		return fmt.Errorf("%w: light kind %d", ErrInvalid, int(l.Kind))
	}
	if !l.Intensity.IsFinite() {
		return fmt.Errorf("%w: intensity %v", ErrInvalid, l.Intensity)
	}
	switch l.Kind {
	case LightPoint:
		if !l.Position.Vec().IsFinite() {
			return fmt.Errorf("%w: position %v", ErrInvalid, l.Position)
		}
	case LightDirectional:
		if !l.Direction.IsFinite() || l.Direction.Len() == 0 {
			return fmt.Errorf("%w: direction %v", ErrDegenerate, l.Direction)
		}
	}
	return nil
}
