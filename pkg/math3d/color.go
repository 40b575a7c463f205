package math3d

import (
	"encoding/json"
	"fmt"
	"image/color"
	"math"
)

// Color is an RGB color with float channels in [0, 255].
//
// The channels are unexported so that every Color is built through a clamping
// constructor or operation: no Color can hold an out-of-range channel.
type Color struct {
	r, g, b float64
}

// NewColor creates a color, clamping each channel to [0, 255].
func NewColor(r, g, b float64) Color {
	return Color{clampChannel(r), clampChannel(g), clampChannel(b)}
}

// RGB creates a color from 8-bit channels.
func RGB(r, g, b uint8) Color {
	return Color{float64(r), float64(g), float64(b)}
}

// clampChannel maps NaN to 0 so a bad gain can never leak through.
func clampChannel(v float64) float64 {
	switch {
	case v > 255:
		return 255
	case v < 0, math.IsNaN(v):
		return 0
	}
	return v
}

// R returns the red channel.
func (c Color) R() float64 { return c.r }

// G returns the green channel.
func (c Color) G() float64 { return c.g }

// B returns the blue channel.
func (c Color) B() float64 { return c.b }

// Scale multiplies every channel by k.
func (c Color) Scale(k float64) Color {
	return NewColor(c.r*k, c.g*k, c.b*k)
}

// Add returns the channel-wise sum.
func (c Color) Add(o Color) Color {
	return NewColor(c.r+o.r, c.g+o.g, c.b+o.b)
}

// MulVec treats v as three independent gains, one per channel.
func (c Color) MulVec(v Vec3) Color {
	return NewColor(c.r*v.X, c.g*v.Y, c.b*v.Z)
}

// Average returns the channel-wise mean of two colors.
func (c Color) Average(o Color) Color {
	return NewColor((c.r+o.r)/2, (c.g+o.g)/2, (c.b+o.b)/2)
}

// Vec returns the channels as a vector, for accumulation.
func (c Color) Vec() Vec3 {
	return Vec3{c.r, c.g, c.b}
}

// ColorFromVec builds a clamped color from a channel vector.
func ColorFromVec(v Vec3) Color {
	return NewColor(v.X, v.Y, v.Z)
}

// RGBA converts to an opaque 8-bit color. Channels are rounded half to even,
// the same rule a canvas byte array applies on store.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{
		R: uint8(math.RoundToEven(c.r)),
		G: uint8(math.RoundToEven(c.g)),
		B: uint8(math.RoundToEven(c.b)),
		A: 255,
	}
}

// String implements fmt.Stringer.
func (c Color) String() string {
	return fmt.Sprintf("rgb(%g, %g, %g)", c.r, c.g, c.b)
}

type colorJSON struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// MarshalJSON encodes the color as {"r":..,"g":..,"b":..}.
func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal(colorJSON{c.r, c.g, c.b})
}

// UnmarshalJSON decodes {"r":..,"g":..,"b":..}, clamping every channel.
func (c *Color) UnmarshalJSON(data []byte) error {
	var raw colorJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode color: %w", err)
	}
	*c = NewColor(raw.R, raw.G, raw.B)
	return nil
}
