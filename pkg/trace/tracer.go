// Package trace is the ray tracing core: ray/primitive intersection, Phong
// lighting with hard shadows, and recursive mirror reflection.
//
// An Engine reads an immutable scene and is safe for concurrent use; the
// only shared mutable state is a pair of atomic diagnostic counters.
package trace

import (
	"math"
	"sync/atomic"

	"github.com/taigrr/shine/pkg/math3d"
	"github.com/taigrr/shine/pkg/scene"
)

// Config holds the constants threaded through every trace.
type Config struct {
	// Epsilon offsets secondary rays from their surface and is the
	// parallel-ray threshold for triangles.
	Epsilon float64
	// MaxDepth is the number of reflection bounces for primary rays.
	MaxDepth int
	// Background is returned for rays that hit nothing.
	Background math3d.Color
}

// DefaultConfig returns epsilon 1e-3, three bounces and a black background.
func DefaultConfig() Config {
	return Config{
		Epsilon:  1e-3,
		MaxDepth: 3,
	}
}

// ConfigFromScene takes epsilon and depth from the scene settings and the
// background from the scene.
func ConfigFromScene(s *scene.Scene) Config {
	return Config{
		Epsilon:    s.Settings.Epsilon,
		MaxDepth:   s.Settings.MaxDepth,
		Background: s.Background,
	}
}

// Stats are diagnostic ray counters.
type Stats struct {
	Rays       uint64 // calls to Trace, primary and reflected
	ShadowRays uint64 // shadow queries towards point and directional lights
}

// Add returns the field-wise sum.
func (s Stats) Add(o Stats) Stats {
	return Stats{Rays: s.Rays + o.Rays, ShadowRays: s.ShadowRays + o.ShadowRays}
}

// Total returns all rays cast.
func (s Stats) Total() uint64 {
	return s.Rays + s.ShadowRays
}

// Engine traces rays against one scene.
type Engine struct {
	scene      *scene.Scene
	cfg        Config
	triNormals []math3d.Vec3

	rays       atomic.Uint64
	shadowRays atomic.Uint64
}

// NewEngine prepares s for tracing. s must already be validated and must not
// be modified while the engine is in use.
func NewEngine(s *scene.Scene, cfg Config) *Engine {
	e := &Engine{
		scene:      s,
		cfg:        cfg,
		triNormals: make([]math3d.Vec3, len(s.Triangles)),
	}
	for i := range s.Triangles {
		e.triNormals[i] = s.Triangles[i].Normal()
	}
	return e
}

// Scene returns the scene being traced.
func (e *Engine) Scene() *scene.Scene { return e.scene }

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.cfg }

// Stats returns the counters accumulated so far.
func (e *Engine) Stats() Stats {
	return Stats{Rays: e.rays.Load(), ShadowRays: e.shadowRays.Load()}
}

// ResetStats zeroes the counters.
func (e *Engine) ResetStats() {
	e.rays.Store(0)
	e.shadowRays.Store(0)
}

// Trace returns the color seen along origin + t*dir for tMin < t < tMax,
// following up to depth mirror bounces.
func (e *Engine) Trace(origin math3d.Position, dir math3d.Vec3, tMin, tMax float64, depth int) math3d.Color {
	e.rays.Add(1)

	hit, ok := e.ClosestHit(origin, dir, tMin, tMax)
	if !ok {
		return e.cfg.Background
	}

	view := dir.Negate()
	lighting := e.ComputeLighting(hit.Point, hit.Normal, view, hit.Specular)
	local := hit.Color.MulVec(lighting)

	r := hit.Reflectivity
	if r <= 0 || depth <= 0 {
		return local
	}

	bounce := view.ReflectAbout(hit.Normal)
	reflected := e.Trace(hit.Point, bounce, e.cfg.Epsilon, math.Inf(1), depth-1)

	return local.Scale(1 - r).Add(reflected.Scale(r))
}
