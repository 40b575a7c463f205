package main

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/harmonica"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/taigrr/shine/pkg/render"
	"github.com/taigrr/shine/pkg/scene"
	"github.com/taigrr/shine/pkg/trace"
)

// RotationAxis tracks position and velocity for one rotation axis with spring decay
type RotationAxis struct {
	Position  float64
	Velocity  float64
	velSpring harmonica.Spring
	velAccel  float64 // internal spring velocity (for animating Velocity toward 0)
}

// NewRotationAxis creates an axis with harmonica spring for smooth velocity decay
func NewRotationAxis(fps int) RotationAxis {
	return RotationAxis{
		// Frequency 4.0 = moderate speed, damping 1.0 = critically damped (no overshoot)
		velSpring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// Update applies velocity to position and decays velocity toward 0 using spring
func (a *RotationAxis) Update() {
	a.Position += a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
}

// Moving reports whether the axis still changes the view noticeably.
func (a *RotationAxis) Moving() bool {
	return math.Abs(a.Velocity) > 1e-4
}

// Orbit is the camera's pitch and yaw offset from the scene camera.
type Orbit struct {
	Pitch, Yaw RotationAxis
	fps        int
}

// NewOrbit creates a resting orbit whose springs step at fps
func NewOrbit(fps int) *Orbit {
	return &Orbit{
		Pitch: NewRotationAxis(fps),
		Yaw:   NewRotationAxis(fps),
		fps:   fps,
	}
}

// Update advances both axes by one frame and clamps pitch
func (o *Orbit) Update() {
	o.Pitch.Update()
	o.Yaw.Update()
	// Keep the horizon on screen.
	o.Pitch.Position = max(-math.Pi/2, min(math.Pi/2, o.Pitch.Position))
}

// ApplyImpulse adds angular velocity to each axis
func (o *Orbit) ApplyImpulse(pitch, yaw float64) {
	o.Pitch.Velocity += pitch
	o.Yaw.Velocity += yaw
}

// Moving reports whether either axis is still turning
func (o *Orbit) Moving() bool {
	return o.Pitch.Moving() || o.Yaw.Moving()
}

// Reset returns the camera to the scene's own orientation
func (o *Orbit) Reset() {
	o.Pitch = NewRotationAxis(o.fps)
	o.Yaw = NewRotationAxis(o.fps)
}

// HUD renders an overlay with scene info and frame timing
type HUD struct {
	name      string
	primitive int
	fps       float64
	fpsFrames int
	fpsTime   time.Time
	last      render.Stats
	Visible   bool
}

// NewHUD creates a visible HUD for scene s
func NewHUD(s *scene.Scene) *HUD {
	return &HUD{
		name:      s.Name,
		primitive: len(s.Spheres) + len(s.Triangles),
		fpsTime:   time.Now(),
		Visible:   true,
	}
}

// Frame records one rendered frame.
func (h *HUD) Frame(st render.Stats) {
	h.last = st
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

// Draw writes the top and bottom HUD lines over area.
func (h *HUD) Draw(scr uv.Screen, area uv.Rectangle, depth int) {
	if !h.Visible || area.Dy() < 2 {
		return
	}
	const (
		reset   = "\x1b[0m"
		bold    = "\x1b[1m"
		bgBlack = "\x1b[40m"
		fgWhite = "\x1b[97m"
		fgGreen = "\x1b[92m"
		fgCyan  = "\x1b[96m"
	)

	top := fmt.Sprintf("%s%s %.0f FPS %s %s%s%s %s %s%s %d primitives %s",
		bgBlack, fgGreen, h.fps, reset,
		bold, bgBlack, fgWhite, h.name, reset,
		bgBlack+fgCyan, h.primitive, reset)
	uv.NewStyledString(top).Draw(scr, uv.Rect(area.Min.X, area.Min.Y, area.Dx(), 1))

	bottom := fmt.Sprintf("%s%s depth %d  %d rays  %s  +/- depth, r reset, ? hide %s",
		bgBlack, fgWhite, depth, h.last.Total(), h.last.Elapsed.Round(time.Millisecond), reset)
	uv.NewStyledString(bottom).Draw(scr, uv.Rect(area.Min.X, area.Max.Y-1, area.Dx(), 1))
}

// viewer is the interactive state of -view.
type viewer struct {
	base     *scene.Scene
	orbit    *Orbit
	hud      *HUD
	depth    int
	fb       *render.Framebuffer
	dirty    bool
	maxDepth int
}

// frameScene returns a shallow copy of the base scene seen through the
// current orbit. The base scene is never modified.
func (v *viewer) frameScene() *scene.Scene {
	s := *v.base
	cam := v.base.Camera.Oriented(v.orbit.Pitch.Position, v.orbit.Yaw.Position)
	// Terminal pixels are square once split into half blocks; widen the
	// viewport to the framebuffer's aspect ratio.
	if v.fb.Height > 0 {
		cam.ViewportWidth = cam.ViewportHeight * float64(v.fb.Width) / float64(v.fb.Height)
	}
	s.Camera = cam
	return &s
}

func (v *viewer) render(ctx context.Context) (render.Stats, error) {
	s := v.frameScene()
	cfg := trace.ConfigFromScene(s)
	cfg.MaxDepth = v.depth
	r := &render.Renderer{
		Engine:        trace.NewEngine(s, cfg),
		Supersampling: 1,
		Workers:       *workers,
	}
	return r.Render(ctx, v.fb)
}

// handleKey applies a key press. It returns false when the viewer should quit.
func (v *viewer) handleKey(ev uv.KeyPressEvent) bool {
	const torque = 0.05
	switch {
	case ev.MatchString("escape", "ctrl+c", "q"):
		return false
	case ev.MatchString("w", "up"):
		v.orbit.ApplyImpulse(-torque, 0)
	case ev.MatchString("s", "down"):
		v.orbit.ApplyImpulse(torque, 0)
	case ev.MatchString("a", "left"):
		v.orbit.ApplyImpulse(0, -torque)
	case ev.MatchString("d", "right"):
		v.orbit.ApplyImpulse(0, torque)
	case ev.Text == "+" || ev.MatchString("="): // "+" is the modifier separator in MatchString
		v.depth = min(v.depth+1, v.maxDepth)
	case ev.MatchString("-", "_"):
		v.depth = max(v.depth-1, 0)
	case ev.MatchString("r"):
		v.orbit.Reset()
		v.depth = v.base.Settings.MaxDepth
	case ev.MatchString("?", "shift+/"):
		v.hud.Visible = !v.hud.Visible
	}
	v.dirty = true
	return true
}

func runViewer(ctx context.Context, s *scene.Scene, fps int) error {
	fps = max(fps, 1)

	term := uv.DefaultTerminal()
	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	cleanup := func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}
	defer cleanup()

	v := &viewer{
		base:     s,
		orbit:    NewOrbit(fps),
		hud:      NewHUD(s),
		depth:    s.Settings.MaxDepth,
		fb:       render.NewFramebuffer(width, height*2),
		dirty:    true,
		maxDepth: max(s.Settings.MaxDepth, 8),
	}

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-term.Events():
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				width, height = ev.Width, ev.Height
				term.Erase()
				term.Resize(width, height)
				v.fb.Resize(width, height*2)
				v.dirty = true
			case uv.KeyPressEvent:
				if !v.handleKey(ev) {
					return nil
				}
			}

		case <-ticker.C:
			v.orbit.Update()
			if !v.dirty && !v.orbit.Moving() {
				continue
			}
			v.dirty = false

			stats, err := v.render(ctx)
			if err != nil {
				// Cancelled mid-frame; the loop exits on ctx.Done.
				continue
			}
			v.hud.Frame(stats)

			term.Draw(uv.DrawableFunc(func(scr uv.Screen, area uv.Rectangle) {
				v.fb.Draw(scr, area)
				v.hud.Draw(scr, area, v.depth)
			}))
			if err := term.Display(); err != nil {
				return fmt.Errorf("display: %w", err)
			}
		}
	}
}
