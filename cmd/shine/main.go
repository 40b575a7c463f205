// shine - recursive ray tracer
// Renders a scene file, a glTF model or the built-in demo scene to PNG, to the
// terminal, or over HTTP.
//
// Controls (with -view):
//
//	W/S, Up/Down    - Pitch the camera
//	A/D, Left/Right - Yaw the camera
//	+/-             - Change reflection depth
//	R               - Reset view
//	?               - Toggle HUD overlay
//	Q, Esc, Ctrl+C  - Quit
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/taigrr/shine/pkg/math3d"
	"github.com/taigrr/shine/pkg/render"
	"github.com/taigrr/shine/pkg/scene"
	"github.com/taigrr/shine/pkg/server"
	"github.com/taigrr/shine/pkg/trace"
)

var (
	outPath   = flag.String("out", "render.png", "Output PNG path")
	width     = flag.Int("width", 0, "Image width (0 = scene setting)")
	height    = flag.Int("height", 0, "Image height (0 = scene setting)")
	ss        = flag.Int("ss", 0, "Supersampling per axis (0 = scene setting)")
	depth     = flag.Int("depth", -1, "Reflection depth (-1 = scene setting)")
	epsilon   = flag.Float64("eps", 0, "Surface offset for secondary rays (0 = scene setting)")
	workers   = flag.Int("workers", 0, "Render goroutines (0 = "+render.WorkersEnv+" or CPU count)")
	stamp     = flag.Bool("stamp", false, "Stamp ray counts and timing onto the PNG")
	view      = flag.Bool("view", false, "Interactive terminal viewer")
	serveAddr = flag.String("serve", "", "Serve renders over HTTP on this address (e.g. :8080)")
	targetFPS = flag.Int("fps", 30, "Target FPS for the viewer")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "shine - recursive ray tracer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: shine [options] [scene.json|model.glb]\n\n")
		fmt.Fprintf(os.Stderr, "Without a file the built-in demo scene is rendered.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nViewer controls:\n")
		fmt.Fprintf(os.Stderr, "  W/S/A/D     - Pitch and yaw\n")
		fmt.Fprintf(os.Stderr, "  +/-         - Reflection depth\n")
		fmt.Fprintf(os.Stderr, "  R           - Reset view\n")
		fmt.Fprintf(os.Stderr, "  ?           - Toggle HUD overlay\n")
		fmt.Fprintf(os.Stderr, "  Q/Esc       - Quit\n")
	}
	flag.Parse()

	if flag.NArg() > 1 {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(path string) error {
	s, err := loadScene(path)
	if err != nil {
		return err
	}
	applyFlags(s)
	if err := s.Validate(); err != nil {
		return fmt.Errorf("scene %s: %w", s.Name, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case *view:
		return runViewer(ctx, s, *targetFPS)
	case *serveAddr != "":
		return serve(ctx, s, *serveAddr)
	default:
		return renderFile(ctx, s, *outPath)
	}
}

// loadScene picks the scene source by extension.
func loadScene(path string) (*scene.Scene, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case path == "":
		return scene.Default(), nil
	case ext == ".json":
		return scene.Load(path)
	case ext == ".glb" || ext == ".gltf":
		mesh, err := scene.LoadMesh(path)
		if err != nil {
			return nil, fmt.Errorf("load model: %w", err)
		}
		s := scene.Stage(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
		// Sit the model on the floor where the demo spheres were.
		added, skipped := s.AddMesh(mesh, scene.Placement{
			Position: math3d.P3(0, 0, 5),
			Fit:      2,
			Recenter: true,
		}, scene.Surface{Color: math3d.RGB(200, 200, 200), Specular: 100, Reflectivity: 0.2})
		log.Printf("loaded %s: %d vertices, %d triangles (%d degenerate skipped)",
			filepath.Base(path), mesh.VertexCount(), added, skipped)
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (use .json, .glb or .gltf)", ext)
	}
}

// applyFlags overrides scene settings with any flags the user set.
func applyFlags(s *scene.Scene) {
	st := &s.Settings
	if *width > 0 {
		st.Width = *width
	}
	if *height > 0 {
		st.Height = *height
	}
	if *ss > 0 {
		st.Supersampling = *ss
	}
	if *depth >= 0 {
		st.MaxDepth = *depth
	}
	if *epsilon > 0 {
		st.Epsilon = *epsilon
	}
}

func renderFile(ctx context.Context, s *scene.Scene, out string) error {
	r := render.NewRenderer(trace.NewEngine(s, trace.ConfigFromScene(s)))
	r.Workers = *workers

	fb := render.NewFramebuffer(s.Settings.Width, s.Settings.Height)
	stats, err := r.Render(ctx, fb)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	log.Printf("%s: %dx%d, %d samples/pixel, %d workers, took %s",
		s.Name, fb.Width, fb.Height, stats.Samples, stats.Workers, stats.Elapsed.Round(time.Millisecond))
	log.Printf("rays: %d (%d traced, %d shadow)", stats.Total(), stats.Rays, stats.ShadowRays)

	var note render.Annotation
	if *stamp {
		note = server.Stamp(stats)
	}
	if err := fb.SavePNG(out, note); err != nil {
		return err
	}
	log.Printf("wrote %s", out)
	return nil
}

func serve(ctx context.Context, s *scene.Scene, addr string) error {
	opts := server.DefaultOptions()
	opts.Workers = *workers
	srv := server.New(s, opts)

	errc := make(chan error, 1)
	go func() {
		log.Printf("serving %s on %s", s.Name, addr)
		errc <- srv.Start(addr)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errc
}
