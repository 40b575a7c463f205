package render

import (
	"context"
	"errors"
	"os"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/cpu"
	"github.com/taigrr/shine/pkg/math3d"
	"github.com/taigrr/shine/pkg/trace"
)

// WorkersEnv overrides the default worker count when set to a positive
// integer.
const WorkersEnv = "SHINE_WORKERS"

const maxWorkers = 256

// ErrNoEngine is returned by Render when the renderer has no engine.
var ErrNoEngine = errors.New("render: no engine")

// DefaultWorkers returns the worker count for a render: WorkersEnv if set,
// otherwise the number of logical CPUs.
func DefaultWorkers() int {
	if env := os.Getenv(WorkersEnv); env != "" {
		if n, err := strconv.Atoi(env); err == nil && n > 0 {
			return min(n, maxWorkers)
		}
	}
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		return n
	}
	return max(runtime.NumCPU(), 1)
}

// Stats summarizes one Render call.
type Stats struct {
	trace.Stats
	Pixels  int
	Samples int // primary rays per pixel
	Workers int
	Elapsed time.Duration
}

// Renderer fills a framebuffer by tracing every pixel.
type Renderer struct {
	Engine *trace.Engine
	// Supersampling is the per-axis sample count; each pixel averages
	// Supersampling² primary rays. Values below 1 mean 1.
	Supersampling int
	// Workers is the number of goroutines; 0 means DefaultWorkers().
	Workers int
	// Progress, if set, is called after each finished row with the number of
	// rows done so far. It is called from worker goroutines.
	Progress func(done, total int)
}

// NewRenderer creates a renderer using the engine's scene settings.
func NewRenderer(e *trace.Engine) *Renderer {
	return &Renderer{
		Engine:        e,
		Supersampling: e.Scene().Settings.Supersampling,
	}
}

// Render traces every pixel of fb. Rows are handed out to a pool of workers;
// ctx is checked between rows. On cancellation the rows already finished stay
// in fb and ctx.Err() is returned.
func (r *Renderer) Render(ctx context.Context, fb *Framebuffer) (Stats, error) {
	if r.Engine == nil {
		return Stats{}, ErrNoEngine
	}

	workers := r.Workers
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	workers = min(workers, max(fb.Height, 1))
	ss := max(r.Supersampling, 1)

	start := time.Now()
	before := r.Engine.Stats()

	rows := make(chan int, fb.Height)
	for y := range fb.Height {
		rows <- y
	}
	close(rows)

	var (
		wg   sync.WaitGroup
		done atomic.Int64
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for y := range rows {
				if ctx.Err() != nil {
					return
				}
				for x := range fb.Width {
					fb.SetColor(x, y, r.Sample(x, y, fb.Width, fb.Height, ss))
				}
				n := done.Add(1)
				if r.Progress != nil {
					r.Progress(int(n), fb.Height)
				}
			}
		}()
	}
	wg.Wait()

	after := r.Engine.Stats()
	stats := Stats{
		Stats: trace.Stats{
			Rays:       after.Rays - before.Rays,
			ShadowRays: after.ShadowRays - before.ShadowRays,
		},
		Pixels:  fb.Width * fb.Height,
		Samples: ss * ss,
		Workers: workers,
		Elapsed: time.Since(start),
	}
	return stats, ctx.Err()
}

// Sample returns the color of pixel (x, y): the mean of ss×ss primary rays
// at sub-pixel offsets i/ss, j/ss. With ss = 1 this is a single ray through
// the pixel's top-left corner.
func (r *Renderer) Sample(x, y, width, height, ss int) math3d.Color {
	if ss <= 1 {
		return r.Engine.RenderPixel(float64(x), float64(y), width, height)
	}

	var sum math3d.Vec3
	step := 1 / float64(ss)
	for i := range ss {
		sx := float64(x) + step*float64(i)
		for j := range ss {
			sy := float64(y) + step*float64(j)
			sum = sum.Add(r.Engine.RenderPixel(sx, sy, width, height).Vec())
		}
	}
	return math3d.ColorFromVec(sum.Div(float64(ss * ss)))
}
