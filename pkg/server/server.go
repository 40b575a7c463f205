// Package server exposes a scene over HTTP: the scene itself, PNG renders of
// it and cumulative ray counters.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"

	"github.com/taigrr/shine/pkg/render"
	"github.com/taigrr/shine/pkg/scene"
	"github.com/taigrr/shine/pkg/trace"
)

// Options bound what a single request may ask for.
type Options struct {
	MaxPixels        int // width*height limit per render
	MaxDepth         int
	MaxSupersampling int
	Workers          int       // 0 means render.DefaultWorkers()
	LogOutput        io.Writer // nil keeps echo's default
}

// DefaultOptions allows up to 2048x2048, eight bounces and 4x4 supersampling.
func DefaultOptions() Options {
	return Options{
		MaxPixels:        2048 * 2048,
		MaxDepth:         8,
		MaxSupersampling: 4,
	}
}

// Server renders one immutable scene on demand.
type Server struct {
	echo  *echo.Echo
	scene *scene.Scene
	opts  Options

	renders    atomic.Uint64
	rays       atomic.Uint64
	shadowRays atomic.Uint64
}

// New builds the HTTP routes for s. s must be validated.
func New(s *scene.Scene, opts Options) *Server {
	srv := &Server{
		echo:  echo.New(),
		scene: s,
		opts:  opts,
	}

	e := srv.echo
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetLevel(log.INFO)
	if opts.LogOutput != nil {
		e.Logger.SetOutput(opts.LogOutput)
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			c.Logger().Infof("%s %s %d %s", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))

	e.GET("/healthz", srv.health)
	e.GET("/scene", srv.getScene)
	e.GET("/render.png", srv.renderPNG)
	e.GET("/stats", srv.stats)

	return srv
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr. It returns nil after Shutdown.
func (s *Server) Start(addr string) error {
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests and waits for active ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getScene(c echo.Context) error {
	return c.JSON(http.StatusOK, s.scene)
}

// renderRequest is the parsed query of /render.png.
type renderRequest struct {
	width, height int
	depth         int
	ss            int
	stamp         bool
}

func (s *Server) parseRender(c echo.Context) (renderRequest, error) {
	st := s.scene.Settings
	req := renderRequest{
		width:  st.Width,
		height: st.Height,
		depth:  st.MaxDepth,
		ss:     st.Supersampling,
	}

	fields := []struct {
		name string
		dst  *int
		min  int
		max  int
	}{
		{"width", &req.width, 1, s.opts.MaxPixels},
		{"height", &req.height, 1, s.opts.MaxPixels},
		{"depth", &req.depth, 0, s.opts.MaxDepth},
		{"ss", &req.ss, 1, s.opts.MaxSupersampling},
	}
	for _, f := range fields {
		raw := c.QueryParam(f.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < f.min || (f.max > 0 && n > f.max) {
			return req, echo.NewHTTPError(http.StatusBadRequest,
				fmt.Sprintf("%s must be an integer in [%d, %d]", f.name, f.min, f.max))
		}
		*f.dst = n
	}
	if s.opts.MaxPixels > 0 && req.width*req.height > s.opts.MaxPixels {
		return req, echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("%dx%d exceeds %d pixels", req.width, req.height, s.opts.MaxPixels))
	}
	req.stamp, _ = strconv.ParseBool(c.QueryParam("stamp"))
	return req, nil
}

func (s *Server) renderPNG(c echo.Context) error {
	req, err := s.parseRender(c)
	if err != nil {
		return err
	}

	cfg := trace.ConfigFromScene(s.scene)
	cfg.MaxDepth = req.depth
	r := &render.Renderer{
		Engine:        trace.NewEngine(s.scene, cfg),
		Supersampling: req.ss,
		Workers:       s.opts.Workers,
	}

	fb := render.NewFramebuffer(req.width, req.height)
	stats, err := r.Render(c.Request().Context(), fb)
	s.record(stats)
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "render cancelled").SetInternal(err)
	}
	c.Logger().Infof("rendered %dx%d depth=%d ss=%d: %d rays in %s",
		req.width, req.height, req.depth, req.ss, stats.Total(), stats.Elapsed.Round(time.Millisecond))

	var note render.Annotation
	if req.stamp {
		note = Stamp(stats)
	}
	var buf bytes.Buffer
	if err := render.EncodePNG(&buf, fb.ToImage(), note); err != nil {
		return err
	}
	c.Response().Header().Set("X-Rays", strconv.FormatUint(stats.Total(), 10))
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

// Stamp formats render statistics as an image annotation.
func Stamp(st render.Stats) render.Annotation {
	return render.Annotation{
		fmt.Sprintf("%d rays (%d shadow)", st.Total(), st.ShadowRays),
		fmt.Sprintf("%s, %d workers", st.Elapsed.Round(time.Millisecond), st.Workers),
	}
}

func (s *Server) record(st render.Stats) {
	s.renders.Add(1)
	s.rays.Add(st.Rays)
	s.shadowRays.Add(st.ShadowRays)
}

// StatsResponse is the body of GET /stats.
type StatsResponse struct {
	Renders    uint64 `json:"renders"`
	Rays       uint64 `json:"rays"`
	ShadowRays uint64 `json:"shadow_rays"`
	Host       Host   `json:"host"`
}

// Host describes the machine doing the rendering.
type Host struct {
	CPUModel    string `json:"cpu_model,omitempty"`
	LogicalCPUs int    `json:"logical_cpus"`
	Workers     int    `json:"workers"`
	TotalMemory uint64 `json:"total_memory,omitempty"`
}

func (s *Server) stats(c echo.Context) error {
	return c.JSON(http.StatusOK, StatsResponse{
		Renders:    s.renders.Load(),
		Rays:       s.rays.Load(),
		ShadowRays: s.shadowRays.Load(),
		Host:       s.host(),
	})
}

// host collects what gopsutil can tell; unavailable fields stay empty.
func (s *Server) host() Host {
	h := Host{Workers: s.opts.Workers}
	if h.Workers <= 0 {
		h.Workers = render.DefaultWorkers()
	}
	if n, err := cpu.Counts(true); err == nil {
		h.LogicalCPUs = n
	}
	if info, err := cpu.Info(); err == nil && len(info) > 0 {
		h.CPUModel = info[0].ModelName
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		h.TotalMemory = vm.Total
	}
	return h
}
