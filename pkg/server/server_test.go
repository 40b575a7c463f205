package server

import (
	"bytes"
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/taigrr/shine/pkg/math3d"
	"github.com/taigrr/shine/pkg/render"
	"github.com/taigrr/shine/pkg/scene"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	s := scene.Default()
	s.Settings.Width, s.Settings.Height = 8, 6
	opts := DefaultOptions()
	opts.MaxPixels = 64 * 64
	opts.Workers = 2
	opts.LogOutput = io.Discard
	return New(s, opts)
}

func get(t *testing.T, srv *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, testServer(t), "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestGetScene(t *testing.T) {
	rec := get(t, testServer(t), "/scene")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	got, err := scene.Decode(bytes.NewReader(rec.Body.Bytes()), "")
	if err != nil {
		t.Fatalf("scene does not round trip: %v", err)
	}
	want := scene.Default()
	if len(got.Spheres) != len(want.Spheres) || len(got.Triangles) != len(want.Triangles) {
		t.Errorf("got %d spheres %d triangles, want %d and %d",
			len(got.Spheres), len(got.Triangles), len(want.Spheres), len(want.Triangles))
	}
	if got.Background != math3d.RGB(92, 195, 206) {
		t.Errorf("background = %v", got.Background)
	}
}

func TestRenderPNG(t *testing.T) {
	tests := []struct {
		name   string
		target string
		w, h   int
	}{
		{"scene size", "/render.png", 8, 6},
		{"explicit size", "/render.png?width=10&height=4&depth=0", 10, 4},
		{"supersampled", "/render.png?width=4&height=4&ss=2", 4, 4},
		{"stamped", "/render.png?width=32&height=32&stamp=true", 32, 32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, testServer(t), tt.target)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
			}
			if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
				t.Errorf("Content-Type = %q", ct)
			}
			img, err := png.Decode(rec.Body)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			b := img.Bounds()
			if b.Dx() != tt.w || b.Dy() != tt.h {
				t.Errorf("size = %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.w, tt.h)
			}
			rays, err := strconv.ParseUint(rec.Header().Get("X-Rays"), 10, 64)
			if err != nil || rays < uint64(tt.w*tt.h) {
				t.Errorf("X-Rays = %q, want at least one per pixel", rec.Header().Get("X-Rays"))
			}
		})
	}
}

func TestRenderPNGRejects(t *testing.T) {
	targets := []string{
		"/render.png?width=0",
		"/render.png?width=abc",
		"/render.png?height=-3",
		"/render.png?width=100&height=100",
		"/render.png?depth=99",
		"/render.png?ss=9",
	}
	srv := testServer(t)
	for _, target := range targets {
		t.Run(target, func(t *testing.T) {
			rec := get(t, srv, target)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
	if got := get(t, srv, "/stats"); !bytes.Contains(got.Body.Bytes(), []byte(`"renders":0`)) {
		t.Errorf("rejected requests were counted: %s", got.Body.String())
	}
}

func TestStatsAccumulate(t *testing.T) {
	srv := testServer(t)
	for range 2 {
		if rec := get(t, srv, "/render.png?width=4&height=4&depth=0"); rec.Code != http.StatusOK {
			t.Fatalf("render status = %d", rec.Code)
		}
	}

	rec := get(t, srv, "/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got StatsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Renders != 2 {
		t.Errorf("Renders = %d, want 2", got.Renders)
	}
	// depth 0: exactly one trace per pixel.
	if got.Rays != 2*16 {
		t.Errorf("Rays = %d, want 32", got.Rays)
	}
	if got.Host.Workers != 2 {
		t.Errorf("Host.Workers = %d, want 2", got.Host.Workers)
	}
}

func TestStamp(t *testing.T) {
	var st render.Stats
	st.Rays, st.ShadowRays, st.Workers = 10, 4, 3
	note := Stamp(st)
	if len(note) != 2 {
		t.Fatalf("len = %d", len(note))
	}
	if note[0] != "14 rays (4 shadow)" {
		t.Errorf("note[0] = %q", note[0])
	}
}
