package scene

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/taigrr/shine/pkg/models"
)

// MeshRef references a model file from a scene file.
type MeshRef struct {
	Path string `json:"path"`
	Placement
	Surface Surface `json:"surface"`
}

// document is the on-disk form: a Scene plus mesh references that are
// expanded into triangles on load.
type document struct {
	Scene
	Meshes []MeshRef `json:"meshes,omitempty"`
}

// Load reads a scene file. Mesh paths are resolved relative to the file.
func Load(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scene: %w", err)
	}
	defer f.Close()

	s, err := Decode(f, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// Decode reads a scene from r. Missing camera and settings fields take their
// defaults. The result is validated.
func Decode(r io.Reader, baseDir string) (*Scene, error) {
	doc := document{Scene: Scene{Camera: DefaultCamera(), Settings: DefaultSettings()}}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}

	s := &doc.Scene
	for i, ref := range doc.Meshes {
		if ref.Path == "" {
			return nil, fmt.Errorf("mesh %d: %w: empty path", i, ErrInvalid)
		}
		path := ref.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		mesh, err := LoadMesh(path)
		if err != nil {
			return nil, fmt.Errorf("mesh %d: %w", i, err)
		}
		if added, skipped := s.AddMesh(mesh, ref.Placement, ref.Surface); added == 0 {
			return nil, fmt.Errorf("mesh %d: %w: no usable triangles in %s (%d degenerate)", i, ErrDegenerate, ref.Path, skipped)
		}
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadMesh loads a model file by extension.
func LoadMesh(path string) (*models.Mesh, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".glb", ".gltf":
		return models.LoadGLB(path)
	default:
		return nil, fmt.Errorf("%w: unsupported model format %q", ErrInvalid, ext)
	}
}

// Encode writes s as indented JSON.
func Encode(w io.Writer, s *Scene) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}
	return nil
}

// Save writes s to path. Imported meshes are written as plain triangles.
func Save(path string, s *Scene) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create scene file: %w", err)
	}
	if err := Encode(f, s); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close scene file: %w", err)
	}
	return nil
}
