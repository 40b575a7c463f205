package render

import (
	"fmt"
	"image"
	"io"

	"github.com/fogleman/gg"
)

// Annotation is diagnostic text stamped in the bottom-left corner of a saved
// image. An empty annotation leaves the image untouched.
type Annotation []string

// Annotate returns a copy of img with the annotation drawn over a dark band.
func Annotate(img *image.RGBA, note Annotation) *gg.Context {
	dc := gg.NewContextForRGBA(cloneRGBA(img))
	if len(note) == 0 {
		return dc
	}

	const (
		pad     = 4.0
		spacing = 1.2
	)
	var w, lh float64
	for _, line := range note {
		lw, h := dc.MeasureString(line)
		w, lh = max(w, lw), max(lh, h)
	}
	bh := lh*spacing*float64(len(note)) + 2*pad
	top := float64(dc.Height()) - bh

	dc.SetRGBA(0, 0, 0, 0.6)
	dc.DrawRectangle(0, top, w+2*pad, bh)
	dc.Fill()

	dc.SetRGB(1, 1, 1)
	for i, line := range note {
		// DrawString positions the baseline.
		dc.DrawString(line, pad, top+pad+lh*spacing*float64(i)+lh)
	}
	return dc
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Rect)
	copy(dst.Pix, src.Pix)
	return dst
}

// SavePNG writes img to path as a PNG, stamping note if it is non-empty.
func SavePNG(path string, img *image.RGBA, note Annotation) error {
	if err := Annotate(img, note).SavePNG(path); err != nil {
		return fmt.Errorf("save png: %w", err)
	}
	return nil
}

// EncodePNG writes img to w as a PNG, stamping note if it is non-empty.
func EncodePNG(w io.Writer, img *image.RGBA, note Annotation) error {
	if err := Annotate(img, note).EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// SavePNG saves the framebuffer as a PNG file.
func (fb *Framebuffer) SavePNG(path string, note Annotation) error {
	return SavePNG(path, fb.ToImage(), note)
}
