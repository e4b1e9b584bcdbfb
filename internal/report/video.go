package report

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"

	"tumor-ca/internal/core"
	"tumor-ca/internal/render"

	"github.com/icza/mjpeg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Recorder appends simulation frames to an MJPEG AVI file.
type Recorder struct {
	avi   mjpeg.AviWriter
	size  core.Size
	scale int

	buf    bytes.Buffer
	opts   jpeg.Options
	frames int
}

// NewRecorder creates the video file at path for a grid of the given size.
// Each cell becomes a scale×scale block.
func NewRecorder(path string, size core.Size, scale int, fps int32) (*Recorder, error) {
	if scale < 1 {
		scale = 1
	}
	avi, err := mjpeg.New(path, int32(size.W*scale), int32(size.H*scale), fps)
	if err != nil {
		return nil, fmt.Errorf("failed to create MJPEG writer: %w", err)
	}
	return &Recorder{avi: avi, size: size, scale: scale, opts: jpeg.Options{Quality: 90}}, nil
}

// Frame paints pixels, stamps label in the top-left corner and appends the
// result as one frame.
func (r *Recorder) Frame(pixels []core.Pixel, label string) error {
	img := render.Scale(render.NewRGBA(r.size, pixels, render.Background), r.scale)
	if label != "" {
		addLabel(img, 4, 13, label, color.White)
	}

	r.buf.Reset()
	if err := jpeg.Encode(&r.buf, img, &r.opts); err != nil {
		return fmt.Errorf("failed to encode frame %d: %w", r.frames, err)
	}
	if err := r.avi.AddFrame(r.buf.Bytes()); err != nil {
		return fmt.Errorf("failed to add frame %d: %w", r.frames, err)
	}
	r.frames++
	return nil
}

// Frames is the number of frames written so far.
func (r *Recorder) Frames() int { return r.frames }

// Close finalizes the AVI index.
func (r *Recorder) Close() error { return r.avi.Close() }

func addLabel(img *image.RGBA, x, y int, label string, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(label)
}
