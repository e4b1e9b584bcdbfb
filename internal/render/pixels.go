package render

import (
	"image"
	"image/color"

	"tumor-ca/internal/core"
)

// Background is the color of an empty cell.
var Background = color.RGBA{A: 255}

// fillPixelsRGBA clears buf (w*h RGBA quads) to bg and paints every pixel
// that lies inside the grid. Out-of-range pixels are ignored.
func fillPixelsRGBA(buf []byte, w, h int, pixels []core.Pixel, bg color.RGBA) {
	for i := 0; i < w*h; i++ {
		base := i * 4
		buf[base+0] = bg.R
		buf[base+1] = bg.G
		buf[base+2] = bg.B
		buf[base+3] = bg.A
	}
	for _, p := range pixels {
		if p.X < 0 || p.X >= w || p.Y < 0 || p.Y >= h {
			continue
		}
		base := (p.Y*w + p.X) * 4
		buf[base+0] = p.C.R
		buf[base+1] = p.C.G
		buf[base+2] = p.C.B
		buf[base+3] = p.C.A
	}
}

// NewRGBA paints pixels onto a fresh image of the given size, one image pixel
// per cell.
func NewRGBA(size core.Size, pixels []core.Pixel, bg color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size.W, size.H))
	fillPixelsRGBA(img.Pix, size.W, size.H, pixels, bg)
	return img
}

// Scale enlarges img by an integer factor using nearest-neighbour sampling.
func Scale(img *image.RGBA, factor int) *image.RGBA {
	if factor <= 1 {
		return img
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	for y := 0; y < out.Rect.Dy(); y++ {
		src := img.Pix[(y/factor)*img.Stride:]
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < out.Rect.Dx(); x++ {
			copy(dst[x*4:x*4+4], src[(x/factor)*4:(x/factor)*4+4])
		}
	}
	return out
}
