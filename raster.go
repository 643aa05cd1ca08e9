package lg

import (
	"image"
)

// Raster represents a rectangular RGBA pixel buffer.
// It is the working surface for region extraction and hole filling.
type Raster struct {
	width  int
	height int
	data   []uint8 // RGBA format, 4 bytes per pixel
}

// NewRaster creates a new raster with the given dimensions.
// All pixels start fully transparent. Non-positive dimensions yield an
// empty 0×0 raster.
func NewRaster(width, height int) *Raster {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Raster{
		width:  width,
		height: height,
		data:   make([]uint8, width*height*4),
	}
}

// Width returns the width of the raster.
func (r *Raster) Width() int {
	return r.width
}

// Height returns the height of the raster.
func (r *Raster) Height() int {
	return r.height
}

// Data returns the raw pixel data (RGBA format).
func (r *Raster) Data() []uint8 {
	return r.data
}

// Bounds returns the raster dimensions as an image.Rectangle.
func (r *Raster) Bounds() image.Rectangle {
	return image.Rect(0, 0, r.width, r.height)
}

// SetPixel sets a single pixel. Out-of-bounds coordinates are ignored.
func (r *Raster) SetPixel(x, y int, red, green, blue, alpha uint8) {
	if x < 0 || x >= r.width || y < 0 || y >= r.height {
		return
	}
	i := (y*r.width + x) * 4
	r.data[i+0] = red
	r.data[i+1] = green
	r.data[i+2] = blue
	r.data[i+3] = alpha
}

// Pixel returns the RGBA components of a single pixel.
// Returns zeros for coordinates outside the raster bounds.
func (r *Raster) Pixel(x, y int) (red, green, blue, alpha uint8) {
	if x < 0 || x >= r.width || y < 0 || y >= r.height {
		return 0, 0, 0, 0
	}
	i := (y*r.width + x) * 4
	return r.data[i+0], r.data[i+1], r.data[i+2], r.data[i+3]
}

// Alpha returns the alpha component of a single pixel.
// Returns 0 for coordinates outside the raster bounds.
func (r *Raster) Alpha(x, y int) uint8 {
	if x < 0 || x >= r.width || y < 0 || y >= r.height {
		return 0
	}
	return r.data[(y*r.width+x)*4+3]
}

// SetAlpha sets the alpha component of a single pixel, leaving RGB
// untouched. Out-of-bounds coordinates are ignored.
func (r *Raster) SetAlpha(x, y int, alpha uint8) {
	if x < 0 || x >= r.width || y < 0 || y >= r.height {
		return
	}
	r.data[(y*r.width+x)*4+3] = alpha
}

// Fill fills the entire raster with a color.
func (r *Raster) Fill(red, green, blue, alpha uint8) {
	for i := 0; i < len(r.data); i += 4 {
		r.data[i+0] = red
		r.data[i+1] = green
		r.data[i+2] = blue
		r.data[i+3] = alpha
	}
}

// FillRect fills a rectangle with a color. The rectangle is clamped to
// the raster bounds.
func (r *Raster) FillRect(rect image.Rectangle, red, green, blue, alpha uint8) {
	rect = rect.Intersect(r.Bounds())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			i := (y*r.width + x) * 4
			r.data[i+0] = red
			r.data[i+1] = green
			r.data[i+2] = blue
			r.data[i+3] = alpha
		}
	}
}

// ZeroAlphaRect sets alpha to 0 over a rectangle, leaving RGB untouched
// so the pixel data stays recoverable. The rectangle is clamped to the
// raster bounds.
func (r *Raster) ZeroAlphaRect(rect image.Rectangle) {
	rect = rect.Intersect(r.Bounds())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			r.data[(y*r.width+x)*4+3] = 0
		}
	}
}

// Clone creates a deep copy of the raster.
func (r *Raster) Clone() *Raster {
	clone := NewRaster(r.width, r.height)
	copy(clone.data, r.data)
	return clone
}

// SubRaster copies a rectangle out of the raster. The rectangle is
// clamped to the raster bounds; a fully out-of-range rectangle yields
// an empty 0×0 raster.
func (r *Raster) SubRaster(rect image.Rectangle) *Raster {
	rect = rect.Intersect(r.Bounds())
	sub := NewRaster(rect.Dx(), rect.Dy())
	for y := 0; y < sub.height; y++ {
		srcOff := ((rect.Min.Y+y)*r.width + rect.Min.X) * 4
		dstOff := y * sub.width * 4
		copy(sub.data[dstOff:dstOff+sub.width*4], r.data[srcOff:srcOff+sub.width*4])
	}
	return sub
}

// WriteSub writes another raster into this one at (x, y). Pixels that
// fall outside the destination bounds are dropped.
func (r *Raster) WriteSub(sub *Raster, x, y int) {
	if sub == nil {
		return
	}
	dst := image.Rect(x, y, x+sub.width, y+sub.height).Intersect(r.Bounds())
	for dy := dst.Min.Y; dy < dst.Max.Y; dy++ {
		sy := dy - y
		srcOff := (sy*sub.width + (dst.Min.X - x)) * 4
		dstOff := (dy*r.width + dst.Min.X) * 4
		copy(r.data[dstOff:dstOff+dst.Dx()*4], sub.data[srcOff:srcOff+dst.Dx()*4])
	}
}

// ToImage converts the raster to an image.RGBA sharing no memory.
func (r *Raster) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	copy(img.Pix, r.data)
	return img
}

// RasterFromImage creates a raster from an image.
func RasterFromImage(img image.Image) *Raster {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	r := NewRaster(width, height)

	if rgba, ok := img.(*image.RGBA); ok && rgba.Stride == width*4 {
		copy(r.data, rgba.Pix)
		return r
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			cr, cg, cb, ca := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			i := (y*width + x) * 4
			r.data[i+0] = uint8(cr >> 8)
			r.data[i+1] = uint8(cg >> 8)
			r.data[i+2] = uint8(cb >> 8)
			r.data[i+3] = uint8(ca >> 8)
		}
	}
	return r
}
