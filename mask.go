package lg

import (
	"image"

	"golang.org/x/image/draw"
)

// Mask represents an alpha mask over image pixels.
// Values range from 0 (fully transparent) to 255 (fully opaque).
type Mask struct {
	width  int
	height int
	data   []uint8
}

// NewMask creates a new empty mask with the given dimensions.
// All values are initialized to 0 (fully transparent). Non-positive
// dimensions yield a degenerate 1×1 empty mask, never a panic.
func NewMask(width, height int) *Mask {
	if width < 1 || height < 1 {
		width, height = 1, 1
	}
	return &Mask{
		width:  width,
		height: height,
		data:   make([]uint8, width*height),
	}
}

// NewMaskFromAlpha creates a mask from an image's alpha channel.
func NewMaskFromAlpha(img image.Image) *Mask {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	mask := NewMask(w, h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			_, _, _, a := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			// a is 0-65535, shift by 8 to get 0-255
			mask.data[y*w+x] = uint8(a >> 8)
		}
	}

	return mask
}

// Bounds returns the mask dimensions as an image.Rectangle.
func (m *Mask) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.width, m.height)
}

// Width returns the mask width.
func (m *Mask) Width() int { return m.width }

// Height returns the mask height.
func (m *Mask) Height() int { return m.height }

// At returns the mask value at (x, y).
// Returns 0 for coordinates outside the mask bounds.
func (m *Mask) At(x, y int) uint8 {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return 0
	}
	return m.data[y*m.width+x]
}

// Set sets the mask value at (x, y).
// Coordinates outside the mask bounds are ignored.
func (m *Mask) Set(x, y int, value uint8) {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return
	}
	m.data[y*m.width+x] = value
}

// Fill fills the entire mask with a value.
func (m *Mask) Fill(value uint8) {
	for i := range m.data {
		m.data[i] = value
	}
}

// Invert inverts all mask values (255 - value).
func (m *Mask) Invert() {
	for i := range m.data {
		m.data[i] = 255 - m.data[i]
	}
}

// Clone creates a copy of the mask.
func (m *Mask) Clone() *Mask {
	clone := NewMask(m.width, m.height)
	copy(clone.data, m.data)
	return clone
}

// Data returns the underlying mask data slice.
// This is useful for advanced operations.
func (m *Mask) Data() []uint8 {
	return m.data
}

// ForegroundBounds returns the tight bounding rectangle of all nonzero
// pixels. The second return value is false when the mask is empty.
// Morphology and extraction use this to bound their work to the affected
// area instead of the full canvas.
func (m *Mask) ForegroundBounds() (image.Rectangle, bool) {
	minX, minY := m.width, m.height
	maxX, maxY := -1, -1
	for y := 0; y < m.height; y++ {
		row := m.data[y*m.width : (y+1)*m.width]
		for x, v := range row {
			if v == 0 {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			maxY = y
		}
	}
	if maxX < 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

// ResizeNearest resizes the mask to width×height using nearest-neighbor
// sampling. Binary masks stay binary. Returns a clone when the size
// already matches.
func (m *Mask) ResizeNearest(width, height int) *Mask {
	if width < 1 || height < 1 {
		return NewMask(1, 1)
	}
	if width == m.width && height == m.height {
		return m.Clone()
	}
	src := &image.Alpha{Pix: m.data, Stride: m.width, Rect: m.Bounds()}
	dst := image.NewAlpha(image.Rect(0, 0, width, height))
	draw.NearestNeighbor.Scale(dst, dst.Rect, src, src.Rect, draw.Src, nil)
	return &Mask{width: width, height: height, data: dst.Pix}
}

// ToAlpha wraps the mask as an *image.Alpha sharing the same memory.
func (m *Mask) ToAlpha() *image.Alpha {
	return &image.Alpha{Pix: m.data, Stride: m.width, Rect: m.Bounds()}
}
