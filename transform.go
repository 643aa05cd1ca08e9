package lg

import "math"

// Point represents a 2D point or vector.
type Point struct {
	X, Y float64
}

// Pt is a convenience function to create a Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Transform maps image-pixel coordinates to display-surface coordinates:
// surface = image*Scale + Offset. Scale is strictly positive for every
// transform this package produces.
type Transform struct {
	Scale   float64 `json:"scale"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
}

// IdentityTransform returns the identity mapping.
func IdentityTransform() Transform {
	return Transform{Scale: 1}
}

// Fit computes the aspect-preserving, centered letterbox transform that
// maps an imgW×imgH image onto a surfW×surfH surface:
//
//	scale  = min(surfW/imgW, surfH/imgH)
//	offset = (surface - image*scale) / 2
//
// Degenerate dimensions yield the identity transform.
func Fit(imgW, imgH, surfW, surfH int) Transform {
	if imgW <= 0 || imgH <= 0 || surfW <= 0 || surfH <= 0 {
		return IdentityTransform()
	}
	scale := math.Min(float64(surfW)/float64(imgW), float64(surfH)/float64(imgH))
	return Transform{
		Scale:   scale,
		OffsetX: (float64(surfW) - float64(imgW)*scale) / 2,
		OffsetY: (float64(surfH) - float64(imgH)*scale) / 2,
	}
}

// ToSurface maps an image-space point to surface space.
func (t Transform) ToSurface(p Point) Point {
	return Point{
		X: p.X*t.Scale + t.OffsetX,
		Y: p.Y*t.Scale + t.OffsetY,
	}
}

// ToImage maps a surface-space point back to image space, rounding to
// the nearest integer pixel. Round-tripping an integer image coordinate
// through ToSurface recovers it exactly.
func (t Transform) ToImage(p Point) Point {
	if t.Scale <= 0 {
		return Point{}
	}
	return Point{
		X: math.Round((p.X - t.OffsetX) / t.Scale),
		Y: math.Round((p.Y - t.OffsetY) / t.Scale),
	}
}

// RectToSurface maps an image-space box to surface space.
func (t Transform) RectToSurface(b BBox) BBox {
	min := t.ToSurface(Pt(b.X, b.Y))
	return BBox{
		X:      min.X,
		Y:      min.Y,
		Width:  b.Width * t.Scale,
		Height: b.Height * t.Scale,
	}
}

// RectToImage maps a surface-space box back to image space.
func (t Transform) RectToImage(b BBox) BBox {
	if t.Scale <= 0 {
		return BBox{}
	}
	min := t.ToImage(Pt(b.X, b.Y))
	return BBox{
		X:      min.X,
		Y:      min.Y,
		Width:  math.Round(b.Width / t.Scale),
		Height: math.Round(b.Height / t.Scale),
	}
}

// Invert returns the inverse mapping (surface → image, without the
// integer rounding ToImage applies). Returns the identity transform for
// a degenerate scale.
func (t Transform) Invert() Transform {
	if t.Scale <= 0 {
		return IdentityTransform()
	}
	return Transform{
		Scale:   1 / t.Scale,
		OffsetX: -t.OffsetX / t.Scale,
		OffsetY: -t.OffsetY / t.Scale,
	}
}
