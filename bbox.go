package lg

import (
	"image"
	"math"
)

// BBox is an axis-aligned bounding box in pixel units.
// Width and Height are always non-negative.
type BBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Area returns the box area in square pixels.
func (b BBox) Area() float64 {
	return b.Width * b.Height
}

// AreaPct returns the box area as a percentage of an imgW×imgH image.
// Returns 0 for a degenerate image.
func (b BBox) AreaPct(imgW, imgH int) float64 {
	if imgW <= 0 || imgH <= 0 {
		return 0
	}
	return 100 * b.Area() / (float64(imgW) * float64(imgH))
}

// Empty reports whether the box has zero area.
func (b BBox) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}

// Clamp restricts the box to [0,width) × [0,height).
// A box fully outside the bounds collapses to a zero-size box on the
// nearest edge; Clamp never fails.
func (b BBox) Clamp(width, height int) BBox {
	x0 := math.Max(0, math.Min(b.X, float64(width)))
	y0 := math.Max(0, math.Min(b.Y, float64(height)))
	x1 := math.Max(x0, math.Min(b.X+b.Width, float64(width)))
	y1 := math.Max(y0, math.Min(b.Y+b.Height, float64(height)))
	return BBox{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Intersect returns the overlapping region of two boxes, or a zero-size
// box at the origin of b if they do not overlap.
func (b BBox) Intersect(o BBox) BBox {
	x0 := math.Max(b.X, o.X)
	y0 := math.Max(b.Y, o.Y)
	x1 := math.Min(b.X+b.Width, o.X+o.Width)
	y1 := math.Min(b.Y+b.Height, o.Y+o.Height)
	if x1 <= x0 || y1 <= y0 {
		return BBox{X: b.X, Y: b.Y}
	}
	return BBox{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Rect converts the box to an integer image.Rectangle.
// Edges are rounded to the nearest pixel.
func (b BBox) Rect() image.Rectangle {
	x0 := int(math.Round(b.X))
	y0 := int(math.Round(b.Y))
	x1 := int(math.Round(b.X + b.Width))
	y1 := int(math.Round(b.Y + b.Height))
	return image.Rect(x0, y0, x1, y1)
}

// BBoxFromRect converts an integer rectangle to a BBox.
func BBoxFromRect(r image.Rectangle) BBox {
	r = r.Canon()
	return BBox{
		X:      float64(r.Min.X),
		Y:      float64(r.Min.Y),
		Width:  float64(r.Dx()),
		Height: float64(r.Dy()),
	}
}
