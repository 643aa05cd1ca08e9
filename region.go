package lg

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

// Region is the result of a non-destructive extraction: the pulled
// pixels, the clamped box they came from, and the mask that shaped them
// (nil when the extraction was unmasked).
type Region struct {
	Raster *Raster
	BBox   BBox
	Mask   *Mask
}

// ExtractRegion pulls a rectangular region out of a source raster.
//
// The box is clamped to the source bounds, never rejected; a fully
// out-of-range box yields a zero-size region. When a mask is supplied
// and its dimensions differ from the clamped region, it is resized with
// nearest-neighbor sampling first. Masking zeroes alpha wherever the
// mask is 0 while leaving RGB untouched, so the pixel data under
// invisible alpha stays recoverable.
func ExtractRegion(src *Raster, box BBox, mask *Mask) Region {
	rect := box.Clamp(src.width, src.height).Rect().Intersect(src.Bounds())
	sub := src.SubRaster(rect)

	if mask != nil && sub.width > 0 && sub.height > 0 {
		if mask.width != sub.width || mask.height != sub.height {
			mask = mask.ResizeNearest(sub.width, sub.height)
		}
		for y := 0; y < sub.height; y++ {
			for x := 0; x < sub.width; x++ {
				if mask.At(x, y) == 0 {
					sub.data[(y*sub.width+x)*4+3] = 0
				}
			}
		}
	}

	return Region{Raster: sub, BBox: BBoxFromRect(rect), Mask: mask}
}

// FillMethod selects how FillHole patches a vacated region.
type FillMethod uint8

const (
	// FillTransparent clears the region to zero alpha.
	FillTransparent FillMethod = iota

	// FillBlur replaces the region with a box-blurred copy of itself so
	// the vacated area still reads as plausible background.
	FillBlur

	// FillColor performs a flat color fill.
	FillColor
)

// String returns a string representation of the fill method.
func (m FillMethod) String() string {
	switch m {
	case FillTransparent:
		return "transparent"
	case FillBlur:
		return "blur"
	case FillColor:
		return "color"
	default:
		return "unknown"
	}
}

// FillParams configures FillHole. Radius applies to FillBlur and is
// clamped to [1, 32]; Color applies to FillColor.
type FillParams struct {
	Method FillMethod
	Radius int
	Color  color.RGBA
}

// FillHole patches the given box in the source raster in place, using
// the configured method. The box is clamped to the source bounds.
func FillHole(src *Raster, box BBox, p FillParams) {
	rect := box.Clamp(src.width, src.height).Rect().Intersect(src.Bounds())
	if rect.Empty() {
		return
	}
	switch p.Method {
	case FillTransparent:
		src.ZeroAlphaRect(rect)
	case FillColor:
		src.FillRect(rect, p.Color.R, p.Color.G, p.Color.B, p.Color.A)
	case FillBlur:
		sub := src.SubRaster(rect)
		boxBlur(sub, p.Radius)
		src.WriteSub(sub, rect.Min.X, rect.Min.Y)
	}
}

// boxBlur applies a two-pass separable box blur in place: horizontal
// then vertical, unweighted mean over a (2*radius+1) window, sampling
// clamped at the edges. Uniform input is a fixed point.
func boxBlur(r *Raster, radius int) {
	if r.width == 0 || r.height == 0 {
		return
	}
	if radius < 1 {
		radius = 1
	}
	if radius > 32 {
		radius = 32
	}

	tmp := make([]uint8, len(r.data))

	// Pass 1: horizontal, r.data -> tmp.
	for y := 0; y < r.height; y++ {
		for x := 0; x < r.width; x++ {
			var sum [4]int
			for k := -radius; k <= radius; k++ {
				sx := clampInt(x+k, 0, r.width-1)
				i := (y*r.width + sx) * 4
				sum[0] += int(r.data[i+0])
				sum[1] += int(r.data[i+1])
				sum[2] += int(r.data[i+2])
				sum[3] += int(r.data[i+3])
			}
			n := 2*radius + 1
			i := (y*r.width + x) * 4
			tmp[i+0] = uint8(sum[0] / n)
			tmp[i+1] = uint8(sum[1] / n)
			tmp[i+2] = uint8(sum[2] / n)
			tmp[i+3] = uint8(sum[3] / n)
		}
	}

	// Pass 2: vertical, tmp -> r.data.
	for y := 0; y < r.height; y++ {
		for x := 0; x < r.width; x++ {
			var sum [4]int
			for k := -radius; k <= radius; k++ {
				sy := clampInt(y+k, 0, r.height-1)
				i := (sy*r.width + x) * 4
				sum[0] += int(tmp[i+0])
				sum[1] += int(tmp[i+1])
				sum[2] += int(tmp[i+2])
				sum[3] += int(tmp[i+3])
			}
			n := 2*radius + 1
			i := (y*r.width + x) * 4
			r.data[i+0] = uint8(sum[0] / n)
			r.data[i+1] = uint8(sum[1] / n)
			r.data[i+2] = uint8(sum[2] / n)
			r.data[i+3] = uint8(sum[3] / n)
		}
	}
}

// ScaleRaster resamples a raster by a scalar factor with Catmull-Rom
// interpolation, so an image-space extraction can be redrawn at the
// viewer's current display scale. A non-positive factor yields an empty
// raster; factor 1 returns a plain copy.
func ScaleRaster(src *Raster, factor float64) *Raster {
	if factor <= 0 || src.width == 0 || src.height == 0 {
		return NewRaster(0, 0)
	}
	if factor == 1 {
		return src.Clone()
	}
	w := int(math.Max(1, math.Round(float64(src.width)*factor)))
	h := int(math.Max(1, math.Round(float64(src.height)*factor)))

	srcImg := &image.RGBA{Pix: src.data, Stride: src.width * 4, Rect: src.Bounds()}
	dstImg := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dstImg, dstImg.Rect, srcImg, srcImg.Rect, draw.Src, nil)

	return &Raster{width: w, height: h, data: dstImg.Pix}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
