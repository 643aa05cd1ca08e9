package lg

import (
	"image"
	"math"
)

// Morphological operations over decoded masks. All operations are pure:
// the input mask is never modified, and n=0 (or radius=0) returns an
// unchanged copy. Work is bounded to the foreground bounding box rather
// than the full canvas, so cost scales with the affected area.

// Dilate grows the foreground: n iterations, each replacing every
// pixel's value with the maximum over its 3×3 neighborhood. Border
// pixels are left unchanged to avoid out-of-range reads.
func Dilate(m *Mask, n int) *Mask {
	return morph(m, n, maxNeighborhood)
}

// Erode shrinks the foreground: n iterations, each replacing every
// pixel's value with the minimum over its 3×3 neighborhood. Border
// pixels are left unchanged.
func Erode(m *Mask, n int) *Mask {
	return morph(m, n, minNeighborhood)
}

// Close fills gaps smaller than the kernel: dilate then erode.
func Close(m *Mask, n int) *Mask {
	return Erode(Dilate(m, n), n)
}

// Open removes speckles smaller than the kernel: erode then dilate.
func Open(m *Mask, n int) *Mask {
	return Dilate(Erode(m, n), n)
}

func maxNeighborhood(src *Mask, x, y int) uint8 {
	best := uint8(0)
	for dy := -1; dy <= 1; dy++ {
		row := src.data[(y+dy)*src.width:]
		for dx := -1; dx <= 1; dx++ {
			if v := row[x+dx]; v > best {
				best = v
			}
		}
	}
	return best
}

func minNeighborhood(src *Mask, x, y int) uint8 {
	best := uint8(255)
	for dy := -1; dy <= 1; dy++ {
		row := src.data[(y+dy)*src.width:]
		for dx := -1; dx <= 1; dx++ {
			if v := row[x+dx]; v < best {
				best = v
			}
		}
	}
	return best
}

func morph(m *Mask, n int, kernel func(*Mask, int, int) uint8) *Mask {
	if m == nil {
		return NewMask(1, 1)
	}
	out := m.Clone()
	if n <= 0 || m.width < 3 || m.height < 3 {
		return out
	}

	// Only the interior can change, and only within the foreground
	// bounds grown by the iteration count.
	interior := image.Rect(1, 1, m.width-1, m.height-1)
	fg, ok := m.ForegroundBounds()
	if !ok {
		// No foreground: dilation and erosion are both identities.
		return out
	}
	window := fg.Inset(-n - 1).Intersect(interior)

	src := out.Clone()
	for i := 0; i < n; i++ {
		for y := window.Min.Y; y < window.Max.Y; y++ {
			for x := window.Min.X; x < window.Max.X; x++ {
				out.data[y*m.width+x] = kernel(src, x, y)
			}
		}
		src, out = out, src
	}
	// The loop leaves the latest result in src after the final swap.
	return src
}

// Feather softens the mask edge: every foreground pixel's alpha becomes
// 255 * min(d, radius) / radius, where d is the Euclidean distance to
// the nearest background pixel within the radius window. Pixels at the
// boundary ramp toward 0; pixels at least radius away from any
// background stay fully opaque. radius=0 is the identity.
func Feather(m *Mask, radius int) *Mask {
	if m == nil {
		return NewMask(1, 1)
	}
	out := m.Clone()
	if radius <= 0 {
		return out
	}

	fg, ok := m.ForegroundBounds()
	if !ok {
		return out
	}

	r := float64(radius)
	for y := fg.Min.Y; y < fg.Max.Y; y++ {
		for x := fg.Min.X; x < fg.Max.X; x++ {
			if m.data[y*m.width+x] == 0 {
				continue
			}
			d := distanceToBackground(m, x, y, radius)
			out.data[y*m.width+x] = uint8(math.Round(255 * math.Min(d, r) / r))
		}
	}
	return out
}

// distanceToBackground finds the Euclidean distance from (x, y) to the
// nearest zero-alpha pixel within the radius window. Pixels outside the
// mask count as background, so mask edges feather too. Returns radius
// when no background pixel is in range.
func distanceToBackground(m *Mask, x, y, radius int) float64 {
	best := float64(radius)
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if m.At(x+dx, y+dy) != 0 {
				continue
			}
			d := math.Hypot(float64(dx), float64(dy))
			if d < best {
				best = d
			}
		}
	}
	return best
}
