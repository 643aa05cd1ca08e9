package lg

import (
	"math"
	"testing"
)

// TestFitScaleUp verifies a surface twice the image size maps with
// scale 2 and no letterbox offset.
func TestFitScaleUp(t *testing.T) {
	tr := Fit(400, 300, 800, 600)
	if tr.Scale != 2 {
		t.Errorf("scale = %v, want 2", tr.Scale)
	}
	if tr.OffsetX != 0 || tr.OffsetY != 0 {
		t.Errorf("offset = (%v, %v), want (0, 0)", tr.OffsetX, tr.OffsetY)
	}
}

// TestFitLetterbox verifies a square surface letterboxes a landscape
// image vertically, centered.
func TestFitLetterbox(t *testing.T) {
	tr := Fit(400, 300, 600, 600)
	if tr.Scale != 1.5 {
		t.Errorf("scale = %v, want 1.5", tr.Scale)
	}
	if tr.OffsetX != 0 {
		t.Errorf("offsetX = %v, want 0", tr.OffsetX)
	}
	if tr.OffsetY != 75 {
		t.Errorf("offsetY = %v, want 75", tr.OffsetY)
	}
}

// TestFitCentering verifies that for arbitrary dimensions the offsets
// are non-negative and the scaled image fits inside the surface.
func TestFitCentering(t *testing.T) {
	cases := []struct {
		imgW, imgH, surfW, surfH int
	}{
		{400, 300, 800, 600},
		{400, 300, 600, 600},
		{1920, 1080, 375, 812},
		{100, 1000, 500, 500},
		{7, 13, 1024, 768},
		{5000, 5000, 300, 200},
	}
	for _, tc := range cases {
		tr := Fit(tc.imgW, tc.imgH, tc.surfW, tc.surfH)
		if tr.Scale <= 0 {
			t.Errorf("Fit(%d,%d,%d,%d): scale = %v, want > 0",
				tc.imgW, tc.imgH, tc.surfW, tc.surfH, tr.Scale)
		}
		if tr.OffsetX < 0 || tr.OffsetY < 0 {
			t.Errorf("Fit(%d,%d,%d,%d): offsets (%v, %v), want >= 0",
				tc.imgW, tc.imgH, tc.surfW, tc.surfH, tr.OffsetX, tr.OffsetY)
		}
		const eps = 1e-9
		if float64(tc.imgW)*tr.Scale > float64(tc.surfW)+eps ||
			float64(tc.imgH)*tr.Scale > float64(tc.surfH)+eps {
			t.Errorf("Fit(%d,%d,%d,%d): scaled image exceeds surface",
				tc.imgW, tc.imgH, tc.surfW, tc.surfH)
		}
	}
}

// TestFitDegenerate verifies degenerate dimensions fall back to the
// identity transform instead of producing a zero or negative scale.
func TestFitDegenerate(t *testing.T) {
	for _, tr := range []Transform{
		Fit(0, 300, 800, 600),
		Fit(400, 0, 800, 600),
		Fit(400, 300, 0, 600),
		Fit(-1, -1, -1, -1),
	} {
		if tr != IdentityTransform() {
			t.Errorf("degenerate Fit = %+v, want identity", tr)
		}
	}
}

// TestRoundTrip verifies surface→image recovers the original integer
// image coordinate after image→surface, across a sweep of transforms.
func TestRoundTrip(t *testing.T) {
	transforms := []Transform{
		Fit(400, 300, 800, 600),
		Fit(400, 300, 600, 600),
		Fit(1920, 1080, 375, 812),
		{Scale: 0.33, OffsetX: 17.5, OffsetY: -4.25},
		{Scale: 3.7, OffsetX: 0, OffsetY: 120},
	}
	for _, tr := range transforms {
		for y := 0; y <= 100; y += 7 {
			for x := 0; x <= 100; x += 7 {
				p := Pt(float64(x), float64(y))
				got := tr.ToImage(tr.ToSurface(p))
				if math.Abs(got.X-p.X) > 1 || math.Abs(got.Y-p.Y) > 1 {
					t.Fatalf("round trip %+v: point (%d,%d) came back as (%v,%v)",
						tr, x, y, got.X, got.Y)
				}
			}
		}
	}
}

// TestRectMapping verifies the rectangle variants derive from the point
// mapping.
func TestRectMapping(t *testing.T) {
	tr := Transform{Scale: 2, OffsetX: 10, OffsetY: 20}
	b := BBox{X: 5, Y: 5, Width: 30, Height: 40}

	s := tr.RectToSurface(b)
	if s.X != 20 || s.Y != 30 || s.Width != 60 || s.Height != 80 {
		t.Errorf("RectToSurface = %+v, want {20 30 60 80}", s)
	}

	back := tr.RectToImage(s)
	if back != b {
		t.Errorf("RectToImage(RectToSurface(b)) = %+v, want %+v", back, b)
	}
}

// TestInvert verifies the inverse transform undoes the forward mapping
// without rounding.
func TestInvert(t *testing.T) {
	tr := Fit(400, 300, 600, 600)
	inv := tr.Invert()
	p := Pt(123, 45)
	got := inv.ToSurface(tr.ToSurface(p))
	if math.Abs(got.X-p.X) > 1e-9 || math.Abs(got.Y-p.Y) > 1e-9 {
		t.Errorf("invert round trip = (%v, %v), want (%v, %v)", got.X, got.Y, p.X, p.Y)
	}
}
