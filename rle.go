package lg

import (
	"encoding/json"
	"log/slog"
)

// rleThreshold is the alpha cutoff for binary classification during
// encoding: alpha > rleThreshold counts as foreground.
const rleThreshold = 128

// RLE is a run-length encoded binary mask.
//
// Counts holds alternating background/foreground run lengths in row-major
// scan order, always starting with background: a mask whose first pixel is
// foreground begins with a zero-length background run. For a well-formed
// value, the counts sum to Size[0]*Size[1].
type RLE struct {
	Counts []int  `json:"counts"`
	Size   [2]int `json:"size"` // width, height
}

// Run is a foreground run in the legacy wire form: Length foreground
// pixels starting at row-major linear index Start.
type Run struct {
	Start  int `json:"start"`
	Length int `json:"length"`
}

// emptyRLE is the degenerate 1×1 empty mask returned for malformed
// input. Layer creation must never fail on a single bad detection.
func emptyRLE() RLE {
	return RLE{Counts: []int{1}, Size: [2]int{1, 1}}
}

// Width returns the encoded mask width.
func (r RLE) Width() int { return r.Size[0] }

// Height returns the encoded mask height.
func (r RLE) Height() int { return r.Size[1] }

// Sum returns the total pixel count covered by the runs.
func (r RLE) Sum() int {
	total := 0
	for _, c := range r.Counts {
		total += c
	}
	return total
}

// ForegroundArea returns the number of foreground pixels.
func (r RLE) ForegroundArea() int {
	area := 0
	for i := 1; i < len(r.Counts); i += 2 {
		area += r.Counts[i]
	}
	return area
}

// Valid reports whether the runs are non-negative and sum to the
// declared size.
func (r RLE) Valid() bool {
	if r.Size[0] < 1 || r.Size[1] < 1 || len(r.Counts) == 0 {
		return false
	}
	total := 0
	for _, c := range r.Counts {
		if c < 0 {
			return false
		}
		total += c
	}
	return total == r.Size[0]*r.Size[1]
}

// EncodeMask run-length encodes a mask. Pixels with alpha above 128 are
// classified as foreground. The scan is row-major; the implicit starting
// value is background, so a mask that begins with foreground produces a
// leading zero count.
func EncodeMask(m *Mask) RLE {
	if m == nil || m.width < 1 || m.height < 1 {
		return emptyRLE()
	}
	counts := make([]int, 0, 8)
	current := false // implicit leading background run
	run := 0
	for _, v := range m.data {
		fg := v > rleThreshold
		if fg != current {
			counts = append(counts, run)
			current = fg
			run = 0
		}
		run++
	}
	counts = append(counts, run)
	return RLE{Counts: counts, Size: [2]int{m.width, m.height}}
}

// Decode reconstructs the full mask raster: 255 for foreground runs,
// 0 for background runs, alternating per run starting with background.
//
// Malformed input (missing size or counts) yields a degenerate 1×1 empty
// mask rather than an error. Runs past the declared size are truncated.
func (r RLE) Decode() *Mask {
	w, h := r.Size[0], r.Size[1]
	if w < 1 || h < 1 || len(r.Counts) == 0 {
		return NewMask(1, 1)
	}
	m := NewMask(w, h)
	total := w * h
	pos := 0
	for i, c := range r.Counts {
		if c < 0 {
			c = 0
		}
		if pos+c > total {
			Logger().Debug("lg: truncating RLE runs past declared size",
				slog.Int("width", w), slog.Int("height", h), slog.Int("excess", pos+c-total))
			c = total - pos
		}
		if i%2 == 1 {
			for j := pos; j < pos+c; j++ {
				m.data[j] = 255
			}
		}
		pos += c
		if pos >= total {
			break
		}
	}
	return m
}

// RLEFromRuns normalizes the legacy {width, height, runs} form into
// canonical alternating-run form. Runs are expected in ascending start
// order; overlapping or out-of-range runs are clamped, never rejected.
func RLEFromRuns(width, height int, runs []Run) RLE {
	if width < 1 || height < 1 {
		return emptyRLE()
	}
	total := width * height
	counts := make([]int, 0, 2*len(runs)+2)
	pos := 0
	for _, run := range runs {
		end := run.Start + run.Length
		if end > total {
			end = total
		}
		start := run.Start
		if start < pos {
			start = pos // overlap with the previous run
		}
		if start >= total {
			break
		}
		length := end - start
		if length <= 0 {
			continue
		}
		if gap := start - pos; gap > 0 || len(counts) == 0 {
			counts = append(counts, gap, length)
		} else {
			counts[len(counts)-1] += length // adjacent runs merge
		}
		pos = start + length
	}
	if pos < total {
		if len(counts) == 0 {
			counts = append(counts, total)
		} else {
			counts = append(counts, total-pos)
		}
	}
	return RLE{Counts: counts, Size: [2]int{width, height}}
}

// UnmarshalJSON accepts both the canonical {counts, size} wire form and
// the legacy {width, height, runs} form, normalizing the latter. Input
// matching neither form decodes to the degenerate 1×1 empty mask;
// unmarshalling never fails on data shape.
func (r *RLE) UnmarshalJSON(data []byte) error {
	var aux struct {
		Counts []int `json:"counts"`
		Size   []int `json:"size"`
		Width  int   `json:"width"`
		Height int   `json:"height"`
		Runs   []Run `json:"runs"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	switch {
	case aux.Counts != nil && len(aux.Size) == 2:
		r.Counts = aux.Counts
		r.Size = [2]int{aux.Size[0], aux.Size[1]}
	case aux.Width > 0 && aux.Height > 0 && aux.Runs != nil:
		*r = RLEFromRuns(aux.Width, aux.Height, aux.Runs)
	default:
		Logger().Warn("lg: malformed RLE input, using empty mask")
		*r = emptyRLE()
	}
	return nil
}
