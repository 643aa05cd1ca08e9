package lg

import (
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/text/language"
)

// LayerType discriminates the layer metadata union.
type LayerType string

// Layer types.
const (
	LayerText       LayerType = "text"
	LayerObject     LayerType = "object"
	LayerBackground LayerType = "background"
)

// Layer is the common interface over the three layer kinds. Use a type
// switch on the concrete types (*TextLayer, *ObjectLayer,
// *BackgroundLayer) where kind-specific fields are needed.
type Layer interface {
	Type() LayerType
	Base() *BaseLayer
}

// Attribution records which detector produced a layer.
type Attribution struct {
	Model   string         `json:"model,omitempty"`
	Version string         `json:"version,omitempty"`
	Params  map[string]any `json:"params,omitempty"`
}

// BaseLayer holds the metadata every layer carries.
//
// OriginalTransform is fixed at creation and never mutated afterwards;
// all positioning edits go to CurrentTransform, which is what makes the
// edits non-destructive.
type BaseLayer struct {
	ID                int         `json:"id"`
	Kind              LayerType   `json:"type"`
	Name              string      `json:"name"`
	Visible           bool        `json:"visible"`
	Locked            bool        `json:"locked"`
	Opacity           float64     `json:"opacity"`
	BlendMode         string      `json:"blendMode"`
	ZIndex            int         `json:"zIndex"`
	BBox              BBox        `json:"bbox"`
	Mask              *RLE        `json:"mask,omitempty"`
	AreaPct           float64     `json:"areaPct"`
	CreatedAt         time.Time   `json:"createdAt"`
	UpdatedAt         time.Time   `json:"updatedAt"`
	OriginalTransform Transform   `json:"originalTransform"`
	CurrentTransform  Transform   `json:"currentTransform"`
	Source            Attribution `json:"source"`
	Confidence        float64     `json:"confidence,omitempty"`
	Tags              []string    `json:"tags,omitempty"`
	History           *History    `json:"history"`
}

// Type returns the layer kind.
func (b *BaseLayer) Type() LayerType { return b.Kind }

// Base returns the shared metadata.
func (b *BaseLayer) Base() *BaseLayer { return b }

// TextLayer is a layer created from an OCR detection.
type TextLayer struct {
	BaseLayer
	Text        string  `json:"text"`
	Language    string  `json:"language,omitempty"`
	Granularity string  `json:"granularity,omitempty"`
	FontSize    float64 `json:"fontSize"`
	Baseline    float64 `json:"baseline"`
	Ascent      float64 `json:"ascent"`
	Descent     float64 `json:"descent"`
	Angle       float64 `json:"angle"`
}

// SegmentPrompt records one input that drove a segmentation, such as
// the mask handed in by the detector.
type SegmentPrompt struct {
	Kind string `json:"type"`
	Mask *RLE   `json:"mask,omitempty"`
	Text string `json:"text,omitempty"`
}

// ObjectLayer is a layer created from a segmentation detection.
type ObjectLayer struct {
	BaseLayer
	Category   string            `json:"category,omitempty"`
	Prompts    []SegmentPrompt   `json:"prompts,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// BackgroundLayer is the graph's root layer. Foreground content is
// never physically deleted from it; carved-out regions are tracked in
// ExcludedLayers instead.
type BackgroundLayer struct {
	BaseLayer
	ContentHash    string     `json:"contentHash"`
	ExcludedLayers []int      `json:"excludedLayers"`
	Fill           FillParams `json:"fill"`
}

// OCRBlock is the shape an OCR detector hands in.
type OCRBlock struct {
	Text        string  `json:"text"`
	BBox        BBox    `json:"bbox"`
	Confidence  float64 `json:"confidence"`
	Language    string  `json:"language,omitempty"`
	Granularity string  `json:"granularity,omitempty"` // word, line, paragraph
}

// Segment is the shape a segmentation detector hands in.
type Segment struct {
	Mask       RLE               `json:"mask"`
	BBox       BBox              `json:"bbox"`
	Confidence float64           `json:"confidence"`
	Category   string            `json:"category,omitempty"`
	Prompts    []string          `json:"prompts,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Font size estimation bounds, in pixels.
const (
	minFontSize = 12
	maxFontSize = 72
)

// estimateFontMetrics derives text geometry from detector geometry.
// Real shaping is the renderer's concern; these are layout estimates
// from the bounding box alone.
func estimateFontMetrics(b BBox) (size, baseline, ascent, descent float64) {
	size = 0.8 * b.Height
	if size < minFontSize {
		size = minFontSize
	}
	if size > maxFontSize {
		size = maxFontSize
	}
	ascent = 0.8 * size
	descent = 0.2 * size
	baseline = b.Y + ascent
	return size, baseline, ascent, descent
}

// normalizeLanguage canonicalizes a detector-reported language to a
// BCP-47 tag. Junk input degrades to "und" rather than failing the
// layer creation; empty input stays empty.
func normalizeLanguage(s string) string {
	if s == "" {
		return ""
	}
	tag, err := language.Parse(s)
	if err != nil {
		return language.Und.String()
	}
	return tag.String()
}

// MarshalJSON serializes the fill method as its string name.
func (m FillMethod) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts the string names produced by MarshalJSON.
func (m *FillMethod) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "transparent":
		*m = FillTransparent
	case "blur":
		*m = FillBlur
	case "color":
		*m = FillColor
	default:
		return fmt.Errorf("lg: unknown fill method %q", s)
	}
	return nil
}
