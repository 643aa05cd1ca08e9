package lg

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// SourceImage describes the image a graph was initialized from.
type SourceImage struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Hash   string `json:"hash"`
}

// ExportSettings configure graph serialization.
type ExportSettings struct {
	Format          string `json:"format"`
	Quality         int    `json:"quality"`
	IncludeMetadata bool   `json:"includeMetadata"`
}

// Graph owns a non-destructive layer graph over one source image.
//
// A Graph is created once, initialized from a loaded image, and then
// accumulates layers over its life. Re-initializing replaces the graph
// wholesale (the new-image-loaded lifecycle). Layers are never hard
// deleted by this core: removal is expressed through visibility and the
// background layer's excluded-layer list.
//
// Graph performs no internal locking; callers must serialize concurrent
// edits externally.
type Graph struct {
	clock        Clock
	hasher       Hasher
	newID        func() string
	historyLimit int

	id           string
	name         string
	source       SourceImage
	layers       map[int]Layer
	children     map[int][]int
	backgroundID int
	canvas       Transform
	export       ExportSettings
	nextID       int
	initialized  bool
}

// NewGraph creates an uninitialized graph. Every mutating operation
// fails with ErrNotInitialized until InitFromImage succeeds.
func NewGraph(opts ...GraphOption) *Graph {
	o := defaultGraphOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Graph{
		clock:        o.clock,
		hasher:       o.hasher,
		newID:        o.newID,
		historyLimit: o.historyLimit,
		name:         o.name,
		canvas:       o.canvas,
		export:       o.export,
	}
}

// InitFromImage initializes the graph from a loaded source image,
// creating the sole background layer (full-image bbox, zIndex 0,
// opacity 1, empty excluded list) and returning the fresh graph id.
//
// The content digest is computed from the raw image bytes when
// provided, falling back to the image descriptor otherwise. This is the
// one step that must complete before any layer exists.
//
// Returns a ConfigurationError for non-positive dimensions.
func (g *Graph) InitFromImage(url string, width, height int, content []byte) (string, error) {
	if width <= 0 || height <= 0 {
		return "", &ConfigurationError{
			Field:  "dimensions",
			Reason: fmt.Sprintf("must be positive, got %dx%d", width, height),
		}
	}

	if content == nil {
		content = []byte(fmt.Sprintf("%s:%d:%d", url, width, height))
	}
	hash := g.hasher(content)

	g.id = g.newID()
	g.source = SourceImage{URL: url, Width: width, Height: height, Hash: hash}
	g.layers = make(map[int]Layer)
	g.children = make(map[int][]int)
	g.nextID = 0
	g.initialized = true
	if g.name == "" {
		g.name = url
	}

	bg := &BackgroundLayer{
		BaseLayer: g.newBase(LayerBackground, "Background", BBox{
			Width:  float64(width),
			Height: float64(height),
		}),
		ContentHash:    hash,
		ExcludedLayers: []int{},
	}
	bg.ZIndex = 0
	bg.History.Append(HistoryEntry{Operation: "create", Timestamp: bg.CreatedAt})
	g.layers[bg.ID] = bg
	g.backgroundID = bg.ID
	g.children[bg.ID] = []int{}

	return g.id, nil
}

// newBase builds the shared metadata for a fresh layer.
func (g *Graph) newBase(kind LayerType, name string, box BBox) BaseLayer {
	g.nextID++
	now := g.clock()
	return BaseLayer{
		ID:                g.nextID,
		Kind:              kind,
		Name:              name,
		Visible:           true,
		Opacity:           1,
		BlendMode:         "normal",
		BBox:              box,
		AreaPct:           box.AreaPct(g.source.Width, g.source.Height),
		CreatedAt:         now,
		UpdatedAt:         now,
		OriginalTransform: IdentityTransform(),
		CurrentTransform:  IdentityTransform(),
		History:           NewHistory(g.historyLimit),
	}
}

// LayerOption customizes a layer at creation.
type LayerOption func(*BaseLayer)

// WithLayerName overrides the generated layer name.
func WithLayerName(name string) LayerOption {
	return func(b *BaseLayer) { b.Name = name }
}

// WithTags attaches tags to the layer.
func WithTags(tags ...string) LayerOption {
	return func(b *BaseLayer) { b.Tags = append(b.Tags, tags...) }
}

// WithAttribution records which detector produced the layer.
func WithAttribution(a Attribution) LayerOption {
	return func(b *BaseLayer) { b.Source = a }
}

// CreateTextLayer turns an OCR detection into a text layer: bbox and
// area from the block (clamped to the image), font geometry estimated
// from the box height, zIndex one above every existing layer. Returns
// the new layer id.
func (g *Graph) CreateTextLayer(block OCRBlock, opts ...LayerOption) (int, error) {
	if !g.initialized {
		return 0, ErrNotInitialized
	}

	box := block.BBox.Clamp(g.source.Width, g.source.Height)
	base := g.newBase(LayerText, textLayerName(block.Text), box)
	base.ZIndex = g.maxZIndex() + 1
	base.Confidence = block.Confidence
	for _, opt := range opts {
		opt(&base)
	}

	size, baseline, ascent, descent := estimateFontMetrics(box)
	layer := &TextLayer{
		BaseLayer:   base,
		Text:        block.Text,
		Language:    normalizeLanguage(block.Language),
		Granularity: block.Granularity,
		FontSize:    size,
		Baseline:    baseline,
		Ascent:      ascent,
		Descent:     descent,
	}
	layer.History.Append(HistoryEntry{
		Operation: "create",
		Params:    map[string]any{"text": block.Text, "confidence": block.Confidence},
		Timestamp: layer.CreatedAt,
	})

	g.attach(layer)
	return layer.ID, nil
}

// CreateObjectLayer turns a segmentation detection into an object
// layer. The detector's mask is stored both as the layer mask and as a
// segmentation prompt record. Returns the new layer id.
func (g *Graph) CreateObjectLayer(seg Segment, opts ...LayerOption) (int, error) {
	if !g.initialized {
		return 0, ErrNotInitialized
	}

	box := seg.BBox.Clamp(g.source.Width, g.source.Height)
	name := seg.Category
	if name == "" {
		name = "Object"
	}
	base := g.newBase(LayerObject, name, box)
	base.ZIndex = g.maxZIndex() + 1
	base.Confidence = seg.Confidence
	mask := seg.Mask
	base.Mask = &mask
	for _, opt := range opts {
		opt(&base)
	}

	prompts := []SegmentPrompt{{Kind: "mask", Mask: &mask}}
	for _, p := range seg.Prompts {
		prompts = append(prompts, SegmentPrompt{Kind: "text", Text: p})
	}

	layer := &ObjectLayer{
		BaseLayer:  base,
		Category:   seg.Category,
		Prompts:    prompts,
		Attributes: seg.Attributes,
	}
	layer.History.Append(HistoryEntry{
		Operation: "create",
		Params:    map[string]any{"category": seg.Category, "confidence": seg.Confidence},
		Timestamp: layer.CreatedAt,
	})

	g.attach(layer)
	return layer.ID, nil
}

// attach registers a new foreground layer under the background root.
func (g *Graph) attach(l Layer) {
	b := l.Base()
	g.layers[b.ID] = l
	g.children[g.backgroundID] = append(g.children[g.backgroundID], b.ID)
}

// textLayerName derives a display name from detected text.
func textLayerName(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return "Text"
	}
	const max = 24
	if len(text) > max {
		text = text[:max]
	}
	return "Text: " + text
}

// maxZIndex returns the highest zIndex in the graph, 0 when only the
// background exists.
func (g *Graph) maxZIndex() int {
	max := 0
	for _, l := range g.layers {
		if z := l.Base().ZIndex; z > max {
			max = z
		}
	}
	return max
}

// MoveLayer translates a layer by (dx, dy) image pixels, updating its
// current transform and bbox. The original transform is never touched.
//
// Returns (false, nil) for an unknown or locked layer (UI races are
// expected and absorbed) and ErrNotInitialized before init.
func (g *Graph) MoveLayer(id int, dx, dy float64) (bool, error) {
	if !g.initialized {
		return false, ErrNotInitialized
	}
	l, ok := g.layers[id]
	if !ok {
		Logger().Warn("lg: move on unknown layer", slog.Int("id", id))
		return false, nil
	}
	b := l.Base()
	if b.Locked {
		return false, nil
	}

	b.CurrentTransform.OffsetX += dx
	b.CurrentTransform.OffsetY += dy
	b.BBox.X += dx
	b.BBox.Y += dy
	g.touch(b, HistoryEntry{
		Operation: "move",
		Params:    map[string]any{"dx": dx, "dy": dy},
	})
	return true, nil
}

// ResizeLayer scales a layer by a multiplicative factor about its bbox
// origin, updating its current transform, bbox and area percentage.
//
// Returns (false, nil) for an unknown or locked layer or a non-positive
// factor, and ErrNotInitialized before init.
func (g *Graph) ResizeLayer(id int, factor float64) (bool, error) {
	if !g.initialized {
		return false, ErrNotInitialized
	}
	l, ok := g.layers[id]
	if !ok {
		Logger().Warn("lg: resize on unknown layer", slog.Int("id", id))
		return false, nil
	}
	b := l.Base()
	if b.Locked || factor <= 0 {
		return false, nil
	}

	b.CurrentTransform.Scale *= factor
	b.BBox.Width *= factor
	b.BBox.Height *= factor
	b.AreaPct = b.BBox.AreaPct(g.source.Width, g.source.Height)
	g.touch(b, HistoryEntry{
		Operation: "resize",
		Params:    map[string]any{"factor": factor},
	})
	return true, nil
}

// SetVisible toggles a layer's visibility. Lock state does not block
// visibility changes.
func (g *Graph) SetVisible(id int, visible bool) (bool, error) {
	if !g.initialized {
		return false, ErrNotInitialized
	}
	l, ok := g.layers[id]
	if !ok {
		return false, nil
	}
	b := l.Base()
	b.Visible = visible
	g.touch(b, HistoryEntry{
		Operation: "setVisible",
		Params:    map[string]any{"visible": visible},
	})
	return true, nil
}

// SetLocked toggles a layer's lock, which blocks geometry edits.
func (g *Graph) SetLocked(id int, locked bool) (bool, error) {
	if !g.initialized {
		return false, ErrNotInitialized
	}
	l, ok := g.layers[id]
	if !ok {
		return false, nil
	}
	b := l.Base()
	b.Locked = locked
	g.touch(b, HistoryEntry{
		Operation: "setLocked",
		Params:    map[string]any{"locked": locked},
	})
	return true, nil
}

// SetOpacity sets a layer's opacity, clamped to [0, 1].
func (g *Graph) SetOpacity(id int, opacity float64) (bool, error) {
	if !g.initialized {
		return false, ErrNotInitialized
	}
	l, ok := g.layers[id]
	if !ok {
		return false, nil
	}
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	b := l.Base()
	b.Opacity = opacity
	g.touch(b, HistoryEntry{
		Operation: "setOpacity",
		Params:    map[string]any{"opacity": opacity},
	})
	return true, nil
}

// SetBlendMode sets a layer's compositing blend mode.
func (g *Graph) SetBlendMode(id int, mode string) (bool, error) {
	if !g.initialized {
		return false, ErrNotInitialized
	}
	l, ok := g.layers[id]
	if !ok {
		return false, nil
	}
	b := l.Base()
	b.BlendMode = mode
	g.touch(b, HistoryEntry{
		Operation: "setBlendMode",
		Params:    map[string]any{"blendMode": mode},
	})
	return true, nil
}

// UpdateBackgroundLayer replaces the background's excluded-layer list,
// used whenever a foreground layer is carved out of it. Ids not present
// in the graph are dropped with a warning so the excluded list only
// ever references live layers.
func (g *Graph) UpdateBackgroundLayer(excluded []int) (bool, error) {
	if !g.initialized {
		return false, ErrNotInitialized
	}
	bg := g.layers[g.backgroundID].(*BackgroundLayer)

	valid := make([]int, 0, len(excluded))
	for _, id := range excluded {
		if _, ok := g.layers[id]; ok && id != g.backgroundID {
			valid = append(valid, id)
		} else {
			Logger().Warn("lg: dropping unknown excluded layer", slog.Int("id", id))
		}
	}
	bg.ExcludedLayers = valid
	g.touch(&bg.BaseLayer, HistoryEntry{
		Operation: "updateBackground",
		Params:    map[string]any{"excluded": valid},
	})
	return true, nil
}

// touch stamps an update time and appends a history entry.
func (g *Graph) touch(b *BaseLayer, e HistoryEntry) {
	now := g.clock()
	b.UpdatedAt = now
	e.Timestamp = now
	b.History.Append(e)
}

// Layer returns the layer with the given id.
func (g *Graph) Layer(id int) (Layer, bool) {
	l, ok := g.layers[id]
	return l, ok
}

// Background returns the graph's background layer, or nil before init.
func (g *Graph) Background() *BackgroundLayer {
	if !g.initialized {
		return nil
	}
	return g.layers[g.backgroundID].(*BackgroundLayer)
}

// Layers returns all layers in ascending zIndex order: stable
// compositing order, foreground-most last. Ties break on layer id.
func (g *Graph) Layers() []Layer {
	out := make([]Layer, 0, len(g.layers))
	for _, l := range g.layers {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		bi, bj := out[i].Base(), out[j].Base()
		if bi.ZIndex != bj.ZIndex {
			return bi.ZIndex < bj.ZIndex
		}
		return bi.ID < bj.ID
	})
	return out
}

// LayerCount returns the number of layers, background included.
func (g *Graph) LayerCount() int {
	return len(g.layers)
}

// ID returns the graph id, empty before init.
func (g *Graph) ID() string { return g.id }

// Name returns the graph's display name.
func (g *Graph) Name() string { return g.name }

// Source returns the source image descriptor.
func (g *Graph) Source() SourceImage { return g.source }

// Initialized reports whether InitFromImage has succeeded.
func (g *Graph) Initialized() bool { return g.initialized }

// Canvas returns the current canvas transform.
func (g *Graph) Canvas() Transform { return g.canvas }

// SetCanvasTransform replaces the canvas transform, typically after the
// display surface resizes.
func (g *Graph) SetCanvasTransform(t Transform) {
	if t.Scale <= 0 {
		return
	}
	g.canvas = t
}
