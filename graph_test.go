package lg

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

// newTestGraph returns an initialized 400×300 graph with deterministic
// clock, hasher and id generation.
func newTestGraph(t *testing.T) *Graph {
	t.Helper()
	g := NewGraph(
		WithClock(func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }),
		WithHasher(func([]byte) string { return "testhash" }),
		WithGraphID(func() string { return "graph-1" }),
	)
	if _, err := g.InitFromImage("img.png", 400, 300, nil); err != nil {
		t.Fatalf("InitFromImage: %v", err)
	}
	return g
}

// TestInitFromImage verifies initialization yields exactly one layer:
// the background, covering the full image at 100% area.
func TestInitFromImage(t *testing.T) {
	g := newTestGraph(t)

	if g.ID() != "graph-1" {
		t.Errorf("graph id = %q, want graph-1", g.ID())
	}
	if got := g.LayerCount(); got != 1 {
		t.Fatalf("layer count = %d, want 1", got)
	}

	bg := g.Background()
	if bg == nil {
		t.Fatal("no background layer")
	}
	if bg.Kind != LayerBackground {
		t.Errorf("background type = %q, want %q", bg.Kind, LayerBackground)
	}
	if bg.BBox != (BBox{X: 0, Y: 0, Width: 400, Height: 300}) {
		t.Errorf("background bbox = %+v, want full image", bg.BBox)
	}
	if bg.AreaPct != 100 {
		t.Errorf("background areaPct = %v, want 100", bg.AreaPct)
	}
	if bg.ZIndex != 0 {
		t.Errorf("background zIndex = %d, want 0", bg.ZIndex)
	}
	if bg.Opacity != 1 || !bg.Visible {
		t.Error("background should start visible at full opacity")
	}
	if len(bg.ExcludedLayers) != 0 {
		t.Errorf("excluded layers = %v, want empty", bg.ExcludedLayers)
	}
	if bg.ContentHash != "testhash" {
		t.Errorf("content hash = %q, want testhash", bg.ContentHash)
	}
	if bg.History.Len() != 1 {
		t.Errorf("background history = %d entries, want 1 (create)", bg.History.Len())
	}
}

// TestInitInvalidDimensions verifies non-positive dimensions fail with
// a ConfigurationError.
func TestInitInvalidDimensions(t *testing.T) {
	cases := []struct{ w, h int }{{0, 300}, {400, 0}, {-1, 300}, {0, 0}}
	for _, tc := range cases {
		g := NewGraph()
		_, err := g.InitFromImage("img.png", tc.w, tc.h, nil)
		var ce *ConfigurationError
		if !errors.As(err, &ce) {
			t.Errorf("InitFromImage(%d, %d) error = %v, want ConfigurationError", tc.w, tc.h, err)
		}
		if g.Initialized() {
			t.Error("graph should stay uninitialized after a failed init")
		}
	}
}

// TestOperationsBeforeInit verifies mutations on an uninitialized graph
// fail hard with ErrNotInitialized.
func TestOperationsBeforeInit(t *testing.T) {
	g := NewGraph()

	if _, err := g.CreateTextLayer(OCRBlock{}); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("CreateTextLayer error = %v, want ErrNotInitialized", err)
	}
	if _, err := g.CreateObjectLayer(Segment{}); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("CreateObjectLayer error = %v, want ErrNotInitialized", err)
	}
	if _, err := g.MoveLayer(1, 1, 1); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("MoveLayer error = %v, want ErrNotInitialized", err)
	}
	if _, err := g.UpdateBackgroundLayer(nil); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("UpdateBackgroundLayer error = %v, want ErrNotInitialized", err)
	}
	if _, err := g.ExportJSON(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("ExportJSON error = %v, want ErrNotInitialized", err)
	}
}

// TestZIndexMonotonic verifies zIndex strictly increases across
// successive layer creations, regardless of kind.
func TestZIndexMonotonic(t *testing.T) {
	g := newTestGraph(t)

	prev := 0
	for i := 0; i < 5; i++ {
		var id int
		if i%2 == 0 {
			id, _ = g.CreateTextLayer(OCRBlock{
				Text: "hi", BBox: BBox{X: 10, Y: 10, Width: 50, Height: 20},
			})
		} else {
			id, _ = g.CreateObjectLayer(Segment{
				BBox: BBox{X: 20, Y: 20, Width: 40, Height: 40},
			})
		}
		l, ok := g.Layer(id)
		if !ok {
			t.Fatalf("layer %d missing after creation", id)
		}
		if z := l.Base().ZIndex; z <= prev {
			t.Errorf("zIndex %d not strictly above previous %d", z, prev)
		} else {
			prev = z
		}
	}
}

// TestCreateTextLayer verifies bbox derivation, the font size clamp and
// the recorded confidence.
func TestCreateTextLayer(t *testing.T) {
	g := newTestGraph(t)

	cases := []struct {
		boxHeight float64
		wantSize  float64
	}{
		{10, 12},  // 0.8*10 = 8, clamped up
		{50, 40},  // 0.8*50 in range
		{200, 72}, // 0.8*200 = 160, clamped down
	}
	for _, tc := range cases {
		id, err := g.CreateTextLayer(OCRBlock{
			Text:       "hello",
			BBox:       BBox{X: 10, Y: 10, Width: 100, Height: tc.boxHeight},
			Confidence: 0.9,
		})
		if err != nil {
			t.Fatalf("CreateTextLayer: %v", err)
		}
		l, _ := g.Layer(id)
		tl, ok := l.(*TextLayer)
		if !ok {
			t.Fatalf("layer type = %T, want *TextLayer", l)
		}
		if tl.FontSize != tc.wantSize {
			t.Errorf("bbox height %v: font size = %v, want %v",
				tc.boxHeight, tl.FontSize, tc.wantSize)
		}
		if tl.Confidence != 0.9 {
			t.Errorf("confidence = %v, want 0.9", tl.Confidence)
		}
		wantPct := 100 * 100 * tl.BBox.Height / (400 * 300)
		if tl.AreaPct != wantPct {
			t.Errorf("areaPct = %v, want %v", tl.AreaPct, wantPct)
		}
	}
}

// TestTextLayerLanguage verifies the detector-reported language is
// BCP-47 normalized and junk degrades to "und" without failing.
func TestTextLayerLanguage(t *testing.T) {
	g := newTestGraph(t)

	cases := []struct{ in, want string }{
		{"EN-us", "en-US"},
		{"ja", "ja"},
		{"not a language!", "und"},
		{"", ""},
	}
	for _, tc := range cases {
		id, err := g.CreateTextLayer(OCRBlock{
			Text: "x", BBox: BBox{Width: 50, Height: 20}, Language: tc.in,
		})
		if err != nil {
			t.Fatalf("CreateTextLayer(%q): %v", tc.in, err)
		}
		l, _ := g.Layer(id)
		if got := l.(*TextLayer).Language; got != tc.want {
			t.Errorf("language %q normalized to %q, want %q", tc.in, got, tc.want)
		}
	}
}

// TestCreateObjectLayer verifies the detector's mask is stored both as
// the layer mask and as a segmentation prompt record.
func TestCreateObjectLayer(t *testing.T) {
	g := newTestGraph(t)

	mask := EncodeMask(maskFromRows(".#.", "###", ".#."))
	id, err := g.CreateObjectLayer(Segment{
		Mask:       mask,
		BBox:       BBox{X: 50, Y: 50, Width: 3, Height: 3},
		Confidence: 0.8,
		Category:   "dog",
		Prompts:    []string{"the dog on the left"},
	})
	if err != nil {
		t.Fatalf("CreateObjectLayer: %v", err)
	}

	l, _ := g.Layer(id)
	ol, ok := l.(*ObjectLayer)
	if !ok {
		t.Fatalf("layer type = %T, want *ObjectLayer", l)
	}
	if ol.Mask == nil || !ol.Mask.Valid() {
		t.Fatal("layer mask missing or invalid")
	}
	if len(ol.Prompts) != 2 {
		t.Fatalf("prompts = %d, want 2 (mask + text)", len(ol.Prompts))
	}
	if ol.Prompts[0].Kind != "mask" || ol.Prompts[0].Mask == nil {
		t.Error("first prompt should record the segmentation mask")
	}
	if ol.Prompts[1].Kind != "text" || ol.Prompts[1].Text != "the dog on the left" {
		t.Error("text prompt not recorded")
	}
	if ol.Category != "dog" || ol.Name != "dog" {
		t.Errorf("category/name = %q/%q, want dog/dog", ol.Category, ol.Name)
	}
}

// TestMoveLayer verifies moves shift the current transform and bbox,
// never the original transform, and append history.
func TestMoveLayer(t *testing.T) {
	g := newTestGraph(t)
	id, _ := g.CreateTextLayer(OCRBlock{
		Text: "x", BBox: BBox{X: 10, Y: 20, Width: 50, Height: 30},
	})

	ok, err := g.MoveLayer(id, 5, -3)
	if err != nil || !ok {
		t.Fatalf("MoveLayer = (%v, %v), want (true, nil)", ok, err)
	}

	l, _ := g.Layer(id)
	b := l.Base()
	if b.CurrentTransform.OffsetX != 5 || b.CurrentTransform.OffsetY != -3 {
		t.Errorf("current transform offset = (%v, %v), want (5, -3)",
			b.CurrentTransform.OffsetX, b.CurrentTransform.OffsetY)
	}
	if b.OriginalTransform != IdentityTransform() {
		t.Errorf("original transform mutated: %+v", b.OriginalTransform)
	}
	if b.BBox.X != 15 || b.BBox.Y != 17 {
		t.Errorf("bbox origin = (%v, %v), want (15, 17)", b.BBox.X, b.BBox.Y)
	}
	if b.History.Len() != 2 { // create + move
		t.Errorf("history = %d entries, want 2", b.History.Len())
	}
}

// TestResizeLayer verifies multiplicative scaling and the area
// percentage recomputation.
func TestResizeLayer(t *testing.T) {
	g := newTestGraph(t)
	id, _ := g.CreateTextLayer(OCRBlock{
		Text: "x", BBox: BBox{X: 0, Y: 0, Width: 40, Height: 30},
	})

	if ok, err := g.ResizeLayer(id, 2); err != nil || !ok {
		t.Fatalf("ResizeLayer = (%v, %v), want (true, nil)", ok, err)
	}

	l, _ := g.Layer(id)
	b := l.Base()
	if b.BBox.Width != 80 || b.BBox.Height != 60 {
		t.Errorf("bbox = %vx%v, want 80x60", b.BBox.Width, b.BBox.Height)
	}
	if b.CurrentTransform.Scale != 2 {
		t.Errorf("current scale = %v, want 2", b.CurrentTransform.Scale)
	}
	want := 100.0 * 80 * 60 / (400 * 300)
	if b.AreaPct != want {
		t.Errorf("areaPct = %v, want %v", b.AreaPct, want)
	}

	// Non-positive factors are soft no-ops.
	if ok, err := g.ResizeLayer(id, 0); ok || err != nil {
		t.Errorf("ResizeLayer(0) = (%v, %v), want (false, nil)", ok, err)
	}
}

// TestLockedLayerImmutable verifies move and resize on a locked layer
// fail softly and leave the current transform unchanged.
func TestLockedLayerImmutable(t *testing.T) {
	g := newTestGraph(t)
	id, _ := g.CreateTextLayer(OCRBlock{
		Text: "x", BBox: BBox{X: 10, Y: 10, Width: 40, Height: 20},
	})
	if ok, err := g.SetLocked(id, true); err != nil || !ok {
		t.Fatalf("SetLocked = (%v, %v)", ok, err)
	}

	l, _ := g.Layer(id)
	before := *l.Base()

	if ok, err := g.MoveLayer(id, 100, 100); ok || err != nil {
		t.Errorf("MoveLayer on locked = (%v, %v), want (false, nil)", ok, err)
	}
	if ok, err := g.ResizeLayer(id, 3); ok || err != nil {
		t.Errorf("ResizeLayer on locked = (%v, %v), want (false, nil)", ok, err)
	}

	after := l.Base()
	if after.CurrentTransform != before.CurrentTransform {
		t.Errorf("locked layer transform changed: %+v -> %+v",
			before.CurrentTransform, after.CurrentTransform)
	}
	if after.BBox != before.BBox {
		t.Errorf("locked layer bbox changed: %+v -> %+v", before.BBox, after.BBox)
	}
}

// TestUnknownLayerSoftFailure verifies operations on unknown ids are
// absorbed as (false, nil): UI races are expected.
func TestUnknownLayerSoftFailure(t *testing.T) {
	g := newTestGraph(t)

	if ok, err := g.MoveLayer(999, 1, 1); ok || err != nil {
		t.Errorf("MoveLayer(999) = (%v, %v), want (false, nil)", ok, err)
	}
	if ok, err := g.ResizeLayer(999, 2); ok || err != nil {
		t.Errorf("ResizeLayer(999) = (%v, %v), want (false, nil)", ok, err)
	}
	if ok, err := g.SetVisible(999, false); ok || err != nil {
		t.Errorf("SetVisible(999) = (%v, %v), want (false, nil)", ok, err)
	}
	if _, ok := g.Layer(999); ok {
		t.Error("Layer(999) should report missing")
	}
}

// TestUpdateBackgroundLayer verifies the excluded list is replaced,
// with ids not present in the graph dropped.
func TestUpdateBackgroundLayer(t *testing.T) {
	g := newTestGraph(t)
	id1, _ := g.CreateTextLayer(OCRBlock{Text: "a", BBox: BBox{Width: 10, Height: 10}})
	id2, _ := g.CreateObjectLayer(Segment{BBox: BBox{Width: 10, Height: 10}})

	ok, err := g.UpdateBackgroundLayer([]int{id1, id2, 999})
	if err != nil || !ok {
		t.Fatalf("UpdateBackgroundLayer = (%v, %v)", ok, err)
	}

	bg := g.Background()
	if len(bg.ExcludedLayers) != 2 {
		t.Fatalf("excluded = %v, want [%d %d]", bg.ExcludedLayers, id1, id2)
	}
	for _, id := range bg.ExcludedLayers {
		if _, ok := g.Layer(id); !ok {
			t.Errorf("excluded list references unknown layer %d", id)
		}
	}
}

// TestLayersOrdered verifies Layers returns ascending zIndex with the
// background first and the newest layer last.
func TestLayersOrdered(t *testing.T) {
	g := newTestGraph(t)
	first, _ := g.CreateTextLayer(OCRBlock{Text: "a", BBox: BBox{Width: 10, Height: 10}})
	second, _ := g.CreateObjectLayer(Segment{BBox: BBox{Width: 10, Height: 10}})

	layers := g.Layers()
	if len(layers) != 3 {
		t.Fatalf("len(Layers) = %d, want 3", len(layers))
	}
	if layers[0].Type() != LayerBackground {
		t.Error("background should composite first")
	}
	if layers[1].Base().ID != first || layers[2].Base().ID != second {
		t.Errorf("order = [%d %d], want [%d %d]",
			layers[1].Base().ID, layers[2].Base().ID, first, second)
	}
	for i := 1; i < len(layers); i++ {
		if layers[i].Base().ZIndex <= layers[i-1].Base().ZIndex {
			t.Error("zIndex should strictly increase through Layers()")
		}
	}
}

// TestVisibilityAndOpacity verifies the toggles that higher-level
// deletion is built from.
func TestVisibilityAndOpacity(t *testing.T) {
	g := newTestGraph(t)
	id, _ := g.CreateTextLayer(OCRBlock{Text: "a", BBox: BBox{Width: 10, Height: 10}})

	if ok, _ := g.SetVisible(id, false); !ok {
		t.Fatal("SetVisible failed")
	}
	if ok, _ := g.SetOpacity(id, 2.5); !ok {
		t.Fatal("SetOpacity failed")
	}
	if ok, _ := g.SetBlendMode(id, "multiply"); !ok {
		t.Fatal("SetBlendMode failed")
	}

	l, _ := g.Layer(id)
	b := l.Base()
	if b.Visible {
		t.Error("layer should be hidden")
	}
	if b.Opacity != 1 {
		t.Errorf("opacity = %v, want clamped to 1", b.Opacity)
	}
	if b.BlendMode != "multiply" {
		t.Errorf("blend mode = %q, want multiply", b.BlendMode)
	}
}

// TestExportJSON verifies the export shape and that exports are
// deterministic under injected clock, hasher and id generation.
func TestExportJSON(t *testing.T) {
	g := newTestGraph(t)
	g.CreateTextLayer(OCRBlock{Text: "hello", BBox: BBox{X: 1, Y: 2, Width: 30, Height: 40}})

	data1, err := g.ExportJSON()
	if err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	data2, err := g.ExportJSON()
	if err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	if string(data1) != string(data2) {
		t.Error("repeated exports of the same graph should be byte-identical")
	}

	var out struct {
		ID             string            `json:"id"`
		Name           string            `json:"name"`
		SourceImage    SourceImage       `json:"sourceImage"`
		Layers         []json.RawMessage `json:"layers"`
		Children       []json.RawMessage `json:"children"`
		ExportSettings ExportSettings    `json:"exportSettings"`
		ExportedAt     time.Time         `json:"exportedAt"`
	}
	if err := json.Unmarshal(data1, &out); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if out.ID != "graph-1" {
		t.Errorf("exported id = %q, want graph-1", out.ID)
	}
	if out.SourceImage != (SourceImage{URL: "img.png", Width: 400, Height: 300, Hash: "testhash"}) {
		t.Errorf("exported source = %+v", out.SourceImage)
	}
	if len(out.Layers) != 2 {
		t.Errorf("exported layers = %d entries, want 2", len(out.Layers))
	}
	if len(out.Children) != 1 {
		t.Errorf("exported children = %d entries, want 1", len(out.Children))
	}
	if out.ExportSettings.Format != "png" {
		t.Errorf("export format = %q, want png", out.ExportSettings.Format)
	}
	if out.ExportedAt.IsZero() {
		t.Error("exportedAt missing")
	}

	// Each layer entry is an [id, meta] pair.
	var entry [2]json.RawMessage
	if err := json.Unmarshal(out.Layers[0], &entry); err != nil {
		t.Fatalf("layer entry is not a pair: %v", err)
	}
	var id int
	if err := json.Unmarshal(entry[0], &id); err != nil || id != 1 {
		t.Errorf("first layer entry key = %s, want 1", entry[0])
	}
}

// TestReinitReplacesGraph verifies loading a new image replaces the
// graph wholesale.
func TestReinitReplacesGraph(t *testing.T) {
	g := newTestGraph(t)
	g.CreateTextLayer(OCRBlock{Text: "a", BBox: BBox{Width: 10, Height: 10}})
	if g.LayerCount() != 2 {
		t.Fatalf("layer count = %d, want 2", g.LayerCount())
	}

	if _, err := g.InitFromImage("other.png", 800, 600, nil); err != nil {
		t.Fatalf("reinit: %v", err)
	}
	if g.LayerCount() != 1 {
		t.Errorf("layer count after reinit = %d, want 1", g.LayerCount())
	}
	if g.Source().URL != "other.png" {
		t.Errorf("source url = %q, want other.png", g.Source().URL)
	}
}
