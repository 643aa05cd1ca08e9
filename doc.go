// Package lg provides a non-destructive layer graph for image editing in Go.
//
// # Overview
//
// lg is a Pure Go library for the core data model behind layer-based image
// editors: a versioned layer graph over a source image, plus the pixel and
// mask primitives the graph is built on. It is designed to sit between AI
// detectors (OCR, segmentation, inpainting) and a rendering front end: the
// detectors hand in bounding boxes, confidence scores and RLE masks, and lg
// turns them into independently positioned, maskable, history-tracked layers.
//
// # Quick Start
//
//	import "github.com/gogpu/lg"
//
//	// Create a graph over a loaded source image
//	g := lg.NewGraph()
//	g.InitFromImage("photo.png", 1920, 1080, nil)
//
//	// Turn an OCR detection into a text layer
//	id, _ := g.CreateTextLayer(lg.OCRBlock{
//	    Text:       "SALE",
//	    BBox:       lg.BBox{X: 120, Y: 80, Width: 300, Height: 90},
//	    Confidence: 0.97,
//	})
//
//	// Reposition it, then serialize the whole graph
//	g.MoveLayer(id, 10, -5)
//	data, _ := g.ExportJSON()
//
// # Components
//
// The library is organized into five leaf-first components:
//   - RLE codec: lossless binary-mask compression (RLE, Encode, Decode)
//   - Coordinate transform: image ↔ display-surface mapping (Transform, Fit)
//   - Morphological refiner: Dilate, Erode, Open, Close, Feather over masks
//   - Region extractor: ExtractRegion, FillHole, ScaleRaster
//   - Layer graph: Graph, the layer CRUD / ordering / export manager
//
// # Coordinate System
//
// Uses standard computer graphics coordinates:
//   - Origin (0,0) at top-left
//   - X increases right
//   - Y increases down
//
// # Concurrency
//
// All operations are synchronous and the Graph performs no internal locking.
// A Graph instance must be confined to one goroutine or serialized by the
// caller. The pixel and mask functions are pure and safe to call from
// anywhere as long as their inputs are not shared.
package lg

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
