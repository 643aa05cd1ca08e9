package lg

import (
	"encoding/json"
	"sort"
	"time"
)

// graphExport is the wire shape produced by ExportJSON. The layer map
// and adjacency map are flattened to ordered [key, value] entry pairs
// so the output is deterministic and invertible by a later import.
type graphExport struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	SourceImage     SourceImage    `json:"sourceImage"`
	Layers          [][2]any       `json:"layers"`
	Children        [][2]any       `json:"children"`
	CanvasTransform Transform      `json:"canvasTransform"`
	ExportSettings  ExportSettings `json:"exportSettings"`
	ExportedAt      time.Time      `json:"exportedAt"`
}

// ExportJSON serializes the full graph: source descriptor, every
// layer's metadata, the parent→children adjacency, canvas transform,
// export settings and an export timestamp. Entries are ordered by id so
// repeated exports of the same graph are byte-identical.
func (g *Graph) ExportJSON() ([]byte, error) {
	if !g.initialized {
		return nil, ErrNotInitialized
	}

	layerIDs := make([]int, 0, len(g.layers))
	for id := range g.layers {
		layerIDs = append(layerIDs, id)
	}
	sort.Ints(layerIDs)

	layers := make([][2]any, 0, len(layerIDs))
	for _, id := range layerIDs {
		layers = append(layers, [2]any{id, g.layers[id]})
	}

	parentIDs := make([]int, 0, len(g.children))
	for id := range g.children {
		parentIDs = append(parentIDs, id)
	}
	sort.Ints(parentIDs)

	children := make([][2]any, 0, len(parentIDs))
	for _, id := range parentIDs {
		children = append(children, [2]any{id, g.children[id]})
	}

	return json.Marshal(graphExport{
		ID:              g.id,
		Name:            g.name,
		SourceImage:     g.source,
		Layers:          layers,
		Children:        children,
		CanvasTransform: g.canvas,
		ExportSettings:  g.export,
		ExportedAt:      g.clock(),
	})
}
