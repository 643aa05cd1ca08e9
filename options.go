package lg

import (
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

// Clock supplies timestamps for history entries and export metadata.
type Clock func() time.Time

// Hasher computes the content digest of the source image.
type Hasher func([]byte) string

// GraphOption configures a Graph during creation.
// Use functional options to inject collaborators for deterministic tests.
//
// Example:
//
//	// Default wiring
//	g := lg.NewGraph()
//
//	// Fixed clock and hash for reproducible exports
//	g := lg.NewGraph(
//	    lg.WithClock(func() time.Time { return t0 }),
//	    lg.WithHasher(func([]byte) string { return "test" }),
//	)
type GraphOption func(*graphOptions)

// graphOptions holds optional configuration for Graph creation.
type graphOptions struct {
	clock        Clock
	hasher       Hasher
	newID        func() string
	historyLimit int
	name         string
	export       ExportSettings
	canvas       Transform
}

// defaultHasher digests content with xxhash, formatted as lowercase hex.
func defaultHasher(data []byte) string {
	return strconv.FormatUint(xxhash.Sum64(data), 16)
}

// defaultGraphOptions returns the default graph options.
func defaultGraphOptions() graphOptions {
	return graphOptions{
		clock:  time.Now,
		hasher: defaultHasher,
		newID:  uuid.NewString,
		export: ExportSettings{Format: "png", Quality: 92, IncludeMetadata: true},
		canvas: IdentityTransform(),
	}
}

// WithClock injects the time source used for createdAt/updatedAt,
// history timestamps and the export timestamp.
func WithClock(c Clock) GraphOption {
	return func(o *graphOptions) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithHasher injects the content-digest function for the source image.
func WithHasher(h Hasher) GraphOption {
	return func(o *graphOptions) {
		if h != nil {
			o.hasher = h
		}
	}
}

// WithGraphID injects the graph id generator. The default generates
// UUIDs.
func WithGraphID(gen func() string) GraphOption {
	return func(o *graphOptions) {
		if gen != nil {
			o.newID = gen
		}
	}
}

// WithHistoryLimit bounds each layer's history log to the given number
// of entries, dropping the oldest past the cap. Zero means unbounded.
func WithHistoryLimit(limit int) GraphOption {
	return func(o *graphOptions) {
		o.historyLimit = limit
	}
}

// WithName sets the graph's display name.
func WithName(name string) GraphOption {
	return func(o *graphOptions) {
		o.name = name
	}
}

// WithExportSettings overrides the default export settings.
func WithExportSettings(s ExportSettings) GraphOption {
	return func(o *graphOptions) {
		o.export = s
	}
}

// WithCanvasTransform sets the initial canvas transform, typically the
// Fit of the source image onto the display surface.
func WithCanvasTransform(t Transform) GraphOption {
	return func(o *graphOptions) {
		o.canvas = t
	}
}
