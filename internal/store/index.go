package store

import (
	"math"

	"github.com/coder/hnsw"

	"github.com/veriface/veriface/internal/encoding"
)

const (
	// indexMaxNeighbors is the HNSW M parameter.
	indexMaxNeighbors = 16
)

// Index provides nearest-neighbor search over enrolled encodings. One
// graph is kept per encoding method because embedding and feature
// vectors have different dimensions and distance semantics.
//
// The underlying HNSW graph does not support true deletion; removed
// keys stay in the graph but are filtered out of results, and the
// graph is rebuilt once removals outnumber live entries. Callers
// (the Store) provide locking.
type Index struct {
	graphs    map[encoding.Method]*hnsw.Graph[string]
	encodings map[string]encoding.Encoding
	removed   int
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{
		graphs:    make(map[encoding.Method]*hnsw.Graph[string]),
		encodings: make(map[string]encoding.Encoding),
	}
}

func newGraph(method encoding.Method) *hnsw.Graph[string] {
	g := hnsw.NewGraph[string]()
	g.M = indexMaxNeighbors
	g.Ml = 1.0 / float64(indexMaxNeighbors) // Standard HNSW formula
	if method == encoding.MethodFeature {
		g.Distance = weightedEuclidean
	} else {
		g.Distance = hnsw.EuclideanDistance
	}
	return g
}

// weightedEuclidean mirrors the feature-based comparison: components
// past the color segment count double before squaring.
func weightedEuclidean(a, b []float32) float32 {
	var sum float64
	for i := range a {
		d := float64(a[i] - b[i])
		if i >= encoding.FeatureWeightBoundary {
			d *= 2.0
		}
		sum += d * d
	}
	return float32(math.Sqrt(sum))
}

// Add inserts or replaces the encoding for a key.
func (ix *Index) Add(key string, enc encoding.Encoding) {
	if enc.IsZero() {
		return
	}

	g, ok := ix.graphs[enc.Method]
	if !ok {
		g = newGraph(enc.Method)
		ix.graphs[enc.Method] = g
	}
	g.Add(hnsw.MakeNode(key, enc.Vector))
	ix.encodings[key] = enc
}

// Remove drops a key from search results. The graph node lingers until
// the next rebuild.
func (ix *Index) Remove(key string) {
	if _, ok := ix.encodings[key]; !ok {
		return
	}
	delete(ix.encodings, key)
	ix.removed++

	if ix.removed > len(ix.encodings) {
		ix.rebuild()
	}
}

func (ix *Index) rebuild() {
	ix.graphs = make(map[encoding.Method]*hnsw.Graph[string])
	ix.removed = 0
	for key, enc := range ix.encodings {
		g, ok := ix.graphs[enc.Method]
		if !ok {
			g = newGraph(enc.Method)
			ix.graphs[enc.Method] = g
		}
		g.Add(hnsw.MakeNode(key, enc.Vector))
	}
}

// Search returns up to k live keys nearest to the probe, best first.
// Distances are recomputed exactly; incomparable entries are skipped.
func (ix *Index) Search(probe encoding.Encoding, k int) []Match {
	if probe.IsZero() || k <= 0 {
		return nil
	}

	g, ok := ix.graphs[probe.Method]
	if !ok {
		return nil
	}

	// Over-fetch to survive filtered-out removed keys.
	neighbors := g.Search(probe.Vector, k+ix.removed)

	matches := make([]Match, 0, k)
	for _, n := range neighbors {
		stored, ok := ix.encodings[n.Key]
		if !ok {
			continue // removed from the store, still in the graph
		}
		d := encoding.Distance(probe, stored)
		if math.IsInf(d, 1) {
			continue
		}
		matches = append(matches, Match{Name: n.Key, Distance: d})
		if len(matches) == k {
			break
		}
	}
	return matches
}

// Size returns the number of live entries.
func (ix *Index) Size() int {
	return len(ix.encodings)
}
