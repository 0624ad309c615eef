package gallery

import (
	"sort"

	"github.com/coder/hnsw"
)

// HNSW index parameters for 128-dim face embeddings.
const (
	// hnswMaxNeighbors (M) is the maximum number of neighbors per node.
	// Higher values improve recall but increase memory and build time.
	hnswMaxNeighbors = 16
)

// Neighbor is one result of a similarity query.
type Neighbor struct {
	Identity Identity
	Distance float64
}

// Nearest returns up to k identities closest to the probe, nearest first,
// leaving out the identity named by excludeID. It is the exact, index-free
// counterpart of SimilarityIndex.Neighbors and serves galleries small
// enough that a linear scan is fine. Ties keep enrollment order.
func (g *Gallery) Nearest(probe []float32, k int, excludeID string) []Neighbor {
	if k <= 0 {
		return nil
	}

	neighbors := make([]Neighbor, 0, len(g.identities))
	for _, ident := range g.identities {
		if ident.ID == excludeID {
			continue
		}
		neighbors = append(neighbors, Neighbor{
			Identity: ident,
			Distance: EuclideanDistance(probe, ident.Embedding),
		})
	}

	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].Distance < neighbors[j].Distance
	})

	if len(neighbors) > k {
		neighbors = neighbors[:k]
	}
	return neighbors
}

// SimilarityIndex answers approximate nearest-neighbor queries over the
// gallery. It only backs the similar-celebrities endpoint; recognition
// scans the gallery linearly so match results stay exact. Like the
// gallery, the index is built before the server accepts traffic and is
// read-only afterwards.
type SimilarityIndex struct {
	graph *hnsw.Graph[string]
	byID  map[string]Identity
}

// NewSimilarityIndex builds an index over every identity in the gallery.
func NewSimilarityIndex(g *Gallery) *SimilarityIndex {
	idx := &SimilarityIndex{
		byID: make(map[string]Identity, g.Size()),
	}

	graph := hnsw.NewGraph[string]()
	graph.M = hnswMaxNeighbors
	graph.Ml = 1.0 / float64(hnswMaxNeighbors) // Standard HNSW formula
	graph.Distance = hnsw.EuclideanDistance

	for _, ident := range g.Identities() {
		graph.Add(hnsw.MakeNode(ident.ID, ident.Embedding))
		idx.byID[ident.ID] = ident
	}

	idx.graph = graph
	return idx
}

// Count returns the number of indexed identities.
func (idx *SimilarityIndex) Count() int {
	return len(idx.byID)
}

// Neighbors returns up to k identities closest to the embedding, nearest
// first. The identity named by excludeID (the query celebrity itself) is
// left out of the results.
func (idx *SimilarityIndex) Neighbors(embedding []float32, k int, excludeID string) []Neighbor {
	if idx.graph == nil || len(idx.byID) == 0 || k <= 0 {
		return nil
	}

	// Request one extra node since the query celebrity is usually its
	// own nearest neighbor.
	nodes := idx.graph.Search(embedding, k+1)

	neighbors := make([]Neighbor, 0, k)
	for _, node := range nodes {
		if node.Key == excludeID {
			continue
		}
		ident, ok := idx.byID[node.Key]
		if !ok {
			continue
		}
		neighbors = append(neighbors, Neighbor{
			Identity: ident,
			Distance: EuclideanDistance(embedding, node.Value),
		})
		if len(neighbors) == k {
			break
		}
	}

	return neighbors
}
