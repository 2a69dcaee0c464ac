package database

import (
	"sync"

	"github.com/coder/hnsw"
)

// galleryIndexMaxNeighbors is the M parameter of the HNSW graph.
const galleryIndexMaxNeighbors = 16

// GalleryIndex is an in-memory HNSW index over enrolled identities.
// It accelerates nearest-neighbor lookups for large galleries; the
// linear gallery scan remains the reference matching semantics and the
// index preserves its enrollment-order tie-break within floating-point
// tolerance. Galleries at class-roster scale do not need it.
type GalleryIndex struct {
	graph      *hnsw.Graph[string]
	identities map[string]*Identity
	order      map[string]int // enrollment sequence, for stable tie-breaks
	mu         sync.RWMutex
}

// NewGalleryIndex creates a new empty gallery index.
func NewGalleryIndex() *GalleryIndex {
	return &GalleryIndex{
		identities: make(map[string]*Identity),
		order:      make(map[string]int),
	}
}

// Build replaces the index contents with the given identities.
// Identities without a valid embedding are skipped.
func (g *GalleryIndex) Build(identities []Identity) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(identities) == 0 {
		g.graph = nil
		g.identities = make(map[string]*Identity)
		g.order = make(map[string]int)
		return nil
	}

	graph := hnsw.NewGraph[string]()
	graph.M = galleryIndexMaxNeighbors
	graph.Ml = 1.0 / float64(galleryIndexMaxNeighbors)
	graph.Distance = hnsw.EuclideanDistance

	g.identities = make(map[string]*Identity, len(identities))
	g.order = make(map[string]int, len(identities))

	for i := range identities {
		identity := &identities[i]
		if len(identity.Embedding) != EmbeddingDim {
			continue
		}
		graph.Add(hnsw.MakeNode(identity.StudentID, identity.Embedding))
		g.identities[identity.StudentID] = identity
		g.order[identity.StudentID] = i
	}

	g.graph = graph
	return nil
}

// Count returns the number of identities in the index.
func (g *GalleryIndex) Count() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.identities)
}

// Nearest returns the single closest identity to the query along with
// its distance. Candidates at an equal minimum distance are resolved by
// enrollment order, matching the linear scan. Returns nil for an empty
// index.
func (g *GalleryIndex) Nearest(query []float32, k int) (*Identity, float64) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.graph == nil || len(g.identities) == 0 {
		return nil, 0
	}
	if k < 1 {
		k = 1
	}

	neighbors := g.graph.Search(query, k)

	var best *Identity
	bestDistance := 0.0
	for _, n := range neighbors {
		identity, ok := g.identities[n.Key]
		if !ok {
			continue
		}
		d := EuclideanDistance(query, identity.Embedding)
		switch {
		case best == nil, d < bestDistance:
			best = identity
			bestDistance = d
		case d == bestDistance && g.order[identity.StudentID] < g.order[best.StudentID]:
			best = identity
		}
	}
	return best, bestDistance
}
