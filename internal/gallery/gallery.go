package gallery

import (
	"log/slog"
)

// Identity is one enrolled celebrity in the lookup gallery.
type Identity struct {
	ID        string
	Name      string
	Embedding []float32
}

// Gallery holds enrolled identities in enrollment order. It is built once
// at startup and never mutated afterwards, so concurrent requests can
// match against it without locking. Celebrities enrolled while the server
// runs are picked up on the next start.
type Gallery struct {
	identities []Identity
	byID       map[string]int
	tolerance  float64
	dim        int
}

// New builds a gallery from stored identities. Entries whose embedding
// does not have the expected dimension are skipped with a warning so a
// single corrupt row cannot take recognition down.
func New(identities []Identity, dim int, tolerance float64) *Gallery {
	g := &Gallery{
		identities: make([]Identity, 0, len(identities)),
		byID:       make(map[string]int, len(identities)),
		tolerance:  tolerance,
		dim:        dim,
	}

	for _, ident := range identities {
		if len(ident.Embedding) != dim {
			slog.Warn("skipping identity with malformed embedding",
				"id", ident.ID,
				"name", ident.Name,
				"dim", len(ident.Embedding),
				"expected_dim", dim)
			continue
		}
		g.byID[ident.ID] = len(g.identities)
		g.identities = append(g.identities, ident)
	}

	return g
}

// Size returns the number of enrolled identities.
func (g *Gallery) Size() int {
	return len(g.identities)
}

// Tolerance returns the maximum distance at which a probe still matches.
func (g *Gallery) Tolerance() float64 {
	return g.tolerance
}

// Dim returns the embedding dimension the gallery was built for.
func (g *Gallery) Dim() int {
	return g.dim
}

// Identities returns the enrolled identities in enrollment order.
// Callers must treat the returned slice as read-only.
func (g *Gallery) Identities() []Identity {
	return g.identities
}

// ByID looks up an enrolled identity.
func (g *Gallery) ByID(id string) (Identity, bool) {
	i, ok := g.byID[id]
	if !ok {
		return Identity{}, false
	}
	return g.identities[i], true
}
