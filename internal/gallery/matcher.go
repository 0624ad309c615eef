package gallery

import "math"

// Match is a successful gallery lookup.
type Match struct {
	Identity   Identity
	Distance   float64
	Confidence float64 // 1 - Distance
}

// EuclideanDistance computes the L2 distance between two embeddings.
// Vectors of different lengths are treated as maximally distant.
func EuclideanDistance(a, b []float32) float64 {
	if len(a) != len(b) {
		return math.MaxFloat64
	}

	var sum float64
	for i := range a {
		diff := float64(a[i]) - float64(b[i])
		sum += diff * diff
	}
	return math.Sqrt(sum)
}

// AverageEmbeddings folds several embeddings of the same person into one
// enrollment embedding. All inputs must share the first embedding's length;
// mismatched ones are ignored. Returns nil for no usable input.
func AverageEmbeddings(embeddings [][]float32) []float32 {
	if len(embeddings) == 0 {
		return nil
	}

	avg := make([]float64, len(embeddings[0]))
	var n int
	for _, emb := range embeddings {
		if len(emb) != len(avg) {
			continue
		}
		for i, v := range emb {
			avg[i] += float64(v)
		}
		n++
	}
	if n == 0 {
		return nil
	}

	out := make([]float32, len(avg))
	for i, v := range avg {
		out[i] = float32(v / float64(n))
	}
	return out
}

// Match finds the enrolled identity closest to the probe embedding.
// An identity wins only when its distance is strictly below the gallery
// tolerance; on a distance tie the earliest enrolled identity is kept.
// Returns false when the gallery is empty or nothing beats the tolerance.
func (g *Gallery) Match(probe []float32) (Match, bool) {
	best := g.tolerance
	found := -1

	for i := range g.identities {
		d := EuclideanDistance(probe, g.identities[i].Embedding)
		if d < best {
			best = d
			found = i
		}
	}

	if found < 0 {
		return Match{}, false
	}

	return Match{
		Identity:   g.identities[found],
		Distance:   best,
		Confidence: 1 - best,
	}, true
}
