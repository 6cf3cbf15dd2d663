package index

import (
	"math"

	"memoir-rag/internal/models"
)

// Cosine returns the cosine similarity of two vectors, 0 when either has no
// magnitude or the dimensions differ.
func Cosine(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

// RerankMMR applies maximal marginal relevance to the candidates: each round
// picks the candidate maximizing
//
//	lambda*sim(query, c) - (1-lambda)*max sim(c, selected)
//
// so results too similar to already-selected ones are penalized. The reported
// score stays the query similarity. Candidates must arrive ordered by query
// similarity; the first selection is always the top candidate.
func RerankMMR(query []float32, candidates []Candidate, k int, lambda float32) []models.ScoredSegment {
	if k <= 0 || len(candidates) == 0 {
		return nil
	}
	if k > len(candidates) {
		k = len(candidates)
	}

	selected := make([]models.ScoredSegment, 0, k)
	selectedVecs := make([][]float32, 0, k)
	remaining := make([]Candidate, len(candidates))
	copy(remaining, candidates)

	for len(selected) < k {
		best := -1
		bestScore := float32(math.Inf(-1))
		for i, c := range remaining {
			penalty := float32(0)
			for _, v := range selectedVecs {
				if s := Cosine(c.Vector, v); s > penalty {
					penalty = s
				}
			}
			score := lambda*c.Score - (1-lambda)*penalty
			if score > bestScore {
				bestScore = score
				best = i
			}
		}
		selected = append(selected, models.ScoredSegment{
			Segment: remaining[best].Segment,
			Score:   remaining[best].Score,
		})
		selectedVecs = append(selectedVecs, remaining[best].Vector)
		remaining = append(remaining[:best], remaining[best+1:]...)
	}
	return selected
}
