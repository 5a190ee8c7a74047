package pipeline

import (
	"bytes"
	"math"

	"github.com/google/uuid"

	"github.com/your-org/photoflow/internal/storage"
)

// Matcher scores a face descriptor against known persons. It is pure:
// given the same descriptor and candidate set it always returns the same
// person, so re-processing an image cannot flip identities.
type Matcher struct {
	threshold float64
}

func NewMatcher(threshold float64) *Matcher {
	return &Matcher{threshold: threshold}
}

// Match returns the best-scoring candidate at or above the threshold.
// A person's score is the maximum cosine similarity over its
// representative descriptors. Score ties break toward the person with
// more associated images, then toward the lowest person id.
func (m *Matcher) Match(descriptor []float32, candidates []storage.Candidate) (uuid.UUID, float64, bool) {
	var (
		bestID    uuid.UUID
		bestScore float64
		bestCount int
		found     bool
	)

	for _, cand := range candidates {
		score := math.Inf(-1)
		for _, d := range cand.Descriptors {
			if s := cosineSimilarity(descriptor, d); s > score {
				score = s
			}
		}
		if score < m.threshold {
			continue
		}

		if !found || better(score, cand, bestScore, bestCount, bestID) {
			bestID = cand.PersonID
			bestScore = score
			bestCount = cand.ImageCount
			found = true
		}
	}

	if !found {
		return uuid.Nil, 0, false
	}
	return bestID, bestScore, true
}

func better(score float64, cand storage.Candidate, bestScore float64, bestCount int, bestID uuid.UUID) bool {
	if score != bestScore {
		return score > bestScore
	}
	if cand.ImageCount != bestCount {
		return cand.ImageCount > bestCount
	}
	return bytes.Compare(cand.PersonID[:], bestID[:]) < 0
}

// cosineSimilarity computes dot(a,b) / (|a| * |b|). Descriptors are
// L2-normalized at extraction, but the norms are recomputed so stored
// vectors from older runs stay comparable.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
