package pipeline

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/photoflow/internal/storage"
)

func TestMatcherAcceptsAboveThreshold(t *testing.T) {
	m := NewMatcher(0.4)
	personID := uuid.New()

	candidates := []storage.Candidate{
		{PersonID: personID, ImageCount: 3, Descriptors: [][]float32{{1, 0, 0, 0}}},
	}

	id, score, ok := m.Match([]float32{1, 0, 0, 0}, candidates)
	require.True(t, ok)
	assert.Equal(t, personID, id)
	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestMatcherRejectsBelowThreshold(t *testing.T) {
	m := NewMatcher(0.4)

	candidates := []storage.Candidate{
		{PersonID: uuid.New(), ImageCount: 1, Descriptors: [][]float32{{1, 0, 0, 0}}},
	}

	// Orthogonal descriptor, similarity 0.
	_, _, ok := m.Match([]float32{0, 1, 0, 0}, candidates)
	assert.False(t, ok)
}

func TestMatcherEmptyCandidates(t *testing.T) {
	m := NewMatcher(0.4)

	_, _, ok := m.Match([]float32{1, 0, 0, 0}, nil)
	assert.False(t, ok)
}

func TestMatcherUsesBestDescriptorPerPerson(t *testing.T) {
	m := NewMatcher(0.4)
	personID := uuid.New()

	candidates := []storage.Candidate{
		{
			PersonID:   personID,
			ImageCount: 1,
			Descriptors: [][]float32{
				{0, 1, 0, 0}, // far
				{1, 0, 0, 0}, // exact
			},
		},
	}

	id, score, ok := m.Match([]float32{1, 0, 0, 0}, candidates)
	require.True(t, ok)
	assert.Equal(t, personID, id)
	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestMatcherTieBreakByImageCount(t *testing.T) {
	m := NewMatcher(0.4)
	small := uuid.New()
	large := uuid.New()

	desc := []float32{1, 0, 0, 0}
	candidates := []storage.Candidate{
		{PersonID: small, ImageCount: 1, Descriptors: [][]float32{desc}},
		{PersonID: large, ImageCount: 9, Descriptors: [][]float32{desc}},
	}

	id, _, ok := m.Match(desc, candidates)
	require.True(t, ok)
	assert.Equal(t, large, id)

	// Order of candidates must not matter.
	id, _, ok = m.Match(desc, []storage.Candidate{candidates[1], candidates[0]})
	require.True(t, ok)
	assert.Equal(t, large, id)
}

func TestMatcherTieBreakByLowestID(t *testing.T) {
	m := NewMatcher(0.4)
	a := uuid.New()
	b := uuid.New()

	lowest := a
	if bytes.Compare(b[:], a[:]) < 0 {
		lowest = b
	}

	desc := []float32{1, 0, 0, 0}
	candidates := []storage.Candidate{
		{PersonID: a, ImageCount: 2, Descriptors: [][]float32{desc}},
		{PersonID: b, ImageCount: 2, Descriptors: [][]float32{desc}},
	}

	id, _, ok := m.Match(desc, candidates)
	require.True(t, ok)
	assert.Equal(t, lowest, id)

	id, _, ok = m.Match(desc, []storage.Candidate{candidates[1], candidates[0]})
	require.True(t, ok)
	assert.Equal(t, lowest, id)
}

func TestMatcherDeterministic(t *testing.T) {
	m := NewMatcher(0.4)

	candidates := []storage.Candidate{
		{PersonID: uuid.New(), ImageCount: 1, Descriptors: [][]float32{{0.9, 0.1, 0, 0}}},
		{PersonID: uuid.New(), ImageCount: 4, Descriptors: [][]float32{{0.8, 0.2, 0, 0}}},
		{PersonID: uuid.New(), ImageCount: 2, Descriptors: [][]float32{{0.7, 0.3, 0, 0}}},
	}
	query := []float32{1, 0, 0, 0}

	firstID, firstScore, ok := m.Match(query, candidates)
	require.True(t, ok)

	for i := 0; i < 50; i++ {
		id, score, ok := m.Match(query, candidates)
		require.True(t, ok)
		assert.Equal(t, firstID, id)
		assert.Equal(t, firstScore, score)
	}
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{1, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	// Scale invariance.
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{2, 0}, []float32{5, 0}), 1e-9)
	// Mismatched or empty input never matches.
	assert.Equal(t, 0.0, cosineSimilarity([]float32{1}, []float32{1, 0}))
	assert.Equal(t, 0.0, cosineSimilarity(nil, nil))
}
