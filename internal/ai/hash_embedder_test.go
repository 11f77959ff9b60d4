package ai

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"internmatch/internal/match"
)

func TestHashEmbedderVectors(t *testing.T) {
	emb := NewHashEmbedder(128)
	vectors, err := emb.Encode(context.Background(), []string{
		"Python SQL data analysis intern",
		"data analysis intern with Python and SQL",
		"Graphic design, Figma, illustration",
		"",
	})
	require.NoError(t, err)
	require.Len(t, vectors, 4)

	for _, v := range vectors[:3] {
		assert.Len(t, v, 128)
		var norm float64
		for _, x := range v {
			norm += float64(x) * float64(x)
		}
		assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)
	}

	related := match.Cosine(vectors[0], vectors[1])
	unrelated := match.Cosine(vectors[0], vectors[2])
	assert.Greater(t, related, unrelated)
	assert.Greater(t, related, 0.5)

	assert.Zero(t, match.Cosine(vectors[0], vectors[3]), "empty text embeds to the zero vector")
}

func TestHashEmbedderDeterministic(t *testing.T) {
	a, err := NewHashEmbedder(64).Encode(context.Background(), []string{"Bengalurū React developer"})
	require.NoError(t, err)
	b, err := NewHashEmbedder(64).Encode(context.Background(), []string{"bengaluru react developer"})
	require.NoError(t, err)
	assert.Equal(t, a, b, "case and accents do not change the vector")
}

func TestHashEmbedderDefaultsAndCancellation(t *testing.T) {
	v, err := NewHashEmbedder(0).Encode(context.Background(), []string{"x"})
	require.NoError(t, err)
	assert.Len(t, v[0], defaultHashDims)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewHashEmbedder(8).Encode(ctx, []string{"x"})
	assert.ErrorIs(t, err, context.Canceled)
}
