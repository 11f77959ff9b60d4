package match

import (
	"context"
	"fmt"
	"math"

	"internmatch/internal/errors"
)

// Embedder turns texts into fixed-dimension vectors, same length and order
// as the input.
type Embedder interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
}

// Similarities embeds the candidate text together with every opportunity
// text in one batch and returns the cosine similarity of each opportunity
// to the candidate. Any failure, including a short batch, fails the request.
func Similarities(ctx context.Context, embedder Embedder, candidateText string, opportunityTexts []string) ([]float64, error) {
	if len(opportunityTexts) == 0 {
		return nil, nil
	}
	if embedder == nil {
		return nil, errors.NewInternalError(errors.ErrCodeEmbeddingFailed, "no embedding provider configured", nil)
	}

	texts := make([]string, 0, len(opportunityTexts)+1)
	texts = append(texts, candidateText)
	texts = append(texts, opportunityTexts...)

	vectors, err := embedder.Encode(ctx, texts)
	if err != nil {
		if appErr, ok := errors.AsAppError(err); ok && appErr.Code == errors.ErrCodeEmbeddingFailed {
			return nil, appErr
		}
		return nil, errors.NewAIError(errors.ErrCodeEmbeddingFailed, "embedding provider failed", err)
	}
	if len(vectors) != len(texts) {
		return nil, errors.NewAIError(errors.ErrCodeEmbeddingFailed,
			fmt.Sprintf("embedding provider returned %d vectors for %d texts", len(vectors), len(texts)), nil)
	}

	candidate := vectors[0]
	scores := make([]float64, len(opportunityTexts))
	for i, v := range vectors[1:] {
		if len(v) != len(candidate) {
			return nil, errors.NewAIError(errors.ErrCodeEmbeddingFailed,
				fmt.Sprintf("embedding %d has dimension %d, expected %d", i+1, len(v), len(candidate)), nil)
		}
		scores[i] = Cosine(candidate, v)
	}
	return scores, nil
}

// Cosine returns the cosine similarity of two equal-length vectors. A
// zero-norm vector has similarity 0 with everything.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
