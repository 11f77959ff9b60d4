package ai

import (
	"context"
	"hash/fnv"
	"math"

	"internmatch/internal/textutil"
)

const defaultHashDims = 384

// HashEmbedder is an offline embedder that hashes word unigrams and bigrams
// into a fixed number of signed buckets and L2-normalises the result. Texts
// sharing vocabulary get a positive cosine; it needs no network or model.
type HashEmbedder struct {
	dims int
}

// NewHashEmbedder creates a local embedder producing dims-sized vectors
func NewHashEmbedder(dims int) *HashEmbedder {
	if dims <= 0 {
		dims = defaultHashDims
	}
	return &HashEmbedder{dims: dims}
}

// Encode implements match.Embedder
func (h *HashEmbedder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = h.vector(text)
	}
	return out, nil
}

func (h *HashEmbedder) vector(text string) []float32 {
	v := make([]float32, h.dims)
	words := textutil.Words(text)
	for i, w := range words {
		h.add(v, w, 1)
		if i > 0 {
			h.add(v, words[i-1]+" "+w, 0.5)
		}
	}

	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		return v
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range v {
		v[i] *= scale
	}
	return v
}

// add folds one feature into v. The low bits pick the bucket and the top
// bit the sign, which keeps unrelated collisions from always adding up.
func (h *HashEmbedder) add(v []float32, feature string, weight float32) {
	hasher := fnv.New64a()
	_, _ = hasher.Write([]byte(feature))
	sum := hasher.Sum64()
	idx := int(sum % uint64(h.dims))
	if sum>>63 == 1 {
		weight = -weight
	}
	v[idx] += weight
}
