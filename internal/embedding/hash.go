package embedding

import (
	"context"
	"math"

	"github.com/hyperjump/shirabe/pkg/utils"
)

// HashEncoder is a deterministic encoder that derives a fixed-dimension vector
// from the text's hash: the same text always gets the same embedding, and
// different texts almost always get different ones. It has no semantic
// knowledge; it is the fallback when no ONNX model is available, and the
// standard encoder for tests.
type HashEncoder struct {
	dimensions int
}

// NewHashEncoder returns a HashEncoder with the given dimensions (384 when <= 0).
func NewHashEncoder(dimensions int) *HashEncoder {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &HashEncoder{dimensions: dimensions}
}

// Encode returns a deterministic embedding derived from the text hash.
func (e *HashEncoder) Encode(ctx context.Context, text string, normalize bool) ([]float32, error) {
	h := hashString(text)
	emb := make([]float32, e.dimensions)
	for i := 0; i < e.dimensions; i++ {
		emb[i] = float32(math.Sin(float64(h*(i+1)))*0.1 + 0.01)
	}
	if normalize {
		utils.NormalizeL2(emb)
	}
	return emb, nil
}

// Dimensions returns the embedding dimension.
func (e *HashEncoder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op for HashEncoder.
func (e *HashEncoder) Close() error {
	return nil
}

// hashString returns a deterministic non-negative hash of s.
func hashString(s string) int {
	h := 0
	for _, c := range s {
		h = 31*h + int(c)
	}
	if h < 0 {
		h = -h
	}
	return h
}
