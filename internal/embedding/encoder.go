// Package embedding provides text embedding via ONNX with a deterministic fallback.
package embedding

import (
	"context"
	"errors"
)

// ErrEncoding reports an encoder-internal failure (inference error, resource
// exhaustion). Callers test with errors.Is.
var ErrEncoding = errors.New("encoding failed")

// Encoder maps a text string to a fixed-dimension vector.
// Dimensions is constant for the lifetime of the encoder; all vectors returned
// by Encode have exactly that length. When normalize is true the returned
// vector has unit L2 norm, making dot product equal to cosine similarity.
type Encoder interface {
	Encode(ctx context.Context, text string, normalize bool) ([]float32, error)
	Dimensions() int
	Close() error
}
