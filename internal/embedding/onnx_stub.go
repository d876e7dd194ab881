//go:build !cgo
// +build !cgo

package embedding

import (
	"context"
	"errors"
)

// ONNXEncoder stub type when built without CGO (see onnx.go for the real implementation).
type ONNXEncoder struct{}

// NewONNXEncoder returns an error when built without CGO (ONNX not available).
func NewONNXEncoder(_ string, _, _, _ int) (*ONNXEncoder, error) {
	return nil, errors.New("ONNX encoder requires CGO; build with CGO_ENABLED=1 and onnxruntime")
}

// Encode always fails on the stub.
func (e *ONNXEncoder) Encode(_ context.Context, _ string, _ bool) ([]float32, error) {
	return nil, errors.New("ONNX encoder not available")
}

// Dimensions returns 0 on the stub.
func (e *ONNXEncoder) Dimensions() int { return 0 }

// Close is a no-op on the stub.
func (e *ONNXEncoder) Close() error { return nil }
