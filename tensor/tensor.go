// Copyright 2025 Strand ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for the Strand tensor core.
//
// The package exposes the low-level tensor representation shared by the
// framework's utility layers:
//   - RawTensor: contiguous typed buffer with shape and strides
//   - Shape, DataType: core type definitions
//   - Affine quantize/dequantize kernels and 16-bit float casts
//
// Example:
//
//	w, _ := tensor.FromFloat32([]float32{1, 2, 3, 4}, tensor.Shape{2, 2})
//	q, _ := tensor.QuantizePerTensor(w, 0.1, 0, tensor.Uint8)
//	d, _ := tensor.Dequantize(q)
package tensor

import (
	"github.com/strand-ml/strand/internal/tensor"
)

// DataType represents the underlying data type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32  DataType = tensor.Float32
	Float64  DataType = tensor.Float64
	Float16  DataType = tensor.Float16
	BFloat16 DataType = tensor.BFloat16
	Int8     DataType = tensor.Int8
	Int32    DataType = tensor.Int32
	Int64    DataType = tensor.Int64
	Uint8    DataType = tensor.Uint8
	Bool     DataType = tensor.Bool
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// RawTensor is the low-level tensor representation.
type RawTensor = tensor.RawTensor

// AffineParams records the affine mapping attached to quantized tensors.
type AffineParams = tensor.AffineParams

// Creation functions

// NewRaw creates a new zero-initialized tensor with the given shape and dtype.
func NewRaw(shape Shape, dtype DataType) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype)
}

// FromFloat32 creates a Float32 tensor from a Go slice.
func FromFloat32(data []float32, shape Shape) (*RawTensor, error) {
	return tensor.FromFloat32(data, shape)
}

// FromFloat64 creates a Float64 tensor from a Go slice.
func FromFloat64(data []float64, shape Shape) (*RawTensor, error) {
	return tensor.FromFloat64(data, shape)
}

// FromInt64 creates an Int64 tensor from a Go slice.
func FromInt64(data []int64, shape Shape) (*RawTensor, error) {
	return tensor.FromInt64(data, shape)
}

// Quantization kernels

// QuantizePerTensor quantizes a Float32 tensor with one (scale, zeroPoint) pair.
func QuantizePerTensor(w *RawTensor, scale float64, zeroPoint int64, target DataType) (*RawTensor, error) {
	return tensor.QuantizePerTensor(w, scale, zeroPoint, target)
}

// QuantizePerChannel quantizes a Float32 tensor with per-channel parameters
// along axis.
func QuantizePerChannel(w *RawTensor, scales []float64, zeroPoints []int64, axis int, target DataType) (*RawTensor, error) {
	return tensor.QuantizePerChannel(w, scales, zeroPoints, axis, target)
}

// CastFloat16 converts a Float32 tensor to half-precision storage.
func CastFloat16(w *RawTensor) (*RawTensor, error) {
	return tensor.CastFloat16(w)
}

// CastBFloat16 converts a Float32 tensor to brain-float storage.
func CastBFloat16(w *RawTensor) (*RawTensor, error) {
	return tensor.CastBFloat16(w)
}

// Dequantize converts a reduced-precision tensor back to Float32.
func Dequantize(q *RawTensor) (*RawTensor, error) {
	return tensor.Dequantize(q)
}
