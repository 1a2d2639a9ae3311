// Copyright 2025 Strand ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package quant provides the public API for reference weight quantization.
//
// A Params value describes how one float weight maps to a reduced-precision
// representation. Quantize produces the quantized copy, FakeQuantize the
// quantize-then-dequantize simulation, and SaveState/LoadState move the
// parameters in and out of a model state dict.
//
// Example:
//
//	w, _ := tensor.FromFloat32(weights, tensor.Shape{64, 128})
//	wq, _ := quant.NewWeightQuantizer("weight", w, nil) // default params
//	simulated, _ := wq.Weight()                         // fake-quantized view
package quant

import (
	"github.com/strand-ml/strand/internal/quant"
	"github.com/strand-ml/strand/internal/tensor"
)

// Scheme identifies how scale and zero point apply to a weight tensor.
type Scheme = quant.Scheme

// Supported quantization schemes.
const (
	SchemeNone                  Scheme = quant.SchemeNone
	PerTensorAffine             Scheme = quant.PerTensorAffine
	PerChannelAffine            Scheme = quant.PerChannelAffine
	PerChannelAffineFloatParams Scheme = quant.PerChannelAffineFloatParams
)

// Params describes how one weight tensor is quantized.
type Params = quant.Params

// WeightQuantizer owns one weight tensor and its quantization parameters.
type WeightQuantizer = quant.WeightQuantizer

// Errors returned by this package.
var (
	ErrUnsupportedScheme = quant.ErrUnsupportedScheme
	ErrUnsupportedType   = quant.ErrUnsupportedType
	ErrMissingState      = quant.ErrMissingState
)

// Default returns the framework-wide fallback parameters: per-tensor affine
// quantization to uint8 with scale 1.0 and zero point 0.
func Default() Params {
	return quant.Default()
}

// Quantize produces a quantized copy of weight according to params.
func Quantize(weight *tensor.RawTensor, params Params) (*tensor.RawTensor, error) {
	return quant.Quantize(weight, params)
}

// FakeQuantize quantizes and immediately dequantizes the weight, simulating
// inference-time precision loss in floating point.
func FakeQuantize(weight *tensor.RawTensor, params Params) (*tensor.RawTensor, error) {
	return quant.FakeQuantize(weight, params)
}

// SaveState writes params into a state dict under the given key prefix.
func SaveState(dest map[string]*tensor.RawTensor, prefix string, p Params) {
	quant.SaveState(dest, prefix, p)
}

// LoadState reconstructs Params from a state dict fragment and returns the
// keys it consumed.
func LoadState(src map[string]*tensor.RawTensor, prefix string) (Params, []string, error) {
	return quant.LoadState(src, prefix)
}

// NewWeightQuantizer creates a quantizer for the given weight. A nil params
// selects Default().
func NewWeightQuantizer(name string, weight *tensor.RawTensor, params *Params) (*WeightQuantizer, error) {
	return quant.NewWeightQuantizer(name, weight, params)
}
