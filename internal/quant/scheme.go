// Package quant implements reference quantization parameters for weight
// tensors: a scheme/target descriptor attached to a float weight, with
// operations to produce a quantized copy, a fake-quantized copy, and to
// persist the descriptor alongside a model state dict.
//
// The numeric kernels live in internal/tensor; this package owns dispatch,
// validation and serialization only.
package quant

import "fmt"

// Scheme identifies how scale and zero point apply to a weight tensor.
type Scheme int

// Supported quantization schemes.
const (
	// SchemeNone marks a weight that is not quantized. Quantize rejects it;
	// FakeQuantize passes the weight through unchanged.
	SchemeNone Scheme = iota

	// PerTensorAffine uses a single (scale, zeroPoint) pair for the whole
	// tensor.
	PerTensorAffine

	// PerChannelAffine uses an independent (scale, zeroPoint) pair per slice
	// along Axis.
	PerChannelAffine

	// PerChannelAffineFloatParams is PerChannelAffine with float-valued
	// quantization parameters, as produced by some observers. Dispatch and
	// serialization treat it like PerChannelAffine.
	PerChannelAffineFloatParams
)

// String returns a human-readable scheme name.
func (s Scheme) String() string {
	switch s {
	case SchemeNone:
		return "none"
	case PerTensorAffine:
		return "per_tensor_affine"
	case PerChannelAffine:
		return "per_channel_affine"
	case PerChannelAffineFloatParams:
		return "per_channel_affine_float_qparams"
	default:
		return fmt.Sprintf("scheme(%d)", int(s))
	}
}

// PerChannel reports whether the scheme carries per-channel parameters.
func (s Scheme) PerChannel() bool {
	return s == PerChannelAffine || s == PerChannelAffineFloatParams
}

// schemeFromInt64 converts a persisted scheme value back to a Scheme,
// rejecting values outside the known range.
func schemeFromInt64(v int64) (Scheme, error) {
	s := Scheme(v)
	switch s {
	case SchemeNone, PerTensorAffine, PerChannelAffine, PerChannelAffineFloatParams:
		return s, nil
	default:
		return 0, fmt.Errorf("%w: persisted value %d", ErrUnsupportedScheme, v)
	}
}
