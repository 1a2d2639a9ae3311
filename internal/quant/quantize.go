package quant

import (
	"fmt"

	"github.com/strand-ml/strand/internal/tensor"
)

// Quantize produces a quantized copy of weight according to params.
// The weight is never modified.
//
// Supported combinations:
//   - PerTensorAffine with Uint8/Int8 (integer affine), or Float16/BFloat16
//     (plain cast, scale and zero point ignored)
//   - PerChannelAffine and PerChannelAffineFloatParams with Uint8/Int8
//
// Everything else fails with ErrUnsupportedScheme or ErrUnsupportedType.
func Quantize(weight *tensor.RawTensor, params Params) (*tensor.RawTensor, error) {
	if err := params.Validate(weight.Shape()); err != nil {
		return nil, err
	}

	switch params.Scheme {
	case PerTensorAffine:
		switch params.Type {
		case tensor.Uint8, tensor.Int8:
			return tensor.QuantizePerTensor(weight, params.Scale[0], params.ZeroPoint[0], params.Type)
		case tensor.Float16:
			return tensor.CastFloat16(weight)
		case tensor.BFloat16:
			return tensor.CastBFloat16(weight)
		default:
			return nil, fmt.Errorf("%w: %s for scheme %s", ErrUnsupportedType, params.Type, params.Scheme)
		}
	case PerChannelAffine, PerChannelAffineFloatParams:
		switch params.Type {
		case tensor.Uint8, tensor.Int8:
			return tensor.QuantizePerChannel(weight, params.Scale, params.ZeroPoint, params.Axis, params.Type)
		default:
			return nil, fmt.Errorf("%w: %s for scheme %s", ErrUnsupportedType, params.Type, params.Scheme)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, params.Scheme)
	}
}

// FakeQuantize quantizes and immediately dequantizes the weight, producing a
// float tensor whose values carry the quantization error. This simulates
// inference-time precision loss without changing the storage type.
//
// With SchemeNone the weight is returned as-is (identity, no error).
func FakeQuantize(weight *tensor.RawTensor, params Params) (*tensor.RawTensor, error) {
	if params.Scheme == SchemeNone {
		return weight, nil
	}

	q, err := Quantize(weight, params)
	if err != nil {
		return nil, err
	}
	d, err := tensor.Dequantize(q)
	if err != nil {
		return nil, fmt.Errorf("fake quantize: %w", err)
	}
	return d, nil
}
