package quant

import (
	"fmt"

	"github.com/strand-ml/strand/internal/tensor"
)

// State dict key suffixes for quantization parameters. Callers supply the
// prefix (typically "<module path>.weight_").
const (
	KeyScheme    = "qscheme"
	KeyType      = "dtype"
	KeyScale     = "scale"
	KeyZeroPoint = "zero_point"
	KeyAxis      = "axis"
)

// SaveState writes the params into a state dict under the given key prefix.
//
// Scheme and target type are always written. Scale and zero point are
// written unless the scheme is SchemeNone. Axis is written for both
// per-channel schemes, keeping save and load symmetric.
func SaveState(dest map[string]*tensor.RawTensor, prefix string, p Params) {
	dest[prefix+KeyScheme] = tensor.ScalarInt64(int64(p.Scheme))
	dest[prefix+KeyType] = tensor.ScalarInt64(int64(p.Type))

	if p.Scheme == SchemeNone {
		return
	}

	scale, _ := tensor.FromFloat64(p.Scale, tensor.Shape{len(p.Scale)})
	zp, _ := tensor.FromInt64(p.ZeroPoint, tensor.Shape{len(p.ZeroPoint)})
	dest[prefix+KeyScale] = scale
	dest[prefix+KeyZeroPoint] = zp

	if p.Scheme.PerChannel() {
		dest[prefix+KeyAxis] = tensor.ScalarInt64(int64(p.Axis))
	}
}

// dtypeFromInt64 converts a persisted target type back to a DataType,
// rejecting values outside the known range.
func dtypeFromInt64(v int64) (tensor.DataType, error) {
	dt := tensor.DataType(v)
	switch dt {
	case tensor.Float32, tensor.Float64, tensor.Float16, tensor.BFloat16,
		tensor.Int8, tensor.Int32, tensor.Int64, tensor.Uint8, tensor.Bool:
		return dt, nil
	default:
		return 0, fmt.Errorf("%w: persisted value %d", ErrUnsupportedType, v)
	}
}

// LoadState reconstructs Params from a state dict fragment written by
// SaveState and returns the keys it consumed. The caller removes the
// consumed keys from the source map and installs the returned Params in one
// step, so a failed load leaves the live parameters untouched.
//
// A missing expected key fails with ErrMissingState; entries stored with the
// wrong tensor type or out-of-range enum values are rejected rather than
// trusted.
func LoadState(src map[string]*tensor.RawTensor, prefix string) (Params, []string, error) {
	var p Params
	var consumed []string

	get := func(key string, want tensor.DataType) (*tensor.RawTensor, error) {
		raw, ok := src[prefix+key]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingState, prefix+key)
		}
		if raw.DType() != want {
			return nil, fmt.Errorf("state key %q: stored as %s, want %s", prefix+key, raw.DType(), want)
		}
		consumed = append(consumed, prefix+key)
		return raw, nil
	}

	rawScheme, err := get(KeyScheme, tensor.Int64)
	if err != nil {
		return Params{}, nil, err
	}
	p.Scheme, err = schemeFromInt64(rawScheme.AsInt64()[0])
	if err != nil {
		return Params{}, nil, err
	}

	rawType, err := get(KeyType, tensor.Int64)
	if err != nil {
		return Params{}, nil, err
	}
	p.Type, err = dtypeFromInt64(rawType.AsInt64()[0])
	if err != nil {
		return Params{}, nil, err
	}

	if p.Scheme == SchemeNone {
		return p, consumed, nil
	}

	rawScale, err := get(KeyScale, tensor.Float64)
	if err != nil {
		return Params{}, nil, err
	}
	p.Scale = append([]float64(nil), rawScale.AsFloat64()...)

	rawZP, err := get(KeyZeroPoint, tensor.Int64)
	if err != nil {
		return Params{}, nil, err
	}
	p.ZeroPoint = append([]int64(nil), rawZP.AsInt64()...)

	if p.Scheme.PerChannel() {
		rawAxis, err := get(KeyAxis, tensor.Int64)
		if err != nil {
			return Params{}, nil, err
		}
		p.Axis = int(rawAxis.AsInt64()[0])
	}

	return p, consumed, nil
}
