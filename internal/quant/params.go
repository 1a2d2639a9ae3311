package quant

import (
	"fmt"

	"github.com/strand-ml/strand/internal/tensor"
)

// Params describes how one weight tensor is quantized.
//
// Axis is always present so that every scheme serializes with a uniform key
// set; it is meaningful only for the per-channel schemes.
type Params struct {
	Scheme    Scheme
	Type      tensor.DataType // Target storage type
	Scale     []float64       // One entry per tensor, or per channel along Axis
	ZeroPoint []int64         // Same cardinality as Scale
	Axis      int             // Channel axis for per-channel schemes
}

// Default returns the framework-wide fallback parameters: per-tensor affine
// quantization to uint8 with scale 1.0 and zero point 0.
func Default() Params {
	return Params{
		Scheme:    PerTensorAffine,
		Type:      tensor.Uint8,
		Scale:     []float64{1.0},
		ZeroPoint: []int64{0},
		Axis:      0,
	}
}

// Clone returns a deep copy of the params.
func (p Params) Clone() Params {
	p.Scale = append([]float64(nil), p.Scale...)
	p.ZeroPoint = append([]int64(nil), p.ZeroPoint...)
	return p
}

// Equal reports whether two parameter sets are identical field by field.
func (p Params) Equal(other Params) bool {
	if p.Scheme != other.Scheme || p.Type != other.Type || p.Axis != other.Axis {
		return false
	}
	if len(p.Scale) != len(other.Scale) || len(p.ZeroPoint) != len(other.ZeroPoint) {
		return false
	}
	for i := range p.Scale {
		if p.Scale[i] != other.Scale[i] {
			return false
		}
	}
	for i := range p.ZeroPoint {
		if p.ZeroPoint[i] != other.ZeroPoint[i] {
			return false
		}
	}
	return true
}

// Validate checks the params against the shape of the weight they describe.
// It runs before any tensor math so that cardinality mistakes surface as
// configuration errors, not kernel panics.
func (p Params) Validate(weightShape tensor.Shape) error {
	switch p.Scheme {
	case SchemeNone:
		return nil
	case PerTensorAffine:
		if len(p.Scale) != 1 || len(p.ZeroPoint) != 1 {
			return fmt.Errorf("%w: per-tensor scheme needs exactly one scale/zero point pair, got %d/%d",
				ErrUnsupportedType, len(p.Scale), len(p.ZeroPoint))
		}
		return nil
	case PerChannelAffine, PerChannelAffineFloatParams:
		if p.Axis < 0 || p.Axis >= len(weightShape) {
			return fmt.Errorf("%w: axis %d out of range for weight shape %v",
				ErrUnsupportedType, p.Axis, weightShape)
		}
		channels := weightShape[p.Axis]
		if len(p.Scale) != channels || len(p.ZeroPoint) != channels {
			return fmt.Errorf("%w: %d scales and %d zero points for %d channels along axis %d",
				ErrUnsupportedType, len(p.Scale), len(p.ZeroPoint), channels, p.Axis)
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedScheme, p.Scheme)
	}
}
