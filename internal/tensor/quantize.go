package tensor

import (
	"fmt"
	"math"

	"github.com/d4l3k/go-bfloat16"
	"github.com/x448/float16"
)

// AffineParams records how a quantized tensor maps back to real values:
// real = (stored - zeroPoint) * scale.
//
// For per-tensor quantization Scales and ZeroPoints hold exactly one entry
// and Axis is 0. For per-channel quantization they hold one entry per slice
// along Axis.
type AffineParams struct {
	Scales     []float64
	ZeroPoints []int64
	Axis       int
	PerChannel bool
}

// Clone returns a deep copy of the params.
func (p *AffineParams) Clone() *AffineParams {
	return &AffineParams{
		Scales:     append([]float64(nil), p.Scales...),
		ZeroPoints: append([]int64(nil), p.ZeroPoints...),
		Axis:       p.Axis,
		PerChannel: p.PerChannel,
	}
}

// quantRange returns the clamping range for an integer quantization target.
func quantRange(target DataType) (qmin, qmax int64, err error) {
	switch target {
	case Uint8:
		return 0, 255, nil
	case Int8:
		return -128, 127, nil
	default:
		return 0, 0, fmt.Errorf("no integer quantization range for dtype %s", target)
	}
}

// quantizeValue maps one real value to the integer grid:
// clamp(round(v/scale + zeroPoint), qmin, qmax).
func quantizeValue(v, scale float64, zeroPoint, qmin, qmax int64) int64 {
	q := int64(math.Round(v/scale + float64(zeroPoint)))
	if q < qmin {
		q = qmin
	}
	if q > qmax {
		q = qmax
	}
	return q
}

// storeQuantized writes one grid value into a Uint8 or Int8 destination.
func storeQuantized(dst *RawTensor, i int, q int64) {
	if dst.dtype == Uint8 {
		dst.AsUint8()[i] = uint8(q)
	} else {
		dst.AsInt8()[i] = int8(q)
	}
}

// QuantizePerTensor quantizes a Float32 tensor to Uint8 or Int8 with a single
// (scale, zeroPoint) pair. The input is not modified; the result carries an
// AffineParams record so it can be dequantized without external state.
func QuantizePerTensor(w *RawTensor, scale float64, zeroPoint int64, target DataType) (*RawTensor, error) {
	if w.dtype != Float32 {
		return nil, fmt.Errorf("quantize per tensor: input dtype is %s, want float32", w.dtype)
	}
	if scale == 0 {
		return nil, fmt.Errorf("quantize per tensor: scale must be non-zero")
	}
	qmin, qmax, err := quantRange(target)
	if err != nil {
		return nil, fmt.Errorf("quantize per tensor: %w", err)
	}

	out, err := NewRaw(w.shape, target)
	if err != nil {
		return nil, err
	}
	src := w.AsFloat32()
	for i, v := range src {
		storeQuantized(out, i, quantizeValue(float64(v), scale, zeroPoint, qmin, qmax))
	}
	out.quant = &AffineParams{
		Scales:     []float64{scale},
		ZeroPoints: []int64{zeroPoint},
	}
	return out, nil
}

// QuantizePerChannel quantizes a Float32 tensor to Uint8 or Int8 using an
// independent (scale, zeroPoint) pair per slice along axis.
//
// len(scales) and len(zeroPoints) must both equal w.Shape()[axis]; this is
// checked before any element is touched.
func QuantizePerChannel(w *RawTensor, scales []float64, zeroPoints []int64, axis int, target DataType) (*RawTensor, error) {
	if w.dtype != Float32 {
		return nil, fmt.Errorf("quantize per channel: input dtype is %s, want float32", w.dtype)
	}
	if axis < 0 || axis >= len(w.shape) {
		return nil, fmt.Errorf("quantize per channel: axis %d out of range for shape %v", axis, w.shape)
	}
	channels := w.shape[axis]
	if len(scales) != channels || len(zeroPoints) != channels {
		return nil, fmt.Errorf("quantize per channel: got %d scales and %d zero points for %d channels along axis %d",
			len(scales), len(zeroPoints), channels, axis)
	}
	for i, s := range scales {
		if s == 0 {
			return nil, fmt.Errorf("quantize per channel: scale for channel %d must be non-zero", i)
		}
	}
	qmin, qmax, err := quantRange(target)
	if err != nil {
		return nil, fmt.Errorf("quantize per channel: %w", err)
	}

	out, err := NewRaw(w.shape, target)
	if err != nil {
		return nil, err
	}
	src := w.AsFloat32()
	axisStride := w.stride[axis]
	for i, v := range src {
		c := (i / axisStride) % channels
		storeQuantized(out, i, quantizeValue(float64(v), scales[c], zeroPoints[c], qmin, qmax))
	}
	out.quant = &AffineParams{
		Scales:     append([]float64(nil), scales...),
		ZeroPoints: append([]int64(nil), zeroPoints...),
		Axis:       axis,
		PerChannel: true,
	}
	return out, nil
}

// CastFloat16 converts a Float32 tensor to IEEE-754 half precision storage.
func CastFloat16(w *RawTensor) (*RawTensor, error) {
	if w.dtype != Float32 {
		return nil, fmt.Errorf("cast float16: input dtype is %s, want float32", w.dtype)
	}
	out, err := NewRaw(w.shape, Float16)
	if err != nil {
		return nil, err
	}
	dst := out.AsUint16()
	for i, v := range w.AsFloat32() {
		dst[i] = float16.Fromfloat32(v).Bits()
	}
	return out, nil
}

// CastBFloat16 converts a Float32 tensor to brain-float storage.
func CastBFloat16(w *RawTensor) (*RawTensor, error) {
	if w.dtype != Float32 {
		return nil, fmt.Errorf("cast bfloat16: input dtype is %s, want float32", w.dtype)
	}
	out, err := NewRaw(w.shape, BFloat16)
	if err != nil {
		return nil, err
	}
	copy(out.data, bfloat16.EncodeFloat32(w.AsFloat32()))
	return out, nil
}

// Dequantize converts a reduced-precision tensor back to Float32.
//
// Integer tensors must carry the AffineParams record attached by the
// quantize kernels. Float32 input is returned as a copy (identity).
func Dequantize(q *RawTensor) (*RawTensor, error) {
	switch q.dtype {
	case Float32:
		return q.Clone(), nil
	case Float16:
		out, err := NewRaw(q.shape, Float32)
		if err != nil {
			return nil, err
		}
		dst := out.AsFloat32()
		for i, bits := range q.AsUint16() {
			dst[i] = float16.Frombits(bits).Float32()
		}
		return out, nil
	case BFloat16:
		out, err := NewRaw(q.shape, Float32)
		if err != nil {
			return nil, err
		}
		copy(out.AsFloat32(), bfloat16.DecodeFloat32(q.data))
		return out, nil
	case Uint8, Int8:
		if q.quant == nil {
			return nil, fmt.Errorf("dequantize: %s tensor has no quantization record", q.dtype)
		}
		return dequantizeAffine(q)
	default:
		return nil, fmt.Errorf("dequantize: unsupported dtype %s", q.dtype)
	}
}

func dequantizeAffine(q *RawTensor) (*RawTensor, error) {
	out, err := NewRaw(q.shape, Float32)
	if err != nil {
		return nil, err
	}
	dst := out.AsFloat32()
	p := q.quant

	stored := func(i int) int64 {
		if q.dtype == Uint8 {
			return int64(q.AsUint8()[i])
		}
		return int64(q.AsInt8()[i])
	}

	if !p.PerChannel {
		scale, zp := p.Scales[0], p.ZeroPoints[0]
		for i := range dst {
			dst[i] = float32(float64(stored(i)-zp) * scale)
		}
		return out, nil
	}

	channels := q.shape[p.Axis]
	axisStride := q.stride[p.Axis]
	if len(p.Scales) != channels || len(p.ZeroPoints) != channels {
		return nil, fmt.Errorf("dequantize: %d scales and %d zero points for %d channels along axis %d",
			len(p.Scales), len(p.ZeroPoints), channels, p.Axis)
	}
	for i := range dst {
		c := (i / axisStride) % channels
		dst[i] = float32(float64(stored(i)-p.ZeroPoints[c]) * p.Scales[c])
	}
	return out, nil
}
