package tensor

import (
	"testing"
)

// RawTensor Tests

func TestRawTensorAsFloat32(t *testing.T) {
	raw, _ := NewRaw(Shape{3, 2}, Float32)
	data := raw.AsFloat32()

	if len(data) != 6 {
		t.Errorf("AsFloat32 length = %d, want 6", len(data))
	}

	// Modify and verify zero-copy
	data[0] = 42
	if raw.AsFloat32()[0] != 42 {
		t.Error("AsFloat32 should return zero-copy slice")
	}
}

func TestRawTensorAsUint8(t *testing.T) {
	raw, _ := NewRaw(Shape{4, 4}, Uint8)
	data := raw.AsUint8()

	if len(data) != 16 {
		t.Errorf("AsUint8 length = %d, want 16", len(data))
	}

	data[0] = 255
	if raw.AsUint8()[0] != 255 {
		t.Error("AsUint8 should return zero-copy slice")
	}
}

func TestRawTensorAsInt32(t *testing.T) {
	raw, _ := NewRaw(Shape{3}, Int32)
	data := raw.AsInt32()

	if len(data) != 3 {
		t.Errorf("AsInt32 length = %d, want 3", len(data))
	}

	data[0] = 7
	if raw.AsInt32()[0] != 7 {
		t.Error("AsInt32 should return zero-copy slice")
	}
}

func TestScalarHelpers(t *testing.T) {
	i := ScalarInt64(-3)
	if i.DType() != Int64 || i.NumElements() != 1 || i.AsInt64()[0] != -3 {
		t.Errorf("ScalarInt64(-3) = %s tensor %v", i.DType(), i.AsInt64())
	}

	f := ScalarFloat64(0.25)
	if f.DType() != Float64 || f.NumElements() != 1 || f.AsFloat64()[0] != 0.25 {
		t.Errorf("ScalarFloat64(0.25) = %s tensor %v", f.DType(), f.AsFloat64())
	}
}

func TestRawTensorViewDTypeMismatch(t *testing.T) {
	raw, _ := NewRaw(Shape{2}, Float32)

	defer func() {
		if recover() == nil {
			t.Error("AsInt64 on a Float32 tensor should panic")
		}
	}()
	raw.AsInt64()
}

func TestFromFloat32(t *testing.T) {
	raw, err := FromFloat32([]float32{1, 2, 3, 4}, Shape{2, 2})
	if err != nil {
		t.Fatalf("FromFloat32 failed: %v", err)
	}
	if raw.DType() != Float32 {
		t.Errorf("DType = %s, want float32", raw.DType())
	}
	if raw.AsFloat32()[3] != 4 {
		t.Errorf("element 3 = %v, want 4", raw.AsFloat32()[3])
	}

	// Length must match the shape.
	if _, err := FromFloat32([]float32{1, 2, 3}, Shape{2, 2}); err == nil {
		t.Error("FromFloat32 with mismatched length should fail")
	}
}

func TestNewRawInvalidShape(t *testing.T) {
	if _, err := NewRaw(Shape{2, 0}, Float32); err == nil {
		t.Error("NewRaw with a zero dimension should fail")
	}
	if _, err := NewRaw(Shape{-1}, Float32); err == nil {
		t.Error("NewRaw with a negative dimension should fail")
	}
}

func TestRawTensorClone(t *testing.T) {
	raw, _ := FromFloat32([]float32{1, 2}, Shape{2})
	clone := raw.Clone()

	clone.AsFloat32()[0] = 99
	if raw.AsFloat32()[0] != 1 {
		t.Error("Clone should not share the data buffer")
	}
	if !clone.Shape().Equal(raw.Shape()) {
		t.Errorf("Clone shape = %v, want %v", clone.Shape(), raw.Shape())
	}
}

func TestRawTensorCloneKeepsQuantRecord(t *testing.T) {
	raw, _ := FromFloat32([]float32{1, 2, 3, 4}, Shape{2, 2})
	q, err := QuantizePerTensor(raw, 0.5, 10, Uint8)
	if err != nil {
		t.Fatalf("QuantizePerTensor failed: %v", err)
	}

	clone := q.Clone()
	if !clone.IsQuantized() {
		t.Fatal("Clone of a quantized tensor should stay quantized")
	}
	clone.Quant().Scales[0] = 9.0
	if q.Quant().Scales[0] != 0.5 {
		t.Error("Clone should not share the quantization record")
	}
}

// Shape Tests

func TestShapeNumElements(t *testing.T) {
	tests := []struct {
		shape Shape
		want  int
	}{
		{Shape{}, 1}, // scalar
		{Shape{5}, 5},
		{Shape{2, 3, 4}, 24},
	}

	for _, tt := range tests {
		if got := tt.shape.NumElements(); got != tt.want {
			t.Errorf("Shape%v.NumElements() = %d, want %d", tt.shape, got, tt.want)
		}
	}
}

func TestShapeComputeStrides(t *testing.T) {
	strides := Shape{2, 3, 4}.ComputeStrides()
	want := []int{12, 4, 1}
	for i := range want {
		if strides[i] != want[i] {
			t.Errorf("strides = %v, want %v", strides, want)
			break
		}
	}
}

func TestShapeEqual(t *testing.T) {
	if !(Shape{2, 3}).Equal(Shape{2, 3}) {
		t.Error("equal shapes should compare equal")
	}
	if (Shape{2, 3}).Equal(Shape{3, 2}) {
		t.Error("different shapes should not compare equal")
	}
	if (Shape{2, 3}).Equal(Shape{2, 3, 1}) {
		t.Error("shapes of different rank should not compare equal")
	}
}
