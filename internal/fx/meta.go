package fx

import (
	"github.com/strand-ml/strand/internal/quant"
	"github.com/strand-ml/strand/internal/tensor"
)

// TensorMeta describes the tensor a node produces: dtype, shape, layout and,
// for quantized tensors, the quantization parameters. It is attached to
// nodes by a shape-propagation pass and only read here.
type TensorMeta struct {
	DType        tensor.DataType
	Shape        tensor.Shape
	Stride       []int
	RequiresGrad bool

	// Quant is non-nil when the tensor is quantized. Its Scheme selects
	// which fields the drawer renders.
	Quant *quant.Params
}
