// Package fx models traced computation graphs and renders them as DOT
// diagrams. A traced module owns a Graph of Nodes; the Drawer walks the
// module tree and emits one labeled directed graph per traced (sub)module.
package fx

// Op is the kind of operation a graph node performs.
type Op int

// Node operation kinds.
const (
	OpInput Op = iota
	OpCallModule
	OpCallFunction
	OpGetParam
	OpGetAttr
	OpOutput
)

// String returns the canonical opcode name.
func (op Op) String() string {
	switch op {
	case OpInput:
		return "placeholder"
	case OpCallModule:
		return "call_module"
	case OpCallFunction:
		return "call_function"
	case OpGetParam:
		return "get_param"
	case OpGetAttr:
		return "get_attr"
	case OpOutput:
		return "output"
	default:
		return "unknown"
	}
}

// Kwarg is one keyword argument of a node, ordered as recorded by the tracer.
type Kwarg struct {
	Name  string
	Value any
}

// Node is one operation in a traced graph. Nodes are produced by a tracing
// component and are read-only as far as this package is concerned.
//
// Target is the dotted module path for OpCallModule, the parameter or
// attribute path for OpGetParam/OpGetAttr, and the function's qualified name
// for OpCallFunction.
//
// Meta is nil, a *TensorMeta, or a nested structure of slices, maps and
// tuples of TensorMeta records describing the node's output.
type Node struct {
	Name   string
	Op     Op
	Target string
	Args   []any
	Kwargs []Kwarg
	Users  []*Node
	Meta   any
}
