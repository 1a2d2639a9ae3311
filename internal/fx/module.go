package fx

import (
	"fmt"
	"strings"

	"github.com/strand-ml/strand/internal/tensor"
)

// NamedTensor is a parameter or buffer owned by a module.
type NamedTensor struct {
	Name   string
	Tensor *tensor.RawTensor
}

// Constant is a declared module attribute rendered on call_module labels
// (kernel sizes, strides and the like).
type Constant struct {
	Name  string
	Value any
}

// NamedChild is a direct sub-module with its attribute name.
type NamedChild struct {
	Name   string
	Module *Module
}

// Module is a node in the module tree. A traced module carries a Graph; a
// leaf module exposes only parameters, buffers and constants.
//
// Children, parameters and buffers keep registration order so traversals are
// deterministic.
type Module struct {
	typeName  string
	graph     *Graph
	children  []NamedChild
	byName    map[string]*Module
	params    []NamedTensor
	buffers   []NamedTensor
	constants []Constant
}

// NewModule creates a module with the given type name (e.g. "strand.nn.Linear").
func NewModule(typeName string) *Module {
	return &Module{
		typeName: typeName,
		byName:   make(map[string]*Module),
	}
}

// TypeName returns the module's type name.
func (m *Module) TypeName() string {
	return m.typeName
}

// SetGraph attaches a traced graph, making this a traceable (non-leaf) module.
func (m *Module) SetGraph(g *Graph) *Module {
	m.graph = g
	return m
}

// Graph returns the traced graph, or nil for a leaf module.
func (m *Module) Graph() *Graph {
	return m.graph
}

// IsLeaf reports whether the module has no traced graph. Leaf modules are
// opaque to the renderer except for their parameters and buffers.
func (m *Module) IsLeaf() bool {
	return m.graph == nil
}

// AddChild registers a direct sub-module under the given attribute name.
func (m *Module) AddChild(name string, child *Module) *Module {
	m.children = append(m.children, NamedChild{Name: name, Module: child})
	m.byName[name] = child
	return m
}

// AddParameter registers a named parameter tensor.
func (m *Module) AddParameter(name string, t *tensor.RawTensor) *Module {
	m.params = append(m.params, NamedTensor{Name: name, Tensor: t})
	return m
}

// AddBuffer registers a named buffer tensor.
func (m *Module) AddBuffer(name string, t *tensor.RawTensor) *Module {
	m.buffers = append(m.buffers, NamedTensor{Name: name, Tensor: t})
	return m
}

// AddConstant registers a declared constant attribute.
func (m *Module) AddConstant(name string, value any) *Module {
	m.constants = append(m.constants, Constant{Name: name, Value: value})
	return m
}

// Children returns the direct sub-modules in registration order.
func (m *Module) Children() []NamedChild {
	return m.children
}

// Child returns the direct sub-module with the given name.
func (m *Module) Child(name string) (*Module, bool) {
	c, ok := m.byName[name]
	return c, ok
}

// NamedParameters returns the module's parameters in registration order.
func (m *Module) NamedParameters() []NamedTensor {
	return m.params
}

// NamedBuffers returns the module's buffers in registration order.
func (m *Module) NamedBuffers() []NamedTensor {
	return m.buffers
}

// Constants returns the declared constant attributes in registration order.
func (m *Module) Constants() []Constant {
	return m.constants
}

// Resolve walks a dotted target path ("block.fc1") through the child tree
// and returns the module it names. An unknown atom fails with
// ErrUnresolvedTarget.
func (m *Module) Resolve(target string) (*Module, error) {
	cur := m
	for _, atom := range strings.Split(target, ".") {
		next, ok := cur.byName[atom]
		if !ok {
			return nil, fmt.Errorf("%w: %q has no child %q", ErrUnresolvedTarget, cur.typeName, atom)
		}
		cur = next
	}
	return cur, nil
}
