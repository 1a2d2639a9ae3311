package fx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strand-ml/strand/internal/tensor"
)

func TestGraphWiresUsers(t *testing.T) {
	g := NewGraph()

	x := g.NewNode("x", OpInput, "x")
	y := g.NewNode("y", OpInput, "y")
	add := g.NewNode("add", OpCallFunction, "operator.add", x, y)
	out := g.NewNode("out", OpOutput, "output", add)

	require.Len(t, g.Nodes(), 4)
	assert.Equal(t, []*Node{add}, x.Users)
	assert.Equal(t, []*Node{add}, y.Users)
	assert.Equal(t, []*Node{out}, add.Users)
	assert.Empty(t, out.Users)
}

func TestGraphKwargWiresUsers(t *testing.T) {
	g := NewGraph()

	x := g.NewNode("x", OpInput, "x")
	mul := g.NewNode("mul", OpCallFunction, "operator.mul")
	mul.SetKwarg("input", x)
	mul.SetKwarg("factor", 2.0)

	assert.Equal(t, []*Node{mul}, x.Users)
	require.Len(t, mul.Kwargs, 2)
	assert.Equal(t, "factor", mul.Kwargs[1].Name)
}

func TestModuleResolve(t *testing.T) {
	inner := NewModule("strand.nn.Linear")
	block := NewModule("Block").AddChild("fc", inner)
	root := NewModule("Net").AddChild("block", block)

	m, err := root.Resolve("block.fc")
	require.NoError(t, err)
	assert.Same(t, inner, m)

	m, err = root.Resolve("block")
	require.NoError(t, err)
	assert.Same(t, block, m)

	_, err = root.Resolve("block.missing")
	require.ErrorIs(t, err, ErrUnresolvedTarget)
	_, err = root.Resolve("nope")
	require.ErrorIs(t, err, ErrUnresolvedTarget)
}

func TestModuleRegistrationOrder(t *testing.T) {
	w, err := tensor.FromFloat32([]float32{1, 2}, tensor.Shape{2})
	require.NoError(t, err)
	b, err := tensor.FromFloat32([]float32{0}, tensor.Shape{1})
	require.NoError(t, err)

	m := NewModule("strand.nn.Linear").
		AddParameter("weight", w).
		AddParameter("bias", b).
		AddConstant("in_features", 2).
		AddConstant("out_features", 1)

	params := m.NamedParameters()
	require.Len(t, params, 2)
	assert.Equal(t, "weight", params[0].Name)
	assert.Equal(t, "bias", params[1].Name)

	consts := m.Constants()
	require.Len(t, consts, 2)
	assert.Equal(t, "in_features", consts[0].Name)
	assert.True(t, m.IsLeaf())
}
