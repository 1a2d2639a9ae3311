// Copyright 2025 Strand ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package fx provides the public API for traced computation graphs and
// their visualization.
//
// A Module tree carries traced Graphs; NewDrawer renders one DOT graph per
// traced (sub)module, compatible with any graphviz toolchain.
//
// Example:
//
//	d, _ := fx.NewDrawer(root, "net")
//	os.WriteFile("net.dot", []byte(d.Graph().String()), 0o644)
package fx

import (
	"github.com/strand-ml/strand/internal/fx"
)

// Op is the kind of operation a graph node performs.
type Op = fx.Op

// Node operation kinds.
const (
	OpInput        Op = fx.OpInput
	OpCallModule   Op = fx.OpCallModule
	OpCallFunction Op = fx.OpCallFunction
	OpGetParam     Op = fx.OpGetParam
	OpGetAttr      Op = fx.OpGetAttr
	OpOutput       Op = fx.OpOutput
)

// Node is one operation in a traced graph.
type Node = fx.Node

// Kwarg is one keyword argument of a node.
type Kwarg = fx.Kwarg

// Graph is an ordered list of traced nodes.
type Graph = fx.Graph

// Module is a node in the module tree.
type Module = fx.Module

// NamedTensor is a parameter or buffer owned by a module.
type NamedTensor = fx.NamedTensor

// Constant is a declared module attribute.
type Constant = fx.Constant

// NamedChild is a direct sub-module with its attribute name.
type NamedChild = fx.NamedChild

// TensorMeta describes the tensor a node produces.
type TensorMeta = fx.TensorMeta

// Drawer renders a traced module tree as DOT graphs.
type Drawer = fx.Drawer

// DrawerOption configures a Drawer.
type DrawerOption = fx.DrawerOption

// Errors returned by this package.
var (
	ErrUnresolvedTarget = fx.ErrUnresolvedTarget
	ErrUnsupportedMeta  = fx.ErrUnsupportedMeta
)

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return fx.NewGraph()
}

// NewModule creates a module with the given type name.
func NewModule(typeName string) *Module {
	return fx.NewModule(typeName)
}

// NewDrawer renders the module tree rooted at root under the given name.
func NewDrawer(root *Module, name string, opts ...DrawerOption) (*Drawer, error) {
	return fx.NewDrawer(root, name, opts...)
}

// IgnoreGetAttr drops get_attr nodes from the rendering.
func IgnoreGetAttr() DrawerOption {
	return fx.IgnoreGetAttr()
}
