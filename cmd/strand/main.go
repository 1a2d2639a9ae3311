// Package main provides the Strand ML Framework CLI.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/strand-ml/strand/fx"
	"github.com/strand-ml/strand/quant"
	"github.com/strand-ml/strand/tensor"
)

const version = "v0.0.1-dev"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version":
			fmt.Printf("Strand ML Framework %s\n", version)
			return
		case "dot":
			outDir := "."
			if len(os.Args) > 3 && os.Args[2] == "-o" {
				outDir = os.Args[3]
			}
			if err := writeDemoGraphs(outDir); err != nil {
				log.Fatalf("dot: %v", err)
			}
			return
		}
	}

	fmt.Println("Strand ML Framework - Graph Tooling for Go")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version         Show version")
	fmt.Println("  dot [-o dir]    Render the demo model as DOT graphs")
}

// writeDemoGraphs traces a two-layer demo model with a quantized first
// weight and writes one .dot file per rendered graph into dir.
func writeDemoGraphs(dir string) error {
	root, err := demoModel()
	if err != nil {
		return err
	}

	d, err := fx.NewDrawer(root, "demo")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for name, g := range d.Graphs() {
		path := filepath.Join(dir, name+".dot")
		if err := os.WriteFile(path, []byte(g.String()), 0o644); err != nil {
			return err
		}
		log.Printf("wrote %s", path)
	}
	return nil
}

// demoModel builds: x -> fc1 (quantized linear) -> relu -> fc2 -> out.
func demoModel() (*fx.Module, error) {
	w1, err := tensor.FromFloat32([]float32{0.5, -1.25, 2.0, 0.75, -0.5, 1.5}, tensor.Shape{2, 3})
	if err != nil {
		return nil, err
	}
	w2, err := tensor.FromFloat32([]float32{1.0, -1.0}, tensor.Shape{1, 2})
	if err != nil {
		return nil, err
	}

	fc1 := fx.NewModule("strand.nn.Linear").
		AddParameter("weight", w1).
		AddConstant("in_features", 3).
		AddConstant("out_features", 2)
	fc2 := fx.NewModule("strand.nn.Linear").
		AddParameter("weight", w2).
		AddConstant("in_features", 2).
		AddConstant("out_features", 1)

	g := fx.NewGraph()
	x := g.NewNode("x", fx.OpInput, "x")
	h1 := g.NewNode("fc1", fx.OpCallModule, "fc1", x)
	act := g.NewNode("relu", fx.OpCallFunction, "strand.relu", h1)
	h2 := g.NewNode("fc2", fx.OpCallModule, "fc2", act)
	g.NewNode("out", fx.OpOutput, "output", h2)

	params := quant.Params{
		Scheme:    quant.PerTensorAffine,
		Type:      tensor.Uint8,
		Scale:     []float64{0.05},
		ZeroPoint: []int64{64},
	}
	h1.SetMeta(&fx.TensorMeta{
		DType:  tensor.Uint8,
		Shape:  tensor.Shape{1, 2},
		Stride: []int{2, 1},
		Quant:  &params,
	})

	return fx.NewModule("DemoNet").
		AddChild("fc1", fc1).
		AddChild("fc2", fc2).
		SetGraph(g), nil
}
