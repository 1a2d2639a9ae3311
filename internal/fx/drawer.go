package fx

import (
	"fmt"
	"hash/fnv"
	"reflect"
	"sort"
	"strings"

	"github.com/emicklei/dot"

	"github.com/strand-ml/strand/internal/quant"
)

// Fixed fill colors for the well-known opcodes.
var opColors = map[Op]string{
	OpInput:      "AliceBlue",
	OpCallModule: "LemonChiffon1",
	OpGetParam:   "Yellow2",
	OpGetAttr:    "LightGrey",
	OpOutput:     "PowderBlue",
}

// Palette for opcodes outside the fixed table. The color is picked by
// hashing the target name, so a given target keeps its color across runs.
var hashPalette = []string{
	"CadetBlue1",
	"Coral",
	"DarkOliveGreen1",
	"DarkSeaGreen1",
	"GhostWhite",
	"Khaki1",
	"LavenderBlush1",
	"LightSkyBlue",
	"MistyRose1",
	"MistyRose2",
	"PaleTurquoise2",
	"PeachPuff1",
	"Salmon",
	"Thistle1",
	"Thistle3",
	"Wheat1",
}

const weightNodeColor = "Salmon"

// Literal sequences in argument lists are truncated to this many elements.
const maxListLen = 10

// DrawerOption configures a Drawer.
type DrawerOption func(*Drawer)

// IgnoreGetAttr drops get_attr nodes (and their edges) from the rendering.
func IgnoreGetAttr() DrawerOption {
	return func(d *Drawer) { d.ignoreGetAttr = true }
}

// Drawer renders a traced module tree as DOT graphs, one per traced
// (sub)module. The root graph is keyed by the drawer name; a sub-module
// invoked as call_module target "block" under root name "net" is keyed
// "net_block", and so on down the tree.
//
// Rendering never mutates the graph or the module tree.
type Drawer struct {
	name          string
	ignoreGetAttr bool
	graphs        map[string]*dot.Graph
}

// NewDrawer renders the module tree rooted at root and returns the drawer
// holding the resulting graphs.
func NewDrawer(root *Module, name string, opts ...DrawerOption) (*Drawer, error) {
	if root.IsLeaf() {
		return nil, fmt.Errorf("module %q has no traced graph", root.TypeName())
	}

	d := &Drawer{
		name:   name,
		graphs: make(map[string]*dot.Graph),
	}
	for _, opt := range opts {
		opt(d)
	}
	if err := d.render(root, name); err != nil {
		return nil, err
	}
	return d, nil
}

// Graphs returns all rendered graphs keyed by name.
func (d *Drawer) Graphs() map[string]*dot.Graph {
	return d.graphs
}

// Graph returns the root module's graph.
func (d *Drawer) Graph() *dot.Graph {
	return d.graphs[d.name]
}

// SubGraph returns the graph rendered for the sub-module at the given
// call_module target path.
func (d *Drawer) SubGraph(target string) (*dot.Graph, bool) {
	g, ok := d.graphs[d.name+"_"+target]
	return g, ok
}

// render emits the graph for m under key, then descends into every
// call_module node whose target resolves to a traced module.
func (d *Drawer) render(m *Module, key string) error {
	g, err := d.toDot(m, key)
	if err != nil {
		return fmt.Errorf("render %q: %w", key, err)
	}
	d.graphs[key] = g

	for _, n := range m.graph.Nodes() {
		if n.Op != OpCallModule {
			continue
		}
		sub, err := m.Resolve(n.Target)
		if err != nil {
			return fmt.Errorf("render %q: %w", key, err)
		}
		if sub.IsLeaf() {
			continue
		}
		if err := d.render(sub, key+"_"+n.Target); err != nil {
			return err
		}
	}
	return nil
}

func (d *Drawer) skip(n *Node) bool {
	return d.ignoreGetAttr && n.Op == OpGetAttr
}

func (d *Drawer) toDot(m *Module, key string) (*dot.Graph, error) {
	g := dot.NewGraph(dot.Directed)
	g.ID(key)
	g.Attr("rankdir", "TB")

	for _, n := range m.graph.Nodes() {
		if d.skip(n) {
			continue
		}

		label, err := d.nodeLabel(m, n)
		if err != nil {
			return nil, err
		}
		dn := g.Node(n.Name)
		dn.Attr("label", dot.Literal(`"`+label+`"`))
		dn.Attr("shape", "record")
		dn.Attr("style", "filled,rounded")
		dn.Attr("fillcolor", d.nodeColor(n))
		dn.Attr("fontcolor", "#000000")

		if n.Op == OpCallModule {
			sub, err := m.Resolve(n.Target)
			if err != nil {
				return nil, err
			}
			if sub.IsLeaf() {
				d.addWeightNodes(g, n, sub, dn)
			}
		}
	}

	for _, n := range m.graph.Nodes() {
		if d.skip(n) {
			continue
		}
		for _, user := range n.Users {
			if d.skip(user) {
				continue
			}
			g.Edge(g.Node(n.Name), g.Node(user.Name))
		}
	}

	return g, nil
}

// addWeightNodes emits one satellite node per parameter and buffer of a leaf
// module, each with an edge into the invoking call_module node.
func (d *Drawer) addWeightNodes(g *dot.Graph, n *Node, leaf *Module, dn dot.Node) {
	add := func(marker string, t NamedTensor) {
		id := n.Name + "." + t.Name
		label := fmt.Sprintf("{%s|op_code=get_%s\\l|dtype=%s%v\\n}",
			escapeLabel(id), marker, t.Tensor.DType(), []int(t.Tensor.Shape()))
		wn := g.Node(id)
		wn.Attr("label", dot.Literal(`"`+label+`"`))
		wn.Attr("shape", "record")
		wn.Attr("style", "filled,rounded")
		wn.Attr("fillcolor", weightNodeColor)
		wn.Attr("fontcolor", "#000000")
		g.Edge(wn, dn)
	}

	for _, p := range leaf.NamedParameters() {
		add("parameter", p)
	}
	for _, b := range leaf.NamedBuffers() {
		add("buffer", b)
	}
}

// nodeColor picks the fill color: fixed table for known opcodes, otherwise a
// stable hash of the target name into the palette.
func (d *Drawer) nodeColor(n *Node) string {
	if c, ok := opColors[n.Op]; ok {
		return c
	}
	h := fnv.New32a()
	h.Write([]byte(n.Target))
	return hashPalette[h.Sum32()%uint32(len(hashPalette))]
}

// nodeLabel builds the record-shaped label for one node.
func (d *Drawer) nodeLabel(m *Module, n *Node) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "{name=%%%s|op_code=%s\\n", n.Name, n.Op)

	if n.Op == OpCallModule {
		sub, err := m.Resolve(n.Target)
		if err != nil {
			return "", err
		}
		b.WriteString("\\n" + escapeLabel(sub.TypeName()) + "\\n|")
		for _, c := range sub.Constants() {
			fmt.Fprintf(&b, "%s: %s\\n", c.Name, escapeLabel(formatValue(c.Value)))
		}
	} else {
		fmt.Fprintf(&b, "|target=%s\\n", escapeLabel(n.Target))
		if len(n.Args) > 0 {
			parts := make([]string, len(n.Args))
			for i, a := range n.Args {
				parts[i] = formatValue(a)
			}
			fmt.Fprintf(&b, "|args=(\\l%s,\\n)\\l", escapeLabel(strings.Join(parts, ",\\n")))
		}
		if len(n.Kwargs) > 0 {
			parts := make([]string, len(n.Kwargs))
			for i, kw := range n.Kwargs {
				parts[i] = kw.Name + ": " + formatValue(kw.Value)
			}
			fmt.Fprintf(&b, "|kwargs=\\{\\l%s,\\n\\}\\l", escapeLabel(strings.Join(parts, ",\\n")))
		}
		fmt.Fprintf(&b, "|num_users=%d\\n", len(n.Users))
	}

	meta, err := metaLabel(n.Meta)
	if err != nil {
		return "", fmt.Errorf("node %q: %w", n.Name, err)
	}
	b.WriteString(meta)
	b.WriteString("}")
	return b.String(), nil
}

// formatValue renders one argument value. Node references render as %name;
// literal sequences are truncated to maxListLen elements.
func formatValue(v any) string {
	if n, ok := v.(*Node); ok {
		return "%" + n.Name
	}
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		parts := make([]string, 0, rv.Len()+1)
		for i := 0; i < rv.Len(); i++ {
			if i == maxListLen {
				parts = append(parts, "...")
				break
			}
			parts = append(parts, formatValue(rv.Index(i).Interface()))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return fmt.Sprint(v)
}

// escapeLabel escapes characters that are structural in record labels.
// Labels are emitted pre-quoted (dot.Literal) so that the \n/\l line breaks
// reach graphviz intact; the quote itself therefore needs escaping too.
func escapeLabel(s string) string {
	r := strings.NewReplacer("{", "\\{", "}", "\\}", "|", "\\|", "<", "\\<", ">", "\\>", `"`, `\"`)
	return r.Replace(s)
}

// metaLabel flattens a node's tensor metadata into label fragments. It
// recurses through slices and mappings of TensorMeta records in traversal
// order; map entries are visited in sorted key order so labels stay
// deterministic. Any other non-nil value fails with ErrUnsupportedMeta.
func metaLabel(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case *TensorMeta:
		return stringifyMeta(x)
	case []*TensorMeta:
		var b strings.Builder
		for _, item := range x {
			s, err := metaLabel(item)
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		}
		return b.String(), nil
	case []any:
		var b strings.Builder
		for _, item := range x {
			s, err := metaLabel(item)
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		}
		return b.String(), nil
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var b strings.Builder
		for _, k := range keys {
			s, err := metaLabel(x[k])
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		}
		return b.String(), nil
	default:
		return "", fmt.Errorf("%w: %T", ErrUnsupportedMeta, v)
	}
}

// stringifyMeta renders one TensorMeta record, including quantization fields
// when present.
func stringifyMeta(tm *TensorMeta) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "|dtype=%s\\n", tm.DType)
	fmt.Fprintf(&b, "|shape=%s\\n", intTuple(tm.Shape))
	fmt.Fprintf(&b, "|requires_grad=%t\\n", tm.RequiresGrad)
	fmt.Fprintf(&b, "|stride=%s\\n", intTuple(tm.Stride))

	if tm.Quant == nil || tm.Quant.Scheme == quant.SchemeNone {
		return b.String(), nil
	}

	switch {
	case tm.Quant.Scheme == quant.PerTensorAffine:
		if len(tm.Quant.Scale) == 0 || len(tm.Quant.ZeroPoint) == 0 {
			return "", fmt.Errorf("%w: per-tensor quantization without scale/zero point", ErrUnsupportedMeta)
		}
		fmt.Fprintf(&b, "|q_scale=%v\\n", tm.Quant.Scale[0])
		fmt.Fprintf(&b, "|q_zero_point=%d\\n", tm.Quant.ZeroPoint[0])
	case tm.Quant.Scheme.PerChannel():
		fmt.Fprintf(&b, "|q_per_channel_scale=%v\\n", tm.Quant.Scale)
		fmt.Fprintf(&b, "|q_per_channel_zero_point=%v\\n", tm.Quant.ZeroPoint)
		fmt.Fprintf(&b, "|q_per_channel_axis=%d\\n", tm.Quant.Axis)
	default:
		return "", fmt.Errorf("%w: qscheme %s", ErrUnsupportedMeta, tm.Quant.Scheme)
	}
	fmt.Fprintf(&b, "|qscheme=%s\\n", tm.Quant.Scheme)
	return b.String(), nil
}

// intTuple renders ints as "(a, b, c)".
func intTuple(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprint(x)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
