package fx

// Graph is an ordered list of nodes in trace (insertion) order. The order is
// stable for a given input, which keeps rendering deterministic.
type Graph struct {
	nodes []*Node
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{}
}

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	return g.nodes
}

// NewNode appends a node to the graph and wires use-def edges: every *Node
// among args records the new node as one of its users.
func (g *Graph) NewNode(name string, op Op, target string, args ...any) *Node {
	n := &Node{
		Name:   name,
		Op:     op,
		Target: target,
		Args:   args,
	}
	for _, arg := range args {
		if src, ok := arg.(*Node); ok {
			src.Users = append(src.Users, n)
		}
	}
	g.nodes = append(g.nodes, n)
	return n
}

// SetKwarg records a keyword argument on the node, preserving order. A *Node
// value is wired as a use like positional arguments.
func (n *Node) SetKwarg(name string, value any) *Node {
	if src, ok := value.(*Node); ok {
		src.Users = append(src.Users, n)
	}
	n.Kwargs = append(n.Kwargs, Kwarg{Name: name, Value: value})
	return n
}

// SetMeta attaches tensor metadata to the node.
func (n *Node) SetMeta(meta any) *Node {
	n.Meta = meta
	return n
}
