package workflow

import "fmt"

// Node identifies a state of the review graph.
type Node int

const (
	NodeReviewer Node = iota
	NodeCoder
	NodeFinalizer
	NodeEnd
)

// String returns a human-readable description of the node
func (n Node) String() string {
	switch n {
	case NodeReviewer:
		return "reviewer"
	case NodeCoder:
		return "coder"
	case NodeFinalizer:
		return "finalizer"
	case NodeEnd:
		return "end"
	default:
		return fmt.Sprintf("node(%d)", int(n))
	}
}

type transition struct {
	next        Node
	conditional bool
	onContinue  Node
	onTerminate Node
}

// Graph is the immutable transition table of the review loop.
type Graph struct {
	entry Node
	edges map[Node]transition
}

// NewGraph builds the review → decide → code loop.
func NewGraph() *Graph {
	return &Graph{
		entry: NodeReviewer,
		edges: map[Node]transition{
			NodeReviewer:  {conditional: true, onContinue: NodeCoder, onTerminate: NodeFinalizer},
			NodeCoder:     {next: NodeReviewer},
			NodeFinalizer: {next: NodeEnd},
		},
	}
}

// Entry returns the first node of every run.
func (g *Graph) Entry() Node {
	return g.entry
}

// Conditional reports whether leaving from requires a Decision.
func (g *Graph) Conditional(from Node) bool {
	return g.edges[from].conditional
}

// Next returns the node that follows from. Conditional nodes need a decision.
func (g *Graph) Next(from Node, decision *Decision) (Node, error) {
	t, ok := g.edges[from]
	if !ok {
		return NodeEnd, fmt.Errorf("no transition out of %s", from)
	}
	if !t.conditional {
		return t.next, nil
	}
	if decision == nil {
		return NodeEnd, fmt.Errorf("transition out of %s requires a termination decision", from)
	}
	if decision.Terminate {
		return t.onTerminate, nil
	}
	return t.onContinue, nil
}
