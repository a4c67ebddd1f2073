package ast

import "keel/report"

// Node is the abstract interface for all syntax nodes produced by the parser.
type Node interface {
	// Span returns the text span of the node.
	Span() *report.TextSpan

	// Children returns the direct child nodes of the node in source order.
	// The enumeration is fixed: it only depends on the shape of the node.
	Children() []Node
}

// NodeBase is a utility base struct for all nodes.
type NodeBase struct {
	// The span over which the node occurs.
	span *report.TextSpan
}

// NewNodeBaseOn creates a new node base with the given span.
func NewNodeBaseOn(span *report.TextSpan) NodeBase {
	return NodeBase{span: span}
}

// NewNodeBaseOver creates a new node base spanning over two spans.
func NewNodeBaseOver(start, end *report.TextSpan) NodeBase {
	return NodeBase{span: report.NewSpanOver(start, end)}
}

func (nb NodeBase) Span() *report.TextSpan {
	return nb.span
}

// Inspect traverses the tree rooted at node in depth-first order calling f
// for each node.  If f returns false, the children of that node are skipped.
func Inspect(node Node, f func(Node) bool) {
	if node == nil || !f(node) {
		return
	}

	for _, child := range node.Children() {
		Inspect(child, f)
	}
}

// appendNodes appends the non-nil nodes to list.  It exists because a typed
// nil pointer stored in a Node interface is not itself nil.
func appendNodes(list []Node, nodes ...Node) []Node {
	for _, node := range nodes {
		switch v := node.(type) {
		case nil:
			continue
		case *Block:
			if v == nil {
				continue
			}
		case *TypeLabel:
			if v == nil {
				continue
			}
		}

		list = append(list, node)
	}

	return list
}

func exprNodes(exprs []Expr) []Node {
	nodes := make([]Node, 0, len(exprs))
	for _, expr := range exprs {
		nodes = appendNodes(nodes, expr)
	}

	return nodes
}
