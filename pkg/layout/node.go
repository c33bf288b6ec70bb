package layout

import (
	"fmt"
	"strings"
)

// Node is the computed descriptor of one hierarchy element.
//
// Each identifier has exactly one Node per computation; Parent, Siblings and
// Children point at those canonical instances. X and Y are the shape center.
type Node struct {
	Value    string
	Level    int
	Rank     int
	Parent   *Node
	Siblings []*Node
	Children []*Node

	Width  float64
	Height float64
	X      float64
	Y      float64

	final bool
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// IsRoot reports whether the node is the hierarchy root.
func (n *Node) IsRoot() bool { return n.Parent == nil }

// Left returns the left edge of the shape.
func (n *Node) Left() float64 { return n.X - n.Width/2 }

// Right returns the right edge of the shape.
func (n *Node) Right() float64 { return n.X + n.Width/2 }

// Bottom returns the lower edge of the shape.
func (n *Node) Bottom() float64 { return n.Y - n.Height/2 }

// Top returns the upper edge of the shape.
func (n *Node) Top() float64 { return n.Y + n.Height/2 }

// String returns a one-line debug dump of the node.
func (n *Node) String() string {
	parent := "-"
	if n.Parent != nil {
		parent = n.Parent.Value
	}
	return fmt.Sprintf("%s level=%d rank=%d parent=%s children=[%s] siblings=[%s] width=%g height=%g x=%g y=%g",
		n.Value, n.Level, n.Rank, parent, values(n.Children), values(n.Siblings),
		n.Width, n.Height, n.X, n.Y)
}

func values(nodes []*Node) string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.Value
	}
	return strings.Join(ids, " ")
}
