package arith

import (
	"strconv"
	"strings"
)

// node is a node in the abstract syntax tree of an expression.
type node struct {
	kind nodeKind

	// name is the literal text of a nodeNum.
	name string
	// pos is the column of the literal or operator.
	pos int

	left  *node
	right *node
}

type nodeKind int8

const (
	nodeNone nodeKind = iota

	nodeNum // push num

	nodePos // evaluate left
	nodeNeg // evaluate left, then negate

	nodeAdd      // evaluate left, add right
	nodeSub      // evaluate left, sub right
	nodeMul      // evaluate left, mul right
	nodeDiv      // evaluate left, true div by right
	nodeFloorDiv // evaluate left, floor div by right
	nodeMod      // evaluate left, mod right
	nodePow      // evaluate left, exp by right

	nodeKinds
)

var nodeNames = [...]string{
	nodeNone:     "None",
	nodeNum:      "Num",
	nodePos:      "Pos",
	nodeNeg:      "Neg",
	nodeAdd:      "Add",
	nodeSub:      "Sub",
	nodeMul:      "Mul",
	nodeDiv:      "Div",
	nodeFloorDiv: "FloorDiv",
	nodeMod:      "Mod",
	nodePow:      "Pow",
}

func (k nodeKind) String() string {
	if k < 0 || k >= nodeKinds {
		return "nodeKind(" + strconv.Itoa(int(k)) + ")"
	}
	return nodeNames[k]
}

// binary reports whether nodes of kind k use both left and right.
func (k nodeKind) binary() bool {
	return nodeAdd <= k && k <= nodePow
}

// opText is the source spelling of each operator node kind.
var opText = [...]string{
	nodePos:      "+",
	nodeNeg:      "-",
	nodeAdd:      "+",
	nodeSub:      "-",
	nodeMul:      "*",
	nodeDiv:      "/",
	nodeFloorDiv: "//",
	nodeMod:      "%",
	nodePow:      "**",
}

func (n *node) String() string {
	var b strings.Builder
	n.fmt(&b)
	return b.String()
}

// fmt writes the node fully parenthesized, so that the result parses to the
// same tree.
func (n *node) fmt(b *strings.Builder) {
	b.WriteByte('(')
	defer b.WriteByte(')')
	switch {
	case n.kind == nodeNone:
		// Invalid nodes use invalid characters.
		b.WriteByte('$')
		if n.left != nil {
			n.left.fmt(b)
		}
		b.WriteByte('#')
		if n.right != nil {
			n.right.fmt(b)
		}
		b.WriteByte('$')
	case n.kind == nodeNum:
		b.WriteString(n.name)
	case n.kind == nodePos, n.kind == nodeNeg:
		b.WriteString(opText[n.kind])
		n.left.fmt(b)
	case n.kind.binary():
		n.left.fmt(b)
		b.WriteByte(' ')
		b.WriteString(opText[n.kind])
		b.WriteByte(' ')
		n.right.fmt(b)
	default:
		panic("arith: invalid node kind " + n.kind.String() + " after writing " + b.String())
	}
}
