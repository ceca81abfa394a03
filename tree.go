package arith

import "strconv"

// Operator is an arithmetic operator.
type Operator int8

const (
	Add      Operator = iota + 1 // a + b
	Sub                          // a - b
	Mul                          // a * b
	Div                          // a / b
	FloorDiv                     // a // b
	Mod                          // a % b
	Pow                          // a ** b
	Pos                          // +a
	Neg                          // -a
)

var operators = [...]struct {
	text string
	kind nodeKind
}{
	Add:      {"+", nodeAdd},
	Sub:      {"-", nodeSub},
	Mul:      {"*", nodeMul},
	Div:      {"/", nodeDiv},
	FloorDiv: {"//", nodeFloorDiv},
	Mod:      {"%", nodeMod},
	Pow:      {"**", nodePow},
	Pos:      {"+", nodePos},
	Neg:      {"-", nodeNeg},
}

// String returns the operator as written in expressions.
func (op Operator) String() string {
	if op <= 0 || int(op) >= len(operators) {
		return "Operator(" + strconv.Itoa(int(op)) + ")"
	}
	return operators[op].text
}

// Unary reports whether op takes a single operand.
func (op Operator) Unary() bool {
	return op == Pos || op == Neg
}

func (k nodeKind) operator() Operator {
	for op := Add; int(op) < len(operators); op++ {
		if operators[op].kind == k {
			return op
		}
	}
	return 0
}

// Node is a node of a parsed expression. It is one of *NumberLiteral,
// *BinaryOp, or *UnaryOp.
type Node interface {
	exprNode()
}

// NumberLiteral is a number as written in the expression.
type NumberLiteral struct {
	// Text is the literal's source text.
	Text string
	// Float is whether the literal denotes a float rather than an integer.
	Float bool
	// Col is the literal's position.
	Col int
}

// BinaryOp is an operator applied to two operands.
type BinaryOp struct {
	Op          Operator
	Left, Right Node
	// Col is the operator's position.
	Col int
}

// UnaryOp is an operator applied to one operand.
type UnaryOp struct {
	Op      Operator
	Operand Node
	// Col is the operator's position.
	Col int
}

func (*NumberLiteral) exprNode() {}
func (*BinaryOp) exprNode()      {}
func (*UnaryOp) exprNode()       {}

// Tree returns a copy of the expression's syntax tree. Grouping brackets do
// not appear in the tree.
func (e *Expr) Tree() Node {
	return e.n.tree()
}

func (n *node) tree() Node {
	switch {
	case n.kind == nodeNum:
		return &NumberLiteral{Text: n.name, Float: literalIsFloat(n.name), Col: n.pos}
	case n.kind == nodePos, n.kind == nodeNeg:
		return &UnaryOp{Op: n.kind.operator(), Operand: n.left.tree(), Col: n.pos}
	case n.kind.binary():
		return &BinaryOp{Op: n.kind.operator(), Left: n.left.tree(), Right: n.right.tree(), Col: n.pos}
	default:
		panic("arith: invalid node kind " + n.kind.String())
	}
}
