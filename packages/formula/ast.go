package formula

import (
	"fmt"
	"strings"
)

// NodeKind identifies the variant of a syntax tree node
type NodeKind uint8

const (
	KindText NodeKind = iota + 1
	KindString
	KindNumber
	KindConstant
	KindIdentifier
	KindCell
	KindUnary
	KindBinary
	KindRange
	KindGroup
	KindCall
)

var nodeKindNames = map[NodeKind]string{
	KindText:       "Text",
	KindString:     "String",
	KindNumber:     "Number",
	KindConstant:   "Constant",
	KindIdentifier: "Identifier",
	KindCell:       "Cell",
	KindUnary:      "Unary",
	KindBinary:     "Binary",
	KindRange:      "Range",
	KindGroup:      "Group",
	KindCall:       "Call",
}

func (k NodeKind) String() string {
	if name, ok := nodeKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("NodeKind(%d)", uint8(k))
}

// Node is a syntax tree node. the set of implementations is closed: only
// the node types in this file satisfy it.
type Node interface {
	Kind() NodeKind
	// String formats the node back into formula text
	String() string
	node()
}

// BinaryOp represents binary operators in AST nodes
type BinaryOp int

const (
	BinOpAdd BinaryOp = iota
	BinOpSubtract
	BinOpMultiply
	BinOpDivide
)

func (op BinaryOp) String() string {
	switch op {
	case BinOpAdd:
		return "+"
	case BinOpSubtract:
		return "-"
	case BinOpMultiply:
		return "*"
	case BinOpDivide:
		return "/"
	}
	return "?"
}

// UnaryOp represents unary operators in AST nodes
type UnaryOp int

const (
	UnaryOpPlus UnaryOp = iota
	UnaryOpMinus
)

func (op UnaryOp) String() string {
	if op == UnaryOpMinus {
		return "-"
	}
	return "+"
}

// Program is the root of a parsed formula
type Program struct {
	Body Node
}

func (p *Program) String() string {
	if p.Body == nil {
		return ""
	}
	if p.Body.Kind() == KindText {
		return p.Body.String()
	}
	return "=" + p.Body.String()
}

// TextNode is a whole non-formula input taken literally
type TextNode struct {
	Value string
}

// StringNode represents a string literal
type StringNode struct {
	Value string
}

// NumberNode represents a numeric literal, possibly the result of folding
type NumberNode struct {
	Value float64
}

// ConstantNode is a named constant such as PI
type ConstantNode struct {
	Name string
}

// IdentifierNode is a free name resolved against the identifier
// environment at evaluation time
type IdentifierNode struct {
	Name string
}

// CellNode is a reference to another cell by name
type CellNode struct {
	Name string
}

// UnaryNode represents a prefix sign
type UnaryNode struct {
	Op      UnaryOp
	Operand Node
}

// BinaryNode represents a binary arithmetic operation
type BinaryNode struct {
	Op    BinaryOp
	Left  Node
	Right Node
}

// RangeNode is START:END where both endpoints are cells or both are numbers
type RangeNode struct {
	Left  Node
	Right Node
}

// GroupNode is a parenthesized expression
type GroupNode struct {
	Expr Node
}

// CallNode represents a function call
type CallNode struct {
	Name string
	Args []Node
}

func (*TextNode) Kind() NodeKind       { return KindText }
func (*StringNode) Kind() NodeKind     { return KindString }
func (*NumberNode) Kind() NodeKind     { return KindNumber }
func (*ConstantNode) Kind() NodeKind   { return KindConstant }
func (*IdentifierNode) Kind() NodeKind { return KindIdentifier }
func (*CellNode) Kind() NodeKind       { return KindCell }
func (*UnaryNode) Kind() NodeKind      { return KindUnary }
func (*BinaryNode) Kind() NodeKind     { return KindBinary }
func (*RangeNode) Kind() NodeKind      { return KindRange }
func (*GroupNode) Kind() NodeKind      { return KindGroup }
func (*CallNode) Kind() NodeKind       { return KindCall }

func (*TextNode) node()       {}
func (*StringNode) node()     {}
func (*NumberNode) node()     {}
func (*ConstantNode) node()   {}
func (*IdentifierNode) node() {}
func (*CellNode) node()       {}
func (*UnaryNode) node()      {}
func (*BinaryNode) node()     {}
func (*RangeNode) node()      {}
func (*GroupNode) node()      {}
func (*CallNode) node()       {}

func (n *TextNode) String() string       { return n.Value }
func (n *StringNode) String() string     { return `"` + n.Value + `"` }
func (n *NumberNode) String() string     { return FormatNumber(n.Value) }
func (n *ConstantNode) String() string   { return n.Name }
func (n *IdentifierNode) String() string { return n.Name }
func (n *CellNode) String() string       { return n.Name }

func (n *UnaryNode) String() string {
	return n.Op.String() + n.Operand.String()
}

// String needs no parentheses: the parser only puts a Binary on the left
// of another operator when it came from a Group
func (n *BinaryNode) String() string {
	return fmt.Sprintf("%s %s %s", n.Left, n.Op, n.Right)
}

func (n *RangeNode) String() string {
	return n.Left.String() + ":" + n.Right.String()
}

func (n *GroupNode) String() string {
	return "(" + n.Expr.String() + ")"
}

func (n *CallNode) String() string {
	args := make([]string, len(n.Args))
	for i, arg := range n.Args {
		args[i] = arg.String()
	}
	return fmt.Sprintf("%s(%s)", n.Name, strings.Join(args, ", "))
}
