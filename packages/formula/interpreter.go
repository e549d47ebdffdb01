package formula

import (
	"errors"
	"fmt"
	"math"

	"github.com/as/log"
)

// Interpreter evaluates syntax trees against a cell table and an
// identifier environment. an Interpreter is not safe for concurrent use.
type Interpreter struct {
	cells       CellTable
	identifiers Identifiers
	functions   *BuiltInFunctions
	config      Config
	depth       int // current cell nesting
}

// NewInterpreter creates an interpreter with the default configuration.
// nil tables are treated as empty.
func NewInterpreter(cells CellTable, identifiers Identifiers) *Interpreter {
	return NewInterpreterWithConfig(cells, identifiers, DefaultConfig())
}

// NewInterpreterWithConfig creates an interpreter with cfg. zero fields of
// cfg fall back to their defaults.
func NewInterpreterWithConfig(cells CellTable, identifiers Identifiers, cfg Config) *Interpreter {
	if cells == nil {
		cells = Cells{}
	}
	if identifiers == nil {
		identifiers = Environment{}
	}
	cfg = cfg.withDefaults()
	return &Interpreter{
		cells:       cells,
		identifiers: identifiers,
		functions:   NewBuiltInFunctions(cfg.Clock),
		config:      cfg,
	}
}

// Run lexes, parses and evaluates source
func (in *Interpreter) Run(source string) (Primitive, error) {
	program, err := Parse(source)
	if err != nil {
		return nil, err
	}
	return in.Evaluate(program)
}

// Evaluate evaluates a parsed program
func (in *Interpreter) Evaluate(program *Program) (Primitive, error) {
	if program == nil || program.Body == nil {
		return nil, NewRuntimeError(KindTypeMismatch, "nothing to evaluate")
	}
	return in.evaluate(program.Body)
}

func (in *Interpreter) evaluate(node Node) (Primitive, error) {
	switch n := node.(type) {
	case *TextNode:
		return n.Value, nil
	case *StringNode:
		return n.Value, nil
	case *NumberNode:
		return n.Value, nil
	case *GroupNode:
		return in.evaluate(n.Expr)
	case *CellNode:
		return in.evaluateCell(n.Name)
	case *ConstantNode:
		return in.evaluateConstant(n)
	case *IdentifierNode:
		return in.evaluateIdentifier(n)
	case *UnaryNode:
		return in.evaluateUnary(n)
	case *BinaryNode:
		return in.evaluateBinary(n)
	case *RangeNode:
		return nil, NewRuntimeError(KindUnexpectedRange, "range %s can only be used as a function argument", n)
	case *CallNode:
		return in.evaluateCall(n)
	default:
		return nil, NewRuntimeError(KindTypeMismatch, "unknown node type %T", node)
	}
}

// evaluateCell runs the whole pipeline again over the formula stored in
// the named cell. nesting is bounded by Config.MaxDepth, which also stops
// cells that refer to themselves.
func (in *Interpreter) evaluateCell(name string) (Primitive, error) {
	cell, ok := in.cells.Cell(name)
	if !ok {
		return nil, NewRuntimeError(KindUnknownCell, "unknown cell %s", name)
	}

	if in.depth >= in.config.MaxDepth {
		return nil, &RuntimeError{
			Kind:    KindRecursionLimit,
			Message: fmt.Sprintf("cell references nested deeper than %d levels at %s", in.config.MaxDepth, name),
			Cell:    name,
		}
	}
	in.depth++
	defer func() { in.depth-- }()

	log.Debug.Add("cell", name, "depth", in.depth).Printf("evaluating cell")

	program, err := Parse(cell.Formula)
	if err != nil {
		var lexErr *LexError
		var parseErr *ParseError
		var rangeErr *InvalidRangeError
		if errors.As(err, &lexErr) || errors.As(err, &rangeErr) || errors.As(err, &parseErr) {
			return nil, &RuntimeError{
				Kind:    KindCellFormula,
				Message: "invalid formula in cell " + name,
				Cell:    name,
				Formula: cell.Formula,
				Err:     err,
			}
		}
		return nil, err
	}
	return in.Evaluate(program)
}

func (in *Interpreter) evaluateConstant(n *ConstantNode) (Primitive, error) {
	c, ok := LookupConstant(n.Name)
	if !ok {
		return nil, NewRuntimeError(KindUnknownConstant, "unknown constant %s", n.Name)
	}
	return c.Value(), nil
}

func (in *Interpreter) evaluateIdentifier(n *IdentifierNode) (Primitive, error) {
	value, ok := in.identifiers.Identifier(n.Name)
	if !ok {
		return nil, NewRuntimeError(KindUnknownIdentifier, "unknown identifier %s", n.Name)
	}
	normalized, ok := normalizePrimitive(value)
	if !ok {
		return nil, NewRuntimeError(KindTypeMismatch, "identifier %s is bound to an unsupported %T", n.Name, value)
	}
	return normalized, nil
}

func (in *Interpreter) evaluateUnary(n *UnaryNode) (Primitive, error) {
	if n.Operand.Kind() == KindRange {
		return nil, NewRuntimeError(KindUnexpectedRange, "cannot apply %s to range %s", n.Op, n.Operand)
	}
	value, err := in.evaluate(n.Operand)
	if err != nil {
		return nil, err
	}
	num, ok := value.(float64)
	if !ok {
		return nil, NewRuntimeError(KindTypeMismatch, "cannot apply %s to %s %q", n.Op, typeName(value), FormatPrimitive(value))
	}
	if n.Op == UnaryOpMinus {
		return -num, nil
	}
	return num, nil
}

// evaluateBinary follows IEEE 754, so dividing by zero gives an infinity
// or NaN rather than an error
func (in *Interpreter) evaluateBinary(n *BinaryNode) (Primitive, error) {
	if n.Left.Kind() == KindRange || n.Right.Kind() == KindRange {
		return nil, NewRuntimeError(KindUnexpectedRange, "cannot use a range as an operand of %s", n.Op)
	}

	left, err := in.evaluateNumber(n.Left, n.Op)
	if err != nil {
		return nil, err
	}
	right, err := in.evaluateNumber(n.Right, n.Op)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case BinOpAdd:
		return left + right, nil
	case BinOpSubtract:
		return left - right, nil
	case BinOpMultiply:
		return left * right, nil
	case BinOpDivide:
		return left / right, nil
	}
	return math.NaN(), nil
}

func (in *Interpreter) evaluateNumber(node Node, op BinaryOp) (float64, error) {
	value, err := in.evaluate(node)
	if err != nil {
		return 0, err
	}
	num, ok := value.(float64)
	if !ok {
		return 0, NewRuntimeError(KindTypeMismatch, "operator %s expects numbers, got %s %q", op, typeName(value), FormatPrimitive(value))
	}
	return num, nil
}

func (in *Interpreter) evaluateCall(n *CallNode) (Primitive, error) {
	fn, ok := LookupFunction(n.Name)
	if !ok {
		return nil, NewRuntimeError(KindUnknownFunction, "unknown function %s", n.Name)
	}

	args, err := in.functions.Validate(fn, n.Args, in)
	if err != nil {
		return nil, err
	}
	return in.functions.Call(fn, args...)
}

// evaluateArgs evaluates call arguments in order. a range argument is
// expanded in place, so SUM(1, A1:A2) receives three values.
func (in *Interpreter) evaluateArgs(args []Node) ([]Primitive, error) {
	values := make([]Primitive, 0, len(args))
	for _, arg := range args {
		rng, ok := arg.(*RangeNode)
		if !ok {
			value, err := in.evaluate(arg)
			if err != nil {
				return nil, err
			}
			values = append(values, value)
			continue
		}

		expanded, err := in.expandRange(rng)
		if err != nil {
			return nil, err
		}
		values = append(values, expanded...)
	}
	return values, nil
}

// expandRange evaluates every member of a range. Number:Number counts in
// steps of one toward the right endpoint, Cell:Cell walks the block row by
// row.
func (in *Interpreter) expandRange(rng *RangeNode) ([]Primitive, error) {
	switch left := rng.Left.(type) {
	case *NumberNode:
		right, ok := rng.Right.(*NumberNode)
		if !ok {
			return nil, NewRuntimeError(KindArgumentShape, "range %s must join two numbers", rng)
		}
		nums, err := numberRange(left.Value, right.Value, in.config.MaxRangeSize)
		if err != nil {
			return nil, NewRuntimeError(KindArgumentShape, "%v", err)
		}
		log.Debug.Add("range", rng.String(), "size", len(nums)).Printf("expanded number range")

		values := make([]Primitive, len(nums))
		for i, num := range nums {
			values[i] = num
		}
		return values, nil

	case *CellNode:
		right, ok := rng.Right.(*CellNode)
		if !ok {
			return nil, NewRuntimeError(KindArgumentShape, "range %s must join two cells", rng)
		}
		names, err := cellRangeNames(left.Name, right.Name, in.config.MaxRangeSize)
		if err != nil {
			return nil, NewRuntimeError(KindArgumentShape, "%v", err)
		}
		log.Debug.Add("range", rng.String(), "size", len(names)).Printf("expanded cell range")

		values := make([]Primitive, 0, len(names))
		for _, name := range names {
			value, err := in.evaluateCell(name)
			if err != nil {
				return nil, err
			}
			values = append(values, value)
		}
		return values, nil
	}

	return nil, NewRuntimeError(KindArgumentShape, "range %s must join two cells or two numbers", rng)
}
