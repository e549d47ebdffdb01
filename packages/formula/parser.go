package formula

import (
	"strconv"

	"github.com/vogtb/go-formula/packages/channel"
)

// Parser builds a syntax tree from the tokens a Lexer pushes onto a
// channel. it looks at most one token ahead.
//
// grammar, lowest precedence first:
//
//	expr    := term
//	term    := factor (('+'|'-') term)?
//	factor  := unary (('*'|'/') expr | ':' unary)?
//	unary   := ('+'|'-')? call
//	call    := primary ('(' args ')')?
//	primary := '(' expr ')' | IDENTIFIER | TEXT | STRING | NUMBER
//	args    := expr (',' expr)*
//
// term and factor recurse on their right operand, so both bind to the
// right: 8-4-2 is 8-(4-2).
type Parser struct {
	tokens  *channel.Channel[Token]
	current Token // last consumed token
}

// NewParser creates a parser reading from tokens
func NewParser(tokens *channel.Channel[Token]) *Parser {
	return &Parser{tokens: tokens}
}

// Parse parses one formula. the whole token stream up to EOF must form a
// single expression.
func (p *Parser) Parse() (*Program, error) {
	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	if tok.Type != TokenEOF {
		return nil, NewParseError(tok, "unexpected token %s after expression", tok.Type)
	}
	if _, err := p.consume(TokenEOF); err != nil {
		return nil, err
	}

	return &Program{Body: body}, nil
}

func (p *Parser) parseExpression() (Node, error) {
	return p.parseTerm()
}

// parseTerm handles addition and subtraction. these are never folded.
func (p *Parser) parseTerm() (Node, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}

	tok, err := p.peek()
	if err != nil {
		return nil, err
	}

	var op BinaryOp
	switch tok.Type {
	case TokenPlus:
		op = BinOpAdd
	case TokenMinus:
		op = BinOpSubtract
	default:
		return left, nil
	}
	if _, err := p.consume(); err != nil {
		return nil, err
	}

	right, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	return &BinaryNode{Op: op, Left: left, Right: right}, nil
}

// parseFactor handles multiplication, division and ranges
func (p *Parser) parseFactor() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	tok, err := p.peek()
	if err != nil {
		return nil, err
	}

	switch tok.Type {
	case TokenMultiply, TokenDivide:
		opTok, err := p.consume()
		if err != nil {
			return nil, err
		}
		right, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return p.foldFactor(opTok, left, right)

	case TokenColon:
		colon, err := p.consume()
		if err != nil {
			return nil, err
		}
		return p.parseRange(left, colon)
	}

	return left, nil
}

// foldFactor builds a multiplication or division, collapsing it into a
// single number when both operands are literal numbers
func (p *Parser) foldFactor(opTok Token, left, right Node) (Node, error) {
	op := BinOpMultiply
	if opTok.Type == TokenDivide {
		op = BinOpDivide
	}

	leftNum, leftOk := left.(*NumberNode)
	rightNum, rightOk := right.(*NumberNode)
	if !leftOk || !rightOk {
		return &BinaryNode{Op: op, Left: left, Right: right}, nil
	}

	if op == BinOpMultiply {
		return &NumberNode{Value: leftNum.Value * rightNum.Value}, nil
	}
	if rightNum.Value == 0 {
		return nil, NewParseError(opTok, "division by zero in constant expression")
	}
	return &NumberNode{Value: leftNum.Value / rightNum.Value}, nil
}

// parseRange parses the END of START:END. START must be a cell or a
// number and END must be of the same kind.
func (p *Parser) parseRange(left Node, colon Token) (Node, error) {
	switch left.Kind() {
	case KindCell, KindNumber:
	default:
		return nil, NewParseError(colon, "invalid range: START should be one of Cell or Number, but was of type %s", left.Kind())
	}

	right, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if right.Kind() != left.Kind() {
		return nil, newInvalidRangeError(p.current, left.Kind(), right.Kind())
	}
	return &RangeNode{Left: left, Right: right}, nil
}

// parseUnary handles a single prefix sign, folding it into number literals
func (p *Parser) parseUnary() (Node, error) {
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}

	var op UnaryOp
	switch tok.Type {
	case TokenPlus:
		op = UnaryOpPlus
	case TokenMinus:
		op = UnaryOpMinus
	default:
		return p.parseCall()
	}
	if _, err := p.consume(); err != nil {
		return nil, err
	}

	operand, err := p.parseCall()
	if err != nil {
		return nil, err
	}

	if num, ok := operand.(*NumberNode); ok {
		if op == UnaryOpMinus {
			return &NumberNode{Value: -num.Value}, nil
		}
		return num, nil
	}
	return &UnaryNode{Op: op, Operand: operand}, nil
}

// parseCall classifies a bare identifier. in order: a call when followed
// by '(', a cell when it looks like one, a constant, a function that takes
// no arguments, and otherwise a free identifier.
func (p *Parser) parseCall() (Node, error) {
	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	ident, ok := node.(*IdentifierNode)
	if !ok {
		return node, nil
	}

	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	if tok.Type == TokenLeftParen {
		if _, err := p.consume(); err != nil {
			return nil, err
		}
		args, err := p.parseArguments()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(TokenRightParen); err != nil {
			return nil, err
		}
		return &CallNode{Name: ident.Name, Args: args}, nil
	}

	if IsCellName(ident.Name) {
		return &CellNode{Name: ident.Name}, nil
	}
	if _, ok := LookupConstant(ident.Name); ok {
		return &ConstantNode{Name: ident.Name}, nil
	}
	if fn, ok := lookupIdentifierFunction(ident.Name); ok {
		return &CallNode{Name: fn.String()}, nil
	}

	return ident, nil
}

// parseArguments parses a comma separated argument list. an empty list is
// accepted here and left to the function's arity check.
func (p *Parser) parseArguments() ([]Node, error) {
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	if tok.Type == TokenRightParen {
		return []Node{}, nil
	}

	first, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	args := []Node{first}

	for {
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}
		if tok.Type != TokenComma {
			return args, nil
		}
		if _, err := p.consume(); err != nil {
			return nil, err
		}

		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
}

// parsePrimary handles parentheses, identifiers and literals
func (p *Parser) parsePrimary() (Node, error) {
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}

	switch tok.Type {
	case TokenLeftParen:
		if _, err := p.consume(); err != nil {
			return nil, err
		}
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(TokenRightParen); err != nil {
			return nil, err
		}
		return &GroupNode{Expr: expr}, nil

	case TokenIdentifier:
		p.consume()
		return &IdentifierNode{Name: tok.Value}, nil

	case TokenText:
		p.consume()
		return &TextNode{Value: tok.Value}, nil

	case TokenString:
		p.consume()
		return &StringNode{Value: tok.Value}, nil

	case TokenNumber:
		p.consume()
		val, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, NewParseError(tok, "invalid number: %s", tok.Value)
		}
		return &NumberNode{Value: val}, nil

	case TokenEOF:
		return nil, NewParseError(tok, "unexpected end of formula")
	}

	return nil, NewParseError(tok, "unexpected token %s", tok.Type)
}

// token access

// peek returns the next token without consuming it
func (p *Parser) peek() (Token, error) {
	tok, err := p.tokens.Peek()
	if err != nil {
		return Token{}, NewParseError(p.current, "expected a token but the input ended")
	}
	return tok, nil
}

// consume takes the next token. when expected is given the token must be
// of that type.
func (p *Parser) consume(expected ...TokenType) (Token, error) {
	tok, err := p.tokens.Pop()
	if err != nil {
		return Token{}, NewParseError(p.current, "expected a token but the input ended")
	}
	p.current = tok

	if len(expected) > 0 && tok.Type != expected[0] {
		if tok.Type == TokenEOF {
			return tok, NewParseError(tok, "expected %s but the formula ended", expected[0])
		}
		return tok, NewParseError(tok, "expected token of type %s but got %s", expected[0], tok.Type)
	}
	return tok, nil
}
