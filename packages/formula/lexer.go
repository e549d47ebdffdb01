package formula

import (
	"fmt"
	"unicode"

	"github.com/vogtb/go-formula/packages/channel"
)

// TokenType represents different types of tokens in formulas
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenText
	TokenString
	TokenNumber
	TokenIdentifier
	TokenLeftParen
	TokenRightParen
	TokenPlus
	TokenMinus
	TokenMultiply
	TokenDivide
	TokenColon
	TokenComma
)

var tokenNames = map[TokenType]string{
	TokenEOF:        "EOF",
	TokenText:       "TEXT",
	TokenString:     "STRING",
	TokenNumber:     "NUMBER",
	TokenIdentifier: "IDENTIFIER",
	TokenLeftParen:  "LEFT_PARENS",
	TokenRightParen: "RIGHT_PARENS",
	TokenPlus:       "PLUS",
	TokenMinus:      "MINUS",
	TokenMultiply:   "MULTIPLY",
	TokenDivide:     "DIVIDE",
	TokenColon:      "COLON",
	TokenComma:      "COMMA",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token represents a lexical token with position information. Pos and
// Length are rune offsets into the source so that errors can be underlined.
type Token struct {
	Type   TokenType
	Value  string
	Pos    int
	Length int
}

func (t Token) String() string {
	if t.Value == "" {
		return t.Type.String()
	}
	return fmt.Sprintf("%s(%q)", t.Type, t.Value)
}

// character classification constants. slightly easier to read.
const (
	charQuote      = '"'
	charEqual      = '='
	charPeriod     = '.'
	charUnderscore = '_'
)

// symbols maps each single-character symbol to its token type
var symbols = map[rune]TokenType{
	'(': TokenLeftParen,
	')': TokenRightParen,
	'+': TokenPlus,
	'-': TokenMinus,
	'*': TokenMultiply,
	'/': TokenDivide,
	':': TokenColon,
	',': TokenComma,
}

// lexState is a state of the scanner. each state scans at most one token
// and names the state that follows it.
type lexState int

const (
	stateDone lexState = iota
	stateText
	stateNextToken
	stateString
	stateSymbol
	stateNumber
	stateIdentifier
)

// Lexer tokenizes formula source text onto a channel
type Lexer struct {
	runes   []rune // UTF-8 aware representation
	pos     int
	start   int // first rune of the token being scanned
	out     *channel.Channel[Token]
	eofSent bool
}

// NewLexer creates a new lexer for the given source
func NewLexer(source string) *Lexer {
	return &Lexer{
		runes: []rune(source),
	}
}

// Lex scans the whole source and pushes every token onto out. whatever
// happens, exactly one EOF token is pushed last and out is closed, so a
// parser waiting on out never blocks forever.
func (l *Lexer) Lex(out *channel.Channel[Token]) (err error) {
	l.out = out
	l.pos = 0
	l.eofSent = false

	defer func() {
		if !l.eofSent {
			if eofErr := l.emitEOF(); err == nil {
				err = eofErr
			}
		}
	}()

	state := stateText
	for state != stateDone {
		state, err = l.step(state)
		if err != nil {
			return err
		}
	}
	return nil
}

// step runs the transition for state
func (l *Lexer) step(state lexState) (lexState, error) {
	switch state {
	case stateText:
		return l.lexText()
	case stateNextToken:
		return l.lexNextToken()
	case stateString:
		return l.lexString()
	case stateSymbol:
		return l.lexSymbol()
	case stateNumber:
		return l.lexNumber()
	case stateIdentifier:
		return l.lexIdentifier()
	default:
		return stateDone, nil
	}
}

// lexText decides between formula and literal mode. anything that does
// not start with '=' is a single TEXT token.
func (l *Lexer) lexText() (lexState, error) {
	if l.current() == charEqual {
		l.pos++
		return stateNextToken, nil
	}

	l.start = 0
	l.pos = len(l.runes)
	if err := l.emit(TokenText, string(l.runes)); err != nil {
		return stateDone, err
	}
	return stateDone, l.emitEOF()
}

func (l *Lexer) lexNextToken() (lexState, error) {
	for !l.eof() && unicode.IsSpace(l.current()) {
		l.pos++
	}

	if l.eof() {
		return stateDone, l.emitEOF()
	}

	l.start = l.pos
	ch := l.current()

	switch {
	case ch == charQuote:
		l.pos++
		return stateString, nil
	case isSymbol(ch):
		l.pos++
		return stateSymbol, nil
	case isDigit(ch):
		return stateNumber, nil
	case isAlpha(ch) || ch == charUnderscore:
		return stateIdentifier, nil
	}

	return stateDone, &LexError{Pos: l.pos, Message: fmt.Sprintf("unexpected character %q", ch)}
}

// lexString scans the contents of a string literal. there are no escape
// sequences, the first quote ends the string.
func (l *Lexer) lexString() (lexState, error) {
	for !l.eof() && l.current() != charQuote {
		l.pos++
	}
	if l.eof() {
		return stateDone, &LexError{Pos: l.start, Message: "unterminated string literal"}
	}

	value := string(l.runes[l.start+1 : l.pos])
	l.pos++ // consume closing quote
	return stateNextToken, l.emit(TokenString, value)
}

func (l *Lexer) lexSymbol() (lexState, error) {
	ch := l.runes[l.start]
	return stateNextToken, l.emit(symbols[ch], string(ch))
}

// lexNumber scans a run of digits and periods. "1.2.3" is scanned as one
// token and rejected later when the parser converts it.
func (l *Lexer) lexNumber() (lexState, error) {
	for !l.eof() && (isDigit(l.current()) || l.current() == charPeriod) {
		l.pos++
	}
	return stateNextToken, l.emit(TokenNumber, string(l.runes[l.start:l.pos]))
}

func (l *Lexer) lexIdentifier() (lexState, error) {
	for !l.eof() && (isAlphaNumeric(l.current()) || l.current() == charUnderscore) {
		l.pos++
	}
	return stateNextToken, l.emit(TokenIdentifier, string(l.runes[l.start:l.pos]))
}

// emit pushes the token spanning l.start to l.pos
func (l *Lexer) emit(tokenType TokenType, value string) error {
	return l.out.Push(Token{
		Type:   tokenType,
		Value:  value,
		Pos:    l.start,
		Length: l.pos - l.start,
	})
}

// emitEOF pushes the EOF token and closes the channel
func (l *Lexer) emitEOF() error {
	l.eofSent = true
	err := l.out.Push(Token{Type: TokenEOF, Pos: l.pos})
	l.out.Close()
	return err
}

// helper methods for character navigation and classification

func (l *Lexer) current() rune {
	if l.pos >= len(l.runes) {
		return 0
	}
	return l.runes[l.pos]
}

func (l *Lexer) eof() bool {
	return l.pos >= len(l.runes)
}

func isSymbol(ch rune) bool {
	_, ok := symbols[ch]
	return ok
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isAlpha(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isAlphaNumeric(ch rune) bool {
	return isAlpha(ch) || isDigit(ch)
}
