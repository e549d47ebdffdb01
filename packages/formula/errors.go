package formula

import "fmt"

// ErrorCode represents standard spreadsheet error codes following
// Excel conventions. runtime errors carry one so a presentation layer can
// show the familiar cell error text.
type ErrorCode uint8

const (
	ErrorCodeValue ErrorCode = 1 // #VALUE! - wrong type of argument or operand
	ErrorCodeRef   ErrorCode = 2 // #REF! - invalid cell reference
	ErrorCodeName  ErrorCode = 3 // #NAME? - unrecognized function, constant or identifier
	ErrorCodeNum   ErrorCode = 4 // #NUM! - number too large to be represented
	ErrorCodeNA    ErrorCode = 5 // #N/A - wrong number of arguments for function
	ErrorCodeCycle ErrorCode = 6 // #CYCLE! - cell references nested too deeply
	ErrorCodeOther ErrorCode = 7 // #ERROR! - all other errors
)

// ErrorMapper maps error code numbers to their string representations
var ErrorMapper = map[ErrorCode]string{
	ErrorCodeValue: "#VALUE!",
	ErrorCodeRef:   "#REF!",
	ErrorCodeName:  "#NAME?",
	ErrorCodeNum:   "#NUM!",
	ErrorCodeNA:    "#N/A",
	ErrorCodeCycle: "#CYCLE!",
	ErrorCodeOther: "#ERROR!",
}

func (c ErrorCode) String() string {
	if s, ok := ErrorMapper[c]; ok {
		return s
	}
	return ErrorMapper[ErrorCodeOther]
}

// LexError reports a character the lexer could not scan. Pos is the rune
// offset of that character in the source.
type LexError struct {
	Pos     int
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%s at offset %d", e.Message, e.Pos)
}

// ParseError reports an unexpected or mismatched token. Token is the
// offending lexeme, whose Pos and Length locate it in the source.
type ParseError struct {
	Token   Token
	Message string
}

func (e *ParseError) Error() string {
	return e.Message
}

// NewParseError creates a parse error pointing at tok
func NewParseError(tok Token, format string, args ...any) *ParseError {
	return &ParseError{Token: tok, Message: fmt.Sprintf(format, args...)}
}

// InvalidRangeError is raised when the two endpoints of a range are not
// of the same kind, e.g. A1:3
type InvalidRangeError struct {
	ParseError
	Expected NodeKind
	Actual   NodeKind
}

func (e *InvalidRangeError) Error() string {
	return e.Message
}

// Unwrap lets errors.As match an InvalidRangeError as a *ParseError
func (e *InvalidRangeError) Unwrap() error {
	return &e.ParseError
}

func newInvalidRangeError(tok Token, expected, actual NodeKind) *InvalidRangeError {
	return &InvalidRangeError{
		ParseError: ParseError{
			Token: tok,
			Message: fmt.Sprintf("invalid range: END should be of type %s, given START was of type %s, but was of type %s",
				expected, expected, actual),
		},
		Expected: expected,
		Actual:   actual,
	}
}

// RuntimeErrorKind distinguishes the failures of evaluation
type RuntimeErrorKind uint8

const (
	KindUnknownCell RuntimeErrorKind = iota + 1
	KindUnknownIdentifier
	KindUnknownConstant
	KindUnknownFunction
	KindTypeMismatch
	KindArgumentCount
	KindArgumentShape
	KindUnexpectedRange
	KindRecursionLimit
	KindCellFormula
)

var runtimeKindNames = map[RuntimeErrorKind]string{
	KindUnknownCell:       "UnknownCell",
	KindUnknownIdentifier: "UnknownIdentifier",
	KindUnknownConstant:   "UnknownConstant",
	KindUnknownFunction:   "UnknownFunction",
	KindTypeMismatch:      "TypeMismatch",
	KindArgumentCount:     "ArgumentCount",
	KindArgumentShape:     "ArgumentShape",
	KindUnexpectedRange:   "UnexpectedRange",
	KindRecursionLimit:    "RecursionLimit",
	KindCellFormula:       "CellFormula",
}

func (k RuntimeErrorKind) String() string {
	if s, ok := runtimeKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("RuntimeErrorKind(%d)", uint8(k))
}

// Code returns the spreadsheet error code shown for this kind of failure
func (k RuntimeErrorKind) Code() ErrorCode {
	switch k {
	case KindUnknownCell:
		return ErrorCodeRef
	case KindUnknownIdentifier, KindUnknownConstant, KindUnknownFunction:
		return ErrorCodeName
	case KindTypeMismatch, KindUnexpectedRange:
		return ErrorCodeValue
	case KindArgumentCount:
		return ErrorCodeNA
	case KindArgumentShape:
		return ErrorCodeNum
	case KindRecursionLimit:
		return ErrorCodeCycle
	default:
		return ErrorCodeOther
	}
}

// RuntimeError is raised while evaluating a syntax tree. when the failure
// happened while lexing or parsing the formula of a referenced cell, Cell
// and Formula name that cell and Err holds the LexError or ParseError
// whose offsets refer to Formula.
type RuntimeError struct {
	Kind    RuntimeErrorKind
	Message string
	Cell    string
	Formula string
	Err     error
}

func (e *RuntimeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// NewRuntimeError creates a runtime error of the given kind
func NewRuntimeError(kind RuntimeErrorKind, format string, args ...any) *RuntimeError {
	return &RuntimeError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
