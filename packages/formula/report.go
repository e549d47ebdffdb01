package formula

import (
	"errors"
	"strings"
)

const (
	lexemeContext = 25 // runes shown either side of an underlined lexeme
	offsetContext = 10 // runes shown either side of a single caret
)

// Report renders err for display, with an excerpt of source and a caret
// line under the failing position:
//
//	ParseError: unexpected token RIGHT_PARENS
//		> =SUM(1,)
//		         ^
//
// errors raised while parsing a referenced cell are shown against that
// cell's formula. errors that are not from this package are returned as is.
func Report(source string, err error) string {
	if err == nil {
		return ""
	}

	var runtimeErr *RuntimeError
	var rangeErr *InvalidRangeError
	var parseErr *ParseError
	var lexErr *LexError

	switch {
	case errors.As(err, &runtimeErr):
		report := "RuntimeError (" + runtimeErr.Kind.Code().String() + "): " + runtimeErr.Message
		if runtimeErr.Err != nil && runtimeErr.Cell != "" {
			report += "\n" + runtimeErr.Cell + " " + Report(runtimeErr.Formula, runtimeErr.Err)
		}
		return report
	case errors.As(err, &rangeErr):
		return "InvalidRangeError: " + rangeErr.Message + reportLexeme(source, rangeErr.Token)
	case errors.As(err, &parseErr):
		return "ParseError: " + parseErr.Message + reportLexeme(source, parseErr.Token)
	case errors.As(err, &lexErr):
		return "LexError: " + lexErr.Error() + reportOffset(source, lexErr.Pos)
	}
	return err.Error()
}

// reportLexeme underlines the whole token
func reportLexeme(source string, tok Token) string {
	runes := []rune(source)
	pos := clamp(tok.Pos, 0, len(runes))
	start := max(pos-lexemeContext, 0)
	end := min(pos+lexemeContext, len(runes))

	decorator := strings.Repeat(" ", pos-start) + strings.Repeat("^", max(tok.Length, 1))
	return "\n\t> " + string(runes[start:end]) + "\n\t  " + decorator
}

// reportOffset points a single caret at pos
func reportOffset(source string, pos int) string {
	runes := []rune(source)
	pos = clamp(pos, 0, len(runes))
	start := max(pos-offsetContext, 0)
	end := min(pos+offsetContext, len(runes))

	return "\n\t> " + string(runes[start:end]) + "\n\t  " + strings.Repeat(" ", pos-start) + "^"
}

func clamp(n, lo, hi int) int {
	return max(lo, min(n, hi))
}
