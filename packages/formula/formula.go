// Package formula lexes, parses and evaluates spreadsheet formulas.
//
// A formula is any text starting with '='. Anything else is taken
// literally. The lexer runs in its own goroutine and hands tokens to the
// parser through a channel.Channel, the parser builds a syntax tree and an
// Interpreter evaluates it against a table of cells and an environment of
// named values:
//
//	cells := formula.Cells{}
//	cells.Set("A1", "=2")
//	cells.Set("A2", "=3")
//	value, err := formula.NewInterpreter(cells, nil).Run("=SUM(A1:A2, 10)")
package formula

import (
	"errors"

	"github.com/vogtb/go-formula/packages/channel"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultMaxDepth bounds how deeply cell references may nest
	DefaultMaxDepth = 100
	// DefaultMaxRangeSize bounds the number of values one range expands to
	DefaultMaxRangeSize = 100_000
)

// Config holds the interpreter settings
type Config struct {
	MaxDepth     int
	MaxRangeSize int
	Clock        Clock
}

// DefaultConfig returns the configuration used by NewInterpreter
func DefaultConfig() Config {
	return Config{
		MaxDepth:     DefaultMaxDepth,
		MaxRangeSize: DefaultMaxRangeSize,
		Clock:        &WallClock{},
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.MaxDepth <= 0 {
		c.MaxDepth = defaults.MaxDepth
	}
	if c.MaxRangeSize <= 0 {
		c.MaxRangeSize = defaults.MaxRangeSize
	}
	if c.Clock == nil {
		c.Clock = defaults.Clock
	}
	return c
}

// Parse lexes and parses source. the lexer and parser run concurrently;
// when both fail the lexer's error is returned, since the parser only saw
// the input up to the bad character.
func Parse(source string) (*Program, error) {
	tokens := channel.New[Token]()

	var g errgroup.Group
	g.Go(func() error {
		return NewLexer(source).Lex(tokens)
	})

	program, parseErr := NewParser(tokens).Parse()

	// the lexer never blocks on push, so it finishes even when the parser
	// stopped early
	if lexErr := g.Wait(); lexErr != nil {
		return nil, lexErr
	}
	if parseErr != nil {
		return nil, parseErr
	}
	return program, nil
}

// Tokenize returns every token of source up to and including EOF. on a
// lex error the tokens scanned before it are returned with the error.
func Tokenize(source string) ([]Token, error) {
	tokens := channel.New[Token]()
	lexErr := NewLexer(source).Lex(tokens)

	var result []Token
	for {
		tok, err := tokens.Pop()
		if errors.Is(err, channel.ErrClosed) {
			break
		}
		if err != nil {
			return result, err
		}
		result = append(result, tok)
	}
	return result, lexErr
}

// Eval evaluates source once against cells and identifiers with the
// default configuration
func Eval(source string, cells CellTable, identifiers Identifiers) (Primitive, error) {
	return NewInterpreter(cells, identifiers).Run(source)
}
