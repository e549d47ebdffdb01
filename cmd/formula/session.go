package main

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/as/log"
	"github.com/vogtb/go-formula/packages/formula"
)

const helpText = `commands:
  :set <cell> <formula>  store a formula or literal in a cell, e.g. :set A1 =1+2
  :let <name> <value>    bind an identifier to a number or a string
  :cells                 list the stored cells and their values
  :tokens <formula>      print the tokens of a formula
  :ast <formula>         print a formula as parsed
  :clear                 clear the screen
  :help                  show this text
  :quit                  exit
anything else is evaluated as a formula.`

// session holds the cells and identifiers the user has defined
type session struct {
	cells  formula.Cells
	env    formula.Environment
	config formula.Config
	out    io.Writer
}

func newSession(config formula.Config, out io.Writer) *session {
	return &session{
		cells:  formula.Cells{},
		env:    formula.Environment{},
		config: config,
		out:    out,
	}
}

// handle runs one line of input. it returns false once the user asks to
// quit.
func (s *session) handle(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return true
	}
	if strings.HasPrefix(trimmed, ":") {
		return s.command(trimmed)
	}
	_ = s.eval(line)
	return true
}

// eval evaluates source and prints the value, or a report of the failure
func (s *session) eval(source string) error {
	value, err := formula.NewInterpreterWithConfig(s.cells, s.env, s.config).Run(source)
	if err != nil {
		fmt.Fprintln(s.out, formula.Report(source, err))
		return err
	}
	fmt.Fprintln(s.out, formula.FormatPrimitive(value))
	return nil
}

func (s *session) command(line string) bool {
	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(name) {
	case ":quit", ":exit":
		return false
	case ":help":
		fmt.Fprintln(s.out, helpText)
	case ":clear":
		fmt.Fprint(s.out, "\x1b[H\x1b[2J")
	case ":set":
		s.set(rest)
	case ":let":
		s.let(rest)
	case ":cells":
		s.listCells()
	case ":tokens":
		s.tokens(rest)
	case ":ast":
		s.ast(rest)
	default:
		fmt.Fprintf(s.out, "unknown command %s. Type :help for a list.\n", name)
	}
	return true
}

func (s *session) set(args string) {
	cell, source, ok := strings.Cut(args, " ")
	if !ok || !formula.IsCellName(cell) {
		fmt.Fprintln(s.out, "usage: :set <cell> <formula>, e.g. :set A1 =1+2")
		return
	}
	source = strings.TrimSpace(source)
	s.cells.Set(cell, source)
	log.Debug.Add("cell", cell, "formula", source).Printf("cell set")
}

// let binds name to a number when value parses as one, otherwise to the
// text of value with any surrounding quotes removed
func (s *session) let(args string) {
	name, value, ok := strings.Cut(args, " ")
	value = strings.TrimSpace(value)
	if !ok || name == "" || value == "" {
		fmt.Fprintln(s.out, "usage: :let <name> <value>")
		return
	}

	if num, err := strconv.ParseFloat(value, 64); err == nil {
		s.env[name] = num
		return
	}
	if unquoted, err := strconv.Unquote(value); err == nil {
		s.env[name] = unquoted
		return
	}
	s.env[name] = value
}

func (s *session) listCells() {
	names := make([]string, 0, len(s.cells))
	for name := range s.cells {
		names = append(names, name)
	}
	slices.Sort(names)

	in := formula.NewInterpreterWithConfig(s.cells, s.env, s.config)
	for _, name := range names {
		cell := s.cells[name]
		value, err := in.Run(cell.Formula)
		if err != nil {
			fmt.Fprintf(s.out, "%s\t%s\t%s\n", name, cell.Formula, errorCode(err))
			continue
		}
		fmt.Fprintf(s.out, "%s\t%s\t%s\n", name, cell.Formula, formula.FormatPrimitive(value))
	}
}

func (s *session) tokens(source string) {
	tokens, err := formula.Tokenize(source)
	for _, tok := range tokens {
		fmt.Fprintf(s.out, "%-12s %-10q at %d\n", tok.Type, tok.Value, tok.Pos)
	}
	if err != nil {
		fmt.Fprintln(s.out, formula.Report(source, err))
	}
}

func (s *session) ast(source string) {
	program, err := formula.Parse(source)
	if err != nil {
		fmt.Fprintln(s.out, formula.Report(source, err))
		return
	}
	fmt.Fprintln(s.out, program.String())
}

// errorCode is the spreadsheet error text shown for err
func errorCode(err error) string {
	var runtimeErr *formula.RuntimeError
	if errors.As(err, &runtimeErr) {
		return runtimeErr.Kind.Code().String()
	}
	return formula.ErrorCodeOther.String()
}

// errorKind names the kind of failure for log lines
func errorKind(err error) string {
	var runtimeErr *formula.RuntimeError
	var rangeErr *formula.InvalidRangeError
	var parseErr *formula.ParseError
	var lexErr *formula.LexError

	switch {
	case errors.As(err, &runtimeErr):
		return runtimeErr.Kind.String()
	case errors.As(err, &rangeErr):
		return "InvalidRange"
	case errors.As(err, &parseErr):
		return "Parse"
	case errors.As(err, &lexErr):
		return "Lex"
	}
	return "Unknown"
}
