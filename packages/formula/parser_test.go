package formula

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func parseFormula(formula string) bool {
	_, err := Parse(formula)
	return err == nil
}

func TestParserBasicFormulas(t *testing.T) {
	validFormulas := []string{
		"=1+2",
		"=A1",
		"=SUM(A1:A10)",
		"=SUM(B2:A1)",
		"=SUM(A1:A1)",
		"=SUM(1:10)",
		"=SUM(-2:2)",
		"=-A1",
		"=(1+2)*3",
		"=SUM()",
		"=PI",
		"=DATE",
		"=rate * 2",
		`="Hello 世界"`,
		`=CONCATENATE("Hello ", "世界")`,
		"plain text",
		"",
	}

	for _, formula := range validFormulas {
		t.Run(formula, func(t *testing.T) {
			if !parseFormula(formula) {
				t.Errorf("Failed to parse valid formula: %s", formula)
			}
		})
	}
}

func TestParserInvalidFormulas(t *testing.T) {
	invalidFormulas := []string{
		"=",
		"=SUM(",
		"=A1:",
		`="hello`,
		"=1 2",
		"=)",
		"=SUM(1,)",
		"=1.2.3",
		"=--1",
		"=(1+2",
	}

	for _, formula := range invalidFormulas {
		t.Run(formula, func(t *testing.T) {
			if parseFormula(formula) {
				t.Errorf("Expected parse to fail for: %s", formula)
			}
		})
	}
}

func TestParserTreeShape(t *testing.T) {
	tests := []struct {
		formula string
		want    string
	}{
		{"=1+2*3", "=1 + 6"},
		{"=2*3+4", "=2 * 3 + 4"},
		{"=8-4-2", "=8 - 4 - 2"},
		{"=-2*3", "=-6"},
		{"=2*-3", "=-6"},
		{"=6/3", "=2"},
		{"=+5", "=5"},
		{"=-(1)", "=-(1)"},
		{"=(1+2)*A1", "=(1 + 2) * A1"},
		{"=sum( A1 : B2 ,3)", "=sum(A1:B2, 3)"},
		{`="x"`, `="x"`},
		{"=DATE", "=DATE()"},
		{"hello", "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.formula, func(t *testing.T) {
			program, err := Parse(tt.formula)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.formula, err)
			}
			if got := program.String(); got != tt.want {
				t.Errorf("Parse(%q) = %s, want %s", tt.formula, got, tt.want)
			}
		})
	}
}

func TestParserRightOperandOfFactorIsExpression(t *testing.T) {
	program, err := Parse("=2*3+4")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	bin, ok := program.Body.(*BinaryNode)
	if !ok || bin.Op != BinOpMultiply {
		t.Fatalf("body = %s, want a multiplication", program.Body)
	}
	if right, ok := bin.Right.(*BinaryNode); !ok || right.Op != BinOpAdd {
		t.Errorf("right operand = %s, want 3 + 4", bin.Right)
	}
}

func TestParserTermIsRightAssociative(t *testing.T) {
	program, err := Parse("=8-4-2")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	bin := program.Body.(*BinaryNode)
	if _, ok := bin.Left.(*NumberNode); !ok {
		t.Errorf("left operand = %s, want 8", bin.Left)
	}
	if right, ok := bin.Right.(*BinaryNode); !ok || right.Op != BinOpSubtract {
		t.Errorf("right operand = %s, want 4 - 2", bin.Right)
	}
}

func TestParserIdentifierDisambiguation(t *testing.T) {
	tests := []struct {
		formula string
		kind    NodeKind
	}{
		{"=A1", KindCell},
		{"=AB12", KindCell},
		{"=E1", KindCell},
		{"=PI", KindConstant},
		{"=E", KindConstant},
		{"=DATE", KindCall},
		{"=TIMESTAMP", KindCall},
		{"=SUM(1)", KindCall},
		{"=PI()", KindCall},
		{"=SUM", KindIdentifier},
		{"=a1", KindIdentifier},
		{"=pi", KindIdentifier},
		{"=date", KindIdentifier},
		{"=rate", KindIdentifier},
	}

	for _, tt := range tests {
		t.Run(tt.formula, func(t *testing.T) {
			program, err := Parse(tt.formula)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.formula, err)
			}
			if program.Body.Kind() != tt.kind {
				t.Errorf("Parse(%q) body is %s, want %s", tt.formula, program.Body.Kind(), tt.kind)
			}
		})
	}
}

func TestParserConstantDivisionByZero(t *testing.T) {
	for _, formula := range []string{"=1/0", "=5/-0", "=2/0.0"} {
		t.Run(formula, func(t *testing.T) {
			_, err := Parse(formula)
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("Parse(%q) error = %v, want ParseError", formula, err)
			}
			if parseErr.Token.Type != TokenDivide || parseErr.Token.Pos != 2 {
				t.Errorf("error points at %+v, want the DIVIDE at 2", parseErr.Token)
			}
		})
	}

	// only literal divisors are folded
	for _, formula := range []string{"=1/(0)", "=1/A1", "=1/(1-1)"} {
		if !parseFormula(formula) {
			t.Errorf("Failed to parse %s", formula)
		}
	}
}

func TestParserInvalidRange(t *testing.T) {
	tests := []struct {
		formula  string
		expected NodeKind
		actual   NodeKind
	}{
		{"=SUM(A1:3)", KindCell, KindNumber},
		{"=SUM(1:B2)", KindNumber, KindCell},
		{"=SUM(A1:rate)", KindCell, KindIdentifier},
		{`=SUM(1:"2")`, KindNumber, KindString},
	}

	for _, tt := range tests {
		t.Run(tt.formula, func(t *testing.T) {
			_, err := Parse(tt.formula)
			var rangeErr *InvalidRangeError
			if !errors.As(err, &rangeErr) {
				t.Fatalf("Parse(%q) error = %v, want InvalidRangeError", tt.formula, err)
			}
			if rangeErr.Expected != tt.expected || rangeErr.Actual != tt.actual {
				t.Errorf("got expected=%s actual=%s, want expected=%s actual=%s",
					rangeErr.Expected, rangeErr.Actual, tt.expected, tt.actual)
			}
			if !strings.Contains(rangeErr.Error(), "but was of type "+tt.actual.String()) {
				t.Errorf("message %q does not name the actual kind", rangeErr.Error())
			}

			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("Parse(%q) error = %v, want it to match ParseError too", tt.formula, err)
			}
			if parseErr.Token != rangeErr.Token {
				t.Errorf("ParseError token = %v, want %v", parseErr.Token, rangeErr.Token)
			}
		})
	}
}

func TestParserInvalidRangeStart(t *testing.T) {
	for _, formula := range []string{`=SUM("a":B1)`, "=SUM(rate:B1)", "=SUM((A1):B1)"} {
		t.Run(formula, func(t *testing.T) {
			_, err := Parse(formula)
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("Parse(%q) error = %v, want ParseError", formula, err)
			}
			if parseErr.Token.Type != TokenColon {
				t.Errorf("error points at %v, want the COLON", parseErr.Token)
			}
		})
	}
}

func TestParserLexErrorWins(t *testing.T) {
	_, err := Parse("=SUM(1, $)")
	var lexErr *LexError
	if !errors.As(err, &lexErr) {
		t.Fatalf("Parse error = %v, want LexError", err)
	}
	if lexErr.Pos != 8 {
		t.Errorf("LexError at %d, want 8", lexErr.Pos)
	}
}

func TestParserNumberRoundTrip(t *testing.T) {
	values := []float64{0, 1, 42, 2.5, -3.5, 0.001, 1234567.125, 1e-7, 1e20, 1e21, -1e25, 1e300, math.MaxFloat64, math.Pi, 0.1 + 0.2}

	for _, value := range values {
		source := "=" + FormatNumber(value)
		t.Run(source, func(t *testing.T) {
			program, err := Parse(source)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", source, err)
			}
			num, ok := program.Body.(*NumberNode)
			if !ok {
				t.Fatalf("Parse(%q) = %s, want a number", source, program.Body)
			}
			if num.Value != value {
				t.Errorf("Parse(%q) = %v, want %v", source, num.Value, value)
			}
		})
	}
}

func TestParserStringRoundTrip(t *testing.T) {
	formulas := []string{
		"=1 + A1 * 2",
		"=SUM(A1:B2, 3, -4)",
		"=(1 + 2) * (3 - A1)",
		`=CONCATENATE("a", rate, PI)`,
		"=-A1 / 2",
		"=AVERAGE(1:10)",
	}

	for _, formula := range formulas {
		t.Run(formula, func(t *testing.T) {
			first, err := Parse(formula)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", formula, err)
			}
			second, err := Parse(first.String())
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", first.String(), err)
			}
			if first.String() != second.String() {
				t.Errorf("round trip changed %q into %q", first.String(), second.String())
			}
		})
	}
}
