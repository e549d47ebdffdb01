package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/vogtb/go-formula/packages/formula"
)

func newTestSession() (*session, *bytes.Buffer) {
	var out bytes.Buffer
	return newSession(formula.DefaultConfig(), &out), &out
}

func TestSessionEval(t *testing.T) {
	s, out := newTestSession()

	if !s.handle("=SUM(1,2,3)") {
		t.Fatal("handle returned false")
	}
	if got := out.String(); got != "6\n" {
		t.Errorf("output = %q, want 6", got)
	}
}

func TestSessionSetAndLet(t *testing.T) {
	s, out := newTestSession()

	s.handle(":set A1 =2")
	s.handle(":set A2 =A1 * 10")
	s.handle(":let rate 0.5")
	s.handle(`:let name "Ada"`)
	out.Reset()

	s.handle("=A2*rate")
	s.handle(`=CONCATENATE("hi ", name)`)
	if got := out.String(); got != "10\nhi Ada\n" {
		t.Errorf("output = %q", got)
	}
}

func TestSessionSetRejectsBadCell(t *testing.T) {
	s, out := newTestSession()

	s.handle(":set a1 =2")
	if len(s.cells) != 0 {
		t.Errorf("cells = %v, want none", s.cells)
	}
	if !strings.HasPrefix(out.String(), "usage:") {
		t.Errorf("output = %q, want usage", out.String())
	}
}

func TestSessionCells(t *testing.T) {
	s, out := newTestSession()

	s.handle(":set B1 =A1")
	s.handle(":set A1 =1+1")
	out.Reset()

	s.handle(":cells")
	want := "A1\t=1+1\t2\nB1\t=A1\t2\n"
	if got := out.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}

	s.handle(":set C1 =D1")
	out.Reset()
	s.handle(":cells")
	if !strings.Contains(out.String(), "C1\t=D1\t#REF!\n") {
		t.Errorf("output = %q, want C1 to show #REF!", out.String())
	}
}

func TestSessionReportsErrors(t *testing.T) {
	s, out := newTestSession()

	s.handle("=1+$")
	if !strings.HasPrefix(out.String(), "LexError: ") {
		t.Errorf("output = %q, want a LexError report", out.String())
	}
}

func TestSessionTokensAndAst(t *testing.T) {
	s, out := newTestSession()

	s.handle(":ast =2*3+4")
	if got := out.String(); got != "=2 * 3 + 4\n" {
		t.Errorf(":ast output = %q", got)
	}

	out.Reset()
	s.handle(":tokens =1+2")
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 4 || !strings.HasPrefix(lines[3], "EOF") {
		t.Errorf(":tokens output = %q, want 4 lines ending with EOF", out.String())
	}
}

func TestSessionQuit(t *testing.T) {
	s, _ := newTestSession()

	for _, line := range []string{":quit", ":exit", ":QUIT"} {
		if s.handle(line) {
			t.Errorf("handle(%q) = true, want false", line)
		}
	}
	if !s.handle(":unknown") {
		t.Error("unknown commands should not end the session")
	}
}

func TestErrorKind(t *testing.T) {
	tests := map[string]string{
		"=1+$":       "Lex",
		"=1/0":       "Parse",
		"=SUM(A1:3)": "InvalidRange",
		"=A1":        "UnknownCell",
	}
	for source, want := range tests {
		_, err := formula.Eval(source, nil, nil)
		if got := errorKind(err); got != want {
			t.Errorf("errorKind(%s) = %s, want %s", source, got, want)
		}
	}
}
