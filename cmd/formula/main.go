// Command formula evaluates spreadsheet formulas, either one given with -e
// or interactively in a REPL where cells and identifiers can be defined.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/as/log"
	"github.com/peterh/liner"
	"github.com/vogtb/go-formula/packages/formula"
)

const (
	appName     = "formula"
	historyFile = ".formula_history"
	prompt      = "(formula) $ "
	banner      = "formula REPL\nCtrl+C cancels input, Ctrl+D exits. Type :help for commands."
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	expr := fs.String("e", "", "evaluate `formula` and exit")
	depth := fs.Int("depth", formula.DefaultMaxDepth, "maximum nesting of cell references")
	rangeSize := fs.Int("range", formula.DefaultMaxRangeSize, "maximum number of values in one range")
	debug := fs.Bool("debug", false, "write debug log lines to stderr")
	history := fs.String("history", defaultHistoryPath(), "REPL history `file`, empty to disable")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	log.Service = appName
	log.DebugOn = *debug

	config := formula.Config{MaxDepth: *depth, MaxRangeSize: *rangeSize}
	s := newSession(config, os.Stdout)

	if *expr != "" {
		if err := s.eval(*expr); err != nil {
			log.Error.Add("kind", errorKind(err), "code", errorCode(err), "source", *expr).Printf("evaluation failed")
			return 1
		}
		return 0
	}
	return repl(s, *history)
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, historyFile)
}

func repl(s *session, histPath string) int {
	fmt.Println(banner)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			f, err := os.Create(histPath)
			if err != nil {
				log.Warn.Add("file", histPath).Printf("cannot save history: %v", err)
				return
			}
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}()
	}

	for {
		line, err := ln.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			// io.EOF on Ctrl+D
			fmt.Println()
			return 0
		}

		if strings.TrimSpace(line) == "" {
			continue
		}
		ln.AppendHistory(line)

		if !s.handle(line) {
			return 0
		}
	}
}
