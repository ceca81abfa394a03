package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/sanity-io/litter"

	"github.com/zephyrtronium/arith"
)

// evaluator parses and evaluates single expressions for the command line and
// the REPL.
type evaluator struct {
	ctx   *arith.Context
	popts []arith.ParseOption
	verb  string
	echo  bool
	dump  bool
	log   *slog.Logger
}

// Eval evaluates src and formats the result, preceded by the parse tree if
// echo or dump is set.
func (e *evaluator) Eval(src string) (string, error) {
	a, err := arith.ParseString(src, e.popts...)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if e.dump {
		b.WriteString(litter.Sdump(a.Tree()))
		b.WriteByte('\n')
	}
	if e.echo {
		fmt.Fprintf(&b, "%v : ", a)
	}
	r, err := e.ctx.Eval(a)
	if err != nil {
		return "", err
	}
	e.log.Debug("evaluated", slog.String("expr", a.String()), slog.String("result", r.String()))
	fmt.Fprintf(&b, e.verb, r)
	return b.String(), nil
}
